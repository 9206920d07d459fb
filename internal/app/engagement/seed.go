package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lifexp-app/lifexp/internal/app/progression"
	"github.com/lifexp-app/lifexp/internal/domain"
)

// DemoUserID is the fixed ID of the seeded demo account.
const DemoUserID = "00000000-0000-4000-8000-00000000de70"

// Seed creates the demo user and three sample tasks. It is a no-op when the
// demo user already exists.
func (s *Service) Seed(ctx context.Context) (*domain.User, bool, error) {
	existing, err := s.store.GetUser(ctx, DemoUserID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		existing.Progression = progression.Derive(existing.Progression)
		return existing, false, nil
	}

	now := s.now().UTC()
	u := domain.User{
		ID:       DemoUserID,
		Name:     "Demo User",
		Timezone: s.defaultTZ,
		Progression: domain.ProgressionState{
			TotalXP:          150,
			StatIntelligence: 5,
			StatStrength:     3,
			StatDiscipline:   2,
			StatWealth:       1,
		},
		CreatedAt: now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, false, fmt.Errorf("seed user: %w", err)
	}

	today := now
	yesterday := now.AddDate(0, 0, -1)
	tasks := []domain.Task{
		{
			Title: "Read a book chapter", Category: domain.StatIntelligence, Difficulty: domain.DifficultyEasy,
			EstimatedMinutes: 30, IsHabit: true, HabitFrequency: domain.HabitDaily,
			HabitStreakState: domain.HabitStreakState{LastCompletedAt: &today, StreakCurrent: 5, StreakLongest: 5},
		},
		{
			Title: "Gym Workout", Category: domain.StatStrength, Difficulty: domain.DifficultyHard,
			EstimatedMinutes: 60, IsHabit: true, HabitFrequency: domain.HabitDaily,
			HabitStreakState: domain.HabitStreakState{LastCompletedAt: &yesterday, StreakCurrent: 2, StreakLongest: 10},
		},
		{
			Title: "Review Budget", Category: domain.StatWealth, Difficulty: domain.DifficultyMedium,
			EstimatedMinutes: 15,
		},
	}
	for i, t := range tasks {
		t.ID = uuid.NewString()
		t.UserID = u.ID
		t.Tags = []string{}
		// Spread creation times so listing order is stable.
		t.CreatedAt = now.Add(-time.Duration(len(tasks)-i) * time.Second)
		t.UpdatedAt = t.CreatedAt
		if err := s.store.InsertTask(ctx, t); err != nil {
			return nil, false, fmt.Errorf("seed task %q: %w", t.Title, err)
		}
	}

	u.Progression = progression.Derive(u.Progression)
	s.logger.Info("demo data seeded", "user", u.ID, "tasks", len(tasks))
	return &u, true, nil
}
