package engagement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lifexp-app/lifexp/internal/app/progression"
	"github.com/lifexp-app/lifexp/internal/domain"
)

// CreateTask validates and stores a new task for the user.
func (s *Service) CreateTask(ctx context.Context, userID string, in domain.NewTask) (*domain.Task, error) {
	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	t := domain.Task{
		ID:               uuid.NewString(),
		UserID:           userID,
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		Category:         in.Category,
		Difficulty:       in.Difficulty,
		EstimatedMinutes: in.EstimatedMinutes,
		IsHabit:          in.IsHabit,
		HabitFrequency:   in.HabitFrequency,
		Tags:             in.Tags,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if t.IsHabit && t.HabitFrequency == "" {
		t.HabitFrequency = domain.HabitDaily
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if err := validateTask(t); err != nil {
		return nil, err
	}

	if err := s.store.InsertTask(ctx, t); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &t, nil
}

// GetTask returns one task with its displayed streak decayed to today.
func (s *Service) GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	t, err := s.store.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound(domain.ErrTaskNotFound, taskID)
	}
	displayStreak(t, s.localNow(u))
	return t, nil
}

// ListTasks returns the user's tasks matching f, newest first. Habit streaks
// are shown decayed to today so an abandoned habit never looks alive.
func (s *Service) ListTasks(ctx context.Context, userID string, f domain.TaskFilter) ([]domain.Task, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasks(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	now := s.localNow(u)
	for i := range tasks {
		displayStreak(&tasks[i], now)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// UpdateTask applies a partial update. Streak fields cannot be patched.
func (s *Service) UpdateTask(ctx context.Context, userID, taskID string, p domain.TaskPatch) (*domain.Task, error) {
	t, err := s.store.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound(domain.ErrTaskNotFound, taskID)
	}

	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Difficulty != nil {
		t.Difficulty = *p.Difficulty
	}
	if p.EstimatedMinutes != nil {
		t.EstimatedMinutes = *p.EstimatedMinutes
	}
	if p.IsHabit != nil {
		t.IsHabit = *p.IsHabit
	}
	if p.HabitFrequency != nil {
		t.HabitFrequency = *p.HabitFrequency
	}
	if p.Tags != nil {
		t.Tags = p.Tags
	}
	if t.IsHabit && t.HabitFrequency == "" {
		t.HabitFrequency = domain.HabitDaily
	}
	if err := validateTask(*t); err != nil {
		return nil, err
	}

	t.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateTask(ctx, *t); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.NotFound(domain.ErrTaskNotFound, taskID)
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	t.Version++
	return t, nil
}

// DeleteTask removes the user's task. Its completions stay in the history.
func (s *Service) DeleteTask(ctx context.Context, userID, taskID string) error {
	err := s.store.DeleteTask(ctx, userID, taskID)
	if errors.Is(err, domain.ErrTaskNotFound) {
		return domain.NotFound(domain.ErrTaskNotFound, taskID)
	}
	return err
}

func validateTask(t domain.Task) error {
	switch {
	case t.Title == "":
		return domain.InvalidArgument("title", "must not be empty")
	case !t.Category.Valid():
		return domain.InvalidArgument("category", fmt.Sprintf("unknown category %q", t.Category))
	case !t.Difficulty.Valid():
		return domain.InvalidArgument("difficulty", fmt.Sprintf("unknown difficulty %q", t.Difficulty))
	case t.EstimatedMinutes < 1:
		return domain.InvalidArgument("estimatedMinutes", "must be at least 1")
	case t.HabitFrequency != "" && !t.HabitFrequency.Valid():
		return domain.InvalidArgument("habitFrequency", fmt.Sprintf("unknown frequency %q", t.HabitFrequency))
	}
	return nil
}

// displayStreak replaces the stored streak with its decayed value.
// Non-habit tasks always show 0.
func displayStreak(t *domain.Task, now time.Time) {
	if !t.IsHabit {
		t.StreakCurrent = 0
		return
	}
	t.StreakCurrent = progression.DecayedStreak(t.HabitStreakState, now)
}
