package engagement

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/lifexp-app/lifexp/internal/domain"
	"github.com/lifexp-app/lifexp/internal/infra/metrics"
)

// dayLayout keys quests by the user's calendar day.
const dayLayout = "2006-01-02"

// questPool is the set of daily quest templates.
var questPool = []domain.QuestTemplate{
	{Title: "Do 10 pushups", Category: domain.StatStrength, Difficulty: domain.DifficultyEasy},
	{Title: "Read 5 pages", Category: domain.StatIntelligence, Difficulty: domain.DifficultyEasy},
	{Title: "Clean one small area", Category: domain.StatDiscipline, Difficulty: domain.DifficultyEasy},
	{Title: "Log one expense", Category: domain.StatWealth, Difficulty: domain.DifficultyEasy},
	{Title: "Drink 2L water", Category: domain.StatStrength, Difficulty: domain.DifficultyEasy},
	{Title: "Meditate 5 mins", Category: domain.StatDiscipline, Difficulty: domain.DifficultyEasy},
	{Title: "Learn one new fact", Category: domain.StatIntelligence, Difficulty: domain.DifficultyEasy},
	{Title: "Save $5", Category: domain.StatWealth, Difficulty: domain.DifficultyEasy},
	{Title: "Go for a walk", Category: domain.StatStrength, Difficulty: domain.DifficultyMedium},
	{Title: "Code for 30 mins", Category: domain.StatIntelligence, Difficulty: domain.DifficultyMedium},
}

// QuestTemplates returns a copy of the daily quest pool.
func QuestTemplates() []domain.QuestTemplate {
	out := make([]domain.QuestTemplate, len(questPool))
	copy(out, questPool)
	return out
}

// TodayQuests returns the user's quests for today, issuing them on first call.
func (s *Service) TodayQuests(ctx context.Context, userID string) ([]domain.Quest, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	quests, _, err := s.ensureDailyQuests(ctx, u, s.localNow(u))
	return quests, err
}

// GenerateDailyQuestsForAll issues today's quests to every user who does not
// have them yet and returns how many quests were created.
func (s *Service) GenerateDailyQuestsForAll(ctx context.Context) (int, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	created := 0
	for i := range users {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		u := &users[i]
		_, n, err := s.ensureDailyQuests(ctx, u, s.localNow(u))
		if err != nil {
			return created, fmt.Errorf("quests for %s: %w", u.ID, err)
		}
		created += n
	}
	return created, nil
}

// ensureDailyQuests returns the quests for now's calendar day, generating
// them if there are none. Generation is idempotent per user and day: the
// selection is seeded by (user, day) and the store skips duplicates.
func (s *Service) ensureDailyQuests(ctx context.Context, u *domain.User, now time.Time) ([]domain.Quest, int, error) {
	day := now.Format(dayLayout)
	existing, err := s.store.ListQuestsForDay(ctx, u.ID, day)
	if err != nil {
		return nil, 0, err
	}
	if len(existing) > 0 {
		return existing, 0, nil
	}

	selected := pickDailyQuests(questPool, s.questCount, questSeed(u.ID, day))
	quests := make([]domain.Quest, 0, len(selected))
	for _, tmpl := range selected {
		quests = append(quests, domain.Quest{
			ID:         uuid.NewString(),
			UserID:     u.ID,
			Day:        day,
			Title:      tmpl.Title,
			Category:   tmpl.Category,
			Difficulty: tmpl.Difficulty,
			CreatedAt:  now.UTC(),
		})
	}
	inserted, err := s.store.InsertQuests(ctx, quests)
	if err != nil {
		return nil, 0, fmt.Errorf("insert quests: %w", err)
	}

	// Re-read: a concurrent generator may have won the insert.
	stored, err := s.store.ListQuestsForDay(ctx, u.ID, day)
	if err != nil {
		return nil, 0, err
	}
	if inserted > 0 {
		metrics.QuestsGenerated.Add(float64(inserted))
		s.logger.Info("daily quests issued", "user", u.ID, "day", day, "count", inserted)
	}
	return stored, inserted, nil
}

// pickDailyQuests selects n distinct templates in random order.
func pickDailyQuests(pool []domain.QuestTemplate, n int, seed int64) []domain.QuestTemplate {
	r := rand.New(rand.NewSource(seed))

	shuffled := make([]domain.QuestTemplate, len(pool))
	copy(shuffled, pool)
	r.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

func questSeed(userID, day string) int64 {
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte{0})
	h.Write([]byte(day))
	return int64(h.Sum64())
}
