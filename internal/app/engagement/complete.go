package engagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lifexp-app/lifexp/internal/app/progression"
	"github.com/lifexp-app/lifexp/internal/domain"
	"github.com/lifexp-app/lifexp/internal/infra/metrics"
)

const (
	// questMinutes is the effort credited for any daily quest.
	questMinutes = 15
	questNotes   = "Daily Quest"
)

// CompleteTaskInput is the body of a task completion.
type CompleteTaskInput struct {
	ActualMinutes int    `json:"actualMinutes"`
	Notes         string `json:"notes,omitempty"`
}

// CompleteTask records a task completion. For habits the streak is advanced
// first and the new streak feeds the XP bonus.
func (s *Service) CompleteTask(ctx context.Context, userID, taskID string, in CompleteTaskInput) (*domain.CompletionResult, error) {
	if in.ActualMinutes < 1 {
		return nil, domain.InvalidArgument("actualMinutes", "must be at least 1")
	}
	start := time.Now()

	var res *domain.CompletionResult
	var task *domain.Task
	err := s.withRetry(ctx, "complete_task", func() error {
		u, err := s.loadUser(ctx, userID)
		if err != nil {
			return err
		}
		task, err = s.store.GetTask(ctx, userID, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return domain.NotFound(domain.ErrTaskNotFound, taskID)
		}

		now := s.localNow(u)
		var streak domain.HabitStreakState
		streakDays := 0
		if task.IsHabit {
			streak = progression.AdvanceStreak(task.HabitStreakState, now)
			streakDays = streak.StreakCurrent
		}

		xp, err := progression.ComputeTaskXP(domain.CompletionEvent{
			Difficulty:    task.Difficulty,
			ActualMinutes: in.ActualMinutes,
			StreakDays:    streakDays,
		})
		if err != nil {
			return err
		}
		award := progression.AwardXP(u.Progression, xp, task.Category, task.Difficulty)

		c := domain.Completion{
			ID:            uuid.NewString(),
			UserID:        userID,
			TaskID:        task.ID,
			ActualMinutes: in.ActualMinutes,
			XPEarned:      xp,
			Notes:         in.Notes,
			CompletedAt:   now.UTC(),
		}
		err = s.store.Atomically(ctx, func(tx domain.Tx) error {
			if err := tx.UpdateProgression(ctx, userID, u.Version, award.State); err != nil {
				return err
			}
			if task.IsHabit {
				if err := tx.UpdateStreak(ctx, userID, task.ID, task.Version, streak); err != nil {
					return err
				}
			}
			return tx.InsertCompletion(ctx, c)
		})
		if err != nil {
			return err
		}

		u.Progression = award.State
		u.Version++
		res = s.result(u, c, award, streakDays)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordCompletion("task", task.Difficulty, res, start)
	if task.IsHabit {
		metrics.HabitStreak.Observe(float64(res.StreakDays))
	}
	return res, nil
}

// CompleteQuest completes one of today's quests. Quests always count as
// 15 minutes of effort with no streak and earn the quest bonus.
func (s *Service) CompleteQuest(ctx context.Context, userID, questID string) (*domain.CompletionResult, error) {
	start := time.Now()

	var res *domain.CompletionResult
	var quest *domain.Quest
	err := s.withRetry(ctx, "complete_quest", func() error {
		u, err := s.loadUser(ctx, userID)
		if err != nil {
			return err
		}
		quest, err = s.store.GetQuest(ctx, userID, questID)
		if err != nil {
			return err
		}
		if quest == nil {
			return domain.NotFound(domain.ErrQuestNotFound, questID)
		}
		if quest.Completed {
			return domain.Conflict(questID, domain.ErrQuestCompleted)
		}

		xp, err := progression.ComputeTaskXP(domain.CompletionEvent{
			Difficulty:    quest.Difficulty,
			ActualMinutes: questMinutes,
			IsQuestBonus:  true,
		})
		if err != nil {
			return err
		}
		award := progression.AwardXP(u.Progression, xp, quest.Category, quest.Difficulty)

		now := s.localNow(u)
		c := domain.Completion{
			ID:            uuid.NewString(),
			UserID:        userID,
			QuestID:       quest.ID,
			ActualMinutes: questMinutes,
			XPEarned:      xp,
			Notes:         questNotes,
			CompletedAt:   now.UTC(),
		}
		err = s.store.Atomically(ctx, func(tx domain.Tx) error {
			if err := tx.MarkQuestCompleted(ctx, userID, quest.ID, now); err != nil {
				return err
			}
			if err := tx.UpdateProgression(ctx, userID, u.Version, award.State); err != nil {
				return err
			}
			return tx.InsertCompletion(ctx, c)
		})
		if errors.Is(err, domain.ErrQuestCompleted) {
			return domain.Conflict(questID, err)
		}
		if err != nil {
			return err
		}

		u.Progression = award.State
		u.Version++
		res = s.result(u, c, award, 0)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordCompletion("quest", quest.Difficulty, res, start)
	return res, nil
}

func (s *Service) result(u *domain.User, c domain.Completion, award progression.Award, streakDays int) *domain.CompletionResult {
	return &domain.CompletionResult{
		Completion: c,
		XPEarned:   c.XPEarned,
		StreakDays: streakDays,
		StatGain:   award.StatGain,
		LeveledUp:  award.LeveledUp,
		Profile:    profileOf(u),
	}
}

// recordCompletion runs the bookkeeping shared by task and quest completions.
func (s *Service) recordCompletion(source string, d domain.Difficulty, res *domain.CompletionResult, start time.Time) {
	s.invalidate(res.Profile.ID)

	metrics.CompletionsTotal.WithLabelValues(source, string(d)).Inc()
	metrics.XPAwarded.Add(float64(res.XPEarned))
	metrics.CompletionDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	s.logger.Info("completion recorded",
		"source", source,
		"user", res.Profile.ID,
		"xp", res.XPEarned,
		"streak", res.StreakDays,
		"total_xp", res.Profile.Progression.TotalXP,
	)
	if res.LeveledUp {
		metrics.LevelUps.Inc()
		s.logger.Info("level up",
			"user", res.Profile.ID,
			"level", res.Profile.Progression.Level,
			"title", res.Profile.Progression.Title,
		)
	}
}

// Describe renders a completion result as one line for CLI output.
func Describe(res *domain.CompletionResult) string {
	msg := fmt.Sprintf("+%d XP (total %d, level %d %q)",
		res.XPEarned, res.Profile.Progression.TotalXP,
		res.Profile.Progression.Level, res.Profile.Progression.Title)
	if res.StreakDays > 0 {
		msg += fmt.Sprintf(", streak %d", res.StreakDays)
	}
	if res.LeveledUp {
		msg += " LEVEL UP!"
	}
	return msg
}
