package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lifexp-app/lifexp/internal/domain"
	"github.com/lifexp-app/lifexp/internal/infra/sqlstore"
)

func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var (
	ctx   = context.Background()
	epoch = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
)

func seedUser(t *testing.T, s *sqlstore.Store, id string) domain.User {
	t.Helper()
	u := domain.User{ID: id, Name: "user " + id, Timezone: "UTC", CreatedAt: epoch}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser() error: %v", err)
	}
	return u
}

func seedTask(t *testing.T, s *sqlstore.Store, userID, id string, created time.Time) domain.Task {
	t.Helper()
	task := domain.Task{
		ID: id, UserID: userID, Title: "task " + id,
		Category: domain.StatStrength, Difficulty: domain.DifficultyMedium,
		EstimatedMinutes: 30, IsHabit: true, HabitFrequency: domain.HabitDaily,
		Tags: []string{"fitness"}, CreatedAt: created, UpdatedAt: created,
	}
	if err := s.InsertTask(ctx, task); err != nil {
		t.Fatalf("InsertTask() error: %v", err)
	}
	return task
}

// ─── Database Lifecycle ─────────────────────────────────────────────────────

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(dir, FileName)); os.IsNotExist(err) {
		t.Errorf("%s should exist", FileName)
	}
	if s.Dialect() != sqlstore.SQLite {
		t.Errorf("Dialect = %v, want sqlite", s.Dialect())
	}
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	seedUser(t, s, "u1")
	s.Close()

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s.Close()
	if u, _ := s.GetUser(ctx, "u1"); u == nil {
		t.Error("user should survive reopen")
	}
}

func TestOpen_Ping(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
}

// ─── Users ──────────────────────────────────────────────────────────────────

func TestUsers_CreateGetList(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")
	seedUser(t, s, "u2")

	got, err := s.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser() error: %v", err)
	}
	if got == nil || got.Name != "user u1" || got.Timezone != "UTC" {
		t.Fatalf("GetUser() = %+v", got)
	}
	if !got.CreatedAt.Equal(epoch) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, epoch)
	}

	missing, err := s.GetUser(ctx, "nobody")
	if err != nil || missing != nil {
		t.Errorf("GetUser(missing) = %v, %v; want nil, nil", missing, err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}

func TestUsers_UpdateProgressionVersionCheck(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")

	p := domain.ProgressionState{TotalXP: 62, StatStrength: 3, StatDiscipline: 0.25}
	err := s.Atomically(ctx, func(tx domain.Tx) error {
		return tx.UpdateProgression(ctx, "u1", 0, p)
	})
	if err != nil {
		t.Fatalf("UpdateProgression() error: %v", err)
	}

	got, _ := s.GetUser(ctx, "u1")
	if got.Version != 1 {
		t.Errorf("Version = %d, want 1", got.Version)
	}
	if got.Progression.TotalXP != 62 || got.Progression.StatDiscipline != 0.25 {
		t.Errorf("Progression = %+v", got.Progression)
	}

	// Writing again against version 0 must fail.
	err = s.Atomically(ctx, func(tx domain.Tx) error {
		return tx.UpdateProgression(ctx, "u1", 0, domain.ProgressionState{TotalXP: 1})
	})
	if !errors.Is(err, domain.ErrStaleWrite) {
		t.Fatalf("expected ErrStaleWrite, got %v", err)
	}
	got, _ = s.GetUser(ctx, "u1")
	if got.Progression.TotalXP != 62 {
		t.Errorf("stale write must not land, TotalXP = %d", got.Progression.TotalXP)
	}
}

// ─── Tasks ──────────────────────────────────────────────────────────────────

func TestTasks_InsertGet(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")
	seedTask(t, s, "u1", "t1", epoch)

	got, err := s.GetTask(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("GetTask() error: %v", err)
	}
	if got == nil {
		t.Fatal("GetTask() returned nil")
	}
	if got.Category != domain.StatStrength || got.Difficulty != domain.DifficultyMedium {
		t.Errorf("enums round-trip: %s / %s", got.Category, got.Difficulty)
	}
	if !got.IsHabit || got.HabitFrequency != domain.HabitDaily {
		t.Errorf("habit fields: %v / %s", got.IsHabit, got.HabitFrequency)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "fitness" {
		t.Errorf("Tags = %v", got.Tags)
	}
	if got.LastCompletedAt != nil {
		t.Errorf("LastCompletedAt = %v, want nil", got.LastCompletedAt)
	}

	// Another user's task is invisible.
	seedUser(t, s, "u2")
	if other, _ := s.GetTask(ctx, "u2", "t1"); other != nil {
		t.Error("u2 should not see u1's task")
	}
}

func TestTasks_ListFilter(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")
	seedTask(t, s, "u1", "t1", epoch)
	seedTask(t, s, "u1", "t2", epoch.Add(time.Minute))

	one := domain.Task{
		ID: "t3", UserID: "u1", Title: "budget", Category: domain.StatWealth,
		Difficulty: domain.DifficultyHard, EstimatedMinutes: 45,
		CreatedAt: epoch.Add(2 * time.Minute), UpdatedAt: epoch,
	}
	if err := s.InsertTask(ctx, one); err != nil {
		t.Fatalf("InsertTask() error: %v", err)
	}

	all, _ := s.ListTasks(ctx, "u1", domain.TaskFilter{})
	if len(all) != 3 || all[0].ID != "t3" {
		t.Fatalf("expected 3 tasks newest first, got %d (first %v)", len(all), all)
	}

	wealth := domain.StatWealth
	hard := domain.DifficultyHard
	notHabit := false
	tests := []struct {
		name string
		f    domain.TaskFilter
		want int
	}{
		{"by category", domain.TaskFilter{Category: &wealth}, 1},
		{"by difficulty", domain.TaskFilter{Difficulty: &hard}, 1},
		{"by habit flag", domain.TaskFilter{IsHabit: &notHabit}, 1},
		{"combined", domain.TaskFilter{Category: &wealth, IsHabit: &notHabit}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListTasks(ctx, "u1", tt.f)
			if err != nil {
				t.Fatalf("ListTasks() error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d, got %d", tt.want, len(got))
			}
		})
	}
}

func TestTasks_UpdateDelete(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")
	task := seedTask(t, s, "u1", "t1", epoch)

	task.Title = "Evening workout"
	task.Tags = nil
	task.UpdatedAt = epoch.Add(time.Hour)
	if err := s.UpdateTask(ctx, task); err != nil {
		t.Fatalf("UpdateTask() error: %v", err)
	}
	got, _ := s.GetTask(ctx, "u1", "t1")
	if got.Title != "Evening workout" || len(got.Tags) != 0 || got.Version != 1 {
		t.Errorf("after update: %+v", got)
	}

	if err := s.DeleteTask(ctx, "u1", "t1"); err != nil {
		t.Fatalf("DeleteTask() error: %v", err)
	}
	if err := s.DeleteTask(ctx, "u1", "t1"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("second delete: expected ErrTaskNotFound, got %v", err)
	}
	task.ID = "missing"
	if err := s.UpdateTask(ctx, task); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("update missing: expected ErrTaskNotFound, got %v", err)
	}
}

func TestTasks_UpdateStreakVersionCheck(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")
	seedTask(t, s, "u1", "t1", epoch)

	now := epoch.Add(24 * time.Hour)
	h := domain.HabitStreakState{LastCompletedAt: &now, StreakCurrent: 4, StreakLongest: 7}
	err := s.Atomically(ctx, func(tx domain.Tx) error {
		return tx.UpdateStreak(ctx, "u1", "t1", 0, h)
	})
	if err != nil {
		t.Fatalf("UpdateStreak() error: %v", err)
	}

	got, _ := s.GetTask(ctx, "u1", "t1")
	if got.StreakCurrent != 4 || got.StreakLongest != 7 {
		t.Errorf("streak = %d/%d, want 4/7", got.StreakCurrent, got.StreakLongest)
	}
	if got.LastCompletedAt == nil || !got.LastCompletedAt.Equal(now) {
		t.Errorf("LastCompletedAt = %v, want %v", got.LastCompletedAt, now)
	}

	err = s.Atomically(ctx, func(tx domain.Tx) error {
		return tx.UpdateStreak(ctx, "u1", "t1", 0, h)
	})
	if !errors.Is(err, domain.ErrStaleWrite) {
		t.Errorf("expected ErrStaleWrite, got %v", err)
	}
}

// ─── Quests ─────────────────────────────────────────────────────────────────

func TestQuests_InsertIdempotent(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")

	qs := []domain.Quest{
		{ID: "q1", UserID: "u1", Day: "2026-03-10", Title: "Read 5 pages", Category: domain.StatIntelligence, Difficulty: domain.DifficultyEasy, CreatedAt: epoch},
		{ID: "q2", UserID: "u1", Day: "2026-03-10", Title: "Save $5", Category: domain.StatWealth, Difficulty: domain.DifficultyEasy, CreatedAt: epoch},
	}
	n, err := s.InsertQuests(ctx, qs)
	if err != nil {
		t.Fatalf("InsertQuests() error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 inserted, got %d", n)
	}
	// Same titles, new ids: skipped.
	qs[0].ID, qs[1].ID = "q3", "q4"
	n, err = s.InsertQuests(ctx, qs)
	if err != nil {
		t.Fatalf("second InsertQuests() error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected duplicates to insert nothing, got %d", n)
	}

	got, err := s.ListQuestsForDay(ctx, "u1", "2026-03-10")
	if err != nil {
		t.Fatalf("ListQuestsForDay() error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 quests, got %d", len(got))
	}
	if other, _ := s.ListQuestsForDay(ctx, "u1", "2026-03-11"); len(other) != 0 {
		t.Errorf("expected no quests on another day, got %d", len(other))
	}
}

func TestQuests_MarkCompletedOnce(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")
	q := domain.Quest{ID: "q1", UserID: "u1", Day: "2026-03-10", Title: "Go for a walk", Category: domain.StatStrength, Difficulty: domain.DifficultyMedium, CreatedAt: epoch}
	if _, err := s.InsertQuests(ctx, []domain.Quest{q}); err != nil {
		t.Fatalf("InsertQuests() error: %v", err)
	}

	mark := func() error {
		return s.Atomically(ctx, func(tx domain.Tx) error {
			return tx.MarkQuestCompleted(ctx, "u1", "q1", epoch.Add(time.Hour))
		})
	}
	if err := mark(); err != nil {
		t.Fatalf("MarkQuestCompleted() error: %v", err)
	}
	if err := mark(); !errors.Is(err, domain.ErrQuestCompleted) {
		t.Errorf("expected ErrQuestCompleted, got %v", err)
	}

	got, _ := s.GetQuest(ctx, "u1", "q1")
	if !got.Completed || got.CompletedAt == nil {
		t.Errorf("quest should be completed: %+v", got)
	}
}

// ─── Completions & Transactions ─────────────────────────────────────────────

func TestCompletions_ListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")

	err := s.Atomically(ctx, func(tx domain.Tx) error {
		for i, id := range []string{"c1", "c2", "c3"} {
			c := domain.Completion{
				ID: id, UserID: "u1", TaskID: "t1", ActualMinutes: 10 * (i + 1),
				XPEarned: int64(12 + i), CompletedAt: epoch.Add(time.Duration(i) * time.Hour),
			}
			if err := tx.InsertCompletion(ctx, c); err != nil {
				return err
			}
		}
		return tx.InsertCompletion(ctx, domain.Completion{
			ID: "c4", UserID: "u1", QuestID: "q1", ActualMinutes: 15, XPEarned: 15,
			Notes: "Daily Quest", CompletedAt: epoch.Add(-time.Hour),
		})
	})
	if err != nil {
		t.Fatalf("InsertCompletion() error: %v", err)
	}

	all, err := s.ListCompletions(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("ListCompletions() error: %v", err)
	}
	if len(all) != 4 || all[0].ID != "c3" || all[3].ID != "c4" {
		t.Fatalf("unexpected order: %+v", all)
	}
	if all[3].TaskID != "" || all[3].QuestID != "q1" || all[3].Notes != "Daily Quest" {
		t.Errorf("quest completion fields: %+v", all[3])
	}

	two, _ := s.ListCompletions(ctx, "u1", 2)
	if len(two) != 2 {
		t.Errorf("limit 2: got %d", len(two))
	}
}

func TestAtomically_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "u1")

	boom := errors.New("boom")
	err := s.Atomically(ctx, func(tx domain.Tx) error {
		if err := tx.UpdateProgression(ctx, "u1", 0, domain.ProgressionState{TotalXP: 500}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := s.GetUser(ctx, "u1")
	if got.Progression.TotalXP != 0 || got.Version != 0 {
		t.Errorf("update should be rolled back, got %+v v%d", got.Progression, got.Version)
	}
}
