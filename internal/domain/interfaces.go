package domain

import (
	"context"
	"time"
)

// ─── Storage Interfaces ─────────────────────────────────────────────────────
// Infrastructure implements these; the application layer depends on them.
// Lookups return (nil, nil) when the row does not exist; UpdateTask and
// DeleteTask return ErrTaskNotFound.

// Store is the persistence collaborator of the progression engine.
type Store interface {
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)

	InsertTask(ctx context.Context, t Task) error
	GetTask(ctx context.Context, userID, id string) (*Task, error)
	ListTasks(ctx context.Context, userID string, f TaskFilter) ([]Task, error)
	UpdateTask(ctx context.Context, t Task) error
	DeleteTask(ctx context.Context, userID, id string) error

	InsertQuests(ctx context.Context, qs []Quest) (int, error)
	GetQuest(ctx context.Context, userID, id string) (*Quest, error)
	ListQuestsForDay(ctx context.Context, userID, day string) ([]Quest, error)

	ListCompletions(ctx context.Context, userID string, limit int) ([]Completion, error)

	// Atomically runs fn inside one transaction; any error rolls it back.
	Atomically(ctx context.Context, fn func(tx Tx) error) error

	Ping(ctx context.Context) error
	Close() error
}

// Tx is the write side used for read-modify-write cycles. Versioned updates
// return ErrStaleWrite when the row changed since it was read.
type Tx interface {
	UpdateProgression(ctx context.Context, userID string, version int64, p ProgressionState) error
	UpdateStreak(ctx context.Context, userID, taskID string, version int64, h HabitStreakState) error
	// MarkQuestCompleted returns ErrQuestCompleted if the quest was already done.
	MarkQuestCompleted(ctx context.Context, userID, questID string, at time.Time) error
	InsertCompletion(ctx context.Context, c Completion) error
}
