package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/lifexp-app/lifexp/internal/domain"
)

const taskColumns = `id, user_id, title, description, category, difficulty, estimated_minutes,
	is_habit, habit_frequency, tags, streak_current, streak_longest, last_completed_at,
	version, created_at, updated_at`

// InsertTask stores a new task.
func (s *Store) InsertTask(ctx context.Context, t domain.Task) error {
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx,
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, t.Description, string(t.Category), string(t.Difficulty),
		t.EstimatedMinutes, t.IsHabit, string(t.HabitFrequency), tags,
		t.StreakCurrent, t.StreakLongest, nullableUnix(t.LastCompletedAt),
		t.Version, t.CreatedAt.Unix(), t.UpdatedAt.Unix(),
	)
	return err
}

// GetTask returns the user's task or nil if absent.
func (s *Store) GetTask(ctx context.Context, userID, id string) (*domain.Task, error) {
	row := s.queryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	return scanTask(row)
}

// ListTasks returns the user's tasks matching f, newest first.
func (s *Store) ListTasks(ctx context.Context, userID string, f domain.TaskFilter) ([]domain.Task, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	if f.Category != nil {
		where = append(where, "category = ?")
		args = append(args, string(*f.Category))
	}
	if f.Difficulty != nil {
		where = append(where, "difficulty = ?")
		args = append(args, string(*f.Difficulty))
	}
	if f.IsHabit != nil {
		where = append(where, "is_habit = ?")
		args = append(args, *f.IsHabit)
	}

	rows, err := s.query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY created_at DESC, id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateTask rewrites the editable fields of a task. Streak columns are
// owned by UpdateStreak and left alone.
func (s *Store) UpdateTask(ctx context.Context, t domain.Task) error {
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return err
	}
	res, err := s.exec(ctx,
		`UPDATE tasks SET title = ?, description = ?, category = ?, difficulty = ?,
		 estimated_minutes = ?, is_habit = ?, habit_frequency = ?, tags = ?,
		 version = version + 1, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		t.Title, t.Description, string(t.Category), string(t.Difficulty),
		t.EstimatedMinutes, t.IsHabit, string(t.HabitFrequency), tags,
		t.UpdatedAt.Unix(), t.ID, t.UserID,
	)
	return expectOne(res, err, domain.ErrTaskNotFound)
}

// DeleteTask removes a task. Completion history keeps its rows.
func (s *Store) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := s.exec(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	return expectOne(res, err, domain.ErrTaskNotFound)
}

// UpdateStreak writes habit streak state if the task is still at version.
func (t txQueries) UpdateStreak(ctx context.Context, userID, taskID string, version int64, h domain.HabitStreakState) error {
	res, err := t.exec(ctx,
		`UPDATE tasks SET streak_current = ?, streak_longest = ?, last_completed_at = ?,
		 version = version + 1
		 WHERE id = ? AND user_id = ? AND version = ?`,
		h.StreakCurrent, h.StreakLongest, nullableUnix(h.LastCompletedAt),
		taskID, userID, version,
	)
	return expectOne(res, err, domain.ErrStaleWrite)
}

func scanTask(s scanner) (*domain.Task, error) {
	var t domain.Task
	var category, difficulty, frequency, tags string
	var lastCompleted sql.NullInt64
	var createdAt, updatedAt int64
	err := s.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &category, &difficulty,
		&t.EstimatedMinutes, &t.IsHabit, &frequency, &tags, &t.StreakCurrent,
		&t.StreakLongest, &lastCompleted, &t.Version, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.Category = domain.StatCategory(category)
	t.Difficulty = domain.Difficulty(difficulty)
	t.HabitFrequency = domain.HabitFrequency(frequency)
	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
		return nil, err
	}
	t.LastCompletedAt = fromNullableUnix(lastCompleted)
	t.CreatedAt = fromUnix(createdAt)
	t.UpdatedAt = fromUnix(updatedAt)
	return &t, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	return string(b), err
}
