package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lifexp-app/lifexp/internal/domain"
)

const questColumns = `id, user_id, day, title, category, difficulty, completed, completed_at, created_at`

// InsertQuests stores a day's quests in one transaction. A quest whose
// (user, day, title) already exists is skipped, so concurrent generators
// cannot issue duplicates. It returns how many quests were inserted.
func (s *Store) InsertQuests(ctx context.Context, qs []domain.Quest) (int, error) {
	inserted := 0
	err := s.Atomically(ctx, func(tx domain.Tx) error {
		inserted = 0
		r := tx.(txQueries)
		for _, q := range qs {
			res, err := r.exec(ctx,
				`INSERT INTO quests (`+questColumns+`)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
				 ON CONFLICT (user_id, day, title) DO NOTHING`,
				q.ID, q.UserID, q.Day, q.Title, string(q.Category), string(q.Difficulty),
				q.Completed, nullableUnix(q.CompletedAt), q.CreatedAt.Unix(),
			)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// GetQuest returns the user's quest or nil if absent.
func (s *Store) GetQuest(ctx context.Context, userID, id string) (*domain.Quest, error) {
	row := s.queryRow(ctx, `SELECT `+questColumns+` FROM quests WHERE id = ? AND user_id = ?`, id, userID)
	return scanQuest(row)
}

// ListQuestsForDay returns the quests issued to the user for day (YYYY-MM-DD).
func (s *Store) ListQuestsForDay(ctx context.Context, userID, day string) ([]domain.Quest, error) {
	rows, err := s.query(ctx,
		`SELECT `+questColumns+` FROM quests WHERE user_id = ? AND day = ?
		 ORDER BY created_at ASC, title ASC`, userID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quests []domain.Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		quests = append(quests, *q)
	}
	return quests, rows.Err()
}

// MarkQuestCompleted flips an open quest to completed.
func (t txQueries) MarkQuestCompleted(ctx context.Context, userID, questID string, at time.Time) error {
	res, err := t.exec(ctx,
		`UPDATE quests SET completed = ?, completed_at = ?
		 WHERE id = ? AND user_id = ? AND completed = ?`,
		true, at.Unix(), questID, userID, false,
	)
	return expectOne(res, err, domain.ErrQuestCompleted)
}

func scanQuest(s scanner) (*domain.Quest, error) {
	var q domain.Quest
	var category, difficulty string
	var completedAt sql.NullInt64
	var createdAt int64
	err := s.Scan(&q.ID, &q.UserID, &q.Day, &q.Title, &category, &difficulty,
		&q.Completed, &completedAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	q.Category = domain.StatCategory(category)
	q.Difficulty = domain.Difficulty(difficulty)
	q.CompletedAt = fromNullableUnix(completedAt)
	q.CreatedAt = fromUnix(createdAt)
	return &q, nil
}
