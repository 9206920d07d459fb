package sqlstore

import (
	"context"
	"database/sql"

	"github.com/lifexp-app/lifexp/internal/domain"
)

const completionColumns = `id, user_id, task_id, quest_id, actual_minutes, xp_earned, notes, completed_at`

// InsertCompletion appends a completion record.
func (t txQueries) InsertCompletion(ctx context.Context, c domain.Completion) error {
	_, err := t.exec(ctx,
		`INSERT INTO completions (`+completionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, nullableString(c.TaskID), nullableString(c.QuestID),
		c.ActualMinutes, c.XPEarned, c.Notes, c.CompletedAt.Unix(),
	)
	return err
}

// ListCompletions returns the user's most recent completions, newest first.
// A limit <= 0 returns all of them.
func (s *Store) ListCompletions(ctx context.Context, userID string, limit int) ([]domain.Completion, error) {
	query := `SELECT ` + completionColumns + ` FROM completions WHERE user_id = ?
		ORDER BY completed_at DESC, id ASC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Completion
	for rows.Next() {
		var c domain.Completion
		var taskID, questID sql.NullString
		var completedAt int64
		if err := rows.Scan(&c.ID, &c.UserID, &taskID, &questID, &c.ActualMinutes,
			&c.XPEarned, &c.Notes, &completedAt); err != nil {
			return nil, err
		}
		c.TaskID = taskID.String
		c.QuestID = questID.String
		c.CompletedAt = fromUnix(completedAt)
		out = append(out, c)
	}
	return out, rows.Err()
}
