package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lifexp-app/lifexp/internal/domain"
)

const userColumns = `id, name, timezone, total_xp, stat_intelligence, stat_strength,
	stat_discipline, stat_wealth, version, created_at`

// CreateUser inserts a new user. Level and title are never stored.
func (s *Store) CreateUser(ctx context.Context, u domain.User) error {
	p := u.Progression
	_, err := s.exec(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Timezone, p.TotalXP, p.StatIntelligence, p.StatStrength,
		p.StatDiscipline, p.StatWealth, u.Version, u.CreatedAt.Unix(),
	)
	return err
}

// GetUser returns the user or nil if absent.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// ListUsers returns every user, oldest first.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := s.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateProgression writes XP and stats if the row is still at version.
func (t txQueries) UpdateProgression(ctx context.Context, userID string, version int64, p domain.ProgressionState) error {
	res, err := t.exec(ctx,
		`UPDATE users SET total_xp = ?, stat_intelligence = ?, stat_strength = ?,
		 stat_discipline = ?, stat_wealth = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		p.TotalXP, p.StatIntelligence, p.StatStrength, p.StatDiscipline, p.StatWealth,
		userID, version,
	)
	return expectOne(res, err, domain.ErrStaleWrite)
}

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	var createdAt int64
	p := &u.Progression
	err := s.Scan(&u.ID, &u.Name, &u.Timezone, &p.TotalXP, &p.StatIntelligence,
		&p.StatStrength, &p.StatDiscipline, &p.StatWealth, &u.Version, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = fromUnix(createdAt)
	return &u, nil
}
