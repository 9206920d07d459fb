package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/lifexp-app/lifexp/internal/infra/sqlstore"
)

// Open connects to PostgreSQL and migrates the schema. A non-empty dsn
// takes precedence over the connection fields in cfg; pool settings always
// come from cfg.
func Open(ctx context.Context, dsn string, cfg Config) (*sqlstore.Store, error) {
	if dsn == "" {
		dsn = cfg.DSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := sqlstore.Migrate(ctx, db, migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return sqlstore.New(db, sqlstore.Postgres), nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                TEXT PRIMARY KEY,
		name              TEXT NOT NULL,
		timezone          TEXT NOT NULL DEFAULT 'UTC',
		total_xp          BIGINT NOT NULL DEFAULT 0,
		stat_intelligence DOUBLE PRECISION NOT NULL DEFAULT 0,
		stat_strength     DOUBLE PRECISION NOT NULL DEFAULT 0,
		stat_discipline   DOUBLE PRECISION NOT NULL DEFAULT 0,
		stat_wealth       DOUBLE PRECISION NOT NULL DEFAULT 0,
		version           BIGINT NOT NULL DEFAULT 0,
		created_at        BIGINT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id                TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title             TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		category          TEXT NOT NULL,
		difficulty        TEXT NOT NULL,
		estimated_minutes INTEGER NOT NULL,
		is_habit          BOOLEAN NOT NULL DEFAULT FALSE,
		habit_frequency   TEXT NOT NULL DEFAULT '',
		tags              TEXT NOT NULL DEFAULT '[]',
		streak_current    INTEGER NOT NULL DEFAULT 0,
		streak_longest    INTEGER NOT NULL DEFAULT 0,
		last_completed_at BIGINT,
		version           BIGINT NOT NULL DEFAULT 0,
		created_at        BIGINT NOT NULL,
		updated_at        BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS quests (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		day          TEXT NOT NULL,
		title        TEXT NOT NULL,
		category     TEXT NOT NULL,
		difficulty   TEXT NOT NULL,
		completed    BOOLEAN NOT NULL DEFAULT FALSE,
		completed_at BIGINT,
		created_at   BIGINT NOT NULL,
		UNIQUE (user_id, day, title)
	)`,

	`CREATE TABLE IF NOT EXISTS completions (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		task_id        TEXT,
		quest_id       TEXT,
		actual_minutes INTEGER NOT NULL,
		xp_earned      BIGINT NOT NULL,
		notes          TEXT NOT NULL DEFAULT '',
		completed_at   BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_completions_user ON completions(user_id, completed_at)`,
}
