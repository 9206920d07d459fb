// Package sqlite opens the embedded LifeXP database.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/lifexp-app/lifexp/internal/infra/sqlstore"
)

// FileName is the database file created inside the data directory.
const FileName = "lifexp.db"

// Open creates or opens the SQLite database at dir/lifexp.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*sqlstore.Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, FileName)
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer; one connection also serialises transactions.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := sqlstore.Migrate(context.Background(), db, migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return sqlstore.New(db, sqlstore.SQLite), nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                TEXT PRIMARY KEY,
		name              TEXT NOT NULL,
		timezone          TEXT NOT NULL DEFAULT 'UTC',
		total_xp          INTEGER NOT NULL DEFAULT 0,
		stat_intelligence REAL NOT NULL DEFAULT 0,
		stat_strength     REAL NOT NULL DEFAULT 0,
		stat_discipline   REAL NOT NULL DEFAULT 0,
		stat_wealth       REAL NOT NULL DEFAULT 0,
		version           INTEGER NOT NULL DEFAULT 0,
		created_at        INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id                TEXT PRIMARY KEY,
		user_id           TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title             TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		category          TEXT NOT NULL,
		difficulty        TEXT NOT NULL,
		estimated_minutes INTEGER NOT NULL,
		is_habit          BOOLEAN NOT NULL DEFAULT 0,
		habit_frequency   TEXT NOT NULL DEFAULT '',
		tags              TEXT NOT NULL DEFAULT '[]',
		streak_current    INTEGER NOT NULL DEFAULT 0,
		streak_longest    INTEGER NOT NULL DEFAULT 0,
		last_completed_at INTEGER,
		version           INTEGER NOT NULL DEFAULT 0,
		created_at        INTEGER NOT NULL,
		updated_at        INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS quests (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		day          TEXT NOT NULL,
		title        TEXT NOT NULL,
		category     TEXT NOT NULL,
		difficulty   TEXT NOT NULL,
		completed    BOOLEAN NOT NULL DEFAULT 0,
		completed_at INTEGER,
		created_at   INTEGER NOT NULL,
		UNIQUE (user_id, day, title)
	)`,

	`CREATE TABLE IF NOT EXISTS completions (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		task_id        TEXT,
		quest_id       TEXT,
		actual_minutes INTEGER NOT NULL,
		xp_earned      INTEGER NOT NULL,
		notes          TEXT NOT NULL DEFAULT '',
		completed_at   INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_completions_user ON completions(user_id, completed_at)`,
}
