package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		// Audit trail of completions; the quest blob only keeps the latest stamp.
		`CREATE TABLE IF NOT EXISTS quest_completions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			quest_id TEXT NOT NULL,
			completed_at DATETIME NOT NULL,
			xp_awarded REAL NOT NULL,
			gold_awarded INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_quest_completions_completed_at ON quest_completions(completed_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
