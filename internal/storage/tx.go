package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// execEach runs query once per key inside one transaction, so a multi-key
// write either lands whole or not at all.
func execEach(ctx context.Context, db *sql.DB, op, query string, keys []string) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%s: prepare: %w", op, err)
	}
	defer stmt.Close()

	for _, k := range keys {
		if _, err = stmt.ExecContext(ctx, k); err != nil {
			return fmt.Errorf("%s %s: %w", op, k, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}
