package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type CompletionRepo struct {
	db *sql.DB
}

func NewCompletionRepo(db *sql.DB) *CompletionRepo {
	return &CompletionRepo{db: db}
}

func (r *CompletionRepo) Insert(ctx context.Context, c Completion) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO quest_completions (quest_id, completed_at, xp_awarded, gold_awarded)
		VALUES (?, ?, ?, ?)
	`, c.QuestID, c.CompletedAt.UTC(), c.XPAwarded, c.GoldAwarded)
	if err != nil {
		return 0, fmt.Errorf("completion insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("completion last insert id: %w", err)
	}
	return id, nil
}

// ListRecent returns up to limit completions, newest first. limit <= 0 means all.
func (r *CompletionRepo) ListRecent(ctx context.Context, limit int) ([]Completion, error) {
	query := `
		SELECT id, quest_id, completed_at, xp_awarded, gold_awarded
		FROM quest_completions
		ORDER BY completed_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("completion list: %w", err)
	}
	defer rows.Close()

	var out []Completion
	for rows.Next() {
		var c Completion
		if err := rows.Scan(&c.ID, &c.QuestID, &c.CompletedAt, &c.XPAwarded, &c.GoldAwarded); err != nil {
			return nil, fmt.Errorf("completion scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("completion rows: %w", err)
	}
	return out, nil
}

func (r *CompletionRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM quest_completions`); err != nil {
		return fmt.Errorf("completion delete all: %w", err)
	}
	return nil
}
