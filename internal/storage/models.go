package storage

import (
	"context"
	"time"
)

// Store is a flat key-value backend. Values are opaque bytes (JSON blobs
// written by the Gateway). Get reports found=false for absent keys.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Journal is implemented by backends that keep an append-only log of quest
// completions alongside the key-value blobs.
type Journal interface {
	RecordCompletion(ctx context.Context, c Completion) error
	ListCompletions(ctx context.Context, limit int) ([]Completion, error)
	ClearJournal(ctx context.Context) error
}

type Completion struct {
	ID          int64     `json:"id"`
	QuestID     string    `json:"questId"`
	CompletedAt time.Time `json:"completedAt"`
	XPAwarded   float64   `json:"xpAwarded"`
	GoldAwarded int       `json:"goldAwarded"`
}
