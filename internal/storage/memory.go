package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a process-local Store, used by tests and `--store memory`.
type MemoryStore struct {
	mu          sync.RWMutex
	data        map[string][]byte
	completions []Completion
	nextID      int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.data))
	for k := range m.data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *MemoryStore) RecordCompletion(ctx context.Context, c Completion) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	c.ID = m.nextID
	m.completions = append(m.completions, c)
	return nil
}

func (m *MemoryStore) ListCompletions(ctx context.Context, limit int) ([]Completion, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Completion, 0, len(m.completions))
	for i := len(m.completions) - 1; i >= 0; i-- {
		out = append(out, m.completions[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) ClearJournal(ctx context.Context) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completions = nil
	return nil
}

func (m *MemoryStore) Close() error { return nil }
