package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key, so several profiles can share one server.
	Prefix string
}

// RedisStore keeps blobs as plain string keys and the completion journal as
// a list (newest first).
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}
	return NewRedisStoreFromClient(client, opts.Prefix), nil
}

func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(k string) string {
	return r.prefix + k
}

func (r *RedisStore) journalKey() string {
	return r.prefix + "journal"
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, r.key(k))
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

func (r *RedisStore) RecordCompletion(ctx context.Context, c Completion) error {
	id, err := r.client.Incr(ctx, r.prefix+"journal:seq").Result()
	if err != nil {
		return fmt.Errorf("redis journal seq: %w", err)
	}
	c.ID = id
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal completion: %w", err)
	}
	if err := r.client.LPush(ctx, r.journalKey(), data).Err(); err != nil {
		return fmt.Errorf("redis journal push: %w", err)
	}
	return nil
}

func (r *RedisStore) ListCompletions(ctx context.Context, limit int) ([]Completion, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	raw, err := r.client.LRange(ctx, r.journalKey(), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis journal range: %w", err)
	}
	out := make([]Completion, 0, len(raw))
	for _, s := range raw {
		var c Completion
		if err := json.Unmarshal([]byte(s), &c); err != nil {
			return nil, fmt.Errorf("unmarshal completion: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *RedisStore) ClearJournal(ctx context.Context) error {
	if err := r.client.Del(ctx, r.journalKey(), r.prefix+"journal:seq").Err(); err != nil {
		return fmt.Errorf("redis journal clear: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
