package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"eduquest/internal/logger"
)

// Gateway stores named JSON blobs on top of a Store. Reads never fail: an
// absent key, a backend error and an unparseable blob all mean "use the
// default". Writes return their error so the caller can decide how to
// surface it; the gateway only logs.
type Gateway struct {
	store Store
	log   *logger.Logger
}

func NewGateway(store Store, log *logger.Logger) *Gateway {
	if log == nil {
		log = logger.Nop()
	}
	return &Gateway{store: store, log: log}
}

func (g *Gateway) Store() Store { return g.store }

// Journal returns the backend's completion journal if it keeps one.
func (g *Gateway) Journal() (Journal, bool) {
	j, ok := g.store.(Journal)
	return j, ok
}

// Load decodes key into dst and reports whether it did. On false the
// contents of dst are unspecified; LoadOr wraps this with a scratch value.
func (g *Gateway) Load(ctx context.Context, key string, dst any) bool {
	raw, found, err := g.store.Get(ctx, key)
	if err != nil {
		g.log.Error("load failed, using default", "key", key, "error", err)
		return false
	}
	if !found {
		g.log.Debug("key absent, using default", "key", key)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		g.log.Warn("corrupt blob, using default", "key", key, "error", err)
		return false
	}
	return true
}

// LoadOr returns the decoded value of key, or def when it is absent or
// malformed.
func LoadOr[T any](ctx context.Context, g *Gateway, key string, def T) T {
	var v T
	if !g.Load(ctx, key, &v) {
		return def
	}
	return v
}

func (g *Gateway) Save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		g.log.Error("encode failed", "key", key, "error", err)
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := g.store.Set(ctx, key, data); err != nil {
		g.log.Error("save failed", "key", key, "error", err)
		return err
	}
	g.log.Debug("saved", "key", key, "bytes", len(data))
	return nil
}

func (g *Gateway) Remove(ctx context.Context, keys ...string) error {
	if err := g.store.Delete(ctx, keys...); err != nil {
		g.log.Error("remove failed", "keys", keys, "error", err)
		return err
	}
	return nil
}
