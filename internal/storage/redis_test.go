package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T, prefix string) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), prefix)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s, mr := newTestRedis(t, "eq:")
	ctx := context.Background()

	if _, found, err := s.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("Get(missing) found=%v err=%v, want not found", found, err)
	}
	if err := s.Set(ctx, "a", []byte(`{"x":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "a", []byte(`{"x":2}`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if err := s.Set(ctx, "b", []byte(`[]`)); err != nil {
		t.Fatalf("Set b: %v", err)
	}

	v, found, err := s.Get(ctx, "a")
	if err != nil || !found || string(v) != `{"x":2}` {
		t.Fatalf("Get(a)=%s found=%v err=%v", v, found, err)
	}
	if got, err := mr.Get("eq:a"); err != nil || got != `{"x":2}` {
		t.Fatalf("raw eq:a=%q err=%v", got, err)
	}
	if mr.Exists("a") {
		t.Fatalf("unprefixed key written")
	}

	if err := s.Delete(ctx, "a", "b", "never-existed"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := s.Get(ctx, "a"); found {
		t.Fatalf("expected a to be deleted")
	}
	if err := s.Delete(ctx); err != nil {
		t.Fatalf("Delete(): %v", err)
	}
}

func TestRedisPrefixesIsolateProfiles(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	ada := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "ada:")
	bob := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "bob:")
	defer ada.Close()
	defer bob.Close()

	if err := ada.Set(ctx, "player", []byte(`{"name":"Ada"}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, found, _ := bob.Get(ctx, "player"); found {
		t.Fatalf("bob sees ada's player")
	}
	_ = ada.RecordCompletion(ctx, Completion{QuestID: "q1"})
	if got, _ := bob.ListCompletions(ctx, 0); len(got) != 0 {
		t.Fatalf("bob journal=%+v", got)
	}
}

func TestRedisJournal(t *testing.T) {
	s, mr := newTestRedis(t, "eq:")
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"q1", "q2", "q3"} {
		c := Completion{QuestID: id, CompletedAt: base.Add(time.Duration(i) * time.Hour), XPAwarded: 10, GoldAwarded: 2}
		if err := s.RecordCompletion(ctx, c); err != nil {
			t.Fatalf("RecordCompletion %s: %v", id, err)
		}
	}

	got, err := s.ListCompletions(ctx, 2)
	if err != nil {
		t.Fatalf("ListCompletions: %v", err)
	}
	if len(got) != 2 || got[0].QuestID != "q3" || got[1].QuestID != "q2" {
		t.Fatalf("ListCompletions=%+v, want q3,q2", got)
	}
	if got[0].ID != 3 || !got[0].CompletedAt.Equal(base.Add(2*time.Hour)) || got[0].XPAwarded != 10 {
		t.Fatalf("newest=%+v", got[0])
	}

	all, _ := s.ListCompletions(ctx, 0)
	if len(all) != 3 {
		t.Fatalf("ListCompletions(0) len=%d, want 3", len(all))
	}

	if err := s.ClearJournal(ctx); err != nil {
		t.Fatalf("ClearJournal: %v", err)
	}
	got, err = s.ListCompletions(ctx, 0)
	if err != nil || len(got) != 0 {
		t.Fatalf("after clear got=%d err=%v", len(got), err)
	}
	if mr.Exists("eq:journal:seq") {
		t.Fatalf("sequence survived ClearJournal")
	}
	// Ids restart once the journal is cleared.
	_ = s.RecordCompletion(ctx, Completion{QuestID: "q4"})
	if got, _ := s.ListCompletions(ctx, 1); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("after restart=%+v", got)
	}
}

func TestRedisStoreReportsServerErrors(t *testing.T) {
	s, mr := newTestRedis(t, "eq:")
	mr.Close()
	if _, _, err := s.Get(context.Background(), "a"); err == nil {
		t.Fatalf("Get against a closed server succeeded")
	}
	if err := s.Set(context.Background(), "a", []byte("1")); err == nil {
		t.Fatalf("Set against a closed server succeeded")
	}
}
