package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"eduquest/internal/catalog"
	"eduquest/internal/logger"
	"eduquest/internal/storage"
)

type Options struct {
	Catalog   *catalog.Catalog
	Gateway   *storage.Gateway
	Presenter Presenter
	// Rules defaults to DefaultRules when nil.
	Rules *Rules
	Log   *logger.Logger
	Now   func() time.Time
}

// Service owns the game State. Every exported operation validates first and
// mutates only when all checks pass, then writes each touched blob back.
type Service struct {
	mu sync.Mutex

	cat   *catalog.Catalog
	gw    *storage.Gateway
	pres  Presenter
	rules Rules
	log   *logger.Logger
	now   func() time.Time

	st State

	touched map[string]bool
	dirty   map[string]bool
	pending []Notification
	views   []string
	// journal holds completions not yet appended to the backend journal.
	journal []storage.Completion
}

func New(ctx context.Context, opts Options) (*Service, error) {
	if opts.Catalog == nil {
		return nil, errors.New("engine: catalog is required")
	}
	if opts.Gateway == nil {
		return nil, errors.New("engine: gateway is required")
	}
	rules := DefaultRules()
	if opts.Rules != nil {
		rules = *opts.Rules
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("engine: rules: %w", err)
	}
	s := &Service{
		cat:     opts.Catalog,
		gw:      opts.Gateway,
		pres:    opts.Presenter,
		rules:   rules,
		log:     opts.Log,
		now:     opts.Now,
		touched: map[string]bool{},
		dirty:   map[string]bool{},
	}
	if s.pres == nil {
		s.pres = NopPresenter{}
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.lock()
	defer s.unlock()

	st, absent := loadState(ctx, s.gw, s.cat, s.rules, s.now().UTC())
	s.st = st
	for _, k := range absent {
		s.touch(k)
	}
	s.commit(ctx)
	s.log.Debug("state loaded", "level", st.Profile.Level, "quests", len(st.Quests), "rewritten", absent)
	return s, nil
}

func (s *Service) Catalog() *catalog.Catalog { return s.cat }
func (s *Service) Rules() Rules               { return s.rules }

// Snapshot returns a deep copy of the current state.
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Clone()
}

func (s *Service) lock() { s.mu.Lock() }

// unlock releases the state lock and then delivers queued notifications
// and view switches.
func (s *Service) unlock() {
	pending, views := s.pending, s.views
	s.pending, s.views = nil, nil
	s.mu.Unlock()
	for _, n := range pending {
		s.pres.Notify(n)
	}
	for _, v := range views {
		s.pres.ShowView(v)
	}
}

func (s *Service) notify(sev Severity, format string, args ...any) {
	s.pending = append(s.pending, Notification{Message: fmt.Sprintf(format, args...), Severity: sev})
}

// fail queues an error notification for err and returns it.
func (s *Service) fail(err *Error) error {
	s.notify(SeverityError, "%s", err.Msg)
	s.log.Debug("operation refused", "op", err.Op, "reason", err.Msg)
	return err
}

func (s *Service) touch(keys ...string) {
	for _, k := range keys {
		s.touched[k] = true
	}
}

// commit writes every touched blob. A failed write keeps the in-memory
// change, marks the key dirty and warns the player.
func (s *Service) commit(ctx context.Context) {
	s.writeJournal(ctx)
	if len(s.touched) == 0 {
		return
	}
	var failed []string
	for _, k := range AllKeys {
		if !s.touched[k] {
			continue
		}
		delete(s.touched, k)
		if err := s.saveKey(ctx, k); err != nil {
			s.dirty[k] = true
			failed = append(failed, k)
			continue
		}
		delete(s.dirty, k)
	}
	if len(failed) > 0 {
		s.log.Warn("changes not saved", "keys", failed)
		s.notify(SeverityWarning, "Could not save your progress; changes are unsaved until the next successful save.")
	}
}

// writeJournal appends queued completions. The journal is history only, so
// a failed append is logged and dropped.
func (s *Service) writeJournal(ctx context.Context) {
	entries := s.journal
	s.journal = nil
	j, ok := s.gw.Journal()
	if !ok {
		return
	}
	for _, c := range entries {
		if err := j.RecordCompletion(ctx, c); err != nil {
			s.log.Warn("journal append failed", "quest", c.QuestID, "error", err)
		}
	}
}

func (s *Service) saveKey(ctx context.Context, key string) error {
	v := s.st.blob(key)
	if v == nil {
		return s.gw.Remove(ctx, key)
	}
	return s.gw.Save(ctx, key, v)
}

// Unsaved lists keys whose last write failed.
func (s *Service) Unsaved() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.dirty))
	for k := range s.dirty {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Flush retries every unsaved key and returns the first error.
func (s *Service) Flush(ctx context.Context) error {
	s.lock()
	defer s.unlock()

	var firstErr error
	for _, k := range AllKeys {
		if !s.dirty[k] {
			continue
		}
		if err := s.saveKey(ctx, k); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("flush %s: %w", k, err)
			}
			continue
		}
		delete(s.dirty, k)
	}
	if firstErr == nil && len(s.dirty) == 0 {
		s.log.Info("unsaved changes flushed")
	}
	return firstErr
}
