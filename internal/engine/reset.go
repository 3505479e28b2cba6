package engine

import (
	"context"

	"eduquest/internal/storage"
)

// ResetGame wipes every saved key and starts over from defaults once the
// player confirms. It reports whether the reset happened.
func (s *Service) ResetGame(ctx context.Context) (bool, error) {
	ok, err := s.pres.Confirm(ctx, "Reset ALL progress? This cannot be undone.")
	if err != nil || !ok {
		s.log.Debug("reset cancelled", "error", err)
		return false, nil
	}

	s.lock()
	defer s.unlock()

	if err := s.gw.Remove(ctx, AllKeys...); err != nil {
		s.notify(SeverityWarning, "Could not clear saved data; starting over in memory.")
	}
	if j, ok := s.gw.Journal(); ok {
		if err := j.ClearJournal(ctx); err != nil {
			s.log.Warn("journal clear failed", "error", err)
		}
	}

	s.st = newState(s.cat, s.rules, s.now().UTC())
	s.journal = nil
	s.dirty = map[string]bool{}
	s.touch(AllKeys...)
	s.commit(ctx)
	s.notify(SeveritySuccess, "Game reset. A new adventure begins!")
	s.log.Info("game reset")
	return true, nil
}

// History returns the most recent quest completions, newest first. Backends
// without a journal return nothing.
func (s *Service) History(ctx context.Context, limit int) ([]storage.Completion, error) {
	j, ok := s.gw.Journal()
	if !ok {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return j.ListCompletions(ctx, limit)
}
