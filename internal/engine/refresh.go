package engine

import (
	"context"
	"time"

	"eduquest/internal/catalog"
)

type ResetResult struct {
	Ran   bool
	Reset []string
}

// CheckDailyResets restarts completed daily quests once the refresh period
// has passed since the last stamp. A missing stamp counts as overdue.
func (s *Service) CheckDailyResets(ctx context.Context) ResetResult {
	s.lock()
	defer s.unlock()
	res := s.checkDailyResets(s.now().UTC())
	s.commit(ctx)
	return res
}

func (s *Service) checkDailyResets(now time.Time) ResetResult {
	if last := s.st.LastRefresh; last != nil && now.Sub(*last) < s.rules.RefreshInterval {
		return ResetResult{}
	}

	res := ResetResult{Ran: true}
	for i := range s.st.Quests {
		q := &s.st.Quests[i]
		if q.Type != catalog.QuestDaily || !q.IsCompleted {
			continue
		}
		q.IsCompleted = false
		q.Progress = 0
		q.DateCompleted = nil
		res.Reset = append(res.Reset, q.ID)
	}
	if len(res.Reset) > 0 {
		s.touch(KeyQuests)
		s.notify(SeverityInfo, "Daily quests and shop have been refreshed!")
	}
	s.st.LastRefresh = &now
	s.touch(KeyLastRefresh)
	s.log.Debug("daily reset", "reset", res.Reset)
	return res
}

// NextRefresh is when the next daily reset becomes due. The zero time means
// a reset is due now.
func (s *Service) NextRefresh() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.LastRefresh == nil {
		return time.Time{}
	}
	return s.st.LastRefresh.Add(s.rules.RefreshInterval)
}

// Tick runs the time-driven rules: focus regeneration and the daily reset.
// Callers poll it; nothing guarantees it fires on a boundary.
func (s *Service) Tick(ctx context.Context) (FocusResult, ResetResult) {
	s.lock()
	defer s.unlock()
	now := s.now().UTC()
	focus := s.regenerateFocus(now)
	reset := s.checkDailyResets(now)
	s.commit(ctx)
	return focus, reset
}
