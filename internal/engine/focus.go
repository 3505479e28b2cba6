package engine

import (
	"context"
	"time"
)

type FocusResult struct {
	Intervals int
	Gained    float64
	Focus     float64
}

// RegenerateFocus credits focus for every whole regen interval since the last
// credit. The stored timestamp advances by exactly the intervals consumed,
// so a partial interval carries over to the next call.
func (s *Service) RegenerateFocus(ctx context.Context) FocusResult {
	s.lock()
	defer s.unlock()
	res := s.regenerateFocus(s.now().UTC())
	s.commit(ctx)
	return res
}

func (s *Service) regenerateFocus(now time.Time) FocusResult {
	p := &s.st.Profile
	res := FocusResult{Focus: p.Focus}

	elapsed := now.Sub(p.LastFocusRegen)
	if elapsed < s.rules.FocusRegenInterval {
		return res
	}
	n := int(elapsed / s.rules.FocusRegenInterval)
	before := p.Focus
	p.Focus = clamp(before+float64(n)*s.rules.FocusRegenRate, 0, s.rules.FocusMax)
	p.LastFocusRegen = p.LastFocusRegen.Add(time.Duration(n) * s.rules.FocusRegenInterval)
	s.touch(KeyPlayer)

	res.Intervals = n
	res.Gained = p.Focus - before
	res.Focus = p.Focus
	if res.Gained > 0 {
		s.notify(SeverityInfo, "Focus regenerated! (+%g)", res.Gained)
	}
	return res
}

// SpendFocus deducts focus for a study action.
func (s *Service) SpendFocus(ctx context.Context, amount float64) error {
	s.lock()
	defer s.unlock()

	if amount <= 0 {
		return s.fail(invalid("spend focus", "focus amount must be > 0"))
	}
	if s.st.Profile.Focus < amount {
		return s.fail(precondition("spend focus", "Not enough focus: need %g, have %g.", amount, s.st.Profile.Focus))
	}
	s.st.Profile.Focus -= amount
	s.touch(KeyPlayer)
	s.commit(ctx)
	return nil
}
