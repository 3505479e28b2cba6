package engine

import (
	"context"

	"eduquest/internal/catalog"
)

type OnboardingView struct {
	Step      int
	Total     int
	Completed bool
	// Current is nil once the tour is over.
	Current *catalog.OnboardingStep
}

func (s *Service) Onboarding() OnboardingView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onboardingView()
}

func (s *Service) onboardingView() OnboardingView {
	o := s.st.Onboarding
	v := OnboardingView{Step: o.Step, Total: len(s.cat.Onboarding), Completed: o.Completed}
	if !o.Completed && o.Step < len(s.cat.Onboarding) {
		step := s.cat.Onboarding[o.Step]
		v.Current = &step
	}
	return v
}

// AdvanceOnboarding moves the tour to the next step and performs that step's
// action. Moving past the last step finishes the tour.
func (s *Service) AdvanceOnboarding(ctx context.Context) (OnboardingView, error) {
	s.lock()
	defer s.unlock()

	o := &s.st.Onboarding
	if o.Completed {
		return s.onboardingView(), s.fail(precondition("onboarding", "The tour is already finished."))
	}
	o.Step++
	s.touch(KeyOnboarding)
	if o.Step >= len(s.cat.Onboarding) {
		s.finishOnboarding()
	} else if a := s.cat.Onboarding[o.Step].Action; a != nil {
		if err := s.dispatch(*a); err != nil {
			s.log.Warn("onboarding action failed", "step", o.Step, "error", err)
		}
	}
	s.commit(ctx)
	return s.onboardingView(), nil
}

func (s *Service) SkipOnboarding(ctx context.Context) {
	s.lock()
	defer s.unlock()
	if s.st.Onboarding.Completed {
		return
	}
	s.touch(KeyOnboarding)
	s.finishOnboarding()
	s.commit(ctx)
}

// finishOnboarding closes the tour and reveals the standalone quests it was
// holding back. Hidden chain stages stay hidden until their chain reaches
// them.
func (s *Service) finishOnboarding() {
	s.st.Onboarding.Completed = true
	s.st.Onboarding.Step = len(s.cat.Onboarding)
	for i := range s.st.Quests {
		q := &s.st.Quests[i]
		if q.IsHidden && !q.IsChained {
			q.IsHidden = false
			s.touch(KeyQuests)
		}
	}
	s.notify(SeveritySuccess, "Onboarding complete! Your adventure begins!")
	_ = s.dispatch(catalog.Action{Kind: catalog.ActionShowView, View: "dashboard"})
}

// DispatchAction performs a tagged presentation action.
func (s *Service) DispatchAction(ctx context.Context, a catalog.Action) error {
	s.lock()
	defer s.unlock()
	if err := s.dispatch(a); err != nil {
		return s.fail(err)
	}
	s.commit(ctx)
	return nil
}

func (s *Service) dispatch(a catalog.Action) *Error {
	switch a.Kind {
	case catalog.ActionShowView:
		if a.View == "" {
			return invalid("dispatch", "show_view needs a view")
		}
		s.views = append(s.views, a.View)
		s.visitView(a.View)
		return nil
	default:
		return invalid("dispatch", "unknown action %q", a.Kind)
	}
}
