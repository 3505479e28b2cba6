package engine

import (
	"context"
	"fmt"

	"eduquest/internal/catalog"
)

type SkillState string

const (
	SkillUnlocked  SkillState = "unlocked"
	SkillLearnable SkillState = "learnable"
	SkillLocked    SkillState = "locked"
)

type SkillNodeView struct {
	catalog.SkillNode
	State SkillState
	// Missing lists prerequisites not yet unlocked.
	Missing []string
}

type RespecResult struct {
	Refunded int
	GoldPaid int
}

// LearnSkill spends points to unlock a node whose prerequisites are all
// unlocked. Nothing changes on refusal.
func (s *Service) LearnSkill(ctx context.Context, subject, skillID string) error {
	const op = "learn skill"
	s.lock()
	defer s.unlock()

	if _, ok := s.cat.SkillTree(subject); !ok {
		return s.fail(notFound(op, "No skill tree for %q.", subject))
	}
	node, ok := s.cat.SkillNode(subject, skillID)
	if !ok {
		return s.fail(notFound(op, "Skill %q not found in %s.", skillID, subject))
	}
	sd := &s.st.Skills
	if sd.Has(subject, skillID) {
		return s.fail(precondition(op, "%s is already unlocked.", node.Name))
	}
	if missing := s.missingPrereqs(subject, node); len(missing) > 0 {
		return s.fail(precondition(op, "%s requires %v first.", node.Name, missing))
	}
	if sd.Points < node.Cost {
		return s.fail(precondition(op, "Not enough skill points: need %d, have %d.", node.Cost, sd.Points))
	}

	sd.Points -= node.Cost
	sd.UnlockedSkills[subject] = append(sd.UnlockedSkills[subject], skillID)
	if sd.SpentPoints[subject] == nil {
		sd.SpentPoints[subject] = map[string]int{}
	}
	sd.SpentPoints[subject][skillID] = node.Cost
	// The profile blob carries the point total too.
	s.touch(KeySkills, KeyPlayer)
	s.notify(SeveritySuccess, "Skill Learned: %s!", node.Name)
	s.evaluateAchievements()
	s.log.Debug("skill learned", "subject", subject, "skill", skillID, "points", sd.Points)
	s.commit(ctx)
	return nil
}

func (s *Service) missingPrereqs(subject string, node catalog.SkillNode) []string {
	var missing []string
	for _, p := range node.Prerequisites {
		if !s.st.Skills.Has(subject, p) {
			missing = append(missing, p)
		}
	}
	return missing
}

// RespecSkills refunds every spent skill point for a flat gold fee and
// resets all trees to their roots. The player is asked first; a declined or
// failed confirmation changes nothing.
func (s *Service) RespecSkills(ctx context.Context) (RespecResult, error) {
	const op = "respec skills"
	cost := s.rules.RespecCost

	s.lock()
	refund := s.st.Skills.TotalSpent()
	gold := s.st.Profile.Gold
	if gold < cost {
		err := s.fail(precondition(op, "Not enough gold: need %d, have %d.", cost, gold))
		s.unlock()
		return RespecResult{}, err
	}
	s.unlock()

	prompt := fmt.Sprintf("Reset all skill trees for %d gold? %d point(s) will be refunded.", cost, refund)
	ok, err := s.pres.Confirm(ctx, prompt)
	if err != nil || !ok {
		s.log.Debug("respec cancelled", "error", err)
		return RespecResult{}, nil
	}

	s.lock()
	defer s.unlock()

	// State may have moved while the prompt was open.
	if e := s.debit(op, cost); e != nil {
		return RespecResult{}, s.fail(e)
	}
	refund = s.st.Skills.TotalSpent()
	sd := &s.st.Skills
	sd.Points += refund
	sd.UnlockedSkills = map[string][]string{}
	sd.SpentPoints = map[string]map[string]int{}
	for _, t := range s.cat.Trees {
		sd.UnlockedSkills[t.Subject] = t.Roots()
		if sd.UnlockedSkills[t.Subject] == nil {
			sd.UnlockedSkills[t.Subject] = []string{}
		}
		sd.SpentPoints[t.Subject] = map[string]int{}
	}
	s.touch(KeySkills, KeyPlayer)
	s.notify(SeveritySuccess, "Skills reset! %d skill point(s) refunded.", refund)
	s.log.Debug("skills respecced", "refund", refund, "points", sd.Points)
	s.commit(ctx)
	return RespecResult{Refunded: refund, GoldPaid: cost}, nil
}

// SkillTreeView lists a subject's nodes with their state for display.
func (s *Service) SkillTreeView(subject string) ([]SkillNodeView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, ok := s.cat.SkillTree(subject)
	if !ok {
		return nil, notFound("skill tree", "No skill tree for %q.", subject)
	}
	out := make([]SkillNodeView, 0, len(tree.Nodes))
	for _, n := range tree.Nodes {
		v := SkillNodeView{SkillNode: n}
		switch {
		case s.st.Skills.Has(subject, n.ID):
			v.State = SkillUnlocked
		default:
			v.Missing = s.missingPrereqs(subject, n)
			if len(v.Missing) == 0 && s.st.Skills.Points >= n.Cost {
				v.State = SkillLearnable
			} else {
				v.State = SkillLocked
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// SkillSubjects lists subjects with a skill tree, sorted.
func (s *Service) SkillSubjects() []string { return s.cat.TreeSubjects() }
