package engine

import (
	"context"
	"math"
	"strings"
)

type XPResult struct {
	Amount            float64
	LevelBefore       int
	LevelAfter        int
	SkillPointsGained int
	BonusGold         int
	Capped            bool
}

func (r XPResult) LevelUps() int { return r.LevelAfter - r.LevelBefore }

// AddXP grants amount XP, resolving every level-up it causes, plus bonus gold.
// subject, when it names a tracked subject, also receives the XP.
func (s *Service) AddXP(ctx context.Context, amount float64, subject string) (XPResult, error) {
	s.lock()
	defer s.unlock()

	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return XPResult{}, s.fail(invalid("add xp", "XP amount must be a non-negative number, got %v", amount))
	}
	res := s.addXP(amount, subject)
	s.evaluateAchievements()
	s.commit(ctx)
	return res, nil
}

func (s *Service) addXP(amount float64, subject string) XPResult {
	p := &s.st.Profile
	res := XPResult{Amount: amount, LevelBefore: p.Level}

	xp := p.XP + amount
	level := p.Level
	for {
		th, ok := s.rules.Threshold(level)
		if !ok {
			if last, ok := s.rules.Threshold(level - 1); ok && xp > last {
				xp = last
				res.Capped = true
			}
			break
		}
		if xp < th {
			break
		}
		xp -= th
		level++
		res.SkillPointsGained += s.rules.SkillPointsPerLevel
		s.notify(SeveritySuccess, "LEVEL UP! You are now Level %d!", level)
	}

	p.XP = xp
	p.Level = level
	res.LevelAfter = level
	res.BonusGold = int(math.Floor(amount / s.rules.GoldPerXP))
	p.Gold += res.BonusGold

	if subject != "" {
		if sp, ok := p.Subjects[subject]; ok {
			sp.XP += amount
			p.Subjects[subject] = sp
		}
	}
	s.touch(KeyPlayer)

	if res.SkillPointsGained > 0 {
		s.st.Skills.Points += res.SkillPointsGained
		s.touch(KeySkills)
		s.notify(SeverityInfo, "Gained %d Skill Point(s)!", res.SkillPointsGained)
	}
	s.log.Debug("xp added", "amount", amount, "subject", subject, "level", level, "xp", xp)
	return res
}

// AddGold credits gold. Negative amounts are refused; spending goes through
// debit, which checks the balance.
func (s *Service) AddGold(ctx context.Context, amount int) error {
	s.lock()
	defer s.unlock()

	if amount < 0 {
		return s.fail(invalid("add gold", "gold amount must be >= 0, got %d", amount))
	}
	s.addGold(amount)
	s.commit(ctx)
	return nil
}

func (s *Service) addGold(amount int) {
	s.st.Profile.Gold += amount
	s.touch(KeyPlayer)
}

func (s *Service) debit(op string, amount int) *Error {
	if s.st.Profile.Gold < amount {
		return precondition(op, "Not enough gold: need %d, have %d.", amount, s.st.Profile.Gold)
	}
	s.st.Profile.Gold -= amount
	s.touch(KeyPlayer)
	return nil
}

// AddAchievement records an achievement once. It reports whether it was new.
func (s *Service) AddAchievement(ctx context.Context, id, name string) (bool, error) {
	s.lock()
	defer s.unlock()

	id = strings.TrimSpace(id)
	if id == "" {
		return false, s.fail(invalid("add achievement", "achievement id is required"))
	}
	added := s.addAchievement(id, name)
	s.commit(ctx)
	return added, nil
}

func (s *Service) addAchievement(id, name string) bool {
	if s.st.Profile.HasAchievement(id) {
		return false
	}
	s.st.Profile.Achievements = append(s.st.Profile.Achievements, id)
	s.touch(KeyPlayer)
	if name == "" {
		name = id
	}
	s.notify(SeveritySuccess, "Achievement Unlocked: %q!", name)
	return true
}
