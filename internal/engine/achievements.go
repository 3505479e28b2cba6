package engine

import (
	"context"

	"eduquest/internal/catalog"
)

// Achievement represents a badge the player can earn.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Earned      bool
}

// AchievementChecker decides which milestones a state has reached.
type AchievementChecker struct {
	st  *State
	cat *catalog.Catalog
}

func NewAchievementChecker(st *State, cat *catalog.Catalog) *AchievementChecker {
	return &AchievementChecker{st: st, cat: cat}
}

// GetAchievements returns all milestones with whether the state meets them.
func (c *AchievementChecker) GetAchievements() []Achievement {
	return []Achievement{
		// Level milestones
		c.levelAchievement("apprentice", "Apprentice Scholar", "Reach level 2", "🌱", 2),
		c.levelAchievement("adept", "Adept", "Reach level 5", "🌳", 5),
		c.levelAchievement("sage", "Sage", "Reach level 10", "⭐", 10),

		// Quest milestones
		c.questCountAchievement("first_quest", "First Quest", "Complete 1 quest", "✓", 1),
		c.questCountAchievement("questing", "Quest Seeker", "Complete 5 quests", "📋", 5),
		c.questCountAchievement("quest_master", "Quest Master", "Complete 15 quests", "🏆", 15),
		c.chainAchievement("chain_breaker", "Saga Complete", "Finish every stage of a quest chain", "📜"),
		c.battleAchievement("victor", "Concept Victor", "Win a concept battle", "⚔"),

		// Skills
		c.skillCountAchievement("first_skill", "Quick Study", "Learn a skill", "🧠", 1),
		c.skillCountAchievement("polymath", "Polymath", "Learn 5 skills", "📚", 5),

		// Shop and avatar
		c.purchaseAchievement("first_purchase", "Patron of the Emporium", "Buy something in the shop", "🛒"),
		c.avatarAchievement("new_look", "New Look", "Change your avatar", "🎨"),
	}
}

func (c *AchievementChecker) levelAchievement(id, name, desc, icon string, level int) Achievement {
	earned := c.st.Profile.Level >= level
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

func (c *AchievementChecker) questCountAchievement(id, name, desc, icon string, count int) Achievement {
	done := 0
	for _, q := range c.st.Quests {
		if q.IsCompleted {
			done++
		}
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: done >= count}
}

func (c *AchievementChecker) chainAchievement(id, name, desc, icon string) Achievement {
	// chain -> stage -> any quest at that stage done; branches are alternatives
	stages := map[string]map[int]bool{}
	for _, q := range c.st.Quests {
		if !q.IsChained || q.Chain == "" {
			continue
		}
		if stages[q.Chain] == nil {
			stages[q.Chain] = map[int]bool{}
		}
		stages[q.Chain][q.Stage] = stages[q.Chain][q.Stage] || q.IsCompleted
	}
	earned := false
	for _, byStage := range stages {
		all := true
		for _, done := range byStage {
			all = all && done
		}
		if all {
			earned = true
			break
		}
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

func (c *AchievementChecker) battleAchievement(id, name, desc, icon string) Achievement {
	earned := false
	for _, q := range c.st.Quests {
		if q.IsCompleted && q.Condition.Type == CondBattleWon {
			earned = true
			break
		}
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

func (c *AchievementChecker) skillCountAchievement(id, name, desc, icon string, count int) Achievement {
	learned := 0
	for _, m := range c.st.Skills.SpentPoints {
		learned += len(m)
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: learned >= count}
}

func (c *AchievementChecker) purchaseAchievement(id, name, desc, icon string) Achievement {
	earned := len(c.st.Inventory.Items) > 0
	if !earned {
		free := c.cat.FreeParts()
		for layer, parts := range c.st.Inventory.UnlockedAvatarParts {
			if len(parts) > len(free[layer]) {
				earned = true
				break
			}
		}
	}
	if !earned {
		earned = len(c.st.Inventory.UnlockedThemes) > len(c.cat.FreeThemes())
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

func (c *AchievementChecker) avatarAchievement(id, name, desc, icon string) Achievement {
	earned := false
	for layer, part := range c.cat.DefaultAvatar() {
		if c.st.Profile.EquippedAvatar[layer] != part {
			earned = true
			break
		}
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

// CountEarned returns how many achievements have been earned.
func (c *AchievementChecker) CountEarned() int {
	count := 0
	for _, a := range c.GetAchievements() {
		if a.Earned {
			count++
		}
	}
	return count
}

// evaluateAchievements awards every milestone the state now meets. Awards
// are permanent even if the milestone later stops holding.
func (s *Service) evaluateAchievements() []string {
	var awarded []string
	for _, a := range NewAchievementChecker(&s.st, s.cat).GetAchievements() {
		if a.Earned && s.addAchievement(a.ID, a.Name) {
			awarded = append(awarded, a.ID)
		}
	}
	return awarded
}

// EvaluateAchievements awards any milestone reached and returns the new ids.
func (s *Service) EvaluateAchievements(ctx context.Context) []string {
	s.lock()
	defer s.unlock()
	awarded := s.evaluateAchievements()
	s.commit(ctx)
	return awarded
}

// Achievements lists the milestone catalog with earned flags taken from the
// player's recorded achievements.
func (s *Service) Achievements() []Achievement {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := NewAchievementChecker(&s.st, s.cat).GetAchievements()
	for i := range list {
		list[i].Earned = s.st.Profile.HasAchievement(list[i].ID)
	}
	return list
}
