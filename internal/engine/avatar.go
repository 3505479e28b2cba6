package engine

import (
	"context"
	"strings"
)

// EquipAvatarPart wears an unlocked part on its layer and counts as an
// avatar customization for quests waiting on one.
func (s *Service) EquipAvatarPart(ctx context.Context, layer, partID string) error {
	const op = "equip"
	s.lock()
	defer s.unlock()

	if _, ok := s.cat.AvatarLayer(layer); !ok {
		return s.fail(notFound(op, "Avatar layer %q not found.", layer))
	}
	part, ok := s.cat.AvatarPart(layer, partID)
	if !ok {
		return s.fail(notFound(op, "Avatar part %q not found in %s.", partID, layer))
	}
	if !s.st.Inventory.HasPart(layer, partID) {
		return s.fail(precondition(op, "%s is locked. Buy it in the shop first.", part.Name))
	}

	s.st.Profile.EquippedAvatar[layer] = partID
	s.touch(KeyPlayer)
	s.notify(SeveritySuccess, "Equipped %s!", part.Name)
	s.avatarCustomized()
	s.commit(ctx)
	return nil
}

// Rename sets the player's display name.
func (s *Service) Rename(ctx context.Context, name string) error {
	s.lock()
	defer s.unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return s.fail(invalid("rename", "Name cannot be empty."))
	}
	if name == s.st.Profile.Name {
		return nil
	}
	s.st.Profile.Name = name
	s.touch(KeyPlayer)
	s.notify(SeveritySuccess, "You are now known as %s.", name)
	s.avatarCustomized()
	s.commit(ctx)
	return nil
}

func (s *Service) avatarCustomized() {
	s.completeMatching(func(q *Quest) bool {
		return q.Condition.Type == CondAvatarCustomized
	}, 1)
	s.evaluateAchievements()
}

// ApplyTheme switches to an unlocked theme.
func (s *Service) ApplyTheme(ctx context.Context, themeID string) error {
	const op = "apply theme"
	s.lock()
	defer s.unlock()

	th, ok := s.cat.Theme(themeID)
	if !ok {
		return s.fail(notFound(op, "Theme %q not found.", themeID))
	}
	if !s.st.Inventory.HasTheme(themeID) {
		return s.fail(precondition(op, "%s is locked. Buy it in the shop first.", th.Name))
	}
	s.st.Settings.CurrentTheme = themeID
	s.touch(KeySettings)
	s.notify(SeveritySuccess, "Theme changed to %s.", th.Name)
	s.commit(ctx)
	return nil
}

// UpdateSettings applies fn to a copy of the settings and stores the result.
// The theme cannot be changed this way; use ApplyTheme.
func (s *Service) UpdateSettings(ctx context.Context, fn func(*Settings)) (Settings, error) {
	const op = "update settings"
	s.lock()
	defer s.unlock()

	next := s.st.Settings
	fn(&next)
	if next.CurrentTheme != s.st.Settings.CurrentTheme {
		return s.st.Settings, s.fail(invalid(op, "use the theme command to change themes"))
	}
	if next.MusicVolume < 0 || next.MusicVolume > 1 || next.SFXVolume < 0 || next.SFXVolume > 1 {
		return s.st.Settings, s.fail(invalid(op, "volume must be between 0 and 1"))
	}
	if !s.validAutoAllocate(next.SkillAutoAllocate) {
		return s.st.Settings, s.fail(invalid(op, "unknown auto-allocate mode %q", next.SkillAutoAllocate))
	}
	s.st.Settings = next
	s.touch(KeySettings)
	s.notify(SeverityInfo, "Settings saved.")
	s.commit(ctx)
	return next, nil
}

// validAutoAllocate accepts "none", "balanced" or "<subject>-focus", where
// the subject may be abbreviated ("math-focus").
func (s *Service) validAutoAllocate(mode string) bool {
	switch mode {
	case "none", "balanced":
		return true
	}
	prefix, ok := strings.CutSuffix(strings.ToLower(mode), "-focus")
	if !ok || prefix == "" {
		return false
	}
	for _, subject := range s.cat.TreeSubjects() {
		if strings.HasPrefix(strings.ToLower(subject), prefix) {
			return true
		}
	}
	return false
}
