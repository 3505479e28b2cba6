package engine

import (
	"context"
	"math"
	"strings"
	"time"

	"eduquest/internal/catalog"
	"eduquest/internal/storage"
)

// newState builds a first-run game from the catalog.
func newState(cat *catalog.Catalog, rules Rules, now time.Time) State {
	st := State{
		Profile: Profile{
			Name:           rules.DefaultName,
			Level:          1,
			Gold:           rules.StartingGold,
			Focus:          rules.FocusMax,
			LastFocusRegen: now,
			Subjects:       map[string]SubjectProgress{},
			Achievements:   []string{},
			EquippedAvatar: cat.DefaultAvatar(),
		},
		Inventory: Inventory{
			Items:               []InventoryItem{},
			UnlockedThemes:      cat.FreeThemes(),
			UnlockedAvatarParts: cat.FreeParts(),
		},
		Skills: SkillData{
			Points:         rules.StartingSkillPoints,
			UnlockedSkills: map[string][]string{},
			SpentPoints:    map[string]map[string]int{},
		},
		Settings: DefaultSettings(),
		Calendar: []CalendarEvent{},
	}
	for _, s := range cat.Subjects {
		st.Profile.Subjects[s] = SubjectProgress{}
	}
	for _, t := range cat.Trees {
		st.Skills.UnlockedSkills[t.Subject] = t.Roots()
		st.Skills.SpentPoints[t.Subject] = map[string]int{}
	}
	st.Quests = make([]Quest, 0, len(cat.Quests))
	for _, tpl := range cat.Quests {
		st.Quests = append(st.Quests, questFromTemplate(tpl, now))
	}
	return st
}

func questFromTemplate(tpl catalog.QuestTemplate, now time.Time) Quest {
	q := Quest{
		ID:             tpl.ID,
		Title:          tpl.Title,
		Description:    tpl.Description,
		Type:           tpl.Type,
		Subject:        tpl.Subject,
		XPReward:       tpl.XPReward,
		GoldReward:     tpl.GoldReward,
		Prerequisites:  append([]string{}, tpl.Prerequisites...),
		IsRepeatable:   tpl.IsRepeatable,
		IsHidden:       tpl.IsHidden,
		IsChained:      tpl.IsChained,
		Chain:          tpl.Chain,
		Stage:          tpl.Stage,
		Branch:         tpl.Branch,
		Condition:      tpl.Condition,
		TargetProgress: tpl.TargetProgress,
	}
	if tpl.Condition.Params != nil {
		q.Condition.Params = cloneStringMap(tpl.Condition.Params)
	}
	if tpl.DueInDays > 0 {
		due := now.AddDate(0, 0, tpl.DueInDays)
		q.DueDate = &due
	}
	return q
}

// loadState reads every blob and back-fills whatever is missing or invalid.
// It reports which keys were absent or repaired so the caller can write them.
func loadState(ctx context.Context, gw *storage.Gateway, cat *catalog.Catalog, rules Rules, now time.Time) (State, []string) {
	def := newState(cat, rules, now)
	st := def
	var absent []string

	if _, found, err := gw.Store().Get(ctx, KeyQuests); err == nil && !found {
		absent = append(absent, KeyQuests)
	}

	if p, ok := loadProfile(ctx, gw); ok {
		st.Profile = p
	}
	backfillProfile(&st.Profile, def.Profile, cat, rules, now)

	var quests []Quest
	if gw.Load(ctx, KeyQuests, &quests) {
		st.Quests = backfillQuests(quests, cat, now)
	}

	var inv Inventory
	if gw.Load(ctx, KeyInventory, &inv) {
		st.Inventory = inv
	}
	backfillInventory(&st.Inventory, cat)

	var skills SkillData
	if gw.Load(ctx, KeySkills, &skills) {
		st.Skills = skills
	} else {
		var legacy struct {
			SkillPoints int `json:"skillPoints"`
		}
		if gw.Load(ctx, KeyPlayer, &legacy) && legacy.SkillPoints > 0 {
			st.Skills.Points = legacy.SkillPoints
		}
	}
	if backfillSkills(&st.Skills, cat) {
		absent = append(absent, KeySkills)
	}
	if settleLevel(&st, rules) {
		absent = append(absent, KeyPlayer, KeySkills)
	}

	settings := DefaultSettings()
	if !gw.Load(ctx, KeySettings, &settings) {
		settings = DefaultSettings()
	}
	if _, ok := cat.Theme(settings.CurrentTheme); !ok || !st.Inventory.HasTheme(settings.CurrentTheme) {
		settings.CurrentTheme = DefaultSettings().CurrentTheme
	}
	st.Settings = settings

	st.Calendar = storage.LoadOr(ctx, gw, KeyCalendar, []CalendarEvent{})
	if st.Calendar == nil {
		st.Calendar = []CalendarEvent{}
	}

	st.Onboarding = storage.LoadOr(ctx, gw, KeyOnboarding, OnboardingStatus{})
	if st.Onboarding.Step < 0 {
		st.Onboarding.Step = 0
	}

	var ms int64
	if gw.Load(ctx, KeyLastRefresh, &ms) && ms > 0 {
		t := time.UnixMilli(ms).UTC()
		st.LastRefresh = &t
	}

	return st, absent
}

func loadProfile(ctx context.Context, gw *storage.Gateway) (Profile, bool) {
	var p Profile
	if !gw.Load(ctx, KeyPlayer, &p) {
		return Profile{}, false
	}
	return p, true
}

func backfillProfile(p *Profile, def Profile, cat *catalog.Catalog, rules Rules, now time.Time) {
	if strings.TrimSpace(p.Name) == "" {
		p.Name = def.Name
	}
	if p.Level < 1 {
		p.Level = 1
	}
	if p.XP < 0 || math.IsNaN(p.XP) {
		p.XP = 0
	}
	if p.Gold < 0 {
		p.Gold = 0
	}
	p.Focus = clamp(p.Focus, 0, rules.FocusMax)
	if p.LastFocusRegen.IsZero() {
		p.LastFocusRegen = now
	}
	if p.Subjects == nil {
		p.Subjects = map[string]SubjectProgress{}
	}
	for _, s := range cat.Subjects {
		if _, ok := p.Subjects[s]; !ok {
			p.Subjects[s] = SubjectProgress{}
		}
	}
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
	if p.EquippedAvatar == nil {
		p.EquippedAvatar = map[string]string{}
	}
	for layer, part := range def.EquippedAvatar {
		if _, ok := cat.AvatarPart(layer, p.EquippedAvatar[layer]); !ok {
			p.EquippedAvatar[layer] = part
		}
	}
}

// backfillQuests keeps the saved log authoritative, filling only fields the
// saved copy lacks and appending catalog quests it has never seen.
func backfillQuests(saved []Quest, cat *catalog.Catalog, now time.Time) []Quest {
	out := make([]Quest, 0, len(saved))
	seen := map[string]bool{}
	for _, q := range saved {
		if q.ID == "" || seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		tpl, known := cat.Quest(q.ID)
		if known {
			if q.Condition.Type == "" {
				q.Condition = tpl.Condition
			}
			if !q.IsChained && tpl.IsChained {
				q.IsChained, q.Chain, q.Stage, q.Branch = true, tpl.Chain, tpl.Stage, tpl.Branch
			}
			if q.Type == "" {
				q.Type = tpl.Type
			}
		}
		if q.TargetProgress <= 0 {
			if known && tpl.TargetProgress > 0 {
				q.TargetProgress = tpl.TargetProgress
			} else {
				q.TargetProgress = 1
			}
		}
		if q.Progress < 0 {
			q.Progress = 0
		}
		if q.Progress > q.TargetProgress {
			q.Progress = q.TargetProgress
		}
		if q.Prerequisites == nil {
			q.Prerequisites = []string{}
		}
		if !q.IsCompleted {
			q.DateCompleted = nil
		}
		out = append(out, q)
	}
	for _, tpl := range cat.Quests {
		if !seen[tpl.ID] {
			out = append(out, questFromTemplate(tpl, now))
		}
	}
	return out
}

func backfillInventory(inv *Inventory, cat *catalog.Catalog) {
	items := make([]InventoryItem, 0, len(inv.Items))
	for _, it := range inv.Items {
		if _, ok := cat.ShopItem(it.ID); ok && it.Quantity > 0 {
			items = append(items, it)
		}
	}
	inv.Items = items

	if inv.UnlockedAvatarParts == nil {
		inv.UnlockedAvatarParts = map[string][]string{}
	}
	for layer, parts := range cat.FreeParts() {
		for _, id := range parts {
			if !contains(inv.UnlockedAvatarParts[layer], id) {
				inv.UnlockedAvatarParts[layer] = append(inv.UnlockedAvatarParts[layer], id)
			}
		}
	}
	for _, id := range cat.FreeThemes() {
		if !contains(inv.UnlockedThemes, id) {
			inv.UnlockedThemes = append(inv.UnlockedThemes, id)
		}
	}
}

// backfillSkills adds the roots back and drops unlocked skills the catalog no
// longer knows or whose prerequisites are not unlocked. Points recorded as
// spent on a dropped skill are refunded. It reports whether anything was
// dropped.
func backfillSkills(sd *SkillData, cat *catalog.Catalog) bool {
	if sd.Points < 0 {
		sd.Points = 0
	}
	if sd.UnlockedSkills == nil {
		sd.UnlockedSkills = map[string][]string{}
	}
	if sd.SpentPoints == nil {
		sd.SpentPoints = map[string]map[string]int{}
	}

	dropped := false
	for subject, ids := range sd.UnlockedSkills {
		tree, ok := cat.SkillTree(subject)
		if !ok {
			sd.Points += sumSpent(sd.SpentPoints[subject])
			delete(sd.UnlockedSkills, subject)
			delete(sd.SpentPoints, subject)
			dropped = true
			continue
		}
		kept := reachableSkills(tree, ids)
		for _, id := range ids {
			if !contains(kept, id) {
				sd.Points += sd.SpentPoints[subject][id]
				delete(sd.SpentPoints[subject], id)
				dropped = true
			}
		}
		sd.UnlockedSkills[subject] = kept
	}

	for _, t := range cat.Trees {
		for _, id := range t.Roots() {
			if !contains(sd.UnlockedSkills[t.Subject], id) {
				sd.UnlockedSkills[t.Subject] = append(sd.UnlockedSkills[t.Subject], id)
			}
		}
		if sd.UnlockedSkills[t.Subject] == nil {
			sd.UnlockedSkills[t.Subject] = []string{}
		}
		if sd.SpentPoints[t.Subject] == nil {
			sd.SpentPoints[t.Subject] = map[string]int{}
		}
	}
	return dropped
}

// reachableSkills returns the ids from unlocked, in their saved order, that
// exist in tree and whose prerequisites are all kept as well.
func reachableSkills(tree catalog.SkillTree, unlocked []string) []string {
	nodes := make(map[string]catalog.SkillNode, len(tree.Nodes))
	for _, n := range tree.Nodes {
		nodes[n.ID] = n
	}
	keep := map[string]bool{}
	for _, id := range unlocked {
		if _, ok := nodes[id]; ok {
			keep[id] = true
		}
	}
	// Prune until stable; a dropped prerequisite can orphan its dependents.
	for changed := true; changed; {
		changed = false
		for id := range keep {
			for _, pre := range nodes[id].Prerequisites {
				if !keep[pre] {
					delete(keep, id)
					changed = true
					break
				}
			}
		}
	}
	out := make([]string, 0, len(keep))
	for _, id := range unlocked {
		if keep[id] && !contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func sumSpent(m map[string]int) int {
	total := 0
	for _, v := range m {
		total += v
	}
	return total
}

// settleLevel resolves level-ups a saved profile never applied, granting the
// skill points they carry, and caps XP at the max level. It reports whether
// the profile changed.
func settleLevel(st *State, rules Rules) bool {
	p := &st.Profile
	changed := false
	if top := rules.MaxLevel(); p.Level > top {
		p.Level = top
		changed = true
	}
	for {
		th, ok := rules.Threshold(p.Level)
		if !ok {
			if last, ok := rules.Threshold(p.Level - 1); ok && p.XP > last {
				p.XP = last
				changed = true
			}
			return changed
		}
		if p.XP < th {
			return changed
		}
		p.XP -= th
		p.Level++
		st.Skills.Points += rules.SkillPointsPerLevel
		changed = true
	}
}

// blob returns the value stored under key.
func (st *State) blob(key string) any {
	switch key {
	case KeyPlayer:
		return profileBlob{Profile: st.Profile, SkillPoints: st.SkillPoints()}
	case KeyQuests:
		return st.Quests
	case KeyInventory:
		return st.Inventory
	case KeySettings:
		return st.Settings
	case KeyCalendar:
		return st.Calendar
	case KeySkills:
		return st.Skills
	case KeyOnboarding:
		return st.Onboarding
	case KeyLastRefresh:
		if st.LastRefresh == nil {
			return nil
		}
		return st.LastRefresh.UnixMilli()
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
