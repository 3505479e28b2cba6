package catalog

import (
	"errors"
	"fmt"
	"sort"
)

// Catalog holds the read-only content tables. Lookups never fail; they
// report whether the id exists.
type Catalog struct {
	Subjects   []string
	Quests     []QuestTemplate
	Items      []ShopItem
	Trees      []SkillTree
	Avatar     []AvatarLayer
	Themes     []Theme
	Battles    []Battle
	Onboarding []OnboardingStep

	quests  map[string]int
	items   map[string]int
	trees   map[string]int
	themes  map[string]int
	battles map[string]int
	layers  map[string]int
}

func (c *Catalog) index() {
	c.quests = make(map[string]int, len(c.Quests))
	for i, q := range c.Quests {
		c.quests[q.ID] = i
	}
	c.items = make(map[string]int, len(c.Items))
	for i, it := range c.Items {
		c.items[it.ID] = i
	}
	c.trees = make(map[string]int, len(c.Trees))
	for i, t := range c.Trees {
		c.trees[t.Subject] = i
	}
	c.themes = make(map[string]int, len(c.Themes))
	for i, t := range c.Themes {
		c.themes[t.ID] = i
	}
	c.battles = make(map[string]int, len(c.Battles))
	for i, b := range c.Battles {
		c.battles[b.ID] = i
	}
	c.layers = make(map[string]int, len(c.Avatar))
	for i, l := range c.Avatar {
		c.layers[l.Layer] = i
	}
}

func (c *Catalog) Quest(id string) (QuestTemplate, bool) {
	i, ok := c.quests[id]
	if !ok {
		return QuestTemplate{}, false
	}
	return c.Quests[i], true
}

func (c *Catalog) ShopItem(id string) (ShopItem, bool) {
	i, ok := c.items[id]
	if !ok {
		return ShopItem{}, false
	}
	return c.Items[i], true
}

func (c *Catalog) SkillTree(subject string) (SkillTree, bool) {
	i, ok := c.trees[subject]
	if !ok {
		return SkillTree{}, false
	}
	return c.Trees[i], true
}

func (c *Catalog) SkillNode(subject, id string) (SkillNode, bool) {
	t, ok := c.SkillTree(subject)
	if !ok {
		return SkillNode{}, false
	}
	for _, n := range t.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return SkillNode{}, false
}

func (c *Catalog) Theme(id string) (Theme, bool) {
	i, ok := c.themes[id]
	if !ok {
		return Theme{}, false
	}
	return c.Themes[i], true
}

func (c *Catalog) Battle(id string) (Battle, bool) {
	i, ok := c.battles[id]
	if !ok {
		return Battle{}, false
	}
	return c.Battles[i], true
}

func (c *Catalog) AvatarLayer(layer string) (AvatarLayer, bool) {
	i, ok := c.layers[layer]
	if !ok {
		return AvatarLayer{}, false
	}
	return c.Avatar[i], true
}

func (c *Catalog) AvatarPart(layer, id string) (AvatarPart, bool) {
	l, ok := c.AvatarLayer(layer)
	if !ok {
		return AvatarPart{}, false
	}
	for _, p := range l.Parts {
		if p.ID == id {
			return p, true
		}
	}
	return AvatarPart{}, false
}

func (c *Catalog) HasSubject(subject string) bool {
	for _, s := range c.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// Layers returns avatar layer names in render order.
func (c *Catalog) Layers() []string {
	out := make([]string, 0, len(c.Avatar))
	for _, l := range c.Avatar {
		out = append(out, l.Layer)
	}
	return out
}

// DefaultAvatar picks the default part per layer, or the first part when a
// layer marks none.
func (c *Catalog) DefaultAvatar() map[string]string {
	out := make(map[string]string, len(c.Avatar))
	for _, l := range c.Avatar {
		for _, p := range l.Parts {
			if p.IsDefault {
				out[l.Layer] = p.ID
				break
			}
		}
		if _, ok := out[l.Layer]; !ok && len(l.Parts) > 0 {
			out[l.Layer] = l.Parts[0].ID
		}
	}
	return out
}

// FreeParts returns, per layer, the parts every player owns.
func (c *Catalog) FreeParts() map[string][]string {
	out := make(map[string][]string, len(c.Avatar))
	for _, l := range c.Avatar {
		ids := []string{}
		for _, p := range l.Parts {
			if p.IsFree() {
				ids = append(ids, p.ID)
			}
		}
		out[l.Layer] = ids
	}
	return out
}

// FreeThemes returns the ids of themes unlocked from the start.
func (c *Catalog) FreeThemes() []string {
	var out []string
	for _, t := range c.Themes {
		if t.IsUnlocked {
			out = append(out, t.ID)
		}
	}
	return out
}

func (c *Catalog) LimitedOffers() []ShopItem {
	var out []ShopItem
	for _, it := range c.Items {
		if it.IsLimitedOffer {
			out = append(out, it)
		}
	}
	return out
}

// ItemsByType returns shop items of type t in catalog order.
func (c *Catalog) ItemsByType(t ItemType) []ShopItem {
	var out []ShopItem
	for _, it := range c.Items {
		if it.Type == t {
			out = append(out, it)
		}
	}
	return out
}

// TreeSubjects lists subjects that have a skill tree, sorted.
func (c *Catalog) TreeSubjects() []string {
	out := make([]string, 0, len(c.Trees))
	for _, t := range c.Trees {
		out = append(out, t.Subject)
	}
	sort.Strings(out)
	return out
}

// Validate checks referential integrity: unique ids, known prerequisites,
// acyclic skill trees, and shop unlocks that point at real parts and themes.
func (c *Catalog) Validate() error {
	var errs []error

	seen := map[string]bool{}
	for _, q := range c.Quests {
		if q.ID == "" {
			errs = append(errs, errors.New("quest with empty id"))
			continue
		}
		if seen[q.ID] {
			errs = append(errs, fmt.Errorf("duplicate quest %q", q.ID))
		}
		seen[q.ID] = true
		if !q.Type.IsValid() {
			errs = append(errs, fmt.Errorf("quest %q: invalid type %q", q.ID, q.Type))
		}
		if q.TargetProgress <= 0 {
			errs = append(errs, fmt.Errorf("quest %q: target_progress must be > 0", q.ID))
		}
		if q.XPReward < 0 || q.GoldReward < 0 {
			errs = append(errs, fmt.Errorf("quest %q: negative reward", q.ID))
		}
		if q.Subject != "" && !c.HasSubject(q.Subject) {
			errs = append(errs, fmt.Errorf("quest %q: unknown subject %q", q.ID, q.Subject))
		}
		if q.IsChained && (q.Chain == "" || q.Stage < 1) {
			errs = append(errs, fmt.Errorf("quest %q: chained quest needs chain and stage", q.ID))
		}
	}
	for _, q := range c.Quests {
		for _, p := range q.Prerequisites {
			if !seen[p] {
				errs = append(errs, fmt.Errorf("quest %q: unknown prerequisite %q", q.ID, p))
			}
		}
		if id := q.Condition.Params["quizId"]; id != "" {
			if _, ok := c.Battle(id); !ok {
				errs = append(errs, fmt.Errorf("quest %q: unknown quiz %q", q.ID, id))
			}
		}
		if q.Condition.Type == "battle_won" {
			if _, ok := c.Battle(q.Condition.Ref); !ok {
				errs = append(errs, fmt.Errorf("quest %q: unknown battle %q", q.ID, q.Condition.Ref))
			}
		}
	}

	for _, t := range c.Trees {
		if !c.HasSubject(t.Subject) {
			errs = append(errs, fmt.Errorf("skill tree %q: unknown subject", t.Subject))
		}
		if err := validateTree(t); err != nil {
			errs = append(errs, err)
		}
	}

	itemIDs := map[string]bool{}
	for _, it := range c.Items {
		if itemIDs[it.ID] {
			errs = append(errs, fmt.Errorf("duplicate shop item %q", it.ID))
		}
		itemIDs[it.ID] = true
		if it.Cost < 0 {
			errs = append(errs, fmt.Errorf("shop item %q: negative cost", it.ID))
		}
		switch it.Type {
		case ItemAvatarGear:
			if _, ok := c.AvatarPart(it.Category, it.AssetID); !ok {
				errs = append(errs, fmt.Errorf("shop item %q: no avatar part %q in layer %q", it.ID, it.AssetID, it.Category))
			}
		case ItemTheme:
			if _, ok := c.Theme(it.AssetID); !ok {
				errs = append(errs, fmt.Errorf("shop item %q: unknown theme %q", it.ID, it.AssetID))
			}
		case ItemPowerUp, ItemDecoration, ItemBlueprint:
		default:
			errs = append(errs, fmt.Errorf("shop item %q: invalid type %q", it.ID, it.Type))
		}
	}

	for _, b := range c.Battles {
		if b.Kind == BattleBattle && b.BossHealth <= 0 {
			errs = append(errs, fmt.Errorf("battle %q: boss_health must be > 0", b.ID))
		}
		if len(b.AllQuestions()) == 0 {
			errs = append(errs, fmt.Errorf("battle %q: no questions", b.ID))
		}
	}

	for i, st := range c.Onboarding {
		if st.Action != nil && st.Action.Kind != ActionShowView {
			errs = append(errs, fmt.Errorf("onboarding step %d: unknown action %q", i, st.Action.Kind))
		}
	}

	return errors.Join(errs...)
}

func validateTree(t SkillTree) error {
	nodes := make(map[string]SkillNode, len(t.Nodes))
	for _, n := range t.Nodes {
		if _, dup := nodes[n.ID]; dup {
			return fmt.Errorf("skill tree %q: duplicate node %q", t.Subject, n.ID)
		}
		if n.Cost < 0 {
			return fmt.Errorf("skill tree %q: node %q has negative cost", t.Subject, n.ID)
		}
		nodes[n.ID] = n
	}
	for _, n := range t.Nodes {
		for _, p := range n.Prerequisites {
			if _, ok := nodes[p]; !ok {
				return fmt.Errorf("skill tree %q: node %q requires unknown %q", t.Subject, n.ID, p)
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(nodes))
	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case visiting:
			return fmt.Errorf("skill tree %q: prerequisite cycle through %q", t.Subject, id)
		case done:
			return nil
		}
		state[id] = visiting
		for _, p := range nodes[id].Prerequisites {
			if err := visit(p); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}
	for _, n := range t.Nodes {
		if err := visit(n.ID); err != nil {
			return err
		}
	}
	return nil
}
