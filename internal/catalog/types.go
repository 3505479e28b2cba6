package catalog

type QuestType string

const (
	QuestMain       QuestType = "main"
	QuestSide       QuestType = "side"
	QuestDaily      QuestType = "daily"
	QuestStudyBlock QuestType = "study_block"
)

func (t QuestType) IsValid() bool {
	switch t {
	case QuestMain, QuestSide, QuestDaily, QuestStudyBlock:
		return true
	default:
		return false
	}
}

// Condition is a quest's completion predicate. TargetValue is the numeric
// threshold progress is compared against. Ref names the thing the condition
// is about (a view, a reading, a battle) when that is not a number.
type Condition struct {
	Type        string            `yaml:"type" json:"type"`
	TargetValue float64           `yaml:"target_value" json:"targetValue"`
	Ref         string            `yaml:"ref,omitempty" json:"ref,omitempty"`
	Params      map[string]string `yaml:"params,omitempty" json:"params,omitempty"`
}

type QuestTemplate struct {
	ID             string    `yaml:"id"`
	Title          string    `yaml:"title"`
	Description    string    `yaml:"description"`
	Type           QuestType `yaml:"type"`
	Subject        string    `yaml:"subject"`
	XPReward       float64   `yaml:"xp_reward"`
	GoldReward     int       `yaml:"gold_reward"`
	DueInDays      int       `yaml:"due_in_days"`
	Prerequisites  []string  `yaml:"prerequisites"`
	IsRepeatable   bool      `yaml:"repeatable"`
	IsHidden       bool      `yaml:"hidden"`
	IsChained      bool      `yaml:"chained"`
	Chain          string    `yaml:"chain"`
	Stage          int       `yaml:"stage"`
	Branch         string    `yaml:"branch"`
	Condition      Condition `yaml:"completion_condition"`
	TargetProgress float64   `yaml:"target_progress"`
}

type ItemType string

const (
	ItemAvatarGear ItemType = "avatar_gear"
	ItemTheme      ItemType = "theme"
	ItemPowerUp    ItemType = "power_up"
	ItemDecoration ItemType = "decoration"
	ItemBlueprint  ItemType = "blueprint"
)

// IsUnlock reports whether buying the item is a one-time unlock rather than
// a stackable inventory entry.
func (t ItemType) IsUnlock() bool {
	return t == ItemAvatarGear || t == ItemTheme
}

type Effect struct {
	Type     string  `yaml:"type"`
	Value    float64 `yaml:"value"`
	Duration int     `yaml:"duration"`
}

type Material struct {
	ID       string `yaml:"id"`
	Quantity int    `yaml:"quantity"`
}

type ShopItem struct {
	ID             string     `yaml:"id"`
	Name           string     `yaml:"name"`
	Description    string     `yaml:"description"`
	Type           ItemType   `yaml:"type"`
	Category       string     `yaml:"category"`
	Cost           int        `yaml:"cost"`
	AssetID        string     `yaml:"asset_id"`
	Effect         *Effect    `yaml:"effect"`
	IsLimitedOffer bool       `yaml:"limited_offer"`
	CraftsItemID   string     `yaml:"crafts_item_id"`
	Materials      []Material `yaml:"materials"`
}

type SkillType string

const (
	SkillPassive SkillType = "passive"
	SkillActive  SkillType = "active"
)

type SkillEffect struct {
	Type  string  `yaml:"type"`
	Value float64 `yaml:"value"`
}

type SkillNode struct {
	ID              string        `yaml:"id"`
	Name            string        `yaml:"name"`
	Description     string        `yaml:"description"`
	Type            SkillType     `yaml:"type"`
	Cost            int           `yaml:"cost"`
	Prerequisites   []string      `yaml:"prerequisites"`
	Effects         []SkillEffect `yaml:"effects"`
	CooldownMinutes int           `yaml:"cooldown_minutes"`
}

// IsRoot reports whether the node is granted to every new or respecced player.
func (n SkillNode) IsRoot() bool {
	return len(n.Prerequisites) == 0 && n.Cost == 0
}

type SkillTree struct {
	Subject     string      `yaml:"subject"`
	Description string      `yaml:"description"`
	Icon        string      `yaml:"icon"`
	Nodes       []SkillNode `yaml:"nodes"`
}

// Roots returns the ids of the tree's auto-unlocked nodes.
func (t SkillTree) Roots() []string {
	var out []string
	for _, n := range t.Nodes {
		if n.IsRoot() {
			out = append(out, n.ID)
		}
	}
	return out
}

type AvatarPart struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Icon       string `yaml:"icon"`
	IsDefault  bool   `yaml:"default"`
	UnlockCost int    `yaml:"unlock_cost"`
}

// IsFree reports whether the part is owned from the start.
func (p AvatarPart) IsFree() bool {
	return p.IsDefault || p.UnlockCost == 0
}

type AvatarLayer struct {
	Layer string       `yaml:"layer"`
	Parts []AvatarPart `yaml:"parts"`
}

type Theme struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	IsUnlocked  bool   `yaml:"unlocked"`
	Cost        int    `yaml:"cost"`
}

type Question struct {
	ID            string   `yaml:"id"`
	Text          string   `yaml:"text"`
	Options       []string `yaml:"options"`
	CorrectAnswer string   `yaml:"correct_answer"`
	Explanation   string   `yaml:"explanation"`
	Hint          string   `yaml:"hint"`
	Damage        int      `yaml:"damage"`
}

type BattleStage struct {
	Name      string     `yaml:"name"`
	Questions []Question `yaml:"questions"`
}

type BattleKind string

const (
	BattleQuiz   BattleKind = "quiz"
	BattleBattle BattleKind = "battle"
)

type Battle struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Subject     string        `yaml:"subject"`
	Kind        BattleKind    `yaml:"kind"`
	Description string        `yaml:"description"`
	BossHealth  int           `yaml:"boss_health"`
	Questions   []Question    `yaml:"questions"`
	Stages      []BattleStage `yaml:"stages"`
}

// AllQuestions flattens quiz questions and battle stages in order.
func (b Battle) AllQuestions() []Question {
	out := append([]Question(nil), b.Questions...)
	for _, st := range b.Stages {
		out = append(out, st.Questions...)
	}
	return out
}

// ActionKind enumerates the onboarding actions the presentation layer knows
// how to perform.
type ActionKind string

const (
	ActionShowView ActionKind = "show_view"
)

type Action struct {
	Kind ActionKind `yaml:"kind" json:"kind"`
	View string     `yaml:"view,omitempty" json:"view,omitempty"`
}

type OnboardingStep struct {
	Title       string  `yaml:"title"`
	Text        string  `yaml:"text"`
	HighlightID string  `yaml:"highlight_id"`
	Action      *Action `yaml:"action"`
}
