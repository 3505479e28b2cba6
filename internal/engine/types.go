package engine

import (
	"time"

	"eduquest/internal/catalog"
)

// Persisted keys. Names match the browser version so exported data loads.
const (
	KeyPlayer      = "eduquest_playerData"
	KeyQuests      = "eduquest_questData"
	KeyInventory   = "eduquest_inventoryData"
	KeySettings    = "eduquest_settingsData"
	KeyCalendar    = "eduquest_calendarEvents"
	KeySkills      = "eduquest_skillData"
	KeyOnboarding  = "eduquest_onboardingStatus"
	KeyLastRefresh = "eduquest_shopLastRefresh"
)

// AllKeys lists every key the service writes, in save order.
var AllKeys = []string{
	KeyPlayer, KeyQuests, KeyInventory, KeySettings,
	KeyCalendar, KeySkills, KeyOnboarding, KeyLastRefresh,
}

type SubjectProgress struct {
	XP    float64 `json:"xp"`
	Level int     `json:"level"`
}

// Profile is the player's progression. Skill points are not stored here;
// see State.SkillPoints.
type Profile struct {
	Name           string                     `json:"name"`
	Level          int                        `json:"level"`
	XP             float64                    `json:"xp"`
	Gold           int                        `json:"gold"`
	Focus          float64                    `json:"focus"`
	LastFocusRegen time.Time                  `json:"lastFocusRegen"`
	Subjects       map[string]SubjectProgress `json:"subjects"`
	Achievements   []string                   `json:"achievements"`
	EquippedAvatar map[string]string          `json:"equippedAvatar"`
}

// profileBlob is the stored shape of Profile. SkillPoints is written for
// readers of the blob and ignored on load.
type profileBlob struct {
	Profile
	SkillPoints int `json:"skillPoints"`
}

func (p Profile) HasAchievement(id string) bool {
	return contains(p.Achievements, id)
}

type Quest struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Type           catalog.QuestType `json:"type"`
	Subject        string            `json:"subject,omitempty"`
	XPReward       float64           `json:"xpReward"`
	GoldReward     int               `json:"goldReward"`
	DueDate        *time.Time        `json:"dueDate"`
	Prerequisites  []string          `json:"prerequisites"`
	IsRepeatable   bool              `json:"isRepeatable"`
	IsHidden       bool              `json:"isHidden"`
	IsChained      bool              `json:"isChained"`
	Chain          string            `json:"chain,omitempty"`
	Stage          int               `json:"stage,omitempty"`
	Branch         string            `json:"branch,omitempty"`
	Condition      catalog.Condition `json:"completionCondition"`
	Progress       float64           `json:"progress"`
	TargetProgress float64           `json:"targetProgress"`
	IsCompleted    bool              `json:"isCompleted"`
	DateCompleted  *time.Time        `json:"dateCompleted"`
}

type QuestStatus string

const (
	StatusLocked     QuestStatus = "locked"
	StatusAvailable  QuestStatus = "available"
	StatusInProgress QuestStatus = "in_progress"
	StatusCompleted  QuestStatus = "completed"
)

type InventoryItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type Inventory struct {
	Items               []InventoryItem     `json:"items"`
	UnlockedThemes      []string            `json:"unlockedThemes"`
	UnlockedAvatarParts map[string][]string `json:"unlockedAvatarParts"`
}

func (inv Inventory) Quantity(id string) int {
	for _, it := range inv.Items {
		if it.ID == id {
			return it.Quantity
		}
	}
	return 0
}

func (inv Inventory) HasPart(layer, id string) bool {
	return contains(inv.UnlockedAvatarParts[layer], id)
}

func (inv Inventory) HasTheme(id string) bool {
	return contains(inv.UnlockedThemes, id)
}

type SkillData struct {
	Points         int                       `json:"points"`
	UnlockedSkills map[string][]string       `json:"unlockedSkills"`
	SpentPoints    map[string]map[string]int `json:"spentPoints"`
}

func (sd SkillData) Has(subject, id string) bool {
	return contains(sd.UnlockedSkills[subject], id)
}

// TotalSpent sums recorded spend across every subject.
func (sd SkillData) TotalSpent() int {
	total := 0
	for _, m := range sd.SpentPoints {
		for _, v := range m {
			total += v
		}
	}
	return total
}

type Settings struct {
	DarkMode          bool    `json:"darkMode"`
	MusicEnabled      bool    `json:"musicEnabled"`
	SFXEnabled        bool    `json:"sfxEnabled"`
	MusicVolume       float64 `json:"musicVolume"`
	SFXVolume         float64 `json:"sfxVolume"`
	DueDateReminders  bool    `json:"dueDateReminders"`
	PerformanceMode   bool    `json:"performanceMode"`
	SkillAutoAllocate string  `json:"skillAutoAllocate"`
	CurrentTheme      string  `json:"currentTheme"`
}

func DefaultSettings() Settings {
	return Settings{
		MusicEnabled:      true,
		SFXEnabled:        true,
		MusicVolume:       0.5,
		SFXVolume:         0.75,
		DueDateReminders:  true,
		SkillAutoAllocate: "none",
		CurrentTheme:      "default",
	}
}

type CalendarEvent struct {
	ID      string            `json:"id"`
	Title   string            `json:"title"`
	Date    time.Time         `json:"date"`
	Type    catalog.QuestType `json:"type"`
	QuestID string            `json:"questId,omitempty"`
}

type OnboardingStatus struct {
	Completed bool `json:"completed"`
	Step      int  `json:"step"`
}

// State is the whole mutable game, owned by one Service.
type State struct {
	Profile     Profile
	Quests      []Quest
	Inventory   Inventory
	Skills      SkillData
	Settings    Settings
	Calendar    []CalendarEvent
	Onboarding  OnboardingStatus
	LastRefresh *time.Time
}

// SkillPoints is the profile's view of the skill point pool.
func (st State) SkillPoints() int { return st.Skills.Points }

func (st *State) quest(id string) (*Quest, bool) {
	for i := range st.Quests {
		if st.Quests[i].ID == id {
			return &st.Quests[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy.
func (st *State) Clone() State {
	out := *st

	out.Profile.Subjects = make(map[string]SubjectProgress, len(st.Profile.Subjects))
	for k, v := range st.Profile.Subjects {
		out.Profile.Subjects[k] = v
	}
	out.Profile.Achievements = append([]string(nil), st.Profile.Achievements...)
	out.Profile.EquippedAvatar = cloneStringMap(st.Profile.EquippedAvatar)

	out.Quests = make([]Quest, len(st.Quests))
	for i, q := range st.Quests {
		out.Quests[i] = q.clone()
	}

	out.Inventory.Items = append([]InventoryItem(nil), st.Inventory.Items...)
	out.Inventory.UnlockedThemes = append([]string(nil), st.Inventory.UnlockedThemes...)
	out.Inventory.UnlockedAvatarParts = cloneSetMap(st.Inventory.UnlockedAvatarParts)

	out.Skills.UnlockedSkills = cloneSetMap(st.Skills.UnlockedSkills)
	out.Skills.SpentPoints = make(map[string]map[string]int, len(st.Skills.SpentPoints))
	for k, m := range st.Skills.SpentPoints {
		inner := make(map[string]int, len(m))
		for id, v := range m {
			inner[id] = v
		}
		out.Skills.SpentPoints[k] = inner
	}

	out.Calendar = append([]CalendarEvent(nil), st.Calendar...)
	if st.LastRefresh != nil {
		t := *st.LastRefresh
		out.LastRefresh = &t
	}
	return out
}

func (q Quest) clone() Quest {
	out := q
	out.Prerequisites = append([]string(nil), q.Prerequisites...)
	if q.Condition.Params != nil {
		out.Condition.Params = cloneStringMap(q.Condition.Params)
	}
	if q.DueDate != nil {
		t := *q.DueDate
		out.DueDate = &t
	}
	if q.DateCompleted != nil {
		t := *q.DateCompleted
		out.DateCompleted = &t
	}
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSetMap(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
