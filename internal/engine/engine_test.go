package engine

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"eduquest/internal/catalog"
	"eduquest/internal/storage"
)

var testStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu      sync.Mutex
	notes   []Notification
	views   []string
	prompts []string
	answer  bool
	err     error
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) Confirm(ctx context.Context, prompt string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, prompt)
	return r.answer, r.err
}

func (r *recorder) ShowView(view string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, view)
}

// saw reports whether a notification containing substr was delivered.
func (r *recorder) saw(sev Severity, substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notes {
		if n.Severity == sev && strings.Contains(n.Message, substr) {
			return true
		}
	}
	return false
}

// flakyStore fails every write while failing is set.
type flakyStore struct {
	*storage.MemoryStore
	failing bool
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if f.failing {
		return errors.New("disk full")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

type harness struct {
	store *storage.MemoryStore
	pres  *recorder
	now   time.Time
}

func (h *harness) advance(d time.Duration) { h.now = h.now.Add(d) }

func newTestService(t *testing.T) (*Service, *harness) {
	t.Helper()
	h := &harness{store: storage.NewMemoryStore(), pres: &recorder{}, now: testStart}
	return openTestService(t, h, h.store), h
}

func openTestService(t *testing.T, h *harness, store storage.Store) *Service {
	t.Helper()
	cat, err := catalog.LoadDefault()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	svc, err := New(context.Background(), Options{
		Catalog:   cat,
		Gateway:   storage.NewGateway(store, nil),
		Presenter: h.pres,
		Now:       func() time.Time { return h.now },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func mustQuest(t *testing.T, svc *Service, id string) QuestView {
	t.Helper()
	q, ok := svc.Quest(id)
	if !ok {
		t.Fatalf("quest %s missing", id)
	}
	return q
}

func TestNewGameDefaults(t *testing.T) {
	svc, h := newTestService(t)
	st := svc.Snapshot()

	if st.Profile.Level != 1 || st.Profile.XP != 0 || st.Profile.Gold != 50 {
		t.Fatalf("profile=%+v, want level 1, xp 0, gold 50", st.Profile)
	}
	if st.Profile.Focus != 100 || st.SkillPoints() != 0 {
		t.Fatalf("focus=%g points=%d", st.Profile.Focus, st.SkillPoints())
	}
	if st.Profile.EquippedAvatar["accessory"] != "accessory_none" {
		t.Fatalf("equipped=%v", st.Profile.EquippedAvatar)
	}
	if !st.Inventory.HasTheme("default") || st.Inventory.HasTheme("fantasy") {
		t.Fatalf("themes=%v", st.Inventory.UnlockedThemes)
	}
	if len(st.Quests) != len(svc.Catalog().Quests) {
		t.Fatalf("quests=%d, want %d", len(st.Quests), len(svc.Catalog().Quests))
	}
	if _, found, _ := h.store.Get(context.Background(), KeyQuests); !found {
		t.Fatalf("quest log not seeded on first run")
	}
}

func TestAddXPCanonicalLevelUp(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	res, err := svc.AddXP(ctx, 250, "")
	if err != nil {
		t.Fatalf("AddXP: %v", err)
	}
	st := svc.Snapshot()
	if st.Profile.Level != 2 || st.Profile.XP != 150 {
		t.Fatalf("level=%d xp=%g, want level 2 xp 150", st.Profile.Level, st.Profile.XP)
	}
	if res.LevelUps() != 1 || res.SkillPointsGained != 1 || st.SkillPoints() != 1 {
		t.Fatalf("res=%+v points=%d", res, st.SkillPoints())
	}
	if res.BonusGold != 50 || st.Profile.Gold != 100 {
		t.Fatalf("bonus=%d gold=%d, want 50 and 100", res.BonusGold, st.Profile.Gold)
	}
	if !h.pres.saw(SeveritySuccess, "LEVEL UP! You are now Level 2!") {
		t.Fatalf("missing level-up notification: %+v", h.pres.notes)
	}
	if !st.Profile.HasAchievement("apprentice") {
		t.Fatalf("achievements=%v, want apprentice", st.Profile.Achievements)
	}
}

func TestAddXPKeepsLevelInvariant(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	rules := svc.Rules()

	for _, amount := range []float64{0.5, 99, 1, 730.25, 5000, 13345, 3} {
		if _, err := svc.AddXP(ctx, amount, "Mathematics"); err != nil {
			t.Fatalf("AddXP(%g): %v", amount, err)
		}
		p := svc.Snapshot().Profile
		if th, ok := rules.Threshold(p.Level); ok && p.XP >= th {
			t.Fatalf("after AddXP(%g): level=%d xp=%g threshold=%g", amount, p.Level, p.XP, th)
		}
	}

	p := svc.Snapshot().Profile
	if p.Level != rules.MaxLevel() {
		t.Fatalf("level=%d, want max level %d", p.Level, rules.MaxLevel())
	}
	last, _ := rules.Threshold(rules.MaxLevel() - 1)
	if p.XP > last {
		t.Fatalf("xp=%g exceeds soft cap %g", p.XP, last)
	}
	if got := p.Subjects["Mathematics"].XP; math.Abs(got-19178.75) > 1e-9 {
		t.Fatalf("subject xp=%g, want 19178.75", got)
	}
	if p.Subjects["Mathematics"].Level != 0 {
		t.Fatalf("subject level advanced to %d", p.Subjects["Mathematics"].Level)
	}
}

func TestAddXPRejectsNegative(t *testing.T) {
	svc, _ := newTestService(t)
	before := svc.Snapshot().Profile

	_, err := svc.AddXP(context.Background(), -10, "")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err=%v, want ErrInvalidArgument", err)
	}
	if after := svc.Snapshot().Profile; after.XP != before.XP || after.Gold != before.Gold {
		t.Fatalf("state changed: %+v", after)
	}
}

func TestAddGoldRejectsNegative(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	if err := svc.AddGold(ctx, -5); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("AddGold(-5) err=%v, want ErrInvalidArgument", err)
	}
	if !h.pres.saw(SeverityError, "gold amount") {
		t.Fatalf("no error notification: %+v", h.pres.notes)
	}
	if err := svc.AddGold(ctx, 25); err != nil {
		t.Fatalf("AddGold: %v", err)
	}
	if g := svc.Snapshot().Profile.Gold; g != 75 {
		t.Fatalf("gold=%d, want 75", g)
	}
}

func TestAddAchievementIdempotent(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	added, err := svc.AddAchievement(ctx, "night_owl", "Night Owl")
	if err != nil || !added {
		t.Fatalf("first add=%v err=%v", added, err)
	}
	added, err = svc.AddAchievement(ctx, "night_owl", "Night Owl")
	if err != nil || added {
		t.Fatalf("second add=%v err=%v", added, err)
	}
	count := 0
	for _, n := range h.pres.notes {
		if strings.Contains(n.Message, "Night Owl") {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("notifications=%d, want 1", count)
	}
}

func TestFocusRegenCountsWholeIntervals(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	if err := svc.SpendFocus(ctx, 50); err != nil {
		t.Fatalf("SpendFocus: %v", err)
	}

	h.advance(2*time.Hour + 30*time.Minute)
	res := svc.RegenerateFocus(ctx)
	if res.Intervals != 2 || res.Focus != 60 {
		t.Fatalf("res=%+v, want 2 intervals and focus 60", res)
	}
	if got := svc.Snapshot().Profile.LastFocusRegen; !got.Equal(testStart.Add(2 * time.Hour)) {
		t.Fatalf("lastFocusRegen=%v, want start+2h", got)
	}

	h.advance(30 * time.Minute)
	if res := svc.RegenerateFocus(ctx); res.Intervals != 1 || res.Focus != 65 {
		t.Fatalf("res=%+v, want the carried half interval to complete", res)
	}

	h.advance(10 * time.Minute)
	if res := svc.RegenerateFocus(ctx); res.Intervals != 0 || res.Focus != 65 {
		t.Fatalf("res=%+v, want no change", res)
	}
}

func TestFocusRegenAdvancesStampWhenFull(t *testing.T) {
	svc, h := newTestService(t)

	h.advance(3 * time.Hour)
	res := svc.RegenerateFocus(context.Background())
	if res.Intervals != 3 || res.Gained != 0 || res.Focus != 100 {
		t.Fatalf("res=%+v", res)
	}
	if got := svc.Snapshot().Profile.LastFocusRegen; !got.Equal(testStart.Add(3 * time.Hour)) {
		t.Fatalf("lastFocusRegen=%v", got)
	}
}

func TestSaveFailureMarksDirtyAndFlushRetries(t *testing.T) {
	h := &harness{store: storage.NewMemoryStore(), pres: &recorder{}, now: testStart}
	flaky := &flakyStore{MemoryStore: h.store}
	svc := openTestService(t, h, flaky)
	ctx := context.Background()

	flaky.failing = true
	if err := svc.AddGold(ctx, 10); err != nil {
		t.Fatalf("AddGold: %v", err)
	}
	if g := svc.Snapshot().Profile.Gold; g != 60 {
		t.Fatalf("in-memory gold=%d, want 60", g)
	}
	if got := svc.Unsaved(); len(got) != 1 || got[0] != KeyPlayer {
		t.Fatalf("Unsaved=%v, want [%s]", got, KeyPlayer)
	}
	if !h.pres.saw(SeverityWarning, "unsaved") {
		t.Fatalf("no unsaved warning: %+v", h.pres.notes)
	}
	if err := svc.Flush(ctx); err == nil {
		t.Fatalf("Flush succeeded while the store is failing")
	}

	flaky.failing = false
	if err := svc.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := svc.Unsaved(); len(got) != 0 {
		t.Fatalf("Unsaved=%v after flush", got)
	}
	raw, found, _ := h.store.Get(ctx, KeyPlayer)
	if !found {
		t.Fatalf("player blob missing after flush")
	}
	var p profileBlob
	if err := json.Unmarshal(raw, &p); err != nil || p.Gold != 60 {
		t.Fatalf("stored profile=%s err=%v", raw, err)
	}
}

func TestStateSurvivesReload(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddXP(ctx, 850, ""); err != nil {
		t.Fatalf("AddXP: %v", err)
	}
	if err := svc.LearnSkill(ctx, "Mathematics", "math_basic_arithmetic"); err != nil {
		t.Fatalf("LearnSkill: %v", err)
	}

	again := openTestService(t, h, h.store)
	st := again.Snapshot()
	if st.Profile.Level != 4 || st.SkillPoints() != 2 {
		t.Fatalf("reloaded level=%d points=%d, want 4 and 2", st.Profile.Level, st.SkillPoints())
	}
	if !st.Skills.Has("Mathematics", "math_basic_arithmetic") {
		t.Fatalf("reloaded skills=%v", st.Skills.UnlockedSkills)
	}

	raw, _, _ := h.store.Get(ctx, KeyPlayer)
	var blob profileBlob
	if err := json.Unmarshal(raw, &blob); err != nil || blob.SkillPoints != 2 {
		t.Fatalf("profile blob skillPoints=%d err=%v, want 2", blob.SkillPoints, err)
	}
}

func TestCorruptBlobFallsBackToDefault(t *testing.T) {
	h := &harness{store: storage.NewMemoryStore(), pres: &recorder{}, now: testStart}
	ctx := context.Background()
	_ = h.store.Set(ctx, KeyPlayer, []byte(`{"name": "Ada", "level": `))
	_ = h.store.Set(ctx, KeyInventory, []byte(`{"items":[{"id":"deco_globe","quantity":2},{"id":"gone","quantity":1}]}`))

	svc := openTestService(t, h, h.store)
	st := svc.Snapshot()
	if st.Profile.Name != "Young Scholar" || st.Profile.Level != 1 {
		t.Fatalf("profile=%+v, want defaults", st.Profile)
	}
	if st.Inventory.Quantity("deco_globe") != 2 || len(st.Inventory.Items) != 1 {
		t.Fatalf("items=%+v, want only deco_globe", st.Inventory.Items)
	}
	if !st.Inventory.HasPart("accessory", "accessory_none") {
		t.Fatalf("free parts not back-filled: %v", st.Inventory.UnlockedAvatarParts)
	}
}

func TestLegacySkillPointsSeedSkillData(t *testing.T) {
	h := &harness{store: storage.NewMemoryStore(), pres: &recorder{}, now: testStart}
	_ = h.store.Set(context.Background(), KeyPlayer, []byte(`{"name":"Ada","level":3,"xp":10,"gold":7,"skillPoints":4}`))

	svc := openTestService(t, h, h.store)
	st := svc.Snapshot()
	if st.Profile.Name != "Ada" || st.Profile.Level != 3 || st.SkillPoints() != 4 {
		t.Fatalf("profile=%+v points=%d", st.Profile, st.SkillPoints())
	}
}

func TestLoadDropsOrphanedSkills(t *testing.T) {
	h := &harness{store: storage.NewMemoryStore(), pres: &recorder{}, now: testStart}
	ctx := context.Background()
	// Algebra without arithmetic, mastery hanging off algebra, one retired id
	// and a subject the catalog no longer has.
	_ = h.store.Set(ctx, KeySkills, []byte(`{
		"points": 1,
		"unlockedSkills": {
			"Mathematics": ["math_algebra_basics", "math_equation_mastery", "math_retired"],
			"Alchemy": ["alc_transmute"]
		},
		"spentPoints": {
			"Mathematics": {"math_algebra_basics": 2, "math_equation_mastery": 3},
			"Alchemy": {"alc_transmute": 4}
		}
	}`))

	svc := openTestService(t, h, h.store)
	st := svc.Snapshot()
	if got := st.Skills.UnlockedSkills["Mathematics"]; len(got) != 0 {
		t.Fatalf("math skills=%v, want none", got)
	}
	if _, ok := st.Skills.UnlockedSkills["Alchemy"]; ok {
		t.Fatalf("unknown subject kept: %v", st.Skills.UnlockedSkills)
	}
	if st.SkillPoints() != 10 {
		t.Fatalf("points=%d, want 1 plus 9 refunded", st.SkillPoints())
	}

	raw, _, _ := h.store.Get(ctx, KeySkills)
	var saved SkillData
	if err := json.Unmarshal(raw, &saved); err != nil || saved.Points != 10 {
		t.Fatalf("stored skills=%s err=%v", raw, err)
	}
}

func TestLoadKeepsSkillsWithPrerequisites(t *testing.T) {
	h := &harness{store: storage.NewMemoryStore(), pres: &recorder{}, now: testStart}
	_ = h.store.Set(context.Background(), KeySkills, []byte(`{
		"points": 0,
		"unlockedSkills": {"Mathematics": ["math_basic_arithmetic", "math_algebra_basics"]}
	}`))

	st := openTestService(t, h, h.store).Snapshot()
	if !st.Skills.Has("Mathematics", "math_algebra_basics") || st.SkillPoints() != 0 {
		t.Fatalf("skills=%v points=%d", st.Skills.UnlockedSkills, st.SkillPoints())
	}
}

func TestLoadResolvesPendingLevelUps(t *testing.T) {
	h := &harness{store: storage.NewMemoryStore(), pres: &recorder{}, now: testStart}
	ctx := context.Background()
	// 100 leaves level 1 and 250 leaves level 2; 30 is left over.
	_ = h.store.Set(ctx, KeyPlayer, []byte(`{"name":"Ada","level":1,"xp":380,"gold":7}`))

	st := openTestService(t, h, h.store).Snapshot()
	if st.Profile.Level != 3 || st.Profile.XP != 30 || st.SkillPoints() != 2 {
		t.Fatalf("level=%d xp=%g points=%d, want 3, 30, 2", st.Profile.Level, st.Profile.XP, st.SkillPoints())
	}
	if st.Profile.Gold != 7 {
		t.Fatalf("gold=%d, settling must not pay bonus gold", st.Profile.Gold)
	}

	raw, _, _ := h.store.Get(ctx, KeyPlayer)
	var blob profileBlob
	if err := json.Unmarshal(raw, &blob); err != nil || blob.Level != 3 || blob.SkillPoints != 2 {
		t.Fatalf("stored profile=%s err=%v", raw, err)
	}
}

func TestLoadCapsLevelAboveMax(t *testing.T) {
	h := &harness{store: storage.NewMemoryStore(), pres: &recorder{}, now: testStart}
	_ = h.store.Set(context.Background(), KeyPlayer, []byte(`{"name":"Ada","level":40,"xp":99999}`))

	st := openTestService(t, h, h.store).Snapshot()
	if st.Profile.Level != 11 || st.Profile.XP != 4700 {
		t.Fatalf("level=%d xp=%g, want 11 and 4700", st.Profile.Level, st.Profile.XP)
	}
}
