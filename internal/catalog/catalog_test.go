package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefault(t *testing.T) {
	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}

	if len(c.Subjects) != 12 {
		t.Fatalf("subjects=%d, want 12", len(c.Subjects))
	}
	q, ok := c.Quest("math_fundamentals_2")
	if !ok {
		t.Fatalf("math_fundamentals_2 missing")
	}
	if q.Chain != "algebraic_ascent" || q.Stage != 2 || !q.IsHidden {
		t.Fatalf("unexpected chain data: %+v", q)
	}
	if _, ok := c.Quest("nope"); ok {
		t.Fatalf("unknown quest reported present")
	}

	n, ok := c.SkillNode("Mathematics", "math_problem_solver")
	if !ok || n.Cost != 3 || len(n.Prerequisites) != 2 {
		t.Fatalf("math_problem_solver=%+v ok=%v", n, ok)
	}
	if _, ok := c.SkillNode("English", "math_problem_solver"); ok {
		t.Fatalf("node should be scoped to its subject")
	}

	it, ok := c.ShopItem("avatar_hat_wizard")
	if !ok || it.Category != "accessory" || it.AssetID != "hat_wizard" {
		t.Fatalf("avatar_hat_wizard=%+v", it)
	}
	if got := len(c.LimitedOffers()); got != 3 {
		t.Fatalf("limited offers=%d, want 3", got)
	}

	b, ok := c.Battle("quadratic_equation_guardian")
	if !ok || b.BossHealth != 75 || len(b.AllQuestions()) != 3 {
		t.Fatalf("guardian=%+v", b)
	}
	if len(c.Onboarding) != 9 {
		t.Fatalf("onboarding steps=%d, want 9", len(c.Onboarding))
	}
	if a := c.Onboarding[3].Action; a == nil || a.Kind != ActionShowView || a.View != "quests" {
		t.Fatalf("step 3 action=%+v", a)
	}
}

func TestAvatarDefaults(t *testing.T) {
	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}

	layers := c.Layers()
	want := []string{"body", "head", "eyes", "mouth", "hair", "top", "bottom", "accessory"}
	if strings.Join(layers, ",") != strings.Join(want, ",") {
		t.Fatalf("layers=%v", layers)
	}
	def := c.DefaultAvatar()
	if def["top"] != "top_plain_shirt" || def["accessory"] != "accessory_none" {
		t.Fatalf("default avatar=%v", def)
	}
	free := c.FreeParts()
	if len(free["eyes"]) != 1 || free["eyes"][0] != "eyes_standard" {
		t.Fatalf("free eyes=%v", free["eyes"])
	}
	if th := c.FreeThemes(); len(th) != 1 || th[0] != "default" {
		t.Fatalf("free themes=%v", th)
	}
}

func TestValidateRejectsCycles(t *testing.T) {
	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}

	c.Trees = append(c.Trees, SkillTree{
		Subject: "History",
		Nodes: []SkillNode{
			{ID: "a", Cost: 1, Prerequisites: []string{"b"}},
			{ID: "b", Cost: 1, Prerequisites: []string{"a"}},
		},
	})
	c.index()

	err = c.Validate()
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("Validate err=%v, want cycle", err)
	}
}

func TestValidateRejectsDanglingReferences(t *testing.T) {
	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}

	c.Quests = append(c.Quests, QuestTemplate{
		ID:             "orphan",
		Type:           QuestSide,
		Prerequisites:  []string{"does_not_exist"},
		TargetProgress: 1,
	})
	c.Items = append(c.Items, ShopItem{ID: "bad_gear", Type: ItemAvatarGear, Category: "top", AssetID: "cape"})
	c.index()

	err = c.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"does_not_exist", "cape"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %q", err, want)
		}
	}
}

func TestLoadDirOverridesSingleTable(t *testing.T) {
	dir := t.TempDir()
	themes := `themes:
  - id: default
    name: Plain
    unlocked: true
  - id: fantasy
    name: Forest
    cost: 150
  - id: sci-fi
    name: Space
    cost: 300
  - id: ocean
    name: Deep Blue
    cost: 120
`
	if err := os.WriteFile(filepath.Join(dir, "themes.yaml"), []byte(themes), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	th, ok := c.Theme("ocean")
	if !ok || th.Cost != 120 {
		t.Fatalf("ocean=%+v ok=%v", th, ok)
	}
	if _, ok := c.Quest("daily_math_review"); !ok {
		t.Fatalf("quests should fall back to built-in content")
	}
}

func TestLoadDirMissing(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestConditionAcceptsBrowserShape(t *testing.T) {
	var c Condition
	if err := json.Unmarshal([]byte(`{"type":"view_visited","targetValue":"dashboard"}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Ref != "dashboard" || c.TargetValue != 1 {
		t.Fatalf("view condition=%+v", c)
	}

	c = Condition{}
	if err := json.Unmarshal([]byte(`{"type":"quiz_score","targetValue":70,"quizId":"algebra_quiz_1","wordCount":150}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.TargetValue != 70 || c.Params["quizId"] != "algebra_quiz_1" || c.Params["wordCount"] != "150" {
		t.Fatalf("quiz condition=%+v", c)
	}

	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Condition
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal canonical: %v", err)
	}
	if back.Params["quizId"] != "algebra_quiz_1" || back.TargetValue != 70 {
		t.Fatalf("canonical roundtrip=%+v", back)
	}
}
