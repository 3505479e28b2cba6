package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCompleteQuestGrantsRewards(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	res, err := svc.CompleteQuest(ctx, "history_ancient_civilizations", 1)
	if err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if res.XP.LevelAfter != 2 || res.GoldAwarded != 20 {
		t.Fatalf("res=%+v", res)
	}

	q := mustQuest(t, svc, "history_ancient_civilizations")
	if q.Status != StatusCompleted || q.DateCompleted == nil || !q.DateCompleted.Equal(testStart) {
		t.Fatalf("quest=%+v", q)
	}
	p := svc.Snapshot().Profile
	// 110 XP: one level, 10 left over. Gold: 50 start + 20 reward + 22 bonus.
	if p.Level != 2 || p.XP != 10 || p.Gold != 92 {
		t.Fatalf("profile level=%d xp=%g gold=%d", p.Level, p.XP, p.Gold)
	}
	if p.Subjects["History"].XP != 110 {
		t.Fatalf("history xp=%g", p.Subjects["History"].XP)
	}
	if !p.HasAchievement("first_quest") {
		t.Fatalf("achievements=%v", p.Achievements)
	}
	if !h.pres.saw(SeveritySuccess, "Completed!") {
		t.Fatalf("notes=%+v", h.pres.notes)
	}

	hist, err := svc.History(ctx, 5)
	if err != nil || len(hist) != 1 || hist[0].QuestID != "history_ancient_civilizations" || hist[0].XPAwarded != 110 {
		t.Fatalf("history=%+v err=%v", hist, err)
	}
}

func TestCompleteQuestRefusals(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CompleteQuest(ctx, "no_such_quest", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing quest err=%v", err)
	}

	if _, err := svc.CompleteQuest(ctx, "math_fundamentals_2", 10); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("locked quest err=%v", err)
	}
	if q := mustQuest(t, svc, "math_fundamentals_2"); q.Progress != 0 || q.Status != StatusLocked {
		t.Fatalf("locked quest changed: %+v", q)
	}

	if _, err := svc.CompleteQuest(ctx, "english_vocabulary_builder", 10); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("unknown condition err=%v", err)
	}
	if q := mustQuest(t, svc, "english_vocabulary_builder"); q.IsCompleted {
		t.Fatalf("unknown condition type completed the quest")
	}

	if _, err := svc.CompleteQuest(ctx, "science_scientific_method", 1); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	gold := svc.Snapshot().Profile.Gold
	if _, err := svc.CompleteQuest(ctx, "science_scientific_method", 1); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("second completion err=%v", err)
	}
	if svc.Snapshot().Profile.Gold != gold {
		t.Fatalf("second completion paid out")
	}
}

func TestUnmetConditionStoresProgress(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CompleteQuest(context.Background(), "math_fundamentals_1", 50)
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("err=%v, want ErrPreconditionFailed", err)
	}
	q := mustQuest(t, svc, "math_fundamentals_1")
	if q.IsCompleted || q.Progress != 50 || q.Status != StatusInProgress {
		t.Fatalf("quest=%+v", q)
	}
	if svc.Snapshot().Profile.XP != 0 {
		t.Fatalf("refused completion granted XP")
	}
}

func TestUpdateQuestProgressClampsAndCompletes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.UpdateQuestProgress(ctx, "math_practice_decimals", 12, false)
	if err != nil || res.Progress != 12 || res.Completion != nil {
		t.Fatalf("res=%+v err=%v", res, err)
	}
	res, err = svc.UpdateQuestProgress(ctx, "math_practice_decimals", 5, true)
	if err != nil || res.Progress != 17 || res.Completion != nil || !errors.Is(res.CompletionErr, ErrPreconditionFailed) {
		t.Fatalf("res=%+v err=%v", res, err)
	}
	res, err = svc.UpdateQuestProgress(ctx, "math_practice_decimals", 50, true)
	if err != nil || res.Progress != 20 || res.Completion == nil {
		t.Fatalf("res=%+v err=%v", res, err)
	}
	if q := mustQuest(t, svc, "math_practice_decimals"); !q.IsCompleted || q.Progress != q.TargetProgress {
		t.Fatalf("quest=%+v", q)
	}

	if _, err := svc.UpdateQuestProgress(ctx, "math_practice_decimals", 1, false); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("progress on completed quest err=%v", err)
	}
	if _, err := svc.UpdateQuestProgress(ctx, "nope", 1, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing quest err=%v", err)
	}
}

func TestChainRevealOnlyTouchesSameChain(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	res, err := svc.CompleteQuest(ctx, "literary_journey_1", 80)
	if err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if len(res.Revealed) != 1 || res.Revealed[0] != "literary_journey_2" {
		t.Fatalf("revealed=%v", res.Revealed)
	}
	if q := mustQuest(t, svc, "literary_journey_2"); q.IsHidden {
		t.Fatalf("stage 2 still hidden")
	}
	for _, id := range []string{"math_fundamentals_2", "literary_journey_3_branch_a", "literary_journey_3_branch_b"} {
		if q := mustQuest(t, svc, id); !q.IsHidden {
			t.Fatalf("%s revealed", id)
		}
	}
	if !h.pres.saw(SeverityInfo, "New quest unlocked") {
		t.Fatalf("notes=%+v", h.pres.notes)
	}

	// Stage 2 waits on a condition type nothing reports; make it checkable.
	svc.mu.Lock()
	q, _ := svc.st.quest("literary_journey_2")
	q.Condition.Type = CondUserAction
	svc.mu.Unlock()

	res, err = svc.CompleteQuest(ctx, "literary_journey_2", 1)
	if err != nil {
		t.Fatalf("CompleteQuest stage 2: %v", err)
	}
	if len(res.Revealed) != 2 {
		t.Fatalf("revealed=%v, want both branches", res.Revealed)
	}
}

func TestQuestsHidesHiddenByDefault(t *testing.T) {
	svc, _ := newTestService(t)

	visible := svc.Quests(false)
	all := svc.Quests(true)
	if len(all) <= len(visible) {
		t.Fatalf("visible=%d all=%d", len(visible), len(all))
	}
	for _, q := range visible {
		if q.IsHidden {
			t.Fatalf("hidden quest %s listed", q.ID)
		}
	}
}

func TestRepeatQuest(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.RepeatQuest(ctx, "art_sketch_challenge"); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("repeat before completion err=%v", err)
	}
	if _, err := svc.CompleteQuest(ctx, "art_sketch_challenge", 1); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if err := svc.RepeatQuest(ctx, "art_sketch_challenge"); err != nil {
		t.Fatalf("RepeatQuest: %v", err)
	}
	q := mustQuest(t, svc, "art_sketch_challenge")
	if q.IsCompleted || q.Progress != 0 || q.DateCompleted != nil {
		t.Fatalf("quest=%+v", q)
	}

	if _, err := svc.CompleteQuest(ctx, "history_ancient_civilizations", 1); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}
	if err := svc.RepeatQuest(ctx, "history_ancient_civilizations"); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("repeat of one-off quest err=%v", err)
	}
	if err := svc.RepeatQuest(ctx, "daily_read_article"); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("repeat of daily quest err=%v", err)
	}
}

func TestDailyResetAfterRefreshPeriod(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	if res := svc.CheckDailyResets(ctx); !res.Ran {
		t.Fatalf("first check should run without a stamp")
	}
	if _, err := svc.CompleteQuest(ctx, "daily_read_article", 1); err != nil {
		t.Fatalf("CompleteQuest: %v", err)
	}

	h.advance(23 * time.Hour)
	if res := svc.CheckDailyResets(ctx); res.Ran {
		t.Fatalf("reset ran after 23h")
	}
	if q := mustQuest(t, svc, "daily_read_article"); !q.IsCompleted {
		t.Fatalf("daily reset too early")
	}
	if got := svc.NextRefresh(); !got.Equal(testStart.Add(24 * time.Hour)) {
		t.Fatalf("NextRefresh=%v", got)
	}

	h.advance(61 * time.Minute)
	res := svc.CheckDailyResets(ctx)
	if !res.Ran || len(res.Reset) != 1 || res.Reset[0] != "daily_read_article" {
		t.Fatalf("res=%+v", res)
	}
	q := mustQuest(t, svc, "daily_read_article")
	if q.IsCompleted || q.Progress != 0 {
		t.Fatalf("quest=%+v", q)
	}
	if got := svc.Snapshot().LastRefresh; got == nil || !got.Equal(h.now) {
		t.Fatalf("LastRefresh=%v, want %v", got, h.now)
	}

	again := openTestService(t, h, h.store)
	if got := again.Snapshot().LastRefresh; got == nil || !got.Equal(h.now) {
		t.Fatalf("reloaded LastRefresh=%v", got)
	}
}

func TestVisitViewCompletesWaitingQuest(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Locked behind the avatar quest.
	if done := svc.VisitView(ctx, "dashboard"); len(done) != 0 {
		t.Fatalf("completed %v while locked", done)
	}
	if err := svc.EquipAvatarPart(ctx, "eyes", "eyes_standard"); err != nil {
		t.Fatalf("EquipAvatarPart: %v", err)
	}
	if q := mustQuest(t, svc, "onboarding_customize_avatar"); !q.IsCompleted {
		t.Fatalf("avatar quest not completed")
	}
	done := svc.VisitView(ctx, "dashboard")
	if len(done) != 1 || done[0] != "onboarding_explore_dashboard" {
		t.Fatalf("done=%v", done)
	}
}

func TestReportedProgress(t *testing.T) {
	svc, _ := newTestService(t)

	sketch := mustQuest(t, svc, "art_sketch_challenge")
	if got := sketch.ReportedProgress(); got != sketch.Condition.TargetValue {
		t.Fatalf("self-reported progress=%g, want %g", got, sketch.Condition.TargetValue)
	}
	if _, err := svc.UpdateQuestProgress(context.Background(), "math_practice_decimals", 7, false); err != nil {
		t.Fatalf("UpdateQuestProgress: %v", err)
	}
	if got := mustQuest(t, svc, "math_practice_decimals").ReportedProgress(); got != 7 {
		t.Fatalf("tracked progress=%g, want 7", got)
	}
}
