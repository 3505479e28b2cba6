package engine

import (
	"context"
	"math"
	"strings"

	"eduquest/internal/catalog"
	"eduquest/internal/storage"
)

type QuestView struct {
	Quest
	Status QuestStatus
}

type CompleteResult struct {
	QuestID     string
	XP          XPResult
	GoldAwarded int
	// Revealed lists chain quests that became visible.
	Revealed []string
}

type ProgressResult struct {
	QuestID        string
	Progress       float64
	TargetProgress float64
	// Completion is set when a completion attempt succeeded. CompletionErr
	// explains a refused attempt.
	Completion    *CompleteResult
	CompletionErr error
}

// ReportedProgress is the progress to submit when the player marks the quest
// done by hand. Self-reported quests count as met; others keep what was
// recorded.
func (q Quest) ReportedProgress() float64 {
	if q.Condition.Type == CondUserAction && q.Progress < q.Condition.TargetValue {
		return q.Condition.TargetValue
	}
	return q.Progress
}

func (s *Service) prereqsMet(q *Quest) bool {
	for _, id := range q.Prerequisites {
		p, ok := s.st.quest(id)
		if !ok || !p.IsCompleted {
			return false
		}
	}
	return true
}

func (s *Service) questStatus(q *Quest) QuestStatus {
	switch {
	case q.IsCompleted:
		return StatusCompleted
	case !s.prereqsMet(q):
		return StatusLocked
	case q.Progress > 0:
		return StatusInProgress
	default:
		return StatusAvailable
	}
}

// Quests returns the quest log in order. Hidden quests are skipped unless
// includeHidden is set.
func (s *Service) Quests(includeHidden bool) []QuestView {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]QuestView, 0, len(s.st.Quests))
	for i := range s.st.Quests {
		q := &s.st.Quests[i]
		if q.IsHidden && !includeHidden {
			continue
		}
		out = append(out, QuestView{Quest: q.clone(), Status: s.questStatus(q)})
	}
	return out
}

func (s *Service) Quest(id string) (QuestView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.st.quest(id)
	if !ok {
		return QuestView{}, false
	}
	return QuestView{Quest: q.clone(), Status: s.questStatus(q)}, true
}

// UpdateQuestProgress adds increment to a quest's progress, capped at its
// target. With checkNow it then tries to complete the quest using the new
// progress value.
func (s *Service) UpdateQuestProgress(ctx context.Context, id string, increment float64, checkNow bool) (ProgressResult, error) {
	const op = "update progress"
	s.lock()
	defer s.unlock()

	q, ok := s.st.quest(id)
	if !ok {
		return ProgressResult{}, s.fail(notFound(op, "Quest %q not found.", id))
	}
	if q.IsCompleted {
		return ProgressResult{}, s.fail(precondition(op, "Quest %q is already completed.", q.Title))
	}
	if math.IsNaN(increment) || math.IsInf(increment, 0) || increment < 0 {
		return ProgressResult{}, s.fail(invalid(op, "progress increment must be a non-negative number"))
	}

	q.Progress = math.Min(q.TargetProgress, q.Progress+increment)
	s.touch(KeyQuests)
	res := ProgressResult{QuestID: q.ID, Progress: q.Progress, TargetProgress: q.TargetProgress}

	if checkNow {
		done, err := s.completeQuest(q, q.Progress)
		if err != nil {
			res.CompletionErr = s.fail(err)
		} else {
			res.Completion = done
		}
	} else {
		s.notify(SeverityInfo, "Quest %q progress: %g/%g", q.Title, q.Progress, q.TargetProgress)
	}
	s.commit(ctx)
	return res, nil
}

// CompleteQuest records currentProgress against the quest and, when its
// completion condition holds, marks it complete and pays out its rewards.
// A refused attempt still stores the progress.
func (s *Service) CompleteQuest(ctx context.Context, id string, currentProgress float64) (*CompleteResult, error) {
	s.lock()
	defer s.unlock()

	q, ok := s.st.quest(id)
	if !ok {
		return nil, s.fail(notFound("complete quest", "Quest %q not found.", id))
	}
	res, err := s.completeQuest(q, currentProgress)
	s.commit(ctx)
	if err != nil {
		return nil, s.fail(err)
	}
	return res, nil
}

func (s *Service) completeQuest(q *Quest, currentProgress float64) (*CompleteResult, *Error) {
	const op = "complete quest"
	if q.IsCompleted {
		return nil, precondition(op, "Quest %q is already completed.", q.Title)
	}
	if math.IsNaN(currentProgress) || math.IsInf(currentProgress, 0) || currentProgress < 0 {
		return nil, invalid(op, "progress must be a non-negative number")
	}
	if !s.prereqsMet(q) {
		return nil, precondition(op, "Quest %q is locked until %s are completed.", q.Title, strings.Join(q.Prerequisites, ", "))
	}

	q.Progress = math.Min(currentProgress, q.TargetProgress)
	s.touch(KeyQuests)
	if !conditionMet(q.Condition, q.TargetProgress, currentProgress) {
		if !KnownCondition(q.Condition.Type) {
			return nil, precondition(op, "Quest %q has a completion condition (%s) that cannot be checked.", q.Title, q.Condition.Type)
		}
		return nil, precondition(op, "Quest %q not yet complete. Current progress: %g/%g", q.Title, currentProgress, threshold(q.Condition, q.TargetProgress))
	}

	now := s.now().UTC()
	q.IsCompleted = true
	q.DateCompleted = &now

	res := &CompleteResult{QuestID: q.ID, GoldAwarded: q.GoldReward}
	res.XP = s.addXP(q.XPReward, q.Subject)
	s.addGold(q.GoldReward)
	s.notify(SeveritySuccess, "Quest %q Completed! Gained %g XP and %d Gold.", q.Title, q.XPReward, q.GoldReward)

	res.Revealed = s.revealNextStage(q)
	s.journal = append(s.journal, storage.Completion{
		QuestID:     q.ID,
		CompletedAt: now,
		XPAwarded:   q.XPReward,
		GoldAwarded: q.GoldReward,
	})
	s.evaluateAchievements()
	s.log.Debug("quest completed", "quest", q.ID, "level", s.st.Profile.Level, "revealed", res.Revealed)
	return res, nil
}

// revealNextStage unhides every quest of the same chain one stage later.
// Several quests may share a stage when the chain branches.
func (s *Service) revealNextStage(q *Quest) []string {
	if !q.IsChained || q.Chain == "" {
		return nil
	}
	var revealed []string
	next := q.Stage + 1
	for i := range s.st.Quests {
		n := &s.st.Quests[i]
		if n.Chain != q.Chain || n.Stage != next || !n.IsHidden {
			continue
		}
		n.IsHidden = false
		revealed = append(revealed, n.ID)
		s.notify(SeverityInfo, "New quest unlocked: %q!", n.Title)
	}
	return revealed
}

// RepeatQuest restarts a completed repeatable quest. Daily quests restart on
// the daily reset instead.
func (s *Service) RepeatQuest(ctx context.Context, id string) error {
	const op = "repeat quest"
	s.lock()
	defer s.unlock()

	q, ok := s.st.quest(id)
	if !ok {
		return s.fail(notFound(op, "Quest %q not found.", id))
	}
	if !q.IsRepeatable {
		return s.fail(precondition(op, "Quest %q cannot be repeated.", q.Title))
	}
	if q.Type == catalog.QuestDaily {
		return s.fail(precondition(op, "Daily quest %q resets with the daily refresh.", q.Title))
	}
	if !q.IsCompleted {
		return s.fail(precondition(op, "Quest %q is not completed yet.", q.Title))
	}
	q.IsCompleted = false
	q.Progress = 0
	q.DateCompleted = nil
	s.touch(KeyQuests)
	s.notify(SeverityInfo, "Quest %q is ready to be done again.", q.Title)
	s.commit(ctx)
	return nil
}

// completeMatching tries to complete every open, unlocked quest that match
// accepts, using progress as the observed value. Locked quests are skipped
// quietly; refused attempts are reported.
func (s *Service) completeMatching(match func(*Quest) bool, progress float64) []string {
	var done []string
	for i := range s.st.Quests {
		q := &s.st.Quests[i]
		if q.IsCompleted || !match(q) || !s.prereqsMet(q) {
			continue
		}
		if _, err := s.completeQuest(q, progress); err != nil {
			_ = s.fail(err)
			continue
		}
		done = append(done, q.ID)
	}
	return done
}

// VisitView records that the player opened a view and completes quests
// waiting for it.
func (s *Service) VisitView(ctx context.Context, view string) []string {
	s.lock()
	defer s.unlock()
	done := s.visitView(view)
	s.commit(ctx)
	return done
}

func (s *Service) visitView(view string) []string {
	view = strings.TrimSpace(view)
	return s.completeMatching(func(q *Quest) bool {
		return q.Condition.Type == CondViewVisited && q.Condition.Ref == view
	}, 1)
}
