package engine

import "eduquest/internal/catalog"

// Completion condition types. Each compares observed progress against the
// condition's threshold; only the meaning of the number differs.
const (
	CondQuizScore         = "quiz_score"
	CondProblemsSolved    = "problems_solved"
	CondReadingCompleted  = "reading_completed"
	CondProjectSubmission = "project_submission"
	CondBattleWon         = "battle_won"
	CondUserAction        = "user_action"
	CondTimeSpent         = "time_spent"
	CondAvatarCustomized  = "avatar_customized"
	CondViewVisited       = "view_visited"
)

var knownConditions = map[string]bool{
	CondQuizScore:         true,
	CondProblemsSolved:    true,
	CondReadingCompleted:  true,
	CondProjectSubmission: true,
	CondBattleWon:         true,
	CondUserAction:        true,
	CondTimeSpent:         true,
	CondAvatarCustomized:  true,
	CondViewVisited:       true,
}

// KnownCondition reports whether a quest with this condition type can ever
// be completed.
func KnownCondition(t string) bool { return knownConditions[t] }

// threshold is the progress value a condition requires. Conditions whose
// target is a name rather than a number fall back to the quest's target.
func threshold(c catalog.Condition, targetProgress float64) float64 {
	if c.TargetValue > 0 {
		return c.TargetValue
	}
	return targetProgress
}

func conditionMet(c catalog.Condition, targetProgress, progress float64) bool {
	if !knownConditions[c.Type] {
		return false
	}
	return progress >= threshold(c, targetProgress)
}
