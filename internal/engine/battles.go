package engine

import (
	"context"
	"math"
	"strings"

	"eduquest/internal/catalog"
)

type QuizResult struct {
	QuizID  string
	Correct int
	Total   int
	// Score is the percentage of correct answers, rounded.
	Score     float64
	Completed []string
}

type BattleResult struct {
	BattleID   string
	Correct    int
	Damage     int
	BossHealth int
	Won        bool
	Completed  []string
}

// SubmitQuiz grades answers in question order and feeds the percentage score
// to every open quiz_score quest for this quiz.
func (s *Service) SubmitQuiz(ctx context.Context, quizID string, answers []string) (QuizResult, error) {
	const op = "quiz"
	s.lock()
	defer s.unlock()

	b, err := s.encounter(op, quizID, catalog.BattleQuiz, answers)
	if err != nil {
		return QuizResult{}, s.fail(err)
	}
	qs := b.AllQuestions()
	res := QuizResult{QuizID: b.ID, Total: len(qs)}
	for i, q := range qs {
		if i < len(answers) && answerMatches(q, answers[i]) {
			res.Correct++
		}
	}
	res.Score = math.Round(float64(res.Correct) * 100 / float64(res.Total))
	s.notify(SeverityInfo, "%s: %d/%d correct (%g%%).", b.Name, res.Correct, res.Total, res.Score)

	res.Completed = s.completeMatching(func(q *Quest) bool {
		return q.Condition.Type == CondQuizScore && q.Condition.Params["quizId"] == b.ID
	}, res.Score)
	s.commit(ctx)
	return res, nil
}

// FightBattle deals each correctly answered question's damage to the boss.
// The battle is won when the total reaches the boss's health.
func (s *Service) FightBattle(ctx context.Context, battleID string, answers []string) (BattleResult, error) {
	const op = "battle"
	s.lock()
	defer s.unlock()

	b, err := s.encounter(op, battleID, catalog.BattleBattle, answers)
	if err != nil {
		return BattleResult{}, s.fail(err)
	}
	res := BattleResult{BattleID: b.ID, BossHealth: b.BossHealth}
	for i, q := range b.AllQuestions() {
		if i < len(answers) && answerMatches(q, answers[i]) {
			res.Correct++
			res.Damage += q.Damage
		}
	}
	res.Won = res.Damage >= b.BossHealth
	if !res.Won {
		s.notify(SeverityWarning, "%s survives with %d health left. Study up and try again!", b.Name, b.BossHealth-res.Damage)
		return res, nil
	}
	s.notify(SeveritySuccess, "You defeated %s!", b.Name)
	res.Completed = s.completeMatching(func(q *Quest) bool {
		return q.Condition.Type == CondBattleWon && q.Condition.Ref == b.ID
	}, 1)
	s.commit(ctx)
	return res, nil
}

func (s *Service) encounter(op, id string, kind catalog.BattleKind, answers []string) (catalog.Battle, *Error) {
	b, ok := s.cat.Battle(id)
	if !ok {
		return catalog.Battle{}, notFound(op, "%q not found.", id)
	}
	if b.Kind != kind {
		return catalog.Battle{}, invalid(op, "%s is a %s, not a %s", b.Name, b.Kind, kind)
	}
	if n := len(b.AllQuestions()); len(answers) > n {
		return catalog.Battle{}, invalid(op, "%s has %d questions, got %d answers", b.Name, n, len(answers))
	}
	return b, nil
}

// answerMatches accepts the full option text or just its letter, so "B"
// answers "B) $2a + 6b$".
func answerMatches(q catalog.Question, answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	correct := strings.TrimSpace(q.CorrectAnswer)
	if strings.EqualFold(answer, correct) {
		return true
	}
	letter, _, ok := strings.Cut(correct, ")")
	return ok && strings.EqualFold(strings.TrimSuffix(answer, ")"), strings.TrimSpace(letter))
}
