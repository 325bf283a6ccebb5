package app

import (
	"strings"

	"quizzy-backend/internal/domain"
)

// Grade decides correctness for one submitted answer. Both sides are
// trimmed and lower-cased, then compared for exact equality; question type
// never changes the rule (no free-text leniency). Returns the question's
// point value on a match and 0 otherwise. Total function, never errors.
func Grade(question domain.Question, answer string) (correct bool, points int) {
	if normalizeAnswer(answer) != normalizeAnswer(question.CorrectAnswer) {
		return false, 0
	}
	return true, questionPoints(question)
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// questionPoints treats a missing or non-positive point value as the
// default of 1.
func questionPoints(q domain.Question) int {
	if q.Points > 0 {
		return q.Points
	}
	return 1
}
