package app

import (
	"context"
	"fmt"

	"quizzy-backend/internal/domain"
)

// QuizReport recomputes the per-respondent aggregate view for a quiz by
// re-scanning its stored responses. Nothing is cached or persisted.
//
// Records are grouped by (email, name); phone rides along from the group's
// first record. Repeated submissions by the same respondent merge into one
// group, so TotalAttempts counts distinct respondents rather than distinct
// submissions. There is no submission entity that would let us tell them
// apart.
func (s *QuizService) QuizReport(ctx context.Context, quizID string) (domain.QuizReport, error) {
	quiz, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizReport{}, err
	}
	responses, err := s.store.ListResponsesForQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizReport{}, fmt.Errorf("list responses: %w", err)
	}
	questions, err := s.store.ListQuestions(ctx, quizID)
	if err != nil {
		return domain.QuizReport{}, fmt.Errorf("list questions: %w", err)
	}
	pointsByQuestion := make(map[string]int, len(questions))
	for _, q := range questions {
		pointsByQuestion[q.ID] = questionPoints(q)
	}

	type groupKey struct {
		email, name string
	}
	groups := make(map[groupKey]*domain.RespondentSummary)
	order := make([]groupKey, 0)
	for _, record := range responses {
		maxPoints, ok := pointsByQuestion[record.QuestionID]
		if !ok {
			// The question was deleted after the response was recorded; the
			// record drops out of the report, matching join semantics.
			continue
		}
		key := groupKey{email: record.UserEmail, name: record.UserName}
		summary, seen := groups[key]
		if !seen {
			summary = &domain.RespondentSummary{
				UserName:  record.UserName,
				UserEmail: record.UserEmail,
				UserPhone: record.UserPhone,
			}
			groups[key] = summary
			order = append(order, key)
		}
		summary.TotalQuestions++
		if record.IsCorrect {
			summary.CorrectAnswers++
		}
		// Stored PointsEarned is the question's full value per record, so
		// this sum tracks answered value, not score.
		summary.PointsEarned += record.PointsEarned
		summary.TotalPoints += maxPoints
	}

	respondents := make([]domain.RespondentSummary, 0, len(order))
	for _, key := range order {
		summary := groups[key]
		summary.Percentage = percentage(summary.CorrectAnswers, summary.TotalQuestions)
		respondents = append(respondents, *summary)
	}

	return domain.QuizReport{
		QuizID:        quiz.ID,
		QuizTitle:     quiz.Title,
		TotalAttempts: len(respondents),
		Respondents:   respondents,
	}, nil
}
