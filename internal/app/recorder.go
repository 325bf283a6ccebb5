package app

import (
	"context"
	"fmt"
	"math"
	"strings"

	"quizzy-backend/internal/domain"
)

// SubmitResponses records one respondent's full submission against a quiz.
//
// The work is two-phase: a pure in-memory pass grades each entry in input
// order and builds the record list, then a single atomic SaveResponses call
// persists it. Entries referencing question ids outside the quiz's own
// question set, and entries with an absent answer, are silently skipped;
// they still count toward TotalQuestions but not toward ResponsesStored.
// A storage failure rolls the whole batch back and no partial state survives.
func (s *QuizService) SubmitResponses(ctx context.Context, quizID string, respondent domain.Respondent, answers []domain.AnswerEntry) (domain.SubmissionResult, error) {
	if quizID == "" || strings.TrimSpace(respondent.Name) == "" || strings.TrimSpace(respondent.Email) == "" {
		return domain.SubmissionResult{}, fmt.Errorf("%w: quiz_id, user_name and user_email are required", domain.ErrInvalidInput)
	}
	if _, err := s.store.GetQuiz(ctx, quizID); err != nil {
		return domain.SubmissionResult{}, err
	}
	if len(answers) == 0 {
		return domain.SubmissionResult{}, fmt.Errorf("%w: at least one response is required", domain.ErrInvalidInput)
	}

	questions, err := s.store.ListQuestions(ctx, quizID)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("list questions: %w", err)
	}
	byID := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	now := s.now()
	records := make([]domain.QuizResponse, 0, len(answers))
	correct := 0
	totalPoints := 0
	for _, entry := range answers {
		if entry.Answer == nil {
			continue
		}
		question, ok := byID[entry.QuestionID]
		if !ok {
			// Stale or foreign question references never abort the submission.
			continue
		}
		isCorrect, earned := Grade(question, *entry.Answer)
		if isCorrect {
			correct++
			totalPoints += earned
		}
		records = append(records, domain.QuizResponse{
			ID:         s.newID(),
			QuizID:     quizID,
			QuestionID: question.ID,
			UserName:   respondent.Name,
			UserEmail:  respondent.Email,
			UserPhone:  respondent.Phone,
			Answer:     *entry.Answer,
			IsCorrect:  isCorrect,
			// Stored per record is the question's full value regardless of
			// correctness; only the derived totals are score-like.
			PointsEarned: questionPoints(question),
			SubmittedAt:  now,
		})
	}

	if len(records) > 0 {
		if err := s.store.SaveResponses(ctx, records); err != nil {
			return domain.SubmissionResult{}, fmt.Errorf("save responses: %w", err)
		}
	}

	return domain.SubmissionResult{
		TotalQuestions:  len(answers),
		CorrectAnswers:  correct,
		TotalPoints:     totalPoints,
		Percentage:      percentage(correct, len(answers)),
		ResponsesStored: len(records),
	}, nil
}

// percentage rounds correct/total to the nearest whole percent, 0 when
// total is 0.
func percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
