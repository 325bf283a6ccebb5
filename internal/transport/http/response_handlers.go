package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quizzy-backend/internal/domain"
)

type submitResponsesRequest struct {
	QuizID    string        `json:"quiz_id" validate:"required"`
	UserName  string        `json:"user_name" validate:"required"`
	UserEmail string        `json:"user_email" validate:"required,email"`
	UserPhone string        `json:"user_phone"`
	Responses []answerEntry `json:"responses" validate:"required,min=1"`
}

// answerEntry deliberately skips per-entry validation: entries with unknown
// question ids or absent answers are dropped by the recorder, not rejected.
type answerEntry struct {
	QuestionID string  `json:"question_id"`
	Answer     *string `json:"answer"`
}

type submitResponsesResponse struct {
	Message string `json:"message"`
	domain.SubmissionResult
}

func (h *Handler) submitResponses(w http.ResponseWriter, r *http.Request) {
	var req submitResponsesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "quiz_id, user_name, user_email and responses are required")
		return
	}

	answers := make([]domain.AnswerEntry, len(req.Responses))
	for i, entry := range req.Responses {
		answers[i] = domain.AnswerEntry{QuestionID: entry.QuestionID, Answer: entry.Answer}
	}
	respondent := domain.Respondent{Name: req.UserName, Email: req.UserEmail, Phone: req.UserPhone}

	result, err := h.service.SubmitResponses(r.Context(), req.QuizID, respondent, answers)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitResponsesResponse{
		Message:          "Quiz responses submitted successfully",
		SubmissionResult: result,
	})
}

func (h *Handler) quizReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.QuizReport(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
