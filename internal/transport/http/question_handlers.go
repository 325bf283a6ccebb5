package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quizzy-backend/internal/app"
	"quizzy-backend/internal/domain"
)

type createQuestionRequest struct {
	Text          string   `json:"text" validate:"required"`
	QuestionType  string   `json:"question_type" validate:"omitempty,oneof=multiple_choice true_false text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Points        *int     `json:"points" validate:"omitempty,gt=0"`
	Order         *int     `json:"order"`
}

func (h *Handler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "text and correct_answer are required")
		return
	}
	question, err := h.service.CreateQuestion(r.Context(), chi.URLParam(r, "quizID"), app.QuestionInput{
		Text:          req.Text,
		Type:          domain.QuestionType(req.QuestionType),
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Points:        req.Points,
		Order:         req.Order,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.Questions(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

type updateQuestionRequest struct {
	Text          *string   `json:"text"`
	QuestionType  *string   `json:"question_type" validate:"omitempty,oneof=multiple_choice true_false text"`
	Options       *[]string `json:"options"`
	CorrectAnswer *string   `json:"correct_answer"`
	Points        *int      `json:"points" validate:"omitempty,gt=0"`
	Order         *int      `json:"order"`
}

func (h *Handler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var req updateQuestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid question fields")
		return
	}
	update := app.QuestionUpdate{
		Text:          req.Text,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Points:        req.Points,
		Order:         req.Order,
	}
	if req.QuestionType != nil {
		qType := domain.QuestionType(*req.QuestionType)
		update.Type = &qType
	}
	question, err := h.service.UpdateQuestion(r.Context(), chi.URLParam(r, "questionID"), update)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuestion(r.Context(), chi.URLParam(r, "questionID")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Question deleted successfully"})
}
