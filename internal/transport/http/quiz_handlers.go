package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"quizzy-backend/internal/app"
	"quizzy-backend/internal/domain"
)

// Handler exposes the quiz service over REST.
type Handler struct {
	service  *app.QuizService
	validate *validator.Validate
}

func NewHandler(service *app.QuizService) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

type createQuizRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"is_public"`
	UserID      string `json:"user_id" validate:"required"`
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "title and user_id are required")
		return
	}
	quiz, err := h.service.CreateQuiz(r.Context(), app.CreateQuizInput{
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		UserID:      req.UserID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

// quizSummary is the list view: question count instead of the question list.
type quizSummary struct {
	domain.Quiz
	QuestionCount int `json:"question_count"`
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.service.ListQuizzes(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	summaries := make([]quizSummary, len(quizzes))
	for i, quiz := range quizzes {
		count := len(quiz.Questions)
		quiz.Questions = nil
		summaries[i] = quizSummary{Quiz: quiz, QuestionCount: count}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.Quiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	// Correct answers stay out of the quiz detail view; the questions
	// endpoint serves the owner's editable form.
	writeJSON(w, http.StatusOK, quiz.PublicView())
}

func (h *Handler) quizByShareCode(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.QuizByShareCode(r.Context(), chi.URLParam(r, "shareCode"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

type updateQuizRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

func (h *Handler) updateQuiz(w http.ResponseWriter, r *http.Request) {
	var req updateQuizRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	quiz, err := h.service.UpdateQuiz(r.Context(), chi.URLParam(r, "quizID"), app.QuizUpdate{
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuiz(r.Context(), chi.URLParam(r, "quizID")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz deleted successfully"})
}
