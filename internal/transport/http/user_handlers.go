package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quizzy-backend/internal/app"
	"quizzy-backend/internal/domain"
)

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "username and email are required")
		return
	}
	user, err := h.service.CreateUser(r.Context(), req.Username, req.Email)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// getUsers returns one user when ?user_email= is given, the full list
// otherwise.
func (h *Handler) getUsers(w http.ResponseWriter, r *http.Request) {
	if email := r.URL.Query().Get("user_email"); email != "" {
		user, err := h.service.UserByEmail(r.Context(), email)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
		return
	}
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid user fields")
		return
	}
	user, err := h.service.UpdateUser(r.Context(), chi.URLParam(r, "userEmail"), app.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("user_email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "user email is required")
		return
	}
	force := r.URL.Query().Get("force") == "true"

	deletion, err := h.service.DeleteUser(r.Context(), email, force)
	if errors.Is(err, domain.ErrUserHasQuizzes) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"warning":           fmt.Sprintf("User has %d associated quiz(es) that will be deleted", deletion.QuizCount),
			"user_email":        deletion.UserEmail,
			"user_id":           deletion.UserID,
			"quizzes_to_delete": deletion.QuizTitles,
			"quiz_count":        deletion.QuizCount,
			"message":           "Add ?force=true to confirm deletion with cascade",
		})
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User deleted successfully",
		"cascaded_deletions": map[string]any{
			"quizzes_deleted": deletion.QuizCount,
			"quiz_titles":     deletion.QuizTitles,
		},
	})
}
