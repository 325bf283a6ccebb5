package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizzy-backend/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps error kinds to HTTP statuses. Storage errors get a
// generic message so internals never leak to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, domain.ErrEmailTaken.Error())
	case errors.Is(err, domain.ErrShareCodeTaken):
		writeError(w, http.StatusConflict, domain.ErrShareCodeTaken.Error())
	case errors.Is(err, domain.ErrStorage):
		log.Printf("storage error: %v", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
