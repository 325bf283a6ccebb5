package http

import (
	"net/http"
	"time"

	"quizzy-backend/internal/domain"
)

type recordEventRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	UserEmail string `json:"user_email" validate:"required,email"`
	Details   string `json:"event_details" validate:"required"`
	Status    string `json:"status" validate:"required"`
	CreatedAt string `json:"created_at"`
}

func (h *Handler) recordEvent(w http.ResponseWriter, r *http.Request) {
	var req recordEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "user_id, user_email, event_details and status are required")
		return
	}

	event := domain.Event{
		UserID:    req.UserID,
		UserEmail: req.UserEmail,
		Details:   req.Details,
		Status:    req.Status,
	}
	// An unparsable client timestamp falls back to server time.
	if req.CreatedAt != "" {
		if ts, err := time.Parse(time.RFC3339, req.CreatedAt); err == nil {
			event.CreatedAt = ts
		}
	}

	stored, err := h.service.RecordEvent(r.Context(), event)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}
