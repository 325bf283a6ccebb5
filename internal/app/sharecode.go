package app

import (
	"context"
	"fmt"
	"math/rand"

	"quizzy-backend/internal/domain"
)

const (
	shareCodeLength   = 8
	shareCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// Bounds the allocate-check loop. Collisions in a 36^8 space are
	// astronomically unlikely, so hitting the bound means the store is lying.
	maxShareCodeTries = 32
)

// NewShareCode returns an 8 character code drawn from [A-Z0-9], each
// position an independent uniform pick. The generator is stateless and
// makes no uniqueness guarantee on its own; callers must verify the code
// against the store and retry on collision.
func NewShareCode() string {
	buf := make([]byte, shareCodeLength)
	for i := range buf {
		buf[i] = shareCodeAlphabet[rand.Intn(len(shareCodeAlphabet))]
	}
	return string(buf)
}

// allocateShareCode generates codes until the store reports one unused.
// The check-then-insert window is closed by the store's unique constraint:
// a concurrent create that commits the same code first turns our insert
// into domain.ErrShareCodeTaken, and CreateQuiz regenerates.
func (s *QuizService) allocateShareCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxShareCodeTries; attempt++ {
		code := s.newCode()
		exists, err := s.store.ShareCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check share code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: share code space reported exhausted", domain.ErrStorage)
}
