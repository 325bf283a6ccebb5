package domain

import "errors"

var (
	// ErrQuizNotFound is returned when a quiz id or share code does not resolve.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a question id does not resolve.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidInput marks a submission or create request missing required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmailTaken is returned when a user create collides on email.
	ErrEmailTaken = errors.New("email already exists")
	// ErrShareCodeTaken is surfaced by stores when a quiz insert violates the
	// share code unique constraint; the creation workflow regenerates and retries.
	ErrShareCodeTaken = errors.New("share code already exists")
	// ErrUserHasQuizzes blocks a non-forced user delete that would cascade.
	ErrUserHasQuizzes = errors.New("user has associated quizzes")
	// ErrStorage wraps persistence failures. Batch writes roll back before
	// surfacing it, so no partial submission state is ever visible.
	ErrStorage = errors.New("storage failure")
)
