package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizzy-backend/internal/domain"
)

// QuizStore persists quizzes. DeleteQuiz cascades to the quiz's questions
// and responses in one transaction. SaveQuiz reports a share code collision
// at commit time as domain.ErrShareCodeTaken.
type QuizStore interface {
	SaveQuiz(ctx context.Context, quiz *domain.Quiz) error
	UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error
	GetQuiz(ctx context.Context, id string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context, filter QuizFilter) ([]domain.Quiz, error)
	FindQuizByShareCode(ctx context.Context, code string) (domain.Quiz, error)
	ShareCodeExists(ctx context.Context, code string) (bool, error)
	DeleteQuiz(ctx context.Context, id string) error
}

// QuizFilter narrows ListQuizzes. An empty UserID with PublicOnly set is the
// anonymous browse view.
type QuizFilter struct {
	UserID     string
	PublicOnly bool
}

// QuestionStore persists questions. ListQuestions returns the quiz's
// questions ordered by their order index ascending.
type QuestionStore interface {
	SaveQuestion(ctx context.Context, question *domain.Question) error
	UpdateQuestion(ctx context.Context, question *domain.Question) error
	GetQuestion(ctx context.Context, id string) (domain.Question, error)
	ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error)
	DeleteQuestion(ctx context.Context, id string) error
}

// ResponseStore persists graded responses. SaveResponses is an atomic batch:
// either every record in the slice is stored or none are.
type ResponseStore interface {
	SaveResponses(ctx context.Context, records []domain.QuizResponse) error
	ListResponsesForQuiz(ctx context.Context, quizID string) ([]domain.QuizResponse, error)
}

// UserStore persists quiz authors.
type UserStore interface {
	SaveUser(ctx context.Context, user *domain.User) error
	UpdateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// EventStore appends audit events.
type EventStore interface {
	SaveEvent(ctx context.Context, event *domain.Event) error
}

// Store is the full persistence surface the service needs.
type Store interface {
	QuizStore
	QuestionStore
	ResponseStore
	UserStore
	EventStore
}

// QuizResolver serves the public share-code lookup, possibly through a cache.
// Resolved quizzes are sanitized: correct answers are never present.
type QuizResolver interface {
	QuizByShareCode(ctx context.Context, code string) (domain.Quiz, error)
	InvalidateShareCode(ctx context.Context, code string) error
}

// QuizService contains the quiz authoring and quiz taking use cases.
type QuizService struct {
	store   Store
	public  QuizResolver
	now     func() time.Time
	newID   func() string
	newCode func() string
}

func NewQuizService(store Store, public QuizResolver) *QuizService {
	return &QuizService{
		store:   store,
		public:  public,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
		newCode: NewShareCode,
	}
}

// NewQuizServiceWithClock is test-only for deterministic timestamps and codes.
func NewQuizServiceWithClock(store Store, public QuizResolver, now func() time.Time, newID, newCode func() string) *QuizService {
	s := NewQuizService(store, public)
	if now != nil {
		s.now = now
	}
	if newID != nil {
		s.newID = newID
	}
	if newCode != nil {
		s.newCode = newCode
	}
	return s
}

// CreateQuizInput carries the owner-supplied quiz fields. IsPublic defaults
// to true when nil.
type CreateQuizInput struct {
	Title       string
	Description string
	IsPublic    *bool
	UserID      string
}

// CreateQuiz allocates a unique share code and persists the quiz. A share
// code collision committed by a concurrent create surfaces as
// domain.ErrShareCodeTaken from the store and triggers a regenerate.
func (s *QuizService) CreateQuiz(ctx context.Context, in CreateQuizInput) (domain.Quiz, error) {
	if strings.TrimSpace(in.Title) == "" || in.UserID == "" {
		return domain.Quiz{}, fmt.Errorf("%w: title and user_id are required", domain.ErrInvalidInput)
	}
	if _, err := s.store.GetUser(ctx, in.UserID); err != nil {
		return domain.Quiz{}, err
	}

	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}

	for attempt := 0; attempt < maxShareCodeTries; attempt++ {
		code, err := s.allocateShareCode(ctx)
		if err != nil {
			return domain.Quiz{}, err
		}
		now := s.now()
		quiz := domain.Quiz{
			ID:          s.newID(),
			Title:       in.Title,
			Description: in.Description,
			IsPublic:    isPublic,
			ShareCode:   code,
			UserID:      in.UserID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		err = s.store.SaveQuiz(ctx, &quiz)
		if err == nil {
			return quiz, nil
		}
		if errors.Is(err, domain.ErrShareCodeTaken) {
			continue // lost the race, pick a fresh code
		}
		return domain.Quiz{}, fmt.Errorf("save quiz: %w", err)
	}
	return domain.Quiz{}, fmt.Errorf("%w: share code allocation kept colliding", domain.ErrStorage)
}

// ListQuizzes returns the user's quizzes, or public quizzes when userID is
// empty. Question lists are attached so callers can show counts.
func (s *QuizService) ListQuizzes(ctx context.Context, userID string) ([]domain.Quiz, error) {
	filter := QuizFilter{UserID: userID}
	if userID == "" {
		filter.PublicOnly = true
	}
	quizzes, err := s.store.ListQuizzes(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range quizzes {
		questions, err := s.store.ListQuestions(ctx, quizzes[i].ID)
		if err != nil {
			return nil, err
		}
		quizzes[i].Questions = questions
	}
	return quizzes, nil
}

// Quiz returns one quiz with its ordered questions, correct answers included
// (owner view).
func (s *QuizService) Quiz(ctx context.Context, id string) (domain.Quiz, error) {
	quiz, err := s.store.GetQuiz(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	questions, err := s.store.ListQuestions(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz.Questions = questions
	return quiz, nil
}

// QuizByShareCode returns the public view of a quiz: questions attached,
// correct answers stripped. Served via the resolver so a cache can absorb
// repeated fetches from respondents.
func (s *QuizService) QuizByShareCode(ctx context.Context, code string) (domain.Quiz, error) {
	return s.public.QuizByShareCode(ctx, code)
}

// QuizUpdate holds partial quiz updates; nil fields are left untouched.
type QuizUpdate struct {
	Title       *string
	Description *string
	IsPublic    *bool
}

func (s *QuizService) UpdateQuiz(ctx context.Context, id string, update QuizUpdate) (domain.Quiz, error) {
	quiz, err := s.store.GetQuiz(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	if update.Title != nil && strings.TrimSpace(*update.Title) != "" {
		quiz.Title = *update.Title
	}
	if update.Description != nil {
		quiz.Description = *update.Description
	}
	if update.IsPublic != nil {
		quiz.IsPublic = *update.IsPublic
	}
	quiz.UpdatedAt = s.now()
	if err := s.store.UpdateQuiz(ctx, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("update quiz: %w", err)
	}
	_ = s.public.InvalidateShareCode(ctx, quiz.ShareCode)
	return quiz, nil
}

// DeleteQuiz removes the quiz and, transitively, all of its questions and
// responses. The cascade is transactional at the store.
func (s *QuizService) DeleteQuiz(ctx context.Context, id string) error {
	quiz, err := s.store.GetQuiz(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteQuiz(ctx, id); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	_ = s.public.InvalidateShareCode(ctx, quiz.ShareCode)
	return nil
}

// QuestionInput carries owner-supplied question fields. Type defaults to
// multiple choice, points to 1, order to one past the current last question.
type QuestionInput struct {
	Text          string
	Type          domain.QuestionType
	Options       []string
	CorrectAnswer string
	Points        *int
	Order         *int
}

func (s *QuizService) CreateQuestion(ctx context.Context, quizID string, in QuestionInput) (domain.Question, error) {
	if strings.TrimSpace(in.Text) == "" || strings.TrimSpace(in.CorrectAnswer) == "" {
		return domain.Question{}, fmt.Errorf("%w: text and correct_answer are required", domain.ErrInvalidInput)
	}
	quiz, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Question{}, err
	}

	qType := in.Type
	if qType == "" {
		qType = domain.QuestionMultipleChoice
	}
	points := 1
	if in.Points != nil && *in.Points > 0 {
		points = *in.Points
	}
	var order int
	if in.Order != nil {
		order = *in.Order
	} else {
		existing, err := s.store.ListQuestions(ctx, quizID)
		if err != nil {
			return domain.Question{}, err
		}
		order = len(existing) + 1
	}

	question := domain.Question{
		ID:            s.newID(),
		QuizID:        quizID,
		Text:          in.Text,
		Type:          qType,
		Options:       in.Options,
		CorrectAnswer: in.CorrectAnswer,
		Points:        points,
		Order:         order,
	}
	if err := s.store.SaveQuestion(ctx, &question); err != nil {
		return domain.Question{}, fmt.Errorf("save question: %w", err)
	}
	_ = s.public.InvalidateShareCode(ctx, quiz.ShareCode)
	return question, nil
}

// Questions lists a quiz's questions ordered by order index ascending,
// owner view (correct answers included).
func (s *QuizService) Questions(ctx context.Context, quizID string) ([]domain.Question, error) {
	if _, err := s.store.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return s.store.ListQuestions(ctx, quizID)
}

// QuestionUpdate holds partial question updates; nil fields stay untouched.
type QuestionUpdate struct {
	Text          *string
	Type          *domain.QuestionType
	Options       *[]string
	CorrectAnswer *string
	Points        *int
	Order         *int
}

func (s *QuizService) UpdateQuestion(ctx context.Context, id string, update QuestionUpdate) (domain.Question, error) {
	question, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return domain.Question{}, err
	}
	if update.Text != nil && strings.TrimSpace(*update.Text) != "" {
		question.Text = *update.Text
	}
	if update.Type != nil && *update.Type != "" {
		question.Type = *update.Type
	}
	if update.Options != nil {
		question.Options = *update.Options
	}
	if update.CorrectAnswer != nil && strings.TrimSpace(*update.CorrectAnswer) != "" {
		question.CorrectAnswer = *update.CorrectAnswer
	}
	if update.Points != nil {
		question.Points = *update.Points
	}
	if update.Order != nil {
		question.Order = *update.Order
	}
	if err := s.store.UpdateQuestion(ctx, &question); err != nil {
		return domain.Question{}, fmt.Errorf("update question: %w", err)
	}
	s.invalidateQuiz(ctx, question.QuizID)
	return question, nil
}

func (s *QuizService) DeleteQuestion(ctx context.Context, id string) error {
	question, err := s.store.GetQuestion(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteQuestion(ctx, id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	s.invalidateQuiz(ctx, question.QuizID)
	return nil
}

// invalidateQuiz drops the cached public view after a question mutation.
// Best effort: the cache TTL covers a miss here.
func (s *QuizService) invalidateQuiz(ctx context.Context, quizID string) {
	quiz, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return
	}
	_ = s.public.InvalidateShareCode(ctx, quiz.ShareCode)
}

// CreateUser registers a quiz author. Email is unique.
func (s *QuizService) CreateUser(ctx context.Context, username, email string) (domain.User, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" {
		return domain.User{}, fmt.Errorf("%w: username and email are required", domain.ErrInvalidInput)
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, err
	}
	user := domain.User{
		ID:        s.newID(),
		Username:  username,
		Email:     email,
		CreatedAt: s.now(),
	}
	if err := s.store.SaveUser(ctx, &user); err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

func (s *QuizService) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.store.GetUserByEmail(ctx, email)
}

func (s *QuizService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.store.ListUsers(ctx)
}

// UserUpdate holds partial user updates.
type UserUpdate struct {
	Username *string
	Email    *string
}

func (s *QuizService) UpdateUser(ctx context.Context, email string, update UserUpdate) (domain.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, err
	}
	if update.Username != nil && strings.TrimSpace(*update.Username) != "" {
		user.Username = *update.Username
	}
	if update.Email != nil && strings.TrimSpace(*update.Email) != "" {
		user.Email = *update.Email
	}
	if err := s.store.UpdateUser(ctx, &user); err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// UserDeletion reports what a user delete removed (or would remove).
type UserDeletion struct {
	UserEmail  string   `json:"user_email"`
	UserID     string   `json:"user_id"`
	QuizCount  int      `json:"quiz_count"`
	QuizTitles []string `json:"quiz_titles"`
}

// DeleteUser removes a user. When the user owns quizzes the delete is
// refused with domain.ErrUserHasQuizzes unless force is set, in which case
// every owned quiz is cascade-deleted first. The returned UserDeletion
// describes the owned quizzes either way.
func (s *QuizService) DeleteUser(ctx context.Context, email string, force bool) (UserDeletion, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return UserDeletion{}, err
	}
	quizzes, err := s.store.ListQuizzes(ctx, QuizFilter{UserID: user.ID})
	if err != nil {
		return UserDeletion{}, err
	}

	deletion := UserDeletion{
		UserEmail: user.Email,
		UserID:    user.ID,
		QuizCount: len(quizzes),
	}
	for _, quiz := range quizzes {
		deletion.QuizTitles = append(deletion.QuizTitles, quiz.Title)
	}
	if len(quizzes) > 0 && !force {
		return deletion, domain.ErrUserHasQuizzes
	}

	for _, quiz := range quizzes {
		if err := s.DeleteQuiz(ctx, quiz.ID); err != nil {
			return deletion, err
		}
	}
	if err := s.store.DeleteUser(ctx, user.ID); err != nil {
		return deletion, fmt.Errorf("delete user: %w", err)
	}
	return deletion, nil
}

// RecordEvent appends a client-reported activity record. A zero CreatedAt
// is stamped with the current time.
func (s *QuizService) RecordEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	if event.UserID == "" || event.UserEmail == "" || event.Details == "" || event.Status == "" {
		return domain.Event{}, fmt.Errorf("%w: user_id, user_email, event_details and status are required", domain.ErrInvalidInput)
	}
	event.ID = s.newID()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	if err := s.store.SaveEvent(ctx, &event); err != nil {
		return domain.Event{}, fmt.Errorf("save event: %w", err)
	}
	return event, nil
}
