package memory

import (
	"context"
	"sort"
	"sync"

	"quizzy-backend/internal/app"
	"quizzy-backend/internal/domain"
)

// Store is an in-memory implementation of app.Store, used by unit tests and
// as the fallback when no postgres URL is configured. All maps are guarded
// by one RWMutex; batch saves are trivially atomic under the write lock.
type Store struct {
	mu           sync.RWMutex
	users        map[string]domain.User
	userOrder    []string
	quizzes      map[string]domain.Quiz
	quizOrder    []string
	codes        map[string]string // share code -> quiz id
	questions    map[string]domain.Question
	questionSeq  map[string]int
	nextSeq      int
	responses    map[string][]domain.QuizResponse // quiz id -> append-only records
	events       []domain.Event
	failNextSave error // test hook for SaveResponses
}

var _ app.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		users:       make(map[string]domain.User),
		quizzes:     make(map[string]domain.Quiz),
		codes:       make(map[string]string),
		questions:   make(map[string]domain.Question),
		questionSeq: make(map[string]int),
		responses:   make(map[string][]domain.QuizResponse),
	}
}

// FailNextSaveResponses makes the next SaveResponses call return err.
// Test-only, for exercising the all-or-nothing submission path.
func (s *Store) FailNextSaveResponses(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextSave = err
}

func (s *Store) SaveQuiz(_ context.Context, quiz *domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.codes[quiz.ShareCode]; taken {
		return domain.ErrShareCodeTaken
	}
	stored := *quiz
	stored.Questions = nil
	s.quizzes[quiz.ID] = stored
	s.quizOrder = append(s.quizOrder, quiz.ID)
	s.codes[quiz.ShareCode] = quiz.ID
	return nil
}

func (s *Store) UpdateQuiz(_ context.Context, quiz *domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return domain.ErrQuizNotFound
	}
	stored := *quiz
	stored.Questions = nil
	s.quizzes[quiz.ID] = stored
	return nil
}

func (s *Store) GetQuiz(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *Store) ListQuizzes(_ context.Context, filter app.QuizFilter) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0)
	for _, id := range s.quizOrder {
		quiz, ok := s.quizzes[id]
		if !ok {
			continue
		}
		if filter.UserID != "" && quiz.UserID != filter.UserID {
			continue
		}
		if filter.UserID == "" && filter.PublicOnly && !quiz.IsPublic {
			continue
		}
		out = append(out, quiz)
	}
	return out, nil
}

func (s *Store) FindQuizByShareCode(_ context.Context, code string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codes[code]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return s.quizzes[id], nil
}

func (s *Store) ShareCodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.codes[code]
	return ok, nil
}

// DeleteQuiz removes the quiz together with its questions and responses.
func (s *Store) DeleteQuiz(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, id)
	delete(s.codes, quiz.ShareCode)
	for questionID, question := range s.questions {
		if question.QuizID == id {
			delete(s.questions, questionID)
			delete(s.questionSeq, questionID)
		}
	}
	delete(s.responses, id)
	return nil
}

func (s *Store) SaveQuestion(_ context.Context, question *domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[question.QuizID]; !ok {
		return domain.ErrQuizNotFound
	}
	s.questions[question.ID] = cloneQuestion(*question)
	s.nextSeq++
	s.questionSeq[question.ID] = s.nextSeq
	return nil
}

func (s *Store) UpdateQuestion(_ context.Context, question *domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[question.ID]; !ok {
		return domain.ErrQuestionNotFound
	}
	s.questions[question.ID] = cloneQuestion(*question)
	return nil
}

func (s *Store) GetQuestion(_ context.Context, id string) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	question, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return cloneQuestion(question), nil
}

func (s *Store) ListQuestions(_ context.Context, quizID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0)
	for _, question := range s.questions {
		if question.QuizID == quizID {
			out = append(out, cloneQuestion(question))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return s.questionSeq[out[i].ID] < s.questionSeq[out[j].ID]
	})
	return out, nil
}

func (s *Store) DeleteQuestion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.questions, id)
	delete(s.questionSeq, id)
	return nil
}

func (s *Store) SaveResponses(_ context.Context, records []domain.QuizResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failNextSave; err != nil {
		s.failNextSave = nil
		return err
	}
	for _, record := range records {
		s.responses[record.QuizID] = append(s.responses[record.QuizID], record)
	}
	return nil
}

func (s *Store) ListResponsesForQuiz(_ context.Context, quizID string) ([]domain.QuizResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.responses[quizID]
	out := make([]domain.QuizResponse, len(records))
	copy(out, records)
	return out, nil
}

func (s *Store) SaveUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	s.users[user.ID] = *user
	s.userOrder = append(s.userOrder, user.ID)
	return nil
}

func (s *Store) UpdateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		if user, ok := s.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) SaveEvent(_ context.Context, event *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

// Events returns a copy of the recorded events. Test helper.
func (s *Store) Events() []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Event, len(s.events))
	copy(out, s.events)
	return out
}

func cloneQuestion(q domain.Question) domain.Question {
	if q.Options != nil {
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		q.Options = options
	}
	return q
}
