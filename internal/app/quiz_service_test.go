package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quizzy-backend/internal/app"
	"quizzy-backend/internal/domain"
	"quizzy-backend/internal/infra/memory"
)

var testTime = time.Date(2026, time.January, 22, 9, 0, 0, 0, time.UTC)

// newTestService wires a QuizService against the in-memory store with a
// fixed clock and sequential ids, so tests see stable values.
func newTestService(t *testing.T) (*memory.Store, *app.QuizService) {
	t.Helper()
	store := memory.NewStore()
	resolver := memory.NewQuizCache(memory.NewStoreQuizLoader(store), 5*time.Minute)
	service := app.NewQuizServiceWithClock(store, resolver,
		func() time.Time { return testTime },
		sequentialIDs("id"),
		nil,
	)
	return store, service
}

// sequentialIDs returns a generator producing prefix-1, prefix-2, ...
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func mustCreateUser(t *testing.T, service *app.QuizService, username, email string) domain.User {
	t.Helper()
	user, err := service.CreateUser(context.Background(), username, email)
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func mustCreateQuiz(t *testing.T, service *app.QuizService, userID, title string) domain.Quiz {
	t.Helper()
	quiz, err := service.CreateQuiz(context.Background(), app.CreateQuizInput{
		Title:  title,
		UserID: userID,
	})
	if err != nil {
		t.Fatalf("create quiz %q: %v", title, err)
	}
	return quiz
}

func mustCreateQuestion(t *testing.T, service *app.QuizService, quizID string, in app.QuestionInput) domain.Question {
	t.Helper()
	question, err := service.CreateQuestion(context.Background(), quizID, in)
	if err != nil {
		t.Fatalf("create question %q: %v", in.Text, err)
	}
	return question
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestCreateQuizDefaults(t *testing.T) {
	ctx := context.Background()
	_, service := newTestService(t)
	user := mustCreateUser(t, service, "alice", "alice@example.com")

	quiz, err := service.CreateQuiz(ctx, app.CreateQuizInput{
		Title:       "Geography",
		Description: "Capitals of the world",
		UserID:      user.ID,
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if quiz.ID == "" {
		t.Fatalf("expected generated id")
	}
	if !quiz.IsPublic {
		t.Fatalf("quizzes should default to public")
	}
	if len(quiz.ShareCode) != 8 {
		t.Fatalf("expected 8 character share code, got %q", quiz.ShareCode)
	}
	if !quiz.CreatedAt.Equal(testTime) || !quiz.UpdatedAt.Equal(testTime) {
		t.Fatalf("timestamps not stamped from clock: %v / %v", quiz.CreatedAt, quiz.UpdatedAt)
	}

	private, err := service.CreateQuiz(ctx, app.CreateQuizInput{
		Title:    "Hidden",
		IsPublic: boolPtr(false),
		UserID:   user.ID,
	})
	if err != nil {
		t.Fatalf("create private quiz: %v", err)
	}
	if private.IsPublic {
		t.Fatalf("explicit is_public=false ignored")
	}
	if private.ShareCode == quiz.ShareCode {
		t.Fatalf("two quizzes got the same share code %q", quiz.ShareCode)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	ctx := context.Background()
	_, service := newTestService(t)
	user := mustCreateUser(t, service, "alice", "alice@example.com")

	if _, err := service.CreateQuiz(ctx, app.CreateQuizInput{Title: "  ", UserID: user.ID}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank title: want ErrInvalidInput, got %v", err)
	}
	if _, err := service.CreateQuiz(ctx, app.CreateQuizInput{Title: "T", UserID: "nope"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("unknown owner: want ErrUserNotFound, got %v", err)
	}
}

func TestListQuizzesFiltering(t *testing.T) {
	ctx := context.Background()
	_, service := newTestService(t)
	alice := mustCreateUser(t, service, "alice", "alice@example.com")
	bob := mustCreateUser(t, service, "bob", "bob@example.com")

	mustCreateQuiz(t, service, alice.ID, "Alice public")
	if _, err := service.CreateQuiz(ctx, app.CreateQuizInput{
		Title:    "Alice private",
		IsPublic: boolPtr(false),
		UserID:   alice.ID,
	}); err != nil {
		t.Fatalf("create private quiz: %v", err)
	}
	mustCreateQuiz(t, service, bob.ID, "Bob public")

	mine, err := service.ListQuizzes(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list own quizzes: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("owner view should include private quizzes, got %d", len(mine))
	}

	public, err := service.ListQuizzes(ctx, "")
	if err != nil {
		t.Fatalf("list public quizzes: %v", err)
	}
	if len(public) != 2 {
		t.Fatalf("anonymous view should only show public quizzes, got %d", len(public))
	}
	for _, quiz := range public {
		if !quiz.IsPublic {
			t.Fatalf("private quiz %q leaked into public listing", quiz.Title)
		}
	}
}

func TestCreateQuestionDefaults(t *testing.T) {
	_, service := newTestService(t)
	user := mustCreateUser(t, service, "alice", "alice@example.com")
	quiz := mustCreateQuiz(t, service, user.ID, "Geography")

	first := mustCreateQuestion(t, service, quiz.ID, app.QuestionInput{
		Text:          "Capital of France?",
		Options:       []string{"Paris", "Lyon"},
		CorrectAnswer: "Paris",
	})
	if first.Type != domain.QuestionMultipleChoice {
		t.Fatalf("type should default to multiple_choice, got %s", first.Type)
	}
	if first.Points != 1 {
		t.Fatalf("points should default to 1, got %d", first.Points)
	}
	if first.Order != 1 {
		t.Fatalf("first question order should default to 1, got %d", first.Order)
	}

	second := mustCreateQuestion(t, service, quiz.ID, app.QuestionInput{
		Text:          "Earth is round",
		Type:          domain.QuestionTrueFalse,
		CorrectAnswer: "true",
		Points:        intPtr(3),
	})
	if second.Order != 2 {
		t.Fatalf("second question order should default to 2, got %d", second.Order)
	}
	if second.Points != 3 {
		t.Fatalf("explicit points ignored, got %d", second.Points)
	}
}

func TestCreateQuestionValidation(t *testing.T) {
	ctx := context.Background()
	_, service := newTestService(t)
	user := mustCreateUser(t, service, "alice", "alice@example.com")
	quiz := mustCreateQuiz(t, service, user.ID, "Geography")

	if _, err := service.CreateQuestion(ctx, quiz.ID, app.QuestionInput{Text: "", CorrectAnswer: "x"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank text: want ErrInvalidInput, got %v", err)
	}
	if _, err := service.CreateQuestion(ctx, "missing", app.QuestionInput{Text: "Q", CorrectAnswer: "x"}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("missing quiz: want ErrQuizNotFound, got %v", err)
	}
}

func TestShareCodeViewIsSanitized(t *testing.T) {
	ctx := context.Background()
	_, service := newTestService(t)
	user := mustCreateUser(t, service, "alice", "alice@example.com")
	quiz := mustCreateQuiz(t, service, user.ID, "Geography")
	mustCreateQuestion(t, service, quiz.ID, app.QuestionInput{
		Text:          "Capital of France?",
		Options:       []string{"Paris", "Lyon"},
		CorrectAnswer: "Paris",
	})

	shared, err := service.QuizByShareCode(ctx, quiz.ShareCode)
	if err != nil {
		t.Fatalf("fetch by share code: %v", err)
	}
	if shared.ID != quiz.ID {
		t.Fatalf("wrong quiz resolved: %s", shared.ID)
	}
	if len(shared.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(shared.Questions))
	}
	if shared.Questions[0].CorrectAnswer != "" {
		t.Fatalf("correct answer leaked through share-code view")
	}
	if len(shared.Questions[0].Options) != 2 {
		t.Fatalf("options should survive sanitizing, got %v", shared.Questions[0].Options)
	}

	if _, err := service.QuizByShareCode(ctx, "NOPE0000"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("unknown code: want ErrQuizNotFound, got %v", err)
	}
}

func TestQuizMutationsInvalidateShareCodeView(t *testing.T) {
	ctx := context.Background()
	_, service := newTestService(t)
	user := mustCreateUser(t, service, "alice", "alice@example.com")
	quiz := mustCreateQuiz(t, service, user.ID, "Geography")
	question := mustCreateQuestion(t, service, quiz.ID, app.QuestionInput{
		Text:          "Capital of France?",
		CorrectAnswer: "Paris",
	})

	// Prime the cache.
	if _, err := service.QuizByShareCode(ctx, quiz.ShareCode); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	if _, err := service.UpdateQuiz(ctx, quiz.ID, app.QuizUpdate{Title: strPtr("World capitals")}); err != nil {
		t.Fatalf("update quiz: %v", err)
	}
	shared, err := service.QuizByShareCode(ctx, quiz.ShareCode)
	if err != nil {
		t.Fatalf("refetch after quiz update: %v", err)
	}
	if shared.Title != "World capitals" {
		t.Fatalf("share-code view served stale title %q", shared.Title)
	}

	if _, err := service.UpdateQuestion(ctx, question.ID, app.QuestionUpdate{Text: strPtr("Capital city of France?")}); err != nil {
		t.Fatalf("update question: %v", err)
	}
	shared, err = service.QuizByShareCode(ctx, quiz.ShareCode)
	if err != nil {
		t.Fatalf("refetch after question update: %v", err)
	}
	if shared.Questions[0].Text != "Capital city of France?" {
		t.Fatalf("share-code view served stale question %q", shared.Questions[0].Text)
	}
}

func TestDeleteQuizCascades(t *testing.T) {
	ctx := context.Background()
	store, service := newTestService(t)
	user := mustCreateUser(t, service, "alice", "alice@example.com")
	quiz := mustCreateQuiz(t, service, user.ID, "Geography")
	question := mustCreateQuestion(t, service, quiz.ID, app.QuestionInput{
		Text:          "Capital of France?",
		CorrectAnswer: "Paris",
	})
	answer := "paris"
	if _, err := service.SubmitResponses(ctx, quiz.ID, domain.Respondent{Name: "Rita", Email: "rita@example.com"}, []domain.AnswerEntry{
		{QuestionID: question.ID, Answer: &answer},
	}); err != nil {
		t.Fatalf("submit responses: %v", err)
	}

	if err := service.DeleteQuiz(ctx, quiz.ID); err != nil {
		t.Fatalf("delete quiz: %v", err)
	}

	if _, err := service.Quiz(ctx, quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("quiz should be gone, got %v", err)
	}
	if _, err := store.GetQuestion(ctx, question.ID); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("question should be gone, got %v", err)
	}
	records, err := store.ListResponsesForQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("list responses: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("responses should be gone, got %d", len(records))
	}
	if _, err := service.QuizByShareCode(ctx, quiz.ShareCode); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("share code should resolve to nothing after delete, got %v", err)
	}
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	_, service := newTestService(t)
	mustCreateUser(t, service, "alice", "alice@example.com")

	if _, err := service.CreateUser(ctx, "alice2", "alice@example.com"); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("duplicate email: want ErrEmailTaken, got %v", err)
	}
}

func TestDeleteUserRefusesWithoutForce(t *testing.T) {
	ctx := context.Background()
	_, service := newTestService(t)
	user := mustCreateUser(t, service, "alice", "alice@example.com")
	mustCreateQuiz(t, service, user.ID, "Geography")
	mustCreateQuiz(t, service, user.ID, "History")

	deletion, err := service.DeleteUser(ctx, user.Email, false)
	if !errors.Is(err, domain.ErrUserHasQuizzes) {
		t.Fatalf("want ErrUserHasQuizzes, got %v", err)
	}
	if deletion.QuizCount != 2 || len(deletion.QuizTitles) != 2 {
		t.Fatalf("deletion summary should list owned quizzes, got %+v", deletion)
	}

	// Refusal must not delete anything.
	if _, err := service.UserByEmail(ctx, user.Email); err != nil {
		t.Fatalf("user should still exist: %v", err)
	}
	quizzes, err := service.ListQuizzes(ctx, user.ID)
	if err != nil {
		t.Fatalf("list quizzes: %v", err)
	}
	if len(quizzes) != 2 {
		t.Fatalf("quizzes should still exist, got %d", len(quizzes))
	}
}

func TestDeleteUserWithForceCascades(t *testing.T) {
	ctx := context.Background()
	_, service := newTestService(t)
	user := mustCreateUser(t, service, "alice", "alice@example.com")
	quiz := mustCreateQuiz(t, service, user.ID, "Geography")
	mustCreateQuestion(t, service, quiz.ID, app.QuestionInput{Text: "Q", CorrectAnswer: "A"})

	deletion, err := service.DeleteUser(ctx, user.Email, true)
	if err != nil {
		t.Fatalf("forced delete: %v", err)
	}
	if deletion.QuizCount != 1 {
		t.Fatalf("expected 1 cascaded quiz, got %d", deletion.QuizCount)
	}
	if _, err := service.UserByEmail(ctx, user.Email); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("user should be gone, got %v", err)
	}
	if _, err := service.Quiz(ctx, quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("owned quiz should be gone, got %v", err)
	}
}

func TestRecordEvent(t *testing.T) {
	ctx := context.Background()
	store, service := newTestService(t)

	event, err := service.RecordEvent(ctx, domain.Event{
		UserID:    "id-1",
		UserEmail: "alice@example.com",
		Details:   "opened quiz editor",
		Status:    "ok",
	})
	if err != nil {
		t.Fatalf("record event: %v", err)
	}
	if event.ID == "" {
		t.Fatalf("expected generated event id")
	}
	if !event.CreatedAt.Equal(testTime) {
		t.Fatalf("zero created_at should be stamped with the clock, got %v", event.CreatedAt)
	}
	if got := store.Events(); len(got) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(got))
	}

	if _, err := service.RecordEvent(ctx, domain.Event{UserID: "id-1"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("incomplete event: want ErrInvalidInput, got %v", err)
	}
}
