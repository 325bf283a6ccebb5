package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"quizzy-backend/internal/app"
	"quizzy-backend/internal/domain"
)

// Store is the bun-backed implementation of app.Store. Batch response
// writes and quiz cascade deletes run inside a transaction so a mid-batch
// failure rolls everything back.
type Store struct {
	db *bun.DB
}

var _ app.Store = (*Store)(nil)

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string    `bun:"id,pk"`
	Username  string    `bun:"username"`
	Email     string    `bun:"email"`
	CreatedAt time.Time `bun:"created_at"`
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:qz"`

	ID          string    `bun:"id,pk"`
	Title       string    `bun:"title"`
	Description string    `bun:"description"`
	IsPublic    bool      `bun:"is_public"`
	ShareCode   string    `bun:"share_code"`
	UserID      string    `bun:"user_id"`
	CreatedAt   time.Time `bun:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:qn"`

	ID            string   `bun:"id,pk"`
	QuizID        string   `bun:"quiz_id"`
	Text          string   `bun:"text"`
	Type          string   `bun:"question_type"`
	Options       []string `bun:"options,type:jsonb"`
	CorrectAnswer string   `bun:"correct_answer"`
	Points        int      `bun:"points"`
	Order         int      `bun:"order"`
}

type responseRow struct {
	bun.BaseModel `bun:"table:quiz_responses,alias:qr"`

	ID           string    `bun:"id,pk"`
	QuizID       string    `bun:"quiz_id"`
	QuestionID   string    `bun:"question_id"`
	UserName     string    `bun:"user_name"`
	UserEmail    string    `bun:"user_email"`
	UserPhone    string    `bun:"user_phone"`
	Answer       string    `bun:"answer"`
	IsCorrect    bool      `bun:"is_correct"`
	PointsEarned int       `bun:"points_earned"`
	SubmittedAt  time.Time `bun:"submitted_at"`
}

type eventRow struct {
	bun.BaseModel `bun:"table:events,alias:ev"`

	ID        string    `bun:"id,pk"`
	UserID    string    `bun:"user_id"`
	UserEmail string    `bun:"user_email"`
	Details   string    `bun:"event_details"`
	Status    string    `bun:"status"`
	CreatedAt time.Time `bun:"created_at"`
}

func (s *Store) SaveQuiz(ctx context.Context, quiz *domain.Quiz) error {
	row := quizToRow(*quiz)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		if isIntegrityViolation(err) {
			return domain.ErrShareCodeTaken
		}
		return storageErr("insert quiz", err)
	}
	return nil
}

func (s *Store) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	row := quizToRow(*quiz)
	res, err := s.db.NewUpdate().Model(&row).WherePK().Exec(ctx)
	if err != nil {
		return storageErr("update quiz", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *Store) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	var row quizRow
	err := s.db.NewSelect().Model(&row).Where("qz.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, storageErr("select quiz", err)
	}
	return quizFromRow(row), nil
}

func (s *Store) ListQuizzes(ctx context.Context, filter app.QuizFilter) ([]domain.Quiz, error) {
	var rows []quizRow
	q := s.db.NewSelect().Model(&rows).OrderExpr("qz.created_at ASC, qz.id ASC")
	if filter.UserID != "" {
		q = q.Where("qz.user_id = ?", filter.UserID)
	} else if filter.PublicOnly {
		q = q.Where("qz.is_public")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, storageErr("list quizzes", err)
	}
	out := make([]domain.Quiz, len(rows))
	for i, row := range rows {
		out[i] = quizFromRow(row)
	}
	return out, nil
}

func (s *Store) FindQuizByShareCode(ctx context.Context, code string) (domain.Quiz, error) {
	var row quizRow
	err := s.db.NewSelect().Model(&row).Where("qz.share_code = ?", code).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, storageErr("select quiz by share code", err)
	}
	return quizFromRow(row), nil
}

func (s *Store) ShareCodeExists(ctx context.Context, code string) (bool, error) {
	exists, err := s.db.NewSelect().Model((*quizRow)(nil)).Where("qz.share_code = ?", code).Exists(ctx)
	if err != nil {
		return false, storageErr("check share code", err)
	}
	return exists, nil
}

// DeleteQuiz walks the ownership graph explicitly: responses, then
// questions, then the quiz, all in one transaction.
func (s *Store) DeleteQuiz(ctx context.Context, id string) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*responseRow)(nil)).Where("quiz_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*questionRow)(nil)).Where("quiz_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*quizRow)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return domain.ErrQuizNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return err
		}
		return storageErr("delete quiz", err)
	}
	return nil
}

func (s *Store) SaveQuestion(ctx context.Context, question *domain.Question) error {
	row := questionToRow(*question)
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return storageErr("insert question", err)
	}
	return nil
}

func (s *Store) UpdateQuestion(ctx context.Context, question *domain.Question) error {
	row := questionToRow(*question)
	res, err := s.db.NewUpdate().Model(&row).WherePK().Exec(ctx)
	if err != nil {
		return storageErr("update question", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (s *Store) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	var row questionRow
	err := s.db.NewSelect().Model(&row).Where("qn.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, storageErr("select question", err)
	}
	return questionFromRow(row), nil
}

func (s *Store) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	var rows []questionRow
	err := s.db.NewSelect().Model(&rows).
		Where("qn.quiz_id = ?", quizID).
		OrderExpr(`qn."order" ASC, qn.id ASC`).
		Scan(ctx)
	if err != nil {
		return nil, storageErr("list questions", err)
	}
	out := make([]domain.Question, len(rows))
	for i, row := range rows {
		out[i] = questionFromRow(row)
	}
	return out, nil
}

func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*questionRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return storageErr("delete question", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

// SaveResponses stores the whole batch in one transaction; a failure on any
// record rolls back every record.
func (s *Store) SaveResponses(ctx context.Context, records []domain.QuizResponse) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]responseRow, len(records))
	for i, record := range records {
		rows[i] = responseToRow(record)
	}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	if err != nil {
		return storageErr("insert responses", err)
	}
	return nil
}

func (s *Store) ListResponsesForQuiz(ctx context.Context, quizID string) ([]domain.QuizResponse, error) {
	var rows []responseRow
	err := s.db.NewSelect().Model(&rows).
		Where("qr.quiz_id = ?", quizID).
		OrderExpr("qr.submitted_at ASC, qr.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, storageErr("list responses", err)
	}
	out := make([]domain.QuizResponse, len(rows))
	for i, row := range rows {
		out[i] = responseFromRow(row)
	}
	return out, nil
}

func (s *Store) SaveUser(ctx context.Context, user *domain.User) error {
	row := userRow{ID: user.ID, Username: user.Username, Email: user.Email, CreatedAt: user.CreatedAt}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		if isIntegrityViolation(err) {
			return domain.ErrEmailTaken
		}
		return storageErr("insert user", err)
	}
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	row := userRow{ID: user.ID, Username: user.Username, Email: user.Email, CreatedAt: user.CreatedAt}
	res, err := s.db.NewUpdate().Model(&row).WherePK().Exec(ctx)
	if err != nil {
		if isIntegrityViolation(err) {
			return domain.ErrEmailTaken
		}
		return storageErr("update user", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	var row userRow
	err := s.db.NewSelect().Model(&row).Where("u.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, storageErr("select user", err)
	}
	return userFromRow(row), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var row userRow
	err := s.db.NewSelect().Model(&row).Where("u.email = ?", email).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, storageErr("select user by email", err)
	}
	return userFromRow(row), nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.NewSelect().Model(&rows).OrderExpr("u.created_at ASC, u.id ASC").Scan(ctx); err != nil {
		return nil, storageErr("list users", err)
	}
	out := make([]domain.User, len(rows))
	for i, row := range rows {
		out[i] = userFromRow(row)
	}
	return out, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*userRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return storageErr("delete user", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *Store) SaveEvent(ctx context.Context, event *domain.Event) error {
	row := eventRow{
		ID:        event.ID,
		UserID:    event.UserID,
		UserEmail: event.UserEmail,
		Details:   event.Details,
		Status:    event.Status,
		CreatedAt: event.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return storageErr("insert event", err)
	}
	return nil
}

func quizToRow(quiz domain.Quiz) quizRow {
	return quizRow{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		IsPublic:    quiz.IsPublic,
		ShareCode:   quiz.ShareCode,
		UserID:      quiz.UserID,
		CreatedAt:   quiz.CreatedAt,
		UpdatedAt:   quiz.UpdatedAt,
	}
}

func quizFromRow(row quizRow) domain.Quiz {
	return domain.Quiz{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		IsPublic:    row.IsPublic,
		ShareCode:   row.ShareCode,
		UserID:      row.UserID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func questionToRow(question domain.Question) questionRow {
	options := question.Options
	if options == nil {
		options = []string{}
	}
	return questionRow{
		ID:            question.ID,
		QuizID:        question.QuizID,
		Text:          question.Text,
		Type:          string(question.Type),
		Options:       options,
		CorrectAnswer: question.CorrectAnswer,
		Points:        question.Points,
		Order:         question.Order,
	}
}

func questionFromRow(row questionRow) domain.Question {
	return domain.Question{
		ID:            row.ID,
		QuizID:        row.QuizID,
		Text:          row.Text,
		Type:          domain.QuestionType(row.Type),
		Options:       row.Options,
		CorrectAnswer: row.CorrectAnswer,
		Points:        row.Points,
		Order:         row.Order,
	}
}

func responseToRow(record domain.QuizResponse) responseRow {
	return responseRow{
		ID:           record.ID,
		QuizID:       record.QuizID,
		QuestionID:   record.QuestionID,
		UserName:     record.UserName,
		UserEmail:    record.UserEmail,
		UserPhone:    record.UserPhone,
		Answer:       record.Answer,
		IsCorrect:    record.IsCorrect,
		PointsEarned: record.PointsEarned,
		SubmittedAt:  record.SubmittedAt,
	}
}

func responseFromRow(row responseRow) domain.QuizResponse {
	return domain.QuizResponse{
		ID:           row.ID,
		QuizID:       row.QuizID,
		QuestionID:   row.QuestionID,
		UserName:     row.UserName,
		UserEmail:    row.UserEmail,
		UserPhone:    row.UserPhone,
		Answer:       row.Answer,
		IsCorrect:    row.IsCorrect,
		PointsEarned: row.PointsEarned,
		SubmittedAt:  row.SubmittedAt,
	}
}

func userFromRow(row userRow) domain.User {
	return domain.User{ID: row.ID, Username: row.Username, Email: row.Email, CreatedAt: row.CreatedAt}
}

func isIntegrityViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.IntegrityViolation()
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStorage, op, err)
}
