package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizzy-backend/internal/domain"
)

// QuizLoader is the read-only share-code lookup feeding the quiz cache. It
// deliberately never selects correct_answer, so the quizzes it hands to the
// cache are sanitized by construction.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuizByCode(ctx context.Context, code string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := l.pool.QueryRow(ctx,
		`SELECT id, title, description, is_public, share_code, user_id, created_at, updated_at
		 FROM quizzes WHERE share_code=$1`, code).
		Scan(&quiz.ID, &quiz.Title, &quiz.Description, &quiz.IsPublic,
			&quiz.ShareCode, &quiz.UserID, &quiz.CreatedAt, &quiz.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	rows, err := l.pool.Query(ctx,
		`SELECT id, quiz_id, text, question_type, options, points, "order"
		 FROM questions WHERE quiz_id=$1 ORDER BY "order" ASC, id ASC`, quiz.ID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var question domain.Question
		var rawOptions []byte
		if err := rows.Scan(&question.ID, &question.QuizID, &question.Text,
			&question.Type, &rawOptions, &question.Points, &question.Order); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}
		if len(rawOptions) > 0 {
			if err := json.Unmarshal(rawOptions, &question.Options); err != nil {
				return domain.Quiz{}, fmt.Errorf("unmarshal options: %w", err)
			}
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	return quiz, nil
}
