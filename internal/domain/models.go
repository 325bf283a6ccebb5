package domain

import "time"

// QuestionType enumerates the supported question kinds. All types share the
// same grading rule; the type only drives client rendering.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionText           QuestionType = "text"
)

// User is a quiz author. Respondents are not users; they stay anonymous.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Quiz is a titled collection of ordered questions, addressable by id or by
// its globally unique share code.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IsPublic    bool       `json:"is_public"`
	ShareCode   string     `json:"share_code"`
	UserID      string     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Questions   []Question `json:"questions,omitempty"`
}

// Question is one gradable prompt owned by a quiz. Options are only
// meaningful for multiple choice; Order defines display and grading order
// and is not required to be contiguous.
type Question struct {
	ID            string       `json:"id"`
	QuizID        string       `json:"quiz_id"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"question_type"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	Points        int          `json:"points"`
	Order         int          `json:"order"`
}

// PublicView returns a copy of the quiz safe to hand to respondents:
// questions keep their prompts, options, points and order, but the correct
// answers are stripped.
func (q Quiz) PublicView() Quiz {
	view := q
	view.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.CorrectAnswer = ""
		view.Questions[i] = question
	}
	return view
}

// Respondent identifies an unauthenticated quiz taker. Self-asserted, not
// unique; repeated submissions with the same email are indistinguishable
// from one large submission in aggregation.
type Respondent struct {
	Name  string `json:"user_name"`
	Email string `json:"user_email"`
	Phone string `json:"user_phone,omitempty"`
}

// AnswerEntry is one submitted answer. A nil Answer marks an absent value
// and is skipped by the recorder rather than graded.
type AnswerEntry struct {
	QuestionID string  `json:"question_id"`
	Answer     *string `json:"answer"`
}

// QuizResponse is one respondent's graded answer to one question. Records
// are append-only; they are deleted only via quiz cascade-delete.
//
// PointsEarned stores the question's full point value for every record,
// correct or not. The score-like totals (SubmissionResult.TotalPoints)
// count only correct answers; the two numbers are deliberately distinct.
type QuizResponse struct {
	ID           string    `json:"id"`
	QuizID       string    `json:"quiz_id"`
	QuestionID   string    `json:"question_id"`
	UserName     string    `json:"user_name"`
	UserEmail    string    `json:"user_email"`
	UserPhone    string    `json:"user_phone,omitempty"`
	Answer       string    `json:"answer"`
	IsCorrect    bool      `json:"is_correct"`
	PointsEarned int       `json:"points_earned"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// SubmissionResult summarizes one recorded submission for the caller.
type SubmissionResult struct {
	TotalQuestions  int `json:"total_questions"`
	CorrectAnswers  int `json:"correct_answers"`
	TotalPoints     int `json:"total_points"`
	Percentage      int `json:"percentage"`
	ResponsesStored int `json:"responses_stored"`
}

// RespondentSummary is the aggregated view of one (email, name) group.
type RespondentSummary struct {
	UserName       string `json:"user_name"`
	UserEmail      string `json:"user_email"`
	UserPhone      string `json:"user_phone,omitempty"`
	TotalQuestions int    `json:"total_questions"`
	CorrectAnswers int    `json:"correct_answers"`
	PointsEarned   int    `json:"points_earned"`
	TotalPoints    int    `json:"total_points"`
	Percentage     int    `json:"percentage"`
}

// QuizReport is the on-demand aggregate over all responses to a quiz.
type QuizReport struct {
	QuizID        string              `json:"quiz_id"`
	QuizTitle     string              `json:"quiz_title"`
	TotalAttempts int                 `json:"total_attempts"`
	Respondents   []RespondentSummary `json:"user_responses"`
}

// Event is an append-only audit record for client-reported activity.
type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserEmail string    `json:"user_email"`
	Details   string    `json:"event_details"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
