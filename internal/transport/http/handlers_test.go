package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"quizzy-backend/internal/app"
	"quizzy-backend/internal/infra/memory"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := memory.NewStore()
	resolver := memory.NewQuizCache(memory.NewStoreQuizLoader(store), 0)
	service := app.NewQuizService(store, resolver)
	return NewRouter(service, nil)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %s: %v", rec.Body.String(), err)
	}
}

func createTestUser(t *testing.T, router http.Handler, username, email string) map[string]any {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/users", map[string]any{
		"username": username,
		"email":    email,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user: status %d body %s", rec.Code, rec.Body.String())
	}
	var user map[string]any
	decodeBody(t, rec, &user)
	return user
}

func createTestQuiz(t *testing.T, router http.Handler, userID, title string) map[string]any {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/quizzes", map[string]any{
		"title":   title,
		"user_id": userID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create quiz: status %d body %s", rec.Code, rec.Body.String())
	}
	var quiz map[string]any
	decodeBody(t, rec, &quiz)
	return quiz
}

func createTestQuestion(t *testing.T, router http.Handler, quizID string, body map[string]any) map[string]any {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/quizzes/"+quizID+"/questions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create question: status %d body %s", rec.Code, rec.Body.String())
	}
	var question map[string]any
	decodeBody(t, rec, &question)
	return question
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: status %d", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "healthy" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestQuizAuthoringFlow(t *testing.T) {
	router := newTestRouter(t)
	user := createTestUser(t, router, "alice", "alice@example.com")
	quiz := createTestQuiz(t, router, user["id"].(string), "Geography")

	if code := quiz["share_code"].(string); len(code) != 8 {
		t.Fatalf("expected 8 char share code, got %q", code)
	}

	createTestQuestion(t, router, quiz["id"].(string), map[string]any{
		"text":           "Capital of France?",
		"question_type":  "multiple_choice",
		"options":        []string{"Paris", "Lyon"},
		"correct_answer": "Paris",
		"points":         2,
	})

	// List view carries a question count, not the questions themselves.
	rec := doJSON(t, router, http.MethodGet, "/api/quizzes?user_id="+user["id"].(string), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list quizzes: status %d", rec.Code)
	}
	var summaries []map[string]any
	decodeBody(t, rec, &summaries)
	if len(summaries) != 1 || summaries[0]["question_count"].(float64) != 1 {
		t.Fatalf("unexpected summaries: %v", summaries)
	}

	// Detail view keeps correct answers out.
	rec = doJSON(t, router, http.MethodGet, "/api/quizzes/"+quiz["id"].(string), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get quiz: status %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte(`"correct_answer"`)) {
		t.Fatalf("quiz detail leaked correct answers: %s", rec.Body.String())
	}

	// The questions endpoint is the owner's editable form and includes them.
	rec = doJSON(t, router, http.MethodGet, "/api/quizzes/"+quiz["id"].(string)+"/questions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list questions: status %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"correct_answer":"Paris"`)) {
		t.Fatalf("owner question list should include answers: %s", rec.Body.String())
	}
}

func TestShareCodeEndpointIsSanitized(t *testing.T) {
	router := newTestRouter(t)
	user := createTestUser(t, router, "alice", "alice@example.com")
	quiz := createTestQuiz(t, router, user["id"].(string), "Geography")
	createTestQuestion(t, router, quiz["id"].(string), map[string]any{
		"text":           "Capital of France?",
		"correct_answer": "Paris",
	})

	rec := doJSON(t, router, http.MethodGet, "/api/quizzes/share/"+quiz["share_code"].(string), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("share code fetch: status %d body %s", rec.Code, rec.Body.String())
	}
	if bytes.Contains(rec.Body.Bytes(), []byte(`"correct_answer"`)) {
		t.Fatalf("share code view leaked correct answers: %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/quizzes/share/NOPE0000", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown share code: status %d", rec.Code)
	}
}

func TestSubmitResponsesEndpoint(t *testing.T) {
	router := newTestRouter(t)
	user := createTestUser(t, router, "alice", "alice@example.com")
	quiz := createTestQuiz(t, router, user["id"].(string), "Geography")
	q1 := createTestQuestion(t, router, quiz["id"].(string), map[string]any{
		"text":           "Capital of France?",
		"correct_answer": "Paris",
	})
	q2 := createTestQuestion(t, router, quiz["id"].(string), map[string]any{
		"text":           "Red planet?",
		"correct_answer": "Mars",
		"points":         2,
	})

	rec := doJSON(t, router, http.MethodPost, "/api/quiz-responses", map[string]any{
		"quiz_id":    quiz["id"],
		"user_name":  "Rita",
		"user_email": "rita@example.com",
		"responses": []map[string]any{
			{"question_id": q1["id"], "answer": "paris"},
			{"question_id": q2["id"], "answer": "Jupiter"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: status %d body %s", rec.Code, rec.Body.String())
	}
	var result map[string]any
	decodeBody(t, rec, &result)
	if result["total_questions"].(float64) != 2 ||
		result["correct_answers"].(float64) != 1 ||
		result["total_points"].(float64) != 1 ||
		result["percentage"].(float64) != 50 ||
		result["responses_stored"].(float64) != 2 {
		t.Fatalf("unexpected submission result: %v", result)
	}

	// The report endpoint reflects the stored records.
	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/quizzes/%s/responses", quiz["id"]), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report: status %d", rec.Code)
	}
	var report map[string]any
	decodeBody(t, rec, &report)
	if report["total_attempts"].(float64) != 1 {
		t.Fatalf("unexpected report: %v", report)
	}
	rows := report["user_responses"].([]any)
	row := rows[0].(map[string]any)
	if row["user_email"] != "rita@example.com" || row["points_earned"].(float64) != 3 {
		t.Fatalf("unexpected report row: %v", row)
	}
}

func TestSubmitResponsesValidationAndNotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/quiz-responses", map[string]any{
		"quiz_id":   "some-quiz",
		"user_name": "Rita",
		// missing user_email and responses
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid submit: status %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/quiz-responses", map[string]any{
		"quiz_id":    "missing",
		"user_name":  "Rita",
		"user_email": "rita@example.com",
		"responses":  []map[string]any{{"question_id": "q", "answer": "a"}},
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing quiz: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestCreateQuizValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/quizzes", map[string]any{"title": "No owner"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing user_id: status %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/quizzes", bytes.NewBufferString("{not json"))
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Fatalf("malformed JSON: status %d", rec2.Code)
	}
}

func TestDeleteUserConflictAndForce(t *testing.T) {
	router := newTestRouter(t)
	user := createTestUser(t, router, "alice", "alice@example.com")
	createTestQuiz(t, router, user["id"].(string), "Geography")

	rec := doJSON(t, router, http.MethodDelete, "/api/users?user_email=alice@example.com", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete without force: status %d body %s", rec.Code, rec.Body.String())
	}
	var conflict map[string]any
	decodeBody(t, rec, &conflict)
	if conflict["quiz_count"].(float64) != 1 {
		t.Fatalf("unexpected conflict payload: %v", conflict)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/users?user_email=alice@example.com&force=true", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("forced delete: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/users?user_email=alice@example.com", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deleted user lookup: status %d", rec.Code)
	}
}

func TestDuplicateEmailConflict(t *testing.T) {
	router := newTestRouter(t)
	createTestUser(t, router, "alice", "alice@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/users", map[string]any{
		"username": "alice2",
		"email":    "alice@example.com",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate email: status %d body %s", rec.Code, rec.Body.String())
	}
}
