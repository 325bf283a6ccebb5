package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"quizzy-backend/internal/app"
)

// NewRouter assembles the REST API. Health stays outside /api and outside
// the CORS allowlist so probes from anywhere succeed.
func NewRouter(service *app.QuizService, allowedOrigins []string) http.Handler {
	h := NewHandler(service)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "message": "quizzy server is running"})
	})

	r.Route("/api", func(r chi.Router) {
		if len(allowedOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: allowedOrigins,
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "Authorization"},
				MaxAge:         300,
			}))
		}

		r.Post("/users", h.createUser)
		r.Get("/users", h.getUsers)
		r.Put("/users/{userEmail}", h.updateUser)
		r.Delete("/users", h.deleteUser)

		r.Post("/quizzes", h.createQuiz)
		r.Get("/quizzes", h.listQuizzes)
		r.Get("/quizzes/share/{shareCode}", h.quizByShareCode)
		r.Get("/quizzes/{quizID}", h.getQuiz)
		r.Put("/quizzes/{quizID}", h.updateQuiz)
		r.Delete("/quizzes/{quizID}", h.deleteQuiz)

		r.Post("/quizzes/{quizID}/questions", h.createQuestion)
		r.Get("/quizzes/{quizID}/questions", h.listQuestions)
		r.Put("/questions/{questionID}", h.updateQuestion)
		r.Delete("/questions/{questionID}", h.deleteQuestion)

		r.Post("/quiz-responses", h.submitResponses)
		r.Get("/quizzes/{quizID}/responses", h.quizReport)

		r.Post("/event", h.recordEvent)
	})

	return r
}
