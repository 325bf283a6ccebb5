package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"quizzy-backend/internal/app"
	"quizzy-backend/internal/config"
	"quizzy-backend/internal/domain"
)

// NewSeedCmd creates demo users, quizzes and questions through the service
// layer, so seeded quizzes get real share codes and validation.
func NewSeedCmd(configPath *string) *cobra.Command {
	var users, quizzes, questionsPerQuiz int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo data for testing the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
				return err
			}
			service, _, cleanup, err := buildService(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			return seedDemoData(cmd.Context(), service, users, quizzes, questionsPerQuiz)
		},
	}

	cmd.Flags().IntVar(&users, "users", 3, "number of demo users to create")
	cmd.Flags().IntVar(&quizzes, "quizzes", 5, "number of demo quizzes to create")
	cmd.Flags().IntVar(&questionsPerQuiz, "questions-per-quiz", 4, "number of questions per quiz")
	return cmd
}

var demoQuizzes = []struct {
	title, description string
}{
	{"General Knowledge Quiz", "Test your general knowledge with these interesting questions"},
	{"Science Quiz", "Explore the world of science with this comprehensive quiz"},
	{"History Quiz", "Travel through time with these historical questions"},
	{"Geography Quiz", "Discover the world with geography questions"},
	{"Math Quiz", "Challenge your mathematical skills"},
}

var demoQuestions = []struct {
	text    string
	options []string
	answer  string
}{
	{"What is the capital of France?", []string{"London", "Paris", "Berlin", "Madrid"}, "Paris"},
	{"Which planet is known as the Red Planet?", []string{"Earth", "Mars", "Jupiter", "Venus"}, "Mars"},
	{"What is the largest ocean on Earth?", []string{"Atlantic", "Indian", "Arctic", "Pacific"}, "Pacific"},
	{"Who painted the Mona Lisa?", []string{"Van Gogh", "Da Vinci", "Picasso", "Monet"}, "Da Vinci"},
	{"What is the chemical symbol for gold?", []string{"Au", "Ag", "Fe", "Cu"}, "Au"},
	{"What is the hardest natural substance on Earth?", []string{"Iron", "Diamond", "Granite", "Steel"}, "Diamond"},
	{"In which year did World War II end?", []string{"1943", "1944", "1945", "1946"}, "1945"},
	{"Which river is the longest in the world?", []string{"Amazon", "Nile", "Yangtze", "Mississippi"}, "Nile"},
	{"What is the smallest continent?", []string{"Europe", "Asia", "Australia", "Antarctica"}, "Australia"},
	{"What is the square root of 144?", []string{"10", "11", "12", "13"}, "12"},
}

func seedDemoData(ctx context.Context, service *app.QuizService, users, quizzes, questionsPerQuiz int) error {
	seededUsers := make([]domain.User, 0, users)
	for i := 0; i < users; i++ {
		user, err := service.CreateUser(ctx,
			fmt.Sprintf("user%d", i+1),
			fmt.Sprintf("user%d@example.com", i+1))
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		seededUsers = append(seededUsers, user)
	}
	log.Printf("created %d demo users", len(seededUsers))

	questionsCreated := 0
	for i := 0; i < quizzes; i++ {
		owner := seededUsers[i%len(seededUsers)]
		template := demoQuizzes[i%len(demoQuizzes)]
		quiz, err := service.CreateQuiz(ctx, app.CreateQuizInput{
			Title:       template.title,
			Description: template.description,
			UserID:      owner.ID,
		})
		if err != nil {
			return fmt.Errorf("seed quiz: %w", err)
		}

		for j := 0; j < questionsPerQuiz; j++ {
			q := demoQuestions[(i*questionsPerQuiz+j)%len(demoQuestions)]
			points := 1 + (j % 3)
			order := j + 1
			if _, err := service.CreateQuestion(ctx, quiz.ID, app.QuestionInput{
				Text:          q.text,
				Type:          domain.QuestionMultipleChoice,
				Options:       q.options,
				CorrectAnswer: q.answer,
				Points:        &points,
				Order:         &order,
			}); err != nil {
				return fmt.Errorf("seed question: %w", err)
			}
			questionsCreated++
		}
		log.Printf("created quiz %q with share code %s", quiz.Title, quiz.ShareCode)
	}
	log.Printf("created %d demo quizzes, %d demo questions", quizzes, questionsCreated)
	return nil
}
