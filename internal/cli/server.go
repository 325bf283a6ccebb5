package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quizzy-backend/internal/app"
	"quizzy-backend/internal/config"
	"quizzy-backend/internal/infra/memory"
	pgstore "quizzy-backend/internal/infra/postgres"
	redisinfra "quizzy-backend/internal/infra/redis"
	transport "quizzy-backend/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	service, memoryMode, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if memoryMode {
		log.Printf("no postgres configured, serving demo data from memory")
		if err := seedDemoData(ctx, service, 2, 3, 3); err != nil {
			return err
		}
	}

	handler := transport.NewRouter(service, cfg.Server.CORSOrigins)
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizzy server on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildService wires the store, the share-code quiz cache and the service
// according to config. Falls back to an in-memory store when postgres is
// not configured and an in-process cache when redis is not.
func buildService(ctx context.Context, cfg config.Config) (service *app.QuizService, memoryMode bool, cleanup func(), err error) {
	var cleanups []func()
	cleanup = func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var store app.Store
	var loader memory.QuizLoader
	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		cleanups = append(cleanups, func() { _ = db.Close() })
		store = pgstore.NewStore(db)

		pool, poolErr := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if poolErr != nil {
			cleanup()
			return nil, false, func() {}, poolErr
		}
		cleanups = append(cleanups, pool.Close)
		loader = pgstore.NewQuizLoader(pool)
	} else {
		mem := memory.NewStore()
		store = mem
		loader = memory.NewStoreQuizLoader(mem)
		memoryMode = true
	}

	shareTTL := config.TTLDuration(cfg.Quiz.ShareCacheTTL, 10*time.Minute)
	var resolver app.QuizResolver
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cleanups = append(cleanups, func() { _ = client.Close() })
		resolver = redisinfra.NewQuizCache(client, loader, shareTTL)
	} else {
		resolver = memory.NewQuizCache(loader, shareTTL)
	}

	return app.NewQuizService(store, resolver), memoryMode, cleanup, nil
}
