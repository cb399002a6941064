package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Nathanser/oulpan-hebrew-sub000/internal/config"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/database"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/handlers"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/middleware"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/repository"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/router"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/services"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/training"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/websocket"
	"github.com/Nathanser/oulpan-hebrew-sub000/internal/worker"
)

var rootCmd = &cobra.Command{
	Use:          "oulpan",
	Short:        "Hebrew vocabulary drill server",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, websocket hub and import workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down [steps]",
	Short:     "Apply or roll back database migrations",
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger := newLogger(cfg)
		defer logger.Sync()

		switch args[0] {
		case "up":
			return database.RunMigrations(cfg.DatabaseURL, logger)
		case "down":
			steps := 1
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n <= 0 {
					return fmt.Errorf("invalid step count %q", args[1])
				}
				steps = n
			}
			return database.RollbackMigrations(cfg.DatabaseURL, steps, logger)
		default:
			return fmt.Errorf("unknown direction %q: expected up or down", args[0])
		}
	},
}

var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the admin role to an existing account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		logger := newLogger(cfg)
		defer logger.Sync()

		pool, err := database.NewPostgresPool(cmd.Context(), cfg.DatabaseURL, poolOptions(cfg))
		if err != nil {
			return err
		}
		defer pool.Close()

		authService := services.NewAuthService(repository.NewUserRepo(pool), nil, middleware.NewJWTAuth(cfg.JWTSecret), logger)
		user, err := authService.PromoteByEmail(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now an administrator\n", user.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(promoteCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	zap.ReplaceGlobals(logger)
	return logger
}

func poolOptions(cfg *config.Config) database.PoolOptions {
	return database.PoolOptions{
		MaxConns:        int32(cfg.DBMaxConns),
		MinConns:        int32(cfg.DBMinConns),
		MaxConnLifetime: cfg.DBMaxConnLifetime,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
	}
}

func serve(ctx context.Context) error {
	// ──── Step 1: Configuration & logging ────
	cfg := config.Load()
	logger := newLogger(cfg)
	defer logger.Sync()

	// ──── Step 2: Database migrations ────
	if err := database.RunMigrations(cfg.DatabaseURL, logger); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	// ──── Step 3: PostgreSQL & Redis ────
	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, poolOptions(cfg))
	if err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}
	defer pool.Close()

	redisClients, err := database.NewRedisClients(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	defer redisClients.Close()
	logger.Info("storage connected")

	// ──── Repositories ────
	userRepo := repository.NewUserRepo(pool)
	themeRepo := repository.NewThemeRepo(pool)
	wordRepo := repository.NewWordRepo(pool)
	flashcardRepo := repository.NewFlashcardRepo(pool)
	overrideRepo := repository.NewOverrideRepo(pool)
	candidateRepo := repository.NewCandidateRepo(pool)
	progressRepo := repository.NewProgressRepo(pool)
	runRepo := repository.NewTrainingRunRepo(pool)
	jobRepo := repository.NewJobRepo(pool)

	// ──── Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	publisher := websocket.NewPublisher(redisClients.Main)
	authService := services.NewAuthService(userRepo, redisClients.Main, jwtAuth, logger.Named("auth"))
	contentService := services.NewContentService(themeRepo, wordRepo, flashcardRepo)
	visibilityService := services.NewVisibilityService(overrideRepo, logger.Named("visibility"))
	statsService := services.NewStatsService(progressRepo, runRepo)
	engine := training.NewEngine(
		candidateRepo,
		progressRepo,
		training.NewRedisSessionStore(redisClients.Main, cfg.TrainingSessionTTL),
		runRepo,
		publisher,
		training.NewRandomizer(cfg.RandomSeed),
		logger.Named("training"),
	)

	// ──── Step 4: Import workers ────
	workerPool := worker.NewPool(redisClients.Main, jobRepo, wordRepo, themeRepo, publisher, logger.Named("worker"), cfg.WorkerCount)
	workerPool.Start()

	// ──── Step 5: WebSocket hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth, cfg.FrontendURL, logger.Named("ws"))

	// ──── Step 6: HTTP server ────
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimitPerMinute, time.Minute)
	go authLimiter.Run(ctx)

	r := router.New(router.Deps{
		JWT:         jwtAuth,
		AuthLimiter: authLimiter,
		Logger:      logger.Named("http"),
		FrontendURL: cfg.FrontendURL,
		Auth:        handlers.NewAuthHandler(authService),
		Training:    handlers.NewTrainingHandler(engine, runRepo),
		Content:     handlers.NewContentHandler(contentService),
		Visibility:  handlers.NewVisibilityHandler(visibilityService),
		Imports:     handlers.NewImportHandler(contentService, jobRepo, redisClients.Main, cfg.StoragePath, logger.Named("imports")),
		Stats:       handlers.NewStatsHandler(statsService),
		WebSocket:   wsHub.HandleWebSocket,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			workerPool.Stop()
			wsHub.Close()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	// Graceful shutdown
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	wsHub.Close()
	workerPool.Stop()
	return nil
}
