package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/microlesson-api/internal/api/middleware"
	"github.com/phrazzld/microlesson-api/internal/config"
	"github.com/phrazzld/microlesson-api/internal/generation"
	"github.com/phrazzld/microlesson-api/internal/platform/groq"
	"github.com/phrazzld/microlesson-api/internal/platform/metrics"
	"github.com/phrazzld/microlesson-api/internal/platform/postgres"
	"github.com/phrazzld/microlesson-api/internal/platform/ratelimit"
	"github.com/phrazzld/microlesson-api/internal/service"
	"github.com/phrazzld/microlesson-api/internal/service/auth"
	"github.com/redis/go-redis/v9"
)

// application holds the shared dependencies of the server so they can be
// wired once and released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	metrics    *metrics.Metrics
	jwtService auth.JWTService
	limiter    middleware.Limiter

	userService   service.UserService
	lessonService service.LessonService
}

// newApplication wires stores, services and infrastructure clients.
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  log,
		db:      db,
		metrics: metrics.New(),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	log.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, log)
	lessonStore := postgres.NewPostgresLessonStore(db, log)

	client := groq.NewClient(groq.Config{
		APIKey:  cfg.LLM.GroqAPIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout(),
	}, log)
	if cfg.LLM.GroqAPIKey == "" {
		log.Warn("GROQ_API_KEY is not set; lesson generation requests will fail")
	}

	generator, err := generation.NewGenerator(client, log,
		generation.WithMaxAttempts(cfg.LLM.MaxAttempts),
		generation.WithRecorder(app.metrics))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize lesson generator: %w", err)
	}
	log.Info("lesson generator initialized",
		slog.String("model", client.Model()),
		slog.Int("max_attempts", cfg.LLM.MaxAttempts))

	app.userService = service.NewUserService(userStore, auth.NewBcryptVerifier(), log)
	app.lessonService, err = service.NewLessonService(lessonStore, generator, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create lesson service: %w", err)
	}

	if cfg.RateLimit.Enabled {
		app.redis, app.limiter, err = newRateLimiter(ctx, cfg.RateLimit, log)
		if err != nil {
			return nil, err
		}
		log.Info("rate limiting enabled",
			slog.Int("requests", cfg.RateLimit.Requests),
			slog.Duration("period", cfg.RateLimit.Period()))
	}

	log.Info("application initialized")
	return app, nil
}

// newRateLimiter connects to Redis and builds the limiter. The client is
// closed if the limiter cannot be created.
func newRateLimiter(ctx context.Context, cfg config.RateLimitConfig, log *slog.Logger) (*redis.Client, *ratelimit.Limiter, error) {
	client, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	limiter, err := ratelimit.NewLimiter(client, cfg.Requests, cfg.Period(), log)
	if err != nil {
		if closeErr := client.Close(); closeErr != nil {
			log.Error("error closing redis connection", slog.String("error", closeErr.Error()))
		}
		return nil, nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}
	return client, limiter, nil
}

// Run serves HTTP until ctx is canceled.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases connections after the server stops.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis connection", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
