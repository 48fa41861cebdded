// Package main - entry point for the StudyPulse Performance Hub service.
//
// The service trains a performance classifier from the historical dataset
// at startup, then serves predictions with prioritized advisory tips over
// REST. Assessment history (PostgreSQL) and a prediction cache (Redis) are
// optional surfaces behind feature flags.
//
// Architecture follows Clean Architecture and DDD:
// - Domain: metric normalization, advice rules, assessment model
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: PostgreSQL, Redis
// - Interface: HTTP endpoints
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Application layer
	"github.com/studypulse/performance-hub/internal/application/command"
	"github.com/studypulse/performance-hub/internal/application/query"

	// Domain layer
	"github.com/studypulse/performance-hub/internal/domain/advice"
	"github.com/studypulse/performance-hub/internal/domain/assessment"

	// Infrastructure layer
	"github.com/studypulse/performance-hub/internal/infrastructure/persistence/postgres"
	"github.com/studypulse/performance-hub/internal/infrastructure/persistence/redis"
	"github.com/studypulse/performance-hub/internal/infrastructure/scheduler"
	"github.com/studypulse/performance-hub/internal/infrastructure/scheduler/jobs"
	"github.com/studypulse/performance-hub/internal/infrastructure/service"
	"github.com/studypulse/performance-hub/internal/ml"

	// Interface layer
	httpserver "github.com/studypulse/performance-hub/internal/interface/http"

	// Packages
	"github.com/studypulse/performance-hub/config"
	"github.com/studypulse/performance-hub/pkg/logger"
	"github.com/studypulse/performance-hub/pkg/retry"
)

func main() {
	// Load .env if present; real environments set variables directly.
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "loaded environment from .env")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting StudyPulse Performance Hub",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	appLog := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 3. MODEL TRAINING (blocks readiness)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("loading training dataset", "path", cfg.Dataset.Path)
	ds, err := ml.LoadCSV(cfg.Dataset.Path)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	log.Info("dataset loaded", "rows", ds.Rows())

	trainerCfg := ml.TrainerConfig{
		HoldoutFraction: cfg.Model.HoldoutFraction,
		Seed:            cfg.Model.Seed,
		Forest: ml.ForestConfig{
			Trees:           cfg.Model.Trees,
			MaxDepth:        cfg.Model.MaxDepth,
			MinSamplesSplit: 2,
			Seed:            cfg.Model.Seed,
		},
	}

	log.Info("training model...")
	model, err := ml.Train(ds, trainerCfg, appLog)
	if err != nil {
		return fmt.Errorf("failed to train model: %w", err)
	}
	predictor := ml.NewFittedPredictor(model)
	log.Info("model trained",
		"holdout_accuracy", model.Accuracy,
		"train_rows", model.TrainRows,
		"holdout_rows", model.HoldoutRows,
		"labels", model.Codec().Labels(),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 4. POSTGRESQL (optional - assessment history)
	// ─────────────────────────────────────────────────────────────────────────
	var assessmentRepo assessment.Repository

	if cfg.Features.HistoryEnabled && cfg.Database.URL != "" {
		log.Info("connecting to database...")

		retrier := retry.StartupRetrier(retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Warn("retrying database connection",
				"attempt", attempt,
				"delay", delay.String(),
				"error", err,
			)
		}))

		var dbConn *postgres.Connection
		err := retrier.Do(ctx, func(ctx context.Context) error {
			conn, connErr := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
			if connErr != nil {
				return connErr
			}
			dbConn = conn
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			dbConn.Close()
		}()

		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		applied, err := migrator.Status(ctx)
		if err != nil {
			log.Warn("failed to get migration status", "error", err)
		} else {
			log.Info("migrations completed", "applied", len(applied))
		}

		// History writes are best-effort; the breaker stops a struggling
		// database from slowing down every prediction.
		assessmentRepo = service.NewGuardedHistoryRepository(
			postgres.NewAssessmentRepository(dbConn), appLog)
		log.Info("assessment history enabled")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional - prediction cache)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		predictionCache  command.PredictionCache
		cacheInvalidator command.CacheInvalidator
	)

	if cfg.Features.CacheEnabled && !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")

		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		if cfg.Redis.PoolSize > 0 {
			redisCfg.PoolSize = cfg.Redis.PoolSize
		}
		if cfg.Redis.MinIdleConns > 0 {
			redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		}

		redisCache, err := redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, prediction caching disabled", "error", err)
		} else {
			defer redisCache.Close()
			pc := redis.NewPredictionCache(redisCache, cfg.Redis.CacheTTL)
			predictionCache = pc
			cacheInvalidator = pc
			log.Info("prediction cache enabled", "ttl", cfg.Redis.CacheTTL.String())
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	tipEngine := advice.NewEngine(advice.Config{
		FillerTips: cfg.Features.FillerTips,
	})

	assessHandler := command.NewAssessStudentHandler(
		predictor, tipEngine, predictionCache, assessmentRepo, appLog)

	var retrainHandler *command.RetrainModelHandler
	if cfg.Features.RetrainEnabled && cfg.Admin.APIKeyHash != "" {
		retrainHandler = command.NewRetrainModelHandler(
			cfg.Dataset.Path, trainerCfg, predictor, cacheInvalidator, appLog)
	}

	var recentHandler *query.GetRecentAssessmentsHandler
	if assessmentRepo != nil {
		recentHandler = query.NewGetRecentAssessmentsHandler(assessmentRepo, appLog)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	if cfg.Features.RetrainEnabled {
		httpConfig.AdminKeyHash = cfg.Admin.APIKeyHash
	}

	httpDeps := httpserver.Dependencies{
		AssessHandler:            assessHandler,
		RetrainHandler:           retrainHandler,
		RecentAssessmentsHandler: recentHandler,
		Predictor:                predictor,
		Logger:                   appLog,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. SCHEDULER (optional - periodic retraining)
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Model.RetrainInterval > 0 && retrainHandler != nil {
		sched = scheduler.New(log)
		sched.Register(jobs.NewRetrainJob(retrainHandler), cfg.Model.RetrainInterval)
		sched.Start(ctx)
		log.Info("periodic retraining enabled", "interval", cfg.Model.RetrainInterval.String())
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. START & GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	errCh := httpServer.StartAsync()

	log.Info("StudyPulse Performance Hub is running",
		"http_address", httpServer.Address(),
		"history", assessmentRepo != nil,
		"cache", predictionCache != nil,
		"retrain", retrainHandler != nil,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			log.Error("http server error", "error", err)
			return err
		}
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if sched != nil {
		sched.Stop()
	}

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}

// setupLogger configures structured logging for the process.
func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	if cfg.Observability.LogFormat == "text" || cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
