package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/bincan-backend/internal/catalog"
	"github.com/stemsi/bincan-backend/internal/config"
	"github.com/stemsi/bincan-backend/internal/database"
	"github.com/stemsi/bincan-backend/internal/handler"
	"github.com/stemsi/bincan-backend/internal/logger"
	"github.com/stemsi/bincan-backend/internal/repository"
	"github.com/stemsi/bincan-backend/internal/router"
	"github.com/stemsi/bincan-backend/internal/service"
	"github.com/stemsi/bincan-backend/internal/validator"
	"github.com/stemsi/bincan-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("store", cfg.StoreDriver).
		Bool("score_history", cfg.ScoreHistory).
		Msg("Starting Bincan Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Load Content Catalog ──────────────────────────────────────────
	cat, err := catalog.Load(cfg.ContentFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.ContentFile).Msg("Failed to load content catalog")
	}

	// ─── Connect to Backends ───────────────────────────────────────────
	conns, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to backends")
	}
	defer conns.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	var exerciseRepo repository.ExerciseRepository
	switch cfg.StoreDriver {
	case config.StorePostgres:
		exerciseRepo = repository.NewPostgresExerciseRepository(conns.Pool)
	case config.StoreRedis:
		exerciseRepo = repository.NewRedisExerciseRepository(conns.Redis, cfg.ExerciseTTL)
	default:
		exerciseRepo = repository.NewMemoryExerciseRepository()
	}

	// ─── Score History ─────────────────────────────────────────────────
	var (
		sink       service.ScoreSink
		history    service.ScoreHistory
		queueDepth handler.QueueDepth
	)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	if cfg.ScoreHistory {
		scoreRepo := repository.NewScoreRepository(conns.Pool)
		queue := worker.NewScoreQueue(conns.Redis)
		sink, history, queueDepth = queue, scoreRepo, queue

		scoringWorker := worker.NewScoringWorker(scoreRepo, conns.Redis, log)
		go func() {
			defer close(workerDone)
			scoringWorker.Start(workerCtx)
		}()
	} else {
		close(workerDone)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	exerciseService := service.NewExerciseService(exerciseRepo, cat, sink, history, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Exercise: handler.NewExerciseHandler(exerciseService, log),
		Content:  handler.NewContentHandler(exerciseService),
		WS:       handler.NewWSHandler(exerciseService, log, cfg.AllowedOrigins),
		System:   handler.NewSystemHandler(queueDepth, conns, cfg.StoreDriver, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the scoring worker and wait for its final flush.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Scoring worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
