package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quizora/testroom-backend/internal/config"
	"github.com/quizora/testroom-backend/internal/database"
	"github.com/quizora/testroom-backend/internal/handler"
	"github.com/quizora/testroom-backend/internal/logger"
	"github.com/quizora/testroom-backend/internal/repository"
	"github.com/quizora/testroom-backend/internal/router"
	"github.com/quizora/testroom-backend/internal/service"
	"github.com/quizora/testroom-backend/internal/validator"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Testroom Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	roomRepo := repository.NewRoomRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	resultRepo := repository.NewResultRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	payloadCache := service.NewRedisPayloadCache(rdb)
	authService := service.NewAuthService(cfg, userRepo, roomRepo, rdb, log)
	userService := service.NewUserService(userRepo, authService, log)
	testService := service.NewTestService(testRepo, questionRepo, payloadCache, log)
	gradingService := service.NewGradingService(enrollmentRepo, questionRepo, answerRepo, resultRepo, cfg.GradeConcurrency, log)
	roomService := service.NewRoomService(roomRepo, testRepo, gradingService, log)
	enrollmentService := service.NewEnrollmentService(roomRepo, testRepo, questionRepo, enrollmentRepo, answerRepo, payloadCache, log)
	resultService := service.NewResultService(roomRepo, resultRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Test:        handler.NewTestHandler(testService),
		Room:        handler.NewRoomHandler(roomService, resultService),
		StudentRoom: handler.NewStudentRoomHandler(roomService, enrollmentService, resultService),
		Admin:       handler.NewAdminHandler(userService),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
