package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/ledfit-api/internal/config"
	"github.com/ledfit-api/internal/infrastructure/dynamo"
	"github.com/ledfit-api/internal/infrastructure/google"
	jwtinfra "github.com/ledfit-api/internal/infrastructure/jwt"
	mqttinfra "github.com/ledfit-api/internal/infrastructure/mqtt"
	redisinfra "github.com/ledfit-api/internal/infrastructure/redis"
	s3infra "github.com/ledfit-api/internal/infrastructure/s3"
	"github.com/ledfit-api/internal/infrastructure/sns"
	"github.com/ledfit-api/internal/logger"
	transporthttp "github.com/ledfit-api/internal/transport/http"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
	defer sentry.Flush(2 * time.Second)

	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	ctx := context.Background()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		slog.Error("jwt provider not available", "err", err)
		os.Exit(1)
	}

	boardRepo := dynamo.NewBoardRepo(dynamoClient, cfg.DynamoTables.Boards)
	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		ExerciseRepo:     dynamo.NewExerciseRepo(dynamoClient, cfg.DynamoTables.Exercises),
		WorkoutRepo:      dynamo.NewWorkoutRepo(dynamoClient, cfg.DynamoTables.Workouts),
		BoardRepo:        boardRepo,
		Images:           s3infra.NewStore(s3infra.NewClient(cfg), cfg.S3BucketName, cfg.S3PresignTTL),
		JWTProvider:      jwtProvider,
	}

	// Optional services stay nil in Deps when not configured.
	if cfg.RedisAddr != "" {
		if cache, err := redisinfra.NewCache(ctx, cfg); err == nil {
			defer cache.Close()
			deps.Cache = cache
		} else {
			slog.Warn("catalog cache disabled", "err", err)
		}
	}
	if cfg.SNSAchievementTopicARN != "" {
		if pub, err := sns.NewPublisher(cfg); err == nil {
			deps.Publisher = pub
		} else {
			slog.Warn("unlock publisher disabled", "err", err)
		}
	}
	if cfg.MQTTBrokerURL != "" {
		if mc, err := mqttinfra.NewClient(cfg, boardRepo); err == nil {
			defer mc.Close()
			deps.BoardCommands = mc
		} else {
			slog.Warn("board messaging disabled", "err", err)
		}
	}
	if cfg.GoogleClientID != "" {
		deps.GoogleVerifier = google.NewVerifier(cfg.GoogleClientID)
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
		return
	}
	slog.Info("server stopped")
}
