package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/TristanBrian/MamaCare/internal/cache"
	"github.com/TristanBrian/MamaCare/internal/config"
	"github.com/TristanBrian/MamaCare/internal/database"
	"github.com/TristanBrian/MamaCare/internal/log"
	"github.com/TristanBrian/MamaCare/internal/queue"
	"github.com/TristanBrian/MamaCare/internal/security"
	"github.com/TristanBrian/MamaCare/internal/service"
	"github.com/TristanBrian/MamaCare/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)
	if err := cfg.ValidateWorker(); err != nil {
		logger.Fatal().Err(err).Msg("invalid worker configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	set, err := database.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store failed")
	}
	defer set.Close()

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	notifications := service.NewNotificationService(set.Notifications, logger)
	reminders := service.NewReminderService(set.Users, set.Medications, notifications, cfg.Location(), logger)
	auth := service.NewAuthService(
		set.Users,
		set.Sessions,
		nil,
		security.NewPasswordHasher(security.DefaultArgon2Params),
		security.NewTokenIssuer(cfg.Security.JWTAccessSecret, cfg.Security.JWTAccessTTL),
		cfg.Security,
		logger,
	)

	processor := tasks.NewProcessor(reminders, auth, logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Redis.Stream,
		cfg.Redis.Group,
		cfg.Redis.Consumer,
		cfg.Queues.ClaimInterval,
		logger,
		processor,
	)

	logger.Info().Str("stream", cfg.Redis.Stream).Str("group", cfg.Redis.Group).Msg("worker started")
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("consumer stopped unexpectedly")
		return
	}
	logger.Info().Msg("worker exited cleanly")
}
