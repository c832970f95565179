package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/TristanBrian/MamaCare/internal/cache"
	"github.com/TristanBrian/MamaCare/internal/config"
	"github.com/TristanBrian/MamaCare/internal/database"
	"github.com/TristanBrian/MamaCare/internal/handlers"
	"github.com/TristanBrian/MamaCare/internal/jobs"
	"github.com/TristanBrian/MamaCare/internal/log"
	"github.com/TristanBrian/MamaCare/internal/middleware"
	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/queue"
	"github.com/TristanBrian/MamaCare/internal/repository"
	"github.com/TristanBrian/MamaCare/internal/security"
	"github.com/TristanBrian/MamaCare/internal/server"
	"github.com/TristanBrian/MamaCare/internal/service"
	"github.com/TristanBrian/MamaCare/internal/storage"
	"github.com/TristanBrian/MamaCare/internal/tasks"
	"github.com/TristanBrian/MamaCare/migrations"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "api",
		Short: "MamaCare maternal health API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(cfg, log.New(cfg.Environment, cfg.Logging.Level))
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(ctx context.Context, m *database.Migrator) error {
				applied, err := m.Up(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("applied %d migration(s)\n", applied)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(ctx context.Context, m *database.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return err
				}
				for _, st := range statuses {
					state := "pending"
					if st.AppliedAt != nil {
						state = "applied " + st.AppliedAt.Format(time.RFC3339)
					}
					fmt.Printf("%04d  %-40s %s\n", st.Version, st.Name, state)
				}
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(fn func(ctx context.Context, m *database.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	return fn(ctx, database.NewMigrator(pool, migrations.FS))
}

// demoAccounts are the prototype's sign-in fixtures.
var demoAccounts = []service.BootstrapAccount{
	{Email: "hospital@example.com", Password: "password123", FullName: "Nairobi Hospital", Role: models.UserRoleHospital},
	{Email: "doctor@example.com", Password: "password123", FullName: "Dr. Jane Doe", Role: models.UserRoleDoctor},
	{Email: "patient@example.com", Password: "password123", FullName: "Sarah Smith", Role: models.UserRolePatient},
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the bootstrap admin and optional demo accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			demo, _ := cmd.Flags().GetBool("demo")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := log.New(cfg.Environment, cfg.Logging.Level)
			if cfg.Security.BootstrapPassword == "" {
				return errors.New("security.bootstrappassword is required to seed")
			}

			ctx := context.Background()
			set, err := database.OpenStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer set.Close()

			auth := newAuthService(cfg, set, nil, logger)

			accounts := []service.BootstrapAccount{{
				Email:    cfg.Security.BootstrapEmail,
				Password: cfg.Security.BootstrapPassword,
				FullName: "Admin User",
				Role:     models.UserRoleAdmin,
			}}
			if demo {
				accounts = append(accounts, demoAccounts...)
			}

			for _, acct := range accounts {
				user, created, err := auth.EnsureAccount(ctx, acct)
				if err != nil {
					return fmt.Errorf("seed %s: %w", acct.Email, err)
				}
				logger.Info().
					Str("email", user.Email).
					Str("role", string(user.Role)).
					Bool("created", created).
					Msg("account seeded")
			}
			return nil
		},
	}
	cmd.Flags().Bool("demo", false, "also create hospital, doctor and patient demo accounts")
	return cmd
}

func newAuthService(cfg *config.AppConfig, set *repository.Set, attempts service.AttemptTracker, logger zerolog.Logger) *service.AuthService {
	return service.NewAuthService(
		set.Users,
		set.Sessions,
		attempts,
		security.NewPasswordHasher(security.DefaultArgon2Params),
		security.NewTokenIssuer(cfg.Security.JWTAccessSecret, cfg.Security.JWTAccessTTL),
		cfg.Security,
		logger,
	)
}

func runServer(cfg *config.AppConfig, logger zerolog.Logger) error {
	ctx := context.Background()

	set, err := database.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := set.Close(); err != nil {
			logger.Error().Err(err).Msg("store close error")
		}
	}()

	checks := []handlers.HealthCheck{{Name: cfg.Store.Driver, Ping: set.Ping}}

	var (
		redisClient *redis.Client
		attempts    service.AttemptTracker
		idempotency middleware.IdempotencyStore
		taskQueue   jobs.Enqueuer
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()

		attempts = cache.NewLoginAttempts(redisClient, cfg.Security.MaxLoginAttempts, cfg.Security.LockoutWindow)
		idempotency = cache.NewIdempotencyStore(redisClient, cfg.Security.IdempotencyTTL)
		taskQueue = cache.NewTaskQueue(redisClient, cfg.Redis.Stream)
		checks = append(checks, handlers.HealthCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	} else {
		logger.Warn().Msg("redis disabled: no login lockout, idempotency or background jobs")
	}

	var avatarStore service.AvatarStore
	if cfg.Storage.Enabled {
		objectStore, err := storage.NewObjectStore(cfg.Storage)
		if err != nil {
			return fmt.Errorf("init object store: %w", err)
		}
		if err := objectStore.EnsureBuckets(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure buckets failed")
		}
		avatarStore = objectStore
		checks = append(checks, handlers.HealthCheck{Name: "storage", Ping: objectStore.Ping})
	}

	loc := cfg.Location()
	auth := newAuthService(cfg, set, attempts, logger)
	svc := handlers.Services{
		Auth:          auth,
		Appointments:  service.NewAppointmentService(set.Users, set.Appointments, logger),
		Notifications: service.NewNotificationService(set.Notifications, logger),
		Medications:   service.NewMedicationService(set.Users, set.Medications, loc, logger),
		Pregnancy:     service.NewPregnancyService(loc),
		Avatars:       service.NewAvatarService(avatarStore, auth, cfg.Security.SigningSecret, cfg.Storage.MaxAvatarSize, logger),
	}

	limiter := middleware.NewRateLimiter(cfg.Security.RateLimitRPS, cfg.Security.RateLimitBurst)
	handlerSet := handlers.NewHandlerSet(logger, cfg, svc, limiter, idempotency, checks...)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(taskQueue, cfg.Jobs, logger)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepLimiter(sigCtx, limiter)

	consumerDone := make(chan struct{})
	if cfg.InProcessTasks() {
		reminders := service.NewReminderService(set.Users, set.Medications, svc.Notifications, loc, logger)
		consumer := queue.NewConsumer(
			redisClient,
			cfg.Redis.Stream,
			cfg.Redis.Group,
			cfg.Redis.Consumer,
			cfg.Queues.ClaimInterval,
			logger,
			tasks.NewProcessor(reminders, auth, logger),
		)
		logger.Info().Msg("leveldb store: consuming background tasks in-process")
		go func() {
			defer close(consumerDone)
			if err := consumer.Start(sigCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("task consumer stopped")
			}
		}()
	} else {
		close(consumerDone)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	select {
	case err := <-errCh:
		stop()
		scheduler.Stop()
		<-consumerDone
		return err
	case <-sigCtx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	scheduler.Stop()
	<-consumerDone

	logger.Info().Msg("server exited cleanly")
	return nil
}

func sweepLimiter(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep()
		}
	}
}
