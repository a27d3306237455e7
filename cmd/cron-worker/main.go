package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/moments-backend/internal/cron"
	"github.com/angelmondragon/moments-backend/internal/media"
	"github.com/angelmondragon/moments-backend/internal/uploaders"
	"github.com/angelmondragon/moments-backend/pkg/config"
	"github.com/angelmondragon/moments-backend/pkg/db"
	"github.com/angelmondragon/moments-backend/pkg/logger"
	"github.com/angelmondragon/moments-backend/pkg/metrics"
	"github.com/angelmondragon/moments-backend/pkg/migrate"
	"github.com/angelmondragon/moments-backend/pkg/redis"
	"github.com/angelmondragon/moments-backend/pkg/storage"
)

const lockName = "cron-worker"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if cfg.FeatureFlags.InMemoryStore {
		logg.Error(context.Background(), "cron worker needs a shared database", errors.New("in-memory store enabled"))
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	objectStore, err := storage.New(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	cronMetrics := metrics.NewCronJobMetrics(reg)
	moderationMetrics := metrics.NewModerationMetrics(reg)

	mediaRepo := media.NewRepository(dbClient.DB())
	uploaderService, err := uploaders.NewService(uploaders.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create uploader service", err)
		os.Exit(1)
	}
	mediaService, err := media.NewService(media.ServiceParams{
		Logger:         logg,
		Repo:           mediaRepo,
		Uploaders:      uploaderService,
		Store:          objectStore,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes(),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	backlogJob, err := cron.NewBacklogJob(cron.BacklogJobParams{
		Logger:        logg,
		Stats:         mediaService,
		MediaRepo:     mediaRepo,
		Metrics:       moderationMetrics,
		PendingMaxAge: cfg.Cron.PendingMaxAge,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create backlog job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	scheduler, err := cron.NewScheduler(cron.SchedulerParams{
		Logger:   logg,
		Lock:     lock,
		Metrics:  cronMetrics,
		Jobs:     []cron.Job{backlogJob},
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron scheduler", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Cron.Interval.String(),
	})

	metricsServer := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics listener stopped", err)
		}
	}()

	logg.Info(ctx, "starting cron worker")

	exitCode := 0
	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	closeErr := multierr.Combine(
		metricsServer.Shutdown(shutdownCtx),
		redisClient.Close(),
		dbClient.Close(),
	)
	if closeErr != nil {
		logg.Error(ctx, "cron worker shutdown incomplete", closeErr)
		exitCode = 1
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
	os.Exit(exitCode)
}
