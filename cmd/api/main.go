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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/moments-backend/api/controllers"
	"github.com/angelmondragon/moments-backend/api/routes"
	"github.com/angelmondragon/moments-backend/internal/auth"
	"github.com/angelmondragon/moments-backend/internal/media"
	"github.com/angelmondragon/moments-backend/internal/seed"
	"github.com/angelmondragon/moments-backend/internal/uploaders"
	"github.com/angelmondragon/moments-backend/pkg/auth/session"
	"github.com/angelmondragon/moments-backend/pkg/config"
	"github.com/angelmondragon/moments-backend/pkg/db"
	"github.com/angelmondragon/moments-backend/pkg/logger"
	"github.com/angelmondragon/moments-backend/pkg/metrics"
	"github.com/angelmondragon/moments-backend/pkg/migrate"
	"github.com/angelmondragon/moments-backend/pkg/redis"
	"github.com/angelmondragon/moments-backend/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		dbClient     *db.Client
		mediaRepo    media.Store
		uploaderRepo uploaders.Store
		pingers      = map[string]controllers.Pinger{}
	)
	if cfg.FeatureFlags.InMemoryStore {
		logg.Warn(ctx, "using in-memory store; data is lost on restart")
		mediaRepo = media.NewMemoryRepository()
		uploaderRepo = uploaders.NewMemoryRepository()
	} else {
		dbClient, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run dev migrations", err)
			os.Exit(1)
		}
		mediaRepo = media.NewRepository(dbClient.DB())
		uploaderRepo = uploaders.NewRepository(dbClient.DB())
		pingers["db"] = dbClient
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	pingers["redis"] = redisClient

	objectStore, err := storage.New(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap object storage", err)
		os.Exit(1)
	}
	pingers["storage"] = objectStore

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	moderationMetrics := metrics.NewModerationMetrics(reg)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	sessionManager, err := session.NewManager(redisClient)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Logger:    logg,
		Sessions:  sessionManager,
		JWTConfig: cfg.JWT,
		Admin:     cfg.Admin,
		Password:  cfg.Password,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	uploaderService, err := uploaders.NewService(uploaderRepo, logg)
	if err != nil {
		logg.Error(ctx, "failed to create uploader service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(media.ServiceParams{
		Logger:         logg,
		Repo:           mediaRepo,
		Uploaders:      uploaderService,
		Store:          objectStore,
		Metrics:        moderationMetrics,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes(),
	})
	if err != nil {
		logg.Error(ctx, "failed to create media service", err)
		os.Exit(1)
	}

	seeder, err := seed.NewSeeder(mediaRepo, uploaderRepo, logg)
	if err != nil {
		logg.Error(ctx, "failed to create seeder", err)
		os.Exit(1)
	}
	if cfg.FeatureFlags.SeedDemoData {
		if _, err := seeder.SeedIfEmpty(ctx); err != nil {
			logg.Error(ctx, "failed to seed demo data", err)
			os.Exit(1)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"addr":           addr,
		"instance":       id,
		"storage_driver": cfg.Storage.Driver,
		"in_memory":      cfg.FeatureFlags.InMemoryStore,
	})
	logg.Info(serverCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:      cfg,
			Logger:      logg,
			Gatherer:    reg,
			HTTPMetrics: httpMetrics,
			Redis:       redisClient,
			Pingers:     pingers,
			Auth:        authService,
			Media:       mediaService,
			Uploaders:   uploaderService,
			Resetter:    seeder,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var shutdownErr error
	shutdownErr = multierr.Append(shutdownErr, server.Shutdown(shutdownCtx))
	shutdownErr = multierr.Append(shutdownErr, redisClient.Close())
	if dbClient != nil {
		shutdownErr = multierr.Append(shutdownErr, dbClient.Close())
	}
	if shutdownErr != nil {
		for _, e := range multierr.Errors(shutdownErr) {
			logg.Error(serverCtx, "shutdown step failed", e)
		}
		exitCode = 1
	} else {
		logg.Info(serverCtx, "api server stopped gracefully")
	}
	os.Exit(exitCode)
}
