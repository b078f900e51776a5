package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/apl-auction/internal/api"
	"github.com/mcoot/apl-auction/internal/backend"
	"github.com/mcoot/apl-auction/internal/config"
	"github.com/mcoot/apl-auction/internal/factory"
	"github.com/mcoot/apl-auction/internal/scheduler"
	"github.com/mcoot/apl-auction/internal/seed"
	"github.com/mcoot/apl-auction/internal/services/auth"
	redisstorage "github.com/mcoot/apl-auction/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Build factory config from environment
	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		SQLitePath:  cfg.SQLitePath,
		AuthConfig:  auth.Config{SessionDuration: cfg.SessionDuration},
	}
	if cfg.StorageType == config.StorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}
	if cfg.Remote() {
		factoryCfg.Backend = &backend.Config{BaseURL: cfg.BackendURL, Timeout: cfg.BackendTimeout}
		logger.Info("using remote league backend", slog.String("url", cfg.BackendURL))
	}

	app, err := factory.New(ctx, factoryCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	if cfg.AdminPassword != "" {
		if err := app.AuthService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return err
		}
	} else {
		logger.Warn("ADMIN_PASSWORD not set; only existing admin accounts can log in")
	}

	if cfg.SeedFile != "" {
		sum, err := seed.LoadFile(ctx, cfg.SeedFile, app.League, logger)
		if err != nil {
			return err
		}
		logger.Info("seed file applied",
			slog.String("path", cfg.SeedFile),
			slog.Int("teams", sum.Teams),
			slog.Int("players", sum.Players),
			slog.Bool("skipped", sum.Skipped),
		)
	}

	if err := app.Start(ctx); err != nil {
		return err
	}

	jobs, err := scheduler.New(scheduler.Config{
		CursorRebroadcast: cfg.CursorRebroadcast,
		SessionCleanup:    cfg.SessionCleanup,
	}, app.AuctionController, app.AuthService, logger)
	if err != nil {
		return err
	}
	if err := jobs.Start(); err != nil {
		return err
	}
	defer func() { _ = jobs.Stop() }()

	handler := app.Handler(factory.HandlerConfig{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		StaticDir:      cfg.StaticDir,
	})
	server := api.NewServer(handler, api.DefaultServerConfig(cfg.Addr()), logger)
	// SSE streams only end when the hub closes
	server.OnShutdown(app.Hub.Close)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	}
}
