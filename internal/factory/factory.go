package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/apl-auction/internal/backend"
	"github.com/mcoot/apl-auction/internal/cursor"
	cursormemory "github.com/mcoot/apl-auction/internal/cursor/memory"
	cursorredis "github.com/mcoot/apl-auction/internal/cursor/redis"
	"github.com/mcoot/apl-auction/internal/dependencies/clock"
	"github.com/mcoot/apl-auction/internal/dependencies/random"
	"github.com/mcoot/apl-auction/internal/metrics"
	"github.com/mcoot/apl-auction/internal/services/auction"
	"github.com/mcoot/apl-auction/internal/services/auth"
	"github.com/mcoot/apl-auction/internal/services/finish"
	"github.com/mcoot/apl-auction/internal/services/league"
	"github.com/mcoot/apl-auction/internal/services/sale"
	"github.com/mcoot/apl-auction/internal/storage"
	"github.com/mcoot/apl-auction/internal/storage/memory"
	redisstorage "github.com/mcoot/apl-auction/internal/storage/redis"
	"github.com/mcoot/apl-auction/internal/storage/sqlite"
	"github.com/mcoot/apl-auction/internal/web/sse"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage
	Cursor  cursor.Channel

	// External dependencies
	Clock   clock.Clock
	Random  random.Random
	Metrics metrics.Metrics

	// League is the local service or the remote backend client
	League league.League
	// LocalLeague is nil when a remote backend serves the league
	LocalLeague *league.Service

	// Services
	SaleService       *sale.Service
	AuctionController *auction.Controller
	FinishDetector    *finish.Detector
	AuthService       *auth.Service
	Hub               *sse.Hub
	Relay             *sse.Relay

	// MetricsHandler serves the Prometheus registry the app reports to
	MetricsHandler http.Handler

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// Backend selects the remote league API when non-nil
	Backend *backend.Config
	// Registry receives the metrics (optional)
	// If nil, a fresh registry is created
	Registry *prometheus.Registry
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var (
		store   storage.Storage
		channel cursor.Channel
		closers []io.Closer
	)
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
		channel = cursormemory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		client, err := redisstorage.Connect(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		redisStore := redisstorage.NewWithClient(client, *cfg.RedisConfig)
		store = redisStore
		channel = cursorredis.New(client, cfg.RedisConfig.KeyPrefix, logger)
		closers = append(closers, redisStore)
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlite.New(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
		channel = cursormemory.New()
		closers = append(closers, sqliteStore)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := metrics.NewService(registry)

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}

	clk := clock.New()
	app := newWithDependencies(store, channel, clk, random.New(), m, authCfg, cfg.Backend, logger)
	app.MetricsHandler = metrics.NewMetricsHandler(registry)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	channel cursor.Channel,
	clk clock.Clock,
	rnd random.Random,
	m metrics.Metrics,
	authCfg auth.Config,
	remote *backend.Config,
	logger *slog.Logger,
) *App {
	var (
		l     league.League
		local *league.Service
	)
	if remote != nil {
		l = backend.NewClient(*remote, clk, m, logger)
	} else {
		local = league.New(store, clk, rnd, m, logger)
		l = local
	}

	detector := finish.New(l, m, logger)
	hub := sse.NewHub(logger)

	return &App{
		Storage:           store,
		Cursor:            channel,
		Clock:             clk,
		Random:            rnd,
		Metrics:           m,
		League:            l,
		LocalLeague:       local,
		SaleService:       sale.New(l, channel, clk, m, logger),
		AuctionController: auction.NewController(l, channel, detector, clk, m, logger),
		FinishDetector:    detector,
		AuthService:       auth.New(store, clk, logger, authCfg),
		Hub:               hub,
		Relay:             sse.NewRelay(channel, hub, logger),
	}
}

// Start runs the SSE hub and relays cursor messages to it until ctx ends
func (a *App) Start(ctx context.Context) error {
	go a.Hub.Run()
	if err := a.Relay.Start(ctx); err != nil {
		a.Hub.Close()
		return fmt.Errorf("failed to start cursor relay: %w", err)
	}
	return nil
}

// Close stops the hub and releases storage connections
func (a *App) Close() error {
	a.Hub.Close()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
