// Package app provides the main application struct for centralized dependency management
// and lifecycle control of the carwise server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"carwise/config"
	"carwise/internal/cache"
	"carwise/internal/observability"
	"carwise/internal/profile"
	"carwise/internal/providers"
	"carwise/internal/providers/autodev"
	"carwise/internal/providers/carquery"
	"carwise/internal/providers/nhtsa"
	"carwise/internal/search"
	"carwise/internal/server"
)

// App represents the main application with all its dependencies.
// It provides centralized lifecycle management for all components.
type App struct {
	config   *config.Config
	cache    cache.Cache
	registry *prometheus.Registry
	metrics  *observability.Metrics
	profiles *profile.Service
	search   *search.Service
	server   *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
}

// New creates a new App with all dependencies initialized.
// The caller must call Shutdown to release resources.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app config is required")
	}

	c, err := NewCache(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	engine, err := NewEngine(cfg.Search)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	opts := func(baseURL string) providers.Options {
		return providers.Options{
			BaseURL:  baseURL,
			Timeout:  cfg.HTTP.Timeout,
			Cache:    c,
			Hooks:    metrics,
			Recorder: metrics,
		}
	}

	autoDev := autodev.New(cfg.AutoDev.APIKey, opts(cfg.AutoDev.BaseURL))
	reconciler := profile.NewReconciler(
		autoDev,
		nhtsa.NewVPIC(opts(cfg.NHTSA.VPICBaseURL)),
		carquery.New(opts(cfg.CarQuery.BaseURL)),
		nhtsa.NewSafety(opts(cfg.NHTSA.APIBaseURL)),
	)

	app := &App{
		config:   cfg,
		cache:    c,
		registry: registry,
		metrics:  metrics,
		profiles: profile.NewService(reconciler),
		search: search.NewService(autoDev, engine, search.ServiceConfig{
			MinYear: cfg.Search.MinYear,
			Limit:   cfg.Search.Limit,
			TopK:    cfg.Search.TopK,
		}, metrics),
	}

	app.server = server.New(app.profiles, app.search, &server.Config{
		MasterKey:       cfg.Server.MasterKey,
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsEndpoint: cfg.Metrics.Endpoint,
		MetricsGatherer: registry,
		BodySizeLimit:   cfg.Server.BodySizeLimit,
	})

	app.logStartupInfo()
	return app, nil
}

// NewCache builds the adapter cache selected by cfg.
func NewCache(cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Type {
	case config.CacheTypeRedis:
		return cache.NewRedisCache(cache.RedisConfig{
			URL:    cfg.Redis.URL,
			Prefix: cfg.Redis.KeyPrefix,
			TTL:    cfg.TTL,
		})
	case config.CacheTypeMemory, "":
		return cache.NewMemoryCache(cfg.TTL), nil
	}
	return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
}

// NewEngine builds the scoring engine from search settings.
func NewEngine(cfg config.SearchConfig) (*search.Engine, error) {
	weights, err := search.WeightsByName(cfg.Weights)
	if err != nil {
		return nil, err
	}
	return search.NewEngine(
		search.WithWeights(weights),
		search.WithUnknownPriceScore(cfg.UnknownPriceScore),
		search.WithStrictBudget(cfg.StrictBudget),
	), nil
}

// Profiles returns the VIN profile service.
func (a *App) Profiles() *profile.Service {
	return a.profiles
}

// Search returns the listing search service.
func (a *App) Search() *search.Service {
	return a.search
}

// Handler returns the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server
}

// Start starts the HTTP server on the given address.
// This is a blocking call that returns when the server stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	slog.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server and then closes the cache.
// It is idempotent; every step runs and failures are joined.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	slog.Info("shutting down application...")

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			slog.Error("cache close error", "error", err)
			errs = append(errs, fmt.Errorf("cache close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	slog.Info("application shutdown complete")
	return nil
}

// Close releases resources without a running server, for one-shot CLI commands.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.Shutdown(ctx)
}

// logStartupInfo logs the application configuration on startup.
func (a *App) logStartupInfo() {
	cfg := a.config

	if cfg.Server.MasterKey == "" {
		slog.Warn("CARWISE_MASTER_KEY not set, API is unauthenticated")
	} else {
		slog.Info("authentication enabled", "mode", "master_key")
	}

	if cfg.AutoDev.APIKey == "" {
		slog.Warn("AUTO_DEV_API_KEY not set, VIN lookups and searches will fail")
	}

	slog.Info("cache configured", "type", cfg.Cache.Type, "ttl", cfg.Cache.TTL)
	slog.Info("search configured",
		"weights", cfg.Search.Weights,
		"unknown_price_score", cfg.Search.UnknownPriceScore,
		"strict_budget", cfg.Search.StrictBudget,
		"min_year", cfg.Search.MinYear,
	)

	if cfg.Metrics.Enabled {
		slog.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	} else {
		slog.Info("prometheus metrics disabled")
	}
}
