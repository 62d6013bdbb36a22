// Package providers holds what every vehicle-data adapter shares: the injected
// cache, metrics recorder and HTTP settings, plus cached lookup helpers.
package providers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"carwise/internal/cache"
	"carwise/internal/core"
	"carwise/internal/upstream"
)

// Recorder receives adapter-level observations. observability.Metrics implements it.
type Recorder interface {
	ObserveOutcome(adapter string, outcome core.Outcome)
	ObserveCache(adapter string, hit bool)
}

// Options configures an adapter.
type Options struct {
	// BaseURL overrides the provider's public endpoint
	BaseURL string

	// Timeout bounds each upstream request
	Timeout time.Duration

	// Cache is required; every adapter result goes through it
	Cache cache.Cache

	// HTTPClient replaces the shared client factory, mainly for tests
	HTTPClient *http.Client

	Hooks    upstream.Hooks
	Recorder Recorder
}

// NewClient builds the upstream client for an adapter from its options.
func (o Options) NewClient(source, defaultBaseURL string, defaultTimeout time.Duration, headers upstream.HeaderSetter) *upstream.Client {
	cfg := upstream.Config{
		Source:  source,
		BaseURL: defaultBaseURL,
		Timeout: o.Timeout,
		Hooks:   o.Hooks,
	}
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if o.HTTPClient != nil {
		return upstream.NewWithHTTPClient(o.HTTPClient, cfg, headers)
	}
	return upstream.New(cfg, headers)
}

// CacheOrNew returns o.Cache, or a private memory cache when none was injected.
func (o Options) CacheOrNew() cache.Cache {
	if o.Cache != nil {
		return o.Cache
	}
	return cache.NewMemoryCache(cache.DefaultTTL)
}

// Lookup reads key from c into dst. Cache failures are logged and treated as a miss
// so a broken cache never blocks an upstream call.
func Lookup(ctx context.Context, c cache.Cache, rec Recorder, adapter, key string, dst any) bool {
	hit, err := c.Get(ctx, key, dst)
	if err != nil {
		slog.Warn("cache read failed", "adapter", adapter, "key", key, "error", err)
		hit = false
	}
	if rec != nil {
		rec.ObserveCache(adapter, hit)
	}
	return hit
}

// Store writes value under key, logging rather than returning failures.
func Store(ctx context.Context, c cache.Cache, adapter, key string, value any) {
	if err := c.Set(ctx, key, value); err != nil {
		slog.Warn("cache write failed", "adapter", adapter, "key", key, "error", err)
	}
}

// Report forwards an outcome to rec when one is configured.
func Report(rec Recorder, adapter string, outcome core.Outcome) {
	if rec != nil {
		rec.ObserveOutcome(adapter, outcome)
	}
}
