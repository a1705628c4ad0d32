package harness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/toolagent/toolagent/config"
	"github.com/ZanzyTHEbar/toolagent/toolagent/harness/adapters"
	ports "github.com/ZanzyTHEbar/toolagent/toolagent/harness/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Factory creates and wires harness components from configuration.
type Factory struct {
	cfg        *config.Config
	registerer prometheus.Registerer
	logger     zerolog.Logger

	metricsOnce sync.Once
	metrics     ports.Metrics
	metricsErr  error
}

// NewFactory creates a new harness factory. A nil registerer disables metrics.
func NewFactory(cfg *config.Config, registerer prometheus.Registerer, logger zerolog.Logger) *Factory {
	return &Factory{
		cfg:        cfg,
		registerer: registerer,
		logger:     logger,
	}
}

// Settings derives run settings from the agent configuration.
func (f *Factory) Settings() Settings {
	return Settings{
		Options: ports.Options{
			Model:        f.cfg.Agent.Model,
			MaxNewTokens: f.cfg.Agent.MaxTokens,
			Temperature:  f.cfg.Agent.Temperature,
		},
		Verbose: f.cfg.Agent.Verbose,
	}
}

// CreateOrchestrator creates a fully wired HarnessOrchestrator from config.
func (f *Factory) CreateOrchestrator(provider ports.Provider, registry *Registry) (*HarnessOrchestrator, error) {
	metrics, err := f.Metrics()
	if err != nil {
		return nil, err
	}

	return NewHarnessOrchestrator(
		provider,
		registry,
		f.createRateLimiter(),
		f.CreateTracer(),
		metrics,
		f.logger,
		f.Settings(),
	)
}

// CreateCache creates the embedding cache backend selected in config.
func (f *Factory) CreateCache(ctx context.Context) (ports.Cache, error) {
	hc := f.cfg.Harness
	if !hc.CacheEnabled {
		return &noOpCache{}, nil
	}

	ttl := time.Duration(hc.CacheTTLSeconds) * time.Second

	switch hc.CacheBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: hc.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis cache at %s: %w", hc.RedisAddr, err)
		}
		return adapters.NewRedisCache(client, adapters.WithKeyPrefix("toolagent:"), adapters.WithDefaultTTL(ttl)), nil
	default:
		return adapters.NewLRUCache(hc.CacheCapacity, ttl), nil
	}
}

// createRateLimiter creates a rate limiter adapter from config.
func (f *Factory) createRateLimiter() ports.RateLimiter {
	if !f.cfg.Harness.RateLimitEnabled {
		return &noOpRateLimiter{}
	}

	return adapters.NewTokenBucket(f.cfg.Harness.RateLimitCapacity, f.cfg.Harness.RateLimitRefillRate)
}

// CreateTracer creates a tracer adapter from config.
func (f *Factory) CreateTracer() ports.Tracer {
	if !f.cfg.Harness.EnableTracing {
		return &noOpTracer{}
	}

	return adapters.NewZerologTracer(f.logger)
}

// Metrics returns the metrics adapter, registering collectors on first use.
func (f *Factory) Metrics() (ports.Metrics, error) {
	f.metricsOnce.Do(func() {
		if !f.cfg.Harness.EnableMetrics || f.registerer == nil {
			f.metrics = &noOpMetrics{}
			return
		}
		f.metrics, f.metricsErr = adapters.NewPrometheusMetrics(f.registerer)
	})
	return f.metrics, f.metricsErr
}

// noOpCache implements Cache interface with no-op behavior for testing/disabled cache.
type noOpCache struct{}

func (c *noOpCache) Get(ctx context.Context, key string) ([]byte, bool) { return nil, false }
func (c *noOpCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	return nil
}
func (c *noOpCache) Delete(ctx context.Context, key string) error { return nil }

// noOpRateLimiter implements RateLimiter interface with no-op behavior.
type noOpRateLimiter struct{}

func (r *noOpRateLimiter) Acquire(ctx context.Context, key string) (release func(), err error) {
	return func() {}, nil
}

// noOpTracer implements Tracer interface with no-op behavior.
type noOpTracer struct{}

func (t *noOpTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error)) {
	return ctx, func(err error) {}
}

func (t *noOpTracer) Event(ctx context.Context, name string, attrs map[string]any) {}

// noOpMetrics implements Metrics interface with no-op behavior.
type noOpMetrics struct{}

func (m *noOpMetrics) ObserveRun(outcome string, d time.Duration)                {}
func (m *noOpMetrics) ObserveModelCall(phase string, d time.Duration, err error) {}
func (m *noOpMetrics) ObserveToolCall(tool, outcome string, d time.Duration)     {}

// Ensure all no-op types implement their interfaces.
var (
	_ ports.Cache       = (*noOpCache)(nil)
	_ ports.RateLimiter = (*noOpRateLimiter)(nil)
	_ ports.Tracer      = (*noOpTracer)(nil)
	_ ports.Metrics     = (*noOpMetrics)(nil)
)
