// Package app assembles the calculation service from configuration. Both the HTTP
// server and the MCP server are built on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hcc-raf-server/internal/audit"
	"github.com/hcc-raf-server/internal/domain"
	"github.com/hcc-raf-server/internal/health"
	"github.com/hcc-raf-server/internal/registry"
	"github.com/hcc-raf-server/internal/service"
	"github.com/hcc-raf-server/pkg/engine"
)

// App holds the wired components and the resources that must be released on exit
type App struct {
	Logger     *logrus.Logger
	Profile    *registry.Profile
	Calculator *service.Calculator
	Breaker    *engine.ResilientClient
	Cache      *engine.CachedEngine
	Audit      audit.Store

	redis *engine.RedisCache
}

// LoadProfile returns the configured model-year profile, or the compiled-in one
func LoadProfile(cfg domain.ModelConfig, logger *logrus.Logger) (*registry.Profile, error) {
	profile := registry.Default()
	if cfg.ProfilePath != "" {
		loaded, err := registry.LoadProfile(cfg.ProfilePath)
		if err != nil {
			return nil, err
		}
		profile = loaded
	}

	// The configured name is what the engine receives; the profile only labels results
	if cfg.Name != "" && cfg.Name != profile.Model {
		logger.WithFields(logrus.Fields{
			"configured": cfg.Name,
			"profile":    profile.Model,
		}).Warn("Configured model name differs from the label profile")
		profile.Model = cfg.Name
	}

	logger.WithFields(logrus.Fields{
		"model":       profile.Model,
		"year":        profile.Year,
		"norm_factor": profile.NormFactor,
		"source":      cfg.ProfilePath,
	}).Info("Model profile loaded")

	return profile, nil
}

// New wires the calculator: engine client, circuit breaker, result cache and the
// optional audit store
func New(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (*App, error) {
	profile, err := LoadProfile(cfg.Model, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load model profile: %w", err)
	}

	a := &App{Logger: logger, Profile: profile}

	client := engine.NewHTTPClient(engine.Config{
		BaseURL:   cfg.Engine.BaseURL,
		Timeout:   cfg.Engine.Timeout,
		RateLimit: cfg.Engine.RateLimit,
		Burst:     cfg.Engine.Burst,
	})
	a.Breaker = engine.NewResilientClient(client, engine.BreakerConfig{
		MaxRequests:  cfg.Engine.Breaker.MaxRequests,
		Interval:     cfg.Engine.Breaker.Interval,
		Timeout:      cfg.Engine.Breaker.Timeout,
		MinRequests:  cfg.Engine.Breaker.MinRequests,
		FailureRatio: cfg.Engine.Breaker.FailureRatio,
	}, logger)

	var riskEngine domain.RiskEngine = a.Breaker
	if cfg.Cache.Enabled {
		cached, err := a.buildCache(ctx, cfg.Cache, a.Breaker)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Cache = cached
		riskEngine = cached
	}

	var recorder domain.AuditRecorder
	if cfg.Audit.Enabled {
		store, err := audit.NewStore(ctx, cfg.Audit, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open audit store: %w", err)
		}
		a.Audit = store
		recorder = store
	}

	a.Calculator = service.NewCalculator(logger, riskEngine, service.NewFormatter(profile), recorder)
	return a, nil
}

func (a *App) buildCache(ctx context.Context, cfg domain.CacheConfig, next domain.RiskEngine) (*engine.CachedEngine, error) {
	var memory, shared engine.ResultCache
	if cfg.MemorySize > 0 {
		memory = engine.NewMemoryCache(cfg.MemorySize, cfg.MemoryTTL)
	}

	if cfg.RedisURL != "" {
		redisCache, err := engine.NewRedisCache(ctx, engine.RedisCacheConfig{
			URL:         cfg.RedisURL,
			TTL:         cfg.RedisTTL,
			PoolSize:    cfg.PoolSize,
			PoolTimeout: cfg.PoolTimeout,
			MaxRetries:  cfg.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect result cache: %w", err)
		}
		a.redis = redisCache
		shared = redisCache
	}

	a.Logger.WithFields(logrus.Fields{
		"memory_size": cfg.MemorySize,
		"memory_ttl":  cfg.MemoryTTL.String(),
		"redis":       cfg.RedisURL != "",
	}).Info("Engine result cache enabled")

	return engine.NewCachedEngine(next, memory, shared, a.Logger), nil
}

// HealthChecker registers a readiness check for each wired component. Only the
// engine breaker is critical; the cache and the audit store are optional.
func (a *App) HealthChecker(timeout time.Duration) *health.Checker {
	checker := health.NewChecker(timeout, a.Logger)
	if a.Breaker != nil {
		checker.Register("engine", true, health.BreakerCheck(a.Breaker.State))
	}
	if a.redis != nil {
		checker.Register("result_cache", false, a.redis.Ping)
	}
	if a.Audit != nil {
		checker.Register("audit_store", false, func(ctx context.Context) error {
			_, err := a.Audit.Count(ctx)
			return err
		})
	}
	return checker
}

// Close releases the audit store and the Redis connection
func (a *App) Close() error {
	var errs []error
	if a.Audit != nil {
		if err := a.Audit.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing audit store: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing result cache: %w", err))
		}
	}
	return errors.Join(errs...)
}
