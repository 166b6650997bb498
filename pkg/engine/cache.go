package engine

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hcc-raf-server/internal/domain"
)

// cacheKeyPrefix namespaces engine results in a shared Redis
const cacheKeyPrefix = "raf:engine"

// ResultCache stores engine results by request key. Cached results are shared
// between callers and must be treated as read-only.
type ResultCache interface {
	Get(ctx context.Context, key string) (*domain.RawModelResult, bool, error)
	Set(ctx context.Context, key string, result *domain.RawModelResult) error
}

// CacheKey derives a stable key from the engine request
func CacheKey(req *domain.EngineRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", cacheKeyPrefix, hash), nil
}

// MemoryCache is an in-process LRU cache with per-entry expiry
type MemoryCache struct {
	lru *expirable.LRU[string, *domain.RawModelResult]
}

// NewMemoryCache creates an in-memory cache holding up to size entries for ttl
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 1000
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, *domain.RawModelResult](size, nil, ttl),
	}
}

// Get implements ResultCache
func (m *MemoryCache) Get(_ context.Context, key string) (*domain.RawModelResult, bool, error) {
	result, ok := m.lru.Get(key)
	return result, ok, nil
}

// Set implements ResultCache
func (m *MemoryCache) Set(_ context.Context, key string, result *domain.RawModelResult) error {
	m.lru.Add(key, result)
	return nil
}

// Len returns the number of cached entries
func (m *MemoryCache) Len() int {
	return m.lru.Len()
}

// RedisCacheConfig represents configuration for the Redis result cache
type RedisCacheConfig struct {
	URL         string
	TTL         time.Duration
	PoolSize    int
	PoolTimeout time.Duration
	MaxRetries  int
}

// RedisCache stores engine results in Redis as JSON
type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(ctx context.Context, config RedisCacheConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.PoolTimeout > 0 {
		opts.PoolTimeout = config.PoolTimeout
	}
	if config.MaxRetries > 0 {
		opts.MaxRetries = config.MaxRetries
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCacheFromClient(client, config.TTL), nil
}

// NewRedisCacheFromClient wraps an existing Redis client
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &RedisCache{redis: client, ttl: ttl}
}

// Get implements ResultCache
func (r *RedisCache) Get(ctx context.Context, key string) (*domain.RawModelResult, bool, error) {
	val, err := r.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached engine result: %w", err)
	}

	var result domain.RawModelResult
	if err := json.Unmarshal(val, &result); err != nil {
		// Remove corrupted cache entry
		r.redis.Del(ctx, key)
		return nil, false, nil
	}
	return &result, true, nil
}

// Set implements ResultCache
func (r *RedisCache) Set(ctx context.Context, key string, result *domain.RawModelResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal engine result: %w", err)
	}
	return r.redis.Set(ctx, key, data, r.ttl).Err()
}

// Ping checks if the Redis connection is alive
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.redis.Ping(ctx).Err()
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	return r.redis.Close()
}

// CacheStats represents cache performance statistics
type CacheStats struct {
	MemoryHits    int64 `json:"memory_hits"`
	RedisHits     int64 `json:"redis_hits"`
	Misses        int64 `json:"misses"`
	CacheErrors   int64 `json:"cache_errors"`
	TotalRequests int64 `json:"total_requests"`
}

// CachedEngine is a read-through cache in front of an engine: memory first, then
// Redis, then the engine. Either tier may be nil. Cache failures are logged and
// never fail a calculation.
type CachedEngine struct {
	engine domain.RiskEngine
	memory ResultCache
	redis  ResultCache
	logger *logrus.Logger

	statsMu sync.Mutex
	stats   CacheStats
}

// NewCachedEngine creates a cached engine
func NewCachedEngine(engine domain.RiskEngine, memory, shared ResultCache, logger *logrus.Logger) *CachedEngine {
	return &CachedEngine{
		engine: engine,
		memory: memory,
		redis:  shared,
		logger: logger,
	}
}

// Calculate implements domain.RiskEngine
func (c *CachedEngine) Calculate(ctx context.Context, req *domain.EngineRequest) (*domain.RawModelResult, error) {
	c.count(func(s *CacheStats) { s.TotalRequests++ })

	key, err := CacheKey(req)
	if err != nil {
		return nil, err
	}

	if result := c.lookup(ctx, c.memory, key, "memory"); result != nil {
		c.count(func(s *CacheStats) { s.MemoryHits++ })
		return result, nil
	}

	if result := c.lookup(ctx, c.redis, key, "redis"); result != nil {
		c.count(func(s *CacheStats) { s.RedisHits++ })
		c.store(ctx, c.memory, key, result, "memory")
		return result, nil
	}

	c.count(func(s *CacheStats) { s.Misses++ })
	result, err := c.engine.Calculate(ctx, req)
	if err != nil {
		return nil, err
	}

	c.store(ctx, c.memory, key, result, "memory")
	c.store(ctx, c.redis, key, result, "redis")
	return result, nil
}

func (c *CachedEngine) lookup(ctx context.Context, cache ResultCache, key, tier string) *domain.RawModelResult {
	if cache == nil {
		return nil
	}
	result, found, err := cache.Get(ctx, key)
	if err != nil {
		c.count(func(s *CacheStats) { s.CacheErrors++ })
		c.logger.WithError(err).WithField("cache_tier", tier).Warn("Engine result cache read failed")
		return nil
	}
	if !found {
		return nil
	}
	c.logger.WithField("cache_tier", tier).Debug("Engine result cache hit")
	return result
}

func (c *CachedEngine) store(ctx context.Context, cache ResultCache, key string, result *domain.RawModelResult, tier string) {
	if cache == nil {
		return
	}
	if err := cache.Set(ctx, key, result); err != nil {
		c.count(func(s *CacheStats) { s.CacheErrors++ })
		c.logger.WithError(err).WithField("cache_tier", tier).Warn("Engine result cache write failed")
	}
}

func (c *CachedEngine) count(update func(s *CacheStats)) {
	c.statsMu.Lock()
	update(&c.stats)
	c.statsMu.Unlock()
}

// Stats returns a snapshot of the cache counters
func (c *CachedEngine) Stats() CacheStats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}
