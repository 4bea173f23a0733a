package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"resumescan/internal/config"
	"resumescan/internal/errors"
	"resumescan/internal/types"
)

const keyPrefix = "resumescan:"

// Key derives a cache key from its parts. The parts are hashed so resume
// text never appears in redis keys.
func Key(kind string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return keyPrefix + kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// EnrichmentCache stores enrichment results in redis. A nil cache or one
// whose redis was unreachable at startup bypasses every call.
type EnrichmentCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *errors.Logger

	hits   atomic.Int64
	misses atomic.Int64
	errs   atomic.Int64

	warnedUnavailable atomic.Bool
}

// New connects to redis. It returns nil when caching is disabled and a
// bypassing cache when redis does not answer the ping.
func New(cfg config.CacheConfig, logger *errors.Logger) *EnrichmentCache {
	if !cfg.Enabled {
		logger.Debug("Enrichment cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.LogError(errors.NewNetworkError(errors.ErrCodeCacheUnavailable, "Redis unavailable, bypassing cache", err).
			WithContext("addr", cfg.Addr), "Enrichment cache disabled")
		_ = client.Close()
		return &EnrichmentCache{ttl: cfg.TTL, logger: logger}
	}

	logger.Info("Enrichment cache connected", "addr", cfg.Addr, "db", cfg.DB, "ttl", cfg.TTL)
	return &EnrichmentCache{client: client, ttl: cfg.TTL, logger: logger}
}

// NewWithClient wraps an existing redis client
func NewWithClient(client *redis.Client, ttl time.Duration, logger *errors.Logger) *EnrichmentCache {
	return &EnrichmentCache{client: client, ttl: ttl, logger: logger}
}

func (c *EnrichmentCache) isUnavailable() bool {
	return c == nil || c.client == nil
}

func (c *EnrichmentCache) warnUnavailableOnce(err error) {
	c.errs.Add(1)
	if c.warnedUnavailable.CompareAndSwap(false, true) {
		c.logger.Warn("Redis unavailable, bypassing cache", "error", err)
	}
}

// Get returns a cached enrichment
func (c *EnrichmentCache) Get(ctx context.Context, key string) (*types.Enrichment, bool) {
	if c.isUnavailable() {
		return nil, false
	}
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !stderrors.Is(err, redis.Nil) {
			c.warnUnavailableOnce(err)
		}
		c.misses.Add(1)
		return nil, false
	}

	var e types.Enrichment
	if err := json.Unmarshal(b, &e); err != nil {
		c.logger.Warn("Discarding corrupt cache entry", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &e, true
}

// Set stores an enrichment. Failures are logged and otherwise ignored.
func (c *EnrichmentCache) Set(ctx context.Context, key string, e *types.Enrichment) {
	if c.isUnavailable() || e == nil {
		return
	}
	stored := *e
	stored.Cached = false
	b, err := json.Marshal(stored)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		c.warnUnavailableOnce(err)
	}
}

// Ping checks the redis connection
func (c *EnrichmentCache) Ping(ctx context.Context) error {
	if c.isUnavailable() {
		return errors.NewNetworkError(errors.ErrCodeCacheUnavailable, "redis unavailable", nil)
	}
	return c.client.Ping(ctx).Err()
}

// Stats reports hit and miss counters for the stats endpoint
func (c *EnrichmentCache) Stats() map[string]any {
	if c == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"enabled":   true,
		"connected": c.client != nil,
		"hits":      c.hits.Load(),
		"misses":    c.misses.Load(),
		"errors":    c.errs.Load(),
		"ttl":       c.ttl.String(),
	}
}

// Close closes the redis client
func (c *EnrichmentCache) Close() error {
	if c.isUnavailable() {
		return nil
	}
	return c.client.Close()
}
