package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// CacheMode indicates which cache backend is active
type CacheMode string

const (
	CacheModeRedis    CacheMode = "redis"
	CacheModeInMemory CacheMode = "in-memory"
)

const cacheKeyPrefix = "roi:result:"

// RedisOptions configures the Redis side of a ResultCache.
type RedisOptions struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
}

type memoryItem struct {
	payload   []byte
	expiresAt time.Time
}

// ResultCache stores computed results keyed by a request fingerprint.
// Values are msgpack-encoded. Redis is used when enabled and reachable;
// otherwise, or when Redis fails mid-flight, entries live in process memory.
type ResultCache struct {
	redis *redis.Client
	ttl   time.Duration
	log   zerolog.Logger

	mu     sync.RWMutex
	mode   CacheMode
	memory map[string]memoryItem
	now    func() time.Time
}

// NewResultCache connects to Redis when opts.Enabled and falls back to an
// in-memory map otherwise. It never fails.
func NewResultCache(ctx context.Context, opts RedisOptions, ttl time.Duration, log zerolog.Logger) *ResultCache {
	c := &ResultCache{
		ttl:    ttl,
		log:    log.With().Str("component", "result_cache").Logger(),
		mode:   CacheModeInMemory,
		memory: make(map[string]memoryItem),
		now:    time.Now,
	}
	if !opts.Enabled {
		return c
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Address,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		MaxRetries:   2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		c.log.Warn().Err(err).Str("addr", opts.Address).Msg("Redis unavailable; using in-memory cache")
		client.Close()
		return c
	}

	c.redis = client
	c.mode = CacheModeRedis
	c.log.Info().Str("addr", opts.Address).Msg("Redis cache connected")
	return c
}

// Mode reports the active backend.
func (c *ResultCache) Mode() CacheMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Close releases the Redis client.
func (c *ResultCache) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

// Fingerprint derives a stable cache key from any JSON-encodable parts.
func Fingerprint(parts ...interface{}) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		if err := enc.Encode(p); err != nil {
			return "", fmt.Errorf("failed to fingerprint cache key: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get decodes the entry for key into v and reports whether it was found.
func (c *ResultCache) Get(ctx context.Context, key string, v interface{}) (bool, error) {
	payload, ok := c.load(ctx, key)
	if !ok {
		return false, nil
	}
	if err := msgpack.Unmarshal(payload, v); err != nil {
		return false, fmt.Errorf("failed to decode cached entry: %w", err)
	}
	return true, nil
}

// Set stores v under key for the cache TTL.
func (c *ResultCache) Set(ctx context.Context, key string, v interface{}) error {
	if c.ttl <= 0 {
		return nil
	}
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if c.Mode() == CacheModeRedis {
		err := c.redis.Set(ctx, cacheKeyPrefix+key, payload, c.ttl).Err()
		if err == nil {
			return nil
		}
		c.degrade(err)
	}

	c.mu.Lock()
	c.memory[key] = memoryItem{payload: payload, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *ResultCache) load(ctx context.Context, key string) ([]byte, bool) {
	if c.Mode() == CacheModeRedis {
		payload, err := c.redis.Get(ctx, cacheKeyPrefix+key).Bytes()
		switch {
		case err == nil:
			return payload, true
		case err == redis.Nil:
			return nil, false
		default:
			c.degrade(err)
		}
	}

	c.mu.RLock()
	item, ok := c.memory[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(item.expiresAt) {
		c.mu.Lock()
		delete(c.memory, key)
		c.mu.Unlock()
		return nil, false
	}
	return item.payload, true
}

// degrade switches to the in-memory map after a Redis failure.
func (c *ResultCache) degrade(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != CacheModeInMemory {
		c.mode = CacheModeInMemory
		c.log.Warn().Err(err).Msg("Redis error; cache degraded to in-memory")
	}
}

// Sweep drops expired in-memory entries and returns how many were removed.
func (c *ResultCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for k, item := range c.memory {
		if now.After(item.expiresAt) {
			delete(c.memory, k)
			n++
		}
	}
	return n
}
