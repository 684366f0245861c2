// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"telar/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ===============================
// CACHE INTERFACE
// ===============================

// DefaultTTL tells Set to use the provider's configured expiration.
const DefaultTTL time.Duration = 0

// Cache defines the caching interface. Values are stored as JSON so the memory
// and Redis providers behave identically; Get unmarshals into dest and reports
// whether the key was present.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
	Health(ctx context.Context) error
	Close() error
}

// New creates the cache provider selected by configuration
func New(cfg *config.CacheConfig, logger *zap.Logger) (Cache, error) {
	switch cfg.Provider {
	case "redis":
		return newRedisCache(cfg, logger)
	case "memory":
		return newMemoryCache(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown cache provider: %q", cfg.Provider)
	}
}

// ===============================
// MEMORY CACHE IMPLEMENTATION
// ===============================

type cacheItem struct {
	data      []byte
	expiresAt time.Time
}

func (i *cacheItem) expired(now time.Time) bool {
	return now.After(i.expiresAt)
}

// memoryCache implements Cache with an in-process map. Suitable for a single
// instance; multi-instance deployments should use the redis provider.
type memoryCache struct {
	mu      sync.RWMutex
	items   map[string]*cacheItem
	maxKeys int
	ttl     time.Duration
	logger  *zap.Logger
	done    chan struct{}
}

func newMemoryCache(cfg *config.CacheConfig, logger *zap.Logger) *memoryCache {
	c := &memoryCache{
		items:   make(map[string]*cacheItem),
		maxKeys: cfg.MaxKeys,
		ttl:     cfg.TTL,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) bool {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || item.expired(time.Now()) {
		return false
	}

	if err := json.Unmarshal(item.data, dest); err != nil {
		c.logger.Warn("Failed to decode cached value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Crude eviction: drop expired entries first, then refuse growth
	if len(c.items) >= c.maxKeys {
		now := time.Now()
		for k, item := range c.items {
			if item.expired(now) {
				delete(c.items, k)
			}
		}
		if len(c.items) >= c.maxKeys {
			return fmt.Errorf("cache is full (%d keys)", c.maxKeys)
		}
	}

	c.items[key] = &cacheItem{data: data, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if matchPattern(pattern, key) {
			delete(c.items, key)
		}
	}
	return nil
}

func (c *memoryCache) Health(context.Context) error { return nil }

func (c *memoryCache) Close() error {
	close(c.done)
	return nil
}

func (c *memoryCache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, item := range c.items {
				if item.expired(now) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		case <-c.done:
			return
		}
	}
}

// matchPattern performs glob-style matching on cache keys. Keys with colons
// are matched segment-wise so "products:*" covers "products:page:1".
func matchPattern(pattern, key string) bool {
	if ok, err := path.Match(pattern, key); err == nil && ok {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(key, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == key
}

// ===============================
// REDIS CACHE IMPLEMENTATION
// ===============================

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func newRedisCache(cfg *config.CacheConfig, logger *zap.Logger) (*redisCache, error) {
	options, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if cfg.RedisPassword != "" {
		options.Password = cfg.RedisPassword
	}
	if cfg.RedisDB > 0 {
		options.DB = cfg.RedisDB
	}
	if cfg.PoolSize > 0 {
		options.PoolSize = cfg.PoolSize
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis cache initialized",
		zap.String("addr", options.Addr),
		zap.Int("db", options.DB),
	)

	return &redisCache{client: client, ttl: cfg.TTL, logger: logger}, nil
}

func (r *redisCache) Get(ctx context.Context, key string, dest interface{}) bool {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	} else if err != nil {
		r.logger.Error("Failed to get from Redis", zap.String("key", key), zap.Error(err))
		return false
	}

	if err := json.Unmarshal(val, dest); err != nil {
		r.logger.Warn("Failed to decode cached value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (r *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if ttl <= 0 {
		ttl = r.ttl
	}

	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCache) DeletePattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisCache) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
