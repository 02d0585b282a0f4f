package oracle

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/slmgo/scriptlm/internal/core/ports"
	"github.com/slmgo/scriptlm/internal/infrastructure/metrics"
)

const keyPrefix = "lk:demo:"

// Cache fronts a DemoKeyOracle with a shared Redis cache. Classification
// rarely changes, so a short TTL keeps the remote lookup off the hot path
// without pinning stale demo status forever.
type Cache struct {
	client *redis.Client
	next   ports.DemoKeyOracle
	ttl    time.Duration
}

func NewCache(addr string, password string, db int, ttl time.Duration, next ports.DemoKeyOracle) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Cache{client: rdb, next: next, ttl: ttl}
}

func (c *Cache) IsDemoKey(ctx context.Context, licenseKey string) (bool, error) {
	val, err := c.client.Get(ctx, keyPrefix+licenseKey).Result()
	if err == nil {
		metrics.OracleCacheOperations.WithLabelValues("hit").Inc()
		return val == "1", nil
	}

	metrics.OracleCacheOperations.WithLabelValues("miss").Inc()
	isDemo, err := c.next.IsDemoKey(ctx, licenseKey)
	if err != nil {
		return false, err
	}

	cached := "0"
	if isDemo {
		cached = "1"
	}
	// Cache write failures are not fatal; the next request just misses again.
	c.client.Set(ctx, keyPrefix+licenseKey, cached, c.ttl)
	return isDemo, nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
