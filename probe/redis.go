package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gmc/bootstrap/config"
)

// RedisProber checks that the declared cache endpoint answers PING. The
// client is created and closed per probe.
type RedisProber struct {
	cfg config.CacheConfig
}

// NewRedis creates a prober for the given cache descriptor.
func NewRedis(cfg config.CacheConfig) *RedisProber {
	return &RedisProber{cfg: cfg}
}

// Name identifies the dependency.
func (p *RedisProber) Name() string {
	return "redis"
}

// Addr returns the probed address without credentials.
func (p *RedisProber) Addr() string {
	return p.cfg.Addr()
}

// Check dials the cache and issues a PING.
func (p *RedisProber) Check(ctx context.Context) error {
	opts := &redis.Options{
		Addr:     p.cfg.Addr(),
		Password: p.cfg.Password,
		DB:       p.cfg.DB,
	}
	// Keep the dial inside the probe deadline; go-redis only applies ctx
	// once the connection is established.
	if deadline, ok := ctx.Deadline(); ok {
		opts.DialTimeout = time.Until(deadline)
	}

	client := redis.NewClient(opts)
	defer func() { _ = client.Close() }()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	return nil
}
