package dedupe

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/go-lead-backend/internal/config"
)

// RedisDeduper keeps claims as Redis keys written with SET NX and a TTL.
type RedisDeduper struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisDeduper returns a Deduper over client. Keys are namespaced with
// prefix.
func NewRedisDeduper(client redis.UniversalClient, prefix string, ttl time.Duration) (*RedisDeduper, error) {
	if client == nil {
		return nil, errors.New("dedupe: redis client is required")
	}
	if ttl <= 0 {
		return nil, errors.New("dedupe: ttl must be positive")
	}
	return &RedisDeduper{client: client, prefix: prefix, ttl: ttl}, nil
}

// Claim implements Deduper.
func (r *RedisDeduper) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.prefix+key, time.Now().UTC().Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedupe: claim %q: %w", key, err)
	}
	return ok, nil
}

// Release implements Deduper.
func (r *RedisDeduper) Release(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("dedupe: release %q: %w", key, err)
	}
	return nil
}

// NewRedisClient connects to cfg.Addr and verifies the connection with PING.
// It returns (nil, nil) when no address is configured.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, nil
	}
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("dedupe: redis ping: %w", err)
	}
	return client, nil
}
