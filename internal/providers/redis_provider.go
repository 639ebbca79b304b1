package providers

import (
	"context"
	"fmt"
	"time"
	"tripgen/internal/structures"

	"github.com/redis/go-redis/v9"
)

// NewRedisProvider returns nil when no redis url is configured. Callers treat
// a nil client as "backend absent" and degrade instead of failing.
func NewRedisProvider(conf *structures.Config, logger Logger) (*redis.Client, error) {
	if conf.Redis.URL == "" {
		logger.Warnf(TypeApp, "Redis url not configured, rate limiting and redis store disabled")
		return nil, nil
	}

	opts, err := redis.ParseURL(conf.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warnf(TypeApp, "Redis ping failed: %s", err)
	} else {
		logger.Infof(TypeApp, "Redis connected: %s", opts.Addr)
	}

	return client, nil
}
