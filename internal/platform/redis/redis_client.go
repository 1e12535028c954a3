package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"book_catalog/internal/platform/config"
)

var ErrNotConfigured = errors.New("redis not configured")

// NewRedisClient connects to Redis and verifies the connection with PING.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	addr := cfg.Addr()
	if addr == "" {
		return nil, ErrNotConfigured
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
