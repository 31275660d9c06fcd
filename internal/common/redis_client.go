package common

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"logitrack/tracker/internal/logging"
)

func NewRedisClient(addr, password string, db int) *redis.Client {
	logging.Info("Initializing Redis client", "addr", addr, "db", db)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// the pool keeps retrying
		logging.Error("Failed to ping Redis", "error", err)
		return client
	}

	logging.Info("Connected to Redis")
	return client
}
