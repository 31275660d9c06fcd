package common

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"logitrack/tracker/internal/logging"
)

const redisOpTimeout = 2 * time.Second

// RedisCacheService implements CacheInterface using Redis
type RedisCacheService struct {
	client *redis.Client
}

var _ CacheInterface = (*RedisCacheService)(nil)

func NewRedisCacheService(client *redis.Client) *RedisCacheService {
	return &RedisCacheService{client: client}
}

func (r *RedisCacheService) Set(key string, value []byte, duration time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.client.Set(ctx, key, value, duration).Err(); err != nil {
		logging.Warn("Redis cache set failed", "key", key, "error", err)
	}
}

func (r *RedisCacheService) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logging.Warn("Redis cache get failed", "key", key, "error", err)
		return nil, false
	}
	return data, true
}

func (r *RedisCacheService) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.client.Del(ctx, key).Err(); err != nil {
		logging.Warn("Redis cache delete failed", "key", key, "error", err)
	}
}

// DeleteByPrefix scans instead of KEYS so large databases are not blocked.
func (r *RedisCacheService) DeleteByPrefix(prefix string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*redisOpTimeout)
	defer cancel()

	iter := r.client.Scan(ctx, 0, prefix+"*", 200).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 200 {
			r.client.Del(ctx, batch...)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		r.client.Del(ctx, batch...)
	}
	if err := iter.Err(); err != nil {
		logging.Warn("Redis cache prefix delete failed", "prefix", prefix, "error", err)
	}
}

// Close closes the Redis connection
func (r *RedisCacheService) Close() error {
	return r.client.Close()
}
