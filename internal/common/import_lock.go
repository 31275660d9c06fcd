package common

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another import holds the lock.
var ErrLockHeld = errors.New("lock already held")

// ImportLock serializes imports. Release must be called with the token that
// Acquire returned.
type ImportLock interface {
	Acquire(ctx context.Context) (token string, err error)
	Release(ctx context.Context, token string) error
}

// LocalLock guards imports within one process.
type LocalLock struct {
	mu    sync.Mutex
	token string
}

func NewLocalLock() *LocalLock {
	return &LocalLock{}
}

func (l *LocalLock) Acquire(_ context.Context) (string, error) {
	if !l.mu.TryLock() {
		return "", ErrLockHeld
	}
	l.token = uuid.NewString()
	return l.token, nil
}

func (l *LocalLock) Release(_ context.Context, token string) error {
	if token == "" || token != l.token {
		return errors.New("release with foreign token")
	}
	l.token = ""
	l.mu.Unlock()
	return nil
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock guards imports across instances with SET NX PX. The TTL bounds
// how long a crashed holder blocks others.
type RedisLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisLock(client *redis.Client, key string, ttl time.Duration) *RedisLock {
	return &RedisLock{client: client, key: key, ttl: ttl}
}

func (l *RedisLock) Acquire(ctx context.Context) (string, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrLockHeld
	}
	return token, nil
}

func (l *RedisLock) Release(ctx context.Context, token string) error {
	return releaseScript.Run(ctx, l.client, []string{l.key}, token).Err()
}

// ChainLock acquires every lock in order and releases in reverse.
type ChainLock struct {
	locks []ImportLock
}

func NewChainLock(locks ...ImportLock) *ChainLock {
	return &ChainLock{locks: locks}
}

func (c *ChainLock) Acquire(ctx context.Context) (string, error) {
	tokens := make([]string, 0, len(c.locks))
	for i, l := range c.locks {
		t, err := l.Acquire(ctx)
		if err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = c.locks[j].Release(ctx, tokens[j])
			}
			return "", err
		}
		tokens = append(tokens, t)
	}
	return joinTokens(tokens), nil
}

func (c *ChainLock) Release(ctx context.Context, token string) error {
	tokens := splitTokens(token, len(c.locks))
	var errs []error
	for i := len(c.locks) - 1; i >= 0; i-- {
		if err := c.locks[i].Release(ctx, tokens[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

const tokenSep = "|"

func joinTokens(tokens []string) string {
	return strings.Join(tokens, tokenSep)
}

func splitTokens(token string, n int) []string {
	out := make([]string, n)
	copy(out, strings.SplitN(token, tokenSep, n))
	return out
}
