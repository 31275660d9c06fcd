package common

import (
	"encoding/json"
	"time"

	"logitrack/tracker/internal/logging"
)

// CacheInterface defines the contract for cache implementations. Values are
// opaque bytes so the memory and Redis backends behave the same.
type CacheInterface interface {
	// Set stores a value in cache with the given key and duration
	Set(key string, value []byte, duration time.Duration)

	// Get retrieves a value from cache by key
	Get(key string) ([]byte, bool)

	// Delete removes a value from cache by key
	Delete(key string)

	// DeleteByPrefix removes every key starting with prefix
	DeleteByPrefix(prefix string)

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}

// GetJSON decodes a cached JSON value into T.
func GetJSON[T any](c CacheInterface, key string) (T, bool) {
	var out T
	data, ok := c.Get(key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		logging.Warn("Cache value decode failed", "key", key, "error", err)
		c.Delete(key)
		return out, false
	}
	return out, true
}

// SetJSON encodes v as JSON and caches it.
func SetJSON(c CacheInterface, key string, v any, duration time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Warn("Cache value encode failed", "key", key, "error", err)
		return
	}
	c.Set(key, data, duration)
}
