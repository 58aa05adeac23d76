package cache

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultMaxEntries = 256

// Cache is a bounded key/value store whose entries expire.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Purge()
}

type ttlCache[K comparable, V any] struct {
	entries *lru.LRU[K, V]
}

// NewTTLCache returns an in-memory LRU cache whose entries live for ttl.
func NewTTLCache[K comparable, V any](size int, ttl time.Duration) Cache[K, V] {
	if size <= 0 {
		size = defaultMaxEntries
	}
	return &ttlCache[K, V]{entries: lru.NewLRU[K, V](size, nil, ttl)}
}

func (c *ttlCache[K, V]) Get(key K) (V, bool) {
	return c.entries.Get(key)
}

func (c *ttlCache[K, V]) Set(key K, value V) {
	c.entries.Add(key, value)
}

func (c *ttlCache[K, V]) Purge() {
	c.entries.Purge()
}

func cacheKey(parts ...string) string {
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		values = append(values, strings.ToLower(trimmed))
	}
	return strings.Join(values, "|")
}
