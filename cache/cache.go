// Package cache provides a TTL response cache for IRRd queries, keyed by
// the rendered wire command. Operators re-expand the same as-sets and
// re-fetch the same route lists on every filter build; caching the
// expansion results keeps repeated runs off the server.
//
// The Store interface abstracts the backing store. NewRedis wraps a
// github.com/redis/go-redis/v9 client; Memory is an in-process
// implementation for tests and single-run tooling.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a cache of query response items keyed by wire command.
type Store interface {
	// Get returns the cached items for cmd, reporting whether an entry
	// was present.
	Get(ctx context.Context, cmd string) (items []string, ok bool, err error)

	// Put stores the items for cmd.
	Put(ctx context.Context, cmd string, items []string) error
}

// itemSeparator joins cached items into a single value. Response items
// never contain newlines followed by newlines, so a blank line is an
// unambiguous separator for both word and paragraph items.
const itemSeparator = "\n\n"

// redisClient is the minimal surface needed from a Redis client.
// *redis.Client satisfies it.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Redis is a Store backed by a Redis instance.
type Redis struct {
	client redisClient
	ttl    time.Duration
}

// NewRedis returns a Store using client, with entries expiring after
// ttl. A non-positive ttl defaults to one hour.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return newRedis(client, ttl)
}

func newRedis(client redisClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Redis{client: client, ttl: ttl}
}

func redisKey(cmd string) string {
	return "irrd:response:" + strings.TrimSuffix(cmd, "\n")
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, cmd string) ([]string, bool, error) {
	value, err := r.client.Get(ctx, redisKey(cmd)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	if value == "" {
		return nil, true, nil
	}
	return strings.Split(value, itemSeparator), true, nil
}

// Put implements Store.
func (r *Redis) Put(ctx context.Context, cmd string, items []string) error {
	return r.client.Set(ctx, redisKey(cmd), strings.Join(items, itemSeparator), r.ttl).Err()
}

// Memory is an in-process Store with TTL expiry. Safe for concurrent
// use.
type Memory struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	items   []string
	expires time.Time
}

// NewMemory returns an in-process Store with entries expiring after ttl.
// A non-positive ttl defaults to one hour.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, cmd string) ([]string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[cmd]
	if !ok {
		return nil, false, nil
	}
	if m.now().After(entry.expires) {
		delete(m.entries, cmd)
		return nil, false, nil
	}
	return entry.items, true, nil
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, cmd string, items []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[cmd] = memoryEntry{items: items, expires: m.now().Add(m.ttl)}
	return nil
}
