// Package cache provides Valkey (Redis-compatible) client initialization,
// a narrow byte-value cache interface, and the category list cache used
// on every public page render.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectValkey creates a Valkey client and verifies the connection with a ping.
func ConnectValkey(host, port, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	slog.Info("valkey connected", "addr", fmt.Sprintf("%s:%s", host, port))
	return client, nil
}

// Store is the cache contract the read path depends on. Implementations
// must treat every backend failure as a miss: a broken cache degrades to
// extra database queries, never to a failed request.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// ValkeyStore implements Store on top of a Valkey client.
type ValkeyStore struct {
	client *redis.Client
}

// NewValkeyStore wraps a connected Valkey client as a Store.
func NewValkeyStore(client *redis.Client) *ValkeyStore {
	return &ValkeyStore{client: client}
}

// Get retrieves a cached value. Backend errors are logged and reported
// as misses.
func (v *ValkeyStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := v.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("cache get error", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores a value with the given TTL. Failures are logged and ignored;
// the caller already holds the value it wanted to cache.
func (v *ValkeyStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := v.client.Set(ctx, key, value, ttl).Err(); err != nil {
		slog.Warn("cache set error", "key", key, "error", err)
	}
}
