package db

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"eventsink/internal/events"
)

// CachedKeyStore is a read-through redis cache in front of a KeyStore. Only
// successful lookups are cached, so a newly provisioned key is visible on
// its next use. Redis failures fall back to the backing store.
type CachedKeyStore struct {
	next   events.KeyStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedKeyStore wraps next with a cache entry lifetime of ttl.
func NewCachedKeyStore(next events.KeyStore, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedKeyStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedKeyStore{next: next, client: client, ttl: ttl, logger: logger}
}

// NewRedisClient creates a client for the key cache.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// SourceForKey returns the cached source for key, consulting the backing
// store on a miss.
func (c *CachedKeyStore) SourceForKey(ctx context.Context, key string) (string, error) {
	ck := cacheKey(key)

	src, err := c.client.Get(ctx, ck).Result()
	switch {
	case err == nil:
		return src, nil
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "api key cache read failed", "error", err)
	}

	src, err = c.next.SourceForKey(ctx, key)
	if err != nil || src == "" {
		return src, err
	}
	if err := c.client.Set(ctx, ck, src, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "api key cache write failed", "error", err)
	}
	return src, nil
}

// cacheKey hashes the bearer token so raw keys never reach redis.
func cacheKey(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return "apikey:" + hex.EncodeToString(sum[:])
}
