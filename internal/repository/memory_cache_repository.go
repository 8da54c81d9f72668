package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	gocache "github.com/patrickmn/go-cache"

	appErrors "github.com/noah-isme/universidad-api/pkg/errors"
)

const memoryCacheCleanupInterval = time.Minute

// MemoryCacheRepository is an in-process cache with the same contract as CacheRepository.
// Values are stored JSON encoded so callers never share mutable state with the cache.
type MemoryCacheRepository struct {
	store *gocache.Cache
}

// NewMemoryCacheRepository constructs an empty in-process cache.
func NewMemoryCacheRepository() *MemoryCacheRepository {
	return &MemoryCacheRepository{store: gocache.New(gocache.NoExpiration, memoryCacheCleanupInterval)}
}

// Get decodes the cached value into dest or returns ErrCacheMiss.
func (r *MemoryCacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := r.store.Get(key)
	if !ok {
		return appErrors.ErrCacheMiss
	}
	payload, ok := raw.([]byte)
	if !ok {
		return fmt.Errorf("unexpected cache value type %T for %s", raw, key)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set stores value under key. A non-positive ttl never expires.
func (r *MemoryCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	r.store.Set(key, payload, ttl)
	return nil
}

// Delete removes the given keys.
func (r *MemoryCacheRepository) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		r.store.Delete(k)
	}
	return nil
}

// DeleteByPattern removes every key matching the glob pattern, using the same syntax as Redis SCAN MATCH for * and ?.
func (r *MemoryCacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid cache pattern %s: %w", pattern, err)
	}
	for k := range r.store.Items() {
		if ok, _ := path.Match(pattern, k); ok {
			r.store.Delete(k)
		}
	}
	return nil
}

// Len reports the number of live entries.
func (r *MemoryCacheRepository) Len() int {
	return len(r.store.Items())
}
