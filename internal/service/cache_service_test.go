package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/universidad-api/internal/repository"
)

type failingCacheRepo struct{}

func (failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("redis down")
}

func (failingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("redis down")
}

func (failingCacheRepo) Delete(ctx context.Context, keys ...string) error { return nil }

func (failingCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error { return nil }

func TestCacheServiceHitMissAndMetrics(t *testing.T) {
	metrics := NewMetricsService()
	cache := NewCacheService(repository.NewMemoryCacheRepository(), metrics, time.Minute, nil, true)
	ctx := context.Background()

	var out []string
	hit, err := cache.Get(ctx, "materias:all", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "materias:all", []string{"MAT101"}, 0))
	hit, err = cache.Get(ctx, "materias:all", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"MAT101"}, out)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.InDelta(t, 0.5, snapshot.CacheHitRatio, 0.001)

	require.NoError(t, cache.Invalidate(ctx, "materias:*"))
	hit, err = cache.Get(ctx, "materias:all", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceDisabled(t *testing.T) {
	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
	hit, err := nilCache.Get(context.Background(), "k", &struct{}{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, nilCache.Set(context.Background(), "k", 1, 0))
	assert.NoError(t, nilCache.Invalidate(context.Background(), "*"))

	off := NewCacheService(repository.NewMemoryCacheRepository(), nil, 0, nil, false)
	assert.False(t, off.Enabled())
}

func TestReadThroughFallsBackWhenCacheFails(t *testing.T) {
	cache := NewCacheService(failingCacheRepo{}, nil, time.Minute, nil, true)
	loads := 0

	for i := 0; i < 2; i++ {
		value, err := readThrough(context.Background(), cache, "docentes:all", func() ([]int, error) {
			loads++
			return []int{1, 2}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, value)
	}
	assert.Equal(t, 2, loads)
}

func TestMetricsServiceObserveInscripcion(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveInscripcion(opCreate, nil)
	metrics.ObserveInscripcion(opCreate, errors.New("dup"))
	metrics.ObserveInscripcion(opAbandon, nil)
	metrics.ObserveHTTPRequest("GET", "/api/inscripciones", 200, 20*time.Millisecond)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.InscripcionesCreadas)
	assert.Equal(t, uint64(1), snapshot.InscripcionesAbandonadas)
	assert.Equal(t, uint64(1), snapshot.RequestsTotal)
	assert.InDelta(t, 20.0, snapshot.AverageRequestDurationMs, 0.01)

	var nilMetrics *MetricsService
	nilMetrics.ObserveInscripcion(opCreate, nil)
	assert.Equal(t, MetricsSnapshot{}, nilMetrics.Snapshot())
}
