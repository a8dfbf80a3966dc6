// internal/adapters/redis_adapter/cache_test.go
package redis_a_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/stocktrail/stocktrail-be/internal/adapters/redis_adapter"
	"github.com/stocktrail/stocktrail-be/internal/core/domain"
	"github.com/stocktrail/stocktrail-be/internal/core/ports"
	"github.com/stocktrail/stocktrail-be/test/helpers"
)

func newTestCache(t *testing.T) (*helpers.TestRedis, ports.CacheRepository) {
	t.Helper()
	tr := helpers.SetupTestRedis(t)
	return tr, redis_a.NewCache(tr.Client, time.Hour, helpers.TestLogger())
}

func TestCache_SetAndGet(t *testing.T) {
	_, cache := newTestCache(t)
	ctx := context.Background()

	item := helpers.CreateTestItem(func(i *domain.Item) { i.ID = 7 })
	require.NoError(t, cache.Set(ctx, "items:7", item))

	var got domain.Item
	require.NoError(t, cache.Get(ctx, "items:7", &got))
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, item.Name, got.Name)
	assert.True(t, item.Price.Equal(got.Price))
}

func TestCache_GetMiss(t *testing.T) {
	_, cache := newTestCache(t)

	var got domain.Item
	err := cache.Get(context.Background(), "items:missing", &got)
	assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
}

func TestCache_TTLExpiry(t *testing.T) {
	tr, cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetWithTTL(ctx, "reports:low_stock", []int{1, 2}, 30*time.Second))

	var got []int
	require.NoError(t, cache.Get(ctx, "reports:low_stock", &got))

	// miniredis does not tick on its own; advance past the TTL manually.
	tr.Server.FastForward(time.Minute)

	err := cache.Get(ctx, "reports:low_stock", &got)
	assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
}

func TestCache_Delete(t *testing.T) {
	_, cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "items:1", "a"))
	require.NoError(t, cache.Set(ctx, "items:2", "b"))

	require.NoError(t, cache.Delete(ctx, "items:1", "items:2"))

	exists, err := cache.Exists(ctx, "items:1")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting nothing is a no-op, not an error.
	assert.NoError(t, cache.Delete(ctx))
}

func TestCache_DeletePattern(t *testing.T) {
	_, cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "reports:low_stock", "a"))
	require.NoError(t, cache.Set(ctx, "reports:activity:10", "b"))
	require.NoError(t, cache.Set(ctx, "items:1", "c"))

	require.NoError(t, cache.DeletePattern(ctx, "reports:*"))

	exists, err := cache.Exists(ctx, "reports:low_stock")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = cache.Exists(ctx, "items:1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCache_GetOrSet(t *testing.T) {
	t.Run("miss_fetches_and_stores", func(t *testing.T) {
		_, cache := newTestCache(t)
		ctx := context.Background()

		calls := 0
		fetch := func() (interface{}, error) {
			calls++
			return []string{"alpha", "beta"}, nil
		}

		var got []string
		require.NoError(t, cache.GetOrSet(ctx, "reports:test", &got, fetch, time.Minute))
		assert.Equal(t, []string{"alpha", "beta"}, got)
		assert.Equal(t, 1, calls)

		// Second call is served from cache; fetch is not invoked again.
		var again []string
		require.NoError(t, cache.GetOrSet(ctx, "reports:test", &again, fetch, time.Minute))
		assert.Equal(t, got, again)
		assert.Equal(t, 1, calls)
	})

	t.Run("fetch_error_propagates", func(t *testing.T) {
		_, cache := newTestCache(t)

		var got []string
		err := cache.GetOrSet(context.Background(), "reports:test", &got,
			func() (interface{}, error) { return nil, errors.New("database error") },
			time.Minute)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database error")
	})
}

func TestCache_Ping(t *testing.T) {
	tr, cache := newTestCache(t)

	assert.NoError(t, cache.Ping(context.Background()))

	tr.Server.Close()
	assert.Error(t, cache.Ping(context.Background()))
}

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "reports:low_stock", redis_a.BuildKey(redis_a.PrefixReports, "low_stock"))
	assert.Equal(t, "items:1:detail", redis_a.BuildKey(redis_a.PrefixItems, "1", "detail"))
	assert.Equal(t, "items", redis_a.BuildKey(redis_a.PrefixItems))
}
