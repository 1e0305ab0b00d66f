package inventory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCache_Lazy(t *testing.T) {
	t.Parallel()

	var created atomic.Int32
	cache := NewClientCache(func(_ context.Context, region string) (MetricsAPI, error) {
		created.Add(1)
		return &fakeMetrics{region: region}, nil
	})

	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, int32(0), created.Load())

	_, err := cache.Get(context.Background(), "us-east-1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, int32(1), created.Load())
}

func TestClientCache_SameInstancePerRegion(t *testing.T) {
	t.Parallel()

	cache := NewClientCache(func(_ context.Context, region string) (MetricsAPI, error) {
		return &fakeMetrics{region: region}, nil
	})

	a, err := cache.Get(context.Background(), "eu-west-1")
	require.NoError(t, err)
	b, err := cache.Get(context.Background(), "eu-west-1")
	require.NoError(t, err)
	c, err := cache.Get(context.Background(), "us-west-2")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "us-west-2", c.(*fakeMetrics).region)
	assert.Equal(t, 2, cache.Len())
}

func TestClientCache_ConcurrentFirstUse(t *testing.T) {
	t.Parallel()

	var created atomic.Int32
	cache := NewClientCache(func(_ context.Context, region string) (MetricsAPI, error) {
		created.Add(1)
		return &fakeMetrics{region: region}, nil
	})

	const workers = 32
	results := make([]MetricsAPI, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := cache.Get(context.Background(), "ap-southeast-2")
			assert.NoError(t, err)
			results[i] = c
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	for _, c := range results {
		assert.Same(t, results[0], c)
	}
}

func TestClientCache_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	cache := NewClientCache(func(_ context.Context, region string) (MetricsAPI, error) {
		if attempts.Add(1) == 1 {
			return nil, errors.New("no credentials yet")
		}
		return &fakeMetrics{region: region}, nil
	})

	_, err := cache.Get(context.Background(), "sa-east-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sa-east-1")
	assert.Equal(t, 0, cache.Len())

	c, err := cache.Get(context.Background(), "sa-east-1")
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, 1, cache.Len())
}
