package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyString(t *testing.T) {
	assert.Equal(t, "runs", ListKey().String())
	assert.Equal(t, "run/test-001", RunKey("test-001").String())
}

func TestCache_GetCachesSuccess(t *testing.T) {
	c := New()
	var calls int
	fetch := func(ctx context.Context) (any, error) {
		calls++
		return calls, nil
	}

	v, err := c.Get(context.Background(), ListKey(), fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = c.Get(context.Background(), ListKey(), fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, calls)
}

func TestCache_GetDoesNotCacheErrors(t *testing.T) {
	c := New()
	boom := errors.New("boom")
	fail := true
	var calls int
	fetch := func(ctx context.Context) (any, error) {
		calls++
		if fail {
			return nil, boom
		}
		return "ok", nil
	}

	_, err := c.Get(context.Background(), ListKey(), fetch)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	fail = false
	v, err := c.Get(context.Background(), ListKey(), fetch)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestCache_Invalidate(t *testing.T) {
	c := New()
	c.Set(ListKey(), "list")
	c.Set(RunKey("a"), "a")
	c.Set(RunKey("b"), "b")

	c.Invalidate(ListKey())
	_, ok := c.Peek(ListKey())
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	c.InvalidateOp(OpGetRun)
	assert.Equal(t, 0, c.Len())

	c.Set(ListKey(), "list")
	c.Reset()
	assert.Equal(t, 0, c.Len())
}

func TestCache_InvalidateForcesRefetch(t *testing.T) {
	c := New()
	var calls atomic.Int32
	fetch := func(ctx context.Context) (any, error) {
		return calls.Add(1), nil
	}

	_, err := c.Get(context.Background(), ListKey(), fetch)
	require.NoError(t, err)
	c.Invalidate(ListKey())
	v, err := c.Get(context.Background(), ListKey(), fetch)
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)
}

func TestCache_ConcurrentGetSharesFetch(t *testing.T) {
	c := New()
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "value", nil
	}

	const n = 10
	var wg sync.WaitGroup
	results := make([]any, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(context.Background(), RunKey("x"), fetch)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Give the goroutines time to pile up behind the first fetch.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, "value", v)
	}
}

func TestCache_InvalidateDuringFetchDropsResult(t *testing.T) {
	c := New()
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Get(context.Background(), ListKey(), func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "stale", nil
		})
	}()

	<-started
	c.Invalidate(ListKey())
	close(release)
	<-done

	_, ok := c.Peek(ListKey())
	assert.False(t, ok)
}

func TestCache_InvalidateOpAndResetDuringFetchDropResult(t *testing.T) {
	tests := []struct {
		name       string
		invalidate func(c *Cache)
	}{
		{name: "invalidate op", invalidate: func(c *Cache) { c.InvalidateOp(OpGetRun) }},
		{name: "reset", invalidate: func(c *Cache) { c.Reset() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			started := make(chan struct{})
			release := make(chan struct{})
			done := make(chan struct{})

			go func() {
				defer close(done)
				v, err := c.Get(context.Background(), RunKey("x"), func(ctx context.Context) (any, error) {
					close(started)
					<-release
					return "stale", nil
				})
				assert.NoError(t, err)
				assert.Equal(t, "stale", v)
			}()

			<-started
			tt.invalidate(c)

			// A lookup after the invalidation does not join the old fetch
			v, err := c.Get(context.Background(), RunKey("x"), func(ctx context.Context) (any, error) {
				return "fresh", nil
			})
			require.NoError(t, err)
			assert.Equal(t, "fresh", v)

			close(release)
			<-done

			v, ok := c.Peek(RunKey("x"))
			require.True(t, ok)
			assert.Equal(t, "fresh", v)
		})
	}
}

func TestCache_InvalidateOpLeavesOtherOps(t *testing.T) {
	c := New()
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = c.Get(context.Background(), ListKey(), func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "list", nil
		})
	}()

	<-started
	c.InvalidateOp(OpGetRun)
	close(release)
	<-done

	v, ok := c.Peek(ListKey())
	require.True(t, ok)
	assert.Equal(t, "list", v)
}
