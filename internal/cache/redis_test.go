package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestSetGetDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Title string `json:"title"`
	}
	require.NoError(t, c.Set(ctx, "k", payload{Title: "Heat"}, time.Minute))

	var got payload
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, "Heat", got.Title)

	require.NoError(t, c.Delete(ctx, "k"))
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestInvalidateMovie(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	v, err := c.ListVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	require.NoError(t, c.Set(ctx, MakeMovieDetailKey(3), "cached", DetailTTL))
	require.NoError(t, c.InvalidateMovie(ctx, 3))

	assert.False(t, mr.Exists(MakeMovieDetailKey(3)))
	v, err = c.ListVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	require.NoError(t, c.InvalidateMovie(ctx, 0))
	v, _ = c.ListVersion(ctx)
	assert.Equal(t, int64(2), v)
}

func TestLockIsExclusive(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := c.LockMovieRating(ctx, 9)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			assert.NoError(t, unlock())
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestLockTimesOut(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	unlock, err := c.Lock(ctx, "busy", time.Minute, time.Second)
	require.NoError(t, err)
	defer unlock()

	_, err = c.Lock(ctx, "busy", time.Minute, 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestUnlockDoesNotReleaseForeignLock(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	unlock, err := c.Lock(ctx, "owned", time.Minute, time.Second)
	require.NoError(t, err)

	// simulate expiry and takeover by another holder
	mr.Set("owned", "someone-else")
	require.NoError(t, unlock())

	got, err := mr.Get("owned")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestEmbeddedRedisCache(t *testing.T) {
	c, err := NewEmbeddedRedisCache()
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.Embedded())
	require.NoError(t, c.Set(context.Background(), "x", 1, time.Minute))
}
