package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestInMemoryLookupCache_GetSet(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newInMemoryLookupCache(clock.Now)
	defer c.Close()

	ctx := context.Background()

	t.Run("miss on unknown key", func(t *testing.T) {
		v, ok, err := c.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	t.Run("hit before expiration", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "cep:01001000", []byte(`{"uf":"SP"}`), time.Hour))

		v, ok, err := c.Get(ctx, "cep:01001000")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{"uf":"SP"}`, string(v))
	})

	t.Run("miss after expiration", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "short", []byte("x"), time.Minute))
		clock.Advance(time.Minute)

		_, ok, err := c.Get(ctx, "short")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "copy", []byte("abc"), time.Hour))
		v, _, _ := c.Get(ctx, "copy")
		v[0] = 'z'

		again, _, _ := c.Get(ctx, "copy")
		assert.Equal(t, "abc", string(again))
	})

	t.Run("non-positive ttl deletes", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "gone", []byte("x"), time.Hour))
		require.NoError(t, c.Set(ctx, "gone", nil, 0))

		_, ok, _ := c.Get(ctx, "gone")
		assert.False(t, ok)
	})
}

func TestInMemoryLookupCache_Cleanup(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := newInMemoryLookupCache(clock.Now)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Hour))
	assert.Equal(t, 2, c.Len())

	clock.Advance(2 * time.Second)
	c.cleanup()
	assert.Equal(t, 1, c.Len())
}

func TestInMemoryLookupCache_Concurrent(t *testing.T) {
	c := NewInMemoryLookupCache()
	defer c.Close()

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i%26))
			_ = c.Set(ctx, key, []byte{byte(i)}, time.Minute)
			_, _, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 26)
}

func TestInMemoryLookupCache_CloseIsIdempotent(t *testing.T) {
	c := NewInMemoryLookupCache()
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
