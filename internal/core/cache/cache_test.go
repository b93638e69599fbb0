package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	c := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestGetOrLoad_MissThenHit(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	calls := 0
	load := func(context.Context) ([]byte, error) {
		calls++
		return []byte("v1"), nil
	}

	got, err := c.GetOrLoad(ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))

	got, err = c.GetOrLoad(ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))
	assert.Equal(t, 1, calls)

	assert.True(t, mr.Exists("test:k"))
	assert.Equal(t, time.Minute, mr.TTL("test:k"))
}

func TestGetOrLoad_FirstCallerCancelDoesNotFailOthers(t *testing.T) {
	c, mr := newTestCache(t)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	load := func(ctx context.Context) ([]byte, error) {
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []byte("shared"), nil
	}

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.GetOrLoad(ctxA, "k", time.Minute, load)
		errA <- err
	}()
	<-started
	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	gotB := make(chan []byte, 1)
	go func() {
		b, err := c.GetOrLoad(context.Background(), "k", time.Minute, load)
		assert.NoError(t, err)
		gotB <- b
	}()
	close(release)
	assert.Equal(t, "shared", string(<-gotB))

	v, err := mr.Get("test:k")
	require.NoError(t, err)
	assert.Equal(t, "shared", v)
}

func TestGetOrLoad_ErrorNotCached(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	boom := errors.New("boom")
	_, err := c.GetOrLoad(ctx, "k", time.Minute, func(context.Context) ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("test:k"))
}

func TestGetOrLoad_RedisDownFallsBack(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	c := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), "test:")
	defer c.Close()
	mr.Close()

	got, err := c.GetOrLoad(ctx, "k", time.Minute, func(context.Context) ([]byte, error) { return []byte("direct"), nil })
	require.NoError(t, err)
	assert.Equal(t, "direct", string(got))
}

func TestGetOrLoadJSON(t *testing.T) {
	type point struct{ X, Y int }
	ctx := context.Background()
	c, _ := newTestCache(t)

	calls := 0
	load := func(context.Context) (*point, error) {
		calls++
		return &point{X: 1, Y: 2}, nil
	}
	for range 2 {
		p, err := GetOrLoadJSON(c, ctx, "p", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, point{X: 1, Y: 2}, *p)
	}
	assert.Equal(t, 1, calls)
}

func TestGetOrLoadJSON_CorruptEntryReloads(t *testing.T) {
	type point struct{ X int }
	ctx := context.Background()
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("test:p", "{not json"))

	p, err := GetOrLoadJSON(c, ctx, "p", time.Minute, func(context.Context) (*point, error) {
		return &point{X: 7}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, p.X)
	assert.False(t, mr.Exists("test:p"))
}
