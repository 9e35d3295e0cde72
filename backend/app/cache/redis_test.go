package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedis uses BOOKSHELF_TEST_REDIS_ADDR when set and an in-process
// miniredis otherwise. The returned server is nil for an external Redis.
func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	var mr *miniredis.Miniredis
	addr := os.Getenv("BOOKSHELF_TEST_REDIS_ADDR")
	if addr == "" {
		mr = miniredis.RunT(t)
		addr = mr.Addr()
	}
	c := NewRedis(redis.NewClient(&redis.Options{Addr: addr}), "bookshelf-test-"+uuid.NewString(), time.Minute)
	require.NoError(t, c.Ping(context.Background()))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedis_KeyLayout(t *testing.T) {
	c := NewRedis(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "", 0)
	defer c.Close()
	assert.Equal(t, "bookshelf:cache:gen", c.genKey())
	assert.Equal(t, "bookshelf:cache:7:stats", c.dataKey(7, KeyStats))
	assert.Equal(t, DefaultTTL, c.ttl)
}

func TestRedis_InvalidateBumpsGeneration(t *testing.T) {
	c, _ := newTestRedis(t)
	ctx := context.Background()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, gen, KeyGenres, []string{"Noir"}))

	var list []string
	ok, err := c.Get(ctx, KeyGenres, &list)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Noir"}, list)

	require.NoError(t, c.Invalidate(ctx))
	ok, err = c.Get(ctx, KeyGenres, &list)
	require.NoError(t, err)
	assert.False(t, ok)

	// stale writer is ignored
	require.NoError(t, c.Set(ctx, gen, KeyGenres, []string{"Noir"}))
	ok, _ = c.Get(ctx, KeyGenres, &list)
	assert.False(t, ok)
}

func TestRedis_GenerationStartsAtZero(t *testing.T) {
	c, _ := newTestRedis(t)
	ctx := context.Background()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Zero(t, gen)

	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Invalidate(ctx))
	gen, err = c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), gen)
}

func TestRedis_StoresJSONUnderGenerationKey(t *testing.T) {
	c, mr := newTestRedis(t)
	if mr == nil {
		t.Skip("needs the in-process server")
	}
	ctx := context.Background()

	stats := map[string]int64{"totalBooks": 3}
	require.NoError(t, c.Set(ctx, 0, KeyStats, stats))
	raw, err := mr.Get(c.dataKey(0, KeyStats))
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalBooks":3}`, raw)
	assert.Equal(t, time.Minute, mr.TTL(c.dataKey(0, KeyStats)))

	mr.FastForward(time.Minute + time.Second)
	var got map[string]int64
	ok, err := c.Get(ctx, KeyStats, &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_ServerErrorsSurface(t *testing.T) {
	c, mr := newTestRedis(t)
	if mr == nil {
		t.Skip("needs the in-process server")
	}
	mr.SetError("ERR server failure")

	ctx := context.Background()
	assert.Error(t, c.Ping(ctx))
	_, err := c.Generation(ctx)
	assert.Error(t, err)
	assert.Error(t, c.Set(ctx, 0, KeyStats, 1))

	mr.SetError("")
	assert.NoError(t, c.Set(ctx, 0, KeyStats, 1))
}
