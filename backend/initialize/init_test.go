package initialize

import (
	"testing"
	"time"

	"bookshelf/backend/app/cache"
	"bookshelf/backend/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewCache(t *testing.T) {
	mem := newCache(&config.Config{Cache: config.Cache{Driver: "memory", StatsTTL: time.Minute}}, zerolog.Nop())
	assert.IsType(t, &cache.Memory{}, mem)
	_ = mem.Close()

	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Cache: config.Cache{Driver: "redis", StatsTTL: time.Minute},
		Redis: config.Redis{Addr: mr.Addr()},
	}
	rc := newCache(cfg, zerolog.Nop())
	assert.IsType(t, &cache.Redis{}, rc)
	_ = rc.Close()

	cfg.Redis.Addr = "127.0.0.1:1"
	fallback := newCache(cfg, zerolog.Nop())
	assert.IsType(t, &cache.Memory{}, fallback)
	_ = fallback.Close()
}
