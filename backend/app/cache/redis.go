package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Redis is a Cache shared by every instance pointing at the same server.
// The generation lives in its own key; data keys embed it.
type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedis(rdb *redis.Client, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = "bookshelf"
	}
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *Redis) genKey() string { return r.prefix + ":cache:gen" }

func (r *Redis) dataKey(gen uint64, key string) string {
	return fmt.Sprintf("%s:cache:%d:%s", r.prefix, gen, key)
}

func (r *Redis) Generation(ctx context.Context) (uint64, error) {
	v, err := r.rdb.Get(ctx, r.genKey()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(v, 10, 64)
}

func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	gen, err := r.Generation(ctx)
	if err != nil {
		return false, err
	}
	data, err := r.rdb.Get(ctx, r.dataKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, gen uint64, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	cur, err := r.Generation(ctx)
	if err != nil {
		return err
	}
	if cur != gen {
		return nil
	}
	return r.rdb.Set(ctx, r.dataKey(gen, key), data, r.ttl).Err()
}

// Invalidate bumps the generation; old data keys expire on their own.
func (r *Redis) Invalidate(ctx context.Context) error {
	return r.rdb.Incr(ctx, r.genKey()).Err()
}

func (r *Redis) Close() error { return r.rdb.Close() }

// Ping reports whether the server is reachable.
func (r *Redis) Ping(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }
