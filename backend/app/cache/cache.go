// Package cache holds the short-lived aggregates served by the books
// endpoints (stats, distinct genres and authors).
//
// Entries are namespaced by a generation counter. Invalidate bumps the
// generation, so a value computed before a write and stored after it can
// never be read back:
//
//	gen, _ := c.Generation(ctx)
//	stats := compute()
//	_ = c.Set(ctx, gen, "stats", stats) // dropped if a write happened meanwhile
package cache

import (
	"context"
	"time"
)

const (
	KeyStats   = "stats"
	KeyGenres  = "genres"
	KeyAuthors = "authors"
)

type Cache interface {
	// Generation returns the current generation.
	Generation(ctx context.Context) (uint64, error)
	// Get decodes the current-generation value of key into dst.
	Get(ctx context.Context, key string, dst any) (bool, error)
	// Set stores v under key if gen is still current.
	Set(ctx context.Context, gen uint64, key string, v any) error
	// Invalidate drops every entry.
	Invalidate(ctx context.Context) error
	Close() error
}

// DefaultTTL applies when a cache is built with a non-positive TTL.
const DefaultTTL = 60 * time.Second
