// Package cache stores rendered diagram artifacts.
//
// Rendering through Graphviz dominates the cost of a request, while compiling
// and overlaying a process is cheap. The pipeline therefore compiles every
// time and caches by the hash of the emitted DOT text: identical diagrams,
// including identical token state, map to the same key.
//
// Three backends are provided:
//   - [FileCache] for the CLI, under the XDG cache directory
//   - [RedisCache] for shared deployments of the render server
//   - [NullCache] when caching is disabled
//
// Keys come from a [Keyer]; wrap it with [NewScopedKeyer] to isolate
// tenants that share a backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry. A miss is reported through
// the boolean, not as an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs.
const (
	ArtifactTTL = 7 * 24 * time.Hour
)

// NullCache stores nothing. The pipeline falls back to it when caching is
// disabled or no cache directory can be found.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)         { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
