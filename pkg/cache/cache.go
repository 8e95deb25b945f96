// Package cache stores pipeline results between runs.
//
// Every stage of the pipeline (graph building, layout, rendering) caches its
// output under a key derived from its inputs. The [Cache] interface has three
// backends:
//
//   - [FileCache]: JSON entries on disk, used by the CLI
//   - [RedisCache]: a shared Redis instance, used by the HTTP server
//   - [NullCache]: stores nothing, used with --no-cache
//
// Keys come from a [Keyer], which hashes the options that influence a
// result. Transient backend failures are wrapped with [Retryable] and retried
// by [RetryWithBackoff].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend itself
// failed. A ttl of zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Entry lifetimes. Collatz results never change, so expiry only bounds disk
// and memory use.
const (
	TTLGraph    = 7 * 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Key types, also used as the prefix of generated keys and as the label
// reported to cache hooks.
const (
	KeyTypeGraph    = "graph"
	KeyTypeLayout   = "layout"
	KeyTypeArtifact = "artifact"
)
