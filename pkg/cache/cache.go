// Package cache provides byte-oriented caching backends shared by the
// package index client and the build pipeline.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON envelopes on disk, for CLI use (~/.cache/distmeta/)
//   - [RedisCache]: shared cache for the server and multiple CLI hosts
//   - [NullCache]: caching disabled (--no-cache)
//
// Keys are produced by a [Keyer] so HTTP responses and build artifacts never
// collide, and so deployments sharing a Redis instance can scope their keys.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads with an optional time-to-live.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the payload for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Default time-to-live values.
const (
	// TTLHTTP bounds how long index responses are reused.
	TTLHTTP = 24 * time.Hour
	// TTLArtifact bounds how long built descriptors and rendered artifacts are reused.
	TTLArtifact = 7 * 24 * time.Hour
)
