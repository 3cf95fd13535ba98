// Package cache stores raw PBX API responses between builds.
//
// A [Cache] is a byte-oriented key/value store with per-entry TTL. Three
// backends are provided:
//
//   - [NullCache]: never stores anything (the default)
//   - [FileCache]: one JSON file per entry, for CLI usage
//   - [RedisCache]: shared cache for the HTTP service
//
// [Open] picks a backend from a URL so that configuration can name the cache
// with a single string ("", "file:///path", "redis://host:6379/0").
//
// Keys are produced by a [Keyer]. Responses depend on the credentials used to
// fetch them, so callers scope keys per base URL and token with
// [NewScopedKeyer].
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the cached bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Open returns the cache backend named by rawURL.
//
//	""                  NullCache
//	"none"              NullCache
//	"file:///some/dir"  FileCache rooted at /some/dir
//	"/some/dir"         FileCache rooted at /some/dir
//	"redis://..."       RedisCache
//	"rediss://..."      RedisCache over TLS
func Open(ctx context.Context, rawURL string) (Cache, error) {
	switch {
	case rawURL == "" || rawURL == "none":
		return NewNullCache(), nil
	case strings.HasPrefix(rawURL, "redis://"), strings.HasPrefix(rawURL, "rediss://"):
		return NewRedisCache(ctx, rawURL)
	case strings.HasPrefix(rawURL, "file://"):
		return NewFileCache(strings.TrimPrefix(rawURL, "file://"))
	case strings.Contains(rawURL, "://"):
		return nil, fmt.Errorf("unsupported cache URL %q", rawURL)
	default:
		return NewFileCache(rawURL)
	}
}
