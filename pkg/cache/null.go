package cache

import (
	"context"
	"time"
)

// NullCache is the backend behind --cache none. With it every NetSapiens
// lookup goes to the PBX, so a build reflects the live routing configuration.
// The entries command always uses it, and an API client built without a
// cache falls back to it.
type NullCache struct{}

// NewNullCache returns a cache that keeps nothing.
func NewNullCache() Cache { return &NullCache{} }

// Get reports a miss for every key, so callers fall through to the API.
func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards the response.
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (*NullCache) Delete(context.Context, string) error { return nil }

func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
