// Package cache provides the TTL cache shared by every upstream adapter.
// Supports an in-process memory backend and a Redis backend for multi-instance deployments.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultTTL is how long an adapter result stays fresh.
const DefaultTTL = 24 * time.Hour

// Cache defines the interface for adapter result storage.
// Values are stored JSON encoded, so an encoded nil is a real, cacheable value.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get decodes the value stored under key into dst.
	// Returns false, nil when the key is absent or older than the TTL.
	Get(ctx context.Context, key string, dst any) (bool, error)

	// Set stores value under key, resetting its age.
	Set(ctx context.Context, key string, value any) error

	// Close releases any resources held by the cache.
	Close() error
}

// Key builds a cache key from an adapter function name and its arguments,
// e.g. Key("nhtsa_vin", vin, 2019) == "nhtsa_vin:<vin>:2019". Nil arguments
// render as empty segments.
func Key(name string, args ...any) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		switch v := a.(type) {
		case nil:
			parts = append(parts, "")
		case *int:
			if v == nil {
				parts = append(parts, "")
			} else {
				parts = append(parts, fmt.Sprint(*v))
			}
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}
	return strings.Join(parts, ":")
}
