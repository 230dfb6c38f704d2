// Package cache stores rendered playback results between runs.
//
// A headless render is a pure function of the scene, the timeline and the
// playback options, so the render command keeps its results in a small
// on-disk cache keyed by a hash of those inputs. The server and tests use
// [NullCache].
//
// Keys are built with [Key], which hashes any value with hashstructure and
// prefixes it with a namespace:
//
//	key, err := cache.Key("frames", input)
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/mitchellh/hashstructure/v2"
)

// TTLFrames is how long rendered frames stay valid. Results never go stale
// for identical inputs; the TTL only bounds disk usage.
const TTLFrames = 7 * 24 * time.Hour

// Cache stores opaque values by key.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Key hashes v into a key of the form prefix:hex.
func Key(prefix string, v any) (string, error) {
	h, err := hashstructure.Hash(v, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	return fmt.Sprintf("%s:%016x", prefix, h), nil
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
