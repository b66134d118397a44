// Package cache provides result caching for analysis runs.
//
// Analysis of a large fabric is expensive; the cache lets repeated runs over
// the same graph and configuration return the stored summary instead. Three
// backends exist: a file cache for CLI usage, a Redis cache for the API
// server, and a null cache that disables caching.
package cache

import (
	"context"
	"time"
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a time-to-live. A non-positive ttl stores
	// without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the tool's cacheable artifacts.
type Keyer interface {
	// ResultKey identifies a run summary by the graph and configuration
	// that produced it.
	ResultKey(graphHash, configHash string) string

	// RunKey identifies a run summary by its run ID.
	RunKey(runID string) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// ResultKey generates a key for a (graph, config) result.
func (k *DefaultKeyer) ResultKey(graphHash, configHash string) string {
	return hashKey("result", graphHash, configHash)
}

// RunKey generates a key for a run summary lookup by ID.
func (k *DefaultKeyer) RunKey(runID string) string {
	return hashKey("run", runID)
}
