// Package cache provides the storage layer for pipeline results.
//
// # Backends
//
//   - [FileCache]: JSON entries under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance (figure servers)
//   - [NullCache]: stores nothing (--no-cache)
//
// # Keys
//
// A [Keyer] derives keys from content hashes, so a cached entry can never be
// served for different inputs:
//
//   - features:<hash>  decoded features of one input file in one region
//   - layout:<hash>    row packings and depth array for a set of tracks
//   - artifact:<hash>  one rendered output format
//
// [ScopedKeyer] prefixes every key, which keeps servers with different
// configurations apart when they share a Redis instance.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/readstack/pkg/genome"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Entry lifetimes.
const (
	TTLFeatures = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// FeatureKeyOpts identifies one decoded input.
type FeatureKeyOpts struct {
	Format string        `json:"format"`
	Region genome.Region `json:"region"`
}

// TrackKeyOpts describes how one track is packed.
type TrackKeyOpts struct {
	Name       string `json:"name"`
	Annotation bool   `json:"annotation"`
	Order      string `json:"order"`
	Coverage   bool   `json:"coverage,omitempty"`
}

// LayoutKeyOpts identifies a layout computation.
type LayoutKeyOpts struct {
	Region   genome.Region  `json:"region"`
	Tracks   []TrackKeyOpts `json:"tracks"`
	Abutting bool           `json:"abutting,omitempty"`
}

// ArtifactKeyOpts identifies one rendered output.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	// Style is a digest of every option that changes pixels (colors,
	// geometry, dpi).
	Style string `json:"style"`
}

// Keyer derives cache keys.
type Keyer interface {
	FeatureKey(fileHash string, opts FeatureKeyOpts) string
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// FeatureKey returns "features:<hash>".
func (DefaultKeyer) FeatureKey(fileHash string, opts FeatureKeyOpts) string {
	return hashKey("features", fileHash, opts)
}

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
