package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/matzehuels/readstack/pkg/cache"
	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/formats"
	"github.com/matzehuels/readstack/pkg/genome"
	"github.com/matzehuels/readstack/pkg/observability"
)

// LoadedTrack is one track after decoding.
type LoadedTrack struct {
	Spec     TrackSpec
	Features []genome.Feature
	// Hash is the content hash of the track file.
	Hash string
}

// LoadTrack decodes one track file and keeps the features the region keeps.
// spec must have passed ValidateTrack.
func LoadTrack(ctx context.Context, spec TrackSpec, region genome.Region) ([]genome.Feature, error) {
	f, err := formats.ParseFormat(spec.Format)
	if err != nil {
		return nil, err
	}
	return formats.Load(ctx, spec.Path, f, region)
}

// hashTracks hashes every track file. The hashes key both the feature and
// the layout caches, so a changed file never serves a stale figure.
func hashTracks(tracks []TrackSpec) ([]string, error) {
	hashes := make([]string, len(tracks))
	for i, t := range tracks {
		h, err := cache.HashFile(t.Path)
		if err != nil {
			code := errors.ErrCodeInvalidInput
			if os.IsNotExist(err) {
				code = errors.ErrCodeFileNotFound
			}
			return nil, errors.Wrap(code, err, "track %s", t.describe())
		}
		hashes[i] = h
	}
	return hashes, nil
}

// LoadWithCacheInfo decodes every track of opts, using cached features where
// available. The bool is true when every track came from cache.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) ([]LoadedTrack, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	hashes, err := hashTracks(opts.Tracks)
	if err != nil {
		return nil, false, err
	}
	return r.loadTracks(ctx, opts, hashes)
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) ([]LoadedTrack, error) {
	tracks, _, err := r.LoadWithCacheInfo(ctx, opts)
	return tracks, err
}

func (r *Runner) loadTracks(ctx context.Context, opts Options, hashes []string) ([]LoadedTrack, bool, error) {
	allHit := true
	out := make([]LoadedTrack, len(opts.Tracks))
	for i, spec := range opts.Tracks {
		feats, hit, err := r.loadTrack(ctx, spec, hashes[i], opts)
		if err != nil {
			return nil, false, err
		}
		allHit = allHit && hit
		out[i] = LoadedTrack{Spec: spec, Features: feats, Hash: hashes[i]}
	}
	return out, allHit, nil
}

func (r *Runner) loadTrack(ctx context.Context, spec TrackSpec, hash string, opts Options) ([]genome.Feature, bool, error) {
	key := r.Keyer.FeatureKey(hash, cache.FeatureKeyOpts{Format: spec.Format, Region: opts.region})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var feats []genome.Feature
			if err := json.Unmarshal(data, &feats); err == nil {
				observability.Cache().OnCacheHit(ctx, "features")
				opts.Logger.Debug("features from cache", "track", spec.Name, "features", len(feats))
				return feats, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "features")
	}

	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, spec.Name, spec.Path)
	feats, err := LoadTrack(ctx, spec, opts.region)
	observability.Pipeline().OnLoadComplete(ctx, spec.Name, len(feats), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	opts.Logger.Debug("loaded track",
		"track", spec.Name,
		"format", spec.Format,
		"features", len(feats),
		"duration", time.Since(start))

	if data, err := json.Marshal(feats); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLFeatures); err == nil {
			observability.Cache().OnCacheSet(ctx, "features", len(data))
		}
	}
	return feats, false, nil
}
