package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// Figure servers sharing one Redis use it so that entries rendered with
// different configurations never mix.
//
// Example usage:
//
//	// Keys private to one server configuration
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "serve:"+configHash[:12]+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// FeatureKey generates a prefixed key for decoded features.
func (k *ScopedKeyer) FeatureKey(fileHash string, opts FeatureKeyOpts) string {
	return k.prefix + k.inner.FeatureKey(fileHash, opts)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(inputHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
