package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// The render server uses it to keep the artifacts of different style
// sources apart when they share one Redis instance.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "pvmviz:")
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

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(dotHash, format string) string {
	return k.prefix + k.inner.ArtifactKey(dotHash, format)
}
