package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, so that
// several deployments can share one Redis instance without key collisions.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// ResultKey generates a prefixed key for a (graph, config) result.
func (k *ScopedKeyer) ResultKey(graphHash, configHash string) string {
	return k.prefix + k.inner.ResultKey(graphHash, configHash)
}

// RunKey generates a prefixed key for a run summary lookup.
func (k *ScopedKeyer) RunKey(runID string) string {
	return k.prefix + k.inner.RunKey(runID)
}
