package cache

// ScopedKeyer wraps a Keyer with a namespace prefix, so that several
// deployments or graph builder versions can share one backend:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "pangraph:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer uses
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// MarginalKey implements Keyer.
func (k *ScopedKeyer) MarginalKey(graphHash string, strains []string) string {
	return k.prefix + k.inner.MarginalKey(graphHash, strains)
}

// CheckKey implements Keyer.
func (k *ScopedKeyer) CheckKey(marginalHash, originalHash string) string {
	return k.prefix + k.inner.CheckKey(marginalHash, originalHash)
}
