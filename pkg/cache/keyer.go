package cache

import "slices"

// Keyer derives cache keys.
type Keyer interface {
	// MarginalKey identifies the marginal of the graph with content hash
	// graphHash restricted to strains. Strain order and duplicates do not
	// affect the key.
	MarginalKey(graphHash string, strains []string) string
	// CheckKey identifies a successful consistency check of a marginal
	// graph against the graph it was derived from.
	CheckKey(marginalHash, originalHash string) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// MarginalKey implements Keyer.
func (DefaultKeyer) MarginalKey(graphHash string, strains []string) string {
	s := slices.Clone(strains)
	slices.Sort(s)
	return hashKey("marginal", graphHash, slices.Compact(s))
}

// CheckKey implements Keyer.
func (DefaultKeyer) CheckKey(marginalHash, originalHash string) string {
	return hashKey("check", marginalHash, originalHash)
}
