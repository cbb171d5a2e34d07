package graph

import "fmt"

// Strand is the orientation in which a path traverses a block.
type Strand bool

const (
	// Forward traverses the block along its consensus.
	Forward Strand = true
	// Reverse traverses the reverse complement of the block.
	Reverse Strand = false
)

// String returns "+" for Forward and "-" for Reverse.
func (s Strand) String() string {
	if s == Forward {
		return "+"
	}
	return "-"
}

// Flip returns the opposite strand.
func (s Strand) Flip() Strand { return !s }

// ParseStrand parses "+" or "-".
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "+":
		return Forward, nil
	case "-":
		return Reverse, nil
	}
	return Forward, fmt.Errorf("invalid strand %q", s)
}
