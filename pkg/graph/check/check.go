// Package check verifies that a pangenome graph reconstructs known genomes.
//
// The checker is stateless and only reads the graph. It is run after every
// marginalization by the pipeline and doubles as the oracle for tests: a
// graph passes when every path reproduces its strain's reference sequence
// base for base, strand handling and circular rotation included.
//
// Failures carry the code RECONSTRUCTION_MISMATCH and a [*MismatchError]
// cause naming the strain and the first divergent genome coordinate:
//
//	if err := check.CheckAgainst(out, in); err != nil {
//	    var m *check.MismatchError
//	    if errors.As(err, &m) {
//	        fmt.Println(m.Strain, m.Position)
//	    }
//	}
package check

import (
	"errors"
	"fmt"

	errs "github.com/matzehuels/pangraph/pkg/errors"
	"github.com/matzehuels/pangraph/pkg/graph"
	"github.com/matzehuels/pangraph/pkg/graph/transform"
	"github.com/matzehuels/pangraph/pkg/seq"
)

var (
	// ErrMissingReference is returned when a path has no reference sequence.
	ErrMissingReference = errors.New("no reference sequence for strain")
	// ErrNotMinimal is returned by Minimal when a junction can still be merged.
	ErrNotMinimal = errors.New("graph has mergeable junctions")
)

// MismatchError describes where a reconstructed genome first departs from
// its reference.
type MismatchError struct {
	Strain   string
	Position int  // first divergent genome coordinate
	Want     byte // reference base at Position, 0 past the end
	Got      byte // reconstructed base at Position, 0 past the end
	WantLen  int
	GotLen   int
}

func (e *MismatchError) Error() string {
	if e.Want == 0 || e.Got == 0 {
		return fmt.Sprintf("strain %q reconstructs %d bases, reference has %d", e.Strain, e.GotLen, e.WantLen)
	}
	return fmt.Sprintf("strain %q differs at %d: reference %c, reconstructed %c", e.Strain, e.Position, e.Want, e.Got)
}

// Check verifies every path of g against refs, keyed by strain name.
// References for strains absent from g are ignored. Paths are checked in
// name order and the first failure is returned.
func Check(g *graph.Graph, refs map[string]string) error {
	if g == nil {
		return errs.New(errs.ErrCodeInvalidInput, "graph is nil")
	}
	for _, name := range g.PathNames() {
		want, ok := refs[name]
		if !ok {
			return errs.Wrap(errs.ErrCodeNotFound, ErrMissingReference, "strain %q", name)
		}
		if err := Strain(g, name, want); err != nil {
			return err
		}
	}
	return nil
}

// CheckAgainst verifies every path of g against the genome the same strain
// reconstructs in original. It is the usual check after marginalization.
func CheckAgainst(g, original *graph.Graph) error {
	if g == nil || original == nil {
		return errs.New(errs.ErrCodeInvalidInput, "graph is nil")
	}
	for _, name := range g.PathNames() {
		if !original.HasPath(name) {
			return errs.Wrap(errs.ErrCodeNotFound, ErrMissingReference, "strain %q not in original graph", name)
		}
		want, err := original.Sequence(name)
		if err != nil {
			return err
		}
		if err := Strain(g, name, want); err != nil {
			return err
		}
	}
	return nil
}

// Strain verifies a single path of g against want.
func Strain(g *graph.Graph, name, want string) error {
	got, err := g.Sequence(name)
	if err != nil {
		return err
	}
	i := seq.FirstDiff(want, got)
	if i < 0 {
		return nil
	}
	m := &MismatchError{Strain: name, Position: i, WantLen: len(want), GotLen: len(got)}
	if i < len(want) {
		m.Want = want[i]
	}
	if i < len(got) {
		m.Got = got[i]
	}
	return errs.Wrap(errs.ErrCodeReconstructionMismatch, m, "strain %q", name)
}

// Minimal verifies that no junction of g satisfies the merge condition for
// the strains g contains, i.e. that marginalizing g again would not merge
// anything. It fails with MERGE_CONFLICT listing the first junction found.
func Minimal(g *graph.Graph) error {
	if g == nil {
		return errs.New(errs.ErrCodeInvalidInput, "graph is nil")
	}
	names := g.PathNames()
	if len(names) == 0 {
		return nil
	}
	if len(names) == 1 {
		p, err := g.Path(names[0])
		if err != nil {
			return err
		}
		if n := len(p.Nodes); n != 1 {
			return errs.Wrap(errs.ErrCodeMergeConflict, ErrNotMinimal, "single strain %q visits %d nodes", p.Name, n)
		}
		return nil
	}
	js, err := transform.Mergeable(g, names)
	if err != nil {
		return err
	}
	if len(js) > 0 {
		return errs.Wrap(errs.ErrCodeMergeConflict, ErrNotMinimal, "%d junctions remain, first %s", len(js), js[0])
	}
	return nil
}
