package transform

import (
	"errors"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/pangraph/pkg/errors"
	"github.com/matzehuels/pangraph/pkg/graph"
)

var (
	// ErrEmptyStrainSet is returned when no strains are requested.
	ErrEmptyStrainSet = errors.New("strain set is empty")
	// ErrUnknownStrain is returned when a requested strain has no path.
	ErrUnknownStrain = errors.New("strain not in graph")
	// ErrNilGraph is returned when the input graph is nil.
	ErrNilGraph = errors.New("graph is nil")
)

// Marginalize restricts g to the named strains and merges every adjacent
// block pair that the retained strains do not distinguish.
//
// See the package documentation for the merge condition. g is not modified.
func Marginalize(g *graph.Graph, strains []string) (*graph.Graph, error) {
	out, _, err := MarginalizeWithOptions(g, strains, Options{})
	return out, err
}

// MarginalizeWithOptions is like [Marginalize] but accepts options and
// returns metrics about the reduction.
func MarginalizeWithOptions(g *graph.Graph, strains []string, opts Options) (*graph.Graph, Result, error) {
	names, err := validateStrains(g, strains)
	if err != nil {
		return nil, Result{}, err
	}
	v := newView(g, names)
	res := Result{
		Strains:       len(names),
		BlocksTouched: len(v.blocks),
		BlocksDropped: g.BlockCount() - len(v.blocks),
	}

	if len(names) == 1 {
		out, visits, err := collapse(g, names[0])
		if err != nil {
			return nil, Result{}, err
		}
		res.SingleStrain = true
		res.BlocksOut = out.BlockCount()
		if visits > 1 {
			res.ChainsMerged = 1
			res.JunctionsMerged = visits - 1
		}
		return out, res, nil
	}

	chains := v.chains(v.successors())
	merged := make([]*chain, len(chains))
	grp := errgroup.Group{}
	grp.SetLimit(workers(opts.Workers))
	for i, c := range chains {
		grp.Go(func() error {
			m, err := v.contract(c)
			if err != nil {
				return err
			}
			merged[i] = m
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, Result{}, err
	}

	out, err := v.assemble(merged)
	if err != nil {
		return nil, Result{}, err
	}
	res.BlocksOut = out.BlockCount()
	res.ChainsMerged = len(merged)
	for _, m := range merged {
		res.JunctionsMerged += len(m.blocks) - 1
	}
	return out, res, nil
}

// Junction is an adjacent block pair that the retained strains never
// separate. Every retained visit of From is immediately followed, in path
// order, by a visit of To. The strands are those of the visits.
type Junction struct {
	From       graph.BlockID
	FromStrand graph.Strand
	To         graph.BlockID
	ToStrand   graph.Strand
}

// String formats j as "1+ -> 2-".
func (j Junction) String() string {
	return fmt.Sprintf("%d%s -> %d%s", j.From, j.FromStrand, j.To, j.ToStrand)
}

// Mergeable lists the junctions of g that satisfy the merge condition when
// only the named strains are considered, ordered by From. The result is
// empty for any output of [Marginalize] with the same strains.
func Mergeable(g *graph.Graph, strains []string) ([]Junction, error) {
	names, err := validateStrains(g, strains)
	if err != nil {
		return nil, err
	}
	v := newView(g, names)
	next := v.successors()
	out := make([]Junction, 0, len(next))
	for _, a := range v.blocks {
		if b, ok := next[a]; ok {
			out = append(out, Junction{From: a, FromStrand: v.strand[a], To: b, ToStrand: v.strand[b]})
		}
	}
	return out, nil
}

func validateStrains(g *graph.Graph, strains []string) ([]string, error) {
	if g == nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, ErrNilGraph, "marginalize")
	}
	if len(strains) == 0 {
		return nil, errs.Wrap(errs.ErrCodeInvalidStrainSet, ErrEmptyStrainSet, "no strains requested")
	}
	names := slices.Clone(strains)
	slices.Sort(names)
	names = slices.Compact(names)
	for _, name := range names {
		if !g.HasPath(name) {
			return nil, errs.Wrap(errs.ErrCodeInvalidStrainSet, ErrUnknownStrain, "strain %q", name)
		}
	}
	return names, nil
}

func workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

func mergeConflict(format string, args ...any) error {
	return errs.New(errs.ErrCodeMergeConflict, format, args...)
}
