// Package graphtest provides graph fixtures for tests.
//
// [Random] derives strains from a shared ancestral block order with
// deletions, inversions, duplications and per-node edits, which yields the
// mix of shared and distinguishing adjacencies that marginalization has to
// handle. All generators are deterministic for a given seed.
package graphtest

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/pangraph/pkg/graph"
)

const alphabet = "ACGT"

// Options controls the shape of a random graph.
type Options struct {
	Blocks   int     // number of ancestral blocks (default 8)
	Strains  int     // number of strains (default 4)
	MinLen   int     // minimum consensus length (default 4)
	MaxLen   int     // maximum consensus length (default 16)
	Circular float64 // probability that a strain is circular (default 0.5)
	Drop     float64 // probability that a strain loses an ancestral block (default 0.15)
	Invert   float64 // probability that a strain carries an inversion (default 0.3)
	Dup      float64 // probability that a strain duplicates a block (default 0.2)
	Edit     float64 // per-base probability of an edit (default 0.05)
}

func (o *Options) setDefaults() {
	if o.Blocks == 0 {
		o.Blocks = 8
	}
	if o.Strains == 0 {
		o.Strains = 4
	}
	if o.MinLen == 0 {
		o.MinLen = 4
	}
	if o.MaxLen < o.MinLen {
		o.MaxLen = max(16, o.MinLen)
	}
	if o.Circular == 0 {
		o.Circular = 0.5
	}
	if o.Drop == 0 {
		o.Drop = 0.15
	}
	if o.Invert == 0 {
		o.Invert = 0.3
	}
	if o.Dup == 0 {
		o.Dup = 0.2
	}
	if o.Edit == 0 {
		o.Edit = 0.05
	}
}

type step struct {
	block  graph.BlockID
	strand graph.Strand
}

// Random builds a valid random graph. It panics if the generated graph fails
// validation, which would be a bug in the generator.
func Random(seed uint64, opts Options) *graph.Graph {
	opts.setDefaults()
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	b := graph.NewBuilder()
	consensus := make(map[graph.BlockID]string, opts.Blocks)
	ancestor := make([]step, opts.Blocks)
	for i := range opts.Blocks {
		id := graph.BlockID(i + 1)
		consensus[id] = Seq(r, opts.MinLen+r.IntN(opts.MaxLen-opts.MinLen+1))
		b.AddBlock(id, consensus[id])
		ancestor[i] = step{block: id, strand: graph.Strand(r.IntN(4) != 0)}
	}

	for s := range opts.Strains {
		name := fmt.Sprintf("strain-%02d", s)
		steps := derive(r, ancestor, opts)
		circular := r.Float64() < opts.Circular
		b.AddPath(name, circular)
		total := 0
		for _, st := range steps {
			e := RandomEdits(r, len(consensus[st.block]), opts.Edit)
			total += e.Len(len(consensus[st.block]))
			b.Visit(name, st.block, st.strand, e)
		}
		if circular && total > 0 {
			b.SetOffset(name, r.IntN(total))
		}
	}
	return Must(b.Build())
}

func derive(r *rand.Rand, ancestor []step, opts Options) []step {
	steps := make([]step, 0, len(ancestor)+2)
	for _, st := range ancestor {
		if r.Float64() >= opts.Drop {
			steps = append(steps, st)
		}
	}
	if len(steps) == 0 {
		steps = append(steps, ancestor[r.IntN(len(ancestor))])
	}
	if r.Float64() < opts.Invert && len(steps) > 1 {
		i := r.IntN(len(steps))
		j := i + r.IntN(len(steps)-i)
		seg := steps[i : j+1]
		slices.Reverse(seg)
		for k := range seg {
			seg[k].strand = seg[k].strand.Flip()
		}
	}
	if r.Float64() < opts.Dup {
		i := r.IntN(len(steps))
		steps = slices.Insert(steps, r.IntN(len(steps)+1), steps[i])
	}
	return steps
}

// Seq returns a random nucleotide sequence of length n.
func Seq(r *rand.Rand, n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = alphabet[r.IntN(len(alphabet))]
	}
	return string(buf)
}

// RandomEdits returns valid edits for a consensus of length n, touching each
// base with probability p.
func RandomEdits(r *rand.Rand, n int, p float64) graph.Edits {
	var e graph.Edits
	for i := 0; i < n; i++ {
		if r.Float64() < p {
			e.Inss = append(e.Inss, graph.Ins{Pos: i, Seq: Seq(r, 1+r.IntN(3))})
		}
		switch x := r.Float64(); {
		case x < p:
			e.Subs = append(e.Subs, graph.Sub{Pos: i, Alt: alphabet[r.IntN(len(alphabet))]})
		case x < 2*p && i+2 < n:
			l := 1 + r.IntN(2)
			e.Dels = append(e.Dels, graph.Del{Pos: i, Len: l})
			i += l - 1
		}
	}
	if r.Float64() < p {
		e.Inss = append(e.Inss, graph.Ins{Pos: n, Seq: Seq(r, 1+r.IntN(3))})
	}
	return e
}

// Must panics if err is non-nil and returns g otherwise.
func Must(g *graph.Graph, err error) *graph.Graph {
	if err != nil {
		panic(err)
	}
	return g
}

// Subsets returns every non-empty subset of names, each sorted, in a fixed
// order. It is meant for small name lists.
func Subsets(names []string) [][]string {
	var out [][]string
	for mask := 1; mask < 1<<len(names); mask++ {
		var s []string
		for i, n := range names {
			if mask&(1<<i) != 0 {
				s = append(s, n)
			}
		}
		out = append(out, s)
	}
	return out
}
