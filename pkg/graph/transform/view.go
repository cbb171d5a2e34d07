package transform

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/pangraph/pkg/graph"
)

// occurrence locates a node by its path and index in that path.
type occurrence struct {
	path  string
	index int
}

// view is the part of a graph visible to a strain subset. It is read-only
// once built and shared by concurrent chain contractions.
type view struct {
	g        *graph.Graph
	strains  []string
	entries  map[string][]graph.Entry
	circular map[string]bool
	// occ lists every visit of a block, ordered by strain then index.
	occ map[graph.BlockID][]occurrence
	// strand is the strand shared by all visits of a block, valid when
	// uniform reports true.
	strand  map[graph.BlockID]graph.Strand
	uniform map[graph.BlockID]bool
	// blocks are the visited blocks in ascending order.
	blocks []graph.BlockID
}

func newView(g *graph.Graph, strains []string) *view {
	v := &view{
		g:        g,
		strains:  strains,
		entries:  make(map[string][]graph.Entry, len(strains)),
		circular: make(map[string]bool, len(strains)),
		occ:      make(map[graph.BlockID][]occurrence),
		strand:   make(map[graph.BlockID]graph.Strand),
		uniform:  make(map[graph.BlockID]bool),
	}
	for _, name := range strains {
		// Names were checked against g; lookups cannot fail.
		es, _ := g.Entries(name)
		p, _ := g.Path(name)
		v.entries[name] = es
		v.circular[name] = p.Circular
		for i, e := range es {
			if _, seen := v.occ[e.Block]; !seen {
				v.strand[e.Block] = e.Strand
				v.uniform[e.Block] = true
			} else if v.strand[e.Block] != e.Strand {
				v.uniform[e.Block] = false
			}
			v.occ[e.Block] = append(v.occ[e.Block], occurrence{path: name, index: i})
		}
	}
	v.blocks = slices.Sorted(maps.Keys(v.occ))
	return v
}

// next returns the index that follows i in path order, wrapping on circular
// paths.
func (v *view) next(path string, i int) (int, bool) {
	j := i + 1
	if j == len(v.entries[path]) {
		if !v.circular[path] {
			return 0, false
		}
		j = 0
	}
	return j, true
}

// successors maps every block A to the block B when the junction A→B, read
// in path order, satisfies the merge condition. Both blocks keep one strand
// across all visits, so path order reads every strain in the same
// orientation. The strands of A and B may differ. The mapping is injective:
// B's visits are exactly the successors of A's visits, so no other block
// can claim B.
func (v *view) successors() map[graph.BlockID]graph.BlockID {
	next := make(map[graph.BlockID]graph.BlockID)
	for _, a := range v.blocks {
		if !v.uniform[a] {
			continue
		}
		b, ok := v.commonSuccessor(a)
		if !ok || b == a || !v.uniform[b] {
			continue
		}
		if len(v.occ[b]) != len(v.occ[a]) {
			continue
		}
		next[a] = b
	}
	return next
}

// commonSuccessor returns the block that follows every visit of a, if any.
func (v *view) commonSuccessor(a graph.BlockID) (graph.BlockID, bool) {
	var b graph.BlockID
	for i, o := range v.occ[a] {
		j, ok := v.next(o.path, o.index)
		if !ok {
			return 0, false
		}
		e := v.entries[o.path][j]
		if i == 0 {
			b = e.Block
		} else if e.Block != b {
			return 0, false
		}
	}
	return b, true
}

// run is a chain of blocks in path order and the strand its merged block
// is visited on.
type run struct {
	blocks []graph.BlockID
	strand graph.Strand
}

// forward returns the blocks in the forward sense of the merged block.
func (r run) forward() []graph.BlockID {
	if r.strand == graph.Forward {
		return r.blocks
	}
	return reversed(r.blocks)
}

func reversed[T any](s []T) []T {
	out := slices.Clone(s)
	slices.Reverse(out)
	return out
}

// chains groups the successor relation into maximal runs of blocks in path
// order. Runs start at blocks without a predecessor and take the strand of
// their first block. Cycles left over are opened so that the merged block
// starts with their smallest block in its forward sense. Chains are returned
// ordered by that first block.
func (v *view) chains(next map[graph.BlockID]graph.BlockID) []run {
	hasPred := make(map[graph.BlockID]bool, len(next))
	for _, b := range next {
		hasPred[b] = true
	}
	done := make(map[graph.BlockID]bool, len(next))
	var out []run
	follow := func(head graph.BlockID) []graph.BlockID {
		c := []graph.BlockID{head}
		done[head] = true
		for cur := head; ; {
			nb, ok := next[cur]
			if !ok || done[nb] {
				break
			}
			c = append(c, nb)
			done[nb] = true
			cur = nb
		}
		return c
	}
	for _, a := range v.blocks {
		if _, ok := next[a]; ok && !hasPred[a] {
			c := follow(a)
			out = append(out, run{blocks: c, strand: v.strand[c[0]]})
		}
	}
	// Blocks are visited in ascending order, so a is the smallest block of
	// its cycle.
	for _, a := range v.blocks {
		if _, ok := next[a]; ok && !done[a] {
			c := follow(a)
			if v.strand[a] == graph.Forward {
				out = append(out, run{blocks: c, strand: graph.Forward})
			} else {
				out = append(out, run{blocks: append(c[1:], a), strand: graph.Reverse})
			}
		}
	}
	slices.SortFunc(out, func(x, y run) int { return cmp.Compare(x.forward()[0], y.forward()[0]) })
	return out
}
