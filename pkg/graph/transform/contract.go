package transform

import (
	"encoding/binary"
	"strings"

	"github.com/cespare/xxhash/v2"

	errs "github.com/matzehuels/pangraph/pkg/errors"
	"github.com/matzehuels/pangraph/pkg/graph"
	"github.com/matzehuels/pangraph/pkg/seq"
)

// chain is a run of blocks contracted into one merged block.
type chain struct {
	blocks []graph.BlockID
	strand graph.Strand
	block  graph.Block
	groups []group
}

// group is one visit of a merged block: the contiguous run of path entries
// it replaces.
type group struct {
	path   string
	first  int // path-order index of the first replaced entry
	size   int
	node   graph.NodeID
	block  graph.BlockID
	strand graph.Strand
}

// contract merges the blocks of r into a single block and derives one
// merged visit per visit of the run's first block. Parts visited on the
// other strand than the merged block enter its consensus reverse
// complemented, together with their edits.
func (v *view) contract(r run) (*chain, error) {
	ids := r.forward()
	parts := make([]graph.Block, len(ids))
	offsets := make([]int, len(ids))
	flip := make([]bool, len(ids))
	var cons strings.Builder
	for i, id := range ids {
		b, err := v.g.Block(id)
		if err != nil {
			return nil, err
		}
		parts[i] = b
		offsets[i] = cons.Len()
		flip[i] = v.strand[id] != r.strand
		if flip[i] {
			cons.WriteString(seq.ReverseComplement(b.Consensus))
		} else {
			cons.WriteString(b.Consensus)
		}
	}

	heads := v.occ[r.blocks[0]]
	c := &chain{
		blocks: ids,
		strand: r.strand,
		block: graph.Block{
			ID:         graph.BlockID(hashIDs(ids)),
			Consensus:  cons.String(),
			Alignments: make(map[graph.NodeID]graph.Edits, len(heads)),
		},
		groups: make([]group, 0, len(heads)),
	}

	visit := make([]graph.NodeID, len(ids))
	for _, o := range heads {
		es := v.entries[o.path]
		idx := o.index
		want := 0
		for k, id := range r.blocks {
			if k > 0 {
				j, ok := v.next(o.path, idx)
				if !ok {
					return nil, mergeConflict("path %q ends after entry %d inside chain at block %d", o.path, idx, r.blocks[k-1])
				}
				idx = j
			}
			e := es[idx]
			if e.Block != id || e.Strand != v.strand[id] {
				return nil, mergeConflict("path %q entry %d visits block %d%s, chain expects %d%s",
					o.path, idx, e.Block, e.Strand, id, v.strand[id])
			}
			visit[k] = e.Node
			n, err := v.g.CopyLen(e.Node)
			if err != nil {
				return nil, err
			}
			want += n
		}

		nodes := visit
		if r.strand == graph.Reverse {
			nodes = reversed(visit)
		}
		var edits graph.Edits
		for k := range ids {
			a := parts[k].Alignments[nodes[k]]
			if flip[k] {
				a = a.ReverseComplement(len(parts[k].Consensus))
			}
			if k == 0 {
				edits = a.Clone()
			} else {
				edits = edits.Concat(a, offsets[k])
			}
		}

		if err := edits.Validate(len(c.block.Consensus)); err != nil {
			return nil, errs.Wrap(errs.ErrCodeMergeConflict, err, "merged visit of path %q at entry %d", o.path, o.index)
		}
		if got := edits.Len(len(c.block.Consensus)); got != want {
			return nil, mergeConflict("merged visit of path %q at entry %d has %d bases, parts have %d", o.path, o.index, got, want)
		}

		node := graph.NodeID(hashIDs(nodes))
		c.block.Alignments[node] = edits
		c.groups = append(c.groups, group{
			path:   o.path,
			first:  o.index,
			size:   len(ids),
			node:   node,
			block:  c.block.ID,
			strand: r.strand,
		})
	}
	return c, nil
}

// assemble builds the marginal graph from the view and its merged chains.
func (v *view) assemble(merged []*chain) (*graph.Graph, error) {
	inChain := make(map[graph.BlockID]bool)
	cover := make(map[string][]*group, len(v.strains))
	for _, name := range v.strains {
		cover[name] = make([]*group, len(v.entries[name]))
	}
	for _, c := range merged {
		for _, id := range c.blocks {
			inChain[id] = true
		}
		for i := range c.groups {
			gr := &c.groups[i]
			cv := cover[gr.path]
			for k := range gr.size {
				cv[(gr.first+k)%len(cv)] = gr
			}
		}
	}

	blockIDs := make(map[graph.BlockID]bool)
	blocks := make([]graph.Block, 0, len(v.blocks))
	for _, id := range v.blocks {
		if inChain[id] {
			continue
		}
		b, err := v.g.Block(id)
		if err != nil {
			return nil, err
		}
		kept := graph.Block{ID: id, Consensus: b.Consensus, Alignments: make(map[graph.NodeID]graph.Edits, len(v.occ[id]))}
		for _, o := range v.occ[id] {
			n := v.entries[o.path][o.index].Node
			kept.Alignments[n] = b.Alignments[n]
		}
		blockIDs[id] = true
		blocks = append(blocks, kept)
	}
	for _, c := range merged {
		if blockIDs[c.block.ID] {
			return nil, mergeConflict("merged block id %d collides with an existing block", c.block.ID)
		}
		blockIDs[c.block.ID] = true
		blocks = append(blocks, c.block)
	}

	nodeIDs := make(map[graph.NodeID]bool)
	var nodes []graph.Node
	paths := make([]graph.Path, 0, len(v.strains))
	for _, name := range v.strains {
		p, err := v.rewrite(name, cover[name], func(n graph.Node) error {
			if nodeIDs[n.ID] {
				return mergeConflict("node id %d is not unique", n.ID)
			}
			nodeIDs[n.ID] = true
			nodes = append(nodes, n)
			return nil
		})
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}

	out, err := graph.New(blocks, nodes, paths)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeMergeConflict, err, "assemble marginal graph")
	}
	return out, nil
}

// rewrite rebuilds the named path with merged visits in place of the entries
// they cover. A merged visit that wraps the seam of a circular path becomes
// the new first entry and the offset is shifted so the genome still starts
// at the same base.
func (v *view) rewrite(name string, cover []*group, emit func(graph.Node) error) (graph.Path, error) {
	old, err := v.g.Path(name)
	if err != nil {
		return graph.Path{}, err
	}
	es := v.entries[name]
	n := len(es)

	start := 0
	if gr := cover[0]; gr != nil && gr.first != 0 {
		start = gr.first
	}
	coord := 0
	for i := range start {
		l, err := v.g.CopyLen(es[i].Node)
		if err != nil {
			return graph.Path{}, err
		}
		coord += l
	}

	p := graph.Path{Name: name, Length: old.Length, Circular: old.Circular}
	if p.Length > 0 {
		p.Offset = ((old.Offset-coord)%p.Length + p.Length) % p.Length
	}
	for pos, done := start, 0; done < n; {
		gr := cover[pos]
		if gr == nil {
			e := es[pos]
			if err := emit(graph.Node{ID: e.Node, Block: e.Block, Path: name, Strand: e.Strand}); err != nil {
				return graph.Path{}, err
			}
			p.Nodes = append(p.Nodes, e.Node)
			done++
			pos = (pos + 1) % n
			continue
		}
		if gr.first != pos {
			return graph.Path{}, mergeConflict("path %q entry %d is inside a merged visit starting at %d", name, pos, gr.first)
		}
		if err := emit(graph.Node{ID: gr.node, Block: gr.block, Path: name, Strand: gr.strand}); err != nil {
			return graph.Path{}, err
		}
		p.Nodes = append(p.Nodes, gr.node)
		done += gr.size
		pos = (pos + gr.size) % n
	}
	return p, nil
}

// collapse builds the single-strain marginal: the strain's genome as one
// block visited once on the forward strand. A path that already has that
// shape keeps its identifiers.
func collapse(g *graph.Graph, name string) (*graph.Graph, int, error) {
	p, err := g.Path(name)
	if err != nil {
		return nil, 0, err
	}
	es, err := g.Entries(name)
	if err != nil {
		return nil, 0, err
	}

	bid := graph.BlockID(hashIDs(blockIDs(es)))
	nid := graph.NodeID(hashIDs(p.Nodes))
	if len(es) == 1 && es[0].Strand == graph.Forward && p.Offset == 0 {
		if e, err := g.Edits(es[0].Node); err == nil && e.IsEmpty() {
			bid, nid = es[0].Block, es[0].Node
		}
	}
	genome, err := g.Sequence(name)
	if err != nil {
		return nil, 0, err
	}

	out, err := graph.New(
		[]graph.Block{{ID: bid, Consensus: genome, Alignments: map[graph.NodeID]graph.Edits{nid: {}}}},
		[]graph.Node{{ID: nid, Block: bid, Path: name, Strand: graph.Forward}},
		[]graph.Path{{Name: name, Nodes: []graph.NodeID{nid}, Length: p.Length, Circular: p.Circular}},
	)
	if err != nil {
		return nil, 0, errs.Wrap(errs.ErrCodeMergeConflict, err, "collapse strain %q", name)
	}
	return out, len(es), nil
}

func blockIDs(es []graph.Entry) []graph.BlockID {
	out := make([]graph.BlockID, len(es))
	for i, e := range es {
		out[i] = e.Block
	}
	return out
}

// hashIDs derives an identifier from an ordered list of constituent
// identifiers.
func hashIDs[T ~uint64](ids []T) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, id := range ids {
		binary.BigEndian.PutUint64(buf[:], uint64(id))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
