package graph

import (
	"cmp"
	"errors"
	"maps"
	"slices"
	"strconv"

	errs "github.com/matzehuels/pangraph/pkg/errors"
	"github.com/matzehuels/pangraph/pkg/seq"
)

var (
	// ErrDuplicateBlock is returned when two blocks share an identifier.
	ErrDuplicateBlock = errors.New("duplicate block ID")

	// ErrDuplicateNode is returned when two nodes share an identifier.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrDuplicatePath is returned when two paths share a strain name.
	ErrDuplicatePath = errors.New("duplicate path name")

	// ErrInvalidPathName is returned for paths with an empty strain name.
	ErrInvalidPathName = errors.New("path name must not be empty")

	// ErrEmptyConsensus is returned for blocks without a consensus sequence.
	ErrEmptyConsensus = errors.New("block consensus must not be empty")

	// ErrEmptyPath is returned for paths that visit no nodes.
	ErrEmptyPath = errors.New("path must visit at least one node")

	// ErrUnknownBlock is returned when a node or lookup references a block
	// that does not exist.
	ErrUnknownBlock = errors.New("unknown block")

	// ErrUnknownNode is returned when a path, alignment or lookup references
	// a node that does not exist.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownPath is returned when a node or lookup references a path
	// that does not exist.
	ErrUnknownPath = errors.New("unknown path")

	// ErrPathMismatch is returned when a path visits a node that belongs to
	// another path.
	ErrPathMismatch = errors.New("node belongs to another path")

	// ErrNodeReused is returned when a node appears in more than one path entry.
	ErrNodeReused = errors.New("node visited more than once")

	// ErrOrphanNode is returned when a node is not visited by any path.
	ErrOrphanNode = errors.New("node not visited by any path")

	// ErrMissingAlignment is returned when a node has no alignment record in
	// its block.
	ErrMissingAlignment = errors.New("node has no alignment in its block")

	// ErrForeignAlignment is returned when a block holds an alignment record
	// for a node that is assigned to a different block.
	ErrForeignAlignment = errors.New("alignment for node of another block")

	// ErrInvalidEdits is returned when an alignment record does not fit its
	// block's consensus.
	ErrInvalidEdits = errors.New("invalid edits")

	// ErrLengthMismatch is returned when a path's declared length differs
	// from the length of its reconstruction.
	ErrLengthMismatch = errors.New("path length mismatch")

	// ErrInvalidOffset is returned when a path offset is out of range, or
	// non-zero on a linear path.
	ErrInvalidOffset = errors.New("invalid path offset")

	// ErrInvalidSequence is returned when a consensus contains bytes outside
	// the nucleotide alphabet.
	ErrInvalidSequence = errors.New("invalid nucleotide")
)

// BlockID identifies a block. Identifiers are stable across marginalization
// for blocks that pass through unchanged.
type BlockID uint64

// String returns the decimal form of id.
func (id BlockID) String() string { return strconv.FormatUint(uint64(id), 10) }

// NodeID identifies a single visit of a block by a path.
type NodeID uint64

// String returns the decimal form of id.
func (id NodeID) String() string { return strconv.FormatUint(uint64(id), 10) }

// Block is an aligned segment shared by the paths that visit it.
type Block struct {
	ID        BlockID
	Consensus string
	// Alignments holds the edits of every node visiting the block.
	Alignments map[NodeID]Edits
}

// Depth returns the number of nodes visiting the block.
func (b Block) Depth() int { return len(b.Alignments) }

// NodeIDs returns the visiting nodes in ascending order.
func (b Block) NodeIDs() []NodeID { return slices.Sorted(maps.Keys(b.Alignments)) }

// Clone returns a deep copy of b.
func (b Block) Clone() Block {
	out := Block{ID: b.ID, Consensus: b.Consensus, Alignments: make(map[NodeID]Edits, len(b.Alignments))}
	for id, e := range b.Alignments {
		out.Alignments[id] = e.Clone()
	}
	return out
}

// Node is one traversal of a block by a path.
type Node struct {
	ID     NodeID
	Block  BlockID
	Path   string
	Strand Strand
}

// Path is the traversal of blocks that reconstructs one strain's genome.
type Path struct {
	Name     string
	Nodes    []NodeID
	Length   int  // genome length
	Circular bool // genome is circular; adjacency wraps from the last node to the first
	// Offset is the coordinate of the node concatenation at which the genome
	// starts. Always zero for linear paths.
	Offset int
}

// Clone returns a deep copy of p.
func (p Path) Clone() Path {
	p.Nodes = slices.Clone(p.Nodes)
	return p
}

// Entry is a resolved path step.
type Entry struct {
	Node   NodeID
	Block  BlockID
	Strand Strand
}

// Graph is an immutable pangenome alignment graph.
//
// The zero value is not usable - use [New] or [Builder] to create a Graph.
// All methods are safe for concurrent use.
type Graph struct {
	blocks map[BlockID]*Block
	nodes  map[NodeID]Node
	paths  map[string]*Path
	// lengths caches the reconstructed length of every node's copy.
	lengths map[NodeID]int
}

// New validates blocks, nodes and paths and assembles them into a Graph.
// The inputs are copied; later changes by the caller do not affect the Graph.
//
// On failure New returns an error with code MALFORMED_GRAPH whose cause is
// one of the Err* sentinels of this package. Checks run in a fixed order
// (blocks by ID, nodes by ID, paths by name) so the reported violation is
// deterministic.
func New(blocks []Block, nodes []Node, paths []Path) (*Graph, error) {
	g := &Graph{
		blocks:  make(map[BlockID]*Block, len(blocks)),
		nodes:   make(map[NodeID]Node, len(nodes)),
		paths:   make(map[string]*Path, len(paths)),
		lengths: make(map[NodeID]int, len(nodes)),
	}

	sortedBlocks := slices.Clone(blocks)
	slices.SortStableFunc(sortedBlocks, func(a, b Block) int { return cmp.Compare(a.ID, b.ID) })
	for _, b := range sortedBlocks {
		if _, exists := g.blocks[b.ID]; exists {
			return nil, malformed(ErrDuplicateBlock, "block %d", b.ID)
		}
		if b.Consensus == "" {
			return nil, malformed(ErrEmptyConsensus, "block %d", b.ID)
		}
		if i := seq.Valid(b.Consensus); i >= 0 {
			return nil, malformed(ErrInvalidSequence, "block %d: byte %q at %d", b.ID, b.Consensus[i], i)
		}
		c := b.Clone()
		g.blocks[b.ID] = &c
	}

	sortedNodes := slices.Clone(nodes)
	slices.SortStableFunc(sortedNodes, func(a, b Node) int { return cmp.Compare(a.ID, b.ID) })
	for _, n := range sortedNodes {
		if _, exists := g.nodes[n.ID]; exists {
			return nil, malformed(ErrDuplicateNode, "node %d", n.ID)
		}
		g.nodes[n.ID] = n
	}

	sortedPaths := slices.Clone(paths)
	slices.SortStableFunc(sortedPaths, func(a, b Path) int { return cmp.Compare(a.Name, b.Name) })
	for _, p := range sortedPaths {
		if p.Name == "" {
			return nil, malformed(ErrInvalidPathName, "path with %d nodes", len(p.Nodes))
		}
		if _, exists := g.paths[p.Name]; exists {
			return nil, malformed(ErrDuplicatePath, "path %q", p.Name)
		}
		c := p.Clone()
		g.paths[p.Name] = &c
	}

	if err := g.validateNodes(sortedNodes); err != nil {
		return nil, err
	}
	if err := g.validateBlocks(sortedBlocks); err != nil {
		return nil, err
	}
	if err := g.validatePaths(sortedPaths); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) validateNodes(nodes []Node) error {
	for _, n := range nodes {
		if _, ok := g.blocks[n.Block]; !ok {
			return malformed(ErrUnknownBlock, "node %d references block %d", n.ID, n.Block)
		}
		if _, ok := g.paths[n.Path]; !ok {
			return malformed(ErrUnknownPath, "node %d references path %q", n.ID, n.Path)
		}
	}
	return nil
}

func (g *Graph) validateBlocks(blocks []Block) error {
	for _, b := range blocks {
		for _, id := range b.NodeIDs() {
			n, ok := g.nodes[id]
			if !ok {
				return malformed(ErrUnknownNode, "block %d aligns node %d", b.ID, id)
			}
			if n.Block != b.ID {
				return malformed(ErrForeignAlignment, "block %d aligns node %d of block %d", b.ID, id, n.Block)
			}
			e := b.Alignments[id]
			if err := e.Validate(len(b.Consensus)); err != nil {
				return errs.Wrap(errs.ErrCodeMalformedGraph, ErrInvalidEdits, "block %d node %d: %v", b.ID, id, err)
			}
			g.lengths[id] = e.Len(len(b.Consensus))
		}
	}
	for _, id := range slices.Sorted(maps.Keys(g.nodes)) {
		n := g.nodes[id]
		if _, ok := g.blocks[n.Block].Alignments[id]; !ok {
			return malformed(ErrMissingAlignment, "node %d in block %d", id, n.Block)
		}
	}
	return nil
}

func (g *Graph) validatePaths(paths []Path) error {
	visited := make(map[NodeID]string, len(g.nodes))
	for _, p := range paths {
		if len(p.Nodes) == 0 {
			return malformed(ErrEmptyPath, "path %q", p.Name)
		}
		total := 0
		for i, id := range p.Nodes {
			n, ok := g.nodes[id]
			if !ok {
				return malformed(ErrUnknownNode, "path %q entry %d references node %d", p.Name, i, id)
			}
			if n.Path != p.Name {
				return malformed(ErrPathMismatch, "path %q entry %d visits node %d of path %q", p.Name, i, id, n.Path)
			}
			if prev, dup := visited[id]; dup {
				return malformed(ErrNodeReused, "path %q entry %d revisits node %d (first in %q)", p.Name, i, id, prev)
			}
			visited[id] = p.Name
			total += g.lengths[id]
		}
		if total == 0 {
			return malformed(ErrEmptyPath, "path %q reconstructs an empty genome", p.Name)
		}
		if total != p.Length {
			return malformed(ErrLengthMismatch, "path %q declares %d bases, nodes reconstruct %d", p.Name, p.Length, total)
		}
		if p.Offset != 0 && (!p.Circular || p.Offset < 0 || p.Offset >= p.Length) {
			return malformed(ErrInvalidOffset, "path %q offset %d (length %d, circular %v)", p.Name, p.Offset, p.Length, p.Circular)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(g.nodes)) {
		if _, ok := visited[id]; !ok {
			return malformed(ErrOrphanNode, "node %d of path %q", id, g.nodes[id].Path)
		}
	}
	return nil
}

func malformed(cause error, format string, args ...any) error {
	return errs.Wrap(errs.ErrCodeMalformedGraph, cause, format, args...)
}

func notFound(cause error, format string, args ...any) error {
	return errs.Wrap(errs.ErrCodeNotFound, cause, format, args...)
}

// Block returns a copy of the block with the given ID.
// Returns a NOT_FOUND error wrapping ErrUnknownBlock if it doesn't exist.
func (g *Graph) Block(id BlockID) (Block, error) {
	b, ok := g.blocks[id]
	if !ok {
		return Block{}, notFound(ErrUnknownBlock, "block %d", id)
	}
	return b.Clone(), nil
}

// Node returns the node with the given ID.
// Returns a NOT_FOUND error wrapping ErrUnknownNode if it doesn't exist.
func (g *Graph) Node(id NodeID) (Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, notFound(ErrUnknownNode, "node %d", id)
	}
	return n, nil
}

// Path returns a copy of the path of the named strain.
// Returns a NOT_FOUND error wrapping ErrUnknownPath if it doesn't exist.
func (g *Graph) Path(name string) (Path, error) {
	p, ok := g.paths[name]
	if !ok {
		return Path{}, notFound(ErrUnknownPath, "path %q", name)
	}
	return p.Clone(), nil
}

// HasPath reports whether the graph contains a path for the named strain.
func (g *Graph) HasPath(name string) bool {
	_, ok := g.paths[name]
	return ok
}

// HasBlock reports whether the graph contains the block.
func (g *Graph) HasBlock(id BlockID) bool {
	_, ok := g.blocks[id]
	return ok
}

// BlockIDs returns all block IDs in ascending order.
func (g *Graph) BlockIDs() []BlockID { return slices.Sorted(maps.Keys(g.blocks)) }

// PathNames returns all strain names in ascending order.
func (g *Graph) PathNames() []string { return slices.Sorted(maps.Keys(g.paths)) }

// Blocks returns copies of all blocks ordered by ID.
func (g *Graph) Blocks() []Block {
	out := make([]Block, 0, len(g.blocks))
	for _, id := range g.BlockIDs() {
		out = append(out, g.blocks[id].Clone())
	}
	return out
}

// Nodes returns all nodes ordered by ID.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, id := range slices.Sorted(maps.Keys(g.nodes)) {
		out = append(out, g.nodes[id])
	}
	return out
}

// Paths returns copies of all paths ordered by strain name.
func (g *Graph) Paths() []Path {
	out := make([]Path, 0, len(g.paths))
	for _, name := range g.PathNames() {
		out = append(out, g.paths[name].Clone())
	}
	return out
}

// BlockCount returns the number of blocks.
func (g *Graph) BlockCount() int { return len(g.blocks) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// PathCount returns the number of paths.
func (g *Graph) PathCount() int { return len(g.paths) }

// Entries resolves the named path into its block visits, in path order.
func (g *Graph) Entries(name string) ([]Entry, error) {
	p, ok := g.paths[name]
	if !ok {
		return nil, notFound(ErrUnknownPath, "path %q", name)
	}
	out := make([]Entry, len(p.Nodes))
	for i, id := range p.Nodes {
		n := g.nodes[id]
		out[i] = Entry{Node: id, Block: n.Block, Strand: n.Strand}
	}
	return out, nil
}

// Edits returns a copy of the alignment record of a node.
func (g *Graph) Edits(id NodeID) (Edits, error) {
	n, ok := g.nodes[id]
	if !ok {
		return Edits{}, notFound(ErrUnknownNode, "node %d", id)
	}
	return g.blocks[n.Block].Alignments[id].Clone(), nil
}

// CopyLen returns the length of a node's reconstructed copy.
func (g *Graph) CopyLen(id NodeID) (int, error) {
	l, ok := g.lengths[id]
	if !ok {
		return 0, notFound(ErrUnknownNode, "node %d", id)
	}
	return l, nil
}

// Copy reconstructs the subsequence contributed by a node, in the
// orientation of its path: reverse-complemented for Reverse nodes.
func (g *Graph) Copy(id NodeID) (string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return "", notFound(ErrUnknownNode, "node %d", id)
	}
	b := g.blocks[n.Block]
	s := b.Alignments[id].Apply(b.Consensus)
	if n.Strand == Reverse {
		s = seq.ReverseComplement(s)
	}
	return s, nil
}

// Sequence reconstructs the genome of the named strain: the concatenation
// of its node copies, rotated by the path offset when circular.
func (g *Graph) Sequence(name string) (string, error) {
	p, ok := g.paths[name]
	if !ok {
		return "", notFound(ErrUnknownPath, "path %q", name)
	}
	buf := make([]byte, 0, p.Length)
	for _, id := range p.Nodes {
		s, err := g.Copy(id)
		if err != nil {
			return "", err
		}
		buf = append(buf, s...)
	}
	return seq.Rotate(string(buf), p.Offset), nil
}

// Occurrences returns the nodes visiting a block, in ascending order.
func (g *Graph) Occurrences(id BlockID) ([]NodeID, error) {
	b, ok := g.blocks[id]
	if !ok {
		return nil, notFound(ErrUnknownBlock, "block %d", id)
	}
	return b.NodeIDs(), nil
}

// Stats summarizes the size of a graph.
type Stats struct {
	Blocks          int
	Nodes           int
	Paths           int
	ConsensusLength int // summed length of all block consensus sequences
	GenomeLength    int // summed length of all path genomes
}

// Stats returns size statistics for the graph.
func (g *Graph) Stats() Stats {
	s := Stats{Blocks: len(g.blocks), Nodes: len(g.nodes), Paths: len(g.paths)}
	for _, b := range g.blocks {
		s.ConsensusLength += len(b.Consensus)
	}
	for _, p := range g.paths {
		s.GenomeLength += p.Length
	}
	return s
}
