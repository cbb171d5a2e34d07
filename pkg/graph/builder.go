package graph

// Builder assembles a Graph path by path.
//
// Blocks are registered with AddBlock, then each path is extended one visit
// at a time with Visit. Build fills in the alignment records and path
// lengths and validates the result with [New]. Builder methods never fail;
// all errors surface from Build.
//
// The zero value is not usable - use NewBuilder.
type Builder struct {
	blocks   []Block
	blockIdx map[BlockID]int
	nodes    []Node
	edits    []Edits
	paths    []Path
	pathIdx  map[string]int
	nextNode NodeID
}

// NewBuilder creates an empty Builder. Automatically assigned node IDs
// start at 1.
func NewBuilder() *Builder {
	return &Builder{
		blockIdx: make(map[BlockID]int),
		pathIdx:  make(map[string]int),
		nextNode: 1,
	}
}

// AddBlock registers a block. Registering the same ID twice makes Build fail
// with ErrDuplicateBlock.
func (b *Builder) AddBlock(id BlockID, consensus string) *Builder {
	if _, exists := b.blockIdx[id]; !exists {
		b.blockIdx[id] = len(b.blocks)
	}
	b.blocks = append(b.blocks, Block{ID: id, Consensus: consensus, Alignments: map[NodeID]Edits{}})
	return b
}

// AddPath starts an empty path. Visit creates linear paths implicitly, so
// AddPath is only required for circular genomes or to control creation order.
func (b *Builder) AddPath(name string, circular bool) *Builder {
	if i, ok := b.pathIdx[name]; ok {
		b.paths[i].Circular = circular
		return b
	}
	b.pathIdx[name] = len(b.paths)
	b.paths = append(b.paths, Path{Name: name, Circular: circular})
	return b
}

// SetOffset sets the genome origin of a circular path. See [Path.Offset].
func (b *Builder) SetOffset(name string, offset int) *Builder {
	b.AddPath(name, b.isCircular(name))
	b.paths[b.pathIdx[name]].Offset = offset
	return b
}

func (b *Builder) isCircular(name string) bool {
	if i, ok := b.pathIdx[name]; ok {
		return b.paths[i].Circular
	}
	return false
}

// Visit appends a visit of block on strand to the named path and returns the
// ID assigned to the new node.
func (b *Builder) Visit(path string, block BlockID, strand Strand, e Edits) NodeID {
	id := b.nextNode
	b.VisitNode(path, id, block, strand, e)
	return id
}

// VisitNode is like Visit but uses an explicit node ID.
func (b *Builder) VisitNode(path string, id NodeID, block BlockID, strand Strand, e Edits) {
	if _, ok := b.pathIdx[path]; !ok {
		b.AddPath(path, false)
	}
	p := &b.paths[b.pathIdx[path]]
	p.Nodes = append(p.Nodes, id)
	b.nodes = append(b.nodes, Node{ID: id, Block: block, Path: path, Strand: strand})
	b.edits = append(b.edits, e.Clone())
	if id >= b.nextNode {
		b.nextNode = id + 1
	}
}

// Build attaches alignment records to their blocks, computes path lengths
// and validates the graph.
func (b *Builder) Build() (*Graph, error) {
	blocks := make([]Block, len(b.blocks))
	for i, blk := range b.blocks {
		blocks[i] = blk.Clone()
	}
	lengths := make(map[string]int, len(b.paths))
	for i, n := range b.nodes {
		j, ok := b.blockIdx[n.Block]
		if !ok {
			continue
		}
		blocks[j].Alignments[n.ID] = b.edits[i]
		lengths[n.Path] += b.edits[i].Len(len(blocks[j].Consensus))
	}
	paths := make([]Path, len(b.paths))
	for i, p := range b.paths {
		paths[i] = p.Clone()
		paths[i].Length = lengths[p.Name]
	}
	return New(blocks, b.nodes, paths)
}
