// Package graph provides the in-memory model of a pangenome alignment graph.
//
// # Overview
//
// A pangenome graph is built from many genomes (strains). Homologous segments
// shared across strains are aligned into [Block]s; every strain's genome is
// then a [Path] walking through blocks in genome order. Each single visit of a
// block by a path is a [Node], so a strain that carries a duplicated segment
// visits the same block through two distinct nodes.
//
// # Blocks
//
// A block stores a consensus sequence and, for each node visiting it, the
// [Edits] (substitutions, deletions and insertions) that turn the consensus
// into that node's exact subsequence. Edit positions are relative to the
// forward consensus. A node traversed on the [Reverse] strand contributes the
// reverse complement of its reconstructed copy.
//
// # Paths
//
// Concatenating the copies of a path's nodes, in order, yields the strain's
// genome. Circular genomes set [Path.Circular]; because the genome origin can
// fall inside a node, a circular path also records an [Path.Offset]: the
// genome starts at that coordinate of the concatenation and wraps around.
// Cyclic adjacency is expressed by that flag and modular indexing, never by
// a linked structure.
//
// # Construction and Validation
//
// [New] validates every structural invariant and either returns a complete
// immutable [Graph] or a MALFORMED_GRAPH error naming the first violation:
//
//   - Block, node and path identifiers are unique
//   - Every node references an existing block and path
//   - Every node is visited by exactly one path entry, its own path
//   - Every node has an alignment record in its block and no block holds a
//     record for a foreign or unknown node
//   - Edits are in range of the consensus and do not overlap
//   - A path's declared length equals the length of its reconstruction
//
// [Builder] offers an incremental way to assemble a graph path by path.
//
// # Immutability
//
// A Graph is never modified after construction. Accessors return copies, so
// a Graph can be shared freely between goroutines; transformations such as
// marginalization always produce a new Graph.
package graph
