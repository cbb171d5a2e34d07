// Package transform provides graph transformations over pangenome graphs.
//
// # Marginalization
//
// A pangenome graph built from many strains keeps a block boundary wherever
// any strain distinguishes the two sides. [Marginalize] answers the question
// "what graph would we have built from this subset of strains alone?": it
// drops the other strains' paths, drops blocks no retained strain visits, and
// merges neighbouring blocks that no retained strain tells apart.
//
// The input graph is never modified. Blocks and nodes that survive unchanged
// keep their identifiers; merged blocks and nodes receive fresh identifiers
// derived from their constituents, so repeated runs on identical input
// produce identical output.
//
// # Merge Condition
//
// Two blocks A and B are merged when the junction A→B is universal and
// exclusive within the retained strains:
//
//   - All retained visits of A use one strand, and so do those of B
//   - Every visit of A is immediately followed, in path order, by a visit of B
//   - A and B are visited the same number of times, so no visit of B lacks A
//     in front of it
//
// A and B may sit on different strands: a junction read as 1+ 2- by every
// strain merges into a block whose consensus is cons(1) followed by the
// reverse complement of cons(2), and the edits of block 2 are mirrored
// accordingly. The merged block is visited on the strand of the first block
// of its chain, so a chain read as B- A- merges into the consensus A·B
// visited on the reverse strand. A block that some retained strains visit
// forward and others in reverse is never merged. Circular paths wrap from
// their last visit to the first and the seam is treated like any other
// junction.
//
// Candidate junctions link blocks into chains, and into cycles when a whole
// circular genome collapses. Chains are contracted in one pass; a cycle is
// opened in front of its smallest block identifier. The result is the fixed
// point of merging candidate pairs one at a time, which [Mergeable] can
// confirm on the output.
//
// A single retained strain is a degenerate case: its whole genome becomes one
// block visited once on the forward strand, keeping the circular flag.
//
// # Errors
//
// Marginalize fails with INVALID_STRAIN_SET for an empty request or unknown
// strain names before any work is done, and with MERGE_CONFLICT when an
// internal invariant breaks during contraction. No partial graph is ever
// returned.
//
// # Concurrency
//
// Chains are independent and may be contracted in parallel
// ([Options.Workers]); identifiers are assigned in a single ordered pass
// afterwards, so the output does not depend on scheduling.
package transform
