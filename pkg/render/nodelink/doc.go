// Package nodelink renders pangenome graphs as node-link diagrams.
//
// # Overview
//
// Blocks become rounded boxes; each junction between consecutive path
// entries becomes an arrow, including the wrap-around junction of circular
// paths. Junctions traversed by several strains are drawn once, with a
// thicker line and the number of traversals as label. This makes the effect
// of marginalization easy to see: merged chains disappear into single boxes.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include consensus length and depth
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be rendered
// directly via [RenderSVG] or saved and processed with external Graphviz
// tools. The layout runs left to right (rankdir=LR), following genome order.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
