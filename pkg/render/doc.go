// Package render provides visualization for pangenome graphs.
//
// The [nodelink] subpackage draws the block adjacency graph with Graphviz:
// blocks appear as boxes and every junction traversed by a path appears as
// an arrow.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/pangraph/pkg/render/nodelink
package render
