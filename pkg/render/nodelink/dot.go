package nodelink

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pangraph/pkg/graph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes consensus length and depth in block labels.
	// When false, only the block ID is shown.
	Detailed bool
}

// junction is an oriented adjacency between two block ends.
type junction struct {
	from, to             graph.BlockID
	fromStrand, toStrand graph.Strand
}

// ToDOT converts a graph to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Blocks visited by a single strain are drawn dashed; they are the blocks
// that distinguish one strain from all others.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	strains := make(map[graph.BlockID]map[string]bool)
	for _, n := range g.Nodes() {
		if strains[n.Block] == nil {
			strains[n.Block] = make(map[string]bool)
		}
		strains[n.Block][n.Path] = true
	}

	for _, b := range g.Blocks() {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(b, opts.Detailed))}
		if len(strains[b.ID]) == 1 {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  \"b%d\" [%s];\n", b.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	counts := junctions(g)
	keys := slices.SortedFunc(maps.Keys(counts), func(a, b junction) int {
		return cmp.Or(
			cmp.Compare(a.from, b.from),
			cmp.Compare(a.to, b.to),
			cmpStrand(a.fromStrand, b.fromStrand),
			cmpStrand(a.toStrand, b.toStrand),
		)
	})
	for _, j := range keys {
		n := counts[j]
		fmt.Fprintf(&buf, "  \"b%d\" -> \"b%d\" [taillabel=%q, headlabel=%q, label=\"%d\", penwidth=%d];\n",
			j.from, j.to, j.fromStrand.String(), j.toStrand.String(), n, min(n, 8))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func cmpStrand(a, b graph.Strand) int {
	switch {
	case a == b:
		return 0
	case a == graph.Reverse:
		return -1
	}
	return 1
}

func fmtLabel(b graph.Block, detailed bool) string {
	id := b.ID.String()
	if !detailed {
		return id
	}
	return fmt.Sprintf("%s\nlen: %d\ndepth: %d", id, len(b.Consensus), b.Depth())
}

// junctions counts every traversal of each oriented junction.
func junctions(g *graph.Graph) map[junction]int {
	out := make(map[junction]int)
	for _, p := range g.Paths() {
		es, err := g.Entries(p.Name)
		if err != nil {
			continue
		}
		n := len(es)
		last := n - 1
		if p.Circular {
			last = n
		}
		for i := 0; i < last; i++ {
			a, b := es[i], es[(i+1)%n]
			out[junction{from: a.Block, to: b.Block, fromStrand: a.Strand, toStrand: b.Strand}]++
		}
	}
	return out
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
