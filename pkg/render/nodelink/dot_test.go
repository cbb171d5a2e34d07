package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/pangraph/pkg/graph"
)

func sample(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder().
		AddBlock(1, "AAAC").
		AddBlock(2, "GGGT").
		AddBlock(3, "TT").
		AddPath("y", true)
	for _, s := range []string{"x", "y"} {
		b.Visit(s, 1, graph.Forward, graph.Edits{})
		b.Visit(s, 2, graph.Forward, graph.Edits{})
	}
	b.Visit("y", 3, graph.Reverse, graph.Edits{})
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(t), Options{})

	for _, want := range []string{
		"digraph G {",
		`"b1" [label="1"];`,
		`"b3" [label="3", style="rounded,filled,dashed", fillcolor=lightgrey];`,
		`"b1" -> "b2" [taillabel="+", headlabel="+", label="2", penwidth=2];`,
		`"b2" -> "b3" [taillabel="+", headlabel="-", label="1", penwidth=1];`,
		`"b3" -> "b1" [taillabel="-", headlabel="+", label="1", penwidth=1];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"b2" -> "b1"`) {
		t.Errorf("linear path x must not wrap:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sample(t), Options{Detailed: true})
	if !strings.Contains(dot, `label="2\nlen: 4\ndepth: 2"`) {
		t.Errorf("ToDOT() missing detailed label:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %q, want %q", got, want)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("normalizeViewBox() without viewBox = %q", got)
	}
}
