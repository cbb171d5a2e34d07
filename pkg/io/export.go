package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/matzehuels/pangraph/pkg/graph"
)

type pangraph struct {
	Paths  []path  `json:"paths"`
	Blocks []block `json:"blocks"`
	Nodes  []node  `json:"nodes"`
}

type path struct {
	Name     string   `json:"name"`
	Nodes    []uint64 `json:"nodes"`
	TotLen   int      `json:"tot_len"`
	Circular bool     `json:"circular"`
	Offset   int      `json:"offset,omitempty"`
}

type block struct {
	ID         uint64           `json:"id"`
	Consensus  string           `json:"consensus"`
	Alignments map[string]edits `json:"alignments"`
}

type edits struct {
	Subs []sub `json:"subs"`
	Dels []del `json:"dels"`
	Inss []ins `json:"inss"`
}

type sub struct {
	Pos int    `json:"pos"`
	Alt string `json:"alt"`
}

type del struct {
	Pos int `json:"pos"`
	Len int `json:"len"`
}

type ins struct {
	Pos int    `json:"pos"`
	Seq string `json:"seq"`
}

type node struct {
	ID       uint64 `json:"id"`
	BlockID  uint64 `json:"block_id"`
	Path     string `json:"path"`
	Strand   bool   `json:"strand"`
	Position [2]int `json:"position"`
}

// WriteJSON encodes g as pangraph JSON and writes it to w.
// The output can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(g *graph.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fromGraph(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalGraph encodes g as compact pangraph JSON.
func MarshalGraph(g *graph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(fromGraph(g)); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportJSON writes g to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fromGraph(g *graph.Graph) pangraph {
	out := pangraph{
		Paths:  make([]path, 0, g.PathCount()),
		Blocks: make([]block, 0, g.BlockCount()),
		Nodes:  make([]node, 0, g.NodeCount()),
	}

	positions := make(map[graph.NodeID][2]int, g.NodeCount())
	for _, p := range g.Paths() {
		ids := make([]uint64, len(p.Nodes))
		coord := 0
		for i, id := range p.Nodes {
			ids[i] = uint64(id)
			l, _ := g.CopyLen(id)
			positions[id] = interval(coord, l, p)
			coord += l
		}
		out.Paths = append(out.Paths, path{Name: p.Name, Nodes: ids, TotLen: p.Length, Circular: p.Circular, Offset: p.Offset})
	}

	for _, b := range g.Blocks() {
		aln := make(map[string]edits, len(b.Alignments))
		for id, e := range b.Alignments {
			aln[strconv.FormatUint(uint64(id), 10)] = toJSONEdits(e)
		}
		out.Blocks = append(out.Blocks, block{ID: uint64(b.ID), Consensus: b.Consensus, Alignments: aln})
	}

	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, node{
			ID:       uint64(n.ID),
			BlockID:  uint64(n.Block),
			Path:     n.Path,
			Strand:   bool(n.Strand),
			Position: positions[n.ID],
		})
	}
	return out
}

// interval maps a node starting at coord of the node concatenation to its
// genome interval.
func interval(coord, length int, p graph.Path) [2]int {
	if p.Length == 0 {
		return [2]int{0, 0}
	}
	start := ((coord-p.Offset)%p.Length + p.Length) % p.Length
	end := start + length
	if end > p.Length {
		end -= p.Length
	}
	return [2]int{start, end}
}

func toJSONEdits(e graph.Edits) edits {
	out := edits{
		Subs: make([]sub, len(e.Subs)),
		Dels: make([]del, len(e.Dels)),
		Inss: make([]ins, len(e.Inss)),
	}
	for i, s := range e.Subs {
		out.Subs[i] = sub{Pos: s.Pos, Alt: string(s.Alt)}
	}
	for i, d := range e.Dels {
		out.Dels[i] = del{Pos: d.Pos, Len: d.Len}
	}
	for i, in := range e.Inss {
		out.Inss[i] = ins{Pos: in.Pos, Seq: in.Seq}
	}
	return out
}
