package io

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	errs "github.com/matzehuels/pangraph/pkg/errors"
	"github.com/matzehuels/pangraph/pkg/graph"
)

// ErrNoPaths is returned for a document that describes no genome.
var ErrNoPaths = errors.New("graph has no paths")

// ReadJSON decodes a pangraph JSON document from r into a Graph.
//
// ReadJSON returns an error if:
//   - The JSON is malformed or has fields of the wrong type (INVALID_FORMAT)
//   - An alignment key is not a node identifier (INVALID_FORMAT)
//   - A substitution "alt" is not exactly one base (INVALID_FORMAT)
//   - The document has no paths, including a bare null (MALFORMED_GRAPH)
//   - The graph violates a structural invariant (MALFORMED_GRAPH)
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*graph.Graph, error) {
	var data pangraph
	dec := json.NewDecoder(r)
	if err := dec.Decode(&data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode pangraph json")
	}
	return data.toGraph()
}

// UnmarshalGraph decodes a graph from JSON bytes.
func UnmarshalGraph(data []byte) (*graph.Graph, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads a pangraph JSON file at path and returns the decoded graph.
// A missing file fails with FILE_NOT_FOUND.
func ImportJSON(path string) (*graph.Graph, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func open(path string) (*os.File, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func (p pangraph) toGraph() (*graph.Graph, error) {
	if len(p.Paths) == 0 {
		return nil, errs.Wrap(errs.ErrCodeMalformedGraph, ErrNoPaths, "pangraph json")
	}
	blocks := make([]graph.Block, len(p.Blocks))
	for i, b := range p.Blocks {
		out := graph.Block{
			ID:         graph.BlockID(b.ID),
			Consensus:  b.Consensus,
			Alignments: make(map[graph.NodeID]graph.Edits, len(b.Alignments)),
		}
		for key, e := range b.Alignments {
			id, err := strconv.ParseUint(key, 10, 64)
			if err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "block %d alignment key %q", b.ID, key)
			}
			edits, err := e.toEdits()
			if err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "block %d node %d", b.ID, id)
			}
			out.Alignments[graph.NodeID(id)] = edits
		}
		blocks[i] = out
	}

	nodes := make([]graph.Node, len(p.Nodes))
	for i, n := range p.Nodes {
		nodes[i] = graph.Node{
			ID:     graph.NodeID(n.ID),
			Block:  graph.BlockID(n.BlockID),
			Path:   n.Path,
			Strand: graph.Strand(n.Strand),
		}
	}

	paths := make([]graph.Path, len(p.Paths))
	for i, pp := range p.Paths {
		ids := make([]graph.NodeID, len(pp.Nodes))
		for j, id := range pp.Nodes {
			ids[j] = graph.NodeID(id)
		}
		paths[i] = graph.Path{Name: pp.Name, Nodes: ids, Length: pp.TotLen, Circular: pp.Circular, Offset: pp.Offset}
	}
	return graph.New(blocks, nodes, paths)
}

func (e edits) toEdits() (graph.Edits, error) {
	var out graph.Edits
	for _, s := range e.Subs {
		if len(s.Alt) != 1 {
			return graph.Edits{}, fmt.Errorf("substitution at %d: alt %q is not a single base", s.Pos, s.Alt)
		}
		out.Subs = append(out.Subs, graph.Sub{Pos: s.Pos, Alt: s.Alt[0]})
	}
	for _, d := range e.Dels {
		out.Dels = append(out.Dels, graph.Del{Pos: d.Pos, Len: d.Len})
	}
	for _, in := range e.Inss {
		out.Inss = append(out.Inss, graph.Ins{Pos: in.Pos, Seq: in.Seq})
	}
	return out, nil
}
