// Package io reads and writes pangenome graphs and genome sequences.
//
// # Overview
//
// Two formats are supported:
//
//   - Pangraph JSON, the graph interchange format produced by the graph
//     builder and consumed by every pangraph command
//   - FASTA, for reference genomes and for exporting reconstructed genomes
//     or block consensus sequences
//
// # JSON Format
//
// A graph has three top-level arrays:
//
//	{
//	  "paths": [
//	    {"name": "strain-a", "nodes": [1, 2], "tot_len": 12, "circular": true, "offset": 3}
//	  ],
//	  "blocks": [
//	    {
//	      "id": 7,
//	      "consensus": "ACGTAC",
//	      "alignments": {
//	        "1": {"subs": [{"pos": 2, "alt": "T"}], "dels": [], "inss": []}
//	      }
//	    }
//	  ],
//	  "nodes": [
//	    {"id": 1, "block_id": 7, "path": "strain-a", "strand": true, "position": [9, 3]}
//	  ]
//	}
//
// Node identifiers key the alignment objects as decimal strings. "strand" is
// true for the forward strand. "offset" is optional and only valid on
// circular paths.
//
// "position" holds the genome interval a node covers, end exclusive. An
// interval that wraps the origin of a circular genome has start > end.
// Positions are written for downstream tools and ignored on read; they are
// always recomputed from the graph.
//
// # Import
//
// Use [ImportJSON] to read a graph from a file path, [ReadJSON] to read from
// any io.Reader, or [UnmarshalGraph] for bytes:
//
//	g, err := io.ImportJSON("graph.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Syntax errors and values the graph model cannot represent fail with
// INVALID_FORMAT. Structurally invalid graphs fail with MALFORMED_GRAPH from
// [graph.New].
//
// # Export
//
// Use [ExportJSON], [WriteJSON] or [MarshalGraph]. Output is deterministic:
// paths by name, blocks and nodes by identifier. Importing an exported graph
// yields an identical graph.
//
// # FASTA
//
// [ReadFASTA] accepts multi-record files with sequences wrapped at any width.
// The record name is the header up to the first whitespace. [WriteFASTA]
// wraps sequences at 80 columns. [Genomes] and [Consensus] turn a graph into
// records for export.
package io
