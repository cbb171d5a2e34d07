// Package pkg provides the core libraries for pangraph.
//
// # Overview
//
// Pangraph reduces pangenome alignment graphs to a chosen subset of strains.
// Marginalizing a graph keeps only the paths of the selected strains and
// merges every run of blocks those strains always traverse together, so the
// result is the smallest graph that still reconstructs each selected genome
// base for base. The pkg directory is organized into these areas:
//
//  1. [graph] - The graph model (blocks, nodes, paths, edits)
//  2. [graph/transform] - Marginalization
//  3. [graph/check] - Genome reconstruction checks
//  4. [io] - Pangraph JSON and FASTA
//  5. [pipeline] - Orchestration (load → marginalize → check → persist)
//  6. [cache], [store] - Caching and durable storage of marginals
//
// # Architecture
//
// The typical data flow:
//
//	Pangraph JSON
//	     ↓
//	[io] package (decode + validate)
//	     ↓
//	[graph/transform] package (marginalize to a strain subset)
//	     ↓
//	[graph/check] package (verify every genome still reconstructs)
//	     ↓
//	JSON / FASTA / SVG output
//
// # Quick Start
//
//	g, _ := io.ImportJSON("graph.json")
//	out, err := transform.Marginalize(g, []string{"strain-a", "strain-b"})
//	if err != nil {
//	    return err
//	}
//	if err := check.CheckAgainst(out, g); err != nil {
//	    return err
//	}
//	_ = io.ExportJSON(out, "graph.marginal.json")
//
// # Main Packages
//
// [graph/transform] - Strain projection and block merging. Junctions between
// blocks are merged when every selected strain crosses them the same way;
// chains of such junctions collapse into one block.
//
// [graph/check] - Stateless consistency checker. Compares each path's
// reconstructed genome with a reference and reports the first divergent
// position.
//
// [render/nodelink] - Graphviz diagrams of the block adjacency graph.
//
// [pipeline] - The runner shared by the CLI and the HTTP API so caching,
// verification and persistence behave the same on both entry points.
//
// [cache] - File, Redis and null caches for marginalization results.
//
// [store] - MongoDB and in-memory storage for persisted marginals.
//
// [observability] - Hooks for metrics and tracing backends.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/graph/...              # Specific package
//	go test -run Example                 # Examples only
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/pangraph/pkg/graph
// [graph/transform]: https://pkg.go.dev/github.com/matzehuels/pangraph/pkg/graph/transform
// [graph/check]: https://pkg.go.dev/github.com/matzehuels/pangraph/pkg/graph/check
// [io]: https://pkg.go.dev/github.com/matzehuels/pangraph/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/pangraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/pangraph/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/pangraph/pkg/store
// [observability]: https://pkg.go.dev/github.com/matzehuels/pangraph/pkg/observability
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/pangraph/pkg/render/nodelink
package pkg
