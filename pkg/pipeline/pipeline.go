// Package pipeline runs marginalization end to end for the CLI and the API.
//
// A run has four stages:
//
//  1. Load: decode a pangraph JSON document and hash its bytes
//  2. Marginalize: restrict the graph to the requested strains, served from
//     the cache when the same graph and strain set were seen before
//  3. Check: verify every retained genome against the input graph
//  4. Persist: optionally save the marginal to a [store.Store]
//
// Centralizing this logic gives the CLI and the HTTP server identical
// caching, logging and verification behavior.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, data, pipeline.Options{
//	    Strains: []string{"strain-a", "strain-b"},
//	    Check:   true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Graph.BlockCount())
//
// Stages can also be run on their own with [Runner.Load],
// [Runner.MarginalizeWithCacheInfo], [Runner.Check] and [Runner.Persist].
package pipeline

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/pangraph/pkg/errors"
	"github.com/matzehuels/pangraph/pkg/graph"
	"github.com/matzehuels/pangraph/pkg/graph/transform"
)

// DefaultTTL is how long marginals stay cached.
const DefaultTTL = 7 * 24 * time.Hour

// Options configures a pipeline run.
type Options struct {
	// Strains is the strain subset to keep. Required.
	Strains []string

	// Workers bounds parallel chain contraction. Zero uses all CPUs.
	Workers int

	// Check verifies the marginal against the input graph.
	Check bool

	// Refresh skips cache reads; results are still written.
	Refresh bool

	// Persist saves the marginal to the runner's store.
	Persist bool

	// TTL overrides DefaultTTL for cache writes.
	TTL time.Duration

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger
}

// ValidateAndSetDefaults checks strain names and fills in defaults. Strain
// names are sorted and deduplicated so equivalent requests share cache
// entries and log lines.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Strains) == 0 {
		return errs.Wrap(errs.ErrCodeInvalidStrainSet, transform.ErrEmptyStrainSet, "no strains requested")
	}
	for _, s := range o.Strains {
		if err := errs.ValidateStrainName(s); err != nil {
			return err
		}
	}
	o.Strains = slices.Clone(o.Strains)
	slices.Sort(o.Strains)
	o.Strains = slices.Compact(o.Strains)
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	return nil
}

// Result is the outcome of [Runner.Execute].
type Result struct {
	// RunID identifies the run in logs and in the store.
	RunID string

	// Source is the decoded input graph.
	Source *graph.Graph

	// SourceHash is the SHA-256 of the input bytes.
	SourceHash string

	// Graph is the marginal graph.
	Graph *graph.Graph

	// Transform holds reduction metrics.
	Transform transform.Result

	// Checked reports that the consistency check ran and passed.
	Checked bool

	// Persisted reports that the marginal was saved to the store.
	Persisted bool

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats records stage durations.
type Stats struct {
	LoadTime        time.Duration
	MarginalizeTime time.Duration
	CheckTime       time.Duration
}

// CacheInfo reports which stages were served from the cache.
type CacheInfo struct {
	MarginalHit bool
	CheckHit    bool
}
