package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/pangraph/pkg/cache"
	errs "github.com/matzehuels/pangraph/pkg/errors"
	"github.com/matzehuels/pangraph/pkg/graph"
	"github.com/matzehuels/pangraph/pkg/graph/check"
	"github.com/matzehuels/pangraph/pkg/graph/transform"
	graphio "github.com/matzehuels/pangraph/pkg/io"
	"github.com/matzehuels/pangraph/pkg/observability"
	"github.com/matzehuels/pangraph/pkg/store"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching and verification behave the same.
//
// The Runner holds no per-run state. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store // optional; required when Options.Persist is set
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → marginalize → check → persist pipeline on
// a pangraph JSON document.
func (r *Runner) Execute(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	res := &Result{RunID: uuid.NewString()}
	logger := r.logger(opts).With("run", res.RunID[:8])
	opts.Logger = logger

	// Stage 1: Load
	loadStart := time.Now()
	g, hash, err := r.decode(ctx, "request", data)
	if err != nil {
		return nil, err
	}
	res.Source = g
	res.SourceHash = hash
	res.Stats.LoadTime = time.Since(loadStart)
	logger.Debug("loaded graph", "blocks", g.BlockCount(), "paths", g.PathCount(), "duration", res.Stats.LoadTime)

	// Stage 2: Marginalize
	mStart := time.Now()
	out, tr, hit, err := r.MarginalizeWithCacheInfo(ctx, g, hash, opts)
	if err != nil {
		return nil, err
	}
	res.Graph = out
	res.Transform = tr
	res.CacheInfo.MarginalHit = hit
	res.Stats.MarginalizeTime = time.Since(mStart)
	logger.Info("marginalized graph",
		"strains", len(opts.Strains),
		"blocks_in", tr.BlocksTouched,
		"blocks_out", tr.BlocksOut,
		"cached", hit,
		"duration", res.Stats.MarginalizeTime)

	// Stage 3: Check
	if opts.Check {
		cStart := time.Now()
		checkHit, err := r.CheckWithCacheInfo(ctx, out, g, hash, opts)
		if err != nil {
			return nil, err
		}
		res.Checked = true
		res.CacheInfo.CheckHit = checkHit
		res.Stats.CheckTime = time.Since(cStart)
		logger.Info("verified genomes", "strains", len(opts.Strains), "cached", checkHit, "duration", res.Stats.CheckTime)
	}

	// Stage 4: Persist
	if opts.Persist {
		if err := r.Persist(ctx, res, opts); err != nil {
			return nil, err
		}
		res.Persisted = true
	}
	return res, nil
}

// Load reads and decodes a pangraph JSON file, returning the graph and the
// SHA-256 of the file contents.
func (r *Runner) Load(ctx context.Context, path string) (*graph.Graph, string, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, "", errs.Wrap(errs.ErrCodeFileNotFound, err, "read %s", path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return r.decode(ctx, path, data)
}

func (r *Runner) decode(ctx context.Context, source string, data []byte) (*graph.Graph, string, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnLoadStart(ctx, source)
	g, err := graphio.UnmarshalGraph(data)
	blocks := 0
	if g != nil {
		blocks = g.BlockCount()
	}
	hooks.OnLoadComplete(ctx, source, blocks, time.Since(start), err)
	if err != nil {
		return nil, "", fmt.Errorf("load %s: %w", source, err)
	}
	return g, cache.Hash(data), nil
}

// cachedMarginal is the cache representation of a marginalization.
type cachedMarginal struct {
	Graph  json.RawMessage  `json:"graph"`
	Result transform.Result `json:"result"`
}

// MarginalizeWithCacheInfo marginalizes g with caching and returns cache hit
// info. graphHash identifies g's content; an empty hash disables caching.
func (r *Runner) MarginalizeWithCacheInfo(ctx context.Context, g *graph.Graph, graphHash string, opts Options) (*graph.Graph, transform.Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, transform.Result{}, false, err
	}
	logger := r.logger(opts)
	hooks := observability.Cache()

	key := ""
	if graphHash != "" {
		key = r.Keyer.MarginalKey(graphHash, opts.Strains)
	}
	if key != "" && !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			logger.Warn("cache read failed", "error", err)
		}
		if err == nil && hit {
			var entry cachedMarginal
			if err := json.Unmarshal(data, &entry); err == nil {
				if out, err := graphio.UnmarshalGraph(entry.Graph); err == nil {
					hooks.OnCacheHit(ctx, "marginal")
					return out, entry.Result, true, nil
				}
			}
			logger.Debug("discarding unreadable cache entry", "key", key)
		}
		hooks.OnCacheMiss(ctx, "marginal")
	}

	out, res, err := r.marginalize(ctx, g, opts)
	if err != nil {
		return nil, transform.Result{}, false, err
	}

	if key != "" {
		if raw, err := graphio.MarshalGraph(out); err == nil {
			if data, err := json.Marshal(cachedMarginal{Graph: raw, Result: res}); err == nil {
				if err := r.Cache.Set(ctx, key, data, opts.TTL); err != nil {
					logger.Warn("cache write failed", "error", err)
				} else {
					hooks.OnCacheSet(ctx, "marginal", len(data))
				}
			}
		}
	}
	return out, res, false, nil
}

// Marginalize is a convenience wrapper that calls MarginalizeWithCacheInfo
// without caching.
func (r *Runner) Marginalize(ctx context.Context, g *graph.Graph, opts Options) (*graph.Graph, transform.Result, error) {
	out, res, _, err := r.MarginalizeWithCacheInfo(ctx, g, "", opts)
	return out, res, err
}

func (r *Runner) marginalize(ctx context.Context, g *graph.Graph, opts Options) (*graph.Graph, transform.Result, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnMarginalizeStart(ctx, opts.Strains, g.BlockCount())
	out, res, err := transform.MarginalizeWithOptions(g, opts.Strains, transform.Options{Workers: opts.Workers})
	blocks := 0
	if out != nil {
		blocks = out.BlockCount()
	}
	hooks.OnMarginalizeComplete(ctx, opts.Strains, blocks, time.Since(start), err)
	return out, res, err
}

// CheckWithCacheInfo verifies marginal against original, skipping the work
// when the same pair already passed. originalHash identifies original's
// content; an empty hash disables caching.
func (r *Runner) CheckWithCacheInfo(ctx context.Context, marginal, original *graph.Graph, originalHash string, opts Options) (bool, error) {
	key := ""
	if originalHash != "" {
		if raw, err := graphio.MarshalGraph(marginal); err == nil {
			key = r.Keyer.CheckKey(cache.Hash(raw), originalHash)
		}
	}
	if key != "" && !opts.Refresh {
		if _, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "check")
			return true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "check")
	}

	if err := r.Check(ctx, marginal, original); err != nil {
		return false, err
	}
	if key != "" {
		ttl := opts.TTL
		if ttl <= 0 {
			ttl = DefaultTTL
		}
		if err := r.Cache.Set(ctx, key, []byte("ok"), ttl); err == nil {
			observability.Cache().OnCacheSet(ctx, "check", 2)
		}
	}
	return false, nil
}

// Check verifies that every path of marginal reconstructs the genome of
// the same strain in original and that no junction is left to merge.
func (r *Runner) Check(ctx context.Context, marginal, original *graph.Graph) error {
	start := time.Now()
	err := check.CheckAgainst(marginal, original)
	if err == nil {
		err = check.Minimal(marginal)
	}
	observability.Pipeline().OnCheckComplete(ctx, marginal.PathNames(), time.Since(start), err)
	return err
}

// Persist saves the marginal of res to the runner's store, retrying
// transient failures.
func (r *Runner) Persist(ctx context.Context, res *Result, opts Options) error {
	if r.Store == nil {
		return errs.New(errs.ErrCodeUnsupported, "no store configured")
	}
	raw, err := graphio.MarshalGraph(res.Graph)
	if err != nil {
		return err
	}
	rec := store.Record{
		ID:         res.RunID,
		SourceHash: res.SourceHash,
		Strains:    res.Graph.PathNames(),
		Graph:      raw,
		Blocks:     res.Graph.BlockCount(),
		CreatedAt:  time.Now().UTC(),
	}
	err = cache.RetryWithBackoff(ctx, func() error { return r.Store.Save(ctx, rec) })
	if err != nil {
		return fmt.Errorf("persist %s: %w", rec.ID, err)
	}
	r.logger(opts).Info("saved marginal", "id", rec.ID)
	return nil
}

// Close releases resources held by the runner.
func (r *Runner) Close(ctx context.Context) error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Store != nil {
		if serr := r.Store.Close(ctx); err == nil {
			err = serr
		}
	}
	return err
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
