package cli

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/pangraph/pkg/errors"
	"github.com/matzehuels/pangraph/pkg/graph"
	"github.com/matzehuels/pangraph/pkg/graph/check"
	graphio "github.com/matzehuels/pangraph/pkg/io"
	"github.com/matzehuels/pangraph/pkg/pipeline"
)

// marginalizeOpts holds the command-line flags for the marginalize command.
type marginalizeOpts struct {
	output      string
	strains     string
	refs        string // FASTA file of reference genomes to verify against
	noCheck     bool
	noCache     bool
	persist     bool
	interactive bool
	workers     int
	seed        int64
}

// marginalizeCommand creates the marginalize command.
func (c *CLI) marginalizeCommand() *cobra.Command {
	var opts marginalizeOpts

	cmd := &cobra.Command{
		Use:   "marginalize [graph.json]",
		Short: "Restrict a pangenome graph to a subset of strains",
		Long: `Marginalize keeps only the paths of the selected strains and merges every
chain of blocks that the selected strains always traverse together.

The result is verified against the input graph unless --no-check is given.`,
		Example: `  pangraph marginalize graph.json -s strain-a,strain-b
  pangraph marginalize graph.json --interactive -o subset.json
  pangraph marginalize graph.json -s strain-a --refs genomes.fa`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMarginalize(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <input>.marginal.json)")
	cmd.Flags().StringVarP(&opts.strains, "strains", "s", "", "strains to keep (comma-separated)")
	cmd.Flags().StringVar(&opts.refs, "refs", "", "verify against reference genomes in a FASTA file")
	cmd.Flags().BoolVar(&opts.noCheck, "no-check", false, "skip verification")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.persist, "store", false, "save the result to the configured store")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick strains interactively")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "parallel contraction workers (default from config, 0 = all CPUs)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "accepted for compatibility; marginalization is deterministic")
	cmd.MarkFlagsMutuallyExclusive("strains", "interactive")
	cmd.MarkFlagsMutuallyExclusive("refs", "no-check")

	return cmd
}

func (c *CLI) runMarginalize(cmd *cobra.Command, input string, opts marginalizeOpts) error {
	runID := uuid.NewString()
	ctx, logger := withRun(cmd.Context(), runID)
	if cmd.Flags().Changed("seed") {
		logger.Debug("seed ignored", "seed", opts.seed)
	}
	if !cmd.Flags().Changed("workers") {
		opts.workers = c.config.Marginalize.Workers
	}
	doCheck := c.config.Marginalize.Check && !opts.noCheck

	runner, err := c.newRunner(ctx, opts.noCache, opts.persist)
	if err != nil {
		return err
	}
	defer runner.Close(context.WithoutCancel(ctx))
	if opts.persist && runner.Store == nil {
		return errs.New(errs.ErrCodeUnsupported, "--store needs [store] mongo_uri in the config file")
	}

	src, hash, err := runner.Load(ctx, input)
	if err != nil {
		return err
	}

	strains := parseStrains(opts.strains)
	if opts.interactive {
		if strains, err = pickStrains(ctx, src); err != nil {
			return err
		}
	}
	if len(strains) == 0 {
		return errs.New(errs.ErrCodeInvalidStrainSet, "no strains given (use --strains or --interactive)")
	}

	popts := pipeline.Options{
		Strains: strains,
		Workers: opts.workers,
		TTL:     c.config.Cache.TTL.Duration,
		Logger:  logger,
	}
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Marginalizing...")
	spinner.Start()
	out, res, hit, err := runner.MarginalizeWithCacheInfo(ctx, src, hash, popts)
	if err != nil {
		spinner.StopWithError("Marginalization failed")
		return err
	}
	spinner.Stop()
	prog.done("marginalized graph",
		"strains", len(popts.Strains),
		"blocks_in", res.BlocksTouched,
		"blocks_out", res.BlocksOut,
		"cached", hit)

	if err := verify(ctx, runner, out, src, hash, opts.refs, doCheck, popts); err != nil {
		printError("Verification failed")
		return err
	}

	if opts.output == "" {
		opts.output = outputPath(input, ".marginal.json")
	}
	if err := graphio.ExportJSON(out, opts.output); err != nil {
		return err
	}

	printSuccess("Marginalized %d of %d strains", len(popts.Strains), src.PathCount())
	printMarginal(res, hit)
	printFile(opts.output)

	if opts.persist {
		result := &pipeline.Result{
			RunID:      runID,
			Source:     src,
			SourceHash: hash,
			Graph:      out,
			Transform:  res,
		}
		if err := runner.Persist(ctx, result, popts); err != nil {
			return err
		}
		printDetail("Stored as %s", result.RunID)
	}

	printNewline()
	printNextStep("Render", "pangraph render "+opts.output+" -f svg")
	return nil
}

// verify checks out against FASTA references when refs is set, and against
// the source graph otherwise.
func verify(ctx context.Context, runner *pipeline.Runner, out, src *graph.Graph, hash, refs string, enabled bool, opts pipeline.Options) error {
	if refs != "" {
		ref, err := graphio.ImportReferences(refs)
		if err != nil {
			return err
		}
		start := time.Now()
		if err := check.Check(out, ref); err != nil {
			return err
		}
		loggerFromContext(ctx).Debug("verified against references", "file", refs, "duration", time.Since(start))
		return check.Minimal(out)
	}
	if !enabled {
		printWarning("Skipped verification")
		return nil
	}
	_, err := runner.CheckWithCacheInfo(ctx, out, src, hash, opts)
	return err
}
