package cli

import (
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/pangraph/pkg/errors"
	"github.com/matzehuels/pangraph/pkg/graph/check"
	graphio "github.com/matzehuels/pangraph/pkg/io"
)

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	refs    string
	against string
	minimal bool
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	var opts checkOpts

	cmd := &cobra.Command{
		Use:   "check [graph.json]",
		Short: "Verify that a graph reconstructs its genomes",
		Long: `Check reconstructs the genome of every strain in the graph and compares it
with a reference: either a FASTA file of genomes (--refs) or the genomes of
the same strains in another graph (--against). With --minimal it also
verifies that no pair of blocks could still be merged.`,
		Example: `  pangraph check subset.json --against graph.json --minimal
  pangraph check graph.json --refs genomes.fa`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.refs, "refs", "", "FASTA file of reference genomes")
	cmd.Flags().StringVar(&opts.against, "against", "", "graph whose genomes are the reference")
	cmd.Flags().BoolVar(&opts.minimal, "minimal", false, "also require that no junction is mergeable")
	cmd.MarkFlagsMutuallyExclusive("refs", "against")
	cmd.MarkFlagsOneRequired("refs", "against", "minimal")

	return cmd
}

func (c *CLI) runCheck(cmd *cobra.Command, input string, opts checkOpts) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	g, err := graphio.ImportJSON(input)
	if err != nil {
		return err
	}

	switch {
	case opts.refs != "":
		refs, err := graphio.ImportReferences(opts.refs)
		if err != nil {
			return err
		}
		err = check.Check(g, refs)
		if err != nil {
			return report(err)
		}
	case opts.against != "":
		original, err := graphio.ImportJSON(opts.against)
		if err != nil {
			return err
		}
		if err := check.CheckAgainst(g, original); err != nil {
			return report(err)
		}
	}
	if opts.minimal {
		if err := check.Minimal(g); err != nil {
			return report(err)
		}
	}
	prog.done("checked graph", "strains", g.PathCount(), "minimal", opts.minimal)

	printSuccess("%d strains verified", g.PathCount())
	if opts.minimal {
		printDetail("No mergeable junctions")
	}
	return nil
}

// report prints a one-line summary of a verification failure and returns err.
func report(err error) error {
	if errs.Is(err, errs.ErrCodeReconstructionMismatch) {
		printError("Reconstruction mismatch")
	} else {
		printError("%s", errs.UserMessage(err))
	}
	return err
}
