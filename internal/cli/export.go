package cli

import (
	"github.com/spf13/cobra"

	graphio "github.com/matzehuels/pangraph/pkg/io"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output string
		blocks bool
	)

	cmd := &cobra.Command{
		Use:   "export [graph.json]",
		Short: "Write reconstructed genomes as FASTA",
		Long: `Export reconstructs the genome of every strain and writes them as FASTA.
With --blocks it writes the block consensus sequences instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graphio.ImportJSON(args[0])
			if err != nil {
				return err
			}

			recs := graphio.Consensus(g)
			if !blocks {
				if recs, err = graphio.Genomes(g); err != nil {
					return err
				}
			}

			if output == "" {
				return graphio.WriteFASTA(cmd.OutOrStdout(), recs)
			}
			if err := graphio.ExportFASTA(recs, output); err != nil {
				return err
			}
			printSuccess("Exported %d sequences", len(recs))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&blocks, "blocks", false, "export block consensus sequences instead of genomes")

	return cmd
}
