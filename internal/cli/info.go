package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pangraph/pkg/graph/transform"
	graphio "github.com/matzehuels/pangraph/pkg/io"
)

// infoCommand creates the info command.
func (c *CLI) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info [graph.json]",
		Short: "Summarize a pangenome graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graphio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			junctions, err := transform.Mergeable(g, g.PathNames())
			if err != nil {
				return err
			}

			st := g.Stats()
			fmt.Println(StyleTitle.Render(args[0]))
			printKeyValue("Blocks", fmt.Sprint(st.Blocks))
			printKeyValue("Nodes", fmt.Sprint(st.Nodes))
			printKeyValue("Strains", fmt.Sprint(st.Paths))
			printKeyValue("Consensus", fmt.Sprintf("%d bp", st.ConsensusLength))
			printKeyValue("Genomes", fmt.Sprintf("%d bp", st.GenomeLength))
			printKeyValue("Mergeable", fmt.Sprint(len(junctions)))
			printNewline()

			for _, p := range g.Paths() {
				topology := "linear"
				if p.Circular {
					topology = "circular"
				}
				printInfo("%s %s", StyleValue.Render(p.Name),
					StyleDim.Render(fmt.Sprintf("%d bp · %d nodes · %s", p.Length, len(p.Nodes), topology)))
			}
			if len(junctions) > 0 {
				printNewline()
				parts := make([]string, 0, min(len(junctions), 5))
				for _, j := range junctions[:min(len(junctions), 5)] {
					parts = append(parts, fmt.Sprint(j))
				}
				printWarning("Graph is not minimal: %s", strings.Join(parts, ", "))
			}
			return nil
		},
	}
}
