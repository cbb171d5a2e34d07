package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	graphio "github.com/matzehuels/pangraph/pkg/io"
	"github.com/matzehuels/pangraph/pkg/render/nodelink"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string
	format   string
	detailed bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Draw the block graph as DOT or SVG",
		Long: `Render draws every block as a node and every junction between consecutive
blocks of a strain as an edge, weighted by the number of strains using it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			g, err := graphio.ImportJSON(args[0])
			if err != nil {
				return err
			}

			dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.detailed})
			data := []byte(dot)
			if opts.format == formatSVG {
				spinner := newSpinnerWithContext(cmd.Context(), "Rendering...")
				spinner.Start()
				data, err = nodelink.RenderSVG(cmd.Context(), dot)
				if err != nil {
					spinner.StopWithError("Rendering failed")
					return err
				}
				spinner.Stop()
			}

			if opts.output == "" && opts.format == formatDOT {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if opts.output == "" {
				opts.output = outputPath(args[0], "."+opts.format)
			}
			if err := os.WriteFile(opts.output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Rendered %d blocks", g.BlockCount())
			printFile(opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <input>.svg, stdout for dot)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label blocks with length and depth")

	return cmd
}

// validateFormat checks that format is a supported render format.
func validateFormat(format string) error {
	switch format {
	case formatDOT, formatSVG:
		return nil
	}
	return fmt.Errorf("invalid format: %s (must be 'svg' or 'dot')", format)
}
