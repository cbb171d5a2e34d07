package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pangraph/internal/api"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve marginalization over HTTP",
		Long: `Serve runs the HTTP API. Results are cached in the configured cache and,
when [store] mongo_uri is set, marginals can be persisted and fetched by id.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("addr") {
				addr = c.config.Server.Addr
			}
			runner, err := c.newRunner(ctx, noCache, true)
			if err != nil {
				return err
			}
			defer runner.Close(context.WithoutCancel(ctx))

			printInfo("Serving on %s", StyleHighlight.Render(addr))
			if runner.Store == nil {
				printDetail("No store configured; persistence disabled")
			}
			return api.New(runner, loggerFromContext(ctx)).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
