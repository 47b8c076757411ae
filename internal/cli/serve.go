package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/handscript/internal/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API.

Routes:
  GET  /healthz     status and configuration summary
  POST /v1/style    {"prompt": "..."}
  POST /v1/plan     text, pages, base64 data or a multipart "file"
  POST /v1/render   the same inputs or a saved "plan", plus formats and seed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.Config.Server.Addr = addr
			}
			runner := c.newRunner(cmd.Context(), noCache)
			defer runner.Close()

			c.Logger.Info("starting server", "ai", runner.AI.Provider(), "cache", c.Config.Cache.Backend, "history", c.Config.History.Backend)
			return server.New(runner, c.Config, c.Logger).ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the cache")

	return cmd
}
