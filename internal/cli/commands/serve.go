package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/varcat/internal/site"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog with live reload",
		Long: `Build the catalog in memory and serve it over HTTP. Input changes trigger a
rebuild and reload connected browsers.

JSON endpoints:
  /api/datasets                        dataset listing
  /api/datasets/{id}                   one dataset
  /api/datasets/{id}/groups/{name}     members of a group
  /api/provenance                      input digests`,
		Example: `  varcat serve
  varcat serve --port 9000 --no-watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			if err := cmdCtx.Cfg.ValidateDirectories(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := site.NewSite(cmdCtx.Generator(), site.SiteOptions{LiveReload: !noWatch})
			srv := site.NewServer(s, site.ServerConfig{
				Port:  cmdCtx.Cfg.Serve.Port,
				Watch: !noWatch,
			})
			cmdCtx.Renderer.Muted("Press Ctrl+C to stop")
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().Int("port", 0, "Port to listen on (default 8080)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Disable rebuilds on input changes")
	return cmd
}
