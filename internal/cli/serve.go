package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/distmeta/internal/metrics"
	"github.com/matzehuels/distmeta/internal/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve published descriptors as a PyPI-style JSON index",
		Long: `Serve the configured store over HTTP:

  GET  /pypi/{name}/json                 latest release, PyPI JSON API shape
  GET  /pypi/{name}/{version}/json       one release
  GET  /pypi/{name}/{version}/PKG-INFO   one release as PKG-INFO
  POST /descriptors                      publish a JSON descriptor
  GET  /metrics                          Prometheus metrics
  GET  /healthz

Point "distmeta check --index-url http://<addr>/pypi" at it to resolve
requirements against your own releases.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.app.Config
			if addr == "" {
				addr = cfg.Server.Addr
			}

			st, err := c.app.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			m := metrics.New()
			m.Install()

			srv := server.New(st, c.Logger, m)
			return srv.ListenAndServe(ctx, server.Options{
				Addr:            addr,
				ReadTimeout:     cfg.Server.ReadTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: from config, else :8080)")

	return cmd
}
