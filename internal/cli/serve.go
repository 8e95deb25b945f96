package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/collatz/pkg/observability"
	"github.com/matzehuels/collatz/pkg/pipeline"
	"github.com/matzehuels/collatz/pkg/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		maxDepth int
		noCache  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts and renderings over HTTP",
		Long: `Start an HTTP server exposing the pipeline:

  GET /api/v1/sequence/{number}
  GET /api/v1/inverse/{number}?depth=n
  GET /healthz
  GET /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			hooks := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
			observability.SetPipelineHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetHTTPHooks(hooks)
			defer observability.Reset()

			var defaults pipeline.Options
			c.cfg.ApplyTo(&defaults)
			defaults.Formats = nil // chosen per request

			srv := server.New(runner, logger, server.Options{
				Defaults:     defaults,
				DefaultDepth: c.cfg.Inverse.Depth,
				MaxDepth:     maxDepth,
			})
			logger.Debug("starting server", "cache", c.cfg.Cache.Backend, "max_depth", maxDepth)
			return srv.ListenAndServe(ctx, addr, c.cfg.Server.ShutdownTimeout.Duration)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	cmd.Flags().IntVar(&maxDepth, "max-depth", server.DefaultMaxDepth, "largest inverse tree depth a request may ask for")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the cache")
	return cmd
}
