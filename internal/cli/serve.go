package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tiergraph/internal/server"
	"github.com/matzehuels/tiergraph/pkg/config"
	"github.com/matzehuels/tiergraph/pkg/observability"
	"github.com/matzehuels/tiergraph/pkg/pipeline"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parse, build and layout pipeline over HTTP",
		Long: `Serve the parse, build and layout pipeline over HTTP.

Endpoints:
  GET  /healthz
  POST /v1/parse    free text -> triples
  POST /v1/build    triples -> graph and build report
  POST /v1/layout   triples or graph -> positioned graph and artifacts

Request options start from the config file; the server shuts down
gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, noCache bool) error {
	runner, err := c.newRunner(cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	observability.SetServerHooks(&observability.LogServerHooks{Logger: c.Logger})
	srv := server.New(server.Config{
		Runner:       runner,
		Defaults:     pipeline.FromConfig(cfg),
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Logger:       c.Logger,
	})

	printInfo("Listening on %s", StyleHighlight.Render(cfg.Server.Addr))
	printDetail("cache: %s", cacheLabel(cfg.Cache, noCache))
	return server.ListenAndServe(ctx, cfg.Server.Addr, srv.Handler(), cfg.Server.ReadTimeout.Duration, cfg.Server.WriteTimeout.Duration)
}

// cacheLabel describes the cache a runner will use.
func cacheLabel(cfg config.Cache, noCache bool) string {
	switch {
	case noCache || cfg.Backend == config.BackendNone:
		return "disabled"
	case cfg.Backend == config.BackendRedis:
		return "redis " + cfg.RedisURL
	default:
		return "file " + cfg.Dir
	}
}
