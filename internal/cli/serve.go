package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/readstack/pkg/cache"
	"github.com/matzehuels/readstack/pkg/config"
	"github.com/matzehuels/readstack/pkg/pipeline"
	"github.com/matzehuels/readstack/pkg/server"
)

// serveKeyPrefix namespaces the cache keys written by the figure server.
const serveKeyPrefix = "serve"

// serveCommand creates the serve command that runs the HTTP figure server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve figures of the configured tracks over HTTP",
		Long: `Serve figures of the configured tracks over HTTP.

The server draws the [[tracks]] of the config file for any region a client
asks for:

  GET /v1/figure?region=chr7:45232945-45240000&format=svg
  GET /v1/coverage?region=chr7:45232945-45240000
  GET /v1/layout?region=chr7:45232945-45240000&track=p6

Regions wider than server.max_region_width are rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from the config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe blocks until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv, closeFn, err := c.newServer(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer closeFn()

	printInfo("Serving %d tracks on %s", len(cfg.Tracks), StyleHighlight.Render(addr))
	return srv.ListenAndServe(ctx, addr)
}

// newServer wires a figure server to a runner with scoped cache keys.
func (c *CLI) newServer(ctx context.Context, cfg config.Config, noCache bool) (*server.Server, func() error, error) {
	cc, err := newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize cache: %w", err)
	}
	runner := pipeline.NewRunner(cc, cache.NewScopedKeyer(nil, serveKeyPrefix), c.Logger)

	srv, err := server.New(runner, cfg.PipelineOptions(""),
		server.WithLogger(c.Logger),
		server.WithRequestTimeout(cfg.Server.RequestTimeout.Duration),
	)
	if err != nil {
		runner.Close()
		return nil, nil, err
	}
	return srv, runner.Close, nil
}
