package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/readstack/pkg/cache"
	"github.com/matzehuels/readstack/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the feature, layout and figure cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			cc, err := newCache(cmd.Context(), cfg.Cache, false)
			if err != nil {
				return err
			}
			defer cc.Close()

			clearer, ok := cc.(cache.Clearer)
			if !ok {
				printInfo("Cache is disabled")
				return nil
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared the %s cache", cfg.Cache.Backend)
			if loc, err := cacheLocation(cfg.Cache); err == nil {
				printDetail("Location: %s", loc)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			loc, err := cacheLocation(cfg.Cache)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(stdout, loc)
			return nil
		},
	}
}

// cacheLocation describes where the configured backend stores entries:
// a directory for the file cache, a redis:// address for Redis.
func cacheLocation(s config.CacheSettings) (string, error) {
	switch s.Backend {
	case config.BackendRedis:
		return fmt.Sprintf("redis://%s/%d", s.RedisAddr, s.RedisDB), nil
	case config.BackendNone:
		return "", fmt.Errorf("cache backend is %q", config.BackendNone)
	}
	if s.Dir != "" {
		return s.Dir, nil
	}
	return cacheDir()
}
