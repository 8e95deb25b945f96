package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/collatz/pkg/cache"
	"github.com/matzehuels/collatz/pkg/config"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the pipeline cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

// cacheClearCommand empties the configured backend. For Redis only keys
// under the configured prefix are removed.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached graphs, layouts and renderings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Cache.Backend == config.BackendNone {
				printWarning("Caching is disabled (cache.backend = %q)", config.BackendNone)
				return nil
			}

			backend, _, err := c.newCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer backend.Close()

			fc, isFile := backend.(*cache.FileCache)
			entries := 0
			if isFile {
				if entries, _, err = fc.Stats(); err == nil && entries == 0 {
					printInfo("Cache is empty")
					printDetail("Directory: %s", fc.Dir())
					return nil
				}
			}

			clearer, ok := backend.(cache.Clearer)
			if !ok {
				return fmt.Errorf("the %s cache backend cannot be cleared", c.cfg.Cache.Backend)
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			if isFile {
				printSuccess("Cleared %d cached entries", entries)
				printDetail("Directory: %s", fc.Dir())
			} else {
				printSuccess("Cleared cached entries")
				printDetail("Redis %s, prefix %q", c.cfg.Cache.RedisAddr, c.cfg.Cache.Prefix)
			}
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch c.cfg.Cache.Backend {
			case config.BackendRedis:
				fmt.Fprintf(out, "redis://%s (prefix %q)\n", c.cfg.Cache.RedisAddr, c.cfg.Cache.Prefix)
			case config.BackendNone:
				fmt.Fprintln(out, "none")
			default:
				dir, err := c.cfg.CacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fmt.Fprintln(out, dir)
			}
			return nil
		},
	}
}
