// Package cli implements the collatz command-line interface.
//
// # Commands
//
//   - sequence: draw the trajectory of a number down to 1
//   - inverse: draw the tree of numbers that reach a number
//   - serve: expose the pipeline over HTTP
//   - cache: inspect or clear the pipeline cache
//   - config: show the configuration file and its effective values
//
// Without --output or --format, sequence and inverse open an interactive
// terminal viewer instead of writing files.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// attached to the command context; see withLogger.
package cli

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/collatz/pkg/buildinfo"
	"github.com/matzehuels/collatz/pkg/cache"
	"github.com/matzehuels/collatz/pkg/config"
	"github.com/matzehuels/collatz/pkg/errors"
	"github.com/matzehuels/collatz/pkg/pipeline"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	cfgPath string
	verbose bool
	cfg     config.Config
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "collatz",
		Short: "Collatz draws Collatz sequences and inverse trees",
		Long: `Collatz builds the graph of a Collatz trajectory or of the inverse tree
leading to a number, arranges it in levels and renders it as SVG, PNG, PDF,
JSON or Graphviz DOT.`,
		Version:       buildinfo.Resolved(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(commandContext(cmd), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.cfgPath, "config", "", "config file (default $XDG_CONFIG_HOME/collatz/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.sequenceCommand())
	root.AddCommand(c.inverseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadConfig reads --config, or the default path when the flag is unset.
func (c *CLI) loadConfig() error {
	path := c.cfgPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			c.Logger.Debug("no config path, using defaults", "err", err)
			c.cfg = config.Default()
			return nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded config", "path", path, "cache", cfg.Cache.Backend)
	c.cfg = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	backend, keyer, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(backend, keyer, c.Logger)
	r.TTL = c.cfg.Cache.TTL.Duration
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, cache.Keyer, error) {
	if noCache {
		return cache.NewNullCache(), nil, nil
	}
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil, nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, c.cfg.Cache.RedisAddr, c.cfg.Cache.Prefix)
		if err != nil {
			return nil, nil, err
		}
		return rc, cache.NewScopedKeyer(nil, c.cfg.Cache.Prefix), nil
	default:
		dir, err := c.cfg.CacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil, nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, nil, err
		}
		return fc, nil, nil
	}
}

// parseNumber parses a positive starting value.
func parseNumber(s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%q is not a positive integer", s)
	}
	if n == 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "starting value must be positive, got 0")
	}
	return n, nil
}
