// Package config loads the collatz configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/collatz/config.toml
// (~/.config/collatz/config.toml when XDG_CONFIG_HOME is unset). Every key
// is optional; a missing file yields [Default].
//
//	[layout]
//	horizontal_spacing = 120.0
//	vertical_spacing = 80.0
//
//	[inverse]
//	depth = 5
//
//	[render]
//	formats = ["svg"]
//	viz_type = "levels"
//
//	[cache]
//	backend = "file"   # file, redis or none
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//
// Command-line flags override file values.
package config

import (
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/collatz/pkg/collatz"
	"github.com/matzehuels/collatz/pkg/errors"
	"github.com/matzehuels/collatz/pkg/layout"
	"github.com/matzehuels/collatz/pkg/pipeline"
	"github.com/matzehuels/collatz/pkg/render/sink"
)

const appName = "collatz"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the root of the configuration file.
type Config struct {
	Layout  LayoutConfig  `toml:"layout"`
	Inverse InverseConfig `toml:"inverse"`
	Render  RenderConfig  `toml:"render"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
}

// LayoutConfig holds the layout engine parameters.
type LayoutConfig struct {
	HorizontalSpacing float64 `toml:"horizontal_spacing"`
	VerticalSpacing   float64 `toml:"vertical_spacing"`
	AnchorX           float64 `toml:"anchor_x"`
	BaselineY         float64 `toml:"baseline_y"`
}

// InverseConfig holds inverse tree settings.
type InverseConfig struct {
	Depth int `toml:"depth"`
}

// RenderConfig holds output settings.
type RenderConfig struct {
	Formats    []string `toml:"formats"`
	VizType    string   `toml:"viz_type"`
	NodeRadius float64  `toml:"node_radius"`
	Detailed   bool     `toml:"detailed"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir,omitempty"` // Empty means the XDG cache dir
	RedisAddr string   `toml:"redis_addr"`
	Prefix    string   `toml:"prefix"`
	TTL       Duration `toml:"ttl"` // Zero keeps the per-stage defaults
}

// ServerConfig configures `collatz serve`.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Duration is a time.Duration written as a Go duration string ("1h30m").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			HorizontalSpacing: layout.DefaultHorizontalSpacing,
			VerticalSpacing:   layout.DefaultVerticalSpacing,
			AnchorX:           layout.DefaultAnchorX,
			BaselineY:         layout.DefaultBaselineY,
		},
		Inverse: InverseConfig{Depth: collatz.DefaultDepth},
		Render: RenderConfig{
			Formats:    []string{pipeline.FormatSVG},
			VizType:    pipeline.DefaultVizType,
			NodeRadius: sink.DefaultNodeRadius,
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
			Prefix:    appName + ":",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: Duration{10 * time.Second},
		},
	}
}

// Load reads the file at path on top of [Default]. A missing file is not an
// error. Unknown keys and invalid values are reported as INVALID_CONFIG.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if stderrors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidConfig, format, args...)
	}

	if c.Layout.HorizontalSpacing <= 0 || c.Layout.VerticalSpacing <= 0 {
		return invalid("layout spacing must be positive")
	}
	if c.Inverse.Depth < 0 {
		return invalid("inverse.depth must not be negative, got %d", c.Inverse.Depth)
	}
	if err := pipeline.ValidateVizType(c.Render.VizType); err != nil {
		return invalid("render.viz_type: %s", errors.UserMessage(err))
	}
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return invalid("render.formats: %s", errors.UserMessage(err))
	}
	if c.Render.NodeRadius < 0 {
		return invalid("render.node_radius must not be negative")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return invalid("cache.redis_addr is required for the redis backend")
		}
	default:
		return invalid("cache.backend %q must be one of: file, redis, none", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return invalid("cache.ttl must not be negative")
	}
	if c.Server.Addr == "" {
		return invalid("server.addr must not be empty")
	}
	return nil
}

// Encode writes the configuration as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// ApplyTo copies the file settings into pipeline options. Fields already set
// on opts are kept, so flags parsed into opts take precedence.
func (c Config) ApplyTo(opts *pipeline.Options) {
	if opts.VizType == "" {
		opts.VizType = c.Render.VizType
	}
	if opts.HorizontalSpacing == 0 {
		opts.HorizontalSpacing = c.Layout.HorizontalSpacing
	}
	if opts.VerticalSpacing == 0 {
		opts.VerticalSpacing = c.Layout.VerticalSpacing
	}
	if opts.Origin == nil {
		opts.Origin = &layout.Position{X: c.Layout.AnchorX, Y: c.Layout.BaselineY}
	}
	if len(opts.Formats) == 0 {
		opts.Formats = append([]string(nil), c.Render.Formats...)
	}
	if opts.NodeRadius == 0 {
		opts.NodeRadius = c.Render.NodeRadius
	}
	if !opts.Detailed {
		opts.Detailed = c.Render.Detailed
	}
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := configHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// CacheDir returns the directory used by the file cache backend.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return DefaultCacheDir()
}

// DefaultCacheDir returns $XDG_CACHE_HOME/collatz, or ~/.cache/collatz.
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

func configHome() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}
