package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/collatz/pkg/cache"
	"github.com/matzehuels/collatz/pkg/collatz"
	"github.com/matzehuels/collatz/pkg/dag"
	"github.com/matzehuels/collatz/pkg/graph"
	"github.com/matzehuels/collatz/pkg/observability"
)

// Runner executes pipeline stages with caching.
//
// A Runner holds no per-run state, so one Runner can serve concurrent
// requests with different options. Cache failures are logged and treated
// as misses; they never fail a run.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects the default keyer and a nil logger selects log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs build → layout → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}

	start := time.Now()
	g, hit, err := r.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.GraphHash = GraphHash(g)
	result.Stats.BuildTime = time.Since(start)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.CacheInfo.BuildHit = hit
	if opts.Mode == collatz.ModeSequence {
		if seq, err := collatz.Sequence(opts.Number); err == nil {
			s := collatz.Summarize(seq)
			result.Sequence = &s
		}
	}
	r.Logger.Info("built graph",
		"graph", opts.String(),
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cached", hit,
		"duration", result.Stats.BuildTime)

	start = time.Now()
	l, hit, err := r.GenerateLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(start)
	result.Stats.LevelCount = len(l.Levels)
	result.Stats.Crossings = l.Crossings
	result.CacheInfo.LayoutHit = hit
	r.Logger.Info("computed layout",
		"levels", len(l.Levels),
		"crossings", l.Crossings,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit
	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo builds the graph for opts, reporting whether it came
// from the cache.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, opts Options) (g *dag.DAG, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBuild(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, opts.Mode, opts.Number)
	start := time.Now()
	defer func() {
		nodes := 0
		if g != nil {
			nodes = g.NodeCount()
		}
		hooks.OnBuildComplete(ctx, opts.Mode, opts.Number, nodes, time.Since(start), err)
	}()

	key := r.Keyer.GraphKey(opts.Mode, opts.Number, opts.GraphKeyOpts())
	if !opts.Refresh {
		if data, ok := r.lookup(ctx, cache.KeyTypeGraph, key); ok {
			if cached, err := graph.ReadGraph(bytes.NewReader(data)); err == nil {
				return cached, true, nil
			}
			r.Logger.Warn("discarding unreadable cached graph", "key", key)
		}
	}

	g, err = Build(opts)
	if err != nil {
		return nil, false, err
	}
	if data, err := graph.MarshalGraph(g); err == nil {
		r.store(ctx, cache.KeyTypeGraph, key, data, cache.TTLGraph)
	}
	return g, false, nil
}

// Build is BuildWithCacheInfo without the cache hit flag.
func (r *Runner) Build(ctx context.Context, opts Options) (*dag.DAG, error) {
	g, _, err := r.BuildWithCacheInfo(ctx, opts)
	return g, err
}

// GenerateLayoutWithCacheInfo computes the layout of g, reporting whether
// it came from the cache. g is only read.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, g *dag.DAG, opts Options) (l graph.Layout, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.VizType, g.NodeCount())
	start := time.Now()
	defer func() {
		hooks.OnLayoutComplete(ctx, opts.VizType, l.Crossings, time.Since(start), err)
	}()

	key := r.Keyer.LayoutKey(GraphHash(g), opts.LayoutKeyOpts())
	if !opts.Refresh {
		if data, ok := r.lookup(ctx, cache.KeyTypeLayout, key); ok {
			if cached, err := graph.UnmarshalLayout(data); err == nil {
				return cached, true, nil
			}
			r.Logger.Warn("discarding unreadable cached layout", "key", key)
		}
	}

	l, err = GenerateLayout(g, opts)
	if err != nil {
		return graph.Layout{}, false, err
	}
	if data, err := graph.MarshalLayout(l); err == nil {
		r.store(ctx, cache.KeyTypeLayout, key, data, cache.TTLLayout)
	}
	return l, false, nil
}

// GenerateLayout is GenerateLayoutWithCacheInfo without the cache hit flag.
func (r *Runner) GenerateLayout(ctx context.Context, g *dag.DAG, opts Options) (graph.Layout, error) {
	l, _, err := r.GenerateLayoutWithCacheInfo(ctx, g, opts)
	return l, err
}

// RenderWithCacheInfo renders every requested format. The hit flag is true
// only when all formats were cached; otherwise everything is re-rendered.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l graph.Layout, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	opts.VizType = l.VizType

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	data, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(data)

	if !opts.Refresh {
		cached := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, ok := r.lookup(ctx, cache.KeyTypeArtifact, key)
			if !ok {
				break
			}
			cached[format] = data
		}
		if len(cached) == len(opts.Formats) {
			return cached, true, nil
		}
	}

	artifacts, err = Render(ctx, l, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.store(ctx, cache.KeyTypeArtifact, key, data, cache.TTLArtifact)
	}
	return artifacts, false, nil
}

// Render is RenderWithCacheInfo without the cache hit flag.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) lookup(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		ok = false
	}
	if ok {
		observability.Cache().OnCacheHit(ctx, keyType)
		r.Logger.Debug("cache hit", "type", keyType)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return nil, false
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// GraphHash identifies the structure of g: its values, edges and metadata.
// Rows are ignored.
func GraphHash(g *dag.DAG) string {
	wire := graph.FromDAG(g)
	for i := range wire.Nodes {
		wire.Nodes[i].Row = 0
	}
	data, _ := json.Marshal(wire)
	return cache.Hash(data)
}
