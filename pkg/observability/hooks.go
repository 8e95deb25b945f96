// Package observability lets callers observe the pipeline without the
// libraries depending on a metrics backend.
//
// Three hook interfaces cover build/layout/render stages, cache traffic and
// served HTTP requests. Each has a no-op default; main registers real
// implementations once at startup:
//
//	hooks := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
//	observability.SetPipelineHooks(hooks)
//	observability.SetCacheHooks(hooks)
//	observability.SetHTTPHooks(hooks)
//
// Libraries then emit events through the getters:
//
//	observability.Pipeline().OnBuildStart(ctx, "inverse", 16)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the pipeline stages.
type PipelineHooks interface {
	OnBuildStart(ctx context.Context, mode string, start uint64)
	OnBuildComplete(ctx context.Context, mode string, start uint64, nodeCount int, duration time.Duration, err error)

	OnLayoutStart(ctx context.Context, vizType string, nodeCount int)
	OnLayoutComplete(ctx context.Context, vizType string, crossings int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives events from cache lookups. keyType is one of
// "graph", "layout" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events for requests served by the API. OnRequest fires
// before routing and gets the raw path; OnResponse gets the matched route
// pattern, which keeps label cardinality bounded.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// NoopPipelineHooks ignores all pipeline events.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildStart(context.Context, string, uint64) {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, string, uint64, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                          {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                             {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)    {}

// NoopCacheHooks ignores all cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores all request events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// registry holds the active hooks.
type registry struct {
	mu       sync.RWMutex
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var active = &registry{
	pipeline: NoopPipelineHooks{},
	cache:    NoopCacheHooks{},
	http:     NoopHTTPHooks{},
}

func (r *registry) update(fn func(*registry)) {
	r.mu.Lock()
	fn(r)
	r.mu.Unlock()
}

// SetPipelineHooks registers pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		active.update(func(r *registry) { r.pipeline = h })
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		active.update(func(r *registry) { r.cache = h })
	}
}

// SetHTTPHooks registers HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		active.update(func(r *registry) { r.http = h })
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	active.mu.RLock()
	defer active.mu.RUnlock()
	return active.pipeline
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	active.mu.RLock()
	defer active.mu.RUnlock()
	return active.cache
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	active.mu.RLock()
	defer active.mu.RUnlock()
	return active.http
}

// Reset restores the no-op defaults.
func Reset() {
	active.update(func(r *registry) {
		r.pipeline, r.cache, r.http = NoopPipelineHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}
	})
}
