package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks implements all hook interfaces by updating Prometheus
// collectors.
type PrometheusHooks struct {
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	graphNodes    *prometheus.HistogramVec
	crossings     prometheus.Histogram
	cacheRequests *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	httpInFlight  prometheus.Gauge
}

// NewPrometheusHooks creates the collectors and registers them with reg.
// Passing prometheus.DefaultRegisterer exposes them on promhttp.Handler.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "collatz_stage_duration_seconds",
			Help:    "Duration of pipeline stages, labelled by stage.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"stage"}),
		stageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "collatz_stage_errors_total",
			Help: "Total number of failed pipeline stages, labelled by stage.",
		}, []string{"stage"}),
		graphNodes: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "collatz_graph_nodes",
			Help:    "Number of nodes in built graphs, labelled by mode.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"mode"}),
		crossings: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "collatz_layout_crossings",
			Help:    "Edge crossings between adjacent levels of computed layouts.",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500},
		}),
		cacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "collatz_cache_requests_total",
			Help: "Cache lookups, labelled by key type and result.",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "collatz_cache_written_bytes_total",
			Help: "Bytes written to the cache, labelled by key type.",
		}, []string{"key_type"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "collatz_http_requests_total",
			Help: "Served HTTP requests, labelled by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "collatz_http_request_duration_seconds",
			Help:    "Latency of served HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "collatz_http_requests_in_flight",
			Help: "Requests currently being served.",
		}),
	}
}

func (p *PrometheusHooks) stage(name string, d time.Duration, err error) {
	p.stageDuration.WithLabelValues(name).Observe(d.Seconds())
	if err != nil {
		p.stageErrors.WithLabelValues(name).Inc()
	}
}

func (p *PrometheusHooks) OnBuildStart(context.Context, string, uint64) {}

func (p *PrometheusHooks) OnBuildComplete(_ context.Context, mode string, _ uint64, nodes int, d time.Duration, err error) {
	p.stage("build", d, err)
	if err == nil {
		p.graphNodes.WithLabelValues(mode).Observe(float64(nodes))
	}
}

func (p *PrometheusHooks) OnLayoutStart(context.Context, string, int) {}

func (p *PrometheusHooks) OnLayoutComplete(_ context.Context, _ string, crossings int, d time.Duration, err error) {
	p.stage("layout", d, err)
	if err == nil {
		p.crossings.Observe(float64(crossings))
	}
}

func (p *PrometheusHooks) OnRenderStart(context.Context, []string) {}

func (p *PrometheusHooks) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	p.stage("render", d, err)
}

func (p *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	p.cacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (p *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (p *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *PrometheusHooks) OnRequest(context.Context, string, string) {
	p.httpInFlight.Inc()
}

func (p *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.httpInFlight.Dec()
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)
