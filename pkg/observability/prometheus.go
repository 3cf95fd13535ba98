package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements every hook interface on top of a private Prometheus
// registry. It also records inbound requests for the HTTP service.
type Metrics struct {
	BuildsTotal      *prometheus.CounterVec
	BuildDuration    prometheus.Histogram
	BuildElements    prometheus.Histogram
	ExpansionsTotal  *prometheus.CounterVec
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	UpstreamErrors   *prometheus.CounterVec
	FailoversTotal   *prometheus.CounterVec
	CacheEvents      *prometheus.CounterVec
	CacheBytes       prometheus.Counter
	ServerRequests   *prometheus.CounterVec
	ServerDuration   *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all collectors, including the Go runtime
// and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		BuildsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "routegraph_builds_total",
			Help: "Route graph builds by outcome",
		}, []string{"status"}),
		BuildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "routegraph_build_duration_seconds",
			Help:    "Wall time of a full route graph build",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		BuildElements: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "routegraph_build_elements",
			Help:    "Elements emitted per successful build",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		ExpansionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "routegraph_expansions_total",
			Help: "Node expansions by kind and outcome",
		}, []string{"kind", "status"}),
		UpstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "routegraph_upstream_requests_total",
			Help: "Responses received from the PBX API",
		}, []string{"host", "code"}),
		UpstreamDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "routegraph_upstream_request_duration_seconds",
			Help:    "Latency of PBX API requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
		UpstreamErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "routegraph_upstream_errors_total",
			Help: "Transport failures talking to the PBX API",
		}, []string{"host"}),
		FailoversTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "routegraph_upstream_failovers_total",
			Help: "Requests that moved on to the next candidate host",
		}, []string{"host"}),
		CacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "routegraph_cache_events_total",
			Help: "Response cache lookups and writes",
		}, []string{"type", "event"}),
		CacheBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "routegraph_cache_written_bytes_total",
			Help: "Bytes written to the response cache",
		}),
		ServerRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "routegraph_http_requests_total",
			Help: "Inbound HTTP requests",
		}, []string{"method", "route", "status"}),
		ServerDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "routegraph_http_request_duration_seconds",
			Help:    "Inbound HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		registry: reg,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for additional collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RecordRequest records one inbound request served by the HTTP service.
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	m.ServerRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.ServerDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) OnBuildStart(context.Context, string, string) {}

func (m *Metrics) OnBuildComplete(_ context.Context, _, _ string, elements int, d time.Duration, err error) {
	if err != nil {
		m.BuildsTotal.WithLabelValues("error").Inc()
		return
	}
	m.BuildsTotal.WithLabelValues("ok").Inc()
	m.BuildDuration.Observe(d.Seconds())
	m.BuildElements.Observe(float64(elements))
}

func (m *Metrics) OnExpand(_ context.Context, kind string, _ int, err error) {
	m.ExpansionsTotal.WithLabelValues(kind, outcome(err)).Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	m.UpstreamRequests.WithLabelValues(host, strconv.Itoa(code)).Inc()
	m.UpstreamDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.UpstreamErrors.WithLabelValues(host).Inc()
}

func (m *Metrics) OnFailover(_ context.Context, host string) {
	m.FailoversTotal.WithLabelValues(host).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheEvents.WithLabelValues(keyType, "set").Inc()
	m.CacheBytes.Add(float64(size))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ BuildHooks = (*Metrics)(nil)
	_ CacheHooks = (*Metrics)(nil)
	_ HTTPHooks  = (*Metrics)(nil)
)
