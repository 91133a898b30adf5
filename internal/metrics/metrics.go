// Package metrics exports distmeta activity as Prometheus metrics.
//
// [Metrics] implements the observability hook interfaces; [Metrics.Install]
// registers it globally so descriptor builds, cache lookups and index
// requests are counted without those packages importing Prometheus.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/distmeta/pkg/observability"
)

const namespace = "distmeta"

// Metrics holds every distmeta collector in its own registry.
type Metrics struct {
	registry *prometheus.Registry

	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
	extractBytes  prometheus.Histogram
	checks        *prometheus.CounterVec
	checkDuration prometheus.Histogram
	cacheOps      *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	httpErrors    *prometheus.CounterVec
	apiRequests   *prometheus.CounterVec
	apiDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Descriptor builds by result.",
		}, []string{"result"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Time to load a manifest and build its descriptor.",
			Buckets:   prometheus.DefBuckets,
		}),
		extractBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "readme_extract_bytes",
			Help:      "Size of extracted long descriptions.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requirement_checks_total",
			Help:      "Requirements checked against the package index, by status.",
		}, []string{"status"}),
		checkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "requirement_check_duration_seconds",
			Help:      "Time to resolve one requirement against the index.",
			Buckets:   prometheus.DefBuckets,
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type and operation.",
		}, []string{"type", "op"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_requests_total",
			Help:      "Outgoing package index requests by host and status code.",
		}, []string{"host", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_request_duration_seconds",
			Help:      "Outgoing package index request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_request_errors_total",
			Help:      "Outgoing package index requests that failed without a response.",
		}, []string{"host"}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests served by distmeta serve, by route, method and status code.",
		}, []string{"route", "method", "code"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of requests served by distmeta serve.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.builds, m.buildDuration, m.extractBytes,
		m.checks, m.checkDuration,
		m.cacheOps, m.cacheBytes,
		m.httpRequests, m.httpDuration, m.httpErrors,
		m.apiRequests, m.apiDuration,
	)
	return m
}

// Install registers m as the global build, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetBuildHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one request served by the API.
func (m *Metrics) ObserveRequest(route, method string, code int, d time.Duration) {
	m.apiRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.apiDuration.WithLabelValues(route).Observe(d.Seconds())
}

// OnBuildStart implements [observability.BuildHooks].
func (m *Metrics) OnBuildStart(context.Context, string) {}

// OnBuildComplete implements [observability.BuildHooks].
func (m *Metrics) OnBuildComplete(_ context.Context, _, _ string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.builds.WithLabelValues(result).Inc()
	m.buildDuration.Observe(d.Seconds())
}

// OnExtract implements [observability.BuildHooks].
func (m *Metrics) OnExtract(_ context.Context, _ string, size int) {
	m.extractBytes.Observe(float64(size))
}

// OnCheck implements [observability.BuildHooks].
func (m *Metrics) OnCheck(_ context.Context, _, status string, d time.Duration) {
	m.checks.WithLabelValues(status).Inc()
	m.checkDuration.Observe(d.Seconds())
}

// OnCacheHit implements [observability.CacheHooks].
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements [observability.CacheHooks].
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements [observability.CacheHooks].
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements [observability.HTTPHooks].
func (m *Metrics) OnRequest(context.Context, string, string, string) {}

// OnResponse implements [observability.HTTPHooks].
func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(host, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

// OnError implements [observability.HTTPHooks].
func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.httpErrors.WithLabelValues(host).Inc()
}
