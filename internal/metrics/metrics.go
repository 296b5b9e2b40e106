// Package metrics exposes Prometheus metrics for the storefront: server
// renders, store dispatches, route resolutions, live sessions and catalog
// reloads.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/storefront/pkg/router"
	"github.com/vango-dev/storefront/pkg/store"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "storefront").
	Namespace string

	// ConstLabels are added to every metric.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is where collectors are registered.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the registerer.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// Metrics holds the storefront collectors.
type Metrics struct {
	rendersTotal     *prometheus.CounterVec
	renderDuration   *prometheus.HistogramVec
	dispatchesTotal  *prometheus.CounterVec
	resolutionsTotal *prometheus.CounterVec
	liveSessions     prometheus.Gauge
	liveMessages     *prometheus.CounterVec
	liveErrors       *prometheus.CounterVec
	catalogReloads   *prometheus.CounterVec
}

// New registers the collectors. It panics if they are already registered
// with the same registry, like promauto.
func New(opts ...Option) *Metrics {
	cfg := Config{
		Namespace: "storefront",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)
	counter := func(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.ConstLabels,
		}, labels)
	}

	return &Metrics{
		rendersTotal: counter("ssr", "renders_total",
			"Total number of server renders", "route"),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "ssr",
			Name:        "render_duration_seconds",
			Help:        "Server render duration in seconds, prefetch included",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"route"}),

		dispatchesTotal: counter("store", "dispatches_total",
			"Total number of store dispatches; changed=false counts suppressed notifications", "store", "changed"),

		resolutionsTotal: counter("router", "resolutions_total",
			"Total number of route resolutions", "route", "matched"),

		liveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "live",
			Name:        "sessions_active",
			Help:        "Number of open live sessions",
			ConstLabels: cfg.ConstLabels,
		}),

		liveMessages: counter("live", "messages_total",
			"Total number of live messages received", "type"),

		liveErrors: counter("live", "errors_total",
			"Total number of live protocol errors", "code"),

		catalogReloads: counter("catalog", "reloads_total",
			"Total number of catalog fixture reloads", "status"),
	}
}

// DispatchHook counts dispatches per store.
func (m *Metrics) DispatchHook() store.Hook {
	return func(name string, changed bool) {
		m.dispatchesTotal.WithLabelValues(name, strconv.FormatBool(changed)).Inc()
	}
}

// ResolveHook counts route resolutions. Misses are labeled with an empty
// route.
func (m *Metrics) ResolveHook() router.ResolveHook {
	return func(path string, matched bool) {
		m.resolutionsTotal.WithLabelValues(path, strconv.FormatBool(matched)).Inc()
	}
}

// ObserveRender records a server render.
func (m *Metrics) ObserveRender(route string, d time.Duration) {
	m.rendersTotal.WithLabelValues(route).Inc()
	m.renderDuration.WithLabelValues(route).Observe(d.Seconds())
}

// SessionOpened increments the live session gauge.
func (m *Metrics) SessionOpened() {
	m.liveSessions.Inc()
}

// SessionClosed decrements the live session gauge.
func (m *Metrics) SessionClosed() {
	m.liveSessions.Dec()
}

// ObserveMessage counts a live message by type.
func (m *Metrics) ObserveMessage(kind string) {
	m.liveMessages.WithLabelValues(kind).Inc()
}

// ObserveLiveError counts a live protocol error by code.
func (m *Metrics) ObserveLiveError(code string) {
	m.liveErrors.WithLabelValues(code).Inc()
}

// ObserveReload counts a catalog reload. It has the signature of a
// catalog watcher callback.
func (m *Metrics) ObserveReload(_ int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.catalogReloads.WithLabelValues(status).Inc()
}

// Handler serves the metrics of g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
