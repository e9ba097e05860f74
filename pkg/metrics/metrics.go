package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	verrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/diff"
	"github.com/vango-dev/vtree/pkg/runtime"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "vtree").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for tick, render and event duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
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

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vtree",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector records runtime activity. It implements runtime.Observer.
type Collector struct {
	cfg     Config
	factory promauto.Factory

	ticks           prometheus.Counter
	tickDuration    prometheus.Histogram
	renders         *prometheus.CounterVec
	renderDuration  *prometheus.HistogramVec
	renderErrors    *prometheus.CounterVec
	mutations       prometheus.Counter
	deferred        prometheus.Gauge
	effects         prometheus.Counter
	events          *prometheus.CounterVec
	eventDuration   *prometheus.HistogramVec
	backendFailures prometheus.Counter
}

var _ runtime.Observer = (*Collector)(nil)

// New creates a Collector and registers its metrics. It panics if a metric
// is already registered with the registry.
func New(opts ...Option) *Collector {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	return &Collector{
		cfg:     cfg,
		factory: factory,

		ticks: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "ticks_total",
			Help:        "Total number of scheduler ticks that did work",
			ConstLabels: cfg.ConstLabels,
		}),

		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "tick_duration_seconds",
			Help:        "Tick duration in seconds, from queue drain to effects",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),

		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of component renders",
			ConstLabels: cfg.ConstLabels,
		}, []string{"component", "status"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Component render duration in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"component"}),

		renderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "render_errors_total",
			Help:        "Total number of failed renders by error code",
			ConstLabels: cfg.ConstLabels,
		}, []string{"component", "code"}),

		mutations: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "mutations_total",
			Help:        "Total number of mutations produced by ticks",
			ConstLabels: cfg.ConstLabels,
		}),

		deferred: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "deferred_scopes",
			Help:        "Scopes left queued at the end of the last tick",
			ConstLabels: cfg.ConstLabels,
		}),

		effects: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "effects_total",
			Help:        "Total number of effects run after commit",
			ConstLabels: cfg.ConstLabels,
		}),

		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "events_total",
			Help:        "Total number of dispatched events",
			ConstLabels: cfg.ConstLabels,
		}, []string{"event", "status"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Listener duration in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"event"}),

		backendFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "backend_failures_total",
			Help:        "Total number of batches the backend failed to apply",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// Track registers gauges reading the size of rt's tree at scrape time.
func (c *Collector) Track(rt *runtime.Runtime) {
	gauge := func(name, help string, read func(runtime.Stats) int) {
		c.factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   c.cfg.Namespace,
			Subsystem:   c.cfg.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: c.cfg.ConstLabels,
		}, func() float64 { return float64(read(rt.Stats())) })
	}
	gauge("scopes", "Number of mounted component scopes", func(s runtime.Stats) int { return s.Scopes })
	gauge("handles", "Number of live backend handles", func(s runtime.Stats) int { return s.Handles })
	gauge("pending_scopes", "Number of scopes waiting for a tick", func(s runtime.Stats) int { return s.Pending })
}

// TickCompleted implements runtime.Observer.
func (c *Collector) TickCompleted(s runtime.TickStats) {
	c.ticks.Inc()
	c.tickDuration.Observe(s.Duration.Seconds())
	c.mutations.Add(float64(s.Mutations))
	c.effects.Add(float64(s.Effects))
	c.deferred.Set(float64(s.Deferred))
}

// ScopeRendered implements runtime.Observer.
func (c *Collector) ScopeRendered(ri diff.RenderInfo) {
	c.renderDuration.WithLabelValues(ri.Component).Observe(ri.Duration.Seconds())
	if ri.Err != nil {
		c.renders.WithLabelValues(ri.Component, "error").Inc()
		c.renderErrors.WithLabelValues(ri.Component, errorCode(ri.Err)).Inc()
		return
	}
	c.renders.WithLabelValues(ri.Component, "success").Inc()
}

// EventDispatched implements runtime.Observer.
func (c *Collector) EventDispatched(event string, d time.Duration, err error) {
	c.eventDuration.WithLabelValues(event).Observe(d.Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	c.events.WithLabelValues(event, status).Inc()
}

// BackendFailed implements runtime.Observer.
func (c *Collector) BackendFailed(error) {
	c.backendFailures.Inc()
}

// errorCode keeps error labels low-cardinality.
func errorCode(err error) string {
	if code := verrors.Code(err); code != "" {
		return code
	}
	return "internal"
}
