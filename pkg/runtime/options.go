package runtime

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vtree/pkg/diff"
)

// Config holds the tunables of a Runtime.
type Config struct {
	// TickInterval is how often Run drains work that did not come from a
	// dispatched event (async completions, posted functions).
	TickInterval time.Duration

	// MaxScopesPerTick bounds the number of queue entries drained by one
	// tick. Zero means unlimited.
	MaxScopesPerTick int

	// QueueLimit is the capacity of the inbound event and post queues.
	QueueLimit int

	// Verify renders every scope twice and logs impure renders.
	Verify bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		TickInterval:     16 * time.Millisecond,
		MaxScopesPerTick: 0,
		QueueLimit:       256,
	}
}

// Option configures a Runtime.
type Option func(*options)

type options struct {
	cfg       Config
	logger    *slog.Logger
	observer  Observer
	tracer    trace.TracerProvider
	errorView diff.ErrorView
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger sets the logger for the runtime, arena and differ.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver registers an observer. Repeated calls accumulate.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if o.observer == nil {
			o.observer = obs
			return
		}
		o.observer = Observers(o.observer, obs)
	}
}

// WithTracerProvider sets the provider used for tick and dispatch spans.
// The global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracer = tp }
}

// WithErrorView sets the subtree rendered in place of failed components.
func WithErrorView(v diff.ErrorView) Option {
	return func(o *options) { o.errorView = v }
}

// WithTickInterval sets Config.TickInterval.
func WithTickInterval(d time.Duration) Option {
	return func(o *options) { o.cfg.TickInterval = d }
}

// WithMaxScopesPerTick sets Config.MaxScopesPerTick.
func WithMaxScopesPerTick(n int) Option {
	return func(o *options) { o.cfg.MaxScopesPerTick = n }
}

// WithQueueLimit sets Config.QueueLimit.
func WithQueueLimit(n int) Option {
	return func(o *options) { o.cfg.QueueLimit = n }
}

// WithVerify sets Config.Verify.
func WithVerify(on bool) Option {
	return func(o *options) { o.cfg.Verify = on }
}
