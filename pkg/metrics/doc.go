// Package metrics exports runtime activity as Prometheus metrics.
//
// A Collector implements runtime.Observer:
//
//	reg := prometheus.NewRegistry()
//	c := metrics.New(metrics.WithRegistry(reg), metrics.WithNamespace("myapp"))
//	rt := runtime.New(backend, runtime.WithObserver(c))
//	c.Track(rt)
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// Metrics collected (with the default "vtree" namespace):
//   - vtree_ticks_total: Counter of ticks that rendered or delivered work
//   - vtree_tick_duration_seconds: Histogram of tick duration
//   - vtree_renders_total: Counter of component renders by component and status
//   - vtree_render_duration_seconds: Histogram of render duration by component
//   - vtree_render_errors_total: Counter of failed renders by component and error code
//   - vtree_mutations_total: Counter of mutations delivered
//   - vtree_deferred_scopes: Gauge of scopes left queued by the last tick
//   - vtree_effects_total: Counter of effects run
//   - vtree_events_total: Counter of dispatched events by name and status
//   - vtree_event_duration_seconds: Histogram of listener duration by event
//   - vtree_backend_failures_total: Counter of failed batch deliveries
//   - vtree_scopes, vtree_handles, vtree_pending_scopes: tree size gauges,
//     available after Track
package metrics
