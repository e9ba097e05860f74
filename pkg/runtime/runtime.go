package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	verrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/diff"
	"github.com/vango-dev/vtree/pkg/scope"
	"github.com/vango-dev/vtree/pkg/vdom"
)

const tracerName = "github.com/vango-dev/vtree/pkg/runtime"

var (
	// ErrStopped is returned by operations on a closed Runtime. It carries
	// code E010.
	ErrStopped error = verrors.New("E010")

	// ErrNotMounted is returned by Rebuild before the first Mount.
	ErrNotMounted = errors.New("runtime: no tree mounted")
)

// Runtime drives one component tree.
type Runtime struct {
	mu sync.Mutex

	cfg      Config
	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer

	backend Backend
	arena   *scope.Arena
	differ  *diff.Differ
	queue   *renderQueue

	seq     uint64
	last    TickStats
	current *WorkItem
	stopped bool

	events chan *vdom.Event
	posts  chan func()
	done   chan struct{}
}

// New creates a Runtime delivering batches to backend.
func New(backend Backend, opts ...Option) *Runtime {
	o := options{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.observer == nil {
		o.observer = NopObserver{}
	}
	if o.tracer == nil {
		o.tracer = otel.GetTracerProvider()
	}
	if o.cfg.QueueLimit <= 0 {
		o.cfg.QueueLimit = DefaultConfig().QueueLimit
	}
	if o.cfg.TickInterval <= 0 {
		o.cfg.TickInterval = DefaultConfig().TickInterval
	}

	r := &Runtime{
		cfg:      o.cfg,
		logger:   o.logger,
		observer: o.observer,
		tracer:   o.tracer.Tracer(tracerName),
		backend:  backend,
		queue:    newRenderQueue(),
		events:   make(chan *vdom.Event, o.cfg.QueueLimit),
		posts:    make(chan func(), o.cfg.QueueLimit),
		done:     make(chan struct{}),
	}
	r.arena = scope.NewArena(
		scope.WithLogger(o.logger),
		scope.WithVerify(o.cfg.Verify),
		scope.WithDirtyFunc(r.enqueue),
		scope.WithCompletionBuffer(o.cfg.QueueLimit),
	)
	r.differ = diff.New(r.arena,
		diff.WithLogger(o.logger),
		diff.WithErrorView(o.errorView),
		diff.WithRenderObserver(r.rendered),
	)
	return r
}

// Config returns the effective configuration.
func (r *Runtime) Config() Config {
	return r.cfg
}

// Arena returns the scope arena. It must only be used from listeners,
// posted functions and render functions.
func (r *Runtime) Arena() *scope.Arena {
	return r.arena
}

func (r *Runtime) enqueue(id scope.ID, p scope.Priority) {
	r.queue.push(id, p)
}

func (r *Runtime) rendered(ri diff.RenderInfo) {
	if r.current != nil && r.current.Scope == ri.Scope {
		r.current.State = Diffing
	}
	r.observer.ScopeRendered(ri)
}

// Mount renders root and delivers the result. The first call creates the
// tree; later calls reconcile root against the committed tree.
func (r *Runtime) Mount(ctx context.Context, root *vdom.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return ErrStopped
	}
	muts, err := r.differ.Diff(root)
	if err != nil {
		r.logger.Warn("root render had failures", "error", err)
	}
	if err := r.deliver(ctx, muts, false); err != nil {
		return err
	}
	r.arena.RunEffects()
	return nil
}

// Dispatch resolves ev.Target and ev.Name to a listener, invokes it at high
// priority and runs one tick. Events for unknown handles or dead scopes are
// dropped. The returned error comes from the backend.
func (r *Runtime) Dispatch(ctx context.Context, ev *vdom.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return ErrStopped
	}
	b, ok := r.differ.Listener(ev.Target, ev.Name)
	if !ok {
		r.logger.Debug("no listener for event", "event", ev.Name, "target", ev.Target.String())
		return nil
	}
	return r.dispatch(ctx, b.Scope, b.Handler, ev)
}

// DispatchTo invokes handler on behalf of target and runs one tick. It is a
// no-op when target is not alive.
func (r *Runtime) DispatchTo(ctx context.Context, target scope.ID, handler vdom.Handler, ev *vdom.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return ErrStopped
	}
	return r.dispatch(ctx, target, handler, ev)
}

func (r *Runtime) dispatch(ctx context.Context, target scope.ID, handler vdom.Handler, ev *vdom.Event) error {
	if target != scope.NoID && !r.arena.Alive(target) {
		r.logger.Debug("event for dead scope dropped", "event", ev.Name, "scope_id", target.String())
		return nil
	}
	ctx, span := r.tracer.Start(ctx, "vtree.dispatch", trace.WithAttributes(
		attribute.String("vtree.event", ev.Name),
		attribute.String("vtree.target", ev.Target.String()),
		attribute.String("vtree.scope_id", target.String()),
	))
	defer span.End()

	start := time.Now()
	herr := r.invoke(target, handler, ev)
	r.observer.EventDispatched(ev.Name, time.Since(start), herr)
	if herr != nil {
		span.RecordError(herr)
	}

	_, err := r.tick(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *Runtime) invoke(target scope.ID, handler vdom.Handler, ev *vdom.Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = verrors.New("E008").WithScope(target.String()).Wrap(fmt.Errorf("%v", p))
			r.logger.Error("listener panic",
				"event", ev.Name,
				"scope_id", target.String(),
				"panic", p,
				"stack", string(debug.Stack()))
		}
	}()
	r.arena.WithPriority(scope.PriorityHigh, func() { handler(ev) })
	return nil
}

// Tick drains the render queue once and delivers the combined batch.
func (r *Runtime) Tick(ctx context.Context) (TickStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return TickStats{}, ErrStopped
	}
	return r.tick(ctx)
}

// LastTick returns the statistics of the most recent non-empty tick.
func (r *Runtime) LastTick() TickStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Pending returns the number of queued scopes.
func (r *Runtime) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.len()
}

func (r *Runtime) tick(ctx context.Context) (TickStats, error) {
	drained := r.queue.pop(r.cfg.MaxScopesPerTick)
	if len(drained) == 0 && !r.arena.PendingEffects() {
		return TickStats{}, nil
	}
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "vtree.tick")
	defer span.End()

	items := make([]WorkItem, 0, len(drained))
	heights := make([]int, 0, len(drained))
	for _, q := range drained {
		item := WorkItem{Scope: q.id, Priority: q.priority, State: Queued}
		h := -1
		if s, ok := r.arena.Get(q.id); ok {
			item.Component = s.Name()
			h = s.Height()
		}
		items = append(items, item)
		heights = append(heights, h)
	}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return heights[idx[a]] < heights[idx[b]] })
	ordered := make([]WorkItem, len(items))
	for i, j := range idx {
		ordered[i] = items[j]
	}
	items = ordered

	var muts []vdom.Mutation
	stats := TickStats{}
	for i := range items {
		item := &items[i]
		item.State = Rendering
		r.current = item
		out, rendered, err := r.differ.Rerender(item.Scope)
		r.current = nil
		switch {
		case !rendered:
			item.State = Skipped
			stats.Skipped++
		case err != nil:
			item.State = Errored
			item.Err = err
			stats.Errored++
		default:
			item.State = Committed
			stats.Rendered++
		}
		item.Mutations = len(out)
		muts = append(muts, out...)
	}
	stats.Items = items
	stats.Mutations = len(muts)
	stats.Deferred = r.queue.len()
	if stats.Deferred > 0 && r.cfg.MaxScopesPerTick > 0 {
		r.logger.Warn("tick budget exceeded",
			"deferred", stats.Deferred,
			"max_scopes", r.cfg.MaxScopesPerTick,
			"error", verrors.New("E007").Error())
	}

	err := r.deliver(ctx, muts, false)
	if err == nil && len(muts) > 0 {
		stats.Seq = r.seq
	}
	stats.Effects = r.arena.RunEffects()
	stats.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("vtree.scopes", len(items)),
		attribute.Int("vtree.rendered", stats.Rendered),
		attribute.Int("vtree.mutations", stats.Mutations),
		attribute.Int64("vtree.seq", int64(stats.Seq)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	r.last = stats
	r.observer.TickCompleted(stats)
	return stats, err
}

// deliver sends muts as one batch. An empty non-reset batch is not sent.
// The committed tree is not rolled back when the backend fails.
func (r *Runtime) deliver(ctx context.Context, muts []vdom.Mutation, reset bool) error {
	if len(muts) == 0 && !reset {
		return nil
	}
	r.seq++
	batch := vdom.Batch{Seq: r.seq, Reset: reset, Mutations: muts}
	if err := r.backend.Apply(ctx, batch); err != nil {
		werr := verrors.New("E005").Wrap(err)
		r.logger.Error("backend apply failed", "seq", batch.Seq, "mutations", len(muts), "error", err)
		r.observer.BackendFailed(werr)
		return werr
	}
	return nil
}

// Rebuild sends the whole committed tree to the backend as a reset batch,
// for backends that lost or corrupted their state.
func (r *Runtime) Rebuild(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return ErrStopped
	}
	if !r.differ.Mounted() {
		return ErrNotMounted
	}
	return r.deliver(ctx, r.differ.Snapshot(), true)
}

// Snapshot returns a reset batch describing the committed tree without
// delivering it.
func (r *Runtime) Snapshot() vdom.Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return vdom.Batch{Seq: r.seq, Reset: true, Mutations: r.differ.Snapshot()}
}

// Stats describes the current size of the tree.
type Stats struct {
	Scopes  int
	Handles int
	Pending int
	Seq     uint64
}

// Stats returns the current tree size.
func (r *Runtime) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Scopes:  r.arena.Len(),
		Handles: r.differ.Handles(),
		Pending: r.queue.len(),
		Seq:     r.seq,
	}
}

// Close tears the tree down, delivering the removal batch, and stops Run.
// Later calls return ErrStopped.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return ErrStopped
	}
	r.stopped = true
	muts := r.differ.Teardown()
	r.arena.Close()
	close(r.done)
	return r.deliver(ctx, muts, false)
}
