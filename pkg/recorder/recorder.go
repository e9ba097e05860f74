package recorder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/vtree/pkg/runtime"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Recorder is a runtime.Backend that records what the wrapped backend
// accepted.
type Recorder struct {
	next    runtime.Backend
	history *History
	logger  *slog.Logger

	sink   Sink
	prefix string

	mu      sync.Mutex
	pending []vdom.Batch
	limit   int
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithHistory sets the ring batches are added to.
func WithHistory(h *History) Option {
	return func(r *Recorder) {
		r.history = h
	}
}

// WithSink archives batches to sink under prefix on Flush.
func WithSink(sink Sink, prefix string) Option {
	return func(r *Recorder) {
		r.sink = sink
		r.prefix = prefix
	}
}

// WithPendingLimit caps the batches held for the sink. When the cap is hit
// the oldest pending batches are dropped. Default: 10000.
func WithPendingLimit(n int) Option {
	return func(r *Recorder) {
		r.limit = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// New wraps next.
func New(next runtime.Backend, opts ...Option) *Recorder {
	r := &Recorder{next: next, limit: 10000}
	for _, opt := range opts {
		opt(r)
	}
	if r.history == nil {
		r.history = NewHistory(0)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// History returns the batch ring.
func (r *Recorder) History() *History {
	return r.history
}

// Apply implements runtime.Backend. Batches the wrapped backend rejects are
// not recorded.
func (r *Recorder) Apply(ctx context.Context, b vdom.Batch) error {
	if err := r.next.Apply(ctx, b); err != nil {
		return err
	}
	r.history.Add(b)
	if r.sink == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limit > 0 && len(r.pending) >= r.limit {
		drop := len(r.pending) - r.limit + 1
		r.logger.Warn("archive backlog full, dropping batches",
			"dropped", drop, "first_seq", r.pending[0].Seq)
		r.pending = r.pending[drop:]
	}
	b.Mutations = append([]vdom.Mutation(nil), b.Mutations...)
	r.pending = append(r.pending, b)
	return nil
}

// Replay applies every recorded batch after lastSeq to dst. It returns
// false when the history no longer holds them all, in which case dst needs
// a full rebuild instead.
func (r *Recorder) Replay(ctx context.Context, dst runtime.Backend, lastSeq uint64) (bool, error) {
	if lastSeq == r.history.MaxSeq() {
		return true, nil
	}
	batches := r.history.Since(lastSeq)
	if batches == nil {
		return false, nil
	}
	for _, b := range batches {
		if err := dst.Apply(ctx, b); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Flush writes pending batches to the sink as one segment.
func (r *Recorder) Flush(ctx context.Context) error {
	if r.sink == nil {
		return nil
	}
	r.mu.Lock()
	batches := r.pending
	r.pending = nil
	r.mu.Unlock()
	if len(batches) == 0 {
		return nil
	}

	body, err := EncodeSegment(batches)
	if err != nil {
		return err
	}
	key := SegmentKey(r.prefix, batches[0].Seq, batches[len(batches)-1].Seq)
	if err := r.sink.Put(ctx, key, body); err != nil {
		r.mu.Lock()
		r.pending = append(batches, r.pending...)
		r.mu.Unlock()
		return err
	}
	r.logger.Debug("archived segment", "key", key, "batches", len(batches), "bytes", len(body))
	return nil
}

// Run flushes every interval until ctx is done, then flushes once more
// with a fresh deadline.
func (r *Recorder) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if err := r.Flush(final); err != nil {
				return err
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if err := r.Flush(ctx); err != nil {
				r.logger.Error("archive flush failed", "error", err)
			}
		}
	}
}
