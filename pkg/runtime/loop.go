package runtime

import (
	"context"
	"time"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// Run processes events, posted functions and async completions until ctx is
// done or the Runtime is closed. Queued renders that did not come from an
// event are flushed every Config.TickInterval.
func (r *Runtime) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-r.done:
			return ErrStopped

		case ev := <-r.events:
			if err := r.Dispatch(ctx, ev); err != nil && err != ErrStopped {
				r.logger.Error("dispatch failed", "event", ev.Name, "error", err)
			}

		case fn := <-r.posts:
			r.locked(fn)

		case apply := <-r.arena.Completions():
			r.locked(apply)

		case <-ticker.C:
			if _, err := r.Tick(ctx); err != nil && err != ErrStopped {
				r.logger.Error("tick failed", "error", err)
			}
		}
	}
}

func (r *Runtime) locked(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("posted function panicked", "panic", p)
		}
	}()
	fn()
}

// Send queues ev for Run. It blocks while the event queue is full.
func (r *Runtime) Send(ctx context.Context, ev *vdom.Event) error {
	if r.closed() {
		return ErrStopped
	}
	select {
	case r.events <- ev:
		return nil
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues fn to run on the Run goroutine with exclusive access to the
// tree. State written by fn is rendered on the next tick.
func (r *Runtime) Post(ctx context.Context, fn func()) error {
	if r.closed() {
		return ErrStopped
	}
	select {
	case r.posts <- fn:
		return nil
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runtime) closed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}
