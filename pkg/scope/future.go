package scope

import (
	"context"
	"fmt"
)

type task struct {
	id     uint64
	scope  ID
	ctx    context.Context
	cancel context.CancelFunc
}

func (t *task) cancelled() bool {
	return t.ctx.Err() != nil
}

// spawn runs work on its own goroutine. The function it returns is applied
// on the arena owner's goroutine, and only if the task was not cancelled and
// the scope is still alive.
func (a *Arena) spawn(s *Scope, work func(ctx context.Context) func()) *task {
	a.nextTask++
	ctx, cancel := context.WithCancel(a.base)
	t := &task{id: a.nextTask, scope: s.id, ctx: ctx, cancel: cancel}
	if s.tasks == nil {
		s.tasks = make(map[uint64]*task)
	}
	s.tasks[t.id] = t

	go func() {
		apply := work(ctx)
		select {
		case a.completions <- func() { a.finish(t, apply) }:
		case <-ctx.Done():
		}
	}()
	return t
}

func (a *Arena) finish(t *task, apply func()) {
	defer t.cancel()
	if t.cancelled() {
		return
	}
	s, ok := a.Get(t.scope)
	if !ok {
		a.logger.Debug("task completed for dead scope", "scope_id", t.scope.String(), "task", t.id)
		return
	}
	delete(s.tasks, t.id)
	apply()
	a.MarkDirtyWith(t.scope, PriorityLow)
}

// Spawn starts fn in the background on behalf of the rendering scope and
// returns a cancel function. When fn returns, its result function is run on
// the arena owner's goroutine and the scope re-renders at low priority.
// Unmounting the scope cancels fn's context and discards its result.
func Spawn(c *Ctx, fn func(ctx context.Context) func()) context.CancelFunc {
	if !c.active {
		panic(&outsideRenderError{hook: HookFuture})
	}
	t := c.arena.spawn(c.scope, func(ctx context.Context) (apply func()) {
		defer func() {
			if r := recover(); r != nil {
				c.arena.logger.Error("task panicked", "scope_id", c.scope.id.String(), "panic", r)
				apply = func() {}
			}
		}()
		apply = fn(ctx)
		if apply == nil {
			apply = func() {}
		}
		return apply
	})
	return t.cancel
}

type futureCell struct {
	task  *task
	deps  []any
	value any
	err   error
	done  bool
}

// Future is a handle to a UseFuture slot.
type Future[T any] struct {
	arena *Arena
	id    ID
	slot  int
}

// UseFuture starts fn on the first render and whenever deps change. A
// restart cancels the previous run; its result is discarded.
func UseFuture[T any](c *Ctx, fn func(ctx context.Context) (T, error), deps ...any) Future[T] {
	i, fresh := c.use(HookFuture, typeOf[T](), "")
	cell, _ := c.scope.slots[i].value.(*futureCell)
	if fresh || cell == nil || !depsEqual(cell.deps, deps) {
		if cell != nil && cell.task != nil {
			cell.task.cancel()
			delete(c.scope.tasks, cell.task.id)
		}
		next := &futureCell{deps: copyDeps(deps)}
		c.scope.slots[i].value = next
		a, id := c.arena, c.scope.id
		next.task = a.spawn(c.scope, func(ctx context.Context) func() {
			v, err := runFuture(ctx, fn)
			return func() {
				cur, ok := a.slotValue(id, i)
				if !ok || cur != any(next) {
					return
				}
				next.value, next.err, next.done = v, err, true
			}
		})
	}
	return Future[T]{arena: c.arena, id: c.scope.id, slot: i}
}

func runFuture[T any](ctx context.Context, fn func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("future panicked: %v", r)
		}
	}()
	return fn(ctx)
}

func (f Future[T]) cell() *futureCell {
	v, ok := f.arena.slotValue(f.id, f.slot)
	if !ok {
		return nil
	}
	c, _ := v.(*futureCell)
	return c
}

// Value returns the result and whether the future has completed.
func (f Future[T]) Value() (T, bool) {
	var zero T
	c := f.cell()
	if c == nil || !c.done {
		return zero, false
	}
	v, _ := c.value.(T)
	return v, true
}

// Err returns the error of a completed future.
func (f Future[T]) Err() error {
	if c := f.cell(); c != nil {
		return c.err
	}
	return nil
}

// Pending reports whether the future is still running.
func (f Future[T]) Pending() bool {
	c := f.cell()
	return c != nil && !c.done
}
