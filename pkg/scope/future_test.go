package scope

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vango-dev/vtree/pkg/vdom"
)

func waitCompletion(t *testing.T, a *Arena) func() {
	t.Helper()
	select {
	case fn := <-a.Completions():
		return fn
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for completion")
		return nil
	}
}

func TestUseFutureResolves(t *testing.T) {
	var marks []Priority
	a := quietArena(WithDirtyFunc(func(_ ID, p Priority) { marks = append(marks, p) }))
	var fut Future[string]
	id := a.Mount(Define("Loader", func(c *Ctx, _ any) *vdom.Node {
		fut = UseFuture(c, func(ctx context.Context) (string, error) {
			return "loaded", nil
		})
		return nil
	}), nil, NoID)

	a.Render(id)
	if !fut.Pending() {
		t.Error("future should be pending before completion is applied")
	}
	waitCompletion(t, a)()

	if v, ok := fut.Value(); !ok || v != "loaded" {
		t.Errorf("Value() = %q, %v", v, ok)
	}
	if len(marks) != 1 || marks[0] != PriorityLow {
		t.Errorf("dirty marks = %v, want [low]", marks)
	}
	a.Render(id)
	select {
	case <-a.Completions():
		t.Error("re-render with same deps restarted the future")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestUseFutureError(t *testing.T) {
	a := quietArena()
	boom := errors.New("boom")
	var fut Future[int]
	id := a.Mount(Define("Loader", func(c *Ctx, _ any) *vdom.Node {
		fut = UseFuture(c, func(ctx context.Context) (int, error) { return 0, boom })
		return nil
	}), nil, NoID)
	a.Render(id)
	waitCompletion(t, a)()
	if !errors.Is(fut.Err(), boom) {
		t.Errorf("Err() = %v, want boom", fut.Err())
	}
}

func TestUseFutureCancelledOnUnmount(t *testing.T) {
	a := quietArena()
	started := make(chan struct{})
	stopped := make(chan error, 1)
	id := a.Mount(Define("Slow", func(c *Ctx, _ any) *vdom.Node {
		UseFuture(c, func(ctx context.Context) (int, error) {
			close(started)
			<-ctx.Done()
			stopped <- ctx.Err()
			return 0, ctx.Err()
		})
		return nil
	}), nil, NoID)
	a.Render(id)
	<-started
	a.Unmount(id)

	select {
	case err := <-stopped:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("ctx.Err() = %v, want Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("task not cancelled")
	}
}

func TestSpawnResultIgnoredAfterUnmount(t *testing.T) {
	a := quietArena()
	release := make(chan struct{})
	applied := false
	id := a.Mount(Define("Bg", func(c *Ctx, _ any) *vdom.Node {
		if c.Renders() == 0 {
			Spawn(c, func(ctx context.Context) func() {
				<-release
				return func() { applied = true }
			})
		}
		return nil
	}), nil, NoID)
	a.Render(id)

	// Complete the task while the scope is alive, but apply after unmount.
	close(release)
	fn := waitCompletion(t, a)
	a.Unmount(id)
	fn()
	if applied {
		t.Error("completion applied to unmounted scope")
	}
}
