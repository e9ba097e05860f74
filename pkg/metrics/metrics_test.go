package metrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	verrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/diff"
	"github.com/vango-dev/vtree/pkg/runtime"
	"github.com/vango-dev/vtree/pkg/scope"
	"github.com/vango-dev/vtree/pkg/vdom"
	"github.com/vango-dev/vtree/pkg/vtest"
)

func TestCollectorObserverMethods(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithRegistry(reg), WithNamespace("test"))

	c.TickCompleted(runtime.TickStats{Mutations: 5, Effects: 2, Deferred: 3, Duration: time.Millisecond})
	c.ScopeRendered(diff.RenderInfo{Component: "Counter", Duration: time.Microsecond})
	c.ScopeRendered(diff.RenderInfo{Component: "Counter", Err: verrors.New("E001")})
	c.ScopeRendered(diff.RenderInfo{Component: "Other", Err: errors.New("plain")})
	c.EventDispatched("click", time.Microsecond, nil)
	c.EventDispatched("click", time.Microsecond, verrors.New("E008"))
	c.BackendFailed(errors.New("down"))

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"ticks", testutil.ToFloat64(c.ticks), 1},
		{"mutations", testutil.ToFloat64(c.mutations), 5},
		{"effects", testutil.ToFloat64(c.effects), 2},
		{"deferred", testutil.ToFloat64(c.deferred), 3},
		{"renders success", testutil.ToFloat64(c.renders.WithLabelValues("Counter", "success")), 1},
		{"renders error", testutil.ToFloat64(c.renders.WithLabelValues("Counter", "error")), 1},
		{"render errors E001", testutil.ToFloat64(c.renderErrors.WithLabelValues("Counter", "E001")), 1},
		{"render errors internal", testutil.ToFloat64(c.renderErrors.WithLabelValues("Other", "internal")), 1},
		{"events success", testutil.ToFloat64(c.events.WithLabelValues("click", "success")), 1},
		{"events error", testutil.ToFloat64(c.events.WithLabelValues("click", "error")), 1},
		{"backend failures", testutil.ToFloat64(c.backendFailures), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestCollectorWithRuntime(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(WithRegistry(reg))
	b := vtest.NewBackend()
	rt := runtime.New(b,
		runtime.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		runtime.WithObserver(c))
	c.Track(rt)

	var count scope.State[int]
	counter := scope.Define("Counter", func(ctx *scope.Ctx, _ any) *vdom.Node {
		count = scope.UseState(ctx, 0)
		return vdom.Button(vdom.OnClick(func(*vdom.Event) { count.Set(count.Get() + 1) }), vdom.Textf("%d", count.Get()))
	})
	if err := rt.Mount(context.Background(), counter.Node(nil)); err != nil {
		t.Fatal(err)
	}
	btn := b.MustFind(t, "button")
	if err := rt.Dispatch(context.Background(), &vdom.Event{Name: "click", Target: btn.Handle}); err != nil {
		t.Fatal(err)
	}

	expected := `
# HELP vtree_renders_total Total number of component renders
# TYPE vtree_renders_total counter
vtree_renders_total{component="Counter",status="success"} 2
# HELP vtree_scopes Number of mounted component scopes
# TYPE vtree_scopes gauge
vtree_scopes 1
# HELP vtree_events_total Total number of dispatched events
# TYPE vtree_events_total counter
vtree_events_total{event="click",status="success"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"vtree_renders_total", "vtree_scopes", "vtree_events_total"); err != nil {
		t.Error(err)
	}
	if got := testutil.ToFloat64(c.mutations); got != 1 {
		t.Errorf("mutations = %v, want 1", got)
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(WithRegistry(reg))
	defer func() {
		if recover() == nil {
			t.Error("second New on the same registry should panic")
		}
	}()
	New(WithRegistry(reg))
}
