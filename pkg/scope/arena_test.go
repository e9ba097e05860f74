package scope

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	verrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/vdom"
)

func quietArena(opts ...Option) *Arena {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return NewArena(opts...)
}

func static(name string) *Definition {
	return Define(name, func(c *Ctx, props any) *vdom.Node {
		return vdom.Div(vdom.Text(name))
	})
}

func TestIDString(t *testing.T) {
	id := makeID(3, 7)
	if id.Index() != 3 || id.Generation() != 7 {
		t.Errorf("makeID(3, 7) = (%d, %d)", id.Index(), id.Generation())
	}
	if got := id.String(); got != "s3.7" {
		t.Errorf("String() = %q, want %q", got, "s3.7")
	}
	if got := NoID.String(); got != "s-" {
		t.Errorf("NoID.String() = %q", got)
	}
}

func TestMountGetUnmount(t *testing.T) {
	a := quietArena()
	root := a.Mount(static("Root"), nil, NoID)
	child := a.Mount(static("Child"), 1, root)

	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
	s, ok := a.Get(child)
	if !ok {
		t.Fatal("child not alive")
	}
	if s.Parent() != root || s.Height() != 1 || s.Props() != 1 || !s.Dirty() {
		t.Errorf("child = parent %s height %d props %v dirty %v", s.Parent(), s.Height(), s.Props(), s.Dirty())
	}
	if rs, _ := a.Get(root); len(rs.Children()) != 1 || rs.Children()[0] != child {
		t.Errorf("root children = %v", rs.Children())
	}

	a.Unmount(root)
	if a.Alive(root) || a.Alive(child) {
		t.Error("unmount should remove the subtree")
	}
	if a.Len() != 0 {
		t.Errorf("Len() = %d, want 0", a.Len())
	}
	a.Unmount(root) // dead: no-op
}

func TestStaleIDAfterReuse(t *testing.T) {
	a := quietArena()
	old := a.Mount(static("A"), nil, NoID)
	a.Unmount(old)
	fresh := a.Mount(static("B"), nil, NoID)

	if fresh.Index() != old.Index() {
		t.Fatalf("slot not recycled: %s vs %s", fresh, old)
	}
	if fresh == old {
		t.Fatal("recycled slot reused the same ID")
	}
	if a.Alive(old) {
		t.Error("stale ID resolves after reuse")
	}
	if err := a.SetProps(old, 1); !errors.Is(err, ErrDeadScope) {
		t.Errorf("SetProps(stale) = %v, want ErrDeadScope", err)
	}
	if _, err := a.Render(old); !verrors.HasCode(err, "E004") {
		t.Errorf("Render(stale) = %v, want E004", err)
	}
	if a.MarkDirty(old) {
		t.Error("MarkDirty(stale) = true")
	}
}

func TestRenderClearsDirty(t *testing.T) {
	a := quietArena()
	id := a.Mount(static("A"), nil, NoID)
	node, err := a.Render(id)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if node.Tag != "div" {
		t.Errorf("Render tag = %q", node.Tag)
	}
	s, _ := a.Get(id)
	if s.Dirty() || s.Renders() != 1 {
		t.Errorf("after render dirty=%v renders=%d", s.Dirty(), s.Renders())
	}
}

func TestNilRenderIsPlaceholder(t *testing.T) {
	a := quietArena()
	id := a.Mount(Define("Nil", func(*Ctx, any) *vdom.Node { return nil }), nil, NoID)
	node, err := a.Render(id)
	if err != nil || node.Kind != vdom.KindPlaceholder {
		t.Errorf("Render = %v, %v; want placeholder", node, err)
	}
}

func TestDirtyFuncPriority(t *testing.T) {
	type mark struct {
		id ID
		p  Priority
	}
	var marks []mark
	a := quietArena(WithDirtyFunc(func(id ID, p Priority) { marks = append(marks, mark{id, p}) }))
	id := a.Mount(static("A"), nil, NoID)

	a.MarkDirty(id)
	a.WithPriority(PriorityHigh, func() { a.MarkDirty(id) })
	a.MarkDirtyWith(id, PriorityLow)

	want := []mark{{id, PriorityNormal}, {id, PriorityHigh}, {id, PriorityLow}}
	if len(marks) != len(want) {
		t.Fatalf("marks = %v, want %v", marks, want)
	}
	for i := range want {
		if marks[i] != want[i] {
			t.Errorf("mark[%d] = %v, want %v", i, marks[i], want[i])
		}
	}
}

func TestRenderPanicIsRecovered(t *testing.T) {
	a := quietArena()
	fail := true
	id := a.Mount(Define("Flaky", func(c *Ctx, _ any) *vdom.Node {
		UseState(c, 0)
		if fail {
			panic("boom")
		}
		return vdom.Text("ok")
	}), nil, NoID)

	_, err := a.Render(id)
	if !verrors.HasCode(err, "E001") {
		t.Fatalf("Render = %v, want E001", err)
	}
	var re *RenderError
	if !errors.As(err, &re) || re.Value != "boom" || len(re.Stack) == 0 {
		t.Errorf("RenderError = %+v", re)
	}

	fail = false
	node, err := a.Render(id)
	if err != nil || node.Text != "ok" {
		t.Errorf("second Render = %v, %v", node, err)
	}
}

func TestUnmountOrder(t *testing.T) {
	a := quietArena()
	var order []string
	named := func(name string) *Definition {
		return Define(name, func(c *Ctx, _ any) *vdom.Node {
			OnCleanup(c, func() { order = append(order, name+".first") })
			OnCleanup(c, func() { order = append(order, name+".second") })
			return nil
		})
	}
	root := a.Mount(named("root"), nil, NoID)
	c1 := a.Mount(named("c1"), nil, root)
	c2 := a.Mount(named("c2"), nil, root)
	for _, id := range []ID{root, c1, c2} {
		if _, err := a.Render(id); err != nil {
			t.Fatal(err)
		}
	}

	a.Unmount(root)
	want := "c2.second c2.first c1.second c1.first root.second root.first"
	if got := strings.Join(order, " "); got != want {
		t.Errorf("cleanup order = %q, want %q", got, want)
	}
}

func TestCleanupReplacedEachRender(t *testing.T) {
	a := quietArena()
	var ran []int
	id := a.Mount(Define("R", func(c *Ctx, _ any) *vdom.Node {
		n := c.Renders()
		OnCleanup(c, func() { ran = append(ran, n) })
		return nil
	}), nil, NoID)
	for i := 0; i < 3; i++ {
		a.MarkDirty(id)
		if _, err := a.Render(id); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff([]int{0, 1}, ran); diff != "" {
		t.Errorf("cleanups before unmount (-want +got):\n%s", diff)
	}
	a.Unmount(id)
	if diff := cmp.Diff([]int{0, 1, 2}, ran); diff != "" {
		t.Errorf("cleanups after unmount (-want +got):\n%s", diff)
	}
}

func TestCleanupPanicDoesNotStopUnmount(t *testing.T) {
	var buf bytes.Buffer
	a := NewArena(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	ran := false
	id := a.Mount(Define("P", func(c *Ctx, _ any) *vdom.Node {
		OnCleanup(c, func() { ran = true })
		OnCleanup(c, func() { panic("cleanup") })
		return nil
	}), nil, NoID)
	if _, err := a.Render(id); err != nil {
		t.Fatal(err)
	}
	a.Unmount(id)
	if !ran {
		t.Error("earlier cleanup skipped after panic")
	}
	if a.Alive(id) {
		t.Error("scope alive after unmount")
	}
	if !strings.Contains(buf.String(), "E009") {
		t.Errorf("log = %q, want E009", buf.String())
	}
}

func TestVerifyModeReportsImpureRender(t *testing.T) {
	var buf bytes.Buffer
	a := NewArena(
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		WithVerify(true),
	)
	calls := 0
	id := a.Mount(Define("Impure", func(c *Ctx, _ any) *vdom.Node {
		calls++
		return vdom.Textf("%d", calls)
	}), nil, NoID)

	if _, err := a.Render(id); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if !strings.Contains(buf.String(), "impure render") {
		t.Errorf("log = %q, want impure render warning", buf.String())
	}

	buf.Reset()
	pure := a.Mount(static("Pure"), nil, NoID)
	if _, err := a.Render(pure); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "impure") {
		t.Errorf("pure component flagged: %q", buf.String())
	}
}

func TestEach(t *testing.T) {
	a := quietArena()
	a.Mount(static("A"), nil, NoID)
	b := a.Mount(static("B"), nil, NoID)
	a.Mount(static("C"), nil, NoID)
	a.Unmount(b)

	var names []string
	a.Each(func(s *Scope) { names = append(names, s.Name()) })
	if got := strings.Join(names, ","); got != "A,C" {
		t.Errorf("Each = %q, want A,C", got)
	}
}
