package scope

import (
	"reflect"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// Ctx is the hook context handed to a render function. It is valid only
// until the render function returns.
type Ctx struct {
	arena  *Arena
	scope  *Scope
	idx    int
	active bool
}

// ID returns the rendering scope's identity.
func (c *Ctx) ID() ID { return c.scope.id }

// Name returns the rendering component's name.
func (c *Ctx) Name() string { return c.scope.Name() }

// Props returns the raw props of this render.
func (c *Ctx) Props() any { return c.scope.props }

// Renders is the number of renders completed before this one.
func (c *Ctx) Renders() int { return c.scope.renders }

// Arena returns the owning arena.
func (c *Ctx) Arena() *Arena { return c.arena }

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// use claims the next hook slot. It reports whether the slot is new.
func (c *Ctx) use(kind HookKind, typ reflect.Type, name string) (int, bool) {
	if !c.active {
		panic(&outsideRenderError{hook: kind})
	}
	s := c.scope
	i := c.idx
	c.idx++
	if i < len(s.slots) {
		sl := &s.slots[i]
		if sl.kind != kind {
			panic(&HookError{Scope: s.id, Component: s.Name(), Slot: i, Want: sl.kind, Got: kind})
		}
		if sl.typ != typ || sl.name != name {
			panic(&HookError{Scope: s.id, Component: s.Name(), Slot: i, Want: sl.kind, Got: kind,
				Detail: "expected " + describeSlot(sl.typ, sl.name) + ", got " + describeSlot(typ, name)})
		}
		return i, false
	}
	if s.locked {
		panic(&HookError{Scope: s.id, Component: s.Name(), Slot: i, Got: kind})
	}
	s.slots = append(s.slots, slot{kind: kind, typ: typ, name: name})
	return i, true
}

func describeSlot(t reflect.Type, name string) string {
	ts := "<nil>"
	if t != nil {
		ts = t.String()
	}
	if name != "" {
		return name + "[" + ts + "]"
	}
	return ts
}

// State is a handle to a UseState slot. It stores the owning scope ID and
// slot index, never a pointer into the scope, so it is safe to capture in
// listeners and goroutine results; once the scope is unmounted Get returns
// the zero value and Set does nothing.
type State[T any] struct {
	arena *Arena
	id    ID
	slot  int
}

// UseState returns the state stored in the next slot, initialising it to
// initial on the first render.
func UseState[T any](c *Ctx, initial T) State[T] {
	i, fresh := c.use(HookState, typeOf[T](), "")
	if fresh {
		c.scope.slots[i].value = initial
	}
	return State[T]{arena: c.arena, id: c.scope.id, slot: i}
}

// UseStateFunc is UseState with a lazily computed initial value.
func UseStateFunc[T any](c *Ctx, initial func() T) State[T] {
	i, fresh := c.use(HookState, typeOf[T](), "")
	if fresh {
		c.scope.slots[i].value = initial()
	}
	return State[T]{arena: c.arena, id: c.scope.id, slot: i}
}

// Get returns the current value.
func (s State[T]) Get() T {
	v, _ := s.arena.slotValue(s.id, s.slot)
	t, _ := v.(T)
	return t
}

// Set stores v and marks the owning scope dirty.
func (s State[T]) Set(v T) {
	if s.arena.setSlotValue(s.id, s.slot, v) {
		s.arena.MarkDirty(s.id)
	}
}

// Update applies fn to the current value and stores the result.
func (s State[T]) Update(fn func(T) T) {
	if !s.arena.Alive(s.id) {
		return
	}
	s.Set(fn(s.Get()))
}

// Alive reports whether the owning scope is still mounted.
func (s State[T]) Alive() bool {
	return s.arena.Alive(s.id)
}

// Scope returns the owning scope ID.
func (s State[T]) Scope() ID {
	return s.id
}

type memoCell struct {
	value any
	deps  []any
}

// UseMemo caches compute's result until deps change. With no deps the value
// is computed once.
func UseMemo[T any](c *Ctx, compute func() T, deps ...any) T {
	i, fresh := c.use(HookMemo, typeOf[T](), "")
	if m, ok := c.scope.slots[i].value.(*memoCell); !fresh && ok && depsEqual(m.deps, deps) {
		v, _ := m.value.(T)
		return v
	}
	v := compute()
	c.scope.slots[i].value = &memoCell{value: v, deps: copyDeps(deps)}
	return v
}

// Ref is a mutable box that survives renders without scheduling them.
type Ref[T any] struct {
	Current T
}

// UseRef returns the scope's Ref for this slot.
func UseRef[T any](c *Ctx, initial T) *Ref[T] {
	i, fresh := c.use(HookRef, typeOf[T](), "")
	if fresh {
		c.scope.slots[i].value = &Ref[T]{Current: initial}
	}
	return c.scope.slots[i].value.(*Ref[T])
}

type effectCell struct {
	fn      func() func()
	deps    []any
	pending bool
}

var effectType = reflect.TypeOf((*effectCell)(nil))

// UseEffect schedules fn to run after the render has been committed to the
// backend. fn runs again, after its previous cleanup, whenever deps change;
// with no deps it runs after every render. The returned cleanup (may be nil)
// runs before the next run and when the scope unmounts.
func UseEffect(c *Ctx, fn func() func(), deps ...any) {
	i, fresh := c.use(HookEffect, effectType, "")
	sl := &c.scope.slots[i]
	cell, _ := sl.value.(*effectCell)
	if fresh {
		cell = &effectCell{}
		sl.value = cell
	}
	run := fresh || len(deps) == 0 || !depsEqual(cell.deps, deps)
	cell.fn = fn
	if !run {
		return
	}
	cell.deps = copyDeps(deps)
	if !cell.pending {
		cell.pending = true
		c.arena.pendingEffects = append(c.arena.pendingEffects, effectRef{id: c.scope.id, slot: i})
	}
}

// onMount is the dependency used by UseMountEffect; it never changes.
type onMount struct{}

// UseMountEffect runs fn once after the first commit.
func UseMountEffect(c *Ctx, fn func() func()) {
	UseEffect(c, fn, onMount{})
}

// OnCleanup registers fn to run when the scope unmounts. A later render
// replaces the registration, running the replaced fn first, so every
// registered fn runs exactly once.
func OnCleanup(c *Ctx, fn func()) {
	i, fresh := c.use(HookCleanup, nil, "")
	if !fresh {
		c.arena.runCleanup(c.scope, i)
	}
	c.scope.slots[i].cleanup = fn
}

// Hook describes a custom hook. Init creates the stored value; it is called
// on the first render and again whenever Deps change, after Cleanup has run
// on the value being replaced. Read, when set, maps the stored value to the
// value returned from each render.
type Hook[T any] struct {
	Name    string
	Init    func() T
	Read    func(T) T
	Cleanup func(T)
	Deps    []any
}

type hookCell struct {
	value any
	deps  []any
}

// UseHook runs the custom hook h in the next slot.
func UseHook[T any](c *Ctx, h Hook[T]) T {
	i, fresh := c.use(HookCustom, typeOf[T](), h.Name)
	cell, _ := c.scope.slots[i].value.(*hookCell)
	if fresh || cell == nil || !depsEqual(cell.deps, h.Deps) {
		if !fresh {
			c.arena.runCleanup(c.scope, i)
		}
		var v T
		if h.Init != nil {
			v = h.Init()
		}
		cell = &hookCell{value: v, deps: copyDeps(h.Deps)}
		sl := &c.scope.slots[i]
		sl.value = cell
		if h.Cleanup != nil {
			cleanup := h.Cleanup
			sl.cleanup = func() { cleanup(v) }
		}
	}
	v, _ := cell.value.(T)
	if h.Read != nil {
		return h.Read(v)
	}
	return v
}

func depsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !vdom.PropsEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func copyDeps(deps []any) []any {
	if len(deps) == 0 {
		return nil
	}
	out := make([]any, len(deps))
	copy(out, deps)
	return out
}
