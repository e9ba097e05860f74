package scope

import (
	"context"
	"log/slog"

	verrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// DirtyFunc is notified every time a live scope is marked dirty.
type DirtyFunc func(id ID, p Priority)

// Option configures an Arena.
type Option func(*Arena)

// WithLogger sets the arena logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Arena) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithDirtyFunc sets the callback used to enqueue dirty scopes.
func WithDirtyFunc(fn DirtyFunc) Option {
	return func(a *Arena) { a.onDirty = fn }
}

// WithVerify enables double rendering. Every render is performed twice and
// the outputs compared; differing outputs are logged as impure renders.
func WithVerify(on bool) Option {
	return func(a *Arena) { a.verify = on }
}

// WithCompletionBuffer sets the capacity of the completion channel.
func WithCompletionBuffer(n int) Option {
	return func(a *Arena) {
		if n >= 0 {
			a.completionCap = n
		}
	}
}

type entry struct {
	gen   uint32
	scope *Scope
}

type effectRef struct {
	id   ID
	slot int
}

// Arena is the scope registry. The zero value is not usable; call NewArena.
type Arena struct {
	entries []entry // index 0 is reserved so that NoID never resolves
	free    []uint32
	live    int

	logger   *slog.Logger
	onDirty  DirtyFunc
	priority Priority
	verify   bool

	pendingEffects []effectRef
	invalidated    []ID

	base          context.Context
	stop          context.CancelFunc
	completions   chan func()
	completionCap int
	nextTask      uint64
}

// NewArena creates an empty arena.
func NewArena(opts ...Option) *Arena {
	a := &Arena{
		entries:       make([]entry, 1, 64),
		logger:        slog.Default(),
		priority:      PriorityNormal,
		completionCap: 64,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.base, a.stop = context.WithCancel(context.Background())
	a.completions = make(chan func(), a.completionCap)
	return a
}

// Logger returns the arena logger.
func (a *Arena) Logger() *slog.Logger {
	return a.logger
}

// Len returns the number of live scopes.
func (a *Arena) Len() int {
	return a.live
}

// Mount allocates a scope for def with the given parent. The parent may be
// NoID for a root scope. The new scope starts dirty.
func (a *Arena) Mount(def *Definition, props any, parent ID) ID {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.entries = append(a.entries, entry{gen: 1})
		idx = uint32(len(a.entries) - 1)
	}
	e := &a.entries[idx]
	id := makeID(idx, e.gen)
	s := &Scope{id: id, def: def, props: props, dirty: true}
	if p, ok := a.Get(parent); ok {
		s.parent = parent
		s.height = p.height + 1
		p.children = append(p.children, id)
	}
	e.scope = s
	a.live++
	a.logger.Debug("scope mounted", "scope_id", id.String(), "component", s.Name(), "parent", parent.String())
	return id
}

// Get returns the scope for id if it is alive.
func (a *Arena) Get(id ID) (*Scope, bool) {
	if id == NoID {
		return nil, false
	}
	idx := id.Index()
	if int(idx) >= len(a.entries) {
		return nil, false
	}
	e := a.entries[idx]
	if e.scope == nil || e.gen != id.Generation() {
		return nil, false
	}
	return e.scope, true
}

// Alive reports whether id refers to a live scope.
func (a *Arena) Alive(id ID) bool {
	_, ok := a.Get(id)
	return ok
}

// Each calls fn for every live scope in slot order.
func (a *Arena) Each(fn func(*Scope)) {
	for _, e := range a.entries {
		if e.scope != nil {
			fn(e.scope)
		}
	}
}

// MarkDirty flags id for re-render at the arena's current priority. It is a
// no-op for dead scopes.
func (a *Arena) MarkDirty(id ID) bool {
	return a.MarkDirtyWith(id, a.priority)
}

// MarkDirtyWith flags id for re-render at priority p.
func (a *Arena) MarkDirtyWith(id ID, p Priority) bool {
	s, ok := a.Get(id)
	if !ok {
		a.logger.Debug("dirty mark for dead scope ignored", "scope_id", id.String())
		return false
	}
	s.dirty = true
	if a.onDirty != nil {
		a.onDirty(id, p)
	}
	return true
}

// WithPriority runs fn with dirty marks attributed to priority p.
func (a *Arena) WithPriority(p Priority, fn func()) {
	prev := a.priority
	a.priority = p
	defer func() { a.priority = prev }()
	fn()
}

// SetProps replaces the props used by the next render of id.
func (a *Arena) SetProps(id ID, props any) error {
	s, ok := a.Get(id)
	if !ok {
		return deadScope(id)
	}
	s.props = props
	return nil
}

// Commit records tree as the committed output of id.
func (a *Arena) Commit(id ID, tree *vdom.Node) error {
	s, ok := a.Get(id)
	if !ok {
		return deadScope(id)
	}
	s.tree = tree
	return nil
}

// Render invokes the component function of id and returns its output. The
// dirty flag is cleared before the call so that state written during render
// schedules another pass. A hook misuse leaves the scope broken: every later
// Render returns the same error without calling the component.
func (a *Arena) Render(id ID) (*vdom.Node, error) {
	s, ok := a.Get(id)
	if !ok {
		return nil, deadScope(id)
	}
	if s.broken != nil {
		s.dirty = false
		return nil, s.broken
	}
	s.dirty = false

	node, err := a.renderOnce(s)
	if err == nil && a.verify {
		again, verr := a.renderOnce(s)
		switch {
		case verr != nil:
			err = verr
		case !vdom.Equal(node, again):
			a.logger.Warn("impure render detected",
				"scope_id", s.id.String(),
				"component", s.Name(),
				"error", verrors.New("E011").WithScope(s.describe()).Error())
		}
	}
	if err != nil {
		if verrors.HasCode(err, "E002") || verrors.HasCode(err, "E003") {
			s.broken = err
		}
		a.logger.Error("render failed", "scope_id", s.id.String(), "component", s.Name(), "error", err)
		return nil, err
	}
	s.renders++
	return node, nil
}

func (a *Arena) renderOnce(s *Scope) (node *vdom.Node, err error) {
	c := &Ctx{arena: a, scope: s, active: true}
	s.rendering = true
	defer func() {
		s.rendering = false
		c.active = false
		if r := recover(); r != nil {
			node, err = nil, recoverRender(s, r)
		}
	}()

	node = s.def.render(c, s.props)
	if s.locked && c.idx < len(s.slots) {
		panic(&HookError{Scope: s.id, Component: s.Name(), Slot: c.idx, Want: s.slots[c.idx].kind})
	}
	s.locked = true
	if node == nil {
		node = vdom.Placeholder()
	}
	return node, nil
}

// Unmount destroys id and all of its descendants, children first and in
// reverse mount order. Tasks are cancelled, hook cleanups run once in
// reverse slot order, and the slot is recycled under a new generation.
// Unmounting a dead scope is a no-op.
func (a *Arena) Unmount(id ID) {
	s, ok := a.Get(id)
	if !ok || s.unmounted {
		return
	}
	s.unmounted = true

	children := make([]ID, len(s.children))
	copy(children, s.children)
	for i := len(children) - 1; i >= 0; i-- {
		a.Unmount(children[i])
	}
	s.children = nil

	for _, t := range s.tasks {
		t.cancel()
	}
	s.tasks = nil

	for i := len(s.slots) - 1; i >= 0; i-- {
		a.runCleanup(s, i)
	}

	if p, ok := a.Get(s.parent); ok {
		p.removeChild(id)
	}

	idx := id.Index()
	e := &a.entries[idx]
	e.scope = nil
	e.gen++
	if e.gen == 0 {
		e.gen = 1
	}
	a.free = append(a.free, idx)
	a.live--
	a.logger.Debug("scope unmounted", "scope_id", id.String(), "component", s.Name())
}

func (a *Arena) runCleanup(s *Scope, i int) {
	fn := s.slots[i].cleanup
	s.slots[i].cleanup = nil
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("cleanup panicked",
				"scope_id", s.id.String(),
				"component", s.Name(),
				"slot", i,
				"error", verrors.New("E009").WithScope(s.describe()).WithSlot(i).Error(),
				"panic", r)
		}
	}()
	fn()
}

// TakeInvalidated returns the consumers marked dirty by a context value
// change since the last call, and forgets them.
func (a *Arena) TakeInvalidated() []ID {
	ids := a.invalidated
	a.invalidated = nil
	return ids
}

// PendingEffects reports whether RunEffects has work.
func (a *Arena) PendingEffects() bool {
	return len(a.pendingEffects) > 0
}

// RunEffects runs the effects scheduled by renders since the last call.
// Each effect's previous cleanup runs first. It returns the number of
// effects run.
func (a *Arena) RunEffects() int {
	pending := a.pendingEffects
	a.pendingEffects = nil
	n := 0
	for _, ref := range pending {
		s, ok := a.Get(ref.id)
		if !ok || ref.slot >= len(s.slots) {
			continue
		}
		cell, ok := s.slots[ref.slot].value.(*effectCell)
		if !ok || !cell.pending {
			continue
		}
		cell.pending = false
		a.runCleanup(s, ref.slot)
		cleanup := a.runEffect(s, ref.slot, cell.fn)
		if s.unmounted {
			if cleanup != nil {
				cleanup()
			}
			continue
		}
		s.slots[ref.slot].cleanup = cleanup
		n++
	}
	return n
}

func (a *Arena) runEffect(s *Scope, i int, fn func() func()) (cleanup func()) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("effect panicked",
				"scope_id", s.id.String(),
				"component", s.Name(),
				"slot", i,
				"panic", r)
			cleanup = nil
		}
	}()
	return fn()
}

// Completions delivers the results of asynchronous tasks. Each value must be
// called on the goroutine that owns the arena.
func (a *Arena) Completions() <-chan func() {
	return a.completions
}

// Close cancels every outstanding task. The arena stays readable.
func (a *Arena) Close() {
	a.stop()
}

func (a *Arena) slotValue(id ID, i int) (any, bool) {
	s, ok := a.Get(id)
	if !ok || i >= len(s.slots) {
		return nil, false
	}
	return s.slots[i].value, true
}

func (a *Arena) setSlotValue(id ID, i int, v any) bool {
	s, ok := a.Get(id)
	if !ok || i >= len(s.slots) {
		a.logger.Debug("write to dead scope ignored", "scope_id", id.String(), "slot", i)
		return false
	}
	s.slots[i].value = v
	return true
}
