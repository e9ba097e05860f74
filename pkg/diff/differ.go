package diff

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	verrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/scope"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// RenderInfo describes one component render performed during a pass.
type RenderInfo struct {
	Scope     scope.ID
	Component string
	Duration  time.Duration
	Err       error
}

// ErrorView builds the subtree shown in place of a component whose render
// failed. It must return the same tree for the same inputs.
type ErrorView func(component string, err error) *vdom.Node

// DefaultErrorView renders a small inline indicator carrying the error code.
func DefaultErrorView(component string, err error) *vdom.Node {
	code := verrors.Code(err)
	if code == "" {
		code = "E001"
	}
	msg := verrors.New(code).Message
	return vdom.Div(
		vdom.Data("vtree-error", code),
		vdom.Data("component", component),
		vdom.Role("alert"),
		vdom.Text(component+": "+msg),
	)
}

// Option configures a Differ.
type Option func(*Differ)

// WithLogger sets the logger used for render failures and key warnings.
func WithLogger(l *slog.Logger) Option {
	return func(d *Differ) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithErrorView replaces DefaultErrorView.
func WithErrorView(v ErrorView) Option {
	return func(d *Differ) {
		if v != nil {
			d.errorView = v
		}
	}
}

// WithRenderObserver registers fn to be called after every component render.
func WithRenderObserver(fn func(RenderInfo)) Option {
	return func(d *Differ) { d.observe = fn }
}

// Binding is a listener registered on a backend node.
type Binding struct {
	Scope   scope.ID // scope whose render attached the listener
	Handler vdom.Handler
}

// Differ owns the committed tree of one root. It is not safe for concurrent
// use.
type Differ struct {
	arena     *scope.Arena
	logger    *slog.Logger
	errorView ErrorView
	observe   func(RenderInfo)

	root      *mount
	last      vdom.Handle
	live      int
	owners    map[scope.ID]*mount
	listeners map[vdom.Handle]map[string]Binding

	out  []vdom.Mutation
	errs []error
}

// New creates a Differ whose components live in arena.
func New(arena *scope.Arena, opts ...Option) *Differ {
	d := &Differ{
		arena:     arena,
		logger:    slog.Default(),
		errorView: DefaultErrorView,
		root:      &mount{kind: vdom.KindElement, handle: vdom.RootHandle},
		last:      vdom.RootHandle,
		owners:    make(map[scope.ID]*mount),
		listeners: make(map[vdom.Handle]map[string]Binding),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Arena returns the scope arena.
func (d *Differ) Arena() *scope.Arena {
	return d.arena
}

// Mounted reports whether a tree has been committed.
func (d *Differ) Mounted() bool {
	return len(d.root.children) > 0
}

// Handles returns the number of live backend nodes.
func (d *Differ) Handles() int {
	return d.live
}

// Diff reconciles next against the committed tree and returns the
// mutations that transform the backend. The first call creates the whole
// tree under RootHandle. The returned error joins every render failure of
// the pass; the mutations are valid either way.
func (d *Differ) Diff(next *vdom.Node) ([]vdom.Mutation, error) {
	if next == nil {
		next = vdom.Placeholder()
	}
	if len(d.root.children) == 0 {
		m := d.create(next, d.root, scope.NoID)
		for _, h := range realNodes(m, nil) {
			d.attach(vdom.RootHandle, h, vdom.NoHandle)
		}
		d.root.children = []*mount{m}
	} else {
		d.root.children[0] = d.diffNode(d.root.children[0], next, vdom.NoHandle, scope.NoID)
	}
	d.settle()
	return d.flush()
}

// Rerender renders the dirty scope id and diffs its output against its
// committed tree. rendered is false when id is unknown, dead, or no longer
// dirty (for instance because an ancestor re-rendered it earlier in the
// same tick).
func (d *Differ) Rerender(id scope.ID) (muts []vdom.Mutation, rendered bool, err error) {
	m, ok := d.owners[id]
	if !ok {
		return nil, false, nil
	}
	s, ok := d.arena.Get(id)
	if !ok {
		delete(d.owners, id)
		return nil, false, nil
	}
	if !s.Dirty() {
		return nil, false, nil
	}
	d.renderInto(m, anchorAfter(m))
	d.settle()
	muts, err = d.flush()
	return muts, true, err
}

// settle renders the context consumers invalidated during this pass that
// the pass itself did not reach, such as consumers below a component whose
// props were unchanged. Shallower scopes go first so a consumer rendered as
// part of an ancestor is skipped.
func (d *Differ) settle() {
	for {
		ids := d.arena.TakeInvalidated()
		if len(ids) == 0 {
			return
		}
		height := make(map[scope.ID]int, len(ids))
		for _, id := range ids {
			if s, ok := d.arena.Get(id); ok {
				height[id] = s.Height()
			}
		}
		sort.SliceStable(ids, func(i, j int) bool { return height[ids[i]] < height[ids[j]] })
		for _, id := range ids {
			m, ok := d.owners[id]
			if !ok {
				continue
			}
			if s, ok := d.arena.Get(id); !ok || !s.Dirty() {
				continue
			}
			d.renderInto(m, anchorAfter(m))
		}
	}
}

// Listener resolves the handler bound to event on backend node h.
func (d *Differ) Listener(h vdom.Handle, event string) (Binding, bool) {
	b, ok := d.listeners[h][event]
	return b, ok
}

// Snapshot returns mutations that rebuild the committed tree on an empty
// backend, reusing the current handles.
func (d *Differ) Snapshot() []vdom.Mutation {
	var out []vdom.Mutation
	var emit func(m *mount, parent vdom.Handle)
	emit = func(m *mount, parent vdom.Handle) {
		switch m.kind {
		case vdom.KindText:
			out = append(out, vdom.Mutation{Op: vdom.OpCreateText, Handle: m.handle, Value: m.node.Text})
			out = append(out, vdom.Mutation{Op: vdom.OpAppendChild, Parent: parent, Handle: m.handle})
		case vdom.KindElement:
			out = append(out, vdom.Mutation{Op: vdom.OpCreateElement, Handle: m.handle, Tag: m.node.Tag})
			names, vals := effectiveAttrs(m.node.Attrs)
			for _, name := range names {
				if v, ok := vals[name]; ok {
					out = append(out, vdom.Mutation{Op: vdom.OpSetAttr, Handle: m.handle, Name: name, Value: v})
				}
			}
			for _, ev := range listenerOrder(m.node.Listeners) {
				out = append(out, vdom.Mutation{Op: vdom.OpSetListener, Handle: m.handle, Name: ev})
			}
			for _, c := range m.children {
				emit(c, m.handle)
			}
			out = append(out, vdom.Mutation{Op: vdom.OpAppendChild, Parent: parent, Handle: m.handle})
		default:
			for _, c := range m.children {
				emit(c, parent)
			}
		}
	}
	for _, c := range d.root.children {
		emit(c, vdom.RootHandle)
	}
	return out
}

// Teardown removes the committed tree and unmounts every scope in it.
func (d *Differ) Teardown() []vdom.Mutation {
	for _, m := range d.root.children {
		d.remove(m)
	}
	d.root.children = nil
	muts, _ := d.flush()
	return muts
}

func (d *Differ) flush() ([]vdom.Mutation, error) {
	out, errs := d.out, d.errs
	d.out, d.errs = nil, nil
	return out, errors.Join(errs...)
}

func (d *Differ) emit(m vdom.Mutation) {
	d.out = append(d.out, m)
}

func (d *Differ) alloc() vdom.Handle {
	d.last++
	d.live++
	return d.last
}

func (d *Differ) attach(parent, h, before vdom.Handle) {
	if before == vdom.NoHandle {
		d.emit(vdom.Mutation{Op: vdom.OpAppendChild, Parent: parent, Handle: h})
		return
	}
	d.emit(vdom.Mutation{Op: vdom.OpInsertBefore, Parent: parent, Handle: h, Anchor: before})
}

// render runs the component of id, substituting the error view on failure.
func (d *Differ) render(id scope.ID) *vdom.Node {
	start := time.Now()
	tree, err := d.arena.Render(id)
	name := ""
	if s, ok := d.arena.Get(id); ok {
		name = s.Name()
	}
	if d.observe != nil {
		d.observe(RenderInfo{Scope: id, Component: name, Duration: time.Since(start), Err: err})
	}
	if err != nil {
		d.errs = append(d.errs, err)
		return d.errorView(name, err)
	}
	return tree
}
