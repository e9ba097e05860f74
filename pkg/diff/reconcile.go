package diff

import (
	"fmt"

	verrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/scope"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// create builds the mount for n and emits the mutations that create its
// backend nodes. The top-level real nodes are left detached; the caller
// attaches them.
func (d *Differ) create(n *vdom.Node, parent *mount, owner scope.ID) *mount {
	if n == nil {
		n = vdom.Placeholder()
	}
	m := &mount{kind: n.Kind, node: n, parent: parent, owner: owner}
	switch n.Kind {
	case vdom.KindText:
		m.handle = d.alloc()
		d.emit(vdom.Mutation{Op: vdom.OpCreateText, Handle: m.handle, Value: n.Text})
	case vdom.KindElement:
		m.handle = d.alloc()
		d.emit(vdom.Mutation{Op: vdom.OpCreateElement, Handle: m.handle, Tag: n.Tag})
		d.diffAttrs(m.handle, nil, n.Attrs)
		d.diffListeners(m, nil, n.Listeners)
		m.children = make([]*mount, 0, len(n.Children))
		for _, c := range n.Children {
			cm := d.create(c, m, owner)
			m.children = append(m.children, cm)
			for _, h := range realNodes(cm, nil) {
				d.emit(vdom.Mutation{Op: vdom.OpAppendChild, Parent: m.handle, Handle: h})
			}
		}
	case vdom.KindFragment:
		m.children = make([]*mount, 0, len(n.Children))
		for _, c := range n.Children {
			m.children = append(m.children, d.create(c, m, owner))
		}
	case vdom.KindComponent:
		d.mountComponent(m, n, owner)
	}
	return m
}

func (d *Differ) mountComponent(m *mount, n *vdom.Node, owner scope.ID) {
	def, ok := n.Comp.(*scope.Definition)
	if !ok {
		name := "<nil>"
		if n.Comp != nil {
			name = n.Comp.ComponentName()
		}
		err := verrors.New("E001").WithScope(name).Wrap(fmt.Errorf("component %T has no render function", n.Comp))
		d.errs = append(d.errs, err)
		d.logger.Error("render failed", "component", name, "error", err)
		m.kind = vdom.KindFragment // never compatible with n again, so it is rebuilt each pass
		m.children = []*mount{d.create(d.errorView(name, err), m, owner)}
		return
	}
	id := d.arena.Mount(def, n.Props, owner)
	m.scope = id
	d.owners[id] = m
	tree := d.render(id)
	m.children = []*mount{d.create(tree, m, id)}
	d.arena.Commit(id, tree)
}

// renderInto re-renders the component mount m and reconciles its output in
// place. anchor is the real node that follows m's content.
func (d *Differ) renderInto(m *mount, anchor vdom.Handle) {
	tree := d.render(m.scope)
	m.children[0] = d.diffNode(m.children[0], tree, anchor, m.scope)
	d.arena.Commit(m.scope, tree)
}

// diffNode updates old to n and returns the mount now occupying old's
// position, which is a fresh mount when the two were incompatible.
func (d *Differ) diffNode(old *mount, n *vdom.Node, anchor vdom.Handle, owner scope.ID) *mount {
	if n == nil {
		n = vdom.Placeholder()
	}
	if !compatible(old, n) {
		fresh := d.create(n, old.parent, owner)
		d.swap(old, fresh, anchor)
		return fresh
	}
	prev := old.node
	old.node = n
	old.owner = owner
	switch n.Kind {
	case vdom.KindText:
		if prev.Text != n.Text {
			d.emit(vdom.Mutation{Op: vdom.OpSetText, Handle: old.handle, Value: n.Text})
		}
	case vdom.KindElement:
		d.diffAttrs(old.handle, prev.Attrs, n.Attrs)
		d.diffListeners(old, prev.Listeners, n.Listeners)
		d.diffChildren(old, n.Children, vdom.NoHandle, owner)
	case vdom.KindFragment:
		d.diffChildren(old, n.Children, anchor, owner)
	case vdom.KindComponent:
		d.updateComponent(old, prev, n, anchor)
	}
	return old
}

func (d *Differ) updateComponent(m *mount, prev, n *vdom.Node, anchor vdom.Handle) {
	s, ok := d.arena.Get(m.scope)
	if !ok {
		return
	}
	changed := !vdom.PropsEqual(prev.Props, n.Props)
	if changed {
		d.arena.SetProps(m.scope, n.Props)
	}
	if !changed && !s.Dirty() {
		return
	}
	d.renderInto(m, anchor)
}

// swap puts fresh in place of old in the backend and releases old.
func (d *Differ) swap(old, fresh *mount, anchor vdom.Handle) {
	oldReal := realNodes(old, nil)
	newReal := realNodes(fresh, nil)
	if len(oldReal) == 1 && len(newReal) == 1 {
		d.emit(vdom.Mutation{Op: vdom.OpReplace, Old: oldReal[0], Handle: newReal[0]})
		d.release(old)
		return
	}
	parent := container(old)
	before := anchor
	if len(oldReal) > 0 {
		before = oldReal[0]
	}
	for _, h := range newReal {
		d.attach(parent, h, before)
	}
	d.remove(old)
}

// remove detaches m's real nodes and releases its subtree.
func (d *Differ) remove(m *mount) {
	for _, h := range realNodes(m, nil) {
		d.emit(vdom.Mutation{Op: vdom.OpRemove, Handle: h})
	}
	d.release(m)
}

// release forgets m's subtree and unmounts the scopes it contains.
func (d *Differ) release(m *mount) {
	walkMounts(m, func(x *mount) {
		switch x.kind {
		case vdom.KindElement, vdom.KindText:
			delete(d.listeners, x.handle)
			d.live--
		case vdom.KindComponent:
			delete(d.owners, x.scope)
		}
	})
	d.unmountScopes(m)
}

func (d *Differ) unmountScopes(m *mount) {
	if m.kind == vdom.KindComponent && m.scope != scope.NoID {
		d.arena.Unmount(m.scope)
		return
	}
	for i := len(m.children) - 1; i >= 0; i-- {
		d.unmountScopes(m.children[i])
	}
}

// diffChildren reconciles pm's children against next. anchor is the real
// node that follows pm's content (NoHandle for elements).
func (d *Differ) diffChildren(pm *mount, next []*vdom.Node, anchor vdom.Handle, owner scope.ID) {
	old := pm.children
	parent := pm.handle
	if pm.kind != vdom.KindElement {
		parent = container(pm)
	}

	oldKeyed := make(map[string]int)
	var oldUnkeyed []int
	for i, m := range old {
		k := m.key()
		if k == "" {
			oldUnkeyed = append(oldUnkeyed, i)
			continue
		}
		if _, dup := oldKeyed[k]; !dup {
			oldKeyed[k] = i
		}
	}

	src := make([]int, len(next))
	used := make([]bool, len(old))
	var seen map[string]bool
	u := 0
	for i, n := range next {
		src[i] = -1
		k := ""
		if n != nil {
			k = n.Key
		}
		if k == "" {
			if u < len(oldUnkeyed) {
				j := oldUnkeyed[u]
				u++
				src[i], used[j] = j, true
			}
			continue
		}
		if seen == nil {
			seen = make(map[string]bool)
		}
		if seen[k] {
			d.logger.Warn("duplicate key",
				"key", k,
				"scope_id", owner.String(),
				"error", verrors.New("E006").Error())
			continue
		}
		seen[k] = true
		if j, ok := oldKeyed[k]; ok && !used[j] {
			src[i], used[j] = j, true
		}
	}

	for j, m := range old {
		if !used[j] {
			d.remove(m)
		}
	}

	var matched, values []int
	for i, j := range src {
		if j >= 0 {
			matched = append(matched, i)
			values = append(values, j)
		}
	}
	stay := make([]bool, len(next))
	for _, p := range lis(values) {
		stay[matched[p]] = true
	}

	children := make([]*mount, len(next))
	cur := anchor
	for i := len(next) - 1; i >= 0; i-- {
		var m *mount
		if j := src[i]; j >= 0 {
			m = old[j]
			if !stay[i] {
				for _, h := range realNodes(m, nil) {
					d.emit(vdom.Mutation{Op: vdom.OpMove, Handle: h, Parent: parent, Anchor: cur})
				}
			}
			m = d.diffNode(m, next[i], cur, owner)
		} else {
			m = d.create(next[i], pm, owner)
			for _, h := range realNodes(m, nil) {
				d.attach(parent, h, cur)
			}
		}
		children[i] = m
		if h := firstReal(m); h != vdom.NoHandle {
			cur = h
		}
	}
	pm.children = children
}
