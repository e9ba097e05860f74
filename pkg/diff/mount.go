package diff

import (
	"github.com/vango-dev/vtree/pkg/scope"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// mount is one node of the committed tree.
type mount struct {
	kind     vdom.Kind
	node     *vdom.Node
	handle   vdom.Handle // KindElement and KindText only
	parent   *mount
	children []*mount // a component mount has exactly one child: its output
	scope    scope.ID // KindComponent only
	owner    scope.ID // scope whose render produced this node
}

func (m *mount) key() string {
	if m.node == nil {
		return ""
	}
	return m.node.Key
}

// realNodes appends the top-level backend handles of m in document order.
func realNodes(m *mount, out []vdom.Handle) []vdom.Handle {
	switch m.kind {
	case vdom.KindElement, vdom.KindText:
		return append(out, m.handle)
	case vdom.KindPlaceholder:
		return out
	default:
		for _, c := range m.children {
			out = realNodes(c, out)
		}
		return out
	}
}

func firstReal(m *mount) vdom.Handle {
	switch m.kind {
	case vdom.KindElement, vdom.KindText:
		return m.handle
	case vdom.KindPlaceholder:
		return vdom.NoHandle
	default:
		for _, c := range m.children {
			if h := firstReal(c); h != vdom.NoHandle {
				return h
			}
		}
		return vdom.NoHandle
	}
}

// container returns the handle of the element that holds m's real nodes.
func container(m *mount) vdom.Handle {
	for p := m.parent; p != nil; p = p.parent {
		if p.kind == vdom.KindElement {
			return p.handle
		}
	}
	return vdom.RootHandle
}

// anchorAfter returns the first real node following m inside its container,
// or NoHandle when m's content sits at the end.
func anchorAfter(m *mount) vdom.Handle {
	for x := m; x.parent != nil; x = x.parent {
		p := x.parent
		after := false
		for _, sib := range p.children {
			if after {
				if h := firstReal(sib); h != vdom.NoHandle {
					return h
				}
			} else if sib == x {
				after = true
			}
		}
		if p.kind == vdom.KindElement {
			return vdom.NoHandle
		}
	}
	return vdom.NoHandle
}

func walkMounts(m *mount, fn func(*mount)) {
	fn(m)
	for _, c := range m.children {
		walkMounts(c, fn)
	}
}

// compatible reports whether old can be updated in place to n.
func compatible(old *mount, n *vdom.Node) bool {
	if old.kind != n.Kind || old.key() != n.Key {
		return false
	}
	switch n.Kind {
	case vdom.KindElement:
		return old.node.Tag == n.Tag
	case vdom.KindComponent:
		return old.node.Comp == n.Comp
	}
	return true
}
