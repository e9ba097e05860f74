package mirror

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// Node is a mirrored node.
type Node struct {
	Handle    vdom.Handle
	Tag       string // empty for text nodes
	Text      string
	Attrs     map[string]string
	Listeners map[string]bool
	Children  []*Node
	Parent    *Node
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n.Tag == ""
}

// Attr returns the value of attribute name.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

func (n *Node) index() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

func (n *Node) detach() {
	if i := n.index(); i >= 0 {
		p := n.Parent
		p.Children = append(p.Children[:i], p.Children[i+1:]...)
	}
	n.Parent = nil
}

// Tree is a node tree kept in step with a stream of mutation batches.
// It is safe for concurrent use.
type Tree struct {
	mu    sync.Mutex
	nodes map[vdom.Handle]*Node
	root  *Node
}

// New returns an empty tree whose root is vdom.RootHandle.
func New() *Tree {
	t := &Tree{}
	t.reset()
	return t
}

func (t *Tree) reset() {
	t.root = &Node{Handle: vdom.RootHandle, Tag: "#root"}
	t.nodes = map[vdom.Handle]*Node{vdom.RootHandle: t.root}
}

// Reset clears every node.
func (t *Tree) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reset()
}

// Apply applies batch in order. A reset batch clears the tree first.
// Apply stops at the first invalid mutation and leaves the mutations
// before it applied.
func (t *Tree) Apply(batch vdom.Batch) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if batch.Reset {
		t.reset()
	}
	for i, m := range batch.Mutations {
		if err := t.apply(m); err != nil {
			return fmt.Errorf("mutation %d (%s): %w", i, m, err)
		}
	}
	return nil
}

func (t *Tree) get(h vdom.Handle) (*Node, error) {
	n, ok := t.nodes[h]
	if !ok {
		return nil, fmt.Errorf("unknown handle %s", h)
	}
	return n, nil
}

func (t *Tree) element(h vdom.Handle) (*Node, error) {
	n, err := t.get(h)
	if err != nil {
		return nil, err
	}
	if n.IsText() {
		return nil, fmt.Errorf("%s is a text node", h)
	}
	return n, nil
}

func (t *Tree) detached(h vdom.Handle) (*Node, error) {
	n, err := t.get(h)
	if err != nil {
		return nil, err
	}
	if n.Parent != nil || n == t.root {
		return nil, fmt.Errorf("%s is already attached", h)
	}
	return n, nil
}

func (t *Tree) insert(parent, n *Node, anchor vdom.Handle) error {
	if anchor == vdom.NoHandle {
		parent.Children = append(parent.Children, n)
		n.Parent = parent
		return nil
	}
	a, err := t.get(anchor)
	if err != nil {
		return err
	}
	if a.Parent != parent {
		return fmt.Errorf("anchor %s is not a child of %s", anchor, parent.Handle)
	}
	i := a.index()
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[i+1:], parent.Children[i:])
	parent.Children[i] = n
	n.Parent = parent
	return nil
}

func (t *Tree) destroy(n *Node) {
	delete(t.nodes, n.Handle)
	for _, c := range n.Children {
		t.destroy(c)
	}
}

func (t *Tree) apply(m vdom.Mutation) error {
	switch m.Op {
	case vdom.OpCreateElement, vdom.OpCreateText:
		if _, exists := t.nodes[m.Handle]; exists || m.Handle == vdom.NoHandle {
			return fmt.Errorf("handle %s already in use", m.Handle)
		}
		n := &Node{Handle: m.Handle, Tag: m.Tag, Text: m.Value}
		if m.Op == vdom.OpCreateText {
			n.Tag = ""
		} else {
			n.Text = ""
		}
		t.nodes[m.Handle] = n

	case vdom.OpSetText:
		n, err := t.get(m.Handle)
		if err != nil {
			return err
		}
		if !n.IsText() {
			return fmt.Errorf("%s is not a text node", m.Handle)
		}
		n.Text = m.Value

	case vdom.OpSetAttr:
		n, err := t.element(m.Handle)
		if err != nil {
			return err
		}
		if n.Attrs == nil {
			n.Attrs = make(map[string]string)
		}
		n.Attrs[m.Name] = m.Value

	case vdom.OpRemoveAttr:
		n, err := t.element(m.Handle)
		if err != nil {
			return err
		}
		if _, ok := n.Attrs[m.Name]; !ok {
			return fmt.Errorf("%s has no attribute %q", m.Handle, m.Name)
		}
		delete(n.Attrs, m.Name)

	case vdom.OpAppendChild, vdom.OpInsertBefore:
		p, err := t.element(m.Parent)
		if err != nil {
			return err
		}
		n, err := t.detached(m.Handle)
		if err != nil {
			return err
		}
		anchor := m.Anchor
		if m.Op == vdom.OpAppendChild {
			anchor = vdom.NoHandle
		} else if anchor == vdom.NoHandle {
			return fmt.Errorf("insert without anchor")
		}
		return t.insert(p, n, anchor)

	case vdom.OpMove:
		p, err := t.element(m.Parent)
		if err != nil {
			return err
		}
		n, err := t.get(m.Handle)
		if err != nil {
			return err
		}
		if n.Parent != p {
			return fmt.Errorf("%s is not a child of %s", m.Handle, m.Parent)
		}
		if m.Anchor == m.Handle {
			return fmt.Errorf("%s moved before itself", m.Handle)
		}
		n.detach()
		return t.insert(p, n, m.Anchor)

	case vdom.OpRemove:
		n, err := t.get(m.Handle)
		if err != nil {
			return err
		}
		if n == t.root {
			return fmt.Errorf("cannot remove root")
		}
		n.detach()
		t.destroy(n)

	case vdom.OpReplace:
		old, err := t.get(m.Old)
		if err != nil {
			return err
		}
		if old.Parent == nil {
			return fmt.Errorf("%s is not attached", m.Old)
		}
		n, err := t.detached(m.Handle)
		if err != nil {
			return err
		}
		p, i := old.Parent, old.index()
		p.Children[i] = n
		n.Parent = p
		old.Parent = nil
		t.destroy(old)

	case vdom.OpSetListener:
		n, err := t.element(m.Handle)
		if err != nil {
			return err
		}
		if n.Listeners == nil {
			n.Listeners = make(map[string]bool)
		}
		n.Listeners[m.Name] = true

	case vdom.OpRemoveListener:
		n, err := t.element(m.Handle)
		if err != nil {
			return err
		}
		if !n.Listeners[m.Name] {
			return fmt.Errorf("%s has no %q listener", m.Handle, m.Name)
		}
		delete(n.Listeners, m.Name)

	default:
		return fmt.Errorf("unknown op %d", m.Op)
	}
	return nil
}

// Len returns the number of nodes, excluding the root.
func (t *Tree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.nodes) - 1
}

// Node returns the node for h.
func (t *Tree) Node(h vdom.Handle) (*Node, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[h]
	return n, ok
}

// Find returns the first attached element matching sel in document order.
// sel is a tag name, "#id", or "[name=value]".
func (t *Tree) Find(sel string) (*Node, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var found *Node
	var walk func(n *Node) bool
	walk = func(n *Node) bool {
		if n != t.root && matches(n, sel) {
			found = n
			return true
		}
		for _, c := range n.Children {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(t.root)
	return found, found != nil
}

func matches(n *Node, sel string) bool {
	if n.IsText() {
		return false
	}
	switch {
	case strings.HasPrefix(sel, "#"):
		return n.Attrs["id"] == sel[1:]
	case strings.HasPrefix(sel, "[") && strings.HasSuffix(sel, "]"):
		name, value, ok := strings.Cut(sel[1:len(sel)-1], "=")
		if !ok {
			_, has := n.Attrs[name]
			return has
		}
		v, has := n.Attrs[name]
		return has && v == value
	default:
		return n.Tag == sel
	}
}

// HTML renders the attached tree under the root.
func (t *Tree) HTML() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var sb strings.Builder
	for _, c := range t.root.Children {
		writeNode(&sb, c)
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node) {
	if n.IsText() {
		sb.WriteString(escapeHTML(n.Text))
		return
	}
	names := make([]string, 0, len(n.Attrs))
	for name := range n.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	attrs := make([][2]string, len(names))
	for i, name := range names {
		attrs[i] = [2]string{name, n.Attrs[name]}
	}
	openTag(sb, n.Tag, attrs)
	if vdom.IsVoidElement(n.Tag) {
		return
	}
	for _, c := range n.Children {
		writeNode(sb, c)
	}
	sb.WriteString("</" + n.Tag + ">")
}
