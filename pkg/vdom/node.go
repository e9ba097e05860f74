package vdom

import "fmt"

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement     Kind = iota // <div>, <button>, etc.
	KindText                    // Plain text node
	KindFragment                // Grouping without wrapper
	KindPlaceholder             // Bound hole for conditional or empty content
	KindComponent               // Component invocation
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindPlaceholder:
		return "Placeholder"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// Node is an immutable description of one piece of UI. Nodes are produced by
// render functions and must not be modified once returned.
type Node struct {
	Kind      Kind       // Node type
	Tag       string     // Element tag name (e.g., "div")
	Key       string     // Reconciliation key, any kind may carry one
	Attrs     []Attr     // Ordered attributes (Element)
	Listeners []Listener // Event listeners (Element)
	Children  []*Node    // Element and Fragment children
	Text      string     // Text content
	Comp      Component  // Component reference (Component)
	Props     any        // Component props (Component)
}

// Component is the identity of a component. Two component nodes refer to
// the same component when their Comp values are equal.
type Component interface {
	ComponentName() string
}

// Children is the conventional props field type for components that
// accept child nodes.
type Children []*Node

// Handle addresses a node in the renderer backend. Handles are assigned by
// the differ when a node is created and stay valid until it is removed.
type Handle uint64

const (
	// NoHandle is the zero handle. As an insertion anchor it means "append".
	NoHandle Handle = 0

	// RootHandle is the backend container the tree is mounted into.
	RootHandle Handle = 1
)

// String returns the handle as "#n".
func (h Handle) String() string {
	return fmt.Sprintf("#%d", uint64(h))
}

// WithKey returns a shallow copy of n carrying key.
func (n *Node) WithKey(key string) *Node {
	if n == nil {
		return nil
	}
	cp := *n
	cp.Key = key
	return &cp
}

// Name returns the tag for elements, the component name for components and
// the kind name otherwise.
func (n *Node) Name() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case KindElement:
		return n.Tag
	case KindComponent:
		if n.Comp == nil {
			return "<component>"
		}
		return n.Comp.ComponentName()
	default:
		return n.Kind.String()
	}
}

// Attr returns the value of the named attribute and whether it is present.
// Later duplicates win; an explicitly absent attribute reports false.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	value, present := "", false
	for _, a := range n.Attrs {
		if a.Name == name {
			value, present = a.Value, !a.Absent
		}
	}
	return value, present
}

// Equal reports whether two trees describe the same UI. Listeners are
// compared by event name only and component props with PropsEqual.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Key != b.Key {
		return false
	}
	switch a.Kind {
	case KindText:
		return a.Text == b.Text
	case KindPlaceholder:
		return true
	case KindComponent:
		return a.Comp == b.Comp && PropsEqual(a.Props, b.Props)
	case KindElement:
		if a.Tag != b.Tag || !attrsEqual(a.Attrs, b.Attrs) || !listenersEqual(a.Listeners, b.Listeners) {
			return false
		}
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

func attrsEqual(a, b []Attr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func listenersEqual(a, b []Listener) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Event != b[i].Event {
			return false
		}
	}
	return true
}

// Walk calls fn for n and every descendant in document order. Component
// nodes are visited but not expanded. Returning false skips the subtree.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
