package scope

import (
	"reflect"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// HookKind identifies the type of hook occupying a slot.
type HookKind uint8

const (
	HookNone HookKind = iota
	HookState
	HookMemo
	HookRef
	HookEffect
	HookCleanup
	HookFuture
	HookCustom
)

func (k HookKind) String() string {
	switch k {
	case HookState:
		return "State"
	case HookMemo:
		return "Memo"
	case HookRef:
		return "Ref"
	case HookEffect:
		return "Effect"
	case HookCleanup:
		return "Cleanup"
	case HookFuture:
		return "Future"
	case HookCustom:
		return "Custom"
	default:
		return "None"
	}
}

type slot struct {
	kind    HookKind
	typ     reflect.Type
	name    string
	value   any
	cleanup func()
}

// Scope is the runtime record of one mounted component.
type Scope struct {
	id       ID
	def      *Definition
	parent   ID
	children []ID
	height   int
	props    any

	slots  []slot
	locked bool // hook order fixed by the first successful render

	tree      *vdom.Node // last committed output
	dirty     bool
	rendering bool
	renders   int
	broken    error
	unmounted bool

	values    map[any]any
	consumers map[any]map[ID]struct{}
	tasks     map[uint64]*task
}

// ID returns the scope identity.
func (s *Scope) ID() ID { return s.id }

// Definition returns the component type.
func (s *Scope) Definition() *Definition { return s.def }

// Name returns the component name.
func (s *Scope) Name() string {
	if s.def == nil {
		return ""
	}
	return s.def.name
}

// Parent returns the parent scope ID, or NoID for a root.
func (s *Scope) Parent() ID { return s.parent }

// Children returns the child scope IDs in mount order.
func (s *Scope) Children() []ID {
	out := make([]ID, len(s.children))
	copy(out, s.children)
	return out
}

// Height is the distance from the root scope.
func (s *Scope) Height() int { return s.height }

// Props returns the props of the last render request.
func (s *Scope) Props() any { return s.props }

// Tree returns the last committed render output.
func (s *Scope) Tree() *vdom.Node { return s.tree }

// Dirty reports whether the scope needs to re-render.
func (s *Scope) Dirty() bool { return s.dirty }

// Renders is the number of completed renders.
func (s *Scope) Renders() int { return s.renders }

// Broken returns the hook error that disabled the scope, if any.
func (s *Scope) Broken() error { return s.broken }

// Slots is the number of hook slots.
func (s *Scope) Slots() int { return len(s.slots) }

func (s *Scope) describe() string {
	return s.Name() + " " + s.id.String()
}

func (s *Scope) removeChild(id ID) {
	for i, c := range s.children {
		if c == id {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}
