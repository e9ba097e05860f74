package scope

import (
	"fmt"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// RenderFunc renders a component from its props and hook context.
type RenderFunc func(c *Ctx, props any) *vdom.Node

// Definition is a component type. Component nodes that reference the same
// *Definition at the same tree position share a scope across renders.
type Definition struct {
	name   string
	render RenderFunc
}

var _ vdom.Component = (*Definition)(nil)

// Define creates a component type from an untyped render function.
func Define(name string, render RenderFunc) *Definition {
	if render == nil {
		panic("scope: Define " + name + " with nil render function")
	}
	return &Definition{name: name, render: render}
}

// DefineProps creates a component type whose props are of type P. A nil
// props value renders with the zero P; any other type mismatch is reported
// as a render failure.
func DefineProps[P any](name string, render func(c *Ctx, props P) *vdom.Node) *Definition {
	return Define(name, func(c *Ctx, props any) *vdom.Node {
		if props == nil {
			var zero P
			return render(c, zero)
		}
		p, ok := props.(P)
		if !ok {
			panic(fmt.Errorf("component %s: props of type %T, want %T", name, props, *new(P)))
		}
		return render(c, p)
	})
}

// ComponentName implements vdom.Component.
func (d *Definition) ComponentName() string {
	return d.name
}

// Node returns a component invocation node for d.
func (d *Definition) Node(props any) *vdom.Node {
	return vdom.Comp(d, props)
}
