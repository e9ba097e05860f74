package scope

import (
	"testing"

	"github.com/vango-dev/vtree/pkg/vdom"
)

type themeKey struct{}

func TestProvideUseContext(t *testing.T) {
	a := quietArena()
	theme := "dark"
	var seen []string
	var found bool

	provider := a.Mount(Define("Provider", func(c *Ctx, _ any) *vdom.Node {
		Provide(c, themeKey{}, theme)
		return nil
	}), nil, NoID)
	middle := a.Mount(static("Middle"), nil, provider)
	consumer := a.Mount(Define("Consumer", func(c *Ctx, _ any) *vdom.Node {
		var v string
		v, found = UseContext[string](c, themeKey{})
		seen = append(seen, v)
		return nil
	}), nil, middle)

	a.Render(provider)
	a.Render(middle)
	a.Render(consumer)
	if !found || seen[0] != "dark" {
		t.Fatalf("UseContext = %v, %v; want dark", seen, found)
	}

	a.Render(provider)
	if s, _ := a.Get(consumer); s.Dirty() {
		t.Error("unchanged value marked consumer dirty")
	}

	theme = "light"
	a.Render(provider)
	if s, _ := a.Get(consumer); !s.Dirty() {
		t.Fatal("changed value should mark consumer dirty")
	}
	a.Render(consumer)
	if seen[len(seen)-1] != "light" {
		t.Errorf("consumer saw %q, want light", seen[len(seen)-1])
	}
}

func TestUseContextMissing(t *testing.T) {
	a := quietArena()
	found := true
	id := a.Mount(Define("Lonely", func(c *Ctx, _ any) *vdom.Node {
		_, found = UseContext[int](c, themeKey{})
		return nil
	}), nil, NoID)
	a.Render(id)
	if found {
		t.Error("UseContext found a value with no provider")
	}
}

func TestUseContextWrongType(t *testing.T) {
	a := quietArena()
	p := a.Mount(Define("P", func(c *Ctx, _ any) *vdom.Node {
		Provide(c, themeKey{}, "str")
		return nil
	}), nil, NoID)
	found := true
	child := a.Mount(Define("C", func(c *Ctx, _ any) *vdom.Node {
		_, found = UseContext[int](c, themeKey{})
		return nil
	}), nil, p)
	a.Render(p)
	a.Render(child)
	if found {
		t.Error("UseContext[int] matched a string value")
	}
}
