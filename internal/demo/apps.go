package demo

import (
	"slices"
	"strconv"
	"strings"

	"github.com/vango-dev/vtree/pkg/scope"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Counter is a number with increment and decrement buttons.
var Counter = scope.Define("Counter", func(c *scope.Ctx, _ any) *vdom.Node {
	count := scope.UseState(c, 0)
	return vdom.Div(vdom.Class("counter"),
		vdom.Button(vdom.ID("dec"), vdom.OnClick(func(*vdom.Event) {
			count.Update(func(n int) int { return n - 1 })
		}), "-"),
		vdom.Span(vdom.ID("count"), vdom.Textf("%d", count.Get())),
		vdom.Button(vdom.ID("inc"), vdom.OnClick(func(*vdom.Event) {
			count.Update(func(n int) int { return n + 1 })
		}), "+"),
	)
})

// Todo is one entry of the todo list.
type Todo struct {
	ID   int
	Text string
	Done bool
}

type todoActions struct {
	toggle func(id int)
	remove func(id int)
	up     func(id int)
}

type contextKey string

const actionsKey contextKey = "todo-actions"

// TodoItem renders one entry. Props are compared by value, so unchanged
// entries are not re-rendered when the list changes.
var TodoItem = scope.DefineProps("TodoItem", func(c *scope.Ctx, t Todo) *vdom.Node {
	actions, _ := scope.UseContext[*todoActions](c, actionsKey)
	return vdom.Li(vdom.Data("id", t.ID), vdom.ClassIf(t.Done, "done"),
		vdom.Input(vdom.Type("checkbox"), vdom.Checked(t.Done), vdom.OnChange(func(*vdom.Event) {
			actions.toggle(t.ID)
		})),
		vdom.Span(t.Text),
		vdom.Button(vdom.Class("up"), vdom.OnClick(func(*vdom.Event) { actions.up(t.ID) }), "^"),
		vdom.Button(vdom.Class("remove"), vdom.OnClick(func(*vdom.Event) { actions.remove(t.ID) }), "x"),
	)
})

// TodoApp is a keyed todo list with a draft input.
var TodoApp = scope.Define("TodoApp", func(c *scope.Ctx, _ any) *vdom.Node {
	items := scope.UseState(c, []Todo(nil))
	draft := scope.UseState(c, "")
	nextID := scope.UseRef(c, 1)
	actions := scope.UseRef(c, &todoActions{})

	index := func(ts []Todo, id int) int {
		return slices.IndexFunc(ts, func(t Todo) bool { return t.ID == id })
	}
	actions.Current.toggle = func(id int) {
		items.Update(func(ts []Todo) []Todo {
			out := slices.Clone(ts)
			if i := index(out, id); i >= 0 {
				out[i].Done = !out[i].Done
			}
			return out
		})
	}
	actions.Current.remove = func(id int) {
		items.Update(func(ts []Todo) []Todo {
			return slices.DeleteFunc(slices.Clone(ts), func(t Todo) bool { return t.ID == id })
		})
	}
	actions.Current.up = func(id int) {
		items.Update(func(ts []Todo) []Todo {
			out := slices.Clone(ts)
			if i := index(out, id); i > 0 {
				out[i-1], out[i] = out[i], out[i-1]
			}
			return out
		})
	}
	scope.Provide(c, actionsKey, actions.Current)

	add := func(*vdom.Event) {
		text := strings.TrimSpace(draft.Get())
		if text == "" {
			return
		}
		id := nextID.Current
		nextID.Current++
		items.Update(func(ts []Todo) []Todo {
			return append(slices.Clone(ts), Todo{ID: id, Text: text})
		})
		draft.Set("")
	}

	list := items.Get()
	remaining := scope.UseMemo(c, func() int {
		n := 0
		for _, t := range list {
			if !t.Done {
				n++
			}
		}
		return n
	}, list)

	return vdom.Section(vdom.ID("todos"),
		vdom.Form(vdom.OnSubmit(add),
			vdom.Input(vdom.ID("draft"), vdom.Value(draft.Get()), vdom.OnInput(func(e *vdom.Event) {
				draft.Set(e.PayloadString())
			})),
			vdom.Button(vdom.ID("add"), vdom.Type("submit"), "Add"),
		),
		vdom.Ul(vdom.Range(list, func(t Todo, _ int) *vdom.Node {
			return TodoItem.Node(t).WithKey(strconv.Itoa(t.ID))
		})),
		vdom.P(vdom.ID("remaining"), vdom.Textf("%d left", remaining)),
	)
})

// Apps maps demo names to their root components.
var Apps = map[string]*scope.Definition{
	"counter": Counter,
	"todo":    TodoApp,
}
