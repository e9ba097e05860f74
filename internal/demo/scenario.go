package demo

import (
	"context"
	"fmt"
	"sort"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/runtime"
	"github.com/vango-dev/vtree/pkg/vdom"
	"github.com/vango-dev/vtree/pkg/vtest"
)

// Step is one scripted user action.
type Step struct {
	Label string
	Do    func(d *Driver) error
}

// Scenario is a root component and the actions to run against it.
type Scenario struct {
	Name  string
	App   string
	Steps []Step
}

// Driver plays steps against a runtime backed by a vtest.Backend.
type Driver struct {
	Runtime *runtime.Runtime
	Backend *vtest.Backend
	ctx     context.Context
}

// Fire dispatches event to the first node matching sel.
func (d *Driver) Fire(sel, event string, payload any) error {
	n, ok := d.Backend.Find(sel)
	if !ok {
		return fmt.Errorf("demo: no node matches %q", sel)
	}
	return d.Runtime.Dispatch(d.ctx, &vdom.Event{Name: event, Target: n.Handle, Payload: payload})
}

// Click fires a click on sel.
func (d *Driver) Click(sel string) error {
	return d.Fire(sel, "click", nil)
}

func click(sel string) func(*Driver) error {
	return func(d *Driver) error { return d.Click(sel) }
}

func addTodo(text string) func(*Driver) error {
	return func(d *Driver) error {
		if err := d.Fire("#draft", "input", text); err != nil {
			return err
		}
		return d.Fire("form", "submit", nil)
	}
}

// nth fires on the n-th (1-based) element with the given class inside the
// todo list.
func nth(class string, n int, event string) func(*Driver) error {
	return func(d *Driver) error {
		ul, ok := d.Backend.Find("ul")
		if !ok {
			return fmt.Errorf("demo: no list")
		}
		if n < 1 || n > len(ul.Children) {
			return fmt.Errorf("demo: list has %d items, want item %d", len(ul.Children), n)
		}
		for _, c := range ul.Children[n-1].Children {
			if v, ok := c.Attr("class"); ok && v == class {
				return d.Runtime.Dispatch(d.ctx, &vdom.Event{Name: event, Target: c.Handle})
			}
			if class == "checkbox" && c.Tag == "input" {
				return d.Runtime.Dispatch(d.ctx, &vdom.Event{Name: event, Target: c.Handle})
			}
		}
		return fmt.Errorf("demo: item %d has no .%s", n, class)
	}
}

// Scenarios are the built-in scripted sessions.
var Scenarios = map[string]Scenario{
	"counter": {
		Name: "counter",
		App:  "counter",
		Steps: []Step{
			{"increment", click("#inc")},
			{"increment", click("#inc")},
			{"decrement", click("#dec")},
		},
	},
	"todo": {
		Name: "todo",
		App:  "todo",
		Steps: []Step{
			{"add milk", addTodo("milk")},
			{"add eggs", addTodo("eggs")},
			{"add bread", addTodo("bread")},
			{"move bread up", nth("up", 3, "click")},
			{"toggle milk", nth("checkbox", 1, "change")},
			{"remove eggs", nth("remove", 3, "click")},
		},
	},
}

// Names returns the scenario names in order.
func Names() []string {
	names := make([]string, 0, len(Scenarios))
	for name := range Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Result describes one executed step.
type Result struct {
	Label string
	Batch vdom.Batch
	Stats runtime.TickStats
	HTML  string
}

// Run plays the named scenario and reports the mount and every step.
// Options are passed to the runtime.
func Run(ctx context.Context, name string, report func(Result), opts ...runtime.Option) error {
	sc, ok := Scenarios[name]
	if !ok {
		return errors.New("E040").
			WithDetail(fmt.Sprintf("No demo named %q", name)).
			WithSuggestion(fmt.Sprintf("Available demos: %v", Names()))
	}

	b := vtest.NewBackend()
	rt := runtime.New(b, opts...)
	d := &Driver{Runtime: rt, Backend: b, ctx: ctx}

	emit := func(label string, seen int) {
		batches := b.Batches()
		var batch vdom.Batch
		if len(batches) > seen {
			batch = batches[len(batches)-1]
		}
		report(Result{Label: label, Batch: batch, Stats: rt.LastTick(), HTML: b.HTML()})
	}

	if err := rt.Mount(ctx, Apps[sc.App].Node(nil)); err != nil {
		return err
	}
	emit("mount", 0)

	for _, step := range sc.Steps {
		seen := len(b.Batches())
		if err := step.Do(d); err != nil {
			return fmt.Errorf("step %q: %w", step.Label, err)
		}
		emit(step.Label, seen)
	}
	return rt.Close(ctx)
}
