package demo

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/runtime"
	"github.com/vango-dev/vtree/pkg/vdom"
	"github.com/vango-dev/vtree/pkg/vtest"
)

var quiet = runtime.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

func run(t *testing.T, name string) []Result {
	t.Helper()
	var results []Result
	if err := Run(context.Background(), name, func(r Result) { results = append(results, r) }, quiet); err != nil {
		t.Fatalf("Run(%q): %v", name, err)
	}
	return results
}

func TestCounterScenario(t *testing.T) {
	results := run(t, "counter")
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	if results[0].Label != "mount" || vtest.Creates(results[0].Batch.Mutations) == 0 {
		t.Errorf("mount result = %+v", results[0])
	}
	for _, r := range results[1:] {
		if n := r.Batch.Count(vdom.OpSetText); n != 1 {
			t.Errorf("%s: %d SetText, want 1\n%s", r.Label, n, r.Batch)
		}
		if vtest.Creates(r.Batch.Mutations) != 0 {
			t.Errorf("%s: unexpected creates\n%s", r.Label, r.Batch)
		}
	}
	last := results[len(results)-1]
	if !strings.Contains(last.HTML, `<span id="count">1</span>`) {
		t.Errorf("final HTML = %s", last.HTML)
	}
}

func TestTodoScenario(t *testing.T) {
	results := run(t, "todo")
	byLabel := make(map[string]Result)
	for _, r := range results {
		byLabel[r.Label] = r
	}

	added := byLabel["add bread"]
	if !strings.Contains(added.HTML, "3 left") {
		t.Errorf("after adds: %s", added.HTML)
	}

	moved := byLabel["move bread up"]
	if n := moved.Batch.Count(vdom.OpMove); n != 1 {
		t.Errorf("move: %d Move mutations, want 1\n%s", n, moved.Batch)
	}
	if vtest.Creates(moved.Batch.Mutations) != 0 {
		t.Errorf("move created nodes\n%s", moved.Batch)
	}
	if i, j := strings.Index(moved.HTML, "bread"), strings.Index(moved.HTML, "eggs"); i < 0 || j < 0 || i > j {
		t.Errorf("bread should precede eggs: %s", moved.HTML)
	}

	toggled := byLabel["toggle milk"]
	if !strings.Contains(toggled.HTML, "2 left") || !strings.Contains(toggled.HTML, "done") {
		t.Errorf("toggle: %s", toggled.HTML)
	}
	if vtest.Creates(toggled.Batch.Mutations) != 0 {
		t.Errorf("toggle created nodes\n%s", toggled.Batch)
	}
	for _, item := range toggled.Stats.Items {
		if item.Err != nil {
			t.Errorf("%s: %v", item.Component, item.Err)
		}
	}

	removed := byLabel["remove eggs"]
	if strings.Contains(removed.HTML, "eggs") {
		t.Errorf("eggs still present: %s", removed.HTML)
	}
	if !strings.Contains(removed.HTML, "1 left") {
		t.Errorf("remove: %s", removed.HTML)
	}
	if removed.Batch.Count(vdom.OpRemove) != 1 {
		t.Errorf("remove: want one Remove\n%s", removed.Batch)
	}
}

func TestUnknownScenario(t *testing.T) {
	err := Run(context.Background(), "nope", func(Result) {}, quiet)
	if !errors.HasCode(err, "E040") {
		t.Fatalf("err = %v, want E040", err)
	}
}

func TestNames(t *testing.T) {
	got := Names()
	if len(got) != 2 || got[0] != "counter" || got[1] != "todo" {
		t.Errorf("Names() = %v", got)
	}
	for _, sc := range Scenarios {
		if _, ok := Apps[sc.App]; !ok {
			t.Errorf("scenario %s uses unknown app %s", sc.Name, sc.App)
		}
	}
}
