package mirror

import (
	"strings"
	"testing"

	"github.com/vango-dev/vtree/pkg/vdom"
)

func TestTreeApply(t *testing.T) {
	tr := New()
	err := tr.Apply(vdom.Batch{Seq: 1, Mutations: []vdom.Mutation{
		{Op: vdom.OpCreateElement, Handle: 2, Tag: "p"},
		{Op: vdom.OpSetAttr, Handle: 2, Name: "title", Value: `a"b`},
		{Op: vdom.OpCreateText, Handle: 3, Value: "x&y"},
		{Op: vdom.OpAppendChild, Parent: 2, Handle: 3},
		{Op: vdom.OpAppendChild, Parent: vdom.RootHandle, Handle: 2},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := tr.HTML(), `<p title="a&quot;b">x&amp;y</p>`; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if n, ok := tr.Find("p"); !ok || n.Handle != 2 {
		t.Errorf("Find(p) = %v, %v", n, ok)
	}
	if tr.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tr.Len())
	}
}

func TestTreeRejectsUnknownHandle(t *testing.T) {
	tr := New()
	err := tr.Apply(vdom.Batch{Mutations: []vdom.Mutation{
		{Op: vdom.OpCreateElement, Handle: 2, Tag: "p"},
		{Op: vdom.OpAppendChild, Parent: vdom.RootHandle, Handle: 9},
	}})
	if err == nil || !strings.Contains(err.Error(), "mutation 1") {
		t.Fatalf("Apply() = %v, want error at mutation 1", err)
	}
	// the mutation before the bad one stays applied
	if _, ok := tr.Node(2); !ok {
		t.Error("node 2 missing")
	}
}

func TestTreeResetBatch(t *testing.T) {
	tr := New()
	_ = tr.Apply(vdom.Batch{Mutations: []vdom.Mutation{
		{Op: vdom.OpCreateElement, Handle: 2, Tag: "div"},
		{Op: vdom.OpAppendChild, Parent: vdom.RootHandle, Handle: 2},
	}})
	err := tr.Apply(vdom.Batch{Reset: true, Mutations: []vdom.Mutation{
		{Op: vdom.OpCreateElement, Handle: 2, Tag: "span"},
		{Op: vdom.OpAppendChild, Parent: vdom.RootHandle, Handle: 2},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if got := tr.HTML(); got != "<span></span>" {
		t.Errorf("HTML() = %q", got)
	}
}

func TestMarkupMatchesTree(t *testing.T) {
	n := vdom.El("ul", vdom.Class("x"), vdom.El("li", "a"))
	if got, want := Markup(n), `<ul class="x"><li>a</li></ul>`; got != want {
		t.Errorf("Markup() = %q, want %q", got, want)
	}
}
