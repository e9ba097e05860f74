package vtest

import (
	"errors"
	"strings"
	"testing"

	"github.com/vango-dev/vtree/pkg/vdom"
)

func m(op vdom.Op, h vdom.Handle) vdom.Mutation {
	return vdom.Mutation{Op: op, Handle: h}
}

func TestBackendBuildsTree(t *testing.T) {
	b := NewBackend()
	err := b.ApplyMutations([]vdom.Mutation{
		{Op: vdom.OpCreateElement, Handle: 2, Tag: "ul"},
		{Op: vdom.OpSetAttr, Handle: 2, Name: "class", Value: "list"},
		{Op: vdom.OpCreateElement, Handle: 3, Tag: "li"},
		{Op: vdom.OpCreateText, Handle: 4, Value: "a"},
		{Op: vdom.OpAppendChild, Parent: 3, Handle: 4},
		{Op: vdom.OpAppendChild, Parent: 2, Handle: 3},
		{Op: vdom.OpCreateElement, Handle: 5, Tag: "li"},
		{Op: vdom.OpInsertBefore, Parent: 2, Handle: 5, Anchor: 3},
		{Op: vdom.OpAppendChild, Parent: vdom.RootHandle, Handle: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	ExpectHTML(t, b, `<ul class="list"><li></li><li>a</li></ul>`)
	if b.Len() != 4 {
		t.Errorf("Len() = %d, want 4", b.Len())
	}

	err = b.ApplyMutations([]vdom.Mutation{
		{Op: vdom.OpMove, Handle: 5, Parent: 2},
		{Op: vdom.OpSetText, Handle: 4, Value: "b<"},
		{Op: vdom.OpRemoveAttr, Handle: 2, Name: "class"},
	})
	if err != nil {
		t.Fatal(err)
	}
	ExpectHTML(t, b, `<ul><li>b&lt;</li><li></li></ul>`)

	err = b.ApplyMutations([]vdom.Mutation{
		{Op: vdom.OpCreateElement, Handle: 6, Tag: "p"},
		{Op: vdom.OpReplace, Old: 3, Handle: 6},
		m(vdom.OpRemove, 5),
	})
	if err != nil {
		t.Fatal(err)
	}
	ExpectHTML(t, b, `<ul><p></p></ul>`)
	if _, ok := b.Node(4); ok {
		t.Error("replaced subtree still registered")
	}
	if len(b.Batches()) != 3 {
		t.Errorf("Batches() = %d, want 3", len(b.Batches()))
	}
}

func TestBackendRejectsInvalidMutations(t *testing.T) {
	tests := []struct {
		name string
		muts []vdom.Mutation
		want string
	}{
		{"unknown handle", []vdom.Mutation{{Op: vdom.OpSetText, Handle: 9, Value: "x"}}, "unknown handle"},
		{"reused handle", []vdom.Mutation{
			{Op: vdom.OpCreateText, Handle: 2},
			{Op: vdom.OpCreateText, Handle: 2},
		}, "already in use"},
		{"double attach", []vdom.Mutation{
			{Op: vdom.OpCreateText, Handle: 2},
			{Op: vdom.OpAppendChild, Parent: vdom.RootHandle, Handle: 2},
			{Op: vdom.OpAppendChild, Parent: vdom.RootHandle, Handle: 2},
		}, "already attached"},
		{"remove missing attr", []vdom.Mutation{
			{Op: vdom.OpCreateElement, Handle: 2, Tag: "div"},
			{Op: vdom.OpRemoveAttr, Handle: 2, Name: "id"},
		}, "no attribute"},
		{"text as parent", []vdom.Mutation{
			{Op: vdom.OpCreateText, Handle: 2},
			{Op: vdom.OpCreateText, Handle: 3},
			{Op: vdom.OpAppendChild, Parent: 2, Handle: 3},
		}, "text node"},
		{"foreign anchor", []vdom.Mutation{
			{Op: vdom.OpCreateElement, Handle: 2, Tag: "div"},
			{Op: vdom.OpCreateText, Handle: 3},
			{Op: vdom.OpInsertBefore, Parent: vdom.RootHandle, Handle: 3, Anchor: 2},
		}, "not a child"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBackend().ApplyMutations(tt.muts)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Apply = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestBackendFailNext(t *testing.T) {
	b := NewBackend()
	boom := errors.New("boom")
	b.FailNext(boom)
	if err := b.ApplyMutations([]vdom.Mutation{{Op: vdom.OpCreateText, Handle: 2}}); !errors.Is(err, boom) {
		t.Errorf("Apply = %v, want boom", err)
	}
	if b.Len() != 0 {
		t.Error("failed batch was applied")
	}
	if err := b.ApplyMutations([]vdom.Mutation{{Op: vdom.OpCreateText, Handle: 2}}); err != nil {
		t.Errorf("second Apply = %v", err)
	}
}

func TestFind(t *testing.T) {
	b := NewBackend()
	b.ApplyMutations([]vdom.Mutation{
		{Op: vdom.OpCreateElement, Handle: 2, Tag: "div"},
		{Op: vdom.OpCreateElement, Handle: 3, Tag: "button"},
		{Op: vdom.OpSetAttr, Handle: 3, Name: "id", Value: "inc"},
		{Op: vdom.OpSetAttr, Handle: 3, Name: "data-role", Value: "x"},
		{Op: vdom.OpAppendChild, Parent: 2, Handle: 3},
		{Op: vdom.OpAppendChild, Parent: vdom.RootHandle, Handle: 2},
	})
	for _, sel := range []string{"button", "#inc", "[data-role=x]", "[data-role]"} {
		if n, ok := b.Find(sel); !ok || n.Handle != 3 {
			t.Errorf("Find(%q) = %v, %v", sel, n, ok)
		}
	}
	if _, ok := b.Find("#missing"); ok {
		t.Error("Find(#missing) matched")
	}
}

func TestMarkup(t *testing.T) {
	tree := vdom.Div(
		vdom.Class("box"),
		vdom.A("title", nil),
		vdom.ID("x"),
		vdom.Text("a & b"),
		vdom.Br(),
		vdom.Fragment(vdom.Span("s"), vdom.Placeholder()),
	)
	want := `<div class="box" id="x">a &amp; b<br><span>s</span></div>`
	if got := Markup(tree); got != want {
		t.Errorf("Markup = %q, want %q", got, want)
	}
	ExpectAttribute(t, Static{tree}, "class", "box")
	ExpectElement(t, Static{tree}, "span")
	ExpectNotContains(t, Static{tree}, "title")
}

func TestOpCounts(t *testing.T) {
	muts := []vdom.Mutation{m(vdom.OpCreateText, 2), m(vdom.OpCreateElement, 3), m(vdom.OpRemove, 4)}
	if n := Creates(muts); n != 2 {
		t.Errorf("Creates = %d, want 2", n)
	}
	if c := OpCounts(muts); c[vdom.OpRemove] != 1 {
		t.Errorf("OpCounts = %v", c)
	}
}
