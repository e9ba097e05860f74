package vdom

import "testing"

func TestElArguments(t *testing.T) {
	click := func(*Event) {}
	var nilNode *Node

	n := Div(
		nil,
		ID("root"),
		[]Attr{Class("a"), {}},
		OnClick(click),
		On("", click),
		OnInput(nil),
		Span(),
		nilNode,
		[]*Node{P(), nil},
		Children{Text("c")},
		"text",
	)

	if n.Kind != KindElement || n.Tag != "div" {
		t.Fatalf("got %s <%s>", n.Kind, n.Tag)
	}
	if len(n.Attrs) != 2 {
		t.Errorf("len(Attrs) = %d, want 2", len(n.Attrs))
	}
	if len(n.Listeners) != 1 || n.Listeners[0].Event != "click" {
		t.Errorf("Listeners = %+v, want one click listener", n.Listeners)
	}
	if len(n.Children) != 4 {
		t.Fatalf("len(Children) = %d, want 4", len(n.Children))
	}
	if last := n.Children[3]; last.Kind != KindText || last.Text != "text" {
		t.Errorf("string argument should become a text child, got %+v", last)
	}
}

func TestElementFactories(t *testing.T) {
	tests := []struct {
		node *Node
		tag  string
	}{
		{Div(), "div"},
		{Ul(), "ul"},
		{Li(), "li"},
		{Button(), "button"},
		{Input(), "input"},
		{Anchor(), "a"},
		{Br(), "br"},
	}
	for _, tt := range tests {
		if tt.node.Tag != tt.tag {
			t.Errorf("Tag = %q, want %q", tt.node.Tag, tt.tag)
		}
	}
}

func TestIsVoidElement(t *testing.T) {
	if !IsVoidElement("input") {
		t.Error("input is void")
	}
	if IsVoidElement("div") {
		t.Error("div is not void")
	}
}
