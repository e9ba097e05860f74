package vdom

import "fmt"

// Text creates a text node.
func Text(content string) *Node {
	return &Node{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node. Formatting happens when the node is
// built, which inside a render function is render time.
func Textf(format string, args ...any) *Node {
	return Text(fmt.Sprintf(format, args...))
}

// TextOf creates a text node from any value source accepted by A.
func TextOf(v any) *Node {
	return Text(ValueString(v))
}

// Placeholder creates an empty hole. It has no backend presence but keeps
// its sibling position stable across renders.
func Placeholder() *Node {
	return &Node{Kind: KindPlaceholder}
}

// Fragment groups children without a wrapper.
func Fragment(children ...any) *Node {
	node := &Node{Kind: KindFragment}

	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case *Node:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*Node:
			node.Children = appendNodes(node.Children, v)
		case Children:
			node.Children = appendNodes(node.Children, v)
		case string:
			node.Children = append(node.Children, Text(v))
		}
	}

	return node
}

// Comp creates a component invocation node.
func Comp(c Component, props any) *Node {
	return &Node{
		Kind:  KindComponent,
		Comp:  c,
		Props: props,
	}
}

// If returns the node if condition is true, a Placeholder otherwise.
func If(condition bool, node *Node) *Node {
	if condition && node != nil {
		return node
	}
	return Placeholder()
}

// When is like If but with lazy evaluation.
// The function is only called if condition is true.
func When(condition bool, fn func() *Node) *Node {
	if condition {
		if n := fn(); n != nil {
			return n
		}
	}
	return Placeholder()
}

// Unless is the inverse of If.
func Unless(condition bool, node *Node) *Node {
	return If(!condition, node)
}

// Case represents a case in a Switch statement.
type Case[T comparable] struct {
	Value     T
	Node      *Node
	IsDefault bool
}

// CaseOf creates a case for Switch.
func CaseOf[T comparable](value T, node *Node) Case[T] {
	return Case[T]{Value: value, Node: node}
}

// Default creates a default case for Switch.
func Default[T comparable](node *Node) Case[T] {
	return Case[T]{Node: node, IsDefault: true}
}

// Switch returns the node for the matching case value.
// If no case matches and there's a default, the default node is returned;
// otherwise a Placeholder.
func Switch[T comparable](value T, cases ...Case[T]) *Node {
	for _, c := range cases {
		if !c.IsDefault && c.Value == value {
			return c.Node
		}
	}
	for _, c := range cases {
		if c.IsDefault {
			return c.Node
		}
	}
	return Placeholder()
}

// Range maps a slice to nodes, dropping nil results.
func Range[T any](items []T, fn func(item T, index int) *Node) []*Node {
	result := make([]*Node, 0, len(items))
	for i, item := range items {
		if node := fn(item, i); node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Repeat creates n nodes using the given function.
func Repeat(n int, fn func(i int) *Node) []*Node {
	if n <= 0 {
		return nil
	}
	result := make([]*Node, 0, n)
	for i := 0; i < n; i++ {
		if node := fn(i); node != nil {
			result = append(result, node)
		}
	}
	return result
}
