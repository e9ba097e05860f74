// Package vdom provides the virtual tree model for vtree.
//
// A render function describes its UI as an immutable tree of Nodes:
// elements, text, fragments, placeholders and component invocations.
// The differ compares successive trees and emits Mutations, which address
// backend nodes by Handle rather than by virtual node.
//
// # Core Types
//
// Node is a tagged variant discriminated by Kind. Attr is an ordered
// attribute whose presence is significant: an Absent attribute is removed
// from the backend rather than set to the empty string. Listener binds an
// event name to a Handler. Component is the opaque identity of a component.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    Ul(Range(items, func(it Item, _ int) *Node {
//	        return Li(Key(it.ID), Text(it.Label))
//	    })),
//	    Button(OnClick(handler), "Save"),
//	)
//
// # Mutations
//
// Mutation is one structural change; Batch is the ordered list delivered
// to the backend per scheduling tick. Create mutations carry the handle the
// backend must associate with the new node.
package vdom
