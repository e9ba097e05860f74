// Package vtest provides test helpers for code built on vtree.
//
// Backend is an in-memory renderer backend. It applies mutation batches to
// a small node tree, rejecting any mutation that references an unknown or
// misplaced handle, and renders the result as markup:
//
//	b := vtest.NewBackend()
//	rt := runtime.New(b)
//	if err := rt.Mount(ctx, App.Node(nil)); err != nil {
//	    t.Fatal(err)
//	}
//	vtest.ExpectContains(t, b, "Count: 0")
//
//	btn := b.MustFind(t, "button")
//	rt.Dispatch(ctx, &vdom.Event{Name: "click", Target: btn.Handle})
//	vtest.ExpectContains(t, b, "Count: 1")
//
// Markup renders a static node tree (no components) in the same format, so
// backend state can be compared to the tree it should represent.
package vtest
