// Package errors provides structured, actionable error values for vtree.
//
// Every error the runtime reports to users carries a catalogue code that
// maps to a short message, a longer explanation, an optional hint and a
// documentation URL. Hook errors additionally name the scope and hook slot
// so that misuse can be traced to a specific component.
//
// # Error Categories
//
//   - runtime: render failures, dangling scopes, listener panics
//   - hook: hook order or type mismatches, hooks used outside render
//   - backend: renderer backend failures
//   - validation: tree shape warnings such as duplicate keys
//   - config: configuration file errors
//
// # Usage
//
//	err := errors.New("E002").
//	    WithScope("TodoList s4.1").
//	    WithSlot(2)
//
//	fmt.Println(err.Format())
package errors
