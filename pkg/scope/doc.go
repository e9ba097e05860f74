// Package scope owns live component instances and their hook storage.
//
// An Arena allocates one Scope per mounted component invocation. Scopes are
// addressed by ID, a generational index: when a scope is unmounted its slot
// is recycled with a new generation, so stale IDs held by listeners, state
// handles or in-flight tasks simply fail the liveness check instead of
// touching another component's storage.
//
// # Hooks
//
// A render function receives a *Ctx. Hooks read and write per-scope slots in
// call order; the first render fixes the order and every later render is
// checked against it:
//
//	var Counter = scope.DefineProps("Counter", func(c *scope.Ctx, p CounterProps) *vdom.Node {
//	    count := scope.UseState(c, p.Start)
//	    scope.UseEffect(c, func() func() {
//	        log.Println("count is", count.Get())
//	        return nil
//	    }, count.Get())
//	    return vdom.Button(
//	        vdom.OnClick(func(*vdom.Event) { count.Update(func(n int) int { return n + 1 }) }),
//	        vdom.Textf("%d", count.Get()),
//	    )
//	})
//
// Calling hooks conditionally is a hook misuse: the scope's render fails with
// an E002 error naming the scope and slot, and the scope stays broken until
// it is unmounted.
//
// # Concurrency
//
// An Arena is not safe for concurrent use. It is owned by a single logical
// event loop (see package runtime). Asynchronous work started with UseFuture
// runs on its own goroutine; its completion is delivered through
// Completions and applied only by the owner of the arena.
package scope
