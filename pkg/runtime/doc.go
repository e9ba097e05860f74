// Package runtime schedules renders and delivers mutation batches.
//
// A Runtime owns one scope arena, one differ and one backend. All access to
// them is serialised: listeners, ticks and async completions run one at a
// time, either on the goroutine driving Run or under the Runtime's lock
// when the host calls Dispatch and Tick directly.
//
// # Ticks
//
// State writes mark scopes dirty and enqueue them, deduplicated by scope
// ID. A tick drains the queue (highest priority class first, FIFO within a
// class), renders the drained scopes parents first, and concatenates every
// resulting mutation into a single Batch delivered to the backend. Effects
// run after delivery. Scopes dirtied while a tick is in progress wait for
// the next tick.
//
//	rt := runtime.New(backend, runtime.WithLogger(logger))
//	if err := rt.Mount(ctx, App.Node(nil)); err != nil {
//	    return err
//	}
//	go rt.Run(ctx)
//	rt.Send(ctx, &vdom.Event{Name: "click", Target: h})
package runtime
