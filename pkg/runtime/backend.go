package runtime

import (
	"context"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// Backend applies mutation batches to a concrete UI. Apply must make the
// whole batch visible at once.
type Backend interface {
	Apply(ctx context.Context, batch vdom.Batch) error
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, batch vdom.Batch) error

// Apply implements Backend.
func (f BackendFunc) Apply(ctx context.Context, batch vdom.Batch) error {
	return f(ctx, batch)
}

// Discard is a Backend that drops every batch.
var Discard Backend = BackendFunc(func(context.Context, vdom.Batch) error { return nil })
