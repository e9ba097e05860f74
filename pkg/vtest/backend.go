package vtest

import (
	"context"
	"sync"
	"testing"

	"github.com/vango-dev/vtree/internal/mirror"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Node is a backend node.
type Node = mirror.Node

// Backend is an in-memory renderer backend that records every batch it
// applies. It is safe for concurrent use.
type Backend struct {
	*mirror.Tree

	mu       sync.Mutex
	batches  []vdom.Batch
	failNext error
}

// NewBackend returns an empty backend whose root is vdom.RootHandle.
func NewBackend() *Backend {
	return &Backend{Tree: mirror.New()}
}

// FailNext makes the next Apply return err without applying anything.
func (b *Backend) FailNext(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext = err
}

// Apply applies batch in order. It stops at the first invalid mutation.
func (b *Backend) Apply(_ context.Context, batch vdom.Batch) error {
	b.mu.Lock()
	if err := b.failNext; err != nil {
		b.failNext = nil
		b.mu.Unlock()
		return err
	}
	muts := make([]vdom.Mutation, len(batch.Mutations))
	copy(muts, batch.Mutations)
	b.batches = append(b.batches, vdom.Batch{Seq: batch.Seq, Reset: batch.Reset, Mutations: muts})
	b.mu.Unlock()
	return b.Tree.Apply(batch)
}

// ApplyMutations applies muts as one unnumbered batch.
func (b *Backend) ApplyMutations(muts []vdom.Mutation) error {
	return b.Apply(context.Background(), vdom.Batch{Mutations: muts})
}

// Batches returns the batches applied so far.
func (b *Backend) Batches() []vdom.Batch {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]vdom.Batch, len(b.batches))
	copy(out, b.batches)
	return out
}

// MustFind is Find that fails the test when nothing matches.
func (b *Backend) MustFind(tb testing.TB, sel string) *Node {
	tb.Helper()
	n, ok := b.Find(sel)
	if !ok {
		tb.Fatalf("no element matches %q in:\n%s", sel, truncate(b.HTML(), 500))
	}
	return n
}
