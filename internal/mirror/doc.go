// Package mirror keeps a plain node tree in step with the mutation batches
// a runtime emits, and renders it as markup. The remote hub uses it to
// serve /debug/tree; vtest builds its test backend on it.
package mirror
