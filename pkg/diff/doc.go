// Package diff reconciles virtual trees against the committed tree and
// produces backend mutations.
//
// A Differ keeps the committed tree as a tree of mounts. Each mount records
// the node it was built from, its backend handle (elements and text only;
// fragments, placeholders and components own no backend node) and, for
// component nodes, the scope that renders it. Handles are allocated by the
// Differ and never reused.
//
// Children are reconciled in two groups. Keyed children match by key and
// are reordered with the minimum number of moves, computed from the longest
// increasing subsequence of their old positions. Unkeyed children match by
// position among the unkeyed siblings. Incompatible pairs (different kind,
// tag, component type or key) are replaced wholesale, destroying any scopes
// in the old subtree.
//
// A component whose props are unchanged and whose scope is not dirty is
// skipped entirely. A render failure is isolated to its scope: the scope's
// output is replaced by an error view and the pass continues.
package diff
