package vdom

import (
	"fmt"
	"strings"
)

// Op is the type of a mutation.
type Op uint8

const (
	OpCreateElement  Op = 0x01 // Create element Handle with Tag
	OpCreateText     Op = 0x02 // Create text node Handle with Value
	OpSetText        Op = 0x03 // Update text content of Handle
	OpSetAttr        Op = 0x04 // Set attribute Name=Value on Handle
	OpRemoveAttr     Op = 0x05 // Remove attribute Name from Handle
	OpAppendChild    Op = 0x06 // Append Handle as last child of Parent
	OpInsertBefore   Op = 0x07 // Insert new Handle into Parent before Anchor
	OpMove           Op = 0x08 // Move attached Handle before Anchor (NoHandle = to end)
	OpRemove         Op = 0x09 // Detach and destroy Handle and its subtree
	OpReplace        Op = 0x0A // Replace Old with the new node Handle
	OpSetListener    Op = 0x0B // Subscribe Handle to event Name
	OpRemoveListener Op = 0x0C // Unsubscribe Handle from event Name
)

var opNames = map[Op]string{
	OpCreateElement:  "CreateElement",
	OpCreateText:     "CreateText",
	OpSetText:        "SetText",
	OpSetAttr:        "SetAttr",
	OpRemoveAttr:     "RemoveAttr",
	OpAppendChild:    "AppendChild",
	OpInsertBefore:   "InsertBefore",
	OpMove:           "Move",
	OpRemove:         "Remove",
	OpReplace:        "Replace",
	OpSetListener:    "SetListener",
	OpRemoveListener: "RemoveListener",
}

// String returns the string representation of the Op.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "Unknown"
}

// MarshalText encodes the op by name.
func (op Op) MarshalText() ([]byte, error) {
	name, ok := opNames[op]
	if !ok {
		return nil, fmt.Errorf("vdom: unknown op %d", uint8(op))
	}
	return []byte(name), nil
}

// UnmarshalText decodes an op name.
func (op *Op) UnmarshalText(text []byte) error {
	for k, v := range opNames {
		if v == string(text) {
			*op = k
			return nil
		}
	}
	return fmt.Errorf("vdom: unknown op %q", text)
}

// IsCreate reports whether the op allocates a new backend node.
func (op Op) IsCreate() bool {
	return op == OpCreateElement || op == OpCreateText
}

// Mutation is a single structural change addressed by backend handles.
// Later mutations in a batch may reference handles created earlier in it.
type Mutation struct {
	Op     Op     `json:"op"`
	Handle Handle `json:"h"`
	Parent Handle `json:"parent,omitempty"`
	Anchor Handle `json:"anchor,omitempty"`
	Old    Handle `json:"old,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Name   string `json:"name,omitempty"`
	Value  string `json:"value,omitempty"`
}

// String renders the mutation for logs and test failures.
func (m Mutation) String() string {
	switch m.Op {
	case OpCreateElement:
		return fmt.Sprintf("CreateElement %s <%s>", m.Handle, m.Tag)
	case OpCreateText, OpSetText:
		return fmt.Sprintf("%s %s %q", m.Op, m.Handle, m.Value)
	case OpSetAttr:
		return fmt.Sprintf("SetAttr %s %s=%q", m.Handle, m.Name, m.Value)
	case OpRemoveAttr, OpSetListener, OpRemoveListener:
		return fmt.Sprintf("%s %s %s", m.Op, m.Handle, m.Name)
	case OpAppendChild:
		return fmt.Sprintf("AppendChild %s -> %s", m.Handle, m.Parent)
	case OpInsertBefore, OpMove:
		return fmt.Sprintf("%s %s -> %s before %s", m.Op, m.Handle, m.Parent, m.Anchor)
	case OpReplace:
		return fmt.Sprintf("Replace %s with %s", m.Old, m.Handle)
	default:
		return fmt.Sprintf("%s %s", m.Op, m.Handle)
	}
}

// Batch is the ordered set of mutations produced by one scheduling tick.
type Batch struct {
	Seq uint64 `json:"seq"`
	// Reset asks the backend to discard every node except the root before
	// applying Mutations. It is set on full resynchronisation batches.
	Reset     bool       `json:"reset,omitempty"`
	Mutations []Mutation `json:"mutations"`
}

// Count returns the number of mutations with the given op.
func (b Batch) Count(op Op) int {
	return CountOps(b.Mutations, op)
}

// String lists one mutation per line.
func (b Batch) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "batch %d (%d mutations)\n", b.Seq, len(b.Mutations))
	for _, m := range b.Mutations {
		sb.WriteString("  ")
		sb.WriteString(m.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// CountOps returns the number of mutations with the given op.
func CountOps(muts []Mutation, op Op) int {
	n := 0
	for _, m := range muts {
		if m.Op == op {
			n++
		}
	}
	return n
}
