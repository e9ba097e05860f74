package scope

import "fmt"

// ID identifies a scope. It packs a slot index with a generation counter so
// that identities are never reused while (or after) the scope is alive.
type ID uint64

// NoID is the zero ID. It never refers to a live scope.
const NoID ID = 0

func makeID(index, gen uint32) ID {
	return ID(uint64(gen)<<32 | uint64(index))
}

// Index returns the arena slot index.
func (id ID) Index() uint32 {
	return uint32(id)
}

// Generation returns the generation counter.
func (id ID) Generation() uint32 {
	return uint32(id >> 32)
}

// String returns "s<index>.<generation>".
func (id ID) String() string {
	if id == NoID {
		return "s-"
	}
	return fmt.Sprintf("s%d.%d", id.Index(), id.Generation())
}
