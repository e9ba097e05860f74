package recorder

import (
	"sync"
	"time"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// Entry is one delivered batch.
type Entry struct {
	Batch vdom.Batch
	At    time.Time // When the backend accepted it
}

// History is a thread-safe ring buffer of delivered batches.
// It overwrites the oldest entries when full, keeping a sliding window of
// recent batches that can be replayed to a backend that missed some.
type History struct {
	mu       sync.RWMutex
	entries  []*Entry
	head     int    // Next write position (circular)
	count    int    // Current number of entries
	capacity int    // Max entries
	minSeq   uint64 // Lowest sequence in buffer
	maxSeq   uint64 // Highest sequence in buffer
}

// NewHistory creates a history ring with the given capacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 100
	}
	return &History{
		entries:  make([]*Entry, capacity),
		capacity: capacity,
	}
}

// Add stores a batch. Call it only after the backend accepted the batch.
// The mutation slice is copied.
func (h *History) Add(b vdom.Batch) {
	h.mu.Lock()
	defer h.mu.Unlock()

	muts := make([]vdom.Mutation, len(b.Mutations))
	copy(muts, b.Mutations)
	b.Mutations = muts

	h.entries[h.head] = &Entry{Batch: b, At: time.Now()}
	h.head = (h.head + 1) % h.capacity
	if h.count < h.capacity {
		h.count++
	}

	h.maxSeq = b.Seq
	if h.count == 1 {
		h.minSeq = b.Seq
	} else if h.count == h.capacity {
		// head now points at the oldest entry
		if oldest := h.entries[h.head]; oldest != nil {
			h.minSeq = oldest.Batch.Seq
		}
	}
}

// Range returns batches (afterSeq, toSeq] in sequence order, or nil if any
// of them is no longer held.
func (h *History) Range(afterSeq, toSeq uint64) []vdom.Batch {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.count == 0 || afterSeq >= toSeq {
		return nil
	}
	if afterSeq+1 < h.minSeq || toSeq > h.maxSeq {
		return nil
	}

	bySeq := make(map[uint64]vdom.Batch, h.count)
	for i := 0; i < h.count; i++ {
		idx := (h.head - h.count + i + h.capacity) % h.capacity
		if e := h.entries[idx]; e != nil {
			bySeq[e.Batch.Seq] = e.Batch
		}
	}

	out := make([]vdom.Batch, 0, toSeq-afterSeq)
	for seq := afterSeq + 1; seq <= toSeq; seq++ {
		b, ok := bySeq[seq]
		if !ok {
			return nil
		}
		out = append(out, b)
	}
	return out
}

// Since returns every batch after lastSeq, or nil if a gap prevents it.
func (h *History) Since(lastSeq uint64) []vdom.Batch {
	return h.Range(lastSeq, h.MaxSeq())
}

// CanRecover reports whether every batch after lastSeq is still held.
func (h *History) CanRecover(lastSeq uint64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.count == 0 {
		return false
	}
	return lastSeq+1 >= h.minSeq && lastSeq < h.maxSeq
}

// Entries returns the held entries, oldest first.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Entry, 0, h.count)
	for i := 0; i < h.count; i++ {
		idx := (h.head - h.count + i + h.capacity) % h.capacity
		if e := h.entries[idx]; e != nil {
			out = append(out, *e)
		}
	}
	return out
}

// MinSeq returns the lowest held sequence.
func (h *History) MinSeq() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.minSeq
}

// MaxSeq returns the highest held sequence.
func (h *History) MaxSeq() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.maxSeq
}

// Count returns the number of held entries.
func (h *History) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Clear removes all entries.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.entries {
		h.entries[i] = nil
	}
	h.head = 0
	h.count = 0
	h.minSeq = 0
	h.maxSeq = 0
}
