package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"sync"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// Sink stores archive segments.
type Sink interface {
	Put(ctx context.Context, key string, body []byte) error
}

// SegmentKey names the segment holding batches from..to under prefix.
// Sequence numbers are zero padded so keys sort in delivery order.
func SegmentKey(prefix string, from, to uint64) string {
	return path.Join(prefix, fmt.Sprintf("%020d-%020d.jsonl", from, to))
}

// EncodeSegment writes one JSON batch per line.
func EncodeSegment(batches []vdom.Batch) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, b := range batches {
		if err := enc.Encode(b); err != nil {
			return nil, fmt.Errorf("recorder: encode batch %d: %w", b.Seq, err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeSegment reads a segment written by EncodeSegment.
func DecodeSegment(data []byte) ([]vdom.Batch, error) {
	var out []vdom.Batch
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var b vdom.Batch
		if err := dec.Decode(&b); err != nil {
			return out, fmt.Errorf("recorder: decode segment: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}

// MemorySink keeps segments in memory.
type MemorySink struct {
	mu       sync.Mutex
	segments map[string][]byte
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{segments: make(map[string][]byte)}
}

// Put implements Sink.
func (m *MemorySink) Put(_ context.Context, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segments[key] = append([]byte(nil), body...)
	return nil
}

// Keys returns the stored keys in order.
func (m *MemorySink) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.segments))
	for k := range m.segments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the segment stored under key.
func (m *MemorySink) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.segments[key]
	return b, ok
}
