package remote

import (
	"encoding/json"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// Frame types.
const (
	FrameBatch  = "batch"
	FrameError  = "error"
	FrameEvent  = "event"
	FrameResync = "resync"
)

// Outbound is a frame sent to clients.
type Outbound struct {
	Type  string      `json:"type"`
	Batch *vdom.Batch `json:"batch,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Inbound is a frame received from a client.
type Inbound struct {
	Type    string      `json:"type"`
	Event   string      `json:"event,omitempty"`
	Target  vdom.Handle `json:"target,omitempty"`
	Payload any         `json:"payload,omitempty"`
}

// encoded is an outbound frame ready to write. seq is 0 for non-batch
// frames.
type encoded struct {
	seq   uint64
	reset bool
	data  []byte
}

func encodeBatch(b vdom.Batch) (encoded, error) {
	data, err := json.Marshal(Outbound{Type: FrameBatch, Batch: &b})
	if err != nil {
		return encoded{}, err
	}
	return encoded{seq: b.Seq, reset: b.Reset, data: data}, nil
}

func encodeError(msg string) []byte {
	data, _ := json.Marshal(Outbound{Type: FrameError, Error: msg})
	return data
}
