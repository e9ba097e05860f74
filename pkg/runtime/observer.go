package runtime

import (
	"time"

	"github.com/vango-dev/vtree/pkg/diff"
	"github.com/vango-dev/vtree/pkg/scope"
)

// WorkState is the lifecycle state of one render queue entry in a tick.
type WorkState uint8

const (
	Queued WorkState = iota
	Rendering
	Diffing
	Committed
	Errored
	// Skipped entries were no longer dirty (or no longer alive) when their
	// turn came, usually because an ancestor re-rendered them first.
	Skipped
)

func (s WorkState) String() string {
	switch s {
	case Queued:
		return "queued"
	case Rendering:
		return "rendering"
	case Diffing:
		return "diffing"
	case Committed:
		return "committed"
	case Errored:
		return "errored"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// WorkItem records what happened to one queue entry.
type WorkItem struct {
	Scope     scope.ID
	Component string
	Priority  scope.Priority
	State     WorkState
	Mutations int
	Err       error
}

// TickStats summarises one tick.
type TickStats struct {
	Seq       uint64 // batch sequence number, 0 when nothing was delivered
	Items     []WorkItem
	Rendered  int
	Skipped   int
	Errored   int
	Mutations int
	Deferred  int // entries left queued for the next tick
	Effects   int
	Duration  time.Duration
}

// Observer receives runtime events. Implementations must not call back
// into the Runtime.
type Observer interface {
	TickCompleted(TickStats)
	ScopeRendered(diff.RenderInfo)
	EventDispatched(event string, d time.Duration, err error)
	BackendFailed(err error)
}

// NopObserver ignores everything. Embed it to implement part of Observer.
type NopObserver struct{}

func (NopObserver) TickCompleted(TickStats)                     {}
func (NopObserver) ScopeRendered(diff.RenderInfo)               {}
func (NopObserver) EventDispatched(string, time.Duration, error) {}
func (NopObserver) BackendFailed(error)                          {}

type multiObserver []Observer

// Observers fans events out to every non-nil observer.
func Observers(obs ...Observer) Observer {
	var out multiObserver
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (m multiObserver) TickCompleted(s TickStats) {
	for _, o := range m {
		o.TickCompleted(s)
	}
}

func (m multiObserver) ScopeRendered(ri diff.RenderInfo) {
	for _, o := range m {
		o.ScopeRendered(ri)
	}
}

func (m multiObserver) EventDispatched(event string, d time.Duration, err error) {
	for _, o := range m {
		o.EventDispatched(event, d, err)
	}
}

func (m multiObserver) BackendFailed(err error) {
	for _, o := range m {
		o.BackendFailed(err)
	}
}
