package runtime

import "github.com/vango-dev/vtree/pkg/scope"

// renderQueue holds dirty scopes per priority class. A scope appears at
// most once; marking it again at a higher priority moves it up.
type renderQueue struct {
	classes [scope.NumPriorities][]scope.ID
	queued  map[scope.ID]scope.Priority
}

func newRenderQueue() *renderQueue {
	return &renderQueue{queued: make(map[scope.ID]scope.Priority)}
}

func (q *renderQueue) push(id scope.ID, p scope.Priority) bool {
	if p >= scope.NumPriorities {
		p = scope.PriorityLow
	}
	if cur, ok := q.queued[id]; ok && cur <= p {
		return false
	}
	// an upgraded entry leaves a stale copy behind in its old class; pop
	// skips it
	q.queued[id] = p
	q.classes[p] = append(q.classes[p], id)
	return true
}

// pop removes up to max entries (all when max <= 0) in priority order.
func (q *renderQueue) pop(max int) []queued {
	var out []queued
	for p := range q.classes {
		class := q.classes[p]
		i := 0
		for ; i < len(class); i++ {
			if max > 0 && len(out) == max {
				break
			}
			id := class[i]
			if cur, ok := q.queued[id]; !ok || cur != scope.Priority(p) {
				continue
			}
			delete(q.queued, id)
			out = append(out, queued{id: id, priority: scope.Priority(p)})
		}
		q.classes[p] = append(class[:0:0], class[i:]...)
	}
	return out
}

func (q *renderQueue) len() int {
	return len(q.queued)
}

type queued struct {
	id       scope.ID
	priority scope.Priority
}
