package runtime

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vtree/pkg/scope"
)

func ids(qs []queued) []scope.ID {
	out := make([]scope.ID, len(qs))
	for i, q := range qs {
		out[i] = q.id
	}
	return out
}

func TestRenderQueueDedupAndPriority(t *testing.T) {
	q := newRenderQueue()
	q.push(1, scope.PriorityNormal)
	q.push(2, scope.PriorityLow)
	q.push(3, scope.PriorityNormal)
	if q.push(1, scope.PriorityNormal) {
		t.Error("duplicate push accepted")
	}
	if q.push(1, scope.PriorityLow) {
		t.Error("downgrade accepted")
	}
	if !q.push(2, scope.PriorityHigh) {
		t.Error("upgrade rejected")
	}
	if q.len() != 3 {
		t.Fatalf("len() = %d, want 3", q.len())
	}

	got := ids(q.pop(0))
	want := []scope.ID{2, 1, 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pop order mismatch (-want +got):\n%s", diff)
	}
	if q.len() != 0 {
		t.Errorf("len() after pop = %d", q.len())
	}
	if len(q.pop(0)) != 0 {
		t.Error("stale upgraded entry popped twice")
	}
}

func TestRenderQueuePopLimit(t *testing.T) {
	q := newRenderQueue()
	for id := scope.ID(1); id <= 5; id++ {
		q.push(id, scope.PriorityNormal)
	}
	q.push(9, scope.PriorityHigh)

	if diff := cmp.Diff([]scope.ID{9, 1}, ids(q.pop(2))); diff != "" {
		t.Errorf("first pop (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]scope.ID{2, 3, 4, 5}, ids(q.pop(0))); diff != "" {
		t.Errorf("second pop (-want +got):\n%s", diff)
	}
}
