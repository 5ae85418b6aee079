package scheduler

import (
	"shardflow/internal/thunk"
	"shardflow/internal/trace"
)

// Reserve implements spec.md §4.3: scan reserved tail to head, returning in
// strict priority the first not-yet-expanded task, else the first runnable
// task, else the tail regardless of runnability, else NoTask.
func (s *Scheduler) Reserve() thunk.TaskId {
	order := s.reserved.TailToHead()
	if len(order) == 0 {
		return NoTask
	}

	for _, id := range order {
		if _, expanded := s.expanded[id]; !expanded {
			s.recordReserved(id, "NotExpanded")
			return id
		}
	}
	for _, id := range order {
		if s.runnable(id) {
			s.recordReserved(id, "Runnable")
			return id
		}
	}
	s.recordReserved(order[0], "ForceProgress")
	return order[0]
}

func (s *Scheduler) recordReserved(id thunk.TaskId, reason string) {
	trace.SafeRecord(s.trace, trace.TraceEvent{Kind: trace.EventReserved, TaskID: id.String(), Reason: reason})
}

// IsExpanded reports whether task has already been through Keep's
// recursive expansion. A caller driving the cooperative loop (spec.md §2)
// uses this, together with IsRunnable, to tell "needs expanding" and
// "waiting on inputs" apart from a genuine Exec failure.
func (s *Scheduler) IsExpanded(task thunk.TaskId) bool {
	_, ok := s.expanded[task]
	return ok
}

// IsRunnable reports whether task may execute now (exported runnable).
func (s *Scheduler) IsRunnable(task thunk.TaskId) bool {
	return s.runnable(task)
}

// runnable reports whether task may execute now: it already has a cached
// result, it is not a Thunk (a bare Function/Chunk/Literal executable), or
// every one of its Thunk inputs has a result.
func (s *Scheduler) runnable(id thunk.TaskId) bool {
	if s.meta.HasResult(id) {
		return true
	}
	t, isThunk := s.graph.Node(id)
	if !isThunk {
		return true
	}
	for _, childId := range t.ThunkInputs() {
		if !s.meta.HasResult(childId) {
			return false
		}
	}
	return true
}
