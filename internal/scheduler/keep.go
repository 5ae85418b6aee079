package scheduler

import (
	"shardflow/internal/config"
	"shardflow/internal/thunk"
	"shardflow/internal/trace"
)

// Keep implements spec.md §4.2: the unified entry point for inserting work
// into the scheduler. depth is the number of levels below task to expand
// (1 expands one level beyond task); the recursion decrements each level.
func (s *Scheduler) Keep(task thunk.TaskId, depth int, isReserved bool) bool {
	if s.meta.HasResult(task) {
		trace.SafeRecord(s.trace, trace.TraceEvent{Kind: trace.EventAlreadyDone, TaskID: task.String(), Reason: "HasResult"})
		return true
	}

	s.enqueue(task, isReserved)

	depth--
	t, isThunk := s.graph.Node(task)
	if depth < 0 || !isThunk {
		return false
	}
	if _, already := s.expanded[task]; already {
		return false
	}

	reservedForSelf := false
	for _, childId := range t.ThunkInputs() {
		isThisReserved := placementDecision(isReserved, s.graph.DependentCount(childId) < 2, reservedForSelf, s.ShouldShare())
		s.Keep(childId, depth, isThisReserved)
		reservedForSelf = reservedForSelf || isThisReserved
	}
	s.expanded[task] = struct{}{}
	return false
}

// placementDecision is the truth table Design Notes §9 calls for:
// isthisreserved is only ever true when the outer guard (parent reserved AND
// this input has fewer than 2 dependents) holds, in which case it follows
// reservedForSelf/shouldShare; any false in the guard forces false
// regardless of the other two inputs.
func placementDecision(parentReserved, fewerThanTwoDependents, reservedForSelf, shouldShare bool) bool {
	if !parentReserved || !fewerThanTwoDependents {
		return false
	}
	return !reservedForSelf || !shouldShare
}

// enqueue places task onto the reserved or shared deque per isReserved,
// pinging peers when placement is shared (spec.md §4.2 step 2). Re-offering
// a task already in shared is idempotent (spec.md §7: "duplicate queue
// insertions are idempotent") rather than spilling it into reserved; only a
// genuinely full shared deque falls back to reserved, so the task is never
// lost, preserving the invariant len(shared) <= share_limit.
func (s *Scheduler) enqueue(task thunk.TaskId, isReserved bool) {
	if isReserved {
		s.reserved.Enqueue(task)
		trace.SafeRecord(s.trace, trace.TraceEvent{Kind: trace.EventKept, TaskID: task.String(), Reason: "Reserved"})
		return
	}

	if s.shared.Contains(task) {
		trace.SafeRecord(s.trace, trace.TraceEvent{Kind: trace.EventKept, TaskID: task.String(), Reason: "AlreadyShared"})
		return
	}

	reason := "Shared"
	if s.shared.Push(task) {
		s.nshared++
		// spec.md §4.2 step 2 pings peers only for an executor that actually
		// placed work onto its shared deque; a fallback to reserved (the
		// deque was full) offers nothing new to steal, and a broker has no
		// peers to wake in the first place.
		if s.Role == config.RoleExecutor {
			s.wakePeers()
		}
	} else {
		s.reserved.Enqueue(task)
		reason = "SharedFullFellBackToReserved"
	}
	trace.SafeRecord(s.trace, trace.TraceEvent{Kind: trace.EventKept, TaskID: task.String(), Reason: reason})
}
