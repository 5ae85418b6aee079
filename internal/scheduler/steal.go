package scheduler

import (
	"shardflow/internal/thunk"
	"shardflow/internal/trace"
)

// Steal implements spec.md §4.4: pop the front of fromPeer's shared deque,
// skipping any task already in s.stolen, under a single lock acquisition so
// the pick is atomic. A stale or unregistered peer degrades to NoTask rather
// than aborting the run (spec.md §7 PeerUnavailable).
func (s *Scheduler) Steal(fromPeer string) thunk.TaskId {
	h, err := s.peers.Attach(fromPeer)
	if err != nil || !s.peers.IsCurrent(h) {
		return NoTask
	}

	task, ok := h.Shared().PopFrontFiltered(func(id thunk.TaskId) bool {
		_, already := s.stolen[id]
		return already
	})
	if !ok {
		return NoTask
	}

	s.stolen[task] = struct{}{}
	trace.SafeRecord(s.trace, trace.TraceEvent{Kind: trace.EventStolen, TaskID: task.String(), Reason: "FromPeer", CauseTaskID: fromPeer})
	return task
}
