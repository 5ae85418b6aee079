package scheduler

import (
	"shardflow/internal/graph"
	"shardflow/internal/queue"
	"shardflow/internal/thunk"
)

// Init implements spec.md §4.7: await any outstanding async reset, set
// root_task, and precompute the full dependents map by a single traversal
// of the DAG. Since DAG construction is out of scope (spec.md §1), the
// caller supplies every thunk reachable from root; Init only builds the
// index over them.
func (s *Scheduler) Init(root thunk.TaskId, nodes []*thunk.Thunk) error {
	s.mu.Lock()
	done := s.resetDone
	s.mu.Unlock()
	if done != nil {
		<-done
		s.mu.Lock()
		err := s.resetErr
		s.resetDone = nil
		s.mu.Unlock()
		if err != nil {
			return err
		}
	}

	s.graph = graph.BuildFromNodes(nodes)
	s.rootTask = root
	s.peers.Register(s.Name, s.shared, s.home)
	return nil
}

// Reset implements spec.md §4.7: clears all per-run sets/queues, zeroes
// counters, unsets the root; does not drop persisted results unless dropdb.
func (s *Scheduler) Reset(dropdb bool) error {
	s.reserved = queue.NewReserved()
	s.shared = queue.NewShared(s.shareLimit)
	s.stolen = make(map[thunk.TaskId]struct{})
	s.expanded = make(map[thunk.TaskId]struct{})
	s.graph = nil
	s.rootTask = ""
	s.nshared = 0

	if err := s.meta.Reset(dropdb); err != nil {
		return err
	}
	s.peers.Register(s.Name, s.shared, s.home)
	return nil
}

// AsyncReset schedules a reset to overlap with driver-side teardown
// (Design Notes §9: "a background task that clears per-run sets... model
// as a single-slot future"). The next Init call joins on it.
func (s *Scheduler) AsyncReset(dropdb bool) {
	done := make(chan struct{})
	s.mu.Lock()
	s.resetDone = done
	s.mu.Unlock()

	go func() {
		err := s.Reset(dropdb)
		s.mu.Lock()
		s.resetErr = err
		s.mu.Unlock()
		close(done)
	}()
}
