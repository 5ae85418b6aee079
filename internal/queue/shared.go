package queue

import (
	"sync"

	"shardflow/internal/thunk"
)

// Shared is the bounded, lock-protected deque an executor exposes to peers
// for stealing (spec.md §4.1). It is a fixed-capacity ring buffer, the
// representation Design Notes §9 recommends ("a fixed-size ring buffer...
// guarded by a robust inter-process mutex"), adapted here to an in-process
// sync.Mutex since process-to-process sharing is out of scope (spec.md §1).
//
// Every operation that inspects or mutates membership runs under mu; spec.md
// §5 forbids lock-free snapshot shortcuts because decisions (duplicate
// rejection, empty detection) depend on absence, which an unlocked read
// cannot observe safely.
type Shared struct {
	mu       sync.Mutex
	items    []thunk.TaskId
	present  map[thunk.TaskId]struct{}
	head     int
	count    int
	capacity int
}

// NewShared returns an empty shared deque with the given fixed capacity
// (spec.md §6 Config.ShareLimit).
func NewShared(capacity int) *Shared {
	return &Shared{
		items:    make([]thunk.TaskId, capacity),
		present:  make(map[thunk.TaskId]struct{}, capacity),
		capacity: capacity,
	}
}

// Push offers task to peers, appending at the back. It returns false
// without mutating the deque if task is already present (duplicate) or the
// deque is at capacity.
func (s *Shared) Push(task thunk.TaskId) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.present[task]; dup {
		return false
	}
	if s.count == s.capacity {
		return false
	}
	tail := (s.head + s.count) % s.capacity
	s.items[tail] = task
	s.present[task] = struct{}{}
	s.count++
	return true
}

// PopFront removes and returns the task at the front, the operation steal
// uses (spec.md §4.4). Returns (zero, false) when empty.
func (s *Shared) PopFront() (thunk.TaskId, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.count == 0 {
		return "", false
	}
	task := s.items[s.head]
	delete(s.present, task)
	s.head = (s.head + 1) % s.capacity
	s.count--
	return task, true
}

// PopFrontFiltered pops and discards tasks from the front for as long as
// skip returns true for them, then pops and returns the first task skip
// rejects (spec.md §4.4: "pop the front; ... otherwise discard and
// continue"). Skipped tasks are removed from the deque, not retained — a
// peer whose deque holds only tasks skip rejects is left fully drained and
// this returns (zero, false), per spec.md §8's boundary requirement that
// stealing from such a peer drains it rather than leaving the
// already-claimed entries to occupy capacity and be rescanned forever. The
// whole scan runs under one lock acquisition, since steal's decision
// (which task, if any, to take) depends on a consistent view across it.
func (s *Shared) PopFrontFiltered(skip func(thunk.TaskId) bool) (thunk.TaskId, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.count > 0 {
		task := s.items[s.head]
		delete(s.present, task)
		s.head = (s.head + 1) % s.capacity
		s.count--
		if !skip(task) {
			return task, true
		}
	}
	return "", false
}

// Len reports the current occupancy under lock.
func (s *Shared) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Capacity returns the fixed share_limit this deque was built with.
func (s *Shared) Capacity() int { return s.capacity }

// Contains reports whether task is currently offered. Exposed for tests
// asserting the no-duplicates invariant.
func (s *Shared) Contains(task thunk.TaskId) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.present[task]
	return ok
}
