package queue

import "shardflow/internal/thunk"

// Reserved is a single executor's private work list (spec.md §4.1, §3). It
// is accessed only from the owning executor's cooperative loop, so unlike
// Shared it needs no lock (spec.md §5: "within a single executor, queue
// updates... are sequentially consistent").
type Reserved struct {
	items []thunk.TaskId
	pos   map[thunk.TaskId]int

	suspended map[thunk.TaskId]struct{}
}

// NewReserved returns an empty reserved sequence.
func NewReserved() *Reserved {
	return &Reserved{pos: make(map[thunk.TaskId]int)}
}

// Enqueue appends task to the tail, or moves it there if already present.
// A task already at the tail is left untouched.
func (r *Reserved) Enqueue(task thunk.TaskId) {
	if idx, ok := r.pos[task]; ok {
		if idx == len(r.items)-1 {
			return
		}
		r.removeAt(idx)
	}
	r.items = append(r.items, task)
	r.pos[task] = len(r.items) - 1
}

// Dequeue removes task's occurrence if present, reporting whether it was
// found.
func (r *Reserved) Dequeue(task thunk.TaskId) bool {
	idx, ok := r.pos[task]
	if !ok {
		return false
	}
	r.removeAt(idx)
	return true
}

// removeAt deletes the item at idx and reindexes everything after it.
func (r *Reserved) removeAt(idx int) {
	removed := r.items[idx]
	r.items = append(r.items[:idx], r.items[idx+1:]...)
	delete(r.pos, removed)
	for i := idx; i < len(r.items); i++ {
		r.pos[r.items[i]] = i
	}
}

// Contains reports whether task is currently present.
func (r *Reserved) Contains(task thunk.TaskId) bool {
	_, ok := r.pos[task]
	return ok
}

// Len returns the number of items currently reserved.
func (r *Reserved) Len() int { return len(r.items) }

// TailToHead returns a snapshot of the reserved tasks in tail-first order,
// the scan order reserve() uses (spec.md §4.3).
func (r *Reserved) TailToHead() []thunk.TaskId {
	out := make([]thunk.TaskId, len(r.items))
	for i, id := range r.items {
		out[len(r.items)-1-i] = id
	}
	return out
}

// Suspend marks task as suspended, the hook spec.md §4.6 documents for
// re-offering a suspended task to stealing.
//
// TODO: no suspension source exists yet (the core never suspends a task
// mid-execution), so nothing currently reads this set. Wire it once a
// thunk can block on an external event.
func (r *Reserved) Suspend(task thunk.TaskId) {
	if r.suspended == nil {
		r.suspended = make(map[thunk.TaskId]struct{})
	}
	r.suspended[task] = struct{}{}
}

// Suspended reports whether task has been marked suspended.
func (r *Reserved) Suspended(task thunk.TaskId) bool {
	_, ok := r.suspended[task]
	return ok
}
