package scheduler

import "testing"

func TestReserveOnEmptyReturnsNoTask(t *testing.T) {
	s, _ := newTestScheduler("e1", 8, 4, nil)
	if got := s.Reserve(); got != NoTask {
		t.Fatalf("Reserve() on empty = %q, want NoTask", got)
	}
}

func TestReservePrefersUnexpandedOverRunnable(t *testing.T) {
	s, _ := newTestScheduler("e1", 8, 4, nil)
	x := leaf("x", 1)
	root := combine("root", x)
	if err := s.Init(root.Id, nodeSet(root, x)); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// Reserve both by hand, in an order where the runnable one (x, a leaf
	// with no inputs so it's trivially runnable, already expanded) sits at
	// the tail, and the not-yet-expanded root sits beneath it.
	s.expanded[x.Id] = struct{}{}
	s.reserved.Enqueue(root.Id)
	s.reserved.Enqueue(x.Id)

	if got := s.Reserve(); got != root.Id {
		t.Fatalf("Reserve() = %q, want root (%q): unexpanded must win over runnable", got, root.Id)
	}
}

func TestReserveFallsBackToRunnableThenTail(t *testing.T) {
	s, _ := newTestScheduler("e1", 8, 4, nil)
	x := leaf("x", 1)
	y := leaf("y", 2)
	root := combine("root", x, y)
	if err := s.Init(root.Id, nodeSet(root, x, y)); err != nil {
		t.Fatalf("Init: %v", err)
	}
	s.expanded[root.Id] = struct{}{}
	s.expanded[x.Id] = struct{}{}
	s.expanded[y.Id] = struct{}{}

	// root is not runnable yet (its inputs have no results); x is a leaf,
	// always runnable. Tail-to-head order is [root, x], so the
	// not-yet-expanded pass finds nothing, the runnable pass should return
	// x even though it's not at the tail.
	s.reserved.Enqueue(x.Id)
	s.reserved.Enqueue(root.Id)

	if got := s.Reserve(); got != x.Id {
		t.Fatalf("Reserve() = %q, want x (%q): first runnable wins", got, x.Id)
	}

	// Now force the no-runnable-available fallback: dequeue x, leaving only
	// root (not runnable), which must still be returned (tail, forced).
	s.reserved.Dequeue(x.Id)
	if got := s.Reserve(); got != root.Id {
		t.Fatalf("Reserve() = %q, want root (forced progress fallback)", got)
	}
}

func TestRunnableTreatsCachedResultAndBareExecutableAsRunnable(t *testing.T) {
	s, _ := newTestScheduler("e1", 8, 4, nil)
	a := leaf("a", 1)
	if err := s.Init(a.Id, nodeSet(a)); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !s.runnable(a.Id) {
		t.Fatalf("leaf with no unresolved inputs must be runnable")
	}

	other := leaf("unregistered", 0)
	if !s.runnable(other.Id) {
		t.Fatalf("a TaskId absent from the graph must be treated as runnable (not a Thunk)")
	}

	if err := s.meta.SetResult(other.Id, 0); err != nil {
		t.Fatalf("SetResult: %v", err)
	}
	if !s.runnable(other.Id) {
		t.Fatalf("a task with a cached result must be runnable")
	}
}
