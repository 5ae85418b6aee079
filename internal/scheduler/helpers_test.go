package scheduler

import (
	"fmt"

	"shardflow/internal/config"
	"shardflow/internal/peer"
	"shardflow/internal/pool"
	"shardflow/internal/store"
	"shardflow/internal/thunk"
	"shardflow/internal/trace"
)

// newTestScheduler builds a Scheduler with its own in-memory store/pool, its
// own registry unless one is supplied, and a trace recorder callers can
// inspect. Each call gets an independent store/pool, correct for
// single-executor tests; multi-executor tests simulating a real cluster's
// shared metadata store/pool must use newClusterScheduler instead.
func newTestScheduler(name string, shareLimit, helpThreshold int, reg *peer.Registry) (*Scheduler, *trace.Recorder) {
	return newClusterScheduler(name, shareLimit, helpThreshold, reg, store.NewMemoryStore(), pool.NewMemoryPool())
}

// newClusterScheduler is newTestScheduler but with an explicit store/pool,
// so a multi-executor test can hand every executor the SAME store and pool
// instances — the node-local Store/Pool types here are in-process stand-ins
// for what a real deployment backs with shared/networked infrastructure
// (spec.md §1: store and pool are named external collaborators, interface
// only), and a meaningful cross-executor test needs that sharing to
// observe export_result/steal crossing executor boundaries at all.
func newClusterScheduler(name string, shareLimit, helpThreshold int, reg *peer.Registry, st store.Store, pl pool.Pool) (*Scheduler, *trace.Recorder) {
	if reg == nil {
		reg = peer.NewRegistry()
	}
	rec := trace.NewRecorder()
	cfg := config.Config{Name: name, Role: config.RoleExecutor, ShareLimit: shareLimit, HelpThreshold: helpThreshold}
	s := New(cfg, st, pl, reg, rec)
	return s, rec
}

// leaf builds a literal-producing Thunk with no inputs, identified by label.
func leaf(label string, value any) *thunk.Thunk {
	id := thunk.MustTaskId(label)
	return &thunk.Thunk{
		Id:        id,
		F:         func(args []any) (any, error) { return value, nil },
		GetResult: true,
	}
}

// combine builds a Thunk summing the collected values of its inputs.
func combine(label string, inputs ...*thunk.Thunk) *thunk.Thunk {
	ins := make([]thunk.Input, len(inputs))
	for i, in := range inputs {
		ins[i] = thunk.ThunkInput(in.Id)
	}
	return &thunk.Thunk{
		Id: thunk.MustTaskId(label),
		F: func(args []any) (any, error) {
			total := 0
			for _, a := range args {
				n, ok := a.(int)
				if !ok {
					return nil, fmt.Errorf("combine: non-int arg %#v", a)
				}
				total += n
			}
			return total, nil
		},
		Inputs:    ins,
		GetResult: true,
	}
}

// nodeSet is a thin label for "every node of this run's DAG, in whatever
// order" — the shape Init expects, since DAG construction is out of scope
// and tests build the reachable set by hand.
func nodeSet(nodes ...*thunk.Thunk) []*thunk.Thunk { return nodes }
