package scheduler

import (
	"sync"

	"shardflow/internal/config"
	"shardflow/internal/graph"
	"shardflow/internal/peer"
	"shardflow/internal/pool"
	"shardflow/internal/queue"
	"shardflow/internal/store"
	"shardflow/internal/thunk"
	"shardflow/internal/trace"
)

// NoTask is the sentinel spec.md §7 names, returned by Reserve and Steal
// when nothing is available.
var NoTask = thunk.TaskId("")

// Scheduler is the per-executor state machine spec.md §3/§5 describes. Both
// the executor and broker roles share this type, distinguished by
// Config.Role.
type Scheduler struct {
	Name string
	Role config.Role

	reserved *queue.Reserved
	shared   *queue.Shared

	stolen   map[thunk.TaskId]struct{}
	expanded map[thunk.TaskId]struct{}

	graph *graph.Graph

	nshared       int
	rootTask      thunk.TaskId
	helpThreshold int
	shareLimit    int

	meta  store.Store
	pool  pool.Pool
	peers *peer.Registry
	home  *peer.Pinger

	trace trace.Sink

	// mu guards only the async-reset coordination below; per spec.md §5
	// the cooperative loop itself is single-threaded and needs no lock.
	mu        sync.Mutex
	resetDone chan struct{}
	resetErr  error
}

// New constructs a Scheduler. It does not register with peers or run init;
// call Init once the full node set for a run is known.
func New(cfg config.Config, meta store.Store, pl pool.Pool, peers *peer.Registry, sink trace.Sink) *Scheduler {
	cfg = cfg.WithDefaults()
	if sink == nil {
		sink = trace.NopSink{}
	}
	return &Scheduler{
		Name:          cfg.Name,
		Role:          cfg.Role,
		reserved:      queue.NewReserved(),
		shared:        queue.NewShared(cfg.ShareLimit),
		stolen:        make(map[thunk.TaskId]struct{}),
		expanded:      make(map[thunk.TaskId]struct{}),
		helpThreshold: cfg.HelpThreshold,
		shareLimit:    cfg.ShareLimit,
		meta:          meta,
		pool:          pl,
		peers:         peers,
		home:          peer.NewPinger(cfg.ShareLimit),
		trace:         sink,
	}
}

// ShouldShare reports whether the local shared deque has room for more
// offerings (spec.md §4.1). Advisory, re-evaluated at each decision point.
func (s *Scheduler) ShouldShare() bool {
	return s.shared.Len() < s.helpThreshold
}

// RootTask returns the current run's root, or the zero TaskId between runs.
func (s *Scheduler) RootTask() thunk.TaskId { return s.rootTask }

// Shared exposes this executor's shareable deque, the handle peers attach
// to via the Registry.
func (s *Scheduler) Shared() *queue.Shared { return s.shared }

// Home exposes this executor's inbound wake channel for the cooperative
// loop to select on (spec.md §5's "awaiting ping delivery" suspension
// point).
func (s *Scheduler) Home() *peer.Pinger { return s.home }

// GraphHash returns the current run's structural DAG identifier, the value
// an ExecutionTrace built from this executor's events should be stamped
// with. Empty before Init or after Reset.
func (s *Scheduler) GraphHash() string {
	if s.graph == nil {
		return ""
	}
	return s.graph.Hash()
}

// Release implements spec.md §4.6: if complete, remove task from reserved.
// If not complete, the task is left in place; Reserved.Suspend is the
// documented-but-unreachable hook for re-offering it to stealing (no
// suspension source exists in this core yet).
func (s *Scheduler) Release(task thunk.TaskId, complete bool) {
	if complete {
		s.reserved.Dequeue(task)
		trace.SafeRecord(s.trace, trace.TraceEvent{Kind: trace.EventReleased, TaskID: task.String()})
		return
	}
	s.reserved.Suspend(task)
}

// wakePeers best-effort pings every other registered peer, the "emit a ping
// to wake idle peers" step of keep (spec.md §4.2 step 2).
func (s *Scheduler) wakePeers() {
	for _, name := range s.peers.Names() {
		if name == s.Name {
			continue
		}
		if h, err := s.peers.Attach(name); err == nil {
			h.Ping()
		}
	}
}
