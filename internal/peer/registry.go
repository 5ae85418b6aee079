package peer

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"shardflow/internal/queue"
)

type entry struct {
	shared     *queue.Shared
	pinger     *Pinger
	generation uuid.UUID
}

// Registry is the process-local "create/attach" surface spec.md §6's peer
// channel describes: executors register their shared deque under their
// name, and peers attach to read it.
type Registry struct {
	mu    sync.Mutex
	peers map[string]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{peers: make(map[string]*entry)}
}

// Register publishes name's shared deque and pinger, minting a fresh
// generation token. Re-registering the same name (after a reset/init cycle)
// mints a new token so peers holding a Handle from the prior incarnation can
// detect staleness via IsCurrent.
func (r *Registry) Register(name string, shared *queue.Shared, pinger *Pinger) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	gen := uuid.New()
	r.peers[name] = &entry{shared: shared, pinger: pinger, generation: gen}
	return gen
}

// Unregister removes name from the registry entirely.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, name)
}

// Attach returns a read-only Handle to name's shared deque, or
// ErrPeerUnavailable if name is not currently registered.
func (r *Registry) Attach(name string) (Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.peers[name]
	if !ok {
		return Handle{}, unavailablef(name, "no peer registered under this name")
	}
	return Handle{Name: name, Generation: e.generation, shared: e.shared, pinger: e.pinger}, nil
}

// IsCurrent reports whether h's generation still matches name's live
// registration. A stale handle (generation mismatch, or name no longer
// registered) must degrade stealing to NoTask rather than touch a deque
// that may have been reset out from under it.
func (r *Registry) IsCurrent(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.peers[h.Name]
	return ok && e.generation == h.Generation
}

// Names returns the currently registered peer names.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.peers))
	for name := range r.peers {
		out = append(out, name)
	}
	return out
}

// Handle is a read-handle to another executor's shareable deque plus its
// id/name (spec.md §3). It does not own the peer's state.
type Handle struct {
	Name       string
	Generation uuid.UUID

	shared *queue.Shared
	pinger *Pinger
}

// Shared returns the peer's shared deque.
func (h Handle) Shared() *queue.Shared { return h.shared }

// Ping best-effort wakes the peer. A nil pinger (zero Handle) is a no-op.
func (h Handle) Ping() {
	if h.pinger == nil {
		return
	}
	_ = h.pinger.Send(context.Background())
}
