package peer

import (
	"errors"
	"testing"

	"shardflow/internal/queue"
)

func TestRegistryAttachUnknownPeerIsUnavailable(t *testing.T) {
	r := NewRegistry()
	_, err := r.Attach("ghost")
	if !errors.Is(err, ErrPeerUnavailable) {
		t.Fatalf("err = %v, want ErrPeerUnavailable", err)
	}
}

func TestRegistryAttachReturnsRegisteredShared(t *testing.T) {
	r := NewRegistry()
	shared := queue.NewShared(4)
	r.Register("executor1", shared, NewPinger(1))

	h, err := r.Attach("executor1")
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if h.Shared() != shared {
		t.Fatalf("Handle.Shared() did not return the registered deque")
	}
}

func TestRegistryReRegisterMintsNewGenerationAndStalesOldHandle(t *testing.T) {
	r := NewRegistry()
	shared := queue.NewShared(4)
	r.Register("executor1", shared, NewPinger(1))

	stale, err := r.Attach("executor1")
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}

	r.Register("executor1", shared, NewPinger(1)) // simulate reset + re-init

	if r.IsCurrent(stale) {
		t.Fatalf("IsCurrent(stale handle) = true after re-register, want false")
	}

	fresh, err := r.Attach("executor1")
	if err != nil {
		t.Fatalf("Attach after re-register: %v", err)
	}
	if !r.IsCurrent(fresh) {
		t.Fatalf("IsCurrent(fresh handle) = false, want true")
	}
}

func TestRegistryUnregisterMakesPeerUnavailable(t *testing.T) {
	r := NewRegistry()
	r.Register("executor1", queue.NewShared(4), NewPinger(1))
	r.Unregister("executor1")

	_, err := r.Attach("executor1")
	if !errors.Is(err, ErrPeerUnavailable) {
		t.Fatalf("err = %v, want ErrPeerUnavailable", err)
	}
}
