package scheduler

import (
	"errors"
	"fmt"

	"shardflow/internal/peer"
	"shardflow/internal/pool"
	"shardflow/internal/store"
	"shardflow/internal/thunk"
)

// Sentinel error kinds spec.md §7 names. PoolMissing, MetaMissing and
// PeerUnavailable are the same sentinels their owning packages define;
// re-exported here so scheduler callers only need one import for
// errors.Is checks.
var (
	ErrUserThunkFailure = errors.New("scheduler: user thunk function failed")
	ErrPoolMissing      = pool.ErrPoolMissing
	ErrMetaMissing      = store.ErrMetaMissing
	ErrPeerUnavailable  = peer.ErrPeerUnavailable
)

// ThunkError wraps a failure from a user thunk's function (spec.md §7
// UserThunkFailure): fatal to the run, but the cause is preserved for
// diagnostics.
type ThunkError struct {
	TaskId thunk.TaskId
	Msg    string
}

func (e *ThunkError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", ErrUserThunkFailure.Error(), e.Msg)
}

func (e *ThunkError) Unwrap() error { return ErrUserThunkFailure }

func thunkFailuref(id thunk.TaskId, format string, args ...any) error {
	return &ThunkError{TaskId: id, Msg: fmt.Sprintf(format, args...)}
}
