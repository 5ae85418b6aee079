package store

import (
	"errors"
	"fmt"

	"shardflow/internal/thunk"
)

// ErrMetaMissing is the sentinel spec.md §7 names for metadata corruption or
// loss: a refcount decrement on a taskid that has no exported refcount.
var ErrMetaMissing = errors.New("metadata store: missing entry")

// MetaError wraps ErrMetaMissing with the offending taskid and a
// human-readable Msg; Unwrap returns ErrMetaMissing for errors.Is checks.
type MetaError struct {
	TaskId thunk.TaskId
	Msg    string
}

func (e *MetaError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", ErrMetaMissing.Error(), e.Msg)
}

func (e *MetaError) Unwrap() error { return ErrMetaMissing }

func metaMissingf(id thunk.TaskId, format string, args ...any) error {
	return &MetaError{TaskId: id, Msg: fmt.Sprintf(format, args...)}
}

// Store is the metadata store interface spec.md §6 specifies: per-task
// result slots with refcounts, local or cluster-visible.
type Store interface {
	// HasResult reports whether taskid already has a published result.
	HasResult(id thunk.TaskId) bool
	// GetResult retrieves the published value for taskid.
	GetResult(id thunk.TaskId) (value any, ok bool)
	// SetResult publishes value for taskid into this node only. Idempotent:
	// if taskid already has a result, the call is a no-op and the first
	// publication wins (spec.md §5).
	SetResult(id thunk.TaskId, value any) error
	// ExportResult publishes value cluster-wide with an initial refcount,
	// used when the producing executor differs from where the consumer
	// will run (spec.md §4.5). Idempotent like SetResult.
	ExportResult(id thunk.TaskId, value any, initialRefcount int) error
	// DecrResultRefcount decrements taskid's stored refcount and returns the
	// new value. Returns ErrMetaMissing if taskid has no exported refcount.
	DecrResultRefcount(id thunk.TaskId) (int, error)
	// Reset clears per-run state. If dropdb, nothing survives; otherwise
	// published results are preserved across the reset (spec.md §4.7).
	Reset(dropdb bool) error
}
