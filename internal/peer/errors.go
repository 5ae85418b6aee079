package peer

import (
	"errors"
	"fmt"
)

// ErrPeerUnavailable is the sentinel spec.md §7 names: stealing from a peer
// whose handle is invalid or stale degrades to NoTask for that peer rather
// than aborting the run.
var ErrPeerUnavailable = errors.New("peer: unavailable")

// UnavailableError wraps ErrPeerUnavailable with the offending peer name.
type UnavailableError struct {
	Name string
	Msg  string
}

func (e *UnavailableError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", ErrPeerUnavailable.Error(), e.Msg)
}

func (e *UnavailableError) Unwrap() error { return ErrPeerUnavailable }

func unavailablef(name, format string, args ...any) error {
	return &UnavailableError{Name: name, Msg: fmt.Sprintf(format, args...)}
}
