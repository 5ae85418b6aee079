// Package peer implements the read-only peer handle and advisory pinger
// spec.md §2/§6 describe: a named, bounded shared deque with create/attach
// modes, plus an opaque wake-up channel. Registry is a process-local stand-in
// for a named shared-memory segment, since cross-process sharing is out of
// scope here (spec.md §1). Generation tokens are minted with
// github.com/google/uuid; ping delivery is retried with
// github.com/cenkalti/backoff/v4.
package peer
