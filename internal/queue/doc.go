// Package queue implements the dual task queue an executor keeps: a private
// reserved sequence and a bounded, lock-protected shared deque peers can
// steal from (spec.md §4.1). Shared is a plain mutex-guarded ring buffer
// rather than a lock-free structure, since spec.md §5 requires every
// membership/length check to happen under the lock — no atomic-snapshot
// shortcuts are permitted. Reserved is touched only by its owning
// executor's loop and has no lock.
package queue
