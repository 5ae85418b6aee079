// Package thunk defines the immutable DAG node model the scheduler core
// operates on: TaskId, Thunk, Chunk, and the Executable variant that exec
// dispatches on.
//
// Thunks and TaskIds are produced once by the (out-of-scope) DAG
// construction API; this package only defines their shape and identity.
package thunk
