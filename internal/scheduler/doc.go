// Package scheduler implements the per-executor scheduler state machine
// spec.md describes: the dual task queue, DAG expansion (keep), reservation
// (reserve), stealing (steal), execution with result placement (exec), and
// refcount-driven chunk cleanup.
package scheduler
