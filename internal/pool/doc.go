// Package pool implements the off-heap chunk pool spec.md §6 specifies as
// an interface only: content-addressed storage for materialized values,
// with a migration path from in-process to disk-backed.
package pool
