// Package store implements the node-local metadata store spec.md §6
// specifies as an interface only: per-task result slots plus refcounts for
// cluster-wide "exported" results. MemoryStore is a single mutex-guarded
// map; BoltStore persists the same two-bucket layout to a bbolt file.
package store
