package thunk

import (
	"bytes"
	"encoding/gob"
)

// Location reports where a Chunk's bytes currently live.
type Location int

const (
	// InProcess means the chunk's value lives only in this executor's
	// memory and has not been handed to the off-heap pool.
	InProcess Location = iota
	// OnDisk means the chunk has been migrated to the disk-backed pool
	// (chunktodisk) and is visible cluster-wide via its Handle.
	OnDisk
)

func (l Location) String() string {
	if l == OnDisk {
		return "disk"
	}
	return "memory"
}

// Handle identifies a Chunk's bytes inside the off-heap pool, independent
// of whether they currently live in memory or on disk.
type Handle string

// Chunk is a handle to a materialized value, held either in-process or in
// the off-heap pool. Persist/Cache mirror the originating Thunk's flags and
// govern retention (spec.md §3, §4.5).
type Chunk struct {
	Handle   Handle
	Location Location

	// Persist, if true, means the chunk must never be reclaimed by
	// refcount-driven cleanup (spec.md §4.5 only applies cleanup to
	// non-persistent chunks).
	Persist bool
	// Cache mirrors the originating thunk's cache flag; exec sets
	// Cache = true whenever Persist is true (spec.md §4.5 step 3).
	Cache bool

	// value holds the materialized payload while Location == InProcess.
	// It is opaque to the scheduler; only the pool and the user's thunk
	// function ever look inside it.
	value any
}

// NewInProcessChunk wraps a value that has not been exported to the pool.
func NewInProcessChunk(handle Handle, value any, persist, cache bool) Chunk {
	return Chunk{Handle: handle, Location: InProcess, Persist: persist, Cache: cache, value: value}
}

// NewOnDiskChunk describes a chunk whose bytes have migrated to the
// disk-backed pool tier. Its value is not held here; callers must resolve
// it through the pool by Handle (pool.Pool.Collect).
func NewOnDiskChunk(handle Handle, persist, cache bool) Chunk {
	return Chunk{Handle: handle, Location: OnDisk, Persist: persist, Cache: cache}
}

// Value returns the in-process payload. Callers must check Location first;
// an OnDisk chunk's value must be retrieved through the pool by Handle.
func (c Chunk) Value() any { return c.value }

// chunkEnvelope is the gob wire shape for Chunk: value is unexported so the
// default gob codec would silently drop it, which left a Chunk published
// through BoltStore.SetResult/ExportResult round-tripping with value==nil
// even while still InProcess. GobEncode/GobDecode export it explicitly.
type chunkEnvelope struct {
	Handle   Handle
	Location Location
	Persist  bool
	Cache    bool
	Value    any
}

func (c Chunk) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	env := chunkEnvelope{Handle: c.Handle, Location: c.Location, Persist: c.Persist, Cache: c.Cache, Value: c.value}
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Chunk) GobDecode(data []byte) error {
	var env chunkEnvelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return err
	}
	c.Handle, c.Location, c.Persist, c.Cache, c.value = env.Handle, env.Location, env.Persist, env.Cache, env.Value
	return nil
}
