package thunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
)

// TaskId is a stable, content-independent identifier of a Thunk: a hash of
// its structural fingerprint (function name, ordered input identities,
// flags). Equal TaskIds denote the same computation.
type TaskId string

// String returns the hex identifier.
func (id TaskId) String() string { return string(id) }

// Zero reports whether id is the zero value (used as a "no id" sentinel at
// call sites that accept an optional TaskId).
func (id TaskId) Zero() bool { return id == "" }

// writeField writes a length-prefixed field so concatenated fields of
// variable length cannot collide across a shifted boundary (e.g. "ab"+"c"
// vs "a"+"bc").
func writeField(h hash.Hash, data []byte) {
	n := uint64(len(data))
	prefix := []byte{
		byte(n >> 56), byte(n >> 48), byte(n >> 40), byte(n >> 32),
		byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n),
	}
	h.Write(prefix)
	h.Write(data)
}

// ComputeTaskId derives the TaskId for a Thunk from its structural
// fingerprint: the function's identity string, the ordered identity of each
// input (another TaskId, a Chunk handle, or a literal's own stable
// encoding), and the four behavior flags. Two structurally identical thunks
// (even built independently) collapse to the same TaskId, which is what
// lets the metadata store deduplicate work across producers (spec.md §5,
// "set_result... idempotent-safe").
func ComputeTaskId(fn string, inputIdentities []string, meta, getResult, persist, cache bool) TaskId {
	h := sha256.New()
	writeField(h, []byte(fn))

	writeField(h, []byte{byte(len(inputIdentities))})
	for _, in := range inputIdentities {
		writeField(h, []byte(in))
	}

	var flags byte
	if meta {
		flags |= 1 << 0
	}
	if getResult {
		flags |= 1 << 1
	}
	if persist {
		flags |= 1 << 2
	}
	if cache {
		flags |= 1 << 3
	}
	writeField(h, []byte{flags})

	return TaskId(hex.EncodeToString(h.Sum(nil)))
}

// MustTaskId builds a readable TaskId for tests and the demo harness
// without going through a real structural fingerprint. It is NOT
// collision-resistant against ComputeTaskId outputs.
func MustTaskId(label string) TaskId {
	return TaskId(fmt.Sprintf("lit:%s", label))
}
