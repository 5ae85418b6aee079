package trace

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeTraceHash computes the deterministic hash of a canonical trace
// encoding: sha256 over the canonical sorted-event bytes (not insertion
// order), hex-encoded. Assumes canonicalEncoding already came from
// ExecutionTrace.CanonicalJSON().
func ComputeTraceHash(canonicalEncoding []byte) string {
	if len(canonicalEncoding) == 0 {
		return ""
	}
	sum := sha256.Sum256(canonicalEncoding)
	return hex.EncodeToString(sum[:])
}
