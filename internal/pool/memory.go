package pool

import (
	"os"
	"path/filepath"
)

// MemoryPool holds chunk values in RAM, spilling to a process-local temp
// directory only when ChunkToDisk is explicitly invoked.
type MemoryPool struct {
	*filePool
}

// NewMemoryPool returns a pool backed by an OS temp directory, used only as
// the fallback target for ChunkToDisk.
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{filePool: newFilePool(filepath.Join(os.TempDir(), "shardflow-pool"))}
}
