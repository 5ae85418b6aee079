package pool

import "fmt"

// DiskPool is a content-addressed blob store rooted at an explicit
// directory, the cluster-visible tier result placement migrates stolen
// chunks into (spec.md §4.5). Unlike MemoryPool its spill location is
// caller-controlled, since cluster visibility requires a path peers can
// reach (e.g. a shared filesystem).
type DiskPool struct {
	*filePool
}

// NewDiskPool returns a pool rooted at dir. The directory is created on the
// first ChunkToDisk, not here.
func NewDiskPool(dir string) (*DiskPool, error) {
	if dir == "" {
		return nil, fmt.Errorf("disk pool directory must not be empty")
	}
	return &DiskPool{filePool: newFilePool(dir)}, nil
}
