package pool

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"shardflow/internal/thunk"
)

func init() {
	gob.Register(float64(0))
	gob.Register([]float64{})
	gob.Register(int(0))
	gob.Register(string(""))
	gob.Register([]thunk.Chunk{})
}

// filePool is the shared implementation behind MemoryPool and DiskPool: an
// in-memory map for values that have not migrated, plus a spill directory
// used once ChunkToDisk is called. writeBlob uses a temp-file-plus-rename
// idiom so a spill is atomic from any reader's perspective.
type filePool struct {
	mu      sync.Mutex
	values  map[thunk.Handle]any
	dir     string
	onDisk  map[thunk.Handle]struct{}
}

func newFilePool(dir string) *filePool {
	return &filePool{
		values: make(map[thunk.Handle]any),
		onDisk: make(map[thunk.Handle]struct{}),
		dir:    dir,
	}
}

// contentHandle hashes the gob encoding of value, giving content-addressed
// keys for pool entries and on-disk blobs alike.
func contentHandle(value any) (thunk.Handle, []byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&value); err != nil {
		return "", nil, fmt.Errorf("encoding chunk value: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())
	return thunk.Handle(hex.EncodeToString(sum[:])), buf.Bytes(), nil
}

func (p *filePool) ToChunk(value any, persist, cache bool) (thunk.Chunk, error) {
	handle, _, err := contentHandle(value)
	if err != nil {
		return thunk.Chunk{}, err
	}
	p.mu.Lock()
	p.values[handle] = value
	p.mu.Unlock()
	return thunk.NewInProcessChunk(handle, value, persist, cache), nil
}

func (p *filePool) Collect(c thunk.Chunk) (any, error) {
	if c.Location == thunk.InProcess {
		return c.Value(), nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.values[c.Handle]; ok {
		return v, nil
	}
	return p.readFromDisk(c.Handle)
}

func (p *filePool) ChunkToDisk(c thunk.Chunk) (thunk.Chunk, error) {
	if c.Location == thunk.OnDisk {
		return c, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	value, ok := p.values[c.Handle]
	if !ok {
		return thunk.Chunk{}, poolMissingf(c.Handle, "no in-process value for %s", c.Handle)
	}
	if err := p.writeBlob(c.Handle, value); err != nil {
		return thunk.Chunk{}, err
	}
	delete(p.values, c.Handle)
	p.onDisk[c.Handle] = struct{}{}
	return thunk.NewOnDiskChunk(c.Handle, c.Persist, c.Cache), nil
}

func (p *filePool) PoolDelete(handle thunk.Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, inMem := p.values[handle]
	_, onDisk := p.onDisk[handle]
	if !inMem && !onDisk {
		return poolMissingf(handle, "delete of unknown handle %s", handle)
	}
	delete(p.values, handle)
	delete(p.onDisk, handle)
	if onDisk {
		_ = os.Remove(p.blobPath(handle))
	}
	return nil
}

func (p *filePool) blobPath(handle thunk.Handle) string {
	return filepath.Join(p.dir, string(handle)+".blob")
}

func (p *filePool) writeBlob(handle thunk.Handle, value any) error {
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return fmt.Errorf("creating pool dir: %w", err)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&value); err != nil {
		return fmt.Errorf("encoding chunk value: %w", err)
	}
	return writeFileAtomic(p.blobPath(handle), buf.Bytes(), 0644)
}

func (p *filePool) readFromDisk(handle thunk.Handle) (any, error) {
	raw, err := os.ReadFile(p.blobPath(handle))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, poolMissingf(handle, "no blob for %s", handle)
		}
		return nil, fmt.Errorf("reading chunk blob: %w", err)
	}
	var value any
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&value); err != nil {
		return nil, fmt.Errorf("decoding chunk blob: %w", err)
	}
	return value, nil
}

// writeFileAtomic writes data to path via a temp file plus rename, so a
// reader never observes a partially-written blob.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp blob: %w", err)
	}
	ok := false
	defer func() {
		_ = tmp.Close()
		if !ok {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp blob: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp blob: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming temp blob into place: %w", err)
	}
	ok = true
	return nil
}
