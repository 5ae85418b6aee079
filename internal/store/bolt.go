package store

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/boltdb/bolt"

	"shardflow/internal/thunk"
)

var (
	bucketResults   = []byte("results")
	bucketRefcounts = []byte("refcounts")
)

func init() {
	gob.Register(thunk.Chunk{})
	gob.Register(float64(0))
	gob.Register([]float64{})
	gob.Register(int(0))
	gob.Register([]thunk.Chunk{})
}

// BoltStore is a file-backed metadata store, the "possibly file-backed"
// option spec.md §5 allows: one bolt.DB, buckets created up front,
// Update/View closures per operation.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if absent) a bbolt file at path with the two
// buckets this store needs.
func NewBoltStore(path string, mode os.FileMode) (*BoltStore, error) {
	db, err := bolt.Open(path, mode, nil)
	if err != nil {
		return nil, fmt.Errorf("opening bolt store %s: %w", path, err)
	}
	s := &BoltStore{db: db}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketResults); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketRefcounts)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bolt buckets: %w", err)
	}
	return s, nil
}

// Close releases the underlying bolt.DB file handle.
func (s *BoltStore) Close() error { return s.db.Close() }

func (s *BoltStore) HasResult(id thunk.TaskId) bool {
	has := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		has = tx.Bucket(bucketResults).Get([]byte(id)) != nil
		return nil
	})
	return has
}

func (s *BoltStore) GetResult(id thunk.TaskId) (any, bool) {
	var value any
	found := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketResults).Get([]byte(id))
		if raw == nil {
			return nil
		}
		if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&value); err != nil {
			return nil
		}
		found = true
		return nil
	})
	return value, found
}

func (s *BoltStore) SetResult(id thunk.TaskId, value any) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResults)
		if b.Get([]byte(id)) != nil {
			return nil
		}
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(&value); err != nil {
			return fmt.Errorf("encoding result for %s: %w", id, err)
		}
		return b.Put([]byte(id), buf.Bytes())
	})
}

func (s *BoltStore) ExportResult(id thunk.TaskId, value any, initialRefcount int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		results := tx.Bucket(bucketResults)
		if results.Get([]byte(id)) != nil {
			return nil
		}
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(&value); err != nil {
			return fmt.Errorf("encoding result for %s: %w", id, err)
		}
		if err := results.Put([]byte(id), buf.Bytes()); err != nil {
			return err
		}
		return tx.Bucket(bucketRefcounts).Put([]byte(id), encodeRefcount(initialRefcount))
	})
}

func (s *BoltStore) DecrResultRefcount(id thunk.TaskId) (int, error) {
	var newCount int
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRefcounts)
		raw := b.Get([]byte(id))
		if raw == nil {
			return metaMissingf(id, "no exported refcount for %s", id)
		}
		newCount = decodeRefcount(raw) - 1
		return b.Put([]byte(id), encodeRefcount(newCount))
	})
	if err != nil {
		return 0, err
	}
	return newCount, nil
}

func (s *BoltStore) Reset(dropdb bool) error {
	if !dropdb {
		return s.db.Update(func(tx *bolt.Tx) error {
			if err := tx.DeleteBucket(bucketRefcounts); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
			_, err := tx.CreateBucket(bucketRefcounts)
			return err
		})
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketResults, bucketRefcounts} {
			if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

func encodeRefcount(n int) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n))
	return buf
}

func decodeRefcount(b []byte) int {
	return int(binary.BigEndian.Uint64(b))
}
