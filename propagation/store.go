// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package propagation

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Store is a content-addressed transient-message store, keyed by the
// hex-encoded transient id (§4.9). It is backed by a LevelDB database
// rather than loose files: each Put is one atomic write (a batch for a new
// entry) synced to disk before it returns, and an index keyed by insertion
// time supports capacity eviction without a directory scan. Eviction
// removes the oldest-inserted entries first; reading an entry does not
// refresh its position.
type Store struct {
	db *leveldb.DB

	mu    sync.Mutex
	count int
}

const (
	dataPrefix  = "d:"
	metaPrefix  = "m:"
	indexPrefix = "t:"
)

func dataKey(hexID string) []byte { return []byte(dataPrefix + hexID) }
func metaKey(hexID string) []byte { return []byte(metaPrefix + hexID) }

func indexKey(nanos int64, hexID string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", indexPrefix, nanos, hexID))
}

// Open opens (creating if necessary) a Store at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}

	it := db.NewIterator(util.BytesPrefix([]byte(dataPrefix)), nil)
	for it.Next() {
		s.count++
	}
	it.Release()
	if err := it.Error(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Put stores lxmfData under transientID, recording now as its insertion
// time for oldest-first eviction purposes. The write is synced to disk
// before Put returns.
func (s *Store) Put(transientID [32]byte, lxmfData []byte, now time.Time) error {
	hexID := hex.EncodeToString(transientID[:])

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Get(dataKey(hexID), nil); err == nil {
		// Already present: overwrite the data but keep its original
		// insertion time and index entry untouched.
		return s.db.Put(dataKey(hexID), lxmfData, &opt.WriteOptions{Sync: true})
	} else if !errors.Is(err, leveldb.ErrNotFound) {
		return err
	}

	nanos := now.UnixNano()
	var nanosBuf [8]byte
	binary.BigEndian.PutUint64(nanosBuf[:], uint64(nanos))

	batch := new(leveldb.Batch)
	batch.Put(dataKey(hexID), lxmfData)
	batch.Put(metaKey(hexID), nanosBuf[:])
	batch.Put(indexKey(nanos, hexID), []byte(hexID))
	if err := s.db.Write(batch, &opt.WriteOptions{Sync: true}); err != nil {
		return err
	}
	s.count++
	return nil
}

// Get retrieves the stored lxmf bytes for transientID.
func (s *Store) Get(transientID [32]byte) ([]byte, bool, error) {
	hexID := hex.EncodeToString(transientID[:])
	v, err := s.db.Get(dataKey(hexID), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Delete removes transientID from the store.
func (s *Store) Delete(transientID [32]byte) error {
	hexID := hex.EncodeToString(transientID[:])
	return s.deleteByHex(hexID)
}

func (s *Store) deleteByHex(hexID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	metaBytes, err := s.db.Get(metaKey(hexID), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	nanos := int64(binary.BigEndian.Uint64(metaBytes))

	batch := new(leveldb.Batch)
	batch.Delete(dataKey(hexID))
	batch.Delete(metaKey(hexID))
	batch.Delete(indexKey(nanos, hexID))
	if err := s.db.Write(batch, nil); err != nil {
		return err
	}
	s.count--
	return nil
}

// Len reports the number of transients currently stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// EvictToCapacity removes the oldest-inserted transients until at most
// capacity remain, returning the number evicted.
func (s *Store) EvictToCapacity(capacity int) (int, error) {
	s.mu.Lock()
	over := s.count - capacity
	s.mu.Unlock()
	if over <= 0 {
		return 0, nil
	}

	it := s.db.NewIterator(util.BytesPrefix([]byte(indexPrefix)), nil)
	defer it.Release()

	var toEvict []string
	for it.Next() && len(toEvict) < over {
		toEvict = append(toEvict, string(it.Value()))
	}
	if err := it.Error(); err != nil {
		return 0, err
	}

	evicted := 0
	for _, hexID := range toEvict {
		if err := s.deleteByHex(hexID); err != nil {
			return evicted, err
		}
		evicted++
	}
	return evicted, nil
}
