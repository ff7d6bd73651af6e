// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/jarledger/jard/kv"
)

var _ kv.Store = (*LevelDB)(nil)

// Options options for creating level db instance.
type Options struct {
	// CacheSize in MiB, split between block cache and write buffer.
	CacheSize              int
	OpenFilesCacheCapacity int
}

var (
	writeOpt = opt.WriteOptions{}
	readOpt  = opt.ReadOptions{}
)

// LevelDB wraps goleveldb as a kv.Store.
type LevelDB struct {
	db *leveldb.DB
}

// New opens the level db at path, creating an empty one if it does not exist.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "open leveldb storage")
	}
	return open(stg, opts)
}

// NewMem creates a level db in memory.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	opts.CacheSize = max(opts.CacheSize, 16)
	opts.OpenFilesCacheCapacity = max(opts.OpenFilesCacheCapacity, 16)

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: opts.OpenFilesCacheCapacity,
		BlockCacheCapacity:     opts.CacheSize / 2 * opt.MiB,
		WriteBuffer:            opts.CacheSize / 4 * opt.MiB, // two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		stg.Close()
		return nil, errors.Wrap(err, "open leveldb")
	}
	return &LevelDB{db: db}, nil
}

// IsNotFound reports whether err returned by Get means the key is absent.
func (l *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

// Get retrieves the value of key.
func (l *LevelDB) Get(key []byte) ([]byte, error) {
	return l.db.Get(key, &readOpt)
}

// Has returns whether key exists.
func (l *LevelDB) Has(key []byte) (bool, error) {
	return l.db.Has(key, &readOpt)
}

// Put saves value under key.
func (l *LevelDB) Put(key, val []byte) error {
	return l.db.Put(key, val, &writeOpt)
}

// Delete removes key.
func (l *LevelDB) Delete(key []byte) error {
	return l.db.Delete(key, &writeOpt)
}

// Snapshot returns a consistent read-only view.
// The returned snapshot must be released after use.
func (l *LevelDB) Snapshot() kv.Snapshot {
	snap, err := l.db.GetSnapshot()
	if err != nil {
		return &errSnapshot{err}
	}
	return &snapshot{snap}
}

// Bulk returns a batch writer.
func (l *LevelDB) Bulk() kv.Bulk {
	return &bulk{db: l.db, batch: &leveldb.Batch{}}
}

// Close closes the db. Later operations will all fail.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

type snapshot struct {
	snap *leveldb.Snapshot
}

func (s *snapshot) Get(key []byte) ([]byte, error) { return s.snap.Get(key, &readOpt) }
func (s *snapshot) Has(key []byte) (bool, error)   { return s.snap.Has(key, &readOpt) }
func (s *snapshot) IsNotFound(err error) bool      { return errors.Is(err, leveldb.ErrNotFound) }
func (s *snapshot) Release()                       { s.snap.Release() }

// errSnapshot is returned when the db is closed.
type errSnapshot struct {
	err error
}

func (s *errSnapshot) Get([]byte) ([]byte, error) { return nil, s.err }
func (s *errSnapshot) Has([]byte) (bool, error)   { return false, s.err }
func (s *errSnapshot) IsNotFound(error) bool      { return false }
func (s *errSnapshot) Release()                   {}

type bulk struct {
	db    *leveldb.DB
	batch *leveldb.Batch
}

func (b *bulk) Put(key, val []byte) error {
	b.batch.Put(key, val)
	return nil
}

func (b *bulk) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *bulk) Len() int {
	return b.batch.Len()
}

func (b *bulk) Write() error {
	if b.batch.Len() == 0 {
		return nil
	}
	if err := b.db.Write(b.batch, &writeOpt); err != nil {
		return err
	}
	b.batch.Reset()
	return nil
}
