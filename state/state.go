// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/jarledger/jard/cache"
	"github.com/jarledger/jard/jar"
	"github.com/jarledger/jard/kv"
	"github.com/jarledger/jard/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr jar.Address
	key  jar.Bytes32
}

// dbKey is the layout of a storage value in the kv store: address ++ key.
func (k storageKey) dbKey() []byte {
	b := make([]byte, 0, len(k.addr)+len(k.key))
	return append(append(b, k.addr[:]...), k.key[:]...)
}

// State is a revertable view over the committed storage.
type State struct {
	store kv.Getter
	cache *cache.LRU
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New creates a state reading from store. The cache is optional and
// holds committed values only.
func New(store kv.Getter, c *cache.LRU) *State {
	s := &State{store: store, cache: c}
	s.sm = stackedmap.New(s.load)
	return s
}

func (s *State) load(key storageKey) (rlp.RawValue, bool, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.(rlp.RawValue), true, nil
		}
	}
	v, err := s.store.Get(key.dbKey())
	if err != nil {
		if !s.store.IsNotFound(err) {
			return nil, false, err
		}
		v = nil
	}
	if s.cache != nil {
		s.cache.Add(key, rlp.RawValue(v))
	}
	metricStorageAccess().AddWithLabel(1, map[string]string{"type": "load"})
	return v, true, nil
}

// GetRawStorage returns the raw value at key of addr. Absent values are empty.
func (s *State) GetRawStorage(addr jar.Address, key jar.Bytes32) (rlp.RawValue, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return v, nil
}

// SetRawStorage sets the raw value at key of addr. An empty value deletes the entry on commit.
func (s *State) SetRawStorage(addr jar.Address, key jar.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage stores the output of enc at key of addr.
func (s *State) EncodeStorage(addr jar.Address, key jar.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage feeds the raw value at key of addr into dec.
func (s *State) DecodeStorage(addr jar.Address, key jar.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts to the checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage collects all changes made so far, the last write to a key wins.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey]rlp.RawValue)
	var order []storageKey
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		if _, ok := changes[k]; !ok {
			order = append(order, k)
		}
		changes[k] = v
		return true
	})
	return &Stage{changes: changes, order: order, cache: s.cache}
}
