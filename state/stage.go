// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/jarledger/jard/cache"
	"github.com/jarledger/jard/kv"
)

// Stage holds the changes of a state, ready to be committed.
type Stage struct {
	changes map[storageKey]rlp.RawValue
	order   []storageKey
	cache   *cache.LRU
}

// Len returns the number of changed entries.
func (s *Stage) Len() int {
	return len(s.order)
}

// Commit writes all changes into store in one batch.
func (s *Stage) Commit(store kv.Store) error {
	bulk := store.Bulk()
	for _, k := range s.order {
		v := s.changes[k]
		var err error
		if len(v) == 0 {
			err = bulk.Delete(k.dbKey())
		} else {
			err = bulk.Put(k.dbKey(), v)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}

	if s.cache != nil {
		for _, k := range s.order {
			s.cache.Add(k, s.changes[k])
		}
	}
	metricStorageAccess().AddWithLabel(int64(len(s.order)), map[string]string{"type": "commit"})
	return nil
}
