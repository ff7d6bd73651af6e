// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/jarledger/jard/cache"
	"github.com/jarledger/jard/kv"
)

// Stater creates states sharing one store and one read cache.
type Stater struct {
	store kv.Store
	cache *cache.LRU
}

// NewStater creates a stater. cacheSize <= 0 disables the read cache.
func NewStater(store kv.Store, cacheSize int) *Stater {
	var c *cache.LRU
	if cacheSize > 0 {
		c, _ = cache.NewLRU(cacheSize)
	}
	return &Stater{store: store, cache: c}
}

// NewState creates a state over the latest committed storage.
func (s *Stater) NewState() *State {
	return New(s.store, s.cache)
}

// CacheStats reports the read cache counters. ok is false when the cache is disabled.
func (s *Stater) CacheStats() (changed bool, r cache.Ratio, ok bool) {
	if s.cache == nil {
		return false, cache.Ratio{}, false
	}
	changed, r = s.cache.Stats()
	return changed, r, true
}

// Commit writes the changes of st into the store.
func (s *Stater) Commit(st *State) error {
	return st.Stage().Commit(s.store)
}
