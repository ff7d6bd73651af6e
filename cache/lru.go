// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import lru "github.com/hashicorp/golang-lru"

// LRU is a fixed size least-recently-used cache that records hit/miss stats.
type LRU struct {
	cache *lru.Cache
	stats Stats
}

// NewLRU creates an LRU holding at most size entries.
// size should be > 0, or an error returned.
func NewLRU(size int) (*LRU, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &LRU{cache: c}, nil
}

// Get returns the cached value of key.
func (l *LRU) Get(key any) (any, bool) {
	v, ok := l.cache.Get(key)
	if ok {
		l.stats.Hit()
	} else {
		l.stats.Miss()
	}
	return v, ok
}

// Add stores value under key, evicting the oldest entry when full.
func (l *LRU) Add(key, value any) {
	l.cache.Add(key, value)
}

// Remove drops key from the cache.
func (l *LRU) Remove(key any) {
	l.cache.Remove(key)
}

// Purge drops all entries.
func (l *LRU) Purge() {
	l.cache.Purge()
}

// Len returns the number of cached entries.
func (l *LRU) Len() int {
	return l.cache.Len()
}

// Stats returns hit/miss counters, see Stats.Stats.
func (l *LRU) Stats() (bool, Ratio) {
	return l.stats.Stats()
}

// GetOrLoad returns the cached value of key, calling load and caching its result on a miss.
func (l *LRU) GetOrLoad(key any, load func(key any) (any, error)) (any, error) {
	if v, ok := l.Get(key); ok {
		return v, nil
	}
	v, err := load(key)
	if err != nil {
		return nil, err
	}
	l.Add(key, v)
	return v, nil
}
