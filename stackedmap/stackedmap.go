// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stackedmap implements a map with save/revert levels.
package stackedmap

// Getter reads the value of key from the underlying source.
type Getter[K comparable, V any] func(key K) (value V, exist bool, err error)

// StackedMap maintains maps in a stack.
// Each level sees the values of the levels below it, and popping a level
// reverts every Put made since the matching Push.
type StackedMap[K comparable, V any] struct {
	src    Getter[K, V]
	levels []*level[K, V]
	// per key, the indexes of the levels holding a value for it
	revs map[K][]int
}

type level[K comparable, V any] struct {
	kvs     map[K]V
	journal []Entry[K, V]
}

// Entry is one Put recorded in the journal.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// New creates a stacked map reading misses from src.
// The returned map has depth 1.
func New[K comparable, V any](src Getter[K, V]) *StackedMap[K, V] {
	sm := &StackedMap[K, V]{
		src:  src,
		revs: make(map[K][]int),
	}
	sm.Push()
	return sm
}

// Depth returns depth of stack.
func (sm *StackedMap[K, V]) Depth() int {
	return len(sm.levels)
}

// Push pushes a new level and returns the depth before the push.
func (sm *StackedMap[K, V]) Push() int {
	sm.levels = append(sm.levels, &level[K, V]{kvs: make(map[K]V)})
	return len(sm.levels) - 1
}

// Pop drops the top level, reverting all Puts since the last Push.
func (sm *StackedMap[K, V]) Pop() {
	top := sm.levels[len(sm.levels)-1]
	for key := range top.kvs {
		revs := sm.revs[key]
		if len(revs) <= 1 {
			delete(sm.revs, key)
		} else {
			sm.revs[key] = revs[:len(revs)-1]
		}
	}
	sm.levels = sm.levels[:len(sm.levels)-1]
}

// PopTo pops levels until the depth reaches depth.
func (sm *StackedMap[K, V]) PopTo(depth int) {
	for len(sm.levels) > depth {
		sm.Pop()
	}
}

// Get returns the value of key, falling back to the source.
func (sm *StackedMap[K, V]) Get(key K) (V, bool, error) {
	if revs, ok := sm.revs[key]; ok {
		return sm.levels[revs[len(revs)-1]].kvs[key], true, nil
	}
	return sm.src(key)
}

// Put sets key to value at the top level.
// It panics if the stack is empty.
func (sm *StackedMap[K, V]) Put(key K, value V) {
	rev := len(sm.levels) - 1
	top := sm.levels[rev]
	if _, ok := top.kvs[key]; !ok {
		sm.revs[key] = append(sm.revs[key], rev)
	}
	top.kvs[key] = value
	top.journal = append(top.journal, Entry[K, V]{key, value})
}

// Journal traverses all Puts in order, from bottom to top level.
// Traversal stops when cb returns false.
func (sm *StackedMap[K, V]) Journal(cb func(key K, value V) bool) {
	for _, lvl := range sm.levels {
		for _, e := range lvl.journal {
			if !cb(e.Key, e.Value) {
				return
			}
		}
	}
}
