// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Getter defines methods to read kv.
type Getter interface {
	// Get returns the value of key.
	// An error returned if key not found. It can be checked via IsNotFound.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter defines methods to write kv.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Snapshot is a frozen, read-only view of a store.
type Snapshot interface {
	Getter
	Release()
}

// Bulk collects writes and applies them at once.
type Bulk interface {
	Putter
	// Len returns the number of pending writes.
	Len() int
	// Write applies all pending writes atomically.
	Write() error
}

// Store defines the full set of kv store methods.
type Store interface {
	Getter
	Putter

	Snapshot() Snapshot
	Bulk() Bulk
}
