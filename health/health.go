// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"
)

type Status struct {
	Healthy     bool       `json:"healthy"`
	LastCommit  *time.Time `json:"lastCommit"`
	LastFailure *time.Time `json:"lastFailure"`
	Failure     string     `json:"failure,omitempty"`
}

// Health tracks whether the ledger store is still accepting commits.
type Health struct {
	lock        sync.RWMutex
	lastCommit  time.Time
	lastFailure time.Time
	failure     error
}

// Committed records a successful commit.
func (h *Health) Committed() {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastCommit = time.Now()
}

// Failed records a storage failure. Ledger rejections are not failures.
func (h *Health) Failed(err error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastFailure = time.Now()
	h.failure = err
}

// Status is unhealthy while the latest failure is newer than the latest commit.
func (h *Health) Status() *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	status := &Status{
		Healthy: h.failure == nil || h.lastCommit.After(h.lastFailure),
	}
	if !h.lastCommit.IsZero() {
		t := h.lastCommit
		status.LastCommit = &t
	}
	if h.failure != nil {
		t := h.lastFailure
		status.LastFailure = &t
		status.Failure = h.failure.Error()
	}
	return status
}
