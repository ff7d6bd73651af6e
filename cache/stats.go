// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Ratio is a snapshot of hit/miss counters.
type Ratio struct {
	Hit  int64
	Miss int64
}

// Rate returns hits over lookups, 0 before the first lookup.
func (r Ratio) Rate() float64 {
	if lookups := r.Hit + r.Miss; lookups > 0 {
		return float64(r.Hit) / float64(lookups)
	}
	return 0
}

// PerMille returns Rate scaled to an integer in [0, 1000].
func (r Ratio) PerMille() int64 { return int64(r.Rate() * 1000) }

// Stats counts cache lookups.
type Stats struct {
	hit, miss atomic.Int64
	last      atomic.Int64 // per-mille rate seen by the previous Stats call
}

func (cs *Stats) Hit() int64  { return cs.hit.Add(1) }
func (cs *Stats) Miss() int64 { return cs.miss.Add(1) }

// Stats returns the counters, and whether the per-mille hit rate moved since the previous call.
func (cs *Stats) Stats() (bool, Ratio) {
	r := Ratio{Hit: cs.hit.Load(), Miss: cs.miss.Load()}
	pm := r.PerMille()
	return cs.last.Swap(pm) != pm, r
}
