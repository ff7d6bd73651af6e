// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "time"

// Clock provides the ledger time in seconds.
type Clock interface {
	Now() uint64
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() uint64

// Now implements Clock.
func (f ClockFunc) Now() uint64 { return f() }

// WallClock reads the system clock.
type WallClock struct{}

// Now implements Clock.
func (WallClock) Now() uint64 { return uint64(time.Now().Unix()) }
