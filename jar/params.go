// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package jar

import "github.com/holiman/uint256"

// Constants of the ledger.
const (
	Decimals uint8 = 18

	DefaultRewardsDuration uint64 = 60 * 60 * 24 * 7 // (unit: second) one week.
	MaxRewardsDuration     uint64 = 60 * 60 * 24 * 365 * 4
	MaxExitDelay           uint64 = 60 * 60 * 24 * 365
)

// Precision is the fixed-point scale of the reward-per-token accumulator.
var Precision = uint256.NewInt(1e18)

// Unit returns n whole tokens expressed in base units.
func Unit(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), Precision)
}
