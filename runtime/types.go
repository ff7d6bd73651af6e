// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/holiman/uint256"

	"github.com/jarledger/jard/eventdb"
	"github.com/jarledger/jard/jar"
)

// Op names a ledger mutation.
type Op string

// Ops.
const (
	OpInitialize Op = "initialize"
	OpDeposit    Op = "deposit"
	OpWithdraw   Op = "withdraw"
	OpExit       Op = "exit"
	OpRedeem     Op = "redeem"
	OpClaim      Op = "claim"
	OpPayout     Op = "payout"
	OpReplenish  Op = "replenish"
	OpDuration   Op = "duration"
	OpCage       Op = "cage"
	OpUncage     Op = "uncage"
)

// Ops lists every op in a stable order.
var Ops = []Op{
	OpInitialize, OpDeposit, OpWithdraw, OpExit, OpRedeem, OpClaim,
	OpPayout, OpReplenish, OpDuration, OpCage, OpUncage,
}

// Valid returns whether op is known.
func (op Op) Valid() bool {
	for _, o := range Ops {
		if o == op {
			return true
		}
	}
	return false
}

// Request is a ledger mutation submitted to the runtime.
type Request struct {
	Op     Op
	Caller jar.Address
	// Amount of deposit, withdraw and replenish.
	Amount *uint256.Int
	// Duration of initialize and duration, in seconds.
	Duration uint64
	// ExitDelay of initialize, in seconds.
	ExitDelay uint64
}

// Result of an executed request.
type Result struct {
	Op   Op
	Time uint64
	// Amount returned by exit, redeem, claim and payout.
	Amount *uint256.Int
	Events []*eventdb.Event
}
