// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/holiman/uint256"

	"github.com/jarledger/jard/jar"
)

// EventKind names a ledger event.
type EventKind string

// Event kinds.
const (
	EventInitialized     EventKind = "Initialized"
	EventDeposited       EventKind = "Deposited"
	EventWithdrawn       EventKind = "Withdrawn"
	EventRedeemed        EventKind = "Redeemed"
	EventReplenished     EventKind = "Replenished"
	EventRewardPaid      EventKind = "RewardPaid"
	EventDurationUpdated EventKind = "DurationUpdated"
	EventCaged           EventKind = "Caged"
	EventUncaged         EventKind = "Uncaged"
)

// EventKinds lists all kinds.
var EventKinds = []EventKind{
	EventInitialized,
	EventDeposited,
	EventWithdrawn,
	EventRedeemed,
	EventReplenished,
	EventRewardPaid,
	EventDurationUpdated,
	EventCaged,
	EventUncaged,
}

var signatures = map[EventKind]string{
	EventInitialized:     "Initialized(address,uint256)",
	EventDeposited:       "Deposited(address,uint256)",
	EventWithdrawn:       "Withdrawn(address,uint256)",
	EventRedeemed:        "Redeemed(address,uint256)",
	EventReplenished:     "Replenished(address,uint256)",
	EventRewardPaid:      "RewardPaid(address,uint256)",
	EventDurationUpdated: "DurationUpdated(address,uint256)",
	EventCaged:           "Caged(address,uint256)",
	EventUncaged:         "Uncaged(address,uint256)",
}

var topics = func() map[EventKind]jar.Bytes32 {
	m := make(map[EventKind]jar.Bytes32, len(signatures))
	for k, sig := range signatures {
		m[k] = jar.Keccak256([]byte(sig))
	}
	return m
}()

// Topic returns the keccak256 hash of the event signature.
func (k EventKind) Topic() jar.Bytes32 {
	return topics[k]
}

// Valid returns whether k is a known kind.
func (k EventKind) Valid() bool {
	_, ok := signatures[k]
	return ok
}

// Event is emitted by a successful ledger operation.
// Amount carries the staked/withdrawn/redeemed/paid/replenished amount, or the new duration
// for DurationUpdated and Initialized.
type Event struct {
	Kind    EventKind
	Account jar.Address
	Amount  *uint256.Int
	Time    uint64
}
