// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"github.com/holiman/uint256"

	"github.com/jarledger/jard/jar"
)

// Event is a committed ledger event.
type Event struct {
	// Seq is assigned on insert and strictly increasing.
	Seq     uint64
	Time    uint64
	Kind    string
	Topic   jar.Bytes32
	Account jar.Address
	Amount  *uint256.Int
}

// Order of query results, by Seq.
type Order string

// Orders.
const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range bounds event time, both ends inclusive. A To below From leaves the range open ended.
type Range struct {
	From uint64
	To   uint64
}

// Options paginates results.
type Options struct {
	Offset uint64
	Limit  uint64
}

// Filter selects events. Within a field values are OR-ed, fields are AND-ed.
type Filter struct {
	Range    *Range
	Accounts []jar.Address
	Kinds    []string
	Order    Order
	Options  *Options
}
