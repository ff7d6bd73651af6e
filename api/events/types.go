// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/jarledger/jard/builtin/rewards"
	"github.com/jarledger/jard/eventdb"
	"github.com/jarledger/jard/jar"
)

// Event is the json form of a ledger event.
type Event struct {
	Seq     uint64        `json:"seq"`
	Time    uint64        `json:"time"`
	Kind    string        `json:"kind"`
	Topic   hexutil.Bytes `json:"topic"`
	Account jar.Address   `json:"account"`
	Amount  *jar.Amount   `json:"amount"`
}

// Convert converts a stored event to json form.
func Convert(ev *eventdb.Event) *Event {
	return &Event{
		Seq:     ev.Seq,
		Time:    ev.Time,
		Kind:    ev.Kind,
		Topic:   ev.Topic.Bytes(),
		Account: ev.Account,
		Amount:  jar.NewAmount(ev.Amount),
	}
}

type Range struct {
	From *uint64 `json:"from"`
	To   *uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// EventFilter is the body of an event query.
type EventFilter struct {
	Range    *Range        `json:"range"`
	Accounts []jar.Address `json:"accounts"`
	Kinds    []string      `json:"kinds"`
	Order    string        `json:"order"`
	Options  *Options      `json:"options"`
}

func convertFilter(f *EventFilter, limit uint64) (*eventdb.Filter, error) {
	filter := &eventdb.Filter{
		Accounts: f.Accounts,
		Kinds:    f.Kinds,
		Order:    eventdb.ASC,
		Options:  &eventdb.Options{Limit: limit},
	}
	for _, kind := range f.Kinds {
		if !rewards.EventKind(kind).Valid() {
			return nil, errors.Errorf("unknown event kind %q", kind)
		}
	}
	switch f.Order {
	case "", string(eventdb.ASC):
	case string(eventdb.DESC):
		filter.Order = eventdb.DESC
	default:
		return nil, errors.Errorf("invalid order %q", f.Order)
	}
	if f.Range != nil {
		var from uint64
		if f.Range.From != nil {
			from = *f.Range.From
		}
		switch {
		case f.Range.To != nil:
			if *f.Range.To < from {
				return nil, errors.New("range.to is before range.from")
			}
			filter.Range = &eventdb.Range{From: from, To: *f.Range.To}
		case from > 0:
			// To below From is open ended
			filter.Range = &eventdb.Range{From: from}
		}
	}
	if f.Options != nil {
		if f.Options.Limit > limit {
			return nil, errors.Errorf("options.limit exceeds the maximum allowed value of %d", limit)
		}
		filter.Options.Offset = f.Options.Offset
		if f.Options.Limit > 0 {
			filter.Options.Limit = f.Options.Limit
		}
	}
	return filter, nil
}
