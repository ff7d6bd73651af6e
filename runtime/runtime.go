// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime serializes ledger operations.
//
// Each request runs on a fresh state over the committed store. A rejected or failed request
// leaves the store untouched, a successful one is flushed in a single batch and its events are
// recorded in the event db and published to subscribers.
package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/jarledger/jard/builtin"
	"github.com/jarledger/jard/builtin/rewards"
	"github.com/jarledger/jard/eventdb"
	"github.com/jarledger/jard/health"
	"github.com/jarledger/jard/log"
	"github.com/jarledger/jard/state"
)

var logger = log.WithContext("pkg", "runtime")

// ErrUnknownOp is returned for a request with an unknown op.
var ErrUnknownOp = errors.New("unknown op")

// Runtime is the single writer of the ledger.
type Runtime struct {
	mu       sync.RWMutex
	stater   *state.Stater
	edb      *eventdb.EventDB
	clock    Clock
	lastTime uint64
	health   *health.Health

	// commits are published in order, outside mu
	pubMu   sync.Mutex
	pubCond *sync.Cond
	nextSeq uint64
	pubSeq  uint64

	feed  event.Feed
	scope event.SubscriptionScope
}

// New creates a runtime. edb may be nil to skip event history.
func New(stater *state.Stater, edb *eventdb.EventDB, clock Clock) (*Runtime, error) {
	rt := &Runtime{
		stater: stater,
		edb:    edb,
		clock:  clock,
		health: &health.Health{},
	}
	rt.pubCond = sync.NewCond(&rt.pubMu)
	p, err := builtin.Rewards.WithState(stater.NewState()).Pool()
	if err != nil {
		return nil, err
	}
	rt.lastTime = p.LastUpdateTime
	if p.Initialized {
		updatePoolMetrics(p)
	}
	return rt, nil
}

// Health returns the commit health tracker.
func (rt *Runtime) Health() *health.Health {
	return rt.health
}

// now never goes backwards, even if the clock does.
func (rt *Runtime) now() uint64 {
	now := rt.clock.Now()
	if now < rt.lastTime {
		logger.Debug("clock went backwards", "clock", now, "last", rt.lastTime)
		return rt.lastTime
	}
	return now
}

// Now returns the time the next request would run at.
func (rt *Runtime) Now() uint64 {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.now()
}

// View runs fn on a read-only snapshot of the committed state.
func (rt *Runtime) View(fn func(st *state.State, now uint64) error) error {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return fn(rt.stater.NewState(), rt.now())
}

// Execute runs req atomically.
func (rt *Runtime) Execute(ctx context.Context, req *Request) (res *Result, err error) {
	if !req.Op.Valid() {
		return nil, errors.WithMessagef(ErrUnknownOp, "%q", req.Op)
	}
	amount := req.Amount
	if amount == nil {
		amount = new(uint256.Int)
	}

	start := time.Now()
	defer func() {
		metricOpCount().AddWithLabel(1, map[string]string{"op": string(req.Op), "result": resultLabel(err)})
		metricOpDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"op": string(req.Op)})
	}()

	res, seq, err := rt.commit(ctx, req, amount)
	if err != nil {
		return nil, err
	}
	rt.publish(seq, res.Events)
	return res, nil
}

// commit runs req under the writer lock and reserves the publish turn of its events.
func (rt *Runtime) commit(ctx context.Context, req *Request, amount *uint256.Int) (*Result, uint64, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	now := rt.now()
	st := rt.stater.NewState()
	checkpoint := st.NewCheckpoint()
	ledger := builtin.Rewards.WithState(st)

	out, err := dispatch(ledger, req, amount, now)
	if err != nil {
		st.RevertTo(checkpoint)
		if !rewards.IsRejection(err) {
			rt.health.Failed(err)
			logger.Warn("request failed", "op", req.Op, "caller", req.Caller, "err", err)
		} else {
			logger.Debug("request rejected", "op", req.Op, "caller", req.Caller, "err", err)
		}
		return nil, 0, err
	}

	pool, err := ledger.Pool()
	if err != nil {
		rt.health.Failed(err)
		return nil, 0, err
	}
	if err := rt.stater.Commit(st); err != nil {
		rt.health.Failed(err)
		return nil, 0, errors.Wrap(err, "commit")
	}
	rt.health.Committed()
	rt.lastTime = now
	updatePoolMetrics(pool)
	rt.updateCacheMetrics()

	events := make([]*eventdb.Event, 0, len(ledger.Events()))
	for _, ev := range ledger.Events() {
		events = append(events, &eventdb.Event{
			Time:    ev.Time,
			Kind:    string(ev.Kind),
			Topic:   ev.Kind.Topic(),
			Account: ev.Account,
			Amount:  ev.Amount,
		})
	}
	if rt.edb != nil {
		// the ledger is already committed, a lost history entry must not fail the request
		if err := rt.edb.Insert(ctx, events); err != nil {
			logger.Warn("failed to record events", "op", req.Op, "err", err)
		}
	}

	seq := rt.nextSeq
	rt.nextSeq++
	return &Result{Op: req.Op, Time: now, Amount: out, Events: events}, seq, nil
}

// publish sends events to subscribers once every earlier commit has been published.
// A slow subscriber delays later publishes but never readers or the next commit.
func (rt *Runtime) publish(seq uint64, events []*eventdb.Event) {
	rt.pubMu.Lock()
	defer rt.pubMu.Unlock()
	for rt.pubSeq != seq {
		rt.pubCond.Wait()
	}
	for _, ev := range events {
		rt.feed.Send(ev)
	}
	rt.pubSeq++
	rt.pubCond.Broadcast()
}

func dispatch(ledger *rewards.Rewards, req *Request, amount *uint256.Int, now uint64) (*uint256.Int, error) {
	caller := req.Caller
	switch req.Op {
	case OpInitialize:
		return nil, ledger.Initialize(caller, now, req.Duration, req.ExitDelay)
	case OpDeposit:
		return nil, ledger.Deposit(caller, amount, now)
	case OpWithdraw:
		return nil, ledger.Withdraw(caller, amount, now)
	case OpExit:
		return ledger.Exit(caller, now)
	case OpRedeem:
		return ledger.Redeem(caller, now)
	case OpClaim:
		return ledger.Claim(caller, now)
	case OpPayout:
		return ledger.Payout(caller, now)
	case OpReplenish:
		return nil, ledger.Replenish(caller, amount, now)
	case OpDuration:
		return nil, ledger.SetRewardsDuration(caller, req.Duration, now)
	case OpCage:
		return nil, ledger.Cage(caller, now)
	case OpUncage:
		return nil, ledger.Uncage(caller, now)
	}
	return nil, ErrUnknownOp
}

// SubscribeEvent delivers every committed event to ch in commit order. The sender blocks on ch,
// so subscribers must keep draining it.
func (rt *Runtime) SubscribeEvent(ch chan *eventdb.Event) event.Subscription {
	return rt.scope.Track(rt.feed.Subscribe(ch))
}

// Close ends all subscriptions.
func (rt *Runtime) Close() {
	rt.scope.Close()
}
