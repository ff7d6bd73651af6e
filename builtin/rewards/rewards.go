// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package rewards implements the continuous proportional reward ledger.
//
// Participants stake a token into the pool, a funder replenishes a reward token that vests
// linearly over RewardsDuration, and every participant accrues a share of the vested reward
// proportional to its stake. Accrual is tracked by a reward-per-token accumulator scaled by
// jar.Precision, all divisions floor.
package rewards

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/jarledger/jard/jar"
	"github.com/jarledger/jard/log"
	"github.com/jarledger/jard/state"
)

var (
	logger = log.WithContext("pkg", "rewards")

	poolKey = jar.Blake2b([]byte("pool"))
)

func accountKey(addr jar.Address) jar.Bytes32 {
	return jar.BytesToBytes32(append([]byte("a"), addr.Bytes()...))
}

// Custodian moves tokens between participants and the pool.
type Custodian interface {
	TransferIn(from jar.Address, amount *uint256.Int) error
	TransferOut(to jar.Address, amount *uint256.Int) error
}

// Authorizer decides whether caller may perform a privileged action.
type Authorizer interface {
	IsAuthorized(caller jar.Address, action string) (bool, error)
}

// Actions checked against the Authorizer.
const (
	ActionReplenish = "replenish"
	ActionConfigure = "configure"
)

// Tokens binds the ledger to its stake and reward tokens.
type Tokens struct {
	StakeToken  jar.Address
	RewardToken jar.Address
	Stake       Custodian
	Reward      Custodian
}

// Rewards is the ledger bound to a state.
type Rewards struct {
	addr   jar.Address
	state  *state.State
	tokens Tokens
	auth   Authorizer
	events []*Event
}

// New creates the ledger living at addr.
func New(addr jar.Address, state *state.State, tokens Tokens, auth Authorizer) *Rewards {
	return &Rewards{
		addr:   addr,
		state:  state,
		tokens: tokens,
		auth:   auth,
	}
}

// Address returns the ledger address, which also holds the staked and reward tokens.
func (r *Rewards) Address() jar.Address {
	return r.addr
}

// Events returns the events emitted so far.
func (r *Rewards) Events() []*Event {
	return r.events
}

func (r *Rewards) emit(kind EventKind, account jar.Address, amount *uint256.Int, now uint64) {
	r.events = append(r.events, &Event{
		Kind:    kind,
		Account: account,
		Amount:  amount.Clone(),
		Time:    now,
	})
}

// Pool returns the stored pool record.
func (r *Rewards) Pool() (*Pool, error) {
	var p Pool
	if err := r.state.DecodeStorage(r.addr, poolKey, p.decode); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Rewards) setPool(p *Pool) error {
	return r.state.EncodeStorage(r.addr, poolKey, p.encode)
}

// Account returns the stored record of addr.
func (r *Rewards) Account(addr jar.Address) (*Account, error) {
	var a Account
	if err := r.state.DecodeStorage(r.addr, accountKey(addr), a.decode); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Rewards) setAccount(addr jar.Address, a *Account) error {
	return r.state.EncodeStorage(r.addr, accountKey(addr), a.encode)
}

func (r *Rewards) authorize(caller jar.Address, action string) error {
	ok, err := r.auth.IsAuthorized(caller, action)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithMessagef(ErrUnauthorized, "%v cannot %s", caller, action)
	}
	return nil
}

// livePool loads the pool and checks it is initialized.
func (r *Rewards) livePool() (*Pool, error) {
	p, err := r.Pool()
	if err != nil {
		return nil, err
	}
	if !p.Initialized {
		return nil, ErrNotInitialized
	}
	return p, nil
}

// transferErr keeps storage failures as they are and turns anything else into ErrTransferFailed.
func transferErr(err error) error {
	var se *state.Error
	if errors.As(err, &se) {
		return err
	}
	return errors.Wrap(ErrTransferFailed, err.Error())
}

// settleAccount settles the pool and the account of addr at now.
func (r *Rewards) settleAccount(addr jar.Address, now uint64) (*Pool, *Account, error) {
	p, err := r.livePool()
	if err != nil {
		return nil, nil, err
	}
	a, err := r.Account(addr)
	if err != nil {
		return nil, nil, err
	}
	p.settle(now)
	a.settle(p.RewardPerTokenStored)
	return p, a, nil
}

func (r *Rewards) save(p *Pool, addr jar.Address, a *Account) error {
	if err := r.setPool(p); err != nil {
		return err
	}
	return r.setAccount(addr, a)
}

func validDuration(d uint64) bool {
	return d > 0 && d <= jar.MaxRewardsDuration
}

// Initialize sets up the pool with the given rewards duration and exit delay.
// A zero exit delay returns withdrawn stake right away.
func (r *Rewards) Initialize(caller jar.Address, now, duration, exitDelay uint64) error {
	if err := r.authorize(caller, ActionConfigure); err != nil {
		return err
	}
	p, err := r.Pool()
	if err != nil {
		return err
	}
	if p.Initialized {
		return ErrAlreadyInitialized
	}
	if !validDuration(duration) {
		return ErrInvalidDuration
	}
	if exitDelay > jar.MaxExitDelay {
		return ErrInvalidExitDelay
	}

	p = newPool()
	p.Initialized = true
	p.Live = true
	p.StakeToken = r.tokens.StakeToken
	p.RewardToken = r.tokens.RewardToken
	p.RewardsDuration = duration
	p.ExitDelay = exitDelay
	p.LastUpdateTime = now
	if err := r.setPool(p); err != nil {
		return err
	}
	logger.Debug("pool initialized", "duration", duration, "exitDelay", exitDelay, "now", now)
	r.emit(EventInitialized, caller, uint256.NewInt(duration), now)
	return nil
}

// Deposit stakes amount for caller.
func (r *Rewards) Deposit(caller jar.Address, amount *uint256.Int, now uint64) error {
	if amount.IsZero() {
		return ErrInvalidAmount
	}
	p, a, err := r.settleAccount(caller, now)
	if err != nil {
		return err
	}
	if !p.Live {
		return ErrNotLive
	}
	if err := r.tokens.Stake.TransferIn(caller, amount); err != nil {
		return transferErr(err)
	}

	a.Staked.Add(a.Staked, amount)
	p.TotalStaked.Add(p.TotalStaked, amount)
	if err := r.save(p, caller, a); err != nil {
		return err
	}
	logger.Debug("deposited", "account", caller, "amount", amount, "staked", a.Staked)
	r.emit(EventDeposited, caller, amount, now)
	return nil
}

// Withdraw takes amount out of the stake of caller. Accrued reward stays in the account.
// With an exit delay the amount becomes pending, see Redeem.
func (r *Rewards) Withdraw(caller jar.Address, amount *uint256.Int, now uint64) error {
	if amount.IsZero() {
		return ErrInvalidAmount
	}
	p, a, err := r.settleAccount(caller, now)
	if err != nil {
		return err
	}
	if amount.Gt(a.Staked) {
		return errors.WithMessagef(ErrInsufficientStake, "staked %s, requested %s", a.Staked, amount)
	}
	return r.withdraw(p, caller, a, amount, now)
}

func (r *Rewards) withdraw(p *Pool, caller jar.Address, a *Account, amount *uint256.Int, now uint64) error {
	a.Staked.Sub(a.Staked, amount)
	p.TotalStaked.Sub(p.TotalStaked, amount)
	if p.ExitDelay == 0 {
		if err := r.tokens.Stake.TransferOut(caller, amount); err != nil {
			return transferErr(err)
		}
	} else {
		// a later withdrawal pushes back the unlock of everything pending
		a.Pending.Add(a.Pending, amount)
		a.UnlockTime = now + p.ExitDelay
		p.TotalPending.Add(p.TotalPending, amount)
	}
	if err := r.save(p, caller, a); err != nil {
		return err
	}
	logger.Debug("withdrawn", "account", caller, "amount", amount, "staked", a.Staked, "pending", a.Pending)
	r.emit(EventWithdrawn, caller, amount, now)
	return nil
}

// Exit withdraws the whole stake of caller and returns the withdrawn amount.
func (r *Rewards) Exit(caller jar.Address, now uint64) (*uint256.Int, error) {
	p, a, err := r.settleAccount(caller, now)
	if err != nil {
		return nil, err
	}
	if a.Staked.IsZero() {
		return nil, ErrInsufficientStake
	}
	amount := a.Staked.Clone()
	if err := r.withdraw(p, caller, a, amount, now); err != nil {
		return nil, err
	}
	return amount, nil
}

// Redeem transfers the pending stake of caller once its unlock time has come.
func (r *Rewards) Redeem(caller jar.Address, now uint64) (*uint256.Int, error) {
	p, err := r.livePool()
	if err != nil {
		return nil, err
	}
	a, err := r.Account(caller)
	if err != nil {
		return nil, err
	}
	if a.Pending.IsZero() {
		return nil, ErrNothingPending
	}
	if now < a.UnlockTime {
		return nil, errors.WithMessagef(ErrStakeLocked, "unlocks at %d", a.UnlockTime)
	}

	amount := a.Pending.Clone()
	if err := r.tokens.Stake.TransferOut(caller, amount); err != nil {
		return nil, transferErr(err)
	}
	a.Pending.Clear()
	a.UnlockTime = 0
	p.TotalPending.Sub(p.TotalPending, amount)
	if err := r.save(p, caller, a); err != nil {
		return nil, err
	}
	logger.Debug("redeemed", "account", caller, "amount", amount)
	r.emit(EventRedeemed, caller, amount, now)
	return amount, nil
}

// Claim settles caller and returns its accrued reward, which is left in place.
func (r *Rewards) Claim(caller jar.Address, now uint64) (*uint256.Int, error) {
	p, a, err := r.settleAccount(caller, now)
	if err != nil {
		return nil, err
	}
	if err := r.save(p, caller, a); err != nil {
		return nil, err
	}
	return a.Accrued.Clone(), nil
}

// Payout settles caller and transfers its whole accrued reward out.
// It returns the paid amount, zero accrued is a no-op.
func (r *Rewards) Payout(caller jar.Address, now uint64) (*uint256.Int, error) {
	p, a, err := r.settleAccount(caller, now)
	if err != nil {
		return nil, err
	}
	amount := a.Accrued.Clone()
	if amount.IsZero() {
		return amount, r.save(p, caller, a)
	}
	if amount.Gt(p.Held) {
		// accrual never exceeds what was scheduled out of Held
		return nil, errors.Errorf("accrued %s exceeds held %s", amount, p.Held)
	}
	if err := r.tokens.Reward.TransferOut(caller, amount); err != nil {
		return nil, transferErr(err)
	}

	a.Accrued.Clear()
	a.Paid.Add(a.Paid, amount)
	p.Held.Sub(p.Held, amount)
	p.TotalPaid.Add(p.TotalPaid, amount)
	if err := r.save(p, caller, a); err != nil {
		return nil, err
	}
	logger.Debug("reward paid", "account", caller, "amount", amount)
	r.emit(EventRewardPaid, caller, amount, now)
	return amount, nil
}

// Replenish pulls amount of reward token from caller and starts a new period at now.
func (r *Rewards) Replenish(caller jar.Address, amount *uint256.Int, now uint64) error {
	if err := r.authorize(caller, ActionReplenish); err != nil {
		return err
	}
	p, err := r.livePool()
	if err != nil {
		return err
	}
	if !p.Live {
		return ErrNotLive
	}
	if amount.IsZero() {
		return ErrInvalidAmount
	}
	if err := r.tokens.Reward.TransferIn(caller, amount); err != nil {
		return transferErr(err)
	}
	if _, overflow := p.Held.AddOverflow(p.Held, amount); overflow {
		return ErrRateOverflow
	}

	p.settle(now)
	if err := p.schedule(amount, now); err != nil {
		return err
	}
	p.TotalReplenished.Add(p.TotalReplenished, amount)
	if err := r.setPool(p); err != nil {
		return err
	}
	logger.Debug("replenished", "amount", amount, "rate", p.RewardRate, "finish", p.PeriodFinish)
	r.emit(EventReplenished, caller, amount, now)
	return nil
}

// SetRewardsDuration changes the duration of future periods. The current period must be over.
func (r *Rewards) SetRewardsDuration(caller jar.Address, duration, now uint64) error {
	if err := r.authorize(caller, ActionConfigure); err != nil {
		return err
	}
	p, err := r.livePool()
	if err != nil {
		return err
	}
	if now < p.PeriodFinish {
		return errors.WithMessagef(ErrPeriodActive, "period ends at %d", p.PeriodFinish)
	}
	if !validDuration(duration) {
		return ErrInvalidDuration
	}
	p.settle(now)
	p.RewardsDuration = duration
	if err := r.setPool(p); err != nil {
		return err
	}
	r.emit(EventDurationUpdated, caller, uint256.NewInt(duration), now)
	return nil
}

// Cage stops deposits and replenishments. Withdrawals and payouts keep working.
func (r *Rewards) Cage(caller jar.Address, now uint64) error {
	return r.setLive(caller, false, now)
}

// Uncage reverts Cage.
func (r *Rewards) Uncage(caller jar.Address, now uint64) error {
	return r.setLive(caller, true, now)
}

func (r *Rewards) setLive(caller jar.Address, live bool, now uint64) error {
	if err := r.authorize(caller, ActionConfigure); err != nil {
		return err
	}
	p, err := r.livePool()
	if err != nil {
		return err
	}
	if p.Live == live {
		return nil
	}
	p.Live = live
	if err := r.setPool(p); err != nil {
		return err
	}
	kind := EventCaged
	if live {
		kind = EventUncaged
	}
	r.emit(kind, caller, new(uint256.Int), now)
	return nil
}

// Earned returns the reward accrued by addr at now, without writing anything.
func (r *Rewards) Earned(addr jar.Address, now uint64) (*uint256.Int, error) {
	p, err := r.Pool()
	if err != nil {
		return nil, err
	}
	a, err := r.Account(addr)
	if err != nil {
		return nil, err
	}
	return a.earned(p.RewardPerToken(now)), nil
}

// RewardPerToken returns the accumulator value at now.
func (r *Rewards) RewardPerToken(now uint64) (*uint256.Int, error) {
	p, err := r.Pool()
	if err != nil {
		return nil, err
	}
	return p.RewardPerToken(now), nil
}

// LastTimeRewardApplicable returns min(now, PeriodFinish).
func (r *Rewards) LastTimeRewardApplicable(now uint64) (uint64, error) {
	p, err := r.Pool()
	if err != nil {
		return 0, err
	}
	return p.LastTimeRewardApplicable(now), nil
}
