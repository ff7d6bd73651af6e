// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarledger/jard/jar"
)

func TestJarScenario(t *testing.T) {
	env := newTestEnv(t)

	NewSequence(env).
		Initialize(0, 10).
		Deposit(alice, jar.Unit(50), 0).
		Replenish(jar.Unit(10), 10).
		Deposit(bob, jar.Unit(100), 15).
		AssertEarned(alice, 15, "5000000000000000000").
		AssertEarned(bob, 15, "0").
		Replenish(jar.Unit(10), 30).
		AssertEarned(alice, 30, "6666666666666666650").
		AssertEarned(bob, 30, "3333333333333333300").
		Replenish(jar.Unit(10), 45).
		Withdraw(bob, jar.Unit(50), 45).
		AssertEarned(alice, 45, "9999999999999999950").
		AssertEarned(bob, 45, "9999999999999999900").
		AssertStaked(bob, jar.Unit(50)).
		Exit(alice, 55).
		Exit(bob, 55).
		AssertAccrued(alice, "14999999999999999950").
		AssertAccrued(bob, "14999999999999999900").
		AssertStaked(alice, new(uint256.Int)).
		AssertStaked(bob, new(uint256.Int)).
		Run(t)

	p := env.pool(t)
	assert.True(t, p.TotalStaked.IsZero())
	assert.Equal(t, jar.Unit(30), p.TotalReplenished)
	assert.Equal(t, jar.Unit(30), p.Held)

	// stake went back in full
	for _, a := range []jar.Address{alice, bob} {
		bal, err := env.stake.BalanceOf(a)
		require.NoError(t, err)
		assert.Equal(t, jar.Unit(1000), bal)
	}

	paid, err := env.ledger.Payout(alice, 60)
	require.NoError(t, err)
	assert.Equal(t, "14999999999999999950", paid.Dec())

	bal, err := env.reward.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, paid, bal)

	held, err := env.reward.BalanceOf(poolAddr)
	require.NoError(t, err)
	assert.Equal(t, env.pool(t).Held, held)
	assert.True(t, env.account(t, alice).Accrued.IsZero())
	assert.Equal(t, paid, env.account(t, alice).Paid)

	// nothing left to pay
	paid, err = env.ledger.Payout(alice, 70)
	require.NoError(t, err)
	assert.True(t, paid.IsZero())
}

func TestUndistributedCarry(t *testing.T) {
	env := newTestEnv(t)

	NewSequence(env).
		Initialize(0, 10).
		Replenish(jar.Unit(10), 0).
		Deposit(alice, jar.Unit(10), 5).
		AssertEarned(alice, 10, "5000000000000000000").
		AddFunc(func(t *testing.T) {
			assert.Equal(t, jar.Unit(5), env.pool(t).Undistributed)
		}).
		Replenish(jar.Unit(10), 20).
		AddFunc(func(t *testing.T) {
			p := env.pool(t)
			assert.True(t, p.Undistributed.IsZero())
			assert.Equal(t, "1500000000000000000", p.RewardRate.Dec())
		}).
		AssertEarned(alice, 30, "20000000000000000000").
		Run(t)
}

func TestRateRemainder(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.ledger.Initialize(admin, 0, 3, 0))
	require.NoError(t, env.ledger.Deposit(alice, jar.Unit(1), 0))
	require.NoError(t, env.ledger.Replenish(funder, uint256.NewInt(10), 0))

	p := env.pool(t)
	assert.Equal(t, uint256.NewInt(3), p.RewardRate)
	assert.Equal(t, uint256.NewInt(1), p.Undistributed)
	assert.Equal(t, uint64(3), p.PeriodFinish)

	// the remainder is scheduled with the next replenishment
	require.NoError(t, env.ledger.Replenish(funder, uint256.NewInt(2), 3))
	p = env.pool(t)
	assert.Equal(t, uint256.NewInt(1), p.RewardRate)
	assert.True(t, p.Undistributed.IsZero())
	assert.Equal(t, "12", env.earned(t, alice, 100).Dec())
}

func TestRollover(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.ledger.Initialize(admin, 0, 10, 0))
	require.NoError(t, env.ledger.Deposit(alice, jar.Unit(1), 0))
	require.NoError(t, env.ledger.Replenish(funder, jar.Unit(10), 0))
	// half vested, half left over
	require.NoError(t, env.ledger.Replenish(funder, jar.Unit(10), 5))

	p := env.pool(t)
	assert.Equal(t, jar.Unit(15), new(uint256.Int).Mul(p.RewardRate, uint256.NewInt(10)))
	assert.Equal(t, uint64(15), p.PeriodFinish)
	assert.Equal(t, uint64(5), p.LastUpdateTime)
	assert.Equal(t, "20000000000000000000", env.earned(t, alice, 15).Dec())
}

func TestErrors(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger

	assert.ErrorIs(t, l.Deposit(alice, jar.Unit(1), 0), ErrNotInitialized)
	assert.ErrorIs(t, l.Replenish(funder, jar.Unit(1), 0), ErrNotInitialized)
	assert.ErrorIs(t, l.Initialize(alice, 0, 10, 0), ErrUnauthorized)
	assert.ErrorIs(t, l.Initialize(funder, 0, 10, 0), ErrUnauthorized)
	assert.ErrorIs(t, l.Initialize(admin, 0, 0, 0), ErrInvalidDuration)
	assert.ErrorIs(t, l.Initialize(admin, 0, jar.MaxRewardsDuration+1, 0), ErrInvalidDuration)
	require.NoError(t, l.Initialize(admin, 0, 10, 0))
	assert.ErrorIs(t, l.Initialize(admin, 0, 10, 0), ErrAlreadyInitialized)

	assert.ErrorIs(t, l.Deposit(alice, new(uint256.Int), 0), ErrInvalidAmount)
	assert.ErrorIs(t, l.Withdraw(alice, new(uint256.Int), 0), ErrInvalidAmount)
	assert.ErrorIs(t, l.Withdraw(alice, jar.Unit(1), 0), ErrInsufficientStake)
	_, err := l.Exit(alice, 0)
	assert.ErrorIs(t, err, ErrInsufficientStake)

	err = env.atomic(func() error { return l.Deposit(alice, jar.Unit(1001), 0) })
	assert.ErrorIs(t, err, ErrTransferFailed)
	assert.True(t, env.pool(t).TotalStaked.IsZero())

	require.NoError(t, l.Deposit(alice, jar.Unit(10), 0))
	assert.ErrorIs(t, l.Withdraw(alice, jar.Unit(11), 0), ErrInsufficientStake)

	assert.ErrorIs(t, l.Replenish(alice, jar.Unit(1), 0), ErrUnauthorized)
	assert.ErrorIs(t, l.Replenish(funder, new(uint256.Int), 0), ErrInvalidAmount)
	err = env.atomic(func() error { return l.Replenish(funder, jar.Unit(1001), 0) })
	assert.ErrorIs(t, err, ErrTransferFailed)

	// admin holds no reward tokens, but is allowed
	assert.ErrorIs(t, l.Replenish(admin, jar.Unit(1), 0), ErrTransferFailed)

	require.NoError(t, l.Replenish(funder, jar.Unit(10), 0))
	assert.ErrorIs(t, l.SetRewardsDuration(admin, 20, 5), ErrPeriodActive)
	assert.ErrorIs(t, l.SetRewardsDuration(funder, 20, 10), ErrUnauthorized)
	assert.ErrorIs(t, l.SetRewardsDuration(admin, 0, 10), ErrInvalidDuration)
	require.NoError(t, l.SetRewardsDuration(admin, 20, 10))
	assert.Equal(t, uint64(20), env.pool(t).RewardsDuration)
}

func TestRateOverflow(t *testing.T) {
	env := newTestEnv(t)
	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 200)
	require.NoError(t, env.reward.Mint(funder, huge))
	require.NoError(t, env.ledger.Initialize(admin, 0, 10, 0))

	before, _ := env.reward.BalanceOf(funder)
	err := env.atomic(func() error { return env.ledger.Replenish(funder, huge, 0) })
	assert.ErrorIs(t, err, ErrRateOverflow)

	after, _ := env.reward.BalanceOf(funder)
	assert.Equal(t, before, after)
	assert.True(t, env.pool(t).Held.IsZero())
}

func TestCage(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger
	require.NoError(t, l.Initialize(admin, 0, 10, 0))
	require.NoError(t, l.Deposit(alice, jar.Unit(10), 0))
	require.NoError(t, l.Replenish(funder, jar.Unit(10), 0))

	assert.ErrorIs(t, l.Cage(alice, 1), ErrUnauthorized)
	require.NoError(t, l.Cage(admin, 1))
	assert.False(t, env.pool(t).Live)

	assert.ErrorIs(t, l.Deposit(alice, jar.Unit(1), 2), ErrNotLive)
	assert.ErrorIs(t, l.Replenish(funder, jar.Unit(1), 2), ErrNotLive)

	// exits keep working, rewards keep vesting
	require.NoError(t, l.Withdraw(alice, jar.Unit(5), 5))
	paid, err := l.Payout(alice, 5)
	require.NoError(t, err)
	assert.Equal(t, jar.Unit(5), paid)

	require.NoError(t, l.Uncage(admin, 6))
	require.NoError(t, l.Uncage(admin, 6))
	require.NoError(t, l.Deposit(alice, jar.Unit(1), 6))

	var kinds []EventKind
	for _, ev := range l.Events() {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []EventKind{
		EventInitialized,
		EventDeposited,
		EventReplenished,
		EventCaged,
		EventWithdrawn,
		EventRewardPaid,
		EventUncaged,
		EventDeposited,
	}, kinds)
}

func TestClaimIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger
	require.NoError(t, l.Initialize(admin, 0, 10, 0))
	require.NoError(t, l.Deposit(alice, jar.Unit(10), 0))
	require.NoError(t, l.Replenish(funder, jar.Unit(10), 0))

	c1, err := l.Claim(alice, 4)
	require.NoError(t, err)
	c2, err := l.Claim(alice, 4)
	require.NoError(t, err)
	assert.Equal(t, jar.Unit(4), c1)
	assert.Equal(t, c1, c2)
	assert.Equal(t, c1, env.account(t, alice).Accrued)

	bal, _ := env.reward.BalanceOf(alice)
	assert.True(t, bal.IsZero(), "claim must not transfer")
}

func TestEarnedIsPure(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger
	require.NoError(t, l.Initialize(admin, 0, 10, 0))
	require.NoError(t, l.Deposit(alice, jar.Unit(10), 0))
	require.NoError(t, l.Replenish(funder, jar.Unit(10), 0))

	changes := env.state.Stage().Len()
	e1 := env.earned(t, alice, 7)
	e2 := env.earned(t, alice, 7)
	assert.Equal(t, e1, e2)
	assert.Equal(t, jar.Unit(7), e1)
	assert.Equal(t, changes, env.state.Stage().Len())

	rpt, err := l.RewardPerToken(7)
	require.NoError(t, err)
	assert.Equal(t, "700000000000000000", rpt.Dec())

	lt, err := l.LastTimeRewardApplicable(70)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), lt)
}

func TestZeroStakeFreeze(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger
	require.NoError(t, l.Initialize(admin, 0, 10, 0))
	require.NoError(t, l.Replenish(funder, jar.Unit(10), 0))

	for _, now := range []uint64{0, 3, 10, 100} {
		rpt, err := l.RewardPerToken(now)
		require.NoError(t, err)
		assert.True(t, rpt.IsZero())
	}
	// a late staker does not collect reward vested before it joined
	require.NoError(t, l.Deposit(bob, jar.Unit(1), 100))
	assert.True(t, env.earned(t, bob, 200).IsZero())
}

func TestIsRejection(t *testing.T) {
	assert.False(t, IsRejection(nil))
	assert.False(t, IsRejection(errors.New("disk full")))
	assert.True(t, IsRejection(ErrNotLive))
	assert.True(t, IsRejection(errors.WithMessage(ErrUnauthorized, "ctx")))
	assert.True(t, IsRejection(errors.Wrap(ErrTransferFailed, "insufficient balance")))
}

func TestEventTopics(t *testing.T) {
	seen := make(map[jar.Bytes32]bool)
	for _, k := range EventKinds {
		assert.True(t, k.Valid())
		assert.False(t, k.Topic().IsZero())
		assert.False(t, seen[k.Topic()], "duplicated topic %s", k)
		seen[k.Topic()] = true
	}
	assert.False(t, EventKind("Nope").Valid())
	assert.Equal(t, jar.Keccak256([]byte("Deposited(address,uint256)")), EventDeposited.Topic())
}

func TestExitDelay(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger
	assert.ErrorIs(t, l.Initialize(admin, 0, 10, jar.MaxExitDelay+1), ErrInvalidExitDelay)
	require.NoError(t, l.Initialize(admin, 0, 10, 10))
	assert.Equal(t, uint64(10), env.pool(t).ExitDelay)

	require.NoError(t, l.Deposit(alice, jar.Unit(50), 0))
	require.NoError(t, l.Deposit(bob, jar.Unit(50), 0))
	require.NoError(t, l.Replenish(funder, jar.Unit(10), 0))

	_, err := l.Redeem(alice, 1)
	assert.ErrorIs(t, err, ErrNothingPending)

	// pending stake stops earning at once
	require.NoError(t, l.Withdraw(alice, jar.Unit(20), 4))
	out, err := l.Exit(alice, 4)
	require.NoError(t, err)
	assert.Equal(t, jar.Unit(30), out)

	a := env.account(t, alice)
	assert.True(t, a.Staked.IsZero())
	assert.Equal(t, jar.Unit(50), a.Pending)
	assert.Equal(t, uint64(14), a.UnlockTime)
	assert.Equal(t, jar.Unit(50), env.pool(t).TotalPending)
	assert.Equal(t, jar.Unit(2), env.earned(t, alice, 10))
	assert.Equal(t, jar.Unit(8), env.earned(t, bob, 10))

	bal, _ := env.stake.BalanceOf(alice)
	assert.Equal(t, jar.Unit(950), bal, "nothing is returned before the delay")

	err = env.atomic(func() error {
		_, err := l.Redeem(alice, 13)
		return err
	})
	assert.ErrorIs(t, err, ErrStakeLocked)

	redeemed, err := l.Redeem(alice, 14)
	require.NoError(t, err)
	assert.Equal(t, jar.Unit(50), redeemed)
	bal, _ = env.stake.BalanceOf(alice)
	assert.Equal(t, jar.Unit(1000), bal)

	a = env.account(t, alice)
	assert.True(t, a.Pending.IsZero())
	assert.Zero(t, a.UnlockTime)
	assert.True(t, env.pool(t).TotalPending.IsZero())
	assert.Equal(t, jar.Unit(2), env.earned(t, alice, 20), "accrued reward survives the redeem")

	_, err = l.Redeem(alice, 15)
	assert.ErrorIs(t, err, ErrNothingPending)
}

func TestExitDelayExtendsOnNewWithdraw(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger
	require.NoError(t, l.Initialize(admin, 0, 10, 5))
	require.NoError(t, l.Deposit(alice, jar.Unit(10), 0))

	require.NoError(t, l.Withdraw(alice, jar.Unit(4), 1))
	require.NoError(t, l.Withdraw(alice, jar.Unit(4), 3))
	a := env.account(t, alice)
	assert.Equal(t, jar.Unit(8), a.Pending)
	assert.Equal(t, uint64(8), a.UnlockTime)

	_, err := l.Redeem(alice, 6)
	assert.ErrorIs(t, err, ErrStakeLocked)

	// redeeming keeps working on a caged pool
	require.NoError(t, l.Cage(admin, 7))
	redeemed, err := l.Redeem(alice, 8)
	require.NoError(t, err)
	assert.Equal(t, jar.Unit(8), redeemed)
}

func TestScheduleDoesNotCountTimeTwice(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger
	require.NoError(t, l.Initialize(admin, 0, 10, 0))
	require.NoError(t, l.Deposit(alice, jar.Unit(10), 0))
	require.NoError(t, l.Replenish(funder, jar.Unit(10), 0))
	require.NoError(t, l.Deposit(bob, jar.Unit(10), 6))

	// a replenish stamped before the last update behaves as if made at the last update
	require.NoError(t, l.Replenish(funder, jar.Unit(10), 2))
	p := env.pool(t)
	assert.Equal(t, uint64(6), p.LastUpdateTime)
	assert.Equal(t, uint64(16), p.PeriodFinish)
	// 4 left of the first period plus 10 fresh over 10 seconds
	assert.Equal(t, "1400000000000000000", p.RewardRate.Dec())

	assert.Equal(t, jar.Unit(6), env.earned(t, alice, 6))
	assert.Equal(t, new(uint256.Int).Add(jar.Unit(6), jar.Unit(7)), env.earned(t, alice, 16))
	assert.Equal(t, jar.Unit(7), env.earned(t, bob, 16))
	assert.False(t, new(uint256.Int).Add(env.earned(t, alice, 16), env.earned(t, bob, 16)).Gt(jar.Unit(20)))
}
