// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarledger/jard/builtin/authority"
	"github.com/jarledger/jard/builtin/token"
	"github.com/jarledger/jard/jar"
	"github.com/jarledger/jard/lvldb"
	"github.com/jarledger/jard/state"
)

var (
	poolAddr   = jar.BytesToAddress([]byte("rewards"))
	stakeAddr  = jar.BytesToAddress([]byte("stake"))
	rewardAddr = jar.BytesToAddress([]byte("reward"))
	authAddr   = jar.BytesToAddress([]byte("authority"))

	admin  = jar.BytesToAddress([]byte("admin"))
	funder = jar.BytesToAddress([]byte("funder"))
	alice  = jar.BytesToAddress([]byte("alice"))
	bob    = jar.BytesToAddress([]byte("bob"))
	carol  = jar.BytesToAddress([]byte("carol"))
)

type testEnv struct {
	state  *state.State
	stake  *token.Token
	reward *token.Token
	auth   *authority.Authority
	ledger *Rewards
}

// newTestEnv funds every participant with 1000 stake tokens and the funder with 1000 reward tokens.
func newTestEnv(t *testing.T) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db, nil)
	env := &testEnv{
		state:  st,
		stake:  token.New(stakeAddr, st),
		reward: token.New(rewardAddr, st),
		auth:   authority.New(authAddr, st),
	}
	env.ledger = New(poolAddr, st, Tokens{
		StakeToken:  stakeAddr,
		RewardToken: rewardAddr,
		Stake:       token.NewCustodian(env.stake, poolAddr),
		Reward:      token.NewCustodian(env.reward, poolAddr),
	}, env.auth)

	for _, a := range []jar.Address{alice, bob, carol} {
		require.NoError(t, env.stake.Mint(a, jar.Unit(1000)))
	}
	require.NoError(t, env.reward.Mint(funder, jar.Unit(1000)))

	_, err = env.auth.Grant(admin, authority.RoleAdmin)
	require.NoError(t, err)
	_, err = env.auth.Grant(funder, authority.RoleFunder)
	require.NoError(t, err)
	return env
}

// atomic runs fn on a checkpoint and reverts it on error.
func (env *testEnv) atomic(fn func() error) error {
	cp := env.state.NewCheckpoint()
	if err := fn(); err != nil {
		env.state.RevertTo(cp)
		return err
	}
	return nil
}

func (env *testEnv) earned(t *testing.T, addr jar.Address, now uint64) *uint256.Int {
	v, err := env.ledger.Earned(addr, now)
	require.NoError(t, err)
	return v
}

func (env *testEnv) pool(t *testing.T) *Pool {
	p, err := env.ledger.Pool()
	require.NoError(t, err)
	return p
}

func (env *testEnv) account(t *testing.T, addr jar.Address) *Account {
	a, err := env.ledger.Account(addr)
	require.NoError(t, err)
	return a
}

type TestFunc func(t *testing.T)

// TestSequence chains ledger operations and checks.
type TestSequence struct {
	env   *testEnv
	funcs []TestFunc
}

func NewSequence(env *testEnv) *TestSequence {
	return &TestSequence{env: env}
}

func (ts *TestSequence) AddFunc(f TestFunc) *TestSequence {
	ts.funcs = append(ts.funcs, f)
	return ts
}

func (ts *TestSequence) Initialize(now, duration uint64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		require.NoError(t, ts.env.ledger.Initialize(admin, now, duration, 0))
	})
}

func (ts *TestSequence) Deposit(addr jar.Address, amount *uint256.Int, now uint64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		require.NoError(t, ts.env.ledger.Deposit(addr, amount, now), "deposit %v", addr)
	})
}

func (ts *TestSequence) Withdraw(addr jar.Address, amount *uint256.Int, now uint64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		require.NoError(t, ts.env.ledger.Withdraw(addr, amount, now), "withdraw %v", addr)
	})
}

func (ts *TestSequence) Exit(addr jar.Address, now uint64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		_, err := ts.env.ledger.Exit(addr, now)
		require.NoError(t, err, "exit %v", addr)
	})
}

func (ts *TestSequence) Replenish(amount *uint256.Int, now uint64) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		require.NoError(t, ts.env.ledger.Replenish(funder, amount, now))
	})
}

func (ts *TestSequence) AssertEarned(addr jar.Address, now uint64, expected string) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		assert.Equal(t, expected, ts.env.earned(t, addr, now).Dec(), "earned %v at %d", addr, now)
	})
}

func (ts *TestSequence) AssertAccrued(addr jar.Address, expected string) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		assert.Equal(t, expected, ts.env.account(t, addr).Accrued.Dec(), "accrued %v", addr)
	})
}

func (ts *TestSequence) AssertStaked(addr jar.Address, expected *uint256.Int) *TestSequence {
	return ts.AddFunc(func(t *testing.T) {
		assert.Equal(t, expected, ts.env.account(t, addr).Staked, "staked %v", addr)
	})
}

func (ts *TestSequence) Run(t *testing.T) {
	for _, f := range ts.funcs {
		f(t)
	}
}
