// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarledger/jard/api/utils"
	"github.com/jarledger/jard/eventdb"
	"github.com/jarledger/jard/genesis"
	"github.com/jarledger/jard/jar"
	"github.com/jarledger/jard/lvldb"
	"github.com/jarledger/jard/runtime"
	"github.com/jarledger/jard/state"
)

var (
	admin  = jar.BytesToAddress([]byte("admin"))
	funder = jar.BytesToAddress([]byte("funder"))
	alice  = jar.BytesToAddress([]byte("alice"))
)

type testEnv struct {
	srv   *httptest.Server
	clock *atomic.Uint64
}

func newTestEnv(t *testing.T, exitDelay uint64) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	edb, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { edb.Close() })

	gen := &genesis.Genesis{
		RewardsDuration: 10,
		ExitDelay:       exitDelay,
		Accounts: []genesis.Account{
			{Address: alice, Stake: jar.NewAmount(jar.Unit(100))},
			{Address: funder, Reward: jar.NewAmount(jar.Unit(100))},
		},
		Members: []genesis.Member{
			{Address: admin, Roles: []string{"admin"}},
			{Address: funder, Roles: []string{"funder"}},
		},
	}
	stater := state.NewStater(db, 0)
	_, err = gen.Apply(stater)
	require.NoError(t, err)

	clock := &atomic.Uint64{}
	rt, err := runtime.New(stater, edb, runtime.ClockFunc(clock.Load))
	require.NoError(t, err)
	t.Cleanup(rt.Close)

	router := mux.NewRouter()
	New(rt).Mount(router, "/pool")
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, clock: clock}
}

func (env *testEnv) post(t *testing.T, op string, body any) (int, []byte) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(env.srv.URL+"/pool/"+op, utils.JSONContentType, bytes.NewReader(data))
	require.NoError(t, err)
	defer res.Body.Close()
	out, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, out
}

func (env *testEnv) get(t *testing.T, path string, v any) int {
	res, err := http.Get(env.srv.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()
	if res.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(v))
	}
	return res.StatusCode
}

func TestPoolOps(t *testing.T) {
	env := newTestEnv(t, 0)

	code, body := env.post(t, "deposit", utils.M{"caller": alice, "amount": "50000000000000000000"})
	require.Equal(t, http.StatusOK, code, string(body))
	var res OpResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, "deposit", res.Op)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "Deposited", res.Events[0].Kind)

	code, body = env.post(t, "replenish", utils.M{"caller": funder, "amount": "0x8ac7230489e80000"})
	require.Equal(t, http.StatusOK, code, string(body))

	env.clock.Store(5)
	var acc AccountState
	require.Equal(t, http.StatusOK, env.get(t, "/pool/accounts/"+alice.String(), &acc))
	assert.Equal(t, jar.Unit(5), acc.Earned.Int())
	assert.Equal(t, jar.Unit(50), acc.Staked.Int())
	assert.Equal(t, uint64(5), acc.Now)

	var pool PoolState
	require.Equal(t, http.StatusOK, env.get(t, "/pool", &pool))
	assert.True(t, pool.Initialized)
	assert.Equal(t, jar.Unit(50), pool.TotalStaked.Int())
	assert.Equal(t, jar.Unit(10), pool.Held.Int())
	assert.Equal(t, uint64(10), pool.PeriodFinish)
	assert.Equal(t, uint64(5), pool.LastTimeRewardApplicable)
	assert.Equal(t, "100000000000000000", pool.RewardPerToken.String())

	env.clock.Store(20)
	code, body = env.post(t, "exit", utils.M{"caller": alice})
	require.Equal(t, http.StatusOK, code, string(body))
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, jar.Unit(50), res.Amount.Int(), "exit returns the stake")

	require.Equal(t, http.StatusOK, env.get(t, "/pool/accounts/"+alice.String(), &acc))
	assert.Equal(t, jar.Unit(10), acc.Accrued.Int())
	assert.True(t, acc.Staked.Int().IsZero())

	code, body = env.post(t, "payout", utils.M{"caller": alice})
	require.Equal(t, http.StatusOK, code, string(body))
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, jar.Unit(10), res.Amount.Int())
}

func TestPoolRedeem(t *testing.T) {
	env := newTestEnv(t, 30)

	var pool PoolState
	require.Equal(t, http.StatusOK, env.get(t, "/pool", &pool))
	assert.Equal(t, uint64(30), pool.ExitDelay)

	code, body := env.post(t, "deposit", utils.M{"caller": alice, "amount": "0x2b5e3af16b1880000"})
	require.Equal(t, http.StatusOK, code, string(body))

	env.clock.Store(10)
	code, body = env.post(t, "withdraw", utils.M{"caller": alice, "amount": "20000000000000000000"})
	require.Equal(t, http.StatusOK, code, string(body))

	var acc AccountState
	require.Equal(t, http.StatusOK, env.get(t, "/pool/accounts/"+alice.String(), &acc))
	assert.Equal(t, jar.Unit(30), acc.Staked.Int())
	assert.Equal(t, jar.Unit(20), acc.Pending.Int())
	assert.Equal(t, uint64(40), acc.UnlockTime)
	require.Equal(t, http.StatusOK, env.get(t, "/pool", &pool))
	assert.Equal(t, jar.Unit(20), pool.TotalPending.Int())

	code, _ = env.post(t, "redeem", utils.M{"caller": alice})
	assert.Equal(t, http.StatusBadRequest, code)

	env.clock.Store(40)
	code, body = env.post(t, "redeem", utils.M{"caller": alice})
	require.Equal(t, http.StatusOK, code, string(body))
	var res OpResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, jar.Unit(20), res.Amount.Int())
	require.Len(t, res.Events, 1)
	assert.Equal(t, "Redeemed", res.Events[0].Kind)
}

func TestPoolConfigOps(t *testing.T) {
	env := newTestEnv(t, 0)

	code, body := env.post(t, "duration", utils.M{"caller": admin, "duration": "0x20"})
	require.Equal(t, http.StatusOK, code, string(body))

	var pool PoolState
	env.get(t, "/pool", &pool)
	assert.Equal(t, uint64(32), pool.RewardsDuration)

	code, _ = env.post(t, "cage", utils.M{"caller": admin})
	require.Equal(t, http.StatusOK, code)
	code, _ = env.post(t, "deposit", utils.M{"caller": alice, "amount": "1"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = env.post(t, "uncage", utils.M{"caller": admin})
	require.Equal(t, http.StatusOK, code)
	code, _ = env.post(t, "deposit", utils.M{"caller": alice, "amount": "1"})
	assert.Equal(t, http.StatusOK, code)
}

func TestPoolErrors(t *testing.T) {
	env := newTestEnv(t, 0)

	tests := []struct {
		name string
		op   string
		body any
		want int
	}{
		{"unknown op", "mint", utils.M{"caller": alice}, http.StatusNotFound},
		{"no caller", "claim", utils.M{}, http.StatusBadRequest},
		{"no amount", "deposit", utils.M{"caller": alice}, http.StatusBadRequest},
		{"bad amount", "deposit", utils.M{"caller": alice, "amount": "-1"}, http.StatusBadRequest},
		{"no duration", "duration", utils.M{"caller": admin}, http.StatusBadRequest},
		{"unknown field", "claim", utils.M{"caller": alice, "to": alice}, http.StatusBadRequest},
		{"zero amount", "deposit", utils.M{"caller": alice, "amount": "0"}, http.StatusBadRequest},
		{"insufficient", "withdraw", utils.M{"caller": alice, "amount": "1"}, http.StatusBadRequest},
		{"unauthorized", "replenish", utils.M{"caller": alice, "amount": "1"}, http.StatusForbidden},
		{"nothing pending", "redeem", utils.M{"caller": alice}, http.StatusBadRequest},
		{"already initialized", "initialize", utils.M{"caller": admin, "duration": 10}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := env.post(t, tt.op, tt.body)
			assert.Equal(t, tt.want, code, string(body))
		})
	}

	var acc AccountState
	assert.Equal(t, http.StatusBadRequest, env.get(t, "/pool/accounts/0x1234", &acc))
}
