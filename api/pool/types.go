// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"

	"github.com/jarledger/jard/api/events"
	"github.com/jarledger/jard/builtin/rewards"
	"github.com/jarledger/jard/jar"
	"github.com/jarledger/jard/runtime"
)

type PoolState struct {
	Initialized              bool        `json:"initialized"`
	Live                     bool        `json:"live"`
	StakeToken               jar.Address `json:"stakeToken"`
	RewardToken              jar.Address `json:"rewardToken"`
	TotalStaked              *jar.Amount `json:"totalStaked"`
	RewardRate               *jar.Amount `json:"rewardRate"`
	PeriodFinish             uint64      `json:"periodFinish"`
	RewardPerTokenStored     *jar.Amount `json:"rewardPerTokenStored"`
	LastUpdateTime           uint64      `json:"lastUpdateTime"`
	RewardsDuration          uint64      `json:"rewardsDuration"`
	ExitDelay                uint64      `json:"exitDelay"`
	TotalPending             *jar.Amount `json:"totalPending"`
	Held                     *jar.Amount `json:"held"`
	Undistributed            *jar.Amount `json:"undistributed"`
	TotalReplenished         *jar.Amount `json:"totalReplenished"`
	TotalPaid                *jar.Amount `json:"totalPaid"`
	Now                      uint64      `json:"now"`
	RewardPerToken           *jar.Amount `json:"rewardPerToken"`
	LastTimeRewardApplicable uint64      `json:"lastTimeRewardApplicable"`
}

func convertPool(p *rewards.Pool, now uint64) *PoolState {
	return &PoolState{
		Initialized:              p.Initialized,
		Live:                     p.Live,
		StakeToken:               p.StakeToken,
		RewardToken:              p.RewardToken,
		TotalStaked:              jar.NewAmount(p.TotalStaked),
		RewardRate:               jar.NewAmount(p.RewardRate),
		PeriodFinish:             p.PeriodFinish,
		RewardPerTokenStored:     jar.NewAmount(p.RewardPerTokenStored),
		LastUpdateTime:           p.LastUpdateTime,
		RewardsDuration:          p.RewardsDuration,
		ExitDelay:                p.ExitDelay,
		TotalPending:             jar.NewAmount(p.TotalPending),
		Held:                     jar.NewAmount(p.Held),
		Undistributed:            jar.NewAmount(p.Undistributed),
		TotalReplenished:         jar.NewAmount(p.TotalReplenished),
		TotalPaid:                jar.NewAmount(p.TotalPaid),
		Now:                      now,
		RewardPerToken:           jar.NewAmount(p.RewardPerToken(now)),
		LastTimeRewardApplicable: p.LastTimeRewardApplicable(now),
	}
}

type AccountState struct {
	Address            jar.Address `json:"address"`
	Staked             *jar.Amount `json:"staked"`
	RewardPerTokenPaid *jar.Amount `json:"rewardPerTokenPaid"`
	Accrued            *jar.Amount `json:"accrued"`
	Paid               *jar.Amount `json:"paid"`
	Pending            *jar.Amount `json:"pending"`
	UnlockTime         uint64      `json:"unlockTime"`
	Earned             *jar.Amount `json:"earned"`
	Now                uint64      `json:"now"`
}

func convertAccount(addr jar.Address, a *rewards.Account, earned *uint256.Int, now uint64) *AccountState {
	return &AccountState{
		Address:            addr,
		Staked:             jar.NewAmount(a.Staked),
		RewardPerTokenPaid: jar.NewAmount(a.RewardPerTokenPaid),
		Accrued:            jar.NewAmount(a.Accrued),
		Paid:               jar.NewAmount(a.Paid),
		Pending:            jar.NewAmount(a.Pending),
		UnlockTime:         a.UnlockTime,
		Earned:             jar.NewAmount(earned),
		Now:                now,
	}
}

// OpRequest is the body of a pool operation. The caller is trusted.
type OpRequest struct {
	Caller    *jar.Address         `json:"caller"`
	Amount    *jar.Amount          `json:"amount"`
	Duration  *math.HexOrDecimal64 `json:"duration"`
	ExitDelay *math.HexOrDecimal64 `json:"exitDelay"`
}

type OpResult struct {
	Op     string          `json:"op"`
	Time   uint64          `json:"time"`
	Amount *jar.Amount     `json:"amount,omitempty"`
	Events []*events.Event `json:"events"`
}

func convertResult(res *runtime.Result) *OpResult {
	out := &OpResult{
		Op:     string(res.Op),
		Time:   res.Time,
		Events: make([]*events.Event, 0, len(res.Events)),
	}
	if res.Amount != nil {
		out.Amount = jar.NewAmount(res.Amount)
	}
	for _, ev := range res.Events {
		out.Events = append(out.Events, events.Convert(ev))
	}
	return out
}
