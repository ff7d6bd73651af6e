// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"github.com/holiman/uint256"

	"github.com/jarledger/jard/jar"
)

// LastTimeRewardApplicable is min(now, PeriodFinish).
func (p *Pool) LastTimeRewardApplicable(now uint64) uint64 {
	return min(now, p.PeriodFinish)
}

// vested returns the reward released between LastUpdateTime and now.
func (p *Pool) vested(now uint64) (*uint256.Int, uint64) {
	applicable := p.LastTimeRewardApplicable(now)
	if applicable <= p.LastUpdateTime {
		return new(uint256.Int), p.LastUpdateTime
	}
	elapsed := uint256.NewInt(applicable - p.LastUpdateTime)
	// bounded by RewardRate * RewardsDuration, checked at replenish
	return elapsed.Mul(elapsed, p.RewardRate), applicable
}

// RewardPerToken returns the accumulator as it would be after settling at now.
func (p *Pool) RewardPerToken(now uint64) *uint256.Int {
	rpt := p.RewardPerTokenStored.Clone()
	if p.TotalStaked.IsZero() {
		return rpt
	}
	v, _ := p.vested(now)
	if v.IsZero() {
		return rpt
	}
	v.Mul(v, jar.Precision)
	return rpt.Add(rpt, v.Div(v, p.TotalStaked))
}

// settle brings the accumulator up to now. Reward vested while nothing is staked
// is moved to Undistributed.
func (p *Pool) settle(now uint64) {
	now = max(now, p.LastUpdateTime)
	v, applicable := p.vested(now)
	if !v.IsZero() {
		if p.TotalStaked.IsZero() {
			p.Undistributed.Add(p.Undistributed, v)
		} else {
			p.RewardPerTokenStored = p.RewardPerToken(now)
		}
	}
	p.LastUpdateTime = applicable
}

// earned returns the accrued reward of acc given the accumulator value rpt.
func (a *Account) earned(rpt *uint256.Int) *uint256.Int {
	delta := new(uint256.Int).Sub(rpt, a.RewardPerTokenPaid)
	delta.Mul(delta, a.Staked)
	delta.Div(delta, jar.Precision)
	return delta.Add(delta, a.Accrued)
}

// settle books the reward earned since the last checkpoint of the account.
func (a *Account) settle(rpt *uint256.Int) {
	a.Accrued = a.earned(rpt)
	a.RewardPerTokenPaid = rpt.Clone()
}

// schedule starts a new period at now with amount of fresh reward.
// The leftover of a running period and the carried Undistributed are rolled in.
// A now behind LastUpdateTime is treated as LastUpdateTime, so no second is counted twice.
func (p *Pool) schedule(amount *uint256.Int, now uint64) error {
	now = max(now, p.LastUpdateTime)
	total := amount.Clone()
	if now < p.PeriodFinish {
		leftover := uint256.NewInt(p.PeriodFinish - now)
		leftover.Mul(leftover, p.RewardRate)
		total.Add(total, leftover)
	}
	total.Add(total, p.Undistributed)

	duration := uint256.NewInt(p.RewardsDuration)
	rate, rem := new(uint256.Int).DivMod(total, duration, new(uint256.Int))

	scheduled, overflow := new(uint256.Int).MulOverflow(rate, duration)
	if overflow {
		return ErrRateOverflow
	}
	if _, overflow := new(uint256.Int).MulOverflow(scheduled, jar.Precision); overflow {
		return ErrRateOverflow
	}
	if scheduled.Gt(p.Held) {
		return ErrRateOverflow
	}

	p.RewardRate = rate
	p.Undistributed = rem
	p.LastUpdateTime = now
	p.PeriodFinish = now + p.RewardsDuration
	return nil
}
