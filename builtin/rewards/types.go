// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/jarledger/jard/jar"
)

// Pool is the global ledger record.
type Pool struct {
	Initialized bool
	Live        bool

	StakeToken  jar.Address
	RewardToken jar.Address

	TotalStaked *uint256.Int
	// RewardRate is the reward vested per second over the current period.
	RewardRate   *uint256.Int
	PeriodFinish uint64
	// RewardPerTokenStored is scaled by jar.Precision.
	RewardPerTokenStored *uint256.Int
	LastUpdateTime       uint64
	RewardsDuration      uint64
	// ExitDelay is how long withdrawn stake stays pending before it can be redeemed.
	ExitDelay uint64

	// Held is the reward token balance the pool is accountable for.
	Held *uint256.Int
	// Undistributed is reward carried into the next period: the part vested while nobody
	// was staked and the remainder of the rate division.
	Undistributed *uint256.Int

	TotalReplenished *uint256.Int
	TotalPaid        *uint256.Int
	// TotalPending is withdrawn stake not yet redeemed.
	TotalPending *uint256.Int
}

// Account is the per participant record.
type Account struct {
	Staked             *uint256.Int
	RewardPerTokenPaid *uint256.Int
	// Accrued is settled but not yet paid out.
	Accrued *uint256.Int
	// Paid is the lifetime payout.
	Paid *uint256.Int
	// Pending is withdrawn stake waiting for UnlockTime. It earns nothing.
	Pending    *uint256.Int
	UnlockTime uint64
}

func newPool() *Pool {
	return &Pool{
		TotalStaked:          new(uint256.Int),
		RewardRate:           new(uint256.Int),
		RewardPerTokenStored: new(uint256.Int),
		Held:                 new(uint256.Int),
		Undistributed:        new(uint256.Int),
		TotalReplenished:     new(uint256.Int),
		TotalPaid:            new(uint256.Int),
		TotalPending:         new(uint256.Int),
	}
}

func newAccount() *Account {
	return &Account{
		Staked:             new(uint256.Int),
		RewardPerTokenPaid: new(uint256.Int),
		Accrued:            new(uint256.Int),
		Paid:               new(uint256.Int),
		Pending:            new(uint256.Int),
	}
}

// Copy returns a deep copy.
func (p *Pool) Copy() *Pool {
	cpy := *p
	cpy.TotalStaked = p.TotalStaked.Clone()
	cpy.RewardRate = p.RewardRate.Clone()
	cpy.RewardPerTokenStored = p.RewardPerTokenStored.Clone()
	cpy.Held = p.Held.Clone()
	cpy.Undistributed = p.Undistributed.Clone()
	cpy.TotalReplenished = p.TotalReplenished.Clone()
	cpy.TotalPaid = p.TotalPaid.Clone()
	cpy.TotalPending = p.TotalPending.Clone()
	return &cpy
}

// Copy returns a deep copy.
func (a *Account) Copy() *Account {
	return &Account{
		Staked:             a.Staked.Clone(),
		RewardPerTokenPaid: a.RewardPerTokenPaid.Clone(),
		Accrued:            a.Accrued.Clone(),
		Paid:               a.Paid.Clone(),
		Pending:            a.Pending.Clone(),
		UnlockTime:         a.UnlockTime,
	}
}

// IsEmpty returns whether the account was never touched.
func (a *Account) IsEmpty() bool {
	return a.Staked.IsZero() && a.RewardPerTokenPaid.IsZero() && a.Accrued.IsZero() && a.Paid.IsZero() &&
		a.Pending.IsZero()
}

// poolRecord is the storage layout of Pool.
type poolRecord struct {
	Initialized          bool
	Live                 bool
	StakeToken           jar.Address
	RewardToken          jar.Address
	TotalStaked          *big.Int
	RewardRate           *big.Int
	PeriodFinish         uint64
	RewardPerTokenStored *big.Int
	LastUpdateTime       uint64
	RewardsDuration      uint64
	Held                 *big.Int
	Undistributed        *big.Int
	TotalReplenished     *big.Int
	TotalPaid            *big.Int
	ExitDelay            uint64   `rlp:"optional"`
	TotalPending         *big.Int `rlp:"optional"`
}

// accountRecord is the storage layout of Account.
type accountRecord struct {
	Staked             *big.Int
	RewardPerTokenPaid *big.Int
	Accrued            *big.Int
	Paid               *big.Int
	Pending            *big.Int `rlp:"optional"`
	UnlockTime         uint64   `rlp:"optional"`
}

// fromBig converts b, absent optional fields decode as zero.
func fromBig(b *big.Int) *uint256.Int {
	if b == nil {
		return new(uint256.Int)
	}
	v, _ := uint256.FromBig(b)
	return v
}

func (p *Pool) encode() ([]byte, error) {
	if !p.Initialized {
		return nil, nil
	}
	return rlp.EncodeToBytes(&poolRecord{
		Initialized:          p.Initialized,
		Live:                 p.Live,
		StakeToken:           p.StakeToken,
		RewardToken:          p.RewardToken,
		TotalStaked:          p.TotalStaked.ToBig(),
		RewardRate:           p.RewardRate.ToBig(),
		PeriodFinish:         p.PeriodFinish,
		RewardPerTokenStored: p.RewardPerTokenStored.ToBig(),
		LastUpdateTime:       p.LastUpdateTime,
		RewardsDuration:      p.RewardsDuration,
		Held:                 p.Held.ToBig(),
		Undistributed:        p.Undistributed.ToBig(),
		TotalReplenished:     p.TotalReplenished.ToBig(),
		TotalPaid:            p.TotalPaid.ToBig(),
		ExitDelay:            p.ExitDelay,
		TotalPending:         p.TotalPending.ToBig(),
	})
}

func (p *Pool) decode(data []byte) error {
	if len(data) == 0 {
		*p = *newPool()
		return nil
	}
	var r poolRecord
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return err
	}
	*p = Pool{
		Initialized:          r.Initialized,
		Live:                 r.Live,
		StakeToken:           r.StakeToken,
		RewardToken:          r.RewardToken,
		TotalStaked:          fromBig(r.TotalStaked),
		RewardRate:           fromBig(r.RewardRate),
		PeriodFinish:         r.PeriodFinish,
		RewardPerTokenStored: fromBig(r.RewardPerTokenStored),
		LastUpdateTime:       r.LastUpdateTime,
		RewardsDuration:      r.RewardsDuration,
		Held:                 fromBig(r.Held),
		Undistributed:        fromBig(r.Undistributed),
		TotalReplenished:     fromBig(r.TotalReplenished),
		TotalPaid:            fromBig(r.TotalPaid),
		ExitDelay:            r.ExitDelay,
		TotalPending:         fromBig(r.TotalPending),
	}
	return nil
}

func (a *Account) encode() ([]byte, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return rlp.EncodeToBytes(&accountRecord{
		Staked:             a.Staked.ToBig(),
		RewardPerTokenPaid: a.RewardPerTokenPaid.ToBig(),
		Accrued:            a.Accrued.ToBig(),
		Paid:               a.Paid.ToBig(),
		Pending:            a.Pending.ToBig(),
		UnlockTime:         a.UnlockTime,
	})
}

func (a *Account) decode(data []byte) error {
	if len(data) == 0 {
		*a = *newAccount()
		return nil
	}
	var r accountRecord
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return err
	}
	*a = Account{
		Staked:             fromBig(r.Staked),
		RewardPerTokenPaid: fromBig(r.RewardPerTokenPaid),
		Accrued:            fromBig(r.Accrued),
		Paid:               fromBig(r.Paid),
		Pending:            fromBig(r.Pending),
		UnlockTime:         r.UnlockTime,
	}
	return nil
}
