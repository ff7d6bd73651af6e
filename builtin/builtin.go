// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin binds the ledger builtins to their fixed addresses.
package builtin

import (
	"github.com/jarledger/jard/builtin/authority"
	"github.com/jarledger/jard/builtin/rewards"
	"github.com/jarledger/jard/builtin/token"
	"github.com/jarledger/jard/jar"
	"github.com/jarledger/jard/state"
)

// Builtin contracts binding.
var (
	Authority   = &authorityContract{newContract("Authority")}
	StakeToken  = &tokenContract{newContract("StakeToken")}
	RewardToken = &tokenContract{newContract("RewardToken")}
	Rewards     = &rewardsContract{newContract("Rewards")}
)

type (
	authorityContract struct{ *contract }
	tokenContract     struct{ *contract }
	rewardsContract   struct{ *contract }
)

func (a *authorityContract) WithState(state *state.State) *authority.Authority {
	return authority.New(a.Address, state)
}

func (t *tokenContract) WithState(state *state.State) *token.Token {
	return token.New(t.Address, state)
}

// Custodian returns the custody of this token held by the rewards pool.
func (t *tokenContract) Custodian(state *state.State) *token.Custodian {
	return token.NewCustodian(t.WithState(state), Rewards.Address)
}

func (r *rewardsContract) WithState(state *state.State) *rewards.Rewards {
	return rewards.New(r.Address, state, rewards.Tokens{
		StakeToken:  StakeToken.Address,
		RewardToken: RewardToken.Address,
		Stake:       StakeToken.Custodian(state),
		Reward:      RewardToken.Custodian(state),
	}, Authority.WithState(state))
}

// Token resolves a token by its short name, "stake" or "reward".
func Token(name string) (*tokenContract, bool) {
	switch name {
	case "stake":
		return StakeToken, true
	case "reward":
		return RewardToken, true
	}
	return nil, false
}

// Lookup returns the name of the builtin living at addr.
func Lookup(addr jar.Address) (string, bool) {
	for _, c := range []*contract{Authority.contract, StakeToken.contract, RewardToken.contract, Rewards.contract} {
		if c.Address == addr {
			return c.name, true
		}
	}
	return "", false
}
