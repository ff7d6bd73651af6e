// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis describes and applies the initial ledger state.
package genesis

import (
	"os"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jarledger/jard/builtin"
	"github.com/jarledger/jard/builtin/authority"
	"github.com/jarledger/jard/jar"
	"github.com/jarledger/jard/log"
	"github.com/jarledger/jard/state"
)

var (
	logger = log.WithContext("pkg", "genesis")

	markerAddr = jar.BytesToAddress([]byte("Genesis"))
	markerKey  = jar.Blake2b([]byte("genesis-id"))
)

// ErrMismatch is returned when the store was created from another genesis.
var ErrMismatch = errors.New("genesis mismatch")

// Genesis is the user described initial state.
type Genesis struct {
	LaunchTime      uint64    `yaml:"launchTime"`
	RewardsDuration uint64    `yaml:"rewardsDuration"`
	ExitDelay       uint64    `yaml:"exitDelay,omitempty"`
	Accounts        []Account `yaml:"accounts"`
	Members         []Member  `yaml:"members"`
}

// Account is a token allocation.
type Account struct {
	Address jar.Address `yaml:"address"`
	Stake   *jar.Amount `yaml:"stake"`
	Reward  *jar.Amount `yaml:"reward"`
}

// Member is an authority member and its role names.
type Member struct {
	Address jar.Address `yaml:"address"`
	Roles   []string    `yaml:"roles"`
}

// Load reads a yaml genesis file.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a yaml genesis.
func Parse(data []byte) (*Genesis, error) {
	var gen Genesis
	if err := yaml.Unmarshal(data, &gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if gen.RewardsDuration == 0 {
		gen.RewardsDuration = jar.DefaultRewardsDuration
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	return &gen, nil
}

// Validate checks the genesis is applicable.
func (g *Genesis) Validate() error {
	if g.RewardsDuration == 0 || g.RewardsDuration > jar.MaxRewardsDuration {
		return errors.Errorf("rewards duration %d out of range", g.RewardsDuration)
	}
	if g.ExitDelay > jar.MaxExitDelay {
		return errors.Errorf("exit delay %d out of range", g.ExitDelay)
	}
	if _, err := g.initializer(); err != nil {
		return err
	}
	for _, acc := range g.Accounts {
		if acc.Address.IsZero() {
			return errors.New("account with zero address")
		}
	}
	return nil
}

func (g *Genesis) roles(m Member) (authority.Role, error) {
	var roles authority.Role
	for _, name := range m.Roles {
		r, ok := authority.ParseRole(name)
		if !ok {
			return 0, errors.Errorf("member %v: unknown role %q", m.Address, name)
		}
		roles |= r
	}
	return roles, nil
}

// initializer is the first admin, who initializes the pool.
func (g *Genesis) initializer() (jar.Address, error) {
	for _, m := range g.Members {
		roles, err := g.roles(m)
		if err != nil {
			return jar.Address{}, err
		}
		if roles.Has(authority.RoleAdmin) {
			return m.Address, nil
		}
	}
	return jar.Address{}, errors.New("genesis needs at least one admin")
}

// ID identifies the genesis content.
func (g *Genesis) ID() (jar.Bytes32, error) {
	data, err := yaml.Marshal(g)
	if err != nil {
		return jar.Bytes32{}, err
	}
	return jar.Blake2b(data), nil
}

// Apply writes the genesis state unless the store already holds it.
// It returns false when the genesis had been applied before.
func (g *Genesis) Apply(stater *state.Stater) (bool, error) {
	id, err := g.ID()
	if err != nil {
		return false, err
	}

	st := stater.NewState()
	var stored jar.Bytes32
	if err := st.DecodeStorage(markerAddr, markerKey, func(data []byte) error {
		if len(data) == 0 {
			return nil
		}
		return rlp.DecodeBytes(data, &stored)
	}); err != nil {
		return false, err
	}
	if !stored.IsZero() {
		if stored != id {
			return false, errors.WithMessagef(ErrMismatch, "want %v, stored %v", id, stored)
		}
		return false, nil
	}

	if err := g.build(st); err != nil {
		return false, err
	}
	if err := st.EncodeStorage(markerAddr, markerKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(&id)
	}); err != nil {
		return false, err
	}
	if err := stater.Commit(st); err != nil {
		return false, err
	}
	logger.Info("genesis applied", "id", id, "accounts", len(g.Accounts), "members", len(g.Members))
	return true, nil
}

func (g *Genesis) build(st *state.State) error {
	stake := builtin.StakeToken.WithState(st)
	reward := builtin.RewardToken.WithState(st)
	for _, acc := range g.Accounts {
		if acc.Stake != nil && !acc.Stake.Int().IsZero() {
			if err := stake.Mint(acc.Address, acc.Stake.Int()); err != nil {
				return errors.WithMessagef(err, "mint stake to %v", acc.Address)
			}
		}
		if acc.Reward != nil && !acc.Reward.Int().IsZero() {
			if err := reward.Mint(acc.Address, acc.Reward.Int()); err != nil {
				return errors.WithMessagef(err, "mint reward to %v", acc.Address)
			}
		}
	}

	auth := builtin.Authority.WithState(st)
	for _, m := range g.Members {
		roles, err := g.roles(m)
		if err != nil {
			return err
		}
		if _, err := auth.Grant(m.Address, roles); err != nil {
			return err
		}
	}

	admin, err := g.initializer()
	if err != nil {
		return err
	}
	return builtin.Rewards.WithState(st).Initialize(admin, g.LaunchTime, g.RewardsDuration, g.ExitDelay)
}
