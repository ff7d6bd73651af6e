// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements a fungible balance ledger living in state.
package token

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/jarledger/jard/jar"
	"github.com/jarledger/jard/state"
)

var (
	// ErrInsufficientBalance is returned when a debit exceeds the balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrSupplyOverflow is returned when minting would exceed 2^256-1.
	ErrSupplyOverflow = errors.New("total supply overflow")

	totalSupplyKey = jar.Blake2b([]byte("total-supply"))
)

func balanceKey(addr jar.Address) jar.Bytes32 {
	return jar.BytesToBytes32(append([]byte("b"), addr.Bytes()...))
}

// Token keeps balances and the total supply of one token.
type Token struct {
	addr  jar.Address
	state *state.State
}

// New creates a token bound to the given address.
func New(addr jar.Address, state *state.State) *Token {
	return &Token{addr, state}
}

// Address returns the token address.
func (t *Token) Address() jar.Address {
	return t.addr
}

func (t *Token) get(key jar.Bytes32) (*uint256.Int, error) {
	var b balance
	if err := t.state.DecodeStorage(t.addr, key, b.Decode); err != nil {
		return nil, err
	}
	return b.Amount(), nil
}

func (t *Token) set(key jar.Bytes32, v *uint256.Int) error {
	return t.state.EncodeStorage(t.addr, key, newBalance(v).Encode)
}

// BalanceOf returns the balance of addr.
func (t *Token) BalanceOf(addr jar.Address) (*uint256.Int, error) {
	return t.get(balanceKey(addr))
}

// TotalSupply returns the sum of all balances.
func (t *Token) TotalSupply() (*uint256.Int, error) {
	return t.get(totalSupplyKey)
}

// Mint creates amount new tokens owned by to.
func (t *Token) Mint(to jar.Address, amount *uint256.Int) error {
	supply, err := t.TotalSupply()
	if err != nil {
		return err
	}
	if _, overflow := supply.AddOverflow(supply, amount); overflow {
		return ErrSupplyOverflow
	}
	bal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.set(totalSupplyKey, supply); err != nil {
		return err
	}
	// cannot overflow, a balance never exceeds the supply
	return t.set(balanceKey(to), bal.Add(bal, amount))
}

// Burn destroys amount tokens owned by from.
func (t *Token) Burn(from jar.Address, amount *uint256.Int) error {
	bal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if bal.Lt(amount) {
		return ErrInsufficientBalance
	}
	supply, err := t.TotalSupply()
	if err != nil {
		return err
	}
	if err := t.set(balanceKey(from), bal.Sub(bal, amount)); err != nil {
		return err
	}
	return t.set(totalSupplyKey, supply.Sub(supply, amount))
}

// Transfer moves amount from one holder to another.
func (t *Token) Transfer(from, to jar.Address, amount *uint256.Int) error {
	fromBal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Lt(amount) {
		return ErrInsufficientBalance
	}
	if from == to || amount.IsZero() {
		return nil
	}
	toBal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.set(balanceKey(from), fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}
	return t.set(balanceKey(to), toBal.Add(toBal, amount))
}
