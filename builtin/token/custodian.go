// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/jarledger/jard/jar"
)

// Custodian moves tokens in and out of a holder account.
type Custodian struct {
	token  *Token
	holder jar.Address
}

// NewCustodian creates a custodian for tokens held at holder.
func NewCustodian(token *Token, holder jar.Address) *Custodian {
	return &Custodian{token, holder}
}

// Holder returns the custody account.
func (c *Custodian) Holder() jar.Address {
	return c.holder
}

// Held returns the custody balance.
func (c *Custodian) Held() (*uint256.Int, error) {
	return c.token.BalanceOf(c.holder)
}

// TransferIn pulls amount from the given account into custody.
func (c *Custodian) TransferIn(from jar.Address, amount *uint256.Int) error {
	if err := c.token.Transfer(from, c.holder, amount); err != nil {
		return errors.WithMessagef(err, "pull %s from %v", amount, from)
	}
	return nil
}

// TransferOut pushes amount out of custody to the given account.
func (c *Custodian) TransferOut(to jar.Address, amount *uint256.Int) error {
	if err := c.token.Transfer(c.holder, to, amount); err != nil {
		return errors.WithMessagef(err, "push %s to %v", amount, to)
	}
	return nil
}
