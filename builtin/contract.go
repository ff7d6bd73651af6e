// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import "github.com/jarledger/jard/jar"

type contract struct {
	name    string
	Address jar.Address
}

// newContract derives the fixed address of a builtin from its name.
func newContract(name string) *contract {
	return &contract{
		name,
		jar.BytesToAddress([]byte(name)),
	}
}

// Name returns the builtin name.
func (c *contract) Name() string {
	return c.name
}
