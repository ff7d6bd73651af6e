// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// balance is the storage record of a token amount. Zero is stored as empty.
type balance struct {
	Value *big.Int
}

func (b *balance) Encode() ([]byte, error) {
	if b.Value == nil || b.Value.Sign() == 0 {
		return nil, nil
	}
	return rlp.EncodeToBytes(b.Value)
}

func (b *balance) Decode(data []byte) error {
	b.Value = new(big.Int)
	if len(data) == 0 {
		return nil
	}
	return rlp.DecodeBytes(data, b.Value)
}

func (b *balance) Amount() *uint256.Int {
	v, _ := uint256.FromBig(b.Value)
	return v
}

func newBalance(v *uint256.Int) *balance {
	return &balance{Value: v.ToBig()}
}
