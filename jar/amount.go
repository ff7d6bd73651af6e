// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package jar

import (
	"errors"
	"strings"

	"github.com/holiman/uint256"
)

// Amount is a 256-bit token quantity in base units.
// It is marshaled as a decimal string and parsed from either decimal or 0x-prefixed hex.
type Amount uint256.Int

// NewAmount wraps a copy of v.
func NewAmount(v *uint256.Int) *Amount {
	if v == nil {
		return new(Amount)
	}
	return (*Amount)(v.Clone())
}

// Int returns the underlying integer. The returned value aliases a.
func (a *Amount) Int() *uint256.Int {
	return (*uint256.Int)(a)
}

// String returns the decimal form.
func (a *Amount) String() string {
	return a.Int().Dec()
}

// MarshalText implements encoding.TextMarshaler.
func (a *Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(text []byte) error {
	v, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*a = Amount(*v)
	return nil
}

// ParseAmount parses a decimal or 0x-prefixed hex string. Hex digits may be zero padded.
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty amount")
	}
	var v uint256.Int
	if len(s) > 2 && strings.ToLower(s[:2]) == "0x" {
		// SetFromHex refuses leading zeros
		digits := strings.TrimLeft(s[2:], "0")
		if digits == "" {
			digits = "0"
		}
		if err := v.SetFromHex("0x" + digits); err != nil {
			return nil, err
		}
		return &v, nil
	}
	if err := v.SetFromDecimal(s); err != nil {
		return nil, err
	}
	return &v, nil
}
