// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import "github.com/pkg/errors"

// Ledger rejections. Any other error returned by the ledger is a storage failure.
var (
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInsufficientStake  = errors.New("insufficient stake")
	ErrTransferFailed     = errors.New("token transfer failed")
	ErrAlreadyInitialized = errors.New("pool already initialized")
	ErrNotInitialized     = errors.New("pool not initialized")
	ErrUnauthorized       = errors.New("caller not authorized")
	ErrRateOverflow       = errors.New("reward rate overflow")
	ErrNotLive            = errors.New("pool is caged")
	ErrPeriodActive       = errors.New("reward period still active")
	ErrInvalidDuration    = errors.New("invalid rewards duration")
	ErrInvalidExitDelay   = errors.New("invalid exit delay")
	ErrNothingPending     = errors.New("no pending stake")
	ErrStakeLocked        = errors.New("pending stake still locked")
)

var rejections = []error{
	ErrInvalidAmount,
	ErrInsufficientStake,
	ErrTransferFailed,
	ErrAlreadyInitialized,
	ErrNotInitialized,
	ErrUnauthorized,
	ErrRateOverflow,
	ErrNotLive,
	ErrPeriodActive,
	ErrInvalidDuration,
	ErrInvalidExitDelay,
	ErrNothingPending,
	ErrStakeLocked,
}

// IsRejection returns whether err is a ledger rejection, as opposed to a storage failure.
func IsRejection(err error) bool {
	if err == nil {
		return false
	}
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}
