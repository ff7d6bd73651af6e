// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package authority keeps the role registry that guards privileged ledger operations.
package authority

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/jarledger/jard/jar"
	"github.com/jarledger/jard/state"
)

var (
	headKey = jar.Blake2b([]byte("head"))
	tailKey = jar.Blake2b([]byte("tail"))
)

// Authority is the role registry.
type Authority struct {
	addr  jar.Address
	state *state.State
}

// New creates a new instance.
func New(addr jar.Address, state *state.State) *Authority {
	return &Authority{addr, state}
}

func (a *Authority) getEntry(member jar.Address) (*entry, error) {
	var e entry
	if err := a.state.DecodeStorage(a.addr, jar.BytesToBytes32(member[:]), e.Decode); err != nil {
		return nil, err
	}
	return &e, nil
}

func (a *Authority) setEntry(member jar.Address, e *entry) error {
	return a.state.EncodeStorage(a.addr, jar.BytesToBytes32(member[:]), e.Encode)
}

func (a *Authority) getAddressPtr(key jar.Bytes32) (addr *jar.Address, err error) {
	err = a.state.DecodeStorage(a.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &addr)
	})
	return
}

func (a *Authority) setAddressPtr(key jar.Bytes32, addr *jar.Address) error {
	return a.state.EncodeStorage(a.addr, key, func() ([]byte, error) {
		if addr == nil {
			return nil, nil
		}
		return rlp.EncodeToBytes(addr)
	})
}

// isListed handles the single member case, whose entry has no links.
func (a *Authority) isListed(member jar.Address, e *entry) (bool, error) {
	if e.IsLinked() {
		return true, nil
	}
	head, err := a.getAddressPtr(headKey)
	if err != nil {
		return false, err
	}
	return head != nil && *head == member, nil
}

// Roles returns the roles held by addr.
func (a *Authority) Roles(addr jar.Address) (Role, error) {
	e, err := a.getEntry(addr)
	if err != nil {
		return 0, err
	}
	return e.Roles, nil
}

// IsAuthorized returns whether caller may perform action.
func (a *Authority) IsAuthorized(caller jar.Address, action string) (bool, error) {
	required := roleOf(Action(action))
	if required == 0 {
		return false, nil
	}
	roles, err := a.Roles(caller)
	if err != nil {
		return false, err
	}
	return roles&required != 0, nil
}

// Grant adds role to member, listing it if needed.
// It returns false if the member already holds the role.
func (a *Authority) Grant(member jar.Address, role Role) (bool, error) {
	e, err := a.getEntry(member)
	if err != nil {
		return false, err
	}
	if e.Roles.Has(role) {
		return false, nil
	}
	listed, err := a.isListed(member, e)
	if err != nil {
		return false, err
	}
	e.Roles |= role

	if !listed {
		tail, err := a.getAddressPtr(tailKey)
		if err != nil {
			return false, err
		}
		e.Prev = tail

		if err := a.setAddressPtr(tailKey, &member); err != nil {
			return false, err
		}
		if tail == nil {
			if err := a.setAddressPtr(headKey, &member); err != nil {
				return false, err
			}
		} else {
			tailEntry, err := a.getEntry(*tail)
			if err != nil {
				return false, err
			}
			tailEntry.Next = &member
			if err := a.setEntry(*tail, tailEntry); err != nil {
				return false, err
			}
		}
	}
	return true, a.setEntry(member, e)
}

// Revoke removes role from member. A member left without roles is unlisted.
// It returns false if the member holds none of the role.
func (a *Authority) Revoke(member jar.Address, role Role) (bool, error) {
	e, err := a.getEntry(member)
	if err != nil {
		return false, err
	}
	if e.Roles&role == 0 {
		return false, nil
	}
	e.Roles &^= role
	if e.Roles != 0 {
		return true, a.setEntry(member, e)
	}

	if e.Prev == nil {
		if err := a.setAddressPtr(headKey, e.Next); err != nil {
			return false, err
		}
	} else {
		prev, err := a.getEntry(*e.Prev)
		if err != nil {
			return false, err
		}
		prev.Next = e.Next
		if err := a.setEntry(*e.Prev, prev); err != nil {
			return false, err
		}
	}

	if e.Next == nil {
		if err := a.setAddressPtr(tailKey, e.Prev); err != nil {
			return false, err
		}
	} else {
		next, err := a.getEntry(*e.Next)
		if err != nil {
			return false, err
		}
		next.Prev = e.Prev
		if err := a.setEntry(*e.Next, next); err != nil {
			return false, err
		}
	}
	return true, a.setEntry(member, &entry{})
}

// Members lists all role holders in grant order.
func (a *Authority) Members() ([]*Member, error) {
	ptr, err := a.getAddressPtr(headKey)
	if err != nil {
		return nil, err
	}
	var members []*Member
	for ptr != nil {
		e, err := a.getEntry(*ptr)
		if err != nil {
			return nil, err
		}
		members = append(members, &Member{Address: *ptr, Roles: e.Roles})
		ptr = e.Next
	}
	return members, nil
}
