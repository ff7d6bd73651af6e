// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package authority

import (
	"strings"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/jarledger/jard/jar"
)

// Role is a set of permissions, combined as bit flags.
type Role uint8

// Roles.
const (
	RoleAdmin Role = 1 << iota
	RoleFunder
)

var roleNames = []struct {
	role Role
	name string
}{
	{RoleAdmin, "admin"},
	{RoleFunder, "funder"},
}

// Has returns whether r contains all roles of other.
func (r Role) Has(other Role) bool {
	return other != 0 && r&other == other
}

func (r Role) String() string {
	var names []string
	for _, rn := range roleNames {
		if r.Has(rn.role) {
			names = append(names, rn.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseRole converts a role name into a Role.
func ParseRole(s string) (Role, bool) {
	for _, rn := range roleNames {
		if rn.name == s {
			return rn.role, true
		}
	}
	return 0, false
}

// Action is a guarded ledger operation.
type Action string

// Actions.
const (
	// ActionReplenish funds a new reward period.
	ActionReplenish Action = "replenish"
	// ActionConfigure covers initialization, duration changes and caging.
	ActionConfigure Action = "configure"
)

// roleOf returns the roles allowed to perform action.
func roleOf(action Action) Role {
	switch action {
	case ActionReplenish:
		return RoleAdmin | RoleFunder
	case ActionConfigure:
		return RoleAdmin
	}
	return 0
}

// entry is a member record, members are kept in a doubly linked list.
type entry struct {
	Roles Role
	Prev  *jar.Address `rlp:"nil"`
	Next  *jar.Address `rlp:"nil"`
}

func (e *entry) IsEmpty() bool {
	return e.Roles == 0 && e.Prev == nil && e.Next == nil
}

// IsLinked returns whether the entry is in the list. The only member has no neighbours.
func (e *entry) IsLinked() bool {
	return e.Prev != nil || e.Next != nil
}

func (e *entry) Encode() ([]byte, error) {
	if e.IsEmpty() {
		return nil, nil
	}
	return rlp.EncodeToBytes(e)
}

func (e *entry) Decode(data []byte) error {
	*e = entry{}
	if len(data) == 0 {
		return nil
	}
	return rlp.DecodeBytes(data, e)
}

// Member is a role holder.
type Member struct {
	Address jar.Address `json:"address"`
	Roles   Role        `json:"-"`
}
