// This file is part of Quiesce.
//
// Quiesce is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Quiesce is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Quiesce.  If not, see <https://www.gnu.org/licenses/>.

package identity

import (
	"strings"
	"sync"
)

// Role is a bit field of the duties a goroutine has in the session.
type Role int

// List of roles. A goroutine can have more than one role. For example, in the
// single-thread topology the emulation goroutine is both the CPU and the GPU.
const (
	CPU Role = 1 << iota
	GPU
	Host

	NoRole Role = 0
)

func (r Role) String() string {
	if r == NoRole {
		return "none"
	}

	s := make([]string, 0, 3)
	if r&CPU == CPU {
		s = append(s, "cpu")
	}
	if r&GPU == GPU {
		s = append(s, "gpu")
	}
	if r&Host == Host {
		s = append(s, "host")
	}
	return strings.Join(s, "|")
}

// Registry maps goroutines to the roles they have been declared as having.
// The zero value is not usable, use NewRegistry().
type Registry struct {
	crit  sync.RWMutex
	roles map[uint64]Role
}

// NewRegistry is the preferred method of initialisation for the Registry type.
func NewRegistry() *Registry {
	return &Registry{
		roles: make(map[uint64]Role),
	}
}

// Token is returned by Declare(). Releasing the token removes the roles that
// were added by the declaration.
type Token struct {
	reg   *Registry
	id    uint64
	added Role
	once  sync.Once
}

// Declare adds the role to the calling goroutine. The returned token should be
// released when the goroutine gives up the role, usually with a defer
// statement on entry to the goroutine body.
//
// Roles already held by the goroutine are not affected by the token. This means
// that declarations can be nested.
func (reg *Registry) Declare(role Role) *Token {
	id := GoroutineID()

	reg.crit.Lock()
	defer reg.crit.Unlock()

	prev := reg.roles[id]
	reg.roles[id] = prev | role

	return &Token{
		reg:   reg,
		id:    id,
		added: role &^ prev,
	}
}

// Release removes the roles added by the declaration that created the token.
// Release can be called from any goroutine and it is safe to call more than
// once.
func (tok *Token) Release() {
	if tok == nil {
		return
	}
	tok.once.Do(func() {
		tok.reg.crit.Lock()
		defer tok.reg.crit.Unlock()

		r := tok.reg.roles[tok.id] &^ tok.added
		if r == NoRole {
			delete(tok.reg.roles, tok.id)
		} else {
			tok.reg.roles[tok.id] = r
		}
	})
}

// Is returns true if the calling goroutine has been declared with the role.
func (reg *Registry) Is(role Role) bool {
	return reg.RolesOf(GoroutineID())&role == role
}

// Roles returns the roles of the calling goroutine.
func (reg *Registry) Roles() Role {
	return reg.RolesOf(GoroutineID())
}

// RolesOf returns the roles of the goroutine with the specified ID.
func (reg *Registry) RolesOf(id uint64) Role {
	reg.crit.RLock()
	defer reg.crit.RUnlock()
	return reg.roles[id]
}

// Holders returns the number of goroutines that currently have the role.
func (reg *Registry) Holders(role Role) int {
	reg.crit.RLock()
	defer reg.crit.RUnlock()

	var n int
	for _, r := range reg.roles {
		if r&role == role {
			n++
		}
	}
	return n
}
