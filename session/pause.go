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

package session

import (
	"sync"

	"github.com/jetsetilly/quiesce/govern"
	"github.com/jetsetilly/quiesce/hardware"
	"github.com/jetsetilly/quiesce/identity"
)

// pauseGate allows only one goroutine at a time to pause and lock the
// emulation. The owning goroutine can lock more than once
type pauseGate struct {
	crit sync.Mutex
	cond *sync.Cond

	// goroutine holding the gate and the number of times it has locked
	owner uint64
	depth int

	// the system that was locked
	sys *hardware.System
}

// PauseAndLock stops the emulation and prevents it from running until it is
// called again with lock set to false.
//
// When locking, the return value is true if the emulation was running at the
// moment of the call. The value should be passed as the unpauseOnUnlock
// argument of the matching unlock. For example:
//
//	wasRunning := s.PauseAndLock(true, false)
//	// the emulation can be safely accessed here
//	s.PauseAndLock(false, wasRunning)
//
// The goroutine calling PauseAndLock() is considered to be the CPU goroutine
// until the lock is released. Only one goroutine can hold the lock at a time
// and the lock of a different goroutine will block until the lock is
// released. A goroutine that already holds the lock can lock again but the
// emulation will not run until the outermost lock is released. A nested lock
// returns false because the emulation is paused at the moment of the call.
//
// Locking does nothing and returns true if the session is not running and
// started. Locking from the CPU goroutine while another goroutine holds the
// lock does nothing and returns false. Unlocking by a goroutine that does not
// hold the lock does nothing and returns true if the session is running.
func (s *Session) PauseAndLock(lock bool, unpauseOnUnlock bool) bool {
	if lock {
		return s.pauseLock()
	}
	return s.pauseUnlock(unpauseOnUnlock)
}

func (s *Session) pauseLock() bool {
	if !s.IsRunningAndStarted() {
		return true
	}

	id := identity.GoroutineID()

	s.gate.crit.Lock()
	for s.gate.depth > 0 && s.gate.owner != id {
		// the CPU goroutine must not wait for the gate because the owner
		// will be waiting for the CPU to become idle. the emulation is
		// effectively locked for the CPU goroutine in any case
		if s.ids.Is(identity.CPU) {
			s.gate.crit.Unlock()
			return false
		}
		s.gate.cond.Wait()
	}

	if s.gate.depth > 0 {
		s.gate.depth++
		s.gate.crit.Unlock()
		return false
	}

	sys := s.system.Load()
	if sys == nil {
		s.gate.crit.Unlock()
		return true
	}

	s.gate.owner = id
	s.gate.depth = 1
	s.gate.sys = sys
	s.gate.crit.Unlock()

	// the order of locking is important. later systems can be waiting on
	// earlier systems
	wasRunning := sys.CPU.PauseAndLock(true, false, true)
	sys.Bus.PauseAndLock(true, false)
	sys.DSP.PauseAndLock(true, false)
	sys.GPU.PauseAndLock(true, false)

	// stop any rumble while paused
	sys.Input.ResetRumble()

	return wasRunning
}

func (s *Session) pauseUnlock(unpauseOnUnlock bool) bool {
	id := identity.GoroutineID()

	s.gate.crit.Lock()
	if s.gate.depth == 0 || s.gate.owner != id {
		s.gate.crit.Unlock()
		return s.State() == govern.Running
	}

	s.gate.depth--
	if s.gate.depth > 0 {
		s.gate.crit.Unlock()
		return false
	}

	sys := s.gate.sys
	s.gate.crit.Unlock()

	// the CPU is unlocked last. unlocking the CPU resumes the systems adjacent
	// to it, which can only happen once the other systems are unlocked
	sys.Bus.PauseAndLock(false, unpauseOnUnlock)
	sys.DSP.PauseAndLock(false, unpauseOnUnlock)
	sys.GPU.PauseAndLock(false, unpauseOnUnlock)
	wasRunning := sys.CPU.PauseAndLock(false, unpauseOnUnlock, true)

	sys.Input.ResetRumble()

	s.gate.crit.Lock()
	s.gate.owner = 0
	s.gate.sys = nil
	s.gate.cond.Broadcast()
	s.gate.crit.Unlock()

	return wasRunning
}
