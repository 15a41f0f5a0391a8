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
	"time"
)

// the interval at which a goroutine waiting for RunOnCPUThread() yields to the
// host
const yieldInterval = 10 * time.Millisecond

// RunAsCPUThread runs the function on the calling goroutine while the
// emulation is paused and locked. If the caller is the CPU goroutine then the
// function is run immediately.
//
// The emulation is returned to the state it was in before the function was
// called.
func (s *Session) RunAsCPUThread(fn func()) {
	if s.IsCPUThread() {
		fn()
		return
	}

	wasRunning := s.PauseAndLock(true, false)
	defer s.PauseAndLock(false, wasRunning)
	fn()
}

// RunOnCPUThread runs the function on the CPU goroutine. If the session is not
// running or if the caller is the CPU goroutine then the function is run
// immediately on the calling goroutine.
//
// If wait is true then the function does not return until the function has
// been run. While waiting, the host is regularly given the opportunity to
// process messages and, if the caller is the host goroutine, any host jobs are
// dispatched. The wait ends early if the CPU loop ends before the function
// could be run, in which case the function will never be run.
func (s *Session) RunOnCPUThread(fn func(), wait bool) {
	if !s.IsRunning() || s.IsCPUThread() {
		fn()
		return
	}

	sys := s.system.Load()
	if sys == nil {
		fn()
		return
	}

	done := make(chan bool)

	wasRunning := s.PauseAndLock(true, false)
	sys.CPU.AddJob(func() {
		fn()
		close(done)
	})
	s.PauseAndLock(false, wasRunning)

	if !wait {
		return
	}

	tck := time.NewTicker(yieldInterval)
	defer tck.Stop()

	for {
		select {
		case <-done:
			return
		case <-sys.CPU.Done():
			return
		case <-tck.C:
			if s.IsHostThread() {
				s.HostDispatchJobs()
			}
			s.host.YieldToUI()
		}
	}
}
