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

	"github.com/jetsetilly/quiesce/curated"
	"github.com/jetsetilly/quiesce/govern"
	"github.com/jetsetilly/quiesce/identity"
	"github.com/jetsetilly/quiesce/logger"
)

// State returns the current state of the session. The state is derived from
// the session flags, in order of precedence: stopping, hardware initialised,
// booting.
func (s *Session) State() govern.State {
	if s.isStopping.Load() {
		return govern.Stopping
	}

	if s.hwInitialised.Load() {
		if s.frameStep.Load() {
			return govern.Paused
		}
		if sys := s.system.Load(); sys != nil && sys.CPU.IsStepping() {
			return govern.Paused
		}
		return govern.Running
	}

	if s.isBooting.Load() {
		return govern.Starting
	}

	return govern.Uninitialized
}

// SetState requests that the session be paused or resumed. The request is
// ignored if the session has not finished starting or if it is stopping.
//
// Targets other than govern.Paused and govern.Running are a programming error
// and will cause a panic.
//
// Observers are notified of the new state before the function returns.
func (s *Session) SetState(target govern.State) {
	if !target.Requestable() {
		panic(curated.Errorf(InvalidTargetState, target))
	}

	if !s.IsRunningAndStarted() {
		return
	}

	sys := s.system.Load()
	if sys == nil {
		return
	}

	switch target {
	case govern.Paused:
		sys.CPU.EnableStepping(true)
		sys.Input.Pause()
		sys.Input.ResetRumble()
		s.stopClock()

	case govern.Running:
		sys.CPU.EnableStepping(false)
		sys.Input.Resume()
		s.restartClock()
	}

	st := s.State()
	logger.Logf(logger.Allow, "session", "state: %s", st)
	s.broadcast(st)
}

// IsRunning returns true if the hardware has been initialised and the session
// is not stopping.
func (s *Session) IsRunning() bool {
	return s.hwInitialised.Load() && !s.isStopping.Load()
}

// IsRunningAndStarted returns true if the CPU loop has started and the session
// is not stopping.
func (s *Session) IsRunningAndStarted() bool {
	return s.isStarted.Load() && !s.isStopping.Load()
}

// IsBooting implements the hostjobs.Policy interface.
func (s *Session) IsBooting() bool {
	return s.isBooting.Load()
}

// IsRunningInCurrentThread returns true if the session is running and the
// caller is the CPU goroutine.
func (s *Session) IsRunningInCurrentThread() bool {
	return s.IsRunning() && s.IsCPUThread()
}

// IsCPUThread returns true if the caller is the CPU goroutine. This includes
// a goroutine that has paused and locked the session.
func (s *Session) IsCPUThread() bool {
	return s.ids.Is(identity.CPU)
}

// IsGPUThread returns true if the caller is the goroutine that presents
// frames. In the single-thread topology this is also the CPU goroutine.
func (s *Session) IsGPUThread() bool {
	return s.ids.Is(identity.GPU)
}

// IsHostThread returns true if the caller is the host goroutine.
func (s *Session) IsHostThread() bool {
	return s.ids.Is(identity.Host)
}

// DeclareHostThread declares the calling goroutine as the host goroutine. The
// token should be released when the goroutine stops being the host.
//
// ChannelHost.Serve() calls this function and there is no need to call it
// when using ChannelHost.
func (s *Session) DeclareHostThread() *identity.Token {
	return s.ids.Declare(identity.Host)
}

// observers is the registry of state change callbacks. A nil entry is a free
// slot.
type observers struct {
	crit  sync.Mutex
	slots []func(govern.State)
}

// Subscribe adds a function to be called whenever the state of the session
// changes. The returned handle is used to unsubscribe. Handles of
// unsubscribed functions are reused.
//
// The function is called on the goroutine that caused the state change and
// must not block. Returns -1 if the function is nil.
func (s *Session) Subscribe(f func(govern.State)) int {
	if f == nil {
		return -1
	}

	s.observers.crit.Lock()
	defer s.observers.crit.Unlock()

	for i, o := range s.observers.slots {
		if o == nil {
			s.observers.slots[i] = f
			return i
		}
	}

	s.observers.slots = append(s.observers.slots, f)
	return len(s.observers.slots) - 1
}

// Unsubscribe removes the function with the handle returned by Subscribe().
// Returns false if the handle is not valid.
func (s *Session) Unsubscribe(handle int) bool {
	s.observers.crit.Lock()
	defer s.observers.crit.Unlock()

	if handle < 0 || handle >= len(s.observers.slots) || s.observers.slots[handle] == nil {
		return false
	}
	s.observers.slots[handle] = nil
	return true
}

// broadcast the state to all observers. observers are called outside of the
// critical section so that they can subscribe and unsubscribe
func (s *Session) broadcast(state govern.State) {
	s.observers.crit.Lock()
	obs := make([]func(govern.State), 0, len(s.observers.slots))
	for _, o := range s.observers.slots {
		if o != nil {
			obs = append(obs, o)
		}
	}
	s.observers.crit.Unlock()

	for _, o := range obs {
		o(state)
	}
}
