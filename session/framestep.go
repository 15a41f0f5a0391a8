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
	"github.com/jetsetilly/quiesce/govern"
)

// DoFrameStep advances the emulation by one frame. If the session is not
// paused then the session is paused instead.
//
// The frame step ends when a new frame has been presented. Frames that are
// the same as the previous frame do not end the frame step.
func (s *Session) DoFrameStep() {
	if s.State() == govern.Paused {
		s.stopFrameStep.Store(false)
		s.frameStep.Store(true)
		s.SetState(govern.Running)
	} else if !s.frameStep.Load() {
		s.SetState(govern.Paused)
	}
}

// FrameStepPhase returns the progress of the current frame step.
func (s *Session) FrameStepPhase() govern.FrameStep {
	if !s.frameStep.Load() {
		return govern.Idle
	}
	if sys := s.system.Load(); sys != nil && sys.CPU.IsStepping() {
		return govern.Armed
	}
	return govern.AwaitingPresentation
}

// OnFramePresented should be called whenever a new frame is presented. It
// should not be called for frames that are the same as the previous frame.
//
// The speed argument is the speed of emulation when the frame was produced.
func (s *Session) OnFramePresented(speed float64) {
	s.metrics.CountFrame()
	s.setActualSpeed(speed)
	s.stopFrameStep.Store(true)
}

// onNewField is called by the CPU goroutine at the end of every field
func (s *Session) onNewField() {
	if !s.frameStep.Load() {
		return
	}

	sys := s.system.Load()
	if sys == nil {
		return
	}

	// the GPU queue may contain a frame that has not yet been presented
	sys.GPU.WaitForEmptyQueue()

	if s.stopFrameStep.Load() {
		// the clock is stopped before the step is seen to end
		s.stopClock()
		sys.CPU.Break()
		s.frameStep.Store(false)
		s.broadcast(s.State())
	}
}
