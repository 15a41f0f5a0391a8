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
	"io"
	"time"

	"github.com/bradleyjkemp/memviz"
	"github.com/jetsetilly/quiesce/curated"
	"github.com/jetsetilly/quiesce/logger"
)

// how long errors are displayed by the host
const errorMessageDuration = 5 * time.Second

// DisplayMessage asks the host to show a message for the specified duration.
// The message is dropped if the session is not running or if it contains
// non-printable characters.
func (s *Session) DisplayMessage(msg string, duration time.Duration) {
	if !s.IsRunning() {
		return
	}
	for _, r := range msg {
		if r < 0x20 || r > 0x7e {
			return
		}
	}
	s.host.DisplayMessage(msg, duration)
}

// UpdateWantDeterminism changes whether the emulation should be deterministic.
// A deterministic emulation presents every frame before the CPU continues. The
// change happens with the emulation paused and locked.
//
// Nothing happens if the value is not different to the current value, unless
// initial is true.
func (s *Session) UpdateWantDeterminism(want bool, initial bool) {
	if want == s.wantDeterminism.Load() && !initial {
		return
	}

	logger.Logf(logger.Allow, "session", "want determinism: %v", want)

	s.RunAsCPUThread(func() {
		s.wantDeterminism.Store(want)
		if sys := s.system.Load(); sys != nil {
			sys.GPU.UpdateWantDeterminism(want)
		}
	})
}

// WantDeterminism returns true if the emulation should be deterministic.
func (s *Session) WantDeterminism() bool {
	return s.wantDeterminism.Load()
}

// UpdateInputGate opens or closes the controller input gate according to the
// focus of the renderer, as reported by the host.
//
// If requireFocus is false then input always reaches the emulation. If
// requireFullFocus is true then the renderer must have full focus in addition
// to basic focus.
func (s *Session) UpdateInputGate(requireFocus bool, requireFullFocus bool) {
	focusPasses := !requireFocus || (s.host.RendererHasFocus() && !s.host.UIBlocksControllerState())
	fullFocusPasses := !requireFocus || !requireFullFocus || (focusPasses && s.host.RendererHasFullFocus())

	if sys := s.system.Load(); sys != nil {
		sys.Input.SetGate(focusPasses && fullFocusPasses)
	}
}

// DumpGraph writes a graph of the machine's state, in the DOT language, to the
// io.Writer. The emulation is paused and locked while the graph is created.
func (s *Session) DumpGraph(w io.Writer) error {
	if !s.IsRunning() {
		return curated.Errorf(NotRunning)
	}

	s.RunAsCPUThread(func() {
		if sys := s.system.Load(); sys != nil {
			memviz.Map(w, sys.Machine.Snapshot())
		}
	})

	return nil
}
