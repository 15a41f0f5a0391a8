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

package govern

// State indicates the session's state.
type State int

// List of possible session states.
//
// Uninitialized is the default state. A session returns to this state once
// it has stopped or if it failed to start.
//
// Only Paused and Running can be requested directly. The other states are the
// result of the session goroutines starting and stopping.
const (
	Uninitialized State = iota
	Starting
	Running
	Paused
	Stopping
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Starting:
		return "Starting"
	case Running:
		return "Running"
	case Paused:
		return "Paused"
	case Stopping:
		return "Stopping"
	}

	return ""
}

// Requestable returns true if the state can be requested directly by a caller
// of the session.
func (s State) Requestable() bool {
	return s == Running || s == Paused
}

// Topology indicates how the emulation is split across goroutines. The
// topology is chosen when the session starts and does not change until the
// session ends.
type Topology int

// List of possible topologies.
//
// In the SingleThread topology the emulation goroutine runs both the CPU and
// presents the frames produced by the GPU.
//
// In the DualThread topology the emulation goroutine spawns a dedicated CPU
// goroutine and then becomes the GPU goroutine.
const (
	SingleThread Topology = iota
	DualThread
)

func (t Topology) String() string {
	switch t {
	case SingleThread:
		return "single thread"
	case DualThread:
		return "dual thread"
	}

	return ""
}

// FrameStep indicates the progress of a single frame advance.
type FrameStep int

// List of possible frame step phases.
//
// Armed means that a step has been requested but the CPU has not yet resumed.
// AwaitingPresentation means that the CPU is running and that the step will
// end once a new frame has been presented.
const (
	Idle FrameStep = iota
	Armed
	AwaitingPresentation
)

func (f FrameStep) String() string {
	switch f {
	case Idle:
		return "Idle"
	case Armed:
		return "Armed"
	case AwaitingPresentation:
		return "AwaitingPresentation"
	}

	return ""
}
