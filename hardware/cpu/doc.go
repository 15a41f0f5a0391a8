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

// Package cpu implements the run loop of the emulated CPU. The run loop
// executes slices of emulation provided by an implementation of the Core
// interface, for as long as the CPU is in the Running state.
//
// Control of the run loop is from other goroutines. EnableStepping() stops and
// starts the execution of slices and PauseAndLock() holds the CPU stopped
// while another goroutine works on the emulation. For example:
//
//	wasRunning := c.PauseAndLock(true, false, true)
//	// emulation can be safely inspected here
//	c.PauseAndLock(false, wasRunning, true)
//
// Functions can be run on the CPU goroutine with AddJob(). Jobs are run
// between slices.
//
// Adjacent systems, such as the audio stream, are told when the CPU starts and
// stops running. The notification happens with the CPU's critical section
// held so an adjacent system must not call back into the CPU.
package cpu
