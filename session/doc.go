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

// Package session starts, pauses, resumes, frame steps and stops the emulation
// and coordinates the goroutines involved in running it.
//
// There are three goroutines of interest. The host goroutine is the goroutine
// of the application that owns the session and is the only goroutine that
// should call Stop() and Shutdown(). The CPU goroutine runs the CPU loop. The
// GPU goroutine presents frames. In the single-thread topology the CPU and GPU
// goroutines are the same goroutine.
//
// The state of the session is reported by State() and changes are broadcast to
// functions registered with Subscribe(). Only the Paused and Running states
// can be requested, with SetState().
//
// The host must process host jobs. A host job is a function that should be run
// on the host goroutine. The host is told that jobs are waiting with the
// MsgJobDispatch message and it should respond by calling HostDispatchJobs().
// ChannelHost does this.
//
//	host := session.NewChannelHost()
//	s := session.NewSession(host, nil)
//	go host.Serve(ctx, s)
//	s.Init(session.Boot{Name: "example", Image: image})
//
// Code that needs to access the emulation from outside of the CPU goroutine
// should use RunAsCPUThread() or RunOnCPUThread(). Both make sure that the
// CPU is not running while the function is being run.
package session
