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

// Package hostjobs is a queue of functions waiting to be run by the host
// goroutine. The host goroutine is the goroutine that runs the user interface,
// in the same way that GUI work must stay on the main thread.
//
// Jobs are typically queued by the CPU goroutine when it needs something
// done on the host side, or by the session when a state change must happen on
// the host once the hardware has been initialised.
package hostjobs
