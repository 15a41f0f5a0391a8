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

// Package remote is an HTTP interface to a running session. Requests that
// change the state of the session are posted to the host goroutine as host
// jobs. Requests that read the state of the emulated machine are run on the
// CPU goroutine.
//
// Endpoints:
//
//	GET  /session   summary of the session
//	GET  /inspect   snapshot of the emulated machine
//	POST /pause     pause the emulation
//	POST /resume    resume the emulation
//	POST /step      advance the emulation by one frame
//	POST /stop      stop the emulation
//	GET  /events    websocket stream of state changes
//
// State change requests are asynchronous. The response is sent before the
// request has been acted upon. Clients should use the /events stream to see
// the effect of the request.
package remote
