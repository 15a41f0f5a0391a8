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

// Package identity records which goroutine is acting as the CPU, the GPU
// and the host in a session.
//
// Go does not have thread-local storage so the role of a goroutine is kept in
// a Registry, keyed by the goroutine's ID. A goroutine declares its role on
// entry to its body and releases it with a defer statement:
//
//	tok := reg.Declare(identity.CPU)
//	defer tok.Release()
//
// Tests can declare roles on their own goroutines to simulate any of the
// session's goroutines.
package identity
