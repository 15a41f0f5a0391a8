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

// Package curated is a helper package for the plain Go language error type.
// Curated errors are the errors we expect to happen during normal operation
// of a session. For example, asking for a session to start when one is
// already running.
//
// Curated errors are created with the Errorf() function. The formatting
// pattern is kept with the error and is used to identify it later:
//
//	const AlreadyRunning = "session: already running (%s)"
//	e := curated.Errorf(AlreadyRunning, id)
//
//	if curated.Is(e, AlreadyRunning) {
//		fmt.Println("true")
//	}
//
// The Has() function is similar but checks if a pattern occurs somewhere in
// the error chain:
//
//	f := curated.Errorf("quiesce: %v", e)
//
//	if curated.Has(f, AlreadyRunning) {
//		fmt.Println("true")
//	}
//
// The Error() implementation normalises the error chain so that duplicate
// adjacent parts are removed. This means that a function can safely wrap an
// error with the same prefix as the error it received:
//
//	"session: session: already running" -> "session: already running"
//
// The IsAny() function answers whether the error was created by
// curated.Errorf() at all.
package curated
