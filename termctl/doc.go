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

// Package termctl controls a session from the keyboard of a terminal. The
// terminal is put into cbreak mode so that key presses are seen immediately.
//
// Key presses are turned into host jobs. The keys are:
//
//	p	pause or resume the emulation
//	f	advance the emulation by one frame
//	t	toggle the frame limiter
//	q	stop the emulation
package termctl
