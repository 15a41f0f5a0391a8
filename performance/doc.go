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

// Package performance contains types relating to the timing and pacing of a
// session.
//
// Timer measures the wall-clock time a session has been running. A paused
// session captures the elapsed time and restarts the timer with that value as
// an offset when it resumes, so the time spent paused is not counted.
//
// Metrics counts presented frames and emulated vertical blanks and turns them
// into per-second rates for display.
//
// Limiter paces the CPU goroutine to the requested field rate.
//
// RunProfiler() can be used to generate CPU and memory profiles of a
// function. It is used by the run command when profiling is requested.
package performance
