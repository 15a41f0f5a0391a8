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

package performance

import (
	"sync"
	"time"
)

// Timer measures wall-clock time since it was started. It can be restarted
// with an offset so that the elapsed time continues from a previous value.
type Timer struct {
	crit sync.Mutex

	// the time the timer was (re)started, adjusted by the offset
	start time.Time

	// function returning the current time. replaced by tests
	now func() time.Time
}

// NewTimer is the preferred method of initialisation for the Timer type. The
// timer is started immediately.
func NewTimer() *Timer {
	tmr := &Timer{now: time.Now}
	tmr.Start()
	return tmr
}

// SetClock changes the function used to get the current time. The timer is
// restarted.
func (tmr *Timer) SetClock(now func() time.Time) {
	tmr.crit.Lock()
	tmr.now = now
	tmr.crit.Unlock()
	tmr.Start()
}

// Start (or restart) the timer from zero.
func (tmr *Timer) Start() {
	tmr.StartWithOffset(0)
}

// StartWithOffset restarts the timer so that Elapsed() immediately returns the
// offset value.
func (tmr *Timer) StartWithOffset(offset time.Duration) {
	tmr.crit.Lock()
	defer tmr.crit.Unlock()
	tmr.start = tmr.now().Add(-offset)
}

// Elapsed returns the time since the timer was started, including any offset.
func (tmr *Timer) Elapsed() time.Duration {
	tmr.crit.Lock()
	defer tmr.crit.Unlock()
	return tmr.now().Sub(tmr.start)
}
