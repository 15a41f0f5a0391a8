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
	"sync/atomic"
	"time"
)

// DefaultRate is the rate the limiter is set to by NewLimiter().
const DefaultRate float32 = 60.0

// Limiter paces the emulation to a requested number of fields per second.
// CheckField() should be called once per field on the CPU goroutine.
type Limiter struct {
	crit sync.Mutex

	// whether to wait for the pulse each field
	Active atomic.Bool

	// the rate the limiter is pacing to
	ideal atomic.Value // float32

	// pulse that performs the limiting. the pulse doesn't fire for every
	// field. we wait for it every pulseCtLimit fields instead because the
	// resolution of the ticker isn't good enough at high rates
	pulse        *time.Ticker
	pulseCt      int
	pulseCtLimit int

	// the measured rate is the number of fields divided by the amount of
	// elapsed time since the previous measurement
	measureTime time.Time
	measureCt   int
	measured    atomic.Value // float32

	// nudge the limiter so that it doesn't wait for the specified number of
	// fields
	Nudge atomic.Int32
}

// NewLimiter is preferred method of initialising a new instance of the Limiter
// type. The limiter is active and set to DefaultRate.
func NewLimiter() *Limiter {
	lmtr := &Limiter{}
	lmtr.Active.Store(true)
	lmtr.measured.Store(float32(0.0))
	lmtr.pulse = time.NewTicker(time.Second)
	lmtr.SetRate(DefaultRate)
	return lmtr
}

// SetRate sets the number of fields per second. A value of zero or less is
// ignored.
func (lmtr *Limiter) SetRate(fps float32) {
	if fps <= 0.0 {
		return
	}

	lmtr.crit.Lock()
	defer lmtr.crit.Unlock()

	lmtr.ideal.Store(fps)

	lmtr.pulseCt = 0
	lmtr.pulseCtLimit = 1 + int(fps/20)
	lmtr.pulse.Reset(time.Duration(float32(time.Second) / fps * float32(lmtr.pulseCtLimit)))

	lmtr.measureCt = 0
	lmtr.measureTime = time.Now()
}

// IdealRate returns the rate the limiter has been set to.
func (lmtr *Limiter) IdealRate() float32 {
	return lmtr.ideal.Load().(float32)
}

// MeasuredRate returns the most recent measurement of the field rate.
func (lmtr *Limiter) MeasuredRate() float32 {
	return lmtr.measured.Load().(float32)
}

// CheckField should be called every field. It will block if the field rate is
// ahead of the requested rate. The measurement of the actual rate is also
// updated, no more often than once a second.
func (lmtr *Limiter) CheckField() {
	lmtr.crit.Lock()
	lmtr.measureCt++

	var wait bool
	if nudge := lmtr.Nudge.Load(); nudge > 0 {
		lmtr.Nudge.Store(nudge - 1)
	} else if lmtr.Active.Load() {
		lmtr.pulseCt++
		if lmtr.pulseCt >= lmtr.pulseCtLimit {
			lmtr.pulseCt = 0
			wait = true
		}
	}

	if t := time.Now(); t.Sub(lmtr.measureTime) >= time.Second {
		lmtr.measured.Store(float32(lmtr.measureCt) / float32(t.Sub(lmtr.measureTime).Seconds()))
		lmtr.measureTime = t
		lmtr.measureCt = 0
	}

	pulse := lmtr.pulse
	lmtr.crit.Unlock()

	// wait outside of the critical section so that SetRate() is never
	// blocked by the pulse
	if wait {
		<-pulse.C
	}
}

// Stop the limiter's pulse. The limiter should not be used after Stop() has
// been called.
func (lmtr *Limiter) Stop() {
	lmtr.crit.Lock()
	defer lmtr.crit.Unlock()
	lmtr.pulse.Stop()
}
