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

package input

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jetsetilly/quiesce/logger"
)

// DefaultPollInterval is the interval between polls of the input source.
const DefaultPollInterval = 4 * time.Millisecond

// Buttons is the state of the buttons on a pad. One bit per button.
type Buttons uint16

// Source provides the current state of a pad.
type Source interface {
	Poll(pad int) Buttons
}

// pad is the state of a single pad
type pad struct {
	polled  Buttons
	latched Buttons
	rumble  float32
}

// Controllers polls the input source at a regular interval, independent of the
// speed of emulation. The most recent polled state is latched by the
// emulation once per field.
type Controllers struct {
	source   Source
	interval time.Duration

	crit sync.Mutex
	pads []pad

	// the gate is closed when the application does not want input to reach
	// the emulation. polls while the gate is closed report no buttons
	gate bool

	// polling is suspended while the emulation is paused
	paused bool

	// rumble is disabled
	noRumble bool

	stop chan bool
	wg   sync.WaitGroup

	polls atomic.Uint64
}

// NewControllers is the preferred method of initialisation for the Controllers
// type. The source can be nil, in which case pads never report any buttons. An
// interval of zero or less is replaced with DefaultPollInterval.
func NewControllers(numPads int, source Source, interval time.Duration) *Controllers {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Controllers{
		source:   source,
		interval: interval,
		pads:     make([]pad, numPads),
		gate:     true,
	}
}

// NumPads returns the number of pads.
func (ctl *Controllers) NumPads() int {
	return len(ctl.pads)
}

// Start polling the input source. Polling happens in a new goroutine which
// runs until Stop() is called.
func (ctl *Controllers) Start() {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()

	if ctl.stop != nil {
		return
	}
	ctl.stop = make(chan bool)

	ctl.wg.Add(1)
	go ctl.poller(ctl.stop)
}

func (ctl *Controllers) poller(stop chan bool) {
	defer ctl.wg.Done()

	tck := time.NewTicker(ctl.interval)
	defer tck.Stop()

	for {
		select {
		case <-stop:
			return
		case <-tck.C:
			ctl.Poll()
		}
	}
}

// Stop polling the input source. Waits for the polling goroutine to end.
func (ctl *Controllers) Stop() {
	ctl.crit.Lock()
	if ctl.stop == nil {
		ctl.crit.Unlock()
		return
	}
	close(ctl.stop)
	ctl.stop = nil
	ctl.crit.Unlock()

	ctl.wg.Wait()
}

// Poll the input source once. Normally, Poll() is called by the polling
// goroutine started by Start().
func (ctl *Controllers) Poll() {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()

	if ctl.paused {
		return
	}

	for i := range ctl.pads {
		var b Buttons
		if ctl.gate && ctl.source != nil {
			b = ctl.source.Poll(i)
		}
		ctl.pads[i].polled = b
	}

	ctl.polls.Add(1)
}

// Polls returns the number of times the input source has been polled.
func (ctl *Controllers) Polls() uint64 {
	return ctl.polls.Load()
}

// Pause polling. The pads keep the most recently polled state.
func (ctl *Controllers) Pause() {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()
	ctl.paused = true
}

// Resume polling after a call to Pause().
func (ctl *Controllers) Resume() {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()
	ctl.paused = false
}

// SetGate opens or closes the input gate.
func (ctl *Controllers) SetGate(open bool) {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()
	if ctl.gate != open {
		logger.Logf(logger.Allow, "input", "gate open: %v", open)
	}
	ctl.gate = open
}

// Gate returns true if the input gate is open.
func (ctl *Controllers) Gate() bool {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()
	return ctl.gate
}

// Latch the most recently polled state of every pad. Should be called once
// per field by the emulation.
func (ctl *Controllers) Latch() {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()
	for i := range ctl.pads {
		ctl.pads[i].latched = ctl.pads[i].polled
	}
}

// Latched returns the latched state of the pad.
func (ctl *Controllers) Latched(pad int) Buttons {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()
	if pad < 0 || pad >= len(ctl.pads) {
		return 0
	}
	return ctl.pads[pad].latched
}

// EnableRumble turns rumble on or off for all pads. Disabling rumble also
// resets it.
func (ctl *Controllers) EnableRumble(enable bool) {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()
	ctl.noRumble = !enable
	if !enable {
		for i := range ctl.pads {
			ctl.pads[i].rumble = 0
		}
	}
}

// SetRumble sets the rumble strength of the pad. Strength is clamped to the
// range 0.0 to 1.0.
func (ctl *Controllers) SetRumble(pad int, strength float32) {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()
	if ctl.noRumble || pad < 0 || pad >= len(ctl.pads) {
		return
	}
	ctl.pads[pad].rumble = min(max(strength, 0), 1)
}

// Rumble returns the rumble strength of the pad.
func (ctl *Controllers) Rumble(pad int) float32 {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()
	if pad < 0 || pad >= len(ctl.pads) {
		return 0
	}
	return ctl.pads[pad].rumble
}

// ResetRumble stops rumble on all pads.
func (ctl *Controllers) ResetRumble() {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()
	for i := range ctl.pads {
		ctl.pads[i].rumble = 0
	}
}
