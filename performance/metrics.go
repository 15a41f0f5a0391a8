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

// Metrics counts presented frames and emulated vertical blanks. The counters
// are updated from the CPU and GPU goroutines and sampled by whoever is
// updating the display of the figures.
type Metrics struct {
	frames  atomic.Uint64
	vblanks atomic.Uint64

	crit sync.Mutex

	// values at the time of the previous sample
	sampleTime    time.Time
	sampleFrames  uint64
	sampleVBlanks uint64

	// most recent sampled rates
	fps float64
	vps float64
}

// NewMetrics is the preferred method of initialisation for the Metrics type.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.Reset()
	return m
}

// Reset all counters.
func (m *Metrics) Reset() {
	m.crit.Lock()
	defer m.crit.Unlock()
	m.frames.Store(0)
	m.vblanks.Store(0)
	m.sampleTime = time.Now()
	m.sampleFrames = 0
	m.sampleVBlanks = 0
	m.fps = 0
	m.vps = 0
}

// CountFrame should be called once for every frame that is presented.
func (m *Metrics) CountFrame() {
	m.frames.Add(1)
}

// CountVBlank should be called once for every emulated vertical blank.
func (m *Metrics) CountVBlank() {
	m.vblanks.Add(1)
}

// Frames returns the number of frames counted since the last reset.
func (m *Metrics) Frames() uint64 {
	return m.frames.Load()
}

// VBlanks returns the number of vertical blanks counted since the last reset.
func (m *Metrics) VBlanks() uint64 {
	return m.vblanks.Load()
}

// Sample calculates the frames and vblanks per second since the previous
// call to Sample().
func (m *Metrics) Sample() (fps float64, vps float64) {
	m.crit.Lock()
	defer m.crit.Unlock()

	now := time.Now()
	d := now.Sub(m.sampleTime).Seconds()
	if d <= 0 {
		return m.fps, m.vps
	}

	f := m.frames.Load()
	v := m.vblanks.Load()
	m.fps = float64(f-m.sampleFrames) / d
	m.vps = float64(v-m.sampleVBlanks) / d

	m.sampleTime = now
	m.sampleFrames = f
	m.sampleVBlanks = v

	return m.fps, m.vps
}

// Speed returns the emulation speed as a fraction of the ideal vertical
// blank rate, using the most recent sample.
func (m *Metrics) Speed(idealVPS float64) float64 {
	if idealVPS <= 0 {
		return 0
	}
	m.crit.Lock()
	defer m.crit.Unlock()
	return m.vps / idealVPS
}
