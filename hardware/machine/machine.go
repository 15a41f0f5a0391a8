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

package machine

import (
	"encoding/binary"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/jetsetilly/quiesce/hardware/audio"
	"github.com/jetsetilly/quiesce/hardware/expansion"
	"github.com/jetsetilly/quiesce/hardware/gpu"
	"github.com/jetsetilly/quiesce/hardware/input"
)

// SamplesPerField is the number of audio samples produced every field.
const SamplesPerField = audio.SampleRate / 60

// Callbacks are called by the machine, on the CPU goroutine, at the end of
// every field.
type Callbacks interface {
	// called after the frame has been submitted to the GPU
	NewField()

	// called after NewField()
	OnFrameEnd()

	// called last. the callback can block to limit the speed of emulation
	VideoThrottle()

	// the current emulation speed. 1.0 is full speed
	Speed() float64
}

// FrameSource returns the checksum of the frame for the field. It can be used
// to override the checksum that the machine would otherwise produce.
type FrameSource func(field uint64) uint64

// Machine is the emulated machine. It implements the cpu.Core interface.
type Machine struct {
	image []byte

	input *input.Controllers
	bus   *expansion.Bus
	dsp   *audio.DSP
	fifo  *gpu.Fifo

	callbacks   Callbacks
	frameSource FrameSource

	field        atomic.Uint64
	lastChecksum atomic.Uint64

	// protects the image for Snapshot()
	crit sync.Mutex
}

// NewMachine is the preferred method of initialisation for the Machine type.
// The callbacks and the frame source can both be nil.
func NewMachine(image []byte, ctl *input.Controllers, bus *expansion.Bus, dsp *audio.DSP, fifo *gpu.Fifo, callbacks Callbacks, frameSource FrameSource) *Machine {
	return &Machine{
		image:       image,
		input:       ctl,
		bus:         bus,
		dsp:         dsp,
		fifo:        fifo,
		callbacks:   callbacks,
		frameSource: frameSource,
	}
}

// RunSlice implements the cpu.Core interface. A slice is one field.
func (m *Machine) RunSlice() {
	field := m.field.Add(1)

	m.input.Latch()
	m.bus.Tick(field)
	m.dsp.Field(SamplesPerField)

	sum := m.checksum(field)
	m.lastChecksum.Store(sum)

	speed := 1.0
	if m.callbacks != nil {
		speed = m.callbacks.Speed()
	}

	m.fifo.Submit(gpu.Frame{
		Field:    field,
		Checksum: sum,
		Speed:    speed,
	})

	if m.callbacks != nil {
		m.callbacks.NewField()
		m.callbacks.OnFrameEnd()
		m.callbacks.VideoThrottle()
	}
}

func (m *Machine) checksum(field uint64) uint64 {
	if m.frameSource != nil {
		return m.frameSource(field)
	}

	m.crit.Lock()
	defer m.crit.Unlock()

	h := fnv.New64a()
	h.Write(m.image)

	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], field)
	for i := range m.input.NumPads() {
		b[i%len(b)] ^= byte(m.input.Latched(i))
	}
	h.Write(b[:])

	return h.Sum64()
}

// Field returns the number of fields that have been run.
func (m *Machine) Field() uint64 {
	return m.field.Load()
}

// Snapshot is a summary of the machine's state.
type Snapshot struct {
	Field     uint64
	Checksum  uint64
	ImageSize int
	Pads      []input.Buttons
	Devices   []string
}

// Snapshot returns a summary of the machine's state. It should only be called
// from the CPU goroutine.
func (m *Machine) Snapshot() *Snapshot {
	m.crit.Lock()
	defer m.crit.Unlock()

	s := &Snapshot{
		Field:     m.field.Load(),
		Checksum:  m.lastChecksum.Load(),
		ImageSize: len(m.image),
	}
	for i := range m.input.NumPads() {
		s.Pads = append(s.Pads, m.input.Latched(i))
	}
	for _, d := range m.bus.Devices() {
		s.Devices = append(s.Devices, d.Name())
	}
	return s
}
