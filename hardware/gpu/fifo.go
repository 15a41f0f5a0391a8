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

package gpu

import (
	"sync"
	"sync/atomic"

	"github.com/jetsetilly/quiesce/curated"
	"github.com/jetsetilly/quiesce/logger"
)

// DefaultQueueDepth is the number of frames that can be waiting for
// presentation before Submit() blocks.
const DefaultQueueDepth = 2

// Frame is the output of one field of emulation.
type Frame struct {
	Field    uint64
	Checksum uint64

	// emulation speed at the moment the frame was produced. a value of 1.0 is
	// full speed
	Speed float64
}

// Presenter is notified every time a frame is presented. Frames that are
// identical to the previous frame are not presented.
type Presenter interface {
	OnFramePresented(speed float64)
}

// Fifo is the queue of frames between the CPU and the video backend.
//
// If the GPU loop is running (see RunGpuLoop()) then frames are presented by
// the goroutine running the loop. Otherwise, frames are presented immediately
// by the goroutine calling Submit().
type Fifo struct {
	presenter Presenter
	backend   Backend
	depth     int

	crit sync.Mutex
	cond *sync.Cond

	queue []Frame

	// the GPU loop is running
	loopActive bool

	// ExitGpuLoop() has been called. the flag is never reset
	exit bool

	// frames are dropped if the emulator is not running
	emulatorRunning bool

	// the fifo is paused and locked
	locked bool

	// the GPU loop is presenting a frame
	busy bool

	// Submit() waits for the frame to be presented before returning
	synchronous bool

	lastChecksum uint64
	hasLast      bool

	presented  atomic.Uint64
	duplicates atomic.Uint64
	dropped    atomic.Uint64
}

// NewFifo is the preferred method of initialisation for the Fifo type. A depth
// of zero or less will be replaced with DefaultQueueDepth.
func NewFifo(presenter Presenter, depth int) *Fifo {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	f := &Fifo{
		presenter: presenter,
		depth:     depth,
		queue:     make([]Frame, 0, depth),
	}
	f.cond = sync.NewCond(&f.crit)
	return f
}

// Init the video backend by name. See Backends() for the list of valid names.
func (f *Fifo) Init(backend string) error {
	b, err := newBackend(backend)
	if err != nil {
		return curated.Errorf("gpu: %v", err)
	}

	f.crit.Lock()
	defer f.crit.Unlock()
	f.backend = b
	f.hasLast = false

	logger.Logf(logger.Allow, "gpu", "%s backend", b.Name())
	return nil
}

// Shutdown the video backend.
func (f *Fifo) Shutdown() {
	f.crit.Lock()
	defer f.crit.Unlock()
	if f.backend != nil {
		f.backend.Shutdown()
		f.backend = nil
	}
	clear(f.queue)
	f.queue = f.queue[:0]
}

// Backend returns the backend initialised by Init(). Returns nil if the
// backend has not been initialised or if it has been shutdown.
func (f *Fifo) Backend() Backend {
	f.crit.Lock()
	defer f.crit.Unlock()
	return f.backend
}

// Submit a frame for presentation.
func (f *Fifo) Submit(frm Frame) {
	f.crit.Lock()

	if !f.loopActive {
		f.crit.Unlock()
		f.present(frm)
		return
	}

	for len(f.queue) >= f.depth && !f.exit && f.emulatorRunning {
		f.cond.Wait()
	}

	if f.exit || !f.emulatorRunning {
		f.crit.Unlock()
		f.dropped.Add(1)
		return
	}

	f.queue = append(f.queue, frm)
	f.cond.Broadcast()

	if f.synchronous {
		f.waitForEmptyQueue()
	}

	f.crit.Unlock()
}

// present must not be called with the critical section held
func (f *Fifo) present(frm Frame) {
	f.crit.Lock()
	b := f.backend
	dup := f.hasLast && f.lastChecksum == frm.Checksum
	f.lastChecksum = frm.Checksum
	f.hasLast = true
	f.crit.Unlock()

	if dup {
		f.duplicates.Add(1)
		return
	}

	if b != nil {
		b.Present(frm)
	}
	f.presented.Add(1)

	if f.presenter != nil {
		f.presenter.OnFramePresented(frm.Speed)
	}
}

// RunGpuLoop presents frames as they are submitted. It does not return until
// ExitGpuLoop() is called.
func (f *Fifo) RunGpuLoop() {
	f.crit.Lock()
	defer f.crit.Unlock()

	f.loopActive = true
	f.cond.Broadcast()

	logger.Log(logger.Allow, "gpu", "loop started")

	for {
		for !f.exit && (f.locked || len(f.queue) == 0) {
			f.cond.Wait()
		}
		if f.exit {
			break
		}

		frm := f.queue[0]
		f.queue = f.queue[1:]
		f.busy = true
		f.crit.Unlock()

		f.present(frm)

		f.crit.Lock()
		f.busy = false
		f.cond.Broadcast()
	}

	if len(f.queue) > 0 {
		f.dropped.Add(uint64(len(f.queue)))
		clear(f.queue)
		f.queue = f.queue[:0]
	}
	f.loopActive = false
	f.cond.Broadcast()

	logger.Log(logger.Allow, "gpu", "loop ended")
}

// ExitGpuLoop causes RunGpuLoop() to return. Frames waiting in the queue are
// discarded and any subsequent call to Submit() will drop the frame.
func (f *Fifo) ExitGpuLoop() {
	f.crit.Lock()
	defer f.crit.Unlock()
	f.exit = true
	f.cond.Broadcast()
}

// LoopActive returns true if RunGpuLoop() is running.
func (f *Fifo) LoopActive() bool {
	f.crit.Lock()
	defer f.crit.Unlock()
	return f.loopActive
}

// EmulatorState sets whether the emulator is running. When the emulator stops
// running the function waits for the queue to empty.
func (f *Fifo) EmulatorState(running bool) {
	f.crit.Lock()
	defer f.crit.Unlock()

	f.emulatorRunning = running
	f.cond.Broadcast()

	if !running && f.loopActive && !f.locked && !f.exit {
		for (len(f.queue) > 0 || f.busy) && f.loopActive && !f.exit && !f.locked {
			f.cond.Wait()
		}
	}
}

// SetRunning implements the cpu.Adjacent interface.
func (f *Fifo) SetRunning(running bool) {
	f.EmulatorState(running)
}

// PauseAndLock prevents the GPU loop from presenting any more frames until it
// is called again with lock set to false. When locking, the function waits for
// the frame currently being presented.
func (f *Fifo) PauseAndLock(lock bool, unpauseOnUnlock bool) {
	f.crit.Lock()
	defer f.crit.Unlock()

	if lock {
		f.locked = true
		for f.busy {
			f.cond.Wait()
		}
		return
	}

	f.locked = false
	if unpauseOnUnlock {
		f.emulatorRunning = true
	}
	f.cond.Broadcast()
}

// WaitForEmptyQueue blocks until all submitted frames have been presented. It
// returns early if the GPU loop is not running, if the emulator is not running
// or if the fifo is locked.
func (f *Fifo) WaitForEmptyQueue() {
	f.crit.Lock()
	defer f.crit.Unlock()
	f.waitForEmptyQueue()
}

// waitForEmptyQueue must be called with the critical section held
func (f *Fifo) waitForEmptyQueue() {
	for (len(f.queue) > 0 || f.busy) && f.loopActive && !f.exit && f.emulatorRunning && !f.locked {
		f.cond.Wait()
	}
}

// UpdateWantDeterminism makes Submit() wait for the frame to be presented.
func (f *Fifo) UpdateWantDeterminism(want bool) {
	f.crit.Lock()
	defer f.crit.Unlock()
	f.synchronous = want
}

// Presented returns the number of frames presented.
func (f *Fifo) Presented() uint64 {
	return f.presented.Load()
}

// Duplicates returns the number of frames that were not presented because
// they were identical to the previous frame.
func (f *Fifo) Duplicates() uint64 {
	return f.duplicates.Load()
}

// Dropped returns the number of frames dropped because the emulator was not
// running or because the GPU loop had exited.
func (f *Fifo) Dropped() uint64 {
	return f.dropped.Load()
}
