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

package cpu

import (
	"sync"
	"sync/atomic"

	"github.com/jetsetilly/quiesce/identity"
	"github.com/jetsetilly/quiesce/logger"
)

// State of the CPU run loop.
type State int

// List of valid CPU states. PowerDown is final. Once the CPU has entered
// PowerDown no other state can be entered.
const (
	Running State = iota
	Stepping
	PowerDown
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stepping:
		return "stepping"
	case PowerDown:
		return "power down"
	}
	return ""
}

// Core is the part of the emulation that actually executes. RunSlice() should
// execute a small, bounded amount of emulation (one video field for example)
// and return. The CPU will not change state in the middle of a slice.
type Core interface {
	RunSlice()
}

// Adjacent systems are told when the CPU starts and stops running.
type Adjacent interface {
	SetRunning(running bool)
}

// CPU is the run loop for the emulated CPU. Run() should be called by the
// goroutine that is to be the CPU goroutine. Other goroutines control the run
// loop with EnableStepping(), Break(), Stop() and PauseAndLock().
type CPU struct {
	core     Core
	ids      *identity.Registry
	adjacent []Adjacent

	crit sync.Mutex

	// signalled when the state changes or a job is added
	stateCond *sync.Cond

	// signalled when the CPU goroutine stops executing
	idleCond *sync.Cond

	state State

	// copy of state for lock free reads
	atomicState atomic.Int32

	// the CPU goroutine is executing a slice or a job
	threadActive bool

	// PauseAndLock() has been called with lock set to true. slices and jobs
	// will not be executed while this is true
	pausedAndLocked bool

	// Break() was called while paused and locked. the CPU will remain
	// stepping when the lock is released, regardless of the unpause argument
	requestStepping bool

	// goroutine that was declared as the CPU by PauseAndLock()
	fake *identity.Token

	// functions to run on the CPU goroutine
	jobs []func()

	// closed when Run() returns
	done chan struct{}

	slices atomic.Uint64
}

// NewCPU is the preferred method of initialisation for the CPU type. The CPU is
// created in the Stepping state. Adjacent systems are given in the order they
// should be notified.
func NewCPU(core Core, ids *identity.Registry, adjacent ...Adjacent) *CPU {
	c := &CPU{
		core:     core,
		ids:      ids,
		adjacent: adjacent,
		state:    Stepping,
		done:     make(chan struct{}),
	}
	c.stateCond = sync.NewCond(&c.crit)
	c.idleCond = sync.NewCond(&c.crit)
	c.atomicState.Store(int32(Stepping))
	return c
}

// setState must be called with the critical section held. returns false if
// the state could not be changed.
func (c *CPU) setState(s State) bool {
	if c.state == PowerDown {
		return false
	}
	c.state = s
	c.atomicState.Store(int32(s))
	return true
}

// waitForIdle must be called with the critical section held. the wait is
// skipped if the calling goroutine is the CPU because it would never end.
func (c *CPU) waitForIdle() {
	if c.ids.Is(identity.CPU) {
		return
	}
	for c.threadActive {
		c.idleCond.Wait()
	}
}

func (c *CPU) runAdjacentSystems(running bool) {
	for _, a := range c.adjacent {
		a.SetRunning(running)
	}
}

// Run is the CPU loop. It returns once Stop() has been called.
//
// Pending jobs are run before the next slice. Jobs that are still pending when
// the loop ends are discarded.
func (c *CPU) Run() {
	defer close(c.done)

	c.crit.Lock()
	defer c.crit.Unlock()

	logger.Log(logger.Allow, "cpu", "run loop started")

	for c.state != PowerDown {
		if !c.pausedAndLocked && len(c.jobs) > 0 {
			c.runJobs()
			continue
		}

		if c.state == Running && !c.pausedAndLocked {
			c.threadActive = true
			c.crit.Unlock()
			c.core.RunSlice()
			c.slices.Add(1)
			c.crit.Lock()
			c.threadActive = false
			c.idleCond.Broadcast()
			continue
		}

		c.stateCond.Wait()
	}

	if len(c.jobs) > 0 {
		logger.Logf(logger.Allow, "cpu", "discarding %d pending jobs", len(c.jobs))
		clear(c.jobs)
		c.jobs = c.jobs[:0]
	}

	logger.Log(logger.Allow, "cpu", "run loop ended")
}

// runJobs must be called with the critical section held
func (c *CPU) runJobs() {
	jobs := c.jobs
	c.jobs = nil

	c.threadActive = true
	c.crit.Unlock()
	for _, j := range jobs {
		j()
	}
	c.crit.Lock()
	c.threadActive = false
	c.idleCond.Broadcast()
}

// EnableStepping stops or restarts the execution of slices. When stepping is
// enabled the function waits for the CPU goroutine to become idle.
func (c *CPU) EnableStepping(stepping bool) {
	c.crit.Lock()
	defer c.crit.Unlock()

	if stepping {
		c.setState(Stepping)
		c.waitForIdle()
		c.runAdjacentSystems(false)
		return
	}

	if c.setState(Running) {
		c.stateCond.Broadcast()
		c.runAdjacentSystems(true)
	}
}

// Break puts the CPU into the stepping state without waiting for the CPU
// goroutine to become idle. It is safe to call from the CPU goroutine.
//
// If the CPU is currently paused and locked then the break is deferred until
// the lock is released.
func (c *CPU) Break() {
	c.crit.Lock()
	defer c.crit.Unlock()

	if c.pausedAndLocked {
		c.requestStepping = true
		return
	}

	c.setState(Stepping)
	c.runAdjacentSystems(false)
}

// Stop the CPU loop. The CPU enters the PowerDown state and Run() will return
// once the current slice or job has completed.
func (c *CPU) Stop() {
	c.crit.Lock()
	defer c.crit.Unlock()
	c.setState(PowerDown)
	c.stateCond.Broadcast()
}

// PauseAndLock stops the CPU and prevents it from running until it is called
// again with lock set to false.
//
// When locking, the return value is true if the CPU was running at the moment
// of the call. The goroutine that locks the CPU is declared as the CPU
// goroutine until the lock is released, if it is not already.
//
// When unlocking, the CPU is put back into the running state if
// unpauseOnUnlock is true and Break() has not been called in the meantime.
//
// If controlAdjacent is true then the adjacent systems are also stopped and
// restarted.
func (c *CPU) PauseAndLock(lock bool, unpauseOnUnlock bool, controlAdjacent bool) bool {
	wasRunning := true

	if lock {
		c.crit.Lock()
		c.pausedAndLocked = true
		wasRunning = c.state == Running
		c.setState(Stepping)
		c.waitForIdle()
		if controlAdjacent {
			c.runAdjacentSystems(false)
		}
		c.crit.Unlock()

		if !c.ids.Is(identity.CPU) {
			c.fake = c.ids.Declare(identity.CPU)
		}

		return wasRunning
	}

	if c.fake != nil {
		c.fake.Release()
		c.fake = nil
	}

	c.crit.Lock()
	defer c.crit.Unlock()

	if c.requestStepping {
		c.requestStepping = false
	} else if unpauseOnUnlock && c.setState(Running) {
		wasRunning = true
	}
	c.pausedAndLocked = false
	c.stateCond.Broadcast()

	if controlAdjacent {
		c.runAdjacentSystems(c.state == Running)
	}

	return wasRunning
}

// AddJob queues a function to be run on the CPU goroutine. Jobs are run in
// order, before the next slice, even if the CPU is stepping. Jobs are not run
// while the CPU is paused and locked.
func (c *CPU) AddJob(fn func()) {
	c.crit.Lock()
	defer c.crit.Unlock()
	c.jobs = append(c.jobs, fn)
	c.stateCond.Broadcast()
}

// State returns the current state of the CPU.
func (c *CPU) State() State {
	return State(c.atomicState.Load())
}

// IsStepping returns true if the CPU is in the Stepping state.
func (c *CPU) IsStepping() bool {
	return c.State() == Stepping
}

// Done returns a channel that is closed when the Run() loop has ended.
func (c *CPU) Done() <-chan struct{} {
	return c.done
}

// Slices returns the number of slices that have been executed.
func (c *CPU) Slices() uint64 {
	return c.slices.Load()
}
