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

package session

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jetsetilly/quiesce/hardware"
	"github.com/jetsetilly/quiesce/hostjobs"
	"github.com/jetsetilly/quiesce/identity"
	"github.com/jetsetilly/quiesce/performance"
	"github.com/jetsetilly/quiesce/prefs"
)

// FrameListener is notified at the end of every field of emulation, on the CPU
// goroutine. DoFrame() should not block.
type FrameListener interface {
	DoFrame()
}

// MemoryWatcher inspects emulated memory at the end of every field. Start() is
// called on the CPU goroutine when the CPU starts and Step() is called on the
// CPU goroutine at the end of every field.
type MemoryWatcher interface {
	Start()
	Step()
}

// Session is the emulation session. Only one emulation runs in a session at any
// one time but a session can be started and stopped any number of times.
type Session struct {
	Prefs *Preferences

	host Host
	ids  *identity.Registry
	jobs *hostjobs.Queue

	observers observers
	gate      pauseGate

	// the three flags that the run state is derived from. see State()
	isStopping    atomic.Bool
	hwInitialised atomic.Bool
	isBooting     atomic.Bool

	// the CPU loop has started and not yet ended
	isStarted atomic.Bool

	// frame step has been requested and a new frame has been presented. see
	// DoFrameStep()
	frameStep     atomic.Bool
	stopFrameStep atomic.Bool

	wantDeterminism       atomic.Bool
	throttlerTempDisabled atomic.Bool

	// the hardware of the current emulation. nil if there is no emulation
	system atomic.Pointer[hardware.System]

	// the emulation goroutine. emuDone is closed when the goroutine ends
	emuCrit sync.Mutex
	emuDone chan struct{}
	id      atomic.Value // string
	name    atomic.Value // string

	// elapsed time of the emulation. the offset is captured on pause and is
	// used to restart the timer on resume
	timer       *performance.Timer
	clockCrit   sync.Mutex
	clockOffset time.Duration
	clockPaused bool

	metrics *performance.Metrics
	limiter *performance.Limiter

	// speed of emulation of the most recently presented frame
	actualSpeed atomic.Uint64 // float64 bits

	// the time of the last title update. only accessed by the CPU goroutine
	titleTime time.Time

	hooksCrit     sync.RWMutex
	frameListener FrameListener
	memoryWatcher MemoryWatcher
}

// NewSession is the preferred method of initialisation for the Session type.
// The host can be nil, in which case the session uses a ChannelHost that is
// never served. Preferences can also be nil, in which case default preferences
// are used.
func NewSession(host Host, p *Preferences) *Session {
	if host == nil {
		host = NewChannelHost()
	}

	if p == nil {
		p, _ = NewPreferences("")
	}

	s := &Session{
		Prefs:   p,
		host:    host,
		ids:     identity.NewRegistry(),
		timer:   performance.NewTimer(),
		metrics: performance.NewMetrics(),
		limiter: performance.NewLimiter(),
	}
	s.jobs = hostjobs.NewQueue(s)
	s.gate.cond = sync.NewCond(&s.gate.crit)
	s.id.Store("")
	s.name.Store("")
	s.setActualSpeed(1.0)

	s.limiter.Active.Store(s.Prefs.Throttle.Get().(bool))
	s.Prefs.Throttle.SetHookPost(func(v prefs.Value) error {
		s.limiter.Active.Store(v.(bool))
		return nil
	})

	s.limiter.SetRate(float32(s.Prefs.FPSLimit.Get().(float64)))
	s.Prefs.FPSLimit.SetHookPost(func(v prefs.Value) error {
		s.limiter.SetRate(float32(v.(float64)))
		return nil
	})

	return s
}

// SetFrameListener sets the listener to be notified at the end of every field.
// A nil value removes the listener.
func (s *Session) SetFrameListener(l FrameListener) {
	s.hooksCrit.Lock()
	defer s.hooksCrit.Unlock()
	s.frameListener = l
}

// SetMemoryWatcher sets the memory watcher. A nil value removes the watcher.
func (s *Session) SetMemoryWatcher(w MemoryWatcher) {
	s.hooksCrit.Lock()
	defer s.hooksCrit.Unlock()
	s.memoryWatcher = w
}

// OnFrameEnd should be called at the end of every field of emulation, on the
// CPU goroutine.
func (s *Session) OnFrameEnd() {
	s.hooksCrit.RLock()
	w := s.memoryWatcher
	l := s.frameListener
	s.hooksCrit.RUnlock()

	if w != nil {
		w.Step()
	}
	if l != nil {
		l.DoFrame()
	}
}

// SessionID returns the unique identifier of the current, or most recent,
// emulation. Returns the empty string if no emulation has been started.
func (s *Session) SessionID() string {
	return s.id.Load().(string)
}

// Name returns the name of the current, or most recent, boot image.
func (s *Session) Name() string {
	return s.name.Load().(string)
}

// ActualEmulationSpeed returns the speed of emulation as measured when the
// most recent frame was presented. A value of 1.0 is full speed.
func (s *Session) ActualEmulationSpeed() float64 {
	return math.Float64frombits(s.actualSpeed.Load())
}

func (s *Session) setActualSpeed(speed float64) {
	s.actualSpeed.Store(math.Float64bits(speed))
}

// ElapsedTime returns the wall-clock time the emulation has been running for.
// Time spent paused is not included.
func (s *Session) ElapsedTime() time.Duration {
	s.clockCrit.Lock()
	defer s.clockCrit.Unlock()
	if s.clockPaused {
		return s.clockOffset
	}
	return s.timer.Elapsed()
}

// stopClock captures the elapsed time. ElapsedTime() will return the captured
// value until restartClock() is called
func (s *Session) stopClock() {
	s.clockCrit.Lock()
	defer s.clockCrit.Unlock()
	if !s.clockPaused {
		s.clockPaused = true
		s.clockOffset = s.timer.Elapsed()
	}
}

// restartClock continues the timer from the value captured by stopClock()
func (s *Session) restartClock() {
	s.clockCrit.Lock()
	defer s.clockCrit.Unlock()
	if s.clockPaused {
		s.clockPaused = false
		s.timer.StartWithOffset(s.clockOffset)
		s.clockOffset = 0
	}
}

// resetClock starts the timer from zero
func (s *Session) resetClock() {
	s.clockCrit.Lock()
	defer s.clockCrit.Unlock()
	s.clockPaused = false
	s.clockOffset = 0
	s.timer.Start()
}

// Metrics returns the frame metrics of the session.
func (s *Session) Metrics() *performance.Metrics {
	return s.metrics
}

// Limiter returns the frame limiter of the session.
func (s *Session) Limiter() *performance.Limiter {
	return s.limiter
}

// System returns the hardware of the current emulation. Returns nil if there
// is no emulation.
//
// The hardware should only be accessed from the CPU goroutine or from inside a
// RunAsCPUThread() function.
func (s *Session) System() *hardware.System {
	return s.system.Load()
}
