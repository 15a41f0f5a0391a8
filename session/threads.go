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
	"github.com/google/uuid"
	"github.com/jetsetilly/quiesce/curated"
	"github.com/jetsetilly/quiesce/govern"
	"github.com/jetsetilly/quiesce/hardware"
	"github.com/jetsetilly/quiesce/hardware/input"
	"github.com/jetsetilly/quiesce/hardware/machine"
	"github.com/jetsetilly/quiesce/identity"
	"github.com/jetsetilly/quiesce/logger"
)

// Boot describes what the session should run.
type Boot struct {
	// name of the boot image. used in the title
	Name string

	Image []byte

	// overrides the checksum of each frame produced by the machine. can be
	// nil
	FrameSource machine.FrameSource

	// the source of controller input. can be nil
	Source input.Source
}

// Init starts a new emulation. The function returns once the emulation
// goroutine has been started. Progress of the emulation can be followed with
// Subscribe().
//
// Init will fail if an emulation is already running. If a previous emulation
// is stopping then Init() waits for it to end.
func (s *Session) Init(boot Boot) error {
	s.emuCrit.Lock()
	defer s.emuCrit.Unlock()

	if s.emuDone != nil {
		select {
		case <-s.emuDone:
		default:
			if s.IsRunning() || s.isBooting.Load() {
				return curated.Errorf(AlreadyRunning)
			}
			<-s.emuDone
		}
		s.emuDone = nil
	}

	// jobs left over from a previous emulation
	s.jobs.Drain()

	id := uuid.NewString()
	s.id.Store(id)
	s.name.Store(boot.Name)
	s.isBooting.Store(true)

	cfg := hardware.Config{
		Topology:     s.Prefs.Topology(),
		VideoBackend: s.Prefs.VideoBackend.String(),
		WavFile:      s.Prefs.WavFile.String(),
		StreamFile:   s.Prefs.StreamFile.String(),
		Pads:         s.Prefs.Pads.Get().(int),
		Source:       boot.Source,
		Rumble:       s.Prefs.Rumble.Get().(bool),
		Image:        boot.Image,
		FrameSource:  boot.FrameSource,
		MemoryCards:  2,
	}

	sys := hardware.NewSystem(cfg, s.ids, s, fieldCallbacks{s: s})
	s.system.Store(sys)

	logger.Logf(logger.Allow, "session", "starting %s (%s) in %s topology", boot.Name, id, cfg.Topology)

	done := make(chan struct{})
	s.emuDone = done
	go s.emuThread(sys, done)

	return nil
}

// emuThread brings up the hardware and then runs the CPU. In the dual-thread
// topology the CPU is run in a new goroutine and the emulation goroutine
// becomes the GPU goroutine.
func (s *Session) emuThread(sys *hardware.System, done chan struct{}) {
	defer close(done)

	s.broadcast(govern.Starting)

	gpuTok := s.ids.Declare(identity.GPU)
	defer gpuTok.Release()
	cpuTok := s.ids.Declare(identity.CPU)
	defer cpuTok.Release()

	// the flags are reset however the goroutine ends. this is deferred first
	// so that it runs after the hardware has been shutdown
	defer func() {
		s.isBooting.Store(false)
		s.isStarted.Store(false)
		s.isStopping.Store(false)
		s.wantDeterminism.Store(false)
		s.frameStep.Store(false)
		s.stopFrameStep.Store(false)
		s.system.Store(nil)
		s.setActualSpeed(1.0)

		logger.Log(logger.Allow, "session", "shutdown complete")
		s.broadcast(govern.Uninitialized)
		s.host.Message(MsgStopped)
	}()

	// stages that have been initialised. they are shutdown in reverse order
	var initialised []hardware.Stage
	defer func() {
		for i := len(initialised) - 1; i >= 0; i-- {
			st := initialised[i]
			if st.Name == hardware.StageHardware {
				s.hwInitialised.Store(false)
			}
			if err := st.Shutdown(); err != nil {
				logger.Logf(logger.Allow, "session", "%s: %v", st.Name, err)
			}
			logger.Logf(logger.Allow, "session", "%s: shutdown", st.Name)
		}
	}()

	for _, st := range sys.Stages() {
		if err := st.Init(); err != nil {
			logger.Logf(logger.Allow, "session", "%s: failed: %v", st.Name, err)
			s.host.DisplayMessage(err.Error(), errorMessageDuration)
			return
		}
		logger.Logf(logger.Allow, "session", "%s: initialised", st.Name)
		initialised = append(initialised, st)
	}

	sys.GPU.UpdateWantDeterminism(s.wantDeterminism.Load())
	s.UpdateInputGate(!s.Prefs.BackgroundInput.Get().(bool), false)

	s.hwInitialised.Store(true)
	s.isBooting.Store(false)

	// the CPU will not run until the initial state is set by the host job
	// queued by cpuThread()
	sys.CPU.Break()

	if sys.Config.Topology == govern.DualThread {
		cpuTok.Release()

		cpuDone := make(chan bool)
		go func() {
			defer close(cpuDone)
			s.cpuThread(sys)
		}()

		sys.GPU.RunGpuLoop()
		logger.Log(logger.Allow, "session", "GPU loop ended")

		<-cpuDone
	} else {
		s.cpuThread(sys)
	}

	logger.Log(logger.Allow, "session", "shutting down")
}

// cpuThread runs the CPU loop on the calling goroutine
func (s *Session) cpuThread(sys *hardware.System) {
	tok := s.ids.Declare(identity.CPU)
	defer tok.Release()

	s.metrics.Reset()
	s.resetClock()

	s.hooksCrit.RLock()
	w := s.memoryWatcher
	s.hooksCrit.RUnlock()
	if w != nil {
		w.Start()
	}

	s.isStarted.Store(true)

	bootToPause := s.Prefs.BootToPause.Get().(bool)
	s.QueueHostJob(func() {
		if bootToPause {
			s.SetState(govern.Paused)
		} else {
			s.SetState(govern.Running)
		}
		s.updateTitle()
	}, false)

	sys.CPU.Run()

	s.isStarted.Store(false)
}

// Stop the emulation. The function returns once the emulation has been told
// to stop, it does not wait for it to end. Use Shutdown() to wait for the
// emulation goroutine to end.
//
// Should be called from the host goroutine.
func (s *Session) Stop() {
	st := s.State()
	if st == govern.Stopping || st == govern.Uninitialized {
		return
	}

	// the stopping state must be visible before anything is torn down
	s.isStopping.Store(true)
	s.broadcast(govern.Stopping)

	logger.Log(logger.Allow, "session", "stop requested")

	// jobs left over from the running emulation
	if s.IsHostThread() {
		s.HostDispatchJobs()
	}

	sys := s.system.Load()
	if sys != nil {
		sys.GPU.EmulatorState(false)
		sys.CPU.Stop()
		if sys.Config.Topology == govern.DualThread {
			sys.GPU.ExitGpuLoop()
		}
	}

	s.setActualSpeed(1.0)
}

// Shutdown stops the emulation, if it is running, and waits for the emulation
// goroutine to end. Any remaining host jobs are dispatched.
//
// Should be called from the host goroutine.
func (s *Session) Shutdown() {
	s.Stop()

	s.emuCrit.Lock()
	done := s.emuDone
	s.emuDone = nil
	s.emuCrit.Unlock()

	if done != nil {
		<-done
	}

	s.HostDispatchJobs()
}

// Wait returns a channel that is closed when the current emulation goroutine
// ends. Returns nil if there is no emulation goroutine.
func (s *Session) Wait() <-chan struct{} {
	s.emuCrit.Lock()
	defer s.emuCrit.Unlock()
	if s.emuDone == nil {
		return nil
	}
	return s.emuDone
}

// QueueHostJob adds a function to the host job queue. The host is sent
// MsgJobDispatch if the queue was empty.
//
// Jobs are run by the host goroutine in the order they were queued. Jobs
// queued with runDuringStop set to false are discarded if the session is
// neither booting nor running by the time the job would be run.
func (s *Session) QueueHostJob(fn func(), runDuringStop bool) {
	if s.jobs.Enqueue(fn, runDuringStop) {
		s.host.Message(MsgJobDispatch)
	}
}

// HostDispatchJobs runs all queued host jobs. Should be called from the host
// goroutine, usually in response to MsgJobDispatch.
func (s *Session) HostDispatchJobs() {
	s.jobs.Drain()
}
