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

package hardware

import (
	"time"

	"github.com/jetsetilly/quiesce/govern"
	"github.com/jetsetilly/quiesce/hardware/audio"
	"github.com/jetsetilly/quiesce/hardware/cpu"
	"github.com/jetsetilly/quiesce/hardware/expansion"
	"github.com/jetsetilly/quiesce/hardware/gpu"
	"github.com/jetsetilly/quiesce/hardware/input"
	"github.com/jetsetilly/quiesce/hardware/machine"
	"github.com/jetsetilly/quiesce/identity"
)

// Config is the configuration of a System.
type Config struct {
	Topology govern.Topology

	// name of the video backend. see gpu.Backends()
	VideoBackend string

	// file to write audio to. can be empty
	WavFile string

	// MP3 file to mix into the audio. can be empty
	StreamFile string

	// number of pads and the interval at which they are polled
	Pads         int
	PollInterval time.Duration
	Source       input.Source
	Rumble       bool

	// the boot image
	Image []byte

	// overrides the frame checksums produced by the machine. can be nil
	FrameSource machine.FrameSource

	// number of frames that can be waiting for presentation in the
	// dual-thread topology
	QueueDepth int

	// number of memory cards attached to the expansion bus
	MemoryCards int
}

// System contains references to all the sub-systems of the emulated machine.
type System struct {
	Config Config

	CPU     *cpu.CPU
	GPU     *gpu.Fifo
	Stream  *audio.Stream
	DSP     *audio.DSP
	Bus     *expansion.Bus
	Input   *input.Controllers
	Machine *machine.Machine
}

// NewSystem is the preferred method of initialisation for the System type.
// None of the sub-systems are initialised until the Init() function of each
// stage has been called. See Stages().
func NewSystem(cfg Config, ids *identity.Registry, presenter gpu.Presenter, callbacks machine.Callbacks) *System {
	sys := &System{
		Config: cfg,
	}

	sys.Stream = audio.NewStream(cfg.WavFile)
	sys.DSP = audio.NewDSP(sys.Stream)
	sys.GPU = gpu.NewFifo(presenter, cfg.QueueDepth)
	sys.Input = input.NewControllers(cfg.Pads, cfg.Source, cfg.PollInterval)

	sys.Bus = expansion.NewBus()
	for i := range cfg.MemoryCards {
		sys.Bus.Attach(expansion.NewMemoryCard(i))
	}

	sys.Machine = machine.NewMachine(cfg.Image, sys.Input, sys.Bus, sys.DSP, sys.GPU, callbacks, cfg.FrameSource)

	// the GPU is notified before the sound stream
	sys.CPU = cpu.NewCPU(sys.Machine, ids, sys.GPU, sys.Stream)

	return sys
}

// List of stage names in the order they are returned by Stages().
const (
	StageSoundStream  = "sound stream"
	StageHardware     = "hardware"
	StageVideoBackend = "video backend"
	StageDSP          = "dsp"
)

// Stage is one step of the bring-up of the System.
type Stage struct {
	Name     string
	Init     func() error
	Shutdown func() error
}

// Stages returns the bring-up stages of the System in the order they should
// be initialised. Stages should be shutdown in the reverse order and only if
// the stage was successfully initialised.
func (sys *System) Stages() []Stage {
	return []Stage{
		{
			Name: StageSoundStream,
			Init: sys.Stream.Init,
			Shutdown: func() error {
				return sys.Stream.Shutdown()
			},
		},
		{
			Name: StageHardware,
			Init: func() error {
				sys.Input.EnableRumble(sys.Config.Rumble)
				sys.Input.Start()
				return nil
			},
			Shutdown: func() error {
				sys.Input.Stop()
				sys.Input.ResetRumble()
				return nil
			},
		},
		{
			Name: StageVideoBackend,
			Init: func() error {
				return sys.GPU.Init(sys.Config.VideoBackend)
			},
			Shutdown: func() error {
				sys.GPU.Shutdown()
				return nil
			},
		},
		{
			Name: StageDSP,
			Init: func() error {
				return sys.DSP.Init(sys.Config.StreamFile)
			},
			Shutdown: func() error {
				sys.DSP.Shutdown()
				return nil
			},
		},
	}
}
