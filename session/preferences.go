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
	"github.com/jetsetilly/quiesce/curated"
	"github.com/jetsetilly/quiesce/govern"
	"github.com/jetsetilly/quiesce/hardware/gpu"
	"github.com/jetsetilly/quiesce/prefs"
)

// Preferences for a session. Changes to the values take effect the next time
// a session is started, with the exception of Throttle and FPSLimit which
// take effect immediately.
type Preferences struct {
	dsk *prefs.Disk

	// run the CPU in its own goroutine
	DualThread prefs.Bool

	// the session will be paused once it has started
	BootToPause prefs.Bool

	// limit the speed of emulation to FPSLimit
	Throttle prefs.Bool
	FPSLimit prefs.Float

	VideoBackend prefs.String

	// filename of WAV file to record the audio to
	WavFile prefs.String

	// filename of MP3 file to mix with the audio
	StreamFile prefs.String

	Rumble prefs.Bool

	// accept controller input even if the renderer does not have focus
	BackgroundInput prefs.Bool

	// number of controller pads
	Pads prefs.Int
}

func (p *Preferences) String() string {
	if p.dsk == nil {
		return "session preferences"
	}
	return p.dsk.Path()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type. Values are set to their defaults and then loaded from the
// prefs file. An empty path means that the preferences are not backed by a
// file.
func NewPreferences(path string) (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	if path == "" {
		return p, nil
	}

	var err error
	p.dsk, err = prefs.NewDisk(path)
	if err != nil {
		return nil, curated.Errorf("session: %v", err)
	}

	for key, v := range map[string]prefs.Pref{
		"session.dualthread":      &p.DualThread,
		"session.boottopause":     &p.BootToPause,
		"session.throttle":        &p.Throttle,
		"session.fpslimit":        &p.FPSLimit,
		"session.videobackend":    &p.VideoBackend,
		"session.wavfile":         &p.WavFile,
		"session.streamfile":      &p.StreamFile,
		"session.rumble":          &p.Rumble,
		"session.backgroundinput": &p.BackgroundInput,
		"session.pads":            &p.Pads,
	} {
		if err := p.dsk.Add(key, v); err != nil {
			return nil, curated.Errorf("session: %v", err)
		}
	}

	if err := p.dsk.Load(); err != nil {
		return nil, curated.Errorf("session: %v", err)
	}

	return p, nil
}

// SetDefaults reverts all preferences to their default values.
func (p *Preferences) SetDefaults() {
	p.DualThread.Set(true)
	p.BootToPause.Set(false)
	p.Throttle.Set(true)
	p.FPSLimit.Set(60.0)
	p.VideoBackend.Set(gpu.BackendSoftware)
	p.WavFile.Set("")
	p.StreamFile.Set("")
	p.Rumble.Set(true)
	p.BackgroundInput.Set(false)
	p.Pads.Set(4)
}

// Load preferences from disk. Does nothing if the preferences are not backed
// by a file.
func (p *Preferences) Load() error {
	if p.dsk == nil {
		return nil
	}
	if err := p.dsk.Load(); err != nil {
		return curated.Errorf("session: %v", err)
	}
	return nil
}

// Save preferences to disk. Does nothing if the preferences are not backed by
// a file.
func (p *Preferences) Save() error {
	if p.dsk == nil {
		return nil
	}
	if err := p.dsk.Save(); err != nil {
		return curated.Errorf("session: %v", err)
	}
	return nil
}

// Topology returns the thread topology indicated by the DualThread value.
func (p *Preferences) Topology() govern.Topology {
	if p.DualThread.Get().(bool) {
		return govern.DualThread
	}
	return govern.SingleThread
}
