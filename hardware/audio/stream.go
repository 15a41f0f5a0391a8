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

package audio

import (
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/jetsetilly/quiesce/curated"
	"github.com/jetsetilly/quiesce/logger"
)

// SampleRate of the audio produced by the DSP.
const SampleRate = 31440

// Stream is the output stage of the audio. If the Stream has been created with
// a filename then the audio is written to disk as a WAV file when the stream is
// shutdown. Audio data is buffered in memory in its entirety so this is
// probably only suitable for testing purposes.
//
// Stream implements the cpu.Adjacent interface. Samples pushed to the stream
// while the emulation is not running are discarded.
type Stream struct {
	filename string

	crit    sync.Mutex
	f       *os.File
	running bool
	buffer  []int
	pushed  int
}

// NewStream is the preferred method of initialisation for the Stream type. The
// filename can be empty, in which case audio is discarded.
func NewStream(filename string) *Stream {
	return &Stream{
		filename: filename,
	}
}

// Init the stream. The output file is created at this point so that a bad
// filename is reported before the emulation starts.
func (s *Stream) Init() error {
	s.crit.Lock()
	defer s.crit.Unlock()

	s.buffer = s.buffer[:0]
	s.pushed = 0

	if s.filename == "" {
		return nil
	}

	f, err := os.Create(s.filename)
	if err != nil {
		return curated.Errorf("sound stream: %v", err)
	}
	s.f = f

	logger.Logf(logger.Allow, "sound stream", "writing audio to %s", s.filename)
	return nil
}

// SetRunning implements the cpu.Adjacent interface.
func (s *Stream) SetRunning(running bool) {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.running = running
}

// Push samples to the stream.
func (s *Stream) Push(samples []int) {
	s.crit.Lock()
	defer s.crit.Unlock()

	if !s.running {
		return
	}

	s.pushed += len(samples)
	if s.f != nil {
		s.buffer = append(s.buffer, samples...)
	}
}

// Pushed returns the number of samples accepted by the stream since Init().
func (s *Stream) Pushed() int {
	s.crit.Lock()
	defer s.crit.Unlock()
	return s.pushed
}

// Shutdown the stream. If the stream is writing to a file then the buffered
// audio is encoded and the file is closed.
func (s *Stream) Shutdown() (rerr error) {
	s.crit.Lock()
	defer s.crit.Unlock()

	if s.f == nil {
		return nil
	}

	f := s.f
	s.f = nil
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = curated.Errorf("sound stream: %v", err)
		}
	}()

	enc := wav.NewEncoder(f, SampleRate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  SampleRate,
		},
		Data:           s.buffer,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return curated.Errorf("sound stream: %v", err)
	}
	if err := enc.Close(); err != nil {
		return curated.Errorf("sound stream: %v", err)
	}

	logger.Logf(logger.Allow, "sound stream", "%d samples written to %s", len(s.buffer), s.filename)
	s.buffer = s.buffer[:0]

	return nil
}
