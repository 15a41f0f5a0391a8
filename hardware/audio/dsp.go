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
	"errors"
	"io"
	"os"
	"sync"

	"github.com/hajimehoshi/go-mp3"
	"github.com/jetsetilly/quiesce/curated"
	"github.com/jetsetilly/quiesce/logger"
)

// the length of a tone period in samples. the tone is a square wave
const tonePeriod = 64

// amplitude of the tone
const toneVolume = 4096

// DSP produces the audio for each field of emulation. The audio is a simple
// tone, mixed with an optional recording loaded from an MP3 file. Samples are
// pushed to a Stream.
type DSP struct {
	stream *Stream

	crit   sync.Mutex
	locked bool

	// position of the tone
	phase int

	// source recording. left channel only
	source    []int
	sourceIdx int
}

// NewDSP is the preferred method of initialisation for the DSP type.
func NewDSP(stream *Stream) *DSP {
	return &DSP{
		stream: stream,
	}
}

// Init the DSP. The source is the filename of an MP3 recording that will be
// mixed with the tone. The source can be empty.
func (dsp *DSP) Init(source string) error {
	dsp.crit.Lock()
	defer dsp.crit.Unlock()

	dsp.phase = 0
	dsp.source = nil
	dsp.sourceIdx = 0

	if source == "" {
		return nil
	}

	f, err := os.Open(source)
	if err != nil {
		return curated.Errorf("dsp: %v", err)
	}
	defer f.Close()

	data, err := decodeMP3(f)
	if err != nil {
		return curated.Errorf("dsp: %v", err)
	}
	dsp.source = data

	logger.Logf(logger.Allow, "dsp", "%d samples loaded from %s", len(data), source)
	return nil
}

// decodeMP3 returns the samples of the left channel of the MP3 stream.
func decodeMP3(r io.Reader) ([]int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}

	var data []int

	// "The stream is always formatted as 16bit (little endian) 2 channels
	// even if the source is single channel MP3. Thus, a sample always
	// consists of 4 bytes"
	chunk := make([]byte, 4096)
	for {
		n, err := dec.Read(chunk)
		for i := 0; i+1 < n; i += 4 {
			data = append(data, int(int16(uint16(chunk[i])|uint16(chunk[i+1])<<8)))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	logger.Logf(logger.Allow, "dsp", "mp3 sample rate: %dHz", dec.SampleRate())
	return data, nil
}

// Field produces the specified number of samples and pushes them to the
// stream. Nothing is produced while the DSP is paused and locked.
func (dsp *DSP) Field(samples int) {
	dsp.crit.Lock()
	if dsp.locked {
		dsp.crit.Unlock()
		return
	}

	out := make([]int, samples)
	for i := range out {
		v := toneVolume
		if dsp.phase >= tonePeriod/2 {
			v = -toneVolume
		}
		dsp.phase = (dsp.phase + 1) % tonePeriod

		if len(dsp.source) > 0 {
			v = (v + dsp.source[dsp.sourceIdx]) / 2
			dsp.sourceIdx = (dsp.sourceIdx + 1) % len(dsp.source)
		}

		out[i] = v
	}
	dsp.crit.Unlock()

	if dsp.stream != nil {
		dsp.stream.Push(out)
	}
}

// PauseAndLock prevents the DSP from producing audio until it is called again
// with lock set to false.
func (dsp *DSP) PauseAndLock(lock bool, unpauseOnUnlock bool) {
	dsp.crit.Lock()
	defer dsp.crit.Unlock()
	dsp.locked = lock
}

// Shutdown the DSP.
func (dsp *DSP) Shutdown() {
	dsp.crit.Lock()
	defer dsp.crit.Unlock()
	dsp.source = nil
	dsp.sourceIdx = 0
}
