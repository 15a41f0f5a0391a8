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
	"fmt"
	"strings"
	"time"

	"github.com/jetsetilly/quiesce/version"
)

// the interval between updates of the title
const titleInterval = 500 * time.Millisecond

// fieldCallbacks implements the machine.Callbacks interface
type fieldCallbacks struct {
	s *Session
}

func (cb fieldCallbacks) NewField() {
	cb.s.onNewField()
}

func (cb fieldCallbacks) OnFrameEnd() {
	cb.s.OnFrameEnd()
}

func (cb fieldCallbacks) VideoThrottle() {
	cb.s.videoThrottle()
}

func (cb fieldCallbacks) Speed() float64 {
	sp := cb.s.metrics.Speed(float64(cb.s.limiter.IdealRate()))
	if sp == 0 {
		return 1.0
	}
	return sp
}

// videoThrottle is called by the CPU goroutine at the end of every field
func (s *Session) videoThrottle() {
	s.metrics.CountVBlank()

	if !s.throttlerTempDisabled.Load() {
		s.limiter.CheckField()
	}

	if now := time.Now(); now.Sub(s.titleTime) >= titleInterval || s.frameStep.Load() {
		s.titleTime = now
		s.updateTitle()
	}
}

// updateTitle sends a summary of the session's performance to the host
func (s *Session) updateTitle() {
	fps, vps := s.metrics.Sample()
	speed := s.metrics.Speed(float64(s.limiter.IdealRate()))

	var b strings.Builder
	b.WriteString(version.ApplicationName)
	if n := s.name.Load().(string); n != "" {
		b.WriteString(" | ")
		b.WriteString(n)
	}
	if sys := s.system.Load(); sys != nil {
		b.WriteString(" | ")
		b.WriteString(sys.Config.Topology.String())
	}
	b.WriteString(fmt.Sprintf(" | FPS: %.0f - VPS: %.0f - %.0f%%", fps, vps, speed*100))

	s.host.UpdateTitle(b.String())
}

// SetThrottlerTempDisabled disables the frame limiter until it is called again
// with false. This is independent of the Throttle preference.
func (s *Session) SetThrottlerTempDisabled(disable bool) {
	s.throttlerTempDisabled.Store(disable)
}

// IsThrottlerTempDisabled returns true if the frame limiter has been
// temporarily disabled.
func (s *Session) IsThrottlerTempDisabled() bool {
	return s.throttlerTempDisabled.Load()
}
