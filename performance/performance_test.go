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

package performance_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jetsetilly/quiesce/performance"
	"github.com/jetsetilly/quiesce/test"
)

// clock is a manually advanced clock for the Timer
type clock struct {
	t time.Time
}

func (c *clock) now() time.Time {
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestTimerOffset(t *testing.T) {
	c := &clock{t: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)}
	tmr := performance.NewTimer()
	tmr.SetClock(c.now)

	c.advance(3 * time.Second)
	test.ExpectEquality(t, tmr.Elapsed(), 3*time.Second)

	// pause: capture the offset
	offset := tmr.Elapsed()

	// time spent paused is not counted
	c.advance(10 * time.Second)

	// resume from the offset
	tmr.StartWithOffset(offset)
	test.ExpectEquality(t, tmr.Elapsed(), 3*time.Second)

	c.advance(2 * time.Second)
	test.ExpectEquality(t, tmr.Elapsed(), 5*time.Second)

	tmr.Start()
	test.ExpectEquality(t, tmr.Elapsed(), time.Duration(0))
}

func TestMetrics(t *testing.T) {
	m := performance.NewMetrics()
	for range 10 {
		m.CountFrame()
		m.CountVBlank()
		m.CountVBlank()
	}
	test.ExpectEquality(t, m.Frames(), uint64(10))
	test.ExpectEquality(t, m.VBlanks(), uint64(20))

	time.Sleep(10 * time.Millisecond)
	fps, vps := m.Sample()
	test.ExpectSuccess(t, fps > 0)
	test.ExpectApproximate(t, vps, fps*2, 0.001)
	test.ExpectSuccess(t, m.Speed(vps) > 0.99)
	test.ExpectEquality(t, m.Speed(0), 0.0)

	m.Reset()
	test.ExpectEquality(t, m.Frames(), uint64(0))
}

// tolerance of measurement
const measurementTolerance = 0.1

func TestLimiter(t *testing.T) {
	lmtr := performance.NewLimiter()
	defer lmtr.Stop()

	rate := float32(100.0)
	lmtr.SetRate(rate)
	test.ExpectEquality(t, lmtr.IdealRate(), rate)

	start := time.Now()
	for range int(rate) {
		lmtr.CheckField()
	}
	elapsed := time.Since(start).Seconds()
	test.ExpectApproximate(t, elapsed, 1.0, measurementTolerance)
}

func TestLimiterInactive(t *testing.T) {
	lmtr := performance.NewLimiter()
	defer lmtr.Stop()

	lmtr.SetRate(1.0)
	lmtr.Active.Store(false)

	start := time.Now()
	for range 100 {
		lmtr.CheckField()
	}
	test.ExpectSuccess(t, time.Since(start) < 100*time.Millisecond)
}

func TestLimiterNudge(t *testing.T) {
	lmtr := performance.NewLimiter()
	defer lmtr.Stop()

	lmtr.SetRate(1.0)
	lmtr.Nudge.Store(10)

	start := time.Now()
	for range 10 {
		lmtr.CheckField()
	}
	test.ExpectSuccess(t, time.Since(start) < 100*time.Millisecond)
	test.ExpectEquality(t, lmtr.Nudge.Load(), int32(0))
}

func TestProfiler(t *testing.T) {
	dir := t.TempDir()
	p := performance.Profile{
		CPU: filepath.Join(dir, "cpu.profile"),
		Mem: filepath.Join(dir, "mem.profile"),
	}

	var ran bool
	err := performance.RunProfiler(p, func() error {
		ran = true
		return nil
	})
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, ran)

	_, err = os.Stat(p.CPU)
	test.ExpectSuccess(t, err)
	_, err = os.Stat(p.Mem)
	test.ExpectSuccess(t, err)
}
