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

package session_test

import (
	"path/filepath"
	"testing"

	"github.com/jetsetilly/quiesce/govern"
	"github.com/jetsetilly/quiesce/session"
	"github.com/jetsetilly/quiesce/test"
)

func TestPreferencesDefaults(t *testing.T) {
	p, err := session.NewPreferences("")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.Topology(), govern.DualThread)
	test.ExpectEquality(t, p.VideoBackend.String(), "software")
	test.ExpectEquality(t, p.Pads.Get().(int), 4)
	test.ExpectSuccess(t, p.Save())
	test.ExpectSuccess(t, p.Load())
	test.ExpectEquality(t, p.String(), "session preferences")
}

func TestPreferencesRoundTrip(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "quiesce.yaml")

	p, err := session.NewPreferences(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.String(), fn)

	p.DualThread.Set(false)
	p.BootToPause.Set(true)
	p.FPSLimit.Set(50.0)
	p.VideoBackend.Set("null")
	test.DemandSuccess(t, p.Save())

	q, err := session.NewPreferences(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, q.Topology(), govern.SingleThread)
	test.ExpectEquality(t, q.BootToPause.Get().(bool), true)
	test.ExpectEquality(t, q.FPSLimit.Get().(float64), 50.0)
	test.ExpectEquality(t, q.VideoBackend.String(), "null")

	q.SetDefaults()
	test.ExpectEquality(t, q.Topology(), govern.DualThread)
}

func TestPreferencesChangeLimiter(t *testing.T) {
	p := preferences(t, govern.SingleThread)
	s := session.NewSession(nil, p)
	test.ExpectFailure(t, s.Limiter().Active.Load())

	p.Throttle.Set(true)
	test.ExpectSuccess(t, s.Limiter().Active.Load())
}
