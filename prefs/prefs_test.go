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

package prefs_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jetsetilly/quiesce/prefs"
	"github.com/jetsetilly/quiesce/test"
)

func tmpPrefFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "quiesce_prefs_test.yaml")
}

func TestBool(t *testing.T) {
	var v prefs.Bool
	test.ExpectEquality(t, v.Get().(bool), false)

	test.ExpectSuccess(t, v.Set(true))
	test.ExpectEquality(t, v.Get().(bool), true)
	test.ExpectSuccess(t, v.Set("foo"))
	test.ExpectEquality(t, v.Get().(bool), false)
	test.ExpectSuccess(t, v.Set("TRUE"))
	test.ExpectEquality(t, v.String(), "true")
	test.ExpectFailure(t, v.Set(1))
}

func TestInt(t *testing.T) {
	var v prefs.Int
	test.ExpectSuccess(t, v.Set(10))
	test.ExpectEquality(t, v.Get().(int), 10)

	// test string conversion to int
	test.ExpectSuccess(t, v.Set("99"))
	test.ExpectEquality(t, v.Get().(int), 99)

	test.ExpectFailure(t, v.Set("---"))
	test.ExpectFailure(t, v.Set(1.0))
	test.ExpectEquality(t, v.Get().(int), 99)
}

func TestFloat(t *testing.T) {
	var v prefs.Float
	test.ExpectSuccess(t, v.Set(1.5))
	test.ExpectEquality(t, v.String(), "1.500")
	test.ExpectSuccess(t, v.Set(2))
	test.ExpectEquality(t, v.Get().(float64), 2.0)
	test.ExpectSuccess(t, v.Set("0.25"))
	test.ExpectEquality(t, v.Get().(float64), 0.25)
	test.ExpectFailure(t, v.Set("x"))
}

func TestHooks(t *testing.T) {
	var v prefs.String

	var post string
	v.SetHookPost(func(nv prefs.Value) error {
		post = nv.(string)
		return nil
	})
	v.SetHookPre(func(nv prefs.Value) error {
		if nv.(string) == "bad" {
			return errors.New("bad value")
		}
		return nil
	})

	test.ExpectSuccess(t, v.Set("good"))
	test.ExpectEquality(t, post, "good")

	test.ExpectFailure(t, v.Set("bad"))
	test.ExpectEquality(t, v.String(), "good")
	test.ExpectEquality(t, post, "good")
}

func TestDiskRoundTrip(t *testing.T) {
	fn := tmpPrefFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var b prefs.Bool
	var i prefs.Int
	var f prefs.Float
	var s prefs.String
	test.ExpectSuccess(t, dsk.Add("session.boottopause", &b))
	test.ExpectSuccess(t, dsk.Add("session.pads", &i))
	test.ExpectSuccess(t, dsk.Add("session.fpslimit", &f))
	test.ExpectSuccess(t, dsk.Add("video.backend", &s))

	// keys must be unique
	test.ExpectFailure(t, dsk.Add("session.pads", &i))

	b.Set(true)
	i.Set(4)
	f.Set(50.0)
	s.Set("software")
	test.DemandSuccess(t, dsk.Save())

	data, err := os.ReadFile(fn)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.HasPrefix(string(data), prefs.WarningBoilerPlate))

	dsk2, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var b2 prefs.Bool
	var i2 prefs.Int
	var f2 prefs.Float
	var s2 prefs.String
	dsk2.Add("session.boottopause", &b2)
	dsk2.Add("session.pads", &i2)
	dsk2.Add("session.fpslimit", &f2)
	dsk2.Add("video.backend", &s2)
	test.DemandSuccess(t, dsk2.Load())

	test.ExpectEquality(t, b2.Get().(bool), true)
	test.ExpectEquality(t, i2.Get().(int), 4)
	test.ExpectEquality(t, f2.Get().(float64), 50.0)
	test.ExpectEquality(t, s2.String(), "software")
}

func TestDiskPreservesUnknownEntries(t *testing.T) {
	fn := tmpPrefFile(t)
	test.DemandSuccess(t, os.WriteFile(fn, []byte("other:\n  value: 7\n"), 0o644))

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var b prefs.Bool
	dsk.Add("session.dualthread", &b)
	b.Set(true)
	test.DemandSuccess(t, dsk.Save())

	data, err := os.ReadFile(fn)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(string(data), "value: 7"))
	test.ExpectSuccess(t, strings.Contains(string(data), "dualthread: true"))
}

func TestDiskMissingFile(t *testing.T) {
	dsk, err := prefs.NewDisk(tmpPrefFile(t))
	test.DemandSuccess(t, err)

	var b prefs.Bool
	dsk.Add("session.boottopause", &b)
	test.ExpectSuccess(t, dsk.Load())
	test.ExpectEquality(t, b.Get().(bool), false)

	_, err = prefs.NewDisk("")
	test.ExpectFailure(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	fn := tmpPrefFile(t)
	test.DemandSuccess(t, os.WriteFile(fn, []byte("session:\n  fpslimit: 60\n"), 0o644))
	t.Setenv("QUIESCE_SESSION_FPSLIMIT", "30")

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var f prefs.Float
	dsk.Add("session.fpslimit", &f)
	test.DemandSuccess(t, dsk.Load())
	test.ExpectEquality(t, f.Get().(float64), 30.0)
}

func TestCommandLineOverride(t *testing.T) {
	fn := tmpPrefFile(t)
	test.DemandSuccess(t, os.WriteFile(fn, []byte("session:\n  boottopause: false\n"), 0o644))

	prefs.PushCommandLineStack("session.boottopause::true; unused::1")
	defer prefs.PopCommandLineStack()

	dsk, err := prefs.NewDisk(fn)
	test.DemandSuccess(t, err)

	var b prefs.Bool
	dsk.Add("session.boottopause", &b)
	test.DemandSuccess(t, dsk.Load())
	test.ExpectEquality(t, b.Get().(bool), true)
}

func TestCommandLineStack(t *testing.T) {
	// empty on start
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "")

	// single value but with additional space
	prefs.PushCommandLineStack("   foo:: bar ")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "foo::bar")

	// remaining string will be sorted
	prefs.PushCommandLineStack("foo::bar; baz::qux")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "baz::qux; foo::bar")

	// (partially) invalid prefs string
	prefs.PushCommandLineStack("foo_bar;baz::qux")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "baz::qux")

	// groups are stacked
	prefs.PushCommandLineStack("foo::bar")
	prefs.PushCommandLineStack("baz::qux")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "baz::qux")
	test.ExpectEquality(t, prefs.PopCommandLineStack(), "foo::bar")
}
