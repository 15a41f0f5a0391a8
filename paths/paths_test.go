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

package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/quiesce/paths"
	"github.com/jetsetilly/quiesce/test"
)

func TestLocalPaths(t *testing.T) {
	t.Chdir(t.TempDir())
	test.DemandSuccess(t, os.Mkdir(".quiesce", 0o700))

	test.ExpectEquality(t, paths.ResourcePath("foo", "bar"), filepath.Join(".quiesce", "foo", "bar"))
	test.ExpectEquality(t, paths.ResourcePath(), ".quiesce")

	pth, err := paths.ResourceDir("captures")
	test.DemandSuccess(t, err)
	fi, err := os.Stat(pth)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, fi.IsDir())
}

func TestUserConfigPaths(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfg)
	t.Setenv("HOME", cfg)
	t.Setenv("AppData", cfg)

	base, err := os.UserConfigDir()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, paths.ResourcePath("quiesce.yaml"), filepath.Join(base, "quiesce", "quiesce.yaml"))
}
