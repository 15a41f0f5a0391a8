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

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jetsetilly/quiesce/test"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out test.Writer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, strings.HasPrefix(out, "Quiesce "))
}

func TestRunArguments(t *testing.T) {
	_, err := execute(t, "run")
	test.ExpectFailure(t, err)

	_, err = execute(t, "run", "--noterm", "--prefs=", filepath.Join(t.TempDir(), "missing.bin"))
	test.ExpectFailure(t, err)
}

func TestRunHeadless(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "headless.bin")
	test.DemandSuccess(t, os.WriteFile(image, []byte("headless"), 0o644))
	graph := filepath.Join(dir, "headless.dot")

	for _, dual := range []string{"--dual=false", "--dual=true"} {
		out, err := execute(t, "run", "--noterm", "--prefs=", "--backend", "null", "--fps", "120",
			"--duration", "250ms", "--dumpgraph", graph, dual, image)
		test.ExpectSuccess(t, err)
		test.ExpectSuccess(t, strings.Contains(out, "headless: "), out)
	}

	data, err := os.ReadFile(graph)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(string(data), "digraph"))
}
