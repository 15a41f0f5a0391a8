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

// Package version reports the version of the application, as set by the
// linker or, failing that, as found in the build information.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// ApplicationName is the name to use when referring to the application.
const ApplicationName = "Quiesce"

// number is set by the linker for release builds:
//
//	go build -ldflags "-X github.com/jetsetilly/quiesce/version.number=v0.1.0"
var number string

var (
	version  string
	revision string
	dirty    bool
)

func init() {
	version = number
	revision = "no revision information"

	var vcs bool
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, v := range info.Settings {
			switch v.Key {
			case "vcs":
				vcs = true
			case "vcs.revision":
				revision = v.Value
			case "vcs.modified":
				dirty = v.Value == "true"
			}
		}
	}

	if version == "" {
		if vcs {
			version = "unreleased"
		} else {
			version = "local"
		}
	}
}

// Version returns the version string, the revision string and whether this is a
// numbered release. The revision is suffixed with "+dirty" if the source had
// been modified when it was built.
//
// A version of "unreleased" means that the project was built from a
// repository without the version number being set. A version of "local" means
// that there is no version number and no vcs information, which happens with
// "go run".
func Version() (string, string, bool) {
	r := revision
	if dirty {
		r = fmt.Sprintf("%s+dirty", r)
	}
	return version, r, number != "" && version == number
}

// Describe returns a single line description of the application version.
func Describe() string {
	v, r, release := Version()
	var s strings.Builder
	s.WriteString(ApplicationName)
	s.WriteString(" ")
	s.WriteString(v)
	if !release {
		s.WriteString(" (")
		s.WriteString(r)
		s.WriteString(")")
	}
	return s.String()
}
