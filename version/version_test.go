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

package version_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/quiesce/test"
	"github.com/jetsetilly/quiesce/version"
)

func TestDescribe(t *testing.T) {
	v, _, release := version.Version()

	// tests are never built with a version number
	test.ExpectFailure(t, release)
	test.ExpectSuccess(t, v == "unreleased" || v == "local")
	test.ExpectSuccess(t, strings.HasPrefix(version.Describe(), "Quiesce "+v))
}
