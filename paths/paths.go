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

package paths

import (
	"os"
	"path/filepath"

	"github.com/jetsetilly/quiesce/curated"
)

const localResourcePath = ".quiesce"

// ResourcePath returns the path of the named resource. The path is not
// checked or created. Use ResourceDir() to make sure the directory exists.
func ResourcePath(resource ...string) string {
	p := make([]string, 0, len(resource)+1)
	p = append(p, basePath())
	p = append(p, resource...)
	return filepath.Join(p...)
}

// ResourceDir returns the path of the named directory, creating it if
// necessary.
func ResourceDir(dir ...string) (string, error) {
	pth := ResourcePath(dir...)
	if err := os.MkdirAll(pth, 0o700); err != nil {
		return "", curated.Errorf("paths: %v", err)
	}
	return pth, nil
}

func basePath() string {
	if fi, err := os.Stat(localResourcePath); err == nil && fi.IsDir() {
		return localResourcePath
	}

	cfg, err := os.UserConfigDir()
	if err != nil {
		return localResourcePath
	}
	return filepath.Join(cfg, localResourcePath[1:])
}
