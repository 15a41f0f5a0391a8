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

package prefs

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/jetsetilly/quiesce/curated"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// WarningBoilerPlate is written to the head of every prefs file.
const WarningBoilerPlate = "# preferences file for Quiesce. values are overridden by QUIESCE_ environment variables"

// EnvPrefix is the prefix for environment variables that override values in
// the prefs file. The key "session.boottopause" for example, is overridden by
// the QUIESCE_SESSION_BOOTTOPAUSE environment variable.
const EnvPrefix = "QUIESCE"

// Disk binds a prefs file to a list of Pref values. Keys are dot separated
// paths in the YAML document, case insensitive.
type Disk struct {
	crit    sync.Mutex
	path    string
	entries map[string]Pref
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(path string) (*Disk, error) {
	if path == "" {
		return nil, curated.Errorf("prefs: no path for prefs file")
	}
	return &Disk{
		path:    path,
		entries: make(map[string]Pref),
	}, nil
}

// Path returns the path of the prefs file.
func (dsk *Disk) Path() string {
	return dsk.path
}

// Add a new pref value to the disk.
func (dsk *Disk) Add(key string, p Pref) error {
	key = strings.ToLower(key)
	if key == "" || strings.ContainsAny(key, " \t") {
		return curated.Errorf("prefs: invalid key (%s)", key)
	}

	dsk.crit.Lock()
	defer dsk.crit.Unlock()

	if _, ok := dsk.entries[key]; ok {
		return curated.Errorf("prefs: pref already added (%s)", key)
	}
	dsk.entries[key] = p
	return nil
}

// Reset all pref values to their zero value.
func (dsk *Disk) Reset() error {
	dsk.crit.Lock()
	defer dsk.crit.Unlock()

	for _, p := range dsk.entries {
		if err := p.Reset(); err != nil {
			return curated.Errorf("prefs: %v", err)
		}
	}
	return nil
}

// Load the values from the prefs file. A prefs file that does not exist is
// not an error.
//
// The precedence of values is: command line prefs, environment variables, the
// prefs file. Values not found in any of those are left unchanged.
func (dsk *Disk) Load() error {
	v := viper.New()
	v.SetConfigFile(dsk.path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return curated.Errorf("prefs: %v", err)
		}
	}

	dsk.crit.Lock()
	defer dsk.crit.Unlock()

	for key, p := range dsk.entries {
		if cl, ok := getCommandLinePref(key); ok {
			if err := p.Set(cl); err != nil {
				return curated.Errorf("prefs: %s: %v", key, err)
			}
			continue
		}

		if !v.IsSet(key) {
			continue
		}
		if err := p.Set(v.Get(key)); err != nil {
			return curated.Errorf("prefs: %s: %v", key, err)
		}
	}

	return nil
}

// Save current pref values to disk. Entries in the file that are not bound
// to the Disk are preserved.
func (dsk *Disk) Save() error {
	doc := make(map[string]any)

	data, err := os.ReadFile(dsk.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return curated.Errorf("prefs: %v", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return curated.Errorf("prefs: %v", err)
		}
	}

	dsk.crit.Lock()
	for key, p := range dsk.entries {
		setNested(doc, strings.Split(key, "."), p.Get())
	}
	dsk.crit.Unlock()

	out, err := yaml.Marshal(doc)
	if err != nil {
		return curated.Errorf("prefs: %v", err)
	}

	var s strings.Builder
	s.WriteString(WarningBoilerPlate)
	s.WriteString("\n")
	s.Write(out)

	if err := os.WriteFile(dsk.path, []byte(s.String()), 0o644); err != nil {
		return curated.Errorf("prefs: %v", err)
	}

	return nil
}

// setNested sets the value in a tree of maps, creating intermediate maps as
// required. An intermediate value that is not a map is replaced.
func setNested(doc map[string]any, path []string, value any) {
	for _, p := range path[:len(path)-1] {
		next, ok := doc[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			doc[p] = next
		}
		doc = next
	}
	doc[path[len(path)-1]] = value
}
