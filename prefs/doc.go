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

// Package prefs facilitates the storage of preferential values in the
// application. The Bool, Int, Float and String types hold their value
// atomically so they can be read from any goroutine, including the CPU
// goroutine in the middle of a session.
//
// Pref values are bound to a key in a Disk instance:
//
//	var p prefs.Bool
//	dsk, _ := prefs.NewDisk("quiesce.yaml")
//	dsk.Add("session.boottopause", &p)
//	dsk.Load()
//
// The prefs file is YAML. Each dot separated part of the key is a level in the
// YAML document. Values in the file can be overridden by environment variables
// (see EnvPrefix) and by prefs strings pushed with PushCommandLineStack().
package prefs
