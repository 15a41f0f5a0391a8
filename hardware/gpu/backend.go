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

package gpu

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Backend presents frames to the user.
type Backend interface {
	Name() string
	Present(Frame)
	Shutdown()
}

// list of backend names accepted by Fifo.Init()
const (
	BackendNull     = "null"
	BackendSoftware = "software"
)

// Backends returns the names of the available video backends.
func Backends() []string {
	return []string{BackendNull, BackendSoftware}
}

func newBackend(name string) (Backend, error) {
	switch strings.ToLower(name) {
	case BackendNull:
		return nullBackend{}, nil
	case BackendSoftware:
		return &Software{}, nil
	}
	return nil, fmt.Errorf("unknown video backend (%s), valid backends are %s", name,
		strings.Join(slices.Sorted(slices.Values(Backends())), ", "))
}

type nullBackend struct{}

func (nullBackend) Name() string { return BackendNull }
func (nullBackend) Present(Frame) {}
func (nullBackend) Shutdown() {}

// Software is a backend that keeps a record of the most recent frame rather
// than displaying it.
type Software struct {
	crit  sync.Mutex
	last  Frame
	count int
}

// Name implements the Backend interface.
func (sw *Software) Name() string {
	return BackendSoftware
}

// Present implements the Backend interface.
func (sw *Software) Present(frm Frame) {
	sw.crit.Lock()
	defer sw.crit.Unlock()
	sw.last = frm
	sw.count++
}

// Shutdown implements the Backend interface.
func (sw *Software) Shutdown() {
}

// Last returns the most recent frame presented and the total number of frames
// presented by the backend.
func (sw *Software) Last() (Frame, int) {
	sw.crit.Lock()
	defer sw.crit.Unlock()
	return sw.last, sw.count
}
