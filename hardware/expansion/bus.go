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

package expansion

import (
	"sync"
)

// Device is a peripheral attached to the expansion bus.
type Device interface {
	Name() string

	// Tick is called once per field of emulation
	Tick(field uint64)

	// PauseAndLock is called when the emulation is paused and locked. The
	// device should not change state until it is unlocked
	PauseAndLock(lock bool, unpauseOnUnlock bool)
}

// Bus is the collection of devices attached to the machine.
type Bus struct {
	crit    sync.Mutex
	devices []Device
}

// NewBus is the preferred method of initialisation for the Bus type.
func NewBus(devices ...Device) *Bus {
	return &Bus{
		devices: devices,
	}
}

// Attach a device to the bus.
func (bus *Bus) Attach(dev Device) {
	bus.crit.Lock()
	defer bus.crit.Unlock()
	bus.devices = append(bus.devices, dev)
}

// Devices returns a copy of the list of attached devices.
func (bus *Bus) Devices() []Device {
	bus.crit.Lock()
	defer bus.crit.Unlock()
	d := make([]Device, len(bus.devices))
	copy(d, bus.devices)
	return d
}

// Tick all devices on the bus.
func (bus *Bus) Tick(field uint64) {
	for _, d := range bus.Devices() {
		d.Tick(field)
	}
}

// PauseAndLock all devices on the bus. Devices are unlocked in the same order
// they were locked.
func (bus *Bus) PauseAndLock(lock bool, unpauseOnUnlock bool) {
	for _, d := range bus.Devices() {
		d.PauseAndLock(lock, unpauseOnUnlock)
	}
}
