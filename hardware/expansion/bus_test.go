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

package expansion_test

import (
	"testing"

	"github.com/jetsetilly/quiesce/hardware/expansion"
	"github.com/jetsetilly/quiesce/test"
)

func TestMemoryCard(t *testing.T) {
	mc0 := expansion.NewMemoryCard(0)
	mc1 := expansion.NewMemoryCard(1)
	bus := expansion.NewBus(mc0)
	bus.Attach(mc1)

	test.ExpectEquality(t, len(bus.Devices()), 2)
	test.ExpectEquality(t, bus.Devices()[1].Name(), "memory card 1")

	bus.Tick(10)
	bus.Tick(11)

	// nothing is committed until the bus is locked
	v, n := mc0.Committed()
	test.ExpectEquality(t, v, uint64(0))
	test.ExpectEquality(t, n, 0)

	bus.PauseAndLock(true, false)
	v, n = mc1.Committed()
	test.ExpectEquality(t, v, uint64(11))
	test.ExpectEquality(t, n, 1)

	// ticks are ignored while locked
	bus.Tick(12)
	test.ExpectEquality(t, mc0.Ticks(), uint64(2))

	bus.PauseAndLock(false, true)
	bus.Tick(13)
	test.ExpectEquality(t, mc0.Ticks(), uint64(3))

	// a clean card is not committed again
	bus.PauseAndLock(true, false)
	bus.PauseAndLock(false, true)
	bus.PauseAndLock(true, false)
	_, n = mc0.Committed()
	test.ExpectEquality(t, n, 2)
}
