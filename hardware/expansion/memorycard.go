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
	"encoding/binary"
	"fmt"
	"sync"
)

// MemoryCardSize is the number of bytes of storage on a memory card.
const MemoryCardSize = 512

// MemoryCard is a device that records the most recent field number in a small
// block of storage. Writes are committed when the card is locked.
type MemoryCard struct {
	slot int

	crit    sync.Mutex
	locked  bool
	data    [MemoryCardSize]byte
	pending uint64
	dirty   bool
	commits int
	ticks   uint64
}

// NewMemoryCard is the preferred method of initialisation for the MemoryCard
// type.
func NewMemoryCard(slot int) *MemoryCard {
	return &MemoryCard{
		slot: slot,
	}
}

// Name implements the Device interface.
func (mc *MemoryCard) Name() string {
	return fmt.Sprintf("memory card %d", mc.slot)
}

// Tick implements the Device interface.
func (mc *MemoryCard) Tick(field uint64) {
	mc.crit.Lock()
	defer mc.crit.Unlock()
	if mc.locked {
		return
	}
	mc.ticks++
	mc.pending = field
	mc.dirty = true
}

// PauseAndLock implements the Device interface.
func (mc *MemoryCard) PauseAndLock(lock bool, unpauseOnUnlock bool) {
	mc.crit.Lock()
	defer mc.crit.Unlock()

	mc.locked = lock
	if lock && mc.dirty {
		binary.LittleEndian.PutUint64(mc.data[:], mc.pending)
		mc.dirty = false
		mc.commits++
	}
}

// Committed returns the field number most recently committed to storage and
// the number of times the card has been committed.
func (mc *MemoryCard) Committed() (uint64, int) {
	mc.crit.Lock()
	defer mc.crit.Unlock()
	return binary.LittleEndian.Uint64(mc.data[:]), mc.commits
}

// Ticks returns the number of ticks accepted by the card.
func (mc *MemoryCard) Ticks() uint64 {
	mc.crit.Lock()
	defer mc.crit.Unlock()
	return mc.ticks
}
