// Copyright 2018 by the Authors
// This file is part of the go-core library.
//
// The go-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-core library. If not, see <http://www.gnu.org/licenses/>.

package typedecoder

import "math/big"

// SlotCursor walks 32-byte storage slots, packing value types and forcing
// fresh-slot alignment for structs/fixed arrays/dynamic arrays/mappings
// (§3 storage layout rules b/c/d/e). Shared across every state variable
// of a contract, in declaration order. Slot numbers are big.Int since
// hash-derived base slots are only ever used as a keccak256 seed, never
// arithmetic bounded to 64 bits, but the cursor itself only ever deals in
// small sequential slot indices.
type SlotCursor struct {
	Slot   *big.Int
	Offset int
}

// NewSlotCursor starts a cursor at slot 0.
func NewSlotCursor() *SlotCursor { return &SlotCursor{Slot: new(big.Int)} }

func (c *SlotCursor) bumpSlot() {
	c.Slot = new(big.Int).Add(c.Slot, big.NewInt(1))
}

// Align forces the cursor to the start of a fresh slot if it's mid-slot;
// a no-op if already slot-aligned. This single operation implements both
// "structs/fixed arrays always start at a fresh slot" and "on exit,
// advance" — both are just "round up to the next slot boundary".
func (c *SlotCursor) Align() {
	if c.Offset != 0 {
		c.bumpSlot()
		c.Offset = 0
	}
}

// Reserve packs a width-byte value type into the current slot if it
// fits, otherwise advances to a fresh slot first (rule b).
func (c *SlotCursor) Reserve(width int) (slot *big.Int, offset int) {
	if c.Offset+width > 32 {
		c.bumpSlot()
		c.Offset = 0
	}
	slot, offset = new(big.Int).Set(c.Slot), c.Offset
	c.Offset += width
	if c.Offset >= 32 {
		c.bumpSlot()
		c.Offset = 0
	}
	return slot, offset
}

// ApplyStackPositions places a value-type detail at stack depth 0; the
// actual stack depth lives on the owning Variable (§4.2 "Values live at a
// fixed stack depth tracked separately on the Variable itself").
func ApplyStackPositions(d *Detail) {
	d.Location = LocationStack
	d.Position = 0
}

// ApplyMemoryPositions lays d out at consecutive 32-byte boundaries
// starting from *cursor, recursing into struct fields and fixed-array
// elements; dynamic arrays are left unpositioned (-1) since their length
// is unknown at declaration (§4.2).
func ApplyMemoryPositions(d *Detail, cursor *int64) {
	d.Location = LocationMemory
	switch d.Kind {
	case KindValue:
		d.Position = *cursor
		*cursor += 32
	case KindArray:
		if d.IsDynamic {
			d.Position = -1
			return
		}
		d.Position = *cursor
		d.Members = d.Members[:0]
		for i := 0; i < d.Length; i++ {
			m := d.Elem.Clone()
			ApplyMemoryPositions(m, cursor)
			d.Members = append(d.Members, m)
		}
	case KindStruct:
		d.Position = *cursor
		for i := range d.Fields {
			ApplyMemoryPositions(d.Fields[i].Detail, cursor)
		}
	case KindMapping:
		// Mappings cannot live in memory; leave unplaced.
		d.Position = -1
	}
}

// ApplyStoragePositions places d using cursor, recursing per §3's
// storage layout rules. Call once per state variable in declaration
// order, threading the same cursor through every call.
func ApplyStoragePositions(d *Detail, cursor *SlotCursor) {
	d.Location = LocationStorage
	switch d.Kind {
	case KindValue:
		d.Slot, d.Offset = cursor.Reserve(d.Width)
	case KindMapping:
		// One slot ("p") anchors keccak256(k‖p) lookups at decode time
		// (rule e); key/value sub-details are never themselves placed.
		d.Slot, d.Offset = cursor.Reserve(32)
	case KindArray:
		if d.IsDynamic {
			// One slot holds the length; elements live at
			// keccak256(slot) onward, computed at decode time (rule d).
			d.Slot, d.Offset = cursor.Reserve(32)
			return
		}
		cursor.Align()
		d.Slot = new(big.Int).Set(cursor.Slot)
		d.Offset = 0
		d.Members = d.Members[:0]
		for i := 0; i < d.Length; i++ {
			m := d.Elem.Clone()
			ApplyStoragePositions(m, cursor)
			d.Members = append(d.Members, m)
		}
		cursor.Align()
	case KindStruct:
		cursor.Align()
		d.Slot = new(big.Int).Set(cursor.Slot)
		d.Offset = 0
		for i := range d.Fields {
			ApplyStoragePositions(d.Fields[i].Detail, cursor)
		}
		cursor.Align()
	}
}
