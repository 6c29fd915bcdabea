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

// Package typedecoder builds a tree of value/array/struct/mapping
// "details" from a textual type descriptor, places each node at a stack
// slot, memory offset or storage slot, and decodes raw words into human
// strings (§4.2). Detail is modeled as a tagged struct with exhaustive
// switches on Kind everywhere it's consumed, per the "no virtual method
// hierarchy" design note.
package typedecoder

import (
	"math/big"
	"sync/atomic"
)

// Location is where a Variable's (or a Detail node's) value lives.
type Location int

const (
	LocationStack Location = iota
	LocationMemory
	LocationStorage
	LocationCallData
)

func (l Location) String() string {
	switch l {
	case LocationStack:
		return "stack"
	case LocationMemory:
		return "memory"
	case LocationStorage:
		return "storage"
	case LocationCallData:
		return "calldata"
	default:
		return "unknown"
	}
}

// ValueKind is the primitive flavor of a Value detail.
type ValueKind int

const (
	ValueBoolean ValueKind = iota
	ValueUnsigned
	ValueSigned
	ValueAddress
	ValueFixedBytes
)

// Kind tags which variant of the Detail union is populated.
type Kind int

const (
	KindValue Kind = iota
	KindArray
	KindStruct
	KindMapping
)

// StructMember is one named field of a Struct detail.
type StructMember struct {
	Name   string
	Detail *Detail
}

var nextDetailID int64

func newDetailID() int {
	return int(atomic.AddInt64(&nextDetailID, 1))
}

// Detail is the typed, placement-resolved view of a variable or of one
// node inside a composite variable (§3 "Detail tree").
type Detail struct {
	ID   int // stable id; used as variablesReference for composites
	Kind Kind

	// Value fields (Kind == KindValue).
	ValueKind ValueKind
	Width     int // byte width of the primitive

	// Array fields (Kind == KindArray).
	Elem      *Detail
	IsDynamic bool
	Length    int // fixed length; 0 when IsDynamic
	Members   []*Detail
	IsPointer bool // storage pointer flag

	// Struct fields (Kind == KindStruct).
	StructName string
	Fields     []StructMember

	// Mapping fields (Kind == KindMapping).
	Key   *Detail
	Value *Detail

	// Placement, filled in by ApplyStackPositions, ApplyMemoryPositions or
	// ApplyStoragePositions.
	Location Location
	Position int64    // memory byte offset or stack depth (Location != Storage)
	Slot     *big.Int // storage slot number (Location == Storage); full 256-bit width, since hash-derived slots never fit in 64 bits
	Offset   int      // byte offset within a packed storage slot
}

// NewValue constructs a leaf Value detail.
func NewValue(kind ValueKind, width int) *Detail {
	return &Detail{ID: newDetailID(), Kind: KindValue, ValueKind: kind, Width: width}
}

// NewArray constructs an Array detail wrapping elem.
func NewArray(elem *Detail, isDynamic bool, length int) *Detail {
	return &Detail{ID: newDetailID(), Kind: KindArray, Elem: elem, IsDynamic: isDynamic, Length: length}
}

// NewStruct constructs a Struct detail with the given ordered members.
func NewStruct(name string, fields []StructMember) *Detail {
	return &Detail{ID: newDetailID(), Kind: KindStruct, StructName: name, Fields: fields}
}

// NewMapping constructs a Mapping detail.
func NewMapping(key, value *Detail) *Detail {
	return &Detail{ID: newDetailID(), Kind: KindMapping, Key: key, Value: value}
}

// Clone deep-copies a detail tree, assigning fresh ids throughout. Used
// when a variable is rebound to a fresh address/frame and needs its own
// positions (§3 "Ownership").
func (d *Detail) Clone() *Detail {
	if d == nil {
		return nil
	}
	out := *d
	out.ID = newDetailID()
	switch d.Kind {
	case KindArray:
		out.Elem = d.Elem.Clone()
		if d.Members != nil {
			out.Members = make([]*Detail, len(d.Members))
			for i, m := range d.Members {
				out.Members[i] = m.Clone()
			}
		}
	case KindStruct:
		out.Fields = make([]StructMember, len(d.Fields))
		for i, f := range d.Fields {
			out.Fields[i] = StructMember{Name: f.Name, Detail: f.Detail.Clone()}
		}
	case KindMapping:
		out.Key = d.Key.Clone()
		out.Value = d.Value.Clone()
	}
	return &out
}

// IsLeaf reports whether d is a Value detail (no children, variablesReference
// is always zero for these).
func (d *Detail) IsLeaf() bool { return d.Kind == KindValue }
