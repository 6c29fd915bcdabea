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

import (
	"fmt"
	"math/big"

	"github.com/core-coin/sdb/common"
	"github.com/core-coin/sdb/crypto"
)

// invalidValue is returned, never panicked, whenever raw bytes are shorter
// than the declared type's width (§7.5 "Decoding" error kind).
const invalidValue = "(invalid value)"

// StackReader exposes the live stack of the paused VM, indexed from the
// bottom (depth 0 is the first pushed word), matching StepData's raw
// stack slice.
type StackReader interface {
	Word(depth int64) (common.Hash, bool)
}

// MemoryReader exposes the live linear memory of the paused VM.
type MemoryReader interface {
	Word(byteOffset int64) (common.Hash, bool)
}

// StorageReader exposes account storage, fetched from the VM adapter via
// getStorage (§6) and cached by the caller before decoding begins.
type StorageReader interface {
	Word(slot common.Hash) (common.Hash, bool)
}

// Decoded is the wire shape the facade emits for a variable or a
// composite's child (§4.2 "Decoded output").
type Decoded struct {
	Name               string `json:"name"`
	Type               string `json:"type"`
	Value              string `json:"value"`
	VariablesReference int    `json:"variablesReference"`
}

// SlotHash converts a storage slot number into the 32-byte key used to
// query storage.
func SlotHash(slot *big.Int) common.Hash {
	return common.BigToHash(slot)
}

// Decode produces the top-level Decoded view of a variable given its
// detail tree, its declaring position (the stack depth of its word for
// Stack variables, or of its base pointer for Memory variables; ignored
// for Storage), and type name for display.
func Decode(name, typeName string, detail *Detail, varPosition int64, stack StackReader, memory MemoryReader, storage StorageReader) Decoded {
	value := decodeDetail(detail, varPosition, stack, memory, storage)
	ref := 0
	if !detail.IsLeaf() {
		ref = detail.ID
	}
	return Decoded{Name: name, Type: typeName, Value: value, VariablesReference: ref}
}

// Children decodes the named children of a composite detail node, for the
// facade's lazy `variables` expansion (§4.8). varPosition is the owning
// Variable's stack slot (for Memory-located children, whose base pointer
// lives there) — irrelevant for Storage children, which are
// self-contained.
func Children(detail *Detail, varPosition int64, stack StackReader, memory MemoryReader, storage StorageReader) []Decoded {
	switch detail.Kind {
	case KindStruct:
		out := make([]Decoded, 0, len(detail.Fields))
		for _, f := range detail.Fields {
			out = append(out, Decode(f.Name, typeNameOf(f.Detail), f.Detail, varPosition, stack, memory, storage))
		}
		return out
	case KindArray:
		if detail.IsDynamic {
			return decodeDynamicArrayChildren(detail, varPosition, stack, memory, storage)
		}
		out := make([]Decoded, 0, len(detail.Members))
		for i, m := range detail.Members {
			out = append(out, Decode(indexName(i), typeNameOf(m), m, varPosition, stack, memory, storage))
		}
		return out
	default:
		return nil
	}
}

func indexName(i int) string { return "[" + big.NewInt(int64(i)).String() + "]" }

// typeNameOf reconstructs a best-effort display type string for a detail
// node that was never given one explicitly (composite members are parsed
// once at the container level, not individually named).
func typeNameOf(d *Detail) string {
	switch d.Kind {
	case KindValue:
		switch d.ValueKind {
		case ValueBoolean:
			return "bool"
		case ValueAddress:
			return "address"
		case ValueFixedBytes:
			return "bytes" + big.NewInt(int64(d.Width)).String()
		case ValueSigned:
			return "int" + big.NewInt(int64(d.Width*8)).String()
		default:
			return "uint" + big.NewInt(int64(d.Width*8)).String()
		}
	case KindStruct:
		return "struct " + d.StructName
	case KindArray:
		if d.IsDynamic {
			if d.StructName == "bytes" || d.StructName == "string" {
				return d.StructName
			}
			return typeNameOf(d.Elem) + "[]"
		}
		return typeNameOf(d.Elem) + "[" + big.NewInt(int64(d.Length)).String() + "]"
	case KindMapping:
		return "mapping(" + typeNameOf(d.Key) + " => " + typeNameOf(d.Value) + ")"
	}
	return "?"
}

// DecodeWord renders a single 32-byte VM word as typeName would be
// displayed, used by the evaluator to recover an expression's return
// value from the raw word the step engine observes on jump-out (§4.6
// step 9). typeName must parse to a value type; composite return types
// are out of scope for evaluate() (§1).
func DecodeWord(word common.Hash, typeName string) (string, error) {
	detail, _, err := ParseType(typeName, ParseContext{})
	if err != nil {
		return "", err
	}
	if detail.Kind != KindValue {
		return "", fmt.Errorf("typedecoder: unsupported return type %q", typeName)
	}
	return interpretWord(word[:], 32-detail.Width, detail.Width, detail.ValueKind), nil
}

func decodeDetail(detail *Detail, varPosition int64, stack StackReader, memory MemoryReader, storage StorageReader) string {
	switch detail.Kind {
	case KindValue:
		return decodeValue(detail, varPosition, stack, memory, storage)
	case KindStruct:
		return "{...}"
	case KindArray:
		if detail.IsDynamic && (detail.StructName == "bytes" || detail.StructName == "string") {
			if detail.Location == LocationStorage {
				return decodeBytesLikeStorage(detail, storage)
			}
			return invalidValue
		}
		return "[...]"
	case KindMapping:
		return "{...}"
	}
	return invalidValue
}

func decodeValue(detail *Detail, varPosition int64, stack StackReader, memory MemoryReader, storage StorageReader) string {
	var word common.Hash
	var ok bool
	switch detail.Location {
	case LocationStack:
		word, ok = stack.Word(varPosition + detail.Position)
	case LocationMemory:
		var base common.Hash
		base, ok = stack.Word(varPosition)
		if ok {
			word, ok = memory.Word(base.Big().Int64() + detail.Position)
		}
	case LocationStorage:
		word, ok = storage.Word(SlotHash(detail.Slot))
	default:
		ok = false
	}
	if !ok {
		return invalidValue
	}
	return interpretWord(word[:], detail.Offset, detail.Width, detail.ValueKind)
}

// interpretWord extracts width bytes starting at byteOffset within a
// 32-byte word and renders it per kind. Returns "(invalid value)" rather
// than panicking if the slice is too short (§7.5).
func interpretWord(word []byte, byteOffset, width int, kind ValueKind) string {
	if byteOffset < 0 || width <= 0 || byteOffset+width > len(word) {
		return invalidValue
	}
	raw := word[byteOffset : byteOffset+width]
	switch kind {
	case ValueBoolean:
		for _, b := range raw {
			if b != 0 {
				return "true"
			}
		}
		return "false"
	case ValueAddress:
		if len(raw) < common.AddressLength {
			return invalidValue
		}
		return common.BytesToAddress(raw[len(raw)-common.AddressLength:]).Hex()
	case ValueFixedBytes:
		return "0x" + hexEncode(raw)
	case ValueSigned:
		return signedFromBigEndian(raw).String()
	default: // ValueUnsigned
		return new(big.Int).SetBytes(raw).String()
	}
}

func signedFromBigEndian(raw []byte) *big.Int {
	v := new(big.Int).SetBytes(raw)
	bits := uint(len(raw) * 8)
	signBit := new(big.Int).Lsh(big.NewInt(1), bits-1)
	if v.Cmp(signBit) >= 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), bits)
		v.Sub(v, mod)
	}
	return v
}

const hexDigits = "0123456789abcdef"

func hexEncode(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0xf]
	}
	return string(out)
}

// decodeBytesLikeStorage implements §4.2's dynamic bytes/string storage
// rule: short values (<=31 bytes) pack into the slot itself with
// length*2 in the last (lowest-order) byte and low bit 0; long values store length*2+1
// and keep the data at keccak256(slot).
func decodeBytesLikeStorage(detail *Detail, storage StorageReader) string {
	slotWord, ok := storage.Word(SlotHash(detail.Slot))
	if !ok {
		return invalidValue
	}
	lastByte := slotWord[31]
	if lastByte&1 == 0 {
		length := int(lastByte) / 2
		if length > 31 {
			return invalidValue
		}
		return "0x" + hexEncode(slotWord[:length])
	}
	length := new(big.Int).Rsh(new(big.Int).Sub(new(big.Int).SetBytes(slotWord[:]), big.NewInt(1)), 1).Int64()
	base := crypto.Keccak256Hash(SlotHash(detail.Slot).Bytes())
	slot := new(big.Int).SetBytes(base[:])
	data := make([]byte, 0, length)
	remaining := length
	for remaining > 0 {
		w, ok := storage.Word(common.BigToHash(slot))
		if !ok {
			return invalidValue
		}
		take := remaining
		if take > 32 {
			take = 32
		}
		data = append(data, w[:take]...)
		remaining -= take
		slot.Add(slot, big.NewInt(1))
	}
	return "0x" + hexEncode(data)
}

// decodeDynamicArrayChildren expands one level of a dynamic array's
// storage-backed elements (§4.2 "Arrays of elements > 32 bytes: per-
// element slot advance at keccak256(base) + index × slotsPerElement").
func decodeDynamicArrayChildren(detail *Detail, varPosition int64, stack StackReader, memory MemoryReader, storage StorageReader) []Decoded {
	if detail.StructName == "bytes" || detail.StructName == "string" {
		return nil // leaf-like; no children to expand
	}
	if detail.Location != LocationStorage {
		return nil
	}
	lengthWord, ok := storage.Word(SlotHash(detail.Slot))
	if !ok {
		return nil
	}
	length := new(big.Int).SetBytes(lengthWord[:]).Int64()
	base := crypto.Keccak256Hash(SlotHash(detail.Slot).Bytes())
	baseSlot := new(big.Int).SetBytes(base[:])
	slotsPerElement := slotsFor(detail.Elem)
	out := make([]Decoded, 0, length)
	for i := int64(0); i < length; i++ {
		elemSlot := new(big.Int).Add(baseSlot, big.NewInt(i*slotsPerElement))
		elem := detail.Elem.Clone()
		ApplyStoragePositions(elem, &SlotCursor{Slot: elemSlot})
		out = append(out, Decode(indexName(int(i)), typeNameOf(elem), elem, varPosition, stack, memory, storage))
	}
	return out
}

// slotsFor computes how many storage slots one array element occupies
// (§4.2 "Arrays of elements > 32 bytes: per-element slot advance ... ×
// slotsPerElement"), by placing a scratch copy of the element's detail
// tree at slot 0 and reading back how far ApplyStoragePositions advanced
// the cursor. A plain value or a mapping anchor always takes exactly one
// slot; a struct or fixed array recurses into its own members and may
// span several.
func slotsFor(d *Detail) int64 {
	if d == nil || d.Kind == KindValue || d.Kind == KindMapping {
		return 1
	}
	if d.Kind == KindArray && d.IsDynamic {
		return 1
	}
	cursor := NewSlotCursor()
	ApplyStoragePositions(d.Clone(), cursor)
	slots := cursor.Slot.Int64()
	if cursor.Offset != 0 {
		slots++
	}
	if slots < 1 {
		slots = 1
	}
	return slots
}

// DecodeMappingValue resolves a mapping entry for key raw bytes k
// (left-padded to 32 bytes by the caller), per §3(e): value lives at
// keccak256(k ‖ p) where p is the mapping's base slot, with the value's
// normal recursive placement from there.
func DecodeMappingValue(detail *Detail, keyBytes []byte, name string, varPosition int64, stack StackReader, memory MemoryReader, storage StorageReader) Decoded {
	p := SlotHash(detail.Slot)
	slotHash := crypto.Keccak256Hash(append(append([]byte{}, keyBytes...), p.Bytes()...))
	value := detail.Value.Clone()
	value.Location = LocationStorage
	value.Slot = new(big.Int).SetBytes(slotHash[:])
	return Decode(name, typeNameOf(value), value, varPosition, stack, memory, storage)
}
