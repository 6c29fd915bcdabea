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
	"strconv"
	"strings"
)

// StructResolver looks up the ordered member list of a named struct type
// (the qualified name is whatever follows "struct "), deferred to the
// caller per §4.2.
type StructResolver func(qualifiedName string) ([]StructMember, bool)

// ParseContext carries the information ParseType needs beyond the type
// string itself: whether the variable is a state variable (forces
// Storage), and whether it's a function parameter (affects the default
// location of reference types per §4.2 "Location assignment").
type ParseContext struct {
	IsStateVariable bool
	IsFunctionParam bool
	Structs         StructResolver
}

// ParseType applies the lexical recognition rules of §4.2 to typeName and
// returns a placement-less Detail tree plus its resolved Location. Call
// ApplyStackPositions, ApplyMemoryPositions or ApplyStoragePositions
// afterward to fill in stack/memory/storage positions.
func ParseType(typeName string, ctx ParseContext) (*Detail, Location, error) {
	s := strings.TrimSpace(typeName)

	isPointer, locOverride, hasOverride, rest := stripLocationSuffix(s)

	leaf, dims := splitArrayDims(rest)

	detail, err := parseLeaf(leaf, ctx)
	if err != nil {
		return nil, 0, err
	}

	loc := defaultLocation(detail, ctx)
	if hasOverride {
		loc = locOverride
	}

	for _, n := range dims {
		arr := NewArray(detail, n == 0, n)
		detail = arr
	}
	detail.IsPointer = isPointer && loc == LocationStorage

	return detail, loc, nil
}

// stripLocationSuffix removes a trailing " storage|memory|calldata
// [pointer|ref]?" annotation, reporting whether one was present.
func stripLocationSuffix(s string) (isPointer bool, loc Location, has bool, rest string) {
	rest = s
	if strings.HasSuffix(rest, " pointer") {
		isPointer = true
		rest = strings.TrimSuffix(rest, " pointer")
	} else if strings.HasSuffix(rest, " ref") {
		isPointer = true
		rest = strings.TrimSuffix(rest, " ref")
	}
	switch {
	case strings.HasSuffix(rest, " storage"):
		loc, has = LocationStorage, true
		rest = strings.TrimSuffix(rest, " storage")
	case strings.HasSuffix(rest, " memory"):
		loc, has = LocationMemory, true
		rest = strings.TrimSuffix(rest, " memory")
	case strings.HasSuffix(rest, " calldata"):
		loc, has = LocationCallData, true
		rest = strings.TrimSuffix(rest, " calldata")
	default:
		if isPointer {
			// a bare "pointer"/"ref" suffix with no location word isn't
			// one of ours; put it back untouched.
			rest = s
			isPointer = false
		}
	}
	return isPointer, loc, has, rest
}

// splitArrayDims strips trailing "[N]"/"[]" groups from s, left to right,
// returning the base leaf type and the dimensions in the order they
// appeared (so callers can wrap outermost-last per §4.2).
func splitArrayDims(s string) (leaf string, dims []int) {
	// mapping(...) and struct types never carry array suffixes in this
	// model's inputs except at the very end, and they contain no
	// unbalanced brackets, so a simple repeated-suffix strip is safe.
	for strings.HasSuffix(s, "]") {
		open := strings.LastIndex(s, "[")
		if open < 0 {
			break
		}
		inner := s[open+1 : len(s)-1]
		n := 0
		if inner != "" {
			if v, err := strconv.Atoi(inner); err == nil {
				n = v
			}
		}
		dims = append(dims, n)
		s = s[:open]
	}
	// reverse: splitArrayDims collected outermost-first (rightmost
	// bracket first); the caller wants them in textual left-to-right
	// order so it can wrap outermost-last.
	for i, j := 0, len(dims)-1; i < j; i, j = i+1, j-1 {
		dims[i], dims[j] = dims[j], dims[i]
	}
	return s, dims
}

func parseLeaf(leaf string, ctx ParseContext) (*Detail, error) {
	switch {
	case leaf == "bool":
		return NewValue(ValueBoolean, 32), nil
	case leaf == "address":
		return NewValue(ValueAddress, 20), nil
	case leaf == "bytes" || leaf == "string":
		d := NewArray(NewValue(ValueFixedBytes, 1), true, 0)
		d.StructName = leaf // reuse as a marker for the byte-array decode path
		return d, nil
	case strings.HasPrefix(leaf, "uint"):
		return NewValue(ValueUnsigned, intWidth(leaf[4:])), nil
	case strings.HasPrefix(leaf, "int"):
		return NewValue(ValueSigned, intWidth(leaf[3:])), nil
	case strings.HasPrefix(leaf, "bytes"):
		k, err := strconv.Atoi(leaf[5:])
		if err != nil || k < 1 || k > 32 {
			return nil, fmt.Errorf("typedecoder: invalid fixed bytes width in %q", leaf)
		}
		return NewValue(ValueFixedBytes, k), nil
	case strings.HasPrefix(leaf, "struct "):
		name := strings.TrimPrefix(leaf, "struct ")
		var fields []StructMember
		if ctx.Structs != nil {
			if m, ok := ctx.Structs(name); ok {
				fields = m
			}
		}
		return NewStruct(name, fields), nil
	case strings.HasPrefix(leaf, "mapping("):
		inner := strings.TrimSuffix(strings.TrimPrefix(leaf, "mapping("), ")")
		k, v, err := splitMapping(inner)
		if err != nil {
			return nil, err
		}
		keyDetail, _, err := ParseType(k, ParseContext{Structs: ctx.Structs})
		if err != nil {
			return nil, err
		}
		valDetail, _, err := ParseType(v, ctx)
		if err != nil {
			return nil, err
		}
		return NewMapping(keyDetail, valDetail), nil
	default:
		return nil, fmt.Errorf("typedecoder: unrecognized type %q", leaf)
	}
}

// intWidth parses the optional bit-width suffix of a uintN/intN type,
// defaulting to the full 32-byte word per §4.2.
func intWidth(suffix string) int {
	if suffix == "" {
		return 32
	}
	bits, err := strconv.Atoi(suffix)
	if err != nil || bits <= 0 {
		return 32
	}
	return (bits + 7) / 8
}

// splitMapping splits "K => V" at the top-level "=>", respecting nested
// mapping(...) parens in V.
func splitMapping(s string) (k, v string, err error) {
	depth := 0
	for i := 0; i+1 < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && s[i] == '=' && s[i+1] == '>' {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+2:]), nil
		}
	}
	return "", "", fmt.Errorf("typedecoder: malformed mapping type %q", s)
}

// defaultLocation implements §4.2 "Location assignment" absent an
// explicit annotation: state variables are always Storage; locals default
// value types to Stack and reference types to Memory inside a parameter
// list, Storage otherwise.
func defaultLocation(d *Detail, ctx ParseContext) Location {
	if ctx.IsStateVariable {
		return LocationStorage
	}
	if d.Kind == KindValue {
		return LocationStack
	}
	if ctx.IsFunctionParam {
		return LocationMemory
	}
	return LocationStorage
}
