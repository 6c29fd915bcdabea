// Copyright 2017 by the Authors
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

// Package sourcemap decodes and inverts the compiler's compressed
// `s:l:f:j` source map entries (§4.1). The map is a semicolon-joined list
// of colon-separated fields; a missing field inherits the previous entry's
// value for that field.
package sourcemap

import (
	"strconv"
	"strings"
)

// Jump is the jump-kind field of a source map entry.
type Jump byte

const (
	JumpNone Jump = '-'
	JumpIn   Jump = 'i'
	JumpOut  Jump = 'o'
)

// Location is one decoded entry of a source map.
type Location struct {
	Start  int
	Length int
	File   int
	Jump   Jump
}

// SourceMap is the decompressed sequence of Locations for one contract's
// runtime (or creation) bytecode, indexed by instruction index.
type SourceMap []Location

// Parse decodes a compressed `s:l:f:j` source map string into a
// SourceMap, applying field inheritance: an empty field copies the prior
// entry's value for that field (§4.1 "Decode a single entry").
func Parse(raw string) SourceMap {
	if raw == "" {
		return nil
	}
	entries := strings.Split(raw, ";")
	out := make(SourceMap, 0, len(entries))
	var prev Location
	prev.Jump = JumpNone
	for _, e := range entries {
		loc := prev
		fields := strings.Split(e, ":")
		for i, f := range fields {
			if f == "" {
				continue
			}
			switch i {
			case 0:
				if v, err := strconv.Atoi(f); err == nil {
					loc.Start = v
				}
			case 1:
				if v, err := strconv.Atoi(f); err == nil {
					loc.Length = v
				}
			case 2:
				if v, err := strconv.Atoi(f); err == nil {
					loc.File = v
				}
			case 3:
				loc.Jump = Jump(f[0])
			}
		}
		out = append(out, loc)
		prev = loc
	}
	return out
}

// AtIndex returns the decoded Location at instruction index idx, or the
// zero Location and false if idx is out of range.
func (m SourceMap) AtIndex(idx int) (Location, bool) {
	if idx < 0 || idx >= len(m) {
		return Location{}, false
	}
	return m[idx], true
}

// ToIndex inverts the map: returns the first instruction index whose
// Location matches start/length (and jump, if jump != 0). The file field
// is deliberately not compared (open question Q1 in spec.md).
func (m SourceMap) ToIndex(start, length int, jump Jump) (int, bool) {
	for i, loc := range m {
		if loc.Start != start || loc.Length != length {
			continue
		}
		if jump != 0 && loc.Jump != jump {
			continue
		}
		return i, true
	}
	return 0, false
}
