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

// Package srctext computes and queries the line-break table used to
// translate byte offsets into the human (line, column) pairs the UI client
// speaks (§4.1 "Line from offset").
package srctext

import "sort"

// Breaks is the sorted list of byte offsets of every '\n' in a source
// string.
type Breaks []int

// Compute builds the line-break table for src. Invariant (§8): the result
// is strictly increasing and equals the set of indices i where
// src[i] == '\n'.
func Compute(src string) Breaks {
	var b Breaks
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			b = append(b, i)
		}
	}
	return b
}

// LineColumn converts a byte offset into a 1-based (line, column) pair.
//
// Rule (§4.1): a lower-bound binary search on the break table. If the
// offset equals a stored break position, the offset *is* that newline and
// counts as belonging to the next line.
func (b Breaks) LineColumn(offset int) (line, column int) {
	// idx = count of breaks at or before offset: a break exactly at
	// offset is itself included, since that offset "is" the newline and
	// therefore belongs to the next line.
	idx := sort.Search(len(b), func(i int) bool { return b[i] > offset })
	line = idx + 1
	lineStart := 0
	if idx > 0 {
		lineStart = b[idx-1] + 1
	}
	column = offset - lineStart + 1
	return line, column
}

// LineStart returns the byte offset of the first byte of the given 1-based
// line.
func (b Breaks) LineStart(line int) int {
	if line <= 1 {
		return 0
	}
	idx := line - 2
	if idx < 0 || idx >= len(b) {
		if len(b) == 0 {
			return 0
		}
		return b[len(b)-1] + 1
	}
	return b[idx] + 1
}

// LineRange returns the half-open byte range [start, end) of the given
// 1-based line, end being exclusive of the line's own trailing newline.
func (b Breaks) LineRange(line int) (start, end int) {
	start = b.LineStart(line)
	if line-1 >= 0 && line-1 < len(b) {
		end = b[line-1]
	} else {
		end = -1 // caller must clamp to len(source)
	}
	return start, end
}
