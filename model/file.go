// Copyright 2019 by the Authors
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

package model

import "github.com/core-coin/sdb/srctext"

// File is one source file, possibly shared by several contracts (§3
// "File").
type File struct {
	Path          string
	Source        string
	Breaks        srctext.Breaks
	ContractNames []string

	// LineOffsets translates an original-source line to the number of
	// lines the evaluator has inserted at or before it (§3 invariant:
	// "a lineOffsets map original line -> +Δ lines inserted").
	LineOffsets map[int]int
}

// NewFile computes Breaks from source and returns a File ready to be
// registered on a Program.
func NewFile(path, source string) *File {
	return &File{
		Path:          path,
		Source:        source,
		Breaks:        srctext.Compute(source),
		ContractNames: nil,
		LineOffsets:   map[int]int{},
	}
}

// SetSource replaces the file's source text and recomputes its
// line-break table, keeping the invariant in §3 ("line-break table is
// always consistent with the current source text") true across an
// evaluator splice.
func (f *File) SetSource(source string) {
	f.Source = source
	f.Breaks = srctext.Compute(source)
}

// TranslateOriginalLine converts a line number expressed in the user's
// original source into the corresponding line in the currently-mutated
// source, by summing every recorded Δ at or before it (§4.4
// "setBreakpoint").
func (f *File) TranslateOriginalLine(line int) int {
	shifted := line
	for at, delta := range f.LineOffsets {
		if at <= line {
			shifted += delta
		}
	}
	return shifted
}

// ShiftLineOffsets records that delta lines were inserted at line at,
// shifting every later offset key up by delta so they continue to refer
// to the same original line (called by the evaluator after a splice).
func (f *File) ShiftLineOffsets(at, delta int) {
	shifted := map[int]int{}
	for k, v := range f.LineOffsets {
		if k > at {
			k += delta
		}
		shifted[k] = v
	}
	shifted[at] += delta
	f.LineOffsets = shifted
}
