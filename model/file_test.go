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

import "testing"

func TestTranslateOriginalLineSumsOffsetsAtOrBefore(t *testing.T) {
	f := NewFile("c.sol", "line1\nline2\nline3\n")
	f.ShiftLineOffsets(2, 3)

	if got := f.TranslateOriginalLine(1); got != 1 {
		t.Fatalf("line before the shift: got %d, want 1", got)
	}
	if got := f.TranslateOriginalLine(2); got != 5 {
		t.Fatalf("line at the shift point: got %d, want 5", got)
	}
	if got := f.TranslateOriginalLine(10); got != 13 {
		t.Fatalf("line after the shift point: got %d, want 13", got)
	}
}

func TestShiftLineOffsetsAccumulatesAtSamePoint(t *testing.T) {
	f := NewFile("c.sol", "a\nb\n")
	f.ShiftLineOffsets(1, 2)
	f.ShiftLineOffsets(1, 1)

	if got := f.TranslateOriginalLine(1); got != 4 {
		t.Fatalf("got %d, want 4 after two shifts at the same line", got)
	}
}

func TestSetSourceRecomputesBreaks(t *testing.T) {
	f := NewFile("c.sol", "a\nb\n")
	before := len(f.Breaks)

	f.SetSource("a\nb\nc\nd\n")
	if len(f.Breaks) == before {
		t.Fatalf("expected Breaks to be recomputed for the new source")
	}
}
