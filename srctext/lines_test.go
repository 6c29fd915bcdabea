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

package srctext

import "testing"

func TestComputeStrictlyIncreasing(t *testing.T) {
	src := "line one\nline two\nline three"
	b := Compute(src)
	if len(b) != 2 {
		t.Fatalf("expected 2 breaks, got %d", len(b))
	}
	for i := 1; i < len(b); i++ {
		if b[i] <= b[i-1] {
			t.Fatalf("breaks not strictly increasing: %v", b)
		}
	}
	if src[b[0]] != '\n' || src[b[1]] != '\n' {
		t.Fatalf("breaks do not point at newlines: %v", b)
	}
}

func TestLineColumn(t *testing.T) {
	src := "abc\ndef\nghi"
	b := Compute(src)
	tests := []struct {
		offset   int
		line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 0}, // the newline byte itself already belongs to the next line
		{4, 2, 1},
		{7, 3, 0},
		{8, 3, 1},
	}
	for _, tt := range tests {
		line, col := b.LineColumn(tt.offset)
		if line != tt.line || col != tt.col {
			t.Errorf("LineColumn(%d) = (%d,%d), want (%d,%d)", tt.offset, line, col, tt.line, tt.col)
		}
	}
}

func TestLineColumnAtBreakIsNextLine(t *testing.T) {
	src := "ab\ncd"
	b := Compute(src)
	// offset 2 is the '\n' byte itself; per the spec rule this counts as
	// the next line.
	line, _ := b.LineColumn(2)
	if line != 2 {
		t.Errorf("offset at break should count as next line, got line %d", line)
	}
}
