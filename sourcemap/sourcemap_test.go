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

package sourcemap

import "testing"

func TestParseInheritance(t *testing.T) {
	// second entry inherits start/file, overrides length, clears jump to none via "-"
	m := Parse("10:5:0:i;:8::-")
	if len(m) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m))
	}
	if m[0] != (Location{Start: 10, Length: 5, File: 0, Jump: JumpIn}) {
		t.Fatalf("entry 0 mismatch: %+v", m[0])
	}
	if m[1] != (Location{Start: 10, Length: 8, File: 0, Jump: JumpNone}) {
		t.Fatalf("entry 1 mismatch: %+v", m[1])
	}
}

func TestAtIndexOutOfRange(t *testing.T) {
	m := Parse("0:1:0:-")
	if _, ok := m.AtIndex(5); ok {
		t.Fatalf("expected ok=false for out of range index")
	}
}

func TestToIndexRoundTrip(t *testing.T) {
	m := Parse("0:1:0:-;5:2:0:i;10:3:0:o")
	for k := 0; k < len(m); k++ {
		loc, ok := m.AtIndex(k)
		if !ok {
			t.Fatalf("AtIndex(%d) not ok", k)
		}
		got, ok := m.ToIndex(loc.Start, loc.Length, loc.Jump)
		if !ok || got != k {
			t.Errorf("ToIndex(AtIndex(%d)) = (%d,%v), want (%d,true)", k, got, ok, k)
		}
	}
}

func TestToIndexIgnoresFile(t *testing.T) {
	// Q1: file field is deliberately not compared.
	m := Parse("0:1:7:-")
	if _, ok := m.ToIndex(0, 1, JumpNone); !ok {
		t.Fatalf("expected a match regardless of file field")
	}
}

func TestCacheMemoizesAndInvalidates(t *testing.T) {
	m := Parse("0:1:0:-;5:2:0:i")
	c := NewCache(16)
	idx, ok := c.ToIndex("C", m, 5, 2, JumpIn)
	if !ok || idx != 1 {
		t.Fatalf("unexpected cache result: %d %v", idx, ok)
	}
	// Same lookup again must hit the cache and return the same value.
	idx2, ok2 := c.ToIndex("C", m, 5, 2, JumpIn)
	if !ok2 || idx2 != idx {
		t.Fatalf("cache hit mismatch: %d %v", idx2, ok2)
	}
	c.Invalidate("C")
	idx3, ok3 := c.ToIndex("C", m, 5, 2, JumpIn)
	if !ok3 || idx3 != 1 {
		t.Fatalf("post-invalidation lookup mismatch: %d %v", idx3, ok3)
	}
}
