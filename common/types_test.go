// Copyright 2015 by the Authors
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

package common

import "testing"

func TestBytesConversion(t *testing.T) {
	b := []byte{5}
	hash := BytesToHash(b)

	var exp Hash
	exp[31] = 5

	if hash != exp {
		t.Errorf("expected %x got %x", exp, hash)
	}
}

func TestIsHexAddress(t *testing.T) {
	tests := []struct {
		str string
		exp bool
	}{
		{"5aaeb6053f3e94c9b9a09f33669435e7ef1beaed1", false}, // wrong length (41 hex chars)
		{"5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"0X5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED", true},
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed1", false},
		{"0xxaaeb6053f3e94c9b9a09f33669435e7ef1bea1", false},
	}
	for _, test := range tests {
		if result := IsHexAddress(test.str); result != test.exp {
			t.Errorf("IsHexAddress(%s) == %v; expected %v", test.str, result, test.exp)
		}
	}
}

func TestHexToAddressRoundTrip(t *testing.T) {
	a := HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	if got := TrimPrefix0x(a.Hex()); got != "5aaeb6053f3e94c9b9a09f33669435e7ef1beaed" {
		t.Errorf("round trip mismatch: %s", got)
	}
}
