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

// Package common holds the small fixed-width value types shared by every
// layer of the debugger: 32-byte storage words and 20-byte contract
// addresses, matching the target VM's word size.
package common

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

const (
	HashLength    = 32
	AddressLength = 20
)

// Hash is a 32-byte word: a storage slot key, a storage slot value, or a
// stack/memory cell.
type Hash [HashLength]byte

// BytesToHash sets the rightmost bytes of a Hash to the given bytes,
// left-padding with zero.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// BigToHash sets the rightmost bytes of a Hash to the big-endian
// representation of x.
func BigToHash(x *big.Int) Hash { return BytesToHash(x.Bytes()) }

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) Big() *big.Int { return new(big.Int).SetBytes(h[:]) }

func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

// SetBytes copies b into h, right-aligned, truncating on the left if b is
// longer than a Hash.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// MarshalJSON renders h as a hex string, so every wire envelope in §6
// carries stack/memory/storage words as "0x..." rather than byte arrays.
func (h Hash) MarshalJSON() ([]byte, error) { return json.Marshal(h.Hex()) }

// UnmarshalJSON parses a hex string produced by MarshalJSON.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	h.SetBytes(mustHexDecode(s))
	return nil
}

// Address is a 20-byte contract or account address.
type Address [AddressLength]byte

func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

func (a *Address) SetBytes(b []byte) {
	if len(b) > len(a) {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) Hash() Hash { return BytesToHash(a[:]) }

func (a Address) Hex() string { return "0x" + hex.EncodeToString(a[:]) }

func (a Address) String() string { return a.Hex() }

// MarshalJSON renders a as a hex string.
func (a Address) MarshalJSON() ([]byte, error) { return json.Marshal(a.Hex()) }

// UnmarshalJSON parses a hex string produced by MarshalJSON.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	a.SetBytes(mustHexDecode(s))
	return nil
}

func mustHexDecode(s string) []byte {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}

// IsHexAddress reports whether s is a valid hex-encoded address, with or
// without the 0x prefix.
func IsHexAddress(s string) bool {
	if has0xPrefix(s) {
		s = s[2:]
	}
	return len(s) == 2*AddressLength && isHex(s)
}

// HexToAddress parses a hex string into an Address, ignoring invalid
// characters beyond length truncation (callers that need validation should
// call IsHexAddress first).
func HexToAddress(s string) Address {
	if has0xPrefix(s) {
		s = s[2:]
	}
	b, _ := hex.DecodeString(s)
	return BytesToAddress(b)
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func isHex(s string) bool {
	if len(s)%2 != 0 {
		return false
	}
	for _, c := range []byte(s) {
		if !isHexCharacter(c) {
			return false
		}
	}
	return true
}

func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// FormatUint renders x using the given base, matching the small helper the
// teacher keeps in common/math for diagnostics and UI-facing strings.
func FormatUint(x *big.Int, base int) string { return x.Text(base) }

// MustParseHash parses a hex hash and panics on malformed input; reserved
// for test fixtures and constant tables, never for request-driven input.
func MustParseHash(s string) Hash {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(fmt.Sprintf("common: invalid hash literal %q: %v", s, err))
	}
	return BytesToHash(b)
}

// TrimPrefix0x strips a leading 0x/0X if present.
func TrimPrefix0x(s string) string {
	return strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
}
