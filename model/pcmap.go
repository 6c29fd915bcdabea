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

const (
	opDUP1  = 0x80
	opPUSH1 = 0x60
	opPUSH4 = 0x63
	opPUSH32 = 0x7f
	opEQ    = 0x14
)

// BuildPCMap walks runtime bytecode, numbering every non-PUSH-payload
// byte as an instruction index (§4.3, §8 invariant: no pc in pcMap lands
// inside a preceding PUSH's payload).
func BuildPCMap(code []byte) map[uint64]int {
	pcMap := make(map[uint64]int, len(code))
	idx := 0
	for pc := 0; pc < len(code); {
		pcMap[uint64(pc)] = idx
		idx++
		op := code[pc]
		if op >= opPUSH1 && op <= opPUSH32 {
			n := int(op-opPUSH1) + 1
			pc += 1 + n
		} else {
			pc++
		}
	}
	return pcMap
}

// BuildFunctionEntryMap scans runtime bytecode for the canonical
// dispatcher pattern `PUSH4 <selector> EQ PUSH1 <pc>` (encoded
// `63<selector>1460<pc>`, §4.3), mapping each discovered entry pc to its
// 4-byte selector rendered as hex.
func BuildFunctionEntryMap(code []byte) map[uint64]string {
	entries := make(map[uint64]string)
	for i := 0; i+8 <= len(code); i++ {
		if code[i] != opPUSH4 {
			continue
		}
		if code[i+5] != opEQ || code[i+6] != opPUSH1 {
			continue
		}
		selector := code[i+1 : i+5]
		pc := code[i+7]
		entries[uint64(pc)] = hexSelector(selector)
	}
	return entries
}

func hexSelector(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, 2+len(b)*2)
	out[0], out[1] = '0', 'x'
	for i, c := range b {
		out[2+i*2] = hextable[c>>4]
		out[2+i*2+1] = hextable[c&0xf]
	}
	return string(out)
}
