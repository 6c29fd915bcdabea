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

package stepengine

import "github.com/core-coin/sdb/common"

// stackReader and memoryReader satisfy typedecoder.StackReader /
// typedecoder.MemoryReader directly over one StepData's raw VM snapshot
// (§4.2 "Stack value" / "Memory value"), so the facade's Variables call
// never has to reshape raw arrays itself.
type stackReader struct{ words []common.Hash }

func (s stackReader) Word(depth int64) (common.Hash, bool) {
	if depth < 0 || depth >= int64(len(s.words)) {
		return common.Hash{}, false
	}
	return s.words[depth], true
}

type memoryReader struct{ bytes []byte }

func (m memoryReader) Word(byteOffset int64) (common.Hash, bool) {
	if byteOffset < 0 || byteOffset+common.HashLength > int64(len(m.bytes)) {
		return common.Hash{}, false
	}
	return common.BytesToHash(m.bytes[byteOffset : byteOffset+common.HashLength]), true
}

// StackReader exposes the current step's stack for decoding.
func (d StepData) StackReader() stackReader { return stackReader{words: d.Stack} }

// MemoryReader exposes the current step's linear memory for decoding.
func (d StepData) MemoryReader() memoryReader { return memoryReader{bytes: d.Memory} }
