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

package vmadapter

import "github.com/core-coin/sdb/common"

// StorageReader adapts one Adapter, bound to a single address, into the
// typedecoder.StorageReader shape the decoder expects (§4.2 "external
// storage fetch interface"). Word blocks its caller on the correlated
// getStorage round trip; the block is safe because the response is
// resolved on the channel's own read goroutine (vmadapter.Adapter.Resolve,
// called from engine.Session.Run's VM-frame reader), independent of
// whatever the single dispatcher loop is doing. Looked-up words are
// cached per reader instance so one Variables() expansion never
// re-fetches the same slot twice.
type StorageReader struct {
	adapter *Adapter
	address common.Address
	cache   map[common.Hash]common.Hash
}

// NewStorageReader binds a StorageReader to address over adapter.
func NewStorageReader(adapter *Adapter, address common.Address) *StorageReader {
	return &StorageReader{adapter: adapter, address: address, cache: map[common.Hash]common.Hash{}}
}

// Word fetches (and caches) one storage slot, satisfying
// typedecoder.StorageReader.
func (r *StorageReader) Word(slot common.Hash) (common.Hash, bool) {
	if w, ok := r.cache[slot]; ok {
		return w, true
	}
	result := make(chan struct {
		word common.Hash
		ok   bool
	}, 1)
	r.adapter.GetStorage(r.address, slot, func(word common.Hash, ok bool) {
		result <- struct {
			word common.Hash
			ok   bool
		}{word, ok}
	})
	got := <-result
	if got.ok {
		r.cache[slot] = got.word
	}
	return got.word, got.ok
}
