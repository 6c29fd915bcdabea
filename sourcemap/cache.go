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

import lru "github.com/hashicorp/golang-lru"

// toIndexKey identifies one ToIndex lookup against one contract's map.
type toIndexKey struct {
	contract string
	start    int
	length   int
	jump     Jump
}

// Cache memoizes ToIndex lookups per contract, the lookups breakpoint
// resolution makes through model.Program.SourceMapIndex. AtIndex calls
// are not cached. Invalidate drops a contract's entries.
type Cache struct {
	lru *lru.Cache
}

// NewCache creates a Cache holding up to size entries.
func NewCache(size int) *Cache {
	c, err := lru.New(size)
	if err != nil {
		// Only returns an error for size <= 0.
		c, _ = lru.New(256)
	}
	return &Cache{lru: c}
}

type indexResult struct {
	idx int
	ok  bool
}

// ToIndex looks up, and caches, m.ToIndex(start, length, jump) under the
// given contract key.
func (c *Cache) ToIndex(contract string, m SourceMap, start, length int, jump Jump) (int, bool) {
	key := toIndexKey{contract, start, length, jump}
	if v, ok := c.lru.Get(key); ok {
		r := v.(indexResult)
		return r.idx, r.ok
	}
	idx, ok := m.ToIndex(start, length, jump)
	c.lru.Add(key, indexResult{idx, ok})
	return idx, ok
}

// Invalidate drops every cached entry for a contract, called after the
// evaluator replaces its source map (§4.6 step 7).
func (c *Cache) Invalidate(contract string) {
	for _, k := range c.lru.Keys() {
		if tk, ok := k.(toIndexKey); ok && tk.contract == contract {
			c.lru.Remove(k)
		}
	}
}
