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

// Package transport implements the single-threaded correlation map of §5
// "Suspension points": every outbound request is keyed by a fresh opaque
// id, and the response dispatcher resumes and removes the matching
// continuation. A duplicate or unmatched id is a silent no-op, so two
// responses for one id never double-fire a continuation.
package transport

import (
	"sync"

	mapset "github.com/deckarep/golang-set"
	"github.com/pborman/uuid"
)

// Continuation is resumed exactly once, when its id's response arrives.
type Continuation func(content interface{}, errStr string)

// CorrelationMap owns the pending-request table. Safe for the
// single-threaded dispatcher to call from one goroutine; the embedded
// mutex only guards against the rare case of a background ping timeout
// firing concurrently with message dispatch (§5 "ping ... 1-second
// timeout").
type CorrelationMap struct {
	mu      sync.Mutex
	pending map[string]Continuation
	ids     mapset.Set // mirrors the pending map's keys for fast membership checks
}

// NewCorrelationMap returns an empty map.
func NewCorrelationMap() *CorrelationMap {
	return &CorrelationMap{
		pending: map[string]Continuation{},
		ids:     mapset.NewSet(),
	}
}

// NewID mints a fresh opaque request id.
func NewID() string {
	return uuid.New()
}

// Register records cont under a fresh id and returns it.
func (c *CorrelationMap) Register(cont Continuation) string {
	id := NewID()
	c.mu.Lock()
	c.pending[id] = cont
	c.ids.Add(id)
	c.mu.Unlock()
	return id
}

// RegisterID records cont under an explicit id, used when the id is
// dictated by the inbound request we're answering (e.g. a VM step
// event's own id) rather than one we mint ourselves.
func (c *CorrelationMap) RegisterID(id string, cont Continuation) {
	c.mu.Lock()
	c.pending[id] = cont
	c.ids.Add(id)
	c.mu.Unlock()
}

// Resolve looks up and removes id's continuation, then invokes it. A
// missing id is a silent no-op (§5: "a missing id in the map is a silent
// no-op (idempotent duplicate delivery)").
func (c *CorrelationMap) Resolve(id string, content interface{}, errStr string) {
	c.mu.Lock()
	cont, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
		c.ids.Remove(id)
	}
	c.mu.Unlock()
	if ok {
		cont(content, errStr)
	}
}

// Evict removes id without invoking its continuation, used by the ping
// timeout path (§5 "the pending id is evicted").
func (c *CorrelationMap) Evict(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.ids.Remove(id)
	c.mu.Unlock()
}

// Pending reports whether id currently has a continuation awaiting it.
func (c *CorrelationMap) Pending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ids.Contains(id)
}

// Clear drops every pending continuation without invoking them, used on
// fatal VM-adapter disconnect (§7.6).
func (c *CorrelationMap) Clear() {
	c.mu.Lock()
	c.pending = map[string]Continuation{}
	c.ids = mapset.NewSet()
	c.mu.Unlock()
}
