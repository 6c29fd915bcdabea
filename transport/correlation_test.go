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

package transport

import "testing"

func TestResolveInvokesContinuationOnce(t *testing.T) {
	m := NewCorrelationMap()
	calls := 0
	id := m.Register(func(content interface{}, errStr string) { calls++ })

	m.Resolve(id, "ok", "")
	m.Resolve(id, "ok", "") // duplicate delivery must be a silent no-op

	if calls != 1 {
		t.Fatalf("expected exactly 1 invocation, got %d", calls)
	}
	if m.Pending(id) {
		t.Fatalf("expected id to be removed after resolution")
	}
}

func TestResolveUnknownIDIsNoOp(t *testing.T) {
	m := NewCorrelationMap()
	m.Resolve("never-registered", nil, "") // must not panic
}

func TestEvictDropsWithoutInvoking(t *testing.T) {
	m := NewCorrelationMap()
	called := false
	id := m.Register(func(content interface{}, errStr string) { called = true })

	m.Evict(id)
	m.Resolve(id, nil, "")

	if called {
		t.Fatalf("expected evicted continuation to never fire")
	}
}

func TestClearDropsAllPending(t *testing.T) {
	m := NewCorrelationMap()
	var fired []string
	a := m.Register(func(content interface{}, errStr string) { fired = append(fired, "a") })
	b := m.Register(func(content interface{}, errStr string) { fired = append(fired, "b") })

	m.Clear()
	m.Resolve(a, nil, "")
	m.Resolve(b, nil, "")

	if len(fired) != 0 {
		t.Fatalf("expected no continuations to fire after Clear, got %v", fired)
	}
}

func TestRegisterIDUsesCallerSuppliedID(t *testing.T) {
	m := NewCorrelationMap()
	got := ""
	m.RegisterID("step-42", func(content interface{}, errStr string) { got = content.(string) })

	if !m.Pending("step-42") {
		t.Fatalf("expected step-42 to be pending")
	}
	m.Resolve("step-42", "ack", "")
	if got != "ack" {
		t.Fatalf("expected continuation to receive the resolved content, got %q", got)
	}
}
