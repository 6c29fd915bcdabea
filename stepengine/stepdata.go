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

// Package stepengine implements the VM event state machine of §4.5: it
// maintains a reconstructed call stack and current lexical scope by
// correlating program counters with the source map and AST, tests step
// and breakpoint predicates, and issues exactly one acknowledgement per
// VM step event.
package stepengine

import (
	"github.com/core-coin/sdb/ast"
	"github.com/core-coin/sdb/common"
	"github.com/core-coin/sdb/sourcemap"
)

// Frame is one reconstructed call-stack entry (§3 "Stack frame").
type Frame struct {
	FunctionName string
	File         string
	Line         int
	PC           uint64 // pc at the call site
}

// StepData is the volatile per-event snapshot (§3 "StepData").
type StepData struct {
	RequestID string

	Address        common.Address
	InstructionIdx int
	Location       sourcemap.Location
	Line, Column   int

	Stack   []common.Hash
	Memory  []byte
	GasLeft uint64

	Scope []ast.ScopeEntry

	// HasSource is false for §7.2 "model gap" events: unlinked address or
	// pc with no source mapping. Such events are never stop candidates.
	HasSource bool
}
