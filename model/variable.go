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

import "github.com/core-coin/sdb/typedecoder"

// Variable is a single declared name visible in some lexical scope (§3
// "Variable").
type Variable struct {
	Name   string
	Type   string // canonical type string, as produced by the compiler
	ASTID  int    // declaring scope's AST node id
	Detail *typedecoder.Detail

	// Position is frozen the first time the step engine observes this
	// variable at its VariableDeclaration node (§3 invariant: "position
	// is null until first observed... then frozen").
	Position  int64
	Positioned bool
}

// Freeze records the variable's stack depth (for Stack/Memory-located
// variables) the first time it's observed; subsequent calls are no-ops,
// matching the "frozen" invariant.
func (v *Variable) Freeze(stackDepth int64) {
	if v.Positioned {
		return
	}
	v.Position = stackDepth
	v.Positioned = true
}
