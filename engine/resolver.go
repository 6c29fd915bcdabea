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

package engine

import "github.com/core-coin/sdb/model"

// ProgramResolver satisfies eval.Resolver directly off a Program, walking
// a frame's scope chain from innermost to outermost AST id and returning
// the first declaration of name (§4.6 step 3 "resolve free identifiers
// against the current scope chain").
type ProgramResolver struct {
	Program *model.Program
}

// ResolveVariable implements eval.Resolver.
func (r ProgramResolver) ResolveVariable(contractName string, frameScope []int, name string) (*model.Variable, bool) {
	c, ok := r.Program.Contracts[contractName]
	if !ok {
		return nil, false
	}
	for _, astID := range frameScope {
		if v, ok := c.Variable(astID, name); ok {
			return v, true
		}
	}
	return nil, false
}
