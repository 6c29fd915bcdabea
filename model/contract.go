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

import (
	"bytes"

	"github.com/core-coin/sdb/ast"
	"github.com/core-coin/sdb/common"
	"github.com/core-coin/sdb/sourcemap"
)

// Contract is one deployed-or-deployable contract (§3 "Contract").
type Contract struct {
	Name       string
	SourcePath string

	Address common.Address
	Linked  bool

	CreationBytecode []byte
	RuntimeBytecode  []byte

	RuntimeSourceMapRaw string
	RuntimeSourceMap     sourcemap.SourceMap

	PCMap            map[uint64]int
	FunctionEntryMap map[uint64]string

	AST *ast.Node

	// ScopeVariables maps an AST node id to the variables declared
	// directly in that scope, by name (§3 "scopeVariables").
	ScopeVariables map[int]map[string]*Variable
}

// NewContract builds a Contract from one compiler output entry, deriving
// PCMap/FunctionEntryMap/RuntimeSourceMap from the runtime bytecode and
// source map string (§4.3 "Built in one pass per linkCompilerOutput").
func NewContract(name, sourcePath string, creation, runtime []byte, runtimeSrcMap string, root *ast.Node) *Contract {
	return &Contract{
		Name:                 name,
		SourcePath:           sourcePath,
		CreationBytecode:     creation,
		RuntimeBytecode:      runtime,
		RuntimeSourceMapRaw:  runtimeSrcMap,
		RuntimeSourceMap:     sourcemap.Parse(runtimeSrcMap),
		PCMap:                BuildPCMap(runtime),
		FunctionEntryMap:     BuildFunctionEntryMap(runtime),
		AST:                  root,
		ScopeVariables:       map[int]map[string]*Variable{},
	}
}

// MatchesRuntimeCode reports whether code equals this contract's known
// runtime bytecode, used to deduce which contract a `newContract` trigger
// belongs to when the adapter doesn't name it directly (§4.3).
func (c *Contract) MatchesRuntimeCode(code []byte) bool {
	return bytes.Equal(c.RuntimeBytecode, code)
}

// Variable looks up a declared variable by (astID, name), walking no
// further than the given scope — callers resolve the full chain via the
// scope list returned by ast.ScopeAt.
func (c *Contract) Variable(astID int, name string) (*Variable, bool) {
	scope, ok := c.ScopeVariables[astID]
	if !ok {
		return nil, false
	}
	v, ok := scope[name]
	return v, ok
}

// DeclareVariable registers v under astID/v.Name.
func (c *Contract) DeclareVariable(astID int, v *Variable) {
	scope, ok := c.ScopeVariables[astID]
	if !ok {
		scope = map[string]*Variable{}
		c.ScopeVariables[astID] = scope
	}
	scope[v.Name] = v
}

// RebuildCode replaces bytecode/source-map/AST after a recompile (§4.6
// step 7), recomputing the derived indexes.
func (c *Contract) RebuildCode(creation, runtime []byte, runtimeSrcMap string, root *ast.Node) {
	c.CreationBytecode = creation
	c.RuntimeBytecode = runtime
	c.RuntimeSourceMapRaw = runtimeSrcMap
	c.RuntimeSourceMap = sourcemap.Parse(runtimeSrcMap)
	c.PCMap = BuildPCMap(runtime)
	c.FunctionEntryMap = BuildFunctionEntryMap(runtime)
	c.AST = root
}

// Clone makes a shallow-structural copy suitable for the evaluator's
// shadow working copy (§4.6 step 2, §5 "Shared resources"): slices and
// the scope map are copied so mutating the clone never touches the
// committed Contract until the evaluator replaces it atomically.
func (c *Contract) Clone() *Contract {
	clone := *c
	clone.CreationBytecode = append([]byte{}, c.CreationBytecode...)
	clone.RuntimeBytecode = append([]byte{}, c.RuntimeBytecode...)
	clone.PCMap = make(map[uint64]int, len(c.PCMap))
	for k, v := range c.PCMap {
		clone.PCMap[k] = v
	}
	clone.FunctionEntryMap = make(map[uint64]string, len(c.FunctionEntryMap))
	for k, v := range c.FunctionEntryMap {
		clone.FunctionEntryMap[k] = v
	}
	clone.ScopeVariables = make(map[int]map[string]*Variable, len(c.ScopeVariables))
	for astID, vars := range c.ScopeVariables {
		inner := make(map[string]*Variable, len(vars))
		for name, v := range vars {
			cp := *v
			inner[name] = &cp
		}
		clone.ScopeVariables[astID] = inner
	}
	return &clone
}
