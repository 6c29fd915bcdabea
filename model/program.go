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
	"fmt"

	"github.com/core-coin/sdb/ast"
	"github.com/core-coin/sdb/common"
	"github.com/core-coin/sdb/sourcemap"
)

// CompilerContract is one entry of a compiler output blob, as handed to
// linkCompilerOutput (§4.3).
type CompilerContract struct {
	Name            string
	SourcePath      string
	Source          string
	CreationCode    []byte
	RuntimeCode     []byte
	RuntimeSrcMap   string
	AST             *ast.Node
}

// Program is the root of the debuggable model: every known source File
// and every known Contract, keyed the way the rest of the system expects
// to look them up (§3 "Program").
type Program struct {
	Files     map[string]*File
	Contracts map[string]*Contract

	sourceMapCache *sourcemap.Cache

	// byAddress indexes contracts once linkContractAddress binds them.
	byAddress map[common.Address]*Contract
}

// NewProgram returns an empty Program with a source-map-index cache of
// the given size (§4.1 "index cache keyed per contract").
func NewProgram(sourceMapCacheSize int) *Program {
	return &Program{
		Files:          map[string]*File{},
		Contracts:      map[string]*Contract{},
		sourceMapCache: sourcemap.NewCache(sourceMapCacheSize),
		byAddress:      map[common.Address]*Contract{},
	}
}

// LinkCompilerOutput builds (or replaces) the File and Contract entries
// described by contracts, in one pass (§4.3 "Built in one pass per
// linkCompilerOutput: for every compiler-output contract, derive pcMap
// and functionEntryMap from the runtime bytecode, and register/overwrite
// the owning File").
func (p *Program) LinkCompilerOutput(contracts []CompilerContract) {
	for _, cc := range contracts {
		f, ok := p.Files[cc.SourcePath]
		if !ok {
			f = NewFile(cc.SourcePath, cc.Source)
			p.Files[cc.SourcePath] = f
		} else {
			f.SetSource(cc.Source)
		}
		if !containsName(f.ContractNames, cc.Name) {
			f.ContractNames = append(f.ContractNames, cc.Name)
		}

		contract := NewContract(cc.Name, cc.SourcePath, cc.CreationCode, cc.RuntimeCode, cc.RuntimeSrcMap, cc.AST)
		if existing, ok := p.Contracts[cc.Name]; ok {
			contract.Address = existing.Address
			contract.Linked = existing.Linked
			if contract.Linked {
				delete(p.byAddress, existing.Address)
				p.byAddress[existing.Address] = contract
			}
		}
		p.Contracts[cc.Name] = contract
		p.sourceMapCache.Invalidate(cc.Name)
	}
}

// LinkContractAddress binds a deployed address to the named contract
// (§4.3 "On linkContractAddress, bind an address to a known contract
// name").
func (p *Program) LinkContractAddress(name string, addr common.Address) error {
	c, ok := p.Contracts[name]
	if !ok {
		return fmt.Errorf("model: unknown contract %q", name)
	}
	c.Address = addr
	c.Linked = true
	p.byAddress[addr] = c
	return nil
}

// ContractByAddress returns the contract bound to addr, if any.
func (p *Program) ContractByAddress(addr common.Address) (*Contract, bool) {
	c, ok := p.byAddress[addr]
	return c, ok
}

// ContractByRuntimeCode finds the contract whose known runtime bytecode
// matches code, used when an adapter trigger names no contract directly
// (§4.3). Unlinked contracts are matched too, since creation-time
// triggers precede address binding.
func (p *Program) ContractByRuntimeCode(code []byte) (*Contract, bool) {
	for _, c := range p.Contracts {
		if c.MatchesRuntimeCode(code) {
			return c, true
		}
	}
	return nil, false
}

// SourceMapIndex resolves (start, length, jump) to a source-map entry
// index for contract name, through the shared cache (§4.1).
func (p *Program) SourceMapIndex(name string, start, length int, jump sourcemap.Jump) (int, bool) {
	c, ok := p.Contracts[name]
	if !ok {
		return 0, false
	}
	return p.sourceMapCache.ToIndex(name, c.RuntimeSourceMap, start, length, jump)
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
