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

package eval

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/core-coin/sdb/ast"
	"github.com/core-coin/sdb/common"
	"github.com/core-coin/sdb/model"
	"github.com/core-coin/sdb/stepengine"
)

type fakeCompiler struct {
	result CompileResult
	err    error
}

func (f *fakeCompiler) Compile(rootPath string, sources map[string]string, contractName string) (CompileResult, error) {
	return f.result, f.err
}

type fakeInjector struct{ called bool }

func (f *fakeInjector) InjectNewCode(address [20]byte, code []byte, pc uint64, onAck func()) {
	f.called = true
	onAck()
}

type fakeResolver struct{ vars map[string]*model.Variable }

func (f *fakeResolver) ResolveVariable(contractName string, scope []int, name string) (*model.Variable, bool) {
	v, ok := f.vars[name]
	return v, ok
}

type fakeStepper struct{ pending *stepengine.PendingEvaluation }

func (f *fakeStepper) BeginEvaluation(p *stepengine.PendingEvaluation) { f.pending = p }

// wrapperCallPattern pulls the synthesized wrapper's call-site name out of
// a mutated source, mirroring callEntryPC's lookup by FunctionCall.Name.
var wrapperCallPattern = regexp.MustCompile(`(sdb_[0-9a-fA-F-]+)\(`)

// synthesizingCompiler fakes a successful recompile: it locates the
// synthesized wrapper's reference call in the mutated source it's handed
// and reports just enough AST/source-map/bytecode for callEntryPC (§4.6
// step 8) to resolve a pc for it.
type synthesizingCompiler struct{ returnType string }

func (s *synthesizingCompiler) Compile(rootPath string, sources map[string]string, contractName string) (CompileResult, error) {
	var src string
	for _, v := range sources {
		src = v
	}
	m := wrapperCallPattern.FindStringSubmatch(src)
	if m == nil {
		return CompileResult{}, errors.New("no synthesized call found")
	}
	call := &ast.Node{ID: 1, Kind: "FunctionCall", Name: m[1], Start: 0, Length: 1}
	root := &ast.Node{ID: 0, Kind: "ContractDefinition", Start: 0, Length: len(src), Children: []*ast.Node{call}}
	return CompileResult{
		CreationCode:  []byte{0x00},
		RuntimeCode:   []byte{0x00},
		RuntimeSrcMap: "0:1:0:-",
		AST:           root,
	}, nil
}

func buildEvalProgram() *model.Program {
	src := "pragma solidity ^0.8.0;\ncontract C {\n  function f(uint x) public {\n    uint y = x + 1;\n  }\n}\n"
	root := &ast.Node{ID: 0, Kind: "ContractDefinition", Start: 0, Length: len(src)}
	runtime := []byte{0x00}
	p := model.NewProgram(8)
	p.LinkCompilerOutput([]model.CompilerContract{{
		Name: "C", SourcePath: "c.sol", Source: src,
		CreationCode: runtime, RuntimeCode: runtime, RuntimeSrcMap: "0:1:0:-", AST: root,
	}})
	return p
}

func TestEvaluateRejectsHoverContext(t *testing.T) {
	p := buildEvalProgram()
	e := New(p, &fakeCompiler{}, &fakeInjector{}, &fakeResolver{vars: map[string]*model.Variable{}}, &fakeStepper{})

	var gotErr error
	e.Evaluate(Request{Expression: "x", ContextHint: "hover", ContractName: "C"}, func(result string, err error) {
		gotErr = err
	})
	require.Error(t, gotErr)
}

func TestEvaluateRejectsWhenAlreadyInProgress(t *testing.T) {
	p := buildEvalProgram()
	e := New(p, &fakeCompiler{}, &fakeInjector{}, &fakeResolver{vars: map[string]*model.Variable{}}, &fakeStepper{})
	e.inProgress = true // simulate a prior evaluation still awaiting its return value

	var gotErr error
	e.Evaluate(Request{Expression: "2", ContractName: "C", CurrentLine: 4}, func(result string, err error) {
		gotErr = err
	})
	require.Error(t, gotErr)
}

func TestEvaluateAbortsOnUnfixableCompileError(t *testing.T) {
	p := buildEvalProgram()
	compiler := &fakeCompiler{err: errors.New("totally unrelated syntax error")}
	e := New(p, compiler, &fakeInjector{}, &fakeResolver{vars: map[string]*model.Variable{}}, &fakeStepper{})

	var gotErr error
	e.Evaluate(Request{Expression: "x", ContractName: "C", CurrentLine: 4}, func(result string, err error) {
		gotErr = err
	})
	require.Error(t, gotErr)
	require.False(t, e.inProgress, "expected inProgress to be cleared after abort")
}

func TestEvaluateSuccessBeginsPendingEvaluationAndDeliversResult(t *testing.T) {
	p := buildEvalProgram()
	var addr common.Address
	addr[19] = 1
	require.NoError(t, p.LinkContractAddress("C", addr))

	steps := &fakeStepper{}
	injector := &fakeInjector{}
	e := New(p, &synthesizingCompiler{}, injector, &fakeResolver{vars: map[string]*model.Variable{}}, steps)

	var gotResult string
	var gotErr error
	e.Evaluate(Request{Expression: "2", ContractName: "C", CurrentLine: 4}, func(result string, err error) {
		gotResult = result
		gotErr = err
	})

	require.True(t, injector.called, "expected the wrapper's bytecode to be injected")
	require.NotNil(t, steps.pending, "expected Evaluate to call steps.BeginEvaluation")
	require.Equal(t, "bool", steps.pending.ExpectedReturnType)
	require.True(t, e.inProgress, "expected inProgress to stay set until the pending evaluation resolves")

	var word common.Hash
	word[31] = 1 // true
	steps.pending.Callback(word)

	require.NoError(t, gotErr)
	require.Equal(t, "true", gotResult)
	require.False(t, e.inProgress, "expected inProgress to clear once the pending evaluation resolves")
}
