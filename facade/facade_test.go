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

package facade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/core-coin/sdb/ast"
	"github.com/core-coin/sdb/breakpoint"
	"github.com/core-coin/sdb/common"
	"github.com/core-coin/sdb/eval"
	"github.com/core-coin/sdb/model"
	"github.com/core-coin/sdb/stepengine"
)

type fakeSender struct{}

func (fakeSender) SendBreakpoint(id int, address [20]byte, pc uint64, enabled, isRuntime bool) {}

type fakeAck struct{}

func (fakeAck) Acknowledge(requestID string, fastStep bool) {}

type fakeEmit struct{ events []string }

func (e *fakeEmit) Emit(event string, args ...interface{}) { e.events = append(e.events, event) }

type fakeCompiler struct{}

func (fakeCompiler) Compile(root string, sources map[string]string, name string) (eval.CompileResult, error) {
	return eval.CompileResult{}, nil
}

type fakeInjector struct{}

func (fakeInjector) InjectNewCode(address [20]byte, code []byte, pc uint64, onAck func()) {}

type fakeResolver struct{}

func (fakeResolver) ResolveVariable(contractName string, scope []int, name string) (*model.Variable, bool) {
	return nil, false
}

type fakePinger struct{ ok bool }

func (p fakePinger) Ping(timeout time.Duration) bool { return p.ok }

func buildFacade() *Facade {
	src := "contract C {\n}\n"
	root := &ast.Node{ID: 0, Kind: "ContractDefinition", Start: 0, Length: len(src)}
	runtime := []byte{0x00}
	p := model.NewProgram(8)
	p.LinkCompilerOutput([]model.CompilerContract{{
		Name: "C", SourcePath: "c.sol", Source: src,
		CreationCode: runtime, RuntimeCode: runtime, RuntimeSrcMap: "0:1:0:-", AST: root,
	}})
	var addr common.Address
	addr[19] = 1
	p.LinkContractAddress("C", addr)

	emit := &fakeEmit{}
	steps := stepengine.New(p, fakeAck{}, emit)
	bps := breakpoint.New(p, fakeSender{}, nil)
	evaluator := eval.New(p, fakeCompiler{}, fakeInjector{}, fakeResolver{}, steps)
	return New(p, steps, bps, evaluator, emit)
}

func TestStepBackUnsupported(t *testing.T) {
	f := buildFacade()
	require.Error(t, f.StepBack())
	require.Error(t, f.ContinueReverse())
}

func TestPingTimeoutReportsFalse(t *testing.T) {
	f := buildFacade()
	var got bool
	f.Ping(fakePinger{ok: false}, func(ok bool) { got = ok })
	require.False(t, got, "expected ping to report false on timeout")
}

func TestStackClampsRangeBeforeAnyStep(t *testing.T) {
	f := buildFacade()
	// No step event has been processed yet, so there's no current frame
	// and no call-stack entries; Stack must not panic on an empty range.
	require.Empty(t, f.Stack(0, 100))
}

func TestVariablesEmptyContractReturnsNil(t *testing.T) {
	f := buildFacade()
	require.Empty(t, f.Variables("C", 0, nil, nil, nil))
}
