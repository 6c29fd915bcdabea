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

// Package eval implements the expression evaluator of §4.6: synthesize a
// wrapper function around an expression, recompile, splice the mutated
// source back into the program model, inject the wrapper's runtime
// bytecode into the paused VM, and recover its return value once the
// step engine observes the matching frame pop.
package eval

import (
	"fmt"
	"regexp"

	"github.com/dlclark/regexp2"
	"github.com/pborman/uuid"

	"github.com/core-coin/sdb/ast"
	"github.com/core-coin/sdb/common"
	"github.com/core-coin/sdb/internal/dbgerrors"
	"github.com/core-coin/sdb/internal/dbglog"
	"github.com/core-coin/sdb/model"
	"github.com/core-coin/sdb/stepengine"
	"github.com/core-coin/sdb/typedecoder"
)

var log = dbglog.New("pkg", "eval")

// identifierPattern extracts bare identifiers from an expression well
// enough to resolve each against the frame's scope chain (§4.6 step 3).
// This is deliberately not a full expression parser — the evaluator only
// needs the *set* of names an expression references.
var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// returnTypeNotConvertible matches the compiler's diagnostic for a
// wrapper whose declared `returns (bool)` doesn't fit the expression's
// actual type (§4.6 step 6). Built with dlclark/regexp2 because the
// compiler's message is free-form prose, not a fixed-width field list.
var returnTypeNotConvertible = regexp2.MustCompile(
	`Return argument type (.*) is not implicitly convertible`, regexp2.None)

// Compiler is the external compiler collaborator (§1 "the on-disk
// compiler toolchain" is out of scope; this is its seam).
type Compiler interface {
	// Compile returns creation bytecode, runtime bytecode, the runtime
	// source map string, and the AST root for sourcePath's contract
	// named contractName within the full multi-file source set. An
	// error's message is inspected for the return-type diagnostic.
	Compile(sourceRootPath string, sources map[string]string, contractName string) (CompileResult, error)
}

// CompileResult is what a successful Compiler.Compile call returns.
type CompileResult struct {
	CreationCode  []byte
	RuntimeCode   []byte
	RuntimeSrcMap string
	AST           interface{} // used when it holds an *ast.Node; any other value keeps the contract's existing AST
}

// Injector is the subset of the VM adapter protocol evaluation drives
// (§4.6 step 10 "putCodeRequest").
type Injector interface {
	InjectNewCode(address [20]byte, code []byte, pc uint64, onAck func())
}

// Resolver looks up a Variable visible at a given frame, used to type
// the wrapper's parameter list (§4.6 step 3).
type Resolver interface {
	ResolveVariable(contractName string, frameScope []int, name string) (*model.Variable, bool)
}

// Stepper receives pending-evaluation bookkeeping so the step engine can
// recover an evaluate() call's return value on the matching jump-out and
// deliver it through the caller's Callback (§4.6 step 9 / §4.5 step 3).
type Stepper interface {
	BeginEvaluation(p *stepengine.PendingEvaluation)
}

// Evaluator runs at most one expression evaluation at a time (§4.6 step
// 1: "Reject if another evaluation is in progress").
type Evaluator struct {
	program  *model.Program
	compiler Compiler
	inject   Injector
	resolve  Resolver
	steps    Stepper

	inProgress bool
}

// New constructs an Evaluator wired to its collaborators.
func New(program *model.Program, compiler Compiler, inject Injector, resolve Resolver, steps Stepper) *Evaluator {
	return &Evaluator{program: program, compiler: compiler, inject: inject, resolve: resolve, steps: steps}
}

// Request is one evaluate() call (§4.6).
type Request struct {
	Expression  string
	ContextHint string
	FrameID     int

	ContractName string
	FrameScope   []int // ast ids, innermost first
	CurrentLine  int
	CurrentPC    uint64
}

// Callback receives the decoded result string, or err on failure.
type Callback func(result string, err error)

// Evaluate runs steps 1-10 of §4.6 up to VM injection; the return value
// is recovered asynchronously by the step engine on the matching
// jump-out and delivered through cb.
func (e *Evaluator) Evaluate(req Request, cb Callback) {
	if e.inProgress {
		cb("", &dbgerrors.EvaluatorError{Reason: "an evaluation is already in progress"})
		return
	}
	if req.ContextHint == "hover" {
		cb("", &dbgerrors.EvaluatorError{Reason: "hover evaluation is not supported"})
		return
	}

	contract, ok := e.program.Contracts[req.ContractName]
	if !ok {
		cb("", &dbgerrors.EvaluatorError{Reason: "unknown contract " + req.ContractName})
		return
	}
	file, ok := e.program.Files[contract.SourcePath]
	if !ok {
		cb("", &dbgerrors.EvaluatorError{Reason: "unknown source file for " + req.ContractName})
		return
	}

	workingContract := contract.Clone()
	names := identifierPattern.FindAllString(req.Expression, -1)
	args, err := e.resolveArgs(req, names)
	if err != nil {
		cb("", err)
		return
	}

	id := "sdb_" + uuid.New()
	plan := splicePlan{
		functionID:  id,
		expression:  req.Expression,
		args:        args,
		currentLine: req.CurrentLine,
	}

	e.inProgress = true
	mutatedSource, refLine, bodyLine := splice(file.Source, plan)

	returnType := "bool"
	result, compileErr := e.compiler.Compile(contract.SourcePath, map[string]string{contract.SourcePath: mutatedSource}, contract.Name)
	if compileErr != nil {
		fixed, newType, ok := tryFixReturnType(compileErr.Error())
		if !ok {
			e.inProgress = false
			cb("", &dbgerrors.EvaluatorError{Reason: compileErr.Error()})
			return
		}
		returnType = newType
		mutatedSource = fixed(mutatedSource, plan.functionID)
		result, compileErr = e.compiler.Compile(contract.SourcePath, map[string]string{contract.SourcePath: mutatedSource}, contract.Name)
		if compileErr != nil {
			e.inProgress = false
			cb("", &dbgerrors.EvaluatorError{Reason: compileErr.Error()})
			return
		}
	}

	file.SetSource(mutatedSource)
	file.ShiftLineOffsets(plan.currentLine, refLine+bodyLine)

	// The recompiled AST names the synthesized wrapper (callEntryPC below
	// needs it); fall back to the pre-evaluation AST only if the compiler
	// collaborator didn't decode one, so a thin test double still works.
	newAST, _ := result.AST.(*ast.Node)
	if newAST == nil {
		newAST = contract.AST
	}
	workingContract.RebuildCode(result.CreationCode, result.RuntimeCode, result.RuntimeSrcMap, newAST)
	e.program.Contracts[contract.Name] = workingContract

	pc, ok := callEntryPC(workingContract, id)
	if !ok {
		e.inProgress = false
		cb("", &dbgerrors.EvaluatorError{Reason: "could not locate synthesized call " + id})
		return
	}

	e.steps.BeginEvaluation(&stepengine.PendingEvaluation{
		FunctionName:       id,
		ExpectedReturnType: returnType,
		Callback: func(rawReturnWord common.Hash) {
			e.inProgress = false
			decoded, err := typedecoder.DecodeWord(rawReturnWord, returnType)
			if err != nil {
				cb("", err)
				return
			}
			cb(decoded, nil)
		},
	})

	e.inject.InjectNewCode(workingContract.Address, workingContract.RuntimeBytecode, pc, func() {
		log.Debug("evaluator injected wrapper", "id", id, "pc", pc)
	})
}

func (e *Evaluator) resolveArgs(req Request, names []string) ([]argBinding, error) {
	seen := map[string]bool{}
	var args []argBinding
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		v, ok := e.resolve.ResolveVariable(req.ContractName, req.FrameScope, n)
		if !ok {
			continue // not every identifier is a variable (could be a literal keyword); best-effort
		}
		args = append(args, argBinding{name: n, typeName: v.Type})
	}
	return args, nil
}

type argBinding struct {
	name     string
	typeName string
}

func (a argBinding) String() string { return fmt.Sprintf("%s %s", a.typeName, a.name) }
