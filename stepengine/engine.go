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

package stepengine

import (
	"github.com/core-coin/sdb/ast"
	"github.com/core-coin/sdb/common"
	"github.com/core-coin/sdb/internal/dbglog"
	"github.com/core-coin/sdb/model"
	"github.com/core-coin/sdb/sourcemap"
)

var log = dbglog.New("pkg", "stepengine")

// UserAction is the pending command the facade has buffered (§5
// "A user command issued while the VM is running is buffered by the
// facade and applied at the next pause; only one pending command may
// exist").
type UserAction int

const (
	ActionNone UserAction = iota
	ActionContinue
	ActionStepOver
	ActionStepIn
	ActionStepOut
)

// PendingEvaluation is the bookkeeping an in-flight evaluate() call
// leaves for the step engine to resolve on jump-out (§4.5 step 3, §4.6
// step 9).
type PendingEvaluation struct {
	FunctionName       string
	ExpectedReturnType string
	Callback           func(rawReturnWord common.Hash)
}

// Acknowledger issues the one required response per VM step event (§4.5
// "Acknowledgement contract").
type Acknowledger interface {
	Acknowledge(requestID string, fastStep bool)
}

// Emitter raises UI-facing stop/validated/end events (§2 C8, §4.5).
type Emitter interface {
	Emit(event string, args ...interface{})
}

// RawEvent is the per-instruction event the VM adapter delivers (§4.5).
type RawEvent struct {
	RequestID string
	Address   common.Address
	PC        uint64
	Stack     []common.Hash
	Memory    []byte
	GasLeft   uint64
}

// Engine is the C5 state machine. One Engine is constructed per debug
// session and threaded explicitly rather than used as a singleton (§9
// "Global singletons in the source").
type Engine struct {
	program *model.Program
	ack     Acknowledger
	emit    Emitter

	current  StepData
	hasPrior bool
	prior    StepData

	callStack []Frame

	pendingAction UserAction
	lastStopLine  int
	lastStopFile  string
	snapshotDepth int
	firstStep     bool

	pendingEval *PendingEvaluation
	breakpoints BreakpointSource

	defaultFastStep bool
}

// New constructs an Engine bound to program, which must already reflect
// whatever contracts have linked so far (more may link later). The
// miss-path acknowledgement defaults to fastStep=true until
// SetDefaultFastStep overrides it.
func New(program *model.Program, ack Acknowledger, emit Emitter) *Engine {
	return &Engine{program: program, ack: ack, emit: emit, firstStep: true, defaultFastStep: true}
}

// SetDefaultFastStep overrides the fastStep hint sent whenever no stop
// predicate matches (§10.3 config.DefaultFastStep).
func (e *Engine) SetDefaultFastStep(v bool) { e.defaultFastStep = v }

// RequestAction buffers a user command to test on the next VM event; a
// freshly issued action overwrites the only pending slot (§5).
func (e *Engine) RequestAction(a UserAction) {
	e.pendingAction = a
	if a != ActionNone {
		e.firstStep = false
	}
}

// BeginEvaluation records the in-flight evaluator call so jump-out
// handling can recover its return value (§4.5 step 3, §4.6 step 9).
func (e *Engine) BeginEvaluation(p *PendingEvaluation) { e.pendingEval = p }

// CallStack returns the current reconstructed stack, outermost first,
// with a synthesized top frame for the line currently executing (§3
// "Stack frame": "The top-of-stack for the current executing line is
// synthesized on demand from the live step data, not stored in the frame
// list").
func (e *Engine) CallStack() []Frame {
	frames := make([]Frame, 0, len(e.callStack)+1)
	frames = append(frames, e.callStack...)
	if e.current.HasSource {
		frames = append(frames, Frame{
			FunctionName: e.currentFunctionName(),
			File:         e.currentFilePath(),
			Line:         e.current.Line,
			PC:           0,
		})
	}
	return frames
}

func (e *Engine) currentFunctionName() string {
	c, ok := e.program.ContractByAddress(e.current.Address)
	if !ok {
		return ""
	}
	fn := ast.FindContaining(c.AST, e.current.Location.Start, e.current.Location.Length, "FunctionDefinition")
	if fn == nil {
		return ""
	}
	return fn.Name
}

func (e *Engine) currentFilePath() string {
	c, ok := e.program.ContractByAddress(e.current.Address)
	if !ok {
		return ""
	}
	return c.SourcePath
}

// Current returns the most recently computed StepData.
func (e *Engine) Current() StepData { return e.current }

// HandleEvent runs the §4.5 per-instruction algorithm for one VM step
// event and issues exactly one acknowledgement (steps 1-6), then tests
// the buffered user action's stop predicate.
func (e *Engine) HandleEvent(ev RawEvent) {
	c, ok := e.program.ContractByAddress(ev.Address)
	if !ok {
		e.ackModelGap(ev)
		return
	}

	idx, ok := c.PCMap[ev.PC]
	if !ok {
		e.ackModelGap(ev)
		return
	}
	loc, ok := c.RuntimeSourceMap.AtIndex(idx)
	if !ok {
		e.ackModelGap(ev)
		return
	}

	f := e.program.Files[c.SourcePath]
	line, col := 0, 0
	if f != nil {
		line, col = f.Breaks.LineColumn(loc.Start)
	}

	next := StepData{
		RequestID:      ev.RequestID,
		Address:        ev.Address,
		InstructionIdx: idx,
		Location:       loc,
		Line:           line,
		Column:         col,
		Stack:          ev.Stack,
		Memory:         ev.Memory,
		GasLeft:        ev.GasLeft,
		HasSource:      true,
	}

	e.updateCallStack(c, ev, next)

	next.Scope = ast.ScopeAt(c.AST, loc.Start)
	e.freezeDeclaredVariable(c, loc, int64(len(ev.Stack)))

	e.prior, e.hasPrior = e.current, true
	e.current = next

	e.evaluateStopConditions(c)
}

func (e *Engine) ackModelGap(ev RawEvent) {
	e.prior, e.hasPrior = e.current, e.hasPrior
	e.current = StepData{RequestID: ev.RequestID, Address: ev.Address, HasSource: false}
	e.ack.Acknowledge(ev.RequestID, e.defaultFastStep)
}

// updateCallStack implements §4.5 step 3, keyed on the *previous* step's
// jump field.
func (e *Engine) updateCallStack(c *model.Contract, ev RawEvent, next StepData) {
	if !e.hasPrior || !e.prior.HasSource {
		if name, ok := c.FunctionEntryMap[ev.PC]; ok {
			e.callStack = append(e.callStack, Frame{FunctionName: name, File: c.SourcePath, Line: next.Line, PC: ev.PC})
		}
		return
	}

	switch e.prior.Location.Jump {
	case sourcemap.JumpIn:
		fn := ast.FindContaining(c.AST, e.prior.Location.Start, e.prior.Location.Length, "FunctionDefinition")
		name := ""
		if fn != nil {
			name = fn.Name
		}
		e.callStack = append(e.callStack, Frame{FunctionName: name, File: c.SourcePath, Line: e.prior.Line, PC: ev.PC})
	case sourcemap.JumpOut:
		e.resolvePendingEvaluation(ev)
		if len(e.callStack) > 0 {
			e.callStack = e.callStack[:len(e.callStack)-1]
		}
	default:
		if name, ok := c.FunctionEntryMap[ev.PC]; ok {
			e.callStack = append(e.callStack, Frame{FunctionName: name, File: c.SourcePath, Line: next.Line, PC: ev.PC})
		}
	}
}

// resolvePendingEvaluation implements §4.5 step 3's jump-out case for an
// in-flight evaluation: if the popped frame is the synthesized wrapper,
// decode the topmost stack word as the recorded return type and invoke
// the callback.
func (e *Engine) resolvePendingEvaluation(ev RawEvent) {
	if e.pendingEval == nil || len(e.callStack) == 0 {
		return
	}
	top := e.callStack[len(e.callStack)-1]
	if top.FunctionName != e.pendingEval.FunctionName {
		return
	}
	if len(ev.Stack) == 0 {
		return
	}
	ret := ev.Stack[len(ev.Stack)-1]
	cb := e.pendingEval.Callback
	e.pendingEval = nil
	if cb != nil {
		cb(ret)
	}
}

// freezeDeclaredVariable implements §4.5 step 5: if the current
// instruction sits at a VariableDeclaration node, freeze that variable's
// position at the current stack depth.
func (e *Engine) freezeDeclaredVariable(c *model.Contract, loc sourcemap.Location, stackDepth int64) {
	decl := ast.FindContaining(c.AST, loc.Start, loc.Length, "VariableDeclaration")
	if decl == nil {
		return
	}
	for _, entry := range ast.ScopeAt(c.AST, loc.Start) {
		if v, ok := c.Variable(entry.ASTID, decl.Name); ok {
			v.Freeze(stackDepth)
			return
		}
	}
}
