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

// Package facade exposes the coarse client-facing API of §2 C8/§4.8:
// start, continue, step×, stack, variables, setBreakpoint,
// clearBreakpoints, evaluate, and ping — and emits the UI events that
// drive a debug-adapter-style client.
package facade

import (
	"time"

	"github.com/core-coin/sdb/breakpoint"
	"github.com/core-coin/sdb/eval"
	"github.com/core-coin/sdb/internal/dbgerrors"
	"github.com/core-coin/sdb/model"
	"github.com/core-coin/sdb/stepengine"
	"github.com/core-coin/sdb/typedecoder"
)

// UIEmitter raises the server-initiated UI events of §6 ("content =
// {event, args}").
type UIEmitter interface {
	Emit(event string, args ...interface{})
}

// Facade is the single entry point a UI client drives (§2 C8). It wires
// together the step engine, breakpoint registry, and evaluator against
// one Program, per the explicit-engine-value design note in §9.
type Facade struct {
	program    *model.Program
	steps      *stepengine.Engine
	breakpoints *breakpoint.Registry
	evaluator  *eval.Evaluator
	emit       UIEmitter

	started bool
}

// New wires a Facade from its already-constructed collaborators.
func New(program *model.Program, steps *stepengine.Engine, breakpoints *breakpoint.Registry, evaluator *eval.Evaluator, emit UIEmitter) *Facade {
	return &Facade{program: program, steps: steps, breakpoints: breakpoints, evaluator: evaluator, emit: emit}
}

// Start marks the session ready to receive step events; stopOnEntry is
// emitted by the step engine's first HandleEvent call, not here (§4.5).
func (f *Facade) Start(stopOnEntry bool) {
	f.started = true
}

// Continue buffers a run-to-next-breakpoint command (§5).
func (f *Facade) Continue() { f.steps.RequestAction(stepengine.ActionContinue) }

// StepOver buffers a step-over command.
func (f *Facade) StepOver() { f.steps.RequestAction(stepengine.ActionStepOver) }

// StepIn buffers a step-in command.
func (f *Facade) StepIn() { f.steps.RequestAction(stepengine.ActionStepIn) }

// StepOut buffers a step-out command.
func (f *Facade) StepOut() { f.steps.RequestAction(stepengine.ActionStepOut) }

// StepBack and ContinueReverse are explicit unsupported operations (§1
// Non-goals: "We do not attempt reverse execution").
func (f *Facade) StepBack() error { return &dbgerrors.ProtocolError{Reason: "reverse execution is not supported"} }

func (f *Facade) ContinueReverse() error {
	return &dbgerrors.ProtocolError{Reason: "reverse execution is not supported"}
}

// Stack returns call-stack frames [startFrame, endFrame), outermost
// first per §6 "stack{startFrame, endFrame}", with the synthesized
// current-line frame last.
func (f *Facade) Stack(startFrame, endFrame int) []stepengine.Frame {
	frames := f.steps.CallStack()
	if startFrame < 0 {
		startFrame = 0
	}
	if endFrame > len(frames) || endFrame <= 0 {
		endFrame = len(frames)
	}
	if startFrame >= endFrame {
		return nil
	}
	return frames[startFrame:endFrame]
}

// SetBreakpoint forwards to the breakpoint registry; breakpointValidated
// is emitted by the registry's Notifier on resolution (including a later
// resolution via ReverifyForPath), not here, so it is never double-fired.
func (f *Facade) SetBreakpoint(path string, line int, originalSource bool) *breakpoint.Breakpoint {
	return f.breakpoints.SetBreakpoint(path, line, true, originalSource)
}

// ClearBreakpoints forwards to the breakpoint registry.
func (f *Facade) ClearBreakpoints(path string) { f.breakpoints.ClearBreakpoints(path) }

// Evaluate forwards to the evaluator.
func (f *Facade) Evaluate(req eval.Request, cb eval.Callback) { f.evaluator.Evaluate(req, cb) }

// PingResult is delivered to a Ping callback.
type PingResult struct{ OK bool }

// Pinger issues the transport-level ping and reports whether a pong
// arrived within the timeout.
type Pinger interface {
	Ping(timeout time.Duration) bool
}

// Ping implements §5 "ping with a 1-second timeout": if no reply
// arrives, the callback fires with false.
func (f *Facade) Ping(pinger Pinger, cb func(ok bool)) {
	cb(pinger.Ping(1 * time.Second))
}

// Variables implements §4.8's lazy-expansion rule: variablesReference==0
// returns all in-scope root variables; otherwise the children of the
// detail node with that id.
func (f *Facade) Variables(contractName string, variablesReference int, stack typedecoder.StackReader, memory typedecoder.MemoryReader, storage typedecoder.StorageReader) []typedecoder.Decoded {
	c, ok := f.program.Contracts[contractName]
	if !ok {
		return nil
	}
	if variablesReference == 0 {
		return f.rootVariables(c, stack, memory, storage)
	}
	return f.expandDetail(c, variablesReference, stack, memory, storage)
}

func (f *Facade) rootVariables(c *model.Contract, stack typedecoder.StackReader, memory typedecoder.MemoryReader, storage typedecoder.StorageReader) []typedecoder.Decoded {
	var out []typedecoder.Decoded
	scope := f.steps.Current().Scope
	for _, entry := range scope {
		vars, ok := c.ScopeVariables[entry.ASTID]
		if !ok {
			continue
		}
		for _, v := range vars {
			out = append(out, typedecoder.Decode(v.Name, v.Type, v.Detail, v.Position, stack, memory, storage))
		}
	}
	return out
}

func (f *Facade) expandDetail(c *model.Contract, ref int, stack typedecoder.StackReader, memory typedecoder.MemoryReader, storage typedecoder.StorageReader) []typedecoder.Decoded {
	for _, vars := range c.ScopeVariables {
		for _, v := range vars {
			if d := findDetailByID(v.Detail, ref); d != nil {
				return typedecoder.Children(d, v.Position, stack, memory, storage)
			}
		}
	}
	return nil
}

func findDetailByID(d *typedecoder.Detail, id int) *typedecoder.Detail {
	if d == nil {
		return nil
	}
	if d.ID == id {
		return d
	}
	switch d.Kind {
	case typedecoder.KindArray:
		if found := findDetailByID(d.Elem, id); found != nil {
			return found
		}
	case typedecoder.KindStruct:
		for _, m := range d.Fields {
			if found := findDetailByID(m.Detail, id); found != nil {
				return found
			}
		}
	case typedecoder.KindMapping:
		if found := findDetailByID(d.Key, id); found != nil {
			return found
		}
		if found := findDetailByID(d.Value, id); found != nil {
			return found
		}
	}
	return nil
}
