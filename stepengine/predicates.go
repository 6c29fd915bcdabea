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

import "github.com/core-coin/sdb/model"

// BreakpointSource answers whether a verified breakpoint sits on the
// given file/line (§4.5 "stopOnBreakpoint"). Kept minimal and local to
// avoid an import cycle with the breakpoint package, which depends on
// model just as this package does.
type BreakpointSource interface {
	VerifiedAt(path string, line int) bool

	// RecordHit increments the hit count of the breakpoint(s) at
	// path/line, called once per stopOnBreakpoint match (§4.5).
	RecordHit(path string, line int)
}

// AttachBreakpoints wires a BreakpointSource for stopOnBreakpoint
// testing. Optional: without one, breakpoint stops never fire.
func (e *Engine) AttachBreakpoints(bp BreakpointSource) { e.breakpoints = bp }

// evaluateStopConditions implements §4.5 "Step semantics": on a match,
// emit the corresponding UI event and leave the VM paused (no
// acknowledgement); on a miss, acknowledge with fastStep=true.
func (e *Engine) evaluateStopConditions(c *model.Contract) {
	if e.firstStep {
		e.firstStep = false
		e.emitStop("stopOnEntry")
		return
	}

	if e.pendingAction == ActionNone {
		e.ack.Acknowledge(e.current.RequestID, e.defaultFastStep)
		return
	}

	lineChanged := !e.hasPrior || e.current.Line != e.lastStopLine || e.currentFilePath() != e.lastStopFile
	depthChanged := len(e.callStack) - e.priorCallDepth()

	switch e.pendingAction {
	case ActionStepOver:
		if depthChanged == 0 && lineChanged {
			e.pendingAction = ActionNone
			e.emitStop("stopOnStepOver")
			return
		}
	case ActionStepIn:
		if depthChanged > 0 && lineChanged && !e.onFunctionHeaderPC(c) {
			e.pendingAction = ActionNone
			e.emitStop("stopOnStepIn")
			return
		}
	case ActionStepOut:
		if depthChanged < 0 && lineChanged {
			e.pendingAction = ActionNone
			e.emitStop("stopOnStepOut")
			return
		}
	case ActionContinue:
		// falls through to the breakpoint check below
	}

	if e.breakpoints != nil && e.breakpoints.VerifiedAt(e.currentFilePath(), e.current.Line) && lineChanged {
		e.breakpoints.RecordHit(e.currentFilePath(), e.current.Line)
		e.emitStop("stopOnBreakpoint")
		return
	}

	e.ack.Acknowledge(e.current.RequestID, e.defaultFastStep)
}

// priorCallDepth is the call-stack depth as of the previous stop,
// tracked so depth-delta predicates compare against the last UI
// snapshot rather than every intermediate instruction.
func (e *Engine) priorCallDepth() int { return e.snapshotDepth }

// onFunctionHeaderPC reports whether the current instruction is itself a
// function entry pc, so stepIn can skip the dispatcher shim (§4.5
// "stopOnStepIn"). Conflates external entry with jump-table fall-through
// on optimized bytecode; see Q2.
func (e *Engine) onFunctionHeaderPC(c *model.Contract) bool {
	for pc, idx := range c.PCMap {
		if idx == e.current.InstructionIdx {
			if _, isEntry := c.FunctionEntryMap[pc]; isEntry {
				return true
			}
		}
	}
	return false
}

func (e *Engine) emitStop(event string) {
	e.lastStopLine = e.current.Line
	e.lastStopFile = e.currentFilePath()
	e.snapshotDepth = len(e.callStack)
	if e.emit != nil {
		e.emit.Emit(event)
	}
}
