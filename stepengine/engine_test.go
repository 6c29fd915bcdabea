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
	"testing"

	"github.com/core-coin/sdb/ast"
	"github.com/core-coin/sdb/common"
	"github.com/core-coin/sdb/model"
)

type fakeAck struct {
	acked    []string
	fastStep []bool
}

func (a *fakeAck) Acknowledge(requestID string, fastStep bool) {
	a.acked = append(a.acked, requestID)
	a.fastStep = append(a.fastStep, fastStep)
}

type fakeEmit struct{ events []string }

func (e *fakeEmit) Emit(event string, args ...interface{}) { e.events = append(e.events, event) }

type fakeBreakpoints struct {
	verifiedAt string
	verifiedLn int
	hits       int
}

func (f *fakeBreakpoints) VerifiedAt(path string, line int) bool {
	return path == f.verifiedAt && line == f.verifiedLn
}

func (f *fakeBreakpoints) RecordHit(path string, line int) { f.hits++ }

// buildLinearProgram builds a one-contract program with no PUSH
// instructions so pc == instruction index, three single-byte-per-line
// source lines, and a flat (no jump) source map.
func buildLinearProgram() (*model.Program, common.Address) {
	src := "a;\nb;\nc;\n"
	root := &ast.Node{ID: 0, Kind: "ContractDefinition", Start: 0, Length: len(src)}
	runtime := []byte{0x00, 0x00, 0x00} // one instruction per source line, no PUSH payloads
	srcMap := "0:1:0:-;3:1:0:-;6:1:0:-"

	p := model.NewProgram(8)
	p.LinkCompilerOutput([]model.CompilerContract{{
		Name: "C", SourcePath: "a.sol", Source: src,
		CreationCode: runtime, RuntimeCode: runtime, RuntimeSrcMap: srcMap, AST: root,
	}})
	var addr common.Address
	addr[19] = 7
	p.LinkContractAddress("C", addr)
	return p, addr
}

func TestFirstStepEmitsStopOnEntry(t *testing.T) {
	p, addr := buildLinearProgram()
	ack, emit := &fakeAck{}, &fakeEmit{}
	e := New(p, ack, emit)

	e.HandleEvent(RawEvent{RequestID: "1", Address: addr, PC: 0})

	if len(emit.events) != 1 || emit.events[0] != "stopOnEntry" {
		t.Fatalf("expected stopOnEntry, got %v", emit.events)
	}
	if len(ack.acked) != 0 {
		t.Fatalf("expected no acknowledgement while stopped, got %v", ack.acked)
	}
}

func TestModelGapAcksAndNeverStops(t *testing.T) {
	p, _ := buildLinearProgram()
	ack, emit := &fakeAck{}, &fakeEmit{}
	e := New(p, ack, emit)

	var unknown common.Address
	unknown[19] = 99
	e.HandleEvent(RawEvent{RequestID: "x", Address: unknown, PC: 0})

	if len(ack.acked) != 1 || ack.acked[0] != "x" {
		t.Fatalf("expected exactly one ack for the model-gap event, got %v", ack.acked)
	}
	if len(emit.events) != 0 {
		t.Fatalf("expected no stop events, got %v", emit.events)
	}
	if e.Current().HasSource {
		t.Fatalf("expected HasSource=false for a model-gap event")
	}
}

func TestStepOverStopsOnLineChangeSameDepth(t *testing.T) {
	p, addr := buildLinearProgram()
	ack, emit := &fakeAck{}, &fakeEmit{}
	e := New(p, ack, emit)

	e.HandleEvent(RawEvent{RequestID: "0", Address: addr, PC: 0}) // consumes stopOnEntry
	e.RequestAction(ActionStepOver)
	e.HandleEvent(RawEvent{RequestID: "1", Address: addr, PC: 1})

	if len(emit.events) != 2 || emit.events[1] != "stopOnStepOver" {
		t.Fatalf("expected stopOnStepOver as second event, got %v", emit.events)
	}
}

func TestStopOnBreakpointRecordsHit(t *testing.T) {
	p, addr := buildLinearProgram()
	ack, emit := &fakeAck{}, &fakeEmit{}
	e := New(p, ack, emit)
	bps := &fakeBreakpoints{verifiedAt: "a.sol", verifiedLn: 2}
	e.AttachBreakpoints(bps)

	e.HandleEvent(RawEvent{RequestID: "0", Address: addr, PC: 0}) // consumes stopOnEntry
	e.RequestAction(ActionContinue)
	e.HandleEvent(RawEvent{RequestID: "1", Address: addr, PC: 1})

	if len(emit.events) != 2 || emit.events[1] != "stopOnBreakpoint" {
		t.Fatalf("expected stopOnBreakpoint as second event, got %v", emit.events)
	}
	if bps.hits != 1 {
		t.Fatalf("expected exactly one recorded hit, got %d", bps.hits)
	}
}

func TestEngineAcknowledgesEachEventAtMostOnce(t *testing.T) {
	// The step engine itself only ever calls Acknowledge once per event;
	// idempotency for true duplicate delivery is the correlation map's
	// job (see transport.CorrelationMap.Resolve), exercised there.
	p, addr := buildLinearProgram()
	ack, emit := &fakeAck{}, &fakeEmit{}
	e := New(p, ack, emit)
	e.HandleEvent(RawEvent{RequestID: "0", Address: addr, PC: 0})
	e.RequestAction(ActionContinue)
	e.HandleEvent(RawEvent{RequestID: "1", Address: addr, PC: 1})
	if len(ack.acked) != 1 {
		t.Fatalf("expected exactly one ack, got %d", len(ack.acked))
	}
}
