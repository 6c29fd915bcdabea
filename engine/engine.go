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

// Package engine wires C1-C8 into one Session value per the "explicit
// engine value threaded through component constructors" design note
// (§9): every component instance lives on the Session; the only
// package-level state elsewhere is each package's logger and the id
// counters in breakpoint and typedecoder.
package engine

import (
	"encoding/json"

	"github.com/core-coin/sdb/breakpoint"
	"github.com/core-coin/sdb/config"
	"github.com/core-coin/sdb/eval"
	"github.com/core-coin/sdb/facade"
	"github.com/core-coin/sdb/internal/dbglog"
	"github.com/core-coin/sdb/model"
	"github.com/core-coin/sdb/stepengine"
	"github.com/core-coin/sdb/transport"
	"github.com/core-coin/sdb/vmadapter"
)

var log = dbglog.New("pkg", "engine")

const sourceMapCacheSize = 256

// Session is one live debug session: one Program, one VM adapter
// connection, and the C4-C8 components built over them.
type Session struct {
	Config  config.Config
	Program *model.Program

	Adapter     *vmadapter.Adapter
	Steps       *stepengine.Engine
	Breakpoints *breakpoint.Registry
	Evaluator   *eval.Evaluator
	Facade      *facade.Facade

	emitter *uiEmitter
}

// uiEmitter adapts a transport.Channel into stepengine.Emitter /
// facade.UIEmitter, wrapping every emitted event in the §6 server-event
// envelope shape `{type: "event", content: {event, args}}`.
type uiEmitter struct {
	ui *transport.Channel
}

func (u *uiEmitter) Emit(event string, args ...interface{}) {
	if u.ui == nil {
		return
	}
	u.ui.Send(transport.RawMessage{
		Type: "event",
		Content: mustJSON(map[string]interface{}{
			"event": event,
			"args":  args,
		}),
	})
}

// New builds a Session over a fresh Program and the given VM adapter
// channel, wiring every component in dependency order (§2 "Components,
// in dependency order").
func New(cfg config.Config, vmChannel *transport.Channel, uiChannel *transport.Channel, compiler eval.Compiler) *Session {
	program := model.NewProgram(sourceMapCacheSize)
	adapter := vmadapter.New(vmChannel)
	emit := &uiEmitter{ui: uiChannel}

	steps := stepengine.New(program, adapter, emit)
	steps.SetDefaultFastStep(cfg.DefaultFastStep)
	breakpoints := breakpoint.New(program, adapter, notifierAdapter{emit})
	steps.AttachBreakpoints(verifiedAtAdapter{breakpoints})
	evaluator := eval.New(program, compiler, adapter, ProgramResolver{Program: program}, steps)

	f := facade.New(program, steps, breakpoints, evaluator, emit)

	log.Info("session constructed", "uiAddr", cfg.UIListenAddr, "vmAddr", cfg.VMAdapterDialAddr)

	return &Session{
		Config:      cfg,
		Program:     program,
		Adapter:     adapter,
		Steps:       steps,
		Breakpoints: breakpoints,
		Evaluator:   evaluator,
		Facade:      f,
		emitter:     emit,
	}
}

// notifierAdapter satisfies breakpoint.Notifier by re-emitting through
// the shared UI emitter.
type notifierAdapter struct{ emit *uiEmitter }

func (n notifierAdapter) BreakpointValidated(bp *breakpoint.Breakpoint) {
	n.emit.Emit("breakpointValidated", bp)
}

// verifiedAtAdapter satisfies stepengine.BreakpointSource without the
// stepengine package importing breakpoint directly.
type verifiedAtAdapter struct{ reg *breakpoint.Registry }

func (v verifiedAtAdapter) VerifiedAt(path string, line int) bool {
	return v.reg.VerifiedAt(path, line)
}

func (v verifiedAtAdapter) RecordHit(path string, line int) {
	v.reg.RecordHit(path, line)
}

func mustJSON(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error("marshal failed", "err", err)
		return json.RawMessage("null")
	}
	return b
}
