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

// Package server puts the §6 "UI client channel" wire shape over the
// Client facade: decoding each `{id, type, content}` request into the
// facade call it names and re-encoding the result as a `{id, type,
// content}` response, or an `{id, error}` on a protocol error (§7.1).
package server

import (
	"encoding/json"

	"github.com/core-coin/sdb/breakpoint"
	"github.com/core-coin/sdb/eval"
	"github.com/core-coin/sdb/facade"
	"github.com/core-coin/sdb/internal/dbglog"
	"github.com/core-coin/sdb/model"
	"github.com/core-coin/sdb/stepengine"
	"github.com/core-coin/sdb/transport"
	"github.com/core-coin/sdb/uiproto"
	"github.com/core-coin/sdb/vmadapter"
)

var log = dbglog.New("pkg", "server")

// UIHandler dispatches one UI channel's requests against a Facade. One
// UIHandler is constructed per connected UI client (§5 "Both interfaces
// ... deliver messages one at a time to a common handler").
type UIHandler struct {
	Facade  *facade.Facade
	Program *model.Program
	Steps   *stepengine.Engine
	Adapter *vmadapter.Adapter
	Channel *transport.Channel
}

// Handle decodes and applies one inbound RawMessage, sending the matching
// response (or, for `evaluate`, deferring the response to the evaluator's
// callback) on h.Channel.
func (h *UIHandler) Handle(msg transport.RawMessage) {
	switch uiproto.RequestType(msg.Type) {
	case uiproto.RequestClearBreakpoints:
		h.handleClearBreakpoints(msg)
	case uiproto.RequestSetBreakpoint:
		h.handleSetBreakpoint(msg)
	case uiproto.RequestStack:
		h.handleStack(msg)
	case uiproto.RequestVariables:
		h.handleVariables(msg)
	case uiproto.RequestUIAction:
		h.handleUIAction(msg)
	case uiproto.RequestEvaluate:
		h.handleEvaluate(msg)
	case uiproto.RequestPing:
		h.reply(msg.ID, msg.Type, uiproto.PingResponse{OK: true})
	default:
		h.replyError(msg.ID, "unknown request type "+msg.Type)
	}
}

func (h *UIHandler) handleClearBreakpoints(msg transport.RawMessage) {
	var req uiproto.ClearBreakpointsRequest
	if err := json.Unmarshal(msg.Content, &req); err != nil {
		h.replyError(msg.ID, "malformed clearBreakpoints content: "+err.Error())
		return
	}
	h.Facade.ClearBreakpoints(req.Path)
	h.reply(msg.ID, msg.Type, struct{}{})
}

func (h *UIHandler) handleSetBreakpoint(msg transport.RawMessage) {
	var req uiproto.SetBreakpointRequest
	if err := json.Unmarshal(msg.Content, &req); err != nil {
		h.replyError(msg.ID, "malformed setBreakpoint content: "+err.Error())
		return
	}
	originalSource := true
	if req.OriginalSource != nil {
		originalSource = *req.OriginalSource
	}
	bp := h.Facade.SetBreakpoint(req.Path, req.Line, originalSource)
	h.reply(msg.ID, msg.Type, breakpointResponse(bp))
}

func (h *UIHandler) handleStack(msg transport.RawMessage) {
	var req uiproto.StackRequest
	if err := json.Unmarshal(msg.Content, &req); err != nil {
		h.replyError(msg.ID, "malformed stack content: "+err.Error())
		return
	}
	frames := h.Facade.Stack(req.StartFrame, req.EndFrame)
	out := make([]uiproto.StackFrame, 0, len(frames))
	for _, fr := range frames {
		out = append(out, uiproto.StackFrame{FunctionName: fr.FunctionName, File: fr.File, Line: fr.Line})
	}
	h.reply(msg.ID, msg.Type, uiproto.StackResponse{Frames: out})
}

func (h *UIHandler) handleVariables(msg transport.RawMessage) {
	var req uiproto.VariablesRequest
	if err := json.Unmarshal(msg.Content, &req); err != nil {
		h.replyError(msg.ID, "malformed variables content: "+err.Error())
		return
	}
	current := h.Steps.Current()
	if !current.HasSource {
		h.reply(msg.ID, msg.Type, uiproto.VariablesResponse{})
		return
	}
	contract, ok := h.Program.ContractByAddress(current.Address)
	if !ok {
		h.reply(msg.ID, msg.Type, uiproto.VariablesResponse{})
		return
	}
	storage := vmadapter.NewStorageReader(h.Adapter, current.Address)
	decoded := h.Facade.Variables(contract.Name, req.VariablesReference, current.StackReader(), current.MemoryReader(), storage)
	out := make([]uiproto.Variable, 0, len(decoded))
	for _, d := range decoded {
		out = append(out, uiproto.Variable{Name: d.Name, Type: d.Type, Value: d.Value, VariablesReference: d.VariablesReference})
	}
	h.reply(msg.ID, msg.Type, uiproto.VariablesResponse{Variables: out})
}

func (h *UIHandler) handleUIAction(msg transport.RawMessage) {
	var req uiproto.UIActionRequest
	if err := json.Unmarshal(msg.Content, &req); err != nil {
		h.replyError(msg.ID, "malformed uiAction content: "+err.Error())
		return
	}
	switch req.Action {
	case uiproto.ActionContinue:
		h.Facade.Continue()
	case uiproto.ActionStepOver:
		h.Facade.StepOver()
	case uiproto.ActionStepIn:
		h.Facade.StepIn()
	case uiproto.ActionStepOut:
		h.Facade.StepOut()
	case uiproto.ActionStepBack:
		if err := h.Facade.StepBack(); err != nil {
			h.replyError(msg.ID, err.Error())
			return
		}
	case uiproto.ActionContinueReverse:
		if err := h.Facade.ContinueReverse(); err != nil {
			h.replyError(msg.ID, err.Error())
			return
		}
	default:
		h.replyError(msg.ID, "unknown uiAction "+string(req.Action))
		return
	}
	h.reply(msg.ID, msg.Type, struct{}{})
}

// handleEvaluate implements §4.6's asynchronous evaluate() seam: the
// facade call only gets the injection underway; the actual response for
// this request id is sent from the callback once the step engine
// recovers the return value on the matching jump-out.
func (h *UIHandler) handleEvaluate(msg transport.RawMessage) {
	var req uiproto.EvaluateRequest
	if err := json.Unmarshal(msg.Content, &req); err != nil {
		h.replyError(msg.ID, "malformed evaluate content: "+err.Error())
		return
	}
	current := h.Steps.Current()
	if !current.HasSource {
		h.replyError(msg.ID, "no paused frame to evaluate against")
		return
	}
	contract, ok := h.Program.ContractByAddress(current.Address)
	if !ok {
		h.replyError(msg.ID, "unknown contract for current frame")
		return
	}
	scope := make([]int, 0, len(current.Scope))
	for _, e := range current.Scope {
		scope = append(scope, e.ASTID)
	}
	id := msg.ID
	h.Facade.Evaluate(eval.Request{
		Expression:   req.Expression,
		ContextHint:  req.Context,
		FrameID:      req.FrameID,
		ContractName: contract.Name,
		FrameScope:   scope,
		CurrentLine:  current.Line,
		CurrentPC:    0,
	}, func(result string, err error) {
		if err != nil {
			h.replyError(id, err.Error())
			return
		}
		h.reply(id, string(uiproto.RequestEvaluate), uiproto.EvaluateResponse{Result: result})
	})
}

func breakpointResponse(bp *breakpoint.Breakpoint) uiproto.BreakpointResponse {
	return uiproto.BreakpointResponse{ID: bp.ID, Line: bp.Line, Verified: bp.Verified, Path: bp.Path}
}

func (h *UIHandler) reply(id, typ string, content interface{}) {
	h.Channel.Send(transport.RawMessage{ID: id, Type: typ, Content: mustJSON(content)})
}

func (h *UIHandler) replyError(id, reason string) {
	log.Debug("ui request failed", "id", id, "reason", reason)
	h.Channel.Send(transport.RawMessage{ID: id, Error: reason})
}

func mustJSON(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error("marshal failed", "err", err)
		return json.RawMessage("null")
	}
	return b
}
