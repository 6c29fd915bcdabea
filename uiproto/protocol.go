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

// Package uiproto defines the request/response protocol of §6 "UI client
// channel": an `{id, isRequest, type, content, error?}` envelope, carried
// in the same transport.RawMessage frame as vmadapter's
// `{id, messageType, content, triggerType?}` protocol, but for the side
// that talks to an IDE or CLI rather than the VM.
package uiproto

// RequestType enumerates the client-issued request types of §6.
type RequestType string

const (
	RequestClearBreakpoints RequestType = "clearBreakpoints"
	RequestSetBreakpoint    RequestType = "setBreakpoint"
	RequestStack            RequestType = "stack"
	RequestVariables        RequestType = "variables"
	RequestUIAction         RequestType = "uiAction"
	RequestEvaluate         RequestType = "evaluate"
	RequestPing             RequestType = "ping"
)

// UIAction enumerates the accepted `uiAction.action` values (§6).
type UIAction string

const (
	ActionContinue        UIAction = "continue"
	ActionContinueReverse UIAction = "continueReverse"
	ActionStepOver        UIAction = "stepOver"
	ActionStepBack        UIAction = "stepBack"
	ActionStepIn          UIAction = "stepIn"
	ActionStepOut         UIAction = "stepOut"
)

// ClearBreakpointsRequest is the content of a clearBreakpoints request.
type ClearBreakpointsRequest struct {
	Path string `json:"path"`
}

// SetBreakpointRequest is the content of a setBreakpoint request. Line is
// expressed in the user's original source unless OriginalSource is set
// false by a caller re-submitting an already-translated line.
type SetBreakpointRequest struct {
	Path           string `json:"path"`
	Line           int    `json:"line"`
	OriginalSource *bool  `json:"originalSource,omitempty"`
}

// StackRequest is the content of a stack request (§6 "stack{startFrame,
// endFrame}").
type StackRequest struct {
	StartFrame int `json:"startFrame"`
	EndFrame   int `json:"endFrame"`
}

// VariablesRequest is the content of a variables request; VariablesReference
// 0 means "all in-scope root variables" (§4.8).
type VariablesRequest struct {
	VariablesReference int `json:"variablesReference"`
}

// UIActionRequest is the content of a uiAction request.
type UIActionRequest struct {
	Action UIAction `json:"action"`
}

// EvaluateRequest is the content of an evaluate request (§4.6).
type EvaluateRequest struct {
	Expression string `json:"expression"`
	Context    string `json:"context"`
	FrameID    int    `json:"frameId"`
}

// StackFrame is one entry of a stack response, outermost first, mirroring
// stepengine.Frame's fields without exporting that package's type on the
// wire directly.
type StackFrame struct {
	FunctionName string `json:"functionName"`
	File         string `json:"file"`
	Line         int    `json:"line"`
}

// StackResponse is the content of a stack response.
type StackResponse struct {
	Frames []StackFrame `json:"frames"`
}

// VariablesResponse is the content of a variables response.
type VariablesResponse struct {
	Variables []Variable `json:"variables"`
}

// Variable mirrors typedecoder.Decoded on the wire.
type Variable struct {
	Name               string `json:"name"`
	Type               string `json:"type"`
	Value              string `json:"value"`
	VariablesReference int    `json:"variablesReference"`
}

// EvaluateResponse is the content of an evaluate response.
type EvaluateResponse struct {
	Result string `json:"result"`
}

// BreakpointResponse is the content of a setBreakpoint response, and also
// the payload of a breakpointValidated event (§6).
type BreakpointResponse struct {
	ID       int    `json:"id"`
	Line     int    `json:"line"`
	Verified bool   `json:"verified"`
	Path     string `json:"path,omitempty"`
}

// PingResponse is the content of a ping response.
type PingResponse struct {
	OK bool `json:"ok"`
}
