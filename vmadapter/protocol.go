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

// Package vmadapter defines the request/response protocol of §6 "VM
// adapter channel": a symmetric `{id, messageType, content, triggerType?}`
// envelope, the trigger events the VM drives us with, and the request
// types we drive the VM with.
package vmadapter

import "github.com/core-coin/sdb/common"

// MessageType is the envelope's messageType field.
type MessageType string

const (
	MessageRequest  MessageType = "request"
	MessageResponse MessageType = "response"
)

// TriggerType enumerates adapter → engine triggers (§6).
type TriggerType string

const (
	TriggerLinkCompilerOutput TriggerType = "linkCompilerOutput"
	TriggerLinkContractAddr   TriggerType = "linkContractAddress"
	TriggerNewContract        TriggerType = "newContract"
	TriggerStep               TriggerType = "step"
	TriggerException          TriggerType = "exception"
)

// RequestType enumerates engine → adapter request types (§6).
type RequestType string

const (
	RequestInjectNewCode        RequestType = "injectNewCode"
	RequestRunUntilPc           RequestType = "runUntilPc"
	RequestGetStorage           RequestType = "getStorage"
	RequestSendBreakpoint       RequestType = "sendBreakpoint"
	RequestSendDeclarations     RequestType = "sendDeclarations"
	RequestSendJumpDestinations RequestType = "sendJumpDestinations"
)

// Envelope is the wire shape of every message on the VM adapter channel.
type Envelope struct {
	ID          string      `json:"id"`
	MessageType MessageType `json:"messageType"`
	Content     interface{} `json:"content"`
	TriggerType TriggerType `json:"triggerType,omitempty"`
}

// StepEvent is the content of a TriggerStep message: one halted
// instruction (§3 "StepData" is derived from this plus program-model
// lookups).
type StepEvent struct {
	Address common.Address `json:"address"`
	PC      uint64         `json:"pc"`
	Stack   []common.Hash  `json:"stack"`
	Memory  []byte         `json:"memory"`
	GasLeft uint64         `json:"gasLeft"`
	Opcode  byte           `json:"opcode"`
}

// ExceptionEvent is the content of a TriggerException message.
type ExceptionEvent struct {
	Address common.Address `json:"address"`
	PC      uint64         `json:"pc"`
	Reason  string         `json:"reason"`
}

// NewContractEvent is the content of a TriggerNewContract message.
type NewContractEvent struct {
	Code    []byte         `json:"code"`
	Address common.Address `json:"address"`
}

// LinkContractAddressEvent is the content of a TriggerLinkContractAddr
// message.
type LinkContractAddressEvent struct {
	ContractName string         `json:"contractName"`
	Address      common.Address `json:"address"`
}

// LinkCompilerOutputEvent is the content of a TriggerLinkCompilerOutput
// message. CompilationResult is left as a raw map so the facade layer can
// decode it with whatever compiler-output schema is actually in use
// without this package depending on it.
type LinkCompilerOutputEvent struct {
	SourceRootPath    string                 `json:"sourceRootPath"`
	CompilationResult map[string]interface{} `json:"compilationResult"`
}

// StepResponse acknowledges a StepEvent. FastStep lets the VM batch-skip
// line-unchanged instructions (§6 "fast-step hint").
type StepResponse struct {
	FastStep bool `json:"fastStep"`
}

// InjectNewCodeRequest is the content of a RequestInjectNewCode message
// (§4.6 step 10 "putCodeRequest").
type InjectNewCodeRequest struct {
	Address common.Address `json:"address"`
	Code    []byte         `json:"code"`
	PC      uint64         `json:"pc"`
}

// SendBreakpointRequest mirrors one breakpoint.Binding update to the VM
// (§4.4 "sendBreakpoint").
type SendBreakpointRequest struct {
	ID      int            `json:"id"`
	Address common.Address `json:"address"`
	PC      uint64         `json:"pc"`
	Enabled bool           `json:"enabled"`
	Runtime bool           `json:"runtime"`
}

// SendDeclarationsRequest pushes known variable declarations for a newly
// linked address (§4.3 "send variable declarations ... to the VM
// adapter").
type SendDeclarationsRequest struct {
	Address      common.Address `json:"address"`
	Declarations []string       `json:"declarations"`
}

// SendJumpDestinationsRequest pushes known function entry points for a
// newly linked address (§4.3).
type SendJumpDestinationsRequest struct {
	Address          common.Address `json:"address"`
	JumpDestinations []uint64       `json:"jumpDestinations"`
}

// GetStorageRequest asks the VM for one storage word (§4.2 "external
// storage fetch interface").
type GetStorageRequest struct {
	Address  common.Address `json:"address"`
	Position common.Hash    `json:"position"`
}

// RunUntilPcRequest asks the VM to resume until it reaches pc, used by
// the evaluator's injected call (§4.6).
type RunUntilPcRequest struct {
	StepID string `json:"stepId"`
	PC     uint64 `json:"pc"`
}
