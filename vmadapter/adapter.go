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

package vmadapter

import (
	"encoding/json"

	"github.com/core-coin/sdb/common"
	"github.com/core-coin/sdb/internal/dbglog"
	"github.com/core-coin/sdb/transport"
)

var log = dbglog.New("pkg", "vmadapter")

// Adapter is the live connection to the VM adapter, implementing the
// request side of §6's "VM adapter channel" on top of a transport
// Channel and correlation map. It satisfies stepengine.Acknowledger,
// breakpoint.Sender, and eval.Injector so those packages never import
// this one directly (they declare their own minimal local interfaces;
// Adapter's methods happen to match their shapes).
type Adapter struct {
	channel *transport.Channel
	corr    *transport.CorrelationMap
}

// New wires an Adapter to an already-established channel.
func New(channel *transport.Channel) *Adapter {
	return &Adapter{channel: channel, corr: transport.NewCorrelationMap()}
}

// Acknowledge responds to a step event, satisfying
// stepengine.Acknowledger. Every call sends one response; the adapter
// does not de-duplicate requestIDs, so one acknowledgement per step event
// (§4.5 "Acknowledgement contract") rests on the caller.
func (a *Adapter) Acknowledge(requestID string, fastStep bool) {
	a.channel.Send(transport.RawMessage{
		ID:          requestID,
		MessageType: string(MessageResponse),
		Content:     mustJSON(StepResponse{FastStep: fastStep}),
	})
}

// SendBreakpoint satisfies breakpoint.Sender.
func (a *Adapter) SendBreakpoint(id int, address [20]byte, pc uint64, enabled, isRuntime bool) {
	a.request(RequestSendBreakpoint, SendBreakpointRequest{
		ID: id, Address: common.Address(address), PC: pc, Enabled: enabled, Runtime: isRuntime,
	}, nil)
}

// InjectNewCode satisfies eval.Injector (§4.6 step 10 "putCodeRequest").
func (a *Adapter) InjectNewCode(address [20]byte, code []byte, pc uint64, onAck func()) {
	a.request(RequestInjectNewCode, InjectNewCodeRequest{
		Address: common.Address(address), Code: code, PC: pc,
	}, func(content interface{}, errStr string) {
		if onAck != nil {
			onAck()
		}
	})
}

// GetStorage issues §4.2's external storage fetch, resolving to the
// fetched word via cb.
func (a *Adapter) GetStorage(address common.Address, position common.Hash, cb func(word common.Hash, ok bool)) {
	a.request(RequestGetStorage, GetStorageRequest{Address: address, Position: position}, func(content interface{}, errStr string) {
		if errStr != "" {
			cb(common.Hash{}, false)
			return
		}
		raw, ok := content.(map[string]interface{})
		if !ok {
			cb(common.Hash{}, false)
			return
		}
		hex, _ := raw["word"].(string)
		cb(common.MustParseHash(hex), true)
	})
}

// SendDeclarations pushes known variable declarations for a newly linked
// address (§4.3).
func (a *Adapter) SendDeclarations(address common.Address, declarations []string) {
	a.request(RequestSendDeclarations, SendDeclarationsRequest{Address: address, Declarations: declarations}, nil)
}

// SendJumpDestinations pushes known function entry points for a newly
// linked address (§4.3).
func (a *Adapter) SendJumpDestinations(address common.Address, jumpDestinations []uint64) {
	a.request(RequestSendJumpDestinations, SendJumpDestinationsRequest{Address: address, JumpDestinations: jumpDestinations}, nil)
}

func (a *Adapter) request(rt RequestType, content interface{}, onResponse transport.Continuation) {
	id := a.corr.Register(func(content interface{}, errStr string) {
		if onResponse != nil {
			onResponse(content, errStr)
		}
	})
	a.channel.Send(transport.RawMessage{
		ID:          id,
		MessageType: string(MessageRequest),
		TriggerType: string(rt),
		Content:     mustJSON(content),
	})
}

// ClearPending drops every in-flight request without resolving it,
// implementing §7.6's fatal-disconnect path: "VM adapter disconnect ->
// emit end and clear pending-message map".
func (a *Adapter) ClearPending() { a.corr.Clear() }

// Resolve processes msg if it is a response, resolving the correlation
// map on the caller's own goroutine and reporting true. A request/
// trigger message is left untouched (false): the caller must route it
// to the single-threaded dispatcher instead. Split out of Dispatch so
// engine.Session.Run's VM-frame reader goroutine can resolve responses
// (e.g. a paused getStorage round trip) inline, without waiting for the
// main dispatcher loop to cycle back — see storage_reader.go's Word.
func (a *Adapter) Resolve(msg transport.RawMessage) bool {
	if msg.MessageType != string(MessageResponse) {
		return false
	}
	var content interface{}
	json.Unmarshal(msg.Content, &content)
	a.corr.Resolve(msg.ID, content, msg.Error)
	return true
}

// Dispatch handles one inbound RawMessage: a response resolves the
// correlation map; a request/trigger is handed to onTrigger along with
// the envelope's own id, since a step trigger's id is exactly the
// requestID its Acknowledge call must echo (§4.5 "Acknowledgement
// contract").
func (a *Adapter) Dispatch(msg transport.RawMessage, onTrigger func(id string, t TriggerType, content json.RawMessage)) {
	if a.Resolve(msg) {
		return
	}
	if onTrigger != nil {
		onTrigger(msg.ID, TriggerType(msg.TriggerType), msg.Content)
	}
}

func mustJSON(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error("marshal failed", "err", err)
		return json.RawMessage("null")
	}
	return b
}
