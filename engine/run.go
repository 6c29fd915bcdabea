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

package engine

import (
	"encoding/hex"
	"encoding/json"

	"github.com/core-coin/sdb/ast"
	"github.com/core-coin/sdb/common"
	"github.com/core-coin/sdb/model"
	"github.com/core-coin/sdb/server"
	"github.com/core-coin/sdb/stepengine"
	"github.com/core-coin/sdb/transport"
	"github.com/core-coin/sdb/vmadapter"
)

// decodeHex parses an optionally "0x"-prefixed hex string, returning nil
// (rather than an error) on malformed input so one bad bytecode field
// doesn't abort linking the rest of a compilation result.
func decodeHex(s string) []byte {
	s = common.TrimPrefix0x(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

// compilerContract is the wire shape this engine expects inside a
// linkCompilerOutput trigger's `compilationResult` (§6's envelope only
// specifies that field is an opaque object; the compiler toolchain
// itself is out of scope per §1, so this is the minimal concrete shape
// our server side needs from it).
type compilerContract struct {
	Name             string   `json:"name"`
	SourcePath       string   `json:"sourcePath"`
	Source           string   `json:"source"`
	CreationBytecode string   `json:"creationBytecode"`
	RuntimeBytecode  string   `json:"runtimeBytecode"`
	RuntimeSourceMap string   `json:"runtimeSourceMap"`
	AST              ast.Node `json:"ast"`
}

type compilationResult struct {
	Contracts []compilerContract `json:"contracts"`
}

// Run drives the single-threaded dispatcher of §5: two reader goroutines
// decode frames off the wire and hand them to this goroutine one at a
// time, so every trigger and every UI request is processed strictly in
// arrival order with no shared mutable state across threads.
func (s *Session) Run(vmChannel, uiChannel *transport.Channel) {
	ui := &server.UIHandler{
		Facade:  s.Facade,
		Program: s.Program,
		Steps:   s.Steps,
		Adapter: s.Adapter,
		Channel: uiChannel,
	}

	vmFrames := readVMFrames(vmChannel, s.Adapter)
	uiFrames := readFrames(uiChannel)

	for {
		select {
		case msg, ok := <-vmFrames:
			if !ok {
				s.handleFatal()
				return
			}
			s.Adapter.Dispatch(msg, s.handleTrigger)
		case msg, ok := <-uiFrames:
			if !ok {
				if s.emitter != nil {
					s.emitter.Emit("end")
				}
				continue
			}
			ui.Handle(msg)
		}
	}
}

func readFrames(ch *transport.Channel) <-chan transport.RawMessage {
	out := make(chan transport.RawMessage)
	go func() {
		defer close(out)
		for {
			msg, err := ch.Recv()
			if err != nil {
				return
			}
			out <- msg
		}
	}()
	return out
}

// readVMFrames mirrors readFrames but resolves response messages inline
// on this reader goroutine via adapter.Resolve, forwarding only
// request/trigger messages to the returned channel for the single
// dispatcher loop to process with handleTrigger. This is the other half
// of §5's "Suspension points": a caller parked on the main loop waiting
// on a correlated request (e.g. Variables() reading Storage through
// vmadapter.StorageReader.Word) would otherwise block the very
// goroutine that needs to observe the matching response and never wake
// up. Resolving responses here, independent of whatever the main loop
// is doing, breaks that deadlock.
func readVMFrames(ch *transport.Channel, adapter *vmadapter.Adapter) <-chan transport.RawMessage {
	out := make(chan transport.RawMessage)
	go func() {
		defer close(out)
		for {
			msg, err := ch.Recv()
			if err != nil {
				return
			}
			if adapter.Resolve(msg) {
				continue
			}
			out <- msg
		}
	}()
	return out
}

func (s *Session) handleFatal() {
	log.Error("VM adapter disconnected")
	s.Adapter.ClearPending()
	if s.emitter != nil {
		s.emitter.Emit("end")
	}
}

// handleTrigger implements the adapter → engine side of §6: decode one
// trigger's content and apply it to the Program / Steps / Breakpoints.
func (s *Session) handleTrigger(id string, t vmadapter.TriggerType, raw json.RawMessage) {
	switch t {
	case vmadapter.TriggerLinkCompilerOutput:
		s.onLinkCompilerOutput(raw)
	case vmadapter.TriggerLinkContractAddr:
		s.onLinkContractAddress(raw)
	case vmadapter.TriggerNewContract:
		s.onNewContract(raw)
	case vmadapter.TriggerStep:
		s.onStep(id, raw)
	case vmadapter.TriggerException:
		s.onException(raw)
	default:
		log.Debug("unknown trigger type", "type", t)
	}
}

func (s *Session) onLinkCompilerOutput(raw json.RawMessage) {
	var ev struct {
		SourceRootPath    string             `json:"sourceRootPath"`
		CompilationResult compilationResult  `json:"compilationResult"`
	}
	if err := json.Unmarshal(raw, &ev); err != nil {
		log.Error("malformed linkCompilerOutput", "err", err)
		return
	}
	contracts := make([]model.CompilerContract, 0, len(ev.CompilationResult.Contracts))
	for _, cc := range ev.CompilationResult.Contracts {
		node := cc.AST
		contracts = append(contracts, model.CompilerContract{
			Name:          cc.Name,
			SourcePath:    cc.SourcePath,
			Source:        cc.Source,
			CreationCode:  decodeHex(cc.CreationBytecode),
			RuntimeCode:   decodeHex(cc.RuntimeBytecode),
			RuntimeSrcMap: cc.RuntimeSourceMap,
			AST:           &node,
		})
	}
	s.Program.LinkCompilerOutput(contracts)
	log.Info("linked compiler output", "root", ev.SourceRootPath, "contracts", len(contracts))
}

func (s *Session) onLinkContractAddress(raw json.RawMessage) {
	var ev vmadapter.LinkContractAddressEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		log.Error("malformed linkContractAddress", "err", err)
		return
	}
	s.bindAddress(ev.ContractName, ev.Address)
}

func (s *Session) onNewContract(raw json.RawMessage) {
	var ev vmadapter.NewContractEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		log.Error("malformed newContract", "err", err)
		return
	}
	c, ok := s.Program.ContractByRuntimeCode(ev.Code)
	if !ok {
		log.Debug("newContract for unknown runtime code", "address", ev.Address)
		return
	}
	s.bindAddress(c.Name, ev.Address)
}

// bindAddress implements §4.3's linkContractAddress path shared by both
// the direct trigger and the newContract-deduced case: bind the address,
// re-verify breakpoints for the owning file, then push variable
// declarations and function entry points to the VM adapter.
func (s *Session) bindAddress(name string, addr common.Address) {
	if err := s.Program.LinkContractAddress(name, addr); err != nil {
		log.Error("linkContractAddress failed", "name", name, "err", err)
		return
	}
	c := s.Program.Contracts[name]
	s.Breakpoints.ReverifyForPath(c.SourcePath)

	var decls []string
	var entries []uint64
	for astID, vars := range c.ScopeVariables {
		_ = astID
		for _, v := range vars {
			decls = append(decls, v.Name)
		}
	}
	for pc := range c.FunctionEntryMap {
		entries = append(entries, pc)
	}
	s.Adapter.SendDeclarations(addr, decls)
	s.Adapter.SendJumpDestinations(addr, entries)
}

func (s *Session) onStep(id string, raw json.RawMessage) {
	var ev vmadapter.StepEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		log.Error("malformed step event", "err", err)
		return
	}
	s.Steps.HandleEvent(stepengine.RawEvent{
		RequestID: id,
		Address:   ev.Address,
		PC:        ev.PC,
		Stack:     ev.Stack,
		Memory:    ev.Memory,
		GasLeft:   ev.GasLeft,
	})
}

func (s *Session) onException(raw json.RawMessage) {
	var ev vmadapter.ExceptionEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		log.Error("malformed exception event", "err", err)
		return
	}
	log.Warn("VM exception", "address", ev.Address, "pc", ev.PC, "reason", ev.Reason)
	if s.emitter != nil {
		s.emitter.Emit("exception", ev.Reason)
	}
}
