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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/core-coin/sdb/ast"
	"github.com/core-coin/sdb/common"
	"github.com/core-coin/sdb/config"
	"github.com/core-coin/sdb/eval"
	"github.com/core-coin/sdb/model"
	"github.com/core-coin/sdb/stepengine"
	"github.com/core-coin/sdb/transport"
	"github.com/core-coin/sdb/typedecoder"
	"github.com/core-coin/sdb/uiproto"
	"github.com/core-coin/sdb/vmadapter"
)

type nopCompiler struct{}

func (nopCompiler) Compile(root string, sources map[string]string, name string) (eval.CompileResult, error) {
	return eval.CompileResult{}, nil
}

// newChannelPair gives a connected (server, client) Channel pair over a
// dedicated httptest websocket server, matching server_test.go's helper.
func newChannelPair(t *testing.T) (server, client *transport.Channel) {
	t.Helper()
	accepted := make(chan *transport.Channel, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ch, err := transport.NewChannel(w, r)
		require.NoError(t, err)
		accepted <- ch
	}))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	client, err := transport.DialChannel(url)
	require.NoError(t, err)

	select {
	case server = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("server side never connected")
	}
	t.Cleanup(func() { server.Close(); client.Close() })
	return server, client
}

// TestSessionRunResolvesStorageWithoutDeadlock drives a real variables()
// request for a Storage-located state variable while Session.Run is the
// only goroutine pumping the engine's half of both channels, proving the
// VM-frame reader resolves the getStorage round trip independently of
// whatever Run's single dispatch loop is doing (§5 "Suspension points").
// Before the fix, the single select loop blocked inside
// vmadapter.StorageReader.Word while handling the UI's variables request,
// so it could never come back around to observe the VM's getStorage
// response, and the request hung forever.
func TestSessionRunResolvesStorageWithoutDeadlock(t *testing.T) {
	vmEngineSide, vmFake := newChannelPair(t)
	uiEngineSide, uiFake := newChannelPair(t)

	session := New(config.Default(), vmEngineSide, uiEngineSide, nopCompiler{})

	src := "contract C {\n}\n"
	root := &ast.Node{ID: 0, Kind: "ContractDefinition", Start: 0, Length: len(src)}
	runtime := []byte{0x00}
	session.Program.LinkCompilerOutput([]model.CompilerContract{{
		Name: "C", SourcePath: "c.sol", Source: src,
		CreationCode: runtime, RuntimeCode: runtime, RuntimeSrcMap: "0:1:0:-", AST: root,
	}})
	var addr common.Address
	addr[19] = 1
	require.NoError(t, session.Program.LinkContractAddress("C", addr))

	detail := typedecoder.NewValue(typedecoder.ValueUnsigned, 32)
	cursor := typedecoder.NewSlotCursor()
	typedecoder.ApplyStoragePositions(detail, cursor)
	contract := session.Program.Contracts["C"]
	contract.DeclareVariable(0, &model.Variable{Name: "bal", Type: "uint256", ASTID: 0, Detail: detail})

	// Put the step engine at a known paused location before Run starts
	// pumping messages, as if a prior step had already landed here.
	session.Steps.HandleEvent(stepengine.RawEvent{RequestID: "s1", Address: addr, PC: 0})

	// Answer the VM side's getStorage request once Run issues it.
	go func() {
		for {
			msg, err := vmFake.Recv()
			if err != nil {
				return
			}
			if msg.MessageType == string(vmadapter.MessageRequest) && msg.TriggerType == string(vmadapter.RequestGetStorage) {
				vmFake.Send(transport.RawMessage{
					ID:          msg.ID,
					MessageType: string(vmadapter.MessageResponse),
					Content:     json.RawMessage(`{"word":"0x` + strings.Repeat("00", 31) + `2a"}`),
				})
			}
		}
	}()

	go session.Run(vmEngineSide, uiEngineSide)

	content, err := json.Marshal(uiproto.VariablesRequest{VariablesReference: 0})
	require.NoError(t, err)
	uiFake.Send(transport.RawMessage{ID: "v1", Type: string(uiproto.RequestVariables), Content: content})

	done := make(chan transport.RawMessage, 1)
	go func() {
		msg, err := uiFake.Recv()
		if err == nil {
			done <- msg
		}
	}()

	select {
	case resp := <-done:
		require.Equal(t, "v1", resp.ID)
		var body uiproto.VariablesResponse
		require.NoError(t, json.Unmarshal(resp.Content, &body))
		require.Len(t, body.Variables, 1)
		require.Equal(t, "bal", body.Variables[0].Name)
		require.Equal(t, "42", body.Variables[0].Value)
	case <-time.After(3 * time.Second):
		t.Fatal("variables request never completed: engine deadlocked on the storage round trip")
	}
}
