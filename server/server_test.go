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

package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/core-coin/sdb/ast"
	"github.com/core-coin/sdb/breakpoint"
	"github.com/core-coin/sdb/common"
	"github.com/core-coin/sdb/eval"
	"github.com/core-coin/sdb/facade"
	"github.com/core-coin/sdb/model"
	"github.com/core-coin/sdb/stepengine"
	"github.com/core-coin/sdb/transport"
	"github.com/core-coin/sdb/uiproto"
	"github.com/core-coin/sdb/vmadapter"
)

type fakeCompiler struct{}

func (fakeCompiler) Compile(root string, sources map[string]string, name string) (eval.CompileResult, error) {
	return eval.CompileResult{}, nil
}

type fakeResolver struct{}

func (fakeResolver) ResolveVariable(contractName string, scope []int, name string) (*model.Variable, bool) {
	return nil, false
}

// newChannelPair gives a connected (server, client) Channel pair over a
// dedicated httptest websocket server.
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

// buildHandler wires a full, real UIHandler over live loopback VM and UI
// channels, exercising the same components engine.New assembles (§2), so
// these tests drive the actual wire-decoding path rather than a mock.
func buildHandler(t *testing.T) (*UIHandler, *transport.Channel) {
	t.Helper()
	vmSide, _ := newChannelPair(t)
	uiServer, uiClient := newChannelPair(t)

	adapter := vmadapter.New(vmSide)
	go func() {
		for {
			msg, err := vmSide.Recv()
			if err != nil {
				return
			}
			adapter.Dispatch(msg, nil)
		}
	}()

	src := "contract C {\n}\n"
	root := &ast.Node{ID: 0, Kind: "ContractDefinition", Start: 0, Length: len(src)}
	runtime := []byte{0x00}
	program := model.NewProgram(8)
	program.LinkCompilerOutput([]model.CompilerContract{{
		Name: "C", SourcePath: "c.sol", Source: src,
		CreationCode: runtime, RuntimeCode: runtime, RuntimeSrcMap: "0:1:0:-", AST: root,
	}})
	var addr common.Address
	addr[19] = 1
	require.NoError(t, program.LinkContractAddress("C", addr))

	emit := uiEmitter{ch: uiServer}
	steps := stepengine.New(program, adapter, emit)
	bps := breakpoint.New(program, adapter, nil)
	evaluator := eval.New(program, fakeCompiler{}, adapter, fakeResolver{}, steps)
	f := facade.New(program, steps, bps, evaluator, emit)

	h := &UIHandler{Facade: f, Program: program, Steps: steps, Adapter: adapter, Channel: uiServer}
	return h, uiClient
}

type uiEmitter struct{ ch *transport.Channel }

func (e uiEmitter) Emit(event string, args ...interface{}) {}

func TestHandlePingRepliesOK(t *testing.T) {
	h, client := buildHandler(t)

	h.Handle(transport.RawMessage{ID: "1", Type: string(uiproto.RequestPing)})

	resp, err := client.Recv()
	require.NoError(t, err)
	require.Equal(t, "1", resp.ID)
}

func TestHandleSetBreakpointReplies(t *testing.T) {
	h, client := buildHandler(t)

	go h.Handle(transport.RawMessage{
		ID:      "bp-1",
		Type:    string(uiproto.RequestSetBreakpoint),
		Content: mustJSON(uiproto.SetBreakpointRequest{Path: "c.sol", Line: 1}),
	})

	resp, err := client.Recv()
	require.NoError(t, err)
	require.Equal(t, "bp-1", resp.ID)
	require.Empty(t, resp.Error)
}

func TestHandleUnknownRequestRepliesError(t *testing.T) {
	h, client := buildHandler(t)

	h.Handle(transport.RawMessage{ID: "x", Type: "not-a-real-request"})

	resp, err := client.Recv()
	require.NoError(t, err)
	require.NotEmpty(t, resp.Error)
}
