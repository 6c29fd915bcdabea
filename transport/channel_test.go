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

package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newLoopbackPair spins up a real websocket server on an httptest.Server
// and dials it, giving a connected (server-side, client-side) Channel
// pair for exercising the actual gorilla/websocket framing (§6 "framed
// JSON messages over a bidirectional stream").
func newLoopbackPair(t *testing.T) (server, client *Channel) {
	t.Helper()
	accepted := make(chan *Channel, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ch, err := NewChannel(w, r)
		require.NoError(t, err)
		accepted <- ch
	}))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	client, err := DialChannel(url)
	require.NoError(t, err)

	select {
	case server = <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("server side never accepted the connection")
	}
	t.Cleanup(func() { server.Close(); client.Close() })
	return server, client
}

func TestChannelRoundTrip(t *testing.T) {
	server, client := newLoopbackPair(t)

	client.Send(RawMessage{ID: "1", MessageType: "request", TriggerType: "ping", Content: json.RawMessage(`{"x":1}`)})

	msg, err := server.Recv()
	require.NoError(t, err)
	require.Equal(t, "1", msg.ID)
	require.Equal(t, "ping", msg.TriggerType)
	require.JSONEq(t, `{"x":1}`, string(msg.Content))
}

func TestChannelCloseUnblocksRecv(t *testing.T) {
	server, client := newLoopbackPair(t)
	client.Close()

	_, err := server.Recv()
	require.Error(t, err)
}
