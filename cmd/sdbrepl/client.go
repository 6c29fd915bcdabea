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

package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/core-coin/sdb/transport"
	"github.com/core-coin/sdb/uiproto"
)

// uiClient is the REPL's half of the §6 "UI client channel": it issues
// correlated requests the same way vmadapter.Adapter does on the engine
// side, plus a callback for the server-pushed event envelope
// (`{type: "event", content: {event, args}}`).
type uiClient struct {
	channel *transport.Channel
	corr    *transport.CorrelationMap
	onEvent func(event string, args []interface{})
}

func newUIClient(channel *transport.Channel, onEvent func(string, []interface{})) *uiClient {
	c := &uiClient{channel: channel, corr: transport.NewCorrelationMap(), onEvent: onEvent}
	go c.readLoop()
	return c
}

func (c *uiClient) readLoop() {
	for {
		msg, err := c.channel.Recv()
		if err != nil {
			return
		}
		if msg.Type == "event" {
			c.handleEvent(msg.Content)
			continue
		}
		var content interface{}
		json.Unmarshal(msg.Content, &content)
		c.corr.Resolve(msg.ID, content, msg.Error)
	}
}

func (c *uiClient) handleEvent(raw json.RawMessage) {
	var ev struct {
		Event string        `json:"event"`
		Args  []interface{} `json:"args"`
	}
	if err := json.Unmarshal(raw, &ev); err != nil {
		return
	}
	if c.onEvent != nil {
		c.onEvent(ev.Event, ev.Args)
	}
}

// call sends one request and blocks for its matching response, rendering
// content back into out (a pointer), or returns the server's error
// string. There is no timeout here beyond the UI-level ping contract;
// a hung server simply blocks the REPL's prompt, which is the same
// tradeoff the facade's own callers accept (§5).
func (c *uiClient) call(typ uiproto.RequestType, req, out interface{}) error {
	done := make(chan struct {
		content interface{}
		errStr  string
	}, 1)
	id := c.corr.Register(func(content interface{}, errStr string) {
		done <- struct {
			content interface{}
			errStr  string
		}{content, errStr}
	})
	var content json.RawMessage
	if req != nil {
		content, _ = json.Marshal(req)
	} else {
		content = json.RawMessage("{}")
	}
	c.channel.Send(transport.RawMessage{ID: id, Type: string(typ), Content: content})
	result := <-done
	if result.errStr != "" {
		return fmt.Errorf("%s", result.errStr)
	}
	if out == nil {
		return nil
	}
	b, err := json.Marshal(result.content)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (c *uiClient) ping(timeout time.Duration) bool {
	var resp uiproto.PingResponse
	done := make(chan error, 1)
	go func() { done <- c.call(uiproto.RequestPing, nil, &resp) }()
	select {
	case err := <-done:
		return err == nil && resp.OK
	case <-time.After(timeout):
		return false
	}
}
