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
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/core-coin/sdb/internal/dbglog"
)

var log = dbglog.New("pkg", "transport")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// RawMessage is one frame exchanged over a Channel, carrying whichever
// envelope shape the caller decodes Content into (facade.Envelope or
// vmadapter.Envelope share this wire shape).
type RawMessage struct {
	ID          string          `json:"id"`
	IsRequest   bool            `json:"isRequest,omitempty"`
	MessageType string          `json:"messageType,omitempty"`
	Type        string          `json:"type,omitempty"`
	TriggerType string          `json:"triggerType,omitempty"`
	Content     json.RawMessage `json:"content"`
	Error       string          `json:"error,omitempty"`
}

// Channel is one bidirectional, one-message-per-frame JSON connection
// (§6 "Framed JSON messages over a bidirectional stream").
type Channel struct {
	conn    *websocket.Conn
	send    chan RawMessage
	closeCh chan struct{}
	once    sync.Once
}

// NewChannel upgrades an HTTP connection to a websocket-backed Channel.
func NewChannel(w http.ResponseWriter, r *http.Request) (*Channel, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	c := &Channel{conn: conn, send: make(chan RawMessage, 256), closeCh: make(chan struct{})}
	go c.writePump()
	return c, nil
}

// Send enqueues msg for delivery; it never blocks the caller beyond the
// channel buffer.
func (c *Channel) Send(msg RawMessage) {
	select {
	case c.send <- msg:
	case <-c.closeCh:
	}
}

// Recv blocks until the next inbound frame or the channel closes.
func (c *Channel) Recv() (RawMessage, error) {
	var msg RawMessage
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return msg, err
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	return msg, nil
}

// DialChannel dials a websocket-backed Channel, the client side of §6's
// VM adapter channel (the engine dials out to the VM adapter; the UI
// channel is the other direction, accepted via NewChannel).
func DialChannel(url string) (*Channel, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	c := &Channel{conn: conn, send: make(chan RawMessage, 256), closeCh: make(chan struct{})}
	go c.writePump()
	return c, nil
}

// Close tears down the underlying connection and write pump.
func (c *Channel) Close() {
	c.once.Do(func() { close(c.closeCh) })
	c.conn.Close()
}

func (c *Channel) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Error("channel write failed", "err", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closeCh:
			return
		}
	}
}
