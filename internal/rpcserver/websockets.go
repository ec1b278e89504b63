/*
 * Copyright © 2025 Kaleido, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package rpcserver

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rashidtv/gold-platform-demo/internal/log"
)

func (s *rpcServer) newWSConnection(conn *websocket.Conn) {
	s.wsMux.Lock()
	defer s.wsMux.Unlock()

	c := &webSocketConnection{
		id:      uuid.New().String()[0:8],
		server:  s,
		conn:    conn,
		send:    make(chan []byte),
		closing: make(chan struct{}),
	}
	c.ctx, c.cancelCtx = context.WithCancel(log.WithLogField(s.bgCtx, "wsconn", c.id))

	s.wsConnections[c.id] = c
	go c.listen()
	go c.sender()
}

func (s *rpcServer) wsClosed(id string) {
	s.wsMux.Lock()
	defer s.wsMux.Unlock()

	delete(s.wsConnections, id)
}

func (s *rpcServer) closeAllWS() {
	s.wsMux.Lock()
	conns := make([]*webSocketConnection, 0, len(s.wsConnections))
	for _, c := range s.wsConnections {
		conns = append(conns, c)
	}
	s.wsMux.Unlock()

	for _, c := range conns {
		c.close()
	}
}

type webSocketConnection struct {
	ctx       context.Context
	cancelCtx context.CancelFunc
	server    *rpcServer
	id        string
	closeMux  sync.Mutex
	closed    bool
	conn      *websocket.Conn
	send      chan ([]byte)
	closing   chan (struct{})
}

func (c *webSocketConnection) close() {
	c.closeMux.Lock()
	wasClosed := c.closed
	if !c.closed {
		c.closed = true
		_ = c.conn.Close()
		close(c.closing)
		c.cancelCtx()
	}
	c.closeMux.Unlock()

	if !wasClosed {
		c.server.wsClosed(c.id)
		log.L(c.ctx).Infof("WS disconnected")
	}
}

func (c *webSocketConnection) sender() {
	defer c.close()
	for {
		select {
		case payload := <-c.send:
			log.L(c.ctx).Tracef("Sending: %s", payload)
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.L(c.ctx).Errorf("Send failed - closing connection: %s", err)
				return
			}
		case <-c.closing:
			return
		}
	}
}

func (c *webSocketConnection) handleMessage(payload []byte) {
	r := c.server.rpcHandler(c.ctx, bytes.NewBuffer(payload))
	c.sendMessage(r.res)
}

func (c *webSocketConnection) sendMessage(res any) {
	payload, err := json.Marshal(res)
	if err != nil {
		log.L(c.ctx).Errorf("Failed to serialize JSON/RPC response: %s", err)
		c.close()
		return
	}
	select {
	case c.send <- payload:
	case <-c.ctx.Done():
	}
}

func (c *webSocketConnection) listen() {
	defer c.close()
	log.L(c.ctx).Infof("WS connected")
	for {
		_, b, err := c.conn.ReadMessage()
		if err != nil {
			log.L(c.ctx).Debugf("WS read ended: %s", err)
			return
		}
		log.L(c.ctx).Tracef("Received: %s", b)
		go c.handleMessage(b)
	}
}
