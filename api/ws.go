/*
 * Copyright 2023 ICON Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/icon-project/btp2/common/errors"
	"github.com/icon-project/btp2/common/log"
)

// wsConn exchanges json messages of the event monitor.
// The first message of each side is the handshake, a request from the client
// then an ErrorResponse from the server.
type wsConn struct {
	*websocket.Conn
	id   string
	lv   log.Level
	l    log.Logger
	wmtx sync.Mutex
}

func newWsConn(conn *websocket.Conn, id string, lv log.Level, l log.Logger) *wsConn {
	c := &wsConn{
		Conn: conn,
		id:   id,
		lv:   lv,
		l:    l,
	}
	c.l.Debugf("[%s]wsConnect", id)
	return c
}

func (c *wsConn) close() {
	c.l.Debugf("[%s]wsClose", c.id)
	if err := c.Conn.Close(); err != nil {
		c.l.Tracef("[%s]fail to Close err:%+v", c.id, err)
	}
}

// readJSON reads a message into v, the deadline of ctx bounds the read.
func (c *wsConn) readJSON(ctx context.Context, v interface{}) error {
	if d, ok := ctx.Deadline(); ok {
		if err := c.SetReadDeadline(d); err != nil {
			return err
		}
		defer c.SetReadDeadline(time.Time{})
	}
	_, b, err := c.ReadMessage()
	if err != nil {
		return err
	}
	c.l.Logf(c.lv, "[%s]wsRead=%s", c.id, b)
	return json.Unmarshal(b, v)
}

func (c *wsConn) writeJSON(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.wmtx.Lock()
	defer c.wmtx.Unlock()
	c.l.Logf(c.lv, "[%s]wsWrite=%s", c.id, b)
	return c.WriteMessage(websocket.TextMessage, b)
}

// readLoop calls cb with every message until ctx is done, the connection fails or cb returns an error.
func (c *wsConn) readLoop(ctx context.Context, cb func(b []byte) error) error {
	ech := make(chan error, 1)
	go func() {
		for {
			_, b, err := c.ReadMessage()
			if err == nil {
				c.l.Logf(c.lv, "[%s]wsReadLoop=%s", c.id, b)
				err = cb(b)
			}
			if err != nil {
				ech <- err
				return
			}
		}
	}()
	select {
	case <-ctx.Done():
		c.l.Debugf("[%s]wsReadLoop context Done", c.id)
		return ctx.Err()
	case err := <-ech:
		c.l.Debugf("[%s]wsReadLoop err:%+v", c.id, err)
		return err
	}
}

// accept reads req, then responds with the result of validate.
func (c *wsConn) accept(req interface{}, validate func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), WsHandshakeTimeout)
	defer cancel()
	err := c.readJSON(ctx, req)
	if err == nil {
		err = validate()
	}
	if werr := c.writeJSON(NewErrorResponse(err)); werr != nil {
		c.l.Debugf("[%s]fail to wsWrite err:%+v", c.id, werr)
	}
	return err
}

// request sends req, then waits the response of the server.
func (c *wsConn) request(ctx context.Context, req interface{}) error {
	if err := c.writeJSON(req); err != nil {
		return err
	}
	tctx, cancel := context.WithTimeout(ctx, WsHandshakeTimeout)
	defer cancel()
	er := &ErrorResponse{}
	if err := c.readJSON(tctx, er); err != nil {
		return err
	}
	if er.Code != errors.Success {
		return er
	}
	return nil
}
