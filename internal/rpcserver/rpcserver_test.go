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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	"github.com/rashidtv/gold-platform-demo/pkg/confutil"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServerHTTP(t *testing.T, conf *goldconf.RPCServerConfig) (string, *rpcServer, func()) {
	conf.HTTP.Address = confutil.P("127.0.0.1")
	conf.HTTP.Port = confutil.P(0)
	conf.WS.Disabled = true
	s, err := NewServer(context.Background(), conf)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	rs := s.(*rpcServer)
	return fmt.Sprintf("http://%s", rs.HTTPAddr()), rs, s.Stop
}

func newTestServerWebSockets(t *testing.T, conf *goldconf.RPCServerConfig) (string, *rpcServer, func()) {
	conf.WS.Address = confutil.P("127.0.0.1")
	conf.WS.Port = confutil.P(0)
	conf.HTTP.Disabled = true
	s, err := NewServer(context.Background(), conf)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	rs := s.(*rpcServer)
	return fmt.Sprintf("ws://%s", rs.WSAddr()), rs, s.Stop
}

func regTestRPC(s *rpcServer, method string, handler RPCHandler) {
	group := strings.SplitN(method, "_", 2)[0]
	module := s.rpcModules[group]
	if module == nil {
		module = NewRPCModule(group)
		s.Register(module)
	}
	module.Add(method, handler)
}

func TestBadHTTPConfig(t *testing.T) {
	_, err := NewServer(context.Background(), &goldconf.RPCServerConfig{
		HTTP: goldconf.RPCServerConfigHTTP{
			HTTPServerConfig: goldconf.HTTPServerConfig{
				Address: confutil.P("::::::wrong"),
				Port:    confutil.P(0),
			},
		},
		WS: goldconf.RPCServerConfigWS{Disabled: true},
	})
	assert.Regexp(t, "GP010707", err)
}

func TestBadWSConfig(t *testing.T) {
	_, err := NewServer(context.Background(), &goldconf.RPCServerConfig{
		HTTP: goldconf.RPCServerConfigHTTP{
			HTTPServerConfig: goldconf.HTTPServerConfig{
				Port: confutil.P(0),
			},
		},
		WS: goldconf.RPCServerConfigWS{
			HTTPServerConfig: goldconf.HTTPServerConfig{
				Address: confutil.P("::::::wrong"),
				Port:    confutil.P(0),
			},
		},
	})
	assert.Regexp(t, "GP010707", err)
}

func TestBadHTTPMethod(t *testing.T) {
	url, _, done := newTestServerHTTP(t, &goldconf.RPCServerConfig{})
	defer done()

	res, err := resty.New().R().Get(url)
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode())
}

func TestBadWSUpgrade(t *testing.T) {
	_, s, done := newTestServerWebSockets(t, &goldconf.RPCServerConfig{})
	defer done()

	res, err := resty.New().R().Get(fmt.Sprintf("http://%s", s.WSAddr()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode())
}

func TestWebSocketRoundTrip(t *testing.T) {
	url, s, done := newTestServerWebSockets(t, &goldconf.RPCServerConfig{})
	defer done()

	regTestRPC(s, "ut_echo", RPCMethod1(func(ctx context.Context, msg string) (string, error) {
		return "echo:" + msg, nil
	}))

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{
		"jsonrpc": "2.0",
		"id": 42,
		"method": "ut_echo",
		"params": ["gold"]
	}`)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":42,"result":"echo:gold"}`, string(b))
}

func TestWebSocketClosedOnStop(t *testing.T) {
	url, s, done := newTestServerWebSockets(t, &goldconf.RPCServerConfig{})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Round trip an error to ensure the connection is registered
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"jsonrpc":"2.0","id":1,"method":"ut_missing"}`)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, json.Unmarshal(b, &res))
	assert.Regexp(t, "GP010702", res["error"].(map[string]any)["message"])

	done()
	s.wsMux.Lock()
	assert.Empty(t, s.wsConnections)
	s.wsMux.Unlock()
}

func TestModulePanicsOnBadMethod(t *testing.T) {
	m := NewRPCModule("gold")
	assert.Panics(t, func() {
		m.Add("other_method", RPCMethod0(func(ctx context.Context) (bool, error) { return true, nil }))
	})
	m.Add("gold_a", RPCMethod0(func(ctx context.Context) (bool, error) { return true, nil }))
	assert.Panics(t, func() {
		m.Add("gold_a", RPCMethod0(func(ctx context.Context) (bool, error) { return true, nil }))
	})
	assert.Equal(t, []string{"gold_a"}, m.MethodNames())
}
