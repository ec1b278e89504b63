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

package router

import (
	"context"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rashidtv/gold-platform-demo/internal/httpserver"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
)

// Router is an HTTP server with path based dispatch, shared by the
// JSON/RPC and metrics endpoints
type Router interface {
	Start() error
	Stop()
	Addr() net.Addr

	HandleFunc(path string, f func(http.ResponseWriter, *http.Request), methods ...string)
	PathPrefixHandleFunc(path string, f func(http.ResponseWriter, *http.Request))
}

func NewRouter(ctx context.Context, description string, conf *goldconf.HTTPServerConfig) (_ Router, err error) {
	r := &router{
		ctx:    ctx,
		router: mux.NewRouter(),
	}
	r.server, err = httpserver.NewServer(ctx, description, conf, r.router)
	if err != nil {
		return nil, err
	}
	return r, nil
}

type router struct {
	ctx    context.Context
	router *mux.Router
	server httpserver.Server
}

func (r *router) HandleFunc(path string, f func(http.ResponseWriter, *http.Request), methods ...string) {
	route := r.router.HandleFunc(path, f)
	if len(methods) > 0 {
		route.Methods(methods...)
	}
}

func (r *router) PathPrefixHandleFunc(path string, f func(http.ResponseWriter, *http.Request)) {
	r.router.PathPrefix(path).HandlerFunc(f)
}

func (r *router) Addr() (a net.Addr) {
	if r.server != nil {
		a = r.server.Addr()
	}
	return a
}

func (r *router) Start() error {
	if r.server != nil {
		return r.server.Start()
	}
	return nil
}

func (r *router) Stop() {
	if r.server != nil {
		r.server.Stop()
	}
}
