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

package httpserver

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/rashidtv/gold-platform-demo/internal/log"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
	"github.com/rashidtv/gold-platform-demo/internal/tlsconf"
	"github.com/rashidtv/gold-platform-demo/pkg/confutil"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
)

type Server interface {
	Start() error
	Stop()
	Addr() net.Addr
}

type httpServer struct {
	ctx             context.Context
	cancelCtx       func()
	description     string
	listener        net.Listener
	httpServer      *http.Server
	httpServerDone  chan error
	shutdownTimeout time.Duration
	started         bool
}

func NewServer(ctx context.Context, description string, conf *goldconf.HTTPServerConfig, handler http.Handler) (_ Server, err error) {
	s := &httpServer{
		description:     description,
		httpServerDone:  make(chan error),
		shutdownTimeout: confutil.DurationMin(conf.ShutdownTimeout, 0, *goldconf.HTTPDefaults.ShutdownTimeout),
	}
	s.ctx, s.cancelCtx = context.WithCancel(ctx)

	if conf.Port == nil {
		return nil, i18n.NewError(ctx, msgs.MsgHTTPServerMissingPort, description)
	}

	listenAddr := fmt.Sprintf("%s:%d", confutil.StringNotEmpty(conf.Address, *goldconf.HTTPDefaults.Address), *conf.Port)
	if s.listener, err = net.Listen("tcp", listenAddr); err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgHTTPServerStartFailed, listenAddr)
	}
	log.L(ctx).Infof("%s server listening on %s", description, s.listener.Addr())

	tlsConfig, err := tlsconf.BuildTLSConfig(ctx, &conf.TLS, tlsconf.ServerType)
	if err != nil {
		_ = s.listener.Close()
		return nil, err
	}
	if tlsConfig != nil {
		s.listener = tls.NewListener(s.listener, tlsConfig)
	}

	maxRequestTimeout := confutil.DurationMin(conf.MaxRequestTimeout, time.Second, *goldconf.HTTPDefaults.MaxRequestTimeout)
	defaultRequestTimeout := confutil.DurationMin(conf.DefaultRequestTimeout, time.Second, *goldconf.HTTPDefaults.DefaultRequestTimeout)

	handler = s.withLogAndTimeout(handler, defaultRequestTimeout, maxRequestTimeout)
	handler = WrapCorsIfEnabled(ctx, handler, &conf.CORS)

	s.httpServer = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: maxRequestTimeout,
		TLSConfig:         tlsConfig,
		ConnContext: func(newCtx context.Context, c net.Conn) context.Context {
			l := log.L(ctx).WithField("conn", uuid.New().String()[0:8])
			newCtx = log.WithLogger(newCtx, l)
			l.Debugf("New %s connection: remote=%s local=%s", description, c.RemoteAddr(), c.LocalAddr())
			return newCtx
		},
	}
	return s, nil
}

func (s *httpServer) runAPIServer() {
	err := s.httpServer.Serve(s.listener)
	s.httpServerDone <- err
}

// calcRequestTimeout honours a Request-Timeout header, as seconds or a
// Go duration, capped at the configured maximum
func (s *httpServer) calcRequestTimeout(req *http.Request, defaultTimeout, maxTimeout time.Duration) time.Duration {
	reqTimeout := defaultTimeout
	reqTimeoutHeader := req.Header.Get("Request-Timeout")
	if reqTimeoutHeader != "" {
		var customTimeout time.Duration
		timeoutInt, err := strconv.ParseInt(reqTimeoutHeader, 10, 32)
		if err == nil {
			customTimeout = time.Duration(timeoutInt) * time.Second
		} else {
			customTimeout, err = time.ParseDuration(reqTimeoutHeader)
		}
		if err != nil {
			log.L(req.Context()).Warnf("Invalid Request-Timeout header '%s': %s", reqTimeoutHeader, err)
		} else {
			reqTimeout = customTimeout
			if reqTimeout > maxTimeout {
				reqTimeout = maxTimeout
			}
		}
	}
	return reqTimeout
}

func (s *httpServer) Addr() net.Addr {
	return s.listener.Addr()
}

type logCapture struct {
	status int
	res    http.ResponseWriter
}

func (lc *logCapture) Header() http.Header {
	return lc.res.Header()
}

func (lc *logCapture) Write(data []byte) (int, error) {
	return lc.res.Write(data)
}

func (lc *logCapture) WriteHeader(statusCode int) {
	lc.status = statusCode
	lc.res.WriteHeader(statusCode)
}

// Hijack is required for the WebSocket upgrade to pass through the capture
func (lc *logCapture) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := lc.res.(http.Hijacker)
	if !ok {
		return nil, nil, i18n.NewError(context.Background(), msgs.MsgHTTPServerNoWSUpgrade, lc.res)
	}
	return hj.Hijack()
}

func (s *httpServer) withLogAndTimeout(handler http.Handler, defaultRequestTimeout, maxRequestTimeout time.Duration) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		startTime := time.Now()

		ctx, cancel := context.WithTimeout(req.Context(), s.calcRequestTimeout(req, defaultRequestTimeout, maxRequestTimeout))
		defer cancel()
		req = req.WithContext(ctx)

		log.L(ctx).Debugf("--> %s %s (%s)", req.Method, req.URL.Path, s.description)
		lc := &logCapture{res: res, status: http.StatusOK}
		handler.ServeHTTP(lc, req)

		durationMS := float64(time.Since(startTime)) / float64(time.Millisecond)
		log.L(ctx).Debugf("<-- %s %s [%d] (%.2fms)", req.Method, req.URL.Path, lc.status, durationMS)
	})
}

func (s *httpServer) Start() error {
	s.started = true
	go s.runAPIServer()
	return nil
}

func (s *httpServer) Stop() {
	if !s.started {
		_ = s.listener.Close()
		return
	}
	log.L(s.ctx).Infof("%s server shutting down", s.description)
	shutdownStarted := time.Now()
	gracefulShutdown := make(chan struct{})
	go func() {
		defer close(gracefulShutdown)
		_ = s.httpServer.Shutdown(s.ctx)
	}()
	select {
	case <-time.After(s.shutdownTimeout):
		log.L(s.ctx).Warnf("%s server terminating after waiting %s for shutdown", s.description, time.Since(shutdownStarted))
		_ = s.httpServer.Close()
	case <-gracefulShutdown:
	}
	s.cancelCtx()
	err := <-s.httpServerDone
	log.L(s.ctx).Infof("%s server ended (err=%v)", s.description, err)
	s.started = false
}
