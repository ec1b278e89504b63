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

package metricsserver

import (
	"context"
	"net"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rashidtv/gold-platform-demo/internal/router"
	"github.com/rashidtv/gold-platform-demo/pkg/confutil"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
)

type MetricsServer interface {
	Start() error
	Stop()
	Addr() net.Addr
}

var _ MetricsServer = &metricsServer{}

type metricsServer struct {
	bgCtx      context.Context
	httpServer router.Router
}

// NewMetricsServer returns a server that does nothing when disabled
func NewMetricsServer(ctx context.Context, registry *prometheus.Registry, conf *goldconf.MetricsServerConfig) (MetricsServer, error) {
	s := &metricsServer{bgCtx: ctx}
	if confutil.Bool(conf.Enabled, *goldconf.MetricsServerDefaults.Enabled) {
		httpConf := conf.HTTPServerConfig
		if httpConf.Port == nil {
			httpConf.Port = goldconf.MetricsServerDefaults.Port
		}
		r, err := router.NewRouter(ctx, "Metrics (HTTP)", &httpConf)
		if err != nil {
			return nil, err
		}
		r.HandleFunc("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP)
		s.httpServer = r
	}
	return s, nil
}

func (s *metricsServer) Start() error {
	if s.httpServer != nil {
		return s.httpServer.Start()
	}
	return nil
}

func (s *metricsServer) Stop() {
	if s.httpServer != nil {
		s.httpServer.Stop()
	}
}

func (s *metricsServer) Addr() net.Addr {
	if s.httpServer != nil {
		return s.httpServer.Addr()
	}
	return nil
}
