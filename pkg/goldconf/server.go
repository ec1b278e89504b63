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

package goldconf

import "github.com/rashidtv/gold-platform-demo/pkg/confutil"

type HTTPServerConfig struct {
	TLS                   TLSConfig  `json:"tls"`
	CORS                  CORSConfig `json:"cors"`
	Address               *string    `json:"address"`
	Port                  *int       `json:"port"`
	DefaultRequestTimeout *string    `json:"defaultRequestTimeout"`
	MaxRequestTimeout     *string    `json:"maxRequestTimeout"`
	ShutdownTimeout       *string    `json:"shutdownTimeout"`
}

var HTTPDefaults = &HTTPServerConfig{
	Address:               confutil.P("127.0.0.1"),
	DefaultRequestTimeout: confutil.P("2m"),
	MaxRequestTimeout:     confutil.P("10m"),
	ShutdownTimeout:       confutil.P("10s"),
}

type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	Debug            bool     `json:"debug"`
	AllowCredentials *bool    `json:"allowCredentials"`
	AllowedHeaders   []string `json:"allowedHeaders"`
	AllowedMethods   []string `json:"allowedMethods"`
	AllowedOrigins   []string `json:"allowedOrigins"`
	MaxAge           *string  `json:"maxAge"`
}

type RPCServerConfigHTTP struct {
	Disabled         bool `json:"disabled,omitempty"`
	HTTPServerConfig `json:",inline"`
}

type RPCServerConfigWS struct {
	Disabled         bool `json:"disabled,omitempty"`
	HTTPServerConfig `json:",inline"`
	ReadBufferSize   *string `json:"readBufferSize"`
	WriteBufferSize  *string `json:"writeBufferSize"`
}

type RPCServerConfig struct {
	HTTP RPCServerConfigHTTP `json:"http,omitempty"`
	WS   RPCServerConfigWS   `json:"ws,omitempty"`
}

var WSDefaults = &RPCServerConfigWS{
	ReadBufferSize:  confutil.P("64KB"),
	WriteBufferSize: confutil.P("64KB"),
}

var RPCServerDefaults = &RPCServerConfig{
	HTTP: RPCServerConfigHTTP{
		HTTPServerConfig: HTTPServerConfig{Port: confutil.P(8745)},
	},
	WS: RPCServerConfigWS{
		HTTPServerConfig: HTTPServerConfig{Port: confutil.P(8746)},
	},
}

type MetricsServerConfig struct {
	Enabled          *bool `json:"enabled"`
	HTTPServerConfig `json:",inline"`
}

var MetricsServerDefaults = &MetricsServerConfig{
	Enabled: confutil.P(false),
	HTTPServerConfig: HTTPServerConfig{
		Port: confutil.P(8747),
	},
}
