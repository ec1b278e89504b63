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

type TLSConfig struct {
	Enabled                bool   `json:"enabled"`
	ClientAuth             bool   `json:"clientAuth,omitempty"`
	CAFile                 string `json:"caFile,omitempty"`
	CA                     string `json:"ca,omitempty"`
	CertFile               string `json:"certFile,omitempty"`
	KeyFile                string `json:"keyFile,omitempty"`
	InsecureSkipHostVerify bool   `json:"insecureSkipHostVerify"`
}

type HTTPBasicAuthConfig struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

type HTTPClientConfig struct {
	URL               string                 `json:"url"`
	HTTPHeaders       map[string]interface{} `json:"httpHeaders,omitempty"`
	Auth              HTTPBasicAuthConfig    `json:"auth,omitempty"`
	TLS               TLSConfig              `json:"tls,omitempty"`
	ConnectionTimeout *string                `json:"connectionTimeout,omitempty"`
	RequestTimeout    *string                `json:"requestTimeout,omitempty"`
}

var DefaultHTTPConfig = &HTTPClientConfig{
	ConnectionTimeout: confutil.P("30s"),
	RequestTimeout:    confutil.P("30s"),
}

type WSClientConfig struct {
	HTTPClientConfig       `json:",inline"`
	InitialConnectAttempts *int        `json:"initialConnectAttempts,omitempty"`
	ReadBufferSize         *string     `json:"readBufferSize,omitempty"`
	WriteBufferSize        *string     `json:"writeBufferSize,omitempty"`
	HeartbeatInterval      *string     `json:"heartbeatInterval,omitempty"`
	ConnectRetry           RetryConfig `json:"connectRetry,omitempty"`
}

var DefaultWSConfig = &WSClientConfig{
	ReadBufferSize:         confutil.P("16Kb"),
	WriteBufferSize:        confutil.P("16Kb"),
	InitialConnectAttempts: confutil.P(0),
	HeartbeatInterval:      confutil.P("15s"),
	ConnectRetry: RetryConfig{
		InitialDelay: confutil.P("250ms"),
		MaxDelay:     confutil.P("30s"),
		Factor:       confutil.P(2.0),
	},
}

type RetryConfig struct {
	InitialDelay *string  `json:"initialDelay,omitempty"`
	MaxDelay     *string  `json:"maxDelay,omitempty"`
	Factor       *float64 `json:"factor,omitempty"`
}

type RetryConfigWithMax struct {
	RetryConfig `json:",inline"`
	MaxAttempts *int `json:"maxAttempts,omitempty"`
}

var GenericRetryDefaults = &RetryConfigWithMax{
	RetryConfig: RetryConfig{
		InitialDelay: confutil.P("250ms"),
		MaxDelay:     confutil.P("30s"),
		Factor:       confutil.P(2.0),
	},
	MaxAttempts: confutil.P(3),
}
