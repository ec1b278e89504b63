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

package ethclient

import (
	"context"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/hyperledger/firefly-common/pkg/ffresty"
	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/wsclient"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
	"github.com/rashidtv/gold-platform-demo/internal/tlsconf"
	"github.com/rashidtv/gold-platform-demo/pkg/confutil"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
)

func ParseWSConfig(ctx context.Context, config *goldconf.WSClientConfig) (*wsclient.WSConfig, error) {
	u, err := url.Parse(config.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return nil, i18n.WrapError(ctx, err, msgs.MsgEthClientInvalidWebSocketURL, config.URL)
	}
	if u.Scheme == "wss" {
		config.TLS.Enabled = true
	}
	tlsConfig, err := tlsconf.BuildTLSConfig(ctx, &config.TLS, tlsconf.ClientType)
	if err != nil {
		return nil, err
	}
	def := goldconf.DefaultWSConfig
	return &wsclient.WSConfig{
		WebSocketURL:           u.String(),
		HTTPHeaders:            config.HTTPHeaders,
		ReadBufferSize:         int(confutil.ByteSize(config.ReadBufferSize, 0, *def.ReadBufferSize)),
		WriteBufferSize:        int(confutil.ByteSize(config.WriteBufferSize, 0, *def.WriteBufferSize)),
		ConnectionTimeout:      confutil.DurationMin(config.ConnectionTimeout, 0, *goldconf.DefaultHTTPConfig.ConnectionTimeout),
		InitialDelay:           confutil.DurationMin(config.ConnectRetry.InitialDelay, 0, *def.ConnectRetry.InitialDelay),
		MaximumDelay:           confutil.DurationMin(config.ConnectRetry.MaxDelay, 0, *def.ConnectRetry.MaxDelay),
		HeartbeatInterval:      confutil.DurationMin(config.HeartbeatInterval, 0, *def.HeartbeatInterval),
		AuthUsername:           config.Auth.Username,
		AuthPassword:           config.Auth.Password,
		TLSClientConfig:        tlsConfig,
		InitialConnectAttempts: confutil.IntMin(config.InitialConnectAttempts, 0, *def.InitialConnectAttempts),
	}, nil
}

func ParseHTTPConfig(ctx context.Context, config *goldconf.HTTPClientConfig) (*resty.Client, error) {
	u, err := url.Parse(config.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, i18n.WrapError(ctx, err, msgs.MsgEthClientInvalidHTTPURL, config.URL)
	}
	if u.Scheme == "https" {
		config.TLS.Enabled = true
	}
	tlsConfig, err := tlsconf.BuildTLSConfig(ctx, &config.TLS, tlsconf.ClientType)
	if err != nil {
		return nil, err
	}
	restyConf := ffresty.Config{
		URL: u.String(),
		HTTPConfig: ffresty.HTTPConfig{
			HTTPHeaders:           config.HTTPHeaders,
			AuthUsername:          config.Auth.Username,
			AuthPassword:          config.Auth.Password,
			TLSClientConfig:       tlsConfig,
			HTTPRequestTimeout:    fftypes.FFDuration(confutil.DurationMin(config.RequestTimeout, 0, *goldconf.DefaultHTTPConfig.RequestTimeout)),
			HTTPConnectionTimeout: fftypes.FFDuration(confutil.DurationMin(config.ConnectionTimeout, 0, *goldconf.DefaultHTTPConfig.ConnectionTimeout)),
		},
	}
	return ffresty.NewWithConfig(ctx, restyConf), nil
}
