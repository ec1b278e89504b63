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

package tlsconf

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/rashidtv/gold-platform-demo/internal/log"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
)

type TLSType string

const (
	ServerType TLSType = "server"
	ClientType TLSType = "client"
)

// BuildTLSConfig returns nil when TLS is not enabled
func BuildTLSConfig(ctx context.Context, config *goldconf.TLSConfig, tlsType TLSType) (*tls.Config, error) {
	if !config.Enabled {
		return nil, nil
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	var err error
	var rootCAs *x509.CertPool
	switch {
	case config.CAFile != "":
		var caBytes []byte
		if caBytes, err = os.ReadFile(config.CAFile); err == nil {
			rootCAs = x509.NewCertPool()
			if !rootCAs.AppendCertsFromPEM(caBytes) {
				err = i18n.NewError(ctx, msgs.MsgTLSInvalidCA)
			}
		}
	case config.CA != "":
		rootCAs = x509.NewCertPool()
		if !rootCAs.AppendCertsFromPEM([]byte(config.CA)) {
			err = i18n.NewError(ctx, msgs.MsgTLSInvalidCA)
		}
	default:
		rootCAs, err = x509.SystemCertPool()
	}
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgTLSConfigFailed)
	}
	tlsConfig.RootCAs = rootCAs

	if config.CertFile != "" && config.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(config.CertFile, config.KeyFile)
		if err != nil {
			return nil, i18n.WrapError(ctx, err, msgs.MsgTLSInvalidPair)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if tlsType == ServerType && config.ClientAuth {
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
		tlsConfig.ClientCAs = rootCAs
	}

	tlsConfig.InsecureSkipVerify = config.InsecureSkipHostVerify
	log.L(ctx).Debugf("TLS enabled type=%s clientCerts=%d skipHostVerify=%t", tlsType, len(tlsConfig.Certificates), tlsConfig.InsecureSkipVerify)
	return tlsConfig, nil
}
