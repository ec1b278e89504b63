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

type LedgerConfig struct {
	HTTP              HTTPClientConfig `json:"http,omitempty"`
	WS                WSClientConfig   `json:"ws,omitempty"`
	ContractAddress   *string          `json:"contractAddress"`
	GasEstimateFactor *float64         `json:"gasEstimateFactor"`
	TXVersion         *string          `json:"txVersion"`
}

var LedgerDefaults = &LedgerConfig{
	ContractAddress:   confutil.P("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
	GasEstimateFactor: confutil.P(1.5),
	TXVersion:         confutil.P("eip1559"),
}

type ConfirmationConfig struct {
	Timeout *string     `json:"timeout"`
	Poll    RetryConfig `json:"poll"`
}

var ConfirmationDefaults = &ConfirmationConfig{
	Timeout: confutil.P("2m"),
	Poll: RetryConfig{
		InitialDelay: confutil.P("100ms"),
		MaxDelay:     confutil.P("2s"),
		Factor:       confutil.P(2.0),
	},
}

type SyncConfig struct {
	MaxConcurrentFetches *int `json:"maxConcurrentFetches"`
}

var SyncDefaults = &SyncConfig{
	MaxConcurrentFetches: confutil.P(8),
}

const (
	WalletTypeNone     = "none"
	WalletTypeStatic   = "static"
	WalletTypeKeystore = "keystore"
)

type WalletConfig struct {
	Type *string `json:"type"`
	// Static keys are hex encoded secp256k1 private keys
	Static   StaticWalletConfig   `json:"static"`
	Keystore KeystoreWalletConfig `json:"keystore"`
	// When false every account request and signature is declined, as if the
	// user dismissed the wallet prompt
	AutoApprove *bool `json:"autoApprove"`
}

type StaticWalletConfig struct {
	Keys []string `json:"keys"`
}

type KeystoreWalletConfig struct {
	Path  *string     `json:"path"`
	Cache CacheConfig `json:"cache"`
}

type CacheConfig struct {
	Capacity *int `json:"capacity"`
}

var WalletDefaults = &WalletConfig{
	Type:        confutil.P(WalletTypeNone),
	AutoApprove: confutil.P(true),
	Keystore: KeystoreWalletConfig{
		Path: confutil.P("keystore"),
		Cache: CacheConfig{
			Capacity: confutil.P(100),
		},
	},
}

type SimulatorConfig struct {
	Enabled          *bool  `json:"enabled"`
	ChainID          *int64 `json:"chainId"`
	HTTPServerConfig `json:",inline"`
}

var SimulatorDefaults = &SimulatorConfig{
	Enabled: confutil.P(false),
	ChainID: confutil.P(int64(1337)),
	HTTPServerConfig: HTTPServerConfig{
		Port: confutil.P(8545),
	},
}
