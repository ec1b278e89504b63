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

package goldnode

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/rashidtv/gold-platform-demo/pkg/confutil"
	"github.com/rashidtv/gold-platform-demo/pkg/goldapi"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcResult struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int64  `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestConfig(t *testing.T, keys ...*secp256k1.KeyPair) *goldconf.GoldConfig {
	conf := &goldconf.GoldConfig{
		Log: goldconf.LogConfig{Level: confutil.P("debug")},
		Wallet: goldconf.WalletConfig{
			Type:        confutil.P(goldconf.WalletTypeStatic),
			AutoApprove: confutil.P(true),
		},
		Confirmation: goldconf.ConfirmationConfig{
			Timeout: confutil.P("5s"),
			Poll: goldconf.RetryConfig{
				InitialDelay: confutil.P("5ms"),
				MaxDelay:     confutil.P("20ms"),
			},
		},
		RPCServer: goldconf.RPCServerConfig{
			HTTP: goldconf.RPCServerConfigHTTP{
				HTTPServerConfig: goldconf.HTTPServerConfig{Address: confutil.P("127.0.0.1"), Port: confutil.P(0)},
			},
			WS: goldconf.RPCServerConfigWS{Disabled: true},
		},
		MetricsServer: goldconf.MetricsServerConfig{
			Enabled:          confutil.P(true),
			HTTPServerConfig: goldconf.HTTPServerConfig{Address: confutil.P("127.0.0.1"), Port: confutil.P(0)},
		},
		Simulator: goldconf.SimulatorConfig{
			Enabled:          confutil.P(true),
			HTTPServerConfig: goldconf.HTTPServerConfig{Address: confutil.P("127.0.0.1"), Port: confutil.P(0)},
		},
	}
	for _, kp := range keys {
		conf.Wallet.Static.Keys = append(conf.Wallet.Static.Keys, ethtypes.HexBytes0xPrefix(kp.PrivateKeyBytes()).String())
	}
	return conf
}

func newTestNode(t *testing.T, conf *goldconf.GoldConfig) (Node, func(method string, params ...any) *rpcResult) {
	n := NewNode(context.Background(), conf)
	t.Cleanup(n.Stop)
	require.NoError(t, n.Start())

	url := fmt.Sprintf("http://%s", n.RPCServer().HTTPAddr())
	return n, func(method string, params ...any) *rpcResult {
		if params == nil {
			params = []any{}
		}
		var res rpcResult
		_, err := resty.New().R().
			SetBody(map[string]any{"jsonrpc": "2.0", "id": 1, "method": method, "params": params}).
			SetResult(&res).
			SetError(&res).
			Post(url)
		require.NoError(t, err)
		return &res
	}
}

func unmarshalResult[T any](t *testing.T, res *rpcResult) T {
	require.Nil(t, res.Error, "%+v", res.Error)
	var v T
	require.NoError(t, json.Unmarshal(res.Result, &v))
	return v
}

func TestMintThenSyncEndToEnd(t *testing.T) {
	kp, err := secp256k1.GenerateSecp256k1KeyPair()
	require.NoError(t, err)
	n, call := newTestNode(t, newTestConfig(t, kp))

	status := unmarshalResult[goldapi.SessionStatus](t, call("gold_connect"))
	assert.Equal(t, goldapi.StateReady, status.State)
	assert.Equal(t, kp.Address.String(), status.Account.String())
	assert.Equal(t, 0, status.CertificateCount)

	tx := unmarshalResult[goldapi.TxHandle](t, call("gold_mintDemo"))
	assert.Equal(t, kp.Address.String(), tx.From.String())

	tx = unmarshalResult[goldapi.TxHandle](t, call("gold_mint", map[string]any{
		"weight":        500,
		"purity":        9999,
		"mineOrigin":    "Witwatersrand, South Africa",
		"refinery":      "Rand Refinery",
		"vaultLocation": "Zurich Vault A1",
	}))
	assert.NotEmpty(t, tx.Hash)

	overview := unmarshalResult[goldapi.Overview](t, call("gold_overview"))
	assert.Equal(t, "0.750", overview.TotalWeightKgDisplay)
	assert.Equal(t, 2, overview.CertificateCount)

	views := unmarshalResult[[]*goldapi.CertificateView](t, call("gold_listCertificates"))
	require.Len(t, views, 2)
	assert.Equal(t, uint64(0), views[0].ID)
	assert.Equal(t, "0.250", views[0].WeightKg)
	assert.Equal(t, "99.90", views[0].PurityPercent)
	assert.Equal(t, "Pueblo Viejo, Dominican Republic", views[0].MineOrigin)
	assert.Equal(t, "Global Refinery, UK", views[0].Refinery)
	assert.Equal(t, "London Vault C3", views[0].VaultLocation)
	assert.Equal(t, "Zurich Vault A1", views[1].VaultLocation)

	p := unmarshalResult[goldapi.Provenance](t, call("gold_provenance", 1))
	require.Len(t, p.Steps, 3)
	assert.Equal(t, "Minted: 500g gold bar from Witwatersrand, South Africa", p.Steps[0].Description)
	assert.Equal(t, "Refined: Rand Refinery - 99.99% purity", p.Steps[1].Description)

	owner := unmarshalResult[ethtypes.Address0xHex](t, call("gold_certificateOwner", 0))
	assert.Equal(t, kp.Address.String(), owner.String())

	res, err := resty.New().R().Get(fmt.Sprintf("http://%s/metrics", n.MetricsServer().Addr()))
	require.NoError(t, err)
	assert.Contains(t, res.String(), `goldcert_writes_total{operation="mint",outcome="success"} 2`)
	assert.Contains(t, res.String(), `goldcert_certificates 2`)
}

func TestRevertedMintKeepsSnapshot(t *testing.T) {
	kp, err := secp256k1.GenerateSecp256k1KeyPair()
	require.NoError(t, err)
	_, call := newTestNode(t, newTestConfig(t, kp))

	unmarshalResult[goldapi.SessionStatus](t, call("gold_connect"))
	unmarshalResult[goldapi.TxHandle](t, call("gold_mintDemo"))

	res := call("gold_mint", map[string]any{
		"weight":        100,
		"purity":        10001,
		"mineOrigin":    "Nowhere",
		"refinery":      "Nobody",
		"vaultLocation": "Nothing",
	})
	require.NotNil(t, res.Error)
	assert.Regexp(t, "GP010403.*Invalid purity", res.Error.Message)

	status := unmarshalResult[goldapi.SessionStatus](t, call("gold_status"))
	assert.Equal(t, goldapi.StateReady, status.State)
	assert.Equal(t, 1, status.CertificateCount)
	assert.Equal(t, goldapi.ErrTransactionReverted, status.LastError.Kind)
}

func TestTransferEndToEnd(t *testing.T) {
	kp, err := secp256k1.GenerateSecp256k1KeyPair()
	require.NoError(t, err)
	other, err := secp256k1.GenerateSecp256k1KeyPair()
	require.NoError(t, err)
	_, call := newTestNode(t, newTestConfig(t, kp))

	unmarshalResult[goldapi.SessionStatus](t, call("gold_connect"))
	unmarshalResult[goldapi.TxHandle](t, call("gold_mintDemo"))
	unmarshalResult[goldapi.TxHandle](t, call("gold_transfer", 0, other.Address.String()))

	views := unmarshalResult[[]*goldapi.CertificateView](t, call("gold_listCertificates"))
	require.Len(t, views, 1)
	assert.Equal(t, other.Address.String(), views[0].Owner)

	// no longer the owner
	res := call("gold_transfer", 0, kp.Address.String())
	require.NotNil(t, res.Error)
	assert.Regexp(t, "Not the certificate owner", res.Error.Message)
}

func TestNoWalletConfigured(t *testing.T) {
	conf := newTestConfig(t)
	conf.Wallet.Type = confutil.P(goldconf.WalletTypeNone)
	_, call := newTestNode(t, conf)

	res := call("gold_connect")
	require.NotNil(t, res.Error)
	assert.Regexp(t, "GP010300", res.Error.Message)

	status := unmarshalResult[goldapi.SessionStatus](t, call("gold_status"))
	assert.Equal(t, goldapi.StateDisconnected, status.State)
	assert.Equal(t, goldapi.ErrNoWalletProvider, status.LastError.Kind)
}

func TestStartFailures(t *testing.T) {
	conf := newTestConfig(t)
	conf.Simulator.Enabled = confutil.P(false)
	n := NewNode(context.Background(), conf)
	err := n.Start()
	assert.Regexp(t, "GP010900.*ethClient.*GP010006", err)
	n.Stop()

	conf = newTestConfig(t)
	conf.Wallet.Type = confutil.P("unknown")
	n = NewNode(context.Background(), conf)
	err = n.Start()
	assert.Regexp(t, "GP010900.*wallet.*GP010308", err)
	n.Stop()

	conf = newTestConfig(t)
	conf.RPCServer.HTTP.Address = confutil.P("::::::wrong")
	n = NewNode(context.Background(), conf)
	err = n.Start()
	assert.Regexp(t, "GP010900.*rpcServer", err)
	n.Stop()
}
