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
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/rashidtv/gold-platform-demo/internal/rpcserver"
	"github.com/rashidtv/gold-platform-demo/pkg/confutil"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEth struct {
	eth_chainId               func(context.Context) (ethtypes.HexUint64, error)
	eth_gasPrice              func(context.Context) (ethtypes.HexInteger, error)
	eth_getTransactionCount   func(context.Context, ethtypes.Address0xHex, string) (ethtypes.HexUint64, error)
	eth_estimateGas           func(context.Context, ethsigner.Transaction) (ethtypes.HexInteger, error)
	eth_sendRawTransaction    func(context.Context, ethtypes.HexBytes0xPrefix) (ethtypes.HexBytes0xPrefix, error)
	eth_call                  func(context.Context, ethsigner.Transaction, string) (ethtypes.HexBytes0xPrefix, error)
	eth_getTransactionReceipt func(context.Context, ethtypes.HexBytes0xPrefix) (*TransactionReceipt, error)
}

type testSigner struct {
	kp *secp256k1.KeyPair
}

func (ts *testSigner) Address() ethtypes.Address0xHex {
	return ts.kp.Address
}

func (ts *testSigner) SignHash(ctx context.Context, hash []byte) (*secp256k1.SignatureData, error) {
	return ts.kp.SignDirect(hash)
}

func newTestSigner(t *testing.T) *testSigner {
	kp, err := secp256k1.GenerateSecp256k1KeyPair()
	require.NoError(t, err)
	return &testSigner{kp: kp}
}

func newTestServer(t *testing.T, isWS bool, mEth *mockEth) (conf *goldconf.LedgerConfig, done func()) {
	ctx := context.Background()
	if mEth.eth_chainId == nil {
		mEth.eth_chainId = func(ctx context.Context) (ethtypes.HexUint64, error) {
			return 1337, nil
		}
	}

	rpcServerConf := &goldconf.RPCServerConfig{}
	if isWS {
		rpcServerConf.HTTP.Disabled = true
		rpcServerConf.WS.Port = confutil.P(0)
	} else {
		rpcServerConf.WS.Disabled = true
		rpcServerConf.HTTP.Port = confutil.P(0)
	}
	rpcServer, err := rpcserver.NewServer(ctx, rpcServerConf)
	require.NoError(t, err)

	module := rpcserver.NewRPCModule("eth").
		Add("eth_chainId", rpcserver.RPCMethod0(mEth.eth_chainId))
	if mEth.eth_gasPrice != nil {
		module.Add("eth_gasPrice", rpcserver.RPCMethod0(mEth.eth_gasPrice))
	}
	if mEth.eth_getTransactionCount != nil {
		module.Add("eth_getTransactionCount", rpcserver.RPCMethod2(mEth.eth_getTransactionCount))
	}
	if mEth.eth_estimateGas != nil {
		module.Add("eth_estimateGas", rpcserver.RPCMethod1(mEth.eth_estimateGas))
	}
	if mEth.eth_sendRawTransaction != nil {
		module.Add("eth_sendRawTransaction", rpcserver.RPCMethod1(mEth.eth_sendRawTransaction))
	}
	if mEth.eth_call != nil {
		module.Add("eth_call", rpcserver.RPCMethod2(mEth.eth_call))
	}
	if mEth.eth_getTransactionReceipt != nil {
		module.Add("eth_getTransactionReceipt", rpcserver.RPCMethod1(mEth.eth_getTransactionReceipt))
	}
	rpcServer.Register(module)
	require.NoError(t, rpcServer.Start())

	conf = &goldconf.LedgerConfig{}
	if isWS {
		conf.WS.URL = fmt.Sprintf("ws://%s", rpcServer.WSAddr())
	} else {
		conf.HTTP.URL = fmt.Sprintf("http://%s", rpcServer.HTTPAddr())
	}
	return conf, rpcServer.Stop
}

func newTestClientAndServer(t *testing.T, isWS bool, mEth *mockEth) (context.Context, *ethClient, func()) {
	ctx := context.Background()
	conf, done := newTestServer(t, isWS, mEth)
	ec, err := NewEthClient(ctx, conf)
	require.NoError(t, err)
	return ctx, ec.(*ethClient), func() {
		ec.Close()
		done()
	}
}

func TestNewEthClientHTTPAndWS(t *testing.T) {
	for _, isWS := range []bool{false, true} {
		_, ec, done := newTestClientAndServer(t, isWS, &mockEth{})
		assert.Equal(t, int64(1337), ec.ChainID())
		done()
	}
}

func TestNewEthClientNoEndpoint(t *testing.T) {
	_, err := NewEthClient(context.Background(), &goldconf.LedgerConfig{})
	assert.Regexp(t, "GP010006", err)
}

func TestNewEthClientBadURLs(t *testing.T) {
	ctx := context.Background()
	_, err := NewEthClient(ctx, &goldconf.LedgerConfig{
		HTTP: goldconf.HTTPClientConfig{URL: "ws://wrong.scheme"},
	})
	assert.Regexp(t, "GP010201", err)

	_, err = NewEthClient(ctx, &goldconf.LedgerConfig{
		WS: goldconf.WSClientConfig{HTTPClientConfig: goldconf.HTTPClientConfig{URL: "http://wrong.scheme"}},
	})
	assert.Regexp(t, "GP010202", err)
}

func TestNewEthClientBadTLS(t *testing.T) {
	ctx := context.Background()
	_, err := NewEthClient(ctx, &goldconf.LedgerConfig{
		HTTP: goldconf.HTTPClientConfig{
			URL: "https://localhost:8545",
			TLS: goldconf.TLSConfig{CA: "not a cert"},
		},
	})
	assert.Regexp(t, "GP010103", err)
}

func TestChainIDFail(t *testing.T) {
	conf, done := newTestServer(t, false, &mockEth{
		eth_chainId: func(ctx context.Context) (ethtypes.HexUint64, error) {
			return 0, fmt.Errorf("pop")
		},
	})
	defer done()
	_, err := NewEthClient(context.Background(), conf)
	assert.Regexp(t, "GP010200.*pop", err)
}

func TestBuildAndSendRawTransaction(t *testing.T) {
	signer := newTestSigner(t)
	var sentHash ethtypes.HexBytes0xPrefix
	ctx, ec, done := newTestClientAndServer(t, false, &mockEth{
		eth_gasPrice: func(ctx context.Context) (ethtypes.HexInteger, error) {
			return *ethtypes.NewHexInteger64(7), nil
		},
		eth_getTransactionCount: func(ctx context.Context, addr ethtypes.Address0xHex, block string) (ethtypes.HexUint64, error) {
			assert.Equal(t, signer.Address(), addr)
			assert.Equal(t, "pending", block)
			return 3, nil
		},
		eth_estimateGas: func(ctx context.Context, tx ethsigner.Transaction) (ethtypes.HexInteger, error) {
			return *ethtypes.NewHexInteger64(20000), nil
		},
		eth_sendRawTransaction: func(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) (ethtypes.HexBytes0xPrefix, error) {
			addr, decoded, err := ethsigner.RecoverRawTransaction(ctx, rawTX, 1337)
			require.NoError(t, err)
			assert.Equal(t, signer.Address(), *addr)
			assert.Equal(t, int64(3), decoded.Transaction.Nonce.BigInt().Int64())
			assert.Equal(t, int64(30000), decoded.Transaction.GasLimit.BigInt().Int64())
			assert.Equal(t, int64(7), decoded.Transaction.MaxFeePerGas.BigInt().Int64())
			sentHash = ethtypes.MustNewHexBytes0xPrefix("0x" + strings.Repeat("ab", 32))
			return sentHash, nil
		},
	})
	defer done()
	ec.gasEstimateFactor = 1.5

	to := ethtypes.MustNewAddress("0x1f9090aae28b8a3dceadf281b0f12828e676c326")
	rawTX, err := ec.BuildRawTransaction(ctx, EIP1559, signer, &ethsigner.Transaction{
		To:   to,
		Data: ethtypes.MustNewHexBytes0xPrefix("0xfeedbeef"),
	})
	require.NoError(t, err)
	txHash, err := ec.SendRawTransaction(ctx, rawTX)
	require.NoError(t, err)
	assert.Equal(t, sentHash, txHash)
}

func TestBuildRawTransactionLegacy(t *testing.T) {
	signer := newTestSigner(t)
	ctx, ec, done := newTestClientAndServer(t, true, &mockEth{})
	defer done()

	rawTX, err := ec.BuildRawTransaction(ctx, LEGACY_EIP155, signer, &ethsigner.Transaction{
		Nonce:    ethtypes.NewHexInteger64(1),
		GasLimit: ethtypes.NewHexInteger64(100000),
		GasPrice: ethtypes.NewHexInteger64(0),
		To:       ethtypes.MustNewAddress("0x1f9090aae28b8a3dceadf281b0f12828e676c326"),
	})
	require.NoError(t, err)
	addr, _, err := ethsigner.RecoverRawTransaction(ctx, rawTX, 1337)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), *addr)
}

func TestBuildRawTransactionBadVersion(t *testing.T) {
	ctx, ec, done := newTestClientAndServer(t, false, &mockEth{})
	defer done()

	_, err := ec.BuildRawTransaction(ctx, "wrong", newTestSigner(t), &ethsigner.Transaction{
		Nonce:    ethtypes.NewHexInteger64(1),
		GasLimit: ethtypes.NewHexInteger64(100000),
		GasPrice: ethtypes.NewHexInteger64(0),
	})
	assert.Regexp(t, "GP010210", err)
}

func TestBuildRawTransactionErrors(t *testing.T) {
	ctx, ec, done := newTestClientAndServer(t, false, &mockEth{
		eth_getTransactionCount: func(ctx context.Context, addr ethtypes.Address0xHex, block string) (ethtypes.HexUint64, error) {
			return 0, nil
		},
		eth_estimateGas: func(ctx context.Context, tx ethsigner.Transaction) (ethtypes.HexInteger, error) {
			return ethtypes.HexInteger{}, fmt.Errorf("execution reverted: weight must be positive")
		},
	})
	defer done()

	_, err := ec.BuildRawTransaction(ctx, EIP1559, newTestSigner(t), &ethsigner.Transaction{})
	assert.Regexp(t, "GP010218.*weight must be positive", err)
	assert.Equal(t, ErrorReasonTransactionReverted, MapError(err))
	assert.True(t, MapSubmissionRejected(err))
}

func TestSendRawTransactionFail(t *testing.T) {
	signer := newTestSigner(t)
	ctx, ec, done := newTestClientAndServer(t, false, &mockEth{
		eth_sendRawTransaction: func(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) (ethtypes.HexBytes0xPrefix, error) {
			return nil, fmt.Errorf("nonce too low")
		},
	})
	defer done()

	rawTX, err := ec.BuildRawTransaction(ctx, EIP1559, signer, &ethsigner.Transaction{
		Nonce:        ethtypes.NewHexInteger64(0),
		GasLimit:     ethtypes.NewHexInteger64(100000),
		MaxFeePerGas: ethtypes.NewHexInteger64(0),
	})
	require.NoError(t, err)
	_, err = ec.SendRawTransaction(ctx, rawTX)
	assert.Regexp(t, "GP010214", err)
	assert.Equal(t, ErrorReasonNonceTooLow, MapError(err))

	// Garbage is still reported, with the recover failure only logged
	_, err = ec.SendRawTransaction(ctx, ethtypes.MustNewHexBytes0xPrefix("0x00"))
	assert.Regexp(t, "GP010214", err)
}

func TestGetTransactionReceipt(t *testing.T) {
	mined := ethtypes.MustNewHexBytes0xPrefix("0x01")
	ctx, ec, done := newTestClientAndServer(t, false, &mockEth{
		eth_getTransactionReceipt: func(ctx context.Context, txHash ethtypes.HexBytes0xPrefix) (*TransactionReceipt, error) {
			if txHash.String() == mined.String() {
				return &TransactionReceipt{TransactionHash: mined, BlockNumber: 12, Status: 1}, nil
			}
			return nil, nil
		},
	})
	defer done()

	receipt, err := ec.GetTransactionReceipt(ctx, ethtypes.MustNewHexBytes0xPrefix("0x02"))
	require.NoError(t, err)
	assert.Nil(t, receipt)

	receipt, err = ec.GetTransactionReceipt(ctx, mined)
	require.NoError(t, err)
	assert.True(t, receipt.Success())
	assert.Equal(t, uint64(12), receipt.BlockNumber.Uint64())
}

func TestParseTXVersion(t *testing.T) {
	ctx := context.Background()
	v, err := ParseTXVersion(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, EIP1559, v)

	v, err = ParseTXVersion(ctx, confutil.P("LEGACY_EIP155"))
	require.NoError(t, err)
	assert.Equal(t, LEGACY_EIP155, v)

	_, err = ParseTXVersion(ctx, confutil.P("frontier"))
	assert.Regexp(t, "GP010005", err)
}

func TestMapError(t *testing.T) {
	assert.Equal(t, ErrorReason(""), MapError(nil))
	assert.Equal(t, ErrorReasonInsufficientFunds, MapError(fmt.Errorf("Insufficient funds for gas")))
	assert.Equal(t, ErrorReasonTransactionUnderpriced, MapError(fmt.Errorf("transaction underpriced")))
	assert.Equal(t, ErrorKnownTransaction, MapError(fmt.Errorf("already known")))
	assert.Equal(t, ErrorReasonNotFound, MapError(fmt.Errorf("block not found")))
	assert.Equal(t, ErrorReason(""), MapError(fmt.Errorf("connection refused")))
	assert.False(t, MapSubmissionRejected(fmt.Errorf("connection refused")))
}

func TestRevertReason(t *testing.T) {
	ctx := context.Background()
	data, err := EncodeRevertReason(ctx, "Invalid certificate ID")
	require.NoError(t, err)
	assert.Equal(t, "Invalid certificate ID", DecodeRevertReason(ctx, data))
	assert.Equal(t, "0xfeedbeef", DecodeRevertReason(ctx, []byte{0xfe, 0xed, 0xbe, 0xef}))
}

func TestLogJSON(t *testing.T) {
	b, _ := json.Marshal(map[string]string{"a": "b"})
	assert.Equal(t, string(b), logJSON(map[string]string{"a": "b"}))
}
