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
	"math/big"
	"strings"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/rashidtv/gold-platform-demo/internal/log"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
	"github.com/rashidtv/gold-platform-demo/pkg/confutil"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
	"golang.org/x/crypto/sha3"
)

// EthClient is the JSON/RPC client to the EVM ledger hosting the contract
type EthClient interface {
	Close()
	ChainID() int64
	ABIJSON(ctx context.Context, abiJSON []byte) (ABIClient, error)
	MustABIJSON(abiJSON []byte) ABIClient

	GasPrice(ctx context.Context) (*ethtypes.HexInteger, error)
	GasEstimate(ctx context.Context, tx *ethsigner.Transaction) (*ethtypes.HexInteger, error)
	GetTransactionCount(ctx context.Context, addr ethtypes.Address0xHex) (*ethtypes.HexUint64, error)
	// GetTransactionReceipt returns nil without error while the transaction is pending
	GetTransactionReceipt(ctx context.Context, txHash ethtypes.HexBytes0xPrefix) (*TransactionReceipt, error)
	CallContract(ctx context.Context, tx *ethsigner.Transaction, block string) (ethtypes.HexBytes0xPrefix, error)
	BuildRawTransaction(ctx context.Context, txVersion EthTXVersion, signer Signer, tx *ethsigner.Transaction) (ethtypes.HexBytes0xPrefix, error)
	SendRawTransaction(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) (ethtypes.HexBytes0xPrefix, error)
}

// Signer is the signing capability for one account, supplied by the wallet
type Signer interface {
	Address() ethtypes.Address0xHex
	SignHash(ctx context.Context, hash []byte) (*secp256k1.SignatureData, error)
}

type ethClient struct {
	chainID           int64
	gasEstimateFactor float64
	rpc               rpcbackend.RPC
}

// NewEthClient connects over WebSockets when a WS URL is configured, and
// otherwise over HTTP
func NewEthClient(ctx context.Context, conf *goldconf.LedgerConfig) (EthClient, error) {
	var rpc rpcbackend.RPC
	switch {
	case conf.WS.URL != "":
		wsConf, err := ParseWSConfig(ctx, &conf.WS)
		if err != nil {
			return nil, err
		}
		wsRPC := rpcbackend.NewWSRPCClient(wsConf)
		if err := wsRPC.Connect(ctx); err != nil {
			return nil, i18n.WrapError(ctx, err, msgs.MsgEthClientWSConnectFailed)
		}
		rpc = wsRPC
	case conf.HTTP.URL != "":
		httpClient, err := ParseHTTPConfig(ctx, &conf.HTTP)
		if err != nil {
			return nil, err
		}
		rpc = rpcbackend.NewRPCClient(httpClient)
	default:
		return nil, i18n.NewError(ctx, msgs.MsgConfigMissingLedgerEndpoint)
	}
	ec, err := WrapRPCClient(ctx, rpc, conf)
	if err != nil {
		if wsRPC, isWS := rpc.(rpcbackend.WebSocketRPCClient); isWS {
			wsRPC.Close()
		}
		return nil, err
	}
	return ec, nil
}

func WrapRPCClient(ctx context.Context, rpc rpcbackend.RPC, conf *goldconf.LedgerConfig) (EthClient, error) {
	ec := &ethClient{
		rpc:               rpc,
		gasEstimateFactor: confutil.Float64Min(conf.GasEstimateFactor, 1.0, *goldconf.LedgerDefaults.GasEstimateFactor),
	}
	if err := ec.setupChainID(ctx); err != nil {
		return nil, err
	}
	return ec, nil
}

func ParseTXVersion(ctx context.Context, s *string) (EthTXVersion, error) {
	v := EthTXVersion(strings.ToLower(confutil.StringNotEmpty(s, *goldconf.LedgerDefaults.TXVersion)))
	switch v {
	case EIP1559, LEGACY_EIP155:
		return v, nil
	default:
		return "", i18n.NewError(ctx, msgs.MsgConfigInvalidTXVersion, v, strings.Join(txVersions, ","))
	}
}

func (ec *ethClient) Close() {
	if wsRPC, isWS := ec.rpc.(rpcbackend.WebSocketRPCClient); isWS {
		wsRPC.Close()
	}
}

func (ec *ethClient) ChainID() int64 {
	return ec.chainID
}

func (ec *ethClient) setupChainID(ctx context.Context) error {
	var chainID ethtypes.HexUint64
	if rpcErr := ec.rpc.CallRPC(ctx, &chainID, "eth_chainId"); rpcErr != nil {
		log.L(ctx).Errorf("eth_chainId failed: %+v", rpcErr)
		return i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgEthClientChainIDFailed)
	}
	ec.chainID = int64(chainID.Uint64())
	return nil
}

func (ec *ethClient) CallContract(ctx context.Context, tx *ethsigner.Transaction, block string) (data ethtypes.HexBytes0xPrefix, err error) {
	if rpcErr := ec.rpc.CallRPC(ctx, &data, "eth_call", tx, block); rpcErr != nil {
		log.L(ctx).Debugf("eth_call failed: %+v", rpcErr)
		return nil, rpcErr.Error()
	}
	return data, nil
}

func (ec *ethClient) GasPrice(ctx context.Context) (*ethtypes.HexInteger, error) {
	var gasPrice ethtypes.HexInteger
	if rpcErr := ec.rpc.CallRPC(ctx, &gasPrice, "eth_gasPrice"); rpcErr != nil {
		log.L(ctx).Errorf("eth_gasPrice failed: %+v", rpcErr)
		return nil, rpcErr.Error()
	}
	return &gasPrice, nil
}

func (ec *ethClient) GasEstimate(ctx context.Context, tx *ethsigner.Transaction) (*ethtypes.HexInteger, error) {
	var gasEstimate ethtypes.HexInteger
	if rpcErr := ec.rpc.CallRPC(ctx, &gasEstimate, "eth_estimateGas", tx); rpcErr != nil {
		log.L(ctx).Errorf("eth_estimateGas failed: %+v", rpcErr)
		return nil, i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgEthClientGasEstimateFailed, rpcErr.Message)
	}
	return &gasEstimate, nil
}

func (ec *ethClient) GetTransactionCount(ctx context.Context, addr ethtypes.Address0xHex) (*ethtypes.HexUint64, error) {
	var transactionCount ethtypes.HexUint64
	if rpcErr := ec.rpc.CallRPC(ctx, &transactionCount, "eth_getTransactionCount", addr, PENDING); rpcErr != nil {
		log.L(ctx).Errorf("eth_getTransactionCount(%s) failed: %+v", addr, rpcErr)
		return nil, i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgEthClientNonceFailed, addr, rpcErr.Message)
	}
	return &transactionCount, nil
}

func (ec *ethClient) GetTransactionReceipt(ctx context.Context, txHash ethtypes.HexBytes0xPrefix) (*TransactionReceipt, error) {
	var receipt *TransactionReceipt
	if rpcErr := ec.rpc.CallRPC(ctx, &receipt, "eth_getTransactionReceipt", txHash); rpcErr != nil {
		return nil, rpcErr.Error()
	}
	return receipt, nil
}

func (ec *ethClient) BuildRawTransaction(ctx context.Context, txVersion EthTXVersion, signer Signer, tx *ethsigner.Transaction) (ethtypes.HexBytes0xPrefix, error) {
	fromAddr := signer.Address()
	tx.From = json.RawMessage(`"` + fromAddr.String() + `"`)

	// Nonce management is left to the node, using the pending count for
	// each transaction
	if tx.Nonce == nil {
		txNonce, err := ec.GetTransactionCount(ctx, fromAddr)
		if err != nil {
			return nil, err
		}
		tx.Nonce = ethtypes.NewHexInteger(new(big.Int).SetUint64(txNonce.Uint64()))
	}

	if tx.GasLimit == nil {
		gasEstimate, err := ec.GasEstimate(ctx, tx)
		if err != nil {
			return nil, err
		}
		gasLimitFactored := new(big.Float).SetInt(gasEstimate.BigInt())
		gasLimitFactored = gasLimitFactored.Mul(gasLimitFactored, big.NewFloat(ec.gasEstimateFactor))
		gasLimit, _ := gasLimitFactored.Int(nil)
		tx.GasLimit = ethtypes.NewHexInteger(gasLimit)
	}

	if tx.GasPrice == nil && tx.MaxFeePerGas == nil {
		gasPrice, err := ec.GasPrice(ctx)
		if err != nil {
			return nil, err
		}
		if txVersion == EIP1559 {
			tx.MaxFeePerGas = gasPrice
			tx.MaxPriorityFeePerGas = gasPrice
		} else {
			tx.GasPrice = gasPrice
		}
	}

	var sigPayload *ethsigner.TransactionSignaturePayload
	switch txVersion {
	case EIP1559:
		sigPayload = tx.SignaturePayloadEIP1559(ec.chainID)
	case LEGACY_EIP155:
		sigPayload = tx.SignaturePayloadLegacyEIP155(ec.chainID)
	default:
		return nil, i18n.NewError(ctx, msgs.MsgEthClientInvalidTXVersion, strings.Join(txVersions, ","))
	}
	hash := sha3.NewLegacyKeccak256()
	_, _ = hash.Write(sigPayload.Bytes())
	sig, err := signer.SignHash(ctx, hash.Sum(nil))
	if err != nil {
		// the wallet has already classified the error
		return nil, err
	}

	var rawTX []byte
	switch txVersion {
	case EIP1559:
		rawTX, err = tx.FinalizeEIP1559WithSignature(sigPayload, sig)
	case LEGACY_EIP155:
		rawTX, err = tx.FinalizeLegacyEIP155WithSignature(sigPayload, sig, ec.chainID)
	}
	if err != nil {
		log.L(ctx).Errorf("signing failed for %s: %s", fromAddr, err)
		return nil, i18n.WrapError(ctx, err, msgs.MsgEthClientSignatureFailed, fromAddr)
	}
	return rawTX, nil
}

func (ec *ethClient) SendRawTransaction(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) (ethtypes.HexBytes0xPrefix, error) {
	var txHash ethtypes.HexBytes0xPrefix
	if rpcErr := ec.rpc.CallRPC(ctx, &txHash, "eth_sendRawTransaction", rawTX); rpcErr != nil {
		addr, decodedTX, err := ethsigner.RecoverRawTransaction(ctx, rawTX, ec.chainID)
		if err != nil {
			log.L(ctx).Errorf("Invalid transaction build during signing: %s", err)
		} else {
			log.L(ctx).Errorf("Rejected TX (from=%s): %s", addr, logJSON(decodedTX.Transaction))
		}
		return nil, i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgEthClientSendFailed, rpcErr.Message)
	}
	return txHash, nil
}

func logJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// StandardABISerializer formats integers as base 10 strings, so values of
// any size survive JSON parsing
func StandardABISerializer() *abi.Serializer {
	return abi.NewSerializer().
		SetFormattingMode(abi.FormatAsObjects).
		SetIntSerializer(abi.Base10StringIntSerializer).
		SetFloatSerializer(abi.Base10StringFloatSerializer).
		SetByteSerializer(abi.HexByteSerializer0xPrefix)
}

// PositionalABISerializer is StandardABISerializer with values in
// declaration order
func PositionalABISerializer() *abi.Serializer {
	return StandardABISerializer().SetFormattingMode(abi.FormatAsFlatArrays)
}
