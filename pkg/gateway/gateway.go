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

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"time"

	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/rashidtv/gold-platform-demo/internal/log"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
	"github.com/rashidtv/gold-platform-demo/internal/retry"
	"github.com/rashidtv/gold-platform-demo/pkg/confutil"
	"github.com/rashidtv/gold-platform-demo/pkg/ethclient"
	"github.com/rashidtv/gold-platform-demo/pkg/goldapi"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
)

// Wallet provides the accounts and signing capability for writes
type Wallet interface {
	RequestAccounts(ctx context.Context) ([]ethtypes.Address0xHex, error)
	SigningCapability(ctx context.Context, account ethtypes.Address0xHex) (ethclient.Signer, error)
}

// Connection is the account chosen on connect, with the capability to sign
// writes as that account
type Connection struct {
	Account    ethtypes.Address0xHex
	Capability ethclient.Signer
}

// RecordReader is the read side of the gateway used by synchronization
type RecordReader interface {
	GetTotalCount(ctx context.Context) (uint64, error)
	GetRecord(ctx context.Context, id uint64) (*goldapi.RawRecord, error)
}

type Gateway interface {
	RecordReader
	Connect(ctx context.Context) (*Connection, error)
	SubmitMint(ctx context.Context, conn *Connection, req *goldapi.MintRequest) (*goldapi.TxHandle, error)
	TransferCertificate(ctx context.Context, conn *Connection, id uint64, to ethtypes.Address0xHex) (*goldapi.TxHandle, error)
	CertificateOwner(ctx context.Context, id uint64) (*ethtypes.Address0xHex, error)
	AwaitConfirmation(ctx context.Context, tx *goldapi.TxHandle) (*goldapi.Receipt, error)
}

type gateway struct {
	ethClient      ethclient.EthClient
	wallet         Wallet
	contract       *ethtypes.Address0xHex
	txVersion      ethclient.EthTXVersion
	confirmTimeout time.Duration
	confirmPoll    *retry.Retry

	getTotalGoldBars    ethclient.ABIFunctionClient
	getGoldBarDetails   ethclient.ABIFunctionClient
	mintGoldCertificate ethclient.ABIFunctionClient
	transferCertificate ethclient.ABIFunctionClient
	certificateOwners   ethclient.ABIFunctionClient
}

// NewGateway binds the contract ABI to the ledger client. A nil wallet is
// valid, and fails every Connect with NoWalletProvider.
func NewGateway(ctx context.Context, ledgerConf *goldconf.LedgerConfig, confirmConf *goldconf.ConfirmationConfig, ec ethclient.EthClient, wallet Wallet) (Gateway, error) {
	contractStr := confutil.StringNotEmpty(ledgerConf.ContractAddress, *goldconf.LedgerDefaults.ContractAddress)
	contract, err := ethtypes.NewAddress(contractStr)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgConfigInvalidContract, contractStr)
	}
	txVersion, err := ethclient.ParseTXVersion(ctx, ledgerConf.TXVersion)
	if err != nil {
		return nil, err
	}
	abic, err := ec.ABIJSON(ctx, []byte(goldapi.GoldPlatformABI))
	if err != nil {
		return nil, err
	}
	g := &gateway{
		ethClient:      ec,
		wallet:         wallet,
		contract:       contract,
		txVersion:      txVersion,
		confirmTimeout: confutil.DurationMin(confirmConf.Timeout, 0, *goldconf.ConfirmationDefaults.Timeout),
		confirmPoll:    retry.NewRetryIndefinite(&confirmConf.Poll, &goldconf.ConfirmationDefaults.Poll),

		getTotalGoldBars:    abic.MustFunction("getTotalGoldBars"),
		getGoldBarDetails:   abic.MustFunction("getGoldBarDetails"),
		mintGoldCertificate: abic.MustFunction("mintGoldCertificate"),
		transferCertificate: abic.MustFunction("transferCertificate"),
		certificateOwners:   abic.MustFunction("certificateOwners"),
	}
	log.L(ctx).Infof("Gateway bound to contract %s (txVersion=%s)", g.contract, g.txVersion)
	return g, nil
}

// Connect requests the accounts from the wallet and takes the first one
func (g *gateway) Connect(ctx context.Context) (*Connection, error) {
	if g.wallet == nil {
		return nil, goldapi.NewError(ctx, goldapi.ErrNoWalletProvider, msgs.MsgWalletNoProvider)
	}
	accounts, err := g.wallet.RequestAccounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, goldapi.NewError(ctx, goldapi.ErrNoWalletProvider, msgs.MsgWalletNoAccounts)
	}
	account := accounts[0]
	capability, err := g.wallet.SigningCapability(ctx, account)
	if err != nil {
		return nil, err
	}
	log.L(ctx).Infof("Connected account %s", account)
	return &Connection{Account: account, Capability: capability}, nil
}

// callPositional makes a view call, returning the outputs as a positional
// array with integers as base 10 strings
func (g *gateway) callPositional(ctx context.Context, fn ethclient.ABIFunctionClient, input []any) ([]any, error) {
	jsonData, err := fn.R(ctx).
		To(g.contract).
		Input(input).
		Serializer(ethclient.PositionalABISerializer()).
		CallJSON()
	if err != nil {
		return nil, err
	}
	var values []any
	decoder := json.NewDecoder(bytes.NewReader(jsonData))
	decoder.UseNumber()
	if err := decoder.Decode(&values); err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgEthClientOutputDecode, fn.Signature())
	}
	return values, nil
}

func (g *gateway) GetTotalCount(ctx context.Context) (uint64, error) {
	values, err := g.callPositional(ctx, g.getTotalGoldBars, []any{})
	if err != nil {
		return 0, goldapi.WrapError(ctx, goldapi.ErrGatewayUnavailable, err, msgs.MsgGatewayUnavailable, g.getTotalGoldBars.Signature())
	}
	total, ok := parseUint64(values)
	if !ok {
		return 0, goldapi.NewError(ctx, goldapi.ErrGatewayUnavailable, msgs.MsgGatewayUnavailable, g.getTotalGoldBars.Signature())
	}
	return total, nil
}

func parseUint64(values []any) (uint64, bool) {
	if len(values) != 1 {
		return 0, false
	}
	s, ok := values[0].(string)
	if !ok {
		return 0, false
	}
	i, ok := new(big.Int).SetString(s, 10)
	if !ok || !i.IsUint64() {
		return 0, false
	}
	return i.Uint64(), true
}

// GetRecord returns the fields of one record without interpreting their
// types. A revert is how the contract reports an id out of range.
func (g *gateway) GetRecord(ctx context.Context, id uint64) (*goldapi.RawRecord, error) {
	values, err := g.callPositional(ctx, g.getGoldBarDetails, []any{new(big.Int).SetUint64(id).String()})
	if err != nil {
		if ethclient.MapError(err) == ethclient.ErrorReasonTransactionReverted {
			return nil, goldapi.WrapError(ctx, goldapi.ErrRecordNotFound, err, msgs.MsgGatewayRecordNotFound, id).WithID(id)
		}
		return nil, goldapi.WrapError(ctx, goldapi.ErrGatewayUnavailable, err, msgs.MsgGatewayUnavailable, g.getGoldBarDetails.Signature()).WithID(id)
	}
	if len(values) != goldapi.RecordFieldCount {
		return nil, goldapi.NewError(ctx, goldapi.ErrGatewayUnavailable, msgs.MsgGatewayRecordShape, id, len(values), goldapi.RecordFieldCount).WithID(id)
	}
	return &goldapi.RawRecord{ID: id, Fields: values}, nil
}

func (g *gateway) CertificateOwner(ctx context.Context, id uint64) (*ethtypes.Address0xHex, error) {
	values, err := g.callPositional(ctx, g.certificateOwners, []any{new(big.Int).SetUint64(id).String()})
	if err != nil {
		return nil, goldapi.WrapError(ctx, goldapi.ErrGatewayUnavailable, err, msgs.MsgGatewayUnavailable, g.certificateOwners.Signature()).WithID(id)
	}
	var addrStr string
	if len(values) == 1 {
		addrStr, _ = values[0].(string)
	}
	owner, err := ethtypes.NewAddress(addrStr)
	if err != nil {
		return nil, goldapi.WrapError(ctx, goldapi.ErrGatewayUnavailable, err, msgs.MsgGatewayInvalidAddress, addrStr).WithID(id)
	}
	return owner, nil
}

func (g *gateway) SubmitMint(ctx context.Context, conn *Connection, req *goldapi.MintRequest) (*goldapi.TxHandle, error) {
	if req == nil {
		return nil, goldapi.NewError(ctx, goldapi.ErrTransactionReverted, msgs.MsgGatewayInvalidMint, "missing request")
	}
	return g.submit(ctx, conn, g.mintGoldCertificate, []any{
		new(big.Int).SetUint64(req.WeightGrams).String(),
		new(big.Int).SetUint64(req.PurityBasisPoints).String(),
		req.MineOrigin,
		req.Refinery,
		req.VaultLocation,
	})
}

func (g *gateway) TransferCertificate(ctx context.Context, conn *Connection, id uint64, to ethtypes.Address0xHex) (*goldapi.TxHandle, error) {
	return g.submit(ctx, conn, g.transferCertificate, []any{
		new(big.Int).SetUint64(id).String(),
		to.String(),
	})
}

// submit signs and sends a write. Gas estimation runs the call against the
// ledger state first, so contract validation failures surface here as
// reverts before anything is submitted.
func (g *gateway) submit(ctx context.Context, conn *Connection, fn ethclient.ABIFunctionClient, input []any) (*goldapi.TxHandle, error) {
	if conn == nil || conn.Capability == nil {
		return nil, goldapi.NewError(ctx, goldapi.ErrNoWalletProvider, msgs.MsgGatewayNotConnected)
	}
	submittedAt := fftypes.Now()
	txHash, err := fn.R(ctx).
		TXVersion(g.txVersion).
		Signer(conn.Capability).
		To(g.contract).
		Input(input).
		SignAndSend()
	if err != nil {
		return nil, g.mapSubmitError(ctx, fn, err)
	}
	log.L(ctx).Infof("Submitted %s from %s: %s", fn.Signature(), conn.Account, txHash)
	return &goldapi.TxHandle{
		Hash:        txHash,
		From:        conn.Account,
		Function:    fn.Signature(),
		SubmittedAt: *submittedAt,
	}, nil
}

func (g *gateway) mapSubmitError(ctx context.Context, fn ethclient.ABIFunctionClient, err error) error {
	if _, classified := goldapi.KindOf(err); classified {
		// the wallet declined to sign
		return err
	}
	switch ethclient.MapError(err) {
	case ethclient.ErrorReasonTransactionReverted:
		return goldapi.WrapError(ctx, goldapi.ErrTransactionReverted, err, msgs.MsgGatewayTXReverted, fn.Signature())
	case ethclient.ErrorReasonInsufficientFunds:
		return goldapi.WrapError(ctx, goldapi.ErrTransactionRejected, err, msgs.MsgGatewayTXRejected)
	default:
		return goldapi.WrapError(ctx, goldapi.ErrGatewayUnavailable, err, msgs.MsgGatewayUnavailable, fn.Signature())
	}
}

// AwaitConfirmation polls for the receipt with backoff until it is found or
// the confirmation timeout passes
func (g *gateway) AwaitConfirmation(ctx context.Context, tx *goldapi.TxHandle) (*goldapi.Receipt, error) {
	confirmCtx, cancel := context.WithTimeout(ctx, g.confirmTimeout)
	defer cancel()

	var receipt *ethclient.TransactionReceipt
	err := g.confirmPoll.Do(confirmCtx, func(attempt int) (retryable bool, err error) {
		receipt, err = g.ethClient.GetTransactionReceipt(confirmCtx, tx.Hash)
		if err == nil && receipt == nil {
			err = i18n.NewError(confirmCtx, msgs.MsgEthClientReceiptNotAvailable, tx.Hash)
		}
		return true, err
	})
	if err != nil || receipt == nil {
		return nil, goldapi.WrapError(ctx, goldapi.ErrConfirmationTimeout, err, msgs.MsgGatewayConfirmTimeout, g.confirmTimeout, tx.Hash)
	}

	if !receipt.Success() {
		var revertErr error
		if receipt.RevertReason != nil {
			revertErr = i18n.NewError(ctx, msgs.MsgLedgerExecutionReverted, ethclient.DecodeRevertReason(ctx, *receipt.RevertReason))
		}
		return nil, goldapi.WrapError(ctx, goldapi.ErrTransactionReverted, revertErr, msgs.MsgGatewayTXRevertedStatus, tx.Hash, receipt.BlockNumber)
	}
	log.L(ctx).Infof("Transaction %s (%s) confirmed in block %d", tx.Hash, tx.Function, receipt.BlockNumber.Uint64())
	return &goldapi.Receipt{
		TransactionHash: receipt.TransactionHash,
		BlockNumber:     receipt.BlockNumber,
		GasUsed:         receipt.GasUsed,
		Success:         true,
	}, nil
}
