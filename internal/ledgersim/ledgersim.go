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

package ledgersim

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/rashidtv/gold-platform-demo/internal/log"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
	"github.com/rashidtv/gold-platform-demo/internal/rpcserver"
	"github.com/rashidtv/gold-platform-demo/pkg/confutil"
	"github.com/rashidtv/gold-platform-demo/pkg/ethclient"
	"github.com/rashidtv/gold-platform-demo/pkg/goldapi"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
	"golang.org/x/crypto/sha3"
)

const estimatedGas = 250000

// Simulator is an in-process EVM JSON-RPC node with a GoldPlatform
// contract deployed at a fixed address
type Simulator interface {
	Start() error
	Stop()
	Addr() net.Addr
	ChainID() int64
	ContractAddress() ethtypes.Address0xHex
	// SetAutoMine controls whether submitted transactions are mined
	// immediately, or held until Mine is called
	SetAutoMine(autoMine bool)
	Mine(ctx context.Context) int
}

type pendingTX struct {
	hash ethtypes.HexBytes0xPrefix
	from ethtypes.Address0xHex
	tx   *ethsigner.Transaction
}

type simulator struct {
	bgCtx     context.Context
	rpcServer rpcserver.Server
	chainID   int64
	contract  ethtypes.Address0xHex
	clock     func() time.Time

	lock        sync.Mutex
	platform    *goldPlatform
	blockNumber uint64
	nonces      map[ethtypes.Address0xHex]uint64
	receipts    map[string]*ethclient.TransactionReceipt
	pending     []*pendingTX
	autoMine    bool
}

func NewSimulator(ctx context.Context, conf *goldconf.SimulatorConfig, contractAddress *string) (Simulator, error) {
	contractStr := confutil.StringNotEmpty(contractAddress, *goldconf.LedgerDefaults.ContractAddress)
	contract, err := ethtypes.NewAddress(contractStr)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgConfigInvalidContract, contractStr)
	}
	var contractABI abi.ABI
	if err := json.Unmarshal([]byte(goldapi.GoldPlatformABI), &contractABI); err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgEthClientABIJson)
	}

	s := &simulator{
		bgCtx:    log.WithLogField(ctx, "role", "ledgersim"),
		chainID:  confutil.Int64Min(conf.ChainID, 1, *goldconf.SimulatorDefaults.ChainID),
		contract: *contract,
		clock:    time.Now,
		platform: newGoldPlatform(contractABI),
		nonces:   map[ethtypes.Address0xHex]uint64{},
		receipts: map[string]*ethclient.TransactionReceipt{},
		autoMine: true,
	}

	httpConf := conf.HTTPServerConfig
	if httpConf.Port == nil {
		httpConf.Port = goldconf.SimulatorDefaults.Port
	}
	s.rpcServer, err = rpcserver.NewServer(s.bgCtx, &goldconf.RPCServerConfig{
		HTTP: goldconf.RPCServerConfigHTTP{HTTPServerConfig: httpConf},
		WS:   goldconf.RPCServerConfigWS{Disabled: true},
	})
	if err != nil {
		return nil, err
	}
	s.rpcServer.Register(s.rpcModule())
	return s, nil
}

func (s *simulator) rpcModule() *rpcserver.RPCModule {
	return rpcserver.NewRPCModule("eth").
		Add("eth_chainId", rpcserver.RPCMethod0(s.ethChainID)).
		Add("eth_blockNumber", rpcserver.RPCMethod0(s.ethBlockNumber)).
		Add("eth_gasPrice", rpcserver.RPCMethod0(s.ethGasPrice)).
		Add("eth_getTransactionCount", rpcserver.RPCMethod2(s.ethGetTransactionCount)).
		Add("eth_call", rpcserver.RPCMethod2(s.ethCall)).
		Add("eth_estimateGas", rpcserver.RPCMethod1(s.ethEstimateGas)).
		Add("eth_sendRawTransaction", rpcserver.RPCMethod1(s.ethSendRawTransaction)).
		Add("eth_getTransactionReceipt", rpcserver.RPCMethod1(s.ethGetTransactionReceipt))
}

func (s *simulator) Start() error {
	log.L(s.bgCtx).Infof("Ledger simulator starting chainId=%d contract=%s", s.chainID, s.contract)
	return s.rpcServer.Start()
}

func (s *simulator) Stop() {
	s.rpcServer.Stop()
}

func (s *simulator) Addr() net.Addr {
	return s.rpcServer.HTTPAddr()
}

func (s *simulator) ChainID() int64 {
	return s.chainID
}

func (s *simulator) ContractAddress() ethtypes.Address0xHex {
	return s.contract
}

func (s *simulator) SetAutoMine(autoMine bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.autoMine = autoMine
}

// Mine includes every pending transaction in a new block, returning the
// number of transactions mined
func (s *simulator) Mine(ctx context.Context) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.mineLocked(ctx)
}

func (s *simulator) mineLocked(ctx context.Context) int {
	if len(s.pending) == 0 {
		return 0
	}
	s.blockNumber++
	blockHash := keccak([]byte(strconv.FormatUint(s.blockNumber, 10)))
	now := s.clock().Unix()
	for _, ptx := range s.pending {
		receipt := &ethclient.TransactionReceipt{
			TransactionHash: ptx.hash,
			BlockHash:       blockHash,
			BlockNumber:     ethtypes.HexUint64(s.blockNumber),
			From:            &ptx.from,
			To:              ptx.tx.To,
			GasUsed:         estimatedGas,
			Status:          1,
		}
		if _, err := s.executeLocked(ctx, ptx.from, ptx.tx, now, true); err != nil {
			log.L(ctx).Warnf("Transaction %s reverted in block %d: %s", ptx.hash, s.blockNumber, err)
			receipt.Status = 0
			var r *revert
			if errors.As(err, &r) {
				if data, err := ethclient.EncodeRevertReason(ctx, r.reason); err == nil {
					revertReason := ethtypes.HexBytes0xPrefix(data)
					receipt.RevertReason = &revertReason
				}
			}
		}
		s.receipts[ptx.hash.String()] = receipt
	}
	mined := len(s.pending)
	s.pending = nil
	log.L(ctx).Debugf("Mined block %d with %d transactions", s.blockNumber, mined)
	return mined
}

func (s *simulator) executeLocked(ctx context.Context, from ethtypes.Address0xHex, tx *ethsigner.Transaction, now int64, commit bool) ([]byte, error) {
	if tx.To == nil || *tx.To != s.contract {
		return nil, i18n.NewError(ctx, msgs.MsgSimWrongContract, tx.To)
	}
	return s.platform.execute(ctx, from, tx.Data, now, commit)
}

func fromAddress(tx *ethsigner.Transaction) ethtypes.Address0xHex {
	var from ethtypes.Address0xHex
	if len(tx.From) > 0 {
		_ = json.Unmarshal(tx.From, &from)
	}
	return from
}

func keccak(data []byte) ethtypes.HexBytes0xPrefix {
	hash := sha3.NewLegacyKeccak256()
	_, _ = hash.Write(data)
	return hash.Sum(nil)
}

func (s *simulator) checkBlockRef(ctx context.Context, block string) error {
	switch strings.ToLower(block) {
	case "latest", "pending", "safe", "finalized", "earliest":
		return nil
	}
	if n, err := strconv.ParseUint(strings.TrimPrefix(block, "0x"), 16, 64); err != nil || n > s.blockNumber {
		return i18n.NewError(ctx, msgs.MsgSimBadBlockRef, block)
	}
	return nil
}

func (s *simulator) ethChainID(ctx context.Context) (ethtypes.HexUint64, error) {
	return ethtypes.HexUint64(s.chainID), nil
}

func (s *simulator) ethBlockNumber(ctx context.Context) (ethtypes.HexUint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return ethtypes.HexUint64(s.blockNumber), nil
}

// ethGasPrice is zero, as accounts on the simulator hold no balance
func (s *simulator) ethGasPrice(ctx context.Context) (*ethtypes.HexInteger, error) {
	return ethtypes.NewHexInteger64(0), nil
}

func (s *simulator) ethGetTransactionCount(ctx context.Context, addr ethtypes.Address0xHex, block string) (ethtypes.HexUint64, error) {
	if err := s.checkBlockRef(ctx, block); err != nil {
		return 0, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	return ethtypes.HexUint64(s.nonces[addr]), nil
}

func (s *simulator) ethCall(ctx context.Context, tx ethsigner.Transaction, block string) (ethtypes.HexBytes0xPrefix, error) {
	if err := s.checkBlockRef(ctx, block); err != nil {
		return nil, err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.executeLocked(ctx, fromAddress(&tx), &tx, s.clock().Unix(), false)
}

func (s *simulator) ethEstimateGas(ctx context.Context, tx ethsigner.Transaction) (*ethtypes.HexInteger, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if _, err := s.executeLocked(ctx, fromAddress(&tx), &tx, s.clock().Unix(), false); err != nil {
		return nil, err
	}
	return ethtypes.NewHexInteger64(estimatedGas), nil
}

func (s *simulator) ethSendRawTransaction(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) (ethtypes.HexBytes0xPrefix, error) {
	from, decoded, err := ethsigner.RecoverRawTransaction(ctx, rawTX, s.chainID)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgSimInvalidTX, err.Error())
	}
	tx := decoded.Transaction

	s.lock.Lock()
	defer s.lock.Unlock()
	var txNonce uint64
	if tx.Nonce != nil {
		txNonce = tx.Nonce.BigInt().Uint64()
	}
	stateNonce := s.nonces[*from]
	switch {
	case txNonce < stateNonce:
		return nil, i18n.NewError(ctx, msgs.MsgSimNonceTooLow, from, txNonce, stateNonce)
	case txNonce > stateNonce:
		return nil, i18n.NewError(ctx, msgs.MsgSimNonceTooHigh, from, txNonce, stateNonce)
	}
	s.nonces[*from] = stateNonce + 1

	ptx := &pendingTX{hash: keccak(rawTX), from: *from, tx: tx}
	s.pending = append(s.pending, ptx)
	log.L(ctx).Infof("Accepted transaction %s from %s nonce=%d", ptx.hash, from, txNonce)
	if s.autoMine {
		s.mineLocked(ctx)
	}
	return ptx.hash, nil
}

func (s *simulator) ethGetTransactionReceipt(ctx context.Context, txHash ethtypes.HexBytes0xPrefix) (*ethclient.TransactionReceipt, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.receipts[txHash.String()], nil
}
