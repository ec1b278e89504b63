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
	"bytes"
	"context"
	"strings"

	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

type EthTXVersion string

const (
	LEGACY_EIP155 EthTXVersion = "legacy_eip155"
	EIP1559       EthTXVersion = "eip1559"
)

var txVersions = []string{string(EIP1559), string(LEGACY_EIP155)}

type BlockRef string

const (
	LATEST  BlockRef = "latest"
	PENDING BlockRef = "pending"
)

// ErrorReason is a classification of the error strings returned by EVM nodes
type ErrorReason string

const (
	ErrorReasonTransactionReverted    ErrorReason = "transaction_reverted"
	ErrorReasonNonceTooLow            ErrorReason = "nonce_too_low"
	ErrorReasonTransactionUnderpriced ErrorReason = "transaction_underpriced"
	ErrorReasonInsufficientFunds      ErrorReason = "insufficient_funds"
	ErrorReasonNotFound               ErrorReason = "not_found"
	ErrorKnownTransaction             ErrorReason = "known_transaction"
)

func MapError(err error) ErrorReason {
	if err == nil {
		return ""
	}
	errString := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errString, "execution reverted"):
		return ErrorReasonTransactionReverted
	case strings.Contains(errString, "nonce too low"):
		return ErrorReasonNonceTooLow
	case strings.Contains(errString, "insufficient funds"):
		return ErrorReasonInsufficientFunds
	case strings.Contains(errString, "transaction underpriced"):
		return ErrorReasonTransactionUnderpriced
	case strings.Contains(errString, "known transaction"),
		strings.Contains(errString, "already known"):
		return ErrorKnownTransaction
	case strings.Contains(errString, "not found"):
		return ErrorReasonNotFound
	default:
		return ""
	}
}

// MapSubmissionRejected reports whether the ledger refused the transaction
// on its content, so that resubmitting the same transaction cannot succeed
func MapSubmissionRejected(err error) bool {
	switch MapError(err) {
	case ErrorReasonTransactionReverted, ErrorReasonInsufficientFunds:
		return true
	default:
		return false
	}
}

// TransactionReceipt is the subset of eth_getTransactionReceipt the
// gateway inspects
type TransactionReceipt struct {
	TransactionHash ethtypes.HexBytes0xPrefix  `json:"transactionHash"`
	BlockHash       ethtypes.HexBytes0xPrefix  `json:"blockHash"`
	BlockNumber     ethtypes.HexUint64         `json:"blockNumber"`
	From            *ethtypes.Address0xHex     `json:"from"`
	To              *ethtypes.Address0xHex     `json:"to"`
	GasUsed         ethtypes.HexUint64         `json:"gasUsed"`
	Status          ethtypes.HexUint64         `json:"status"`
	RevertReason    *ethtypes.HexBytes0xPrefix `json:"revertReason,omitempty"`
}

func (r *TransactionReceipt) Success() bool {
	return r.Status.Uint64() == 1
}

var (
	// revert("reason") in Solidity returns the data of a call to Error(string)
	defaultError = &abi.Entry{
		Type: abi.Error,
		Name: "Error",
		Inputs: abi.ParameterArray{
			{Type: "string"},
		},
	}
	defaultErrorID = defaultError.FunctionSelectorBytes()
)

// DecodeRevertReason returns the Error(string) message of revert data, or
// the hex of the data when it uses another encoding
func DecodeRevertReason(ctx context.Context, data []byte) string {
	if len(data) > 4 && bytes.Equal(data[0:4], defaultErrorID) {
		value, err := defaultError.DecodeCallDataCtx(ctx, data)
		if err == nil && len(value.Children) == 1 {
			if s, ok := value.Children[0].Value.(string); ok {
				return s
			}
		}
	}
	return ethtypes.HexBytes0xPrefix(data).String()
}

// EncodeRevertReason builds the revert data for an Error(string) revert
func EncodeRevertReason(ctx context.Context, reason string) ([]byte, error) {
	return defaultError.EncodeCallDataValuesCtx(ctx, []any{reason})
}
