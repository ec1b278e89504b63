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

package msgs

import (
	"fmt"
	"strings"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/text/language"
)

const goldPrefix = "GP01"

var registered = false
var ffe = func(key, translation string, statusHint ...int) i18n.ErrorMessageKey {
	if !registered {
		i18n.RegisterPrefix(goldPrefix, "Gold Certificate Client")
		registered = true
	}
	if !strings.HasPrefix(key, goldPrefix) {
		panic(fmt.Errorf("must have prefix '%s': %s", goldPrefix, key))
	}
	return i18n.FFE(language.AmericanEnglish, key, translation, statusHint...)
}

var (
	// Config GP0100XX
	MsgConfigFileMissing           = ffe("GP010000", "Config file not found at path: %s")
	MsgConfigFileReadError         = ffe("GP010001", "Failed to read config file %s with error: %s")
	MsgConfigFileParseError        = ffe("GP010002", "Failed to parse config file %s with error: %s")
	MsgConfigMissingContract       = ffe("GP010003", "Contract address must be configured for the ledger")
	MsgConfigInvalidContract       = ffe("GP010004", "Invalid contract address '%s'")
	MsgConfigInvalidTXVersion      = ffe("GP010005", "Invalid transaction version '%s' (must be one of: %s)")
	MsgConfigMissingLedgerEndpoint = ffe("GP010006", "Either an HTTP or WebSocket ledger URL must be configured")

	// Types GP0101XX
	MsgContextCanceled = ffe("GP010100", "Context canceled")
	MsgInvalidHex      = ffe("GP010101", "Invalid hex: %s")
	MsgTLSInvalidCA    = ffe("GP010102", "Invalid CA certificates")
	MsgTLSConfigFailed = ffe("GP010103", "Failed to initialize TLS configuration")
	MsgTLSInvalidPair  = ffe("GP010104", "Invalid certificate and key pair")

	// EthClient GP0102XX
	MsgEthClientChainIDFailed        = ffe("GP010200", "Failed to query chain ID")
	MsgEthClientInvalidHTTPURL       = ffe("GP010201", "Invalid HTTP URL: %s")
	MsgEthClientInvalidWebSocketURL  = ffe("GP010202", "Invalid WebSocket URL: %s")
	MsgEthClientABIJson              = ffe("GP010203", "JSON ABI parsing failed")
	MsgEthClientFunctionNotFound     = ffe("GP010204", "Function %q not found on ABI")
	MsgEthClientMissingInput         = ffe("GP010205", "Input not provided")
	MsgEthClientMissingTo            = ffe("GP010206", "To not provided")
	MsgEthClientMissingFrom          = ffe("GP010207", "From not provided")
	MsgEthClientMissingOutput        = ffe("GP010208", "Output not provided")
	MsgEthClientInvalidInput         = ffe("GP010209", "Unable to convert to ABI function input (func=%s)")
	MsgEthClientInvalidTXVersion     = ffe("GP010210", "Invalid TX version (must be one of: %s)")
	MsgEthClientCallFailed           = ffe("GP010211", "Call to %s failed: %s")
	MsgEthClientReceiptNotAvailable  = ffe("GP010212", "Receipt not available for transaction %s")
	MsgEthClientSignerMismatch       = ffe("GP010213", "Signer for %s resolved to a different address %s")
	MsgEthClientSendFailed           = ffe("GP010214", "eth_sendRawTransaction failed: %s")
	MsgEthClientWSConnectFailed      = ffe("GP010215", "WebSocket connection to ledger failed")
	MsgEthClientChainIDMismatch      = ffe("GP010216", "Chain ID mismatch between endpoints: http=%d ws=%d")
	MsgEthClientOutputDecode         = ffe("GP010217", "Unable to decode output of %s")
	MsgEthClientGasEstimateFailed    = ffe("GP010218", "Gas estimation failed: %s")
	MsgEthClientNonceFailed          = ffe("GP010219", "Failed to obtain nonce for %s: %s")
	MsgEthClientSignatureFailed      = ffe("GP010220", "Signing failed for %s")
	MsgEthClientInvalidRawTXReceived = ffe("GP010221", "Raw transaction invalid: %s")

	// Wallet GP0103XX
	MsgWalletNoProvider         = ffe("GP010300", "No wallet provider is configured")
	MsgWalletAccountsDeclined   = ffe("GP010301", "Account request declined by the wallet user")
	MsgWalletUnknownAccount     = ffe("GP010302", "Account %s is not held by this wallet")
	MsgWalletBadKeyFile         = ffe("GP010303", "Failed to read key file %s")
	MsgWalletBadPassFile        = ffe("GP010304", "Failed to read password file %s")
	MsgWalletBadKeystorePath    = ffe("GP010305", "Keystore path %s is not a directory")
	MsgWalletInvalidPrivateKey  = ffe("GP010306", "Invalid private key at index %d")
	MsgWalletSigningDeclined    = ffe("GP010307", "Signing request for %s declined by the wallet user")
	MsgWalletUnknownType        = ffe("GP010308", "Unknown wallet type '%s'")
	MsgWalletNoAccounts         = ffe("GP010309", "The wallet holds no accounts")
	MsgWalletKeystoreReadFailed = ffe("GP010310", "Failed to read keystore file %s")

	// Gateway GP0104XX
	MsgGatewayUnavailable      = ffe("GP010400", "Ledger gateway unavailable calling %s")
	MsgGatewayRecordNotFound   = ffe("GP010401", "Certificate %d not found on ledger")
	MsgGatewayTXRejected       = ffe("GP010402", "Transaction rejected before submission")
	MsgGatewayTXReverted       = ffe("GP010403", "Transaction reverted by the ledger: %s")
	MsgGatewayConfirmTimeout   = ffe("GP010404", "Timed out after %s waiting for confirmation of transaction %s")
	MsgGatewayInvalidMint      = ffe("GP010405", "Invalid mint request: %s")
	MsgGatewayRecordShape      = ffe("GP010406", "Record %d returned %d fields (expected %d)")
	MsgGatewayNotConnected     = ffe("GP010407", "No wallet connection established")
	MsgGatewayTXRevertedStatus = ffe("GP010408", "Transaction %s reverted in block %s")
	MsgGatewayInvalidAddress   = ffe("GP010409", "Invalid address '%s'")
	MsgGatewayInvalidTransfer  = ffe("GP010410", "Invalid transfer request: %s")

	// Sync GP0105XX
	MsgSyncPrecisionLoss      = ffe("GP010500", "Value of field '%s' on certificate %d does not fit in a 64-bit integer: %v")
	MsgSyncFailed             = ffe("GP010501", "Synchronization failed fetching certificate %d")
	MsgSyncUnsupportedNumeric = ffe("GP010502", "Field '%s' on certificate %d has unsupported numeric encoding %T")
	MsgSyncBadAddress         = ffe("GP010503", "Field '%s' on certificate %d is not a valid address: %v")
	MsgSyncBadString          = ffe("GP010504", "Field '%s' on certificate %d is not a string: %T")
	MsgSyncTotalFailed        = ffe("GP010505", "Synchronization failed reading the total certificate count")
	MsgSyncMalformedNumeric   = ffe("GP010506", "Field '%s' on certificate %d is not an integer: '%v'")

	// Session GP0106XX
	MsgSessionOperationInProgress = ffe("GP010600", "Operation %s rejected while session is %s")
	MsgSessionNotReady            = ffe("GP010601", "Operation %s requires a connected session (state=%s)")
	MsgSessionCertificateNotFound = ffe("GP010602", "Certificate %d is not in the current snapshot")
	MsgSessionDiscarded           = ffe("GP010603", "Result of %s discarded as the session was reset")

	// JSON/RPC GP0107XX
	MsgJSONRPCInvalidRequest      = ffe("GP010700", "Invalid JSON/RPC request data")
	MsgJSONRPCMissingRequestID    = ffe("GP010701", "Invalid JSON/RPC request. Must set request ID")
	MsgJSONRPCUnsupportedMethod   = ffe("GP010702", "method not supported: %s")
	MsgJSONRPCIncorrectParamCount = ffe("GP010703", "Incorrect number of parameters for %s (expected=%d,received=%d)")
	MsgJSONRPCInvalidParam        = ffe("GP010704", "Invalid parameter for %s position=%d: %s")
	MsgJSONRPCResultSerialization = ffe("GP010705", "Result serialization failed for %s: %s")
	MsgHTTPServerMissingPort      = ffe("GP010706", "HTTP server port must be specified for '%s'")
	MsgHTTPServerStartFailed      = ffe("GP010707", "Failed to start server on '%s'")
	MsgHTTPServerNoWSUpgrade      = ffe("GP010708", "Response writer %T does not support WebSocket upgrade")

	// Ledger and simulator GP0108XX
	MsgLedgerExecutionReverted = ffe("GP010800", "execution reverted: %s")
	MsgSimUnknownSelector      = ffe("GP010801", "execution reverted: unknown function selector %s")
	MsgSimInvalidTX            = ffe("GP010802", "Invalid transaction: %s")
	MsgSimNonceTooLow          = ffe("GP010803", "nonce too low: address %s, tx: %d state: %d")
	MsgSimBadBlockRef          = ffe("GP010804", "Unsupported block reference %s")
	MsgSimNonceTooHigh         = ffe("GP010805", "nonce too high: address %s, tx: %d state: %d")
	MsgSimWrongContract        = ffe("GP010806", "No contract deployed at %s")

	// Node GP0109XX
	MsgNodeComponentStartError = ffe("GP010900", "Error starting %s")
)
