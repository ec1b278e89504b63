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

package goldapi

// GoldPlatformABI is the subset of the GoldPlatform contract used by the
// gateway. The events are declared so receipts can be decoded by tooling,
// but the gateway derives all state from the view functions.
const GoldPlatformABI = `[
	{
		"type": "function",
		"name": "getTotalGoldBars",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"type": "function",
		"name": "getGoldBarDetails",
		"stateMutability": "view",
		"inputs": [{"name": "tokenId", "type": "uint256"}],
		"outputs": [
			{"name": "weight", "type": "uint256"},
			{"name": "purity", "type": "uint256"},
			{"name": "mineOrigin", "type": "string"},
			{"name": "refinery", "type": "string"},
			{"name": "mintDate", "type": "uint256"},
			{"name": "owner", "type": "address"},
			{"name": "vaultLocation", "type": "string"}
		]
	},
	{
		"type": "function",
		"name": "mintGoldCertificate",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "weight", "type": "uint256"},
			{"name": "purity", "type": "uint256"},
			{"name": "mineOrigin", "type": "string"},
			{"name": "refinery", "type": "string"},
			{"name": "vaultLocation", "type": "string"}
		],
		"outputs": [{"name": "", "type": "uint256"}]
	},
	{
		"type": "function",
		"name": "transferCertificate",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "tokenId", "type": "uint256"},
			{"name": "to", "type": "address"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "certificateOwners",
		"stateMutability": "view",
		"inputs": [{"name": "", "type": "uint256"}],
		"outputs": [{"name": "", "type": "address"}]
	},
	{
		"type": "event",
		"name": "CertificateMinted",
		"inputs": [
			{"name": "tokenId", "type": "uint256", "indexed": false},
			{"name": "weight", "type": "uint256", "indexed": false},
			{"name": "purity", "type": "uint256", "indexed": false},
			{"name": "mineOrigin", "type": "string", "indexed": false}
		]
	},
	{
		"type": "event",
		"name": "CertificateTransferred",
		"inputs": [
			{"name": "tokenId", "type": "uint256", "indexed": false},
			{"name": "from", "type": "address", "indexed": false},
			{"name": "to", "type": "address", "indexed": false}
		]
	}
]`
