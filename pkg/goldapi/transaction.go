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

import (
	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// TxHandle identifies a submitted transaction that can be awaited
type TxHandle struct {
	Hash        ethtypes.HexBytes0xPrefix `json:"hash"`
	From        ethtypes.Address0xHex     `json:"from"`
	Function    string                    `json:"function"`
	SubmittedAt fftypes.FFTime            `json:"submittedAt"`
}

type Receipt struct {
	TransactionHash ethtypes.HexBytes0xPrefix `json:"transactionHash"`
	BlockNumber     ethtypes.HexUint64        `json:"blockNumber"`
	GasUsed         ethtypes.HexUint64        `json:"gasUsed"`
	Success         bool                      `json:"success"`
}
