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
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// MilligramsPerGram converts the ledger-native gram weights into the
// normalized milligram field
const MilligramsPerGram = 1000

// Certificate is one minted gold bar, normalized from the ledger record.
// A certificate is never modified once published in a snapshot.
type Certificate struct {
	ID                uint64                `json:"id"`
	WeightMilligrams  int64                 `json:"weightMilligrams"`
	PurityBasisPoints int64                 `json:"purityBasisPoints"`
	MineOrigin        string                `json:"mineOrigin"`
	Refinery          string                `json:"refinery"`
	VaultLocation     string                `json:"vaultLocation"`
	MintTimestamp     int64                 `json:"mintTimestamp"`
	Owner             ethtypes.Address0xHex `json:"owner"`
}

func (c *Certificate) WeightGrams() int64 {
	return c.WeightMilligrams / MilligramsPerGram
}

// Positions of the values returned by getGoldBarDetails
const (
	RecordFieldWeight = iota
	RecordFieldPurity
	RecordFieldMineOrigin
	RecordFieldRefinery
	RecordFieldMintDate
	RecordFieldOwner
	RecordFieldVaultLocation
	RecordFieldCount
)

var RecordFieldNames = [RecordFieldCount]string{
	"weight",
	"purity",
	"mineOrigin",
	"refinery",
	"mintDate",
	"owner",
	"vaultLocation",
}

// RawRecord is the positional tuple returned by the ledger for one id,
// with numeric values left in whatever large-integer-safe encoding the
// gateway received them in.
type RawRecord struct {
	ID     uint64 `json:"id"`
	Fields []any  `json:"fields"`
}

// MintRequest carries the mintGoldCertificate arguments, with the weight
// in the ledger-native unit of grams
type MintRequest struct {
	WeightGrams       uint64 `json:"weight"`
	PurityBasisPoints uint64 `json:"purity"`
	MineOrigin        string `json:"mineOrigin"`
	Refinery          string `json:"refinery"`
	VaultLocation     string `json:"vaultLocation"`
}

// DemoMintRequest is the bar minted by the one-click demo action
func DemoMintRequest() *MintRequest {
	return &MintRequest{
		WeightGrams:       250,
		PurityBasisPoints: 9990,
		MineOrigin:        "Pueblo Viejo, Dominican Republic",
		Refinery:          "Global Refinery, UK",
		VaultLocation:     "London Vault C3",
	}
}

type TransferRequest struct {
	ID uint64                `json:"id"`
	To ethtypes.Address0xHex `json:"to"`
}
