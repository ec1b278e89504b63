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
	"github.com/shopspring/decimal"
)

type SessionState string

const (
	StateDisconnected SessionState = "disconnected"
	StateConnecting   SessionState = "connecting"
	StateReady        SessionState = "ready"
	StateSyncing      SessionState = "syncing"
	StateMinting      SessionState = "minting"
	StateTransferring SessionState = "transferring"
)

// Busy states reject any new operation
func (s SessionState) Busy() bool {
	switch s {
	case StateConnecting, StateSyncing, StateMinting, StateTransferring:
		return true
	default:
		return false
	}
}

type SessionStatus struct {
	State            SessionState           `json:"state"`
	Account          *ethtypes.Address0xHex `json:"account,omitempty"`
	AccountDisplay   string                 `json:"accountDisplay,omitempty"`
	CertificateCount int                    `json:"certificateCount"`
	LastSynced       *fftypes.FFTime        `json:"lastSynced,omitempty"`
	LastError        *ErrorInfo             `json:"lastError,omitempty"`
	LastTransaction  *TxHandle              `json:"lastTransaction,omitempty"`
}

type Overview struct {
	TotalWeightKg        decimal.Decimal `json:"totalWeightKg"`
	TotalWeightKgDisplay string          `json:"totalWeightKgDisplay"`
	CertificateCount     int             `json:"certificateCount"`
}

// CertificateView is a certificate formatted for display
type CertificateView struct {
	ID                uint64 `json:"id"`
	WeightGrams       int64  `json:"weightGrams"`
	WeightKg          string `json:"weightKg"`
	PurityPercent     string `json:"purityPercent"`
	MineOrigin        string `json:"mineOrigin"`
	Refinery          string `json:"refinery"`
	VaultLocation     string `json:"vaultLocation"`
	MintDate          string `json:"mintDate"`
	Owner             string `json:"owner"`
	OwnerDisplay      string `json:"ownerDisplay"`
	PurityBasisPoints int64  `json:"purityBasisPoints"`
}

type ProvenanceStage string

const (
	ProvenanceMinted  ProvenanceStage = "minted"
	ProvenanceRefined ProvenanceStage = "refined"
	ProvenanceVaulted ProvenanceStage = "vaulted"
)

type ProvenanceStep struct {
	Stage       ProvenanceStage `json:"stage"`
	Description string          `json:"description"`
}

type Provenance struct {
	ID    uint64            `json:"id"`
	Steps []*ProvenanceStep `json:"steps"`
}
