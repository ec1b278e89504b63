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

package session

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rashidtv/gold-platform-demo/internal/msgs"
	"github.com/rashidtv/gold-platform-demo/pkg/goldapi"
	"github.com/shopspring/decimal"
)

const addressEllipsis = "…"

// AbbreviateAddress shows the first 6 and last 4 characters of an address
func AbbreviateAddress(addr string) string {
	if utf8.RuneCountInString(addr) <= 10 {
		return addr
	}
	runes := []rune(addr)
	return string(runes[:6]) + addressEllipsis + string(runes[len(runes)-4:])
}

func milligramsToKg(mg int64) decimal.Decimal {
	return decimal.New(mg, -6)
}

func basisPointsToPercent(bp int64) decimal.Decimal {
	return decimal.New(bp, -2)
}

// TotalWeightKg sums the normalized milligram weights exactly
func TotalWeightKg(certs []*goldapi.Certificate) decimal.Decimal {
	total := decimal.Zero
	for _, c := range certs {
		total = total.Add(milligramsToKg(c.WeightMilligrams))
	}
	return total
}

func NewOverview(certs []*goldapi.Certificate) *goldapi.Overview {
	total := TotalWeightKg(certs)
	return &goldapi.Overview{
		TotalWeightKg:        total,
		TotalWeightKgDisplay: total.StringFixed(3),
		CertificateCount:     len(certs),
	}
}

func NewCertificateView(c *goldapi.Certificate) *goldapi.CertificateView {
	owner := c.Owner.String()
	return &goldapi.CertificateView{
		ID:                c.ID,
		WeightGrams:       c.WeightGrams(),
		WeightKg:          milligramsToKg(c.WeightMilligrams).StringFixed(3),
		PurityPercent:     basisPointsToPercent(c.PurityBasisPoints).StringFixed(2),
		PurityBasisPoints: c.PurityBasisPoints,
		MineOrigin:        c.MineOrigin,
		Refinery:          c.Refinery,
		VaultLocation:     c.VaultLocation,
		MintDate:          time.Unix(c.MintTimestamp, 0).UTC().Format(time.RFC3339),
		Owner:             owner,
		OwnerDisplay:      AbbreviateAddress(owner),
	}
}

// NewProvenance is derived from the static certificate fields only, as no
// ledger event history is consulted
func NewProvenance(c *goldapi.Certificate) *goldapi.Provenance {
	return &goldapi.Provenance{
		ID: c.ID,
		Steps: []*goldapi.ProvenanceStep{
			{
				Stage:       goldapi.ProvenanceMinted,
				Description: fmt.Sprintf("Minted: %dg gold bar from %s", c.WeightGrams(), c.MineOrigin),
			},
			{
				Stage:       goldapi.ProvenanceRefined,
				Description: fmt.Sprintf("Refined: %s - %s%% purity", c.Refinery, basisPointsToPercent(c.PurityBasisPoints).StringFixed(2)),
			},
			{
				Stage:       goldapi.ProvenanceVaulted,
				Description: fmt.Sprintf("Vaulted: %s - Secure storage", c.VaultLocation),
			},
		},
	}
}

func (s *session) Overview() *goldapi.Overview {
	return NewOverview(s.Snapshot())
}

func (s *session) Certificates() []*goldapi.CertificateView {
	certs := s.Snapshot()
	views := make([]*goldapi.CertificateView, len(certs))
	for i, c := range certs {
		views[i] = NewCertificateView(c)
	}
	return views
}

func (s *session) Provenance(ctx context.Context, id uint64) (*goldapi.Provenance, error) {
	for _, c := range s.Snapshot() {
		if c.ID == id {
			return NewProvenance(c), nil
		}
	}
	return nil, goldapi.NewError(ctx, goldapi.ErrRecordNotFound, msgs.MsgSessionCertificateNotFound, id).WithID(id)
}
