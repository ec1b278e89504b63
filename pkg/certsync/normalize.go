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

package certsync

import (
	"context"
	"encoding/json"
	"math"
	"math/big"
	"strings"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
	"github.com/rashidtv/gold-platform-demo/pkg/goldapi"
)

// maxExactFloat is the first integer a float64 cannot tell apart from its
// neighbour, so only magnitudes below it are accepted
const maxExactFloat = 1 << 53

// NormalizeInt converts a ledger numeric value into an int64. Values that
// are negative, fractional, or too large to hold fail with PrecisionLoss,
// as does any float64 outside the range where it is exact. Strings that
// are not integers at all fail as malformed.
func NormalizeInt(ctx context.Context, field string, id uint64, raw any) (int64, error) {
	var bi *big.Int
	switch v := raw.(type) {
	case string:
		if bi = parseIntString(v); bi == nil {
			return 0, malformedInt(ctx, field, id, raw)
		}
	case json.Number:
		if bi = parseIntString(v.String()); bi == nil {
			return 0, malformedInt(ctx, field, id, raw)
		}
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || math.Abs(v) >= maxExactFloat {
			return 0, precisionLoss(ctx, field, id, v)
		}
		bi = big.NewInt(int64(v))
	case int:
		bi = big.NewInt(int64(v))
	case int64:
		bi = big.NewInt(v)
	case uint64:
		bi = new(big.Int).SetUint64(v)
	case *big.Int:
		bi = v
	case *ethtypes.HexInteger:
		if v != nil {
			bi = v.BigInt()
		}
	case ethtypes.HexInteger:
		bi = v.BigInt()
	case ethtypes.HexUint64:
		bi = new(big.Int).SetUint64(v.Uint64())
	default:
		return 0, goldapi.NewError(ctx, goldapi.ErrSyncFailed, msgs.MsgSyncUnsupportedNumeric, field, id, raw).WithID(id).WithField(field)
	}
	if bi == nil || bi.Sign() < 0 || !bi.IsInt64() {
		return 0, precisionLoss(ctx, field, id, raw)
	}
	return bi.Int64(), nil
}

// parseIntString accepts base 10, or 0x prefixed hex as returned by the
// JSON/RPC quantity encoding. Returns nil for anything else.
func parseIntString(s string) *big.Int {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	bi, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil
	}
	return bi
}

func malformedInt(ctx context.Context, field string, id uint64, raw any) error {
	return goldapi.NewError(ctx, goldapi.ErrSyncFailed, msgs.MsgSyncMalformedNumeric, field, id, raw).WithID(id).WithField(field)
}

func precisionLoss(ctx context.Context, field string, id uint64, raw any) error {
	return goldapi.NewError(ctx, goldapi.ErrPrecisionLoss, msgs.MsgSyncPrecisionLoss, field, id, raw).WithID(id).WithField(field)
}

// NormalizeRecord builds a certificate from the positional record fields
func NormalizeRecord(ctx context.Context, raw *goldapi.RawRecord) (*goldapi.Certificate, error) {
	if len(raw.Fields) != goldapi.RecordFieldCount {
		return nil, goldapi.NewError(ctx, goldapi.ErrSyncFailed, msgs.MsgGatewayRecordShape, raw.ID, len(raw.Fields), goldapi.RecordFieldCount).WithID(raw.ID)
	}
	cert := &goldapi.Certificate{ID: raw.ID}

	var weightGrams int64
	for _, nf := range []struct {
		index  int
		target *int64
	}{
		{goldapi.RecordFieldWeight, &weightGrams},
		{goldapi.RecordFieldPurity, &cert.PurityBasisPoints},
		{goldapi.RecordFieldMintDate, &cert.MintTimestamp},
	} {
		v, err := NormalizeInt(ctx, goldapi.RecordFieldNames[nf.index], raw.ID, raw.Fields[nf.index])
		if err != nil {
			return nil, err
		}
		*nf.target = v
	}
	if weightGrams > math.MaxInt64/goldapi.MilligramsPerGram {
		return nil, precisionLoss(ctx, goldapi.RecordFieldNames[goldapi.RecordFieldWeight], raw.ID, raw.Fields[goldapi.RecordFieldWeight])
	}
	cert.WeightMilligrams = weightGrams * goldapi.MilligramsPerGram

	for _, sf := range []struct {
		index  int
		target *string
	}{
		{goldapi.RecordFieldMineOrigin, &cert.MineOrigin},
		{goldapi.RecordFieldRefinery, &cert.Refinery},
		{goldapi.RecordFieldVaultLocation, &cert.VaultLocation},
	} {
		s, ok := raw.Fields[sf.index].(string)
		if !ok {
			name := goldapi.RecordFieldNames[sf.index]
			return nil, goldapi.NewError(ctx, goldapi.ErrSyncFailed, msgs.MsgSyncBadString, name, raw.ID, raw.Fields[sf.index]).WithID(raw.ID).WithField(name)
		}
		*sf.target = s
	}

	owner, err := normalizeAddress(ctx, goldapi.RecordFieldNames[goldapi.RecordFieldOwner], raw.ID, raw.Fields[goldapi.RecordFieldOwner])
	if err != nil {
		return nil, err
	}
	cert.Owner = *owner
	return cert, nil
}

// normalizeAddress accepts a hex address, or the same 160 bits as an
// integer for serializers that do not special-case address types
func normalizeAddress(ctx context.Context, field string, id uint64, raw any) (*ethtypes.Address0xHex, error) {
	var bi *big.Int
	switch v := raw.(type) {
	case string:
		if addr, err := ethtypes.NewAddress(v); err == nil {
			return addr, nil
		}
		bi = parseIntString(v)
	case json.Number:
		bi = parseIntString(v.String())
	case *big.Int:
		bi = v
	case ethtypes.Address0xHex:
		return &v, nil
	case *ethtypes.Address0xHex:
		if v != nil {
			return v, nil
		}
	}
	if bi == nil || bi.Sign() < 0 || bi.BitLen() > 160 {
		return nil, goldapi.NewError(ctx, goldapi.ErrSyncFailed, msgs.MsgSyncBadAddress, field, id, raw).WithID(id).WithField(field)
	}
	var addr ethtypes.Address0xHex
	bi.FillBytes(addr[:])
	return &addr, nil
}
