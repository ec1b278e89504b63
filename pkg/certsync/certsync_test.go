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
	"fmt"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/rashidtv/gold-platform-demo/pkg/confutil"
	"github.com/rashidtv/gold-platform-demo/pkg/goldapi"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testOwner = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"

type mockRecordReader struct {
	mock.Mock
}

func (m *mockRecordReader) GetTotalCount(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockRecordReader) GetRecord(ctx context.Context, id uint64) (*goldapi.RawRecord, error) {
	args := m.Called(ctx, id)
	rec, _ := args.Get(0).(*goldapi.RawRecord)
	return rec, args.Error(1)
}

type recordingMetrics struct {
	calls        int
	certificates int
	err          error
}

func (rm *recordingMetrics) ObserveSync(_ time.Duration, certificates int, err error) {
	rm.calls++
	rm.certificates = certificates
	rm.err = err
}

func rawRecord(id uint64, weightGrams any) *goldapi.RawRecord {
	return &goldapi.RawRecord{
		ID: id,
		Fields: []any{
			weightGrams,
			"9990",
			"Pueblo Viejo, Dominican Republic",
			"Global Refinery, UK",
			fmt.Sprintf("%d", 1700000000+id),
			testOwner,
			"London Vault C3",
		},
	}
}

func ledgerOf(n uint64, weights ...any) *mockRecordReader {
	mr := &mockRecordReader{}
	mr.On("GetTotalCount", mock.Anything).Return(n, nil)
	for id := uint64(0); id < n; id++ {
		var w any = "250"
		if int(id) < len(weights) {
			w = weights[id]
		}
		mr.On("GetRecord", mock.Anything, id).Return(rawRecord(id, w), nil)
	}
	return mr
}

func newTestSynchronizer(concurrency int) (Synchronizer, *recordingMetrics) {
	rm := &recordingMetrics{}
	return NewSynchronizer(&goldconf.SyncConfig{MaxConcurrentFetches: confutil.P(concurrency)}, rm), rm
}

func TestRefreshContiguousAndOrdered(t *testing.T) {
	s, rm := newTestSynchronizer(4)
	certs, err := s.Refresh(context.Background(), ledgerOf(25))
	require.NoError(t, err)
	require.Len(t, certs, 25)
	for i, c := range certs {
		assert.Equal(t, uint64(i), c.ID)
		assert.Equal(t, int64(250000), c.WeightMilligrams)
		assert.Equal(t, int64(1700000000+i), c.MintTimestamp)
	}
	assert.Equal(t, 1, rm.calls)
	assert.Equal(t, 25, rm.certificates)
	assert.NoError(t, rm.err)
}

func TestRefreshEmptyLedger(t *testing.T) {
	s, _ := newTestSynchronizer(4)
	certs, err := s.Refresh(context.Background(), ledgerOf(0))
	require.NoError(t, err)
	assert.Empty(t, certs)
}

func TestRefreshIdempotent(t *testing.T) {
	s, _ := newTestSynchronizer(3)
	mr := ledgerOf(7, "100", "200", "300")
	first, err := s.Refresh(context.Background(), mr)
	require.NoError(t, err)
	second, err := s.Refresh(context.Background(), mr)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRefreshSingleFetch(t *testing.T) {
	s, _ := newTestSynchronizer(1)
	certs, err := s.Refresh(context.Background(), ledgerOf(5))
	require.NoError(t, err)
	assert.Len(t, certs, 5)
}

func TestRefreshConcurrencyLimit(t *testing.T) {
	s, _ := newTestSynchronizer(2)
	var inFlight, maxInFlight atomic.Int32
	mr := &mockRecordReader{}
	mr.On("GetTotalCount", mock.Anything).Return(uint64(10), nil)
	for id := uint64(0); id < 10; id++ {
		mr.On("GetRecord", mock.Anything, id).Run(func(args mock.Arguments) {
			n := inFlight.Add(1)
			for {
				m := maxInFlight.Load()
				if n <= m || maxInFlight.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
		}).Return(rawRecord(id, "1"), nil)
	}
	_, err := s.Refresh(context.Background(), mr)
	require.NoError(t, err)
	assert.LessOrEqual(t, maxInFlight.Load(), int32(2))
}

func TestRefreshFailureIsolation(t *testing.T) {
	s, rm := newTestSynchronizer(4)
	mr := &mockRecordReader{}
	mr.On("GetTotalCount", mock.Anything).Return(uint64(10), nil)
	for id := uint64(0); id < 10; id++ {
		if id == 3 {
			mr.On("GetRecord", mock.Anything, id).Return(nil, fmt.Errorf("pop")).Maybe()
		} else {
			mr.On("GetRecord", mock.Anything, id).Return(rawRecord(id, "250"), nil).Maybe()
		}
	}

	certs, err := s.Refresh(context.Background(), mr)
	assert.Nil(t, certs)
	assert.Regexp(t, "GP010501.*pop", err)
	var ge *goldapi.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, goldapi.ErrSyncFailed, ge.Kind)
	assert.Equal(t, uint64(3), *ge.ID)
	assert.Equal(t, 1, rm.calls)
	assert.Error(t, rm.err)
}

func TestRefreshTotalCountFails(t *testing.T) {
	s, _ := newTestSynchronizer(4)
	mr := &mockRecordReader{}
	mr.On("GetTotalCount", mock.Anything).Return(uint64(0), fmt.Errorf("pop"))
	_, err := s.Refresh(context.Background(), mr)
	assert.Regexp(t, "GP010505.*pop", err)
	assert.True(t, goldapi.IsKind(err, goldapi.ErrSyncFailed))
}

func TestRefreshPrecisionGuard(t *testing.T) {
	s, _ := newTestSynchronizer(4)
	huge := new(big.Int).Lsh(big.NewInt(1), 70).String()
	certs, err := s.Refresh(context.Background(), ledgerOf(3, "250", huge, "250"))
	assert.Nil(t, certs)
	assert.Regexp(t, "GP010500", err)
	kind, ok := goldapi.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, goldapi.ErrPrecisionLoss, kind)
}

func TestRefreshCancelled(t *testing.T) {
	s, _ := newTestSynchronizer(1)
	ctx, cancel := context.WithCancel(context.Background())
	mr := &mockRecordReader{}
	mr.On("GetTotalCount", mock.Anything).Return(uint64(5), nil).Run(func(args mock.Arguments) { cancel() })
	mr.On("GetRecord", mock.Anything, mock.Anything).Return(nil, context.Canceled).Maybe()
	_, err := s.Refresh(ctx, mr)
	assert.True(t, goldapi.IsKind(err, goldapi.ErrSyncFailed))
}

func TestCheckContiguousTolerated(t *testing.T) {
	// gaps and duplicates only warn
	checkContiguous(context.Background(), []*goldapi.Certificate{
		{ID: 0}, {ID: 2}, {ID: 2}, {ID: 3},
	}, 6)
}

func TestNormalizeInt(t *testing.T) {
	ctx := context.Background()
	hi := ethtypes.NewHexInteger64(42)
	for _, tc := range []struct {
		raw      any
		expected int64
	}{
		{"250", 250},
		{" 9990 ", 9990},
		{"0xff", 255},
		{json.Number("1700000000"), 1700000000},
		{float64(12), 12},
		{12, 12},
		{int64(13), 13},
		{uint64(14), 14},
		{big.NewInt(15), 15},
		{hi, 42},
		{*hi, 42},
		{ethtypes.HexUint64(16), 16},
	} {
		v, err := NormalizeInt(ctx, "weight", 1, tc.raw)
		require.NoError(t, err, "%T %v", tc.raw, tc.raw)
		assert.Equal(t, tc.expected, v)
	}
}

func TestNormalizeIntPrecisionLoss(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []any{
		"9223372036854775808",
		"-1",
		float64(1 << 60),
		float64(1 << 53),
		float64(-(1 << 53)),
		float64(9007199254740993), // decodes as 2^53
		1.5,
		new(big.Int).Lsh(big.NewInt(1), 64),
		uint64(1 << 63),
		(*ethtypes.HexInteger)(nil),
	} {
		_, err := NormalizeInt(ctx, "weight", 7, raw)
		assert.Regexp(t, "GP010500", err, "%T %v", raw, raw)
		var ge *goldapi.Error
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, goldapi.ErrPrecisionLoss, ge.Kind)
		assert.Equal(t, "weight", ge.Field)
		assert.Equal(t, uint64(7), *ge.ID)
	}
}

func TestNormalizeIntLargestExactFloat(t *testing.T) {
	v, err := NormalizeInt(context.Background(), "weight", 1, float64(1<<53-1))
	require.NoError(t, err)
	assert.Equal(t, int64(1<<53-1), v)
}

func TestNormalizeIntUnsupported(t *testing.T) {
	_, err := NormalizeInt(context.Background(), "purity", 2, true)
	assert.Regexp(t, "GP010502", err)
}

func TestNormalizeIntMalformedString(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []any{"abc", "", "0x", json.Number("1e3")} {
		_, err := NormalizeInt(ctx, "purity", 3, raw)
		assert.Regexp(t, "GP010506", err, "%T %v", raw, raw)
		var ge *goldapi.Error
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, goldapi.ErrSyncFailed, ge.Kind)
		assert.Equal(t, "purity", ge.Field)
		assert.Equal(t, uint64(3), *ge.ID)
	}
}

func TestNormalizeRecord(t *testing.T) {
	cert, err := NormalizeRecord(context.Background(), rawRecord(4, "250"))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), cert.ID)
	assert.Equal(t, int64(250000), cert.WeightMilligrams)
	assert.Equal(t, int64(250), cert.WeightGrams())
	assert.Equal(t, int64(9990), cert.PurityBasisPoints)
	assert.Equal(t, "Pueblo Viejo, Dominican Republic", cert.MineOrigin)
	assert.Equal(t, "Global Refinery, UK", cert.Refinery)
	assert.Equal(t, "London Vault C3", cert.VaultLocation)
	assert.Equal(t, int64(1700000004), cert.MintTimestamp)
	assert.Equal(t, testOwner, cert.Owner.String())
}

func TestNormalizeRecordWeightOverflow(t *testing.T) {
	// fits in int64 as grams, but not as milligrams
	_, err := NormalizeRecord(context.Background(), rawRecord(1, "9223372036854775"+"000"))
	assert.Regexp(t, "GP010500", err)
}

func TestNormalizeRecordBadShape(t *testing.T) {
	_, err := NormalizeRecord(context.Background(), &goldapi.RawRecord{ID: 1, Fields: []any{"1"}})
	assert.Regexp(t, "GP010406", err)
}

func TestNormalizeRecordBadString(t *testing.T) {
	rec := rawRecord(1, "1")
	rec.Fields[goldapi.RecordFieldRefinery] = 12
	_, err := NormalizeRecord(context.Background(), rec)
	assert.Regexp(t, "GP010504.*refinery", err)
}

func TestNormalizeRecordOwnerEncodings(t *testing.T) {
	ownerInt, ok := new(big.Int).SetString(testOwner[2:], 16)
	require.True(t, ok)
	for _, raw := range []any{
		testOwner,
		ownerInt,
		ownerInt.String(),
		json.Number(ownerInt.String()),
		*ethtypes.MustNewAddress(testOwner),
		ethtypes.MustNewAddress(testOwner),
	} {
		rec := rawRecord(1, "1")
		rec.Fields[goldapi.RecordFieldOwner] = raw
		cert, err := NormalizeRecord(context.Background(), rec)
		require.NoError(t, err, "%T", raw)
		assert.Equal(t, testOwner, cert.Owner.String())
	}

	rec := rawRecord(1, "1")
	rec.Fields[goldapi.RecordFieldOwner] = new(big.Int).Lsh(big.NewInt(1), 161)
	_, err := NormalizeRecord(context.Background(), rec)
	assert.Regexp(t, "GP010503", err)
}
