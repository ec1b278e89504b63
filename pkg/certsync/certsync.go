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
	"sort"
	"sync"
	"time"

	"github.com/rashidtv/gold-platform-demo/internal/log"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
	"github.com/rashidtv/gold-platform-demo/pkg/confutil"
	"github.com/rashidtv/gold-platform-demo/pkg/gateway"
	"github.com/rashidtv/gold-platform-demo/pkg/goldapi"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
	"golang.org/x/sync/errgroup"
)

type SyncMetrics interface {
	ObserveSync(duration time.Duration, certificates int, err error)
}

type Synchronizer interface {
	Refresh(ctx context.Context, reader gateway.RecordReader) ([]*goldapi.Certificate, error)
}

type synchronizer struct {
	maxConcurrentFetches int
	metrics              SyncMetrics
}

// NewSynchronizer accepts nil metrics
func NewSynchronizer(conf *goldconf.SyncConfig, metrics SyncMetrics) Synchronizer {
	return &synchronizer{
		maxConcurrentFetches: confutil.IntMin(conf.MaxConcurrentFetches, 1, *goldconf.SyncDefaults.MaxConcurrentFetches),
		metrics:              metrics,
	}
}

// Refresh reads the total, then every record in [0,total), and returns the
// certificates ordered by id. Nothing is returned unless every record was
// fetched and normalized.
func (s *synchronizer) Refresh(ctx context.Context, reader gateway.RecordReader) (certs []*goldapi.Certificate, err error) {
	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveSync(time.Since(startTime), len(certs), err)
		}
	}()

	total, err := reader.GetTotalCount(ctx)
	if err != nil {
		return nil, goldapi.WrapError(ctx, goldapi.ErrSyncFailed, err, msgs.MsgSyncTotalFailed)
	}
	log.L(ctx).Debugf("Refreshing %d certificates (concurrency=%d)", total, s.maxConcurrentFetches)

	var lock sync.Mutex
	fetched := make([]*goldapi.Certificate, 0, min(total, 1024))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrentFetches)
	for id := uint64(0); id < total && gCtx.Err() == nil; id++ {
		g.Go(func() error {
			cert, err := s.fetch(gCtx, reader, id)
			if err != nil {
				return err
			}
			lock.Lock()
			fetched = append(fetched, cert)
			lock.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.L(ctx).Errorf("Refresh of %d certificates failed: %s", total, err)
		return nil, err
	}
	// a cancelled context can stop the loop before any fetch fails
	if err := ctx.Err(); err != nil {
		return nil, goldapi.WrapError(ctx, goldapi.ErrSyncFailed, err, msgs.MsgSyncTotalFailed)
	}

	sort.Slice(fetched, func(i, j int) bool { return fetched[i].ID < fetched[j].ID })
	checkContiguous(ctx, fetched, total)
	log.L(ctx).Infof("Refreshed %d certificates in %s", len(fetched), time.Since(startTime))
	return fetched, nil
}

// fetch classifies a gateway failure as SyncFailed for the id. Normalization
// errors keep their own classification.
func (s *synchronizer) fetch(ctx context.Context, reader gateway.RecordReader, id uint64) (*goldapi.Certificate, error) {
	raw, err := reader.GetRecord(ctx, id)
	if err != nil {
		return nil, goldapi.WrapError(ctx, goldapi.ErrSyncFailed, err, msgs.MsgSyncFailed, id).WithID(id)
	}
	return NormalizeRecord(ctx, raw)
}

// checkContiguous warns on gaps and duplicates against [0,total)
func checkContiguous(ctx context.Context, certs []*goldapi.Certificate, total uint64) {
	expected := uint64(0)
	for i, cert := range certs {
		switch {
		case i > 0 && cert.ID == certs[i-1].ID:
			log.L(ctx).Warnf("Duplicate certificate id %d in refresh", cert.ID)
			continue
		case cert.ID > expected:
			log.L(ctx).Warnf("Gap in certificate ids: %d-%d missing", expected, cert.ID-1)
		}
		expected = cert.ID + 1
	}
	if expected < total {
		log.L(ctx).Warnf("Gap in certificate ids: %d-%d missing", expected, total-1)
	}
}
