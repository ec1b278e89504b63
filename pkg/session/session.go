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
	"sync"

	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/rashidtv/gold-platform-demo/internal/log"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
	"github.com/rashidtv/gold-platform-demo/pkg/certsync"
	"github.com/rashidtv/gold-platform-demo/pkg/gateway"
	"github.com/rashidtv/gold-platform-demo/pkg/goldapi"
)

const (
	OpConnect  = "connect"
	OpRefresh  = "refresh"
	OpMint     = "mint"
	OpTransfer = "transfer"
)

type WriteMetrics interface {
	IncWrite(operation string, err error)
}

// Session is the single owned handle over the connected account and the
// published certificate snapshot. Operations are rejected, rather than
// queued, while another is in flight.
type Session interface {
	Connect(ctx context.Context) (*goldapi.SessionStatus, error)
	Disconnect(ctx context.Context)
	Refresh(ctx context.Context) (*goldapi.SessionStatus, error)
	RequestMint(ctx context.Context, req *goldapi.MintRequest) (*goldapi.TxHandle, error)
	RequestTransfer(ctx context.Context, req *goldapi.TransferRequest) (*goldapi.TxHandle, error)
	CertificateOwner(ctx context.Context, id uint64) (*ethtypes.Address0xHex, error)

	Status() *goldapi.SessionStatus
	Snapshot() []*goldapi.Certificate
	Overview() *goldapi.Overview
	Certificates() []*goldapi.CertificateView
	Provenance(ctx context.Context, id uint64) (*goldapi.Provenance, error)
}

type session struct {
	gateway      gateway.Gateway
	synchronizer certsync.Synchronizer
	metrics      WriteMetrics

	mux        sync.Mutex
	state      goldapi.SessionState
	generation uint64
	conn       *gateway.Connection
	snapshot   []*goldapi.Certificate
	lastSynced *fftypes.FFTime
	lastError  error
	lastTx     *goldapi.TxHandle
}

// NewSession accepts nil metrics
func NewSession(gw gateway.Gateway, synchronizer certsync.Synchronizer, metrics WriteMetrics) Session {
	return &session{
		gateway:      gw,
		synchronizer: synchronizer,
		metrics:      metrics,
		state:        goldapi.StateDisconnected,
	}
}

// begin moves into the busy state for the operation, returning the
// generation the result must match to be applied
func (s *session) begin(ctx context.Context, op string, busy goldapi.SessionState, from ...goldapi.SessionState) (uint64, *gateway.Connection, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.state.Busy() {
		log.L(ctx).Warnf("Rejecting %s while %s", op, s.state)
		return 0, nil, goldapi.NewError(ctx, goldapi.ErrOperationInProgress, msgs.MsgSessionOperationInProgress, op, s.state)
	}
	allowed := false
	for _, state := range from {
		allowed = allowed || s.state == state
	}
	if !allowed {
		return 0, nil, goldapi.NewError(ctx, goldapi.ErrNoWalletProvider, msgs.MsgSessionNotReady, op, s.state)
	}
	log.L(ctx).Debugf("Session %s -> %s (generation=%d)", s.state, busy, s.generation)
	s.state = busy
	return s.generation, s.conn, nil
}

// complete applies the outcome of an operation if the session has not been
// reset since it began. The next state is ready unless apply sets another.
func (s *session) complete(ctx context.Context, gen uint64, op string, opErr error, apply func()) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if gen != s.generation {
		log.L(ctx).Warnf("Discarding result of %s from generation %d (current=%d): err=%v", op, gen, s.generation, opErr)
		if opErr != nil {
			return i18n.WrapError(ctx, opErr, msgs.MsgSessionDiscarded, op)
		}
		return i18n.NewError(ctx, msgs.MsgSessionDiscarded, op)
	}
	s.state = goldapi.StateReady
	s.lastError = opErr
	if apply != nil {
		apply()
	}
	log.L(ctx).Debugf("Session %s completed -> %s (err=%v)", op, s.state, opErr)
	return opErr
}

// Connect requests an account from the wallet then runs the initial
// synchronization. A failure of that first refresh leaves the session
// connected, with the error held in the status.
func (s *session) Connect(ctx context.Context) (*goldapi.SessionStatus, error) {
	gen, _, err := s.begin(ctx, OpConnect, goldapi.StateConnecting, goldapi.StateDisconnected, goldapi.StateReady)
	if err != nil {
		return nil, err
	}

	conn, connErr := s.gateway.Connect(ctx)
	if err := s.complete(ctx, gen, OpConnect, connErr, func() {
		if connErr != nil {
			s.state = goldapi.StateDisconnected
			s.conn = nil
			return
		}
		s.conn = conn
		s.state = goldapi.StateSyncing
	}); err != nil {
		return nil, err
	}

	_ = s.syncAndPublish(ctx, gen)
	return s.Status(), nil
}

// Disconnect is accepted in any state. In-flight operations complete
// against the ledger, but their results are discarded.
func (s *session) Disconnect(ctx context.Context) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.generation++
	log.L(ctx).Infof("Disconnecting from state %s (generation=%d)", s.state, s.generation)
	s.state = goldapi.StateDisconnected
	s.conn = nil
	s.snapshot = nil
	s.lastSynced = nil
	s.lastError = nil
	s.lastTx = nil
}

func (s *session) Refresh(ctx context.Context) (*goldapi.SessionStatus, error) {
	gen, _, err := s.begin(ctx, OpRefresh, goldapi.StateSyncing, goldapi.StateReady)
	if err != nil {
		return nil, err
	}
	if err := s.syncAndPublish(ctx, gen); err != nil {
		return nil, err
	}
	return s.Status(), nil
}

// syncAndPublish replaces the snapshot only when the whole refresh succeeds
func (s *session) syncAndPublish(ctx context.Context, gen uint64) error {
	certs, err := s.synchronizer.Refresh(ctx, s.gateway)
	return s.complete(ctx, gen, OpRefresh, err, func() {
		if err == nil {
			s.snapshot = certs
			s.lastSynced = fftypes.Now()
		}
	})
}

// RequestMint submits the mint, waits for confirmation, and then always
// refreshes the full snapshot. The handle is returned once the transaction
// is confirmed, even if the follow-up refresh fails.
func (s *session) RequestMint(ctx context.Context, req *goldapi.MintRequest) (*goldapi.TxHandle, error) {
	return s.write(ctx, OpMint, goldapi.StateMinting, func(conn *gateway.Connection) (*goldapi.TxHandle, error) {
		return s.gateway.SubmitMint(ctx, conn, req)
	})
}

// RequestTransfer follows the same submit, confirm and refresh cycle as a
// mint. A missing request fails before the session changes state.
func (s *session) RequestTransfer(ctx context.Context, req *goldapi.TransferRequest) (*goldapi.TxHandle, error) {
	if req == nil {
		return nil, goldapi.NewError(ctx, goldapi.ErrTransactionReverted, msgs.MsgGatewayInvalidTransfer, "missing request")
	}
	return s.write(ctx, OpTransfer, goldapi.StateTransferring, func(conn *gateway.Connection) (*goldapi.TxHandle, error) {
		return s.gateway.TransferCertificate(ctx, conn, req.ID, req.To)
	})
}

func (s *session) write(ctx context.Context, op string, busy goldapi.SessionState, submit func(conn *gateway.Connection) (*goldapi.TxHandle, error)) (*goldapi.TxHandle, error) {
	gen, conn, err := s.begin(ctx, op, busy, goldapi.StateReady)
	if err != nil {
		return nil, err
	}
	ctx = log.WithLogField(ctx, "op", op)

	tx, writeErr := submit(conn)
	if writeErr == nil {
		_, writeErr = s.gateway.AwaitConfirmation(ctx, tx)
	}
	if s.metrics != nil {
		s.metrics.IncWrite(op, writeErr)
	}
	if err := s.complete(ctx, gen, op, writeErr, func() {
		if tx != nil {
			s.lastTx = tx
		}
		if writeErr == nil {
			s.state = goldapi.StateSyncing
		}
	}); err != nil {
		return nil, err
	}
	return tx, s.syncAndPublish(ctx, gen)
}

// CertificateOwner reads the current owner straight from the ledger,
// without touching the snapshot
func (s *session) CertificateOwner(ctx context.Context, id uint64) (*ethtypes.Address0xHex, error) {
	return s.gateway.CertificateOwner(ctx, id)
}

func (s *session) Status() *goldapi.SessionStatus {
	s.mux.Lock()
	defer s.mux.Unlock()
	status := &goldapi.SessionStatus{
		State:            s.state,
		CertificateCount: len(s.snapshot),
		LastSynced:       s.lastSynced,
		LastError:        goldapi.NewErrorInfo(s.lastError),
		LastTransaction:  s.lastTx,
	}
	if s.conn != nil {
		account := s.conn.Account
		status.Account = &account
		status.AccountDisplay = AbbreviateAddress(account.String())
	}
	return status
}

// Snapshot returns copies of the published certificates, so callers cannot
// alter the collection a later read will see
func (s *session) Snapshot() []*goldapi.Certificate {
	s.mux.Lock()
	defer s.mux.Unlock()
	certs := make([]*goldapi.Certificate, len(s.snapshot))
	for i, c := range s.snapshot {
		cp := *c
		certs[i] = &cp
	}
	return certs
}
