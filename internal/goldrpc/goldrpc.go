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

package goldrpc

import (
	"context"

	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	"github.com/rashidtv/gold-platform-demo/internal/rpcserver"
	"github.com/rashidtv/gold-platform-demo/pkg/goldapi"
	"github.com/rashidtv/gold-platform-demo/pkg/session"
)

type RPCMetrics interface {
	IncRPC(method string)
}

type goldRPC struct {
	session session.Session
	metrics RPCMetrics
}

// NewRPCModule exposes the session as the "gold" JSON/RPC group. Writes
// block until confirmation and the follow-up refresh have completed.
func NewRPCModule(s session.Session, metrics RPCMetrics) *rpcserver.RPCModule {
	g := &goldRPC{session: s, metrics: metrics}
	return rpcserver.NewRPCModule("gold").
		Add("gold_connect", g.counted("gold_connect", g.rpcConnect())).
		Add("gold_disconnect", g.counted("gold_disconnect", g.rpcDisconnect())).
		Add("gold_refresh", g.counted("gold_refresh", g.rpcRefresh())).
		Add("gold_mint", g.counted("gold_mint", g.rpcMint())).
		Add("gold_mintDemo", g.counted("gold_mintDemo", g.rpcMintDemo())).
		Add("gold_transfer", g.counted("gold_transfer", g.rpcTransfer())).
		Add("gold_status", g.counted("gold_status", g.rpcStatus())).
		Add("gold_overview", g.counted("gold_overview", g.rpcOverview())).
		Add("gold_listCertificates", g.counted("gold_listCertificates", g.rpcListCertificates())).
		Add("gold_provenance", g.counted("gold_provenance", g.rpcProvenance())).
		Add("gold_certificateOwner", g.counted("gold_certificateOwner", g.rpcCertificateOwner()))
}

func (g *goldRPC) counted(method string, handler rpcserver.RPCHandler) rpcserver.RPCHandler {
	if g.metrics == nil {
		return handler
	}
	return rpcserver.HandlerFunc(func(ctx context.Context, req *rpcbackend.RPCRequest) *rpcbackend.RPCResponse {
		g.metrics.IncRPC(method)
		return handler.Handle(ctx, req)
	})
}

func (g *goldRPC) rpcConnect() rpcserver.RPCHandler {
	return rpcserver.RPCMethod0(func(ctx context.Context) (*goldapi.SessionStatus, error) {
		return g.session.Connect(ctx)
	})
}

func (g *goldRPC) rpcDisconnect() rpcserver.RPCHandler {
	return rpcserver.RPCMethod0(func(ctx context.Context) (*goldapi.SessionStatus, error) {
		g.session.Disconnect(ctx)
		return g.session.Status(), nil
	})
}

func (g *goldRPC) rpcRefresh() rpcserver.RPCHandler {
	return rpcserver.RPCMethod0(func(ctx context.Context) (*goldapi.SessionStatus, error) {
		return g.session.Refresh(ctx)
	})
}

func (g *goldRPC) rpcMint() rpcserver.RPCHandler {
	return rpcserver.RPCMethod1(func(ctx context.Context, req goldapi.MintRequest) (*goldapi.TxHandle, error) {
		return g.session.RequestMint(ctx, &req)
	})
}

func (g *goldRPC) rpcMintDemo() rpcserver.RPCHandler {
	return rpcserver.RPCMethod0(func(ctx context.Context) (*goldapi.TxHandle, error) {
		return g.session.RequestMint(ctx, goldapi.DemoMintRequest())
	})
}

func (g *goldRPC) rpcTransfer() rpcserver.RPCHandler {
	return rpcserver.RPCMethod2(func(ctx context.Context, id uint64, to ethtypes.Address0xHex) (*goldapi.TxHandle, error) {
		return g.session.RequestTransfer(ctx, &goldapi.TransferRequest{ID: id, To: to})
	})
}

func (g *goldRPC) rpcStatus() rpcserver.RPCHandler {
	return rpcserver.RPCMethod0(func(ctx context.Context) (*goldapi.SessionStatus, error) {
		return g.session.Status(), nil
	})
}

func (g *goldRPC) rpcOverview() rpcserver.RPCHandler {
	return rpcserver.RPCMethod0(func(ctx context.Context) (*goldapi.Overview, error) {
		return g.session.Overview(), nil
	})
}

func (g *goldRPC) rpcListCertificates() rpcserver.RPCHandler {
	return rpcserver.RPCMethod0(func(ctx context.Context) ([]*goldapi.CertificateView, error) {
		return g.session.Certificates(), nil
	})
}

func (g *goldRPC) rpcProvenance() rpcserver.RPCHandler {
	return rpcserver.RPCMethod1(func(ctx context.Context, id uint64) (*goldapi.Provenance, error) {
		return g.session.Provenance(ctx, id)
	})
}

func (g *goldRPC) rpcCertificateOwner() rpcserver.RPCHandler {
	return rpcserver.RPCMethod1(func(ctx context.Context, id uint64) (*ethtypes.Address0xHex, error) {
		return g.session.CertificateOwner(ctx, id)
	})
}
