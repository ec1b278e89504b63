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

package goldnode

import (
	"context"
	"fmt"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/rashidtv/gold-platform-demo/internal/goldrpc"
	"github.com/rashidtv/gold-platform-demo/internal/ledgersim"
	"github.com/rashidtv/gold-platform-demo/internal/log"
	"github.com/rashidtv/gold-platform-demo/internal/metrics"
	"github.com/rashidtv/gold-platform-demo/internal/metricsserver"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
	"github.com/rashidtv/gold-platform-demo/internal/rpcserver"
	"github.com/rashidtv/gold-platform-demo/internal/wallet"
	"github.com/rashidtv/gold-platform-demo/pkg/certsync"
	"github.com/rashidtv/gold-platform-demo/pkg/confutil"
	"github.com/rashidtv/gold-platform-demo/pkg/ethclient"
	"github.com/rashidtv/gold-platform-demo/pkg/gateway"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
	"github.com/rashidtv/gold-platform-demo/pkg/session"
)

type Node interface {
	Start() error
	Stop()
	Session() session.Session
	RPCServer() rpcserver.Server
	// Simulator is nil unless the in-process ledger is enabled
	Simulator() ledgersim.Simulator
	MetricsServer() metricsserver.MetricsServer
}

// things that have a running component that is active in the background and hence "stops"
type stoppable interface {
	Stop()
}

// things that are services used in various places, but need to cleanly disconnect all connections and hence "close"
type closeable interface {
	Close()
}

type node struct {
	bgCtx context.Context
	conf  *goldconf.GoldConfig

	metrics       metrics.Metrics
	simulator     ledgersim.Simulator
	ethClient     ethclient.EthClient
	session       session.Session
	rpcServer     rpcserver.Server
	metricsServer metricsserver.MetricsServer

	// in start order, so they can be unwound in reverse
	started []namedStoppable
	opened  []closeable
}

type namedStoppable struct {
	name string
	stoppable
}

func NewNode(bgCtx context.Context, conf *goldconf.GoldConfig) Node {
	log.InitConfig(&conf.Log)
	return &node{
		bgCtx:   bgCtx,
		conf:    conf,
		metrics: metrics.NewMetrics(),
	}
}

func (n *node) addIfStarted(name string, s stoppable, err error) error {
	if err != nil {
		return i18n.WrapError(n.bgCtx, err, msgs.MsgNodeComponentStartError, name)
	}
	n.started = append(n.started, namedStoppable{name: name, stoppable: s})
	return nil
}

// Start brings up the components leaf first: the optional simulator, the
// ledger connection, the session over it, and finally the servers that
// expose it. On error the caller must still call Stop.
func (n *node) Start() (err error) {
	ctx := n.bgCtx

	if confutil.Bool(n.conf.Simulator.Enabled, *goldconf.SimulatorDefaults.Enabled) {
		n.simulator, err = ledgersim.NewSimulator(ctx, &n.conf.Simulator, n.conf.Ledger.ContractAddress)
		if err == nil {
			err = n.simulator.Start()
		}
		if err = n.addIfStarted("simulator", n.simulator, err); err != nil {
			return err
		}
		if n.conf.Ledger.HTTP.URL == "" && n.conf.Ledger.WS.URL == "" {
			n.conf.Ledger.HTTP.URL = fmt.Sprintf("http://%s", n.simulator.Addr())
			log.L(ctx).Infof("Ledger connection defaulted to simulator at %s", n.conf.Ledger.HTTP.URL)
		}
	}

	if n.ethClient, err = ethclient.NewEthClient(ctx, &n.conf.Ledger); err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgNodeComponentStartError, "ethClient")
	}
	n.opened = append(n.opened, n.ethClient)

	w, err := wallet.NewWallet(ctx, &n.conf.Wallet)
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgNodeComponentStartError, "wallet")
	}

	gw, err := gateway.NewGateway(ctx, &n.conf.Ledger, &n.conf.Confirmation, n.ethClient, w)
	if err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgNodeComponentStartError, "gateway")
	}
	n.session = session.NewSession(gw, certsync.NewSynchronizer(&n.conf.Sync, n.metrics), n.metrics)

	n.rpcServer, err = rpcserver.NewServer(ctx, &n.conf.RPCServer)
	if err == nil {
		n.rpcServer.Register(goldrpc.NewRPCModule(n.session, n.metrics))
		err = n.rpcServer.Start()
	}
	if err = n.addIfStarted("rpcServer", n.rpcServer, err); err != nil {
		return err
	}

	n.metricsServer, err = metricsserver.NewMetricsServer(ctx, n.metrics.Registry(), &n.conf.MetricsServer)
	if err == nil {
		err = n.metricsServer.Start()
	}
	return n.addIfStarted("metricsServer", n.metricsServer, err)
}

func (n *node) Stop() {
	for i := len(n.started) - 1; i >= 0; i-- {
		log.L(n.bgCtx).Debugf("Stopping %s", n.started[i].name)
		n.started[i].Stop()
	}
	n.started = nil
	for _, c := range n.opened {
		c.Close()
	}
	n.opened = nil
}

func (n *node) Session() session.Session {
	return n.session
}

func (n *node) RPCServer() rpcserver.Server {
	return n.rpcServer
}

func (n *node) Simulator() ledgersim.Simulator {
	return n.simulator
}

func (n *node) MetricsServer() metricsserver.MetricsServer {
	return n.metricsServer
}
