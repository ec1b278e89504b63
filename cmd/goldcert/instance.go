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

package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"

	"github.com/rashidtv/gold-platform-demo/internal/goldnode"
	"github.com/rashidtv/gold-platform-demo/internal/log"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
)

var nodeFactory = goldnode.NewNode

type instance struct {
	configFile string

	ctx       context.Context
	cancelCtx context.CancelFunc
	signals   chan os.Signal
	stopped   atomic.Bool
	started   chan goldnode.Node
	done      chan struct{}
}

type RC int

const (
	RC_OK   RC = 0
	RC_FAIL RC = 1
)

func newInstance(configFile string) *instance {
	i := &instance{
		configFile: configFile,
		signals:    make(chan os.Signal),
		started:    make(chan goldnode.Node, 1),
		done:       make(chan struct{}),
	}
	i.ctx, i.cancelCtx = context.WithCancel(log.WithLogField(context.Background(), "pid", strconv.Itoa(os.Getpid())))
	return i
}

func (i *instance) signalHandler() {
	signal.Notify(i.signals, os.Interrupt, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	sig := <-i.signals
	if sig != nil {
		log.L(i.ctx).Infof("Stopping due to signal %s", sig)
		i.stop()
	}
}

func (i *instance) run() RC {
	defer close(i.done)
	go i.signalHandler()

	var conf goldconf.GoldConfig
	if err := goldconf.ReadAndParseYAMLFile(i.ctx, i.configFile, &conf); err != nil {
		log.L(i.ctx).Error(err.Error())
		return RC_FAIL
	}

	n := nodeFactory(i.ctx, &conf)
	// From this point need to ensure we stop the node
	defer n.Stop()
	if err := n.Start(); err != nil {
		log.L(i.ctx).Error(err.Error())
		return RC_FAIL
	}
	log.L(i.ctx).Infof("%s %s started: JSON/RPC http=%v ws=%v", programName, version, n.RPCServer().HTTPAddr(), n.RPCServer().WSAddr())
	i.started <- n

	// We're started... we just wait for the request to stop
	<-i.ctx.Done()
	return RC_OK
}

func (i *instance) stop() {
	if i.stopped.CompareAndSwap(false, true) {
		signal.Stop(i.signals)
		i.cancelCtx()
		close(i.signals)
		<-i.done
	}
}
