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

package rpcserver

import (
	"context"
	"strings"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
)

func (s *rpcServer) processRPC(ctx context.Context, rpcReq *rpcbackend.RPCRequest) (*rpcbackend.RPCResponse, bool) {
	if rpcReq.ID == nil {
		// A null ID is permitted by JSON/RPC 2.0 but we require one of any type
		err := i18n.NewError(ctx, msgs.MsgJSONRPCMissingRequestID)
		return rpcbackend.RPCErrorResponse(err, rpcReq.ID, rpcbackend.RPCCodeInvalidRequest), false
	}

	var handler RPCHandler
	group := strings.SplitN(rpcReq.Method, "_", 2)[0]
	if module := s.rpcModules[group]; module != nil {
		handler = module.methods[rpcReq.Method]
	}
	if handler == nil {
		err := i18n.NewError(ctx, msgs.MsgJSONRPCUnsupportedMethod, rpcReq.Method)
		return rpcbackend.RPCErrorResponse(err, rpcReq.ID, rpcbackend.RPCCodeInvalidRequest), false
	}

	rpcRes := handler.Handle(ctx, rpcReq)
	return rpcRes, rpcRes.Error == nil
}
