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
	"encoding/json"
	"errors"

	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
)

// RPCHandler is built with RPCMethod0 ... RPCMethod3, which use generics to
// map the JSON parameters and result to the types of the implementation
type RPCHandler interface {
	Handle(ctx context.Context, req *rpcbackend.RPCRequest) *rpcbackend.RPCResponse
}

// ErrorCoder can be implemented by errors returned from methods, to control
// the JSON/RPC error code of the response
type ErrorCoder interface {
	RPCCode() rpcbackend.RPCCode
}

func HandlerFunc(fn func(ctx context.Context, req *rpcbackend.RPCRequest) *rpcbackend.RPCResponse) RPCHandler {
	return rpcHandlerFunc(fn)
}

type rpcHandlerFunc func(ctx context.Context, req *rpcbackend.RPCRequest) *rpcbackend.RPCResponse

func (hf rpcHandlerFunc) Handle(ctx context.Context, req *rpcbackend.RPCRequest) *rpcbackend.RPCResponse {
	return hf(ctx, req)
}

func RPCMethod0[R any](impl func(ctx context.Context) (R, error)) RPCHandler {
	return HandlerFunc(func(ctx context.Context, req *rpcbackend.RPCRequest) *rpcbackend.RPCResponse {
		var result R
		code, err := parseParams(ctx, req)
		if err == nil {
			result, err = impl(ctx)
		}
		return mapResponse(ctx, req, result, code, err)
	})
}

func RPCMethod1[R any, P0 any](impl func(ctx context.Context, param0 P0) (R, error)) RPCHandler {
	return HandlerFunc(func(ctx context.Context, req *rpcbackend.RPCRequest) *rpcbackend.RPCResponse {
		var result R
		param0 := new(P0)
		code, err := parseParams(ctx, req, param0)
		if err == nil {
			result, err = impl(ctx, *param0)
		}
		return mapResponse(ctx, req, result, code, err)
	})
}

func RPCMethod2[R any, P0 any, P1 any](impl func(ctx context.Context, param0 P0, param1 P1) (R, error)) RPCHandler {
	return HandlerFunc(func(ctx context.Context, req *rpcbackend.RPCRequest) *rpcbackend.RPCResponse {
		var result R
		param0 := new(P0)
		param1 := new(P1)
		code, err := parseParams(ctx, req, param0, param1)
		if err == nil {
			result, err = impl(ctx, *param0, *param1)
		}
		return mapResponse(ctx, req, result, code, err)
	})
}

func RPCMethod3[R any, P0 any, P1 any, P2 any](impl func(ctx context.Context, param0 P0, param1 P1, param2 P2) (R, error)) RPCHandler {
	return HandlerFunc(func(ctx context.Context, req *rpcbackend.RPCRequest) *rpcbackend.RPCResponse {
		var result R
		param0 := new(P0)
		param1 := new(P1)
		param2 := new(P2)
		code, err := parseParams(ctx, req, param0, param1, param2)
		if err == nil {
			result, err = impl(ctx, *param0, *param1, *param2)
		}
		return mapResponse(ctx, req, result, code, err)
	})
}

func parseParams(ctx context.Context, req *rpcbackend.RPCRequest, params ...any) (rpcbackend.RPCCode, error) {
	if len(req.Params) != len(params) {
		return rpcbackend.RPCCodeInvalidRequest, i18n.NewError(ctx, msgs.MsgJSONRPCIncorrectParamCount, req.Method, len(params), len(req.Params))
	}
	for i := range params {
		if err := json.Unmarshal(req.Params[i].Bytes(), params[i]); err != nil {
			return rpcbackend.RPCCodeInvalidRequest, i18n.NewError(ctx, msgs.MsgJSONRPCInvalidParam, req.Method, i, err)
		}
	}
	return 0, nil
}

func mapResponse(ctx context.Context, req *rpcbackend.RPCRequest, result any, code rpcbackend.RPCCode, err error) *rpcbackend.RPCResponse {
	if err == nil {
		b, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			err = i18n.NewError(ctx, msgs.MsgJSONRPCResultSerialization, req.Method, marshalErr)
		} else {
			return &rpcbackend.RPCResponse{
				JSONRpc: "2.0",
				ID:      req.ID,
				Result:  fftypes.JSONAnyPtrBytes(b),
			}
		}
	}
	if code == 0 {
		var coder ErrorCoder
		if errors.As(err, &coder) {
			code = coder.RPCCode()
		} else {
			code = rpcbackend.RPCCodeInternalError
		}
	}
	return rpcbackend.RPCErrorResponse(err, req.ID, code)
}
