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
	"io"
	"time"
	"unicode"

	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	"github.com/rashidtv/gold-platform-demo/internal/log"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
)

type handlerResult struct {
	isOK bool
	res  any
}

func (s *rpcServer) rpcHandler(ctx context.Context, r io.Reader) handlerResult {
	b, err := io.ReadAll(r)
	if err != nil {
		return s.replyRPCParseError(ctx, b, err)
	}

	if log.IsTraceEnabled() {
		log.L(ctx).Tracef("RPC[Server] --> %s", b)
	}

	if s.sniffFirstByte(b) == '[' {
		var rpcArray []*rpcbackend.RPCRequest
		err := json.Unmarshal(b, &rpcArray)
		if err != nil || len(rpcArray) == 0 {
			log.L(ctx).Errorf("Bad RPC array received %s", b)
			return s.replyRPCParseError(ctx, b, err)
		}
		batchRes, isOK := s.handleRPCBatch(ctx, rpcArray)
		return handlerResult{isOK: isOK, res: batchRes}
	}

	var rpcRequest rpcbackend.RPCRequest
	if err := json.Unmarshal(b, &rpcRequest); err != nil {
		return s.replyRPCParseError(ctx, b, err)
	}
	res, isOK := s.processLogged(ctx, -1, &rpcRequest)
	return handlerResult{isOK: isOK, res: res}
}

func (s *rpcServer) processLogged(ctx context.Context, batchIdx int, rpcRequest *rpcbackend.RPCRequest) (*rpcbackend.RPCResponse, bool) {
	startTime := time.Now()
	log.L(ctx).Debugf("RPC-server[%s] (b=%d) --> %s", rpcRequest.ID, batchIdx, rpcRequest.Method)
	res, isOK := s.processRPC(ctx, rpcRequest)
	durationMS := float64(time.Since(startTime)) / float64(time.Millisecond)
	if res.Error != nil {
		log.L(ctx).Errorf("RPC-server[%s] (b=%d) <-- %s [%.2fms]: %s", rpcRequest.ID, batchIdx, rpcRequest.Method, durationMS, res.Error.Message)
	} else {
		log.L(ctx).Debugf("RPC-server[%s] (b=%d) <-- %s [%.2fms]", rpcRequest.ID, batchIdx, rpcRequest.Method, durationMS)
	}
	return res, isOK
}

func (s *rpcServer) replyRPCParseError(ctx context.Context, b []byte, err error) handlerResult {
	log.L(ctx).Errorf("Request could not be parsed (err=%v): %s", err, b)
	return handlerResult{
		isOK: false,
		res: rpcbackend.RPCErrorResponse(
			i18n.NewError(ctx, msgs.MsgJSONRPCInvalidRequest),
			fftypes.JSONAnyPtr(`"1"`),
			rpcbackend.RPCCodeInvalidRequest,
		),
	}
}

func (s *rpcServer) sniffFirstByte(data []byte) byte {
	sniffLen := len(data)
	if sniffLen > 100 {
		sniffLen = 100
	}
	for _, b := range data[0:sniffLen] {
		if !unicode.IsSpace(rune(b)) {
			return b
		}
	}
	return 0x00
}

func (s *rpcServer) handleRPCBatch(ctx context.Context, rpcArray []*rpcbackend.RPCRequest) ([]*rpcbackend.RPCResponse, bool) {
	rpcResponses := make([]*rpcbackend.RPCResponse, len(rpcArray))
	results := make(chan bool)
	for i, rpcRequest := range rpcArray {
		go func(i int, rpcRequest *rpcbackend.RPCRequest) {
			res, ok := s.processLogged(ctx, i, rpcRequest)
			rpcResponses[i] = res
			results <- ok
		}(i, rpcRequest)
	}
	failCount := 0
	for range rpcResponses {
		if ok := <-results; !ok {
			failCount++
		}
	}
	// The HTTP status is only a failure if every request in the batch failed
	return rpcResponses, failCount != len(rpcArray)
}
