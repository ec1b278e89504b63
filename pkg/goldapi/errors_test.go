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

package goldapi

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
	"github.com/stretchr/testify/assert"
)

func TestErrorChainClassification(t *testing.T) {
	ctx := context.Background()
	cause := context.DeadlineExceeded
	inner := WrapError(ctx, ErrRecordNotFound, cause, msgs.MsgGatewayRecordNotFound, 3).WithID(3)
	outer := WrapError(ctx, ErrSyncFailed, inner, msgs.MsgSyncFailed, 3).WithID(3)

	assert.Regexp(t, "GP010501.*GP010401", outer)
	kind, ok := KindOf(outer)
	assert.True(t, ok)
	assert.Equal(t, ErrSyncFailed, kind)
	assert.True(t, IsKind(outer, ErrRecordNotFound))
	assert.False(t, IsKind(outer, ErrPrecisionLoss))
	assert.True(t, errors.Is(outer, context.DeadlineExceeded))

	wrapped := fmt.Errorf("context: %w", outer)
	kind, ok = KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ErrSyncFailed, kind)

	info := NewErrorInfo(wrapped)
	assert.Equal(t, ErrSyncFailed, info.Kind)
	assert.Equal(t, uint64(3), *info.ID)
}

func TestErrorUnclassified(t *testing.T) {
	_, ok := KindOf(fmt.Errorf("pop"))
	assert.False(t, ok)
	assert.False(t, IsKind(fmt.Errorf("pop"), ErrSyncFailed))
	assert.Nil(t, NewErrorInfo(nil))
	assert.Equal(t, &ErrorInfo{Message: "pop"}, NewErrorInfo(fmt.Errorf("pop")))
}

func TestErrorWrapNilCause(t *testing.T) {
	err := WrapError(context.Background(), ErrPrecisionLoss, nil, msgs.MsgSyncPrecisionLoss, "weight", 1, "1e30").WithField("weight")
	assert.Regexp(t, "GP010500", err)
	assert.Nil(t, err.Unwrap())
	assert.Equal(t, "weight", err.Field)
}

func TestErrorRPCCodes(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, rpcbackend.RPCCodeInvalidRequest, NewError(ctx, ErrOperationInProgress, msgs.MsgSessionOperationInProgress, "refresh", StateSyncing).RPCCode())
	assert.Equal(t, rpcbackend.RPCCodeInternalError, NewError(ctx, ErrGatewayUnavailable, msgs.MsgGatewayUnavailable, "eth_call").RPCCode())
}

func TestSessionStateBusy(t *testing.T) {
	assert.False(t, StateDisconnected.Busy())
	assert.False(t, StateReady.Busy())
	assert.True(t, StateConnecting.Busy())
	assert.True(t, StateSyncing.Busy())
	assert.True(t, StateMinting.Busy())
	assert.True(t, StateTransferring.Busy())
}

func TestDemoMintRequest(t *testing.T) {
	req := DemoMintRequest()
	assert.Equal(t, uint64(250), req.WeightGrams)
	assert.Equal(t, uint64(9990), req.PurityBasisPoints)
	assert.Equal(t, "London Vault C3", req.VaultLocation)
	c := &Certificate{WeightMilligrams: 250000}
	assert.Equal(t, int64(250), c.WeightGrams())
}
