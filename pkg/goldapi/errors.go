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

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
)

type ErrorKind string

const (
	ErrNoWalletProvider    ErrorKind = "NoWalletProvider"
	ErrUserRejected        ErrorKind = "UserRejected"
	ErrGatewayUnavailable  ErrorKind = "GatewayUnavailable"
	ErrRecordNotFound      ErrorKind = "RecordNotFound"
	ErrTransactionRejected ErrorKind = "TransactionRejected"
	ErrTransactionReverted ErrorKind = "TransactionReverted"
	ErrConfirmationTimeout ErrorKind = "ConfirmationTimeout"
	ErrPrecisionLoss       ErrorKind = "PrecisionLoss"
	ErrSyncFailed          ErrorKind = "SyncFailed"
	ErrOperationInProgress ErrorKind = "OperationInProgress"
)

// Error classifies a translated error into the taxonomy the session acts on.
// Unwrap returns the underlying cause, so errors.Is checks against context
// errors or ledger errors see through the classification.
type Error struct {
	Kind  ErrorKind
	ID    *uint64
	Field string
	Cause error
	msg   error
}

func NewError(ctx context.Context, kind ErrorKind, msg i18n.ErrorMessageKey, inserts ...any) *Error {
	return &Error{Kind: kind, msg: i18n.NewError(ctx, msg, inserts...)}
}

func WrapError(ctx context.Context, kind ErrorKind, cause error, msg i18n.ErrorMessageKey, inserts ...any) *Error {
	if cause == nil {
		return NewError(ctx, kind, msg, inserts...)
	}
	return &Error{Kind: kind, Cause: cause, msg: i18n.WrapError(ctx, cause, msg, inserts...)}
}

func (e *Error) WithID(id uint64) *Error {
	e.ID = &id
	return e
}

func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

func (e *Error) Error() string {
	return e.msg.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// RPCCode reports caller-side conditions as invalid requests, and
// everything else as internal errors
func (e *Error) RPCCode() rpcbackend.RPCCode {
	switch e.Kind {
	case ErrOperationInProgress, ErrUserRejected, ErrTransactionRejected, ErrNoWalletProvider:
		return rpcbackend.RPCCodeInvalidRequest
	default:
		return rpcbackend.RPCCodeInternalError
	}
}

// KindOf returns the kind of the outermost classified error in the chain
func KindOf(err error) (ErrorKind, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return "", false
}

// IsKind reports whether any classified error in the chain has the kind
func IsKind(err error, kind ErrorKind) bool {
	for err != nil {
		var ge *Error
		if !errors.As(err, &ge) {
			return false
		}
		if ge.Kind == kind {
			return true
		}
		err = ge.Cause
	}
	return false
}

// ErrorInfo is the serializable form of the last error held by a session
type ErrorInfo struct {
	Kind    ErrorKind `json:"kind,omitempty"`
	Message string    `json:"message"`
	ID      *uint64   `json:"id,omitempty"`
	Field   string    `json:"field,omitempty"`
}

func NewErrorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	info := &ErrorInfo{Message: err.Error()}
	var ge *Error
	if errors.As(err, &ge) {
		info.Kind = ge.Kind
		info.ID = ge.ID
		info.Field = ge.Field
	}
	return info
}
