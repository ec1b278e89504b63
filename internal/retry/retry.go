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

package retry

import (
	"context"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/rashidtv/gold-platform-demo/internal/log"
	"github.com/rashidtv/gold-platform-demo/internal/msgs"
	"github.com/rashidtv/gold-platform-demo/pkg/confutil"
	"github.com/rashidtv/gold-platform-demo/pkg/goldconf"
)

// Retry is an exponential backoff with an optional attempt limit
type Retry struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	factor       float64
	maxAttempts  int
}

func NewRetryIndefinite(conf *goldconf.RetryConfig, defaults ...*goldconf.RetryConfig) *Retry {
	def := &goldconf.GenericRetryDefaults.RetryConfig
	if len(defaults) > 0 {
		def = defaults[0]
	}
	return &Retry{
		initialDelay: confutil.DurationMin(conf.InitialDelay, 0, *def.InitialDelay),
		maxDelay:     confutil.DurationMin(conf.MaxDelay, 0, *def.MaxDelay),
		factor:       confutil.Float64Min(conf.Factor, 1.0, *def.Factor),
	}
}

func NewRetryLimited(conf *goldconf.RetryConfigWithMax, defaults ...*goldconf.RetryConfigWithMax) *Retry {
	def := goldconf.GenericRetryDefaults
	if len(defaults) > 0 {
		def = defaults[0]
	}
	r := NewRetryIndefinite(&conf.RetryConfig, &def.RetryConfig)
	r.maxAttempts = confutil.IntMin(conf.MaxAttempts, 0, *def.MaxAttempts)
	return r
}

// Do calls fn until it succeeds, reports the error is not retryable,
// the attempts are exhausted, or the context ends.
// Context expiry returns MsgContextCanceled rather than the last error.
func (r *Retry) Do(ctx context.Context, fn func(attempt int) (retryable bool, err error)) error {
	attempt := 0
	for {
		attempt++
		retryable, err := fn(attempt)
		if err != nil {
			log.L(ctx).Debugf("%s (attempt=%d)", err, attempt)
		}
		if !retryable || err == nil || (r.maxAttempts > 0 && attempt >= r.maxAttempts) {
			return err
		}
		if err := r.WaitDelay(ctx, attempt); err != nil {
			return err
		}
	}
}

func (r *Retry) Delay(failureCount int) time.Duration {
	delay := r.initialDelay
	for i := 1; i < failureCount; i++ {
		delay = time.Duration(float64(delay) * r.factor)
		if delay >= r.maxDelay {
			return r.maxDelay
		}
	}
	return delay
}

func (r *Retry) WaitDelay(ctx context.Context, failureCount int) error {
	if failureCount <= 0 {
		return nil
	}
	delay := r.Delay(failureCount)
	log.L(ctx).Tracef("Retrying after %.2fs (failures=%d)", delay.Seconds(), failureCount)
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return i18n.NewError(ctx, msgs.MsgContextCanceled)
	}
}

// UTSetMaxAttempts is for unit tests that need an indefinite retry to give up
func (r *Retry) UTSetMaxAttempts(maxAttempts int) {
	r.maxAttempts = maxAttempts
}
