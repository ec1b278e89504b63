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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsSubsystem = "goldcert"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type Metrics interface {
	Registry() *prometheus.Registry
	ObserveSync(duration time.Duration, certificates int, err error)
	IncWrite(operation string, err error)
	IncRPC(method string)
}

type goldMetrics struct {
	registry     *prometheus.Registry
	syncDuration *prometheus.HistogramVec
	certificates prometheus.Gauge
	writes       *prometheus.CounterVec
	rpc          *prometheus.CounterVec
}

func NewMetrics() Metrics {
	m := &goldMetrics{registry: prometheus.NewRegistry()}

	m.syncDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "sync_duration_seconds",
		Help: "Duration of full certificate refreshes", Subsystem: metricsSubsystem}, []string{"outcome"})
	m.certificates = prometheus.NewGauge(prometheus.GaugeOpts{Name: "certificates",
		Help: "Certificates in the last published snapshot", Subsystem: metricsSubsystem})
	m.writes = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "writes_total",
		Help: "Ledger writes by operation and outcome", Subsystem: metricsSubsystem}, []string{"operation", "outcome"})
	m.rpc = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "rpc_total",
		Help: "JSON/RPC calls by method", Subsystem: metricsSubsystem}, []string{"method"})

	m.registry.MustRegister(m.syncDuration, m.certificates, m.writes, m.rpc)
	return m
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

func (m *goldMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSync only moves the certificate gauge for a published snapshot
func (m *goldMetrics) ObserveSync(duration time.Duration, certificates int, err error) {
	m.syncDuration.With(prometheus.Labels{"outcome": outcome(err)}).Observe(duration.Seconds())
	if err == nil {
		m.certificates.Set(float64(certificates))
	}
}

func (m *goldMetrics) IncWrite(operation string, err error) {
	m.writes.With(prometheus.Labels{"operation": operation, "outcome": outcome(err)}).Inc()
}

func (m *goldMetrics) IncRPC(method string) {
	m.rpc.With(prometheus.Labels{"method": method}).Inc()
}
