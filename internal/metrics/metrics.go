// Copyright © 2025 The proofd authors
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zcashlight/proofd/internal/confutil"
)

type Config struct {
	Enabled *bool `json:"enabled"`
}

var Defaults = &Config{
	Enabled: confutil.P(true),
}

// Outcome labels for request counters
const (
	OutcomeOK          = "ok"
	OutcomeClientFault = "client_fault"
	OutcomeServerFault = "server_fault"
)

type Metrics struct {
	registry      *prometheus.Registry
	proofRequests *prometheus.CounterVec
	buildRequests *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		proofRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "proofd",
			Name:      "proof_requests_total",
			Help:      "Proof generation requests by proof type and outcome",
		}, []string{"type", "outcome"}),
		buildRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "proofd",
			Name:      "build_requests_total",
			Help:      "Transaction build requests by outcome",
		}, []string{"outcome"}),
	}
	registry.MustRegister(
		m.proofRequests,
		m.buildRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) IncProofRequest(proofType, outcome string) {
	m.proofRequests.WithLabelValues(proofType, outcome).Inc()
}

func (m *Metrics) IncBuildRequest(outcome string) {
	m.buildRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
