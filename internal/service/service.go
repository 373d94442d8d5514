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

package service

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hyperledger/firefly-common/pkg/i18n"

	"github.com/zcashlight/proofd/internal/confutil"
	"github.com/zcashlight/proofd/internal/httpserver"
	"github.com/zcashlight/proofd/internal/log"
	"github.com/zcashlight/proofd/internal/metrics"
	"github.com/zcashlight/proofd/internal/msgs"
	"github.com/zcashlight/proofd/internal/params"
	"github.com/zcashlight/proofd/internal/proofs"
	"github.com/zcashlight/proofd/internal/prover"
	"github.com/zcashlight/proofd/internal/txbuilder"
)

// Service is the HTTP front for proof generation. It owns no chain state: everything
// it serves is derived from the local parameter files and the request itself.
type Service struct {
	conf    *Config
	router  *proofs.Router
	builder *txbuilder.Orchestrator
	metrics *metrics.Metrics
	server  httpserver.Server
}

func New(ctx context.Context, conf *Config) (*Service, error) {
	locator := params.NewLocator(&conf.Params)
	handle := prover.NewHandle(&conf.Prover, locator)

	s := &Service{
		conf:    conf,
		router:  proofs.NewRouter(handle),
		builder: txbuilder.NewOrchestrator(handle),
	}
	if confutil.Bool(conf.Metrics.Enabled, *metrics.Defaults.Enabled) {
		s.metrics = metrics.NewMetrics()
	}

	// browser clients call this service directly, so permissive CORS is always on
	conf.HTTP.CORS.Enabled = true

	server, err := httpserver.NewServer(ctx, "proofd", &conf.HTTP, s.routes())
	if err != nil {
		return nil, err
	}
	s.server = server
	return s, nil
}

func (s *Service) Start() error {
	return s.server.Start()
}

func (s *Service) Stop() {
	s.server.Stop()
}

func (s *Service) Addr() net.Addr {
	return s.server.Addr()
}

func (s *Service) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/proofs/generate", s.generateProof).Methods(http.MethodPost)
	r.HandleFunc("/proofs/build-transaction", s.buildTransaction).Methods(http.MethodPost)
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	r.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)
	return r
}

func (s *Service) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Service) generateProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req proofs.ProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.countProof(req.Type, metrics.OutcomeClientFault)
		s.writeError(ctx, w, i18n.NewError(ctx, msgs.MsgInvalidRequestBody, err))
		return
	}
	res, err := s.router.Generate(ctx, &req)
	if err != nil {
		s.countProof(req.Type, outcomeFor(err))
		s.writeError(ctx, w, err)
		return
	}
	s.countProof(req.Type, metrics.OutcomeOK)
	s.writeJSON(ctx, w, http.StatusOK, res)
}

func (s *Service) buildTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req txbuilder.BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.countBuild(metrics.OutcomeClientFault)
		s.writeBuildError(ctx, w, i18n.NewError(ctx, msgs.MsgInvalidRequestBody, err))
		return
	}
	if err := s.builder.BuildTransaction(ctx, &req); err != nil {
		s.countBuild(outcomeFor(err))
		s.writeBuildError(ctx, w, err)
		return
	}
	s.countBuild(metrics.OutcomeOK)
	s.writeJSON(ctx, w, http.StatusOK, &txbuilder.BuildResponse{})
}

func (s *Service) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.writeError(ctx, w, i18n.NewError(ctx, msgs.MsgMethodNotAllowed, r.Method, r.URL.Path))
}

func (s *Service) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	log.L(ctx).Errorf("<-- %d: %s", status, err)
	s.writeJSON(ctx, w, status, &proofs.ProofResponse{Error: err.Error()})
}

func (s *Service) writeBuildError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	log.L(ctx).Errorf("<-- %d: %s", status, err)
	s.writeJSON(ctx, w, status, &txbuilder.BuildResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var ffe i18n.FFError
	if errors.As(err, &ffe) {
		return ffe.HTTPStatus()
	}
	return http.StatusInternalServerError
}

func (s *Service) writeJSON(ctx context.Context, w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.L(ctx).Errorf("Failed to write response: %s", err)
	}
}

// countProof clamps the type label to the known kinds so arbitrary client input never
// becomes a metric label
func (s *Service) countProof(proofType, outcome string) {
	if s.metrics == nil {
		return
	}
	switch proofType {
	case proofs.KindSpend, proofs.KindOutput:
	default:
		proofType = "invalid"
	}
	s.metrics.IncProofRequest(proofType, outcome)
}

func (s *Service) countBuild(outcome string) {
	if s.metrics != nil {
		s.metrics.IncBuildRequest(outcome)
	}
}

func outcomeFor(err error) string {
	if statusFor(err) < http.StatusInternalServerError {
		return metrics.OutcomeClientFault
	}
	return metrics.OutcomeServerFault
}
