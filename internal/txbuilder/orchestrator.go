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

package txbuilder

import (
	"context"
	"encoding/json"

	"github.com/hyperledger/firefly-common/pkg/i18n"

	"github.com/zcashlight/proofd/internal/log"
	"github.com/zcashlight/proofd/internal/msgs"
	"github.com/zcashlight/proofd/internal/proofs"
	"github.com/zcashlight/proofd/internal/prover"
)

// BuildRequest uses pointer fields for the required inputs so an absent field is
// distinguishable from a deliberately empty string - an empty address is a valid
// request that still reaches the terminal stage, with its preview clamped.
type BuildRequest struct {
	SpendingKey          *string `json:"spendingKey"`
	FromAddress          *string `json:"fromAddress"`
	ToAddress            *string `json:"toAddress"`
	Amount               *string `json:"amount"`
	Memo                 *string `json:"memo"`
	LightwalletdEndpoint string  `json:"lightwalletdEndpoint,omitempty"`
}

type BuildResponse struct {
	RawTransaction string `json:"rawTransaction,omitempty"`
	Txid           string `json:"txid,omitempty"`
	Error          string `json:"error,omitempty"`
}

type stage string

const (
	stageReceived         stage = "received"
	stageProverAcquired   stage = "proverAcquired"
	stageWitnessGathering stage = "witnessGathering"
)

// Orchestrator walks a build request through its staged pipeline. The pipeline
// deliberately terminates at witnessGathering: building a shielded transaction needs
// chain state (compact blocks, the note commitment tree, per-note witnesses) that
// lives in the light-client backend, so every request ends with a response that
// documents that capability chain rather than pretending to build.
type Orchestrator struct {
	acquire func(ctx context.Context) (prover.Prover, error)
}

func NewOrchestrator(handle *prover.Handle) *Orchestrator {
	return &Orchestrator{acquire: handle.Acquire}
}

func (o *Orchestrator) BuildTransaction(ctx context.Context, req *BuildRequest) error {
	run := &buildRun{o: o, req: req}
	for s := stageReceived; ; {
		log.L(ctx).Debugf("Build stage: %s", s)
		next, err := run.execute(ctx, s)
		if err != nil {
			return err
		}
		s = next
	}
}

type buildRun struct {
	o      *Orchestrator
	req    *BuildRequest
	prover prover.Prover
}

func (run *buildRun) execute(ctx context.Context, s stage) (stage, error) {
	switch s {
	case stageReceived:
		return run.received(ctx)
	case stageProverAcquired:
		return run.proverAcquired(ctx)
	default:
		return run.witnessGathering(ctx)
	}
}

func (run *buildRun) received(ctx context.Context) (stage, error) {
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"spendingKey", run.req.SpendingKey},
		{"fromAddress", run.req.FromAddress},
		{"toAddress", run.req.ToAddress},
		{"amount", run.req.Amount},
		{"memo", run.req.Memo},
	} {
		if f.value == nil {
			return "", i18n.NewError(ctx, msgs.MsgMissingRequiredField, f.name)
		}
	}
	rawAmount, _ := json.Marshal(*run.req.Amount)
	if _, err := proofs.ParseAmount(ctx, rawAmount); err != nil {
		return "", err
	}
	return stageProverAcquired, nil
}

func (run *buildRun) proverAcquired(ctx context.Context) (stage, error) {
	p, err := run.o.acquire(ctx)
	if err != nil {
		return "", err
	}
	run.prover = p
	log.L(ctx).Infof("Prover acquired from %s for build request", p.Source())
	return stageWitnessGathering, nil
}

// witnessGathering is the terminal stage. It never succeeds.
func (run *buildRun) witnessGathering(ctx context.Context) (stage, error) {
	return "", i18n.NewError(ctx, msgs.MsgBuildNotImplemented,
		len(*run.req.SpendingKey),
		preview(*run.req.FromAddress),
		preview(*run.req.ToAddress),
		*run.req.Amount,
		len(*run.req.Memo),
	)
}

// preview truncates an address for logging without assuming a minimum length
func preview(s string) string {
	if len(s) > 20 {
		return s[:20]
	}
	return s
}
