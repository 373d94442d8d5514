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

package proofs

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/hyperledger/firefly-common/pkg/i18n"

	"github.com/zcashlight/proofd/internal/log"
	"github.com/zcashlight/proofd/internal/msgs"
	"github.com/zcashlight/proofd/internal/prover"
)

// Proof kinds accepted on /proofs/generate
const (
	KindSpend  = "spend"
	KindOutput = "output"
)

type ProofRequest struct {
	Type   string                     `json:"type"`
	Params map[string]json.RawMessage `json:"params"`
}

type ProofResponse struct {
	Proof string `json:"proof,omitempty"`
	Error string `json:"error,omitempty"`
}

// Router dispatches typed proof requests to the circuit handlers. The proof kind is
// validated before any prover is acquired, so a request with a bogus type never
// touches the parameter files.
type Router struct {
	acquire func(ctx context.Context) (prover.Prover, error)
}

func NewRouter(handle *prover.Handle) *Router {
	return &Router{acquire: handle.Acquire}
}

func (r *Router) Generate(ctx context.Context, req *ProofRequest) (*ProofResponse, error) {
	switch req.Type {
	case KindSpend, KindOutput:
	default:
		return nil, i18n.NewError(ctx, msgs.MsgUnsupportedProofKind, req.Type)
	}

	p, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	log.L(ctx).Debugf("Handling %s proof request (prover from %s)", req.Type, p.Source())

	if req.Type == KindSpend {
		return r.spendProof(ctx, req.Params)
	}
	return r.outputProof(ctx, req.Params)
}

// spendProof terminates with an error naming the capability gap: producing a spend
// proof needs the note commitment tree witness and anchor, which only the light-client
// backend holds.
func (r *Router) spendProof(ctx context.Context, reqParams map[string]json.RawMessage) (*ProofResponse, error) {
	spendingKey, err := stringParam(ctx, reqParams, "spendingKey")
	if err != nil {
		return nil, err
	}
	amount, err := ParseAmount(ctx, reqParams["amount"])
	if err != nil {
		return nil, err
	}
	return nil, i18n.NewError(ctx, msgs.MsgSpendWitnessUnavailable, len(spendingKey), amount)
}

func (r *Router) outputProof(ctx context.Context, reqParams map[string]json.RawMessage) (*ProofResponse, error) {
	toAddress, err := stringParam(ctx, reqParams, "toAddress")
	if err != nil {
		return nil, err
	}
	amount, err := ParseAmount(ctx, reqParams["amount"])
	if err != nil {
		return nil, err
	}
	return nil, i18n.NewError(ctx, msgs.MsgOutputDecodeUnavailable, toAddress, amount)
}

func stringParam(ctx context.Context, reqParams map[string]json.RawMessage, name string) (string, error) {
	raw, ok := reqParams[name]
	if !ok {
		return "", i18n.NewError(ctx, msgs.MsgMissingRequiredParam, name)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		// a non-string value is treated the same as an absent one
		return "", i18n.NewError(ctx, msgs.MsgMissingRequiredParam, name)
	}
	return s, nil
}

// ParseAmount accepts both JSON encodings of an unsigned 64-bit decimal - a quoted
// string ("100000") and a bare number (100000). Negatives, fractions, non-numerics
// and anything over 2^64-1 are client faults.
func ParseAmount(ctx context.Context, raw json.RawMessage) (uint64, error) {
	if len(raw) == 0 {
		return 0, i18n.NewError(ctx, msgs.MsgMissingRequiredParam, "amount")
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return 0, i18n.NewError(ctx, msgs.MsgInvalidAmount, string(raw))
		}
		str = num.String()
	}
	amount, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, i18n.NewError(ctx, msgs.MsgInvalidAmount, str)
	}
	return amount, nil
}
