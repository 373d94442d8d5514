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
	"fmt"
	"testing"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcashlight/proofd/internal/prover"
)

type mockProver struct{ source string }

func (m *mockProver) SpendProof(ctx context.Context, witness []byte) ([]byte, error) {
	return nil, fmt.Errorf("not invoked in these tests")
}
func (m *mockProver) OutputProof(ctx context.Context, witness []byte) ([]byte, error) {
	return nil, fmt.Errorf("not invoked in these tests")
}
func (m *mockProver) Source() string { return m.source }

func newTestRouter(t *testing.T) (*Router, *int) {
	acquisitions := 0
	r := &Router{
		acquire: func(ctx context.Context) (prover.Prover, error) {
			acquisitions++
			return &mockProver{source: "/test/params"}, nil
		},
	}
	return r, &acquisitions
}

func rawParams(t *testing.T, jsonParams string) map[string]json.RawMessage {
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(jsonParams), &m))
	return m
}

func TestGenerateUnsupportedKindNeverAcquiresProver(t *testing.T) {
	r, acquisitions := newTestRouter(t)

	for _, kind := range []string{"", "Spend", "SPEND", "sprout", "groth16"} {
		_, err := r.Generate(context.Background(), &ProofRequest{Type: kind})
		require.Regexp(t, "ZP100011", err)
		assert.Regexp(t, fmt.Sprintf("Invalid proof type: %s", kind), err)
	}
	assert.Equal(t, 0, *acquisitions)
}

func TestGenerateProverAcquisitionFailureSurfaces(t *testing.T) {
	r := &Router{
		acquire: func(ctx context.Context) (prover.Prover, error) {
			return nil, fmt.Errorf("pop")
		},
	}
	_, err := r.Generate(context.Background(), &ProofRequest{
		Type:   KindSpend,
		Params: rawParams(t, `{"spendingKey":"sk","amount":"1"}`),
	})
	require.Regexp(t, "pop", err)
}

func TestGenerateSpendStructuralLimitation(t *testing.T) {
	r, acquisitions := newTestRouter(t)

	res, err := r.Generate(context.Background(), &ProofRequest{
		Type:   KindSpend,
		Params: rawParams(t, `{"spendingKey":"secret-extended-key-main1q0aaaaaa","amount":"100000"}`),
	})
	assert.Nil(t, res)
	require.Regexp(t, "ZP100020", err)
	assert.Regexp(t, "note commitment tree witness", err)
	assert.Regexp(t, "spendingKey \\(33 chars\\), amount=100000", err)
	assert.Equal(t, 1, *acquisitions)
}

func TestGenerateOutputStructuralLimitation(t *testing.T) {
	r, _ := newTestRouter(t)

	res, err := r.Generate(context.Background(), &ProofRequest{
		Type:   KindOutput,
		Params: rawParams(t, `{"toAddress":"zs1hello","amount":50000}`),
	})
	assert.Nil(t, res)
	require.Regexp(t, "ZP100021", err)
	assert.Regexp(t, "payment address decoding", err)
	assert.Regexp(t, "toAddress=zs1hello, amount=50000", err)
}

func TestGenerateSpendMissingParams(t *testing.T) {
	r, _ := newTestRouter(t)

	_, err := r.Generate(context.Background(), &ProofRequest{
		Type:   KindSpend,
		Params: rawParams(t, `{"amount":"1"}`),
	})
	require.Regexp(t, "ZP100012.*spendingKey", err)

	_, err = r.Generate(context.Background(), &ProofRequest{
		Type:   KindSpend,
		Params: rawParams(t, `{"spendingKey":"sk"}`),
	})
	require.Regexp(t, "ZP100012.*amount", err)

	// non-string spendingKey is treated as absent
	_, err = r.Generate(context.Background(), &ProofRequest{
		Type:   KindSpend,
		Params: rawParams(t, `{"spendingKey":12345,"amount":"1"}`),
	})
	require.Regexp(t, "ZP100012.*spendingKey", err)
}

func TestGenerateOutputMissingParams(t *testing.T) {
	r, _ := newTestRouter(t)

	_, err := r.Generate(context.Background(), &ProofRequest{
		Type:   KindOutput,
		Params: rawParams(t, `{"amount":"1"}`),
	})
	require.Regexp(t, "ZP100012.*toAddress", err)
}

func TestGenerateNilParams(t *testing.T) {
	r, _ := newTestRouter(t)

	_, err := r.Generate(context.Background(), &ProofRequest{Type: KindSpend})
	require.Regexp(t, "ZP100012", err)
}

func TestParseAmount(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name   string
		raw    string
		expect uint64
		errMsg string
	}{
		{name: "string decimal", raw: `"100000"`, expect: 100000},
		{name: "number", raw: `100000`, expect: 100000},
		{name: "zero", raw: `"0"`, expect: 0},
		{name: "max uint64 string", raw: `"18446744073709551615"`, expect: 18446744073709551615},
		{name: "overflow", raw: `"18446744073709551616"`, errMsg: "ZP100013"},
		{name: "negative string", raw: `"-1"`, errMsg: "ZP100013"},
		{name: "negative number", raw: `-1`, errMsg: "ZP100013"},
		{name: "fraction", raw: `1.5`, errMsg: "ZP100013"},
		{name: "non-numeric", raw: `"abc"`, errMsg: "ZP100013"},
		{name: "empty string", raw: `""`, errMsg: "ZP100013"},
		{name: "boolean", raw: `true`, errMsg: "ZP100013"},
		{name: "object", raw: `{}`, errMsg: "ZP100013"},
		{name: "null", raw: `null`, errMsg: "ZP100013"},
		{name: "absent", raw: ``, errMsg: "ZP100012"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var raw json.RawMessage
			if tc.raw != "" {
				raw = json.RawMessage(tc.raw)
			}
			amount, err := ParseAmount(ctx, raw)
			if tc.errMsg != "" {
				require.Regexp(t, tc.errMsg, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expect, amount)
			}
		})
	}
}

func TestErrorsCarryClientFaultStatus(t *testing.T) {
	r, _ := newTestRouter(t)

	_, err := r.Generate(context.Background(), &ProofRequest{Type: "bogus"})
	ffe, ok := err.(i18n.FFError)
	require.True(t, ok)
	assert.Equal(t, 400, ffe.HTTPStatus())
}
