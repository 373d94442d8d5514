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

package prover

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	rapidsnark "github.com/iden3/go-rapidsnark/prover"
	"github.com/iden3/go-rapidsnark/types"

	"github.com/zcashlight/proofd/internal/log"
	"github.com/zcashlight/proofd/internal/msgs"
	"github.com/zcashlight/proofd/internal/params"
)

// Prover is the opaque proving capability, bound to one resolved set of parameter
// files. The witness bytes are the caller's problem: producing them requires the
// note commitment tree held by the light-client backend, not by this service.
type Prover interface {
	SpendProof(ctx context.Context, witness []byte) ([]byte, error)
	OutputProof(ctx context.Context, witness []byte) ([]byte, error)
	Source() string
}

type localProver struct {
	source         string
	spendKey       []byte
	outputKey      []byte
	proofGenerator func(ctx context.Context, witness, provingKey []byte) (*types.ZKProof, error)
}

func (lp *localProver) SpendProof(ctx context.Context, witness []byte) ([]byte, error) {
	return lp.prove(ctx, "spend", lp.spendKey, witness)
}

func (lp *localProver) OutputProof(ctx context.Context, witness []byte) ([]byte, error) {
	return lp.prove(ctx, "output", lp.outputKey, witness)
}

func (lp *localProver) Source() string {
	return lp.source
}

func (lp *localProver) prove(ctx context.Context, circuit string, provingKey, witness []byte) ([]byte, error) {
	if len(witness) == 0 {
		return nil, i18n.NewError(ctx, msgs.MsgWitnessNotSupplied, circuit)
	}
	proof, err := lp.proofGenerator(ctx, witness, provingKey)
	if err != nil {
		return nil, i18n.NewError(ctx, msgs.MsgProofGenerationFailed, circuit, err)
	}
	proofBytes, err := json.Marshal(proof)
	if err != nil {
		return nil, i18n.NewError(ctx, msgs.MsgProofGenerationFailed, circuit, err)
	}
	log.L(ctx).Infof("Generated %s proof (%d bytes)", circuit, len(proofBytes))
	return proofBytes, nil
}

func generateProof(ctx context.Context, witness, provingKey []byte) (*types.ZKProof, error) {
	return rapidsnark.Groth16Prover(provingKey, witness)
}

// defaultLocation is the proving library's own second-tier lookup, independent of the
// service's candidate search. It follows the fixed platform convention used by the
// parameter download tooling, which can differ from the service's deployment layout.
func defaultLocation(ctx context.Context) *params.ParameterSet {
	home, err := os.UserHomeDir()
	if err != nil {
		log.L(ctx).Debugf("Unable to determine user home directory: %s", err)
		return nil
	}
	var dir string
	switch runtime.GOOS {
	case "darwin":
		dir = filepath.Join(home, "Library", "Application Support", "ZcashParams")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return nil
		}
		dir = filepath.Join(appData, "ZcashParams")
	default:
		dir = filepath.Join(home, params.UserParamsDir)
	}

	spendPath := filepath.Join(dir, params.SpendParamsFile)
	outputPath := filepath.Join(dir, params.OutputParamsFile)
	spendInfo, err := os.Stat(spendPath)
	if err != nil || spendInfo.IsDir() {
		return nil
	}
	outputInfo, err := os.Stat(outputPath)
	if err != nil || outputInfo.IsDir() {
		return nil
	}
	return &params.ParameterSet{
		Dir:        dir,
		SpendPath:  spendPath,
		OutputPath: outputPath,
		SpendSize:  spendInfo.Size(),
		OutputSize: outputInfo.Size(),
	}
}
