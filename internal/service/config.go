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
	"os"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"sigs.k8s.io/yaml"

	"github.com/zcashlight/proofd/internal/httpserver"
	"github.com/zcashlight/proofd/internal/log"
	"github.com/zcashlight/proofd/internal/metrics"
	"github.com/zcashlight/proofd/internal/msgs"
	"github.com/zcashlight/proofd/internal/paramfetch"
	"github.com/zcashlight/proofd/internal/params"
	"github.com/zcashlight/proofd/internal/prover"
)

type Config struct {
	Log        log.Config        `json:"log"`
	HTTP       httpserver.Config `json:"http"`
	Params     params.Config     `json:"params"`
	Prover     prover.Config     `json:"prover"`
	Metrics    metrics.Config    `json:"metrics"`
	ParamFetch paramfetch.Config `json:"paramFetch"`
}

func ReadAndParseYAMLFile(ctx context.Context, filePath string, config *Config) error {
	if _, err := os.Stat(filePath); err != nil {
		return i18n.NewError(ctx, msgs.MsgConfigFileMissing, filePath)
	}
	fileBytes, err := os.ReadFile(filePath)
	if err != nil {
		return i18n.NewError(ctx, msgs.MsgConfigFileReadError, filePath, err)
	}
	if err := yaml.Unmarshal(fileBytes, config); err != nil {
		return i18n.NewError(ctx, msgs.MsgConfigFileParseError, err)
	}
	return nil
}
