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
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/hyperledger/firefly-common/pkg/i18n"

	"github.com/zcashlight/proofd/internal/cache"
	"github.com/zcashlight/proofd/internal/confutil"
	"github.com/zcashlight/proofd/internal/log"
	"github.com/zcashlight/proofd/internal/msgs"
	"github.com/zcashlight/proofd/internal/params"
)

type Config struct {
	// CacheParams keeps loaded proving key bytes in memory keyed by file path,
	// so per-request prover construction does not re-read ~50Mb of parameter
	// files from disk each time
	CacheParams *bool        `json:"cacheParams"`
	KeyCache    cache.Config `json:"keyCache"`
	// Singleton constructs the prover at most once per process, retrying only
	// after a failed construction
	Singleton *bool `json:"singleton"`
}

var Defaults = &Config{
	CacheParams: confutil.P(false),
	KeyCache: cache.Config{
		Capacity: confutil.P(2),
	},
	Singleton: confutil.P(false),
}

// Handle owns prover acquisition. By default every Acquire resolves the parameter
// files and constructs a fresh prover, so an operator can drop the files into place
// without restarting the service.
type Handle struct {
	conf      *Config
	locator   *params.Locator
	singleton bool

	constructLock sync.Mutex
	current       Prover

	keyCache cache.Cache[string, []byte]

	// test seams
	probe           func(ctx context.Context) *params.ProbeResult
	newProver       func(ctx context.Context, set *params.ParameterSet) (Prover, error)
	defaultLocation func(ctx context.Context) *params.ParameterSet
	readFile        func(name string) ([]byte, error)
}

func NewHandle(conf *Config, locator *params.Locator) *Handle {
	h := &Handle{
		conf:            conf,
		locator:         locator,
		singleton:       confutil.Bool(conf.Singleton, *Defaults.Singleton),
		defaultLocation: defaultLocation,
		readFile:        os.ReadFile,
	}
	h.probe = locator.Probe
	h.newProver = h.buildLocalProver
	if confutil.Bool(conf.CacheParams, *Defaults.CacheParams) {
		h.keyCache = cache.NewCache[string, []byte](&conf.KeyCache, &Defaults.KeyCache)
	}
	return h
}

// Acquire resolves the proving parameters and returns a ready prover, or an error
// carrying the full list of locations checked. In singleton mode a previously
// constructed prover is reused; a failed construction is never sticky.
func (h *Handle) Acquire(ctx context.Context) (Prover, error) {
	if !h.singleton {
		return h.construct(ctx)
	}
	h.constructLock.Lock()
	defer h.constructLock.Unlock()
	if h.current != nil {
		return h.current, nil
	}
	p, err := h.construct(ctx)
	if err != nil {
		return nil, err
	}
	h.current = p
	return p, nil
}

func (h *Handle) construct(ctx context.Context) (Prover, error) {
	probe := h.probe(ctx)
	if probe.Set != nil {
		return h.newProver(ctx, probe.Set)
	}

	log.L(ctx).Warnf("No complete parameter set in any candidate directory, trying the library default location")
	if set := h.defaultLocation(ctx); set != nil {
		return h.newProver(ctx, set)
	}

	return nil, h.initError(ctx, probe)
}

func (h *Handle) initError(ctx context.Context, probe *params.ProbeResult) error {
	detail := ""
	if bp := probe.BestPartial; bp != nil {
		var missing []string
		if !bp.HasSpend {
			missing = append(missing, params.SpendParamsFile)
		}
		if !bp.HasOutput {
			missing = append(missing, params.OutputParamsFile)
		}
		detail = fmt.Sprintf(" Found a partial installation at %s (missing: %s).", bp.Dir, strings.Join(missing, ", "))
	}
	return i18n.NewError(ctx, msgs.MsgProverParamsNotFound, strings.Join(probe.Checked, ", "), detail)
}

func (h *Handle) buildLocalProver(ctx context.Context, set *params.ParameterSet) (Prover, error) {
	spendKey, err := h.loadKey(ctx, set.SpendPath)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgParamFileUnreadable, set.SpendPath, err)
	}
	outputKey, err := h.loadKey(ctx, set.OutputPath)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgParamFileUnreadable, set.OutputPath, err)
	}
	log.L(ctx).Infof("Prover ready from %s (spend=%d bytes, output=%d bytes)", set.Dir, len(spendKey), len(outputKey))
	return &localProver{
		source:         set.Dir,
		spendKey:       spendKey,
		outputKey:      outputKey,
		proofGenerator: generateProof,
	}, nil
}

func (h *Handle) loadKey(ctx context.Context, path string) ([]byte, error) {
	if h.keyCache != nil {
		if key, ok := h.keyCache.Get(path); ok {
			log.L(ctx).Debugf("Proving key cache hit for %s", path)
			return key, nil
		}
	}
	key, err := h.readFile(path)
	if err != nil {
		return nil, err
	}
	if h.keyCache != nil {
		h.keyCache.Set(path, key)
	}
	return key, nil
}
