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

package params

import (
	"context"
	"os"
	"path/filepath"

	"github.com/zcashlight/proofd/internal/log"
)

const (
	// SpendParamsFile is the Groth16 proving parameters for the Sapling spend circuit
	SpendParamsFile = "sapling-spend.params"
	// OutputParamsFile is the Groth16 proving parameters for the Sapling output circuit
	OutputParamsFile = "sapling-output.params"

	// ParamsSubdir is the directory name probed under each candidate location
	ParamsSubdir = "params"
	// UserParamsDir is the fixed user-home default, shared with zcashd's fetch-params
	UserParamsDir = ".zcash-params"

	maxAncestorDepth = 5
)

type Config struct {
	// Dir is an explicit parameters directory. When set it is the highest-priority
	// candidate, checked as-is (no 'params' subdirectory appended).
	Dir *string `json:"dir"`
}

// ParameterSet identifies a complete pair of proving parameter files. A set is only
// ever constructed when both files are present and readable at the same location.
type ParameterSet struct {
	Dir        string
	SpendPath  string
	OutputPath string
	SpendSize  int64
	OutputSize int64
}

// PartialCandidate records a probed directory that exists but is missing one or both
// of the required files - kept for operator-facing diagnostics.
type PartialCandidate struct {
	Dir       string
	HasSpend  bool
	HasOutput bool
}

// ProbeResult is the full outcome of one resolution pass.
type ProbeResult struct {
	Set         *ParameterSet
	Checked     []string
	BestPartial *PartialCandidate
}

// Locator resolves the proving parameter files across an ordered, fixed list of
// candidate directories. Resolution is side-effect free and never returns an error:
// any filesystem failure on a probe is treated as "not found" and the search moves on.
type Locator struct {
	conf *Config

	// injectable for tests
	getwd      func() (string, error)
	executable func() (string, error)
	homeDir    func() (string, error)
	stat       func(string) (os.FileInfo, error)
}

func NewLocator(conf *Config) *Locator {
	return &Locator{
		conf:       conf,
		getwd:      os.Getwd,
		executable: os.Executable,
		homeDir:    os.UserHomeDir,
		stat:       os.Stat,
	}
}

type strategy struct {
	name string
	dirs func(ctx context.Context) []string
}

// strategies returns the ordered resolution strategies. The order is fixed and
// significant: the first complete set wins. Adding a deployment convention means
// adding a strategy here.
func (l *Locator) strategies() []strategy {
	return []strategy{
		{name: "configured directory", dirs: l.configuredDir},
		{name: "working directory", dirs: l.cwdDirs},
		{name: "executable directory", dirs: l.executableDirs},
		{name: "user default directory", dirs: l.userDefaultDir},
	}
}

func (l *Locator) configuredDir(ctx context.Context) []string {
	if l.conf == nil || l.conf.Dir == nil || *l.conf.Dir == "" {
		return nil
	}
	return []string{*l.conf.Dir}
}

// cwdDirs is <cwd>/params, then <ancestor>/params walking upward a bounded number
// of levels (covers running from a checkout subdirectory).
func (l *Locator) cwdDirs(ctx context.Context) []string {
	cwd, err := l.getwd()
	if err != nil {
		log.L(ctx).Debugf("Unable to determine working directory: %s", err)
		return nil
	}
	return ancestorParamsDirs(cwd)
}

// executableDirs is the same bounded walk relative to the running binary (covers
// running from a build output directory).
func (l *Locator) executableDirs(ctx context.Context) []string {
	exePath, err := l.executable()
	if err != nil {
		log.L(ctx).Debugf("Unable to determine executable path: %s", err)
		return nil
	}
	return ancestorParamsDirs(filepath.Dir(exePath))
}

func (l *Locator) userDefaultDir(ctx context.Context) []string {
	home, err := l.homeDir()
	if err != nil {
		log.L(ctx).Debugf("Unable to determine user home directory: %s", err)
		return nil
	}
	return []string{filepath.Join(home, UserParamsDir)}
}

func ancestorParamsDirs(base string) []string {
	dirs := make([]string, 0, maxAncestorDepth+1)
	current := base
	for i := 0; i <= maxAncestorDepth; i++ {
		dirs = append(dirs, filepath.Join(current, ParamsSubdir))
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return dirs
}

// Locate returns the first complete ParameterSet in search order, or nil when no
// candidate holds both files. Absence is a valid state, not an error.
func (l *Locator) Locate(ctx context.Context) *ParameterSet {
	return l.Probe(ctx).Set
}

// Probe runs the full search and additionally reports every directory checked, and
// the best partially-populated candidate, for use in operator diagnostics.
func (l *Locator) Probe(ctx context.Context) *ProbeResult {
	result := &ProbeResult{}
	seen := map[string]bool{}
	log.L(ctx).Debugf("Searching for proving parameters")
	for _, s := range l.strategies() {
		for _, dir := range s.dirs(ctx) {
			if seen[dir] {
				continue
			}
			seen[dir] = true
			result.Checked = append(result.Checked, dir)
			set, partial := l.probeDir(ctx, dir)
			if set != nil {
				log.L(ctx).Infof("Found proving parameters via %s: %s (spend=%dMb output=%dMb)",
					s.name, dir, set.SpendSize/(1024*1024), set.OutputSize/(1024*1024))
				result.Set = set
				return result
			}
			if partial != nil && result.BestPartial == nil {
				result.BestPartial = partial
			}
		}
	}
	log.L(ctx).Infof("Proving parameters not found in any of %d candidate locations", len(result.Checked))
	return result
}

// probeDir checks a single directory for both parameter files. All I/O errors are
// swallowed (logged at debug) so a permission failure on one candidate cannot abort
// the search.
func (l *Locator) probeDir(ctx context.Context, dir string) (*ParameterSet, *PartialCandidate) {
	if fi, err := l.stat(dir); err != nil || !fi.IsDir() {
		if err != nil && !os.IsNotExist(err) {
			log.L(ctx).Debugf("Skipping candidate %s: %s", dir, err)
		}
		return nil, nil
	}

	spendPath := filepath.Join(dir, SpendParamsFile)
	outputPath := filepath.Join(dir, OutputParamsFile)
	spendInfo := l.statFile(ctx, spendPath)
	outputInfo := l.statFile(ctx, outputPath)

	if spendInfo == nil || outputInfo == nil {
		// the directory exists but is incomplete - reject it and keep searching
		return nil, &PartialCandidate{
			Dir:       dir,
			HasSpend:  spendInfo != nil,
			HasOutput: outputInfo != nil,
		}
	}

	return &ParameterSet{
		Dir:        dir,
		SpendPath:  spendPath,
		OutputPath: outputPath,
		SpendSize:  spendInfo.Size(),
		OutputSize: outputInfo.Size(),
	}, nil
}

func (l *Locator) statFile(ctx context.Context, path string) os.FileInfo {
	fi, err := l.stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.L(ctx).Debugf("Unable to stat %s: %s", path, err)
		}
		return nil
	}
	if fi.IsDir() {
		return nil
	}
	return fi
}
