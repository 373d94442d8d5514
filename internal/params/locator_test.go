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
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcashlight/proofd/internal/confutil"
)

func writeParams(t *testing.T, dir string, files ...string) string {
	require.NoError(t, os.MkdirAll(dir, 0755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("not real params"), 0644))
	}
	return dir
}

func writeCompleteParams(t *testing.T, dir string) string {
	return writeParams(t, dir, SpendParamsFile, OutputParamsFile)
}

// newTestLocator pins cwd, executable and home to separate temp trees so the search
// order can be exercised without touching the real process environment.
func newTestLocator(t *testing.T, conf *Config) (*Locator, string, string, string) {
	cwdRoot := t.TempDir()
	exeRoot := t.TempDir()
	homeRoot := t.TempDir()
	l := NewLocator(conf)
	l.getwd = func() (string, error) { return cwdRoot, nil }
	l.executable = func() (string, error) { return filepath.Join(exeRoot, "target", "proofd"), nil }
	l.homeDir = func() (string, error) { return homeRoot, nil }
	return l, cwdRoot, exeRoot, homeRoot
}

func TestLocateNothingFound(t *testing.T) {
	l, _, _, _ := newTestLocator(t, &Config{})
	res := l.Probe(context.Background())
	assert.Nil(t, res.Set)
	assert.Nil(t, res.BestPartial)
	assert.NotEmpty(t, res.Checked)
}

func TestLocateConfiguredDirWinsOverAll(t *testing.T) {
	l, cwdRoot, exeRoot, homeRoot := newTestLocator(t, nil)
	confDir := writeCompleteParams(t, t.TempDir())
	l.conf = &Config{Dir: confutil.P(confDir)}
	writeCompleteParams(t, filepath.Join(cwdRoot, ParamsSubdir))
	writeCompleteParams(t, filepath.Join(exeRoot, "target", ParamsSubdir))
	writeCompleteParams(t, filepath.Join(homeRoot, UserParamsDir))

	set := l.Locate(context.Background())
	require.NotNil(t, set)
	assert.Equal(t, confDir, set.Dir)
	assert.Equal(t, filepath.Join(confDir, SpendParamsFile), set.SpendPath)
	assert.Equal(t, filepath.Join(confDir, OutputParamsFile), set.OutputPath)
	assert.Equal(t, int64(len("not real params")), set.SpendSize)
}

func TestLocateCWDBeatsExecutableAndHome(t *testing.T) {
	l, cwdRoot, exeRoot, homeRoot := newTestLocator(t, &Config{})
	cwdParams := writeCompleteParams(t, filepath.Join(cwdRoot, ParamsSubdir))
	writeCompleteParams(t, filepath.Join(exeRoot, ParamsSubdir))
	writeCompleteParams(t, filepath.Join(homeRoot, UserParamsDir))

	set := l.Locate(context.Background())
	require.NotNil(t, set)
	assert.Equal(t, cwdParams, set.Dir)
}

func TestLocateCWDAncestorWalk(t *testing.T) {
	l, cwdRoot, _, _ := newTestLocator(t, &Config{})
	// params two levels above the working directory
	nested := filepath.Join(cwdRoot, "services", "proofd")
	require.NoError(t, os.MkdirAll(nested, 0755))
	l.getwd = func() (string, error) { return nested, nil }
	ancestorParams := writeCompleteParams(t, filepath.Join(cwdRoot, ParamsSubdir))

	set := l.Locate(context.Background())
	require.NotNil(t, set)
	assert.Equal(t, ancestorParams, set.Dir)
}

func TestLocateExecutableAncestorWalk(t *testing.T) {
	l, _, exeRoot, _ := newTestLocator(t, &Config{})
	// binary at <root>/target/proofd, params at <root>/params
	exeParams := writeCompleteParams(t, filepath.Join(exeRoot, ParamsSubdir))

	set := l.Locate(context.Background())
	require.NotNil(t, set)
	assert.Equal(t, exeParams, set.Dir)
}

func TestLocateUserDefaultLast(t *testing.T) {
	l, _, _, homeRoot := newTestLocator(t, &Config{})
	homeParams := writeCompleteParams(t, filepath.Join(homeRoot, UserParamsDir))

	set := l.Locate(context.Background())
	require.NotNil(t, set)
	assert.Equal(t, homeParams, set.Dir)
}

func TestLocatePartialRejectedAndSearchContinues(t *testing.T) {
	l, cwdRoot, _, homeRoot := newTestLocator(t, &Config{})
	partialDir := writeParams(t, filepath.Join(cwdRoot, ParamsSubdir), SpendParamsFile)
	homeParams := writeCompleteParams(t, filepath.Join(homeRoot, UserParamsDir))

	res := l.Probe(context.Background())
	require.NotNil(t, res.Set)
	assert.Equal(t, homeParams, res.Set.Dir)
	require.NotNil(t, res.BestPartial)
	assert.Equal(t, partialDir, res.BestPartial.Dir)
	assert.True(t, res.BestPartial.HasSpend)
	assert.False(t, res.BestPartial.HasOutput)
}

func TestLocateBoundedAncestorDepth(t *testing.T) {
	l, cwdRoot, _, _ := newTestLocator(t, &Config{})
	// params six levels above the working directory - beyond the bounded walk
	writeCompleteParams(t, filepath.Join(cwdRoot, ParamsSubdir))
	deep := filepath.Join(cwdRoot, "a", "b", "c", "d", "e", "f")
	require.NoError(t, os.MkdirAll(deep, 0755))
	l.getwd = func() (string, error) { return deep, nil }
	l.executable = func() (string, error) { return "", fmt.Errorf("pop") }
	l.homeDir = func() (string, error) { return "", fmt.Errorf("pop") }

	assert.Nil(t, l.Locate(context.Background()))
}

func TestLocateResilientToLookupFailures(t *testing.T) {
	l, _, _, _ := newTestLocator(t, &Config{})
	l.getwd = func() (string, error) { return "", fmt.Errorf("pop") }
	l.executable = func() (string, error) { return "", fmt.Errorf("pop") }
	l.homeDir = func() (string, error) { return "", fmt.Errorf("pop") }

	res := l.Probe(context.Background())
	assert.Nil(t, res.Set)
	assert.Empty(t, res.Checked)
}

func TestLocateResilientToStatErrors(t *testing.T) {
	l, cwdRoot, _, _ := newTestLocator(t, &Config{})
	writeCompleteParams(t, filepath.Join(cwdRoot, ParamsSubdir))
	l.stat = func(string) (os.FileInfo, error) { return nil, fmt.Errorf("permission denied") }

	assert.NotPanics(t, func() {
		assert.Nil(t, l.Locate(context.Background()))
	})
}

func TestLocateFileWhereDirExpected(t *testing.T) {
	l, cwdRoot, _, _ := newTestLocator(t, &Config{})
	// a plain file named 'params' must not match
	require.NoError(t, os.WriteFile(filepath.Join(cwdRoot, ParamsSubdir), []byte("a file"), 0644))

	assert.Nil(t, l.Locate(context.Background()))
}

func TestLocateDirWhereFileExpected(t *testing.T) {
	l, cwdRoot, _, _ := newTestLocator(t, &Config{})
	paramsDir := filepath.Join(cwdRoot, ParamsSubdir)
	writeParams(t, paramsDir, OutputParamsFile)
	require.NoError(t, os.MkdirAll(filepath.Join(paramsDir, SpendParamsFile), 0755))

	res := l.Probe(context.Background())
	assert.Nil(t, res.Set)
	require.NotNil(t, res.BestPartial)
	assert.False(t, res.BestPartial.HasSpend)
}
