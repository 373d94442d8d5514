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

package confutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInt(t *testing.T) {
	assert.Equal(t, 10, Int(nil, 10))
	assert.Equal(t, 5, Int(P(5), 10))
	assert.Equal(t, 1, IntMin(P(-5), 1, 10))
	assert.Equal(t, 10, IntMin(nil, 1, 10))
}

func TestBool(t *testing.T) {
	assert.True(t, Bool(nil, true))
	assert.False(t, Bool(P(false), true))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "def", StringNotEmpty(nil, "def"))
	assert.Equal(t, "def", StringNotEmpty(P(""), "def"))
	assert.Equal(t, "set", StringNotEmpty(P("set"), "def"))
	assert.Equal(t, "", StringOrEmpty(P(""), "def"))
	assert.Equal(t, []string{"d"}, StringSlice(nil, []string{"d"}))
	assert.Equal(t, []string{}, StringSlice([]string{}, []string{"d"}))
}

func TestDurations(t *testing.T) {
	assert.Equal(t, 10*time.Second, DurationMin(nil, 0, "10s"))
	assert.Equal(t, 10*time.Second, DurationMin(P("wrong"), 0, "10s"))
	assert.Equal(t, 1*time.Second, DurationMin(P("10ms"), 1*time.Second, "10s"))
	assert.Equal(t, int64(60), DurationSeconds(P("1m"), 0, "10s"))
}

func TestByteSize(t *testing.T) {
	assert.Equal(t, int64(1024), ByteSize(P("1kb"), 0, "0"))
	assert.Equal(t, int64(1048576), ByteSize(nil, 0, "1Mb"))
	assert.Equal(t, int64(1024), ByteSize(P("10"), 1024, "0"))
	assert.Equal(t, int64(1048576), ByteSize(P("wrong"), 0, "1Mb"))
}
