// Copyright 2024 The Nixd-sub001 Authors
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

package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevelMapsAllFourNames(t *testing.T) {
	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"verbose": levelVerbose,
	}
	for name, want := range cases {
		got, err := parseLevel(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestParseLevelRejectsUnknownName(t *testing.T) {
	_, err := parseLevel("trace")
	require.Error(t, err)
}

func TestVerboseIsNoisierThanDebug(t *testing.T) {
	require.Less(t, int(levelVerbose), int(slog.LevelDebug))
}

func TestAttrsetWorkerPathHonoursEnvOverride(t *testing.T) {
	t.Setenv("NIXD_ATTRSET_EVAL", "/opt/nixd/bin/nixd-attrset-worker")
	require.Equal(t, "/opt/nixd/bin/nixd-attrset-worker", attrsetWorkerPath())
}

func TestAttrsetWorkerPathFallsBackToBareName(t *testing.T) {
	t.Setenv("NIXD_ATTRSET_EVAL", "")
	require.Equal(t, "nixd-attrset-worker", attrsetWorkerPath())
}
