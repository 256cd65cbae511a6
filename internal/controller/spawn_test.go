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

package controller

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithRoleAppendsFlagWithoutMutatingInput(t *testing.T) {
	argv := []string{"nixd-attrset-worker"}
	got := withRole(argv, "option")
	require.Equal(t, []string{"nixd-attrset-worker", "-role=option"}, got)
	require.Equal(t, []string{"nixd-attrset-worker"}, argv)
}
