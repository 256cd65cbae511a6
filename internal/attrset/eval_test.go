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

package attrset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nix-community/nixd-sub001/internal/evalrpc"
)

func TestEvalAttrsLiteral(t *testing.T) {
	v, err := Eval(`{ hello = { pname = "hello"; version = "2.12"; meta = { description = "friendly greeter"; }; }; }`)
	require.NoError(t, err)
	require.Equal(t, KindAttrs, v.Kind)
	require.Equal(t, []string{"hello"}, v.SortedAttrNames())
}

func TestEvalArithmeticAndSelect(t *testing.T) {
	v, err := Eval(`let a = { x = 1 + 2; }; in a.x`)
	require.NoError(t, err)
	require.Equal(t, KindInt, v.Kind)
	require.EqualValues(t, 3, v.Int)
}

func TestEvalUndefinedVariableErrors(t *testing.T) {
	_, err := Eval(`doesNotExist`)
	require.Error(t, err)
}

func TestWorkerEvalThenComplete(t *testing.T) {
	w := NewWorker()
	ctx := context.Background()
	_, err := w.EvalExpr(ctx, evalrpc.EvalExprParams{Expr: `{ hello = 1; help2man = 2; git = 3; }`})
	require.NoError(t, err)

	resp, err := w.AttrpathComplete(ctx, evalrpc.AttrpathCompleteParams{Prefix: "he", MaxItems: 5})
	require.NoError(t, err)
	require.Equal(t, []string{"hello", "help2man"}, resp.Items)
}

func TestWorkerAttrpathInfoPackageDescription(t *testing.T) {
	w := NewWorker()
	ctx := context.Background()
	_, err := w.EvalExpr(ctx, evalrpc.EvalExprParams{
		Expr: `{ hello = { pname = "hello"; version = "2.12"; meta = { description = "friendly greeter"; }; }; }`,
	})
	require.NoError(t, err)

	info, err := w.AttrpathInfo(ctx, evalrpc.AttrpathInfoParams{Path: []string{"hello"}})
	require.NoError(t, err)
	require.NotNil(t, info.PackageDesc)
	require.Equal(t, "hello", info.PackageDesc.PName)
	require.Equal(t, "friendly greeter", info.PackageDesc.Description)
}

func TestWorkerOptionInfoUnwrapsLiteralExpression(t *testing.T) {
	w := NewWorker()
	ctx := context.Background()
	_, err := w.EvalExpr(ctx, evalrpc.EvalExprParams{
		Expr: `{ description = "enable the frobnicator"; example = { _type = "literalExpression"; text = "true"; }; }`,
	})
	require.NoError(t, err)

	info, err := w.OptionInfo(ctx, evalrpc.OptionInfoParams{})
	require.NoError(t, err)
	require.Equal(t, "enable the frobnicator", info.Description)
	require.Equal(t, "true", info.Example)
}
