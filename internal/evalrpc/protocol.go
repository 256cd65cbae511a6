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

// This file gives the attribute-set worker's JSON-RPC methods (spec
// §4.7) their exact wire shapes, carried over field-for-field from
// original_source/nixd's include/nixd/Protocol/AttrSet.h, which the
// original spec names but does not itself reproduce.
package evalrpc

import "context"

// Method names, shared verbatim by the client call sites in
// internal/controller and the worker-side dispatch in
// cmd/nixd-attrset-worker.
const (
	MethodReady            = "ready"
	MethodEvalExpr         = "evalExpr"
	MethodAttrpathInfo     = "attrpathInfo"
	MethodAttrpathComplete = "attrpathComplete"
	MethodOptionInfo       = "optionInfo"
	MethodOptionComplete   = "optionComplete"
)

// ReadyParams is the notification a worker sends once at startup,
// carrying its own pid so the controller's logs can correlate worker
// stderr output with a specific process (spec §4.7/§6).
type ReadyParams struct {
	Pid int `json:"pid"`
}

// EvalExprParams/Response match original_source's
// "using EvalExprParams = std::string" / "std::optional<std::string>":
// the expression to evaluate, and an optional error message on failure.
type EvalExprParams struct {
	Expr string `json:"expr"`
}

type EvalExprResponse struct {
	Error string `json:"error,omitempty"`
}

// AttrpathInfoParams selects along the worker's stored root.
type AttrpathInfoParams struct {
	Path []string `json:"path"`
}

// PackageDescription mirrors original_source's PackageDescription
// exactly: every field is optional since not every attribute set value
// looks like a package.
type PackageDescription struct {
	Name            string `json:"name,omitempty"`
	PName           string `json:"pname,omitempty"`
	Version         string `json:"version,omitempty"`
	Description     string `json:"description,omitempty"`
	LongDescription string `json:"longDescription,omitempty"`
	Position        string `json:"position,omitempty"`
	Homepage        string `json:"homepage,omitempty"`
}

// ValueMeta carries the type/position/doc facts spec §4.7's
// attrpathInfo promises beyond PackageDescription: "report type, source
// location, ... and for primops/lambdas their doc/arity/args."
type ValueMeta struct {
	Type     string   `json:"type"`
	Position string   `json:"position,omitempty"`
	Doc      string   `json:"doc,omitempty"`
	Arity    int      `json:"arity,omitempty"`
	Args     []string `json:"args,omitempty"`
}

type AttrpathInfoResponse struct {
	Meta           ValueMeta            `json:"meta"`
	PackageDesc    *PackageDescription  `json:"packageDesc,omitempty"`
	ValueDesc      string               `json:"valueDesc,omitempty"`
}

// AttrpathCompleteParams matches original_source's AttrPathCompleteParams,
// with MaxItems added per spec §4.7 ("capped (default 30) to bound work").
type AttrpathCompleteParams struct {
	Scope    []string `json:"scope"`
	Prefix   string   `json:"prefix"`
	MaxItems int      `json:"maxItems,omitempty"`
}

type AttrpathCompleteResponse struct {
	Items []string `json:"items"`
}

// OptionInfoParams selects along the worker's stored root treated as a
// NixOS-style option tree.
type OptionInfoParams struct {
	Path []string `json:"path"`
}

// Location is a bare file+range pair, the Go analogue of
// lspserver::Location used by original_source's OptionDescription.
type Location struct {
	URI       string `json:"uri"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// OptionType mirrors original_source's OptionType.
type OptionType struct {
	Description string `json:"description,omitempty"`
	Name        string `json:"name,omitempty"`
}

// OptionDescription mirrors original_source's OptionDescription.
type OptionDescription struct {
	Description string      `json:"description,omitempty"`
	Declarations []Location `json:"declarations,omitempty"`
	Definitions  []Location `json:"definitions,omitempty"`
	Example      string      `json:"example,omitempty"`
	Type         *OptionType `json:"type,omitempty"`
}

// OptionCompleteParams mirrors spec §4.7's optionComplete request shape.
type OptionCompleteParams struct {
	Scope  []string `json:"scope"`
	Prefix string   `json:"prefix"`
}

// OptionField mirrors original_source's OptionField.
type OptionField struct {
	Name        string             `json:"name"`
	Description *OptionDescription `json:"description,omitempty"`
}

type OptionCompleteResponse struct {
	Items []OptionField `json:"items"`
}

// Evaluator is the interface an attribute-set (or option) worker
// implements; attrset.Worker is the implementation cmd/nixd-attrset-worker
// serves for both roles, and Dispatch turns it into a jsonrpc2.Handler. Splitting
// this out from the transport lets the worker's evaluation logic be
// tested without spawning a subprocess, the same separation
// cuelang.org/go/internal/lsp/server keeps between its Server interface
// and the jsonrpc2 glue in internal/lsp/cache.
type Evaluator interface {
	EvalExpr(ctx context.Context, p EvalExprParams) (EvalExprResponse, error)
	AttrpathInfo(ctx context.Context, p AttrpathInfoParams) (AttrpathInfoResponse, error)
	AttrpathComplete(ctx context.Context, p AttrpathCompleteParams) (AttrpathCompleteResponse, error)
	OptionInfo(ctx context.Context, p OptionInfoParams) (OptionDescription, error)
	OptionComplete(ctx context.Context, p OptionCompleteParams) (OptionCompleteResponse, error)
}
