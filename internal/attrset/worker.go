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
	"strings"
	"sync"

	"github.com/nix-community/nixd-sub001/internal/evalrpc"
)

// Worker implements evalrpc.Evaluator: the methods an attribute-set (or
// option) worker process exposes over RPC, per spec §4.7. It is a
// single mutable slot — "store it as the worker's current root" — guarded
// by a lock, since the transport may dispatch attrpathInfo/Complete
// concurrently with a later evalExpr replacing the root.
type Worker struct {
	mu   sync.RWMutex
	root *Value
}

// NewWorker returns a Worker with no root set; every method other than
// EvalExpr fails until EvalExpr succeeds once.
func NewWorker() *Worker { return &Worker{} }

func (w *Worker) EvalExpr(ctx context.Context, p evalrpc.EvalExprParams) (evalrpc.EvalExprResponse, error) {
	val, err := Eval(p.Expr)
	if err != nil {
		return evalrpc.EvalExprResponse{Error: err.Error()}, nil
	}
	w.mu.Lock()
	w.root = val
	w.mu.Unlock()
	return evalrpc.EvalExprResponse{}, nil
}

func (w *Worker) getRoot() (*Value, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.root == nil {
		return nil, &EvalError{Msg: "no expression has been evaluated yet"}
	}
	return w.root, nil
}

func (w *Worker) selectPath(path []string) (*Value, error) {
	cur, err := w.getRoot()
	if err != nil {
		return nil, err
	}
	for _, name := range path {
		if cur.Kind != KindAttrs {
			return nil, &EvalError{Msg: "value is a " + cur.TypeName() + ", not an attribute set"}
		}
		next, ok := cur.Attrs[name]
		if !ok {
			return nil, &EvalError{Msg: "attribute '" + name + "' missing"}
		}
		cur = next
	}
	return cur, nil
}

func (w *Worker) AttrpathInfo(ctx context.Context, p evalrpc.AttrpathInfoParams) (evalrpc.AttrpathInfoResponse, error) {
	val, err := w.selectPath(p.Path)
	if err != nil {
		return evalrpc.AttrpathInfoResponse{}, err
	}
	resp := evalrpc.AttrpathInfoResponse{
		Meta: evalrpc.ValueMeta{
			Type:     val.TypeName(),
			Position: val.Position,
			Doc:      val.Doc,
			Arity:    val.Arity,
			Args:     val.Args,
		},
	}
	if val.Kind != KindAttrs {
		resp.ValueDesc = val.String()
		return resp, nil
	}
	resp.PackageDesc = packageDescription(val)
	return resp, nil
}

// packageDescription extracts the package-like metadata spec §4.7
// names, mirroring the derivation attribute surface nixpkgs packages
// expose (pname/version/meta.description/...).
func packageDescription(v *Value) *evalrpc.PackageDescription {
	get := func(name string) string {
		a, ok := v.Attrs[name]
		if !ok || a.Kind != KindString {
			return ""
		}
		return a.Str
	}
	meta, hasMeta := v.Attrs["meta"]
	desc := &evalrpc.PackageDescription{
		Name:    get("name"),
		PName:   get("pname"),
		Version: get("version"),
	}
	if hasMeta && meta.Kind == KindAttrs {
		if d, ok := meta.Attrs["description"]; ok && d.Kind == KindString {
			desc.Description = d.Str
		}
		if d, ok := meta.Attrs["longDescription"]; ok && d.Kind == KindString {
			desc.LongDescription = d.Str
		}
		if d, ok := meta.Attrs["homepage"]; ok && d.Kind == KindString {
			desc.Homepage = d.Str
		}
	}
	desc.Position = v.Position
	if desc.Name == "" && desc.PName == "" && desc.Description == "" {
		return nil
	}
	return desc
}

func (w *Worker) AttrpathComplete(ctx context.Context, p evalrpc.AttrpathCompleteParams) (evalrpc.AttrpathCompleteResponse, error) {
	val, err := w.selectPath(p.Scope)
	if err != nil {
		return evalrpc.AttrpathCompleteResponse{}, err
	}
	if val.Kind != KindAttrs {
		return evalrpc.AttrpathCompleteResponse{}, nil
	}
	max := p.MaxItems
	if max <= 0 {
		max = 30
	}
	var items []string
	for _, name := range val.SortedAttrNames() {
		if !strings.HasPrefix(name, p.Prefix) {
			continue
		}
		items = append(items, name)
		if len(items) >= max {
			break
		}
	}
	return evalrpc.AttrpathCompleteResponse{Items: items}, nil
}

// OptionInfo treats the stored root as a NixOS-style option tree: an
// option is an attribute set carrying at least one of
// description/default/type/example, per the module system's convention
// (mkOption {...}); anything else along the path is a parent namespace.
func (w *Worker) OptionInfo(ctx context.Context, p evalrpc.OptionInfoParams) (evalrpc.OptionDescription, error) {
	val, err := w.selectPath(p.Path)
	if err != nil {
		return evalrpc.OptionDescription{}, err
	}
	if val.Kind != KindAttrs {
		return evalrpc.OptionDescription{}, &EvalError{Msg: "not an option"}
	}
	out := evalrpc.OptionDescription{}
	if d, ok := val.Attrs["description"]; ok && d.Kind == KindString {
		out.Description = d.Str
	}
	if ex, ok := val.Attrs["example"]; ok {
		out.Example = unwrapLiteralExpression(ex)
	}
	if t, ok := val.Attrs["type"]; ok {
		out.Type = &evalrpc.OptionType{Name: t.TypeName(), Description: t.String()}
	}
	return out, nil
}

// unwrapLiteralExpression renders example's value, unwrapping the
// "literalExpression \"...\"" convention (an attrs with a single `_type
// = "literalExpression"` tag and a `text` field) per spec §4.7.
func unwrapLiteralExpression(v *Value) string {
	if v.Kind == KindAttrs {
		if ty, ok := v.Attrs["_type"]; ok && ty.Kind == KindString && ty.Str == "literalExpression" {
			if text, ok := v.Attrs["text"]; ok {
				return text.String()
			}
		}
	}
	return v.String()
}

// OptionComplete lists the attribute names under Scope that start with
// Prefix, attaching each one's string "description" attribute when it has
// one. Scope is followed as a plain attribute path: attrsOf-submodule
// options are not expanded into their sub-options, so a path through a
// submodule's <name> placeholder (e.g. users.users.<name>) is not
// resolved.
func (w *Worker) OptionComplete(ctx context.Context, p evalrpc.OptionCompleteParams) (evalrpc.OptionCompleteResponse, error) {
	val, err := w.selectPath(p.Scope)
	if err != nil {
		return evalrpc.OptionCompleteResponse{}, err
	}
	if val.Kind != KindAttrs {
		return evalrpc.OptionCompleteResponse{}, nil
	}
	var items []evalrpc.OptionField
	for _, name := range val.SortedAttrNames() {
		if !strings.HasPrefix(name, p.Prefix) {
			continue
		}
		field := evalrpc.OptionField{Name: name}
		if sub := val.Attrs[name]; sub.Kind == KindAttrs {
			if d, ok := sub.Attrs["description"]; ok && d.Kind == KindString {
				field.Description = &evalrpc.OptionDescription{Description: d.Str}
			}
		}
		items = append(items, field)
	}
	return evalrpc.OptionCompleteResponse{Items: items}, nil
}

var _ evalrpc.Evaluator = (*Worker)(nil)
