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
	"fmt"
	"strings"

	"github.com/nix-community/nixd-sub001/internal/diag"
	"github.com/nix-community/nixd-sub001/internal/lower"
	"github.com/nix-community/nixd-sub001/internal/parser"
	"github.com/nix-community/nixd-sub001/internal/syntax"
)

// EvalError is a user-visible evaluation failure, returned as the
// message half of EvalExprResponse (spec §4.7: "Errors return a
// user-visible message; success returns nothing").
type EvalError struct {
	Msg string
	At  string
}

func (e *EvalError) Error() string {
	if e.At != "" {
		return fmt.Sprintf("%s: %s", e.At, e.Msg)
	}
	return e.Msg
}

func errf(n syntax.Node, format string, args ...any) error {
	at := ""
	if n != nil {
		at = n.Range().Start.String()
	}
	return &EvalError{Msg: fmt.Sprintf(format, args...), At: at}
}

// env is a chained lexical environment of evaluated values, the runtime
// analogue of vla.Scope.
type env struct {
	parent *env
	vars   map[string]*Value
}

func (e *env) lookup(name string) (*Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func child(parent *env) *env {
	return &env{parent: parent, vars: map[string]*Value{}}
}

// Eval parses and evaluates src, the implementation behind
// Worker.EvalExpr. It supports the literal/composable subset of Nix
// documented on the attrset package: attribute sets, lists, let,
// selects, strings/paths (including interpolation), arithmetic,
// comparisons and conditionals. Anything needing a real primop (import,
// fetchers, derivation realisation) fails with a descriptive EvalError,
// per this package's doc comment.
func Eval(src string) (*Value, error) {
	root, diags := parser.Parse([]byte(src))
	for _, d := range diags {
		if d.Severity == diag.Error {
			return nil, &EvalError{Msg: d.Format(), At: d.Range.Start.String()}
		}
	}
	lower.LowerTree(root)
	return evalNode(root, rootEnv())
}

func rootEnv() *env {
	e := child(nil)
	e.vars["true"] = Bool(true)
	e.vars["false"] = Bool(false)
	e.vars["null"] = Null()
	return e
}

func evalNode(n syntax.Node, e *env) (*Value, error) {
	switch v := n.(type) {
	case *syntax.Int:
		return Int(v.Value), nil
	case *syntax.Float:
		return Float(v.Value), nil
	case *syntax.String:
		return evalInterp(v.Parts, e, func(s string) *Value { return Str(s) })
	case *syntax.Path:
		return evalInterp(v.Parts, e, func(s string) *Value { return Path(s) })
	case *syntax.URI:
		return Str(v.Value), nil
	case *syntax.Var:
		val, ok := e.lookup(v.Name)
		if !ok {
			return nil, errf(n, "undefined variable '%s'", v.Name)
		}
		return val, nil
	case *syntax.ParenExpr:
		return evalNode(v.Inner, e)
	case *syntax.List:
		items := make([]*Value, 0, len(v.Elems))
		for _, el := range v.Elems {
			val, err := evalNode(el, e)
			if err != nil {
				return nil, err
			}
			items = append(items, val)
		}
		return List(items), nil
	case *syntax.Attrs:
		return evalAttrs(v, e)
	case *syntax.Select:
		return evalSelect(v, e)
	case *syntax.Let:
		inner := child(e)
		if err := bindLet(v.Binds, inner); err != nil {
			return nil, err
		}
		return evalNode(v.Body, inner)
	case *syntax.If:
		cond, err := evalNode(v.Cond, e)
		if err != nil {
			return nil, err
		}
		if cond.Kind != KindBool {
			return nil, errf(n, "condition is a %s, not a bool", cond.TypeName())
		}
		if cond.Bool {
			return evalNode(v.Then, e)
		}
		return evalNode(v.Else, e)
	case *syntax.Assert:
		cond, err := evalNode(v.Cond, e)
		if err != nil {
			return nil, err
		}
		if cond.Kind != KindBool || !cond.Bool {
			return nil, errf(n, "assertion failed")
		}
		return evalNode(v.Body, e)
	case *syntax.UnaryOp:
		return evalUnary(v, e)
	case *syntax.BinOp:
		return evalBinOp(v, e)
	case *syntax.Lambda:
		return &Value{Kind: KindLambda, Arity: lambdaArity(v), Position: n.Range().Start.String()}, nil
	case *syntax.Call:
		return nil, errf(n, "function application requires a real Nix evaluator (out of scope, see package doc)")
	case *syntax.With:
		return nil, errf(n, "'with' requires runtime attribute discovery (out of scope, see package doc)")
	case *syntax.Bad:
		return nil, errf(n, "unparsed expression")
	default:
		return nil, errf(n, "unsupported construct")
	}
}

func lambdaArity(l *syntax.Lambda) int {
	if l.Formals != nil {
		return len(l.Formals)
	}
	return 1
}

func evalInterp(parts []syntax.InterpPart, e *env, wrap func(string) *Value) (*Value, error) {
	var b strings.Builder
	for _, p := range parts {
		if p.Interp == nil {
			b.WriteString(p.Escaped)
			continue
		}
		v, err := evalNode(p.Interp, e)
		if err != nil {
			return nil, err
		}
		b.WriteString(v.String())
	}
	return wrap(b.String()), nil
}

func bindLet(binds []syntax.BindingOrInherit, e *env) error {
	// Two passes: declare every static name eagerly as null so that
	// forward/mutually-recursive references between sibling bindings at
	// least resolve (matching "rec"-like let semantics) before filling in
	// real values in declaration order.
	for _, b := range binds {
		if binding, ok := b.(*syntax.Binding); ok && len(binding.Path.Names) == 1 && binding.Path.Names[0].IsStatic() {
			e.vars[binding.Path.Names[0].StaticName()] = Null()
		}
	}
	for _, b := range binds {
		switch n := b.(type) {
		case *syntax.Binding:
			if len(n.Path.Names) != 1 || !n.Path.Names[0].IsStatic() {
				return errf(n, "nested or dynamic let bindings are not supported")
			}
			val, err := evalNode(n.Value, e)
			if err != nil {
				return err
			}
			e.vars[n.Path.Names[0].StaticName()] = val
		case *syntax.Inherit:
			for _, name := range n.Names {
				if !name.IsStatic() {
					return errf(n, "dynamic inherit is not supported")
				}
				if n.Expr != nil {
					src, err := evalNode(n.Expr, e)
					if err != nil {
						return err
					}
					v, ok := src.Attrs[name.StaticName()]
					if !ok {
						return errf(n, "attribute '%s' missing", name.StaticName())
					}
					e.vars[name.StaticName()] = v
					continue
				}
				v, ok := e.lookup(name.StaticName())
				if !ok {
					return errf(n, "undefined variable '%s'", name.StaticName())
				}
				e.vars[name.StaticName()] = v
			}
		}
	}
	return nil
}

func evalAttrs(a *syntax.Attrs, e *env) (*Value, error) {
	sema, ok := a.Sema.(*lower.SemaAttrs)
	if !ok {
		return nil, errf(a, "attribute set was not lowered")
	}
	return evalSema(sema, e)
}

func evalSema(sema *lower.SemaAttrs, e *env) (*Value, error) {
	if len(sema.Dynamic) > 0 {
		return nil, errf(nil, "dynamic attribute names are not supported by the evaluator")
	}
	out := map[string]*Value{}
	scope := e
	if sema.Recursive {
		// rec { ... }: bindings may reference sibling names. Declare all
		// static names first (as null placeholders), mirroring bindLet.
		scope = child(e)
		for name := range sema.Static {
			scope.vars[name] = Null()
		}
	}
	for name, body := range sema.Static {
		var val *Value
		var err error
		if body.Nested != nil {
			val, err = evalSema(body.Nested, scope)
		} else {
			val, err = evalNode(body.Value, scope)
		}
		if err != nil {
			return nil, err
		}
		out[name] = val
		if sema.Recursive {
			scope.vars[name] = val
		}
	}
	return Attrs(out), nil
}

func evalSelect(s *syntax.Select, e *env) (*Value, error) {
	target, err := evalNode(s.Target, e)
	if err != nil {
		if s.Default != nil {
			return evalNode(s.Default, e)
		}
		return nil, err
	}
	cur := target
	for _, name := range s.Path.Names {
		if !name.IsStatic() {
			return nil, errf(s, "dynamic attribute name in select is not supported")
		}
		if cur.Kind != KindAttrs {
			if s.Default != nil {
				return evalNode(s.Default, e)
			}
			return nil, errf(s, "value is a %s, not an attribute set", cur.TypeName())
		}
		next, ok := cur.Attrs[name.StaticName()]
		if !ok {
			if s.Default != nil {
				return evalNode(s.Default, e)
			}
			return nil, errf(s, "attribute '%s' missing", name.StaticName())
		}
		cur = next
	}
	return cur, nil
}

func evalUnary(u *syntax.UnaryOp, e *env) (*Value, error) {
	v, err := evalNode(u.Operand, e)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case syntax.OpNeg:
		switch v.Kind {
		case KindInt:
			return Int(-v.Int), nil
		case KindFloat:
			return Float(-v.Float), nil
		}
		return nil, errf(u, "cannot negate a %s", v.TypeName())
	case syntax.OpNot:
		if v.Kind != KindBool {
			return nil, errf(u, "cannot negate a %s", v.TypeName())
		}
		return Bool(!v.Bool), nil
	}
	return nil, errf(u, "unknown unary operator")
}

func evalBinOp(b *syntax.BinOp, e *env) (*Value, error) {
	// Short-circuit operators evaluate Right lazily.
	switch b.Op {
	case syntax.OpAnd:
		l, err := evalNode(b.Left, e)
		if err != nil {
			return nil, err
		}
		if l.Kind != KindBool {
			return nil, errf(b, "left side of && is a %s", l.TypeName())
		}
		if !l.Bool {
			return Bool(false), nil
		}
		r, err := evalNode(b.Right, e)
		if err != nil {
			return nil, err
		}
		return Bool(r.Kind == KindBool && r.Bool), nil
	case syntax.OpOr:
		l, err := evalNode(b.Left, e)
		if err != nil {
			return nil, err
		}
		if l.Kind == KindBool && l.Bool {
			return Bool(true), nil
		}
		r, err := evalNode(b.Right, e)
		if err != nil {
			return nil, err
		}
		return Bool(r.Kind == KindBool && r.Bool), nil
	}

	l, err := evalNode(b.Left, e)
	if err != nil {
		return nil, err
	}
	r, err := evalNode(b.Right, e)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case syntax.OpAdd:
		return arith(b, l, r, func(a, c int64) int64 { return a + c }, func(a, c float64) float64 { return a + c }, func(a, c string) (string, bool) { return a + c, true })
	case syntax.OpSub:
		return arith(b, l, r, func(a, c int64) int64 { return a - c }, func(a, c float64) float64 { return a - c }, nil)
	case syntax.OpMul:
		return arith(b, l, r, func(a, c int64) int64 { return a * c }, func(a, c float64) float64 { return a * c }, nil)
	case syntax.OpDiv:
		if r.Kind == KindInt && r.Int == 0 || r.Kind == KindFloat && r.Float == 0 {
			return nil, errf(b, "division by zero")
		}
		return arith(b, l, r, func(a, c int64) int64 { return a / c }, func(a, c float64) float64 { return a / c }, nil)
	case syntax.OpConcat:
		if l.Kind != KindList || r.Kind != KindList {
			return nil, errf(b, "++ requires two lists")
		}
		return List(append(append([]*Value{}, l.List...), r.List...)), nil
	case syntax.OpUpdate:
		if l.Kind != KindAttrs || r.Kind != KindAttrs {
			return nil, errf(b, "// requires two attribute sets")
		}
		out := map[string]*Value{}
		for k, v := range l.Attrs {
			out[k] = v
		}
		for k, v := range r.Attrs {
			out[k] = v
		}
		return Attrs(out), nil
	case syntax.OpEq:
		return Bool(valuesEqual(l, r)), nil
	case syntax.OpNeq:
		return Bool(!valuesEqual(l, r)), nil
	case syntax.OpLt, syntax.OpLe, syntax.OpGt, syntax.OpGe:
		return compare(b, l, r)
	case syntax.OpHasAttr:
		return Bool(l.Kind == KindAttrs && func() bool { _, ok := l.Attrs[r.Str]; return ok }()), nil
	case syntax.OpImplies:
		if l.Kind != KindBool || r.Kind != KindBool {
			return nil, errf(b, "-> requires two bools")
		}
		return Bool(!l.Bool || r.Bool), nil
	}
	return nil, errf(b, "unsupported operator")
}

func arith(n syntax.Node, l, r *Value, ints func(a, b int64) int64, floats func(a, b float64) float64, strs func(a, b string) (string, bool)) (*Value, error) {
	switch {
	case l.Kind == KindInt && r.Kind == KindInt && ints != nil:
		return Int(ints(l.Int, r.Int)), nil
	case (l.Kind == KindInt || l.Kind == KindFloat) && (r.Kind == KindInt || r.Kind == KindFloat) && floats != nil:
		return Float(floats(asFloat(l), asFloat(r))), nil
	case l.Kind == KindString && r.Kind == KindString && strs != nil:
		s, ok := strs(l.Str, r.Str)
		if ok {
			return Str(s), nil
		}
	}
	return nil, errf(n, "unsupported operand types %s/%s", l.TypeName(), r.TypeName())
}

func asFloat(v *Value) float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Float
}

func valuesEqual(l, r *Value) bool {
	if l.Kind != r.Kind {
		if (l.Kind == KindInt || l.Kind == KindFloat) && (r.Kind == KindInt || r.Kind == KindFloat) {
			return asFloat(l) == asFloat(r)
		}
		return false
	}
	switch l.Kind {
	case KindNull:
		return true
	case KindBool:
		return l.Bool == r.Bool
	case KindInt:
		return l.Int == r.Int
	case KindFloat:
		return l.Float == r.Float
	case KindString, KindPath:
		return l.Str == r.Str
	default:
		return l == r
	}
}

func compare(n syntax.Node, l, r *Value) (*Value, error) {
	var cmp int
	switch {
	case (l.Kind == KindInt || l.Kind == KindFloat) && (r.Kind == KindInt || r.Kind == KindFloat):
		lf, rf := asFloat(l), asFloat(r)
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		}
	case l.Kind == KindString && r.Kind == KindString:
		cmp = strings.Compare(l.Str, r.Str)
	default:
		return nil, errf(n, "unsupported operand types %s/%s for comparison", l.TypeName(), r.TypeName())
	}
	op := n.(*syntax.BinOp).Op
	switch op {
	case syntax.OpLt:
		return Bool(cmp < 0), nil
	case syntax.OpLe:
		return Bool(cmp <= 0), nil
	case syntax.OpGt:
		return Bool(cmp > 0), nil
	case syntax.OpGe:
		return Bool(cmp >= 0), nil
	}
	return nil, errf(n, "unknown comparison operator")
}
