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

package bytecode

import "fmt"

// encodeNode writes n's tag and payload. It never writes a presence
// bit of its own; callers that allow a nil child (Select.Default) go
// through encodeOptionalNode instead.
func encodeNode(n Node) ([]byte, error) {
	enc := encKind(n.Kind())
	switch v := n.(type) {
	case Int:
		return append(enc, encInt64(v.Value)...), nil
	case Float:
		return append(enc, encFloat64(v.Value)...), nil
	case String:
		return append(enc, encString(v.Value)...), nil
	case Path:
		return append(enc, encString(v.Value)...), nil
	case Var:
		return append(enc, encString(v.Name)...), nil
	case Pos:
		return enc, nil
	case Select:
		target, err := encodeNode(v.Target)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding select target: %w", err)
		}
		def, err := encodeOptionalNode(v.Default)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding select default: %w", err)
		}
		enc = append(enc, target...)
		enc = append(enc, encStrings(v.Path)...)
		enc = append(enc, def...)
		return enc, nil
	case ConcatStrings:
		parts, err := encodeNodes(v.Parts)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding concat-strings parts: %w", err)
		}
		return append(enc, parts...), nil
	case Call:
		fn, err := encodeNode(v.Fn)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding call function: %w", err)
		}
		args, err := encodeNodes(v.Args)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding call args: %w", err)
		}
		enc = append(enc, fn...)
		enc = append(enc, args...)
		return enc, nil
	case Attrs:
		if len(v.Names) != len(v.Values) {
			return nil, fmt.Errorf("bytecode: attrs has %d names but %d values", len(v.Names), len(v.Values))
		}
		values, err := encodeNodes(v.Values)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding attrs values: %w", err)
		}
		enc = append(enc, encBool(v.Recursive)...)
		enc = append(enc, encStrings(v.Names)...)
		enc = append(enc, values...)
		return enc, nil
	case Let:
		if len(v.Names) != len(v.Values) {
			return nil, fmt.Errorf("bytecode: let has %d names but %d values", len(v.Names), len(v.Values))
		}
		values, err := encodeNodes(v.Values)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding let values: %w", err)
		}
		body, err := encodeNode(v.Body)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding let body: %w", err)
		}
		enc = append(enc, encStrings(v.Names)...)
		enc = append(enc, values...)
		enc = append(enc, body...)
		return enc, nil
	case Lambda:
		body, err := encodeNode(v.Body)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding lambda body: %w", err)
		}
		enc = append(enc, encString(v.Param)...)
		enc = append(enc, encStrings(v.Formals)...)
		enc = append(enc, body...)
		return enc, nil
	case If:
		cond, err := encodeNode(v.Cond)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding if cond: %w", err)
		}
		then, err := encodeNode(v.Then)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding if then: %w", err)
		}
		els, err := encodeNode(v.Else)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding if else: %w", err)
		}
		enc = append(enc, cond...)
		enc = append(enc, then...)
		enc = append(enc, els...)
		return enc, nil
	case List:
		items, err := encodeNodes(v.Items)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding list items: %w", err)
		}
		return append(enc, items...), nil
	case OpAnd:
		return encodeBinOp(enc, v.LHS, v.RHS)
	case OpOr:
		return encodeBinOp(enc, v.LHS, v.RHS)
	case OpImpl:
		return encodeBinOp(enc, v.LHS, v.RHS)
	case OpEq:
		return encodeBinOp(enc, v.LHS, v.RHS)
	case OpNEq:
		return encodeBinOp(enc, v.LHS, v.RHS)
	case OpUpdate:
		return encodeBinOp(enc, v.LHS, v.RHS)
	case OpConcatLists:
		return encodeBinOp(enc, v.LHS, v.RHS)
	case OpNot:
		operand, err := encodeNode(v.Operand)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding op-not operand: %w", err)
		}
		return append(enc, operand...), nil
	case OpHasAttr:
		target, err := encodeNode(v.Target)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding op-has-attr target: %w", err)
		}
		enc = append(enc, target...)
		enc = append(enc, encStrings(v.Path)...)
		return enc, nil
	case With:
		scope, err := encodeNode(v.Scope)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding with scope: %w", err)
		}
		body, err := encodeNode(v.Body)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding with body: %w", err)
		}
		enc = append(enc, scope...)
		enc = append(enc, body...)
		return enc, nil
	case Assert:
		cond, err := encodeNode(v.Cond)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding assert cond: %w", err)
		}
		body, err := encodeNode(v.Body)
		if err != nil {
			return nil, fmt.Errorf("bytecode: encoding assert body: %w", err)
		}
		enc = append(enc, cond...)
		enc = append(enc, body...)
		return enc, nil
	default:
		return nil, fmt.Errorf("bytecode: unhandled node kind %v", n.Kind())
	}
}

func encodeBinOp(enc []byte, lhs, rhs Node) ([]byte, error) {
	l, err := encodeNode(lhs)
	if err != nil {
		return nil, fmt.Errorf("bytecode: encoding lhs: %w", err)
	}
	r, err := encodeNode(rhs)
	if err != nil {
		return nil, fmt.Errorf("bytecode: encoding rhs: %w", err)
	}
	enc = append(enc, l...)
	enc = append(enc, r...)
	return enc, nil
}

func encodeNodes(ns []Node) ([]byte, error) {
	enc := encInt64(int64(len(ns)))
	for i, n := range ns {
		e, err := encodeNode(n)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		enc = append(enc, e...)
	}
	return enc, nil
}

func encodeOptionalNode(n Node) ([]byte, error) {
	if n == nil {
		return encBool(false), nil
	}
	enc, err := encodeNode(n)
	if err != nil {
		return nil, err
	}
	return append(encBool(true), enc...), nil
}

func decodeNode(data []byte) (Node, int, error) {
	kind, n, err := decKind(data)
	if err != nil {
		return nil, 0, err
	}
	total := n
	data = data[n:]
	switch kind {
	case KindInt:
		v, m, err := decInt64(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding int: %w", err)
		}
		return Int{Value: v}, total + m, nil
	case KindFloat:
		v, m, err := decFloat64(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding float: %w", err)
		}
		return Float{Value: v}, total + m, nil
	case KindString:
		v, m, err := decString(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding string: %w", err)
		}
		return String{Value: v}, total + m, nil
	case KindPath:
		v, m, err := decString(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding path: %w", err)
		}
		return Path{Value: v}, total + m, nil
	case KindVar:
		v, m, err := decString(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding var: %w", err)
		}
		return Var{Name: v}, total + m, nil
	case KindPos:
		return Pos{}, total, nil
	case KindSelect:
		target, m, err := decodeNode(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding select target: %w", err)
		}
		data, total = data[m:], total+m
		path, m, err := decStrings(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding select path: %w", err)
		}
		data, total = data[m:], total+m
		def, m, err := decodeOptionalNode(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding select default: %w", err)
		}
		total += m
		return Select{Target: target, Path: path, Default: def}, total, nil
	case KindConcatStrings:
		parts, m, err := decodeNodes(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding concat-strings parts: %w", err)
		}
		return ConcatStrings{Parts: parts}, total + m, nil
	case KindCall:
		fn, m, err := decodeNode(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding call function: %w", err)
		}
		data, total = data[m:], total+m
		args, m, err := decodeNodes(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding call args: %w", err)
		}
		return Call{Fn: fn, Args: args}, total + m, nil
	case KindAttrs:
		recursive, m, err := decBool(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding attrs recursive flag: %w", err)
		}
		data, total = data[m:], total+m
		names, m, err := decStrings(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding attrs names: %w", err)
		}
		data, total = data[m:], total+m
		values, m, err := decodeNodes(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding attrs values: %w", err)
		}
		return Attrs{Recursive: recursive, Names: names, Values: values}, total + m, nil
	case KindLet:
		names, m, err := decStrings(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding let names: %w", err)
		}
		data, total = data[m:], total+m
		values, m, err := decodeNodes(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding let values: %w", err)
		}
		data, total = data[m:], total+m
		body, m, err := decodeNode(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding let body: %w", err)
		}
		return Let{Names: names, Values: values, Body: body}, total + m, nil
	case KindLambda:
		param, m, err := decString(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding lambda param: %w", err)
		}
		data, total = data[m:], total+m
		formals, m, err := decStrings(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding lambda formals: %w", err)
		}
		data, total = data[m:], total+m
		body, m, err := decodeNode(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding lambda body: %w", err)
		}
		return Lambda{Param: param, Formals: formals, Body: body}, total + m, nil
	case KindIf:
		cond, m, err := decodeNode(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding if cond: %w", err)
		}
		data, total = data[m:], total+m
		then, m, err := decodeNode(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding if then: %w", err)
		}
		data, total = data[m:], total+m
		els, m, err := decodeNode(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding if else: %w", err)
		}
		return If{Cond: cond, Then: then, Else: els}, total + m, nil
	case KindList:
		items, m, err := decodeNodes(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding list items: %w", err)
		}
		return List{Items: items}, total + m, nil
	case KindOpAnd, KindOpOr, KindOpImpl, KindOpEq, KindOpNEq, KindOpUpdate, KindOpConcatLists:
		lhs, rhs, m, err := decodeBinOp(data)
		if err != nil {
			return nil, 0, err
		}
		total += m
		switch kind {
		case KindOpAnd:
			return OpAnd{LHS: lhs, RHS: rhs}, total, nil
		case KindOpOr:
			return OpOr{LHS: lhs, RHS: rhs}, total, nil
		case KindOpImpl:
			return OpImpl{LHS: lhs, RHS: rhs}, total, nil
		case KindOpEq:
			return OpEq{LHS: lhs, RHS: rhs}, total, nil
		case KindOpNEq:
			return OpNEq{LHS: lhs, RHS: rhs}, total, nil
		case KindOpUpdate:
			return OpUpdate{LHS: lhs, RHS: rhs}, total, nil
		default:
			return OpConcatLists{LHS: lhs, RHS: rhs}, total, nil
		}
	case KindOpNot:
		operand, m, err := decodeNode(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding op-not operand: %w", err)
		}
		return OpNot{Operand: operand}, total + m, nil
	case KindOpHasAttr:
		target, m, err := decodeNode(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding op-has-attr target: %w", err)
		}
		data, total = data[m:], total+m
		path, m, err := decStrings(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding op-has-attr path: %w", err)
		}
		return OpHasAttr{Target: target, Path: path}, total + m, nil
	case KindWith:
		scope, m, err := decodeNode(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding with scope: %w", err)
		}
		data, total = data[m:], total+m
		body, m, err := decodeNode(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding with body: %w", err)
		}
		return With{Scope: scope, Body: body}, total + m, nil
	case KindAssert:
		cond, m, err := decodeNode(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding assert cond: %w", err)
		}
		data, total = data[m:], total+m
		body, m, err := decodeNode(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding assert body: %w", err)
		}
		return Assert{Cond: cond, Body: body}, total + m, nil
	default:
		return nil, 0, fmt.Errorf("bytecode: unhandled node kind %d", kind)
	}
}

func decodeBinOp(data []byte) (lhs, rhs Node, consumed int, err error) {
	lhs, m, err := decodeNode(data)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("bytecode: decoding lhs: %w", err)
	}
	data, consumed = data[m:], m
	rhs, m, err = decodeNode(data)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("bytecode: decoding rhs: %w", err)
	}
	return lhs, rhs, consumed + m, nil
}

func decodeNodes(data []byte) ([]Node, int, error) {
	count, n, err := decInt64(data)
	if err != nil {
		return nil, 0, fmt.Errorf("bytecode: decoding node slice length: %w", err)
	}
	if count < 0 {
		return nil, 0, fmt.Errorf("bytecode: negative node slice length")
	}
	total := n
	data = data[n:]
	if count == 0 {
		return nil, total, nil
	}
	out := make([]Node, 0, count)
	for i := int64(0); i < count; i++ {
		node, m, err := decodeNode(data)
		if err != nil {
			return nil, 0, fmt.Errorf("bytecode: decoding node slice element %d: %w", i, err)
		}
		out = append(out, node)
		data = data[m:]
		total += m
	}
	return out, total, nil
}

func decodeOptionalNode(data []byte) (Node, int, error) {
	present, n, err := decBool(data)
	if err != nil {
		return nil, 0, err
	}
	if !present {
		return nil, n, nil
	}
	node, m, err := decodeNode(data[n:])
	if err != nil {
		return nil, 0, err
	}
	return node, n + m, nil
}
