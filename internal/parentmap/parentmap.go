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

// Package parentmap builds a total child->parent table over a syntax
// tree by a single DFS, and answers upward-traversal queries against it,
// per spec §4.5. It is the one side table every request handler in
// internal/controller consults to climb from a cursor-located leaf back
// up to an enclosing construct.
package parentmap

import "github.com/nix-community/nixd-sub001/internal/syntax"

// Map is a total child->parent table for every descendant of the node it
// was built from. The root maps to itself, which doubles as the walk
// sentinel for UpTo/UpExpr.
type Map struct {
	root    syntax.Node
	parents map[syntax.Node]syntax.Node
}

// Build runs a DFS over root and records, for every node reachable from
// it, its immediate parent. root itself maps to itself.
func Build(root syntax.Node) *Map {
	m := &Map{root: root, parents: map[syntax.Node]syntax.Node{}}
	if root == nil {
		return m
	}
	m.parents[root] = root
	syntax.Walk(root, syntax.Visitor{Pre: func(n syntax.Node) bool {
		for _, c := range n.Children() {
			if c == nil {
				continue
			}
			if _, seen := m.parents[c]; !seen {
				m.parents[c] = n
			}
		}
		return true
	}})
	return m
}

// Query returns n's immediate parent. It returns (nil, false) for a node
// that was never part of the tree Build was called on.
func (m *Map) Query(n syntax.Node) (syntax.Node, bool) {
	p, ok := m.parents[n]
	return p, ok
}

// Root returns the node Build was called with.
func (m *Map) Root() syntax.Node { return m.root }

// UpTo walks ancestors starting at n (exclusive) until it finds a node of
// kind, returning it, or returns (nil, false) if the walk reaches the
// root sentinel first without a match.
func (m *Map) UpTo(n syntax.Node, kind syntax.Kind) (syntax.Node, bool) {
	cur, ok := m.parents[n]
	if !ok {
		return nil, false
	}
	for {
		if cur.Kind() == kind {
			return cur, true
		}
		if cur == m.root {
			return nil, false
		}
		next, ok := m.parents[cur]
		if !ok {
			return nil, false
		}
		cur = next
	}
}

// UpExpr walks ancestors starting at n (exclusive) until it finds a node
// whose Kind is an expression kind (Kind.IsExpr), per spec §4.5. AttrName,
// AttrPath, Binding, Inherit and Formal all report IsExpr() == false, so
// this always skips past them to the nearest real expression.
func (m *Map) UpExpr(n syntax.Node) (syntax.Node, bool) {
	cur, ok := m.parents[n]
	if !ok {
		return nil, false
	}
	for {
		if cur.Kind().IsExpr() {
			return cur, true
		}
		if cur == m.root {
			return nil, false
		}
		next, ok := m.parents[cur]
		if !ok {
			return nil, false
		}
		cur = next
	}
}

// NodeAt returns the innermost node in the tree Build was called on whose
// range contains cursor offset. It walks down from root rather than
// consulting the parent table, since the parent table has no spatial
// index; controller handlers call this once per request to locate the
// node under the editor's cursor and then climb with UpExpr/UpTo.
func NodeAt(root syntax.Node, offset int) syntax.Node {
	if root == nil {
		return nil
	}
	best := root
	var descend func(n syntax.Node)
	descend = func(n syntax.Node) {
		for _, c := range n.Children() {
			if c == nil {
				continue
			}
			r := c.Range()
			if r.Start.Offset <= offset && offset <= r.End.Offset {
				best = c
				descend(c)
				return
			}
		}
	}
	descend(root)
	return best
}
