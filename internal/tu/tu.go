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

// Package tu implements the translation-unit store of spec §4.6: the
// per-document object holding source text, diagnostics, AST and derived
// analyses, rebuilt atomically on every text change. A TU is replaced,
// never mutated, after construction, so a handler holding a reference to
// one sees a consistent snapshot even while later edits are in flight —
// the same "never mutate, only swap a pointer" discipline
// cuelang.org/go/internal/lsp/cache.File uses for its parsed-file cache.
package tu

import (
	"sync"

	"github.com/nix-community/nixd-sub001/internal/diag"
	"github.com/nix-community/nixd-sub001/internal/lower"
	"github.com/nix-community/nixd-sub001/internal/parentmap"
	"github.com/nix-community/nixd-sub001/internal/parser"
	"github.com/nix-community/nixd-sub001/internal/syntax"
	"github.com/nix-community/nixd-sub001/internal/vla"
)

// TU is one document's fully-derived state at a given version. Every
// field is populated once at construction and never mutated afterwards;
// callers may read it freely without a lock.
type TU struct {
	Path    string
	Version int32
	Source  string

	AST         syntax.Node
	Diagnostics diag.List
	ParentMap   *parentmap.Map
	VLA         *vla.Analysis
}

// Build runs the lexer, parser, lowering, variable-lookup analysis and
// parent-map analysis over source and returns the resulting TU, per
// spec §4.6 step 2. Lowering diagnostics are appended after parse
// diagnostics so publish order matches the pipeline order.
func Build(path string, version int32, source string) *TU {
	root, diags := parser.Parse([]byte(source))
	diags = append(diag.List{}, diags...)
	diags = append(diags, lower.LowerTree(root)...)

	analysis := vla.Analyze(root)

	return &TU{
		Path:        path,
		Version:     version,
		Source:      source,
		AST:         root,
		Diagnostics: diags,
		ParentMap:   parentmap.Build(root),
		VLA:         analysis,
	}
}

// UndefinedVariableDiagnostics derives the "undefined-variable" warnings
// named in spec §4.4/§7 from a completed VLA pass, looking only at Var
// nodes whose result is exactly Undefined (not FromWith: a name shadowed
// by a dynamic with-scope is not a warning).
func (t *TU) UndefinedVariableDiagnostics() diag.List {
	var out diag.List
	syntax.Walk(t.AST, syntax.Visitor{Pre: func(n syntax.Node) bool {
		v, ok := n.(*syntax.Var)
		if !ok {
			return true
		}
		res, ok := v.Lookup.(*vla.LookupResult)
		if ok && res.Kind == vla.Undefined {
			out = append(out, diag.New(diag.KindUndefinedVariable, v.Range(), v.Name))
		}
		return true
	}})
	return out
}

// AllDiagnostics is Diagnostics plus the derived undefined-variable
// warnings, with suppress applied, ready for textDocument/publishDiagnostics.
func (t *TU) AllDiagnostics(suppress map[string]bool) diag.List {
	all := append(diag.List{}, t.Diagnostics...)
	all = append(all, t.UndefinedVariableDiagnostics()...)
	return all.Filter(suppress)
}

// Store is the controller's map of open documents to their current TU,
// guarded by a single RWMutex per spec §5 ("DraftStore and the TU map
// are guarded by a single lock; writes happen only on the I/O thread;
// reads take a shared reference"). Handlers call Get once and then work
// against the returned *TU without holding the lock.
type Store struct {
	mu   sync.RWMutex
	tus  map[string]*TU
	vers map[string]int32
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{tus: map[string]*TU{}, vers: map[string]int32{}}
}

// Open installs the first TU for path, per didOpen.
func (s *Store) Open(path string, version int32, text string) *TU {
	t := Build(path, version, text)
	s.mu.Lock()
	s.tus[path] = t
	s.vers[path] = version
	s.mu.Unlock()
	return t
}

// Update rebuilds the TU for path from the new full text and atomically
// swaps it in, per didChange (spec §4.6). The caller is responsible for
// having already applied any incremental LSP edits to produce text; the
// controller's didChange does this by folding each content-change event
// onto the previous TU's Source before calling Update.
func (s *Store) Update(path string, version int32, text string) *TU {
	t := Build(path, version, text)
	s.mu.Lock()
	s.tus[path] = t
	s.vers[path] = version
	s.mu.Unlock()
	return t
}

// Get returns the current TU for path, or (nil, false) if the document
// is not open. Safe to call concurrently with Open/Update/Close.
func (s *Store) Get(path string) (*TU, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tus[path]
	return t, ok
}

// Close drops path's TU, per didClose. A handler already holding a *TU
// for path from before Close keeps a valid, if now-orphaned, snapshot.
func (s *Store) Close(path string) {
	s.mu.Lock()
	delete(s.tus, path)
	delete(s.vers, path)
	s.mu.Unlock()
}
