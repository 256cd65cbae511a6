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

// Package diag defines the structured diagnostic, fix and severity types
// shared by the lexer, parser and semantic passes. Its Message/format
// split mirrors cuelang.org/go/cue/errors.Message: the format string and
// its arguments are kept apart so the message can be localized or
// re-rendered without re-deriving it from source.
package diag

import (
	"fmt"
	"strings"

	"github.com/nix-community/nixd-sub001/internal/position"
)

// Severity mirrors the LSP DiagnosticSeverity enum ordering.
type Severity int

const (
	Error Severity = iota + 1
	Warning
	Info
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// Kind identifies a diagnostic's shape: its default severity, short name
// and message format all flow from the Kind, matching spec §3's
// "Severity and message are derived from kind" invariant.
type Kind int

const (
	_ Kind = iota

	// Lexer diagnostics.
	KindUnterminatedBlockComment
	KindLeadingZero
	KindMissingExponent
	KindIllegalCharacter
	KindUnterminatedString

	// Parser diagnostics.
	KindExpected
	KindUnexpectedToken
	KindRemoveDot
	KindOrIdentifier
	KindUnknownBinding

	// Lowering diagnostics.
	KindAttrDuplicated
	KindRecIgnored
	KindEmptyInherit
	KindDynamicInherit
	KindLetDynamic

	// Semantic (VLA) diagnostics.
	KindUndefinedVariable
)

type kindInfo struct {
	sname    string
	severity Severity
	format   string
}

var kindTable = map[Kind]kindInfo{
	KindUnterminatedBlockComment: {"unterminated-comment", Error, "unterminated block comment"},
	KindLeadingZero:              {"leading-zero", Warning, "leading zero in numeric literal"},
	KindMissingExponent:          {"missing-exponent", Error, "missing digits after exponent marker"},
	KindIllegalCharacter:         {"illegal-character", Error, "illegal character {}"},
	KindUnterminatedString:       {"unterminated-string", Error, "unterminated string literal"},

	KindExpected:        {"expected", Error, "expected {}, found {}"},
	KindUnexpectedToken: {"unexpected-token", Error, "unexpected token {}"},
	KindRemoveDot:       {"remove-dot", Error, "unexpected extra '.' in attribute path"},
	KindOrIdentifier:    {"or-identifier", Hint, "'or' used as an identifier"},
	KindUnknownBinding:  {"unknown-binding", Error, "unrecognised syntax in binding list, skipping to {}"},

	KindAttrDuplicated: {"attr-duplicated", Error, "attribute {} already defined"},
	KindRecIgnored:     {"rec-ignored", Warning, "'rec' on a nested attribute set is ignored when merged"},
	KindEmptyInherit:   {"empty-inherit", Warning, "empty inherit has no effect"},
	KindDynamicInherit:  {"dynamic-inherit", Error, "dynamic attribute name not allowed in inherit"},
	KindLetDynamic:      {"let-dynamic", Error, "dynamic attribute name not allowed in a let binding"},

	KindUndefinedVariable: {"undefined-variable", Warning, "undefined variable {}"},
}

func (k Kind) info() kindInfo {
	if info, ok := kindTable[k]; ok {
		return info
	}
	return kindInfo{sname: "unknown", severity: Error, format: "unknown diagnostic"}
}

// ShortName returns the stable machine-readable name used by
// diagnostic.suppress configuration (spec §6).
func (k Kind) ShortName() string { return k.info().sname }

// DefaultSeverity returns the severity this Kind carries unless overridden.
func (k Kind) DefaultSeverity() Severity { return k.info().severity }

// Edit is a single textual replacement. Per spec §3, it is a pure removal
// iff NewText is empty and OldRange is non-empty, and a pure insertion iff
// OldRange is empty.
type Edit struct {
	OldRange position.Range
	NewText  string
}

// IsRemoval reports whether e deletes text without inserting any.
func (e Edit) IsRemoval() bool { return e.NewText == "" && !e.OldRange.Empty() }

// IsInsertion reports whether e inserts text without deleting any.
func (e Edit) IsInsertion() bool { return e.OldRange.Empty() }

// Fix is a named, applicable set of edits. Diagnostics may carry more than
// one Fix when there is more than one reasonable way to recover (spec
// §4.2's remove-dot diagnostic offers two).
type Fix struct {
	Message string
	Edits   []Edit
}

// Note attaches a secondary position to a diagnostic, e.g. pointing back
// at an unclosed delimiter or an attribute's earlier definition.
type Note struct {
	Range   position.Range
	Message string
}

// Diagnostic is the structured error/warning/info/hint record produced by
// the lexer, parser and semantic passes, and published to the LSP client
// after conversion in internal/controller.
type Diagnostic struct {
	Kind     Kind
	Range    position.Range
	Severity Severity
	Args     []any
	Notes    []Note
	Fixes    []Fix
	Tags     []string
}

// New constructs a Diagnostic with the Kind's default severity.
func New(kind Kind, rng position.Range, args ...any) *Diagnostic {
	return &Diagnostic{
		Kind:     kind,
		Range:    rng,
		Severity: kind.DefaultSeverity(),
		Args:     args,
	}
}

// WithNote appends a note and returns d for chaining.
func (d *Diagnostic) WithNote(rng position.Range, message string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Range: rng, Message: message})
	return d
}

// WithFix appends a fix and returns d for chaining.
func (d *Diagnostic) WithFix(fix Fix) *Diagnostic {
	d.Fixes = append(d.Fixes, fix)
	return d
}

// ShortName exposes the Kind's stable name, used for diagnostic.suppress
// filtering (spec §6) without leaking Kind's internal numbering.
func (d *Diagnostic) ShortName() string { return d.Kind.ShortName() }

// Format substitutes Args into the Kind's message format at "{}" markers,
// in order, per spec §3.
func (d *Diagnostic) Format() string {
	format := d.Kind.info().format
	var b strings.Builder
	argi := 0
	for {
		i := strings.Index(format, "{}")
		if i < 0 {
			b.WriteString(format)
			break
		}
		b.WriteString(format[:i])
		if argi < len(d.Args) {
			fmt.Fprintf(&b, "%v", d.Args[argi])
			argi++
		} else {
			b.WriteString("{}")
		}
		format = format[i+2:]
	}
	return b.String()
}

// Error implements the error interface so a Diagnostic composes with the
// standard errors package, the way cue/errors.Error does.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Range, d.Severity, d.Format())
}

// List is an ordered collection of diagnostics for one translation unit.
type List []*Diagnostic

// Add appends a diagnostic.
func (l *List) Add(d *Diagnostic) { *l = append(*l, d) }

// Filter returns a new List with diagnostics whose short name is in
// suppress removed, implementing the diagnostic.suppress configuration
// key from spec §6.
func (l List) Filter(suppress map[string]bool) List {
	if len(suppress) == 0 {
		return l
	}
	out := make(List, 0, len(l))
	for _, d := range l {
		if !suppress[d.ShortName()] {
			out = append(out, d)
		}
	}
	return out
}
