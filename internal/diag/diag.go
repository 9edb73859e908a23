// Package diag implements the diagnostic engine: every error and
// warning the compiler produces is attributed to a source span and
// carries a stable code, so tooling can key off it instead of the
// message text.
package diag

import (
	"sort"

	"github.com/pomsky-lang/pomsky-go/internal/span"
)

// Severity distinguishes fatal diagnostics (which prevent code generation)
// from advisory ones.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Kind groups diagnostics for the purposes of warning suppression
// (-W compat=0, -W deprecated=0) and for documentation.
type Kind string

const (
	KindSyntax     Kind = "syntax"
	KindResolve    Kind = "resolve"
	KindCompat     Kind = "compat"
	KindFeature    Kind = "feature"
	KindRange      Kind = "range"
	KindDeprecated Kind = "deprecated"
)

// Code is a stable four-digit diagnostic identifier of the form P####.
type Code string

// Diagnostic codes. Grouped loosely by Kind; the numeric value carries no
// meaning beyond uniqueness and stability across releases.
const (
	CodeUnexpectedByte     Code = "P0001"
	CodeUnterminatedString Code = "P0002"
	CodeBadEscape          Code = "P0003"
	CodeBadCodePoint       Code = "P0004"
	CodeLeadingZero        Code = "P0005"
	CodeUnexpectedToken    Code = "P0101"
	CodeExpectedToken      Code = "P0102"
	CodeRecursionDepth     Code = "P0103"
	CodeDuplicateGroupName Code = "P0104"
	CodeDuplicateCapIndex  Code = "P0105"
	CodeEmptyAlternation   Code = "P0106"
	CodeLazyMarkerOnLazy   Code = "P0107"
	CodeGroupNameTooLong   Code = "P0108"
	CodeBadCharRange       Code = "P0109"
	CodeNonPrintableRange  Code = "P0110"

	CodeUnknownVariable  Code = "P0201"
	CodeCyclicVariable   Code = "P0202"
	CodeUnknownReference Code = "P0203"
	CodeInvalidRelRef    Code = "P0204"
	CodeAmbiguousRef     Code = "P0205"
	CodeInfiniteRecurse  Code = "P0206"
	CodeDuplicateLet     Code = "P0207"
	CodeNotNegatable     Code = "P0208"
	CodeReservedIdentifier Code = "P0209"

	CodeUnsupportedFeature Code = "P0301"
	CodeFeatureDisallowed  Code = "P0302"

	CodeLookbehindWidth     Code = "P0401"
	CodeLookbehindLength    Code = "P0402"
	CodeRefInLookaround     Code = "P0403"
	CodeForwardRefDisallow  Code = "P0404"
	CodeRepeatedAssertion   Code = "P0405"
	CodeMixedGroupRefs      Code = "P0406"
	CodeSupplementaryInClass Code = "P0407"

	CodeRangeOrder        Code = "P0501"
	CodeRangeDigitLimit   Code = "P0502"
	CodeRangeLeadingZero  Code = "P0503"
	CodeRangeBadBase      Code = "P0504"
	CodeRangeSingleton    Code = "P0505"

	CodeDeprecatedSyntax Code = "P0601"
)

// Diagnostic is a single accumulated error or warning.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Code     Code
	Message  string
	Help     string
	Span     span.Span
}

// Sink accumulates diagnostics across every pass of the pipeline. Every
// sub-pass takes a *Sink instead of failing fast, so every independent
// error in a unit is reported in one run.
type Sink struct {
	diags    []Diagnostic
	suppress map[Kind]bool
}

// NewSink creates an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{suppress: make(map[Kind]bool)}
}

// Suppress disables a whole Kind of warning, e.g. `-W compat=0`. It has no
// effect on SeverityError diagnostics.
func (s *Sink) Suppress(k Kind) {
	s.suppress[k] = true
}

// SuppressAllWarnings implements `-W0`.
func (s *Sink) SuppressAllWarnings() {
	for _, k := range []Kind{KindSyntax, KindResolve, KindCompat, KindFeature, KindRange, KindDeprecated} {
		s.suppress[k] = true
	}
}

// Error records an error diagnostic.
func (s *Sink) Error(code Code, kind Kind, sp span.Span, message string) {
	s.add(Diagnostic{Severity: SeverityError, Kind: kind, Code: code, Message: message, Span: sp})
}

// Errorf is Error with a help string attached.
func (s *Sink) Errorf(code Code, kind Kind, sp span.Span, message, help string) {
	s.add(Diagnostic{Severity: SeverityError, Kind: kind, Code: code, Message: message, Help: help, Span: sp})
}

// Warn records a warning diagnostic, dropped if its Kind was suppressed.
func (s *Sink) Warn(code Code, kind Kind, sp span.Span, message string) {
	if s.suppress[kind] {
		return
	}
	s.add(Diagnostic{Severity: SeverityWarning, Kind: kind, Code: code, Message: message, Span: sp})
}

func (s *Sink) add(d Diagnostic) {
	s.diags = append(s.diags, d)
}

// HasErrors reports whether any error-severity diagnostic was recorded.
// This is what gates code generation.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Diagnostics returns all accumulated diagnostics ordered by
// non-decreasing primary span start. The sort is stable so diagnostics
// at the same position retain emission order.
func (s *Sink) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span.Start < out[j].Span.Start
	})
	return out
}
