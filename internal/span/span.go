// Package span defines the source-location type shared by every stage of
// the compiler, from lexer tokens through diagnostics.
package span

import "fmt"

// Span is a half-open byte range [Start, End) into the original source
// text. An empty span (Start == End) is valid and used for synthetic nodes
// (e.g. the placeholder literal the parser puts in place of an empty
// alternative).
type Span struct {
	Start int
	End   int
}

// New builds a Span, panicking if the range is inverted. Callers that
// cannot guarantee start <= end have a bug upstream; this is not a
// user-input error path.
func New(start, end int) Span {
	if end < start {
		panic(fmt.Sprintf("span: invalid range [%d, %d)", start, end))
	}
	return Span{Start: start, End: end}
}

// Empty returns the zero-width span at pos.
func Empty(pos int) Span {
	return Span{Start: pos, End: pos}
}

// Join returns the smallest span covering both a and b.
func Join(a, b Span) Span {
	start := a.Start
	if b.Start < start {
		start = b.Start
	}
	end := a.End
	if b.End > end {
		end = b.End
	}
	return Span{Start: start, End: end}
}

// Len reports the byte length of the span.
func (s Span) Len() int { return s.End - s.Start }

// Slice returns the substring of src covered by s.
func (s Span) Slice(src string) string {
	return src[s.Start:s.End]
}
