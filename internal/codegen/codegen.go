// Package codegen renders a resolved, optimized AST into concrete regex
// syntax for one of the eight target flavors. It is a single recursive
// walk that tracks the minimum parenthesization needed at each point. It
// branches on the flavor name for codepoint escapes, named group and
// named reference syntax, recursion and script property names, and on
// flavor.Capabilities for the repeated-zero-width-assertion polyfill and
// Unicode-aware shorthands. Atomic groups are always written as (?>...).
package codegen

import (
	"fmt"
	"strings"

	"github.com/pomsky-lang/pomsky-go/internal/ast"
	"github.com/pomsky-lang/pomsky-go/internal/flavor"
)

// Options configures a Generate call.
type Options struct {
	Flavor       flavor.Name
	Capabilities flavor.Capabilities
}

// Generate renders e as the target flavor's regex syntax. e must already
// be resolved (no VariableRef/RangeExpr/Negation nodes) and optimized.
// A Repetition's Greedy field, not its Mode, decides whether it is lazy.
func Generate(e ast.Expr, opts Options) string {
	g := &generator{opts: opts}
	g.writeAlt(e)
	return g.buf.String()
}

type generator struct {
	buf  strings.Builder
	opts Options
}

// precedence tiers, lowest binds loosest: alternation < sequence < repeated atom.
func (g *generator) writeAlt(e ast.Expr) {
	alt, ok := e.(*ast.Alternation)
	if !ok {
		g.writeSeq(e)
		return
	}
	for i, a := range alt.Alts {
		if i > 0 {
			g.buf.WriteByte('|')
		}
		g.writeSeq(a)
	}
}

func (g *generator) writeSeq(e ast.Expr) {
	seq, ok := e.(*ast.Sequence)
	if !ok {
		g.writeFactor(e)
		return
	}
	for _, it := range seq.Items {
		g.writeFactor(it)
	}
}

func (g *generator) writeFactor(e ast.Expr) {
	rep, ok := e.(*ast.Repetition)
	if !ok {
		g.writeAtom(e)
		return
	}
	g.writeRepetitionTarget(rep.Child)
	g.writeQuantifier(rep)
}

// writeRepetitionTarget wraps the repeated child in a non-capturing
// group whenever it is not already a single atom (a multi-item
// Sequence/Alternation, or a Literal longer than one code point, would
// otherwise only bind its last element to the quantifier).
func (g *generator) writeRepetitionTarget(child ast.Expr) {
	if needsGroupForRepetition(child) {
		g.buf.WriteString("(?:")
		g.writeAlt(child)
		g.buf.WriteByte(')')
		return
	}
	if look, ok := child.(*ast.Lookaround); ok && !g.opts.Capabilities.RepeatedZeroWidthAssertion {
		// JS (and similarly limited flavors) reject a bare repeated
		// assertion; wrapping it in a non-capturing group is accepted.
		g.buf.WriteString("(?:")
		g.writeAtom(look)
		g.buf.WriteByte(')')
		return
	}
	g.writeAtom(child)
}

func needsGroupForRepetition(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.Sequence:
		return true
	case *ast.Alternation:
		return true
	case *ast.Literal:
		return len([]rune(n.Text)) > 1
	default:
		return false
	}
}

func (g *generator) writeQuantifier(rep *ast.Repetition) {
	switch {
	case rep.Lower == 0 && rep.Upper == nil:
		g.buf.WriteByte('*')
	case rep.Lower == 1 && rep.Upper == nil:
		g.buf.WriteByte('+')
	case rep.Lower == 0 && rep.Upper != nil && *rep.Upper == 1:
		g.buf.WriteByte('?')
	case rep.Upper != nil && *rep.Upper == rep.Lower:
		fmt.Fprintf(&g.buf, "{%d}", rep.Lower)
	case rep.Upper == nil:
		fmt.Fprintf(&g.buf, "{%d,}", rep.Lower)
	default:
		fmt.Fprintf(&g.buf, "{%d,%d}", rep.Lower, *rep.Upper)
	}
	if !rep.Greedy {
		g.buf.WriteByte('?')
	}
}

func (g *generator) writeAtom(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Literal:
		for _, r := range n.Text {
			g.writeLiteralRune(r)
		}
	case *ast.CodePoint:
		g.emitCodePoint(n.Value)
	case *ast.Grapheme:
		g.buf.WriteString(`\X`)
	case *ast.Dot:
		g.buf.WriteByte('.')
	case *ast.Recursion:
		g.writeRecursion()
	case *ast.Boundary:
		g.writeBoundary(n)
	case *ast.Reference:
		g.writeReference(n)
	case *ast.InlineRegex:
		g.buf.WriteString(n.Raw)
	case *ast.CharSet:
		g.writeCharSet(n)
	case *ast.Group:
		g.writeGroup(n)
	case *ast.Lookaround:
		g.writeLookaround(n)
	case *ast.Alternation, *ast.Sequence:
		g.buf.WriteString("(?:")
		g.writeAlt(e)
		g.buf.WriteByte(')')
	case *ast.Repetition:
		g.writeFactor(n)
	default:
		// RangeExpr/VariableRef/Negation must not reach codegen; a stray
		// instance renders as nothing rather than panicking mid-compile.
	}
}

var literalMeta = map[rune]bool{
	'.': true, '^': true, '$': true, '*': true, '+': true, '?': true,
	'(': true, ')': true, '[': true, ']': true, '{': true, '}': true,
	'|': true, '\\': true, '/': true,
}

func (g *generator) writeLiteralRune(r rune) {
	switch r {
	case '\n':
		g.buf.WriteString(`\n`)
		return
	case '\r':
		g.buf.WriteString(`\r`)
		return
	case '\t':
		g.buf.WriteString(`\t`)
		return
	}
	if literalMeta[r] {
		g.buf.WriteByte('\\')
	}
	g.buf.WriteRune(r)
}

func (g *generator) emitCodePoint(v rune) {
	switch g.opts.Flavor {
	case flavor.JS, flavor.Rust:
		fmt.Fprintf(&g.buf, `\u{%x}`, v)
	case flavor.DotNet:
		if v > 0xFFFF {
			hi, lo := surrogatePair(v)
			fmt.Fprintf(&g.buf, `\u%04x\u%04x`, hi, lo)
		} else {
			fmt.Fprintf(&g.buf, `\u%04x`, v)
		}
	default: // pcre, python, java, ruby, re2
		fmt.Fprintf(&g.buf, `\x{%x}`, v)
	}
}

func surrogatePair(v rune) (hi, lo rune) {
	v -= 0x10000
	hi = 0xD800 + (v >> 10)
	lo = 0xDC00 + (v & 0x3FF)
	return
}

func (g *generator) writeRecursion() {
	switch g.opts.Flavor {
	case flavor.PCRE:
		g.buf.WriteString(`(?R)`)
	case flavor.Ruby:
		g.buf.WriteString(`\g<0>`)
	default:
		g.buf.WriteString(`(?R)`)
	}
}

func (g *generator) writeBoundary(n *ast.Boundary) {
	switch n.Kind {
	case ast.BoundaryWordStart, ast.BoundaryWordEnd, ast.BoundaryEitherSide:
		g.buf.WriteString(`\b`)
	case ast.BoundaryNotBoundary:
		g.buf.WriteString(`\B`)
	case ast.BoundaryStringStart:
		g.buf.WriteByte('^')
	case ast.BoundaryStringEnd:
		g.buf.WriteByte('$')
	}
}

func (g *generator) writeReference(n *ast.Reference) {
	switch n.RefKind {
	case ast.RefNamed:
		switch g.opts.Flavor {
		case flavor.Python:
			fmt.Fprintf(&g.buf, `(?P=%s)`, n.Name)
		default:
			fmt.Fprintf(&g.buf, `\k<%s>`, n.Name)
		}
	default:
		fmt.Fprintf(&g.buf, `\%d`, n.Number)
	}
}

func (g *generator) writeGroup(n *ast.Group) {
	switch n.Kind {
	case ast.GroupAtomic:
		g.buf.WriteString(`(?>`)
	case ast.GroupCapturing:
		if n.Name != "" {
			switch g.opts.Flavor {
			case flavor.Python:
				fmt.Fprintf(&g.buf, `(?P<%s>`, n.Name)
			default:
				fmt.Fprintf(&g.buf, `(?<%s>`, n.Name)
			}
		} else {
			g.buf.WriteByte('(')
		}
	default: // GroupNonCapturing
		g.buf.WriteString(`(?:`)
	}
	g.writeAlt(n.Body)
	g.buf.WriteByte(')')
}

func (g *generator) writeLookaround(n *ast.Lookaround) {
	switch {
	case n.Direction == ast.LookAhead && !n.Negated:
		g.buf.WriteString(`(?=`)
	case n.Direction == ast.LookAhead && n.Negated:
		g.buf.WriteString(`(?!`)
	case n.Direction == ast.LookBehind && !n.Negated:
		g.buf.WriteString(`(?<=`)
	default:
		g.buf.WriteString(`(?<!`)
	}
	g.writeAlt(n.Child)
	g.buf.WriteByte(')')
}

func (g *generator) writeCharSet(n *ast.CharSet) {
	g.buf.WriteByte('[')
	if n.Negated {
		g.buf.WriteByte('^')
	}
	for i, grp := range n.Groups {
		if i > 0 {
			g.buf.WriteByte('&')
			g.buf.WriteByte('&')
		}
		for _, item := range grp.Items {
			g.writeCharSetItem(item)
		}
	}
	g.buf.WriteByte(']')
}

var classMeta = map[rune]bool{
	']': true, '^': true, '-': true, '\\': true,
}

func (g *generator) writeClassRune(r rune) {
	if classMeta[r] {
		g.buf.WriteByte('\\')
	}
	g.buf.WriteRune(r)
}

func (g *generator) writeCharSetItem(item ast.CharSetItem) {
	switch n := item.(type) {
	case *ast.CharLiteral:
		for _, r := range n.Text {
			g.writeClassRune(r)
		}
	case *ast.CharCodePoint:
		g.emitCodePoint(n.Value)
	case *ast.CharRange:
		g.writeClassRune(n.Lo)
		g.buf.WriteByte('-')
		g.writeClassRune(n.Hi)
	case *ast.CharShorthand:
		g.buf.WriteString(g.shorthandEscape(n))
	case *ast.PosixClass:
		g.buf.WriteString(posixExpansion[n.Name])
	case *ast.UnicodeProperty:
		g.writeUnicodeProperty(n)
	}
}

// posixExpansion renders each of Pomsky's 12 ASCII POSIX classes as an
// explicit set of ranges, since bracket-expression POSIX syntax
// ([[:alpha:]]) is not portable across all eight target flavors.
var posixExpansion = map[string]string{
	"ascii_alnum":  `0-9A-Za-z`,
	"ascii_alpha":  `A-Za-z`,
	"ascii_blank":  ` \t`,
	"ascii_cntrl":  `\x00-\x1f\x7f`,
	"ascii_digit":  `0-9`,
	"ascii_graph":  `\x21-\x7e`,
	"ascii_lower":  `a-z`,
	"ascii_print":  `\x20-\x7e`,
	"ascii_punct":  `!-/:-@\[-` + "`" + `{-~`,
	"ascii_space":  ` \t\n\r\f\v`,
	"ascii_upper":  `A-Z`,
	"ascii_xdigit": `0-9A-Fa-f`,
}

// shorthandEscape renders a built-in character-class shorthand. The
// parser produces shorthands only for word/digit/space/horiz_space/
// vert_space and single-letter names (any other bare name inside [...]
// becomes a UnicodeProperty); a single-letter name is rendered as a
// backslash escape of that letter.
func (g *generator) shorthandEscape(n *ast.CharShorthand) string {
	switch n.Name {
	case "digit":
		if n.Unicode && g.opts.Capabilities.UnicodeProperties {
			return `\p{Nd}`
		}
		return `\d`
	case "space":
		return `\s`
	case "word":
		if n.Unicode && g.opts.Capabilities.UnicodeProperties {
			return `\p{L}\p{N}_`
		}
		return `\w`
	case "horiz_space":
		return `\t\x20`
	case "vert_space":
		return `\n\r\f\x0b`
	default:
		if len([]rune(n.Name)) == 1 {
			return `\` + n.Name
		}
		return ""
	}
}

func (g *generator) writeUnicodeProperty(n *ast.UnicodeProperty) {
	switch g.opts.Flavor {
	case flavor.Java, flavor.JS:
		if n.Prefix == "sc" || n.Prefix == "scx" {
			fmt.Fprintf(&g.buf, `\p{Is%s}`, n.Name)
			return
		}
	}
	fmt.Fprintf(&g.buf, `\p{%s}`, n.Name)
}
