// Package lexer implements the Pomsky lexer: it turns source text into
// a flat token stream with spans, recovering from bad bytes and
// malformed literals so the parser can still see the rest of the file.
//
// Pomsky's double-quoted strings are much stricter than a typical
// regex/shell string: only \" and \\ are legal escapes, everything else
// is a syntax error with a help message suggesting the Pomsky-native
// spelling.
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/pomsky-lang/pomsky-go/internal/diag"
	"github.com/pomsky-lang/pomsky-go/internal/span"
	"github.com/pomsky-lang/pomsky-go/internal/token"
)

// Lexer scans a Pomsky source string into tokens, reporting malformed
// input to a diag.Sink and synthesizing recovery tokens so scanning can
// continue.
type Lexer struct {
	src   string
	pos   int
	sink  *diag.Sink
	toks  []token.Token
}

// Lex tokenizes src in full, returning every token (including a trailing
// token.EOF); diagnostics raised along the way are recorded on sink.
func Lex(src string, sink *diag.Sink) []token.Token {
	l := &Lexer{src: src, sink: sink}
	l.run()
	return l.toks
}

func (l *Lexer) run() {
	for {
		l.skipTrivia()
		if l.pos >= len(l.src) {
			l.emit(token.EOF, l.pos, l.pos, "", "")
			return
		}
		start := l.pos
		c := l.src[l.pos]
		switch {
		case c == '\'':
			l.lexSingleQuoted(start)
		case c == '"':
			l.lexDoubleQuoted(start)
		case c == 'U' && l.looksLikeCodePoint():
			l.lexCodePoint(start)
		case isIdentStart(c):
			l.lexIdentOrKeyword(start)
		case c >= '0' && c <= '9':
			l.lexNumber(start)
		default:
			l.lexPunct(start)
		}
	}
}

func (l *Lexer) skipTrivia() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.pos++
		case c == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *Lexer) emit(k token.Kind, start, end int, text, raw string) {
	l.toks = append(l.toks, token.Token{Kind: k, Span: span.New(start, end), Text: text, Raw: raw})
}

// looksLikeCodePoint reports whether the 'U' at l.pos begins a U+HHHHHH (or
// compressed UHHHHHH) code point literal rather than an identifier that
// happens to start with U.
func (l *Lexer) looksLikeCodePoint() bool {
	i := l.pos + 1
	for i < len(l.src) && (l.src[i] == ' ' || l.src[i] == '\t') {
		i++
	}
	if i < len(l.src) && l.src[i] == '+' {
		i++
		for i < len(l.src) && (l.src[i] == ' ' || l.src[i] == '\t') {
			i++
		}
		return i < len(l.src) && isHexDigit(l.src[i])
	}
	// Compressed form: 'U' directly followed by hex digits, but only if
	// the rest is not a longer identifier (UnicodeFoo would mis-lex).
	if i < len(l.src) && isHexDigit(l.src[i]) {
		j := i
		for j < len(l.src) && isHexDigit(l.src[j]) {
			j++
		}
		if j < len(l.src) && isIdentCont(l.src[j]) {
			return false
		}
		return true
	}
	return false
}

func (l *Lexer) lexCodePoint(start int) {
	l.pos++ // consume 'U'
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '+' {
		l.pos++
		for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
			l.pos++
		}
	}
	digitsStart := l.pos
	for l.pos < len(l.src) && l.pos-digitsStart < 6 && isHexDigit(l.src[l.pos]) {
		l.pos++
	}
	digits := l.src[digitsStart:l.pos]
	if digits == "" {
		l.sink.Errorf(diag.CodeBadCodePoint, diag.KindSyntax, span.New(start, l.pos),
			"expected 1 to 6 hex digits after 'U+'", "write a code point like U+41 or U+1F600")
		l.emit(token.Invalid, start, l.pos, "", l.src[start:l.pos])
		return
	}
	val := hexToRune(digits)
	if val < 0 || val > 0x10FFFF {
		l.sink.Error(diag.CodeBadCodePoint, diag.KindSyntax, span.New(start, l.pos),
			"code point out of range U+0000..U+10FFFF")
		l.emit(token.Invalid, start, l.pos, "", l.src[start:l.pos])
		return
	}
	l.emit(token.CodePoint, start, l.pos, string(rune(val)), l.src[start:l.pos])
}

func (l *Lexer) lexIdentOrKeyword(start int) {
	for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
		l.pos++
	}
	text := l.src[start:l.pos]
	if kw, ok := token.Keywords[text]; ok {
		l.emit(kw, start, l.pos, text, text)
		return
	}
	// "unicode" is only a reserved mode name in the context right after
	// `enable`/`disable`; everywhere else it is an ordinary identifier
	// (resolved against the builtin prelude by the resolver), so the
	// lexer does not special-case it.
	l.emit(token.Ident, start, l.pos, text, text)
}

func (l *Lexer) lexNumber(start int) {
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.pos++
	}
	text := l.src[start:l.pos]
	if len(text) > 1 && text[0] == '0' {
		l.sink.Error(diag.CodeLeadingZero, diag.KindSyntax, span.New(start, l.pos),
			"numeric literals must not have leading zeros")
	}
	l.emit(token.Number, start, l.pos, text, text)
}

// lexSingleQuoted scans an opaque literal: no escapes of any kind.
func (l *Lexer) lexSingleQuoted(start int) {
	l.pos++ // opening quote
	contentStart := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '\'' {
		l.pos++
	}
	if l.pos >= len(l.src) {
		l.sink.Error(diag.CodeUnterminatedString, diag.KindSyntax, span.New(start, l.pos),
			"unterminated string literal")
		l.emit(token.Invalid, start, l.pos, l.src[contentStart:l.pos], l.src[start:l.pos])
		return
	}
	text := normalizeNewlines(l.src[contentStart:l.pos])
	l.pos++ // closing quote
	l.emit(token.SQString, start, l.pos, text, l.src[start:l.pos])
}

// lexDoubleQuoted scans a literal admitting only \" and \\; any other
// backslash escape is a syntax error with a help message.
func (l *Lexer) lexDoubleQuoted(start int) {
	l.pos++ // opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			l.sink.Error(diag.CodeUnterminatedString, diag.KindSyntax, span.New(start, l.pos),
				"unterminated string literal")
			l.emit(token.Invalid, start, l.pos, b.String(), l.src[start:l.pos])
			return
		}
		c := l.src[l.pos]
		if c == '"' {
			l.pos++
			break
		}
		if c != '\\' {
			b.WriteByte(c)
			l.pos++
			continue
		}
		if l.pos+1 >= len(l.src) {
			l.sink.Error(diag.CodeUnterminatedString, diag.KindSyntax, span.New(start, l.pos),
				"unterminated string literal")
			l.emit(token.Invalid, start, l.pos, b.String(), l.src[start:l.pos])
			return
		}
		next := l.src[l.pos+1]
		escSpan := span.New(l.pos, l.pos+2)
		switch next {
		case '"':
			b.WriteByte('"')
			l.pos += 2
		case '\\':
			b.WriteByte('\\')
			l.pos += 2
		default:
			l.sink.Errorf(diag.CodeBadEscape, diag.KindSyntax, escSpan,
				"invalid escape sequence in string literal",
				escapeHelp(next))
			// Recover: keep the backslash verbatim and continue so a
			// single typo does not swallow the rest of the file.
			b.WriteByte('\\')
			l.pos++
		}
	}
	text := normalizeNewlines(b.String())
	graphemeSanityCheck(l.sink, text, span.New(start, l.pos))
	l.emit(token.DQString, start, l.pos, text, l.src[start:l.pos])
}

// escapeHelp suggests the Pomsky-native construct for a common regex
// escape typed inside a string literal by habit.
func escapeHelp(c byte) string {
	switch c {
	case 'd', 'D', 'w', 'W', 's', 'S':
		return "regex shorthands like \\" + string(c) + " aren't valid inside a string; use [digit]/[word]/[space] outside of quotes"
	case 'n', 't', 'r':
		return "only \\\" and \\\\ are valid escapes inside a string; write the control character as a literal code point, e.g. U+" + codeFor(c)
	default:
		return "only \\\" and \\\\ are valid escapes inside a string literal"
	}
}

func codeFor(c byte) string {
	switch c {
	case 'n':
		return "A"
	case 't':
		return "9"
	case 'r':
		return "D"
	}
	return "0"
}

// graphemeSanityCheck warns (it never errors) when a decoded string
// literal's grapheme
// cluster count differs from its rune count, since that usually means a
// combining-mark sequence was pasted in and the author may not have
// intended the entire cluster to be a single atom under `Repeat`.
func graphemeSanityCheck(sink *diag.Sink, text string, sp span.Span) {
	if text == "" {
		return
	}
	runes := utf8.RuneCountInString(text)
	clusters := uniseg.GraphemeClusterCount(text)
	if clusters < runes {
		sink.Warn(diag.CodeDeprecatedSyntax, diag.KindDeprecated, sp,
			"string literal contains combining characters; repeating it repeats individual code points, not whole grapheme clusters")
	}
}

func (l *Lexer) lexPunct(start int) {
	c := l.src[l.pos]
	two := ""
	if l.pos+1 < len(l.src) {
		two = l.src[l.pos : l.pos+2]
	}
	three := ""
	if l.pos+2 < len(l.src) {
		three = l.src[l.pos : l.pos+3]
	}
	switch three {
	case "::+":
		l.pos += 3
		l.emit(token.ColonColonPlus, start, l.pos, three, three)
		return
	case "::-":
		l.pos += 3
		l.emit(token.ColonColonMinus, start, l.pos, three, three)
		return
	case "!<<":
		l.pos += 3
		l.emit(token.BangLtLt, start, l.pos, three, three)
		return
	case "!>>":
		l.pos += 3
		l.emit(token.BangGtGt, start, l.pos, three, three)
		return
	}
	switch two {
	case "::":
		l.pos += 2
		l.emit(token.ColonColon, start, l.pos, two, two)
		return
	case "<<":
		l.pos += 2
		l.emit(token.LtLt, start, l.pos, two, two)
		return
	case ">>":
		l.pos += 2
		l.emit(token.GtGt, start, l.pos, two, two)
		return
	case "!%":
		l.pos += 2
		l.emit(token.BangPercent, start, l.pos, two, two)
		return
	case "<%":
		l.pos += 2
		l.emit(token.LtPercent, start, l.pos, two, two)
		return
	case "%>":
		l.pos += 2
		l.emit(token.PercentGt, start, l.pos, two, two)
		return
	}
	single := map[byte]token.Kind{
		'(': token.LParen, ')': token.RParen, '[': token.LBracket, ']': token.RBracket,
		'{': token.LBrace, '}': token.RBrace, '|': token.Pipe, ',': token.Comma,
		';': token.Semicolon, '=': token.Eq, '!': token.Bang, '?': token.Question,
		'*': token.Star, '+': token.Plus, '-': token.Minus, '.': token.Dot,
		':': token.Colon, '&': token.Amp, '<': token.Lt, '>': token.Gt,
		'%': token.Percent, '^': token.Caret, '$': token.Dollar,
	}
	if k, ok := single[c]; ok {
		l.pos++
		l.emit(k, start, l.pos, string(c), string(c))
		return
	}
	// Unrecognized byte: report and synthesize a one-byte (or one-rune)
	// recovery token so the parser sees forward progress.
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	if r == utf8.RuneError && size <= 1 {
		size = 1
	}
	// A regex escape typed by habit (\w, \d, \1, ...) stays one token so
	// the parser's common-mistake help can recognize it.
	if c == '\\' && l.pos+1 < len(l.src) && isIdentCont(l.src[l.pos+1]) {
		size = 2
	}
	l.pos += size
	l.sink.Error(diag.CodeUnexpectedByte, diag.KindSyntax, span.New(start, l.pos),
		"unexpected character "+l.src[start:l.pos])
	l.emit(token.Invalid, start, l.pos, "", l.src[start:l.pos])
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// hexToRune parses a hex digit run into an int32, returning -1 on
// overflow past the valid code point range.
func hexToRune(s string) int32 {
	var val int64
	for i := 0; i < len(s); i++ {
		val <<= 4
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			val |= int64(c - '0')
		case c >= 'a' && c <= 'f':
			val |= int64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			val |= int64(c-'A') + 10
		}
		if val > 0x10FFFF {
			return -1
		}
	}
	return int32(val)
}

// normalizeNewlines maps CRLF and CR to LF inside literals.
func normalizeNewlines(s string) string {
	if !strings.ContainsAny(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
