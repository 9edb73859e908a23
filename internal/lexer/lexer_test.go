package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomsky-lang/pomsky-go/internal/diag"
	"github.com/pomsky-lang/pomsky-go/internal/token"
)

func lexOK(t *testing.T, src string) []token.Token {
	t.Helper()
	sink := diag.NewSink()
	toks := Lex(src, sink)
	require.False(t, sink.HasErrors(), "unexpected lex error: %+v", sink.Diagnostics())
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestLexSingleQuotedString(t *testing.T) {
	toks := lexOK(t, `'abc'`)
	require.Len(t, toks, 2) // string + EOF
	assert.Equal(t, token.SQString, toks[0].Kind)
	assert.Equal(t, "abc", toks[0].Text)
}

func TestLexKeywordsVsIdentifiers(t *testing.T) {
	toks := lexOK(t, `let x range`)
	assert.Equal(t, []token.Kind{token.KwLet, token.Ident, token.KwRange, token.EOF}, kinds(toks))
}

func TestLexCodePoint(t *testing.T) {
	toks := lexOK(t, `U+1F600`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.CodePoint, toks[0].Kind)
	assert.Equal(t, string(rune(0x1F600)), toks[0].Text)
}

func TestLexMultiCharOperators(t *testing.T) {
	toks := lexOK(t, `:: ::+ ::- << >> !<< !>>`)
	assert.Equal(t, []token.Kind{
		token.ColonColon, token.ColonColonPlus, token.ColonColonMinus,
		token.LtLt, token.GtGt, token.BangLtLt, token.BangGtGt, token.EOF,
	}, kinds(toks))
}

func TestLexDoubleQuotedStringOnlyAllowsQuoteAndBackslashEscapes(t *testing.T) {
	sink := diag.NewSink()
	toks := Lex(`"a\nb"`, sink)
	require.True(t, sink.HasErrors())
	assert.Equal(t, diag.CodeBadEscape, sink.Diagnostics()[0].Code)
	require.NotEmpty(t, toks)
}

func TestLexUnterminatedStringReportsError(t *testing.T) {
	sink := diag.NewSink()
	Lex(`'abc`, sink)
	require.True(t, sink.HasErrors())
	assert.Equal(t, diag.CodeUnterminatedString, sink.Diagnostics()[0].Code)
}

func TestLexNumberLiteral(t *testing.T) {
	toks := lexOK(t, `42`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.Number, toks[0].Kind)
	assert.Equal(t, "42", toks[0].Text)
}
