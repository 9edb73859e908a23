package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomsky-lang/pomsky-go/internal/ast"
	"github.com/pomsky-lang/pomsky-go/internal/diag"
)

func parseOK(t *testing.T, src string) *ast.Unit {
	t.Helper()
	sink := diag.NewSink()
	unit := Parse(src, sink, 0)
	require.False(t, sink.HasErrors(), "unexpected parse error on %q: %+v", src, sink.Diagnostics())
	return unit
}

func TestParseLiteral(t *testing.T) {
	unit := parseOK(t, `'abc'`)
	lit, ok := unit.Body.(*ast.Literal)
	require.True(t, ok, "expected *ast.Literal, got %T", unit.Body)
	assert.Equal(t, "abc", lit.Text)
}

func TestParseAlternation(t *testing.T) {
	unit := parseOK(t, `'a' | 'b' | 'c'`)
	alt, ok := unit.Body.(*ast.Alternation)
	require.True(t, ok, "expected *ast.Alternation, got %T", unit.Body)
	require.Len(t, alt.Alts, 3)
}

func TestParseSequenceIsImplicitConcatenation(t *testing.T) {
	unit := parseOK(t, `'a' 'b'`)
	seq, ok := unit.Body.(*ast.Sequence)
	require.True(t, ok, "expected *ast.Sequence, got %T", unit.Body)
	assert.Len(t, seq.Items, 2)
}

func TestParseLetStatement(t *testing.T) {
	unit := parseOK(t, `let x = 'a'; x`)
	require.Len(t, unit.Stmts, 1)
	let, ok := unit.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	assert.Equal(t, "x", let.Name)
}

func TestParseNamedCapturingGroup(t *testing.T) {
	unit := parseOK(t, `:name('a')`)
	g, ok := unit.Body.(*ast.Group)
	require.True(t, ok, "expected *ast.Group, got %T", unit.Body)
	assert.Equal(t, ast.GroupCapturing, g.Kind)
	assert.Equal(t, "name", g.Name)
}

func TestParseIndexedCapturingGroup(t *testing.T) {
	unit := parseOK(t, `:3('a')`)
	g, ok := unit.Body.(*ast.Group)
	require.True(t, ok)
	require.NotNil(t, g.Index)
	assert.Equal(t, 3, *g.Index)
}

func TestParseGroupLeadingStatements(t *testing.T) {
	unit := parseOK(t, `(enable lazy; 'a'*)`)
	g, ok := unit.Body.(*ast.Group)
	require.True(t, ok, "expected *ast.Group, got %T", unit.Body)
	require.Len(t, g.Stmts, 1)
	mode, ok := g.Stmts[0].(*ast.ModeStmt)
	require.True(t, ok)
	assert.True(t, mode.Enable)
	assert.Equal(t, ast.ModeLazy, mode.Mode)
	_, ok = g.Body.(*ast.Repetition)
	require.True(t, ok, "expected *ast.Repetition, got %T", g.Body)
}

func TestParseGroupWithoutStatementsLeavesStmtsNil(t *testing.T) {
	unit := parseOK(t, `('a' 'b')`)
	g, ok := unit.Body.(*ast.Group)
	require.True(t, ok)
	assert.Nil(t, g.Stmts)
}

func TestParseRepetitionQuantifiers(t *testing.T) {
	cases := map[string]struct {
		lower uint32
		upper *uint32
	}{
		"'a'*":     {0, nil},
		"'a'+":     {1, nil},
		"'a'?":     {0, u32ptr(1)},
		"'a'{2,5}": {2, u32ptr(5)},
	}
	for src, want := range cases {
		unit := parseOK(t, src)
		rep, ok := unit.Body.(*ast.Repetition)
		require.True(t, ok, "%q: expected *ast.Repetition, got %T", src, unit.Body)
		assert.Equal(t, want.lower, rep.Lower, src)
		if want.upper == nil {
			assert.Nil(t, rep.Upper, src)
		} else {
			require.NotNil(t, rep.Upper, src)
			assert.Equal(t, *want.upper, *rep.Upper, src)
		}
	}
}

func u32ptr(v uint32) *uint32 { return &v }

func TestParseLookbehind(t *testing.T) {
	unit := parseOK(t, `<< 'a'`)
	look, ok := unit.Body.(*ast.Lookaround)
	require.True(t, ok, "expected *ast.Lookaround, got %T", unit.Body)
	assert.Equal(t, ast.LookBehind, look.Direction)
	assert.False(t, look.Negated)
}

func TestParseNegatedLookahead(t *testing.T) {
	unit := parseOK(t, `!>> 'a'`)
	look, ok := unit.Body.(*ast.Lookaround)
	require.True(t, ok, "expected *ast.Lookaround, got %T", unit.Body)
	assert.Equal(t, ast.LookAhead, look.Direction)
	assert.True(t, look.Negated)
}

func TestParseRangeExpr(t *testing.T) {
	unit := parseOK(t, `range '0'-'255'`)
	re, ok := unit.Body.(*ast.RangeExpr)
	require.True(t, ok, "expected *ast.RangeExpr, got %T", unit.Body)
	assert.Equal(t, int64(0), re.Lo.Int64())
	assert.Equal(t, int64(255), re.Hi.Int64())
	assert.Equal(t, 10, re.Base)
}

func TestParseUnterminatedGroupReportsError(t *testing.T) {
	sink := diag.NewSink()
	Parse(`('a'`, sink, 0)
	require.True(t, sink.HasErrors())
	assert.Equal(t, diag.CodeExpectedToken, sink.Diagnostics()[0].Code)
}

func TestParseRangeSingletonReportsError(t *testing.T) {
	sink := diag.NewSink()
	Parse(`range '5'-'5'`, sink, 0)
	require.True(t, sink.HasErrors())
	assert.Equal(t, diag.CodeRangeSingleton, sink.Diagnostics()[0].Code)
}
