package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomsky-lang/pomsky-go/internal/ast"
	"github.com/pomsky-lang/pomsky-go/internal/diag"
	"github.com/pomsky-lang/pomsky-go/internal/flavor"
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/pcre"
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/python"
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/ruby"
	"github.com/pomsky-lang/pomsky-go/internal/parser"
)

func resolveSource(t *testing.T, src string, name flavor.Name) (*Result, *diag.Sink) {
	t.Helper()
	sink := diag.NewSink()
	unit := parser.Parse(src, sink, 0)
	require.False(t, sink.HasErrors(), "unexpected parse error: %+v", sink.Diagnostics())

	profile, ok := flavor.Get(name)
	require.True(t, ok)
	res := Resolve(unit, sink, Options{
		Flavor: name, Capabilities: profile.Capabilities(), UnicodeDefault: true,
	})
	return res, sink
}

func TestResolveBuiltinStart(t *testing.T) {
	res, sink := resolveSource(t, `Start`, flavor.PCRE)
	require.False(t, sink.HasErrors())
	b, ok := res.Expr.(*ast.Boundary)
	require.True(t, ok, "expected *ast.Boundary, got %T", res.Expr)
	assert.Equal(t, ast.BoundaryStringStart, b.Kind)
}

func TestResolveVariableInlining(t *testing.T) {
	res, sink := resolveSource(t, `let x = 'ab'; x x`, flavor.PCRE)
	require.False(t, sink.HasErrors())
	seq, ok := res.Expr.(*ast.Sequence)
	require.True(t, ok, "expected *ast.Sequence, got %T", res.Expr)
	require.Len(t, seq.Items, 2)
	for _, item := range seq.Items {
		lit, ok := item.(*ast.Literal)
		require.True(t, ok)
		assert.Equal(t, "ab", lit.Text)
	}
}

func TestResolveGroupLocalLetShadowsOuterScope(t *testing.T) {
	res, sink := resolveSource(t, `let x = 'a'; (let x = 'b'; x) x`, flavor.PCRE)
	require.False(t, sink.HasErrors())
	seq, ok := res.Expr.(*ast.Sequence)
	require.True(t, ok, "expected *ast.Sequence, got %T", res.Expr)
	require.Len(t, seq.Items, 2)

	group, ok := seq.Items[0].(*ast.Group)
	require.True(t, ok, "expected *ast.Group, got %T", seq.Items[0])
	inner, ok := group.Body.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "b", inner.Text, "group-local let should shadow the outer binding inside the group")

	outer, ok := seq.Items[1].(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "a", outer.Text, "the outer binding must be unaffected once the group closes")
}

func TestResolveGroupLocalModeAppliesOnlyInsideGroup(t *testing.T) {
	res, sink := resolveSource(t, `(enable lazy; 'a'*) 'b'*`, flavor.PCRE)
	require.False(t, sink.HasErrors())
	seq, ok := res.Expr.(*ast.Sequence)
	require.True(t, ok, "expected *ast.Sequence, got %T", res.Expr)
	require.Len(t, seq.Items, 2)

	group, ok := seq.Items[0].(*ast.Group)
	require.True(t, ok)
	rep, ok := group.Body.(*ast.Repetition)
	require.True(t, ok)
	assert.False(t, rep.Greedy, "enable lazy inside the group should make its own repetition lazy")

	outerRep, ok := seq.Items[1].(*ast.Repetition)
	require.True(t, ok)
	assert.True(t, outerRep.Greedy, "enable lazy must not leak past the group that declared it")
}

func TestResolveReservedIdentifierReportsError(t *testing.T) {
	sink := diag.NewSink()
	unit := parser.Parse(`let forbidden = 'a'; forbidden`, sink, 0)
	require.False(t, sink.HasErrors())

	profile, ok := flavor.Get(flavor.PCRE)
	require.True(t, ok)
	Resolve(unit, sink, Options{
		Flavor: flavor.PCRE, Capabilities: profile.Capabilities(), UnicodeDefault: true,
		ReservedIdentifiers: []string{"forbidden"},
	})
	require.True(t, sink.HasErrors())
	assert.Equal(t, diag.CodeReservedIdentifier, sink.Diagnostics()[0].Code)
}

func TestResolveUnknownVariableReportsError(t *testing.T) {
	_, sink := resolveSource(t, `nope`, flavor.PCRE)
	require.True(t, sink.HasErrors())
	assert.Equal(t, diag.CodeUnknownVariable, sink.Diagnostics()[0].Code)
}

func TestResolveCyclicVariableReportsError(t *testing.T) {
	_, sink := resolveSource(t, `let a = b; let b = a; a`, flavor.PCRE)
	require.True(t, sink.HasErrors())
	assert.Equal(t, diag.CodeCyclicVariable, sink.Diagnostics()[0].Code)
}

func TestResolveDuplicateCaptureIndexReportsError(t *testing.T) {
	_, sink := resolveSource(t, `:1('a') :1('b')`, flavor.PCRE)
	require.True(t, sink.HasErrors())
	assert.Equal(t, diag.CodeDuplicateCapIndex, sink.Diagnostics()[0].Code)
}

func TestResolveExplicitIndexIsAuthoritative(t *testing.T) {
	res, sink := resolveSource(t, `:5('a') ('b')`, flavor.PCRE)
	require.False(t, sink.HasErrors())
	seq, ok := res.Expr.(*ast.Sequence)
	require.True(t, ok)
	g0 := seq.Items[0].(*ast.Group)
	require.NotNil(t, g0.Index)
	assert.Equal(t, 5, *g0.Index)
}

func TestResolveUnknownReferenceReportsError(t *testing.T) {
	_, sink := resolveSource(t, `::9`, flavor.PCRE)
	require.True(t, sink.HasErrors())
	assert.Equal(t, diag.CodeUnknownReference, sink.Diagnostics()[0].Code)
}

func TestResolveReferenceInLookaroundRejectedForRuby(t *testing.T) {
	_, sink := resolveSource(t, `:('a') << ::1`, flavor.Ruby)
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.Diagnostics() {
		if d.Code == diag.CodeRefInLookaround {
			found = true
		}
	}
	assert.True(t, found)
}

func TestResolveLookbehindVariableWidthRejectedForPython(t *testing.T) {
	_, sink := resolveSource(t, `<< 'a'*`, flavor.Python)
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.Diagnostics() {
		if d.Code == diag.CodeLookbehindWidth {
			found = true
		}
	}
	assert.True(t, found)
}

func TestResolveDeniedFeatureReportsError(t *testing.T) {
	denied := flavor.NewAllowedFeatures()
	denied.Deny(flavor.FeatureReferences)
	sink := diag.NewSink()
	unit := parser.Parse(`:('a') ::1`, sink, 0)
	require.False(t, sink.HasErrors())
	profile, _ := flavor.Get(flavor.PCRE)
	Resolve(unit, sink, Options{Flavor: flavor.PCRE, Capabilities: profile.Capabilities(), Allowed: denied, UnicodeDefault: true})
	require.True(t, sink.HasErrors())
	assert.Equal(t, diag.CodeFeatureDisallowed, sink.Diagnostics()[0].Code)
}
