package optimizer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomsky-lang/pomsky-go/internal/ast"
)

func TestOptimizeMergesAdjacentLiterals(t *testing.T) {
	seq := &ast.Sequence{Items: []ast.Expr{
		&ast.Literal{Text: "a"},
		&ast.Literal{Text: "b"},
		&ast.Literal{Text: "c"},
	}}
	out := Optimize(seq)
	lit, ok := out.(*ast.Literal)
	require.True(t, ok, "expected *ast.Literal, got %T", out)
	assert.Equal(t, "abc", lit.Text)
}

func TestOptimizeFlattensNestedSequences(t *testing.T) {
	inner := &ast.Sequence{Items: []ast.Expr{&ast.Literal{Text: "a"}, &ast.Literal{Text: "b"}}}
	outer := &ast.Sequence{Items: []ast.Expr{inner, &ast.Literal{Text: "c"}}}
	out := Optimize(outer)
	lit, ok := out.(*ast.Literal)
	require.True(t, ok, "expected flattened+merged *ast.Literal, got %T", out)
	assert.Equal(t, "abc", lit.Text)
}

func TestOptimizeMergesSingleCharAlternatives(t *testing.T) {
	alt := &ast.Alternation{Alts: []ast.Expr{
		&ast.Literal{Text: "a"},
		&ast.CharSet{Groups: []ast.CharSetGroup{{Items: []ast.CharSetItem{&ast.CharRange{Lo: 'b', Hi: 'd'}}}}},
		&ast.Literal{Text: "e"},
	}}
	out := Optimize(alt)
	set, ok := out.(*ast.CharSet)
	require.True(t, ok, "expected merged *ast.CharSet, got %T", out)

	want := &ast.CharSet{Groups: []ast.CharSetGroup{{Items: []ast.CharSetItem{
		&ast.CharLiteral{Text: "a"},
		&ast.CharRange{Lo: 'b', Hi: 'd'},
		&ast.CharLiteral{Text: "e"},
	}}}}
	if diff := cmp.Diff(want, set); diff != "" {
		t.Errorf("merged char set mismatch (-want +got):\n%s", diff)
	}
}

func TestOptimizeDoesNotMergeNegatedCharSet(t *testing.T) {
	alt := &ast.Alternation{Alts: []ast.Expr{
		&ast.Literal{Text: "a"},
		&ast.CharSet{Negated: true, Groups: []ast.CharSetGroup{{Items: []ast.CharSetItem{&ast.CharLiteral{Text: "b"}}}}},
	}}
	out := Optimize(alt)
	result, ok := out.(*ast.Alternation)
	require.True(t, ok, "expected *ast.Alternation to survive, got %T", out)
	assert.Len(t, result.Alts, 2)
}

func TestOptimizeMergesOverlappingAndAdjacentCharSetRanges(t *testing.T) {
	set := &ast.CharSet{Groups: []ast.CharSetGroup{{Items: []ast.CharSetItem{
		&ast.CharRange{Lo: 'a', Hi: 'c'},
		&ast.CharRange{Lo: 'b', Hi: 'e'}, // overlaps [a-c]
		&ast.CharLiteral{Text: "f"},      // adjacent to [a-e]
		&ast.CharLiteral{Text: "f"},      // duplicate
		&ast.CharRange{Lo: 'h', Hi: 'j'}, // disjoint, stays separate
	}}}}
	out := Optimize(set)
	got, ok := out.(*ast.CharSet)
	require.True(t, ok, "expected *ast.CharSet, got %T", out)

	want := &ast.CharSet{Groups: []ast.CharSetGroup{{Items: []ast.CharSetItem{
		&ast.CharRange{Lo: 'a', Hi: 'f'},
		&ast.CharRange{Lo: 'h', Hi: 'j'},
	}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merged char set mismatch (-want +got):\n%s", diff)
	}
}

func TestOptimizeLeavesCharSetWithUnicodePropertyOpaque(t *testing.T) {
	set := &ast.CharSet{Groups: []ast.CharSetGroup{{Items: []ast.CharSetItem{
		&ast.CharRange{Lo: 'a', Hi: 'c'},
		&ast.CharRange{Lo: 'b', Hi: 'd'},
		&ast.UnicodeProperty{Name: "Greek"},
	}}}}
	out := Optimize(set)
	got, ok := out.(*ast.CharSet)
	require.True(t, ok)
	assert.Len(t, got.Groups[0].Items, 3, "group containing a Unicode property must not be rewritten")
}

func TestOptimizeFactorsCommonPrefixOfLiteralAlternatives(t *testing.T) {
	alt := &ast.Alternation{Alts: []ast.Expr{
		&ast.Literal{Text: "do"},
		&ast.Literal{Text: "double"},
		&ast.Literal{Text: "down"},
	}}
	out := Optimize(alt)
	seq, ok := out.(*ast.Sequence)
	require.True(t, ok, "expected factored *ast.Sequence, got %T", out)
	require.Len(t, seq.Items, 2)

	prefix, ok := seq.Items[0].(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "do", prefix.Text)

	rep, ok := seq.Items[1].(*ast.Repetition)
	require.True(t, ok, "expected optional repetition wrapping the remainder group, got %T", seq.Items[1])
	assert.Equal(t, uint32(0), rep.Lower)
	require.NotNil(t, rep.Upper)
	assert.Equal(t, uint32(1), *rep.Upper)

	group, ok := rep.Child.(*ast.Group)
	require.True(t, ok)
	assert.Equal(t, ast.GroupNonCapturing, group.Kind)
	inner, ok := group.Body.(*ast.Alternation)
	require.True(t, ok)

	var suffixes []string
	for _, a := range inner.Alts {
		suffixes = append(suffixes, a.(*ast.Literal).Text)
	}
	assert.ElementsMatch(t, []string{"uble", "wn"}, suffixes)
}

func TestOptimizeDoesNotFactorLiteralsWithoutCommonPrefix(t *testing.T) {
	alt := &ast.Alternation{Alts: []ast.Expr{
		&ast.Literal{Text: "cat"},
		&ast.Literal{Text: "dog"},
	}}
	out := Optimize(alt)
	result, ok := out.(*ast.Alternation)
	require.True(t, ok, "expected *ast.Alternation to survive unchanged, got %T", out)
	assert.Len(t, result.Alts, 2)
}

func TestOptimizeCollapsesDoubleNonCapturingGroup(t *testing.T) {
	inner := &ast.Group{Kind: ast.GroupNonCapturing, Body: &ast.Literal{Text: "x"}}
	outer := &ast.Group{Kind: ast.GroupNonCapturing, Body: inner}
	out := Optimize(outer)
	g, ok := out.(*ast.Group)
	require.True(t, ok)
	lit, ok := g.Body.(*ast.Literal)
	require.True(t, ok, "expected collapsed group body *ast.Literal, got %T", g.Body)
	assert.Equal(t, "x", lit.Text)
}

func TestOptimizeRepetitionOneOneUnwraps(t *testing.T) {
	one := uint32(1)
	rep := &ast.Repetition{Child: &ast.Literal{Text: "x"}, Lower: 1, Upper: &one}
	out := Optimize(rep)
	lit, ok := out.(*ast.Literal)
	require.True(t, ok, "expected unwrapped *ast.Literal, got %T", out)
	assert.Equal(t, "x", lit.Text)
}

func TestOptimizeRepetitionZeroZeroBecomesEmpty(t *testing.T) {
	zero := uint32(0)
	rep := &ast.Repetition{Child: &ast.Literal{Text: "x"}, Lower: 0, Upper: &zero}
	out := Optimize(rep)
	seq, ok := out.(*ast.Sequence)
	require.True(t, ok, "expected empty *ast.Sequence, got %T", out)
	assert.Empty(t, seq.Items)
}

func TestOptimizeFoldsConstantNestedRepetition(t *testing.T) {
	three := uint32(3)
	inner := &ast.Repetition{Child: &ast.Literal{Text: "x"}, Lower: 3, Upper: &three}
	two := uint32(2)
	outer := &ast.Repetition{Child: inner, Lower: 2, Upper: &two}
	out := Optimize(outer)
	rep, ok := out.(*ast.Repetition)
	require.True(t, ok)
	assert.Equal(t, uint32(6), rep.Lower)
	require.NotNil(t, rep.Upper)
	assert.Equal(t, uint32(6), *rep.Upper)
	lit, ok := rep.Child.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "x", lit.Text)
}

func TestOptimizeLeavesVariableRepetitionAlone(t *testing.T) {
	rep := &ast.Repetition{Child: &ast.Literal{Text: "x"}, Lower: 1, Upper: nil}
	out := Optimize(rep)
	result, ok := out.(*ast.Repetition)
	require.True(t, ok)
	assert.Nil(t, result.Upper)
}
