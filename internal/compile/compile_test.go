package compile

import (
	"regexp"
	"testing"

	"github.com/dlclark/regexp2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomsky-lang/pomsky-go/internal/flavor"

	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/dotnet"
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/java"
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/js"
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/pcre"
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/python"
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/re2"
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/ruby"
	_ "github.com/pomsky-lang/pomsky-go/internal/flavor/rust"
)

func TestCompileLiteralAlternation(t *testing.T) {
	result := Compile(`'foo' | 'bar'`, Options{Flavor: flavor.PCRE, UnicodeDefault: true})
	require.Empty(t, result.Diagnostics)
	assert.Equal(t, "foo|bar", result.Output)
}

func TestCompileRepetitionAndGroup(t *testing.T) {
	result := Compile(`('a' | 'b')+`, Options{Flavor: flavor.PCRE, UnicodeDefault: true})
	require.Empty(t, result.Diagnostics)

	re, err := regexp.Compile("^(?:" + result.Output + ")$")
	require.NoError(t, err)
	assert.True(t, re.MatchString("ababab"))
	assert.False(t, re.MatchString("abc"))
}

func TestCompileVariableInlining(t *testing.T) {
	result := Compile(`let digit3 = ['0'-'9']{3}; digit3 '-' digit3`, Options{
		Flavor: flavor.RE2, UnicodeDefault: true,
	})
	require.Empty(t, result.Diagnostics)

	re, err := regexp.Compile("^(?:" + result.Output + ")$")
	require.NoError(t, err)
	assert.True(t, re.MatchString("123-456"))
	assert.False(t, re.MatchString("12-456"))
}

func TestCompileCaptureGroupAndBackreference(t *testing.T) {
	result := Compile(`:(['a'-'z']+) '-' ::1`, Options{Flavor: flavor.PCRE, UnicodeDefault: true})
	require.Empty(t, result.Diagnostics)

	re, err := regexp2.Compile("^(?:"+result.Output+")$", regexp2.None)
	require.NoError(t, err)
	matched, err := re.MatchString("ab-ab")
	require.NoError(t, err)
	assert.True(t, matched)
	matched, err = re.MatchString("ab-cd")
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestCompileBackreferenceRejectedForLinearTimeFlavors(t *testing.T) {
	for _, f := range []flavor.Name{flavor.RE2, flavor.Rust} {
		result := Compile(`:(['a'-'z']+) '-' ::1`, Options{Flavor: f, UnicodeDefault: true})
		require.NotEmptyf(t, result.Diagnostics, "expected %s to reject a backreference", f)
		assert.Empty(t, result.Output)
	}
}

func TestCompileRangeExpr(t *testing.T) {
	result := Compile(`range '0'-'255'`, Options{Flavor: flavor.RE2, UnicodeDefault: true})
	require.Empty(t, result.Diagnostics)

	re, err := regexp.Compile("^(?:" + result.Output + ")$")
	require.NoError(t, err)
	for _, n := range []string{"0", "7", "42", "99", "100", "199", "200", "255"} {
		assert.True(t, re.MatchString(n), "expected %q to match", n)
	}
	for _, n := range []string{"256", "300", "999", "-1"} {
		assert.False(t, re.MatchString(n), "expected %q not to match", n)
	}
}

func TestCompileNamedGroupPython(t *testing.T) {
	result := Compile(`:name('x')`, Options{Flavor: flavor.Python, UnicodeDefault: true})
	require.Empty(t, result.Diagnostics)
	assert.Contains(t, result.Output, "(?P<name>")
}

func TestCompileNamedGroupPCRE(t *testing.T) {
	result := Compile(`:name('x')`, Options{Flavor: flavor.PCRE, UnicodeDefault: true})
	require.Empty(t, result.Diagnostics)
	assert.Contains(t, result.Output, "(?<name>")
}

func TestCompileUnknownVariableReportsError(t *testing.T) {
	result := Compile(`nonexistent`, Options{Flavor: flavor.PCRE, UnicodeDefault: true})
	require.NotEmpty(t, result.Diagnostics)
	assert.Empty(t, result.Output)
}

func TestCompileLookbehindRejectedWherePythonForbidsUnboundedWidth(t *testing.T) {
	result := Compile(`<< 'a'+`, Options{Flavor: flavor.Python, UnicodeDefault: true})
	require.NotEmpty(t, result.Diagnostics)
}

func TestCompileRepeatedAssertionRubyError(t *testing.T) {
	result := Compile(`(<< 'a'){2}`, Options{Flavor: flavor.Ruby, UnicodeDefault: true})
	require.NotEmpty(t, result.Diagnostics)
}

func TestCompileRepeatedAssertionJSPolyfillSucceeds(t *testing.T) {
	result := Compile(`(<< 'a'){2}`, Options{Flavor: flavor.JS, UnicodeDefault: true})
	require.Empty(t, result.Diagnostics)

	re, err := regexp2.Compile(result.Output, regexp2.None)
	require.NoError(t, err)
	m, err := re.MatchString("aa")
	require.NoError(t, err)
	assert.True(t, m)
}

func TestCompileSupplementaryCodePointDotNet(t *testing.T) {
	result := Compile(`U+1F600`, Options{Flavor: flavor.DotNet, UnicodeDefault: true})
	require.Empty(t, result.Diagnostics)
	assert.NotContains(t, result.Output, `\x{`)
}

func TestCompileUnsupportedFlavorReportsError(t *testing.T) {
	result := Compile(`'x'`, Options{Flavor: flavor.Name("made-up"), UnicodeDefault: true})
	require.NotEmpty(t, result.Diagnostics)
	assert.Empty(t, result.Output)
}

func TestCompileMaxRangeDigitsDefaultAllowsSixDigits(t *testing.T) {
	result := Compile(`range '0'-'999999'`, Options{Flavor: flavor.RE2, UnicodeDefault: true})
	require.Empty(t, result.Diagnostics)
}

func TestCompileMaxRangeDigitsCustomLimitRejectsRange(t *testing.T) {
	result := Compile(`range '0'-'999999'`, Options{Flavor: flavor.RE2, UnicodeDefault: true, MaxRangeDigits: 3})
	require.NotEmpty(t, result.Diagnostics)
	assert.Empty(t, result.Output)
}

func TestCompileReservedIdentifiersRejectsLetName(t *testing.T) {
	result := Compile(`let reserved_name = 'a'; reserved_name`, Options{
		Flavor: flavor.PCRE, UnicodeDefault: true, ReservedIdentifiers: []string{"reserved_name"},
	})
	require.NotEmpty(t, result.Diagnostics)
	assert.Empty(t, result.Output)
}

func TestCompileDeniedFeatureReportsError(t *testing.T) {
	denied := flavor.NewAllowedFeatures()
	denied.Deny(flavor.FeatureRecursion)
	result := Compile(`recursion`, Options{Flavor: flavor.PCRE, Allowed: denied, UnicodeDefault: true})
	require.NotEmpty(t, result.Diagnostics)
}
