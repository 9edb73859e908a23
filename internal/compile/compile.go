// Package compile wires the lexer, parser, resolver, range compiler,
// optimizer and code generator into a single public entry point.
package compile

import (
	"github.com/pomsky-lang/pomsky-go/internal/ast"
	"github.com/pomsky-lang/pomsky-go/internal/codegen"
	"github.com/pomsky-lang/pomsky-go/internal/diag"
	"github.com/pomsky-lang/pomsky-go/internal/flavor"
	"github.com/pomsky-lang/pomsky-go/internal/optimizer"
	"github.com/pomsky-lang/pomsky-go/internal/parser"
	"github.com/pomsky-lang/pomsky-go/internal/rangecompiler"
	"github.com/pomsky-lang/pomsky-go/internal/resolver"
	"github.com/pomsky-lang/pomsky-go/internal/span"
)

// Options configures a compile run.
type Options struct {
	// Flavor is the target regex dialect; must be one of the eight names
	// registered under internal/flavor.
	Flavor flavor.Name
	// Allowed further restricts the flavor's default capabilities; nil
	// means no restriction beyond the flavor's own limits.
	Allowed *flavor.AllowedFeatures
	// UnicodeDefault is whether `unicode` mode is on before any
	// `enable`/`disable` statement in the source runs.
	UnicodeDefault bool
	// MaxDepth overrides the parser's nested-group recursion bound; 0
	// uses parser.DefaultMaxDepth.
	MaxDepth int
	// MaxRangeDigits bounds how many digits a `range` expression's upper
	// bound may need in its base before the range compiler refuses to
	// expand it; 0 uses rangecompiler.DefaultMaxDigits (6).
	MaxRangeDigits int
	// ReservedIdentifiers is additionally forbidden as `let` binding
	// names, on top of the builtin prelude names the resolver already
	// reserves; nil means no further restriction.
	ReservedIdentifiers []string
}

// Result is the outcome of a Compile call.
type Result struct {
	Output      string
	Diagnostics []diag.Diagnostic
}

// Compile translates Pomsky source into the target flavor's regex
// syntax, running every stage of the pipeline in order: parse, resolve,
// compile numeric ranges, optimize, generate. Compilation stops short
// of code generation if any stage reported an error; Result.Output is
// then empty.
func Compile(source string, opts Options) Result {
	sink := diag.NewSink()

	profile, ok := flavor.Get(opts.Flavor)
	if !ok {
		sink.Error(diag.CodeUnsupportedFeature, diag.KindFeature, span.Span{},
			"unknown target flavor")
		return Result{Diagnostics: sink.Diagnostics()}
	}

	unit := parser.Parse(source, sink, opts.MaxDepth)
	if sink.HasErrors() {
		return Result{Diagnostics: sink.Diagnostics()}
	}

	res := resolver.Resolve(unit, sink, resolver.Options{
		Flavor:              opts.Flavor,
		Capabilities:        profile.Capabilities(),
		Allowed:             opts.Allowed,
		UnicodeDefault:      opts.UnicodeDefault,
		ReservedIdentifiers: opts.ReservedIdentifiers,
	})
	if sink.HasErrors() {
		return Result{Diagnostics: sink.Diagnostics()}
	}

	expr := expandRanges(res.Expr, sink, opts.MaxRangeDigits)
	if sink.HasErrors() {
		return Result{Diagnostics: sink.Diagnostics()}
	}

	expr = optimizer.Optimize(expr)

	out := codegen.Generate(expr, codegen.Options{
		Flavor:       opts.Flavor,
		Capabilities: profile.Capabilities(),
	})

	return Result{Output: out, Diagnostics: sink.Diagnostics()}
}

// expandRanges replaces every RangeExpr in the tree with the
// rangecompiler's equivalent alternation, since the generator only
// deals in the core Expr variants. maxDigits is forwarded to
// rangecompiler.Compile unchanged (0 means its own default).
func expandRanges(e ast.Expr, sink *diag.Sink, maxDigits int) ast.Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *ast.RangeExpr:
		return rangecompiler.Compile(n, sink, maxDigits)
	case *ast.Sequence:
		items := make([]ast.Expr, len(n.Items))
		for i, it := range n.Items {
			items[i] = expandRanges(it, sink, maxDigits)
		}
		return &ast.Sequence{Items: items, Sp: n.Sp}
	case *ast.Alternation:
		alts := make([]ast.Expr, len(n.Alts))
		for i, a := range n.Alts {
			alts[i] = expandRanges(a, sink, maxDigits)
		}
		return &ast.Alternation{Alts: alts, Sp: n.Sp}
	case *ast.Group:
		return &ast.Group{Kind: n.Kind, Index: n.Index, Name: n.Name, Body: expandRanges(n.Body, sink, maxDigits), Sp: n.Sp}
	case *ast.Lookaround:
		return &ast.Lookaround{Direction: n.Direction, Negated: n.Negated, Child: expandRanges(n.Child, sink, maxDigits), Sp: n.Sp}
	case *ast.Repetition:
		return &ast.Repetition{Child: expandRanges(n.Child, sink, maxDigits), Lower: n.Lower, Upper: n.Upper, Mode: n.Mode, Greedy: n.Greedy, Sp: n.Sp}
	default:
		return e
	}
}
