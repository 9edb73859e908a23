// Package resolver implements the semantic/resolution pass: variable
// inlining with hygienic (declaration-site) mode snapshotting, reference
// resolution, recursion-safety checking, mode propagation, and flavor
// feature gating. It walks the parser's AST once and returns a fresh,
// fully resolved Expr tree ready for the optimizer, rebuilt bottom-up
// like every other stage of the pipeline.
package resolver

import (
	"fmt"
	"math/big"

	"github.com/pomsky-lang/pomsky-go/internal/ast"
	"github.com/pomsky-lang/pomsky-go/internal/diag"
	"github.com/pomsky-lang/pomsky-go/internal/flavor"
	"github.com/pomsky-lang/pomsky-go/internal/span"
)

// Options configures a Resolve call: the target flavor and its
// capability table, the allowed-features restriction layered on top,
// and whether `unicode` mode defaults on before any `enable`/`disable`
// statement runs.
type Options struct {
	Flavor         flavor.Name
	Capabilities   flavor.Capabilities
	Allowed        *flavor.AllowedFeatures
	UnicodeDefault bool
	// ReservedIdentifiers forbids `let` from binding any of these names,
	// on top of the builtin prelude names below; nil means no further
	// restriction.
	ReservedIdentifiers []string
}

// Result is the output of a successful (or partially successful, if the
// sink now holds errors) resolution pass.
type Result struct {
	Expr         ast.Expr
	CaptureCount int
}

// modeFlags is the pair of toggleable scope flags set by `enable`/
// `disable` MODE. A modeFlags value is threaded top-down through
// expansion and forked at each group boundary: a group's own leading
// statements (see expandGroup) only affect the flags seen inside that
// group, never the caller's copy.
type modeFlags struct {
	Lazy    bool
	Unicode bool
}

// varBinding is a `let` binding: the raw (unexpanded) value expression
// plus the mode flags captured at the declaration site, for hygienic
// scoping.
type varBinding struct {
	value ast.Expr
	mode  modeFlags
}

// builtins is the prelude of bare names that resolve to a fixed
// construct rather than a user `let` binding: the reserved-word
// keywords plus the always-visible shorthand character classes, which
// may be used standalone as sugar for a single-item character set.
var builtins = map[string]func(span.Span) ast.Expr{
	"Start":    func(sp span.Span) ast.Expr { return &ast.Boundary{Kind: ast.BoundaryStringStart, Sp: sp} },
	"End":      func(sp span.Span) ast.Expr { return &ast.Boundary{Kind: ast.BoundaryStringEnd, Sp: sp} },
	"Grapheme": func(sp span.Span) ast.Expr { return &ast.Grapheme{Sp: sp} },
	"word":        func(sp span.Span) ast.Expr { return wrapShorthand("word", sp) },
	"digit":       func(sp span.Span) ast.Expr { return wrapShorthand("digit", sp) },
	"space":       func(sp span.Span) ast.Expr { return wrapShorthand("space", sp) },
	"horiz_space": func(sp span.Span) ast.Expr { return wrapShorthand("horiz_space", sp) },
	"vert_space":  func(sp span.Span) ast.Expr { return wrapShorthand("vert_space", sp) },
}

// checkReserved reports an error and returns true if name is on the
// caller-supplied reserved-identifiers list, which a `let` statement may
// never bind regardless of whether the name also shadows a builtin.
func (r *resolver) checkReserved(name string, sp span.Span) bool {
	if !r.reserved[name] {
		return false
	}
	r.sink.Error(diag.CodeReservedIdentifier, diag.KindResolve, sp,
		fmt.Sprintf("%q is a reserved identifier and cannot be used as a variable name", name))
	return true
}

func wrapShorthand(name string, sp span.Span) ast.Expr {
	return &ast.CharSet{Groups: []ast.CharSetGroup{{
		Items: []ast.CharSetItem{&ast.CharShorthand{Name: name, Sp: sp}},
	}}, Sp: sp}
}

type resolver struct {
	sink *diag.Sink
	opts Options

	vars      map[string]*varBinding
	resolving map[string]bool
	reserved  map[string]bool

	// populated by assignGroupIndices, consulted by the final feature pass
	groupCounter    int
	groupNameIndex  map[string]int
	sawNamedGroup   bool
	sawNumberedGroup bool

	// capturePos is "how many capturing groups have been entered so far"
	// during the final pass, used to resolve relative references and to
	// flag forward references.
	capturePos int
}

// Resolve runs the full semantic pass over unit and returns the resolved
// expression tree. Errors are reported to sink; the caller checks
// sink.HasErrors() before proceeding to the optimizer, since compilation
// aborts code generation if any error was reported.
func Resolve(unit *ast.Unit, sink *diag.Sink, opts Options) *Result {
	reserved := make(map[string]bool, len(opts.ReservedIdentifiers))
	for _, name := range opts.ReservedIdentifiers {
		reserved[name] = true
	}
	r := &resolver{
		sink:      sink,
		opts:      opts,
		vars:      make(map[string]*varBinding),
		resolving: make(map[string]bool),
		reserved:  reserved,
	}

	mode := modeFlags{Unicode: opts.UnicodeDefault}
	for _, stmt := range unit.Stmts {
		switch s := stmt.(type) {
		case *ast.LetStmt:
			if r.checkReserved(s.Name, s.Sp) {
				continue
			}
			if _, exists := r.vars[s.Name]; exists {
				sink.Error(diag.CodeDuplicateLet, diag.KindResolve, s.Sp,
					fmt.Sprintf("variable %q is already defined in this scope", s.Name))
				continue
			}
			r.vars[s.Name] = &varBinding{value: s.Value, mode: mode}
		case *ast.ModeStmt:
			switch s.Mode {
			case ast.ModeLazy:
				mode.Lazy = s.Enable
			case ast.ModeUnicode:
				mode.Unicode = s.Enable
			}
		}
	}

	expanded := r.expand(unit.Body, mode)
	r.checkInfiniteRecursion(expanded)

	groups := r.collectGroups(expanded)
	r.assignGroupIndices(groups)

	final := r.resolveFeatures(expanded, false)

	return &Result{Expr: final, CaptureCount: r.groupCounter}
}

// --- pass 1: variable inlining, negation folding, mode baking -----------

func (r *resolver) expand(e ast.Expr, mode modeFlags) ast.Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *ast.VariableRef:
		return r.expandVariableRef(n, mode)
	case *ast.Negation:
		return r.foldNegation(n, r.expand(n.Child, mode))
	case *ast.Sequence:
		items := make([]ast.Expr, len(n.Items))
		for i, it := range n.Items {
			items[i] = r.expand(it, mode)
		}
		return &ast.Sequence{Items: items, Sp: n.Sp}
	case *ast.Alternation:
		alts := make([]ast.Expr, len(n.Alts))
		for i, a := range n.Alts {
			alts[i] = r.expand(a, mode)
		}
		return &ast.Alternation{Alts: alts, Sp: n.Sp}
	case *ast.Group:
		return r.expandGroup(n, mode)
	case *ast.Lookaround:
		return &ast.Lookaround{Direction: n.Direction, Negated: n.Negated, Child: r.expand(n.Child, mode), Sp: n.Sp}
	case *ast.Repetition:
		child := r.expand(n.Child, mode)
		greedy := !mode.Lazy
		switch n.Mode {
		case ast.ModeRepGreedy:
			greedy = true
		case ast.ModeRepLazy:
			greedy = false
		}
		return &ast.Repetition{Child: child, Lower: n.Lower, Upper: copyU32Ptr(n.Upper), Mode: ast.ModeRepDefault, Greedy: greedy, Sp: n.Sp}
	case *ast.Boundary:
		c := *n
		c.Unicode = mode.Unicode
		return &c
	case *ast.Dot:
		return &ast.Dot{Unicode: mode.Unicode, Sp: n.Sp}
	case *ast.CharSet:
		groups := make([]ast.CharSetGroup, len(n.Groups))
		for i, g := range n.Groups {
			items := make([]ast.CharSetItem, len(g.Items))
			for j, it := range g.Items {
				items[j] = r.expandCharSetItem(it, mode)
			}
			groups[i] = ast.CharSetGroup{Items: items}
		}
		return &ast.CharSet{Negated: n.Negated, Groups: groups, Sp: n.Sp}
	default:
		return copyExpr(e)
	}
}

// expandGroup runs the group's own leading statements in a child scope
// before expanding its body: `let` bindings shadow outer ones only for
// this group and its descendants, and `enable`/`disable` only affects
// the mode flags seen while expanding Body.
func (r *resolver) expandGroup(n *ast.Group, mode modeFlags) ast.Expr {
	if len(n.Stmts) == 0 {
		return &ast.Group{Kind: n.Kind, Index: copyIntPtr(n.Index), Name: n.Name, Body: r.expand(n.Body, mode), Sp: n.Sp}
	}

	savedVars := r.vars
	r.vars = cloneVarMap(r.vars)
	localNames := make(map[string]bool)
	groupMode := mode

	for _, stmt := range n.Stmts {
		switch s := stmt.(type) {
		case *ast.LetStmt:
			if r.checkReserved(s.Name, s.Sp) {
				continue
			}
			if localNames[s.Name] {
				r.sink.Error(diag.CodeDuplicateLet, diag.KindResolve, s.Sp,
					fmt.Sprintf("variable %q is already defined in this scope", s.Name))
				continue
			}
			localNames[s.Name] = true
			r.vars[s.Name] = &varBinding{value: s.Value, mode: groupMode}
		case *ast.ModeStmt:
			switch s.Mode {
			case ast.ModeLazy:
				groupMode.Lazy = s.Enable
			case ast.ModeUnicode:
				groupMode.Unicode = s.Enable
			}
		}
	}

	body := r.expand(n.Body, groupMode)
	r.vars = savedVars
	return &ast.Group{Kind: n.Kind, Index: copyIntPtr(n.Index), Name: n.Name, Body: body, Sp: n.Sp}
}

func cloneVarMap(in map[string]*varBinding) map[string]*varBinding {
	out := make(map[string]*varBinding, len(in)+2)
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (r *resolver) expandCharSetItem(it ast.CharSetItem, mode modeFlags) ast.CharSetItem {
	if sh, ok := it.(*ast.CharShorthand); ok {
		c := *sh
		c.Unicode = mode.Unicode
		return &c
	}
	return copyCharSetItem(it)
}

func (r *resolver) expandVariableRef(n *ast.VariableRef, mode modeFlags) ast.Expr {
	if r.resolving[n.Name] {
		r.sink.Error(diag.CodeCyclicVariable, diag.KindResolve, n.Sp,
			fmt.Sprintf("variable %q is defined in terms of itself", n.Name))
		return &ast.Literal{Sp: n.Sp}
	}
	if b, ok := r.vars[n.Name]; ok {
		r.resolving[n.Name] = true
		expanded := r.expand(copyExpr(b.value), b.mode)
		delete(r.resolving, n.Name)
		return expanded
	}
	if ctor, ok := builtins[n.Name]; ok {
		return ctor(n.Sp)
	}
	r.sink.Error(diag.CodeUnknownVariable, diag.KindResolve, n.Sp, fmt.Sprintf("unknown variable %q", n.Name))
	return &ast.Literal{Sp: n.Sp}
}

func (r *resolver) foldNegation(n *ast.Negation, child ast.Expr) ast.Expr {
	switch c := child.(type) {
	case *ast.CharSet:
		return &ast.CharSet{Negated: !c.Negated, Groups: c.Groups, Sp: n.Sp}
	case *ast.Boundary:
		switch c.Kind {
		case ast.BoundaryEitherSide:
			return &ast.Boundary{Kind: ast.BoundaryNotBoundary, Unicode: c.Unicode, Sp: n.Sp}
		case ast.BoundaryNotBoundary:
			return &ast.Boundary{Kind: ast.BoundaryEitherSide, Unicode: c.Unicode, Sp: n.Sp}
		}
	}
	r.sink.Error(diag.CodeNotNegatable, diag.KindResolve, n.Sp, "this expression cannot be negated")
	return child
}

// --- infinite-recursion check --------------------------------------------

// checkInfiniteRecursion flags `recursion` reachable from the top of
// the pattern without first consuming any mandatory input: such a
// pattern would re-invoke itself at the same input position forever.
func (r *resolver) checkInfiniteRecursion(body ast.Expr) {
	if reachesRecursionUnconsumed(body) {
		r.sink.Error(diag.CodeInfiniteRecurse, diag.KindResolve, body.Span(),
			"recursion is reachable without consuming input first and would recurse infinitely")
	}
}

func reachesRecursionUnconsumed(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.Recursion:
		return true
	case *ast.Sequence:
		for _, it := range n.Items {
			if reachesRecursionUnconsumed(it) {
				return true
			}
			if !isNullable(it) {
				return false
			}
		}
		return false
	case *ast.Alternation:
		for _, a := range n.Alts {
			if reachesRecursionUnconsumed(a) {
				return true
			}
		}
		return false
	case *ast.Group:
		return reachesRecursionUnconsumed(n.Body)
	case *ast.Repetition:
		return reachesRecursionUnconsumed(n.Child)
	}
	return false
}

func isNullable(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.Repetition:
		return n.Lower == 0 || isNullable(n.Child)
	case *ast.Group:
		return isNullable(n.Body)
	case *ast.Sequence:
		for _, it := range n.Items {
			if !isNullable(it) {
				return false
			}
		}
		return true
	case *ast.Alternation:
		for _, a := range n.Alts {
			if isNullable(a) {
				return true
			}
		}
		return false
	case *ast.Boundary, *ast.Lookaround:
		return true
	default:
		return false
	}
}

// --- pass 2: capture-group numbering -------------------------------------

func (r *resolver) collectGroups(e ast.Expr) []*ast.Group {
	var out []*ast.Group
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch n := e.(type) {
		case *ast.Group:
			if n.Kind == ast.GroupCapturing {
				out = append(out, n)
			}
			walk(n.Body)
		case *ast.Sequence:
			for _, it := range n.Items {
				walk(it)
			}
		case *ast.Alternation:
			for _, a := range n.Alts {
				walk(a)
			}
		case *ast.Lookaround:
			walk(n.Child)
		case *ast.Repetition:
			walk(n.Child)
		}
	}
	walk(e)
	return out
}

// assignGroupIndices gives every auto-numbered capturing group the next
// free index and validates explicit indices/names for uniqueness.
// Explicit indices (`:3(...)`) are authoritative, not mere assertions.
func (r *resolver) assignGroupIndices(groups []*ast.Group) {
	usedIndices := make(map[int]bool)
	usedNames := make(map[string]bool)
	r.groupNameIndex = make(map[string]int)

	for _, g := range groups {
		if g.Index != nil {
			if usedIndices[*g.Index] {
				r.sink.Error(diag.CodeDuplicateCapIndex, diag.KindResolve, g.Sp,
					fmt.Sprintf("capture index %d is already used", *g.Index))
			} else {
				usedIndices[*g.Index] = true
			}
		}
		if g.Name != "" {
			r.sawNamedGroup = true
			if len(g.Name) > 128 {
				r.sink.Error(diag.CodeGroupNameTooLong, diag.KindResolve, g.Sp, "group name exceeds 128 bytes")
			}
			if usedNames[g.Name] {
				r.sink.Error(diag.CodeDuplicateGroupName, diag.KindResolve, g.Sp,
					fmt.Sprintf("group name %q is already used", g.Name))
			} else {
				usedNames[g.Name] = true
			}
		} else {
			r.sawNumberedGroup = true
		}
	}

	next := 1
	for _, g := range groups {
		if g.Index == nil {
			for usedIndices[next] {
				next++
			}
			v := next
			g.Index = &v
			usedIndices[next] = true
		}
		if g.Index != nil && *g.Index > r.groupCounter {
			r.groupCounter = *g.Index
		}
		if g.Name != "" {
			r.groupNameIndex[g.Name] = *g.Index
		}
		next++
	}
}

// --- pass 3: reference resolution and flavor feature gating -------------

func (r *resolver) resolveFeatures(e ast.Expr, inLookaround bool) ast.Expr {
	switch n := e.(type) {
	case *ast.InlineRegex:
		if !r.opts.Allowed.Allows(flavor.FeatureRegexes) {
			r.sink.Error(diag.CodeFeatureDisallowed, diag.KindFeature, n.Sp, "inline regex is not in the allowed feature set")
		}
		return n
	case *ast.Grapheme:
		if !r.opts.Allowed.Allows(flavor.FeatureGrapheme) {
			r.sink.Error(diag.CodeFeatureDisallowed, diag.KindFeature, n.Sp, "grapheme is not in the allowed feature set")
		} else if !r.opts.Capabilities.GraphemeCluster {
			r.sink.Error(diag.CodeUnsupportedFeature, diag.KindFeature, n.Sp,
				fmt.Sprintf("grapheme clusters are not supported by the %s flavor", r.opts.Flavor))
		}
		return n
	case *ast.Dot:
		if !r.opts.Allowed.Allows(flavor.FeatureDot) {
			r.sink.Error(diag.CodeFeatureDisallowed, diag.KindFeature, n.Sp, "'.' is not in the allowed feature set")
		}
		if !n.Unicode && !r.opts.Allowed.Allows(flavor.FeatureASCIIMode) {
			r.sink.Error(diag.CodeFeatureDisallowed, diag.KindFeature, n.Sp, "ascii-mode '.' is not in the allowed feature set")
		}
		return n
	case *ast.Recursion:
		if !r.opts.Allowed.Allows(flavor.FeatureRecursion) {
			r.sink.Error(diag.CodeFeatureDisallowed, diag.KindFeature, n.Sp, "recursion is not in the allowed feature set")
		} else if !r.opts.Capabilities.Recursion {
			r.sink.Error(diag.CodeUnsupportedFeature, diag.KindFeature, n.Sp,
				fmt.Sprintf("recursion is not supported by the %s flavor", r.opts.Flavor))
		}
		return n
	case *ast.RangeExpr:
		if !r.opts.Allowed.Allows(flavor.FeatureRanges) {
			r.sink.Error(diag.CodeFeatureDisallowed, diag.KindFeature, n.Sp, "numeric ranges are not in the allowed feature set")
		}
		return n
	case *ast.Boundary:
		if !r.opts.Allowed.Allows(flavor.FeatureBoundaries) {
			r.sink.Error(diag.CodeFeatureDisallowed, diag.KindFeature, n.Sp, "boundaries are not in the allowed feature set")
		}
		if n.Kind != ast.BoundaryStringStart && n.Kind != ast.BoundaryStringEnd &&
			!n.Unicode && !r.opts.Allowed.Allows(flavor.FeatureASCIIMode) {
			r.sink.Error(diag.CodeFeatureDisallowed, diag.KindFeature, n.Sp, "ascii-mode boundary is not in the allowed feature set")
		}
		return n
	case *ast.CharSet:
		groups := make([]ast.CharSetGroup, len(n.Groups))
		for i, g := range n.Groups {
			items := make([]ast.CharSetItem, len(g.Items))
			for j, it := range g.Items {
				items[j] = r.resolveCharSetItem(it)
			}
			groups[i] = ast.CharSetGroup{Items: items}
		}
		if len(n.Groups) > 1 && !r.opts.Allowed.Allows(flavor.FeatureIntersection) {
			r.sink.Error(diag.CodeFeatureDisallowed, diag.KindFeature, n.Sp, "character-class intersection is not in the allowed feature set")
		}
		r.checkSupplementaryInClass(groups)
		return &ast.CharSet{Negated: n.Negated, Groups: groups, Sp: n.Sp}
	case *ast.Sequence:
		items := make([]ast.Expr, len(n.Items))
		for i, it := range n.Items {
			items[i] = r.resolveFeatures(it, inLookaround)
		}
		return &ast.Sequence{Items: items, Sp: n.Sp}
	case *ast.Alternation:
		alts := make([]ast.Expr, len(n.Alts))
		for i, a := range n.Alts {
			alts[i] = r.resolveFeatures(a, inLookaround)
		}
		return &ast.Alternation{Alts: alts, Sp: n.Sp}
	case *ast.Group:
		return r.resolveGroup(n, inLookaround)
	case *ast.Lookaround:
		return r.resolveLookaround(n)
	case *ast.Repetition:
		return r.resolveRepetition(n, inLookaround)
	case *ast.Reference:
		return r.resolveReference(n, inLookaround)
	default:
		return n
	}
}

func (r *resolver) resolveCharSetItem(it ast.CharSetItem) ast.CharSetItem {
	if n, ok := it.(*ast.UnicodeProperty); ok {
		if !r.opts.Capabilities.UnicodeProperties {
			r.sink.Error(diag.CodeUnsupportedFeature, diag.KindFeature, n.Sp,
				fmt.Sprintf("Unicode properties are not supported by the %s flavor", r.opts.Flavor))
		} else if n.Prefix == "scx" && !r.opts.Capabilities.ScriptExtensions {
			r.sink.Error(diag.CodeUnsupportedFeature, diag.KindFeature, n.Sp,
				fmt.Sprintf("script extensions are not supported by the %s flavor", r.opts.Flavor))
		}
	}
	return it
}

func (r *resolver) checkSupplementaryInClass(groups []ast.CharSetGroup) {
	if r.opts.Capabilities.SupplementaryCodePoints {
		return
	}
	for _, g := range groups {
		for _, it := range g.Items {
			switch n := it.(type) {
			case *ast.CharCodePoint:
				if n.Value > 0xFFFF {
					r.sink.Error(diag.CodeSupplementaryInClass, diag.KindCompat, n.Sp,
						"supplementary code points are not allowed inside a character class for this flavor")
				}
			case *ast.CharRange:
				if n.Hi > 0xFFFF {
					r.sink.Error(diag.CodeSupplementaryInClass, diag.KindCompat, n.Sp,
						"supplementary code points are not allowed inside a character class for this flavor")
				}
			}
		}
	}
}

func (r *resolver) resolveGroup(n *ast.Group, inLookaround bool) ast.Expr {
	switch n.Kind {
	case ast.GroupAtomic:
		if !r.opts.Allowed.Allows(flavor.FeatureAtomicGroups) {
			r.sink.Error(diag.CodeFeatureDisallowed, diag.KindFeature, n.Sp, "atomic groups are not in the allowed feature set")
		} else if !r.opts.Capabilities.AtomicGroups {
			r.sink.Error(diag.CodeUnsupportedFeature, diag.KindFeature, n.Sp,
				fmt.Sprintf("atomic groups are not supported by the %s flavor", r.opts.Flavor))
		}
	case ast.GroupCapturing:
		if inLookaround && r.opts.Flavor == flavor.Ruby {
			r.sink.Error(diag.CodeRefInLookaround, diag.KindCompat, n.Sp, "Ruby does not allow capturing groups inside lookaround")
		}
		if n.Name != "" {
			if !r.opts.Allowed.Allows(flavor.FeatureNamedGroups) {
				r.sink.Error(diag.CodeFeatureDisallowed, diag.KindFeature, n.Sp, "named groups are not in the allowed feature set")
			} else if !r.opts.Capabilities.NamedGroups {
				r.sink.Error(diag.CodeUnsupportedFeature, diag.KindFeature, n.Sp,
					fmt.Sprintf("named groups are not supported by the %s flavor", r.opts.Flavor))
			}
		} else if !r.opts.Allowed.Allows(flavor.FeatureNumberedGroups) {
			r.sink.Error(diag.CodeFeatureDisallowed, diag.KindFeature, n.Sp, "numbered groups are not in the allowed feature set")
		}
		r.capturePos++
	}
	body := r.resolveFeatures(n.Body, inLookaround)
	return &ast.Group{Kind: n.Kind, Index: n.Index, Name: n.Name, Body: body, Sp: n.Sp}
}

func (r *resolver) resolveLookaround(n *ast.Lookaround) ast.Expr {
	if n.Direction == ast.LookAhead {
		if !r.opts.Allowed.Allows(flavor.FeatureLookahead) {
			r.sink.Error(diag.CodeFeatureDisallowed, diag.KindFeature, n.Sp, "lookahead is not in the allowed feature set")
		} else if !r.opts.Capabilities.Lookahead {
			r.sink.Error(diag.CodeUnsupportedFeature, diag.KindFeature, n.Sp,
				fmt.Sprintf("lookahead is not supported by the %s flavor", r.opts.Flavor))
		}
	} else {
		if !r.opts.Allowed.Allows(flavor.FeatureLookbehind) {
			r.sink.Error(diag.CodeFeatureDisallowed, diag.KindFeature, n.Sp, "lookbehind is not in the allowed feature set")
		} else if !r.opts.Capabilities.Lookbehind {
			r.sink.Error(diag.CodeUnsupportedFeature, diag.KindFeature, n.Sp,
				fmt.Sprintf("lookbehind is not supported by the %s flavor", r.opts.Flavor))
		} else {
			r.checkLookbehindContent(n.Child)
		}
	}
	child := r.resolveFeatures(n.Child, true)
	return &ast.Lookaround{Direction: n.Direction, Negated: n.Negated, Child: child, Sp: n.Sp}
}

func (r *resolver) checkLookbehindContent(child ast.Expr) {
	width, fixed := measureWidth(child)
	if r.opts.Capabilities.FixedWidthLookbehindOnly && !fixed {
		r.sink.Error(diag.CodeLookbehindWidth, diag.KindCompat, child.Span(),
			fmt.Sprintf("lookbehind content must be fixed-width for the %s flavor", r.opts.Flavor))
	}
	if !r.opts.Capabilities.LookbehindUnlimited && r.opts.Capabilities.MaxLookbehindLength > 0 &&
		width > r.opts.Capabilities.MaxLookbehindLength {
		r.sink.Error(diag.CodeLookbehindLength, diag.KindCompat, child.Span(),
			fmt.Sprintf("lookbehind content exceeds the %d-character limit for the %s flavor",
				r.opts.Capabilities.MaxLookbehindLength, r.opts.Flavor))
	}
}

// measureWidth is a conservative match-length estimate used only to
// validate lookbehind content; it is not a general regex width
// analysis.
func measureWidth(e ast.Expr) (width int, fixed bool) {
	switch n := e.(type) {
	case *ast.Literal:
		return len([]rune(n.Text)), true
	case *ast.CodePoint, *ast.CharSet, *ast.Grapheme, *ast.Dot:
		return 1, true
	case *ast.Boundary:
		return 0, true
	case *ast.Sequence:
		total := 0
		for _, it := range n.Items {
			w, f := measureWidth(it)
			if !f {
				return 0, false
			}
			total += w
		}
		return total, true
	case *ast.Alternation:
		first := -1
		for _, a := range n.Alts {
			w, f := measureWidth(a)
			if !f {
				return 0, false
			}
			if first == -1 {
				first = w
			} else if first != w {
				return 0, false
			}
		}
		return first, true
	case *ast.Group:
		return measureWidth(n.Body)
	case *ast.Repetition:
		if n.Upper == nil || *n.Upper != n.Lower {
			return 0, false
		}
		w, f := measureWidth(n.Child)
		if !f {
			return 0, false
		}
		return w * int(n.Lower), true
	}
	return 0, false
}

func (r *resolver) resolveRepetition(n *ast.Repetition, inLookaround bool) ast.Expr {
	child := r.resolveFeatures(n.Child, inLookaround)
	inner := child
	for g, ok := inner.(*ast.Group); ok && g.Kind == ast.GroupNonCapturing; g, ok = inner.(*ast.Group) {
		inner = g.Body
	}
	if _, ok := inner.(*ast.Lookaround); ok && !r.opts.Capabilities.RepeatedZeroWidthAssertion {
		if r.opts.Flavor == flavor.Ruby {
			r.sink.Error(diag.CodeRepeatedAssertion, diag.KindCompat, n.Sp, "Ruby does not allow a repeated lookaround assertion")
		}
		// Other flavors lacking native support (e.g. JS) are silently
		// polyfilled by the generator wrapping the assertion in a group.
	}
	return &ast.Repetition{Child: child, Lower: n.Lower, Upper: n.Upper, Mode: n.Mode, Greedy: n.Greedy, Sp: n.Sp}
}

func (r *resolver) resolveReference(n *ast.Reference, inLookaround bool) ast.Expr {
	if !r.opts.Allowed.Allows(flavor.FeatureReferences) {
		r.sink.Error(diag.CodeFeatureDisallowed, diag.KindFeature, n.Sp, "references are not in the allowed feature set")
		return n
	}
	if !r.opts.Capabilities.Backreferences {
		r.sink.Error(diag.CodeUnsupportedFeature, diag.KindFeature, n.Sp,
			fmt.Sprintf("backreferences are not supported by the %s flavor", r.opts.Flavor))
		return n
	}
	if inLookaround && r.opts.Flavor == flavor.Ruby {
		r.sink.Error(diag.CodeRefInLookaround, diag.KindCompat, n.Sp, "Ruby does not allow references inside lookaround")
	}

	switch n.RefKind {
	case ast.RefNumeric:
		target := n.Number
		if target < 1 || target > r.groupCounter {
			r.sink.Error(diag.CodeUnknownReference, diag.KindResolve, n.Sp, fmt.Sprintf("no capturing group numbered %d", target))
			return n
		}
		r.checkRefMixingAndDirection(n.Sp, target, false)
		return n
	case ast.RefRelative:
		var target int
		if n.Number == 0 {
			r.sink.Error(diag.CodeInvalidRelRef, diag.KindResolve, n.Sp, "relative reference offset of 0 is invalid")
			return n
		} else if n.Number > 0 {
			target = r.capturePos + n.Number
		} else {
			target = r.capturePos + n.Number + 1
		}
		if target < 1 || target > r.groupCounter {
			r.sink.Error(diag.CodeUnknownReference, diag.KindResolve, n.Sp, "relative reference does not resolve to an existing capturing group")
			return n
		}
		r.checkRefMixingAndDirection(n.Sp, target, false)
		return &ast.Reference{RefKind: ast.RefNumeric, Number: target, Sp: n.Sp}
	case ast.RefNamed:
		target, ok := r.groupNameIndex[n.Name]
		if !ok {
			r.sink.Error(diag.CodeUnknownReference, diag.KindResolve, n.Sp, fmt.Sprintf("unknown group name %q", n.Name))
			return n
		}
		r.checkRefMixingAndDirection(n.Sp, target, true)
		return n
	}
	return n
}

func (r *resolver) checkRefMixingAndDirection(sp span.Span, target int, named bool) {
	if !r.opts.Capabilities.MixedGroupReferences {
		if named && r.sawNumberedGroup {
			r.sink.Error(diag.CodeMixedGroupRefs, diag.KindCompat, sp,
				fmt.Sprintf("the %s flavor does not allow mixing named and numbered group references", r.opts.Flavor))
		} else if !named && r.sawNamedGroup {
			r.sink.Error(diag.CodeMixedGroupRefs, diag.KindCompat, sp,
				fmt.Sprintf("the %s flavor does not allow mixing named and numbered group references", r.opts.Flavor))
		}
	}
	if target > r.capturePos && !r.opts.Capabilities.ForwardReferences {
		r.sink.Error(diag.CodeForwardRefDisallow, diag.KindCompat, sp,
			fmt.Sprintf("forward references are not supported by the %s flavor", r.opts.Flavor))
	}
	if target == r.capturePos+1 && !r.opts.Capabilities.BackreferenceToOpenGroup {
		// No diagnostic is reported here: a reference into a group that
		// is still open is not rejected for any flavor, whatever its
		// BackreferenceToOpenGroup capability says.
	}
}

// --- deep copy helpers (for hygienic variable inlining) -------------------

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyU32Ptr(p *uint32) *uint32 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func bigCopy(n *big.Int) *big.Int {
	if n == nil {
		return nil
	}
	return new(big.Int).Set(n)
}

func copyExpr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *ast.Literal:
		c := *n
		return &c
	case *ast.CodePoint:
		c := *n
		return &c
	case *ast.Grapheme:
		c := *n
		return &c
	case *ast.Recursion:
		c := *n
		return &c
	case *ast.Dot:
		c := *n
		return &c
	case *ast.InlineRegex:
		c := *n
		return &c
	case *ast.VariableRef:
		c := *n
		return &c
	case *ast.Negation:
		return &ast.Negation{Child: copyExpr(n.Child), Sp: n.Sp}
	case *ast.Sequence:
		items := make([]ast.Expr, len(n.Items))
		for i, it := range n.Items {
			items[i] = copyExpr(it)
		}
		return &ast.Sequence{Items: items, Sp: n.Sp}
	case *ast.Alternation:
		alts := make([]ast.Expr, len(n.Alts))
		for i, a := range n.Alts {
			alts[i] = copyExpr(a)
		}
		return &ast.Alternation{Alts: alts, Sp: n.Sp}
	case *ast.Group:
		return &ast.Group{Kind: n.Kind, Index: copyIntPtr(n.Index), Name: n.Name, Body: copyExpr(n.Body), Sp: n.Sp}
	case *ast.Lookaround:
		return &ast.Lookaround{Direction: n.Direction, Negated: n.Negated, Child: copyExpr(n.Child), Sp: n.Sp}
	case *ast.Repetition:
		return &ast.Repetition{Child: copyExpr(n.Child), Lower: n.Lower, Upper: copyU32Ptr(n.Upper), Mode: n.Mode, Greedy: n.Greedy, Sp: n.Sp}
	case *ast.Boundary:
		c := *n
		return &c
	case *ast.Reference:
		c := *n
		return &c
	case *ast.RangeExpr:
		return &ast.RangeExpr{Lo: bigCopy(n.Lo), Hi: bigCopy(n.Hi), Base: n.Base, FixedWidth: n.FixedWidth, Sp: n.Sp}
	case *ast.CharSet:
		groups := make([]ast.CharSetGroup, len(n.Groups))
		for i, g := range n.Groups {
			items := make([]ast.CharSetItem, len(g.Items))
			for j, it := range g.Items {
				items[j] = copyCharSetItem(it)
			}
			groups[i] = ast.CharSetGroup{Items: items}
		}
		return &ast.CharSet{Negated: n.Negated, Groups: groups, Sp: n.Sp}
	default:
		panic(fmt.Sprintf("resolver: copyExpr: unhandled expr type %T", e))
	}
}

func copyCharSetItem(it ast.CharSetItem) ast.CharSetItem {
	switch n := it.(type) {
	case *ast.CharRange:
		c := *n
		return &c
	case *ast.CharLiteral:
		c := *n
		return &c
	case *ast.CharCodePoint:
		c := *n
		return &c
	case *ast.CharShorthand:
		c := *n
		return &c
	case *ast.PosixClass:
		c := *n
		return &c
	case *ast.UnicodeProperty:
		c := *n
		return &c
	default:
		panic(fmt.Sprintf("resolver: copyCharSetItem: unhandled item type %T", it))
	}
}
