// Package optimizer performs local, meaning-preserving tree rewrites:
// merging adjacent character sets and single-character alternatives,
// collapsing overlapping/duplicate items within a character set,
// concatenating adjacent literals, factoring common prefixes out of
// adjacent literal alternatives, collapsing redundant groups and
// quantifiers, and folding constant nested repetitions. Every rewrite
// here must be a no-op on the matched language; nothing here changes
// what the pattern matches, only how compactly it is expressed.
package optimizer

import (
	"sort"
	"strings"

	"github.com/pomsky-lang/pomsky-go/internal/ast"
)

// Optimize rewrites e bottom-up and returns the simplified tree. It is
// run once, after the resolver and before the generator.
func Optimize(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *ast.Sequence:
		return optimizeSequence(n)
	case *ast.Alternation:
		return optimizeAlternation(n)
	case *ast.Group:
		return optimizeGroup(n)
	case *ast.Lookaround:
		return &ast.Lookaround{Direction: n.Direction, Negated: n.Negated, Child: Optimize(n.Child), Sp: n.Sp}
	case *ast.Repetition:
		return optimizeRepetition(n)
	case *ast.CharSet:
		return optimizeCharSet(n)
	default:
		return e
	}
}

// optimizeCharSet collapses overlapping/adjacent ranges and duplicate
// atoms within each group of a character set. A group containing a
// UnicodeProperty atom is left untouched: category membership isn't
// known statically, so the group is treated opaquely.
func optimizeCharSet(n *ast.CharSet) ast.Expr {
	groups := make([]ast.CharSetGroup, len(n.Groups))
	for i, g := range n.Groups {
		groups[i] = mergeCharSetGroupItems(g)
	}
	return &ast.CharSet{Negated: n.Negated, Groups: groups, Sp: n.Sp}
}

func mergeCharSetGroupItems(g ast.CharSetGroup) ast.CharSetGroup {
	for _, it := range g.Items {
		if _, ok := it.(*ast.UnicodeProperty); ok {
			return g
		}
	}

	type span2 struct{ lo, hi rune }
	var ranges []span2
	var other []ast.CharSetItem
	for _, it := range g.Items {
		switch v := it.(type) {
		case *ast.CharRange:
			ranges = append(ranges, span2{v.Lo, v.Hi})
		case *ast.CharLiteral:
			r := []rune(v.Text)
			if len(r) == 1 {
				ranges = append(ranges, span2{r[0], r[0]})
			} else {
				other = append(other, it)
			}
		case *ast.CharCodePoint:
			ranges = append(ranges, span2{v.Value, v.Value})
		default:
			other = append(other, it)
		}
	}
	if len(ranges) == 0 {
		return g
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].lo < ranges[j].lo })
	merged := make([]span2, 1, len(ranges))
	merged[0] = ranges[0]
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.lo <= last.hi+1 {
			if r.hi > last.hi {
				last.hi = r.hi
			}
			continue
		}
		merged = append(merged, r)
	}

	items := make([]ast.CharSetItem, 0, len(merged)+len(other))
	for _, r := range merged {
		if r.lo == r.hi {
			items = append(items, &ast.CharLiteral{Text: string(r.lo)})
		} else {
			items = append(items, &ast.CharRange{Lo: r.lo, Hi: r.hi})
		}
	}
	items = append(items, other...)
	return ast.CharSetGroup{Items: items}
}

func optimizeSequence(n *ast.Sequence) ast.Expr {
	var flat []ast.Expr
	for _, it := range n.Items {
		o := Optimize(it)
		if sub, ok := o.(*ast.Sequence); ok {
			flat = append(flat, sub.Items...)
			continue
		}
		flat = append(flat, o)
	}
	flat = mergeLiterals(flat)
	if len(flat) == 1 {
		return flat[0]
	}
	return &ast.Sequence{Items: flat, Sp: n.Sp}
}

// mergeLiterals fuses runs of adjacent Literal nodes into one, e.g.
// "a" "b" "c" -> "abc".
func mergeLiterals(items []ast.Expr) []ast.Expr {
	out := make([]ast.Expr, 0, len(items))
	for _, it := range items {
		if lit, ok := it.(*ast.Literal); ok {
			if len(out) > 0 {
				if prev, ok := out[len(out)-1].(*ast.Literal); ok {
					out[len(out)-1] = &ast.Literal{Text: prev.Text + lit.Text, Sp: prev.Sp}
					continue
				}
			}
		}
		out = append(out, it)
	}
	return out
}

func optimizeAlternation(n *ast.Alternation) ast.Expr {
	alts := make([]ast.Expr, len(n.Alts))
	for i, a := range n.Alts {
		alts[i] = Optimize(a)
	}
	alts = mergeCharSetAlternatives(alts)
	alts = factorCommonPrefixes(alts)
	if len(alts) == 1 {
		return alts[0]
	}
	return &ast.Alternation{Alts: alts, Sp: n.Sp}
}

// factorCommonPrefixes finds maximal runs of adjacent plain-Literal
// alternatives sharing a non-empty prefix and rewrites each run as
// `prefix (?:suffixes)`, e.g. `'do'|'double'|'down'` ->
// `do(?:uble|wn)?`. Order is preserved: only contiguous alternatives
// participate, since reordering could change which alternative a
// backtracking engine commits to first.
func factorCommonPrefixes(alts []ast.Expr) []ast.Expr {
	out := make([]ast.Expr, 0, len(alts))
	i := 0
	for i < len(alts) {
		lit, ok := alts[i].(*ast.Literal)
		if !ok {
			out = append(out, alts[i])
			i++
			continue
		}
		prefix := lit.Text
		j := i + 1
		for j < len(alts) {
			next, ok := alts[j].(*ast.Literal)
			if !ok {
				break
			}
			p := commonPrefix(prefix, next.Text)
			if p == "" {
				break
			}
			prefix = p
			j++
		}
		if j-i < 2 {
			out = append(out, alts[i])
			i++
			continue
		}
		out = append(out, buildPrefixFactoring(prefix, alts[i:j]))
		i = j
	}
	return out
}

func commonPrefix(a, b string) string {
	ar, br := []rune(a), []rune(b)
	n := len(ar)
	if len(br) < n {
		n = len(br)
	}
	k := 0
	for k < n && ar[k] == br[k] {
		k++
	}
	return string(ar[:k])
}

// buildPrefixFactoring builds `prefix (?:suffix1|suffix2|...)` from a run
// of literals known to share prefix, wrapping the remainder group in an
// optional quantifier if one of the literals is exactly prefix itself.
func buildPrefixFactoring(prefix string, run []ast.Expr) ast.Expr {
	var suffixes []ast.Expr
	hasEmpty := false
	for _, e := range run {
		text := e.(*ast.Literal).Text
		suf := strings.TrimPrefix(text, prefix)
		if suf == "" {
			hasEmpty = true
			continue
		}
		suffixes = append(suffixes, &ast.Literal{Text: suf})
	}

	var rest ast.Expr
	if len(suffixes) == 1 {
		rest = suffixes[0]
	} else {
		rest = &ast.Alternation{Alts: suffixes}
	}
	group := ast.Expr(&ast.Group{Kind: ast.GroupNonCapturing, Body: rest})

	if hasEmpty {
		one := uint32(1)
		group = &ast.Repetition{Child: group, Lower: 0, Upper: &one, Mode: ast.ModeRepDefault, Greedy: true}
	}
	return &ast.Sequence{Items: []ast.Expr{&ast.Literal{Text: prefix}, group}}
}

// mergeCharSetAlternatives fuses a run of adjacent single-character
// alternatives (bare CharSet or one-rune Literal, none negated and none
// already an intersection of multiple groups) into a single CharSet
// union, e.g. `'a' | [b-d] | 'e'` -> `[ab-de]`: the items are
// concatenated into one group and not merged with each other.
func mergeCharSetAlternatives(alts []ast.Expr) []ast.Expr {
	out := make([]ast.Expr, 0, len(alts))
	for _, a := range alts {
		item, ok := singleCharSetGroup(a)
		if !ok {
			out = append(out, a)
			continue
		}
		if len(out) > 0 {
			if prevSet, ok := out[len(out)-1].(*ast.CharSet); ok && !prevSet.Negated && len(prevSet.Groups) == 1 {
				merged := append(append([]ast.CharSetItem{}, prevSet.Groups[0].Items...), item...)
				out[len(out)-1] = &ast.CharSet{Groups: []ast.CharSetGroup{{Items: merged}}, Sp: prevSet.Sp}
				continue
			}
		}
		out = append(out, &ast.CharSet{Groups: []ast.CharSetGroup{{Items: item}}})
	}
	return out
}

// singleCharSetGroup reports whether e is mergeable as a single-character
// alternative: an unnegated, non-intersected CharSet, or a one-rune
// Literal.
func singleCharSetGroup(e ast.Expr) ([]ast.CharSetItem, bool) {
	switch n := e.(type) {
	case *ast.CharSet:
		if n.Negated || len(n.Groups) != 1 {
			return nil, false
		}
		return n.Groups[0].Items, true
	case *ast.Literal:
		r := []rune(n.Text)
		if len(r) != 1 {
			return nil, false
		}
		return []ast.CharSetItem{&ast.CharLiteral{Text: n.Text, Sp: n.Sp}}, true
	}
	return nil, false
}

func optimizeGroup(n *ast.Group) ast.Expr {
	body := Optimize(n.Body)
	if n.Kind == ast.GroupNonCapturing {
		if inner, ok := body.(*ast.Group); ok && inner.Kind == ast.GroupNonCapturing {
			return &ast.Group{Kind: ast.GroupNonCapturing, Body: inner.Body, Sp: n.Sp}
		}
	}
	return &ast.Group{Kind: n.Kind, Index: n.Index, Name: n.Name, Body: body, Sp: n.Sp}
}

func optimizeRepetition(n *ast.Repetition) ast.Expr {
	child := Optimize(n.Child)

	if n.Upper != nil && n.Lower == *n.Upper {
		if n.Lower == 1 {
			return child
		}
		if n.Lower == 0 {
			return &ast.Sequence{Sp: n.Sp}
		}
		// Constant nested repetition: (x{a}){b} -> x{a*b}.
		if inner, ok := child.(*ast.Repetition); ok && inner.Upper != nil && inner.Lower == *inner.Upper {
			total := inner.Lower * n.Lower
			return &ast.Repetition{Child: inner.Child, Lower: total, Upper: &total, Mode: n.Mode, Greedy: n.Greedy, Sp: n.Sp}
		}
	}

	return &ast.Repetition{Child: child, Lower: n.Lower, Upper: n.Upper, Mode: n.Mode, Greedy: n.Greedy, Sp: n.Sp}
}
