// Package rangecompiler compiles a `range 'lo'-'hi' base B` expression
// into a regex alternation that matches exactly the integers in
// [lo, hi] written in base B. The alternation is not minimized: 10-99,
// for example, becomes 1[0-9]|[2-8][0-9]|9[0-9] rather than [1-9][0-9].
// The
// approach is the standard "digit DFA" decomposition: split the interval
// into same-length digit runs, then for each run recursively carve it
// into a lower spine, a free middle block, and an upper spine around the
// first digit where lo and hi diverge.
package rangecompiler

import (
	"math/big"

	"github.com/pomsky-lang/pomsky-go/internal/ast"
	"github.com/pomsky-lang/pomsky-go/internal/diag"
	"github.com/pomsky-lang/pomsky-go/internal/span"
)

// DefaultMaxDigits is the digit-count bound this compiler applies when
// the caller does not configure one: a closed interval whose upper
// bound needs more digits than this in its base is rejected rather than
// expanded into a regex.
const DefaultMaxDigits = 6

// Compile returns the expression tree equivalent to re, or a placeholder
// literal with an error recorded on sink if re is out of bounds.
// maxDigits bounds the digit count this compiler will expand, guarding
// against pathological ranges (e.g. base 2 with a huge upper bound)
// producing unbounded regex size; 0 uses DefaultMaxDigits.
func Compile(re *ast.RangeExpr, sink *diag.Sink, maxDigits int) ast.Expr {
	if maxDigits <= 0 {
		maxDigits = DefaultMaxDigits
	}
	if re.Lo.Sign() < 0 || re.Hi.Sign() < 0 {
		sink.Error(diag.CodeRangeOrder, diag.KindRange, re.Sp, "range endpoints must be non-negative")
		return &ast.Literal{Sp: re.Sp}
	}

	hiDigits := toDigits(re.Hi, re.Base)
	if len(hiDigits) > maxDigits {
		sink.Error(diag.CodeRangeDigitLimit, diag.KindRange, re.Sp, "range upper bound has too many digits to compile")
		return &ast.Literal{Sp: re.Sp}
	}

	if re.FixedWidth {
		loDigits := toDigits(re.Lo, re.Base)
		width := len(loDigits)
		if len(hiDigits) > width {
			width = len(hiDigits)
		}
		return setSpan(digitsRegex(padDigits(loDigits, width), padDigits(hiDigits, width), re.Base), re.Sp)
	}

	var alts []ast.Expr
	cur := new(big.Int).Set(re.Lo)
	for cur.Cmp(re.Hi) <= 0 {
		digits := toDigits(cur, re.Base)
		width := len(digits)
		segHi := maxValueForWidth(width, re.Base)
		if segHi.Cmp(re.Hi) > 0 {
			segHi = new(big.Int).Set(re.Hi)
		}
		loSeg := padDigits(digits, width)
		hiSeg := padDigits(toDigits(segHi, re.Base), width)
		alts = append(alts, digitsRegex(loSeg, hiSeg, re.Base))
		cur = new(big.Int).Add(segHi, big.NewInt(1))
	}

	if len(alts) == 1 {
		return setSpan(alts[0], re.Sp)
	}
	return setSpan(&ast.Alternation{Alts: alts}, re.Sp)
}

// digitsRegex builds the expression matching exactly the fixed-length
// digit strings between lo and hi inclusive (lo and hi must be the same
// length and lo <= hi lexicographically, i.e. numerically since they are
// the same length).
func digitsRegex(lo, hi []int, base int) ast.Expr {
	n := len(lo)
	if n == 1 {
		return digitExpr(lo[0], hi[0], base)
	}
	if lo[0] == hi[0] {
		return &ast.Sequence{Items: []ast.Expr{
			digitExpr(lo[0], lo[0], base),
			digitsRegex(lo[1:], hi[1:], base),
		}}
	}

	var alts []ast.Expr

	// Lower spine: first digit fixed to lo[0], remaining digits range
	// from lo's tail up to the maximal tail for this width.
	alts = append(alts, &ast.Sequence{Items: []ast.Expr{
		digitExpr(lo[0], lo[0], base),
		digitsRegex(lo[1:], repeatDigit(base-1, n-1), base),
	}})

	// Middle: every fully free digit string whose first digit is
	// strictly between lo[0] and hi[0].
	if hi[0]-lo[0] > 1 {
		items := make([]ast.Expr, n)
		items[0] = digitExpr(lo[0]+1, hi[0]-1, base)
		for i := 1; i < n; i++ {
			items[i] = digitExpr(0, base-1, base)
		}
		alts = append(alts, &ast.Sequence{Items: items})
	}

	// Upper spine: first digit fixed to hi[0], remaining digits range
	// from the minimal tail up to hi's tail.
	alts = append(alts, &ast.Sequence{Items: []ast.Expr{
		digitExpr(hi[0], hi[0], base),
		digitsRegex(repeatDigit(0, n-1), hi[1:], base),
	}})

	return &ast.Alternation{Alts: alts}
}

// digitExpr returns the character set matching a single digit whose
// numeric value lies in [lo, hi] for the given base. Values 0-9 render
// as '0'-'9'; values 10-35 render as both lower- and upper-case letters,
// since Pomsky range output is case-insensitive for bases above 10.
func digitExpr(lo, hi, base int) ast.Expr {
	var items []ast.CharSetItem
	if lo <= 9 {
		digHi := hi
		if digHi > 9 {
			digHi = 9
		}
		items = append(items, charRangeItem('0', lo, digHi))
	}
	if hi >= 10 {
		letLo := lo
		if letLo < 10 {
			letLo = 10
		}
		items = append(items, charRangeItem('a', letLo-10, hi-10))
		items = append(items, charRangeItem('A', letLo-10, hi-10))
	}
	return &ast.CharSet{Groups: []ast.CharSetGroup{{Items: items}}}
}

func charRangeItem(base rune, lo, hi int) ast.CharSetItem {
	loCh := base + rune(lo)
	hiCh := base + rune(hi)
	if loCh == hiCh {
		return &ast.CharLiteral{Text: string(loCh)}
	}
	return &ast.CharRange{Lo: loCh, Hi: hiCh}
}

// toDigits renders n in the given base, most significant digit first,
// with at least one digit (n == 0 yields []int{0}).
func toDigits(n *big.Int, base int) []int {
	if n.Sign() == 0 {
		return []int{0}
	}
	b := big.NewInt(int64(base))
	rem := new(big.Int).Set(n)
	var digits []int
	zero := big.NewInt(0)
	for rem.Cmp(zero) > 0 {
		q, m := new(big.Int), new(big.Int)
		q.DivMod(rem, b, m)
		digits = append(digits, int(m.Int64()))
		rem = q
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return digits
}

func padDigits(d []int, width int) []int {
	if len(d) >= width {
		return d
	}
	out := make([]int, width)
	offset := width - len(d)
	copy(out[offset:], d)
	return out
}

func repeatDigit(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func maxValueForWidth(width, base int) *big.Int {
	v := new(big.Int).Exp(big.NewInt(int64(base)), big.NewInt(int64(width)), nil)
	return v.Sub(v, big.NewInt(1))
}

func setSpan(e ast.Expr, sp span.Span) ast.Expr {
	switch n := e.(type) {
	case *ast.Alternation:
		n.Sp = sp
		return n
	case *ast.Sequence:
		n.Sp = sp
		return n
	case *ast.CharSet:
		n.Sp = sp
		return n
	default:
		return e
	}
}
