// Package ast defines the Pomsky Abstract Syntax Tree nodes. It is a
// closed set of tagged variants with no polymorphic dispatch: every pass
// (resolver, optimizer, generator) exhaustively switches over the
// concrete type of an Expr.
//
// The parser builds the tree with VariableRef, Reference and
// mode-dependent RepetitionMode left unresolved; the resolver walks it
// and produces a new tree with those replaced by concrete forms. Rather
// than duplicating every node type into a parallel "resolved" set, this
// package reuses one Expr tree across every stage: resolution,
// optimization and code generation all rebuild nodes bottom-up and
// return new values instead of mutating in place, so no pass ever
// observes an intermediate tree through a shared mutable node.
package ast

import (
	"math/big"

	"github.com/pomsky-lang/pomsky-go/internal/span"
)

// Expr is implemented by every expression-level AST node.
type Expr interface {
	exprNode()
	Span() span.Span
}

// Stmt is implemented by every statement-level AST node.
type Stmt interface {
	stmtNode()
	Span() span.Span
}

// Unit is a parsed compile unit: a sequence of statements followed by a
// single expression.
type Unit struct {
	Stmts []Stmt
	Body  Expr
	Sp    span.Span
}

func (u *Unit) Span() span.Span { return u.Sp }

// --- Statements ---------------------------------------------------------

// Mode names a toggleable scope flag: lazy-by-default quantifiers or
// Unicode-aware character classes.
type Mode int

const (
	ModeLazy Mode = iota
	ModeUnicode
)

func (m Mode) String() string {
	if m == ModeUnicode {
		return "unicode"
	}
	return "lazy"
}

// LetStmt binds a name to an expression for the remainder of its scope.
type LetStmt struct {
	Name  string
	Value Expr
	Sp    span.Span
}

func (s *LetStmt) stmtNode()       {}
func (s *LetStmt) Span() span.Span { return s.Sp }

// ModeStmt is `enable MODE;` or `disable MODE;`.
type ModeStmt struct {
	Enable bool
	Mode   Mode
	Sp     span.Span
}

func (s *ModeStmt) stmtNode()       {}
func (s *ModeStmt) Span() span.Span { return s.Sp }

// --- Expressions ---------------------------------------------------------

// Literal is a sequence of literal code points.
type Literal struct {
	Text string
	Sp   span.Span
}

func (l *Literal) exprNode()       {}
func (l *Literal) Span() span.Span { return l.Sp }

// CodePoint is a single Unicode scalar value written as U+HHHHHH.
type CodePoint struct {
	Value rune
	Sp    span.Span
}

func (c *CodePoint) exprNode()       {}
func (c *CodePoint) Span() span.Span { return c.Sp }

// Grapheme is the `Grapheme` terminal, matching one extended grapheme
// cluster.
type Grapheme struct {
	Sp span.Span
}

func (g *Grapheme) exprNode()       {}
func (g *Grapheme) Span() span.Span { return g.Sp }

// Recursion is the `recursion` terminal, a whole-pattern self-reference.
type Recursion struct {
	Sp span.Span
}

func (r *Recursion) exprNode()       {}
func (r *Recursion) Span() span.Span { return r.Sp }

// Dot is the `.` terminal, matching any single character except a line
// terminator. Its Unicode-awareness is resolved from the enclosing
// `unicode`/ascii mode.
type Dot struct {
	Unicode bool
	Sp      span.Span
}

func (d *Dot) exprNode()       {}
func (d *Dot) Span() span.Span { return d.Sp }

// InlineRegex is a verbatim `regex '…'` forwarded to the target engine
// unexamined; the core never validates this text.
type InlineRegex struct {
	Raw string
	Sp  span.Span
}

func (i *InlineRegex) exprNode()       {}
func (i *InlineRegex) Span() span.Span { return i.Sp }

// VariableRef names a `let`-bound variable. The resolver replaces every
// VariableRef with a deep copy of the bound expression; a VariableRef
// should never reach the optimizer or generator.
type VariableRef struct {
	Name string
	Sp   span.Span
}

func (v *VariableRef) exprNode()       {}
func (v *VariableRef) Span() span.Span { return v.Sp }

// Negation is the syntactic `!x` form. It is only valid for a handful of
// negatable node kinds (CharSet, Boundary; a Reference is never
// negatable); the resolver either folds it into the child (e.g. !CharSet
// flips Negated) or reports an error if the child cannot be negated.
type Negation struct {
	Child Expr
	Sp    span.Span
}

func (n *Negation) exprNode()       {}
func (n *Negation) Span() span.Span { return n.Sp }

// Sequence is a concatenation of factors: one branch of an Alternation.
type Sequence struct {
	Items []Expr
	Sp    span.Span
}

func (s *Sequence) exprNode()       {}
func (s *Sequence) Span() span.Span { return s.Sp }

// Alternation is an ordered list of alternatives; order matters and must
// be preserved end to end since regex alternation takes the first match.
type Alternation struct {
	Alts []Expr
	Sp   span.Span
}

func (a *Alternation) exprNode()       {}
func (a *Alternation) Span() span.Span { return a.Sp }

// GroupKind distinguishes the three group shapes the generator needs to
// know how to parenthesize; named/indexed capturing is carried in the
// Group's own fields rather than as separate GroupKind values.
type GroupKind int

const (
	GroupNonCapturing GroupKind = iota
	GroupCapturing
	GroupAtomic
)

// Group is `(...)`, `:name(...)`, `:3(...)`, or `atomic(...)`. Stmts
// holds any `let`/`enable`/`disable` statements written at the start of
// this group's body; they scope to this group and its descendants only.
// The resolver consumes them while expanding Body, so a Group coming out
// of resolution always has Stmts == nil.
type Group struct {
	Kind  GroupKind
	Index *int // explicit numeric index, e.g. `:3(...)`; nil means auto-assign
	Name  string // group name for `:name(...)`; empty if unnamed
	Stmts []Stmt
	Body  Expr
	Sp    span.Span
}

func (g *Group) exprNode()       {}
func (g *Group) Span() span.Span { return g.Sp }

// LookDirection is the direction of a lookaround assertion.
type LookDirection int

const (
	LookAhead LookDirection = iota
	LookBehind
)

// Lookaround is `<<`, `>>`, `!<<`, `!>>` applied to an expression.
type Lookaround struct {
	Direction LookDirection
	Negated   bool
	Child     Expr
	Sp        span.Span
}

func (l *Lookaround) exprNode()       {}
func (l *Lookaround) Span() span.Span { return l.Sp }

// RepetitionMode records how a repetition's greediness was written in
// source. ModeRepDefault means "use the enclosing scope's lazy-mode
// flag", and is what the resolver replaces with a concrete Greedy bool.
type RepetitionMode int

const (
	ModeRepDefault RepetitionMode = iota
	ModeRepGreedy
	ModeRepLazy
)

// Repetition is `x*`, `x+`, `x?`, `x{n}`, `x{n,}`, `x{n,m}` with an
// optional `greedy`/`lazy` suffix keyword.
type Repetition struct {
	Child Expr
	Lower uint32
	Upper *uint32 // nil means unbounded
	Mode  RepetitionMode
	// Greedy is only meaningful once Mode has been resolved away; the
	// resolver sets it from Mode plus the defining scope's lazy flag.
	Greedy bool
	Sp     span.Span
}

func (r *Repetition) exprNode()       {}
func (r *Repetition) Span() span.Span { return r.Sp }

// BoundaryKind enumerates the zero-width, non-lookaround assertions.
type BoundaryKind int

const (
	BoundaryWordStart BoundaryKind = iota
	BoundaryWordEnd
	BoundaryEitherSide
	BoundaryNotBoundary
	BoundaryStringStart
	BoundaryStringEnd
)

// Boundary is one of `<`, `>`, `%`, `!%`, `Start`/`^`, `End`/`$`. Unicode
// records whether word-ness for this boundary is Unicode-aware, resolved
// from the enclosing mode (irrelevant for the string-start/end kinds).
type Boundary struct {
	Kind    BoundaryKind
	Unicode bool
	Sp      span.Span
}

func (b *Boundary) exprNode()       {}
func (b *Boundary) Span() span.Span { return b.Sp }

// RefKind distinguishes the three ways a backreference can name its
// target group.
type RefKind int

const (
	RefNumeric RefKind = iota
	RefRelative
	RefNamed
)

// Reference is a backreference: `::1`, `::+1`, `::-1`, or `::name`. Number
// holds the absolute index for RefNumeric, the signed delta for
// RefRelative; the resolver rewrites RefRelative into RefNumeric once the
// enclosing capture count at that point in source order is known.
type Reference struct {
	RefKind RefKind
	Number  int
	Name    string
	Sp      span.Span
}

func (r *Reference) exprNode()       {}
func (r *Reference) Span() span.Span { return r.Sp }

// RangeExpr is `range 'lo'-'hi' base B`, compiling to a regex matching
// exactly the integers in [Lo, Hi] written in base Base. FixedWidth is
// true iff Lo's textual source form had a leading '0'.
type RangeExpr struct {
	Lo, Hi     *big.Int
	Base       int
	FixedWidth bool
	Sp         span.Span
}

func (r *RangeExpr) exprNode()       {}
func (r *RangeExpr) Span() span.Span { return r.Sp }

// --- Character sets ------------------------------------------------------

// CharSetItem is one member of a character-set group.
type CharSetItem interface {
	charSetItem()
	Span() span.Span
}

// CharRange is `a-z` within a character set; endpoints must satisfy
// lo < hi strictly.
type CharRange struct {
	Lo, Hi rune
	Sp     span.Span
}

func (c *CharRange) charSetItem()    {}
func (c *CharRange) Span() span.Span { return c.Sp }

// CharLiteral is a single literal character (or short literal run) inside
// a character set.
type CharLiteral struct {
	Text string
	Sp   span.Span
}

func (c *CharLiteral) charSetItem()    {}
func (c *CharLiteral) Span() span.Span { return c.Sp }

// CharCodePoint is `U+HHHHHH` inside a character set.
type CharCodePoint struct {
	Value rune
	Sp    span.Span
}

func (c *CharCodePoint) charSetItem()    {}
func (c *CharCodePoint) Span() span.Span { return c.Sp }

// CharShorthand is a named built-in class like `word`, `digit`, `space`,
// `horiz_space`, `vert_space`, `n` (newline), etc. Unicode records whether
// the shorthand should use Unicode-aware semantics, resolved from the
// enclosing `unicode`/ascii mode at the point the shorthand occurs.
type CharShorthand struct {
	Name    string
	Unicode bool
	Sp      span.Span
}

func (c *CharShorthand) charSetItem()    {}
func (c *CharShorthand) Span() span.Span { return c.Sp }

// PosixClass is a POSIX class name used inside a Pomsky set, e.g.
// `ascii_alpha`.
type PosixClass struct {
	Name string
	Sp   span.Span
}

func (c *PosixClass) charSetItem()    {}
func (c *PosixClass) Span() span.Span { return c.Sp }

// UnicodeProperty is a Unicode category/script/block/property reference,
// optionally disambiguated with a `gc:`/`sc:`/`scx:`/`blk:` prefix.
type UnicodeProperty struct {
	Prefix string // "", "gc", "sc", "scx", or "blk"
	Name   string
	Sp     span.Span
}

func (c *UnicodeProperty) charSetItem()    {}
func (c *UnicodeProperty) Span() span.Span { return c.Sp }

// CharSetGroup is a union of items; a CharSet with more than one Group
// intersects the groups with `&`.
type CharSetGroup struct {
	Items []CharSetItem
}

// CharSet is `[...]`, optionally negated, whose Groups are combined with
// the set-intersection operator when there is more than one.
type CharSet struct {
	Negated bool
	Groups  []CharSetGroup
	Sp      span.Span
}

func (c *CharSet) exprNode()       {}
func (c *CharSet) Span() span.Span { return c.Sp }
