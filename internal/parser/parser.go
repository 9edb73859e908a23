// Package parser implements the recursive-descent Pomsky parser,
// building the AST defined in internal/ast. The parser is pure: it
// knows nothing about target flavors or feature gates (those live in
// internal/resolver).
//
// On a syntax error the parser reports a diagnostic — often with a help
// string drawn from commonMistakeHelp, a table of regex habits that don't
// carry over to Pomsky — then recovers by skipping to the nearest
// statement or group boundary so independent errors elsewhere in the unit
// still get reported in the same run.
package parser

import (
	"math/big"
	"strconv"

	"github.com/pomsky-lang/pomsky-go/internal/ast"
	"github.com/pomsky-lang/pomsky-go/internal/diag"
	"github.com/pomsky-lang/pomsky-go/internal/lexer"
	"github.com/pomsky-lang/pomsky-go/internal/span"
	"github.com/pomsky-lang/pomsky-go/internal/token"
)

// DefaultMaxDepth bounds parser recursion depth to guard against stack
// overflow on deeply nested groups.
const DefaultMaxDepth = 127

// Parser holds the token stream and a cursor over it.
type Parser struct {
	toks     []token.Token
	pos      int
	sink     *diag.Sink
	depth    int
	maxDepth int
}

// Parse lexes and parses src in one step, the entry point most callers
// want.
func Parse(src string, sink *diag.Sink, maxDepth int) *ast.Unit {
	toks := lexer.Lex(src, sink)
	p := New(toks, sink, maxDepth)
	return p.ParseUnit()
}

// New builds a Parser over an already-lexed token stream.
func New(toks []token.Token, sink *diag.Sink, maxDepth int) *Parser {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Parser{toks: toks, sink: sink, maxDepth: maxDepth}
}

// ---- token-stream primitives -------------------------------------------

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of kind k, reporting a syntax error with help if
// the current token doesn't match. On mismatch it does not advance, so
// callers higher up can still attempt resynchronization.
func (p *Parser) expect(k token.Kind, context string) token.Token {
	if p.at(k) {
		return p.advance()
	}
	help := commonMistakeHelp(p.cur())
	p.sink.Errorf(diag.CodeExpectedToken, diag.KindSyntax, p.cur().Span,
		"expected "+k.String()+" "+context+", found "+describe(p.cur()), help)
	return p.cur()
}

func describe(t token.Token) string {
	if t.Kind == token.EOF {
		return "end of input"
	}
	if t.Raw != "" {
		return "'" + t.Raw + "'"
	}
	return t.Kind.String()
}

// commonMistakeHelp gives regex syntax typed out of habit a pointer to
// the Pomsky spelling instead of a bare "unexpected token".
func commonMistakeHelp(t token.Token) string {
	switch t.Raw {
	case "\\w", "\\d", "\\s":
		return "use [word], [digit], or [space] instead of regex shorthand escapes"
	case "\\1", "\\2", "\\3":
		return "use ::1, ::2, ... for backreferences"
	case "^":
		return "prefer `Start` (or keep `^`, both are accepted as string-start boundaries)"
	case "$":
		return "prefer `End` (or keep `$`, both are accepted as string-end boundaries)"
	}
	if t.Kind == token.Ident && t.Raw == "P" {
		return "use :name(...) instead of (?P<name>...) for a named capturing group"
	}
	return ""
}

func (p *Parser) errorUnexpected(context string) {
	p.sink.Errorf(diag.CodeUnexpectedToken, diag.KindSyntax, p.cur().Span,
		"unexpected "+describe(p.cur())+" "+context, commonMistakeHelp(p.cur()))
}

// syncTo skips tokens until one in kinds (or EOF) is current, for error
// recovery at statement/group boundaries.
func (p *Parser) syncTo(kinds ...token.Kind) {
	for !p.at(token.EOF) {
		for _, k := range kinds {
			if p.at(k) {
				return
			}
		}
		p.advance()
	}
}

// enterNested bumps the recursion-depth counter and reports once if the
// bound is exceeded. It returns false when the caller should stop
// recursing to protect the Go call stack.
func (p *Parser) enterNested(sp span.Span) bool {
	p.depth++
	if p.depth > p.maxDepth {
		p.sink.Error(diag.CodeRecursionDepth, diag.KindSyntax, sp,
			"expression nesting exceeds the maximum depth of "+strconv.Itoa(p.maxDepth)+" groups")
		return false
	}
	return true
}

func (p *Parser) leaveNested() {
	p.depth--
}

// ---- grammar ------------------------------------------------------------

// ParseUnit parses `Statement* Expression`.
func (p *Parser) ParseUnit() *ast.Unit {
	start := p.cur().Span.Start
	stmts := p.parseStatements()
	body := p.parseExpression()
	if !p.at(token.EOF) {
		p.errorUnexpected("at end of unit")
	}
	return &ast.Unit{Stmts: stmts, Body: body, Sp: span.New(start, p.prevEnd())}
}

func (p *Parser) prevEnd() int {
	if p.pos == 0 {
		return p.cur().Span.End
	}
	return p.toks[p.pos-1].Span.End
}

// parseStatements parses `Statement*` at the start of a scope — the unit
// root or a group body — where `let`/`enable`/`disable` are legal.
func (p *Parser) parseStatements() []ast.Stmt {
	var stmts []ast.Stmt
	for p.at(token.KwLet) || p.at(token.KwEnable) || p.at(token.KwDisable) {
		if s := p.parseStatement(); s != nil {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

func (p *Parser) parseStatement() ast.Stmt {
	switch {
	case p.at(token.KwLet):
		return p.parseLetStmt()
	case p.at(token.KwEnable), p.at(token.KwDisable):
		return p.parseModeStmt()
	}
	return nil
}

func (p *Parser) parseLetStmt() ast.Stmt {
	kw := p.advance()
	nameTok := p.expect(token.Ident, "after 'let'")
	p.expect(token.Eq, "after variable name")
	value := p.parseExpression()
	end := p.expect(token.Semicolon, "to terminate a let-statement")
	return &ast.LetStmt{Name: nameTok.Text, Value: value, Sp: span.Join(kw.Span, end.Span)}
}

func (p *Parser) parseModeStmt() ast.Stmt {
	kw := p.advance()
	enable := kw.Kind == token.KwEnable
	var mode ast.Mode
	switch {
	case p.at(token.KwLazy):
		p.advance()
		mode = ast.ModeLazy
	case p.at(token.Ident) && p.cur().Text == "unicode":
		p.advance()
		mode = ast.ModeUnicode
	default:
		p.sink.Error(diag.CodeUnexpectedToken, diag.KindSyntax, p.cur().Span,
			"expected 'lazy' or 'unicode' after enable/disable")
		p.syncTo(token.Semicolon)
	}
	end := p.expect(token.Semicolon, "to terminate a mode statement")
	return &ast.ModeStmt{Enable: enable, Mode: mode, Sp: span.Join(kw.Span, end.Span)}
}

func (p *Parser) parseExpression() ast.Expr {
	return p.parseAlternation()
}

func (p *Parser) parseAlternation() ast.Expr {
	start := p.cur().Span.Start
	p.eat(token.Pipe) // optional leading '|'
	first := p.parseSequence()
	alts := []ast.Expr{first}
	for p.eat(token.Pipe) {
		alts = append(alts, p.parseSequence())
	}
	if len(alts) == 1 {
		return alts[0]
	}
	return &ast.Alternation{Alts: alts, Sp: span.New(start, p.prevEnd())}
}

func (p *Parser) atSequenceEnd() bool {
	return p.at(token.RParen) || p.at(token.Pipe) || p.at(token.EOF) || p.at(token.Semicolon)
}

func (p *Parser) parseSequence() ast.Expr {
	start := p.cur().Span.Start
	var items []ast.Expr
	for !p.atSequenceEnd() {
		before := p.pos
		items = append(items, p.parseFactor())
		if p.pos == before {
			// parseFactor failed to consume anything (e.g. an
			// unrecognized token): report and force progress.
			p.errorUnexpected("in expression")
			p.advance()
		}
	}
	if len(items) == 0 {
		p.sink.Error(diag.CodeEmptyAlternation, diag.KindSyntax, span.Empty(start),
			"expected an expression here")
		return &ast.Literal{Text: "", Sp: span.Empty(start)}
	}
	if len(items) == 1 {
		return items[0]
	}
	return &ast.Sequence{Items: items, Sp: span.New(start, p.prevEnd())}
}

func (p *Parser) parseFactor() ast.Expr {
	if t := p.cur(); t.Kind == token.LtLt || t.Kind == token.GtGt ||
		t.Kind == token.BangLtLt || t.Kind == token.BangGtGt {
		return p.parseLookaround()
	}
	atom := p.parseAtom()
	if atom == nil {
		return &ast.Literal{Text: "", Sp: span.Empty(p.cur().Span.Start)}
	}
	if p.atRepetitionStart() {
		return p.parseRepetition(atom)
	}
	return atom
}

func (p *Parser) parseLookaround() ast.Expr {
	tok := p.advance()
	var dir ast.LookDirection
	var neg bool
	switch tok.Kind {
	case token.LtLt:
		dir = ast.LookBehind
	case token.GtGt:
		dir = ast.LookAhead
	case token.BangLtLt:
		dir, neg = ast.LookBehind, true
	case token.BangGtGt:
		dir, neg = ast.LookAhead, true
	}
	if !p.enterNested(tok.Span) {
		p.leaveNested()
		return &ast.Lookaround{Direction: dir, Negated: neg, Child: &ast.Literal{Sp: tok.Span}, Sp: tok.Span}
	}
	child := p.parseExpression()
	p.leaveNested()
	return &ast.Lookaround{Direction: dir, Negated: neg, Child: child, Sp: span.Join(tok.Span, child.Span())}
}

func (p *Parser) atRepetitionStart() bool {
	return p.at(token.Star) || p.at(token.Plus) || p.at(token.Question) || p.at(token.LBrace)
}

func (p *Parser) parseRepetition(atom ast.Expr) ast.Expr {
	var lower uint32
	var upper *uint32
	switch {
	case p.eat(token.Star):
		lower = 0
	case p.eat(token.Plus):
		lower = 1
	case p.eat(token.Question):
		one := uint32(1)
		upper = &one
	case p.at(token.LBrace):
		lower, upper = p.parseBraceBounds()
	}

	mode := ast.ModeRepDefault
	switch {
	case p.eat(token.KwGreedy):
		mode = ast.ModeRepGreedy
	case p.eat(token.KwLazy):
		mode = ast.ModeRepLazy
	}

	rep := &ast.Repetition{
		Child: atom, Lower: lower, Upper: upper, Mode: mode,
		Sp: span.Join(atom.Span(), span.Empty(p.prevEnd())),
	}

	// `x??` or `x+?` stacking is rejected: a second quantifier directly
	// following a repetition with no lazy/greedy keyword between them is
	// a syntax error, not an alternate spelling of laziness.
	if p.atRepetitionStart() {
		p.sink.Errorf(diag.CodeLazyMarkerOnLazy, diag.KindSyntax, p.cur().Span,
			"quantifiers cannot be stacked directly on a repetition",
			"write `greedy` or `lazy` explicitly instead of a second ?/*/+/{..}")
		p.advance() // skip the offending stacked quantifier and recover
	}
	return rep
}

func (p *Parser) parseBraceBounds() (uint32, *uint32) {
	p.advance() // '{'
	lowTok := p.expect(token.Number, "as a repetition lower bound")
	lower := parseU32(lowTok.Text)
	var upper *uint32
	if p.eat(token.Comma) {
		if p.at(token.Number) {
			hiTok := p.advance()
			u := parseU32(hiTok.Text)
			upper = &u
		}
	} else {
		upper = &lower
	}
	p.expect(token.RBrace, "to close a repetition")
	if upper != nil && lower > *upper {
		p.sink.Error(diag.CodeRangeOrder, diag.KindSyntax, span.New(lowTok.Span.Start, p.prevEnd()),
			"repetition lower bound must not exceed the upper bound")
	}
	return lower, upper
}

func parseU32(s string) uint32 {
	var v uint64
	for i := 0; i < len(s); i++ {
		v = v*10 + uint64(s[i]-'0')
		if v > 0xFFFFFFFF {
			v = 0xFFFFFFFF
		}
	}
	return uint32(v)
}

// ---- atoms ---------------------------------------------------------------

func (p *Parser) parseAtom() ast.Expr {
	tok := p.cur()
	switch tok.Kind {
	case token.SQString, token.DQString:
		p.advance()
		return &ast.Literal{Text: tok.Text, Sp: tok.Span}
	case token.CodePoint:
		p.advance()
		return &ast.CodePoint{Value: []rune(tok.Text)[0], Sp: tok.Span}
	case token.LBracket:
		return p.parseCharSet(false, tok.Span)
	case token.Bang:
		p.advance()
		if p.at(token.LBracket) {
			return p.parseCharSet(true, tok.Span)
		}
		child := p.parseAtom()
		if child == nil {
			return &ast.Literal{Sp: tok.Span}
		}
		return &ast.Negation{Child: child, Sp: span.Join(tok.Span, child.Span())}
	case token.BangPercent:
		p.advance()
		return &ast.Boundary{Kind: ast.BoundaryNotBoundary, Sp: tok.Span}
	case token.Percent:
		p.advance()
		return &ast.Boundary{Kind: ast.BoundaryEitherSide, Sp: tok.Span}
	case token.Lt, token.LtPercent:
		p.advance()
		return &ast.Boundary{Kind: ast.BoundaryWordStart, Sp: tok.Span}
	case token.Gt, token.PercentGt:
		p.advance()
		return &ast.Boundary{Kind: ast.BoundaryWordEnd, Sp: tok.Span}
	case token.Caret:
		p.advance()
		return &ast.Boundary{Kind: ast.BoundaryStringStart, Sp: tok.Span}
	case token.Dollar:
		p.advance()
		return &ast.Boundary{Kind: ast.BoundaryStringEnd, Sp: tok.Span}
	case token.Dot:
		p.advance()
		return &ast.Dot{Sp: tok.Span}
	case token.ColonColon, token.ColonColonPlus, token.ColonColonMinus:
		return p.parseReference()
	case token.KwRecursion:
		p.advance()
		return &ast.Recursion{Sp: tok.Span}
	case token.KwRegex:
		return p.parseInlineRegex()
	case token.KwRange:
		return p.parseRange()
	case token.KwAtomic:
		p.advance()
		p.expect(token.LParen, "after 'atomic'")
		return p.parseGroupBody(ast.GroupAtomic, nil, "", tok.Span)
	case token.Colon:
		return p.parseNamedOrIndexedGroup(tok)
	case token.LParen:
		return p.parseGroupBody(ast.GroupNonCapturing, nil, "", tok.Span)
	case token.Ident:
		p.advance()
		return &ast.VariableRef{Name: tok.Text, Sp: tok.Span}
	default:
		return nil
	}
}

func (p *Parser) parseNamedOrIndexedGroup(colon token.Token) ast.Expr {
	p.advance() // ':'
	var idx *int
	var name string
	switch {
	case p.at(token.Number):
		n := p.advance()
		v := int(parseU32(n.Text))
		idx = &v
	case p.at(token.Ident):
		name = p.advance().Text
	}
	p.expect(token.LParen, "after ':' to open a capturing group")
	return p.parseGroupBody(ast.GroupCapturing, idx, name, colon.Span)
}

func (p *Parser) parseGroupBody(kind ast.GroupKind, idx *int, name string, startSp span.Span) ast.Expr {
	if !p.enterNested(startSp) {
		p.leaveNested()
		p.skipBalanced()
		return &ast.Group{Kind: kind, Index: idx, Name: name, Body: &ast.Literal{Sp: startSp}, Sp: startSp}
	}
	stmts := p.parseStatements()
	body := p.parseExpression()
	end := p.expect(token.RParen, "to close a group")
	p.leaveNested()
	return &ast.Group{Kind: kind, Index: idx, Name: name, Stmts: stmts, Body: body, Sp: span.Join(startSp, end.Span)}
}

// skipBalanced consumes tokens up to the matching ')' without recursing,
// used when the depth bound has already been hit so we can still recover
// and look for further independent errors later in the unit.
func (p *Parser) skipBalanced() {
	depth := 1
	for !p.at(token.EOF) && depth > 0 {
		if p.at(token.LParen) {
			depth++
		} else if p.at(token.RParen) {
			depth--
		}
		p.advance()
	}
}

func (p *Parser) parseReference() ast.Expr {
	tok := p.advance()
	switch tok.Kind {
	case token.ColonColon:
		if p.at(token.Number) {
			n := p.advance()
			return &ast.Reference{RefKind: ast.RefNumeric, Number: int(parseU32(n.Text)), Sp: span.Join(tok.Span, n.Span)}
		}
		if p.at(token.Ident) {
			n := p.advance()
			return &ast.Reference{RefKind: ast.RefNamed, Name: n.Text, Sp: span.Join(tok.Span, n.Span)}
		}
		p.sink.Errorf(diag.CodeUnexpectedToken, diag.KindSyntax, p.cur().Span,
			"expected a group number or name after '::'", "use ::1 or ::name")
		return &ast.Reference{RefKind: ast.RefNumeric, Number: 0, Sp: tok.Span}
	case token.ColonColonPlus:
		n := p.expect(token.Number, "after '::+'")
		return &ast.Reference{RefKind: ast.RefRelative, Number: int(parseU32(n.Text)), Sp: span.Join(tok.Span, n.Span)}
	case token.ColonColonMinus:
		n := p.expect(token.Number, "after '::-'")
		return &ast.Reference{RefKind: ast.RefRelative, Number: -int(parseU32(n.Text)), Sp: span.Join(tok.Span, n.Span)}
	}
	return &ast.Reference{Sp: tok.Span}
}

func (p *Parser) parseInlineRegex() ast.Expr {
	kw := p.advance() // 'regex'
	var strTok token.Token
	if p.at(token.SQString) || p.at(token.DQString) {
		strTok = p.advance()
	} else {
		strTok = p.expect(token.SQString, "after 'regex'")
	}
	return &ast.InlineRegex{Raw: strTok.Text, Sp: span.Join(kw.Span, strTok.Span)}
}

func (p *Parser) parseRange() ast.Expr {
	kw := p.advance() // 'range'
	loTok := p.expectRangeEndpoint()
	p.expect(token.Minus, "between range endpoints")
	hiTok := p.expectRangeEndpoint()
	base := 10
	if p.eat(token.KwBase) {
		baseTok := p.expect(token.Number, "after 'base'")
		base = int(parseU32(baseTok.Text))
		if base < 2 || base > 36 {
			p.sink.Error(diag.CodeRangeBadBase, diag.KindRange, baseTok.Span,
				"range base must be between 2 and 36")
			base = 10
		}
	}
	lo, loOk := new(big.Int).SetString(loTok.Text, base)
	hi, hiOk := new(big.Int).SetString(hiTok.Text, base)
	end := hiTok.Span
	sp := span.Join(kw.Span, end)
	if !loOk || !hiOk {
		p.sink.Error(diag.CodeRangeBadBase, diag.KindRange, sp,
			"range endpoints are not valid digits in the given base")
		lo, hi = big.NewInt(0), big.NewInt(0)
	} else {
		fixedWidth := len(loTok.Text) > 1 && loTok.Text[0] == '0'
		if lo.Cmp(hi) == 0 {
			p.sink.Error(diag.CodeRangeSingleton, diag.KindRange, sp,
				"range endpoints must differ; a single value isn't a range")
		} else if lo.Cmp(hi) > 0 {
			p.sink.Error(diag.CodeRangeOrder, diag.KindRange, sp,
				"range lower bound must not exceed the upper bound")
		}
		if !fixedWidth && len(loTok.Text) > 1 && loTok.Text[0] == '0' {
			p.sink.Error(diag.CodeRangeLeadingZero, diag.KindRange, loTok.Span,
				"leading zeros are only allowed when the range is fixed-width")
		}
		return &ast.RangeExpr{Lo: lo, Hi: hi, Base: base, FixedWidth: fixedWidth, Sp: sp}
	}
	return &ast.RangeExpr{Lo: lo, Hi: hi, Base: base, Sp: sp}
}

func (p *Parser) expectRangeEndpoint() token.Token {
	if p.at(token.SQString) || p.at(token.Number) {
		return p.advance()
	}
	p.sink.Error(diag.CodeUnexpectedToken, diag.KindSyntax, p.cur().Span,
		"expected a quoted or numeric range endpoint")
	return token.Token{Kind: token.Number, Text: "0", Span: p.cur().Span}
}

// ---- character classes ----------------------------------------------------

// unicodePrefixes are the recognized `gc:`/`sc:`/`scx:`/`blk:` qualifiers.
var unicodePrefixes = map[string]bool{"gc": true, "sc": true, "scx": true, "blk": true}

// posixNames are the POSIX class names Pomsky exposes inside `[...]`.
var posixNames = map[string]bool{
	"ascii_alnum": true, "ascii_alpha": true, "ascii_blank": true, "ascii_cntrl": true,
	"ascii_digit": true, "ascii_graph": true, "ascii_lower": true, "ascii_print": true,
	"ascii_punct": true, "ascii_space": true, "ascii_upper": true, "ascii_xdigit": true,
}

func (p *Parser) parseCharSet(negated bool, startSp span.Span) ast.Expr {
	p.expect(token.LBracket, "to open a character set")
	var groups []ast.CharSetGroup
	groups = append(groups, p.parseClassItem())
	for p.eat(token.Amp) {
		groups = append(groups, p.parseClassItem())
	}
	end := p.expect(token.RBracket, "to close a character set")
	return &ast.CharSet{Negated: negated, Groups: groups, Sp: span.Join(startSp, end.Span)}
}

func (p *Parser) atClassMemberStart() bool {
	return !p.at(token.RBracket) && !p.at(token.Amp) && !p.at(token.EOF)
}

func (p *Parser) parseClassItem() ast.CharSetGroup {
	var items []ast.CharSetItem
	start := p.cur().Span.Start
	for p.atClassMemberStart() {
		before := p.pos
		items = append(items, p.parseClassMember())
		if p.pos == before {
			p.advance()
		}
	}
	if len(items) == 0 {
		p.sink.Error(diag.CodeUnexpectedToken, diag.KindSyntax, span.Empty(start),
			"expected at least one character set member")
	}
	return ast.CharSetGroup{Items: items}
}

func (p *Parser) parseClassMember() ast.CharSetItem {
	tok := p.cur()
	switch tok.Kind {
	case token.CodePoint:
		p.advance()
		cp := []rune(tok.Text)[0]
		if p.at(token.Minus) {
			return p.maybeCharRange(cp, tok.Span)
		}
		return &ast.CharCodePoint{Value: cp, Sp: tok.Span}
	case token.SQString, token.DQString:
		p.advance()
		runes := []rune(tok.Text)
		if len(runes) == 1 && p.at(token.Minus) {
			return p.maybeCharRange(runes[0], tok.Span)
		}
		return &ast.CharLiteral{Text: tok.Text, Sp: tok.Span}
	case token.Ident:
		p.advance()
		name := tok.Text
		if unicodePrefixes[name] && p.at(token.Colon) {
			p.advance()
			propTok := p.expect(token.Ident, "after a Unicode property prefix")
			return &ast.UnicodeProperty{Prefix: name, Name: propTok.Text, Sp: span.Join(tok.Span, propTok.Span)}
		}
		if posixNames[name] {
			return &ast.PosixClass{Name: name, Sp: tok.Span}
		}
		switch name {
		case "word", "digit", "space", "horiz_space", "vert_space":
			return &ast.CharShorthand{Name: name, Sp: tok.Span}
		}
		if len(name) > 1 {
			return &ast.UnicodeProperty{Name: name, Sp: tok.Span}
		}
		return &ast.CharShorthand{Name: name, Sp: tok.Span}
	default:
		p.errorUnexpected("inside a character set")
		return &ast.CharLiteral{Text: "", Sp: tok.Span}
	}
}

func (p *Parser) maybeCharRange(lo rune, loSp span.Span) ast.CharSetItem {
	save := p.pos
	p.advance() // '-'
	hiTok := p.cur()
	var hi rune
	switch hiTok.Kind {
	case token.CodePoint:
		hi = []rune(hiTok.Text)[0]
	case token.SQString, token.DQString:
		r := []rune(hiTok.Text)
		if len(r) != 1 {
			p.pos = save
			return &ast.CharCodePoint{Value: lo, Sp: loSp}
		}
		hi = r[0]
	default:
		// Not a range; the '-' wasn't meant for us. Back off and let the
		// caller treat lo as a standalone code point.
		p.pos = save
		return &ast.CharCodePoint{Value: lo, Sp: loSp}
	}
	p.advance()
	sp := span.Join(loSp, hiTok.Span)
	if lo >= hi {
		p.sink.Error(diag.CodeBadCharRange, diag.KindSyntax, sp,
			"character range must have lo < hi")
	}
	return &ast.CharRange{Lo: lo, Hi: hi, Sp: sp}
}
