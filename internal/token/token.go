// Package token defines the lexical token kinds produced by internal/lexer.
package token

import "github.com/pomsky-lang/pomsky-go/internal/span"

// Kind classifies a token.
type Kind int

const (
	Invalid Kind = iota
	EOF

	Ident     // identifier, not a keyword
	Number    // integer literal, no leading zeros
	CodePoint // U+HHHHHH or UHHHHHH
	SQString  // 'single quoted'
	DQString  // "double quoted"

	// Keywords
	KwLet
	KwEnable
	KwDisable
	KwIf
	KwElse
	KwGreedy
	KwLazy
	KwRange
	KwBase
	KwRecursion
	KwAtomic
	KwRegex
	KwTest
	KwCall

	// Punctuation
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	Pipe
	Comma
	Semicolon
	Eq
	Bang
	Question
	Star
	Plus
	Minus
	Dot
	Colon
	ColonColon
	ColonColonPlus
	ColonColonMinus
	Amp
	Lt
	Gt
	LtLt
	GtGt
	BangLtLt
	BangGtGt
	Percent
	BangPercent
	LtPercent
	PercentGt
	Caret
	Dollar
)

var names = map[Kind]string{
	Invalid: "invalid", EOF: "eof",
	Ident: "identifier", Number: "number", CodePoint: "code point",
	SQString: "string", DQString: "string",
	KwLet: "let", KwEnable: "enable", KwDisable: "disable", KwIf: "if", KwElse: "else",
	KwGreedy: "greedy", KwLazy: "lazy", KwRange: "range", KwBase: "base",
	KwRecursion: "recursion", KwAtomic: "atomic", KwRegex: "regex", KwTest: "test", KwCall: "call",
	LParen: "(", RParen: ")", LBracket: "[", RBracket: "]", LBrace: "{", RBrace: "}",
	Pipe: "|", Comma: ",", Semicolon: ";", Eq: "=", Bang: "!", Question: "?",
	Star: "*", Plus: "+", Minus: "-", Dot: ".", Colon: ":", ColonColon: "::",
	ColonColonPlus: "::+", ColonColonMinus: "::-", Amp: "&",
	Lt: "<", Gt: ">", LtLt: "<<", GtGt: ">>", BangLtLt: "!<<", BangGtGt: "!>>",
	Percent: "%", BangPercent: "!%", LtPercent: "<%", PercentGt: "%>",
	Caret: "^", Dollar: "$",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "unknown"
}

// Keywords maps reserved words to their keyword kind. Identifiers not in
// this table lex as Ident.
var Keywords = map[string]Kind{
	"let": KwLet, "enable": KwEnable, "disable": KwDisable,
	"if": KwIf, "else": KwElse, "greedy": KwGreedy, "lazy": KwLazy,
	"range": KwRange, "base": KwBase, "recursion": KwRecursion,
	"atomic": KwAtomic, "regex": KwRegex, "test": KwTest, "call": KwCall,
}

// Token is one lexeme with its source span. Text holds the decoded value
// for strings and code points (escapes already processed); Raw holds the
// literal source slice for diagnostics and re-display.
type Token struct {
	Kind Kind
	Span span.Span
	Text string
	Raw  string
}
