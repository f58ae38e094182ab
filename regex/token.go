package regex

// TokenKind identifies the lexical class of a scanned token.
type TokenKind int

const (
	TokenLiteral TokenKind = iota
	TokenDot
	TokenCaret
	TokenDollar
	TokenLBracket
	TokenRBracket
	TokenLParen
	TokenRParen
	TokenPipe
	TokenStar
	TokenPlus
	TokenQuestion
	TokenLBrace
	TokenRBrace
	TokenComma
	TokenHyphen
	TokenBackslash
	TokenEOF
)

// GroupKind classifies a group opener, decided by the lexer before the
// token is emitted.
type GroupKind int

const (
	GroupCapture GroupKind = iota
	GroupNonCapture
	GroupLookahead
	GroupLookaheadNeg
	GroupLookbehind
	GroupLookbehindNeg
)

// Token is the unit produced by the lexer and consumed by the parser.
// Kind selects which of the payload fields are meaningful:
//
//	TokenLiteral:   Char holds the (escape-resolved) character
//	TokenLParen:    Group classifies the opener, Name set for (?<name>
//	TokenLBrace:    Min/Max hold the scanned bounds, Max -1 when open
//	TokenLBracket:  Negated reports a leading ^ inside the class
//	TokenBackslash: Escape holds the class-shorthand or assertion
//	                 letter; Index > 0 for a numeric backreference;
//	                 Name set for \k<name>
type Token struct {
	Kind    TokenKind
	Lexeme  string
	Pos     int
	Char    rune
	Group   GroupKind
	Name    string
	Min     int
	Max     int
	Negated bool
	Escape  rune
	Index   int
}
