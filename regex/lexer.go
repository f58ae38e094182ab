package regex

import "strconv"

// lexer performs a single left-to-right scan over the pattern source.
// Group openers, escapes, brace quantifiers and whole character classes
// are handled by sub-scanners that may consume a bounded run of input
// before emitting their token(s).
type lexer struct {
	src    []rune
	pos    int
	tokens []Token
}

func tokenize(source string) ([]Token, error) {
	l := &lexer{src: []rune(source)}
	for l.pos < len(l.src) {
		start := l.pos
		c := l.src[l.pos]
		l.pos++
		switch c {
		case '.':
			l.emit(Token{Kind: TokenDot, Pos: start})
		case '^':
			l.emit(Token{Kind: TokenCaret, Pos: start})
		case '$':
			l.emit(Token{Kind: TokenDollar, Pos: start})
		case '|':
			l.emit(Token{Kind: TokenPipe, Pos: start})
		case '*':
			l.emit(Token{Kind: TokenStar, Pos: start})
		case '+':
			l.emit(Token{Kind: TokenPlus, Pos: start})
		case '?':
			l.emit(Token{Kind: TokenQuestion, Pos: start})
		case ')':
			l.emit(Token{Kind: TokenRParen, Pos: start})
		case '(':
			if err := l.scanGroupOpen(start); err != nil {
				return nil, err
			}
		case '[':
			if err := l.scanClass(start); err != nil {
				return nil, err
			}
		case ']':
			l.emit(Token{Kind: TokenRBracket, Pos: start})
		case '{':
			if err := l.scanBraceQuantifier(start); err != nil {
				return nil, err
			}
		case '}':
			l.emit(Token{Kind: TokenRBrace, Pos: start})
		case ',':
			l.emit(Token{Kind: TokenComma, Pos: start})
		case '-':
			l.emit(Token{Kind: TokenHyphen, Pos: start})
		case '\\':
			tok, err := l.scanEscape(start, false)
			if err != nil {
				return nil, err
			}
			l.emit(tok)
		default:
			l.emit(Token{Kind: TokenLiteral, Pos: start, Char: c, Lexeme: string(c)})
		}
	}
	l.emit(Token{Kind: TokenEOF, Pos: l.pos})
	return l.tokens, nil
}

func (l *lexer) emit(t Token) {
	if t.Lexeme == "" {
		t.Lexeme = string(l.src[t.Pos:l.pos])
	}
	l.tokens = append(l.tokens, t)
}

func (l *lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// scanGroupOpen consumes enough lookahead after "(" to classify the
// group kind, then emits a single TokenLParen carrying it.
func (l *lexer) scanGroupOpen(start int) error {
	if l.peek() != '?' {
		l.emit(Token{Kind: TokenLParen, Pos: start, Group: GroupCapture})
		return nil
	}
	l.pos++ // '?'
	switch l.peek() {
	case ':':
		l.pos++
		l.emit(Token{Kind: TokenLParen, Pos: start, Group: GroupNonCapture})
	case '=':
		l.pos++
		l.emit(Token{Kind: TokenLParen, Pos: start, Group: GroupLookahead})
	case '!':
		l.pos++
		l.emit(Token{Kind: TokenLParen, Pos: start, Group: GroupLookaheadNeg})
	case '<':
		l.pos++
		switch l.peek() {
		case '=':
			l.pos++
			l.emit(Token{Kind: TokenLParen, Pos: start, Group: GroupLookbehind})
		case '!':
			l.pos++
			l.emit(Token{Kind: TokenLParen, Pos: start, Group: GroupLookbehindNeg})
		case 0:
			return newParseError(ErrIncompleteLookbehindConstruct, start, "")
		default:
			name, err := l.scanGroupName(start)
			if err != nil {
				return err
			}
			l.emit(Token{Kind: TokenLParen, Pos: start, Group: GroupCapture, Name: name})
		}
	case 0:
		return newParseError(ErrInvalidGroupConstruct, start, "")
	default:
		return newParseError(ErrInvalidGroupConstruct, start, "(?"+string(l.peek()))
	}
	return nil
}

// scanGroupName scans the identifier of a named group, positioned just
// after "(?<".
func (l *lexer) scanGroupName(start int) (string, error) {
	if !isIdentStart(l.peek()) {
		return "", newParseError(ErrInvalidLookbehindConstruct, start, "(?<"+string(l.peek()))
	}
	nameStart := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	if l.peek() != '>' {
		return "", newParseError(ErrIncompleteLookbehindConstruct, start, "unterminated group name")
	}
	name := string(l.src[nameStart:l.pos])
	l.pos++ // '>'
	return name, nil
}

// scanClass consumes an entire bracket expression, emitting a
// TokenLBracket carrying the negation flag, the member tokens, and the
// closing TokenRBracket. "[]" is a valid empty class; a literal "]"
// must be escaped.
func (l *lexer) scanClass(start int) error {
	negated := false
	if l.peek() == '^' {
		negated = true
		l.pos++
	}
	l.emit(Token{Kind: TokenLBracket, Pos: start, Negated: negated})

	for {
		if l.pos >= len(l.src) {
			return newParseError(ErrUnclosedCharacterClass, start, "")
		}
		mstart := l.pos
		c := l.src[l.pos]
		l.pos++
		switch c {
		case ']':
			l.emit(Token{Kind: TokenRBracket, Pos: mstart})
			return nil
		case '-':
			l.emit(Token{Kind: TokenHyphen, Pos: mstart})
		case '\\':
			tok, err := l.scanEscape(mstart, true)
			if err != nil {
				return err
			}
			l.emit(tok)
		default:
			l.emit(Token{Kind: TokenLiteral, Pos: mstart, Char: c, Lexeme: string(c)})
		}
	}
}

// scanBraceQuantifier validates "{n}", "{n,}" or "{n,m}" and emits one
// TokenLBrace carrying the bounds; Max is -1 when unbounded.
func (l *lexer) scanBraceQuantifier(start int) error {
	min, ok := l.scanDigits()
	if !ok {
		return newParseError(ErrUnexpectedToken, start, "expected digits after '{'")
	}
	max := min
	if l.peek() == ',' {
		l.pos++
		if l.peek() == '}' {
			max = -1
		} else {
			max, ok = l.scanDigits()
			if !ok {
				return newParseError(ErrUnexpectedToken, l.pos, "expected digits after ',' in quantifier")
			}
		}
	}
	if l.peek() != '}' {
		return newParseError(ErrMissingToken, l.pos, "expected '}' to close quantifier")
	}
	l.pos++
	if max >= 0 && min > max {
		return newParseError(ErrUnexpectedToken, start, "quantifier minimum greater than maximum")
	}
	l.emit(Token{Kind: TokenLBrace, Pos: start, Min: min, Max: max})
	return nil
}

func (l *lexer) scanDigits() (int, bool) {
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.pos++
	}
	if l.pos == start {
		return 0, false
	}
	n, err := strconv.Atoi(string(l.src[start:l.pos]))
	if err != nil {
		return 0, false
	}
	return n, true
}

// scanEscape resolves the sequence following a backslash. Simple and
// numeric character escapes become TokenLiteral; class shorthands,
// assertions and backreferences become TokenBackslash for the parser to
// interpret. inClass alters the meaning of \b and digit escapes.
func (l *lexer) scanEscape(start int, inClass bool) (Token, error) {
	if l.pos >= len(l.src) {
		return Token{}, newParseError(ErrIncompleteEscapeSequence, start, "")
	}
	c := l.src[l.pos]
	l.pos++
	switch c {
	case 'd', 'D', 'w', 'W', 's', 'S':
		return Token{Kind: TokenBackslash, Pos: start, Escape: c}, nil
	case 'b':
		if inClass {
			return Token{Kind: TokenLiteral, Pos: start, Char: '\b'}, nil
		}
		return Token{Kind: TokenBackslash, Pos: start, Escape: 'b'}, nil
	case 'B':
		if inClass {
			return Token{Kind: TokenLiteral, Pos: start, Char: 'B'}, nil
		}
		return Token{Kind: TokenBackslash, Pos: start, Escape: 'B'}, nil
	case 'k':
		if inClass {
			return Token{Kind: TokenLiteral, Pos: start, Char: 'k'}, nil
		}
		name, err := l.scanBackrefName(start)
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokenBackslash, Pos: start, Escape: 'k', Name: name}, nil
	case 'n':
		return Token{Kind: TokenLiteral, Pos: start, Char: '\n'}, nil
	case 'r':
		return Token{Kind: TokenLiteral, Pos: start, Char: '\r'}, nil
	case 't':
		return Token{Kind: TokenLiteral, Pos: start, Char: '\t'}, nil
	case 'f':
		return Token{Kind: TokenLiteral, Pos: start, Char: '\f'}, nil
	case 'v':
		return Token{Kind: TokenLiteral, Pos: start, Char: '\v'}, nil
	case '0':
		return Token{Kind: TokenLiteral, Pos: start, Char: 0}, nil
	case 'x':
		r, err := l.scanHex(start, 2)
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokenLiteral, Pos: start, Char: r}, nil
	case 'u':
		r, err := l.scanHex(start, 4)
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokenLiteral, Pos: start, Char: r}, nil
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if inClass {
			return Token{Kind: TokenLiteral, Pos: start, Char: c}, nil
		}
		n := int(c - '0')
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			n = n*10 + int(l.src[l.pos]-'0')
			l.pos++
		}
		return Token{Kind: TokenBackslash, Pos: start, Escape: c, Index: n}, nil
	default:
		// identity escape
		return Token{Kind: TokenLiteral, Pos: start, Char: c}, nil
	}
}

func (l *lexer) scanBackrefName(start int) (string, error) {
	if l.peek() != '<' {
		return "", newParseError(ErrIncompleteEscapeSequence, start, `expected '<' after \k`)
	}
	l.pos++
	if !isIdentStart(l.peek()) {
		return "", newParseError(ErrIncompleteEscapeSequence, start, `malformed \k<name>`)
	}
	nameStart := l.pos
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	if l.peek() != '>' {
		return "", newParseError(ErrIncompleteEscapeSequence, start, `unterminated \k<name>`)
	}
	name := string(l.src[nameStart:l.pos])
	l.pos++
	return name, nil
}

func (l *lexer) scanHex(start, n int) (rune, error) {
	if l.pos+n > len(l.src) {
		return 0, newParseError(ErrIncompleteEscapeSequence, start, "")
	}
	var r rune
	for i := 0; i < n; i++ {
		d := hexDigit(l.src[l.pos])
		if d < 0 {
			return 0, newParseError(ErrIncompleteEscapeSequence, start, "invalid hex digit")
		}
		r = r<<4 | rune(d)
		l.pos++
	}
	return r, nil
}

func hexDigit(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

func isIdentStart(c rune) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
