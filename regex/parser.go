package regex

import "unicode/utf8"

// parser is a recursive-descent builder over the token stream, with
// four precedence tiers: alternation, sequence, quantifier suffix,
// atom.
type parser struct {
	tokens   []Token
	pos      int
	flags    Flag
	captures int
	names    map[string]int
}

func parse(tokens []Token, flags Flag) (*Root, error) {
	p := &parser{tokens: tokens, flags: flags, names: make(map[string]int)}
	body, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != TokenEOF {
		return nil, newParseError(ErrUnexpectedToken, tok.Pos, tok.Lexeme)
	}
	return &Root{Body: body, Captures: p.captures, Names: p.names}, nil
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

// parseAlternation parses one or more sequences separated by "|". The
// branch list keeps source order; the matcher depends on it.
func (p *parser) parseAlternation() (Node, error) {
	first, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != TokenPipe {
		return first, nil
	}
	branches := []Node{first}
	for p.peek().Kind == TokenPipe {
		p.next()
		branch, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		branches = append(branches, branch)
	}
	return &Alternation{Branches: branches}, nil
}

func (p *parser) parseSequence() (Node, error) {
	var nodes []Node
	for {
		switch p.peek().Kind {
		case TokenPipe, TokenRParen, TokenEOF:
			if len(nodes) == 1 {
				return nodes[0], nil
			}
			return &Concat{Nodes: nodes}, nil
		}
		node, err := p.parseQuantified()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
}

// parseQuantified parses an atom and wraps it when a quantifier suffix
// follows. A trailing "?" after the quantifier marks it lazy.
func (p *parser) parseQuantified() (Node, error) {
	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	var min, max int
	tok := p.peek()
	switch tok.Kind {
	case TokenStar:
		min, max = 0, -1
	case TokenPlus:
		min, max = 1, -1
	case TokenQuestion:
		min, max = 0, 1
	case TokenLBrace:
		min, max = tok.Min, tok.Max
	default:
		return atom, nil
	}
	p.next()
	greedy := true
	if p.peek().Kind == TokenQuestion {
		p.next()
		greedy = false
	}
	switch p.peek().Kind {
	case TokenStar, TokenPlus, TokenQuestion, TokenLBrace:
		return nil, newParseError(ErrUnexpectedToken, p.peek().Pos, "nested quantifier")
	}
	lo, hi := captureRange(atom)
	return &Quantifier{Min: min, Max: max, Greedy: greedy, Body: atom, CapLo: lo, CapHi: hi}, nil
}

func (p *parser) parseAtom() (Node, error) {
	tok := p.next()
	switch tok.Kind {
	case TokenLiteral:
		return &Literal{Char: tok.Char}, nil
	case TokenComma:
		return &Literal{Char: ','}, nil
	case TokenRBrace:
		return &Literal{Char: '}'}, nil
	case TokenHyphen:
		return &Literal{Char: '-'}, nil
	case TokenRBracket:
		return &Literal{Char: ']'}, nil
	case TokenDot:
		if p.flags&FlagDotAll != 0 {
			return &CharClass{Negated: true}, nil
		}
		return &CharClass{Negated: true, Members: lineTerminators}, nil
	case TokenCaret:
		return &Assertion{AssertKind: AssertLineStart}, nil
	case TokenDollar:
		return &Assertion{AssertKind: AssertLineEnd}, nil
	case TokenLParen:
		return p.parseGroup(tok)
	case TokenLBracket:
		return p.parseClass(tok)
	case TokenBackslash:
		return p.parseEscapeAtom(tok)
	default:
		return nil, newParseError(ErrUnexpectedToken, tok.Pos, tok.Lexeme)
	}
}

func (p *parser) parseGroup(open Token) (Node, error) {
	g := &Group{GroupKind: open.Group, Name: open.Name}
	if open.Group == GroupCapture {
		if open.Name != "" {
			if _, dup := p.names[open.Name]; dup {
				return nil, newParseError(ErrUnexpectedToken, open.Pos, "duplicate group name "+open.Name)
			}
		}
		p.captures++
		g.Index = p.captures
		if open.Name != "" {
			p.names[open.Name] = g.Index
		}
	}
	body, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != TokenRParen {
		return nil, newParseError(ErrIncompleteGroupConstruct, open.Pos, "missing ')'")
	}
	p.next()
	g.Body = body
	return g, nil
}

// parseEscapeAtom interprets a semantic escape outside a character
// class: class shorthands, word-boundary assertions and
// backreferences. A backreference must name a group whose "(" appeared
// earlier in the source.
func (p *parser) parseEscapeAtom(tok Token) (Node, error) {
	switch tok.Escape {
	case 'd', 'D', 'w', 'W', 's', 'S':
		ranges, negated := shorthandClass(tok.Escape)
		return &CharClass{Negated: negated, Members: ranges}, nil
	case 'b':
		return &Assertion{AssertKind: AssertWordBoundary}, nil
	case 'B':
		return &Assertion{AssertKind: AssertNotWordBoundary}, nil
	case 'k':
		idx, ok := p.names[tok.Name]
		if !ok {
			return nil, newParseError(ErrUnexpectedToken, tok.Pos, "backreference to undefined group "+tok.Name)
		}
		return &Backreference{Index: idx, Name: tok.Name}, nil
	default:
		if tok.Index > p.captures {
			return nil, newParseError(ErrUnexpectedToken, tok.Pos, "backreference to undefined group")
		}
		return &Backreference{Index: tok.Index}, nil
	}
}

// parseClass assembles the member list of a character class from the
// tokens the lexer already classified. A hyphen between two literals
// forms a range; a leading or trailing hyphen is literal.
func (p *parser) parseClass(open Token) (Node, error) {
	var members []ClassRange
	for {
		tok := p.next()
		switch tok.Kind {
		case TokenRBracket:
			return &CharClass{Negated: open.Negated, Members: members}, nil
		case TokenHyphen:
			members = append(members, ClassRange{Lo: '-', Hi: '-'})
		case TokenBackslash:
			ranges, negated := shorthandClass(tok.Escape)
			if negated {
				ranges = complementRanges(ranges)
			}
			members = append(members, ranges...)
		case TokenLiteral:
			if p.peek().Kind == TokenHyphen && p.tokens[p.pos+1].Kind != TokenRBracket {
				p.next() // hyphen
				hi := p.next()
				if hi.Kind != TokenLiteral {
					return nil, newParseError(ErrUnexpectedTokenInCharacterClass, hi.Pos, hi.Lexeme)
				}
				if tok.Char > hi.Char {
					return nil, newParseError(ErrUnexpectedTokenInCharacterClass, tok.Pos, "range out of order")
				}
				members = append(members, ClassRange{Lo: tok.Char, Hi: hi.Char})
				continue
			}
			members = append(members, ClassRange{Lo: tok.Char, Hi: tok.Char})
		default:
			return nil, newParseError(ErrUnexpectedTokenInCharacterClass, tok.Pos, tok.Lexeme)
		}
	}
}

var lineTerminators = []ClassRange{
	{Lo: '\n', Hi: '\n'},
	{Lo: '\r', Hi: '\r'},
	{Lo: '\u2028', Hi: '\u2029'},
}

var (
	digitRanges = []ClassRange{{Lo: '0', Hi: '9'}}
	wordRanges  = []ClassRange{
		{Lo: '0', Hi: '9'},
		{Lo: 'A', Hi: 'Z'},
		{Lo: '_', Hi: '_'},
		{Lo: 'a', Hi: 'z'},
	}
	spaceRanges = []ClassRange{
		{Lo: '\t', Hi: '\r'},
		{Lo: ' ', Hi: ' '},
		{Lo: '\u00a0', Hi: '\u00a0'},
		{Lo: '\u1680', Hi: '\u1680'},
		{Lo: '\u2000', Hi: '\u200a'},
		{Lo: '\u2028', Hi: '\u2029'},
		{Lo: '\u202f', Hi: '\u202f'},
		{Lo: '\u205f', Hi: '\u205f'},
		{Lo: '\u3000', Hi: '\u3000'},
		{Lo: '\ufeff', Hi: '\ufeff'},
	}
)

func shorthandClass(c rune) (ranges []ClassRange, negated bool) {
	switch c {
	case 'd':
		return digitRanges, false
	case 'D':
		return digitRanges, true
	case 'w':
		return wordRanges, false
	case 'W':
		return wordRanges, true
	case 's':
		return spaceRanges, false
	case 'S':
		return spaceRanges, true
	}
	return nil, false
}

// complementRanges inverts a sorted, non-overlapping range list over
// the full rune space.
func complementRanges(ranges []ClassRange) []ClassRange {
	var out []ClassRange
	next := rune(0)
	for _, r := range ranges {
		if r.Lo > next {
			out = append(out, ClassRange{Lo: next, Hi: r.Lo - 1})
		}
		next = r.Hi + 1
	}
	if next <= utf8.MaxRune {
		out = append(out, ClassRange{Lo: next, Hi: utf8.MaxRune})
	}
	return out
}
