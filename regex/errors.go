package regex

import "fmt"

// ErrorKind classifies a pattern compilation failure.
type ErrorKind int

const (
	ErrIncompleteEscapeSequence ErrorKind = iota
	ErrUnclosedCharacterClass
	ErrIncompleteGroupConstruct
	ErrIncompleteLookbehindConstruct
	ErrInvalidGroupConstruct
	ErrInvalidLookbehindConstruct
	ErrMissingToken
	ErrUnexpectedToken
	ErrUnexpectedTokenInCharacterClass
	ErrInvalidFlag
)

func (k ErrorKind) String() string {
	switch k {
	case ErrIncompleteEscapeSequence:
		return "incomplete escape sequence"
	case ErrUnclosedCharacterClass:
		return "unclosed character class"
	case ErrIncompleteGroupConstruct:
		return "incomplete group construct"
	case ErrIncompleteLookbehindConstruct:
		return "incomplete lookbehind construct"
	case ErrInvalidGroupConstruct:
		return "invalid group construct"
	case ErrInvalidLookbehindConstruct:
		return "invalid lookbehind construct"
	case ErrMissingToken:
		return "missing token"
	case ErrUnexpectedToken:
		return "unexpected token"
	case ErrUnexpectedTokenInCharacterClass:
		return "unexpected token in character class"
	case ErrInvalidFlag:
		return "invalid flag"
	}
	return "unknown error"
}

// ParseError is returned by Compile for malformed pattern syntax.
// Pos is a rune offset into the pattern source.
type ParseError struct {
	Kind   ErrorKind
	Pos    int
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("regex: %s at %d", e.Kind, e.Pos)
	}
	return fmt.Sprintf("regex: %s at %d: %s", e.Kind, e.Pos, e.Detail)
}

func newParseError(kind ErrorKind, pos int, detail string) *ParseError {
	return &ParseError{Kind: kind, Pos: pos, Detail: detail}
}
