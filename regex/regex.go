// Package regex implements ECMA-262 regular expressions: a hand-written
// lexer, a recursive-descent parser and an explicit-stack backtracking
// engine, independent of the regexp package the platform ships.
package regex

import (
	"fmt"
	"strings"
)

// Flag is a bitmask of pattern options. The zero value corresponds to
// /pattern/ with no flags.
type Flag uint8

const (
	// Iterative matching over the whole input ("g" flag).
	FlagGlobal Flag = 1 << iota

	// Case-insensitive comparison ("i" flag).
	FlagIgnoreCase

	// "^" and "$" match at line boundaries ("m" flag).
	FlagMultiline

	// "." matches line terminators ("s" flag).
	FlagDotAll

	// Full case-fold orbits for "i" comparisons ("u" flag).
	FlagUnicode

	// Match must start exactly at the attempted offset ("y" flag).
	FlagSticky
)

var flagLetters = []struct {
	letter rune
	flag   Flag
}{
	{'g', FlagGlobal},
	{'i', FlagIgnoreCase},
	{'m', FlagMultiline},
	{'s', FlagDotAll},
	{'u', FlagUnicode},
	{'y', FlagSticky},
}

// ParseFlags converts the flag letters of /pattern/flags notation into
// a Flag set. Unknown and duplicate letters are errors.
func ParseFlags(s string) (Flag, error) {
	var flags Flag
	for i, c := range s {
		var m Flag
		for _, fl := range flagLetters {
			if fl.letter == c {
				m = fl.flag
				break
			}
		}
		if m == 0 {
			return 0, newParseError(ErrInvalidFlag, i, string(c))
		}
		if flags&m != 0 {
			return 0, newParseError(ErrInvalidFlag, i, "duplicate flag "+string(c))
		}
		flags |= m
	}
	return flags, nil
}

func (f Flag) String() string {
	var b strings.Builder
	for _, fl := range flagLetters {
		if f&fl.flag != 0 {
			b.WriteRune(fl.letter)
		}
	}
	return b.String()
}

// Pattern is an immutable compiled regular expression. It holds no
// mutable state, so a single Pattern may be used from any number of
// goroutines concurrently.
type Pattern struct {
	source string
	flags  Flag
	root   *Root
	pre    *prefilter
}

// Compile builds a Pattern from pattern source (without delimiters) and
// a flag set. Errors are *ParseError values.
func Compile(source string, flags Flag) (*Pattern, error) {
	tokens, err := tokenize(source)
	if err != nil {
		return nil, err
	}
	root, err := parse(tokens, flags)
	if err != nil {
		return nil, err
	}
	return &Pattern{
		source: source,
		flags:  flags,
		root:   root,
		pre:    buildPrefilter(root, flags),
	}, nil
}

// MustCompile is Compile for patterns known valid at build time; it
// panics on error.
func MustCompile(source string, flags Flag) *Pattern {
	p, err := Compile(source, flags)
	if err != nil {
		panic(fmt.Sprintf("regex: Compile(%q): %v", source, err))
	}
	return p
}

// Source returns the pattern text the Pattern was compiled from.
func (p *Pattern) Source() string { return p.source }

// Flags returns the flag set the Pattern was compiled with.
func (p *Pattern) Flags() Flag { return p.flags }

func (p *Pattern) String() string {
	return "/" + p.source + "/" + p.flags.String()
}

// Capture is one capturing group's result. Start and End are byte
// offsets into the input; Start == -1 means the group never entered a
// matched branch, which is distinct from a participating group that
// captured the empty string.
type Capture struct {
	Start int
	End   int
	Value string
}

// Defined reports whether the group participated in the match.
func (c Capture) Defined() bool { return c.Start >= 0 }

// MatchResult is the outcome of one matching pass. A failed match has
// Matched false, Index -1 and every other field empty. Captures is
// ordered by capturing-group index: group k is Captures[k-1].
type MatchResult struct {
	Matched  bool
	Index    int
	Match    string
	Captures []Capture
	Groups   map[string]Capture
	Input    string
}

var noMatch = MatchResult{Matched: false, Index: -1}

// Test reports whether the pattern matches anywhere in input.
func (p *Pattern) Test(input string) bool {
	return p.Exec(input).Matched
}

// Exec runs a single match against input from offset 0, scanning
// forward unless the pattern is sticky.
func (p *Pattern) Exec(input string) MatchResult {
	runes, offs := decodeRunes(input)
	res, _, _, ok := p.execFrom(input, runes, offs, 0)
	if !ok {
		return noMatch
	}
	return res
}

// MatchAll runs the single-match algorithm repeatedly, advancing the
// start offset past each match, and one further character past a
// zero-length match so iteration always makes progress. The returned
// sequence is complete; each call re-scans from offset 0.
func (p *Pattern) MatchAll(input string) []MatchResult {
	runes, offs := decodeRunes(input)
	var out []MatchResult
	s := 0
	for s <= len(runes) {
		res, ms, me, ok := p.execFrom(input, runes, offs, s)
		if !ok {
			break
		}
		out = append(out, res)
		if me == ms {
			s = me + 1
		} else {
			s = me
		}
	}
	return out
}

// execFrom attempts a match at rune offset start, advancing the
// attempt position until one succeeds. Sticky patterns get exactly one
// attempt. Returns the result plus the match's rune bounds.
func (p *Pattern) execFrom(input string, runes []rune, offs []int, start int) (MatchResult, int, int, bool) {
	ctx := newMatchContext(runes, p.flags, p.root.Captures)
	var haystack []byte
	if p.pre != nil {
		haystack = []byte(input)
	}
	for s := start; s <= len(runes); s++ {
		if p.pre != nil {
			ns, viable := p.pre.skipAhead(haystack, offs, s)
			if !viable {
				break
			}
			s = ns
		}
		end, caps, ok := ctx.run(p.root, s, nil)
		if ok {
			return p.result(input, offs, s, end, caps), s, end, true
		}
		if p.flags&FlagSticky != 0 {
			break
		}
	}
	return noMatch, 0, 0, false
}

func (p *Pattern) result(input string, offs []int, start, end int, caps []capSpan) MatchResult {
	res := MatchResult{
		Matched: true,
		Index:   offs[start],
		Match:   input[offs[start]:offs[end]],
		Input:   input,
	}
	if p.root.Captures > 0 {
		res.Captures = make([]Capture, p.root.Captures)
		for k := 1; k <= p.root.Captures; k++ {
			sp := caps[k]
			if sp.start < 0 {
				res.Captures[k-1] = Capture{Start: -1, End: -1}
				continue
			}
			res.Captures[k-1] = Capture{
				Start: offs[sp.start],
				End:   offs[sp.end],
				Value: input[offs[sp.start]:offs[sp.end]],
			}
		}
	}
	if len(p.root.Names) > 0 {
		res.Groups = make(map[string]Capture, len(p.root.Names))
		for name, idx := range p.root.Names {
			res.Groups[name] = res.Captures[idx-1]
		}
	}
	return res
}

// decodeRunes splits input into runes plus a table mapping each rune
// index (and the one-past-the-end index) to its byte offset.
func decodeRunes(s string) ([]rune, []int) {
	runes := make([]rune, 0, len(s))
	offs := make([]int, 0, len(s)+1)
	for i, r := range s {
		runes = append(runes, r)
		offs = append(offs, i)
	}
	offs = append(offs, len(s))
	return runes, offs
}
