package regex

// NodeKind identifies the variant of an AST node.
type NodeKind int

const (
	NodeRoot NodeKind = iota
	NodeAlternation
	NodeConcat
	NodeGroup
	NodeQuantifier
	NodeCharClass
	NodeLiteral
	NodeBackreference
	NodeAssertion
)

// Node is a parsed pattern element. Nodes are built once per compiled
// pattern and are never mutated afterwards, so a tree is safe to share
// between concurrent matches.
type Node interface {
	Kind() NodeKind
}

// Root wraps the whole pattern and records the capture-group layout the
// engine needs to size its registers.
type Root struct {
	Body     Node
	Captures int            // number of capturing groups
	Names    map[string]int // named group -> 1-based index
}

func (n *Root) Kind() NodeKind { return NodeRoot }

// Alternation tries its branches strictly in order; the first branch
// that lets the rest of the pattern succeed wins.
type Alternation struct {
	Branches []Node
}

func (n *Alternation) Kind() NodeKind { return NodeAlternation }

// Concat matches its children in sequence.
type Concat struct {
	Nodes []Node
}

func (n *Concat) Kind() NodeKind { return NodeConcat }

// Group is a parenthesized subpattern. Index is the 1-based capture
// index for GroupCapture and zero otherwise.
type Group struct {
	GroupKind GroupKind
	Index     int
	Name      string
	Body      Node
}

func (n *Group) Kind() NodeKind { return NodeGroup }

// Quantifier repeats Body between Min and Max times; Max is -1 when
// unbounded. CapLo/CapHi bound the capture indexes inside Body (both
// zero when Body captures nothing) so each repetition can reset them.
type Quantifier struct {
	Min    int
	Max    int
	Greedy bool
	Body   Node
	CapLo  int
	CapHi  int
}

func (n *Quantifier) Kind() NodeKind { return NodeQuantifier }

// ClassRange is one literal-or-range member of a character class; a
// single literal has Lo == Hi.
type ClassRange struct {
	Lo, Hi rune
}

// CharClass matches one character inside (or, negated, outside) its
// member set. The dot atom compiles to a negated class over the line
// terminators so the matcher needs no separate case for it.
type CharClass struct {
	Negated bool
	Members []ClassRange
}

func (n *CharClass) Kind() NodeKind { return NodeCharClass }

// Literal matches exactly one character.
type Literal struct {
	Char rune
}

func (n *Literal) Kind() NodeKind { return NodeLiteral }

// Backreference matches the text previously captured by group Index.
type Backreference struct {
	Index int
	Name  string
}

func (n *Backreference) Kind() NodeKind { return NodeBackreference }

// AssertionKind selects a zero-width position test.
type AssertionKind int

const (
	AssertLineStart AssertionKind = iota // ^
	AssertLineEnd                        // $
	AssertWordBoundary                   // \b
	AssertNotWordBoundary                // \B
)

type Assertion struct {
	AssertKind AssertionKind
}

func (n *Assertion) Kind() NodeKind { return NodeAssertion }

// captureRange reports the smallest and largest capture index inside n,
// or (0, 0) when n contains no capturing group.
func captureRange(n Node) (lo, hi int) {
	switch t := n.(type) {
	case *Group:
		if t.GroupKind == GroupCapture {
			lo, hi = t.Index, t.Index
		}
		blo, bhi := captureRange(t.Body)
		return mergeRange(lo, hi, blo, bhi)
	case *Alternation:
		for _, b := range t.Branches {
			blo, bhi := captureRange(b)
			lo, hi = mergeRange(lo, hi, blo, bhi)
		}
		return lo, hi
	case *Concat:
		for _, c := range t.Nodes {
			clo, chi := captureRange(c)
			lo, hi = mergeRange(lo, hi, clo, chi)
		}
		return lo, hi
	case *Quantifier:
		return captureRange(t.Body)
	default:
		return 0, 0
	}
}

func mergeRange(lo, hi, olo, ohi int) (int, int) {
	if olo == 0 {
		return lo, hi
	}
	if lo == 0 || olo < lo {
		lo = olo
	}
	if ohi > hi {
		hi = ohi
	}
	return lo, hi
}
