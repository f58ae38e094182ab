package regex

import (
	"fmt"
	"unicode"
)

// The engine is a depth-first backtracking walk of the AST driven by
// two explicit stacks instead of host-language recursion: a work stack
// of pending items (nodes to match plus control items), and a stack of
// save points to resume from when the current path fails. Stack depth
// is therefore bounded by allocation, not by the goroutine stack, and
// capture restore on backtracking is an explicit copy from the popped
// save point.

type workOp int

const (
	opNode workOp = iota
	opCloseGroup
	opRepeat
)

// workItem is one pending step. op selects the meaningful fields, the
// way the compiled instructions of a bytecode engine overload theirs.
type workItem struct {
	op       workOp
	node     Node        // opNode
	group    *Group      // opCloseGroup
	start    int         // opCloseGroup: where the group began matching
	quant    *Quantifier // opRepeat
	count    int         // opRepeat: repetitions completed so far
	repStart int         // opRepeat: pos when the latest repetition began
}

// capSpan records one capturing group's match as rune offsets;
// start == -1 means the group has not participated.
type capSpan struct {
	start, end int
}

// backtrackPoint is a save point pushed immediately before committing
// to a choice that may need undoing. caps and cont are snapshots and
// are never mutated after the push.
type backtrackPoint struct {
	pos    int
	caps   []capSpan
	cont   []workItem
	resume Node // *Alternation or *Quantifier holding further choices
	choice int  // next branch index, or completed lazy repetitions
}

// matchContext is the mutable state of one matching pass. A fresh
// context is created per attempt, so compiled patterns stay shareable
// across goroutines.
type matchContext struct {
	runes   []rune
	flags   Flag
	ncaps   int
	pos     int
	caps    []capSpan
	work    []workItem
	stack   []backtrackPoint
	lookEnd int // >= 0 inside a lookbehind body: position the body must end at
}

func newMatchContext(runes []rune, flags Flag, ncaps int) *matchContext {
	return &matchContext{runes: runes, flags: flags, ncaps: ncaps, lookEnd: -1}
}

// run attempts a single anchored match of node at start. seed, when
// non-nil, provides the capture state visible on entry (used by
// lookaround bodies); it is copied, never aliased.
func (ctx *matchContext) run(node Node, start int, seed []capSpan) (end int, caps []capSpan, ok bool) {
	ctx.pos = start
	if seed != nil {
		ctx.caps = append(ctx.caps[:0], seed...)
	} else {
		ctx.caps = make([]capSpan, ctx.ncaps+1)
		for i := range ctx.caps {
			ctx.caps[i] = capSpan{start: -1, end: -1}
		}
	}
	ctx.work = ctx.work[:0]
	ctx.stack = ctx.stack[:0]
	ctx.pushNode(node)

	for {
		if len(ctx.work) == 0 {
			if ctx.lookEnd >= 0 && ctx.pos != ctx.lookEnd {
				if !ctx.backtrack() {
					return 0, nil, false
				}
				continue
			}
			return ctx.pos, ctx.caps, true
		}
		it := ctx.work[len(ctx.work)-1]
		ctx.work = ctx.work[:len(ctx.work)-1]
		ok := ctx.step(it)
		if ok && ctx.lookEnd >= 0 && ctx.pos > ctx.lookEnd {
			ok = false // overshot the lookbehind cursor, cannot recover
		}
		if !ok && !ctx.backtrack() {
			return 0, nil, false
		}
	}
}

func (ctx *matchContext) step(it workItem) bool {
	switch it.op {
	case opCloseGroup:
		ctx.caps[it.group.Index] = capSpan{start: it.start, end: ctx.pos}
		return true
	case opRepeat:
		return ctx.repeat(it.quant, it.count, it.repStart)
	}

	switch n := it.node.(type) {
	case *Root:
		ctx.pushNode(n.Body)
		return true
	case *Literal:
		if ctx.pos < len(ctx.runes) && ctx.sameRune(ctx.runes[ctx.pos], n.Char) {
			ctx.pos++
			return true
		}
		return false
	case *CharClass:
		if ctx.pos < len(ctx.runes) && ctx.classContains(n, ctx.runes[ctx.pos]) {
			ctx.pos++
			return true
		}
		return false
	case *Assertion:
		return ctx.assert(n.AssertKind)
	case *Concat:
		for i := len(n.Nodes) - 1; i >= 0; i-- {
			ctx.pushNode(n.Nodes[i])
		}
		return true
	case *Alternation:
		if len(n.Branches) > 1 {
			ctx.stack = append(ctx.stack, backtrackPoint{
				pos:    ctx.pos,
				caps:   ctx.snapshotCaps(),
				cont:   ctx.snapshotWork(),
				resume: n,
				choice: 1,
			})
		}
		ctx.pushNode(n.Branches[0])
		return true
	case *Group:
		return ctx.enterGroup(n)
	case *Quantifier:
		return ctx.repeat(n, 0, -1)
	case *Backreference:
		return ctx.backreference(n)
	default:
		panic(fmt.Sprintf("regex: unsupported node type %T", it.node))
	}
}

func (ctx *matchContext) enterGroup(g *Group) bool {
	switch g.GroupKind {
	case GroupCapture:
		ctx.work = append(ctx.work, workItem{op: opCloseGroup, group: g, start: ctx.pos})
		ctx.pushNode(g.Body)
		return true
	case GroupNonCapture:
		ctx.pushNode(g.Body)
		return true
	case GroupLookahead, GroupLookaheadNeg:
		sub := newMatchContext(ctx.runes, ctx.flags, ctx.ncaps)
		_, subCaps, ok := sub.run(g.Body, ctx.pos, ctx.caps)
		if g.GroupKind == GroupLookaheadNeg {
			return !ok
		}
		if !ok {
			return false
		}
		ctx.caps = subCaps
		return true
	case GroupLookbehind, GroupLookbehindNeg:
		// The body must match some span of the text preceding the
		// cursor, ending exactly at it.
		for i := 0; i <= ctx.pos; i++ {
			sub := newMatchContext(ctx.runes, ctx.flags, ctx.ncaps)
			sub.lookEnd = ctx.pos
			_, subCaps, ok := sub.run(g.Body, i, ctx.caps)
			if ok {
				if g.GroupKind == GroupLookbehindNeg {
					return false
				}
				ctx.caps = subCaps
				return true
			}
		}
		return g.GroupKind == GroupLookbehindNeg
	default:
		panic(fmt.Sprintf("regex: unsupported group kind %d", g.GroupKind))
	}
}

// repeat decides what happens after count completed repetitions of q.
// Greedy quantifiers save an exit point and try another repetition;
// lazy ones save a retry point and exit. Once the minimum is met, a
// repetition that consumed no input never schedules another, which is
// what bounds the engine's work on patterns like (a*)*.
func (ctx *matchContext) repeat(q *Quantifier, count, repStart int) bool {
	bodyEmpty := count > 0 && ctx.pos == repStart
	if count < q.Min {
		// every mandatory repetition runs, empty or not, so the
		// alternatives inside each one stay reachable
		ctx.pushRepetition(q, count)
		return true
	}
	if q.Max >= 0 && count >= q.Max {
		return true
	}
	if bodyEmpty {
		// an empty repetition beyond the required minimum is rejected,
		// undoing its captures via the save point that scheduled it
		return count <= q.Min
	}
	if q.Greedy {
		ctx.stack = append(ctx.stack, backtrackPoint{
			pos:  ctx.pos,
			caps: ctx.snapshotCaps(),
			cont: ctx.snapshotWork(),
		})
		ctx.pushRepetition(q, count)
	} else {
		ctx.stack = append(ctx.stack, backtrackPoint{
			pos:    ctx.pos,
			caps:   ctx.snapshotCaps(),
			cont:   ctx.snapshotWork(),
			resume: q,
			choice: count,
		})
	}
	return true
}

// pushRepetition schedules one more run of the quantifier body. The
// captures inside the body are cleared first: every repetition starts
// with its groups unset, so /(?:(a)|(b))*/ on "ab" ends with group 1
// unset and group 2 holding "b".
func (ctx *matchContext) pushRepetition(q *Quantifier, count int) {
	if q.CapLo > 0 {
		for i := q.CapLo; i <= q.CapHi; i++ {
			ctx.caps[i] = capSpan{start: -1, end: -1}
		}
	}
	ctx.work = append(ctx.work, workItem{op: opRepeat, quant: q, count: count + 1, repStart: ctx.pos})
	ctx.pushNode(q.Body)
}

func (ctx *matchContext) backreference(b *Backreference) bool {
	sp := ctx.caps[b.Index]
	if sp.start < 0 {
		// a group that never matched backreferences the empty string
		return true
	}
	n := sp.end - sp.start
	if ctx.pos+n > len(ctx.runes) {
		return false
	}
	for i := 0; i < n; i++ {
		if !ctx.sameRune(ctx.runes[sp.start+i], ctx.runes[ctx.pos+i]) {
			return false
		}
	}
	ctx.pos += n
	return true
}

func (ctx *matchContext) assert(k AssertionKind) bool {
	switch k {
	case AssertLineStart:
		if ctx.pos == 0 {
			return true
		}
		return ctx.flags&FlagMultiline != 0 && isLineTerminator(ctx.runes[ctx.pos-1])
	case AssertLineEnd:
		if ctx.pos == len(ctx.runes) {
			return true
		}
		return ctx.flags&FlagMultiline != 0 && isLineTerminator(ctx.runes[ctx.pos])
	case AssertWordBoundary:
		return ctx.atWordBoundary()
	case AssertNotWordBoundary:
		return !ctx.atWordBoundary()
	default:
		panic(fmt.Sprintf("regex: unsupported assertion kind %d", k))
	}
}

// backtrack pops the most recent save point, restores position,
// captures and pending work from it, and schedules the next untried
// choice if the popped point still holds one.
func (ctx *matchContext) backtrack() bool {
	if len(ctx.stack) == 0 {
		return false
	}
	bt := ctx.stack[len(ctx.stack)-1]
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	ctx.pos = bt.pos
	ctx.caps = append(ctx.caps[:0], bt.caps...)
	ctx.work = append(ctx.work[:0], bt.cont...)

	switch r := bt.resume.(type) {
	case *Alternation:
		if bt.choice+1 < len(r.Branches) {
			ctx.stack = append(ctx.stack, backtrackPoint{
				pos:    bt.pos,
				caps:   bt.caps,
				cont:   bt.cont,
				resume: r,
				choice: bt.choice + 1,
			})
		}
		ctx.pushNode(r.Branches[bt.choice])
	case *Quantifier:
		// lazy retry: give the quantifier one more repetition
		ctx.pushRepetition(r, bt.choice)
	}
	return true
}

func (ctx *matchContext) pushNode(n Node) {
	ctx.work = append(ctx.work, workItem{op: opNode, node: n})
}

func (ctx *matchContext) snapshotCaps() []capSpan {
	s := make([]capSpan, len(ctx.caps))
	copy(s, ctx.caps)
	return s
}

func (ctx *matchContext) snapshotWork() []workItem {
	s := make([]workItem, len(ctx.work))
	copy(s, ctx.work)
	return s
}

func (ctx *matchContext) sameRune(a, b rune) bool {
	if a == b {
		return true
	}
	if ctx.flags&FlagIgnoreCase == 0 {
		return false
	}
	return ctx.canon(a) == ctx.canon(b)
}

// canon maps a character to its canonical form for case-insensitive
// comparison. Unicode mode folds over the full simple-case-fold orbit;
// otherwise the upper-case rule applies, except that a non-ASCII
// character never canonicalizes into ASCII.
func (ctx *matchContext) canon(r rune) rune {
	if ctx.flags&FlagUnicode != 0 {
		return foldOrbitMin(r)
	}
	u := unicode.ToUpper(r)
	if u < 128 && r >= 128 {
		return r
	}
	return u
}

func foldOrbitMin(r rune) rune {
	min := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < min {
			min = f
		}
	}
	return min
}

func (ctx *matchContext) classContains(c *CharClass, r rune) bool {
	in := rangesContain(c.Members, r)
	if !in && ctx.flags&FlagIgnoreCase != 0 {
		if ctx.flags&FlagUnicode != 0 {
			for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
				if rangesContain(c.Members, f) {
					in = true
					break
				}
			}
		} else {
			// a non-ASCII character never folds into an ASCII member
			if u := unicode.ToUpper(r); u != r && !(u < 128 && r >= 128) && rangesContain(c.Members, u) {
				in = true
			} else if l := unicode.ToLower(r); l != r && !(l < 128 && r >= 128) && rangesContain(c.Members, l) {
				in = true
			}
		}
	}
	if c.Negated {
		return !in
	}
	return in
}

func rangesContain(ranges []ClassRange, r rune) bool {
	for _, rg := range ranges {
		if r >= rg.Lo && r <= rg.Hi {
			return true
		}
	}
	return false
}

func (ctx *matchContext) atWordBoundary() bool {
	prev := ctx.pos > 0 && isWordChar(ctx.runes[ctx.pos-1])
	cur := ctx.pos < len(ctx.runes) && isWordChar(ctx.runes[ctx.pos])
	return prev != cur
}

func isWordChar(r rune) bool {
	return (r >= 'A' && r <= 'Z') ||
		(r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9') ||
		r == '_'
}

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}
