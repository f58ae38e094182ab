package regex

import "github.com/coregx/ahocorasick"

// prefilter accelerates the unanchored scan loop for patterns whose
// top-level alternation branches all begin with a literal run: an
// Aho-Corasick automaton over those prefixes finds the next position
// where a match could possibly start, so the engine skips the
// positions in between.
type prefilter struct {
	auto   *ahocorasick.Automaton
	maxLen int // longest prefix, in bytes
}

// buildPrefilter returns nil whenever the automaton cannot be used
// soundly: case-insensitive comparison changes what a prefix looks
// like, sticky patterns must not skip, and a branch without a literal
// prefix can start anywhere.
func buildPrefilter(root *Root, flags Flag) *prefilter {
	if flags&(FlagIgnoreCase|FlagSticky) != 0 {
		return nil
	}
	prefixes := branchPrefixes(root.Body)
	if prefixes == nil {
		return nil
	}
	builder := ahocorasick.NewBuilder()
	maxLen := 0
	for _, pre := range prefixes {
		b := []byte(pre)
		builder.AddPattern(b)
		if len(b) > maxLen {
			maxLen = len(b)
		}
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &prefilter{auto: auto, maxLen: maxLen}
}

// branchPrefixes collects the literal prefix of every top-level
// alternation branch, or nil when any branch lacks one.
func branchPrefixes(n Node) []string {
	branches := []Node{n}
	if alt, ok := n.(*Alternation); ok {
		branches = alt.Branches
	}
	prefixes := make([]string, 0, len(branches))
	for _, b := range branches {
		pre := literalPrefix(b)
		if pre == "" {
			return nil
		}
		prefixes = append(prefixes, pre)
	}
	return prefixes
}

// literalPrefix returns the run of plain literals a sequence must start
// with; quantifiers, groups, classes and assertions end the run.
func literalPrefix(n Node) string {
	switch t := n.(type) {
	case *Literal:
		return string(t.Char)
	case *Concat:
		var out []rune
		for _, c := range t.Nodes {
			lit, ok := c.(*Literal)
			if !ok {
				break
			}
			out = append(out, lit.Char)
		}
		return string(out)
	default:
		return ""
	}
}

// skipAhead maps rune offset s to the next offset at or after it where
// a match could start, or reports that no later start is viable. With
// a prefix occurrence at [m.Start, m.End), no occurrence starts before
// m.End - maxLen, so the skip is conservative even when occurrences
// overlap.
func (pf *prefilter) skipAhead(haystack []byte, offs []int, s int) (int, bool) {
	m := pf.auto.Find(haystack, offs[s])
	if m == nil {
		return 0, false
	}
	cand := m.End - pf.maxLen
	if cand <= offs[s] {
		return s, true
	}
	for s+1 < len(offs) && offs[s+1] <= cand {
		s++
	}
	return s, true
}
