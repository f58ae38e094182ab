package regex

import "testing"

// matchCase drives one Exec call and checks the overall match only;
// capture assertions live in their own tests.
type matchCase struct {
	pattern string
	flags   string
	input   string
	matched bool
	index   int
	match   string
}

func runMatchCases(t *testing.T, tests map[string]matchCase) {
	t.Helper()
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			flags, err := ParseFlags(tt.flags)
			if err != nil {
				t.Fatalf("ParseFlags(%q): %v", tt.flags, err)
			}
			p, err := Compile(tt.pattern, flags)
			if err != nil {
				t.Fatalf("Compile(%q): %v", tt.pattern, err)
			}
			res := p.Exec(tt.input)
			if res.Matched != tt.matched {
				t.Fatalf("Exec(%q).Matched = %v, want %v", tt.input, res.Matched, tt.matched)
			}
			if !tt.matched {
				if res.Index != -1 {
					t.Errorf("failed match index = %d, want -1", res.Index)
				}
				return
			}
			if res.Index != tt.index || res.Match != tt.match {
				t.Errorf("Exec(%q) = %q at %d, want %q at %d",
					tt.input, res.Match, res.Index, tt.match, tt.index)
			}
		})
	}
}

func TestMatchLiteralsAndClasses(t *testing.T) {
	runMatchCases(t, map[string]matchCase{
		"literal scan":        {pattern: "fox", input: "the fox jumps", matched: true, index: 4, match: "fox"},
		"literal absent":      {pattern: "fox", input: "the dog sleeps", matched: false},
		"dot excludes newline": {pattern: "a.c", input: "a\nc", matched: false},
		"dot matches any":     {pattern: "a.c", input: "abc", matched: true, index: 0, match: "abc"},
		"dotall spans newline": {pattern: "a.c", flags: "s", input: "a\nc", matched: true, index: 0, match: "a\nc"},
		"class range":         {pattern: "[b-d]+", input: "abcde", matched: true, index: 1, match: "bcd"},
		"negated class":       {pattern: "[^a-z]+", input: "abc123", matched: true, index: 3, match: "123"},
		"empty class fails":   {pattern: "[]", input: "anything", matched: false},
		"negated empty class": {pattern: "[^]", input: "\n", matched: true, index: 0, match: "\n"},
		"digit shorthand":     {pattern: `\d+`, input: "abc42", matched: true, index: 3, match: "42"},
		"negated shorthand":   {pattern: `\S+`, input: "  hi  ", matched: true, index: 2, match: "hi"},
		"class escape member": {pattern: `[\d.]+`, input: "v1.2", matched: true, index: 1, match: "1.2"},
	})
}

func TestMatchQuantifiers(t *testing.T) {
	runMatchCases(t, map[string]matchCase{
		"star":                 {pattern: "ab*c", input: "ac", matched: true, index: 0, match: "ac"},
		"plus needs one":       {pattern: "ab+c", input: "ac", matched: false},
		"optional":             {pattern: "colou?r", input: "color", matched: true, index: 0, match: "color"},
		"bounds lower":         {pattern: "^a{2,4}$", input: "aa", matched: true, index: 0, match: "aa"},
		"bounds upper":         {pattern: "^a{2,4}$", input: "aaaa", matched: true, index: 0, match: "aaaa"},
		"below bounds":         {pattern: "^a{2,4}$", input: "a", matched: false},
		"above bounds":         {pattern: "^a{2,4}$", input: "aaaaa", matched: false},
		"exact count":          {pattern: "a{3}", input: "aaaa", matched: true, index: 0, match: "aaa"},
		"open-ended":           {pattern: "a{2,}", input: "aaaa", matched: true, index: 0, match: "aaaa"},
		"greedy spans quotes":  {pattern: `".+"`, input: `"first" "second"`, matched: true, index: 0, match: `"first" "second"`},
		"lazy stops early":     {pattern: `".+?"`, input: `"first" "second"`, matched: true, index: 0, match: `"first"`},
		"lazy zero-width":      {pattern: "a??", input: "a", matched: true, index: 0, match: ""},
		"greedy backtracks":    {pattern: `\d+(?!px)`, input: "100px", matched: true, index: 0, match: "10"},
		"nested repetition":    {pattern: "(a+)+b", input: "aaab", matched: true, index: 0, match: "aaab"},
		"empty body terminates": {pattern: "(a*)*b", input: "b", matched: true, index: 0, match: "b"},
	})
}

func TestMatchAlternationOrder(t *testing.T) {
	runMatchCases(t, map[string]matchCase{
		"first branch wins":     {pattern: "a|ab", input: "ab", matched: true, index: 0, match: "a"},
		"longer first":          {pattern: "ab|a", input: "ab", matched: true, index: 0, match: "ab"},
		"branch feeds sequel":   {pattern: "(ab|a)c", input: "ac", matched: true, index: 0, match: "ac"},
		"all branches fail":     {pattern: "cat|dog", input: "bird", matched: false},
	})
}

func TestMatchAssertions(t *testing.T) {
	runMatchCases(t, map[string]matchCase{
		"caret at start":       {pattern: "^abc", input: "abc", matched: true, index: 0, match: "abc"},
		"caret elsewhere":      {pattern: "^abc", input: "xabc", matched: false},
		"dollar at end":        {pattern: "b$", input: "ab", matched: true, index: 1, match: "b"},
		"dollar elsewhere":     {pattern: "a$", input: "ab", matched: false},
		"multiline caret":      {pattern: "^b", flags: "m", input: "a\nb", matched: true, index: 2, match: "b"},
		"multiline dollar":     {pattern: "a$", flags: "m", input: "a\nb", matched: true, index: 0, match: "a"},
		"word boundary":        {pattern: `\bfox\b`, input: "the fox.", matched: true, index: 4, match: "fox"},
		"no boundary mid-word": {pattern: `\bfox\b`, input: "foxes", matched: false},
		"non-boundary":         {pattern: `\Bob`, input: "job", matched: true, index: 1, match: "ob"},
		"anchored full line":   {pattern: "^[a-z]+$", input: "hello", matched: true, index: 0, match: "hello"},
		"anchored reject":      {pattern: "^[a-z]+$", input: "Hello", matched: false},
	})
}

func TestMatchLookaround(t *testing.T) {
	runMatchCases(t, map[string]matchCase{
		"lookahead":          {pattern: `\d+(?=px)`, input: "100px", matched: true, index: 0, match: "100"},
		"lookahead fails":    {pattern: `\d+(?=em)`, input: "100px", matched: false},
		"negative lookahead": {pattern: `foo(?!bar)`, input: "foobaz foobar", matched: true, index: 0, match: "foo"},
		"lookbehind":         {pattern: `(?<=\$)\d+`, input: "price $42", matched: true, index: 7, match: "42"},
		"lookbehind fails":   {pattern: `(?<=\$)\d+`, input: "price 42", matched: false},
		"neg lookbehind":     {pattern: `(?<!a)b`, input: "ab", matched: false},
		"neg lookbehind ok":  {pattern: `(?<!a)b`, input: "cb", matched: true, index: 1, match: "b"},
		"lookbehind at start": {pattern: `(?<=^)a`, input: "a", matched: true, index: 0, match: "a"},
	})
}

func TestMatchBackreferences(t *testing.T) {
	runMatchCases(t, map[string]matchCase{
		"repeated word":      {pattern: `(\w+) \1`, input: "hello hello", matched: true, index: 0, match: "hello hello"},
		"different words":    {pattern: `(\w+) \1`, input: "hello world", matched: false},
		"unset group empty":  {pattern: `(?:(a)|b)\1c`, input: "bc", matched: true, index: 0, match: "bc"},
		"named backref":      {pattern: `(?<q>['"]).*?\k<q>`, input: `say "hi" now`, matched: true, index: 4, match: `"hi"`},
		"folded backref":     {pattern: `(ab)\1`, flags: "i", input: "abAB", matched: true, index: 0, match: "abAB"},
	})
}

func TestMatchCaseFolding(t *testing.T) {
	runMatchCases(t, map[string]matchCase{
		"ignore case":            {pattern: "hello", flags: "i", input: "HeLLo", matched: true, index: 0, match: "HeLLo"},
		"case sensitive default": {pattern: "hello", input: "HeLLo", matched: false},
		"class folds":            {pattern: "[a-z]+", flags: "i", input: "ABC", matched: true, index: 0, match: "ABC"},
		"ascii stays ascii":      {pattern: "s", flags: "i", input: "ſ", matched: false},
		"unicode fold orbit":     {pattern: "s", flags: "iu", input: "ſ", matched: true, index: 0, match: "ſ"},
		"sigma variants":         {pattern: "σ", flags: "iu", input: "Σ", matched: true, index: 0, match: "Σ"},
	})
}

func TestMatchSticky(t *testing.T) {
	runMatchCases(t, map[string]matchCase{
		"sticky at origin": {pattern: "ab", flags: "y", input: "abx", matched: true, index: 0, match: "ab"},
		"sticky no scan":   {pattern: "ab", flags: "y", input: "xab", matched: false},
	})
}

func TestCaptureResetPerRepetition(t *testing.T) {
	p := MustCompile("(?:(a)|(b))*", 0)
	res := p.Exec("ab")
	if !res.Matched || res.Match != "ab" {
		t.Fatalf("Exec(ab) = %+v, want full match", res)
	}
	if res.Captures[0].Defined() {
		t.Errorf("group 1 = %+v, want undefined after later repetition", res.Captures[0])
	}
	if !res.Captures[1].Defined() || res.Captures[1].Value != "b" {
		t.Errorf("group 2 = %+v, want %q", res.Captures[1], "b")
	}
}

func TestCaptureParticipationVsEmpty(t *testing.T) {
	p := MustCompile("(a)(b)?", 0)
	res := p.Exec("a")
	if !res.Captures[0].Defined() || res.Captures[0].Value != "a" {
		t.Fatalf("group 1 = %+v, want %q", res.Captures[0], "a")
	}
	if res.Captures[1].Defined() {
		t.Errorf("group 2 = %+v, want undefined", res.Captures[1])
	}

	p = MustCompile("(b?)a", 0)
	res = p.Exec("a")
	if !res.Captures[0].Defined() || res.Captures[0].Value != "" {
		t.Errorf("group 1 = %+v, want participating empty capture", res.Captures[0])
	}
}

func TestCapturesInsideLookahead(t *testing.T) {
	p := MustCompile(`(?=(\d+))\w+`, 0)
	res := p.Exec("12ab")
	if !res.Matched || res.Match != "12ab" {
		t.Fatalf("Exec(12ab) = %+v", res)
	}
	if res.Captures[0].Value != "12" {
		t.Errorf("lookahead capture = %q, want %q", res.Captures[0].Value, "12")
	}
}

func TestRequiredRepetitionsRunToMinimum(t *testing.T) {
	// A repetition below the minimum must not exit early just because
	// one iteration matched empty: the later mandatory iterations still
	// get to try their non-empty alternatives.
	res := MustCompile(`(|a){2}\1b`, 0).Exec("aab")
	if !res.Matched || res.Index != 0 || res.Match != "aab" {
		t.Fatalf("Exec(aab) = %+v, want aab at 0", res)
	}
	if res.Captures[0].Value != "a" {
		t.Errorf("group 1 = %+v, want %q", res.Captures[0], "a")
	}

	res = MustCompile("(|a){2}b", 0).Exec("ab")
	if !res.Matched || res.Index != 0 || res.Match != "ab" {
		t.Fatalf("Exec(ab) = %+v, want ab at 0", res)
	}
	if res.Captures[0].Value != "a" {
		t.Errorf("group 1 = %+v, want %q", res.Captures[0], "a")
	}
}

func TestEmptyRepetitionCaptures(t *testing.T) {
	// An empty repetition beyond the minimum is undone, so its group
	// stays unset; one needed to satisfy the minimum is kept.
	res := MustCompile("(a*)*b", 0).Exec("b")
	if !res.Matched || res.Captures[0].Defined() {
		t.Errorf("optional empty repetition: got %+v, want undefined group", res.Captures[0])
	}

	res = MustCompile("(a*){1}b", 0).Exec("b")
	if !res.Matched || !res.Captures[0].Defined() || res.Captures[0].Value != "" {
		t.Errorf("required empty repetition: got %+v, want empty capture", res.Captures[0])
	}
}

func TestBacktrackingRestoresCaptures(t *testing.T) {
	// The first alternative captures "aa" and then fails; the retry must
	// not see the stale capture.
	p := MustCompile(`(a+)b|(a+)c`, 0)
	res := p.Exec("aac")
	if !res.Matched {
		t.Fatal("want match")
	}
	if res.Captures[0].Defined() {
		t.Errorf("group 1 = %+v, want undefined after branch retry", res.Captures[0])
	}
	if res.Captures[1].Value != "aa" {
		t.Errorf("group 2 = %q, want %q", res.Captures[1].Value, "aa")
	}
}
