package analysis

import (
	"fmt"
	"strings"
)

// DefaultFillerWords is the stock filler lexicon, in reporting order.
var DefaultFillerWords = []string{
	"um", "uh", "like", "you know", "so", "actually", "basically", "literally",
	"kind of", "sort of", "you see", "I mean", "well", "hmm", "ah", "er", "uhm",
	"right", "you know what I mean", "you know what I'm saying", "okay", "yeah",
	"totally", "just", "really", "maybe", "kinda", "sorta", "anyway", "I guess",
	"I suppose", "I dunno", "alright", "or something", "stuff like that", "and all that",
	"whatever", "probably", "I think", "to be honest", "honestly", "let’s see",
}

// Lexicon is an immutable ordered set of filler expressions. Entries are
// case-folded and may span several words.
type Lexicon struct {
	entries []lexEntry
}

type lexEntry struct {
	expr   string
	tokens []string
}

// NewLexicon builds a Lexicon from exprs. Blank and duplicate entries are
// dropped; the first occurrence fixes the order.
func NewLexicon(exprs []string) Lexicon {
	seen := make(map[string]bool, len(exprs))
	var l Lexicon
	for _, e := range exprs {
		toks := words(e)
		if len(toks) == 0 {
			continue
		}
		key := strings.Join(toks, " ")
		if seen[key] {
			continue
		}
		seen[key] = true
		l.entries = append(l.entries, lexEntry{expr: key, tokens: toks})
	}
	return l
}

// Len returns the number of expressions.
func (l Lexicon) Len() int { return len(l.entries) }

// Expressions returns a copy of the folded expressions in order.
func (l Lexicon) Expressions() []string {
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.expr
	}
	return out
}

// FillerCount is a single lexicon hit count.
type FillerCount struct {
	Expression string
	Count      int
}

// FillerCounts holds the expressions that occurred, in lexicon order.
type FillerCounts []FillerCount

// Total sums the per-expression counts.
func (fc FillerCounts) Total() int {
	n := 0
	for _, c := range fc {
		n += c.Count
	}
	return n
}

// String renders the counts as a mapping literal, e.g. {'um': 2, 'like': 1}.
func (fc FillerCounts) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range fc {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "'%s': %d", c.Expression, c.Count)
	}
	b.WriteByte('}')
	return b.String()
}

// Detect counts every lexicon expression in transcript. A multi-word
// expression matches wherever its tokens appear consecutively; each
// expression is counted on its own, so "you know what i mean" also counts
// toward "you know" and "i mean".
func (l Lexicon) Detect(transcript string) FillerCounts {
	toks := words(transcript)
	var out FillerCounts
	for _, e := range l.entries {
		if n := countSeq(toks, e.tokens); n > 0 {
			out = append(out, FillerCount{Expression: e.expr, Count: n})
		}
	}
	return out
}

func countSeq(toks, seq []string) int {
	n := 0
outer:
	for i := 0; i+len(seq) <= len(toks); i++ {
		for j, s := range seq {
			if toks[i+j] != s {
				continue outer
			}
		}
		n++
	}
	return n
}

func fillerFeedback(fc FillerCounts) string {
	return fmt.Sprintf("Filler words detected: %d. Filler words used: %s", fc.Total(), fc)
}
