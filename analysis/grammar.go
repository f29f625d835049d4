package analysis

import (
	"context"
	"strings"
)

// DefaultSuppressedKeywords drops punctuation nitpicks from the report.
var DefaultSuppressedKeywords = []string{"comma", "hyphen"}

const defaultContextRadius = 30

type grammarResult struct {
	issues   int
	mistakes []GrammarMistake
	score    float64
	words    int
}

func (a *Analyzer) grammar(ctx context.Context, transcript string) (grammarResult, error) {
	raw, err := a.checker.Check(ctx, transcript)
	if err != nil {
		return grammarResult{}, &UpstreamError{Collaborator: "grammar", Err: err}
	}

	runes := []rune(transcript)
	mistakes := make([]GrammarMistake, 0, len(raw))
	for _, m := range raw {
		if a.suppressed(m.Message) {
			continue
		}
		sugg := m.Replacements
		if sugg == nil {
			sugg = []string{}
		}
		mistakes = append(mistakes, GrammarMistake{
			Sentence:   contextWindow(runes, m.Offset, a.radius),
			Error:      m.Message,
			Suggestion: sugg,
		})
	}

	n := len(words(transcript))
	return grammarResult{
		issues:   len(mistakes),
		mistakes: mistakes,
		score:    GrammarScore(len(mistakes), n),
		words:    n,
	}, nil
}

func (a *Analyzer) suppressed(msg string) bool {
	msg = strings.ToLower(msg)
	for _, k := range a.suppress {
		if strings.Contains(msg, k) {
			return true
		}
	}
	return false
}

// GrammarScore is 100 minus the issue rate per word, floored at 0 and
// rounded to three decimals. An empty transcript counts as one word.
func GrammarScore(issues, totalWords int) float64 {
	if totalWords < 1 {
		totalWords = 1
	}
	s := 100 - float64(issues)/float64(totalWords)*100
	if s < 0 {
		s = 0
	}
	return round3(s)
}

// contextWindow returns runes[offset-radius : offset+radius] clamped to the
// text, empty when the offset lies entirely outside it.
func contextWindow(runes []rune, offset, radius int) string {
	start := clamp(offset-radius, 0, len(runes))
	end := clamp(offset+radius, 0, len(runes))
	if start >= end {
		return ""
	}
	return string(runes[start:end])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
