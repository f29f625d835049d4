// Package analysis turns a transcript and its audio duration into a speech
// quality report: grammar, filler words, tone, pronunciation and pace.
package analysis

import (
	"context"
	"errors"
)

// ErrUpstreamUnavailable marks a failure of the grammar checker or the
// sentiment model. An analysis that hits it is aborted.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// UpstreamError names the collaborator behind an ErrUpstreamUnavailable.
type UpstreamError struct {
	Collaborator string // "grammar" or "sentiment"
	Err          error
}

func (e *UpstreamError) Error() string {
	return e.Collaborator + ": " + ErrUpstreamUnavailable.Error() + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() []error { return []error{ErrUpstreamUnavailable, e.Err} }

// GrammarIssue is one raw match reported by a grammar checker.
type GrammarIssue struct {
	Message      string
	Offset       int // rune offset into the checked text
	Replacements []string
}

// GrammarChecker finds grammar issues in text.
type GrammarChecker interface {
	Check(ctx context.Context, text string) ([]GrammarIssue, error)
}

// SentimentModel scores text polarity in [-1, 1] and subjectivity in [0, 1].
type SentimentModel interface {
	Sentiment(ctx context.Context, text string) (polarity, subjectivity float64, err error)
}

// SentenceSplitter segments text into sentences.
type SentenceSplitter interface {
	Split(text string) []string
}

type GrammarMistake struct {
	Sentence   string   `json:"sentence"`
	Error      string   `json:"error"`
	Suggestion []string `json:"suggestion"`
}

// Feedback is the report produced by one Analyze call.
type Feedback struct {
	GrammarIssues         int              `json:"grammar_issues"`
	GrammarMistakes       []GrammarMistake `json:"grammar_mistakes"`
	GrammarScore          float64          `json:"grammar_score"`
	PronunciationFeedback string           `json:"pronunciation_feedback"`
	PronunciationScore    int              `json:"pronunciation_score"`
	TotalFillerWords      int              `json:"total_filler_words"`
	FillerWordFeedback    string           `json:"filler_word_feedback"`
	EmotionFeedback       string           `json:"emotion_feedback"`
	FinalScore            float64          `json:"final_score"`
	PaceFeedback          string           `json:"pace_feedback"`
	WPM                   float64          `json:"wpm"`

	// Intermediate values, kept out of the wire format.
	TotalWords            int          `json:"-"`
	SentenceCount         int          `json:"-"`
	AverageSentenceLength float64      `json:"-"`
	Fillers               FillerCounts `json:"-"`
	Tone                  Tone         `json:"-"`
	Polarity              float64      `json:"-"`
	Subjectivity          float64      `json:"-"`
}
