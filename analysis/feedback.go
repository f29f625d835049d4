package analysis

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLexicon replaces the default filler lexicon.
func WithLexicon(l Lexicon) Option {
	return func(a *Analyzer) { a.lexicon = l }
}

// WithSuppressedKeywords sets the message keywords whose grammar issues are
// dropped. Matching is case-insensitive.
func WithSuppressedKeywords(kw []string) Option {
	return func(a *Analyzer) {
		a.suppress = a.suppress[:0]
		for _, k := range kw {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				a.suppress = append(a.suppress, k)
			}
		}
	}
}

// WithContextRadius sets how many runes either side of an issue offset are
// quoted in a mistake. Default 30.
func WithContextRadius(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.radius = n
		}
	}
}

func WithSentenceSplitter(s SentenceSplitter) Option {
	return func(a *Analyzer) { a.splitter = s }
}

func WithLogger(l *logrus.Entry) Option {
	return func(a *Analyzer) { a.log = l }
}

// Analyzer runs the feedback pipeline. It holds no per-call state and may be
// shared between goroutines provided its checker and sentiment model are
// safe for concurrent use (see SerializeChecker).
type Analyzer struct {
	checker   GrammarChecker
	sentiment SentimentModel
	splitter  SentenceSplitter
	lexicon   Lexicon
	suppress  []string
	radius    int
	log       *logrus.Entry
}

// New builds an Analyzer. Without WithSentenceSplitter the English Punkt
// tokenizer is loaded.
func New(checker GrammarChecker, sentiment SentimentModel, opts ...Option) (*Analyzer, error) {
	if checker == nil || sentiment == nil {
		return nil, errors.New("analysis: grammar checker and sentiment model are required")
	}
	a := &Analyzer{
		checker:   checker,
		sentiment: sentiment,
		lexicon:   NewLexicon(DefaultFillerWords),
		radius:    defaultContextRadius,
	}
	WithSuppressedKeywords(DefaultSuppressedKeywords)(a)
	for _, o := range opts {
		o(a)
	}
	if a.splitter == nil {
		s, err := NewPunktSplitter()
		if err != nil {
			return nil, err
		}
		a.splitter = s
	}
	if a.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		a.log = logrus.NewEntry(l)
	}
	return a, nil
}

// Analyze scores transcript against durationSec seconds of audio. It fails
// only when the grammar checker or sentiment model fails; empty transcripts
// and zero durations yield a complete minimal report.
func (a *Analyzer) Analyze(ctx context.Context, transcript string, durationSec float64) (*Feedback, error) {
	g, err := a.grammar(ctx, transcript)
	if err != nil {
		return nil, err
	}

	fillers := a.lexicon.Detect(transcript)

	tone, pol, subj, err := a.tone(ctx, transcript)
	if err != nil {
		return nil, err
	}

	sentences := len(a.splitter.Split(transcript))
	avg := AverageSentenceLength(g.words, sentences)
	level := RatePronunciation(g.words, g.score, avg)
	wpm := WordsPerMinute(g.words, durationSec)

	fb := &Feedback{
		GrammarIssues:         g.issues,
		GrammarMistakes:       g.mistakes,
		GrammarScore:          g.score,
		PronunciationFeedback: level.Feedback(),
		PronunciationScore:    level.Score(),
		TotalFillerWords:      fillers.Total(),
		FillerWordFeedback:    fillerFeedback(fillers),
		EmotionFeedback:       toneFeedback(tone),
		FinalScore:            round3((g.score + float64(level.Score())) / 2),
		PaceFeedback:          paceFeedback(wpm),
		WPM:                   wpm,

		TotalWords:            g.words,
		SentenceCount:         sentences,
		AverageSentenceLength: avg,
		Fillers:               fillers,
		Tone:                  tone,
		Polarity:              pol,
		Subjectivity:          subj,
	}

	a.log.WithFields(logrus.Fields{
		"words":         g.words,
		"grammar_score": fb.GrammarScore,
		"final_score":   fb.FinalScore,
		"fillers":       fb.TotalFillerWords,
		"tone":          tone,
	}).Debug("analysis complete")
	return fb, nil
}

// SerializeChecker guards c with a mutex, for checkers that must not be
// called concurrently.
func SerializeChecker(c GrammarChecker) GrammarChecker {
	return &serialChecker{c: c}
}

type serialChecker struct {
	mu sync.Mutex
	c  GrammarChecker
}

func (s *serialChecker) Check(ctx context.Context, text string) ([]GrammarIssue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Check(ctx, text)
}
