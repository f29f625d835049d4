package analysis

import (
	"context"
	"testing"
)

func TestLexicon_Detect(t *testing.T) {
	lex := NewLexicon(DefaultFillerWords)

	tests := []struct {
		name  string
		text  string
		want  FillerCounts
		total int
	}{
		{"empty", "", nil, 0},
		{"single words", "Um so I was like um there", FillerCounts{{"um", 2}, {"like", 1}, {"so", 1}}, 4},
		{"phrase", "You know it is hard, you know", FillerCounts{{"you know", 2}}, 2},
		{"case folded entry", "I mean it", FillerCounts{{"i mean", 1}}, 1},
		{
			"nested phrase counts each entry",
			"you know what I mean",
			FillerCounts{{"you know", 1}, {"i mean", 1}, {"you know what i mean", 1}},
			3,
		},
		{"punctuation is part of token", "um, well.", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lex.Detect(tt.text)
			if got.Total() != tt.total {
				t.Errorf("total = %d, want %d", got.Total(), tt.total)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			// results follow lexicon order, not transcript order
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLexicon_Custom(t *testing.T) {
	lex := NewLexicon([]string{"Basically", "  ", "basically", "at the end of the day"})
	if lex.Len() != 2 {
		t.Fatalf("Len = %d, want 2", lex.Len())
	}
	if got := lex.Expressions(); got[0] != "basically" || got[1] != "at the end of the day" {
		t.Errorf("Expressions = %v", got)
	}
	got := lex.Detect("basically at the end of the day basically")
	if got.String() != "{'basically': 2, 'at the end of the day': 1}" {
		t.Errorf("String = %s", got)
	}
}

func TestClassifyTone(t *testing.T) {
	tests := []struct {
		polarity float64
		want     Tone
	}{
		{0.6, Positive},
		{-0.6, Negative},
		{0.0, Neutral},
		{0.5, Neutral},
		{-0.5, Neutral},
		{1.0, Positive},
		{-1.0, Negative},
	}
	for _, tt := range tests {
		if got := ClassifyTone(tt.polarity); got != tt.want {
			t.Errorf("ClassifyTone(%v) = %s, want %s", tt.polarity, got, tt.want)
		}
	}
}

func TestGrammar_FilterAndWindow(t *testing.T) {
	text := "He go to school every day and she dont like it at all, really."
	checker := &fakeChecker{issues: []GrammarIssue{
		{Message: "Possible agreement error", Offset: 3, Replacements: []string{"goes"}},
		{Message: "Put a COMMA here", Offset: 10},
		{Message: "Missing hyphen", Offset: 12},
		{Message: "Did you mean don't?", Offset: 36, Replacements: []string{"don't", "doesn't"}},
		{Message: "Offset past the end", Offset: 500},
		{Message: "Negative offset", Offset: -5},
	}}
	a := newTestAnalyzer(t, checker, &fakeSentiment{})

	g, err := a.grammar(context.Background(), text)
	if err != nil {
		t.Fatalf("grammar: %v", err)
	}
	if g.issues != 4 {
		t.Fatalf("issues = %d, want 4", g.issues)
	}
	if g.mistakes[0].Sentence != string([]rune(text)[0:33]) {
		t.Errorf("window[0] = %q", g.mistakes[0].Sentence)
	}
	if g.mistakes[1].Sentence != string([]rune(text)[6:]) {
		t.Errorf("window[1] = %q", g.mistakes[1].Sentence)
	}
	if g.mistakes[1].Suggestion[1] != "doesn't" {
		t.Errorf("suggestions = %v", g.mistakes[1].Suggestion)
	}
	if g.mistakes[2].Sentence != "" {
		t.Errorf("out of range offset should give empty window, got %q", g.mistakes[2].Sentence)
	}
	if g.mistakes[3].Sentence != string([]rune(text)[0:25]) {
		t.Errorf("negative offset window = %q", g.mistakes[3].Sentence)
	}
	if g.mistakes[2].Suggestion == nil {
		t.Error("suggestion must be an empty list, not nil")
	}
	if g.words != 14 {
		t.Errorf("words = %d, want 14", g.words)
	}
	if want := GrammarScore(4, 14); g.score != want {
		t.Errorf("score = %v, want %v", g.score, want)
	}
}

func TestGrammar_CustomSuppression(t *testing.T) {
	checker := &fakeChecker{issues: []GrammarIssue{
		{Message: "Missing comma"},
		{Message: "Whitespace repetition"},
	}}
	a := newTestAnalyzer(t, checker, &fakeSentiment{}, WithSuppressedKeywords([]string{"WHITESPACE"}))
	g, err := a.grammar(context.Background(), "a b c")
	if err != nil {
		t.Fatal(err)
	}
	if g.issues != 1 || g.mistakes[0].Error != "Missing comma" {
		t.Errorf("mistakes = %+v", g.mistakes)
	}
}

func TestGrammar_ContextRadius(t *testing.T) {
	checker := &fakeChecker{issues: []GrammarIssue{{Message: "x", Offset: 5}}}
	a := newTestAnalyzer(t, checker, &fakeSentiment{}, WithContextRadius(2))
	g, err := a.grammar(context.Background(), "0123456789")
	if err != nil {
		t.Fatal(err)
	}
	if g.mistakes[0].Sentence != "3456" {
		t.Errorf("window = %q, want 3456", g.mistakes[0].Sentence)
	}
}

func TestGrammarScore(t *testing.T) {
	tests := []struct {
		issues, words int
		want          float64
	}{
		{0, 0, 100},
		{0, 12, 100},
		{1, 3, 66.667},
		{2, 3, 33.333},
		{5, 3, 0},
		{1, 0, 0},
		{1, 7, 85.714},
	}
	for _, tt := range tests {
		if got := GrammarScore(tt.issues, tt.words); got != tt.want {
			t.Errorf("GrammarScore(%d, %d) = %v, want %v", tt.issues, tt.words, got, tt.want)
		}
	}
}

func TestRatePronunciation(t *testing.T) {
	tests := []struct {
		name    string
		words   int
		grammar float64
		avg     float64
		want    PronunciationLevel
		msg     string
		score   int
	}{
		{"too short wins over everything", 4, 100, 10, PronunciationPoor, "Poor pronunciation, unable to transcribe properly.", 50},
		{"good", 12, 95, 6, PronunciationGood, "Good pronunciation with clear speech.", 90},
		{"short sentences", 12, 95, 5, PronunciationUnderstandable, "Pronunciation is understandable but could be clearer.", 75},
		{"grammar exactly 90", 12, 90, 12, PronunciationUnderstandable, "Pronunciation is understandable but could be clearer.", 75},
		{"grammar exactly 75", 12, 75, 12, PronunciationUnclear, "Pronunciation is unclear, affecting accuracy.", 60},
		{"unclear", 30, 40, 3, PronunciationUnclear, "Pronunciation is unclear, affecting accuracy.", 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RatePronunciation(tt.words, tt.grammar, tt.avg)
			if got != tt.want {
				t.Fatalf("level = %v, want %v", got, tt.want)
			}
			if got.Feedback() != tt.msg || got.Score() != tt.score {
				t.Errorf("(%q, %d), want (%q, %d)", got.Feedback(), got.Score(), tt.msg, tt.score)
			}
		})
	}
}

func TestAverageSentenceLength(t *testing.T) {
	if got := AverageSentenceLength(12, 0); got != 12 {
		t.Errorf("no sentences: %v", got)
	}
	if got := AverageSentenceLength(12, 4); got != 3 {
		t.Errorf("4 sentences: %v", got)
	}
}

func TestWordsPerMinute(t *testing.T) {
	tests := []struct {
		words int
		dur   float64
		want  float64
	}{
		{12, 10, 72},
		{100, 0, 0},
		{100, -3, 0},
		{0, 30, 0},
		{150, 60, 150},
	}
	for _, tt := range tests {
		if got := WordsPerMinute(tt.words, tt.dur); got != tt.want {
			t.Errorf("WordsPerMinute(%d, %v) = %v, want %v", tt.words, tt.dur, got, tt.want)
		}
	}
	if got := paceFeedback(WordsPerMinute(7, 3)); got != "Pace: 140.00 words per minute." {
		t.Errorf("paceFeedback = %q", got)
	}
}

func TestPunktSplitter(t *testing.T) {
	s, err := NewPunktSplitter()
	if err != nil {
		t.Fatalf("NewPunktSplitter: %v", err)
	}
	if got := s.Split("   "); len(got) != 0 {
		t.Errorf("blank text gave %v", got)
	}
	if got := s.Split("this has no terminal punctuation at all"); len(got) != 1 {
		t.Errorf("got %d sentences, want 1", len(got))
	}
	if got := s.Split("I went home. Then I slept. It was late."); len(got) != 3 {
		t.Errorf("got %d sentences (%q), want 3", len(got), got)
	}
}
