package analysis

// PronunciationLevel is one of the four fixed pronunciation verdicts.
//
// The verdict is a proxy derived from the transcript (word count, grammar
// score and sentence length). No acoustic signal is analysed, so it says
// how well the recogniser could follow the speaker, not how words were
// actually pronounced.
type PronunciationLevel int

const (
	PronunciationPoor PronunciationLevel = iota
	PronunciationUnclear
	PronunciationUnderstandable
	PronunciationGood
)

var pronunciationTable = map[PronunciationLevel]struct {
	msg   string
	score int
}{
	PronunciationPoor:           {"Poor pronunciation, unable to transcribe properly.", 50},
	PronunciationUnclear:        {"Pronunciation is unclear, affecting accuracy.", 60},
	PronunciationUnderstandable: {"Pronunciation is understandable but could be clearer.", 75},
	PronunciationGood:           {"Good pronunciation with clear speech.", 90},
}

func (l PronunciationLevel) Feedback() string { return pronunciationTable[l].msg }

func (l PronunciationLevel) Score() int { return pronunciationTable[l].score }

// RatePronunciation applies the decision table top to bottom.
func RatePronunciation(totalWords int, grammarScore, avgSentenceLen float64) PronunciationLevel {
	switch {
	case totalWords < 5:
		return PronunciationPoor
	case grammarScore > 90 && avgSentenceLen > 5:
		return PronunciationGood
	case grammarScore > 75:
		return PronunciationUnderstandable
	default:
		return PronunciationUnclear
	}
}

// AverageSentenceLength divides words by sentences, with at least one sentence.
func AverageSentenceLength(totalWords, sentences int) float64 {
	if sentences < 1 {
		sentences = 1
	}
	return float64(totalWords) / float64(sentences)
}
