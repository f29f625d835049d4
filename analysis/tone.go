package analysis

import (
	"context"
	"fmt"
	"strings"
)

type Tone string

const (
	Positive Tone = "Positive"
	Negative Tone = "Negative"
	Neutral  Tone = "Neutral"
)

// ClassifyTone maps polarity to a tone. Both thresholds are exclusive.
func ClassifyTone(polarity float64) Tone {
	switch {
	case polarity > 0.5:
		return Positive
	case polarity < -0.5:
		return Negative
	default:
		return Neutral
	}
}

func toneFeedback(t Tone) string {
	return fmt.Sprintf("The emotional tone of the speech is %s.", t)
}

// tone scores transcript with the sentiment model. Blank text is neutral
// and is not sent out.
func (a *Analyzer) tone(ctx context.Context, transcript string) (Tone, float64, float64, error) {
	if strings.TrimSpace(transcript) == "" {
		return Neutral, 0, 0, nil
	}
	pol, subj, err := a.sentiment.Sentiment(ctx, transcript)
	if err != nil {
		return "", 0, 0, &UpstreamError{Collaborator: "sentiment", Err: err}
	}
	return ClassifyTone(pol), pol, subj, nil
}
