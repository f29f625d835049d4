package analysis

import (
	"math"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// words lower-cases text and splits it on whitespace.
func words(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// PunktSplitter splits English text with the Punkt sentence tokenizer.
type PunktSplitter struct {
	tok *sentences.DefaultSentenceTokenizer
}

// NewPunktSplitter loads the bundled English Punkt training data.
func NewPunktSplitter() (*PunktSplitter, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, err
	}
	return &PunktSplitter{tok: tok}, nil
}

func (p *PunktSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for _, s := range p.tok.Tokenize(text) {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}
