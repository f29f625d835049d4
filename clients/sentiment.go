package clients

import (
	"context"
	"strings"
)

// --- Sentiment (/sentiment) ---
type SentimentReq struct {
	Text string `json:"text"`
}
type SentimentResp struct {
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
}

func (h *HTTP) Sentiment(ctx context.Context, url, text string) (*SentimentResp, error) {
	var out SentimentResp
	if err := h.postJSON(ctx, url+"/sentiment", "sentiment", SentimentReq{Text: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SentimentService scores text through an HTTP sentiment service. Values
// outside the documented ranges are clamped.
type SentimentService struct {
	h   *HTTP
	url string
}

func NewSentimentService(h *HTTP, url string) *SentimentService {
	return &SentimentService{h: h, url: strings.TrimRight(url, "/")}
}

func (s *SentimentService) Sentiment(ctx context.Context, text string) (float64, float64, error) {
	resp, err := s.h.Sentiment(ctx, s.url, text)
	if err != nil {
		return 0, 0, err
	}
	return clampf(resp.Polarity, -1, 1), clampf(resp.Subjectivity, 0, 1), nil
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
