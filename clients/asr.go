package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type TransSeg struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
type ASRResp struct {
	Segments []TransSeg `json:"segments"`
	Language string     `json:"language"`
}

// Text joins the segment texts with single spaces.
func (r *ASRResp) Text() string {
	parts := make([]string, 0, len(r.Segments))
	for _, s := range r.Segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// ASR uploads the wav at wavPath to POST <url>/transcribe. A 422 answer
// means the service heard no speech.
func (h *HTTP) ASR(ctx context.Context, url, wavPath string) (*ASRResp, error) {
	var out ASRResp
	if err := h.postFile(ctx, url+"/transcribe", "asr", "file", wavPath, &out); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusUnprocessableEntity {
			return nil, fmt.Errorf("asr: %w", ErrUnrecognized)
		}
		return nil, err
	}
	return &out, nil
}

// ASRService transcribes audio files through an HTTP speech service
// exposing POST /transcribe.
type ASRService struct {
	h   *HTTP
	url string
}

func NewASRService(h *HTTP, url string) *ASRService {
	return &ASRService{h: h, url: strings.TrimRight(url, "/")}
}

func (s *ASRService) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := s.h.ASR(ctx, s.url, audioPath)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("asr: %w", ErrUnrecognized)
	}
	return text, nil
}
