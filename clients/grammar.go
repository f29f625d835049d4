package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/maastricht-university/speech-feedback/analysis"
)

// --- LanguageTool (/v2/check) ---
type LTReplacement struct {
	Value string `json:"value"`
}
type LTRule struct {
	ID       string `json:"id"`
	Category struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"category"`
}
type LTMatch struct {
	Message      string          `json:"message"`
	Offset       int             `json:"offset"`
	Length       int             `json:"length"`
	Replacements []LTReplacement `json:"replacements"`
	Rule         LTRule          `json:"rule"`
}
type LTResp struct {
	Matches []LTMatch `json:"matches"`
}

func (h *HTTP) Grammar(ctx context.Context, baseURL, language, text string) (*LTResp, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("language", language)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var out LTResp
	if err := h.do(req, "grammar", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LanguageTool checks grammar against a LanguageTool server. It is safe for
// concurrent use; call Ping once after construction and Close on shutdown.
type LanguageTool struct {
	h        *HTTP
	url      string
	language string
}

func NewLanguageTool(h *HTTP, baseURL, language string) *LanguageTool {
	if language == "" {
		language = "en-US"
	}
	return &LanguageTool{h: h, url: strings.TrimRight(baseURL, "/"), language: language}
}

// Ping verifies the server answers /v2/languages.
func (lt *LanguageTool) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lt.url+"/v2/languages", nil)
	if err != nil {
		return err
	}
	var langs []struct {
		LongCode string `json:"longCode"`
	}
	if err := lt.h.do(req, "grammar", &langs); err != nil {
		return err
	}
	for _, l := range langs {
		if strings.EqualFold(l.LongCode, lt.language) {
			return nil
		}
	}
	return fmt.Errorf("grammar: language %q not offered by %s", lt.language, lt.url)
}

func (lt *LanguageTool) Close() error {
	lt.h.Close()
	return nil
}

func (lt *LanguageTool) Check(ctx context.Context, text string) ([]analysis.GrammarIssue, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	resp, err := lt.h.Grammar(ctx, lt.url, lt.language, text)
	if err != nil {
		return nil, err
	}
	issues := make([]analysis.GrammarIssue, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		repl := make([]string, 0, len(m.Replacements))
		for _, r := range m.Replacements {
			repl = append(repl, r.Value)
		}
		issues = append(issues, analysis.GrammarIssue{
			Message:      m.Message,
			Offset:       utf16ToRuneOffset(text, m.Offset),
			Replacements: repl,
		})
	}
	return issues, nil
}

// utf16ToRuneOffset converts a LanguageTool (UTF-16 code unit) offset into a
// rune offset. Offsets past the end are returned past the end.
func utf16ToRuneOffset(text string, off int) int {
	if off <= 0 {
		return off
	}
	units, runes := 0, 0
	for _, r := range text {
		if units >= off {
			return runes
		}
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
		runes++
	}
	return runes + (off - units)
}

