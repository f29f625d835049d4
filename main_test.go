package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeNLP serves the LanguageTool and sentiment endpoints the score command
// talks to.
func fakeNLP(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/languages", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"English (US)","code":"en","longCode":"en-US"}]`))
	})
	mux.HandleFunc("/v2/check", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"matches":[]}`))
	})
	mux.HandleFunc("/sentiment", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"polarity":0.8,"subjectivity":0.4}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestScoreCommand(t *testing.T) {
	srv := fakeNLP(t)
	t.Setenv("SPEECHFB_SERVICES_GRAMMAR_URL", srv.URL)
	t.Setenv("SPEECHFB_SERVICES_SENTIMENT_URL", srv.URL)

	out, err := runCLI(t, "score",
		"--text", "Um, I really love this topic. You know, it is great.",
		"--duration", "60", "--log-level", "error")
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	var fb map[string]any
	if err := json.Unmarshal([]byte(out), &fb); err != nil {
		t.Fatalf("output is not json: %v\n%s", err, out)
	}
	if len(fb) != 11 {
		t.Errorf("report has %d fields, want 11: %v", len(fb), fb)
	}
	if fb["grammar_score"] != 100.0 {
		t.Errorf("grammar_score = %v", fb["grammar_score"])
	}
	if fb["emotion_feedback"] != "The emotional tone of the speech is Positive." {
		t.Errorf("emotion_feedback = %v", fb["emotion_feedback"])
	}
	if wpm, _ := fb["wpm"].(float64); math.Abs(wpm-11) > 1e-9 {
		t.Errorf("wpm = %v, want 11", fb["wpm"])
	}
}

func TestScoreCommand_Flags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"neither text nor file", []string{"score"}, "exactly one of"},
		{"both text and file", []string{"score", "--text", "hi", "--file", "x.txt"}, "exactly one of"},
		{"negative duration", []string{"score", "--text", "hi", "--duration", "-5"}, "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestAnalyzeCommand_RequiresVideo(t *testing.T) {
	if _, err := runCLI(t, "analyze"); err == nil {
		t.Error("analyze without arguments succeeded")
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, err := runCLI(t, "--config", "does/not/exist.yaml", "score", "--text", "hi"); err == nil {
		t.Error("missing config accepted")
	}
}
