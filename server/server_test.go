package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/speech-feedback/analysis"
	"github.com/maastricht-university/speech-feedback/clients"
	cfg "github.com/maastricht-university/speech-feedback/config"
	"github.com/maastricht-university/speech-feedback/media"
	"github.com/maastricht-university/speech-feedback/metrics"
	"github.com/maastricht-university/speech-feedback/orchestrator"
)

type fakeRunner struct {
	err      error
	ranPath  string
	source   string
	text     string
	duration float64
}

func (f *fakeRunner) Run(_ context.Context, path string) (*orchestrator.Report, error) {
	f.ranPath = path
	if f.err != nil {
		return nil, f.err
	}
	return &orchestrator.Report{
		AnalysisID:       "20240101-000000-abcdef12",
		Source:           path,
		TranscriptStatus: orchestrator.TranscriptOK,
		Feedback:         &analysis.Feedback{FinalScore: 95},
	}, nil
}

func (f *fakeRunner) AnalyzeTranscript(_ context.Context, source, text string, dur float64) (*orchestrator.Report, error) {
	f.source, f.text, f.duration = source, text, dur
	if f.err != nil {
		return nil, f.err
	}
	return &orchestrator.Report{
		AnalysisID:       "20240101-000000-abcdef12",
		Source:           source,
		Transcript:       text,
		TranscriptStatus: orchestrator.TranscriptProvided,
		DurationSec:      dur,
		Feedback:         &analysis.Feedback{FinalScore: 70},
	}, nil
}

func newTestServer(t *testing.T, r Runner) (*Server, *cfg.Root) {
	t.Helper()
	c := cfg.Default()
	c.Paths.Uploads = filepath.Join(t.TempDir(), "uploads")
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.AnalysesTotal.WithLabelValues("success").Inc()

	l := logrus.New()
	l.SetOutput(io.Discard)
	return New(c, r, reg, logrus.NewEntry(l)), c
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &b, w.FormDataContentType()
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &fakeRunner{})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["service"] != "speech-feedback" {
		t.Errorf("body = %v", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, &fakeRunner{})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `speech_feedback_analyses_total{outcome="success"} 1`) {
		t.Errorf("metrics output missing counter:\n%s", rec.Body.String())
	}
}

func TestUpload(t *testing.T) {
	r := &fakeRunner{}
	s, c := newTestServer(t, r)
	body, ctype := multipartBody(t, "talk.mp4", "not really a video")

	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", body)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if filepath.Base(r.ranPath) != "talk.mp4" || !strings.HasPrefix(r.ranPath, c.Paths.Uploads) {
		t.Errorf("ran on %q", r.ranPath)
	}
	saved, err := os.ReadFile(r.ranPath)
	if err != nil || string(saved) != "not really a video" {
		t.Errorf("saved upload = %q, %v", saved, err)
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	fb, _ := got["feedback"].(map[string]any)
	if fb["final_score"] != 95.0 {
		t.Errorf("response = %v", got)
	}
}

func TestUpload_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		request func(t *testing.T) *http.Request
		message string
	}{
		{
			name: "no file part",
			request: func(t *testing.T) *http.Request {
				var b bytes.Buffer
				w := multipart.NewWriter(&b)
				_ = w.WriteField("other", "x")
				_ = w.Close()
				req := httptest.NewRequest(http.MethodPost, "/v1/analyses", &b)
				req.Header.Set("Content-Type", w.FormDataContentType())
				return req
			},
			message: "no file part",
		},
		{
			name: "empty filename",
			request: func(t *testing.T) *http.Request {
				var b bytes.Buffer
				w := multipart.NewWriter(&b)
				fw, err := w.CreatePart(map[string][]string{
					"Content-Disposition": {`form-data; name="file"; filename=""`},
				})
				if err != nil {
					t.Fatal(err)
				}
				_, _ = fw.Write([]byte("data"))
				_ = w.Close()
				req := httptest.NewRequest(http.MethodPost, "/v1/analyses", &b)
				req.Header.Set("Content-Type", w.FormDataContentType())
				return req
			},
		},
		{
			name: "parent directory filename",
			request: func(t *testing.T) *http.Request {
				body, ctype := multipartBody(t, "..", "data")
				req := httptest.NewRequest(http.MethodPost, "/v1/analyses", body)
				req.Header.Set("Content-Type", ctype)
				return req
			},
			message: "no selected file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{}
			s, _ := newTestServer(t, r)
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, tt.request(t))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if tt.message != "" && !strings.Contains(rec.Body.String(), tt.message) {
				t.Errorf("body = %s", rec.Body.String())
			}
			if r.ranPath != "" {
				t.Errorf("pipeline ran on %q", r.ranPath)
			}
		})
	}
}

func TestUpload_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{&analysis.UpstreamError{Collaborator: "grammar", Err: errors.New("down")}, http.StatusBadGateway, "upstream_unavailable"},
		{fmt.Errorf("transcription failed: %w", clients.ErrServiceUnavailable), http.StatusBadGateway, "upstream_unavailable"},
		{&clients.StatusError{Service: "asr", Code: 400}, http.StatusBadGateway, "upstream_unavailable"},
		{fmt.Errorf("extract: %w", media.ErrNoAudio), http.StatusUnprocessableEntity, "no_audio"},
		{clients.ErrUnrecognized, http.StatusUnprocessableEntity, "speech_unrecognized"},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
		{errors.New("disk full"), http.StatusInternalServerError, "analysis_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.code+"/"+tt.err.Error(), func(t *testing.T) {
			s, _ := newTestServer(t, &fakeRunner{err: tt.err})
			body, ctype := multipartBody(t, "talk.mp4", "x")
			req := httptest.NewRequest(http.MethodPost, "/v1/analyses", body)
			req.Header.Set("Content-Type", ctype)
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			var got map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if got["error"] != tt.code {
				t.Errorf("error code = %q, want %q", got["error"], tt.code)
			}
		})
	}
}

func TestTranscript(t *testing.T) {
	r := &fakeRunner{}
	s, _ := newTestServer(t, r)
	req := httptest.NewRequest(http.MethodPost, "/v1/analyses/transcript",
		strings.NewReader(`{"transcript":"So, um, I think we should go.","duration_seconds":30}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if r.source != "inline" || r.duration != 30 || r.text != "So, um, I think we should go." {
		t.Errorf("runner got source=%q text=%q duration=%v", r.source, r.text, r.duration)
	}
}

func TestTranscript_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed json", `{"transcript":`, "invalid_request"},
		{"negative duration", `{"transcript":"hi","duration_seconds":-1}`, "validation_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, &fakeRunner{})
			req := httptest.NewRequest(http.MethodPost, "/v1/analyses/transcript", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.code) {
				t.Errorf("body = %s", rec.Body.String())
			}
		})
	}
}
