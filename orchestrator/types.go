package orchestrator

import (
	"context"
	"time"

	"github.com/maastricht-university/speech-feedback/analysis"
	"github.com/maastricht-university/speech-feedback/media"
)

type TranscriptStatus string

const (
	TranscriptOK           TranscriptStatus = "ok"
	TranscriptUnrecognized TranscriptStatus = "unrecognized"
	TranscriptProvided     TranscriptStatus = "provided" // supplied by the caller, no ASR
)

// Report is one persisted analysis run.
type Report struct {
	AnalysisID       string             `json:"analysis_id"`
	Source           string             `json:"source"`
	AudioPath        string             `json:"audio_path,omitempty"`
	TranscriptPath   string             `json:"transcript_path,omitempty"`
	ReportPath       string             `json:"-"`
	Transcript       string             `json:"transcript"`
	TranscriptStatus TranscriptStatus   `json:"transcript_status"`
	DurationSec      float64            `json:"duration_seconds"`
	GeneratedAt      time.Time          `json:"generated_at"`
	Feedback         *analysis.Feedback `json:"feedback"`
}

type AudioExtractor interface {
	Extract(ctx context.Context, videoPath, outDir string) (media.Audio, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, transcript string, durationSec float64) (*analysis.Feedback, error)
}

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}
