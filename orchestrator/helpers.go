package orchestrator

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maastricht-university/speech-feedback/analysis"
	"github.com/maastricht-university/speech-feedback/clients"
	"github.com/maastricht-university/speech-feedback/media"
)

func newAnalysisID(now time.Time) string {
	return now.Format("20060102-150405") + "-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// transcriptPath places <stem>.txt next to the source video.
func transcriptPath(videoPath string) string {
	return filepath.Join(filepath.Dir(videoPath), media.Stem(videoPath)+".txt")
}

// collaborator labels the external service behind err, or "" when the
// failure is local.
func collaborator(err error) string {
	var ue *analysis.UpstreamError
	switch {
	case errors.As(err, &ue):
		return ue.Collaborator
	case errors.Is(err, errTranscription), errors.Is(err, clients.ErrServiceUnavailable):
		return "asr"
	case errors.Is(err, errMedia):
		return "media"
	default:
		return ""
	}
}

var (
	errMedia         = errors.New("audio extraction failed")
	errTranscription = errors.New("transcription failed")
)
