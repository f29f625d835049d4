package clients

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
)

// AssemblyAI transcribes audio files with the hosted AssemblyAI API.
type AssemblyAI struct {
	client *aai.Client
}

// NewAssemblyAI falls back to ASSEMBLYAI_API_KEY when apiKey is empty.
func NewAssemblyAI(apiKey string) (*AssemblyAI, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("assemblyai: api key is not set")
	}
	return &AssemblyAI{client: aai.NewClient(apiKey)}, nil
}

func (a *AssemblyAI) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	tr, err := a.client.Transcripts.TranscribeFromReader(ctx, f, nil)
	if err != nil {
		return "", fmt.Errorf("assemblyai: %w: %v", ErrServiceUnavailable, err)
	}
	if tr.Status == "error" {
		msg := ""
		if tr.Error != nil {
			msg = *tr.Error
		}
		return "", fmt.Errorf("assemblyai: %w: %s", ErrServiceUnavailable, msg)
	}
	var text string
	if tr.Text != nil {
		text = strings.TrimSpace(*tr.Text)
	}
	if text == "" {
		return "", fmt.Errorf("assemblyai: %w", ErrUnrecognized)
	}
	return text, nil
}
