package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNoAudio is returned for containers without an audio stream.
var ErrNoAudio = errors.New("video has no audio track")

// Audio is an extracted track and its length in seconds.
type Audio struct {
	Path     string
	Duration float64
}

// Extractor pulls the audio track out of a video with ffmpeg and measures it
// with ffprobe.
type Extractor struct {
	FFmpeg     string
	FFprobe    string
	SampleRate int
	Channels   int

	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewExtractor(ffmpeg, ffprobe string, sampleRate, channels int) *Extractor {
	return &Extractor{
		FFmpeg:     ffmpeg,
		FFprobe:    ffprobe,
		SampleRate: sampleRate,
		Channels:   channels,
		run:        execRun,
	}
}

// Extract writes <stem>.wav into outDir (the video's directory when empty)
// and returns its path and duration.
func (e *Extractor) Extract(ctx context.Context, videoPath, outDir string) (Audio, error) {
	if outDir == "" {
		outDir = filepath.Dir(videoPath)
	}
	streams, err := e.run(ctx, e.FFprobe,
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=index",
		"-of", "csv=p=0",
		videoPath,
	)
	if err != nil {
		return Audio{}, fmt.Errorf("ffprobe: %w", err)
	}
	if strings.TrimSpace(string(streams)) == "" {
		return Audio{}, ErrNoAudio
	}

	out := filepath.Join(outDir, Stem(videoPath)+".wav")
	// ffmpeg -y -i input -vn -ac 1 -ar 16000 -f wav output
	if _, err := e.run(ctx, e.FFmpeg,
		"-y", "-i", videoPath,
		"-vn",
		"-ac", strconv.Itoa(e.Channels), "-ar", strconv.Itoa(e.SampleRate),
		"-f", "wav",
		out,
	); err != nil {
		return Audio{}, fmt.Errorf("ffmpeg: %w", err)
	}

	dur, err := e.Duration(ctx, out)
	if err != nil {
		return Audio{}, err
	}
	return Audio{Path: out, Duration: dur}, nil
}

// Duration probes the container duration of path in seconds.
func (e *Extractor) Duration(ctx context.Context, path string) (float64, error) {
	raw, err := e.run(ctx, e.FFprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	return parseDuration(raw)
}

func parseDuration(raw []byte) (float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "N/A" {
		return 0, nil
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration %q: %w", s, err)
	}
	if d < 0 {
		d = 0
	}
	return d, nil
}

// Stem is the file name without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", err, msg)
	}
	return stdout.Bytes(), nil
}

// Available reports whether both binaries are on PATH (or are usable paths).
func (e *Extractor) Available() error {
	for _, bin := range []string{e.FFmpeg, e.FFprobe} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("%s: %w", bin, err)
		}
	}
	return nil
}

