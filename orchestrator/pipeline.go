package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/maastricht-university/speech-feedback/clients"
	cfg "github.com/maastricht-university/speech-feedback/config"
	"github.com/maastricht-university/speech-feedback/logging"
	"github.com/maastricht-university/speech-feedback/metrics"
)

// Deps are the collaborators a Pipeline drives. Publisher and Metrics are
// optional.
type Deps struct {
	Extractor   AudioExtractor
	Transcriber Transcriber
	Analyzer    Analyzer
	Publisher   Publisher
	Metrics     *metrics.Metrics
	Log         *logrus.Entry
}

// Pipeline runs video -> audio -> transcript -> feedback for single files.
// It is safe for concurrent use when its dependencies are.
type Pipeline struct {
	cfg *cfg.Root
	d   Deps
	now func() time.Time
}

func NewPipeline(c *cfg.Root, d Deps) *Pipeline {
	if d.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		d.Log = logrus.NewEntry(l)
	}
	return &Pipeline{cfg: c, d: d, now: time.Now}
}

// Run analyses one video file. Speech that the recogniser could not
// understand is analysed as an empty transcript; any collaborator failure
// aborts the run.
func (p *Pipeline) Run(ctx context.Context, videoPath string) (*Report, error) {
	start := p.now()
	r := &Report{AnalysisID: newAnalysisID(start), Source: videoPath}
	log := logging.WithAnalysis(p.d.Log, r.AnalysisID, videoPath)

	if err := p.run(ctx, r, log); err != nil {
		p.fail(start, err, log)
		return nil, err
	}
	return r, nil
}

func (p *Pipeline) run(ctx context.Context, r *Report, log *logrus.Entry) error {
	audio, err := p.d.Extractor.Extract(ctx, r.Source, "")
	if err != nil {
		return fmt.Errorf("%w: %w", errMedia, err)
	}
	r.AudioPath, r.DurationSec = audio.Path, audio.Duration
	log.WithFields(logrus.Fields{"audio": audio.Path, "duration": audio.Duration}).Info("audio extracted")

	text, err := p.transcribe(ctx, audio.Path, log)
	switch {
	case errors.Is(err, clients.ErrUnrecognized):
		log.Warn("speech not recognized, analysing empty transcript")
		r.TranscriptStatus = TranscriptUnrecognized
	case err != nil:
		return fmt.Errorf("%w: %w", errTranscription, err)
	default:
		r.TranscriptStatus = TranscriptOK
	}
	r.Transcript = text

	r.TranscriptPath = transcriptPath(r.Source)
	if err := writeTranscript(r.TranscriptPath, text); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}

	return p.finish(ctx, r, log)
}

// AnalyzeTranscript scores a caller-supplied transcript without touching
// media or ASR.
func (p *Pipeline) AnalyzeTranscript(ctx context.Context, source, transcript string, durationSec float64) (*Report, error) {
	start := p.now()
	r := &Report{
		AnalysisID:       newAnalysisID(start),
		Source:           source,
		Transcript:       transcript,
		TranscriptStatus: TranscriptProvided,
		DurationSec:      durationSec,
	}
	log := logging.WithAnalysis(p.d.Log, r.AnalysisID, source)
	if err := p.finish(ctx, r, log); err != nil {
		p.fail(start, err, log)
		return nil, err
	}
	return r, nil
}

func (p *Pipeline) finish(ctx context.Context, r *Report, log *logrus.Entry) error {
	start := p.now()
	fb, err := p.d.Analyzer.Analyze(ctx, r.Transcript, r.DurationSec)
	if err != nil {
		return err
	}
	r.Feedback = fb
	r.GeneratedAt = p.now()

	path, err := persist(p.cfg.Paths.Outputs, r)
	if err != nil {
		return fmt.Errorf("persist report: %w", err)
	}
	r.ReportPath = path

	if p.d.Publisher != nil {
		// the report is already on disk; a lost event is logged, not fatal
		if err := p.d.Publisher.Publish(ctx, r.AnalysisID, r); err != nil {
			log.WithError(err).Warn("feedback event not published")
		}
	}

	if p.d.Metrics != nil {
		p.d.Metrics.RecordAnalysis(p.now().Sub(start).Seconds(), fb.GrammarScore, fb.FinalScore, fb.WPM, fb.TotalFillerWords)
	}
	log.WithFields(logrus.Fields{
		"grammar_score":       fb.GrammarScore,
		"pronunciation_score": fb.PronunciationScore,
		"final_score":         fb.FinalScore,
		"wpm":                 fmt.Sprintf("%.2f", fb.WPM),
		"report":              path,
	}).Info("analysis finished")
	return nil
}

func (p *Pipeline) fail(start time.Time, err error, log *logrus.Entry) {
	who := collaborator(err)
	if p.d.Metrics != nil {
		p.d.Metrics.RecordFailure(p.now().Sub(start).Seconds(), who)
	}
	log.WithError(err).WithField("collaborator", who).Error("analysis failed")
}

// transcribe retries only while the speech service is unavailable;
// unrecognised speech and other errors return at once.
func (p *Pipeline) transcribe(ctx context.Context, audioPath string, log *logrus.Entry) (string, error) {
	var bo backoff.BackOff = &backoff.StopBackOff{}
	if p.cfg.Retry.MaxElapsedSec > 0 {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = time.Duration(p.cfg.Retry.InitialIntervalMs) * time.Millisecond
		eb.MaxElapsedTime = cfg.DurSeconds(p.cfg.Retry.MaxElapsedSec)
		bo = eb
	}

	var text string
	op := func() error {
		t, err := p.d.Transcriber.Transcribe(ctx, audioPath)
		if err != nil {
			if errors.Is(err, clients.ErrServiceUnavailable) {
				log.WithError(err).Warn("transcription failed, retrying")
				return err
			}
			return backoff.Permanent(err)
		}
		text = t
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", err
	}
	return text, nil
}

// RunAll analyses videos with at most jobs runs in flight. Failures do not
// stop the other files; reports[i] is nil when videos[i] failed.
func (p *Pipeline) RunAll(ctx context.Context, videos []string, jobs int) ([]*Report, error) {
	if jobs < 1 {
		jobs = 1
	}
	reports := make([]*Report, len(videos))
	errs := make([]error, len(videos))

	var g errgroup.Group
	g.SetLimit(jobs)
	for i, v := range videos {
		i, v := i, v
		g.Go(func() error {
			reports[i], errs[i] = p.Run(ctx, v)
			if errs[i] != nil {
				errs[i] = fmt.Errorf("%s: %w", v, errs[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return reports, errors.Join(errs...)
}
