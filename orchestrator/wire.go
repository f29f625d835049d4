package orchestrator

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/speech-feedback/analysis"
	"github.com/maastricht-university/speech-feedback/clients"
	cfg "github.com/maastricht-university/speech-feedback/config"
	"github.com/maastricht-university/speech-feedback/events"
	"github.com/maastricht-university/speech-feedback/logging"
	"github.com/maastricht-university/speech-feedback/media"
	"github.com/maastricht-university/speech-feedback/metrics"
)

// NewAnalyzer builds the analysis core with the configured grammar checker,
// sentiment service and lexicon. The returned close func releases the
// checker's connections.
func NewAnalyzer(ctx context.Context, c *cfg.Root, log *logrus.Logger) (*analysis.Analyzer, func(), error) {
	lt := clients.NewLanguageTool(
		clients.NewHTTPWithTimeout(cfg.DurSeconds(c.Services.Grammar.TimeoutSec)),
		c.Services.Grammar.URL, c.Services.Grammar.Language)
	if err := lt.Ping(ctx); err != nil {
		logging.WithComponent(log, "grammar").WithError(err).Warn("grammar checker not reachable yet")
	}
	var checker analysis.GrammarChecker = lt
	if c.Services.Grammar.Serialize {
		checker = analysis.SerializeChecker(lt)
	}

	sentHTTP := clients.NewHTTPWithTimeout(cfg.DurSeconds(c.Services.Sentiment.TimeoutSec))
	sentiment := clients.NewSentimentService(sentHTTP, c.Services.Sentiment.URL)

	a, err := analysis.New(checker, sentiment,
		analysis.WithLexicon(analysis.NewLexicon(c.Analysis.FillerWords)),
		analysis.WithSuppressedKeywords(c.Analysis.SuppressedKeywords),
		analysis.WithContextRadius(c.Analysis.ContextRadius),
		analysis.WithLogger(logging.WithComponent(log, "analysis")),
	)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		_ = lt.Close()
		sentHTTP.Close()
	}
	return a, closer, nil
}

// NewTranscriber picks the configured speech-to-text backend.
func NewTranscriber(c *cfg.Root) (Transcriber, error) {
	switch c.Services.ASR.Provider {
	case "assemblyai":
		return clients.NewAssemblyAI(c.Services.ASR.APIKey)
	case "http", "":
		h := clients.NewHTTPWithTimeout(cfg.DurSeconds(c.Services.ASR.TimeoutSec))
		return clients.NewASRService(h, c.Services.ASR.URL), nil
	default:
		return nil, fmt.Errorf("unknown asr provider %q", c.Services.ASR.Provider)
	}
}

// Wire assembles a Pipeline from configuration. m may be nil.
func Wire(ctx context.Context, c *cfg.Root, log *logrus.Logger, m *metrics.Metrics) (*Pipeline, func(), error) {
	a, closeAnalyzer, err := NewAnalyzer(ctx, c, log)
	if err != nil {
		return nil, nil, err
	}
	tr, err := NewTranscriber(c)
	if err != nil {
		closeAnalyzer()
		return nil, nil, err
	}
	pub := events.New(events.Config{
		Brokers: c.Kafka.Brokers,
		Topic:   c.Kafka.Topic,
		Enabled: c.Kafka.Enabled,
	}, logging.WithComponent(log, "events"), m)

	p := NewPipeline(c, Deps{
		Extractor:   media.NewExtractor(c.Audio.FFmpeg, c.Audio.FFprobe, c.Audio.SampleRate, c.Audio.Channels),
		Transcriber: tr,
		Analyzer:    a,
		Publisher:   pub,
		Metrics:     m,
		Log:         logging.WithComponent(log, "pipeline"),
	})
	closer := func() {
		if err := pub.Close(); err != nil {
			log.WithError(err).Warn("closing publisher")
		}
		closeAnalyzer()
	}
	return p, closer, nil
}
