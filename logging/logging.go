// Package logging configures logrus for the service.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to stderr. format is "json" or "text"; an
// unknown level falls back to info.
func New(level, format string) *logrus.Logger {
	return NewWithOutput(os.Stderr, level, format)
}

func NewWithOutput(w io.Writer, level, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}
	return l
}

// WithComponent tags entries with the emitting component.
func WithComponent(l *logrus.Logger, component string) *logrus.Entry {
	return l.WithField("component", component)
}

// WithAnalysis tags entries with an analysis id and the input file.
func WithAnalysis(e *logrus.Entry, analysisID, file string) *logrus.Entry {
	return e.WithFields(logrus.Fields{
		"analysis_id": analysisID,
		"file":        file,
	})
}
