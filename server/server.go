// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/speech-feedback/analysis"
	"github.com/maastricht-university/speech-feedback/clients"
	cfg "github.com/maastricht-university/speech-feedback/config"
	"github.com/maastricht-university/speech-feedback/media"
	"github.com/maastricht-university/speech-feedback/orchestrator"
)

const shutdownTimeout = 15 * time.Second

// Runner is the part of orchestrator.Pipeline the handlers drive.
type Runner interface {
	Run(ctx context.Context, videoPath string) (*orchestrator.Report, error)
	AnalyzeTranscript(ctx context.Context, source, transcript string, durationSec float64) (*orchestrator.Report, error)
}

type Server struct {
	e       *echo.Echo
	addr    string
	uploads string
	runner  Runner
	log     *logrus.Entry
	name    string
	version string
}

// requestValidator adapts go-playground/validator to echo.Validator.
type requestValidator struct{ v *validator.Validate }

func (rv *requestValidator) Validate(i any) error { return rv.v.Struct(i) }

// New builds the router. g serves /metrics.
func New(c *cfg.Root, r Runner, g prometheus.Gatherer, log *logrus.Entry) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{v: validator.New()}

	s := &Server{
		e:       e,
		addr:    c.Server.Addr,
		uploads: c.Paths.Uploads,
		runner:  r,
		log:     log,
		name:    c.Pipeline.Name,
		version: c.Pipeline.Version,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogMethod:  true,
		LogURI:     true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	e.GET("/health", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))

	v1 := e.Group("/v1")
	v1.POST("/analyses", s.upload, middleware.BodyLimit(fmt.Sprintf("%dM", c.Server.MaxUploadMB)))
	v1.POST("/analyses/transcript", s.transcript)
	return s
}

// ServeHTTP lets tests drive the router without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.e.ServeHTTP(w, r) }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.addr).Info("http server listening")
		if err := s.e.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.e.Shutdown(sctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"service": s.name,
		"version": s.version,
	})
}

// upload saves the multipart "file" under the uploads directory and runs the
// full pipeline on it.
func (s *Server) upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":   "invalid_request",
			"message": "no file part",
		})
	}
	name := filepath.Base(strings.TrimSpace(fh.Filename))
	switch name {
	case "", ".", "..", string(filepath.Separator):
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":   "invalid_request",
			"message": "no selected file",
		})
	}

	path, err := s.save(fh, name)
	if err != nil {
		s.log.WithError(err).Error("saving upload")
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"error":   "upload_failed",
			"message": "could not store upload",
		})
	}

	r, err := s.runner.Run(c.Request().Context(), path)
	if err != nil {
		return s.analysisError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) save(fh *multipart.FileHeader, name string) (string, error) {
	dir := filepath.Join(s.uploads, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", err
	}
	return path, dst.Close()
}

type transcriptRequest struct {
	Transcript      string  `json:"transcript" validate:"max=200000"`
	DurationSeconds float64 `json:"duration_seconds" validate:"gte=0"`
	Source          string  `json:"source" validate:"omitempty,max=256"`
}

// transcript scores a supplied transcript, skipping media and ASR.
func (s *Server) transcript(c echo.Context) error {
	var req transcriptRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":   "invalid_request",
			"message": err.Error(),
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":   "validation_failed",
			"message": err.Error(),
		})
	}
	if req.Source == "" {
		req.Source = "inline"
	}

	r, err := s.runner.AnalyzeTranscript(c.Request().Context(), req.Source, req.Transcript, req.DurationSeconds)
	if err != nil {
		return s.analysisError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) analysisError(c echo.Context, err error) error {
	status, code := statusFor(err)
	return c.JSON(status, map[string]any{
		"error":   code,
		"message": err.Error(),
	})
}

// statusFor maps pipeline failures to an HTTP status and error code.
func statusFor(err error) (int, string) {
	var se *clients.StatusError
	switch {
	case errors.Is(err, analysis.ErrUpstreamUnavailable),
		errors.Is(err, clients.ErrServiceUnavailable),
		errors.As(err, &se):
		return http.StatusBadGateway, "upstream_unavailable"
	case errors.Is(err, media.ErrNoAudio):
		return http.StatusUnprocessableEntity, "no_audio"
	case errors.Is(err, clients.ErrUnrecognized):
		return http.StatusUnprocessableEntity, "speech_unrecognized"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "analysis_failed"
	}
}
