package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

var (
	// ErrUnrecognized means the recogniser ran but understood no speech.
	ErrUnrecognized = errors.New("speech not recognized")
	// ErrServiceUnavailable means a collaborator could not be reached or
	// answered with a server error.
	ErrServiceUnavailable = errors.New("service unavailable")
)

type HTTP struct{ c *http.Client }

func NewHTTP() *HTTP { return NewHTTPWithTimeout(60 * time.Second) }

func NewHTTPWithTimeout(d time.Duration) *HTTP {
	return &HTTP{c: &http.Client{Timeout: d}}
}

// Close drops idle keep-alive connections.
func (h *HTTP) Close() { h.c.CloseIdleConnections() }

func (h *HTTP) do(req *http.Request, name string, out any) error {
	resp, err := h.c.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", name, ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("%s %s: %w: %s", name, resp.Status, ErrServiceUnavailable, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{Service: name, Code: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s decode: %w", name, err)
	}
	return nil
}

func (h *HTTP) postJSON(ctx context.Context, url, name string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return h.do(req, name, out)
}

// postFile streams the file at path as multipart field `field`.
func (h *HTTP) postFile(ctx context.Context, url, name, field, path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile(field, filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		pr.Close()
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return h.do(req, name, out)
}

// StatusError is a non-200, non-5xx answer.
type StatusError struct {
	Service string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Service, e.Code, e.Body)
}
