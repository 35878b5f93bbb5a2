// Package clientlog ships diagnostic messages to the backend's /client-log
// endpoint. Delivery is best effort: failures are logged locally and dropped.
package clientlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Level is the severity accepted by the receiver.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Entry is the wire format of one diagnostic message. Message may be any
// JSON value except null, including falsy ones like 0, false or "".
type Entry struct {
	Level     Level  `json:"level" validate:"required,oneof=info warn error"`
	Message   any    `json:"message"`
	Timestamp string `json:"timestamp" validate:"required"`
}

// Logger is what pipeline code reports diagnostics through.
type Logger interface {
	Log(level Level, message any)
}

// Sink posts entries in the background.
type Sink struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewSink returns a sink posting to url. An empty url disables posting and
// only logs locally. rps <= 0 disables rate limiting.
func NewSink(url string, rps float64, burst int, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if burst < 1 {
		burst = 1
	}
	return &Sink{
		url:     url,
		client:  &http.Client{Timeout: 5 * time.Second},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger.With("component", "clientlog"),
		now:     time.Now,
	}
}

// Log mirrors the message to the local logger and posts it without
// blocking the caller.
func (s *Sink) Log(level Level, message any) {
	s.logger.Log(context.Background(), slogLevel(level), fmt.Sprint(message), "sink", true)
	if s.url == "" {
		return
	}
	if !s.limiter.Allow() {
		s.logger.Debug("diagnostic dropped: rate limited")
		return
	}

	entry := Entry{Level: level, Message: message, Timestamp: s.now().UTC().Format(time.RFC3339Nano)}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.post(entry); err != nil {
			s.logger.Warn("client log post failed", "error", err)
		}
	}()
}

// Wait blocks until all in-flight posts have finished.
func (s *Sink) Wait() {
	s.wg.Wait()
}

func (s *Sink) post(entry Entry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}
	resp, err := s.client.Post(s.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}

func slogLevel(l Level) slog.Level {
	switch l {
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard drops every message.
type Discard struct{}

func (Discard) Log(Level, any) {}
