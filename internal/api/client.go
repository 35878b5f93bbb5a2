// Package api fetches price records from the spot-price backend.
package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"spotchart/internal/ingest"
	"spotchart/internal/model"
)

const maxBodyBytes = 8 << 20

// Result is a successful fetch.
type Result struct {
	URL     string
	Status  int
	Records []model.RawRecord
	Body    []byte
}

// Client talks to the price backend.
type Client struct {
	baseURL string
	http    *http.Client
	parser  *ingest.JSONParser
	logger  *slog.Logger
}

// NewClient creates a client for baseURL. A zero timeout means 15s.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		parser:  &ingest.JSONParser{},
		logger:  logger.With("component", "api"),
	}
}

// URL builds the request URL for an endpoint path and optional date code.
func (c *Client) URL(path, date string) string {
	u := c.baseURL + path
	if date != "" {
		u += "?" + url.Values{"date": {date}}.Encode()
	}
	return u
}

// Fetch GETs path with the given date code. On failure the error is a
// *NetworkError, *ParseError or *BackendError, or wraps ErrEmptyResult when
// the body was not a non-empty array. The body is returned alongside
// ErrEmptyResult and *BackendError for diagnostics.
func (c *Client) Fetch(ctx context.Context, path, date string) (Result, error) {
	target := c.URL(path, date)
	res := Result{URL: target}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return res, &NetworkError{URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return res, &NetworkError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	res.Body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return res, &NetworkError{URL: target, Status: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}
	c.logger.Debug("fetched", "url", target, "status", resp.StatusCode,
		"bytes", len(res.Body), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return res, &NetworkError{URL: target, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	payload, err := c.parser.ParseBytes(res.Body)
	if err != nil {
		return res, &ParseError{URL: target, Err: err}
	}
	if payload.ErrorMessage != "" {
		return res, &BackendError{Message: payload.ErrorMessage}
	}
	if !payload.IsArray || len(payload.Records) == 0 {
		return res, fmt.Errorf("%s: %w", target, ErrEmptyResult)
	}
	res.Records = payload.Records
	return res, nil
}

// Prefix returns at most n bytes of body as a string.
func Prefix(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n])
}
