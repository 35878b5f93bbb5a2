package api

import (
	"errors"
	"fmt"
)

// ErrEmptyResult is returned for a well-formed body that carries no records.
var ErrEmptyResult = errors.New("empty result")

// NetworkError covers transport failures (Status 0) and non-2xx responses.
type NetworkError struct {
	URL    string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("GET %s: HTTP %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError means the body was not valid JSON.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// BackendError carries the message of an {"error": "..."} body.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string {
	return "backend error: " + e.Message
}

// Reason classifies err for logs and metrics labels.
func Reason(err error) string {
	var (
		netErr     *NetworkError
		parseErr   *ParseError
		backendErr *BackendError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyResult):
		return "empty"
	case errors.As(err, &netErr):
		if netErr.Status != 0 {
			return "status"
		}
		return "network"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &backendErr):
		return "backend"
	default:
		return "other"
	}
}
