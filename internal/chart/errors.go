package chart

import (
	"errors"
	"strings"

	"spotchart/internal/api"
	"spotchart/internal/ingest"
)

// ErrUnknownOverlay is returned for an overlay kind missing from the catalog.
var ErrUnknownOverlay = errors.New("unknown overlay")

// AlertError is a primary-load failure meant for the user. Message is the
// text shown in the alert.
type AlertError struct {
	Message string
	Err     error
}

func (e *AlertError) Error() string {
	return e.Message
}

func (e *AlertError) Unwrap() error { return e.Err }

// alertFor maps a primary pipeline error to the message shown to the user.
func alertFor(err error) *AlertError {
	var (
		backendErr *api.BackendError
		schemaErr  *ingest.SchemaError
	)
	switch {
	case errors.As(err, &backendErr):
		return &AlertError{Message: backendErr.Message, Err: err}
	case errors.As(err, &schemaErr):
		return &AlertError{
			Message: "Keine gültigen Preiswerte zum Anzeigen. Verfügbare Keys im ersten Objekt: " + strings.Join(schemaErr.Keys, ","),
			Err:     err,
		}
	default:
		return &AlertError{Message: "Fehler beim Laden der Daten: " + err.Error(), Err: err}
	}
}

// reason labels an overlay failure for logs and metrics.
func reason(err error) string {
	var schemaErr *ingest.SchemaError
	if errors.As(err, &schemaErr) {
		return "schema"
	}
	return api.Reason(err)
}
