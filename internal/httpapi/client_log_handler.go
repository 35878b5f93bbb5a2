package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"spotchart/internal/clientlog"
	"spotchart/internal/metrics"
)

// ClientLogHandler receives diagnostics posted by chart clients.
type ClientLogHandler struct {
	metrics  *metrics.Metrics
	validate *validator.Validate
	logger   *slog.Logger
}

func NewClientLogHandler(m *metrics.Metrics, logger *slog.Logger) *ClientLogHandler {
	return &ClientLogHandler{
		metrics:  m,
		validate: validator.New(),
		logger:   logger.With("handler", "client_log"),
	}
}

// Handle logs one clientlog.Entry at its own level.
func (h *ClientLogHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var entry clientlog.Entry
	if err := render.DecodeJSON(r.Body, &entry); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request format")
		return
	}
	if err := h.validate.Struct(entry); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if entry.Message == nil {
		writeError(w, r, http.StatusBadRequest, "message is required")
		return
	}

	var level slog.Level
	switch entry.Level {
	case clientlog.LevelWarn:
		level = slog.LevelWarn
	case clientlog.LevelError:
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	h.logger.LogAttrs(r.Context(), level, "client diagnostic",
		slog.Any("message", entry.Message),
		slog.String("client_timestamp", entry.Timestamp),
	)
	h.metrics.ClientLog(string(entry.Level))

	render.JSON(w, r, map[string]any{"success": true})
}
