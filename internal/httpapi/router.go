// Package httpapi is the HTTP surface of the chart gateway: health, metrics,
// the diagnostic receiver, chart exports and the WebSocket endpoint.
package httpapi

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"spotchart/internal/metrics"
	"spotchart/internal/model"
)

// ChartSource exposes the chart as it is currently drawn.
type ChartSource interface {
	Current() (model.ChartData, bool)
}

// Viewport reports the last size a client asked for.
type Viewport interface {
	Size() (width, height int)
}

// Deps are the collaborators the router serves.
type Deps struct {
	Chart    ChartSource
	Viewport Viewport
	Metrics  *metrics.Metrics
	WS       http.Handler
	WebDir   string
	Logger   *slog.Logger
}

// NewRouter wires every route.
func NewRouter(d Deps) *chi.Mux {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	logger := d.Logger.With("component", "http")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	// The upgrade needs the raw writer, so /ws stays outside the logging group
	if d.WS != nil {
		r.Handle("/ws", d.WS)
	}

	r.Group(func(r chi.Router) {
		r.Use(requestLogger(logger))
		r.Use(middleware.Recoverer)

		r.Get("/health", healthHandler(d.Chart))
		if d.Metrics != nil {
			r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
		}
		r.Post("/client-log", NewClientLogHandler(d.Metrics, logger).Handle)

		charts := &ChartHandler{source: d.Chart, viewport: d.Viewport, logger: logger}
		r.Get("/chart.json", charts.JSON)
		r.Get("/chart.html", charts.HTML)
		r.Get("/chart.png", charts.PNG)
		r.Get("/chart.xlsx", charts.XLSX)

		if d.WebDir != "" {
			if info, err := os.Stat(d.WebDir); err == nil && info.IsDir() {
				logger.Info("serving web directory", "dir", d.WebDir)
				r.Handle("/*", http.FileServer(http.Dir(d.WebDir)))
			} else {
				logger.Warn("web directory not found", "dir", d.WebDir)
			}
		}
	})

	return r
}

func healthHandler(source ChartSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loaded := false
		if source != nil {
			_, loaded = source.Current()
		}
		render.JSON(w, r, map[string]any{
			"status":       "ok",
			"chart_loaded": loaded,
		})
	}
}

// requestLogger logs one line per request with the chi request id attached
// through the context.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.DebugContext(r.Context(), "request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": msg})
}
