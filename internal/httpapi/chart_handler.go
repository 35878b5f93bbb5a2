package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"spotchart/internal/model"
	chartrender "spotchart/internal/render"
)

// Bounds for the width and height query parameters.
const (
	minSide = 100
	maxSide = 4000
)

// ChartHandler exports the current chart.
type ChartHandler struct {
	source   ChartSource
	viewport Viewport
	logger   *slog.Logger
}

func (h *ChartHandler) JSON(w http.ResponseWriter, r *http.Request) {
	data, ok := h.current()
	if !ok {
		writeError(w, r, http.StatusNotFound, chartrender.ErrNothingToDraw.Error())
		return
	}
	render.JSON(w, r, data)
}

func (h *ChartHandler) HTML(w http.ResponseWriter, r *http.Request) {
	width, height, err := h.size(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.export(w, r, "text/html; charset=utf-8", "", func(buf *bytes.Buffer) error {
		data, _ := h.current()
		return chartrender.HTML(buf, data, width, height)
	})
}

func (h *ChartHandler) PNG(w http.ResponseWriter, r *http.Request) {
	width, height, err := h.size(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.export(w, r, "image/png", "", func(buf *bytes.Buffer) error {
		data, _ := h.current()
		return chartrender.PNG(buf, data, width, height)
	})
}

func (h *ChartHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	data, _ := h.current()
	name := "spotpreise.xlsx"
	if data.DateCode != "" {
		name = "spotpreise-" + data.DateCode + ".xlsx"
	}
	h.export(w, r, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", name, func(buf *bytes.Buffer) error {
		return chartrender.XLSX(buf, data)
	})
}

func (h *ChartHandler) current() (model.ChartData, bool) {
	if h.source == nil {
		return model.ChartData{}, false
	}
	return h.source.Current()
}

// export renders into a buffer first so a failed render still gets a
// proper status code.
func (h *ChartHandler) export(w http.ResponseWriter, r *http.Request, contentType, filename string, fn func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		if errors.Is(err, chartrender.ErrNothingToDraw) {
			writeError(w, r, http.StatusNotFound, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "chart export failed", "path", r.URL.Path, "error", err)
		writeError(w, r, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// size reads width and height from the query, falling back to the client
// viewport and then to the renderer defaults.
func (h *ChartHandler) size(r *http.Request) (int, int, error) {
	width, height := chartrender.DefaultWidth, chartrender.DefaultHeight
	if h.viewport != nil {
		if vw, vh := h.viewport.Size(); vw > 0 && vh > 0 {
			width, height = vw, vh
		}
	}

	var err error
	if width, err = side(r, "width", width); err != nil {
		return 0, 0, err
	}
	if height, err = side(r, "height", height); err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

func side(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < minSide || v > maxSide {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", key, minSide, maxSide)
	}
	return v, nil
}
