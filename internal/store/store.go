package store

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"spotchart/internal/model"
	"spotchart/internal/overlay"
)

var (
	ErrNoPrimary      = errors.New("no primary series loaded")
	ErrDuplicateLabel = errors.New("dataset label already present")
)

// Redrawer receives the full chart state after every registry mutation.
type Redrawer interface {
	Update(data model.ChartData) error
}

// Registry holds the primary price series and the overlays aligned to it.
// It is not safe for concurrent use; callers serialize access.
type Registry struct {
	title    string
	dateCode string
	labels   []string
	primary  []float64
	loaded   bool
	overlays []model.Dataset // insertion order is legend order

	redraw Redrawer
	logger *slog.Logger
}

func New(redraw Redrawer, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{redraw: redraw, logger: logger.With("component", "registry")}
}

// SetPrimary installs a new primary series and drops every overlay. No
// redraw is signalled; the caller re-creates the chart for a new primary.
func (r *Registry) SetPrimary(series model.CanonicalSeries, title, dateCode string) {
	r.labels = append([]string(nil), series.Labels...)
	r.primary = series.Values()
	r.title = title
	r.dateCode = dateCode
	r.loaded = true
	r.overlays = nil
}

// HasPrimary reports whether a primary series is installed.
func (r *Registry) HasPrimary() bool {
	return r.loaded
}

// Len returns the primary series length, which every overlay matches.
func (r *Registry) Len() int {
	return len(r.primary)
}

// Primary returns a copy of the primary values.
func (r *Registry) Primary() []float64 {
	return append([]float64(nil), r.primary...)
}

// DateCode returns the date code of the loaded primary series.
func (r *Registry) DateCode() string {
	return r.dateCode
}

// AddDataset appends an overlay aligned to the primary length. An empty
// label becomes "Series N"; an empty color is picked by hue rotation.
// Existing labels must be removed first.
func (r *Registry) AddDataset(label string, values []float64, color string) error {
	if !r.loaded {
		return ErrNoPrimary
	}
	idx := len(r.overlays) + 1
	if label == "" {
		label = fmt.Sprintf("Series %d", idx+1)
	}
	if r.Has(label) {
		return fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
	}
	if color == "" {
		color = HueColor(idx)
	}

	r.overlays = append(r.overlays, model.Dataset{
		Label: label,
		Data:  Align(values, len(r.primary)),
		Color: color,
	})
	r.signal()
	return nil
}

// RemoveDatasetByLabel drops the overlay with exactly this label. It reports
// whether anything was removed; an absent label is logged and ignored.
func (r *Registry) RemoveDatasetByLabel(label string) bool {
	for i, d := range r.overlays {
		if d.Label == label {
			r.overlays = append(r.overlays[:i:i], r.overlays[i+1:]...)
			r.signal()
			return true
		}
	}
	r.logger.Debug("remove: label not present", "label", label)
	return false
}

// ClearExtraDatasets removes every overlay and keeps the primary.
func (r *Registry) ClearExtraDatasets() {
	r.overlays = nil
	r.signal()
}

// ReplacePrimaryData swaps the primary values, keeping labels. values is
// padded or truncated to the current length.
func (r *Registry) ReplacePrimaryData(values []float64) error {
	if !r.loaded {
		return ErrNoPrimary
	}
	r.primary = Align(values, len(r.labels))
	r.signal()
	return nil
}

// Has reports whether an overlay with label exists.
func (r *Registry) Has(label string) bool {
	for _, d := range r.overlays {
		if d.Label == label {
			return true
		}
	}
	return false
}

// Overlays returns copies of the overlays in legend order.
func (r *Registry) Overlays() []model.Dataset {
	out := make([]model.Dataset, len(r.overlays))
	for i, d := range r.overlays {
		d.Data = append([]float64(nil), d.Data...)
		out[i] = d
	}
	return out
}

// ChartData snapshots the registry for a renderer, primary first.
func (r *Registry) ChartData() model.ChartData {
	if !r.loaded {
		return model.ChartData{}
	}
	datasets := make([]model.Dataset, 0, len(r.overlays)+1)
	datasets = append(datasets, model.Dataset{
		Label: model.PrimaryLabel,
		Data:  r.Primary(),
		Color: model.PrimaryColor,
	})
	datasets = append(datasets, r.Overlays()...)

	// The axis follows the primary series; overlays may be clipped
	return model.ChartData{
		Title:    r.title,
		DateCode: r.dateCode,
		Labels:   append([]string(nil), r.labels...),
		Datasets: datasets,
		YAxis:    overlay.YRange(datasets[0].Data),
	}
}

func (r *Registry) signal() {
	if r.redraw == nil {
		return
	}
	if err := r.redraw.Update(r.ChartData()); err != nil {
		r.logger.Warn("redraw failed", "error", err)
	}
}

// Align pads values with trailing NaN or truncates them to n entries.
// Non-finite entries become NaN.
func Align(values []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i < len(values) && model.IsFinite(values[i]) {
			out[i] = values[i]
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// HueColor returns a distinct color for the dataset at position idx.
func HueColor(idx int) string {
	return fmt.Sprintf("hsl(%d 70%% 55%%)", (idx*47)%360)
}
