// Package chart owns the chart session and the load and overlay pipelines
// that feed it.
package chart

import (
	"context"
	"log/slog"
	"sync"

	"spotchart/internal/metrics"
	"spotchart/internal/model"
	"spotchart/internal/render"
	"spotchart/internal/store"
)

// Session is one chart: its registry, its renderer and the request
// generations used to drop superseded results. All methods are safe for
// concurrent use.
type Session struct {
	mu       sync.Mutex
	registry *store.Registry
	renderer render.Renderer
	metrics  *metrics.Metrics
	logger   *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once

	primaryGen uint64
	overlayGen map[model.OverlayKind]uint64
	active     map[model.OverlayKind]string // enabled overlays and their own date input
}

// NewSession creates a session drawing through renderer. m may be nil.
func NewSession(renderer render.Renderer, m *metrics.Metrics, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		renderer:   renderer,
		metrics:    m,
		logger:     logger.With("component", "session"),
		ready:      make(chan struct{}),
		overlayGen: make(map[model.OverlayKind]uint64),
		active:     make(map[model.OverlayKind]string),
	}
	s.registry = store.New(updateCounter{s}, logger)
	return s
}

// updateCounter forwards registry redraws to the renderer and counts them.
type updateCounter struct{ s *Session }

func (u updateCounter) Update(data model.ChartData) error {
	u.s.metrics.Redraw("update")
	return u.s.renderer.Update(data)
}

// Ready is closed once the first primary series is installed.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// WaitReady blocks until a primary series exists or ctx is done.
func (s *Session) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BeginPrimary starts a primary load and returns its generation.
func (s *Session) BeginPrimary() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primaryGen++
	return s.primaryGen
}

// CurrentPrimary reports whether gen is the newest primary load.
func (s *Session) CurrentPrimary(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.primaryGen
}

// InstallPrimary replaces the primary series if gen is still current. The
// old chart is destroyed, every overlay is dropped and in-flight overlay
// requests are invalidated. It reports whether the series was installed.
func (s *Session) InstallPrimary(gen uint64, series model.CanonicalSeries, title, dateCode string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.primaryGen {
		s.metrics.Stale("primary")
		s.logger.Info("discarding stale primary", "date", dateCode, "generation", gen, "current", s.primaryGen)
		return false, nil
	}

	if err := s.renderer.Destroy(); err != nil {
		s.logger.Warn("destroying chart failed", "error", err)
	}
	s.metrics.Redraw("destroy")

	s.registry.SetPrimary(series, title, dateCode)
	for kind := range s.overlayGen {
		s.overlayGen[kind]++
	}

	s.metrics.Redraw("draw")
	err := s.renderer.Draw(s.registry.ChartData())
	s.readyOnce.Do(func() { close(s.ready) })
	return true, err
}

// BeginOverlay starts an overlay request and returns its generation.
func (s *Session) BeginOverlay(kind model.OverlayKind) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlayGen[kind]++
	return s.overlayGen[kind]
}

// CommitOverlay stores values under label if gen is still the newest
// request for kind and the overlay is still enabled. An existing dataset
// with the same label is replaced.
func (s *Session) CommitOverlay(kind model.OverlayKind, gen uint64, label string, values []float64, color string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.overlayGen[kind] {
		s.metrics.Stale("overlay")
		s.logger.Info("discarding stale overlay", "overlay", kind, "generation", gen, "current", s.overlayGen[kind])
		return false, nil
	}
	if _, on := s.active[kind]; !on {
		return false, nil
	}
	s.registry.RemoveDatasetByLabel(label)
	if err := s.registry.AddDataset(label, values, color); err != nil {
		return false, err
	}
	return true, nil
}

// Activate marks kind as enabled with its own date input.
func (s *Session) Activate(kind model.OverlayKind, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[kind] = date
}

// Deactivate disables kind, invalidates its in-flight request and removes
// its dataset.
func (s *Session) Deactivate(kind model.OverlayKind, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, kind)
	s.overlayGen[kind]++
	if s.registry.HasPrimary() {
		s.registry.RemoveDatasetByLabel(label)
	}
}

// ClearOverlays disables every overlay and keeps the primary.
func (s *Session) ClearOverlays() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for kind := range s.active {
		s.overlayGen[kind]++
	}
	clear(s.active)
	if s.registry.HasPrimary() {
		s.registry.ClearExtraDatasets()
	}
}

// Active returns the enabled overlays and their date inputs.
func (s *Session) Active() map[model.OverlayKind]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[model.OverlayKind]string, len(s.active))
	for k, v := range s.active {
		out[k] = v
	}
	return out
}

// Primary returns the primary values and date code.
func (s *Session) Primary() (values []float64, dateCode string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.registry.HasPrimary() {
		return nil, "", false
	}
	return s.registry.Primary(), s.registry.DateCode(), true
}

// ChartData snapshots the current chart.
func (s *Session) ChartData() model.ChartData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.ChartData()
}

// Resize forwards a viewport change to the renderer.
func (s *Session) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.Redraw("resize")
	return s.renderer.Resize(width, height)
}
