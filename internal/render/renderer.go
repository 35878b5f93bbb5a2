// Package render holds the chart rendering contract and its implementations:
// an in-memory snapshot plus PNG, HTML and XLSX exporters.
package render

import (
	"errors"
	"sync"

	"spotchart/internal/model"
)

// ErrNothingToDraw is returned by exporters when no primary series is loaded.
var ErrNothingToDraw = errors.New("nothing to draw")

// Renderer is a chart instance. Destroy must be called before Draw creates a
// new one; Update and Resize are idempotent.
type Renderer interface {
	Draw(data model.ChartData) error
	Update(data model.ChartData) error
	Resize(width, height int) error
	Destroy() error
}

// Axis titles shared by the exporters.
const (
	axisX = "Zeit (15-Minuten-Intervalle)"
	axisY = "Preis (€/MWh)"
)

// Default viewport used until a client reports its size.
const (
	DefaultWidth  = 1200
	DefaultHeight = 600
)

// Snapshot keeps the latest chart state so exporters and late-joining
// clients can read it.
type Snapshot struct {
	mu      sync.RWMutex
	data    model.ChartData
	live    bool
	width   int
	height  int
	version uint64
}

func NewSnapshot() *Snapshot {
	return &Snapshot{width: DefaultWidth, height: DefaultHeight}
}

func (s *Snapshot) Draw(data model.ChartData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.live = true
	s.version++
	return nil
}

func (s *Snapshot) Update(data model.ChartData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.version++
	return nil
}

func (s *Snapshot) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
	return nil
}

func (s *Snapshot) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = model.ChartData{}
	s.live = false
	s.version++
	return nil
}

// Current returns the latest chart state and whether a chart is live.
func (s *Snapshot) Current() (model.ChartData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data, s.live
}

// Size returns the last reported viewport.
func (s *Snapshot) Size() (width, height int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height
}

// Version increases on every draw, update and destroy.
func (s *Snapshot) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Multi fans every call out to all renderers and joins their errors.
type Multi []Renderer

func (m Multi) Draw(data model.ChartData) error {
	return m.each(func(r Renderer) error { return r.Draw(data) })
}

func (m Multi) Update(data model.ChartData) error {
	return m.each(func(r Renderer) error { return r.Update(data) })
}

func (m Multi) Resize(width, height int) error {
	return m.each(func(r Renderer) error { return r.Resize(width, height) })
}

func (m Multi) Destroy() error {
	return m.each(func(r Renderer) error { return r.Destroy() })
}

func (m Multi) each(fn func(Renderer) error) error {
	var errs []error
	for _, r := range m {
		if err := fn(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
