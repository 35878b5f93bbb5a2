package model

import (
	"encoding/json"
	"math"
)

// IntervalsPerDay is the number of 15-minute slots in one canonical day.
const IntervalsPerDay = 96

// PrimaryLabel is the legend label of the primary price dataset.
const PrimaryLabel = "Strompreise"

// PrimaryColor is the stroke color of the primary price dataset.
const PrimaryColor = "rgba(75, 192, 192, 1)"

// RawRecord is one backend record as decoded from JSON. Keys and value types
// are whatever the backend sends.
type RawRecord map[string]any

// Keys returns the record's keys. Order is not significant.
func (r RawRecord) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	return keys
}

// PriceInterval is one 15-minute slot. Price is NaN when the backend value
// was missing or unparsable.
type PriceInterval struct {
	Position int
	Price    float64
}

// CanonicalSeries is the primary price sequence for one day together with
// its "HH:MM" labels. Intervals and Labels always have the same length.
type CanonicalSeries struct {
	Intervals []PriceInterval
	Labels    []string
}

// Len returns the number of intervals.
func (s CanonicalSeries) Len() int {
	return len(s.Intervals)
}

// Values returns the prices in interval order.
func (s CanonicalSeries) Values() []float64 {
	out := make([]float64, len(s.Intervals))
	for i, iv := range s.Intervals {
		out[i] = iv.Price
	}
	return out
}

// FiniteCount returns how many intervals carry a finite price.
func (s CanonicalSeries) FiniteCount() int {
	n := 0
	for _, iv := range s.Intervals {
		if IsFinite(iv.Price) {
			n++
		}
	}
	return n
}

// AllNaN reports whether no interval carries a finite price.
func (s CanonicalSeries) AllNaN() bool {
	return s.FiniteCount() == 0
}

// OverlaySeries is a secondary dataset plotted on top of the primary.
type OverlaySeries struct {
	Label  string
	Values []float64
	Color  string
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Dataset is one line handed to a renderer.
type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
	Color string    `json:"color"`
}

// MarshalJSON encodes non-finite values as null so chart libraries draw gaps.
func (d Dataset) MarshalJSON() ([]byte, error) {
	data := make([]*float64, len(d.Data))
	for i := range d.Data {
		if IsFinite(d.Data[i]) {
			v := d.Data[i]
			data[i] = &v
		}
	}
	return json.Marshal(struct {
		Label string     `json:"label"`
		Data  []*float64 `json:"data"`
		Color string     `json:"color"`
	}{d.Label, data, d.Color})
}

// UnmarshalJSON decodes null entries back to NaN.
func (d *Dataset) UnmarshalJSON(b []byte) error {
	var raw struct {
		Label string     `json:"label"`
		Data  []*float64 `json:"data"`
		Color string     `json:"color"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d.Label = raw.Label
	d.Color = raw.Color
	d.Data = make([]float64, len(raw.Data))
	for i, p := range raw.Data {
		if p == nil {
			d.Data[i] = math.NaN()
			continue
		}
		d.Data[i] = *p
	}
	return nil
}

// AxisRange bounds the y axis.
type AxisRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ChartData is the rendering collaborator's input: labels plus datasets in
// legend order, primary first.
type ChartData struct {
	Title    string    `json:"title,omitempty"`
	DateCode string    `json:"date_code,omitempty"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
	YAxis    AxisRange `json:"y_axis"`
}

// Empty reports whether there is nothing to draw.
func (c ChartData) Empty() bool {
	return len(c.Labels) == 0
}
