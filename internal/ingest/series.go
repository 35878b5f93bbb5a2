package ingest

import (
	"fmt"
	"math"

	"spotchart/internal/model"
)

// Build converts backend records into a canonical series. An empty input
// yields the demo day so the chart is never blank. Build never fails; a
// series whose prices are all NaN is detectable with AllNaN.
func Build(records []model.RawRecord, schema Schema) model.CanonicalSeries {
	if len(records) == 0 {
		return DemoSeries(model.IntervalsPerDay)
	}

	s := model.CanonicalSeries{
		Intervals: make([]model.PriceInterval, len(records)),
		Labels:    make([]string, len(records)),
	}
	for idx, rec := range records {
		pos := resolvePosition(rec, schema.PositionField, idx)
		s.Intervals[idx] = model.PriceInterval{
			Position: pos,
			Price:    resolvePrice(rec, schema.PriceField),
		}
		s.Labels[idx] = Label(pos)
	}
	return s
}

// DemoSeries returns a deterministic sine-shaped day of n intervals.
func DemoSeries(n int) model.CanonicalSeries {
	s := model.CanonicalSeries{
		Intervals: make([]model.PriceInterval, n),
		Labels:    make([]string, n),
	}
	for i := 0; i < n; i++ {
		price := 30 + 8*math.Sin(float64(i)/float64(model.IntervalsPerDay)*2*math.Pi)
		s.Intervals[i] = model.PriceInterval{Position: i + 1, Price: math.Round(price*100) / 100}
		s.Labels[i] = Label(i + 1)
	}
	return s
}

// Label formats a 1-based position as the "HH:MM" start of its 15-minute slot.
func Label(position int) string {
	zero := position - 1
	hour := zero / 4
	minute := (zero % 4) * 15
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func resolvePosition(rec model.RawRecord, field string, idx int) int {
	if field == "" {
		return idx + 1
	}
	v, ok := rec[field]
	if !ok || v == nil {
		return idx + 1
	}
	n := CoerceNumber(v)
	if !model.IsFinite(n) || n < 1 {
		return idx + 1
	}
	return int(math.Floor(n))
}

func resolvePrice(rec model.RawRecord, field string) float64 {
	if field != "" {
		if v, ok := rec[field]; ok && v != nil {
			return CoercePrice(v)
		}
	}
	key, ok := PriceFallbackKeys.Resolve(rec)
	if !ok {
		return math.NaN()
	}
	v := rec[key]
	if v == nil {
		return math.NaN()
	}
	return CoercePrice(v)
}
