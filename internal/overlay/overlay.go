// Package overlay derives synthetic comparison series from a price series.
// The results stand in for server overlays when their endpoint fails.
package overlay

import (
	"math"

	"spotchart/internal/model"
)

// MovingAverage returns a centered average over a window of
// [i-w/2, i+w/2] clipped to the series bounds. NaN and infinite entries are
// skipped; an index whose window holds no finite value is NaN.
func MovingAverage(values []float64, window int) []float64 {
	half := window / 2
	if half < 0 {
		half = 0
	}
	out := make([]float64, len(values))
	for i := range values {
		lo := max(i-half, 0)
		hi := min(i+half, len(values)-1)

		var sum float64
		var n int
		for j := lo; j <= hi; j++ {
			if model.IsFinite(values[j]) {
				sum += values[j]
				n++
			}
		}
		if n == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// CircularShift returns out[i] = values[i-shift] where that index exists and
// NaN elsewhere. Values shifted past either edge are dropped, not wrapped.
func CircularShift(values []float64, shift int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		src := i - shift
		if src >= 0 && src < len(values) {
			out[i] = values[src]
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// AxisFloor is the fixed lower bound of the price axis.
const AxisFloor = -50

// YRange computes the value axis for a set of series: the minimum is fixed
// at AxisFloor and the maximum gets 12% headroom above the largest finite
// value. When every finite value is equal, 10% of its magnitude (or 1) is
// used instead.
func YRange(series ...[]float64) model.AxisRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			if !model.IsFinite(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(hi, -1) {
		return model.AxisRange{Min: AxisFloor, Max: 1}
	}

	pad := (hi - lo) * 0.12
	if hi == lo {
		pad = math.Abs(hi) * 0.1
		if pad == 0 {
			pad = 1
		}
	}
	return model.AxisRange{Min: AxisFloor, Max: hi + pad}
}
