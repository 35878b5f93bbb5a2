package overlay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func assertSeries(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(got[i]), "index %d: want NaN, got %v", i, got[i])
			continue
		}
		assert.InDelta(t, want[i], got[i], 1e-9, "index %d", i)
	}
}

func TestMovingAverage_WindowOneIsIdentity(t *testing.T) {
	in := []float64{1, nan, 3, -4.5, 0}
	assertSeries(t, in, MovingAverage(in, 1))
}

func TestMovingAverage_Centered(t *testing.T) {
	in := []float64{1, 2, 3, 4, 5}
	// window 3: [1,2] [1,2,3] [2,3,4] [3,4,5] [4,5]
	assertSeries(t, []float64{1.5, 2, 3, 4, 4.5}, MovingAverage(in, 3))
}

func TestMovingAverage_SkipsNaN(t *testing.T) {
	in := []float64{nan, nan, 6, nan, nan, nan, nan}
	got := MovingAverage(in, 3)
	assertSeries(t, []float64{nan, 6, 6, 6, nan, nan, nan}, got)
}

func TestMovingAverage_WindowNine(t *testing.T) {
	in := make([]float64, 96)
	for i := range in {
		in[i] = 10
	}
	in[50] = nan
	got := MovingAverage(in, 9)
	require.Len(t, got, 96)
	for i, v := range got {
		assert.InDelta(t, 10, v, 1e-9, "index %d", i)
	}
}

func TestMovingAverage_Empty(t *testing.T) {
	assert.Empty(t, MovingAverage(nil, 9))
}

func TestCircularShift(t *testing.T) {
	in := []float64{1, 2, 3, 4}
	assertSeries(t, []float64{nan, 1, 2, 3}, CircularShift(in, 1))
	assertSeries(t, []float64{3, 4, nan, nan}, CircularShift(in, -2))
	assertSeries(t, in, CircularShift(in, 0))
}

func TestCircularShift_FullLengthIsAllNaN(t *testing.T) {
	in := make([]float64, 96)
	for i := range in {
		in[i] = float64(i)
	}
	got := CircularShift(in, 96)
	require.Len(t, got, 96)
	for i, v := range got {
		assert.True(t, math.IsNaN(v), "index %d", i)
	}

	assertSeries(t, []float64{nan, nan}, CircularShift([]float64{10, 12}, 96))
}

func TestYRange(t *testing.T) {
	r := YRange([]float64{10, nan, 20}, []float64{0})
	assert.Equal(t, float64(AxisFloor), r.Min)
	assert.InDelta(t, 22.4, r.Max, 1e-9)
}

func TestYRange_Flat(t *testing.T) {
	assert.InDelta(t, 11, YRange([]float64{10, 10}).Max, 1e-9)
	assert.InDelta(t, 1, YRange([]float64{0}).Max, 1e-9)
	assert.InDelta(t, -9, YRange([]float64{-10}).Max, 1e-9)
}

func TestYRange_NoFiniteValues(t *testing.T) {
	r := YRange([]float64{nan}, nil)
	assert.Equal(t, float64(AxisFloor), r.Min)
	assert.Equal(t, 1.0, r.Max)
}
