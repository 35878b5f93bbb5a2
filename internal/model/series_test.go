package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalSeries_Values(t *testing.T) {
	s := CanonicalSeries{
		Intervals: []PriceInterval{{Position: 1, Price: 10}, {Position: 2, Price: math.NaN()}},
		Labels:    []string{"00:00", "00:15"},
	}

	vals := s.Values()
	require.Len(t, vals, 2)
	assert.Equal(t, 10.0, vals[0])
	assert.True(t, math.IsNaN(vals[1]))
	assert.Equal(t, 1, s.FiniteCount())
	assert.False(t, s.AllNaN())
}

func TestCanonicalSeries_AllNaN(t *testing.T) {
	s := CanonicalSeries{
		Intervals: []PriceInterval{{Position: 1, Price: math.NaN()}, {Position: 2, Price: math.Inf(1)}},
		Labels:    []string{"00:00", "00:15"},
	}
	assert.True(t, s.AllNaN())
	assert.True(t, CanonicalSeries{}.AllNaN())
}

func TestDataset_JSONNullForNaN(t *testing.T) {
	ds := Dataset{Label: "Vorjahr", Data: []float64{1.5, math.NaN(), math.Inf(-1)}, Color: "red"}

	b, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"Vorjahr","data":[1.5,null,null],"color":"red"}`, string(b))

	var back Dataset
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, "Vorjahr", back.Label)
	require.Len(t, back.Data, 3)
	assert.Equal(t, 1.5, back.Data[0])
	assert.True(t, math.IsNaN(back.Data[1]))
}

func TestChartData_MarshalsDatasets(t *testing.T) {
	cd := ChartData{
		Labels:   []string{"00:00"},
		Datasets: []Dataset{{Label: PrimaryLabel, Data: []float64{math.NaN()}, Color: PrimaryColor}},
	}
	b, err := json.Marshal(cd)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"data":[null]`)
	assert.False(t, cd.Empty())
	assert.True(t, ChartData{}.Empty())
}

func TestOverlayCatalog_Complete(t *testing.T) {
	labels := make(map[string]bool)
	for _, kind := range OverlayOrder {
		info, ok := LookupOverlay(kind)
		require.True(t, ok, "missing catalog entry for %s", kind)
		assert.NotEmpty(t, info.Endpoint)
		assert.False(t, labels[info.Label], "duplicate label %q", info.Label)
		labels[info.Label] = true
	}
	assert.Len(t, OverlayCatalog, len(OverlayOrder))
}

func TestOverlayCatalog_Fallbacks(t *testing.T) {
	assert.Equal(t, FallbackShift, OverlayCatalog[OverlayComparison].Fallback)
	assert.Equal(t, FallbackShift, OverlayCatalog[OverlayLastYear].Fallback)
	assert.Equal(t, FallbackMovingAverage, OverlayCatalog[OverlayDayAverage].Fallback)
	assert.Equal(t, FallbackMovingAverage, OverlayCatalog[OverlayAvgOnDate].Fallback)
	assert.Equal(t, FallbackMovingAverage, OverlayCatalog[OverlayWorkweekPosition].Fallback)
	assert.Equal(t, FallbackMovingAverage, OverlayCatalog[OverlayWorkweekAverage].Fallback)
}
