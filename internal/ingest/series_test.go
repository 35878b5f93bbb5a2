package ingest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotchart/internal/model"
)

func TestBuild_EmptyInputYieldsDemoDay(t *testing.T) {
	s := Build(nil, Schema{})

	require.Equal(t, model.IntervalsPerDay, s.Len())
	require.Len(t, s.Labels, model.IntervalsPerDay)
	assert.Equal(t, "00:00", s.Labels[0])
	assert.Equal(t, "00:15", s.Labels[1])
	assert.Equal(t, "23:45", s.Labels[95])

	for i := 1; i < len(s.Labels); i++ {
		assert.Less(t, s.Labels[i-1], s.Labels[i], "labels must increase")
	}
	for i, iv := range s.Intervals {
		assert.Equal(t, i+1, iv.Position)
	}
	assert.Equal(t, 30.0, s.Intervals[0].Price)
	assert.Equal(t, 38.0, s.Intervals[24].Price)
	assert.Equal(t, 22.0, s.Intervals[72].Price)
	assert.False(t, s.AllNaN())
}

func TestBuild_Deterministic(t *testing.T) {
	assert.Equal(t, Build(nil, Schema{}), Build([]model.RawRecord{}, Schema{}))
}

func TestBuild_PrimaryRecords(t *testing.T) {
	records := []model.RawRecord{
		{"position": float64(1), "preis": "10,0"},
		{"position": float64(2), "preis": "12,0"},
	}
	s := Build(records, DetectSchema(records))

	assert.Equal(t, []float64{10, 12}, s.Values())
	assert.Equal(t, []string{"00:00", "00:15"}, s.Labels)
}

func TestBuild_PositionFallback(t *testing.T) {
	records := []model.RawRecord{
		{"position": nil, "price": 1},
		{"position": "abc", "price": 2},
		{"position": float64(0), "price": 3},
		{"position": 8.7, "price": 4},
		{"position": "9", "price": 5},
	}
	s := Build(records, DetectSchema(records))

	assert.Equal(t, 1, s.Intervals[0].Position)
	assert.Equal(t, 2, s.Intervals[1].Position)
	assert.Equal(t, 3, s.Intervals[2].Position)
	assert.Equal(t, 8, s.Intervals[3].Position)
	assert.Equal(t, 9, s.Intervals[4].Position)
	assert.Equal(t, "01:45", s.Labels[3])
	assert.Equal(t, "02:00", s.Labels[4])
}

func TestBuild_NoPositionField(t *testing.T) {
	records := []model.RawRecord{{"price": 1}, {"price": 2}, {"price": 3}}
	s := Build(records, DetectSchema(records))

	assert.Equal(t, []string{"00:00", "00:15", "00:30"}, s.Labels)
}

func TestBuild_PriceFallbackKeys(t *testing.T) {
	records := []model.RawRecord{
		{"Price": 1.5},
		{"Price": nil, "value": "2,5"},
		{"Preis": "3"},
		{"nothing": 1},
		{"Price": nil},
	}
	s := Build(records, DetectSchema(records))
	vals := s.Values()

	assert.Equal(t, 1.5, vals[0])
	assert.Equal(t, 2.5, vals[1])
	assert.Equal(t, 3.0, vals[2])
	assert.True(t, math.IsNaN(vals[3]))
	assert.True(t, math.IsNaN(vals[4]))
}

func TestBuild_AllNaNDetectable(t *testing.T) {
	records := []model.RawRecord{{"foo": 1, "bar": "x"}, {"foo": 2}}
	s := Build(records, DetectSchema(records))

	require.Equal(t, 2, s.Len())
	assert.True(t, s.AllNaN())

	err := CheckSeries(records, s)
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"bar", "foo"}, se.Keys)
	assert.Contains(t, err.Error(), "bar, foo")
}

func TestCheckSeries_OK(t *testing.T) {
	assert.NoError(t, CheckSeries(nil, Build(nil, Schema{})))

	records := []model.RawRecord{{"price": nil}, {"price": 1}}
	assert.NoError(t, CheckSeries(records, Build(records, DetectSchema(records))))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "00:00", Label(1))
	assert.Equal(t, "01:00", Label(5))
	assert.Equal(t, "12:45", Label(52))
	assert.Equal(t, "24:00", Label(97))
}
