package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"spotchart/internal/model"
)

func TestFieldPriority_Resolve(t *testing.T) {
	tests := []struct {
		name   string
		prio   FieldPriority
		rec    model.RawRecord
		want   string
		wantOK bool
	}{
		{"first wins", FieldPriority{"a", "b"}, model.RawRecord{"b": 1, "a": 2}, "a", true},
		{"second when first missing", FieldPriority{"a", "b"}, model.RawRecord{"b": 1}, "b", true},
		{"case sensitive", FieldPriority{"preis"}, model.RawRecord{"Preis": 1}, "", false},
		{"null value still present", FieldPriority{"a", "b"}, model.RawRecord{"a": nil, "b": 1}, "a", true},
		{"empty record", FieldPriority{"a"}, model.RawRecord{}, "", false},
		{"nil record", FieldPriority{"a"}, nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.prio.Resolve(tt.rec)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestFieldPriority_ResolveNonNull(t *testing.T) {
	key, ok := OverlayPriceKeys.ResolveNonNull(model.RawRecord{"preis": nil, "Price_Amount": nil, "value": 3})
	assert.True(t, ok)
	assert.Equal(t, "value", key)

	_, ok = OverlayPriceKeys.ResolveNonNull(model.RawRecord{"preis": nil})
	assert.False(t, ok)
}

func TestPriorityTables(t *testing.T) {
	assert.Equal(t, FieldPriority{"price", "Price_Amount", "value", "preis", "Preis"}, PriceFallbackKeys)
	assert.Equal(t, FieldPriority{"preis", "Price_Amount", "value"}, OverlayPriceKeys)
	assert.Equal(t, "position", PositionCandidates[0])
	assert.Equal(t, "price", PriceCandidates[0])
}

func TestDetectSchema(t *testing.T) {
	records := []model.RawRecord{
		{"Position": 1, "Price_Amount": 4.2, "preis": "9"},
		{"position": 2, "price": 1},
	}
	s := DetectSchema(records)
	assert.Equal(t, "Position", s.PositionField)
	assert.Equal(t, "Price_Amount", s.PriceField)

	assert.Equal(t, Schema{}, DetectSchema(nil))
	assert.Equal(t, Schema{}, DetectSchema([]model.RawRecord{{"foo": 1}}))
}
