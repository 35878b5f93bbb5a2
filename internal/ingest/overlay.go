package ingest

import (
	"math"

	"spotchart/internal/model"
)

// OverlayValues maps overlay records to one value per record using the first
// non-null of OverlayPriceKeys. When the first record carries none of those
// keys, the field found by schema detection on it is tried first.
func OverlayValues(records []model.RawRecord) []float64 {
	detected := ""
	if len(records) > 0 {
		if _, ok := OverlayPriceKeys.Resolve(records[0]); !ok {
			detected = DetectSchema(records).PriceField
		}
	}
	out := make([]float64, len(records))
	for i, rec := range records {
		out[i] = overlayValue(rec, detected)
	}
	return out
}

func overlayValue(rec model.RawRecord, detected string) float64 {
	if detected != "" {
		if v := rec[detected]; v != nil {
			return CoercePrice(v)
		}
	}
	key, ok := OverlayPriceKeys.ResolveNonNull(rec)
	if !ok {
		return math.NaN()
	}
	return CoercePrice(rec[key])
}

// AllNaN reports whether values holds no finite entry.
func AllNaN(values []float64) bool {
	for _, v := range values {
		if model.IsFinite(v) {
			return false
		}
	}
	return true
}
