package ingest

import "spotchart/internal/model"

// FieldPriority is an ordered list of candidate key names for one field.
// The first candidate present in a record wins.
type FieldPriority []string

// Priority tables for the backend naming schemes seen so far.
var (
	// PriceCandidates is used by the schema detection pass over a sample record.
	PriceCandidates = FieldPriority{"price", "Price_Amount", "Price", "value", "price_amount", "PriceAmount", "preis", "Preis"}
	// PositionCandidates is used by the schema detection pass over a sample record.
	PositionCandidates = FieldPriority{"position", "Position", "pos", "index", "zeit", "time_index"}
	// PriceFallbackKeys is tried per record when the detected key is missing or null.
	PriceFallbackKeys = FieldPriority{"price", "Price_Amount", "value", "preis", "Preis"}
	// OverlayPriceKeys maps overlay records to values.
	OverlayPriceKeys = FieldPriority{"preis", "Price_Amount", "value"}
)

// Resolve returns the first candidate that exists as a key in rec. Matching
// is exact and case-sensitive. ok is false when nothing matched.
func (p FieldPriority) Resolve(rec model.RawRecord) (key string, ok bool) {
	if rec == nil {
		return "", false
	}
	for _, c := range p {
		if _, exists := rec[c]; exists {
			return c, true
		}
	}
	return "", false
}

// ResolveNonNull is like Resolve but skips keys whose value is null.
func (p FieldPriority) ResolveNonNull(rec model.RawRecord) (key string, ok bool) {
	for _, c := range p {
		if v, exists := rec[c]; exists && v != nil {
			return c, true
		}
	}
	return "", false
}

// Schema names the record fields that supply position and price. Empty
// strings mean the field could not be resolved.
type Schema struct {
	PositionField string
	PriceField    string
}

// DetectSchema resolves position and price fields from the first record.
func DetectSchema(records []model.RawRecord) Schema {
	if len(records) == 0 {
		return Schema{}
	}
	sample := records[0]
	pos, _ := PositionCandidates.Resolve(sample)
	price, _ := PriceCandidates.Resolve(sample)
	return Schema{PositionField: pos, PriceField: price}
}
