package ingest

import (
	"fmt"
	"sort"
	"strings"

	"spotchart/internal/model"
)

// SchemaError reports that no record yielded a finite price. Keys lists the
// fields of the first record to help spot a renamed backend column.
type SchemaError struct {
	Keys []string
}

func (e *SchemaError) Error() string {
	if len(e.Keys) == 0 {
		return "no price field found: first record has no keys"
	}
	return fmt.Sprintf("no price field found; available keys: %s", strings.Join(e.Keys, ", "))
}

// NewSchemaError builds a SchemaError from the first record's keys, sorted.
func NewSchemaError(records []model.RawRecord) *SchemaError {
	var keys []string
	if len(records) > 0 {
		keys = records[0].Keys()
		sort.Strings(keys)
	}
	return &SchemaError{Keys: keys}
}

// CheckSeries returns a *SchemaError when records were supplied but none of
// them produced a finite price.
func CheckSeries(records []model.RawRecord, s model.CanonicalSeries) error {
	if len(records) == 0 || !s.AllNaN() {
		return nil
	}
	return NewSchemaError(records)
}
