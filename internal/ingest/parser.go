package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"spotchart/internal/model"
)

// Payload is a decoded backend response body.
type Payload struct {
	// Records holds the array elements. Elements that are not JSON objects
	// become empty records so positions still line up.
	Records []model.RawRecord
	// IsArray is false when the body was a JSON value other than an array.
	IsArray bool
	// ErrorMessage is set when the body was an object with an "error" field.
	ErrorMessage string
}

// Parser decodes backend response bodies.
type Parser interface {
	Parse(r io.Reader) (Payload, error)
}

// JSONParser decodes the JSON shapes served by the price backend: an array of
// records or an {"error": "..."} object.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader) (Payload, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return Payload{}, fmt.Errorf("reading body: %w", err)
	}
	return p.ParseBytes(body)
}

// ParseBytes decodes an already buffered body.
func (p *JSONParser) ParseBytes(body []byte) (Payload, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&raw); err != nil {
		return Payload{}, fmt.Errorf("decoding JSON: %w", err)
	}

	switch v := raw.(type) {
	case []any:
		records := make([]model.RawRecord, len(v))
		for i, elem := range v {
			if obj, ok := elem.(map[string]any); ok {
				records[i] = model.RawRecord(obj)
			} else {
				records[i] = model.RawRecord{}
			}
		}
		return Payload{Records: records, IsArray: true}, nil
	case map[string]any:
		if msg := v["error"]; truthy(msg) {
			return Payload{ErrorMessage: fmt.Sprint(msg)}, nil
		}
		return Payload{}, nil
	default:
		return Payload{}, nil
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	default:
		return true
	}
}
