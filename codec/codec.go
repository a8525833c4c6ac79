// Package codec serializes structured preference payloads to and from the
// single opaque value string stored on a preference instance. Decoding is
// shape specific and tolerant of missing sub-fields; only a document that
// cannot be parsed at all is an error.
package codec

import (
	"bytes"
	"encoding/json"

	"github.com/goliatone/go-prefgraph/pkg/types"
)

// Filter is one column/value predicate stored inside a grid payload.
type Filter struct {
	ColumnName string `json:"columnName"`
	Value      any    `json:"value"`
}

// GridValue is the decomposed grid-shaped payload.
type GridValue struct {
	OrderColumns  []string `json:"orderColumns"`
	HideColumns   []string `json:"hideColumns"`
	FreezeColumns []string `json:"freezeColumns"`
	UDFColumns    []string `json:"udfColumns"`
	Filters       []Filter `json:"filters"`
}

// FormValue is the decomposed form-shaped payload.
type FormValue struct {
	UDFs []string `json:"udfs"`
}

// Encode marshals the payload the shape adapter supplied. No schema is
// enforced on write; extraction validates on read.
func Encode(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Columns extracts an ordered string collection stored under field. A field
// that is absent or null yields an empty slice.
func Columns(value, field string) ([]string, error) {
	raw, err := extract(value, field)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []string{}, nil
	}
	var columns []string
	if err := json.Unmarshal(raw, &columns); err != nil {
		return nil, types.NewMalformedPreferenceError(field, err)
	}
	if columns == nil {
		columns = []string{}
	}
	return columns, nil
}

// Filters extracts the filter predicates stored under "filters".
func Filters(value string) ([]Filter, error) {
	raw, err := extract(value, "filters")
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []Filter{}, nil
	}
	var filters []Filter
	if err := json.Unmarshal(raw, &filters); err != nil {
		return nil, types.NewMalformedPreferenceError("filters", err)
	}
	if filters == nil {
		filters = []Filter{}
	}
	return filters, nil
}

// DecodeGrid decomposes a stored value into the grid sub-collections.
func DecodeGrid(value string) (GridValue, error) {
	grid := GridValue{}
	var err error
	if grid.OrderColumns, err = Columns(value, "orderColumns"); err != nil {
		return GridValue{}, err
	}
	if grid.HideColumns, err = Columns(value, "hideColumns"); err != nil {
		return GridValue{}, err
	}
	if grid.FreezeColumns, err = Columns(value, "freezeColumns"); err != nil {
		return GridValue{}, err
	}
	if grid.UDFColumns, err = Columns(value, "udfColumns"); err != nil {
		return GridValue{}, err
	}
	if grid.Filters, err = Filters(value); err != nil {
		return GridValue{}, err
	}
	return grid, nil
}

// DecodeForm decomposes a stored value into the form sub-collections.
func DecodeForm(value string) (FormValue, error) {
	udfs, err := Columns(value, "udfs")
	if err != nil {
		return FormValue{}, err
	}
	return FormValue{UDFs: udfs}, nil
}

// extract parses the stored document and returns the raw JSON under field.
// nil means the field was absent or null. A document that is not well formed
// fails with a malformed-preference error naming the field being extracted.
func extract(value, field string) (json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(value), &doc); err != nil {
		return nil, types.NewMalformedPreferenceError(field, err)
	}
	raw, ok := doc[field]
	if !ok || isNull(raw) {
		return nil, nil
	}
	return raw, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
