package transport

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// fieldError reports a value that could not be coerced to the field's type
type fieldError struct {
	Field   string
	Message string
}

func (e *fieldError) Error() string {
	return e.Field + " " + e.Message
}

// isAbsent reports whether a raw JSON value is missing, null or an empty string
func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`))
}

// rawNumber extracts the numeral held by raw, which may be a JSON number or
// a JSON string containing one.
func rawNumber(raw json.RawMessage) (string, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), true
	}
	return "", false
}

// coerceNumber converts raw into a float. Absent values yield nil.
func coerceNumber(field string, raw json.RawMessage) (*float64, error) {
	if isAbsent(raw) {
		return nil, nil
	}

	numeral, ok := rawNumber(raw)
	if !ok {
		return nil, &fieldError{Field: field, Message: "must be a number"}
	}

	f, err := strconv.ParseFloat(numeral, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &fieldError{Field: field, Message: "must be a number"}
	}
	return &f, nil
}

// coerceInteger converts raw into an int. Numbers with a fractional part are
// rejected. Absent values yield nil.
func coerceInteger(field string, raw json.RawMessage) (*int, error) {
	f, err := coerceNumber(field, raw)
	if err != nil {
		return nil, &fieldError{Field: field, Message: "must be an integer"}
	}
	if f == nil {
		return nil, nil
	}

	if *f != math.Trunc(*f) || *f > math.MaxInt32 || *f < math.MinInt32 {
		return nil, &fieldError{Field: field, Message: "must be an integer"}
	}
	i := int(*f)
	return &i, nil
}

// bookPayload is the loosely typed body accepted by create and update.
// Numeric fields stay raw until coerced.
type bookPayload struct {
	Title         *string         `json:"title"`
	Author        *string         `json:"author"`
	Genre         *string         `json:"genre"`
	Price         json.RawMessage `json:"price"`
	Stock         json.RawMessage `json:"stock"`
	PublishedYear json.RawMessage `json:"publishedYear"`
}

// coercedNumbers holds the numeric fields of a payload after coercion
type coercedNumbers struct {
	Price         *float64
	Stock         *int
	PublishedYear *int
}

func (p bookPayload) numbers() (coercedNumbers, error) {
	var out coercedNumbers
	var err error

	if out.Price, err = coerceNumber("price", p.Price); err != nil {
		return out, err
	}
	if out.Stock, err = coerceInteger("stock", p.Stock); err != nil {
		return out, err
	}
	if out.PublishedYear, err = coerceInteger("publishedYear", p.PublishedYear); err != nil {
		return out, err
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
