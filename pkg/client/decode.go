package client

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Field names under which the provider has been observed to wrap an
// estimate value, in preference order.
var estimateFields = []string{"estimated_amount", "result", "estimated"}

// decodeEstimate normalizes the estimate endpoint's response into a
// single decimal. The provider may return a bare number, a numeric
// string, or an object exposing the value under one of several field
// names. Anything else is an invalid-shape error.
func decodeEstimate(data []byte) (decimal.Decimal, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload interface{}
	if err := dec.Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidShape, truncate(data))
	}

	switch v := payload.(type) {
	case json.Number:
		return parseDecimal(v.String())
	case string:
		return parseDecimal(v)
	case map[string]interface{}:
		for _, field := range estimateFields {
			raw, ok := v[field]
			if !ok {
				continue
			}
			switch inner := raw.(type) {
			case json.Number:
				return parseDecimal(inner.String())
			case string:
				return parseDecimal(inner)
			}
		}
	}

	return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidShape, truncate(data))
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidShape, s)
	}
	return d, nil
}

// flexDecimal unmarshals a value that may arrive as a JSON number,
// a numeric string, or null.
type flexDecimal struct {
	Value *decimal.Decimal
}

func (f *flexDecimal) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		f.Value = nil
		return nil
	}

	var s string
	if trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
	} else {
		s = string(trimmed)
	}

	if s == "" {
		f.Value = nil
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", ErrInvalidShape, s)
	}
	f.Value = &d
	return nil
}

func truncate(data []byte) string {
	const limit = 120
	if len(data) > limit {
		return string(data[:limit]) + "..."
	}
	return string(data)
}
