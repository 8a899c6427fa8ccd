package client

import (
	"encoding/json"
	"errors"
	"testing"
)

func unmarshal(body string, out interface{}) error {
	return json.Unmarshal([]byte(body), out)
}

func TestDecodeEstimateBareNumber(t *testing.T) {
	got, err := decodeEstimate([]byte(`15.5`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "15.5" {
		t.Fatalf("got %s want 15.5", got.String())
	}
}

func TestDecodeEstimateNumericString(t *testing.T) {
	got, err := decodeEstimate([]byte(`"0.0032"`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "0.0032" {
		t.Fatalf("got %s want 0.0032", got.String())
	}
}

func TestDecodeEstimateWrappedFields(t *testing.T) {
	cases := []string{
		`{"estimated_amount": 15.5}`,
		`{"result": 15.5}`,
		`{"estimated": 15.5}`,
		`{"estimated_amount": "15.5"}`,
	}
	for _, body := range cases {
		got, err := decodeEstimate([]byte(body))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", body, err)
		}
		if got.String() != "15.5" {
			t.Fatalf("%s: got %s want 15.5", body, got.String())
		}
	}
}

func TestDecodeEstimateFieldPreference(t *testing.T) {
	// estimated_amount wins over the fallback field names
	got, err := decodeEstimate([]byte(`{"result": 1, "estimated_amount": 2}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "2" {
		t.Fatalf("got %s want 2", got.String())
	}
}

func TestDecodeEstimateInvalidShapes(t *testing.T) {
	cases := []string{
		`{"amount": 15.5}`,
		`"not a number"`,
		`[15.5]`,
		`true`,
		`{}`,
		`{"estimated_amount": null}`,
		`not json at all`,
	}
	for _, body := range cases {
		if _, err := decodeEstimate([]byte(body)); !errors.Is(err, ErrInvalidShape) {
			t.Fatalf("%s: got %v want ErrInvalidShape", body, err)
		}
	}
}

func TestFlexDecimal(t *testing.T) {
	var payload struct {
		Min flexDecimal `json:"min"`
		Max flexDecimal `json:"max"`
	}

	if err := unmarshal(`{"min": "0.001", "max": null}`, &payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Min.Value == nil || payload.Min.Value.String() != "0.001" {
		t.Fatalf("min = %v want 0.001", payload.Min.Value)
	}
	if payload.Max.Value != nil {
		t.Fatalf("max = %v want nil", payload.Max.Value)
	}

	if err := unmarshal(`{"min": 2.5}`, &payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Min.Value == nil || payload.Min.Value.String() != "2.5" {
		t.Fatalf("min = %v want 2.5", payload.Min.Value)
	}

	if err := unmarshal(`{"min": "garbage"}`, &payload); err == nil {
		t.Fatal("expected an error for a non-numeric string")
	}
}
