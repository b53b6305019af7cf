package models

import (
	"encoding/json"
	"testing"
)

func TestJSONValueScan(t *testing.T) {
	var v JSONValue
	if err := v.Scan([]byte(`{"storeName":"Kopi Pos"}`)); err != nil {
		t.Fatalf("Scan bytes: %v", err)
	}
	if string(v) != `{"storeName":"Kopi Pos"}` {
		t.Errorf("scanned value = %s", v)
	}

	if err := v.Scan(`[1,2,3]`); err != nil {
		t.Fatalf("Scan string: %v", err)
	}
	if string(v) != `[1,2,3]` {
		t.Errorf("scanned value = %s", v)
	}

	if err := v.Scan(nil); err != nil {
		t.Fatalf("Scan nil: %v", err)
	}
	if v != nil {
		t.Errorf("nil scan should clear the value, got %s", v)
	}

	if err := v.Scan(42); err == nil {
		t.Error("expected error scanning unsupported type")
	}
}

func TestJSONValueValue(t *testing.T) {
	var empty JSONValue
	got, err := empty.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if got != "null" {
		t.Errorf("empty value = %v, want null", got)
	}

	v := JSONValue(`{"taxRate":0.1}`)
	got, err = v.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if got != `{"taxRate":0.1}` {
		t.Errorf("value = %v", got)
	}
}

func TestJSONValueJSONRoundTrip(t *testing.T) {
	s := Setting{Key: "receipt", Value: JSONValue(`{"footer":"Terima kasih"}`)}

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded Setting
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Key != "receipt" {
		t.Errorf("key = %s", decoded.Key)
	}
	if string(decoded.Value) != `{"footer":"Terima kasih"}` {
		t.Errorf("value = %s", decoded.Value)
	}

	var nilMarshal = Setting{Key: "empty"}
	raw, err = json.Marshal(nilMarshal)
	if err != nil {
		t.Fatalf("Marshal empty: %v", err)
	}
	var check map[string]json.RawMessage
	if err := json.Unmarshal(raw, &check); err != nil {
		t.Fatalf("Unmarshal map: %v", err)
	}
	if string(check["value"]) != "null" {
		t.Errorf("empty value marshals to %s, want null", check["value"])
	}
}
