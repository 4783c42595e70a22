package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input   string
		want    Period
		wantErr bool
	}{
		{input: "2024-01", want: Period{Year: 2024, Month: time.January}},
		{input: "1999-12", want: Period{Year: 1999, Month: time.December}},
		{input: "2024-13", wantErr: true},
		{input: "2024/01", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePeriod(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if got.String() != tt.input {
				t.Errorf("expected String() %q, got %q", tt.input, got.String())
			}
		})
	}
}

func TestPeriodIsValid(t *testing.T) {
	if !NewPeriod(2024, time.March).IsValid() {
		t.Error("expected March 2024 to be valid")
	}
	if (Period{Year: 2024, Month: 0}).IsValid() {
		t.Error("month 0 must be invalid")
	}
	if (Period{Year: 0, Month: time.May}).IsValid() {
		t.Error("year 0 must be invalid")
	}
}

func TestParseSubject(t *testing.T) {
	id, err := ParseSubject("FB908C44-7AF1-4894-A0A5-860338468DFA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "fb908c44-7af1-4894-a0a5-860338468dfa" {
		t.Errorf("unexpected id %s", id)
	}

	if _, err := ParseSubject("account-1"); err == nil {
		t.Error("expected error for non-uuid subject")
	}
}

func TestPriceBandString(t *testing.T) {
	bounded := NewPriceBand(201, 500, decimal.RequireFromString("0.08"))
	if bounded.String() != "201-500 @ 0.08" {
		t.Errorf("unexpected %s", bounded)
	}

	open := NewOpenPriceBand(1001, decimal.RequireFromString("0.03"))
	if !open.IsUnbounded() {
		t.Error("expected open band to be unbounded")
	}
	if open.String() != "1001+ @ 0.03" {
		t.Errorf("unexpected %s", open)
	}
}

func TestPeriodJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Period Period `json:"period"`
	}{NewPeriod(2024, time.March)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"period":"2024-03"}` {
		t.Errorf("unexpected encoding: %s", data)
	}

	var decoded struct {
		Period Period `json:"period"`
	}
	if err := json.Unmarshal([]byte(`{"period":"2023-11"}`), &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded.Period != NewPeriod(2023, time.November) {
		t.Errorf("unexpected period: %v", decoded.Period)
	}

	if err := json.Unmarshal([]byte(`{"period":"2023-13"}`), &decoded); err == nil {
		t.Error("expected error for month 13")
	}
}
