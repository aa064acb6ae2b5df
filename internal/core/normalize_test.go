package core

import (
	"testing"
	"time"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"plain integer", "42", 42},
		{"plain decimal", "12.5", 12.5},
		{"comma decimal", "12,5", 12.5},
		{"brazilian thousands", "1.234,56", 1234.56},
		{"brazilian millions", "1.234.567,89", 1234567.89},
		{"negative comma", "-3,25", -3.25},
		{"whitespace", "  7,5  ", 7.5},
		{"empty", "", 0},
		{"dash placeholder", "-", 0},
		{"nan literal", "NaN", 0},
		{"none literal", "none", 0},
		{"null literal", "null", 0},
		{"garbage", "abc", 0},
		{"mixed garbage", "12abc", 0},
		{"us thousands rejected", "1,234.56", 0},
		{"zero", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToNumber(tt.raw); got != tt.want {
				t.Errorf("ToNumber(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestToDate(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   time.Time
		wantOK bool
	}{
		{"valid", "31/12/2024", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), true},
		{"valid single digits", "5/3/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"leap day", "29/02/2024", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), true},
		{"impossible day", "31/02/2024", time.Time{}, false},
		{"non leap day", "29/02/2023", time.Time{}, false},
		{"iso rejected", "2024-12-31", time.Time{}, false},
		{"two digit year", "31/12/24", time.Time{}, false},
		{"month out of range", "10/13/2024", time.Time{}, false},
		{"empty", "", time.Time{}, false},
		{"garbage", "not a date", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToDate(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ToDate(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ToDate(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFormatNumberRoundTrip(t *testing.T) {
	values := []float64{0, 1, -1, 12.5, 1234.56, 0.023, 100000}
	for _, v := range values {
		if got := ToNumber(FormatNumber(v)); got != v {
			t.Errorf("round trip %v: got %v", v, got)
		}
	}
}

func TestFormatNumberIntegers(t *testing.T) {
	if got := FormatNumber(3); got != "3" {
		t.Errorf("FormatNumber(3) = %q, want %q", got, "3")
	}
	if got := FormatNumber(12.5); got != "12.5" {
		t.Errorf("FormatNumber(12.5) = %q, want %q", got, "12.5")
	}
}

func TestFormatDateRoundTrip(t *testing.T) {
	d := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	parsed, ok := ToDate(FormatDate(d))
	if !ok {
		t.Fatalf("ToDate rejected FormatDate output %q", FormatDate(d))
	}
	if !parsed.Equal(d) {
		t.Errorf("round trip = %v, want %v", parsed, d)
	}
}

func TestToBool(t *testing.T) {
	truthy := []string{"1", "true", "yes", "sim", "s", "y", "x", " SIM ", "TRUE"}
	for _, v := range truthy {
		if !ToBool(v) {
			t.Errorf("ToBool(%q) = false, want true", v)
		}
	}
	falsy := []string{"", "0", "no", "nao", "false", "n"}
	for _, v := range falsy {
		if ToBool(v) {
			t.Errorf("ToBool(%q) = true, want false", v)
		}
	}
}
