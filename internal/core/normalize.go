// Package core holds the domain types and the cell normalizers.
//
// Spreadsheet cells are unstructured free text edited by hand, so the
// normalizers in this file are total: they return a zero value on any
// input they cannot make sense of and never return an error.
package core

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ToNumber parses a locale-formatted numeric cell.
//
// Brazilian formatting is handled: when both separators are present and the
// comma comes last ("1.234,56") the dots are thousands separators; a lone
// comma is a decimal point ("12,5"). Empty, "nan", "none" and anything
// unparseable yield 0.
func ToNumber(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	switch strings.ToLower(s) {
	case "nan", "none", "null", "-":
		return 0
	}

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	if comma >= 0 && dot >= 0 && comma > dot {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if comma >= 0 {
		s = strings.ReplaceAll(s, ",", ".")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ToDate parses a strict dd/mm/yyyy cell. Any other shape, including
// ISO dates, yields ok=false.
func ToDate(raw string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	if len(parts[2]) != 4 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, false
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range components (31/02 becomes 02/03);
	// reject anything that did not round-trip.
	if d.Day() != day || int(d.Month()) != month || d.Year() != year {
		return time.Time{}, false
	}
	return d, true
}

// FormatNumber renders a float the way it is written back to a cell.
// Integers lose the fractional part so quantities stay readable.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatDate renders a date in the dd/mm/yyyy shape ToDate accepts.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// ToBool parses the loose truthy cells used by the Active? column.
func ToBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "sim", "s", "y", "x":
		return true
	}
	return false
}
