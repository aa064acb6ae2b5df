package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"balcao/internal/core"
)

// respondJSON writes v as a JSON response.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError writes a JSON error body.
func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

// decodeJSON parses the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// parseDateRange reads from/to query parameters in dd/mm/yyyy form.
// Both default to today, so a bare request closes the current day.
func parseDateRange(r *http.Request) (from, to time.Time, err error) {
	now := time.Now()
	from, to = now, now

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		parsed, ok := core.ToDate(v)
		if !ok {
			return from, to, fmt.Errorf("invalid from date %q: expected dd/mm/yyyy", v)
		}
		from = parsed
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		parsed, ok := core.ToDate(v)
		if !ok {
			return from, to, fmt.Errorf("invalid to date %q: expected dd/mm/yyyy", v)
		}
		to = parsed
	}
	return from, to, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
