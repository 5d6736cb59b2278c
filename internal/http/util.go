package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"school-inventory/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidationError(err):
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
	case err == domain.ErrNotFound:
		writeJSON(w, http.StatusNotFound, Fail("not found"))
	case err == domain.ErrInsufficientStock:
		writeJSON(w, http.StatusConflict, Fail("insufficient stock"))
	default:
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
	}
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// parseDate accepts a plain date or a full RFC3339 timestamp. A zero time
// means the parameter was absent or unparseable.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// actingUser returns the caller identity. Auth is handled upstream; the
// gateway forwards the user id in a header.
func actingUser(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}
