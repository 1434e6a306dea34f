package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"khata/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}

// writeError maps the core error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidArgument),
		errors.Is(err, core.ErrCrossOrganization):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err, "method", r.Method, "path", r.URL.Path)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: request body: %v", core.ErrInvalidArgument, err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", core.ErrInvalidArgument, raw)
	}
	return id, nil
}

// parseWindow reads optional start/end query parameters (YYYY-MM-DD).
// Missing bounds default to the full history up to now.
func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Now().UTC()

	if v := strings.TrimSpace(r.URL.Query().Get("start")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return start, end, fmt.Errorf("%w: start must be YYYY-MM-DD, got %q", core.ErrInvalidArgument, v)
		}
		start = t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("end")); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return start, end, fmt.Errorf("%w: end must be YYYY-MM-DD, got %q", core.ErrInvalidArgument, v)
		}
		// Inclusive end of day.
		end = t.Add(24*time.Hour - time.Second)
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("%w: end precedes start", core.ErrInvalidArgument)
	}
	return start, end, nil
}
