package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"gymdesk/internal/adapters/http/middleware"
	"gymdesk/internal/domain/apperr"
	"gymdesk/internal/domain/dateutil"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

// strictDecode decodes JSON from the request body, rejecting unknown fields
// and trailing data.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("request body must hold a single JSON object")
	}
	return nil
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err.Error())
	}
}

// writeError maps an error kind to a status code. Validation, conflict and
// not-found messages are written for staff to read; anything else is logged
// and hidden behind internalError.
func writeError(w http.ResponseWriter, err error) {
	switch kind := apperr.KindOf(err); kind {
	case apperr.ErrValidation:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: apperr.Message(err), Kind: "validation"})
	case apperr.ErrNotFound:
		writeJSON(w, http.StatusNotFound, errorBody{Error: apperr.Message(err), Kind: "not_found"})
	case apperr.ErrConflict:
		writeJSON(w, http.StatusConflict, errorBody{Error: apperr.Message(err), Kind: "conflict"})
	default:
		internalError(w, err)
	}
}

// badRequest reports malformed input that never reached an orchestrator.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Kind: "validation"})
}

// decodeOrReject decodes the body and writes 400 on failure.
func decodeOrReject(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := strictDecode(w, r, v); err != nil {
		badRequest(w, "Invalid request: "+err.Error())
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
}

// requireMethod writes 405 unless r uses method.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		methodNotAllowed(w, method)
		return false
	}
	return true
}

// actor names who is operating the front desk, for audit events.
func actor(r *http.Request) string {
	return middleware.ActorFromContext(r.Context())
}

// parseDateParam reads an optional YYYY-MM-DD value. Empty yields the zero time.
func parseDateParam(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	d, err := dateutil.Parse(v)
	if err != nil {
		return time.Time{}, apperr.Validation(fmt.Sprintf("%s: %v", name, err))
	}
	return d, nil
}

// parseInstant reads an optional RFC 3339 timestamp. Empty yields the zero time.
func parseInstant(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, apperr.Validation(fmt.Sprintf("%s must be an RFC 3339 timestamp, got %q", name, v))
	}
	return t, nil
}

// intParam reads a bounded positive integer query parameter.
func intParam(r *http.Request, name string, fallback, max int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	if n > max {
		return max
	}
	return n
}

// handleHealthz handles GET /healthz
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
