package web

import (
	"net/http"
	"time"

	"gymdesk/internal/domain/outbox"
)

type outboxEntryView struct {
	ID              string    `json:"id"`
	ActionType      string    `json:"action_type"`
	Status          string    `json:"status"`
	Attempts        int       `json:"attempts"`
	MaxAttempts     int       `json:"max_attempts"`
	LastAttemptedAt time.Time `json:"last_attempted_at,omitzero"`
	CreatedAt       time.Time `json:"created_at"`
	ExternalID      string    `json:"external_id,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}

// The payload is left out: a queued reminder carries the member's address.
func newOutboxEntryView(e outbox.Entry) outboxEntryView {
	return outboxEntryView{
		ID:              e.ID,
		ActionType:      e.ActionType,
		Status:          e.Status,
		Attempts:        e.Attempts,
		MaxAttempts:     e.MaxAttempts,
		LastAttemptedAt: e.LastAttemptedAt,
		CreatedAt:       e.CreatedAt,
		ExternalID:      e.ExternalID,
		ErrorMessage:    e.ErrorMessage,
	}
}

// handleAdminOutbox handles GET /api/admin/outbox?status=&limit=
// An empty status lists every entry.
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	entries, err := stores.OutboxStore.List(r.Context(), r.URL.Query().Get("status"), intParam(r, "limit", 50, 100))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]outboxEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, newOutboxEntryView(e))
	}
	writeJSON(w, http.StatusOK, out)
}

type outboxIDRequest struct {
	ID string `json:"id"`
}

// handleAdminOutboxRetry handles POST /api/admin/outbox/retry
// Backoff is ignored; the entry is attempted immediately.
func handleAdminOutboxRetry(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req outboxIDRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	if req.ID == "" {
		badRequest(w, "id is required")
		return
	}
	entry, err := outboxProcessor.ProcessSingle(r.Context(), req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOutboxEntryView(entry))
}

// handleAdminOutboxAbandon handles POST /api/admin/outbox/abandon
func handleAdminOutboxAbandon(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req outboxIDRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	if req.ID == "" {
		badRequest(w, "id is required")
		return
	}
	if err := outboxProcessor.AbandonEntry(r.Context(), req.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type processStatsView struct {
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Deferred  int `json:"deferred"`
}

// handleAdminOutboxProcess handles POST /api/admin/outbox/process
// Runs one pass of the background worker on demand.
func handleAdminOutboxProcess(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	stats, err := outboxProcessor.ProcessPending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, processStatsView{Delivered: stats.Delivered, Failed: stats.Failed, Deferred: stats.Deferred})
}

// handleAdminPerf handles GET /api/admin/perf?minutes=&top=
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if perfCollector == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "performance collection is disabled"})
		return
	}
	minutes := intParam(r, "minutes", 60, 24*60)
	since := timeNow().Add(-time.Duration(minutes) * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, intParam(r, "top", 10, 50)))
}
