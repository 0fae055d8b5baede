package web

import (
	"net/http"

	auditStore "gymdesk/internal/adapters/storage/audit"
	auditDomain "gymdesk/internal/domain/audit"
)

// handleAdminAuditTrail handles GET /api/admin/audit
// Filters: category, action, resource_id, since (RFC 3339), limit (default 100, max 1000).
func handleAdminAuditTrail(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	filter := auditStore.Filter{
		Category:   auditDomain.Category(q.Get("category")),
		Action:     auditDomain.Action(q.Get("action")),
		ResourceID: q.Get("resource_id"),
		Since:      q.Get("since"),
	}

	events, err := stores.AuditStore.List(r.Context(), filter, intParam(r, "limit", 100, 1000))
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []auditDomain.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}
