package web

import (
	"net/http"

	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/projections"
)

// handleOutstandingDues handles GET /api/dues?overdue=true
func handleOutstandingDues(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	result, err := projections.QueryOutstandingDues(r.Context(), projections.OutstandingDuesQuery{
		Today:       gymClock().Today(),
		OverdueOnly: r.URL.Query().Get("overdue") == "true",
	}, projections.OutstandingDuesDeps{
		Memberships: stores.MembershipStore,
		Payments:    stores.PaymentStore,
		Members:     stores.MemberStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func duesReminderDeps() orchestrators.SendDuesRemindersDeps {
	return orchestrators.SendDuesRemindersDeps{
		Memberships: stores.MembershipStore,
		Payments:    stores.PaymentStore,
		Members:     stores.MemberStore,
		Sender:      emailSender,
		Outbox:      stores.OutboxStore,
		Audit:       stores.AuditStore,
		Clock:       gymClock(),
		GenerateID:  generateID,
		GymName:     settings.GymName,
	}
}

// handleSendDuesReminders handles POST /api/dues/remind
// POST: 200 with per-due counts; provider failures are queued, never fatal
func handleSendDuesReminders(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		OverdueOnly bool `json:"overdue_only"`
		WithinDays  int  `json:"within_days"`
	}
	if !decodeOrReject(w, r, &req) {
		return
	}
	result, err := orchestrators.ExecuteSendDuesReminders(r.Context(), orchestrators.SendDuesRemindersInput{
		OverdueOnly: req.OverdueOnly,
		WithinDays:  req.WithinDays,
		Actor:       actor(r),
	}, duesReminderDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
