package web

import "net/http"

// registerRoutes wires every API route onto mux.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", handleHealthz)

	// Members and staff
	mux.HandleFunc("/api/members", handleMembers)
	mux.HandleFunc("/api/members/archive", handleArchiveMember)
	mux.HandleFunc("/api/members/restore", handleRestoreMember)
	mux.HandleFunc("/api/members/pin", handleSetMemberPIN)
	mux.HandleFunc("/api/staff", handleStaff)
	mux.HandleFunc("/api/staff/clock-in", handleStaffClockIn)
	mux.HandleFunc("/api/staff/clock-out", handleStaffClockOut)

	// Memberships and payments
	mux.HandleFunc("/api/memberships", handleMemberships)
	mux.HandleFunc("/api/memberships/status", handleMembershipStatus)
	mux.HandleFunc("/api/memberships/renew", handleRenewMembership)
	mux.HandleFunc("/api/payments", handlePayments)
	mux.HandleFunc("/api/dues", handleOutstandingDues)
	mux.HandleFunc("/api/dues/remind", handleSendDuesReminders)

	// Attendance
	mux.HandleFunc("/api/attendance/daily", handleDailyAttendance)
	mux.HandleFunc("/api/attendance/mark", handleMarkAttendance)
	mux.HandleFunc("/api/attendance/auto-absent", handleAutoMarkAbsent)
	mux.HandleFunc("/api/sessions/checkin", handleCheckIn)
	mux.HandleFunc("/api/sessions/checkout", handleCheckOut)
	mux.HandleFunc("/api/sessions/active", handleActiveSession)
	mux.HandleFunc("/api/sessions/history", handleAttendanceHistory)
	mux.HandleFunc("/api/kiosk/checkin", handleKioskCheckIn)

	// Admin
	mux.HandleFunc("/api/admin/audit", handleAdminAuditTrail)
	mux.HandleFunc("/api/admin/outbox", handleAdminOutbox)
	mux.HandleFunc("/api/admin/outbox/retry", handleAdminOutboxRetry)
	mux.HandleFunc("/api/admin/outbox/abandon", handleAdminOutboxAbandon)
	mux.HandleFunc("/api/admin/outbox/process", handleAdminOutboxProcess)
	mux.HandleFunc("/api/admin/perf", handleAdminPerf)
}
