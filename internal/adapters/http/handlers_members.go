package web

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	memberStore "gymdesk/internal/adapters/storage/member"
	"gymdesk/internal/application/listutil"
	"gymdesk/internal/application/orchestrators"
	"gymdesk/internal/application/projections"
	"gymdesk/internal/domain/apperr"
)

// handleMembers handles both GET (list) and POST (register) for /api/members
func handleMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		result, err := projections.QueryGetMemberList(ctx, projections.GetMemberListQuery{
			Status: q.Get("status"),
			Search: q.Get("q"),
			Page:   listutil.ParsePageParams(q),
			Sort:   listutil.ParseSortParams(q, memberStore.SortColumns),
		}, projections.GetMemberListDeps{
			MemberStore:  stores.MemberStore,
			SessionStore: stores.SessionStore,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case http.MethodPost:
		var req struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Phone string `json:"phone"`
			PIN   string `json:"pin"`
		}
		if !decodeOrReject(w, r, &req) {
			return
		}
		m, err := orchestrators.ExecuteRegisterMember(ctx, orchestrators.RegisterMemberInput{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
			PIN:   req.PIN,
			Actor: actor(r),
		}, orchestrators.RegisterMemberDeps{
			Members:    stores.MemberStore,
			Audit:      stores.AuditStore,
			Clock:      gymClock(),
			GenerateID: generateID,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newMemberView(m))

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

type memberIDRequest struct {
	MemberID string `json:"member_id"`
}

// handleArchiveMember handles POST /api/members/archive
func handleArchiveMember(w http.ResponseWriter, r *http.Request) {
	changeMemberArchive(w, r, orchestrators.ExecuteArchiveMember)
}

// handleRestoreMember handles POST /api/members/restore
func handleRestoreMember(w http.ResponseWriter, r *http.Request) {
	changeMemberArchive(w, r, orchestrators.ExecuteRestoreMember)
}

func changeMemberArchive(w http.ResponseWriter, r *http.Request,
	execute func(ctx context.Context, input orchestrators.ArchiveMemberInput, deps orchestrators.ArchiveMemberDeps) error) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req memberIDRequest
	if !decodeOrReject(w, r, &req) {
		return
	}
	err := execute(r.Context(), orchestrators.ArchiveMemberInput{MemberID: req.MemberID, Actor: actor(r)},
		orchestrators.ArchiveMemberDeps{Members: stores.MemberStore, Audit: stores.AuditStore, Clock: gymClock()})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSetMemberPIN handles POST /api/members/pin
func handleSetMemberPIN(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		MemberID string `json:"member_id"`
		PIN      string `json:"pin"`
	}
	if !decodeOrReject(w, r, &req) {
		return
	}
	if err := orchestrators.ExecuteSetMemberPIN(r.Context(), orchestrators.SetMemberPINInput{MemberID: req.MemberID, PIN: req.PIN}, stores.MemberStore); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStaff handles both GET (list) and POST (register) for /api/staff
func handleStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		list, err := stores.StaffStore.List(ctx, r.URL.Query().Get("active") == "true")
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]staffView, 0, len(list))
		for _, s := range list {
			out = append(out, newStaffView(s))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req struct {
			Name          string `json:"name"`
			Email         string `json:"email"`
			Role          string `json:"role"`
			JoiningDate   string `json:"joining_date"`
			MonthlySalary int64  `json:"monthly_salary"`
		}
		if !decodeOrReject(w, r, &req) {
			return
		}
		joining, err := parseDateParam("joining_date", req.JoiningDate)
		if err != nil {
			writeError(w, err)
			return
		}
		s, err := orchestrators.ExecuteRegisterStaff(ctx, orchestrators.RegisterStaffInput{
			Name:          req.Name,
			Email:         req.Email,
			Role:          req.Role,
			JoiningDate:   joining,
			MonthlySalary: req.MonthlySalary,
			Actor:         actor(r),
		}, orchestrators.RegisterStaffDeps{
			Staff:      stores.StaffStore,
			Audit:      stores.AuditStore,
			Clock:      gymClock(),
			GenerateID: generateID,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newStaffView(s))

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func membershipDeps() orchestrators.MembershipDeps {
	return orchestrators.MembershipDeps{
		Members:     stores.MemberStore,
		Memberships: stores.MembershipStore,
		Audit:       stores.AuditStore,
		Clock:       gymClock(),
		GenerateID:  generateID,
	}
}

// handleMemberships handles GET (by member) and POST (create) for /api/memberships
func handleMemberships(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		memberID, ok := requireQuery(w, r, "member_id")
		if !ok {
			return
		}
		list, err := stores.MembershipStore.ListByMember(ctx, memberID)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]membershipView, 0, len(list))
		for _, m := range list {
			out = append(out, newMembershipView(m))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req struct {
			MemberID  string          `json:"member_id"`
			PlanName  string          `json:"plan_name"`
			StartDate string          `json:"start_date"`
			EndDate   string          `json:"end_date"`
			Price     decimal.Decimal `json:"price"`
		}
		if !decodeOrReject(w, r, &req) {
			return
		}
		start, err := parseDateParam("start_date", req.StartDate)
		if err != nil {
			writeError(w, err)
			return
		}
		end, err := parseDateParam("end_date", req.EndDate)
		if err != nil {
			writeError(w, err)
			return
		}
		m, err := orchestrators.ExecuteCreateMembership(ctx, orchestrators.CreateMembershipInput{
			MemberID:  req.MemberID,
			PlanName:  req.PlanName,
			StartDate: start,
			EndDate:   end,
			Price:     req.Price,
			Actor:     actor(r),
		}, membershipDeps())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newMembershipView(m))

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// handleMembershipStatus handles POST /api/memberships/status
func handleMembershipStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		MembershipID string `json:"membership_id"`
		Status       string `json:"status"`
	}
	if !decodeOrReject(w, r, &req) {
		return
	}
	m, err := orchestrators.ExecuteChangeMembershipStatus(r.Context(), orchestrators.ChangeMembershipStatusInput{
		MembershipID: req.MembershipID,
		Status:       req.Status,
		Actor:        actor(r),
	}, membershipDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newMembershipView(m))
}

// handleRenewMembership handles POST /api/memberships/renew
func handleRenewMembership(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		MembershipID string              `json:"membership_id"`
		Price        decimal.NullDecimal `json:"price"`
	}
	if !decodeOrReject(w, r, &req) {
		return
	}
	m, err := orchestrators.ExecuteRenewMembership(r.Context(), orchestrators.RenewMembershipInput{
		MembershipID: req.MembershipID,
		Price:        req.Price,
		Actor:        actor(r),
	}, membershipDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMembershipView(m))
}

// handlePayments handles GET (by member) and POST (record) for /api/payments
func handlePayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		memberID, ok := requireQuery(w, r, "member_id")
		if !ok {
			return
		}
		list, err := stores.PaymentStore.ListByMember(ctx, memberID)
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]paymentView, 0, len(list))
		for _, p := range list {
			out = append(out, newPaymentView(p))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req struct {
			MemberID      string          `json:"member_id"`
			MembershipID  string          `json:"membership_id"`
			Amount        decimal.Decimal `json:"amount"`
			PaymentDate   string          `json:"payment_date"`
			Method        string          `json:"method"`
			InvoiceNumber string          `json:"invoice_number"`
		}
		if !decodeOrReject(w, r, &req) {
			return
		}
		date, err := parseDateParam("payment_date", req.PaymentDate)
		if err != nil {
			writeError(w, err)
			return
		}
		p, err := orchestrators.ExecuteRecordPayment(ctx, orchestrators.RecordPaymentInput{
			MemberID:      req.MemberID,
			MembershipID:  req.MembershipID,
			Amount:        req.Amount,
			PaymentDate:   date,
			Method:        req.Method,
			InvoiceNumber: req.InvoiceNumber,
			Actor:         actor(r),
		}, orchestrators.RecordPaymentDeps{
			Members:     stores.MemberStore,
			Memberships: stores.MembershipStore,
			Payments:    stores.PaymentStore,
			Audit:       stores.AuditStore,
			Clock:       gymClock(),
			GenerateID:  generateID,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newPaymentView(p))

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

// requireQuery reads a mandatory query parameter, writing 400 when absent.
func requireQuery(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		writeError(w, apperr.Validation(name+" is required"))
		return "", false
	}
	return v, true
}
