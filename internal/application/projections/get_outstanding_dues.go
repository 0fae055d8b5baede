package projections

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"gymdesk/internal/domain/dateutil"
	"gymdesk/internal/domain/dues"
	domainMembership "gymdesk/internal/domain/membership"
)

// OutstandingDuesQuery carries query parameters.
type OutstandingDuesQuery struct {
	Today       time.Time
	OverdueOnly bool
}

// DueRow is one membership with an unpaid balance.
type DueRow struct {
	MembershipID string          `json:"membership_id"`
	MemberID     string          `json:"member_id"`
	MemberName   string          `json:"member_name"`
	PlanName     string          `json:"plan_name"`
	Status       string          `json:"status"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Price        decimal.Decimal `json:"price"`
	Paid         decimal.Decimal `json:"paid"`
	Due          decimal.Decimal `json:"due"`
	DaysUntilDue int             `json:"days_until_due"`
	IsOverdue    bool            `json:"is_overdue"`
}

// OutstandingDuesResult carries the dues list, most urgent first.
type OutstandingDuesResult struct {
	Dues         []DueRow        `json:"dues"`
	Total        decimal.Decimal `json:"total"`
	OverdueTotal decimal.Decimal `json:"overdue_total"`
	OverdueCount int             `json:"overdue_count"`
}

// OutstandingDuesDeps holds dependencies for OutstandingDues.
type OutstandingDuesDeps struct {
	Memberships MembershipStore
	Payments    PaymentStore
	Members     MemberNames
}

// QueryOutstandingDues lists every active, frozen or on-hold membership whose
// price exceeds its linked payments.
// PRE: Today is the gym's calendar day
// POST: rows sorted by days until due ascending; Total is the sum of Due
func QueryOutstandingDues(ctx context.Context, query OutstandingDuesQuery, deps OutstandingDuesDeps) (OutstandingDuesResult, error) {
	windows, err := deps.Memberships.ListByStatus(ctx,
		domainMembership.StatusActive, domainMembership.StatusFrozen, domainMembership.StatusHold)
	if err != nil {
		return OutstandingDuesResult{}, err
	}
	ids := make([]string, len(windows))
	for i, w := range windows {
		ids[i] = w.ID
	}
	paid, err := deps.Payments.ListByMemberships(ctx, ids)
	if err != nil {
		return OutstandingDuesResult{}, err
	}
	names, err := deps.Members.NamesByID(ctx)
	if err != nil {
		return OutstandingDuesResult{}, err
	}

	list := dues.ComputeOutstanding(windows, paid, query.Today)
	if query.OverdueOnly {
		list = dues.Overdue(list)
	}

	result := OutstandingDuesResult{
		Dues:         make([]DueRow, 0, len(list)),
		Total:        dues.Total(list),
		OverdueTotal: decimal.Zero,
	}
	for _, d := range list {
		m := d.Membership
		result.Dues = append(result.Dues, DueRow{
			MembershipID: m.ID,
			MemberID:     m.MemberID,
			MemberName:   names[m.MemberID],
			PlanName:     m.PlanName,
			Status:       m.Status,
			StartDate:    dateutil.Format(m.StartDate),
			EndDate:      dateutil.Format(m.EndDate),
			Price:        m.Price,
			Paid:         d.PaidTotal,
			Due:          d.Due,
			DaysUntilDue: d.DaysUntilDue,
			IsOverdue:    d.IsOverdue,
		})
		if d.IsOverdue {
			result.OverdueCount++
			result.OverdueTotal = result.OverdueTotal.Add(d.Due)
		}
	}
	return result, nil
}
