package dues

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"gymdesk/internal/domain/dateutil"
	"gymdesk/internal/domain/membership"
	"gymdesk/internal/domain/payment"
)

// Due is one membership window with an unpaid balance.
type Due struct {
	Membership   membership.Membership
	PaidTotal    decimal.Decimal
	Due          decimal.Decimal
	DaysUntilDue int // signed; negative once the end date has passed
	IsOverdue    bool
}

// ComputeOutstanding returns every tracked membership whose price exceeds its linked payments.
// PRE: today is the as-of calendar day; payments may span any membership
// POST: only active/frozen/hold windows with Due > 0, sorted ascending by DaysUntilDue;
// ties keep input order
func ComputeOutstanding(memberships []membership.Membership, payments []payment.Payment, today time.Time) []Due {
	paid := payment.SumByMembership(payments)
	today = dateutil.Of(today)

	var out []Due
	for _, m := range memberships {
		if !m.TracksDues() {
			continue
		}
		total := paid[m.ID]
		due := m.Price.Sub(total)
		if !due.IsPositive() {
			continue
		}
		days := dateutil.DaysBetween(today, m.EndDate)
		out = append(out, Due{
			Membership:   m,
			PaidTotal:    total,
			Due:          due,
			DaysUntilDue: days,
			IsOverdue:    days < 0,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysUntilDue < out[j].DaysUntilDue
	})
	return out
}

// Total sums the Due column.
func Total(list []Due) decimal.Decimal {
	sum := decimal.Zero
	for _, d := range list {
		sum = sum.Add(d.Due)
	}
	return sum
}

// Overdue filters list down to overdue entries, preserving order.
func Overdue(list []Due) []Due {
	var out []Due
	for _, d := range list {
		if d.IsOverdue {
			out = append(out, d)
		}
	}
	return out
}
