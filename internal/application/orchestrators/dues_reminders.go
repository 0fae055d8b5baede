package orchestrators

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	emailAdapter "gymdesk/internal/adapters/email"
	"gymdesk/internal/domain/apperr"
	"gymdesk/internal/domain/audit"
	"gymdesk/internal/domain/dateutil"
	"gymdesk/internal/domain/dues"
	"gymdesk/internal/domain/membership"
	"gymdesk/internal/domain/outbox"
	"gymdesk/internal/domain/payment"
)

// ReminderTag labels reminder emails at the provider.
const ReminderTag = "dues_reminder"

// reminderMarkdown renders reminder bodies. Raw HTML in the source is dropped.
var reminderMarkdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// DuesMembershipLister lists windows by status.
type DuesMembershipLister interface {
	ListByStatus(ctx context.Context, statuses ...string) ([]membership.Membership, error)
}

// PaymentsByMembership lists payments linked to any of the given windows.
type PaymentsByMembership interface {
	ListByMemberships(ctx context.Context, membershipIDs []string) ([]payment.Payment, error)
}

// OutboxWriter queues failed side effects for retry.
type OutboxWriter interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// SendDuesRemindersInput selects which dues to remind about.
type SendDuesRemindersInput struct {
	OverdueOnly bool
	WithinDays  int // remind only when due within this many days; <= 0 means no limit
	Actor       string
}

// SendDuesRemindersDeps holds dependencies for SendDuesReminders.
type SendDuesRemindersDeps struct {
	Memberships DuesMembershipLister
	Payments    PaymentsByMembership
	Members     MemberLookup
	Sender      emailAdapter.Sender
	Outbox      OutboxWriter
	Audit       AuditRecorder // optional
	Clock       Clock
	GenerateID  func() string // optional
	GymName     string
}

// SkippedReminder names a due that could not be reminded about.
type SkippedReminder struct {
	MembershipID string `json:"membership_id"`
	MemberID     string `json:"member_id"`
	Reason       string `json:"reason"`
}

// SendDuesRemindersResult counts what happened to each selected due.
type SendDuesRemindersResult struct {
	Considered int               `json:"considered"`
	Sent       int               `json:"sent"`
	Queued     int               `json:"queued"`
	Skipped    []SkippedReminder `json:"skipped"`
}

// ExecuteSendDuesReminders emails every selected member with an outstanding balance.
// PRE: Sender and Outbox are configured
// POST: each selected due was sent, queued in the outbox after a failed send, or skipped
// INVARIANT: a provider failure or a missing member never aborts the run; storage errors do
func ExecuteSendDuesReminders(ctx context.Context, input SendDuesRemindersInput, deps SendDuesRemindersDeps) (SendDuesRemindersResult, error) {
	outstanding, err := loadOutstanding(ctx, deps.Memberships, deps.Payments, deps.Clock.Today())
	if err != nil {
		return SendDuesRemindersResult{}, err
	}

	result := SendDuesRemindersResult{Skipped: []SkippedReminder{}}
	for _, d := range outstanding {
		if input.OverdueOnly && !d.IsOverdue {
			continue
		}
		if input.WithinDays > 0 && d.DaysUntilDue > input.WithinDays {
			continue
		}
		result.Considered++

		skip := func(reason string) {
			result.Skipped = append(result.Skipped, SkippedReminder{MembershipID: d.Membership.ID, MemberID: d.Membership.MemberID, Reason: reason})
		}
		m, err := deps.Members.GetByID(ctx, d.Membership.MemberID)
		if errors.Is(err, apperr.ErrNotFound) {
			skip("member not found")
			continue
		}
		if err != nil {
			return result, err
		}
		if m.IsArchived() {
			skip("member is archived")
			continue
		}
		if m.Email == "" {
			skip("member has no email address")
			continue
		}

		msg, err := RenderDuesReminder(deps.GymName, m.Name, m.Email, d)
		if err != nil {
			skip(err.Error())
			continue
		}
		if _, sendErr := deps.Sender.Send(ctx, msg); sendErr != nil {
			if err := queueReminder(ctx, deps, msg, sendErr); err != nil {
				return result, err
			}
			result.Queued++
			continue
		}
		result.Sent++
	}

	slog.Info("dues_event", "event", "reminders_sent", "considered", result.Considered, "sent", result.Sent, "queued", result.Queued, "skipped", len(result.Skipped))
	if result.Considered > 0 {
		recordAudit(ctx, deps.Audit, audit.NewEvent(deps.Clock.Instant(), input.Actor, audit.CategoryBilling, audit.ActionRemind).
			WithDescription(fmt.Sprintf("Dues reminders: %d sent, %d queued, %d skipped", result.Sent, result.Queued, len(result.Skipped))))
	}
	return result, nil
}

// RenderDuesReminder builds the reminder email for one due.
func RenderDuesReminder(gymName, memberName, to string, d dues.Due) (emailAdapter.Message, error) {
	if gymName == "" {
		gymName = "the gym"
	}
	amount := d.Due.StringFixed(2)
	end := dateutil.Format(d.Membership.EndDate)

	subject := fmt.Sprintf("Payment reminder: %s due by %s", amount, end)
	when := fmt.Sprintf("is due by **%s** (%d days left)", end, d.DaysUntilDue)
	if d.IsOverdue {
		subject = fmt.Sprintf("Overdue payment: %s since %s", amount, end)
		when = fmt.Sprintf("was due on **%s** and is now %d days overdue", end, -d.DaysUntilDue)
	}

	plan := d.Membership.PlanName
	if plan == "" {
		plan = "membership"
	}
	source := fmt.Sprintf(`Hi %s,

This is a reminder from %s that a balance of **%s** on your *%s* (%s to %s) %s.

- Price: %s
- Paid so far: %s

Please settle it at the front desk or reply to this email if you think this is a mistake.
`, memberName, gymName, amount, plan, dateutil.Format(d.Membership.StartDate), end, when,
		d.Membership.Price.StringFixed(2), d.PaidTotal.StringFixed(2))

	var buf bytes.Buffer
	if err := reminderMarkdown.Convert([]byte(source), &buf); err != nil {
		return emailAdapter.Message{}, fmt.Errorf("render reminder: %w", err)
	}
	msg := emailAdapter.Message{To: to, Subject: subject, HTML: buf.String(), Tag: ReminderTag}
	return msg, msg.Validate()
}

func queueReminder(ctx context.Context, deps SendDuesRemindersDeps, msg emailAdapter.Message, sendErr error) error {
	payload, err := json.Marshal(EmailPayload{To: msg.To, Subject: msg.Subject, HTML: msg.HTML, Tag: msg.Tag})
	if err != nil {
		return fmt.Errorf("encode reminder payload: %w", err)
	}
	now := deps.Clock.Instant()
	entry := outbox.Entry{
		ID:         newID(deps.GenerateID),
		ActionType: outbox.ActionDuesReminder,
		Payload:    string(payload),
		Status:     outbox.StatusPending,
		CreatedAt:  now,
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	entry.MarkAttempt(now)
	entry.MarkFailed(sendErr)
	slog.Warn("dues_event", "event", "reminder_queued", "entry_id", entry.ID, "error", sendErr.Error())
	return deps.Outbox.Save(ctx, entry)
}

// loadOutstanding reads the windows that can carry dues plus their linked payments.
func loadOutstanding(ctx context.Context, memberships DuesMembershipLister, payments PaymentsByMembership, today time.Time) ([]dues.Due, error) {
	windows, err := memberships.ListByStatus(ctx, membership.StatusActive, membership.StatusFrozen, membership.StatusHold)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(windows))
	for i, w := range windows {
		ids[i] = w.ID
	}
	paid, err := payments.ListByMemberships(ctx, ids)
	if err != nil {
		return nil, err
	}
	return dues.ComputeOutstanding(windows, paid, today), nil
}

// StartReminderWorker sends dues reminders for overdue balances every interval.
// PRE: interval > 0; stopCh is closed on shutdown
// POST: Worker runs until stopCh is closed
func StartReminderWorker(deps SendDuesRemindersDeps, interval time.Duration, stopCh <-chan struct{}) {
	runEvery("dues_reminder", interval, stopCh, func(ctx context.Context) error {
		_, err := ExecuteSendDuesReminders(ctx, SendDuesRemindersInput{OverdueOnly: true, Actor: audit.SystemActor}, deps)
		return err
	})
}
