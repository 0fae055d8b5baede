package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymdesk/internal/domain/apperr"
	"gymdesk/internal/domain/outbox"
)

const janePayload = `{"to":"jane@example.com","subject":"Overdue payment","html":"<p>hi</p>","tag":"dues_reminder"}`

func queued(id string, attempts int, last time.Time, created time.Duration) outbox.Entry {
	status := outbox.StatusPending
	if attempts > 0 {
		status = outbox.StatusRetrying
	}
	return outbox.Entry{
		ID: id, ActionType: outbox.ActionDuesReminder, Payload: janePayload, Status: status,
		Attempts: attempts, MaxAttempts: outbox.DefaultMaxAttempts, LastAttemptedAt: last,
		CreatedAt: fixedTime.Add(-created),
	}
}

func newTestProcessor(box *mockOutbox, sender *mockSender) *OutboxProcessor {
	return NewOutboxProcessor(box, map[string]ActionExecutor{
		outbox.ActionDuesReminder: &EmailExecutor{Sender: sender},
	}).WithClock(func() time.Time { return fixedTime })
}

func TestOutboxProcessor_ProcessPending(t *testing.T) {
	fresh := queued("fresh", 0, time.Time{}, 3*time.Hour)
	backingOff := queued("backoff", 1, fixedTime.Add(-10*time.Second), 2*time.Hour) // due 60s after the last attempt
	unknown := queued("unknown", 0, time.Time{}, time.Hour)
	unknown.ActionType = "sms"
	box := newMockOutbox(fresh, backingOff, unknown)
	sender := &mockSender{}

	stats, err := newTestProcessor(box, sender).ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats != (ProcessStats{Delivered: 1, Failed: 1, Deferred: 1}) {
		t.Errorf("stats = %+v", stats)
	}

	if got := box.byID["fresh"]; got.Status != outbox.StatusDone || got.ExternalID != "msg-jane@example.com" || got.Attempts != 1 {
		t.Errorf("fresh = %+v", got)
	}
	if got := box.byID["backoff"]; got.Attempts != 1 {
		t.Errorf("deferred entry was attempted: %+v", got)
	}
	if got := box.byID["unknown"]; got.Status != outbox.StatusRetrying || got.ErrorMessage == "" {
		t.Errorf("unknown action = %+v", got)
	}
	if len(sender.sent) != 1 {
		t.Errorf("sent = %d, want 1", len(sender.sent))
	}
}

func TestOutboxProcessor_FailsAfterMaxAttempts(t *testing.T) {
	box := newMockOutbox(queued("last", outbox.DefaultMaxAttempts-1, fixedTime.Add(-2*time.Hour), time.Hour))
	sender := &mockSender{err: errors.New("mailbox full")}

	stats, err := newTestProcessor(box, sender).ProcessPending(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	got := box.byID["last"]
	if stats.Failed != 1 || got.Status != outbox.StatusFailed || !got.IsTerminal() {
		t.Errorf("stats = %+v, entry = %+v", stats, got)
	}
}

func TestOutboxProcessor_ProcessSingle(t *testing.T) {
	box := newMockOutbox(queued("e1", 1, fixedTime.Add(-time.Second), time.Hour))
	p := newTestProcessor(box, &mockSender{})
	ctx := context.Background()

	got, err := p.ProcessSingle(ctx, "e1")
	if err != nil {
		t.Fatalf("manual retry ignored backoff: %v", err)
	}
	if got.Status != outbox.StatusDone || got.Attempts != 2 {
		t.Errorf("entry = %+v", got)
	}

	if _, err := p.ProcessSingle(ctx, "e1"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("retry of a delivered entry err = %v, want conflict", err)
	}
	if _, err := p.ProcessSingle(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing entry err = %v", err)
	}
}

func TestOutboxProcessor_AbandonEntry(t *testing.T) {
	done := queued("done", 1, fixedTime, time.Hour)
	done.Status = outbox.StatusDone
	box := newMockOutbox(queued("e1", 2, fixedTime, time.Hour), done)
	p := newTestProcessor(box, &mockSender{})
	ctx := context.Background()

	if err := p.AbandonEntry(ctx, "e1"); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if box.byID["e1"].Status != outbox.StatusAbandoned {
		t.Errorf("Status = %q", box.byID["e1"].Status)
	}
	if err := p.AbandonEntry(ctx, "done"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("abandon delivered err = %v", err)
	}

	// Abandoned entries leave the pending queue.
	stats, err := p.ProcessPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats != (ProcessStats{}) {
		t.Errorf("stats = %+v, want nothing processed", stats)
	}
}

func TestEmailExecutor_BadPayload(t *testing.T) {
	e := &EmailExecutor{Sender: &mockSender{}}
	if _, err := e.Execute(context.Background(), "not json"); err == nil {
		t.Error("expected an error for a malformed payload")
	}
}
