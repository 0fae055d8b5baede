package outbox

import (
	"errors"
	"testing"
	"time"
)

func TestEntryLifecycle(t *testing.T) {
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	e := Entry{ActionType: ActionDuesReminder, Payload: `{"to":"a@b.c"}`, Status: StatusPending, CreatedAt: now}
	if err := e.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if e.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d, want default", e.MaxAttempts)
	}

	for i := 0; i < DefaultMaxAttempts; i++ {
		if !e.CanRetry() {
			t.Fatalf("attempt %d: CanRetry false", i)
		}
		e.MarkAttempt(now)
		e.MarkFailed(errors.New("smtp down"))
	}
	if e.CanRetry() || !e.IsTerminal() || e.Status != StatusFailed {
		t.Errorf("after max attempts: status=%s canRetry=%v terminal=%v", e.Status, e.CanRetry(), e.IsTerminal())
	}
	if e.ErrorMessage != "smtp down" {
		t.Errorf("ErrorMessage = %q", e.ErrorMessage)
	}
}

func TestEntryValidate(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  error
	}{
		{"no action", Entry{Payload: "{}", CreatedAt: time.Now()}, ErrEmptyActionType},
		{"no payload", Entry{ActionType: ActionDuesReminder, CreatedAt: time.Now()}, ErrEmptyPayload},
		{"no created", Entry{ActionType: ActionDuesReminder, Payload: "{}"}, ErrNoCreatedAt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.entry.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNextRetryDelay(t *testing.T) {
	base, max := time.Minute, 30*time.Minute
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, time.Minute},
		{1, 2 * time.Minute},
		{3, 8 * time.Minute},
		{5, 30 * time.Minute},
		{40, 30 * time.Minute},
	}
	for _, tt := range tests {
		e := Entry{Attempts: tt.attempts}
		if got := e.NextRetryDelay(base, max); got != tt.want {
			t.Errorf("attempts=%d: delay = %v, want %v", tt.attempts, got, tt.want)
		}
	}
}

func TestIsDue(t *testing.T) {
	last := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	e := Entry{Attempts: 1, LastAttemptedAt: last}
	if e.IsDue(last.Add(time.Minute), time.Minute, time.Hour) {
		t.Error("entry due before its 2m backoff elapsed")
	}
	if !e.IsDue(last.Add(2*time.Minute), time.Minute, time.Hour) {
		t.Error("entry not due after backoff elapsed")
	}
	fresh := Entry{}
	if !fresh.IsDue(last, time.Minute, time.Hour) {
		t.Error("never-attempted entry should be due")
	}
}

func TestMarkSuccessAndAbandon(t *testing.T) {
	e := Entry{Status: StatusRetrying, ErrorMessage: "x", MaxAttempts: 3}
	e.MarkSuccess("msg_123")
	if e.Status != StatusDone || e.ExternalID != "msg_123" || e.ErrorMessage != "" || !e.IsTerminal() {
		t.Errorf("after success: %+v", e)
	}
	a := Entry{Status: StatusPending, MaxAttempts: 3}
	a.MarkAbandoned()
	if a.CanRetry() || !a.IsTerminal() {
		t.Errorf("abandoned entry still retryable: %+v", a)
	}
}
