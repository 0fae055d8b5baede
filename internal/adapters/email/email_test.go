package email

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{"valid", Message{To: "jane@example.com", Subject: "Dues"}, false},
		{"no recipient", Message{Subject: "Dues"}, true},
		{"bad recipient", Message{To: "jane", Subject: "Dues"}, true},
		{"blank subject", Message{To: "jane@example.com", Subject: "  "}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNoopSender_Send(t *testing.T) {
	s := NewNoopSender()
	r, err := s.Send(context.Background(), Message{To: "jane@example.com", Subject: "Dues"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.HasPrefix(r.MessageID, "noop-") || r.SentAt.IsZero() {
		t.Errorf("receipt = %+v", r)
	}

	_, err = s.Send(context.Background(), Message{Subject: "Dues"})
	if !errors.Is(err, ErrNoRecipient) {
		t.Errorf("err = %v, want ErrNoRecipient", err)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "b"); got != "b" {
		t.Errorf("got %q", got)
	}
	if got := firstNonEmpty("a", "b"); got != "a" {
		t.Errorf("got %q", got)
	}
}
