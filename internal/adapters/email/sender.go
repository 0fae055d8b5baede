// Package email delivers outbound mail such as dues reminders.
package email

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNoRecipient rejects a message without a deliverable address.
var ErrNoRecipient = errors.New("email has no recipient")

// Message is one outbound email.
type Message struct {
	To      string
	From    string // falls back to the sender's default when empty
	ReplyTo string
	Subject string
	HTML    string
	// Tag groups provider analytics, e.g. "dues_reminder".
	Tag string
}

// Validate checks that the message can be handed to a provider.
func (m Message) Validate() error {
	if !strings.Contains(m.To, "@") {
		return ErrNoRecipient
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("email subject is required")
	}
	return nil
}

// Receipt is the provider's acknowledgement of an accepted message.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers one message through an external provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}
