package member

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxPhoneLength = 20
)

// Business rule constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusArchived = "archived"
)

// Kiosk PIN rules
const (
	MinPINLength = 4
	MaxPINLength = 8
	pinCost      = 10
)

// Domain errors
var (
	ErrAlreadyArchived = errors.New("member is already archived")
	ErrNotArchived     = errors.New("member is not archived")
	ErrInvalidPIN      = errors.New("PIN must be 4 to 8 digits")
	ErrWrongPIN        = errors.New("incorrect PIN")
	ErrNoPIN           = errors.New("member has no kiosk PIN set")
)

// Member is a gym customer who buys memberships and attends.
type Member struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Status    string
	PINHash   string // bcrypt hash of the kiosk PIN, empty when unset
	CreatedAt time.Time
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Email must contain '@', Name must not be empty
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("member name cannot be empty")
	}
	if len(m.Name) > MaxNameLength {
		return errors.New("member name cannot exceed 100 characters")
	}
	if m.Email != "" && !strings.Contains(m.Email, "@") {
		return errors.New("member email must be valid")
	}
	if len(m.Phone) > MaxPhoneLength {
		return errors.New("phone number cannot exceed 20 characters")
	}
	if m.Status != StatusActive && m.Status != StatusInactive && m.Status != StatusArchived {
		return errors.New("status must be 'active', 'inactive', or 'archived'")
	}
	return nil
}

// IsArchived returns true if the member is archived.
// INVARIANT: Status field is not mutated
func (m *Member) IsArchived() bool {
	return m.Status == StatusArchived
}

// Archive sets the member status to archived.
// PRE: Member is not already archived
// POST: Status is set to archived
func (m *Member) Archive() error {
	if m.Status == StatusArchived {
		return ErrAlreadyArchived
	}
	m.Status = StatusArchived
	return nil
}

// Restore sets the member status back to active.
// PRE: Member is currently archived
// POST: Status is set to active
func (m *Member) Restore() error {
	if m.Status != StatusArchived {
		return ErrNotArchived
	}
	m.Status = StatusActive
	return nil
}

// SetPIN hashes and stores a kiosk PIN.
// PRE: pin is 4-8 digits
// POST: PINHash holds a bcrypt hash of pin
func (m *Member) SetPIN(pin string) error {
	if len(pin) < MinPINLength || len(pin) > MaxPINLength {
		return ErrInvalidPIN
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return ErrInvalidPIN
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), pinCost)
	if err != nil {
		return err
	}
	m.PINHash = string(hash)
	return nil
}

// CheckPIN verifies a kiosk PIN against the stored hash.
// INVARIANT: Member fields are not mutated
func (m *Member) CheckPIN(pin string) error {
	if m.PINHash == "" {
		return ErrNoPIN
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PINHash), []byte(pin)); err != nil {
		return ErrWrongPIN
	}
	return nil
}
