package staff

import (
	"errors"
	"strings"
	"time"
)

// Role constants
const (
	RoleTrainer   = "trainer"
	RoleFrontDesk = "front_desk"
	RoleManager   = "manager"
)

// Status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// MaxNameLength bounds the display name.
const MaxNameLength = 100

// Domain errors
var (
	ErrEmptyName      = errors.New("staff name cannot be empty")
	ErrInvalidRole    = errors.New("role must be 'trainer', 'front_desk', or 'manager'")
	ErrNoJoiningDate  = errors.New("joining date must be set")
	ErrInvalidStatus  = errors.New("status must be 'active' or 'inactive'")
	ErrInvalidEmail   = errors.New("staff email must be valid")
	ErrNameTooLong    = errors.New("staff name cannot exceed 100 characters")
	ErrNegativeSalary = errors.New("monthly salary cannot be negative")
)

// Staff is an employee whose attendance window opens on the joining date and never closes.
type Staff struct {
	ID            string
	Name          string
	Email         string
	Role          string
	Status        string
	JoiningDate   time.Time // civil date
	MonthlySalary int64     // whole currency units, informational
	CreatedAt     time.Time
}

// Validate checks if the Staff has valid data.
// PRE: Staff struct is initialized
// POST: Returns the first violation, nil otherwise
func (s *Staff) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if len(s.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if s.Email != "" && !strings.Contains(s.Email, "@") {
		return ErrInvalidEmail
	}
	switch s.Role {
	case RoleTrainer, RoleFrontDesk, RoleManager:
	default:
		return ErrInvalidRole
	}
	if s.Status != StatusActive && s.Status != StatusInactive {
		return ErrInvalidStatus
	}
	if s.JoiningDate.IsZero() {
		return ErrNoJoiningDate
	}
	if s.MonthlySalary < 0 {
		return ErrNegativeSalary
	}
	return nil
}

// IsActive returns true if the staff member is currently employed.
func (s *Staff) IsActive() bool {
	return s.Status == StatusActive
}
