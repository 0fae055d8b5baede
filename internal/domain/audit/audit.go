package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category groups audit events by the record family they touch.
type Category string

const (
	CategoryMember     Category = "member"
	CategoryStaff      Category = "staff"
	CategoryAttendance Category = "attendance"
	CategorySession    Category = "session"
	CategoryBilling    Category = "billing"
	CategorySystem     Category = "system"
)

// Action represents the action that occurred.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionMark     Action = "mark"
	ActionAutoMark Action = "auto_mark"
	ActionCheckIn  Action = "check_in"
	ActionCheckOut Action = "check_out"
	ActionArchive  Action = "archive"
	ActionRestore  Action = "restore"
	ActionRenew    Action = "renew"
	ActionRemind   Action = "remind"
)

// Severity represents the severity level of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// SystemActor is recorded for writes made by background jobs.
const SystemActor = "system"

// Event represents a single audit log entry.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Severity     Severity  `json:"severity"`
	Actor        string    `json:"actor"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Description  string    `json:"description"`
	IPAddress    string    `json:"ip_address"`
	Metadata     string    `json:"metadata"`
}

// NewEvent creates an info-level event stamped at now.
// PRE: category and action are non-empty
// POST: Returns an Event with a fresh ID; an empty actor becomes SystemActor
func NewEvent(now time.Time, actor string, category Category, action Action) Event {
	if actor == "" {
		actor = SystemActor
	}
	return Event{
		ID:        uuid.NewString(),
		Timestamp: now,
		Category:  category,
		Action:    action,
		Severity:  SeverityInfo,
		Actor:     actor,
	}
}

// WithSeverity sets the severity level.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithResource sets resource information.
// PRE: resourceType and resourceID are non-empty
// POST: Event resource fields are populated
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets the event description.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// WithIP records the client address.
func (e Event) WithIP(ip string) Event {
	e.IPAddress = ip
	return e
}

// WithMetadata sets optional JSON metadata.
// PRE: metadata is valid JSON or empty
func (e Event) WithMetadata(metadata string) Event {
	e.Metadata = metadata
	return e
}
