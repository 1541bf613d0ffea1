package models

import (
	"time"

	"github.com/google/uuid"
)

// Event status values.
const (
	EventStatusDraft     = "draft"
	EventStatusScheduled = "scheduled"
	EventStatusConfirmed = "confirmed"
	EventStatusCancelled = "cancelled"
)

// Event is a scheduled occurrence of field work tied to a project and time window.
// Invariant: StartTime < EndTime.
type Event struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	ProjectID      *uuid.UUID `json:"project_id,omitempty"`
	TeamID         *uuid.UUID `json:"team_id,omitempty"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        time.Time  `json:"end_time"`
	Timezone       string     `json:"timezone,omitempty"`
	Status         string     `json:"status,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedBy      *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// EventWithProject is an event joined with its project for calendar display.
type EventWithProject struct {
	Event
	Project *Project `json:"project,omitempty"`
}

// EventAssignment links a crew member to an event. At most one row per
// (event, user) pair; the full set for an event is replaced on every save.
type EventAssignment struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	EventID        uuid.UUID  `json:"event_id"`
	UserID         uuid.UUID  `json:"user_id"`
	CreatedAt      time.Time  `json:"created_at"`
}
