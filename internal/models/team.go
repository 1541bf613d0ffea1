package models

import (
	"time"

	"github.com/google/uuid"
)

// Team is a named grouping of crew members usable as an assignment scope
// and calendar filter.
type Team struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Color          string     `json:"color,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// TeamMember is one roster entry. (team, user) pairs are unique per team;
// a user may belong to multiple teams.
type TeamMember struct {
	ID        uuid.UUID `json:"id"`
	TeamID    uuid.UUID `json:"team_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
