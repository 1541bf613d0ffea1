package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant business.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberRoleCrew marks an org member as schedulable for field work.
const MemberRoleCrew = "crew_member"

// OrgMember is a person in an organization's staff directory. Crew-eligible
// members carry the crew role or appear in a team roster.
type OrgMember struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	UserID         uuid.UUID  `json:"user_id"`
	Role           string     `json:"role,omitempty"`
	DisplayName    string     `json:"display_name,omitempty"`
}
