package models

import (
	"time"

	"github.com/google/uuid"
)

// SMS delivery status values.
const (
	SmsStatusSent   = "sent"
	SmsStatusFailed = "failed"
)

// SmsMessage is one row in the append-only notification log. Written only by
// the dispatch worker; the scheduling core triggers its creation indirectly.
type SmsMessage struct {
	ID                uuid.UUID  `json:"id"`
	OrganizationID    *uuid.UUID `json:"organization_id,omitempty"`
	EventID           *uuid.UUID `json:"event_id,omitempty"`
	ClientID          *uuid.UUID `json:"client_id,omitempty"`
	ToPhone           string     `json:"to_phone,omitempty"`
	Body              string     `json:"body,omitempty"`
	Status            string     `json:"status,omitempty"`
	ProviderMessageID string     `json:"provider_message_id,omitempty"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
