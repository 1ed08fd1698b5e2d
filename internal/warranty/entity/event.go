package entity

import (
	"time"
)

// Event types.
const (
	EventStatusChange = "STATUS_CHANGE"
	EventComment      = "COMMENT"
)

// ClaimEvent immutable audit record for one claim.
//
// Events are append-only: created exactly once and never updated or
// deleted. The sequence ordered by created_at is the claim's audit trail.
type ClaimEvent struct {
	ID        string `json:"id" gorm:"primaryKey;size:32"`
	ClaimID   string `json:"claim_id" gorm:"size:32;not null;index"`
	EventType string `json:"event_type" gorm:"size:32;not null"`

	FromStatus *ClaimStatus `json:"from_status,omitempty" gorm:"size:32"`
	ToStatus   *ClaimStatus `json:"to_status,omitempty" gorm:"size:32"`

	// Comment is mandatory for STATUS_CHANGE events.
	Comment string `json:"comment" gorm:"type:text"`

	ActorID   string `json:"actor_id" gorm:"size:32"`
	ActorName string `json:"actor_name" gorm:"size:128"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (ClaimEvent) TableName() string {
	return "warranty_events"
}
