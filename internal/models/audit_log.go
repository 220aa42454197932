package models

import "time"

// AuditLog is one state change made by a doctor or a patient. Listing is
// always scoped to the actor, hence the composite index.
type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ActorID   uint   `gorm:"not null;index:idx_audit_actor,priority:1" json:"actor_id"`
	ActorRole string `gorm:"size:10;not null;index:idx_audit_actor,priority:2" json:"actor_role"`
	Action    string `gorm:"size:50;not null;index" json:"action"`

	Entity   string `gorm:"size:50" json:"entity"`
	EntityID *uint  `json:"entity_id"`
	// JSON encoded
	Metadata string `gorm:"type:text" json:"metadata"`

	CreatedAt time.Time `gorm:"index:idx_audit_actor,priority:3" json:"created_at"`
}
