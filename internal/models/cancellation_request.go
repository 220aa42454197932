package models

import (
	"time"

	"github.com/prescripto/prescripto-api/internal/domain/status"
)

type CancellationRequest struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AppointmentID uint         `gorm:"not null;index" json:"appointment_id"`
	Appointment   *Appointment `gorm:"constraint:OnDelete:CASCADE;" json:"appointment,omitempty"`

	RequestedBy  status.Role    `gorm:"size:10;not null" json:"requested_by"`
	Reason       string         `gorm:"type:text" json:"reason"`
	RefundAmount float64        `gorm:"type:numeric(10,2);default:0" json:"refund_amount"`
	Status       status.Request `gorm:"size:20;default:'pending';index" json:"status"`
	Notes        string         `gorm:"type:text" json:"notes"`

	RefundTransactionID string `gorm:"size:100" json:"refund_transaction_id"`

	RequestedAt time.Time  `json:"requested_at"`
	ApprovedAt  *time.Time `json:"approved_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
