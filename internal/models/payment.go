package models

import (
	"time"

	"github.com/prescripto/prescripto-api/internal/domain/status"
)

type Payment struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	AppointmentID uint `gorm:"not null;uniqueIndex" json:"appointment_id"`

	Amount        float64              `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency      string               `gorm:"size:3;default:'INR'" json:"currency"`
	Method        status.PaymentMethod `gorm:"size:20;not null" json:"method"`
	Provider      string               `gorm:"size:20" json:"provider"`
	TransactionID string               `gorm:"size:100;index" json:"transaction_id"`

	Status status.Payment `gorm:"size:20;default:'pending';index" json:"status"`

	PaidAt     *time.Time `json:"paid_at"`
	RefundedAt *time.Time `json:"refunded_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
